package apiclient

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/potencialize/dashboard/core/auth"
)

const (
	loginPath         = "/auth/login"
	refreshPath       = "/auth/refresh"
	logoutPath        = "/auth/logout"
	logoutRefreshPath = "/auth/logout-refresh"
)

var basePathRegex = regexp.MustCompile(`^/api/v\d+`)

type csrfRule struct {
	path string
	kind auth.CSRFKind
}

// csrfRules picks the anti-forgery token kind: first match wins, access-scoped otherwise.
var csrfRules = []csrfRule{
	{path: refreshPath, kind: auth.CSRFRefresh},
	{path: logoutRefreshPath, kind: auth.CSRFRefresh},
}

// noRefreshRules are paths whose 401 is an answer, not an expired credential.
var noRefreshRules = []string{loginPath, refreshPath}

// stripOriginAndBasePath reduces a url (absolute or not) to its API path:
// no scheme, host, query, /api/vN prefix or trailing slash.
func stripOriginAndBasePath(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	p = basePathRegex.ReplaceAllString(p, "")
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

// matchPath reports whether the API path p addresses the endpoint rule.
// Suffix matching keeps it independent of any base path.
func matchPath(p, rule string) bool {
	return p == rule || strings.HasSuffix(p, rule)
}

func csrfKindFor(p string) auth.CSRFKind {
	p = stripOriginAndBasePath(p)
	for _, rule := range csrfRules {
		if matchPath(p, rule.path) {
			return rule.kind
		}
	}
	return auth.CSRFAccess
}

func refreshable(p string) bool {
	p = stripOriginAndBasePath(p)
	for _, rule := range noRefreshRules {
		if matchPath(p, rule) {
			return false
		}
	}
	return true
}

func isMutating(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
