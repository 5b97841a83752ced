package auth

import (
	"net/url"
	"strings"
)

// CSRFKind selects which anti-forgery cookie to read.
type CSRFKind string

const (
	CSRFAccess  CSRFKind = "access"
	CSRFRefresh CSRFKind = "refresh"

	// HttpOnly session cookies, never readable by the CSRF reader
	AccessCookie  = "access_token_cookie"
	RefreshCookie = "refresh_token_cookie"

	CSRFAccessCookie  = "csrf_access_token"
	CSRFRefreshCookie = "csrf_refresh_token"
	CSRFHeader        = "X-CSRF-TOKEN"
)

// CookieSource exposes the script-readable cookies as a "name=value; name2=value2" string.
type CookieSource interface {
	CookieString() string
}

// CookieString adapts a plain string (or func) into a CookieSource.
type CookieString func() string

func (f CookieString) CookieString() string { return f() }

// CSRFReader reads anti-forgery tokens out of non-HttpOnly cookies (cookie mode only).
type CSRFReader struct {
	src CookieSource
}

func NewCSRFReader(src CookieSource) *CSRFReader {
	return &CSRFReader{src: src}
}

// ReadCookie returns the URL-decoded value of the cookie named exactly name.
func (r *CSRFReader) ReadCookie(name string) (string, bool) {
	if r == nil || r.src == nil || name == "" {
		return "", false
	}
	for _, part := range strings.Split(r.src.CookieString(), ";") {
		part = strings.TrimLeft(part, " ")
		eq := strings.IndexByte(part, '=')
		if eq < 0 || part[:eq] != name {
			continue
		}
		raw := part[eq+1:]
		if val, err := url.PathUnescape(raw); err == nil {
			return val, true
		}
		return raw, true
	}
	return "", false
}

func (r *CSRFReader) CSRFToken(kind CSRFKind) (string, bool) {
	if kind == CSRFRefresh {
		return r.ReadCookie(CSRFRefreshCookie)
	}
	return r.ReadCookie(CSRFAccessCookie)
}

// HasRefreshMarker reports whether the refresh-scoped marker cookie is visible.
// It is the only hint that an HttpOnly refresh cookie may exist.
func (r *CSRFReader) HasRefreshMarker() bool {
	_, ok := r.CSRFToken(CSRFRefresh)
	return ok
}
