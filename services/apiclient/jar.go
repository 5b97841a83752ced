package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/publicsuffix"

	"github.com/potencialize/dashboard/core"
	"github.com/potencialize/dashboard/core/auth"
)

var jarStoreTimeout = 5 * time.Second

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Jar is a cookie jar whose API-origin cookies survive the process: they are
// snapshotted into a SecretStore after every change, except the access cookie
// which lives in memory only. It is also the cookie source of the CSRF reader.
type Jar struct {
	mu     sync.Mutex
	jar    *cookiejar.Jar
	origin *url.URL
	store  auth.SecretStore
	key    string
	logger core.Logger
}

var (
	_ http.CookieJar     = (*Jar)(nil)
	_ auth.CookieSource  = (*Jar)(nil)
	_ auth.CookieClearer = (*Jar)(nil)
)

// NewJar restores the snapshot stored under key (if any).
func NewJar(ctx context.Context, baseURL string, store auth.SecretStore, key string, logger core.Logger) (*Jar, error) {
	origin, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, errors.Wrap(err, "parsing base url")
	}
	if logger == nil {
		logger = core.NopLogger{}
	}
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Wrap(err, "creating cookie jar")
	}
	j := &Jar{jar: inner, origin: origin, store: store, key: key, logger: logger}

	if store == nil {
		return j, nil
	}
	data, err := store.Get(ctx, key)
	switch {
	case errors.Is(err, auth.ErrSecretNotFound):
		return j, nil
	case err != nil:
		return nil, errors.Wrap(err, "reading cookie snapshot")
	}

	var stored []storedCookie
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		logger.Warn("dropping unreadable cookie snapshot", err)
		return j, nil
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, sc := range stored {
		cookies = append(cookies, &http.Cookie{Name: sc.Name, Value: sc.Value, Path: "/"})
	}
	inner.SetCookies(origin, cookies)
	return j, nil
}

func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.SetCookies(u, cookies)
	if strings.EqualFold(u.Hostname(), j.origin.Hostname()) {
		j.save()
	}
}

func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

// CookieString renders the API-origin cookies as "name=value; name2=value2".
func (j *Jar) CookieString() string {
	cookies := j.Cookies(j.origin)
	parts := make([]string, 0, len(cookies))
	for _, cookie := range cookies {
		parts = append(parts, cookie.Name+"="+cookie.Value)
	}
	return strings.Join(parts, "; ")
}

// Clear forgets every cookie, in memory and in the store.
func (j *Jar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	inner, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	j.jar = inner
	if j.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jarStoreTimeout)
	defer cancel()
	if err := j.store.Delete(ctx, j.key); err != nil && !errors.Is(err, auth.ErrSecretNotFound) {
		j.logger.Error("deleting cookie snapshot", err)
	}
}

// save must be called with mu held.
func (j *Jar) save() {
	if j.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jarStoreTimeout)
	defer cancel()

	cookies := j.jar.Cookies(j.origin)
	stored := make([]storedCookie, 0, len(cookies))
	for _, cookie := range cookies {
		if cookie.Name == auth.AccessCookie {
			continue
		}
		stored = append(stored, storedCookie{Name: cookie.Name, Value: cookie.Value})
	}
	if len(stored) == 0 {
		if err := j.store.Delete(ctx, j.key); err != nil && !errors.Is(err, auth.ErrSecretNotFound) {
			j.logger.Error("deleting cookie snapshot", err)
		}
		return
	}

	data, err := json.Marshal(stored)
	if err != nil {
		j.logger.Error("encoding cookie snapshot", err)
		return
	}
	if err := j.store.Set(ctx, j.key, string(data)); err != nil {
		j.logger.Error("storing cookie snapshot", err)
	}
}
