package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/potencialize/dashboard/core/auth"
	"github.com/potencialize/dashboard/storage/inmemstore"
)

const jarBaseURL = "https://api.potencialize.test/api/v1"

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func sessionCookies() []*http.Cookie {
	return []*http.Cookie{
		{Name: "access_token_cookie", Value: "a.b.c", Path: "/", HttpOnly: true},
		{Name: "refresh_token_cookie", Value: "d.e.f", Path: "/", HttpOnly: true},
		{Name: auth.CSRFAccessCookie, Value: "csrf-a", Path: "/"},
		{Name: auth.CSRFRefreshCookie, Value: "csrf-r", Path: "/"},
	}
}

func TestJar_Snapshot(t *testing.T) {
	ctx := context.Background()
	store := inmemstore.New()
	jar, err := NewJar(ctx, jarBaseURL, store, cookiesKey, nil)
	require.NoError(t, err)
	assert.Empty(t, jar.CookieString())

	jar.SetCookies(mustURL(t, jarBaseURL+"/auth/login"), sessionCookies())
	data, err := store.Get(ctx, cookiesKey)
	require.NoError(t, err)
	assert.Contains(t, data, `"name":"refresh_token_cookie"`)
	assert.NotContains(t, data, auth.AccessCookie, "the access cookie stays in memory")
	assert.Contains(t, jar.CookieString(), auth.AccessCookie+"=a.b.c")

	// a new process sees the persisted cookies
	restored, err := NewJar(ctx, jarBaseURL, store, cookiesKey, nil)
	require.NoError(t, err)
	reader := auth.NewCSRFReader(restored)
	assert.True(t, reader.HasRefreshMarker())
	token, ok := reader.CSRFToken(auth.CSRFAccess)
	assert.True(t, ok)
	assert.Equal(t, "csrf-a", token)
	assert.Len(t, restored.Cookies(mustURL(t, jarBaseURL+"/classes")), 3)
	assert.NotContains(t, restored.CookieString(), auth.AccessCookie)

	// expiring every cookie removes the snapshot
	var expired []*http.Cookie
	for _, c := range sessionCookies() {
		expired = append(expired, &http.Cookie{Name: c.Name, Path: "/", MaxAge: -1})
	}
	restored.SetCookies(mustURL(t, jarBaseURL+"/auth/logout"), expired)
	assert.Empty(t, restored.CookieString())
	_, err = store.Get(ctx, cookiesKey)
	assert.ErrorIs(t, err, auth.ErrSecretNotFound)
}

func TestJar_OtherHostsAreNotPersisted(t *testing.T) {
	ctx := context.Background()
	store := inmemstore.New()
	jar, err := NewJar(ctx, jarBaseURL, store, cookiesKey, nil)
	require.NoError(t, err)

	jar.SetCookies(mustURL(t, "https://cdn.example.com/"), []*http.Cookie{{Name: "tracking", Value: "1", Path: "/"}})
	_, err = store.Get(ctx, cookiesKey)
	assert.ErrorIs(t, err, auth.ErrSecretNotFound)
	assert.Empty(t, jar.CookieString())
}

func TestJar_Clear(t *testing.T) {
	ctx := context.Background()
	store := inmemstore.New()
	jar, err := NewJar(ctx, jarBaseURL, store, cookiesKey, nil)
	require.NoError(t, err)
	jar.SetCookies(mustURL(t, jarBaseURL+"/auth/login"), sessionCookies())

	jar.Clear()
	assert.Empty(t, jar.CookieString())
	_, err = store.Get(ctx, cookiesKey)
	assert.ErrorIs(t, err, auth.ErrSecretNotFound)
}

func TestJar_UnreadableSnapshot(t *testing.T) {
	ctx := context.Background()
	store := inmemstore.New()
	require.NoError(t, store.Set(ctx, cookiesKey, "{not json"))

	jar, err := NewJar(ctx, jarBaseURL, store, cookiesKey, nil)
	require.NoError(t, err)
	assert.Empty(t, jar.CookieString())
}

func TestJar_WithoutStore(t *testing.T) {
	jar, err := NewJar(context.Background(), jarBaseURL, nil, cookiesKey, nil)
	require.NoError(t, err)
	jar.SetCookies(mustURL(t, jarBaseURL), sessionCookies()[2:])
	assert.Contains(t, jar.CookieString(), auth.CSRFAccessCookie+"=csrf-a")
	jar.Clear()
	assert.Empty(t, jar.CookieString())
}

func TestJar_AccessCookieAloneIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	store := inmemstore.New()
	jar, err := NewJar(ctx, jarBaseURL, store, cookiesKey, nil)
	require.NoError(t, err)

	jar.SetCookies(mustURL(t, jarBaseURL+"/auth/refresh"), sessionCookies()[:1])
	assert.NotEmpty(t, jar.CookieString())
	_, err = store.Get(ctx, cookiesKey)
	assert.ErrorIs(t, err, auth.ErrSecretNotFound)
}
