package apiclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/potencialize/dashboard/core"
	"github.com/potencialize/dashboard/core/auth"
	"github.com/potencialize/dashboard/storage/inmemstore"
	"github.com/potencialize/dashboard/tests/fakeapi"
)

const (
	teacherEmail = "teacher@potencialize.test"
	adminEmail   = "admin@potencialize.test"
	password     = "s3cr3t!"
	refreshKey   = "potencialize_refresh_token"
	cookiesKey   = "potencialize_cookies"
	teacherID    = 12
)

type harness struct {
	api     *fakeapi.Server
	store   *inmemstore.Store
	creds   *auth.Credentials
	jar     *Jar
	client  *Client
	session *auth.SessionController
}

func setup(t *testing.T, mode core.AuthMode) *harness {
	t.Helper()
	api := fakeapi.New(mode)
	t.Cleanup(api.Close)
	api.AddUser(teacherEmail, password, auth.RoleTeacher, teacherID)
	api.AddUser(adminEmail, password, auth.RoleAdmin)

	return connect(t, api, inmemstore.New())
}

// connect builds a fresh client process against api, reusing store.
func connect(t *testing.T, api *fakeapi.Server, store *inmemstore.Store) *harness {
	t.Helper()
	h := &harness{api: api, store: store}
	h.creds = auth.NewCredentials(store, refreshKey, nil)

	opts := &Options{
		BaseURL:     api.URL,
		Mode:        api.Mode(),
		Credentials: h.creds,
	}
	if api.Mode() == core.AuthModeCookie {
		jar, err := NewJar(context.Background(), api.URL, store, cookiesKey, nil)
		require.NoError(t, err)
		h.jar = jar
		h.creds.UseCookies(jar)
		opts.Jar = jar
		opts.CSRF = auth.NewCSRFReader(jar)
	}

	client, err := New(opts)
	require.NoError(t, err)
	h.client = client
	h.session = auth.NewSessionController(auth.SessionOptions{
		Mode:        api.Mode(),
		API:         client,
		Credentials: h.creds,
		CSRF:        opts.CSRF,
	})
	return h
}

func (h *harness) login(t *testing.T, email string) auth.Session {
	t.Helper()
	sess, err := h.session.Login(context.Background(), auth.LoginBody{Email: email, Password: password})
	require.NoError(t, err)
	h.api.ResetHits()
	return sess
}

var modes = []core.AuthMode{core.AuthModeBearer, core.AuthModeCookie}
