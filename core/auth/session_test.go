package auth

import (
	"context"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/potencialize/dashboard/core"
)

// stubAPI records calls; nil funcs succeed with zero values.
type stubAPI struct {
	login         func(LoginBody) (LoginResponse, error)
	refresh       func() (RefreshResponse, error)
	logoutErr     error
	calls         map[string]int
	lastLoginBody LoginBody
}

func newStubAPI() *stubAPI { return &stubAPI{calls: make(map[string]int)} }

func (a *stubAPI) Login(_ context.Context, body LoginBody) (LoginResponse, error) {
	a.calls["login"]++
	a.lastLoginBody = body
	if a.login == nil {
		return LoginResponse{}, nil
	}
	return a.login(body)
}

func (a *stubAPI) Refresh(context.Context) (RefreshResponse, error) {
	a.calls["refresh"]++
	if a.refresh == nil {
		return RefreshResponse{}, nil
	}
	return a.refresh()
}

func (a *stubAPI) Logout(context.Context) error {
	a.calls["logout"]++
	return a.logoutErr
}

func (a *stubAPI) LogoutRefresh(context.Context) error {
	a.calls["logout-refresh"]++
	return a.logoutErr
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

type sessionFixture struct {
	api     *stubAPI
	store   *mapStore
	creds   *Credentials
	cookies string
	ctrl    *SessionController
}

func newSessionFixture(mode core.AuthMode) *sessionFixture {
	f := &sessionFixture{api: newStubAPI(), store: newMapStore()}
	f.creds = NewCredentials(f.store, testRefreshKey, nil)
	f.ctrl = NewSessionController(SessionOptions{
		Mode:        mode,
		API:         f.api,
		Credentials: f.creds,
		CSRF:        NewCSRFReader(CookieString(func() string { return f.cookies })),
	})
	return f
}

func TestSessionController_BootShortCircuit(t *testing.T) {
	for _, mode := range []core.AuthMode{core.AuthModeBearer, core.AuthModeCookie} {
		t.Run(string(mode), func(t *testing.T) {
			f := newSessionFixture(mode)
			f.cookies = "csrf_access_token=only-access"

			assert.Equal(t, StateBooting, f.ctrl.State())
			assert.Equal(t, StateUnauthenticated, f.ctrl.Boot(context.Background()))
			assert.Zero(t, f.api.calls["refresh"], "no network call expected")
			_, ok := f.ctrl.Session()
			assert.False(t, ok)
		})
	}
}

func TestSessionController_Boot(t *testing.T) {
	teacherID := 3
	tests := []struct {
		name      string
		mode      core.AuthMode
		setup     func(f *sessionFixture)
		refresh   func(t *testing.T) func() (RefreshResponse, error)
		wantState State
		wantSess  Session
		wantClear bool
	}{
		{
			name:  "bearer restores session from claims",
			mode:  core.AuthModeBearer,
			setup: func(f *sessionFixture) { f.creds.SetRefresh("ref") },
			refresh: func(t *testing.T) func() (RefreshResponse, error) {
				tok := signToken(t, jwt.MapClaims{"role": "teacher", "teacher_id": 3})
				return func() (RefreshResponse, error) { return RefreshResponse{AccessToken: tok}, nil }
			},
			wantState: StateAuthenticated,
			wantSess:  Session{Role: RoleTeacher, TeacherID: &teacherID},
		},
		{
			name:  "cookie restores session from claims",
			mode:  core.AuthModeCookie,
			setup: func(f *sessionFixture) { f.cookies = "csrf_refresh_token=r" },
			refresh: func(t *testing.T) func() (RefreshResponse, error) {
				tok := signToken(t, jwt.MapClaims{"role": "admin"})
				return func() (RefreshResponse, error) { return RefreshResponse{AccessToken: tok}, nil }
			},
			wantState: StateAuthenticated,
			wantSess:  Session{Role: RoleAdmin},
		},
		{
			name:  "unreadable claims fall back to teacher",
			mode:  core.AuthModeBearer,
			setup: func(f *sessionFixture) { f.creds.SetRefresh("ref") },
			refresh: func(t *testing.T) func() (RefreshResponse, error) {
				return func() (RefreshResponse, error) { return RefreshResponse{AccessToken: "opaque"}, nil }
			},
			wantState: StateAuthenticated,
			wantSess:  Session{Role: RoleTeacher},
		},
		{
			name:  "refresh failure clears credentials",
			mode:  core.AuthModeBearer,
			setup: func(f *sessionFixture) { f.creds.SetRefresh("ref") },
			refresh: func(t *testing.T) func() (RefreshResponse, error) {
				return func() (RefreshResponse, error) {
					return RefreshResponse{}, &core.APIError{Status: 401, Path: "/auth/refresh"}
				}
			},
			wantState: StateUnauthenticated,
			wantClear: true,
		},
		{
			name:  "empty access token is a failure",
			mode:  core.AuthModeCookie,
			setup: func(f *sessionFixture) { f.cookies = "csrf_refresh_token=r" },
			refresh: func(t *testing.T) func() (RefreshResponse, error) {
				return func() (RefreshResponse, error) { return RefreshResponse{}, nil }
			},
			wantState: StateUnauthenticated,
			wantClear: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(tt.mode)
			tt.setup(f)
			f.api.refresh = tt.refresh(t)

			assert.Equal(t, tt.wantState, f.ctrl.Boot(context.Background()))
			assert.Equal(t, 1, f.api.calls["refresh"])

			sess, ok := f.ctrl.Session()
			assert.Equal(t, tt.wantState == StateAuthenticated, ok)
			assert.Equal(t, tt.wantSess, sess)
			if tt.wantClear {
				assert.Empty(t, f.creds.Access())
				assert.False(t, f.creds.HasRefresh())
			}
		})
	}
}

func TestSessionController_BootOnce(t *testing.T) {
	f := newSessionFixture(core.AuthModeBearer)
	f.creds.SetRefresh("ref")
	f.api.refresh = func() (RefreshResponse, error) { return RefreshResponse{AccessToken: "a.b.c"}, nil }

	ctx := context.Background()
	f.ctrl.Boot(ctx)
	f.ctrl.Boot(ctx)
	assert.Equal(t, 1, f.api.calls["refresh"])

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	assert.NoError(t, f.ctrl.Wait(waitCtx))
}

func TestSessionController_WaitBeforeBoot(t *testing.T) {
	f := newSessionFixture(core.AuthModeBearer)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.ctrl.Wait(ctx), context.DeadlineExceeded)
}

func TestSessionController_Login(t *testing.T) {
	teacherID := 9
	tests := []struct {
		name        string
		mode        core.AuthMode
		body        LoginBody
		loginErr    error
		wantErr     bool
		wantRefresh string
	}{
		{name: "bearer stores both secrets", mode: core.AuthModeBearer, body: LoginBody{Email: " T@Test.io ", Password: "pwd"}, wantRefresh: "ref"},
		{name: "cookie keeps no refresh secret", mode: core.AuthModeCookie, body: LoginBody{Email: "t@test.io", Password: "pwd"}},
		{name: "invalid email", mode: core.AuthModeBearer, body: LoginBody{Email: "nope", Password: "pwd"}, wantErr: true},
		{name: "missing password", mode: core.AuthModeBearer, body: LoginBody{Email: "t@test.io"}, wantErr: true},
		{
			name:     "server rejects",
			mode:     core.AuthModeBearer,
			body:     LoginBody{Email: "t@test.io", Password: "bad"},
			loginErr: &core.APIError{Status: 401, Path: "/auth/login", Message: "Incorrect email or password"},
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(tt.mode)
			f.api.login = func(LoginBody) (LoginResponse, error) {
				if tt.loginErr != nil {
					return LoginResponse{}, tt.loginErr
				}
				return LoginResponse{AccessToken: "acc", RefreshToken: "ref", Role: RoleTeacher, TeacherID: &teacherID}, nil
			}

			sess, err := f.ctrl.Login(context.Background(), tt.body)
			if tt.wantErr {
				assert.Error(t, err)
				if tt.loginErr != nil {
					assert.Same(t, tt.loginErr, err, "server errors propagate untouched")
				}
				assert.Equal(t, StateBooting, f.ctrl.State())
				assert.Empty(t, f.creds.Access())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Session{Role: RoleTeacher, TeacherID: &teacherID}, sess)
			assert.Equal(t, StateAuthenticated, f.ctrl.State())
			assert.Equal(t, "acc", f.creds.Access())
			assert.Equal(t, tt.wantRefresh, f.creds.Refresh())
			assert.Equal(t, "t@test.io", f.api.lastLoginBody.Email)
		})
	}
}

func TestSessionController_Logout(t *testing.T) {
	tests := []struct {
		name      string
		mode      core.AuthMode
		cookies   string
		refresh   string
		serverErr error
		wantCall  string
	}{
		{name: "bearer notifies with refresh secret", mode: core.AuthModeBearer, refresh: "ref", wantCall: "logout-refresh"},
		{name: "bearer without refresh secret stays local", mode: core.AuthModeBearer},
		{name: "bearer server failure is swallowed", mode: core.AuthModeBearer, refresh: "ref", serverErr: errors.New("boom"), wantCall: "logout-refresh"},
		{name: "cookie notifies with marker", mode: core.AuthModeCookie, cookies: "csrf_refresh_token=r", wantCall: "logout"},
		{name: "cookie without marker stays local", mode: core.AuthModeCookie, cookies: "csrf_access_token=a"},
		{name: "cookie server failure is swallowed", mode: core.AuthModeCookie, cookies: "csrf_refresh_token=r", serverErr: &core.ConnectivityError{Op: "POST /auth/logout", Err: errors.New("refused")}, wantCall: "logout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(tt.mode)
			f.cookies = tt.cookies
			f.api.logoutErr = tt.serverErr
			f.api.login = func(LoginBody) (LoginResponse, error) {
				return LoginResponse{AccessToken: "acc", Role: RoleAdmin}, nil
			}
			_, err := f.ctrl.Login(context.Background(), LoginBody{Email: "a@test.io", Password: "pwd"})
			require.NoError(t, err)
			if tt.refresh != "" {
				f.creds.SetRefresh(tt.refresh)
			}

			f.ctrl.Logout(context.Background())

			calls := f.api.calls["logout"] + f.api.calls["logout-refresh"]
			if tt.wantCall == "" {
				assert.Zero(t, calls)
			} else {
				assert.Equal(t, 1, calls)
				assert.Equal(t, 1, f.api.calls[tt.wantCall])
			}
			assert.Empty(t, f.creds.Access())
			assert.Empty(t, f.creds.Refresh())
			assert.Equal(t, StateUnauthenticated, f.ctrl.State())
		})
	}
}

func TestSessionController_AuthorizeAndSubscribe(t *testing.T) {
	f := newSessionFixture(core.AuthModeBearer)
	f.api.login = func(LoginBody) (LoginResponse, error) {
		return LoginResponse{AccessToken: "acc", RefreshToken: "ref", Role: RoleTeacher}, nil
	}

	var states []State
	f.ctrl.Subscribe(func(s State, _ *Session) { states = append(states, s) })

	assert.ErrorIs(t, f.ctrl.Authorize(), core.ErrUnauthenticated)

	_, err := f.ctrl.Login(context.Background(), LoginBody{Email: "t@test.io", Password: "pwd"})
	require.NoError(t, err)

	assert.NoError(t, f.ctrl.Authorize())
	assert.NoError(t, f.ctrl.Authorize(RoleAdmin, RoleTeacher))
	assert.ErrorIs(t, f.ctrl.Authorize(RoleAdmin, RoleCoordinator), core.ErrForbidden)

	f.ctrl.Logout(context.Background())
	assert.Equal(t, []State{StateAuthenticated, StateUnauthenticated}, states)
}
