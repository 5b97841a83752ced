package auth

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/potencialize/dashboard/core"
)

type State int

const (
	StateBooting State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateBooting:
		return "booting"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// fallbackSession is used when a refreshed access token carries no readable role.
var fallbackSession = Session{Role: RoleTeacher}

type SessionOptions struct {
	Mode        core.AuthMode
	API         API
	Credentials *Credentials
	CSRF        *CSRFReader // cookie mode only
	Logger      core.Logger
}

// SessionController drives the authentication lifecycle of the application:
// silent refresh at boot, explicit login and logout.
type SessionController struct {
	opts     SessionOptions
	logger   core.Logger
	bootOnce sync.Once
	booted   chan struct{}

	mu        sync.RWMutex
	state     State
	session   *Session
	listeners []func(State, *Session)
}

func NewSessionController(opts SessionOptions) *SessionController {
	logger := opts.Logger
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &SessionController{
		opts:   opts,
		logger: logger,
		booted: make(chan struct{}),
		state:  StateBooting,
	}
}

// Boot tries to restore a session from the stored refresh credential.
// It runs once; failures are logged and settle the controller as unauthenticated.
func (s *SessionController) Boot(ctx context.Context) State {
	s.bootOnce.Do(func() {
		defer close(s.booted)
		sess, err := s.silentRefresh(ctx)
		if err != nil {
			s.logger.Warn("boot refresh failed", err)
			s.opts.Credentials.ClearAll()
		}
		s.settle(sess)
	})
	return s.State()
}

func (s *SessionController) silentRefresh(ctx context.Context) (*Session, error) {
	switch s.opts.Mode {
	case core.AuthModeCookie:
		// the refresh cookie is HttpOnly: its csrf marker is the only visible hint
		if !s.opts.CSRF.HasRefreshMarker() {
			return nil, nil
		}
	default:
		if !s.opts.Credentials.HasRefresh() {
			return nil, nil
		}
	}

	res, err := s.opts.API.Refresh(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "refreshing session")
	}
	if res.AccessToken == "" {
		return nil, errors.New("refresh returned no access token")
	}
	s.opts.Credentials.SetAccess(res.AccessToken)

	sess, ok := DecodeClaims(res.AccessToken).Session()
	if !ok {
		sess = fallbackSession
	}
	return &sess, nil
}

// Wait blocks until Boot settled or ctx is done.
func (s *SessionController) Wait(ctx context.Context) error {
	select {
	case <-s.booted:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Login exchanges credentials for a session. Errors are returned untouched.
func (s *SessionController) Login(ctx context.Context, body LoginBody) (Session, error) {
	if err := body.Validate(); err != nil {
		return Session{}, err
	}
	res, err := s.opts.API.Login(ctx, body)
	if err != nil {
		return Session{}, err
	}

	s.opts.Credentials.SetAccess(res.AccessToken)
	if s.opts.Mode == core.AuthModeBearer {
		s.opts.Credentials.SetRefresh(res.RefreshToken)
	}
	sess := res.Session()
	s.settle(&sess)
	s.logger.Info("logged in", sess)
	return sess, nil
}

// Logout notifies the server (best effort) then always clears local credentials.
func (s *SessionController) Logout(ctx context.Context) {
	var err error
	switch s.opts.Mode {
	case core.AuthModeCookie:
		if s.opts.CSRF.HasRefreshMarker() {
			err = s.opts.API.Logout(ctx)
		}
	default:
		if s.opts.Credentials.HasRefresh() {
			err = s.opts.API.LogoutRefresh(ctx)
		}
	}
	if err != nil {
		s.logger.Warn("logout notification failed", err)
	}

	s.opts.Credentials.ClearAll()
	s.settle(nil)
}

// Authorize checks the current session against roles (any of them).
func (s *SessionController) Authorize(roles ...Role) error {
	sess, ok := s.Session()
	if !ok {
		return core.ErrUnauthenticated
	}
	if !sess.HasAnyRole(roles...) {
		return core.ErrForbidden
	}
	return nil
}

func (s *SessionController) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *SessionController) Session() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

// Subscribe registers fn to be called after every state change.
func (s *SessionController) Subscribe(fn func(State, *Session)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *SessionController) settle(sess *Session) {
	state := StateUnauthenticated
	if sess != nil {
		state = StateAuthenticated
	}

	s.mu.Lock()
	s.state = state
	s.session = sess
	listeners := make([]func(State, *Session), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(state, sess)
	}
}
