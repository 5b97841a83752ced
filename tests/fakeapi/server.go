// Package fakeapi is an in-process stand-in for the dashboard REST API.
// It implements the authentication contract of both trust modes and a small
// classes resource, and records every hit for assertions.
package fakeapi

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/potencialize/dashboard/core"
	"github.com/potencialize/dashboard/core/auth"
	"github.com/potencialize/dashboard/core/classroom"
)

const BasePath = "/api/v1"

// Hit is one request as seen by the server.
type Hit struct {
	Method        string
	Path          string // without BasePath
	Status        int
	Authorization string
	CSRF          string
}

type account struct {
	hash      []byte
	role      auth.Role
	teacherID *int
	name      string
}

type Server struct {
	URL string // base url of the API, BasePath included

	mode core.AuthMode
	srv  *httptest.Server
	app  *echo.Echo
	key  []byte

	mu           sync.Mutex
	accounts     map[string]account
	accessEpoch  int
	refreshEpoch int
	revoked      map[string]bool
	refreshGate  chan struct{}
	hits         []Hit
	classes      map[int]classroom.Class
	nextClassID  int
}

// New starts a fake API in the given trust mode. Close it when done.
func New(mode core.AuthMode) *Server {
	s := &Server{
		mode:        mode,
		app:         echo.New(),
		key:         []byte("fake-api-signing-key"),
		accounts:    make(map[string]account),
		revoked:     make(map[string]bool),
		classes:     make(map[int]classroom.Class),
		nextClassID: 1,
	}
	s.setup()
	s.srv = httptest.NewServer(s.app)
	s.URL = s.srv.URL + BasePath
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Logger.SetLevel(log.OFF)
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(s.record)
	s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	s.app.HTTPErrorHandler = httpErrorHandler

	api := s.app.Group(BasePath)
	api.POST("/auth/login", s.login)
	api.POST("/auth/refresh", s.refresh)
	api.POST("/auth/logout", s.logout)
	api.POST("/auth/logout-refresh", s.logoutRefresh)

	registerClassesAPI(api, s)
}

func (s *Server) Close() { s.srv.Close() }

func (s *Server) Mode() core.AuthMode { return s.mode }

// Route registers a protected handler under BasePath (any role when roles is empty).
func (s *Server) Route(method, path string, h echo.HandlerFunc, roles ...auth.Role) {
	s.app.Group(BasePath).Add(method, path, h, s.authenticated(roles...))
}

// AddUser creates an account; the teacher id is only set for teachers.
func (s *Server) AddUser(email, password string, role auth.Role, teacherID ...int) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	acc := account{hash: hash, role: role, name: email}
	if len(teacherID) > 0 {
		id := teacherID[0]
		acc.teacherID = &id
	}
	s.mu.Lock()
	s.accounts[email] = acc
	s.mu.Unlock()
}

// ExpireAccess invalidates every access token issued so far.
func (s *Server) ExpireAccess() {
	s.mu.Lock()
	s.accessEpoch++
	s.mu.Unlock()
}

// ExpireRefresh invalidates every refresh token issued so far.
func (s *Server) ExpireRefresh() {
	s.mu.Lock()
	s.refreshEpoch++
	s.mu.Unlock()
}

// HoldRefresh makes refresh calls block until the returned func is called.
func (s *Server) HoldRefresh() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.refreshGate = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.refreshGate = nil
			s.mu.Unlock()
			close(gate)
		})
	}
}

func (s *Server) Hits() []Hit {
	s.mu.Lock()
	defer s.mu.Unlock()
	hits := make([]Hit, len(s.hits))
	copy(hits, s.hits)
	return hits
}

// Count returns the number of hits on path (all methods), optionally with the given status.
func (s *Server) Count(path string, status ...int) int {
	var n int
	for _, hit := range s.Hits() {
		if hit.Path != path {
			continue
		}
		if len(status) > 0 && hit.Status != status[0] {
			continue
		}
		n++
	}
	return n
}

func (s *Server) ResetHits() {
	s.mu.Lock()
	s.hits = nil
	s.mu.Unlock()
}

// record stores a Hit right before the response header is written,
// so a client never observes a response its Hit is missing for.
func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req, res := ctx.Request(), ctx.Response()
		res.Before(func() {
			path := strings.TrimPrefix(req.URL.Path, BasePath)
			s.mu.Lock()
			s.hits = append(s.hits, Hit{
				Method:        req.Method,
				Path:          path,
				Status:        res.Status,
				Authorization: req.Header.Get(echo.HeaderAuthorization),
				CSRF:          req.Header.Get(auth.CSRFHeader),
			})
			s.mu.Unlock()
		})
		return next(ctx)
	}
}

func httpErrorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}
	_ = ctx.JSON(code, echo.Map{"message": msg})
}

func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusNotFound)
	}
	return id, nil
}

func sortedIDs(m map[int]classroom.Class) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
