package fakeapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/potencialize/dashboard/core"
	"github.com/potencialize/dashboard/core/auth"
)

const (
	accessCookie  = auth.AccessCookie
	refreshCookie = auth.RefreshCookie

	typeAccess  = "access"
	typeRefresh = "refresh"

	contextClaimsKey = "claims"
)

var (
	errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	errExpired      = echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
	errForbidden    = echo.NewHTTPError(http.StatusForbidden, "Forbidden")
)

type tokenClaims struct {
	jwt.StandardClaims
	Type      string    `json:"type"`
	Epoch     int       `json:"epoch"`
	CSRF      string    `json:"csrf"`
	Role      auth.Role `json:"role"`
	TeacherID *int      `json:"teacher_id,omitempty"`
}

func (s *Server) issue(email string, acc account, typ string) (string, *tokenClaims, error) {
	s.mu.Lock()
	epoch := s.accessEpoch
	if typ == typeRefresh {
		epoch = s.refreshEpoch
	}
	s.mu.Unlock()

	now := time.Now()
	claims := &tokenClaims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   email,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(time.Hour).Unix(),
		},
		Type:      typ,
		Epoch:     epoch,
		CSRF:      uuid.NewString(),
		Role:      acc.role,
		TeacherID: acc.teacherID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", nil, errors.Wrap(err, "signing token")
	}
	return token, claims, nil
}

// verify parses token and checks its type, epoch and revocation.
func (s *Server) verify(token, typ string) (*tokenClaims, error) {
	claims := new(tokenClaims)
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	})
	if err != nil || claims.Type != typ {
		return nil, errUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	epoch := s.accessEpoch
	if typ == typeRefresh {
		epoch = s.refreshEpoch
	}
	if claims.Epoch != epoch || s.revoked[claims.Id] {
		return nil, errExpired
	}
	return claims, nil
}

// credential returns the token of the given type sent with the request.
func (s *Server) credential(ctx echo.Context, typ string) string {
	if s.mode == core.AuthModeCookie {
		name := accessCookie
		if typ == typeRefresh {
			name = refreshCookie
		}
		cookie, err := ctx.Cookie(name)
		if err != nil {
			return ""
		}
		return cookie.Value
	}
	header := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// checkCSRF enforces the double submit rule of cookie mode on mutating requests.
func (s *Server) checkCSRF(ctx echo.Context, claims *tokenClaims) error {
	if s.mode != core.AuthModeCookie {
		return nil
	}
	switch ctx.Request().Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return nil
	}
	if ctx.Request().Header.Get(auth.CSRFHeader) != claims.CSRF {
		return echo.NewHTTPError(http.StatusUnauthorized, "CSRF double submit tokens do not match")
	}
	return nil
}

func (s *Server) authenticated(roles ...auth.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token := s.credential(ctx, typeAccess)
			if token == "" {
				return errUnauthorized
			}
			claims, err := s.verify(token, typeAccess)
			if err != nil {
				return err
			}
			if err := s.checkCSRF(ctx, claims); err != nil {
				return err
			}
			if len(roles) > 0 && !(auth.Session{Role: claims.Role}).HasAnyRole(roles...) {
				return errForbidden
			}
			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}

func contextClaims(ctx echo.Context) *tokenClaims {
	claims, _ := ctx.Get(contextClaimsKey).(*tokenClaims)
	return claims
}

func (s *Server) setCookie(ctx echo.Context, name, value string, httpOnly bool) {
	cookie := &http.Cookie{Name: name, Value: value, Path: "/", HttpOnly: httpOnly}
	if value == "" {
		cookie.MaxAge = -1
	}
	ctx.SetCookie(cookie)
}

func (s *Server) login(ctx echo.Context) error {
	var body auth.LoginBody
	if err := ctx.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid body")
	}

	s.mu.Lock()
	acc, ok := s.accounts[strings.ToLower(body.Email)]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acc.hash, []byte(body.Password)) != nil {
		return errUnauthorized
	}

	access, accessClaims, err := s.issue(body.Email, acc, typeAccess)
	if err != nil {
		return err
	}
	refresh, refreshClaims, err := s.issue(body.Email, acc, typeRefresh)
	if err != nil {
		return err
	}

	res := auth.LoginResponse{AccessToken: access, Role: acc.role, TeacherID: acc.teacherID}
	if s.mode == core.AuthModeCookie {
		s.setCookie(ctx, accessCookie, access, true)
		s.setCookie(ctx, refreshCookie, refresh, true)
		s.setCookie(ctx, auth.CSRFAccessCookie, accessClaims.CSRF, false)
		s.setCookie(ctx, auth.CSRFRefreshCookie, refreshClaims.CSRF, false)
	} else {
		res.RefreshToken = refresh
	}
	return ctx.JSON(http.StatusOK, res)
}

func (s *Server) refresh(ctx echo.Context) error {
	s.mu.Lock()
	gate := s.refreshGate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Request().Context().Done():
			return ctx.Request().Context().Err()
		}
	}

	token := s.credential(ctx, typeRefresh)
	if token == "" {
		return errUnauthorized
	}
	claims, err := s.verify(token, typeRefresh)
	if err != nil {
		return err
	}
	if err := s.checkCSRF(ctx, claims); err != nil {
		return err
	}

	acc := account{role: claims.Role, teacherID: claims.TeacherID}
	access, accessClaims, err := s.issue(claims.Subject, acc, typeAccess)
	if err != nil {
		return err
	}
	if s.mode == core.AuthModeCookie {
		s.setCookie(ctx, accessCookie, access, true)
		s.setCookie(ctx, auth.CSRFAccessCookie, accessClaims.CSRF, false)
	}
	return ctx.JSON(http.StatusOK, auth.RefreshResponse{AccessToken: access})
}

// logout clears the cookies (cookie mode).
func (s *Server) logout(ctx echo.Context) error {
	if token := s.credential(ctx, typeRefresh); token != "" {
		if claims, err := s.verify(token, typeRefresh); err == nil {
			s.revoke(claims.Id)
		}
	}
	for _, name := range []string{accessCookie, refreshCookie, auth.CSRFAccessCookie, auth.CSRFRefreshCookie} {
		s.setCookie(ctx, name, "", name == accessCookie || name == refreshCookie)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// logoutRefresh revokes the refresh token it is authenticated with (bearer mode).
func (s *Server) logoutRefresh(ctx echo.Context) error {
	token := s.credential(ctx, typeRefresh)
	if token == "" {
		return errUnauthorized
	}
	claims, err := s.verify(token, typeRefresh)
	if err != nil {
		return err
	}
	s.revoke(claims.Id)
	return ctx.JSON(http.StatusOK, echo.Map{"message": "refresh token revoked"})
}

func (s *Server) revoke(jti string) {
	s.mu.Lock()
	s.revoked[jti] = true
	s.mu.Unlock()
}
