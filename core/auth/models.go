package auth

import (
	"context"
	"strings"

	"github.com/potencialize/dashboard/core"
)

// Roles
const (
	RoleAdmin       Role = "admin"
	RoleCoordinator Role = "coordinator"
	RoleTeacher     Role = "teacher"
)

var (
	AllRoles = []Role{RoleAdmin, RoleCoordinator, RoleTeacher}

	rolePriorities = map[Role]int{
		RoleAdmin:       30,
		RoleCoordinator: 20,
		RoleTeacher:     10,
	}
)

type Role string

func (r Role) Valid() bool {
	_, ok := rolePriorities[r]
	return ok
}

func RolePriority(role Role) int {
	return rolePriorities[role]
}

// Session is who is logged in, as far as the client can tell.
// It is derived from the login payload or from decoded access claims.
type Session struct {
	Role      Role `json:"role"`
	TeacherID *int `json:"teacher_id,omitempty"`
}

func (s Session) IsAdmin() bool   { return s.Role == RoleAdmin }
func (s Session) IsTeacher() bool { return s.Role == RoleTeacher }

// HasAnyRole is true when roles is empty or the session role is one of them.
func (s Session) HasAnyRole(roles ...Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if s.Role == role {
			return true
		}
	}
	return false
}

type LoginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (lb *LoginBody) Validate() error {
	lb.Email = strings.ToLower(strings.TrimSpace(lb.Email))
	return core.Validate.Struct(lb)
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Role         Role   `json:"role"`
	TeacherID    *int   `json:"teacher_id,omitempty"`
}

func (lr LoginResponse) Session() Session {
	return Session{Role: lr.Role, TeacherID: lr.TeacherID}
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// API is the part of the REST API the session lifecycle relies on.
type API interface {
	Login(ctx context.Context, body LoginBody) (LoginResponse, error)
	Refresh(ctx context.Context) (RefreshResponse, error)
	// Logout invalidates the server-side session (cookie mode).
	Logout(ctx context.Context) error
	// LogoutRefresh invalidates the refresh credential (bearer mode).
	LogoutRefresh(ctx context.Context) error
}
