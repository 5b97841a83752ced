package fakeapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/potencialize/dashboard/core/auth"
	"github.com/potencialize/dashboard/core/classroom"
)

func registerClassesAPI(g *echo.Group, s *Server) {
	classes := g.Group("/classes", s.authenticated())
	classes.GET("", s.listClasses)
	classes.POST("", s.createClass, adminOrTeacher)
	classes.GET("/:id", s.getClass)
	classes.PUT("/:id", s.updateClass)
	classes.DELETE("/:id", s.deleteClass, adminOnly)
}

func adminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if claims := contextClaims(ctx); claims == nil || claims.Role != auth.RoleAdmin {
			return errForbidden
		}
		return next(ctx)
	}
}

func adminOrTeacher(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims := contextClaims(ctx)
		if claims == nil || (claims.Role != auth.RoleAdmin && claims.Role != auth.RoleTeacher) {
			return errForbidden
		}
		return next(ctx)
	}
}

// SeedClass stores c as is (its id is assigned) and returns it.
func (s *Server) SeedClass(c classroom.Class) classroom.Class {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextClassID
	s.nextClassID++
	s.classes[c.ID] = c
	return c
}

// visible reports whether claims may see c: teachers only see their own classes.
func visible(claims *tokenClaims, c classroom.Class) bool {
	if claims.Role != auth.RoleTeacher {
		return true
	}
	return claims.TeacherID != nil && *claims.TeacherID == c.Teacher.ID
}

func (s *Server) listClasses(ctx echo.Context) error {
	claims := contextClaims(ctx)
	s.mu.Lock()
	list := make([]classroom.Class, 0, len(s.classes))
	for _, id := range sortedIDs(s.classes) {
		if c := s.classes[id]; visible(claims, c) {
			list = append(list, c)
		}
	}
	s.mu.Unlock()
	return ctx.JSON(http.StatusOK, list)
}

func (s *Server) getClass(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	c, ok := s.classes[id]
	s.mu.Unlock()
	if !ok || !visible(contextClaims(ctx), c) {
		return echo.NewHTTPError(http.StatusNotFound, "")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (s *Server) createClass(ctx echo.Context) error {
	var body classroom.ClassCreate
	if err := ctx.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid body")
	}
	if body.Name == "" {
		return ctx.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": "Validation error",
			"errors":  echo.Map{"name": "required"},
		})
	}

	teacher := classroom.Ref{}
	if claims := contextClaims(ctx); claims.Role == auth.RoleTeacher && claims.TeacherID != nil {
		teacher.ID = *claims.TeacherID
	} else if body.TeacherID != nil {
		teacher.ID = *body.TeacherID
	}

	s.mu.Lock()
	for _, c := range s.classes {
		if c.Name == body.Name && c.Year == body.Year {
			s.mu.Unlock()
			return echo.NewHTTPError(http.StatusConflict, "")
		}
	}
	s.mu.Unlock()

	c := s.SeedClass(classroom.Class{Name: body.Name, Year: body.Year, Teacher: teacher})
	return ctx.JSON(http.StatusCreated, c)
}

func (s *Server) updateClass(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var body classroom.ClassUpdate
	if err := ctx.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid body")
	}

	s.mu.Lock()
	c, ok := s.classes[id]
	if !ok || !visible(contextClaims(ctx), c) {
		s.mu.Unlock()
		return echo.NewHTTPError(http.StatusNotFound, "")
	}
	if body.Name != nil {
		c.Name = *body.Name
	}
	if body.Year != nil {
		c.Year = *body.Year
	}
	if body.TeacherID != nil {
		c.Teacher.ID = *body.TeacherID
	}
	s.classes[id] = c
	s.mu.Unlock()
	return ctx.JSON(http.StatusOK, c)
}

func (s *Server) deleteClass(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	_, ok := s.classes[id]
	delete(s.classes, id)
	s.mu.Unlock()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "")
	}
	return ctx.NoContent(http.StatusNoContent)
}
