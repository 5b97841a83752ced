package dashboard

import (
	"context"

	"github.com/potencialize/dashboard/core/classroom"
)

func (svc *Service) ListTeachers(ctx context.Context, filter classroom.TeacherFilter) (classroom.Page[classroom.Teacher], error) {
	q := make(query).
		setInt("page", filter.Page).
		setInt("per_page", filter.PerPage).
		setString("q", filter.Q).
		setString("role", filter.Role).
		setString("sort", filter.Sort)

	var page classroom.Page[classroom.Teacher]
	err := svc.get(ctx, "/teachers/", q.values(), "", &page)
	return page, err
}
