package dashboard

import (
	"context"
	"net/http"

	"github.com/potencialize/dashboard/core/classroom"
)

const classesPath = "/classes/"

// ListClasses returns the classes visible to the session. fields is an optional X-Fields mask.
func (svc *Service) ListClasses(ctx context.Context, fields string) ([]classroom.Class, error) {
	var classes []classroom.Class
	if err := svc.get(ctx, classesPath, nil, fields, &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

func (svc *Service) GetClass(ctx context.Context, id int, fields string) (classroom.Class, error) {
	var class classroom.Class
	err := svc.get(ctx, itemPath(classesPath, id), nil, fields, &class)
	return class, err
}

func (svc *Service) CreateClass(ctx context.Context, payload classroom.ClassCreate) (classroom.Class, error) {
	var class classroom.Class
	err := svc.send(ctx, http.MethodPost, classesPath, payload, &class)
	return class, err
}

func (svc *Service) UpdateClass(ctx context.Context, id int, payload classroom.ClassUpdate) (classroom.Class, error) {
	var class classroom.Class
	err := svc.send(ctx, http.MethodPut, itemPath(classesPath, id), payload, &class)
	return class, err
}

func (svc *Service) DeleteClass(ctx context.Context, id int) error {
	return svc.remove(ctx, itemPath(classesPath, id))
}
