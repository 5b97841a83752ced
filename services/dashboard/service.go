// Package dashboard exposes the classroom resources of the REST API as typed calls.
package dashboard

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/potencialize/dashboard/core/classroom"
	"github.com/potencialize/dashboard/services/apiclient"
)

// API performs an authenticated JSON call. *apiclient.Client implements it.
type API interface {
	Call(ctx context.Context, r *apiclient.Request, out interface{}) error
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

func (svc *Service) get(ctx context.Context, path string, query url.Values, fields string, out interface{}) error {
	return svc.api.Call(ctx, &apiclient.Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
		Header: fieldsHeader(fields),
	}, out)
}

// send validates payload before sending it.
func (svc *Service) send(ctx context.Context, method, path string, payload, out interface{}) error {
	if err := classroom.Validate(payload); err != nil {
		return err
	}
	return svc.api.Call(ctx, &apiclient.Request{Method: method, Path: path, Body: payload}, out)
}

func (svc *Service) remove(ctx context.Context, path string) error {
	return svc.api.Call(ctx, &apiclient.Request{Method: http.MethodDelete, Path: path}, nil)
}

// fieldsHeader builds the X-Fields header (nil when fields is empty).
func fieldsHeader(fields string) http.Header {
	if fields == "" {
		return nil
	}
	return http.Header{apiclient.HeaderFields: []string{fields}}
}

func itemPath(prefix string, id int) string {
	return prefix + strconv.Itoa(id)
}

// query accumulates the non-zero parameters of a list call.
type query url.Values

func (q query) setInt(key string, val int) query {
	if val > 0 {
		url.Values(q).Set(key, strconv.Itoa(val))
	}
	return q
}

func (q query) setString(key, val string) query {
	if val != "" {
		url.Values(q).Set(key, val)
	}
	return q
}

func (q query) setBool(key string, val *bool) query {
	if val != nil {
		url.Values(q).Set(key, strconv.FormatBool(*val))
	}
	return q
}

func (q query) values() url.Values { return url.Values(q) }
