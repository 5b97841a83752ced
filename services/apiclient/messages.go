package apiclient

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/potencialize/dashboard/core"
)

const (
	msgUnexpected = "Unexpected error."
	msgFallback   = "Something went wrong. Try again."
	msgTimeout    = "Request timed out. Try again."
	msgNetwork    = "Network failure. Check your connection and try again."
	msgBadLogin   = "Incorrect email or password."
)

var defaultMessages = map[int]string{
	http.StatusUnauthorized:        "Not authenticated.",
	http.StatusForbidden:           "Forbidden.",
	http.StatusNotFound:            "Not found.",
	http.StatusConflict:            "Conflict/duplicate.",
	http.StatusUnprocessableEntity: "Validation failed: check the fields.",
}

type routeRule struct {
	name     string
	re       *regexp.Regexp // path without base path
	methods  []string       // any method when empty
	messages map[int]string
}

func (r routeRule) matches(method, path string) bool {
	if !r.re.MatchString(path) {
		return false
	}
	if len(r.methods) == 0 {
		return true
	}
	for _, m := range r.methods {
		if m == method {
			return true
		}
	}
	return false
}

const ruleLogin = "auth_login"

var (
	badLoginRegex = regexp.MustCompile(`(?i)not authenticated|unauthorized`)

	// routeErrorRules are checked in order, first match wins.
	routeErrorRules = []routeRule{
		{name: ruleLogin, re: regexp.MustCompile(`^/auth/login$`), methods: []string{http.MethodPost}, messages: map[int]string{401: msgBadLogin}},
		{name: "classes_list", re: regexp.MustCompile(`^/classes/?$`), methods: []string{http.MethodGet}, messages: map[int]string{403: "Permission denied for teachers."}},
		{name: "classes_detail", re: regexp.MustCompile(`^/classes/\d+$`), methods: []string{http.MethodGet}, messages: map[int]string{404: "Class not found."}},
		{name: "teachers_post", re: regexp.MustCompile(`^/teachers/?$`), methods: []string{http.MethodPost}, messages: map[int]string{409: "Email already in use."}},
		{name: "teachers_put", re: regexp.MustCompile(`^/teachers/\d+$`), methods: []string{http.MethodPut}, messages: map[int]string{409: "Email already in use."}},
		{
			name: "student_answers_post", re: regexp.MustCompile(`^/student-answers/?$`), methods: []string{http.MethodPost},
			messages: map[int]string{409: "Duplicate.", 404: "Student/question not found."},
		},
		{
			name: "student_answers_bulk", re: regexp.MustCompile(`^/student-answers/bulk$`), methods: []string{http.MethodPost},
			messages: map[int]string{409: "Duplicate (payload or database).", 404: "Student/question not found."},
		},
		{name: "student_answer_detail", re: regexp.MustCompile(`^/student-answers/\d+$`), methods: []string{http.MethodGet, http.MethodPut, http.MethodDelete}, messages: map[int]string{404: "Answer not found."}},
		{name: "students_bulk", re: regexp.MustCompile(`^/students/bulk$`), methods: []string{http.MethodPost}, messages: map[int]string{404: "Class not found."}},
		{name: "questions_bulk", re: regexp.MustCompile(`^/questions/bulk(?:/\d+)?$`), methods: []string{http.MethodPost}, messages: map[int]string{404: "Assessment not found."}},
		{name: "questions_detail", re: regexp.MustCompile(`^/questions/\d+$`), methods: []string{http.MethodGet, http.MethodPut, http.MethodDelete}, messages: map[int]string{404: "Question not found."}},
		{name: "assessments_matrix", re: regexp.MustCompile(`^/assessments/\d+/analytics/matrix$`), methods: []string{http.MethodGet}, messages: map[int]string{404: "Assessment not found."}},
		{name: "assessments_overview", re: regexp.MustCompile(`^/assessments/\d+/analytics/overview$`), methods: []string{http.MethodGet}, messages: map[int]string{404: "Assessment not found."}},
	}
)

// MessageFor returns the user-facing message of a failed call.
// A non-blank server message is preferred over the route and default messages.
func MessageFor(method, rawURL string, status int, serverMsg string) string {
	method = strings.ToUpper(method)
	if method == "" {
		method = http.MethodGet
	}
	p := stripOriginAndBasePath(rawURL)

	var rule *routeRule
	for i := range routeErrorRules {
		if routeErrorRules[i].matches(method, p) {
			rule = &routeErrorRules[i]
			break
		}
	}

	msg := serverMsg
	if strings.TrimSpace(msg) == "" {
		switch {
		case rule != nil && rule.messages[status] != "":
			msg = rule.messages[status]
		case defaultMessages[status] != "":
			msg = defaultMessages[status]
		default:
			msg = msgUnexpected
		}
	}

	if status == http.StatusUnauthorized && rule != nil && rule.name == ruleLogin && badLoginRegex.MatchString(msg) {
		msg = msgBadLogin
	}
	return msg
}

// Normalize shapes any error returned by the client for display.
func Normalize(err error) core.NormalizedError {
	if err == nil {
		return core.NormalizedError{}
	}

	var aErr *core.APIError
	if errors.As(err, &aErr) {
		return core.NormalizedError{Status: aErr.Status, Message: aErr.Message, Details: aErr.Details}
	}

	var cErr *core.ConnectivityError
	if errors.As(err, &cErr) {
		if cErr.Timeout {
			return core.NormalizedError{Message: msgTimeout}
		}
		return core.NormalizedError{Message: msgNetwork}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return core.NormalizedError{Message: msgTimeout}
	}

	if fields := core.TranslateErrors(err); fields != nil {
		return core.NormalizedError{
			Status:  http.StatusUnprocessableEntity,
			Message: defaultMessages[http.StatusUnprocessableEntity],
			Details: fields,
		}
	}

	if msg := err.Error(); msg != "" {
		return core.NormalizedError{Message: msg}
	}
	return core.NormalizedError{Message: msgFallback}
}
