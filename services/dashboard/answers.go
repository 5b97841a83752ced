package dashboard

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/potencialize/dashboard/core/classroom"
)

const answersPath = "/student-answers/"

func (svc *Service) CreateAnswer(ctx context.Context, payload classroom.StudentAnswerCreate) (classroom.StudentAnswer, error) {
	var answer classroom.StudentAnswer
	err := svc.send(ctx, http.MethodPost, answersPath, payload, &answer)
	return answer, err
}

func (svc *Service) UpdateAnswer(ctx context.Context, id int, payload classroom.StudentAnswerUpdate) (classroom.StudentAnswer, error) {
	var answer classroom.StudentAnswer
	err := svc.send(ctx, http.MethodPut, itemPath(answersPath, id), payload, &answer)
	return answer, err
}

func (svc *Service) DeleteAnswer(ctx context.Context, id int) error {
	return svc.remove(ctx, itemPath(answersPath, id))
}

// BulkCreateAnswers only inserts: a duplicated answer fails the whole call with 409.
func (svc *Service) BulkCreateAnswers(ctx context.Context, items []classroom.StudentAnswerCreate) (json.RawMessage, error) {
	var report json.RawMessage
	err := svc.send(ctx, http.MethodPost, answersPath+"bulk", classroom.StudentAnswerBulk{Items: items}, &report)
	return report, err
}
