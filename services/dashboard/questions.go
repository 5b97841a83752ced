package dashboard

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/potencialize/dashboard/core/classroom"
)

const questionsPath = "/questions/"

func (svc *Service) ListQuestions(ctx context.Context, filter classroom.QuestionFilter) (classroom.Page[classroom.Question], error) {
	q := make(query).
		setInt("page", filter.Page).
		setInt("per_page", filter.PerPage).
		setInt("assessment_id", filter.AssessmentID).
		setString("skill_level", string(filter.SkillLevel)).
		setString("correct_option", string(filter.CorrectOption)).
		setInt("descriptor_id", filter.DescriptorID).
		setString("sort", filter.Sort)

	var page classroom.Page[classroom.Question]
	err := svc.get(ctx, questionsPath, q.values(), "", &page)
	return page, err
}

func (svc *Service) GetQuestion(ctx context.Context, id int) (classroom.Question, error) {
	var question classroom.Question
	err := svc.get(ctx, itemPath(questionsPath, id), nil, "", &question)
	return question, err
}

func (svc *Service) CreateQuestion(ctx context.Context, payload classroom.QuestionCreate) (classroom.Question, error) {
	var question classroom.Question
	err := svc.send(ctx, http.MethodPost, questionsPath, payload, &question)
	return question, err
}

func (svc *Service) UpdateQuestion(ctx context.Context, id int, payload classroom.QuestionUpdate) (classroom.Question, error) {
	var question classroom.Question
	err := svc.send(ctx, http.MethodPut, itemPath(questionsPath, id), payload, &question)
	return question, err
}

func (svc *Service) DeleteQuestion(ctx context.Context, id int) error {
	return svc.remove(ctx, itemPath(questionsPath, id))
}

// BulkCreateQuestions creates items under assessmentID (the path sets their assessment).
func (svc *Service) BulkCreateQuestions(ctx context.Context, assessmentID int, items []classroom.QuestionCreate) (json.RawMessage, error) {
	bulk := classroom.QuestionBulk{Items: make([]classroom.QuestionCreate, len(items))}
	for i, item := range items {
		if item.AssessmentID == 0 {
			item.AssessmentID = assessmentID
		}
		bulk.Items[i] = item
	}
	var report json.RawMessage
	err := svc.send(ctx, http.MethodPost, itemPath(questionsPath+"bulk/", assessmentID), bulk, &report)
	return report, err
}

// QuestionResult returns the answer statistics of a question, optionally for one student.
func (svc *Service) QuestionResult(ctx context.Context, id int, rq classroom.QuestionResultQuery) (json.RawMessage, error) {
	q := make(query).
		setInt("student_id", rq.StudentID).
		setBool("reveal_correct", rq.RevealCorrect)

	var result json.RawMessage
	err := svc.get(ctx, itemPath(questionsPath, id)+"/result", q.values(), "", &result)
	return result, err
}
