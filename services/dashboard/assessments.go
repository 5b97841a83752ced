package dashboard

import (
	"context"
	"net/http"

	"github.com/potencialize/dashboard/core/classroom"
)

const assessmentsPath = "/assessments/"

type MatrixQuery struct {
	StudentsPage int
	PerPage      int
}

func (svc *Service) ListAssessments(ctx context.Context, fields string) ([]classroom.Assessment, error) {
	var assessments []classroom.Assessment
	if err := svc.get(ctx, assessmentsPath, nil, fields, &assessments); err != nil {
		return nil, err
	}
	return assessments, nil
}

func (svc *Service) GetAssessment(ctx context.Context, id int, fields string) (classroom.Assessment, error) {
	var assessment classroom.Assessment
	err := svc.get(ctx, itemPath(assessmentsPath, id), nil, fields, &assessment)
	return assessment, err
}

func (svc *Service) CreateAssessment(ctx context.Context, payload classroom.AssessmentCreate) (classroom.Assessment, error) {
	var assessment classroom.Assessment
	err := svc.send(ctx, http.MethodPost, assessmentsPath, payload, &assessment)
	return assessment, err
}

func (svc *Service) UpdateAssessment(ctx context.Context, id int, payload classroom.AssessmentUpdate) (classroom.Assessment, error) {
	var assessment classroom.Assessment
	err := svc.send(ctx, http.MethodPut, itemPath(assessmentsPath, id), payload, &assessment)
	return assessment, err
}

func (svc *Service) DeleteAssessment(ctx context.Context, id int) error {
	return svc.remove(ctx, itemPath(assessmentsPath, id))
}

func (svc *Service) AssessmentOverview(ctx context.Context, id int, fields string) (classroom.Overview, error) {
	var overview classroom.Overview
	err := svc.get(ctx, itemPath(assessmentsPath, id)+"/analytics/overview", nil, fields, &overview)
	return overview, err
}

// AssessmentMatrix returns one page of the students x questions answer matrix.
func (svc *Service) AssessmentMatrix(ctx context.Context, id int, mq MatrixQuery) (classroom.Matrix, error) {
	q := make(query).
		setInt("students_page", mq.StudentsPage).
		setInt("per_page", mq.PerPage)

	var matrix classroom.Matrix
	err := svc.get(ctx, itemPath(assessmentsPath, id)+"/analytics/matrix", q.values(), "", &matrix)
	return matrix, err
}

func (svc *Service) SkillWeights(ctx context.Context, id int) (classroom.SkillWeights, error) {
	var weights classroom.SkillWeights
	err := svc.get(ctx, itemPath(assessmentsPath, id)+"/skills-weights", nil, "", &weights)
	return weights, err
}

func (svc *Service) PutSkillWeights(ctx context.Context, id int, payload classroom.SkillWeights) (classroom.SkillWeights, error) {
	var weights classroom.SkillWeights
	err := svc.send(ctx, http.MethodPut, itemPath(assessmentsPath, id)+"/skills-weights", payload, &weights)
	return weights, err
}

func (svc *Service) GradingPolicy(ctx context.Context, id int, fields string) (classroom.GradingPolicy, error) {
	var policy classroom.GradingPolicy
	err := svc.get(ctx, itemPath(assessmentsPath, id)+"/grading-policy", nil, fields, &policy)
	return policy, err
}

func (svc *Service) PutGradingPolicy(ctx context.Context, id int, payload classroom.GradingPolicyIn) (classroom.GradingPolicy, error) {
	var policy classroom.GradingPolicy
	err := svc.send(ctx, http.MethodPut, itemPath(assessmentsPath, id)+"/grading-policy", payload, &policy)
	return policy, err
}
