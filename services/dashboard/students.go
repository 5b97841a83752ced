package dashboard

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/potencialize/dashboard/core/classroom"
)

const (
	studentsPath = "/students/"

	// allStudentsPerPage and allStudentsSort drive ListAllStudentsByClass.
	allStudentsPerPage = 100
	allStudentsSort    = "name,-created_at"
)

func (svc *Service) ListStudents(ctx context.Context, filter classroom.StudentFilter) (classroom.Page[classroom.Student], error) {
	q := make(query).
		setInt("page", filter.Page).
		setInt("per_page", filter.PerPage).
		setInt("class_id", filter.ClassID).
		setString("name", filter.Name).
		setString("register_code", filter.RegisterCode).
		setString("sort", filter.Sort)

	var page classroom.Page[classroom.Student]
	err := svc.get(ctx, studentsPath, q.values(), "", &page)
	return page, err
}

// ListAllStudentsByClass walks every page of the class roster, sorted by name.
func (svc *Service) ListAllStudentsByClass(ctx context.Context, classID int) ([]classroom.Student, error) {
	var students []classroom.Student
	for p := 1; ; p++ {
		page, err := svc.ListStudents(ctx, classroom.StudentFilter{
			Page:    p,
			PerPage: allStudentsPerPage,
			ClassID: classID,
			Sort:    allStudentsSort,
		})
		if err != nil {
			return nil, err
		}
		students = append(students, page.Items...)
		if p >= page.TotalPages || len(page.Items) == 0 {
			return students, nil
		}
	}
}

func (svc *Service) GetStudent(ctx context.Context, id int) (classroom.Student, error) {
	var student classroom.Student
	err := svc.get(ctx, itemPath(studentsPath, id), nil, "", &student)
	return student, err
}

func (svc *Service) CreateStudent(ctx context.Context, payload classroom.StudentCreate) (classroom.Student, error) {
	var student classroom.Student
	err := svc.send(ctx, http.MethodPost, studentsPath, payload, &student)
	return student, err
}

func (svc *Service) UpdateStudent(ctx context.Context, id int, payload classroom.StudentUpdate) (classroom.Student, error) {
	var student classroom.Student
	err := svc.send(ctx, http.MethodPut, itemPath(studentsPath, id), payload, &student)
	return student, err
}

func (svc *Service) DeleteStudent(ctx context.Context, id int) error {
	return svc.remove(ctx, itemPath(studentsPath, id))
}

// BulkCreateStudents returns the server report as is.
func (svc *Service) BulkCreateStudents(ctx context.Context, payload classroom.StudentBulk) (json.RawMessage, error) {
	var report json.RawMessage
	err := svc.send(ctx, http.MethodPost, studentsPath+"bulk", payload, &report)
	return report, err
}

// StudentResults returns the answers and score of a student in an assessment.
func (svc *Service) StudentResults(ctx context.Context, studentID, assessmentID int) (classroom.StudentResults, error) {
	var results classroom.StudentResults
	path := itemPath(studentsPath, studentID) + itemPath("/assessments/", assessmentID) + "/results"
	err := svc.get(ctx, path, nil, "", &results)
	return results, err
}
