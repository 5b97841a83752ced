package classroom

import (
	"encoding/json"
	"time"
)

type (
	WeightMode   string
	SkillLevel   string
	Option       string
	SubjectKind  string
	GradingBasis string
)

const (
	WeightFixedAll    WeightMode = "fixed_all"
	WeightBySkill     WeightMode = "by_skill"
	WeightPerQuestion WeightMode = "per_question"

	SkillBelow    SkillLevel = "abaixo"
	SkillBasic    SkillLevel = "basico"
	SkillAdequate SkillLevel = "adequado"
	SkillAdvanced SkillLevel = "avancado"

	SubjectOther SubjectKind = "outro"

	BasisByPoints   GradingBasis = "by_points"
	BasisByAccuracy GradingBasis = "by_accuracy"
)

// DateTimeLayout is the wire format of assessment dates.
const DateTimeLayout = "2006-01-02T15:04"

// Page is the envelope of every paginated list.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

type Ref struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type AssessmentRef struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Classes

type Class struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Year        int             `json:"year"`
	Teacher     Ref             `json:"teacher"`
	Students    []Ref           `json:"students,omitempty"`
	Assessments []AssessmentRef `json:"assessments,omitempty"`
}

type ClassCreate struct {
	Name      string `json:"name" validate:"required,max=120"`
	Year      int    `json:"year" validate:"required,min=1900,max=2999"`
	TeacherID *int   `json:"teacher_id,omitempty" validate:"omitempty,min=1"` // teachers: taken from the token server side
}

type ClassUpdate struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Year      *int    `json:"year,omitempty" validate:"omitempty,min=1900,max=2999"`
	TeacherID *int    `json:"teacher_id,omitempty" validate:"omitempty,min=1"`
}

// Students

type Student struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	RegisterCode string `json:"register_code"`
	ClassID      int    `json:"class_id"`
}

type StudentCreate struct {
	Name         string `json:"name" validate:"required,max=120"`
	RegisterCode string `json:"register_code,omitempty" validate:"omitempty,alphanum_,max=40"`
	ClassID      int    `json:"class_id" validate:"required,min=1"`
}

type StudentUpdate struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	RegisterCode *string `json:"register_code,omitempty" validate:"omitempty,alphanum_,max=40"`
	ClassID      *int    `json:"class_id,omitempty" validate:"omitempty,min=1"`
}

type StudentBulkItem struct {
	Name         string `json:"name" validate:"required,max=120"`
	RegisterCode string `json:"register_code,omitempty" validate:"omitempty,alphanum_,max=40"`
	ClassID      int    `json:"class_id,omitempty" validate:"omitempty,min=1"`
}

type StudentBulk struct {
	ClassID int               `json:"class_id,omitempty" validate:"omitempty,min=1"`
	Items   []StudentBulkItem `json:"items" validate:"required,min=1,dive"`
}

type StudentFilter struct {
	Page         int
	PerPage      int
	ClassID      int
	Name         string
	RegisterCode string
	Sort         string // ex.: "name,-created_at"
}

// Assessments

type Assessment struct {
	ID           int         `json:"id"`
	Title        string      `json:"title"`
	Date         string      `json:"date"` // DateTimeLayout
	WeightMode   WeightMode  `json:"weight_mode"`
	ClassID      int         `json:"class_id"`
	SubjectKind  SubjectKind `json:"subject_kind,omitempty"`
	SubjectOther *string     `json:"subject_other,omitempty"`
}

// When parses Date.
func (a Assessment) When() (time.Time, error) {
	return time.Parse(DateTimeLayout, a.Date)
}

type AssessmentCreate struct {
	Title        string      `json:"title" validate:"required,max=200"`
	Date         string      `json:"date" validate:"required,datetime_min"`
	WeightMode   WeightMode  `json:"weight_mode" validate:"required,oneof=fixed_all by_skill per_question"`
	ClassID      int         `json:"class_id" validate:"required,min=1"`
	SubjectKind  SubjectKind `json:"subject_kind" validate:"required,subject_kind"`
	SubjectOther *string     `json:"subject_other,omitempty" validate:"required_if=SubjectKind outro"`
}

type AssessmentUpdate struct {
	Title        *string      `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Date         *string      `json:"date,omitempty" validate:"omitempty,datetime_min"`
	WeightMode   *WeightMode  `json:"weight_mode,omitempty" validate:"omitempty,oneof=fixed_all by_skill per_question"`
	ClassID      *int         `json:"class_id,omitempty" validate:"omitempty,min=1"`
	SubjectKind  *SubjectKind `json:"subject_kind,omitempty" validate:"omitempty,subject_kind"`
	SubjectOther *string      `json:"subject_other,omitempty"`
}

// Overview is computed server side; its sections are kept opaque.
type Overview struct {
	Assessment json.RawMessage   `json:"assessment"`
	Population json.RawMessage   `json:"population"`
	Overall    json.RawMessage   `json:"overall"`
	BySkill    []json.RawMessage `json:"by_skill"`
	ByQuestion []json.RawMessage `json:"by_question"`
	Hardest    json.RawMessage   `json:"hardest"`
	Easiest    json.RawMessage   `json:"easiest"`
}

type MatrixQuestion struct {
	ID            int        `json:"id"`
	SkillLevel    SkillLevel `json:"skill_level"`
	Weight        float64    `json:"weight"`
	CorrectOption Option     `json:"correct_option"`
}

type MatrixCell struct {
	StudentID    int    `json:"student_id"`
	QuestionID   int    `json:"question_id"`
	MarkedOption Option `json:"marked_option,omitempty"`
	IsCorrect    bool   `json:"is_correct"`
}

type MatrixPagination struct {
	Page          int `json:"page"`
	PerPage       int `json:"per_page"`
	TotalStudents int `json:"total_students"`
	TotalPages    int `json:"total_pages"`
}

type Matrix struct {
	Assessment struct {
		ID      int    `json:"id"`
		ClassID int    `json:"class_id"`
		Title   string `json:"title"`
	} `json:"assessment"`
	Questions  []MatrixQuestion `json:"questions"`
	Students   []Ref            `json:"students"`
	Cells      []MatrixCell     `json:"cells"`
	Pagination MatrixPagination `json:"pagination"`
}

type SkillWeight struct {
	SkillLevel SkillLevel `json:"skill_level" validate:"required,oneof=abaixo basico adequado avancado"`
	Weight     float64    `json:"weight" validate:"gte=0"`
}

type SkillWeights struct {
	Items []SkillWeight `json:"items" validate:"required,dive"`
}

type GradingPolicyIn struct {
	Basis             GradingBasis `json:"basis" validate:"required,oneof=by_points by_accuracy"`
	CountBlankAsWrong bool         `json:"count_blank_as_wrong"`
	AdvancedMin       float64      `json:"advanced_min" validate:"gte=0,lte=100,gtefield=AdequateMin"`
	AdequateMin       float64      `json:"adequate_min" validate:"gte=0,lte=100,gtefield=BasicMin"`
	BasicMin          float64      `json:"basic_min" validate:"gte=0,lte=100"`
}

type GradingPolicy struct {
	GradingPolicyIn
	AssessmentID int `json:"assessment_id"`
}

// Questions

type Question struct {
	ID            int        `json:"id"`
	Text          string     `json:"text"`
	SkillLevel    SkillLevel `json:"skill_level"`
	Weight        float64    `json:"weight"`
	CorrectOption Option     `json:"correct_option"`
	AssessmentID  int        `json:"assessment_id"`
	DescriptorID  *int       `json:"descriptor_id,omitempty"`
}

type QuestionCreate struct {
	Text          string     `json:"text" validate:"required"`
	SkillLevel    SkillLevel `json:"skill_level" validate:"required,oneof=abaixo basico adequado avancado"`
	Weight        float64    `json:"weight" validate:"gt=0"`
	CorrectOption Option     `json:"correct_option" validate:"required,oneof=a b c d e"`
	AssessmentID  int        `json:"assessment_id" validate:"required,min=1"`
	DescriptorID  *int       `json:"descriptor_id,omitempty" validate:"omitempty,min=1"`
}

type QuestionUpdate struct {
	Text          *string     `json:"text,omitempty" validate:"omitempty,min=1"`
	SkillLevel    *SkillLevel `json:"skill_level,omitempty" validate:"omitempty,oneof=abaixo basico adequado avancado"`
	Weight        *float64    `json:"weight,omitempty" validate:"omitempty,gt=0"`
	CorrectOption *Option     `json:"correct_option,omitempty" validate:"omitempty,oneof=a b c d e"`
	DescriptorID  *int        `json:"descriptor_id,omitempty" validate:"omitempty,min=1"`
}

type QuestionBulk struct {
	Items []QuestionCreate `json:"items" validate:"required,min=1,dive"`
}

type QuestionFilter struct {
	Page          int
	PerPage       int
	AssessmentID  int
	SkillLevel    SkillLevel
	CorrectOption Option
	DescriptorID  int
	Sort          string
}

type QuestionResultQuery struct {
	StudentID     int
	RevealCorrect *bool
}

// Student answers

type StudentAnswer struct {
	ID           int    `json:"id"`
	StudentID    int    `json:"student_id"`
	QuestionID   int    `json:"question_id"`
	MarkedOption Option `json:"marked_option"`
}

type StudentAnswerCreate struct {
	StudentID    int    `json:"student_id" validate:"required,min=1"`
	QuestionID   int    `json:"question_id" validate:"required,min=1"`
	MarkedOption Option `json:"marked_option" validate:"required,oneof=a b c d e"`
}

type StudentAnswerUpdate struct {
	MarkedOption Option `json:"marked_option" validate:"required,oneof=a b c d e"`
}

type StudentAnswerBulk struct {
	Items []StudentAnswerCreate `json:"items" validate:"required,min=1,dive"`
}

type ResultAnswer struct {
	AnswerID     int    `json:"answer_id"`
	QuestionID   int    `json:"question_id"`
	MarkedOption Option `json:"marked_option"`
	IsCorrect    bool   `json:"is_correct"`
}

type StudentResults struct {
	Student struct {
		ID      int    `json:"id"`
		Name    string `json:"name"`
		ClassID int    `json:"class_id"`
	} `json:"student"`
	Assessment AssessmentRef  `json:"assessment"`
	Answers    []ResultAnswer `json:"answers"`
	Summary    struct {
		Answered int     `json:"answered"`
		Correct  int     `json:"correct"`
		Accuracy float64 `json:"accuracy"` // 0..1
	} `json:"summary"`
	Score struct {
		Basis   GradingBasis `json:"basis"`
		Percent float64      `json:"percent"` // 0..100
		Totals  struct {
			Questions     int     `json:"questions"`
			Answered      int     `json:"answered"`
			Correct       int     `json:"correct"`
			PointsTotal   float64 `json:"points_total"`
			PointsCorrect float64 `json:"points_correct"`
		} `json:"totals"`
	} `json:"score"`
	PredictedLevel struct {
		Key   string `json:"key"`
		Label string `json:"label"`
		Color string `json:"color"`
	} `json:"predicted_level"`
	Policy GradingPolicyIn `json:"policy"`
}

// Teachers

type Teacher struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type TeacherFilter struct {
	Page    int
	PerPage int
	Q       string
	Role    string
	Sort    string
}
