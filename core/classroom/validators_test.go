package classroom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/potencialize/dashboard/core"
)

func strPtr(s string) *string { return &s }

func validAssessment() AssessmentCreate {
	return AssessmentCreate{
		Title:       "Prova bimestral",
		Date:        "2025-03-01T08:00",
		WeightMode:  WeightFixedAll,
		ClassID:     1,
		SubjectKind: "matematica",
	}
}

func TestValidate_AssessmentCreate(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(a *AssessmentCreate)
		wantFields map[string]string
	}{
		{name: "valid", modify: func(a *AssessmentCreate) {}},
		{
			name:       "date in another format",
			modify:     func(a *AssessmentCreate) { a.Date = "01/03/2025" },
			wantFields: map[string]string{"date": dateTimeText},
		},
		{
			name:       "date with seconds",
			modify:     func(a *AssessmentCreate) { a.Date = "2025-03-01T08:00:00" },
			wantFields: map[string]string{"date": dateTimeText},
		},
		{
			name:       "unknown subject",
			modify:     func(a *AssessmentCreate) { a.SubjectKind = "quimica" },
			wantFields: map[string]string{"subject_kind": subjectKindText},
		},
		{
			name:       "other subject needs a name",
			modify:     func(a *AssessmentCreate) { a.SubjectKind = SubjectOther },
			wantFields: map[string]string{"subject_other": "this field is required"},
		},
		{
			name: "other subject with a name",
			modify: func(a *AssessmentCreate) {
				a.SubjectKind = SubjectOther
				a.SubjectOther = strPtr("filosofia")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validAssessment()
			tt.modify(&payload)

			err := Validate(payload)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantFields, core.TranslateErrors(err))
		})
	}
}

func TestValidate_AssessmentUpdate(t *testing.T) {
	badKind := SubjectKind("quimica")
	goodKind := SubjectKind("historia")
	tests := []struct {
		name       string
		payload    AssessmentUpdate
		wantFields map[string]string
	}{
		{name: "empty update", payload: AssessmentUpdate{}},
		{name: "valid date", payload: AssessmentUpdate{Date: strPtr("2025-11-30T13:45"), SubjectKind: &goodKind}},
		{name: "bad date", payload: AssessmentUpdate{Date: strPtr("2025-11-30")}, wantFields: map[string]string{"date": dateTimeText}},
		{name: "bad subject", payload: AssessmentUpdate{SubjectKind: &badKind}, wantFields: map[string]string{"subject_kind": subjectKindText}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.payload)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantFields, core.TranslateErrors(err))
		})
	}
}

func TestSubjectKind_Valid(t *testing.T) {
	tests := []struct {
		kind SubjectKind
		want bool
	}{
		{kind: "portugues", want: true},
		{kind: "educacao_fisica", want: true},
		{kind: SubjectOther, want: true},
		{kind: "Portugues", want: false},
		{kind: "", want: false},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Valid())
		})
	}
}
