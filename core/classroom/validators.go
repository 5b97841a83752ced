package classroom

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/potencialize/dashboard/core"
)

var (
	dateTimeTag  = "datetime_min"
	dateTimeText = "expected a date like 2024-03-01T08:00"

	subjectKindTag  = "subject_kind"
	subjectKindText = "unknown subject"

	SubjectKinds = []SubjectKind{
		"portugues", "matematica", "ciencias", "historia", "geografia", "ingles",
		"artes", "educacao_fisica", "tecnologia", "redacao", "geral", SubjectOther,
	}
)

func init() {
	InitValidators(core.Validate, core.Translator)
}

// InitValidators registers the classroom validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(dateTimeTag, dateTimeValidation)
	core.RegisterCustomTranslation(validate, translator, dateTimeTag, dateTimeText)

	_ = validate.RegisterValidation(subjectKindTag, subjectKindValidation)
	core.RegisterCustomTranslation(validate, translator, subjectKindTag, subjectKindText)
}

func (k SubjectKind) Valid() bool {
	for _, kind := range SubjectKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func dateTimeValidation(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateTimeLayout, fl.Field().String())
	return err == nil
}

func subjectKindValidation(fl validator.FieldLevel) bool {
	return SubjectKind(fl.Field().String()).Valid()
}

// Validate runs the struct validation of any payload of this package.
func Validate(payload interface{}) error {
	return core.Validate.Struct(payload)
}
