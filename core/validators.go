package core

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
)

const (
	DateLayout = "2006-01-02" // ISO 8601 calendar date

	MinGrade = 0.0
	MaxGrade = 10.0
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "{0} cannot be blank"

	gradeTag  = "grade"
	gradeText = fmt.Sprintf("{0} must be between %g and %g", MinGrade, MaxGrade)

	isoDateTag  = "isodate"
	isoDateText = "{0} must be a date formatted as YYYY-MM-DD"

	studentIDTag   = "studentid"
	studentIDText  = "{0} must look like S001"
	studentIDRegex = regexp.MustCompile(`^S\d{3,}$`)

	numberText = "{0} must be a number"
)

// Instantiate the validator for use.
func init() {
	Validate = validator.New()

	// Register the english error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = Validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterCustomTranslation(notBlankTag, notBlankText)

	_ = Validate.RegisterValidation(gradeTag, rangeValidation(MinGrade, MaxGrade))
	RegisterCustomTranslation(gradeTag, gradeText)

	_ = Validate.RegisterValidation(isoDateTag, isoDateValidation)
	RegisterCustomTranslation(isoDateTag, isoDateText)

	_ = Validate.RegisterValidation(studentIDTag, studentIDValidation)
	RegisterCustomTranslation(studentIDTag, studentIDText)

	RegisterCustomTranslation("required", "{0} is required", true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
// The text may reference the field name as {0}.
func RegisterCustomTranslation(tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// ValidateStruct runs the struct validations of `s` and translates failures into a *ValidationError.
func ValidateStruct(s interface{}) error {
	return translate(Validate.Struct(s))
}

// ValidateVar validates a single value against `tag`, naming it `field` in the reason.
func ValidateVar(field string, value interface{}, tag string) error {
	err := translate(Validate.Var(value, tag))
	if verr, ok := err.(*ValidationError); ok {
		for i := range verr.Fields {
			// Var has no field name to translate, so the reason starts with a blank
			verr.Fields[i].Field = field
			verr.Fields[i].Error = field + verr.Fields[i].Error
		}
	}
	return err
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(err, "validating")
	}
	flds := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		flds = append(flds, FieldError{Field: fe.Field(), Error: fe.Translate(Translator)})
	}
	return NewValidationError(nil, flds...)
}

// ParseGrade parses a raw grade, which must be a number in [MinGrade, MaxGrade].
func ParseGrade(raw string) (float64, error) {
	grade, err := parseNumber("grade", raw)
	if err != nil {
		return 0, err
	}
	if err := ValidateVar("grade", grade, gradeTag); err != nil {
		return 0, err
	}
	return grade, nil
}

// ParseGPA parses a raw GPA. Any finite number is accepted.
func ParseGPA(raw string) (float64, error) {
	return parseNumber("gpa", raw)
}

// ParseDate parses an ISO 8601 calendar date.
func ParseDate(raw string) (time.Time, error) {
	raw = CleanString(raw)
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, NewValidationError(nil, FieldError{
			Field: "dob",
			Error: strings.Replace(isoDateText, "{0}", "dob", 1),
		})
	}
	return t, nil
}

func parseNumber(field, raw string) (float64, error) {
	n, err := strconv.ParseFloat(CleanString(raw), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, NewValidationError(nil, FieldError{
			Field: field,
			Error: strings.Replace(numberText, "{0}", field, 1),
		})
	}
	return n, nil
}

// Custom Global Validators

// notBlankValidation rejects strings made only of whitespace.
func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func rangeValidation(min, max float64) validator.Func {
	return func(fl validator.FieldLevel) bool {
		var v float64
		switch fl.Field().Kind() {
		case reflect.Float32, reflect.Float64:
			v = fl.Field().Float()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			v = float64(fl.Field().Int())
		default:
			return false
		}
		return v >= min && v <= max
	}
}

func isoDateValidation(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

func studentIDValidation(fl validator.FieldLevel) bool {
	return studentIDRegex.MatchString(fl.Field().String())
}
