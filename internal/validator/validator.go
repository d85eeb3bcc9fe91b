package validator

import (
	"sync"

	ierr "github.com/flexprice/orderbilling/internal/errors"
	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// enum is implemented by the string enums in the types package
type enum interface {
	Validate() error
}

func NewValidator() *validator.Validate {
	validate = validator.New()
	// "enum" delegates to the Validate method of types enums
	_ = validate.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(enum)
		if !ok {
			return false
		}
		return e.Validate() == nil
	})
	return validate
}

func GetValidator() *validator.Validate {
	once.Do(func() {
		if validate == nil {
			NewValidator()
		}
	})
	return validate
}

// ValidateRequest validates a struct against its validate tags and reports
// every failing field in the error details
func ValidateRequest(req interface{}) error {
	if err := GetValidator().Struct(req); err != nil {
		details := make(map[string]any)
		var validateErrs validator.ValidationErrors
		if ierr.As(err, &validateErrs) {
			for _, err := range validateErrs {
				details[err.Field()] = err.Error()
			}
		}
		return ierr.WithError(err).
			WithHint("Validation failed").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}
