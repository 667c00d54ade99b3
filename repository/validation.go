package repository

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/yashrajoria/catalog-import-service/models"

	"github.com/go-playground/validator/v10"
)

// ValidationError is a document rejected by the store's schema checks. It is
// separate from the pipeline's field-presence checks.
type ValidationError struct {
	// Index is the position in the batch, or -1 for single writes.
	Index  int
	Line   int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("product validation failed on line %d: %s %s", e.Line, e.Field, e.Reason)
	}
	return fmt.Sprintf("product validation failed: %s %s", e.Field, e.Reason)
}

// DocumentValidator applies the models.Product validate tags.
type DocumentValidator struct {
	validate *validator.Validate
}

func NewDocumentValidator() *DocumentValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &DocumentValidator{validate: v}
}

// Check validates a product. The returned error is a *ValidationError.
func (dv *DocumentValidator) Check(p *models.Product) error {
	err := dv.validate.Struct(p)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Index: -1, Field: fe.Field(), Reason: describeTag(fe)}
	}
	return &ValidationError{Index: -1, Field: "product", Reason: err.Error()}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}
