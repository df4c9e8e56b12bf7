package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sirswa/crm_backend/models"
)

// InputValidator checks request bodies. Rules under the `validate` tag apply
// to every write; rules under the `create` tag apply only when a record is
// created, so an update may omit fields a create requires.
type InputValidator struct {
	always   *validator.Validate
	onCreate *validator.Validate
}

func NewInputValidator() *InputValidator {
	always := validator.New()
	always.RegisterTagNameFunc(jsonFieldName)

	onCreate := validator.New()
	onCreate.SetTagName("create")
	onCreate.RegisterTagNameFunc(jsonFieldName)

	return &InputValidator{always: always, onCreate: onCreate}
}

// Validate applies the `validate` rules and any InputChecker hook.
func (v *InputValidator) Validate(i interface{}) error {
	if err := translate(v.always.Struct(i)); err != nil {
		return err
	}
	if checker, ok := i.(models.InputChecker); ok {
		return checker.Check()
	}
	return nil
}

// ValidateCreate additionally applies the `create` rules.
func (v *InputValidator) ValidateCreate(i interface{}) error {
	if err := translate(v.onCreate.Struct(i)); err != nil {
		return err
	}
	return v.Validate(i)
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// translate turns the first validator failure into an ErrValidation.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &models.ErrValidation{Message: err.Error()}
	}
	fe := verrs[0]
	return &models.ErrValidation{Field: fe.Field(), Message: describe(fe)}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if fe.Kind() == reflect.String {
			if fe.Param() == "1" {
				return "is required"
			}
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}
