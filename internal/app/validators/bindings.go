package validators

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	EmailTag = "account_email"
	PhoneTag = "account_phone"
)

var fieldMessages = map[string]string{
	EmailTag:   "Enter a valid email address",
	PhoneTag:   "Enter a valid phone number (at least 10 digits)",
	"required": "This field is required",
	"max":      "This value is too long",
}

// RegisterBindings installs the account tags on gin's validator engine so
// form binding enforces them.
func RegisterBindings() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}

// Register adds the account tags to v and reports fields by their form name.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation(EmailTag, func(fl validator.FieldLevel) bool {
		return ValidateEmail(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation(PhoneTag, func(fl validator.FieldLevel) bool {
		return ValidatePhone(fl.Field().String())
	})
}

// FieldErrors flattens a binding error into form field name -> message. A
// nil map means err was not a validation error.
func FieldErrors(err error) map[string]string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg, known := fieldMessages[fe.Tag()]
		if !known {
			msg = "Invalid value"
		}
		out[fe.Field()] = msg
	}
	return out
}
