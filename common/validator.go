package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const passwordSpecialChars = `!@#$%^&*(),.?":{}|<>`

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	return v
}

// IsStrongPassword requires 8 characters to 72 bytes with an upper case letter,
// a lower case letter, a digit and one of !@#$%^&*(),.?":{}|<>.
func IsStrongPassword(password string) bool {
	if len(password) < 8 || len(password) > MaxPasswordBytes {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecialChars, r):
			special = true
		}
	}
	return upper && lower && digit && special
}

// ValidateAndDecode decodes the JSON body into payload and runs struct validation.
func ValidateAndDecode(r *http.Request, payload interface{}) *AppError {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		return NewAppError(http.StatusBadRequest, "Invalid request body", nil)
	}
	return Validate(payload)
}

func Validate(payload interface{}) *AppError {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return NewAppError(http.StatusBadRequest, "Validation failed", err)
	}

	fields := make([]FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return NewValidationError("Validation failed", fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Valid email is required"
	case "strongpassword":
		return "Password must be 8 to 72 characters and contain upper and lower case letters, a number and a special character"
	case "e164":
		return "Valid phone number required"
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed the %s rule", fe.Field(), fe.Tag())
	}
}
