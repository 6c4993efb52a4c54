package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskboard/internal/domain"
)

// MaxBodyBytes caps the size of a JSON request body.
const MaxBodyBytes = 1 << 20

// Global validator instance for reuse
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		default:
			return name
		}
	})
	return v
}

// DecodeJSON decodes the request body into v. A body that is empty, not
// valid JSON, or followed by trailing data is reported as a
// *domain.ValidationError on the "body" field.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return malformedBody(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return malformedBody(errors.New("unexpected data after JSON object"))
	}
	return nil
}

func malformedBody(err error) error {
	message := "must be a valid JSON object"
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &domain.ValidationError{
			Fields: []domain.FieldError{{
				Field:   typeErr.Field,
				Rule:    "type",
				Message: fmt.Sprintf("must be a %s", jsonTypeName(typeErr.Type)),
			}},
			Err: fmt.Errorf("%w: %v", domain.ErrValidation, err),
		}
	}
	return &domain.ValidationError{
		Fields: []domain.FieldError{{Field: "body", Rule: "json", Message: message}},
		Err:    fmt.Errorf("%w: %v", domain.ErrValidation, err),
	}
}

func jsonTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	default:
		return "valid value"
	}
}

// ValidateRequest validates v. Types with their own Validate method are
// trusted to call ValidateStruct themselves.
func ValidateRequest(v interface{}) error {
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	return ValidateStruct(v).OrNil()
}

// ValidateStruct runs the struct tag rules on v and collects every failure
// as a field error. The result is never nil; call OrNil on it.
func ValidateStruct(v interface{}) *domain.ValidationError {
	verr := &domain.ValidationError{}

	err := validate.Struct(v)
	if err == nil {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add("body", "invalid", "is invalid")
		return verr
	}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fe.Tag(), validationMessage(fe))
	}
	return verr
}

// validationMessage maps validation tags to user-friendly error messages
func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
