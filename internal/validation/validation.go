// Package validation turns binding and validator failures into a field -> messages map
// that the error envelope carries as its payload.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	// BodyField keys failures that cannot be attributed to one field.
	BodyField  = "$body"
	QueryField = "$query"
)

type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

func (fe FieldErrors) Merge(other FieldErrors) {
	for field, messages := range other {
		for _, m := range messages {
			fe.Add(field, m)
		}
	}
}

func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Validatable is implemented by request models carrying rules that struct tags cannot
// express, such as cross-field checks. It runs after tag validation succeeded.
type Validatable interface {
	Validate() FieldErrors
}

// Error carries field errors raised below the HTTP layer.
type Error struct {
	Fields FieldErrors
}

func NewError(fields FieldErrors) *Error {
	return &Error{Fields: fields}
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Fields[f], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

var registerOnce sync.Once

// Register makes gin's validator report JSON (or form) names instead of Go field names.
func Register() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(TagName)
		}
	})
}

func TagName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// Translate converts an error returned by a gin binder into field errors. Only binder errors
// may be passed in: decode failures such as io.EOF are read as a bad request body. The second
// result is false when err is not a client input problem.
func Translate(err error) (FieldErrors, bool) {
	if err == nil {
		return nil, false
	}

	var (
		own       *Error
		ve        validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
		numErr    *strconv.NumError
	)

	fields := FieldErrors{}
	switch {
	case errors.As(err, &own):
		return own.Fields, true
	case errors.As(err, &ve):
		for _, fe := range ve {
			fields.Add(fieldPath(fe), Message(fe))
		}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = BodyField
		}
		fields.Add(field, fmt.Sprintf("Field '%s' must be of type %s", field, typeErr.Type.String()))
	case errors.As(err, &syntaxErr):
		fields.Add(BodyField, fmt.Sprintf("Malformed JSON at offset %d", syntaxErr.Offset))
	case errors.Is(err, io.EOF):
		fields.Add(BodyField, "A non-empty request body is required")
	case errors.Is(err, io.ErrUnexpectedEOF):
		fields.Add(BodyField, "Request body ended unexpectedly")
	case errors.As(err, &numErr):
		fields.Add(QueryField, fmt.Sprintf("Value '%s' is not a valid number", numErr.Num))
	default:
		return nil, false
	}
	return fields, true
}

// fieldPath drops the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func Message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", field)
	case "email":
		return fmt.Sprintf("Field '%s' must be a valid email address", field)
	case "oneof":
		return fmt.Sprintf("Field '%s' must be one of [%s]", field, fe.Param())
	case "gte":
		return fmt.Sprintf("Field '%s' must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("Field '%s' must be less than or equal to %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("Field '%s' must be greater than %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("Field '%s' must be less than %s", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Field '%s' must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("Field '%s' must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Field '%s' must be at most %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("Field '%s' must be at most %s", field, fe.Param())
	case "uuid", "uuid4":
		return fmt.Sprintf("Field '%s' must be a valid UUID", field)
	default:
		return fmt.Sprintf("Field '%s' failed validation on the '%s' tag", field, fe.Tag())
	}
}
