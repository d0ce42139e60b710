// Package types holds most of the types used across todoapi
package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultPort - default port for application
const DefaultPort = 8000

// errors
var (
	// ErrValidation - request or response does not conform to its schema
	ErrValidation = errors.New("validation failed")
	// ErrMalformedBody - request body is not a JSON document
	ErrMalformedBody = errors.New("malformed request body")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Todo - a single todo item, addressed by its ID in the store.
// Every todo sent back to a client goes through Validate first.
type Todo struct {
	ID          string `json:"id" dynamodbav:"id" gorm:"primary_key" validate:"required"`
	Name        string `json:"name" dynamodbav:"name"`
	Description string `json:"description" dynamodbav:"description"`
}

// Validate - checks that todo conforms to the response schema
func (t *Todo) Validate() error {
	return validationError(validate.Struct(t))
}

// RequestTodo - create request body. Fields are pointers so that a missing
// field or an explicit null can be told apart from an empty string.
type RequestTodo struct {
	Name        *string `json:"name" validate:"required"`
	Description *string `json:"description" validate:"required"`
}

// Validate - checks that both fields were supplied
func (r *RequestTodo) Validate() error {
	return validationError(validate.Struct(r))
}

// Todo - builds a new todo with the given ID out of the request
func (r *RequestTodo) Todo(id string) *Todo {
	t := &Todo{ID: id}
	if r.Name != nil {
		t.Name = *r.Name
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	return t
}

// DecodeRequestTodo - decodes and validates create request body
func DecodeRequestTodo(r io.Reader) (*RequestTodo, error) {
	var req RequestTodo

	dec := json.NewDecoder(r)
	err := dec.Decode(&req)
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: body: field required", ErrValidation)
	}
	if err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %s: expected %s, got %s", ErrValidation, typeErr.Field, typeErr.Type, typeErr.Value)
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedBody, err)
	}
	// body must hold exactly one JSON value
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after JSON body", ErrMalformedBody)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return &req, nil
}

func validationError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s: field required", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: failed on '%s'", fe.Field(), fe.Tag()))
		}
	}

	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, ", "))
}

// VersionInfo describes version and runtime info
type VersionInfo struct {
	Name       string `json:"name"`
	BuildDate  string `json:"buildDate"`
	Revision   string `json:"revision"`
	Version    string `json:"version"`
	APIVersion string `json:"apiVersion"`
	GoVersion  string `json:"goVersion"`
	OS         string `json:"os"`
	Arch       string `json:"arch"`
}
