// Package web defines common components for a web application.
package web

import (
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
)

// Response holds the common response type for all APIs.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Error wraps a given err into json friendly response.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// GetErrorMsg returns the human readable tail of a validation error message.
// The caller prefixes it with the field name.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " field is required"
	case "amount":
		return " must be a number"
	case "oneof":
		return " must be one of: " + fe.Param()
	case "min":
		return " must be at least " + fe.Param() + " characters long"
	case "max":
		return " must be at most " + fe.Param() + " characters long"
	case "alphanum":
		return " accepts only alphanumeric characters"
	}

	return " is invalid"
}

// ValidationError returns the response for a failed request binding.
func ValidationError(err error) Response {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		field := ve[0]
		return Response{Error: field.Field() + GetErrorMsg(field)}
	}

	var te *json.UnmarshalTypeError
	if errors.As(err, &te) && te.Field != "" {
		return Response{Error: te.Field + " has an invalid type"}
	}

	return Response{Error: "invalid request body"}
}
