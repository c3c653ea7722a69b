package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// InvalidInputError reports the offending request fields by JSON name.
type InvalidInputError struct {
	Fields map[string]string
}

func invalidField(field, reason string) *InvalidInputError {
	return &InvalidInputError{Fields: map[string]string{field: reason}}
}

func (e *InvalidInputError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

/*** error body ***/

type errorResponse struct {
	Success bool              `json:"success"`
	Error   int               `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

var statusMessages = map[int]string{
	http.StatusBadRequest:          "Invalid input",
	http.StatusNotFound:            "Not found",
	http.StatusMethodNotAllowed:    "Method not found",
	http.StatusInternalServerError: "Server error",
	http.StatusServiceUnavailable:  "Service unavailable",
}

func abort(c *gin.Context, status int) {
	c.AbortWithStatusJSON(status, errorResponse{
		Success: false,
		Error:   status,
		Message: statusMessages[status],
	})
}

// writeError maps err onto an error kind, logs it and writes the error body.
// Internal error text never reaches the client.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	fields := []zap.Field{
		zap.String("request_id", requestID(c)),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	}

	var invalid *InvalidInputError
	switch {
	case errors.As(err, &invalid):
		log.Warn("invalid input", fields...)
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
			Success: false,
			Error:   http.StatusBadRequest,
			Message: statusMessages[http.StatusBadRequest],
			Fields:  invalid.Fields,
		})
	case errors.Is(err, ErrNotFound):
		log.Warn("not found", fields...)
		abort(c, http.StatusNotFound)
	default:
		log.Error("request failed", fields...)
		abort(c, http.StatusInternalServerError)
	}
}

// bindError turns a gin binding failure into an InvalidInputError.
func bindError(err error) error {
	var invalid *InvalidInputError
	if errors.As(err, &invalid) {
		return invalid
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := &InvalidInputError{Fields: make(map[string]string, len(verrs))}
		for _, fe := range verrs {
			out.Fields[fe.Field()] = validationReason(fe)
		}
		return out
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return invalidField(typeErr.Field, fmt.Sprintf("must be %s", jsonKind(typeErr.Type.Kind().String())))
	}
	return invalidField("body", "must be a valid JSON object")
}

func validationReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

func jsonKind(goKind string) string {
	switch goKind {
	case "string":
		return "a string"
	case "slice", "array":
		return "an array"
	case "struct", "map":
		return "an object"
	case "bool":
		return "a boolean"
	default:
		return "a number"
	}
}
