// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/alchemorsel/mealplanner/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Validator checks request payloads against their validate tags and reports
// fields by their JSON names
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates the request validator
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates s and converts failures into a validation AppError
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.NewValidationError(err.Error())
	}

	out := make([]errors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, errors.ValidationError{
			Field:   fieldPath(fe),
			Tag:     fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return errors.NewValidationErrors(out)
}

// fieldPath drops the root struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// bindJSON decodes and validates the request body
func (v *Validator) bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return errors.NewAppError(errors.CodeBadRequest, "Invalid JSON payload", err.Error())
	}
	return v.Struct(dst)
}

// bindQuery decodes and validates query parameters
func (v *Validator) bindQuery(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return errors.NewAppError(errors.CodeBadRequest, "Invalid query parameters", err.Error())
	}
	return v.Struct(dst)
}

// uuidParam parses a path parameter as a UUID
func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errors.NewValidationError(fmt.Sprintf("%s must be a valid UUID", name))
	}
	return id, nil
}

// respond writes a successful APIResponse
func respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// fail hands err to the ErrorHandler middleware
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// noContent acknowledges a deletion
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
