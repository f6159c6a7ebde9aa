// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"

	"github.com/n3wth/skillflow/pkg/graph"
	"github.com/n3wth/skillflow/pkg/persistence"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Not Found Errors (404).
	ErrWorkflowNotFound   = persistence.ErrWorkflowNotFound
	ErrTemplateNotFound   = errors.New("template not found")
	ErrNodeNotFound       = errors.New("node not found")
	ErrConnectionNotFound = errors.New("connection not found")

	// Validation Errors (400 Bad Request).
	ErrInvalidRequest        = errors.New("invalid request")
	ErrInvalidSortField      = persistence.ErrInvalidSortField
	ErrInvalidSortOrder      = persistence.ErrInvalidSortOrder
	ErrInvalidWorkflow       = errors.New("invalid workflow")
	ErrInvalidImport         = errors.New("invalid workflow file")
	ErrMissingRequiredInputs = errors.New("missing required inputs")
	ErrInvalidConnection     = errors.New("invalid connection")

	// Payload Errors (413).
	ErrShareTooLarge = errors.New("workflow too large to share")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string   // Operation name
	Code    string   // Error code for API responses
	Message string   // Human-readable message
	Details []string // Individual problems, e.g. validation messages
	Err     error    // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidSortField) ||
		errors.Is(err, ErrInvalidSortOrder) ||
		errors.Is(err, ErrInvalidWorkflow) ||
		errors.Is(err, ErrInvalidImport) ||
		errors.Is(err, ErrMissingRequiredInputs) ||
		errors.Is(err, ErrInvalidConnection)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrNodeNotFound) ||
		errors.Is(err, ErrConnectionNotFound)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ErrorDetails returns the individual messages carried by a ServiceError, if any.
func ErrorDetails(err error) []string {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Details
	}

	if messages, ok := graph.ValidationMessages(err); ok {
		return messages
	}

	return nil
}
