package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/n3wth/skillflow/pkg/models"
)

var (
	// ErrUnknownSkill is returned by AddNode for a skill missing from the catalog.
	ErrUnknownSkill = errors.New("unknown skill")

	// ErrSelfLoop is returned when a connection starts and ends on the same node.
	ErrSelfLoop = errors.New("connection source and target are the same node")

	ErrNodeNotFound   = errors.New("node not found")
	ErrSchemaNotFound = errors.New("skill has no io schema")
	ErrPortNotFound   = errors.New("port not found")
)

// IncompatibleTypesError reports a rejected connection between two port types.
type IncompatibleTypesError struct {
	Producer models.IOType
	Consumer models.IOType
}

func (e *IncompatibleTypesError) Error() string {
	return fmt.Sprintf("Cannot connect %s to %s", e.Producer, e.Consumer)
}

// ValidationError carries every message collected by Validate.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid workflow: " + strings.Join(e.Errors, "; ")
}

// IsIncompatibleTypes checks if an error is a rejected connection type pair.
func IsIncompatibleTypes(err error) bool {
	var incompatible *IncompatibleTypesError

	return errors.As(err, &incompatible)
}

// ValidationMessages returns the accumulated messages of a ValidationError
// found in err's chain.
func ValidationMessages(err error) ([]string, bool) {
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		return nil, false
	}

	return validationErr.Errors, true
}
