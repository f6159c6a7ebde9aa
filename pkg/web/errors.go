package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
	"github.com/n3wth/skillflow/pkg/models"
	"github.com/n3wth/skillflow/pkg/services"
)

// detailedProblem is a problem document that also lists every individual
// message, e.g. all validation errors of a workflow.
type detailedProblem struct {
	*problems.Problem

	Errors []string `json:"errors,omitempty"`
}

// executionProblem reports a failed run together with the partial state.
type executionProblem struct {
	*problems.Problem

	Execution *models.ExecutionState `json:"execution,omitempty"`
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, kind, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType(kind).
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

func executionFailed(c fiber.Ctx, state *models.ExecutionState, err error) error {
	problem := executionProblem{
		Problem: problems.NewStatusProblem(422).
			WithInstance(c.Path()).
			WithType("execution_failed").
			WithDetail(err.Error()),
		Execution: state,
	}

	return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrWorkflowNotFound):
		return notFound(c, "workflow_not_found", "workflow not found")

	case errors.Is(err, services.ErrTemplateNotFound):
		return notFound(c, "template_not_found", "template not found")

	case errors.Is(err, services.ErrNodeNotFound):
		return notFound(c, "node_not_found", "node not found")

	case errors.Is(err, services.ErrConnectionNotFound):
		return notFound(c, "connection_not_found", "connection not found")

	case services.IsValidationError(err):
		problem := detailedProblem{
			Problem: problems.NewStatusProblem(400).
				WithInstance(c.Path()).
				WithType("validation_error").
				WithDetail(err.Error()),
			Errors: services.ErrorDetails(err),
		}

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case errors.Is(err, services.ErrShareTooLarge):
		problem := problems.NewStatusProblem(413).
			WithInstance(c.Path()).
			WithType("share_too_large").
			WithDetail(err.Error())

		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(problem)

	default:
		return internalError(c, err)
	}
}
