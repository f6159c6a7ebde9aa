// Package web provides HTTP handlers and REST API endpoints for workflow management.
package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/n3wth/skillflow/pkg/models"
	"github.com/n3wth/skillflow/pkg/persistence"
	"github.com/n3wth/skillflow/pkg/registry"
	"github.com/n3wth/skillflow/pkg/services"
	"github.com/n3wth/skillflow/pkg/templates"
)

type APIHandlers struct {
	workflowService *services.Workflow
	validator       *validator.Validate
	registry        *registry.Registry
	shareBaseURL    string
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	validator *validator.Validate,
	registry *registry.Registry,
	shareBaseURL string,
) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		validator:       validator,
		registry:        registry,
		shareBaseURL:    strings.TrimRight(shareBaseURL, "/"),
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	var opts persistence.ListWorkflowsOptions
	if err := c.Bind().Query(&opts); err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	if err := h.validator.Struct(opts); err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.workflowService.List(c.Context(), opts)
	if err != nil {
		return handleServiceError(c, err)
	}

	normalized, _ := opts.Normalize()

	return c.JSON(NewListWorkflowsResponse(result, normalized))
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflow, err := h.workflowService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Skillflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk {
		status = "healthy"
		message = "Skillflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.workflowService.Create(c.Context(), &models.Workflow{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Tags:        req.Tags,
		Nodes:       req.Nodes,
		Connections: req.Connections,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.workflowService.Update(c.Context(), c.Params("id"), services.UpdateWorkflowRequest{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Tags:        req.Tags,
		Nodes:       req.Nodes,
		Connections: req.Connections,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	if err := h.workflowService.Delete(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) CreateWorkflowNode(c fiber.Ctx) error {
	var req CreateNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	node, err := h.workflowService.AddNode(c.Context(), c.Params("id"), services.CreateNodeRequest{
		SkillID:  req.SkillID,
		Position: req.Position,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(node)
}

func (h *APIHandlers) MoveWorkflowNode(c fiber.Ctx) error {
	var req MoveNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	node, err := h.workflowService.MoveNode(c.Context(), c.Params("id"), c.Params("nodeId"), req.Position)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(node)
}

func (h *APIHandlers) DeleteWorkflowNode(c fiber.Ctx) error {
	if err := h.workflowService.DeleteNode(c.Context(), c.Params("id"), c.Params("nodeId")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) CreateWorkflowConnection(c fiber.Ctx) error {
	var req CreateConnectionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	conn, err := h.workflowService.AddConnection(c.Context(), c.Params("id"), services.CreateConnectionRequest{
		Source: req.Source,
		Target: req.Target,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(conn)
}

func (h *APIHandlers) DeleteWorkflowConnection(c fiber.Ctx) error {
	err := h.workflowService.DeleteConnection(c.Context(), c.Params("id"), c.Params("connectionId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ValidateWorkflow(c fiber.Ctx) error {
	result, err := h.workflowService.Validate(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) GetRequiredInputs(c fiber.Ctx) error {
	inputs, err := h.workflowService.RequiredInputs(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"inputs": inputs})
}

// RunWorkflow executes the workflow synchronously and returns the final
// execution state.
func (h *APIHandlers) RunWorkflow(c fiber.Ctx) error {
	var req RunWorkflowRequest

	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	state, err := h.workflowService.Run(c.Context(), c.Params("id"), req.Inputs, nil)
	if err != nil {
		if state == nil {
			return handleServiceError(c, err)
		}

		return executionFailed(c, state, err)
	}

	return c.JSON(state)
}

func (h *APIHandlers) ExportWorkflow(c fiber.Ctx) error {
	document, err := h.workflowService.Export(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+c.Params("id")+`.json"`)

	return c.SendString(document)
}

// ImportWorkflow accepts an exported document as the raw request body.
func (h *APIHandlers) ImportWorkflow(c fiber.Ctx) error {
	imported, err := h.workflowService.Import(c.Context(), string(c.Body()))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(imported)
}

func (h *APIHandlers) ShareWorkflow(c fiber.Ctx) error {
	baseURL := h.shareBaseURL
	if baseURL == "" {
		baseURL = c.BaseURL()
	}

	link, err := h.workflowService.Share(c.Context(), c.Params("id"), baseURL)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(ShareResponse{URL: link})
}

func (h *APIHandlers) GetTemplates(c fiber.Ctx) error {
	return c.JSON(templates.All())
}

func (h *APIHandlers) CopyTemplate(c fiber.Ctx) error {
	copied, err := h.workflowService.CreateFromTemplate(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(copied)
}

func (h *APIHandlers) GetSkills(c fiber.Ctx) error {
	skills := h.registry.Skills()

	response := make([]SkillResponse, 0, len(skills))
	for _, skill := range skills {
		schema, _ := h.registry.Lookup(skill.ID)
		response = append(response, SkillResponse{Skill: skill, IO: schema})
	}

	return c.JSON(response)
}

func (h *APIHandlers) GetSkill(c fiber.Ctx) error {
	skill, ok := h.registry.Skill(c.Params("id"))
	if !ok {
		return notFound(c, "skill_not_found", "skill not found")
	}

	schema, _ := h.registry.Lookup(skill.ID)

	return c.JSON(SkillResponse{Skill: skill, IO: schema})
}
