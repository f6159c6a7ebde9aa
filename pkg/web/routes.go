package web

import "github.com/gofiber/fiber/v3"

// RegisterRoutes mounts every API endpoint on router.
func (h *APIHandlers) RegisterRoutes(router fiber.Router) {
	w := router.Group("/workflows")
	w.Get("/", h.GetWorkflows)
	w.Post("/", h.CreateWorkflow)
	w.Post("/import", h.ImportWorkflow)
	w.Get("/:id", h.GetWorkflow)
	w.Patch("/:id", h.UpdateWorkflow)
	w.Delete("/:id", h.DeleteWorkflow)
	w.Get("/:id/validate", h.ValidateWorkflow)
	w.Get("/:id/required-inputs", h.GetRequiredInputs)
	w.Post("/:id/run", h.RunWorkflow)
	w.Get("/:id/export", h.ExportWorkflow)
	w.Get("/:id/share", h.ShareWorkflow)

	// Node endpoints:
	w.Post("/:id/nodes", h.CreateWorkflowNode)
	w.Patch("/:id/nodes/:nodeId", h.MoveWorkflowNode)
	w.Delete("/:id/nodes/:nodeId", h.DeleteWorkflowNode)

	// Connection endpoints:
	w.Post("/:id/connections", h.CreateWorkflowConnection)
	w.Delete("/:id/connections/:connectionId", h.DeleteWorkflowConnection)

	t := router.Group("/templates")
	t.Get("/", h.GetTemplates)
	t.Post("/:id/copy", h.CopyTemplate)

	s := router.Group("/skills")
	s.Get("/", h.GetSkills)
	s.Get("/:id", h.GetSkill)

	router.Get("/health", h.HealthCheck)
}
