// Package web provides HTTP request and response types for the workflow API.
package web

import (
	"github.com/n3wth/skillflow/pkg/graph"
	"github.com/n3wth/skillflow/pkg/models"
	"github.com/n3wth/skillflow/pkg/persistence"
)

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name        string                 `json:"name"        validate:"required"`
	Description string                 `json:"description"`
	IsPublic    bool                   `json:"isPublic"`
	Tags        []string               `json:"tags"        validate:"omitempty,dive,required"`
	Nodes       []*models.WorkflowNode `json:"nodes"       validate:"omitempty,dive,required"`
	Connections []*models.Connection   `json:"connections" validate:"omitempty,dive,required"`
}

// UpdateWorkflowRequest represents the request body for updating an existing workflow.
// All fields are optional to support partial updates.
type UpdateWorkflowRequest struct {
	Name        *string                `json:"name,omitempty"        validate:"omitempty,min=1"`
	Description *string                `json:"description,omitempty"`
	IsPublic    *bool                  `json:"isPublic,omitempty"`
	Tags        []string               `json:"tags,omitempty"        validate:"omitempty,dive,required"`
	Nodes       []*models.WorkflowNode `json:"nodes,omitempty"       validate:"omitempty,dive,required"`
	Connections []*models.Connection   `json:"connections,omitempty" validate:"omitempty,dive,required"`
}

// CreateNodeRequest represents the request body for placing a skill on a workflow.
type CreateNodeRequest struct {
	SkillID  string           `json:"skillId"  validate:"required"`
	Position *models.Position `json:"position"`
}

// MoveNodeRequest represents the request body for moving a node on the canvas.
type MoveNodeRequest struct {
	Position models.Position `json:"position"`
}

// CreateConnectionRequest represents the request body for wiring two ports.
type CreateConnectionRequest struct {
	Source graph.Endpoint `json:"source" validate:"required"`
	Target graph.Endpoint `json:"target" validate:"required"`
}

// RunWorkflowRequest carries the initial inputs keyed by node id then input id.
type RunWorkflowRequest struct {
	Inputs models.InitialInputs `json:"inputs"`
}

// ListWorkflowsResponse wraps a page of workflows with its pagination metadata.
type ListWorkflowsResponse struct {
	Workflows   []*models.Workflow `json:"workflows"`
	TotalCount  int64              `json:"total_count"`
	HasNextPage bool               `json:"has_next_page"`
	Pagination  PaginationResponse `json:"pagination"`
	Sorting     SortingResponse    `json:"sorting"`
}

type PaginationResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type SortingResponse struct {
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

// SkillResponse is a catalog entry with its port contract, if it has one.
type SkillResponse struct {
	*models.Skill

	IO *models.SkillIOSchema `json:"io,omitempty"`
}

// ShareResponse carries a share link.
type ShareResponse struct {
	URL string `json:"url"`
}

// NewListWorkflowsResponse builds the listing response for normalized options.
func NewListWorkflowsResponse(
	result *persistence.WorkflowListResult,
	opts persistence.ListWorkflowsOptions,
) ListWorkflowsResponse {
	return ListWorkflowsResponse{
		Workflows:   result.Workflows,
		TotalCount:  result.TotalCount,
		HasNextPage: result.HasNextPage,
		Pagination: PaginationResponse{
			Limit:  opts.Limit,
			Offset: opts.Offset,
		},
		Sorting: SortingResponse{
			SortBy:    opts.SortBy,
			SortOrder: opts.SortOrder,
		},
	}
}
