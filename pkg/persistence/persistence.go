// Package persistence provides the storage abstraction for workflows.
package persistence

import (
	"context"

	"github.com/n3wth/skillflow/pkg/models"
)

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

// WorkflowRepository stores whole workflows keyed by id.
type WorkflowRepository interface {
	GetAll(ctx context.Context) ([]*models.Workflow, error)
	// GetByID returns nil and no error when the workflow does not exist.
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	// Delete returns ErrWorkflowNotFound when nothing was deleted.
	Delete(ctx context.Context, id string) error
	ListWorkflows(ctx context.Context, opts ListWorkflowsOptions) (*WorkflowListResult, error)
}
