package persistence

import (
	"fmt"
	"slices"
	"sort"

	"github.com/n3wth/skillflow/pkg/models"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100

	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"
	SortByName      = "name"

	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// ListWorkflowsOptions filters and paginates workflow listings.
type ListWorkflowsOptions struct {
	Limit     int    `query:"limit"      validate:"omitempty,min=1,max=100"`
	Offset    int    `query:"offset"     validate:"omitempty,min=0"`
	SortBy    string `query:"sort_by"    validate:"omitempty,oneof=created_at updated_at name"`
	SortOrder string `query:"sort_order" validate:"omitempty,oneof=asc desc"`
	Tag       string `query:"tag"`
	// PublicOnly keeps only workflows marked public.
	PublicOnly bool `query:"public_only"`
}

type WorkflowListResult struct {
	Workflows   []*models.Workflow `json:"workflows"`
	TotalCount  int64              `json:"total_count"`
	HasNextPage bool               `json:"has_next_page"`
}

// Normalize fills defaults and rejects unknown sort parameters.
func (o ListWorkflowsOptions) Normalize() (ListWorkflowsOptions, error) {
	if o.Limit <= 0 || o.Limit > MaxListLimit {
		o.Limit = DefaultListLimit
	}

	if o.Offset < 0 {
		o.Offset = 0
	}

	if o.SortBy == "" {
		o.SortBy = SortByCreatedAt
	}

	if o.SortOrder == "" {
		o.SortOrder = SortOrderDesc
	}

	switch o.SortBy {
	case SortByCreatedAt, SortByUpdatedAt, SortByName:
	default:
		return o, fmt.Errorf("%w: %s", ErrInvalidSortField, o.SortBy)
	}

	if o.SortOrder != SortOrderAsc && o.SortOrder != SortOrderDesc {
		return o, fmt.Errorf("%w: %s", ErrInvalidSortOrder, o.SortOrder)
	}

	return o, nil
}

// Matches reports whether the workflow passes the option filters.
func (o ListWorkflowsOptions) Matches(workflow *models.Workflow) bool {
	if o.PublicOnly && !workflow.IsPublic {
		return false
	}

	if o.Tag != "" && !slices.Contains(workflow.Tags, o.Tag) {
		return false
	}

	return true
}

// ListInMemory applies the options to a fully loaded set of workflows. Stores
// without server side querying use it.
func ListInMemory(workflows []*models.Workflow, opts ListWorkflowsOptions) (*WorkflowListResult, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.Workflow, 0, len(workflows))
	for _, workflow := range workflows {
		if opts.Matches(workflow) {
			filtered = append(filtered, workflow)
		}
	}

	SortWorkflows(filtered, opts.SortBy, opts.SortOrder)

	totalCount := int64(len(filtered))

	if opts.Offset >= len(filtered) {
		return &WorkflowListResult{
			Workflows:   make([]*models.Workflow, 0),
			TotalCount:  totalCount,
			HasNextPage: false,
		}, nil
	}

	end := min(opts.Offset+opts.Limit, len(filtered))

	return &WorkflowListResult{
		Workflows:   filtered[opts.Offset:end],
		TotalCount:  totalCount,
		HasNextPage: end < len(filtered),
	}, nil
}

// SortWorkflows sorts in place. Ties are broken by id so listings are stable.
func SortWorkflows(workflows []*models.Workflow, sortBy, sortOrder string) {
	sort.SliceStable(workflows, func(i, j int) bool {
		a, b := workflows[i], workflows[j]

		if sortOrder == SortOrderDesc {
			a, b = b, a
		}

		switch sortBy {
		case SortByUpdatedAt:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.Before(b.UpdatedAt)
			}
		case SortByName:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}

		return a.ID < b.ID
	})
}
