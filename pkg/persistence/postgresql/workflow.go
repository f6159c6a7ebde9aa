package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/n3wth/skillflow/pkg/models"
	"github.com/n3wth/skillflow/pkg/persistence"
)

const workflowColumns = `
			id
		  , name
		  , description
		  , nodes
		  , connections
		  , is_public
		  , tags
		  , author
		  , created_at
		  , updated_at`

// sortColumns is the allowlist of columns a listing may be ordered by.
var sortColumns = map[string]string{
	persistence.SortByCreatedAt: "created_at",
	persistence.SortByUpdatedAt: "updated_at",
	persistence.SortByName:      "name",
}

// WorkflowRepository handles workflow-related database operations. Nodes,
// connections and tags are stored as JSONB columns of the workflow row.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

// GetAll returns all workflows from the database.
func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	query := `SELECT` + workflowColumns + `
		FROM workflows
		ORDER BY created_at DESC, id
	`

	return r.query(ctx, query)
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `SELECT` + workflowColumns + `
		FROM workflows
		WHERE id = $1
	`

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	return workflow, nil
}

// ListWorkflows filters, orders and paginates in SQL.
func (r *WorkflowRepository) ListWorkflows(ctx context.Context, opts persistence.ListWorkflowsOptions) (*persistence.WorkflowListResult, error) {
	query, countQuery, args, err := buildListQuery(opts)
	if err != nil {
		return nil, err
	}

	var totalCount int64

	err = r.db.QueryRowContext(ctx, countQuery, args[:len(args)-2]...).Scan(&totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count workflows: %w", err)
	}

	workflows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	offset := args[len(args)-1].(int)

	return &persistence.WorkflowListResult{
		Workflows:   workflows,
		TotalCount:  totalCount,
		HasNextPage: int64(offset+len(workflows)) < totalCount,
	}, nil
}

// buildListQuery returns the page query, the count query and their
// arguments. The count query takes every argument except the trailing limit
// and offset.
func buildListQuery(opts persistence.ListWorkflowsOptions) (string, string, []any, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return "", "", nil, err
	}

	var (
		conditions []string
		args       []any
	)

	if opts.PublicOnly {
		conditions = append(conditions, "is_public = true")
	}

	if opts.Tag != "" {
		tag, err := json.Marshal([]string{opts.Tag})
		if err != nil {
			return "", "", nil, fmt.Errorf("failed to marshal tag filter: %w", err)
		}

		args = append(args, string(tag))
		conditions = append(conditions, "tags @> $"+strconv.Itoa(len(args))+"::jsonb")
	}

	where := ""
	if len(conditions) > 0 {
		where = "\n\t\tWHERE " + strings.Join(conditions, " AND ")
	}

	direction := "DESC"
	if opts.SortOrder == persistence.SortOrderAsc {
		direction = "ASC"
	}

	countQuery := "SELECT COUNT(*) FROM workflows" + where

	args = append(args, opts.Limit, opts.Offset)
	query := `SELECT` + workflowColumns + `
		FROM workflows` + where + `
		ORDER BY ` + sortColumns[opts.SortBy] + ` ` + direction + `, id ` + direction + `
		LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	return query, countQuery, args, nil
}

// Save upserts a workflow.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	if workflow.UpdatedAt.IsZero() {
		workflow.UpdatedAt = now
	}

	nodesJSON, err := marshalJSONB(workflow.Nodes, "[]")
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	connectionsJSON, err := marshalJSONB(workflow.Connections, "[]")
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	tagsJSON, err := marshalJSONB(workflow.Tags, "[]")
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	query := `
		INSERT INTO workflows (id, name, description, nodes, connections, is_public, tags, author, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			nodes = EXCLUDED.nodes,
			connections = EXCLUDED.connections,
			is_public = EXCLUDED.is_public,
			tags = EXCLUDED.tags,
			author = EXCLUDED.author,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.Name,
		workflow.Description,
		nodesJSON,
		connectionsJSON,
		workflow.IsPublic,
		tagsJSON,
		workflow.Author,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

// Delete removes a workflow row.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func (r *WorkflowRepository) query(ctx context.Context, query string, args ...any) ([]*models.Workflow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row scanner) (*models.Workflow, error) {
	var (
		workflow    models.Workflow
		nodes       []byte
		connections []byte
		tags        []byte
		author      sql.NullString
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&workflow.Description,
		&nodes,
		&connections,
		&workflow.IsPublic,
		&tags,
		&author,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(nodes, &workflow.Nodes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal nodes of workflow %s: %w", workflow.ID, err)
	}

	if err := json.Unmarshal(connections, &workflow.Connections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal connections of workflow %s: %w", workflow.ID, err)
	}

	if err := json.Unmarshal(tags, &workflow.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags of workflow %s: %w", workflow.ID, err)
	}

	if workflow.Nodes == nil {
		workflow.Nodes = []*models.WorkflowNode{}
	}

	if workflow.Connections == nil {
		workflow.Connections = []*models.Connection{}
	}

	if author.Valid {
		workflow.Author = &author.String
	}

	workflow.CreatedAt = workflow.CreatedAt.UTC()
	workflow.UpdatedAt = workflow.UpdatedAt.UTC()

	return &workflow, nil
}

// marshalJSONB encodes v as text, storing empty when v is a nil slice. The
// driver sends []byte parameters as bytea, so JSONB values travel as strings.
func marshalJSONB(v any, empty string) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	if string(data) == "null" {
		return empty, nil
	}

	return string(data), nil
}
