package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/n3wth/skillflow/pkg/eventbus"
	"github.com/n3wth/skillflow/pkg/events"
	"github.com/n3wth/skillflow/pkg/executor"
	"github.com/n3wth/skillflow/pkg/graph"
	"github.com/n3wth/skillflow/pkg/models"
	"github.com/n3wth/skillflow/pkg/persistence"
	"github.com/n3wth/skillflow/pkg/registry"
	"github.com/n3wth/skillflow/pkg/scheduler"
)

// Runner executes a workflow. *executor.Executor satisfies it.
type Runner interface {
	Execute(
		ctx context.Context,
		wf *models.Workflow,
		onProgress executor.ProgressFunc,
		initialInputs models.InitialInputs,
	) (*models.ExecutionState, error)
}

type Workflow struct {
	persistence persistence.Persistence
	catalog     registry.Catalog
	editor      *graph.Editor
	runner      Runner
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
}

type Option func(*Workflow)

// WithRunner replaces the default executor.
func WithRunner(runner Runner) Option {
	return func(w *Workflow) {
		w.runner = runner
	}
}

// WithPublisher enables workflow.saved and workflow.deleted events.
func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(w *Workflow) {
		w.publisher = publisher
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) {
		w.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		w.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(w *Workflow) {
		w.newID = newID
	}
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persistence persistence.Persistence, catalog registry.Catalog, opts ...Option) *Workflow {
	w := &Workflow{
		persistence: persistence,
		catalog:     catalog,
		logger:      slog.Default(),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}

	for _, opt := range opts {
		opt(w)
	}

	w.editor = graph.NewEditor(catalog, graph.WithClock(w.now), graph.WithIDGenerator(w.newID))

	if w.runner == nil {
		w.runner = executor.NewExecutor(catalog, executor.WithLogger(w.logger), executor.WithPublisher(w.publisher))
	}

	return w
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List retrieves workflows with filtering, sorting, and pagination.
func (w *Workflow) List(ctx context.Context, opts persistence.ListWorkflowsOptions) (*persistence.WorkflowListResult, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, NewValidationError("List", "INVALID_LIST_OPTIONS", err.Error(), err)
	}

	result, err := w.persistence.WorkflowRepository().ListWorkflows(ctx, opts)
	if err != nil {
		if persistence.IsInvalidSortField(err) || errors.Is(err, persistence.ErrInvalidSortOrder) {
			return nil, NewValidationError("List", "INVALID_LIST_OPTIONS", err.Error(), err)
		}

		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return result, nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	if workflow == nil {
		return nil, persistence.NewWorkflowError("FetchByID", id, ErrWorkflowNotFound)
	}

	return workflow, nil
}

// Create stores a new workflow under a fresh id.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if err := checkEntries("Create", workflow.Nodes, workflow.Connections); err != nil {
		return nil, err
	}

	now := w.now()

	created := workflow.Clone()
	created.ID = w.newID()
	created.CreatedAt = now
	created.UpdatedAt = now
	normalize(created)

	if err := w.store(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	return created, nil
}

// UpdateWorkflowRequest carries the fields a PATCH may change. Nil fields are
// left untouched.
type UpdateWorkflowRequest struct {
	Name        *string                `json:"name"`
	Description *string                `json:"description"`
	IsPublic    *bool                  `json:"isPublic"`
	Tags        []string               `json:"tags"`
	Nodes       []*models.WorkflowNode `json:"nodes"       validate:"omitempty,dive,required"`
	Connections []*models.Connection   `json:"connections" validate:"omitempty,dive,required"`
}

// Update modifies an existing workflow by its ID.
func (w *Workflow) Update(ctx context.Context, workflowID string, req UpdateWorkflowRequest) (*models.Workflow, error) {
	if err := checkEntries("Update", req.Nodes, req.Connections); err != nil {
		return nil, err
	}

	existing, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	updated := existing.Clone()

	if req.Name != nil {
		updated.Name = *req.Name
	}

	if req.Description != nil {
		updated.Description = *req.Description
	}

	if req.IsPublic != nil {
		updated.IsPublic = *req.IsPublic
	}

	if req.Tags != nil {
		updated.Tags = append([]string{}, req.Tags...)
	}

	if req.Nodes != nil {
		updated.Nodes = req.Nodes
	}

	if req.Connections != nil {
		updated.Connections = req.Connections
	}

	updated.ID = workflowID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = w.now()
	updated = updated.Clone()

	if err := w.store(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return updated, nil
}

// Save validates and upserts a workflow. It lets a builder session persist
// through the service.
func (w *Workflow) Save(ctx context.Context, workflow *models.Workflow) error {
	if err := w.validate("Save", workflow); err != nil {
		return err
	}

	saved := workflow.Clone()
	saved.UpdatedAt = w.now()

	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = saved.UpdatedAt
	}

	normalize(saved)

	if err := w.store(ctx, saved); err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}

	return nil
}

// Delete removes a workflow by its ID.
func (w *Workflow) Delete(ctx context.Context, workflowID string) error {
	err := w.persistence.WorkflowRepository().Delete(ctx, workflowID)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return err
		}

		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	w.logger.InfoContext(ctx, "workflow deleted", "workflow_id", workflowID)
	w.publish(ctx, workflowID, events.WorkflowDeleted{BaseEvent: w.base(events.WorkflowDeletedEvent, workflowID)})

	return nil
}

// Validate runs the graph validator against a stored workflow.
func (w *Workflow) Validate(ctx context.Context, workflowID string) (graph.ValidationResult, error) {
	workflow, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return graph.ValidationResult{}, err
	}

	return graph.Validate(workflow, w.catalog), nil
}

// RequiredInputs lists the inputs a run of the workflow must be given.
func (w *Workflow) RequiredInputs(ctx context.Context, workflowID string) ([]models.RequiredInput, error) {
	workflow, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	return scheduler.RequiredInputs(workflow, w.catalog), nil
}

// Run validates the stored workflow, checks every required input has a
// value and executes it.
func (w *Workflow) Run(
	ctx context.Context,
	workflowID string,
	inputs models.InitialInputs,
	onProgress executor.ProgressFunc,
) (*models.ExecutionState, error) {
	workflow, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if err := w.validate("Run", workflow); err != nil {
		return nil, err
	}

	if missing := MissingInputs(scheduler.RequiredInputs(workflow, w.catalog), inputs); len(missing) > 0 {
		return nil, &ServiceError{
			Op:      "Run",
			Code:    "MISSING_REQUIRED_INPUTS",
			Message: "missing required inputs: " + strings.Join(missing, ", "),
			Details: missing,
			Err:     ErrMissingRequiredInputs,
		}
	}

	w.logger.InfoContext(ctx, "running workflow", "workflow_id", workflowID, "nodes", len(workflow.Nodes))

	return w.runner.Execute(ctx, workflow, onProgress, inputs)
}

// MissingInputs returns "<node name>: <input name>" for every required input
// without a non-blank value.
func MissingInputs(required []models.RequiredInput, inputs models.InitialInputs) []string {
	missing := make([]string, 0)

	for _, input := range required {
		if strings.TrimSpace(inputs[input.NodeID][input.InputID]) == "" {
			missing = append(missing, input.NodeName+": "+input.InputName)
		}
	}

	return missing
}

func (w *Workflow) validate(op string, workflow *models.Workflow) error {
	result := graph.Validate(workflow, w.catalog)
	if result.Valid {
		return nil
	}

	return &ServiceError{
		Op:      op,
		Code:    "INVALID_WORKFLOW",
		Message: strings.Join(result.Errors, "; "),
		Details: result.Errors,
		Err:     ErrInvalidWorkflow,
	}
}

func (w *Workflow) store(ctx context.Context, workflow *models.Workflow) error {
	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "workflow saved", "workflow_id", workflow.ID, "nodes", len(workflow.Nodes))
	w.publish(ctx, workflow.ID, events.WorkflowSaved{
		BaseEvent: w.base(events.WorkflowSavedEvent, workflow.ID),
		Name:      workflow.Name,
		NodeCount: len(workflow.Nodes),
	})

	return nil
}

func (w *Workflow) base(eventType events.EventType, workflowID string) events.BaseEvent {
	return events.BaseEvent{
		ID:         w.newID(),
		Type:       eventType,
		Timestamp:  w.now(),
		WorkflowID: workflowID,
	}
}

// publish never fails the caller: a stored workflow stays stored when the
// bus is down.
func (w *Workflow) publish(ctx context.Context, workflowID string, event eventbus.Event) {
	if w.publisher == nil {
		return
	}

	if err := w.publisher.Publish(ctx, workflowID, event); err != nil {
		w.logger.WarnContext(ctx, "failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func normalize(workflow *models.Workflow) {
	if workflow.Nodes == nil {
		workflow.Nodes = make([]*models.WorkflowNode, 0)
	}

	if workflow.Connections == nil {
		workflow.Connections = make([]*models.Connection, 0)
	}

	if workflow.Tags == nil {
		workflow.Tags = make([]string, 0)
	}
}

// checkEntries rejects null entries in client supplied node and connection
// lists.
func checkEntries(op string, nodes []*models.WorkflowNode, connections []*models.Connection) error {
	if slices.Contains(nodes, nil) {
		return NewValidationError(op, "INVALID_REQUEST", "nodes must not contain null entries", ErrInvalidRequest)
	}

	if slices.Contains(connections, nil) {
		return NewValidationError(op, "INVALID_REQUEST", "connections must not contain null entries", ErrInvalidRequest)
	}

	return nil
}
