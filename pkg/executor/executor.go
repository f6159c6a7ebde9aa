// Package executor runs a workflow in topological order and compiles the
// prompt document. Skills are not invoked: every node produces placeholder
// outputs.
package executor

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/n3wth/skillflow/pkg/eventbus"
	"github.com/n3wth/skillflow/pkg/events"
	"github.com/n3wth/skillflow/pkg/models"
	"github.com/n3wth/skillflow/pkg/otelhelper"
	"github.com/n3wth/skillflow/pkg/registry"
	"github.com/n3wth/skillflow/pkg/scheduler"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultDelay is the simulated time a node spends running.
const DefaultDelay = 500 * time.Millisecond

// ProgressFunc receives a snapshot after every state transition. It runs on
// the executing goroutine and must not block.
type ProgressFunc func(state *models.ExecutionState)

type Executor struct {
	catalog   registry.Catalog
	logger    *slog.Logger
	delay     time.Duration
	tracer    trace.Tracer
	publisher eventbus.EventPublisher
	newID     func() string
	now       func() time.Time
}

type Option func(*Executor)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithDelay sets the simulated per node delay. Zero disables waiting.
func WithDelay(delay time.Duration) Option {
	return func(e *Executor) {
		e.delay = max(delay, 0)
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(e *Executor) {
		e.tracer = tracer
	}
}

// WithPublisher publishes lifecycle events for every run.
func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(e *Executor) {
		e.publisher = publisher
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Executor) {
		e.newID = newID
	}
}

func NewExecutor(catalog registry.Catalog, opts ...Option) *Executor {
	executor := &Executor{
		catalog: catalog,
		logger:  slog.Default(),
		delay:   DefaultDelay,
		tracer:  otel.Tracer("skillflow/executor"),
		newID:   uuid.NewString,
		now:     func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

type run struct {
	*Executor

	id       string
	workflow *models.Workflow
	state    *models.ExecutionState
	progress ProgressFunc
	started  time.Time
	logger   *slog.Logger
}

// Execute runs wf and returns its final state. The workflow is copied before
// the run starts, so later edits by the caller do not affect it.
//
// A cycle fails the run before any node executes. Cancelling ctx aborts the
// run at the next node delay. On failure the returned state still holds every
// result committed so far.
func (e *Executor) Execute(
	ctx context.Context,
	wf *models.Workflow,
	onProgress ProgressFunc,
	initialInputs models.InitialInputs,
) (*models.ExecutionState, error) {
	r := &run{
		Executor: e,
		id:       e.newID(),
		workflow: wf.Clone(),
		progress: onProgress,
		started:  e.now(),
	}
	r.logger = e.logger.With("workflow_id", r.workflow.ID, "execution_id", r.id)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, r.workflow.ID),
		attribute.String(otelhelper.WorkflowNameKey, r.workflow.Name),
		attribute.String(otelhelper.ExecutionIDKey, r.id),
		attribute.Int(otelhelper.NodeCountKey, len(r.workflow.Nodes)),
	)
	defer span.End()

	r.state = &models.ExecutionState{
		WorkflowID:   r.workflow.ID,
		WorkflowName: r.workflow.Name,
		IsRunning:    true,
		NodeStates:   make(map[string]models.NodeExecutionState, len(r.workflow.Nodes)),
		Results:      make([]models.NodeExecutionResult, 0, len(r.workflow.Nodes)),
	}

	for _, node := range r.workflow.Nodes {
		r.state.NodeStates[node.ID] = models.NodeStatePending
	}

	r.logger.InfoContext(ctx, "Starting workflow execution", "nodes", len(r.workflow.Nodes))
	r.emit()
	r.publish(ctx, events.ExecutionStarted{
		BaseEvent:    r.base(events.ExecutionStartedEvent),
		ExecutionID:  r.id,
		WorkflowName: r.workflow.Name,
		NodeCount:    len(r.workflow.Nodes),
	})

	order, err := scheduler.Order(r.workflow.Nodes, r.workflow.Connections)
	if err != nil {
		otelhelper.SetError(span, err)

		return r.fail(ctx, "", err)
	}

	lines := promptHeader(r.workflow)
	outputs := make(map[string]map[string]string, len(order))

	for _, node := range order {
		fragment, err := r.runNode(ctx, node, outputs, initialInputs)
		if err != nil {
			otelhelper.SetError(span, err, attribute.String(otelhelper.NodeIDKey, node.ID))

			return r.fail(ctx, node.ID, err)
		}

		lines = append(lines, fragment)
	}

	r.state.IsRunning = false
	r.state.IsComplete = true
	r.state.CurrentNodeID = ""
	r.state.CompiledPrompt = strings.Join(lines, "\n")

	r.logger.InfoContext(ctx, "Workflow execution completed", "results", len(r.state.Results))
	r.emit()
	r.publish(ctx, events.ExecutionCompleted{
		BaseEvent:    r.base(events.ExecutionCompletedEvent),
		ExecutionID:  r.id,
		NodeCount:    len(r.state.Results),
		PromptLength: len(r.state.CompiledPrompt),
		Duration:     e.now().Sub(r.started),
	})

	return r.state, nil
}

func (r *run) runNode(
	ctx context.Context,
	node *models.WorkflowNode,
	outputs map[string]map[string]string,
	initialInputs models.InitialInputs,
) (string, error) {
	ctx, span := otelhelper.StartSpan(ctx, r.tracer, "workflow.node",
		attribute.String(otelhelper.ExecutionIDKey, r.id),
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.SkillIDKey, node.SkillID),
	)
	defer span.End()

	nodeStarted := r.now()
	logger := r.logger.With("node_id", node.ID, "skill_id", node.SkillID)

	r.state.CurrentNodeID = node.ID
	r.state.NodeStates[node.ID] = models.NodeStateRunning
	r.emit()
	r.publish(ctx, events.NodeStarted{
		BaseEvent:   r.base(events.NodeStartedEvent),
		ExecutionID: r.id,
		NodeID:      node.ID,
		SkillID:     node.SkillID,
	})

	if err := r.wait(ctx); err != nil {
		r.state.NodeStates[node.ID] = models.NodeStateError
		otelhelper.SetError(span, err)

		return "", err
	}

	inputs := r.resolveInputs(node, outputs, initialInputs)

	skill, _ := r.catalog.Skill(node.SkillID)
	schema, _ := r.catalog.Lookup(node.SkillID)

	fragment := RenderNode(node.SkillID, skill, schema, inputs)
	produced := SimulatedOutputs(node.SkillID, schema)
	outputs[node.ID] = produced

	skillName := node.SkillID
	if skill != nil {
		skillName = skill.Name
	}

	if skill == nil || schema == nil {
		logger.WarnContext(ctx, "Skill is not in the catalog, rendering placeholder")
	}

	r.state.Results = append(r.state.Results, models.NodeExecutionResult{
		NodeID:    node.ID,
		SkillID:   node.SkillID,
		SkillName: skillName,
		State:     models.NodeStateCompleted,
		Inputs:    inputs,
		Outputs:   produced,
		Prompt:    fragment,
	})
	r.state.NodeStates[node.ID] = models.NodeStateCompleted

	logger.DebugContext(ctx, "Node completed", "inputs", len(inputs), "outputs", len(produced))
	r.emit()
	r.publish(ctx, events.NodeCompleted{
		BaseEvent:   r.base(events.NodeCompletedEvent),
		ExecutionID: r.id,
		NodeID:      node.ID,
		SkillID:     node.SkillID,
		Outputs:     produced,
		Duration:    r.now().Sub(nodeStarted),
	})

	return fragment, nil
}

// resolveInputs seeds the node inputs with the caller supplied values, then
// lets every incoming connection with a non-empty upstream value override
// them.
func (r *run) resolveInputs(
	node *models.WorkflowNode,
	outputs map[string]map[string]string,
	initialInputs models.InitialInputs,
) map[string]string {
	inputs := make(map[string]string)

	for inputID, value := range initialInputs[node.ID] {
		inputs[inputID] = value
	}

	for _, conn := range r.workflow.Connections {
		if conn.TargetNodeID != node.ID {
			continue
		}

		if value := outputs[conn.SourceNodeID][conn.SourceOutputID]; value != "" {
			inputs[conn.TargetInputID] = value
		}
	}

	return inputs
}

func (r *run) wait(ctx context.Context) error {
	if r.delay == 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(r.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *run) fail(ctx context.Context, nodeID string, err error) (*models.ExecutionState, error) {
	r.state.IsRunning = false
	r.state.Error = err.Error()

	var cyclic *scheduler.CyclicDependencyError
	if errors.As(err, &cyclic) {
		r.logger.WarnContext(ctx, "Workflow contains a cycle", "stranded", cyclic.NodeIDs)
	} else {
		r.logger.ErrorContext(ctx, "Workflow execution failed", "node_id", nodeID, "error", err)
	}

	r.emit()
	r.publish(context.WithoutCancel(ctx), events.ExecutionFailed{
		BaseEvent:   r.base(events.ExecutionFailedEvent),
		ExecutionID: r.id,
		NodeID:      nodeID,
		Error:       err.Error(),
		Duration:    r.now().Sub(r.started),
	})

	return r.state, err
}

func (r *run) emit() {
	if r.progress != nil {
		r.progress(r.state.Snapshot())
	}
}

func (r *run) base(eventType events.EventType) events.BaseEvent {
	return events.BaseEvent{
		ID:         r.newID(),
		Type:       eventType,
		Timestamp:  r.now(),
		WorkflowID: r.workflow.ID,
	}
}

// publish never fails the run: a lost event only costs observability.
func (r *run) publish(ctx context.Context, event eventbus.Event) {
	if r.publisher == nil {
		return
	}

	if err := r.publisher.Publish(ctx, r.workflow.ID, event); err != nil {
		r.logger.WarnContext(ctx, "Failed to publish execution event", "event_type", event.GetType(), "error", err)
	}
}
