// Package builder keeps the state of an interactive editing session: the
// workflow being edited, a pending connection drag, the selected node and the
// messages shown to the user.
package builder

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/n3wth/skillflow/pkg/codec"
	"github.com/n3wth/skillflow/pkg/executor"
	"github.com/n3wth/skillflow/pkg/graph"
	"github.com/n3wth/skillflow/pkg/models"
	"github.com/n3wth/skillflow/pkg/registry"
	"github.com/n3wth/skillflow/pkg/scheduler"
)

// TransientErrorTTL is how long connection and import errors stay visible.
const TransientErrorTTL = 3 * time.Second

// MsgInvalidImport is shown when an imported document is rejected.
const MsgInvalidImport = "Invalid workflow file"

// ErrNameRequired asks the caller to collect a name before saving.
var ErrNameRequired = errors.New("workflow name is required before saving")

var (
	ErrNoPendingConnection = errors.New("no connection in progress")
	ErrInvalidImport       = errors.New("invalid workflow file")
	ErrNoSaver             = errors.New("session has no saver")
)

// Saver persists a workflow once it passed validation.
type Saver interface {
	Save(ctx context.Context, wf *models.Workflow) error
}

// Runner executes a workflow. *executor.Executor satisfies it.
type Runner interface {
	Execute(
		ctx context.Context,
		wf *models.Workflow,
		onProgress executor.ProgressFunc,
		initialInputs models.InitialInputs,
	) (*models.ExecutionState, error)
}

// SaveOptions carries the metadata collected by the save dialog.
type SaveOptions struct {
	Name        string   `json:"name"        validate:"required"`
	Description string   `json:"description"`
	IsPublic    bool     `json:"isPublic"`
	Tags        []string `json:"tags"`
}

type Session struct {
	mu sync.Mutex

	catalog registry.Catalog
	editor  *graph.Editor
	runner  Runner
	saver   Saver
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string

	workflow       *models.Workflow
	connectingFrom *graph.Endpoint
	selected       string
	errors         []string
	errorsExpireAt time.Time
	saved          bool
	execution      *models.ExecutionState
}

type Option func(*Session)

// WithWorkflow starts the session from an existing workflow instead of an
// empty one.
func WithWorkflow(wf *models.Workflow) Option {
	return func(s *Session) {
		s.workflow = wf.Clone()
	}
}

func WithSaver(saver Saver) Option {
	return func(s *Session) {
		s.saver = saver
	}
}

func WithRunner(runner Runner) Option {
	return func(s *Session) {
		s.runner = runner
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithClock drives timestamps and transient error expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Session) {
		s.newID = newID
	}
}

func NewSession(catalog registry.Catalog, opts ...Option) *Session {
	session := &Session{
		catalog: catalog,
		logger:  slog.Default(),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}

	for _, opt := range opts {
		opt(session)
	}

	session.editor = graph.NewEditor(catalog, graph.WithClock(session.now), graph.WithIDGenerator(session.newID))

	if session.runner == nil {
		session.runner = executor.NewExecutor(catalog, executor.WithLogger(session.logger))
	}

	if session.workflow == nil {
		now := session.now()
		session.workflow = &models.Workflow{
			ID:          session.newID(),
			Nodes:       []*models.WorkflowNode{},
			Connections: []*models.Connection{},
			CreatedAt:   now,
			UpdatedAt:   now,
			Tags:        []string{},
		}
	}

	return session
}

// Workflow returns a copy of the workflow being edited.
func (s *Session) Workflow() *models.Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.workflow.Clone()
}

// ConnectingFrom returns the output a connection drag started from.
func (s *Session) ConnectingFrom() (graph.Endpoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connectingFrom == nil {
		return graph.Endpoint{}, false
	}

	return *s.connectingFrom, true
}

func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selected
}

// IsSaved reports whether the workflow is unchanged since the last save.
func (s *Session) IsSaved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saved
}

// Execution returns the latest state of the last run, or nil.
func (s *Session) Execution() *models.ExecutionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.execution == nil {
		return nil
	}

	return s.execution.Snapshot()
}

// Errors returns the messages currently shown to the user. Transient errors
// disappear TransientErrorTTL after they were raised.
func (s *Session) Errors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.errorsExpireAt.IsZero() && !s.now().Before(s.errorsExpireAt) {
		s.errors = nil
		s.errorsExpireAt = time.Time{}
	}

	return append([]string{}, s.errors...)
}

func (s *Session) AddNode(skillID string) (*models.WorkflowNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, node, err := s.editor.AddNode(s.workflow, skillID)
	if err != nil {
		return nil, err
	}

	s.workflow = next
	s.saved = false

	return node, nil
}

// RemoveNode deletes the node with its connections and clears the selection.
func (s *Session) RemoveNode(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workflow = s.editor.RemoveNode(s.workflow, nodeID)
	s.selected = ""
	s.saved = false
}

// RemoveSelected deletes the selected node, if any.
func (s *Session) RemoveSelected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == "" {
		return false
	}

	s.workflow = s.editor.RemoveNode(s.workflow, s.selected)
	s.selected = ""
	s.saved = false

	return true
}

// MoveNode places a node, clamped to the visible canvas.
func (s *Session) MoveNode(nodeID string, pos models.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workflow = s.editor.UpdateNodePosition(s.workflow, nodeID, graph.ClampPosition(pos))
}

func (s *Session) Select(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = nodeID
}

func (s *Session) StartConnection(nodeID, outputID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connectingFrom = &graph.Endpoint{NodeID: nodeID, PortID: outputID}
}

// CompleteConnection finishes a drag on the given input. The pending drag is
// always cleared. Incompatible port types raise a transient error; every
// other rejection is silent for the user and only reported to the caller.
func (s *Session) CompleteConnection(targetNodeID, targetInputID string) (*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connectingFrom == nil {
		return nil, ErrNoPendingConnection
	}

	from := *s.connectingFrom
	s.connectingFrom = nil

	next, conn, err := s.editor.AddConnection(s.workflow, from, graph.Endpoint{NodeID: targetNodeID, PortID: targetInputID})
	if err != nil {
		if graph.IsIncompatibleTypes(err) {
			s.setTransientErrors(err.Error())
		}

		return nil, err
	}

	s.workflow = next
	s.saved = false

	return conn, nil
}

func (s *Session) CancelConnection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connectingFrom = nil
}

// Escape abandons the pending drag and the selection.
func (s *Session) Escape() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connectingFrom = nil
	s.selected = ""
}

func (s *Session) RemoveConnection(connectionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workflow = s.editor.RemoveConnection(s.workflow, connectionID)
	s.saved = false
}

// Clear empties the canvas and resets the selection and any pending drag.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workflow = s.editor.Clear(s.workflow)
	s.selected = ""
	s.connectingFrom = nil
	s.saved = false
}

// Save validates and persists the workflow. A blank name returns
// ErrNameRequired so the caller can prompt for one and use SaveWithName.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(s.workflow.Name) == "" {
		return ErrNameRequired
	}

	return s.save(ctx, s.workflow)
}

// SaveWithName applies the save dialog metadata, then validates and
// persists. The metadata is only kept when the save succeeds.
func (s *Session) SaveWithName(ctx context.Context, opts SaveOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.workflow.Clone()
	next.Name = opts.Name
	next.Description = opts.Description
	next.IsPublic = opts.IsPublic
	next.Tags = append([]string{}, opts.Tags...)
	next.UpdatedAt = s.now()

	return s.save(ctx, next)
}

func (s *Session) save(ctx context.Context, wf *models.Workflow) error {
	if s.saver == nil {
		return ErrNoSaver
	}

	result := graph.Validate(wf, s.catalog)
	if !result.Valid {
		s.setErrors(result.Errors...)

		return result.Err()
	}

	if err := s.saver.Save(ctx, wf.Clone()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save workflow", "workflow_id", wf.ID, "error", err)

		return err
	}

	s.workflow = wf
	s.saved = true
	s.setErrors()

	return nil
}

// PrepareRun validates the workflow and returns the inputs the user must
// supply before Run. Validation failures are shown as errors.
func (s *Session) PrepareRun() ([]models.RequiredInput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := graph.Validate(s.workflow, s.catalog)
	if !result.Valid {
		s.setErrors(result.Errors...)

		return nil, result.Err()
	}

	return scheduler.RequiredInputs(s.workflow, s.catalog), nil
}

// Run executes a snapshot of the workflow. The session lock is not held
// while the run is in progress, so editing may continue; the run sees the
// workflow as it was when Run was called.
func (s *Session) Run(
	ctx context.Context,
	initialInputs models.InitialInputs,
	onProgress executor.ProgressFunc,
) (*models.ExecutionState, error) {
	s.mu.Lock()
	wf := s.workflow.Clone()
	s.execution = nil
	s.mu.Unlock()

	state, err := s.runner.Execute(ctx, wf, func(state *models.ExecutionState) {
		s.mu.Lock()
		s.execution = state
		s.mu.Unlock()

		if onProgress != nil {
			onProgress(state.Snapshot())
		}
	}, initialInputs)

	if err != nil {
		s.mu.Lock()
		s.setErrors(err.Error())
		s.mu.Unlock()
	}

	return state, err
}

// Import replaces the workflow with an imported document.
func (s *Session) Import(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	imported, ok := codec.ImportAt(text, s.now(), s.newID)
	if !ok {
		s.setTransientErrors(MsgInvalidImport)

		return ErrInvalidImport
	}

	s.workflow = imported
	s.selected = ""
	s.connectingFrom = nil
	s.saved = false
	s.setErrors()

	return nil
}

// Export renders the workflow as an indented JSON document.
func (s *Session) Export() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return codec.Export(s.workflow)
}

// FileName is the suggested name of an exported document.
func (s *Session) FileName() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.workflow.Name == "" {
		return "workflow.json"
	}

	return s.workflow.Name + ".json"
}

func (s *Session) setErrors(messages ...string) {
	s.errors = messages
	s.errorsExpireAt = time.Time{}
}

func (s *Session) setTransientErrors(messages ...string) {
	s.errors = messages
	s.errorsExpireAt = s.now().Add(TransientErrorTTL)
}
