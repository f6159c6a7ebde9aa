// Package graph edits and validates workflow graphs. Every operation is pure:
// it returns a new workflow and leaves its argument untouched.
package graph

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/n3wth/skillflow/pkg/compat"
	"github.com/n3wth/skillflow/pkg/models"
	"github.com/n3wth/skillflow/pkg/registry"
)

// Endpoint addresses a port on a node.
type Endpoint struct {
	NodeID string `json:"nodeId" validate:"required"`
	PortID string `json:"portId" validate:"required"`
}

type Editor struct {
	catalog registry.Catalog
	now     func() time.Time
	newID   func() string
}

type Option func(*Editor)

// WithClock sets the clock used to stamp UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		e.now = now
	}
}

// WithIDGenerator sets the generator used for node and connection ids.
func WithIDGenerator(newID func() string) Option {
	return func(e *Editor) {
		e.newID = newID
	}
}

func NewEditor(catalog registry.Catalog, opts ...Option) *Editor {
	editor := &Editor{
		catalog: catalog,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}

	for _, opt := range opts {
		opt(editor)
	}

	return editor
}

// DefaultPosition spreads nodes so repeated additions do not stack.
func DefaultPosition(nodeCount int) models.Position {
	return models.Position{
		X: float64(100 + (nodeCount*50)%400),
		Y: float64(150 + (nodeCount*30)%200),
	}
}

// ClampPosition keeps a dragged node inside the canvas.
func ClampPosition(pos models.Position) models.Position {
	return models.Position{X: max(pos.X, 0), Y: max(pos.Y, 0)}
}

// AddNode appends a node for skillID. A skill unknown to the catalog leaves
// the workflow unchanged and returns ErrUnknownSkill alongside it.
func (e *Editor) AddNode(wf *models.Workflow, skillID string) (*models.Workflow, *models.WorkflowNode, error) {
	if _, ok := e.catalog.Skill(skillID); !ok {
		return wf, nil, fmt.Errorf("%w: %s", ErrUnknownSkill, skillID)
	}

	next := wf.Clone()
	node := &models.WorkflowNode{
		ID:       "node-" + e.newID(),
		SkillID:  skillID,
		Position: DefaultPosition(len(wf.Nodes)),
	}

	next.Nodes = append(next.Nodes, node)
	next.UpdatedAt = e.now()

	return next, node, nil
}

// RemoveNode drops the node and every connection touching it.
func (e *Editor) RemoveNode(wf *models.Workflow, nodeID string) *models.Workflow {
	next := wf.Clone()

	next.Nodes = filter(next.Nodes, func(n *models.WorkflowNode) bool {
		return n.ID != nodeID
	})
	next.Connections = filter(next.Connections, func(c *models.Connection) bool {
		return c.SourceNodeID != nodeID && c.TargetNodeID != nodeID
	})
	next.UpdatedAt = e.now()

	return next
}

// UpdateNodePosition moves a node. Unknown node ids are ignored.
func (e *Editor) UpdateNodePosition(wf *models.Workflow, nodeID string, pos models.Position) *models.Workflow {
	next := wf.Clone()

	if node := next.Node(nodeID); node != nil {
		node.Position = pos
	}

	next.UpdatedAt = e.now()

	return next
}

// AddConnection wires from's output to to's input. A connection already
// feeding the same input is replaced.
func (e *Editor) AddConnection(wf *models.Workflow, from, to Endpoint) (*models.Workflow, *models.Connection, error) {
	if from.NodeID == to.NodeID {
		return wf, nil, ErrSelfLoop
	}

	output, err := e.resolve(wf, from, (*models.SkillIOSchema).Output)
	if err != nil {
		return wf, nil, fmt.Errorf("source: %w", err)
	}

	input, err := e.resolve(wf, to, (*models.SkillIOSchema).Input)
	if err != nil {
		return wf, nil, fmt.Errorf("target: %w", err)
	}

	if !compat.IsCompatible(output.Type, input.Type) {
		return wf, nil, &IncompatibleTypesError{Producer: output.Type, Consumer: input.Type}
	}

	conn := &models.Connection{
		ID:             "conn-" + e.newID(),
		SourceNodeID:   from.NodeID,
		SourceOutputID: from.PortID,
		TargetNodeID:   to.NodeID,
		TargetInputID:  to.PortID,
	}

	next := wf.Clone()
	next.Connections = append(filter(next.Connections, func(c *models.Connection) bool {
		return c.TargetNodeID != to.NodeID || c.TargetInputID != to.PortID
	}), conn)
	next.UpdatedAt = e.now()

	return next, conn, nil
}

// RemoveConnection drops a connection by id.
func (e *Editor) RemoveConnection(wf *models.Workflow, connectionID string) *models.Workflow {
	next := wf.Clone()

	next.Connections = filter(next.Connections, func(c *models.Connection) bool {
		return c.ID != connectionID
	})
	next.UpdatedAt = e.now()

	return next
}

// Clear empties the canvas and keeps the workflow metadata.
func (e *Editor) Clear(wf *models.Workflow) *models.Workflow {
	next := wf.Clone()
	next.Nodes = []*models.WorkflowNode{}
	next.Connections = []*models.Connection{}
	next.UpdatedAt = e.now()

	return next
}

func (e *Editor) resolve(
	wf *models.Workflow,
	endpoint Endpoint,
	port func(*models.SkillIOSchema, string) (models.SkillIO, bool),
) (models.SkillIO, error) {
	node := wf.Node(endpoint.NodeID)
	if node == nil {
		return models.SkillIO{}, fmt.Errorf("%w: %s", ErrNodeNotFound, endpoint.NodeID)
	}

	schema, ok := e.catalog.Lookup(node.SkillID)
	if !ok {
		return models.SkillIO{}, fmt.Errorf("%w: %s", ErrSchemaNotFound, node.SkillID)
	}

	found, ok := port(schema, endpoint.PortID)
	if !ok {
		return models.SkillIO{}, fmt.Errorf("%w: %q on skill %q", ErrPortNotFound, endpoint.PortID, node.SkillID)
	}

	return found, nil
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}

	return out
}
