// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/n3wth/skillflow/pkg/models"
)

// FixedTime is the clock value used by builders.
var FixedTime = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

// CreateTestNode creates a test WorkflowNode with default values that can be overridden.
func CreateTestNode(overrides ...func(*models.WorkflowNode)) *models.WorkflowNode {
	node := &models.WorkflowNode{
		ID:       uuid.New().String(),
		SkillID:  "research-assistant",
		Position: models.Position{X: 100, Y: 150},
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithNodeID sets the node id.
func WithNodeID(id string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.ID = id
	}
}

// WithSkill sets the skill placed by the node.
func WithSkill(skillID string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.SkillID = skillID
	}
}

// WithPosition sets the node position.
func WithPosition(x, y float64) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Position = models.Position{X: x, Y: y}
	}
}

// Node is shorthand for a node with the given id and skill.
func Node(id, skillID string) *models.WorkflowNode {
	return CreateTestNode(WithNodeID(id), WithSkill(skillID))
}

// Connect builds a connection from source.output to target.input.
func Connect(id, sourceNodeID, sourceOutputID, targetNodeID, targetInputID string) *models.Connection {
	return &models.Connection{
		ID:             id,
		SourceNodeID:   sourceNodeID,
		SourceOutputID: sourceOutputID,
		TargetNodeID:   targetNodeID,
		TargetInputID:  targetInputID,
	}
}

// CreateTestWorkflow creates a named, empty workflow that can be overridden.
func CreateTestWorkflow(overrides ...func(*models.Workflow)) *models.Workflow {
	workflow := &models.Workflow{
		ID:          uuid.New().String(),
		Name:        "Test Workflow",
		Description: "A workflow used in tests",
		Nodes:       []*models.WorkflowNode{},
		Connections: []*models.Connection{},
		CreatedAt:   FixedTime,
		UpdatedAt:   FixedTime,
		Tags:        []string{},
	}

	for _, override := range overrides {
		override(workflow)
	}

	return workflow
}

// WithWorkflowID sets the workflow id.
func WithWorkflowID(id string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.ID = id
	}
}

// WithName sets the workflow name.
func WithName(name string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Name = name
	}
}

// WithNodes replaces the workflow nodes.
func WithNodes(nodes ...*models.WorkflowNode) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Nodes = nodes
	}
}

// WithConnections replaces the workflow connections.
func WithConnections(connections ...*models.Connection) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Connections = connections
	}
}

// WithTags sets the workflow tags.
func WithTags(tags ...string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Tags = tags
	}
}

// ResearchToDraftWorkflow is research-assistant feeding doc-coauthoring:
// n1.findings -> n2.draft.
func ResearchToDraftWorkflow() *models.Workflow {
	return CreateTestWorkflow(
		WithWorkflowID("wf-research"),
		WithName("Research Report"),
		WithNodes(Node("n1", "research-assistant"), Node("n2", "doc-coauthoring")),
		WithConnections(Connect("c1", "n1", "findings", "n2", "draft")),
	)
}

// LinearChainWorkflow is research-assistant -> doc-coauthoring -> docx.
func LinearChainWorkflow() *models.Workflow {
	return CreateTestWorkflow(
		WithWorkflowID("wf-chain"),
		WithName("Chain"),
		WithNodes(
			Node("a", "research-assistant"),
			Node("b", "doc-coauthoring"),
			Node("c", "docx"),
		),
		WithConnections(
			Connect("ab", "a", "findings", "b", "draft"),
			Connect("bc", "b", "revised-document", "c", "document"),
		),
	)
}

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time {
		return t
	}
}

// SequentialIDs returns a generator producing "1", "2", ...
func SequentialIDs() func() string {
	var counter atomic.Int64

	return func() string {
		return strconv.FormatInt(counter.Add(1), 10)
	}
}

// ManualClock is a clock tests move forward explicitly.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}
