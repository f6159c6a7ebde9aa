// Package models defines the domain types shared by the skill workflow graph:
// skill port contracts, workflows and execution state.
package models

import "time"

// Position is a canvas coordinate of a node.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WorkflowNode is a skill placed on the canvas. SkillID may reference a skill
// unknown to the catalog; the graph tolerates it while editing.
type WorkflowNode struct {
	ID       string   `json:"id"       validate:"required"`
	SkillID  string   `json:"skillId"  validate:"required"`
	Position Position `json:"position"`
}

// Connection is a directed edge from an output port of one node to an input
// port of another.
type Connection struct {
	ID             string `json:"id"             validate:"required"`
	SourceNodeID   string `json:"sourceNodeId"   validate:"required"`
	SourceOutputID string `json:"sourceOutputId" validate:"required"`
	TargetNodeID   string `json:"targetNodeId"   validate:"required"`
	TargetInputID  string `json:"targetInputId"  validate:"required"`
}

// Workflow is the aggregate of nodes and connections.
type Workflow struct {
	ID          string          `json:"id"               validate:"required"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Nodes       []*WorkflowNode `json:"nodes"            validate:"dive,required"`
	Connections []*Connection   `json:"connections"      validate:"dive,required"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	IsPublic    bool            `json:"isPublic"`
	Tags        []string        `json:"tags"`
	Author      *string         `json:"author,omitempty"`
}

// Node returns the node with the given id, or nil.
func (w *Workflow) Node(id string) *WorkflowNode {
	for _, node := range w.Nodes {
		if node != nil && node.ID == id {
			return node
		}
	}

	return nil
}

// Clone returns a deep copy of the workflow. Nil nodes and connections are
// dropped.
func (w *Workflow) Clone() *Workflow {
	if w == nil {
		return nil
	}

	clone := *w

	clone.Nodes = make([]*WorkflowNode, 0, len(w.Nodes))
	for _, node := range w.Nodes {
		if node == nil {
			continue
		}

		n := *node
		clone.Nodes = append(clone.Nodes, &n)
	}

	clone.Connections = make([]*Connection, 0, len(w.Connections))
	for _, conn := range w.Connections {
		if conn == nil {
			continue
		}

		c := *conn
		clone.Connections = append(clone.Connections, &c)
	}

	if w.Tags != nil {
		clone.Tags = append([]string{}, w.Tags...)
	}

	if w.Author != nil {
		author := *w.Author
		clone.Author = &author
	}

	return &clone
}
