package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/n3wth/skillflow/pkg/graph"
	"github.com/n3wth/skillflow/pkg/models"
)

// CreateNodeRequest places a skill on a stored workflow.
type CreateNodeRequest struct {
	SkillID  string           `json:"skillId"  validate:"required"`
	Position *models.Position `json:"position"`
}

// CreateConnectionRequest wires an output port to an input port.
type CreateConnectionRequest struct {
	Source graph.Endpoint `json:"source" validate:"required"`
	Target graph.Endpoint `json:"target" validate:"required"`
}

// AddNode appends a node for the skill and stores the workflow.
func (w *Workflow) AddNode(ctx context.Context, workflowID string, req CreateNodeRequest) (*models.WorkflowNode, error) {
	workflow, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	next, node, err := w.editor.AddNode(workflow, req.SkillID)
	if err != nil {
		return nil, NewValidationError("AddNode", "UNKNOWN_SKILL", err.Error(), errors.Join(ErrInvalidRequest, err))
	}

	if req.Position != nil {
		next = w.editor.UpdateNodePosition(next, node.ID, graph.ClampPosition(*req.Position))
		node = next.Node(node.ID)
	}

	if err := w.store(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to add node: %w", err)
	}

	return node, nil
}

// MoveNode updates a node position, clamped to the canvas.
func (w *Workflow) MoveNode(ctx context.Context, workflowID, nodeID string, pos models.Position) (*models.WorkflowNode, error) {
	workflow, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if workflow.Node(nodeID) == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	next := w.editor.UpdateNodePosition(workflow, nodeID, graph.ClampPosition(pos))

	if err := w.store(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to move node: %w", err)
	}

	return next.Node(nodeID), nil
}

// DeleteNode removes a node together with every connection touching it.
func (w *Workflow) DeleteNode(ctx context.Context, workflowID, nodeID string) error {
	workflow, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return err
	}

	if workflow.Node(nodeID) == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	if err := w.store(ctx, w.editor.RemoveNode(workflow, nodeID)); err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}

	return nil
}

// AddConnection connects two ports of a stored workflow. An existing
// connection into the same input is replaced.
func (w *Workflow) AddConnection(
	ctx context.Context,
	workflowID string,
	req CreateConnectionRequest,
) (*models.Connection, error) {
	workflow, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	next, conn, err := w.editor.AddConnection(workflow, req.Source, req.Target)
	if err != nil {
		code := "INVALID_CONNECTION"
		if graph.IsIncompatibleTypes(err) {
			code = "INCOMPATIBLE_TYPES"
		}

		return nil, NewValidationError("AddConnection", code, err.Error(), errors.Join(ErrInvalidConnection, err))
	}

	if err := w.store(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to add connection: %w", err)
	}

	return conn, nil
}

// DeleteConnection removes a connection by id.
func (w *Workflow) DeleteConnection(ctx context.Context, workflowID, connectionID string) error {
	workflow, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return err
	}

	found := false

	for _, conn := range workflow.Connections {
		if conn.ID == connectionID {
			found = true

			break
		}
	}

	if !found {
		return fmt.Errorf("%w: %s", ErrConnectionNotFound, connectionID)
	}

	if err := w.store(ctx, w.editor.RemoveConnection(workflow, connectionID)); err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}

	return nil
}
