// Package scheduler orders workflow nodes so producers run before consumers.
package scheduler

import (
	"fmt"
	"strings"

	"github.com/n3wth/skillflow/pkg/models"
	"github.com/n3wth/skillflow/pkg/registry"
)

// CyclicDependencyError names the nodes that could not be scheduled because
// they sit on or behind a cycle.
type CyclicDependencyError struct {
	NodeIDs []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("workflow contains a cycle: nodes %s cannot be scheduled", strings.Join(e.NodeIDs, ", "))
}

// Order sorts nodes with Kahn's algorithm. The queue is seeded in declaration
// order, so independent nodes keep their relative position. Connections to
// or from unknown nodes are ignored.
//
// When a cycle strands nodes, the schedulable prefix is returned together
// with a *CyclicDependencyError listing the stranded ids in declaration order.
func Order(nodes []*models.WorkflowNode, connections []*models.Connection) ([]*models.WorkflowNode, error) {
	inDegree := make(map[string]int, len(nodes))
	for _, node := range nodes {
		inDegree[node.ID] = 0
	}

	adjacency := make(map[string][]string, len(nodes))
	for _, conn := range connections {
		_, sourceKnown := inDegree[conn.SourceNodeID]
		_, targetKnown := inDegree[conn.TargetNodeID]

		if !sourceKnown || !targetKnown {
			continue
		}

		adjacency[conn.SourceNodeID] = append(adjacency[conn.SourceNodeID], conn.TargetNodeID)
		inDegree[conn.TargetNodeID]++
	}

	byID := make(map[string]*models.WorkflowNode, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, node := range nodes {
		byID[node.ID] = node

		if inDegree[node.ID] == 0 {
			queue = append(queue, node.ID)
		}
	}

	ordered := make([]*models.WorkflowNode, 0, len(nodes))
	visited := make(map[string]bool, len(nodes))

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		ordered = append(ordered, byID[id])
		visited[id] = true

		for _, next := range adjacency[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(ordered) == len(nodes) {
		return ordered, nil
	}

	stranded := make([]string, 0, len(nodes)-len(ordered))
	for _, node := range nodes {
		if !visited[node.ID] {
			stranded = append(stranded, node.ID)
		}
	}

	return ordered, &CyclicDependencyError{NodeIDs: stranded}
}

// EntryNodes returns the nodes without incoming connections, in declaration
// order.
func EntryNodes(wf *models.Workflow) []*models.WorkflowNode {
	targets := make(map[string]bool, len(wf.Connections))
	for _, conn := range wf.Connections {
		targets[conn.TargetNodeID] = true
	}

	entries := make([]*models.WorkflowNode, 0, len(wf.Nodes))
	for _, node := range wf.Nodes {
		if !targets[node.ID] {
			entries = append(entries, node)
		}
	}

	return entries
}

// RequiredInputs lists the required inputs of entry nodes. The list depends
// on the graph only; values supplied for a run never shrink it. Entry nodes
// whose skill has no schema contribute nothing.
func RequiredInputs(wf *models.Workflow, catalog registry.Catalog) []models.RequiredInput {
	required := make([]models.RequiredInput, 0)

	for _, node := range EntryNodes(wf) {
		schema, ok := catalog.Lookup(node.SkillID)
		if !ok {
			continue
		}

		name := node.SkillID
		if skill, ok := catalog.Skill(node.SkillID); ok {
			name = skill.Name
		}

		for _, input := range schema.Inputs {
			if !input.Required {
				continue
			}

			required = append(required, models.RequiredInput{
				NodeID:      node.ID,
				NodeName:    name,
				InputID:     input.ID,
				InputName:   input.Name,
				InputType:   input.Type,
				Description: input.Description,
			})
		}
	}

	return required
}
