package graph

import (
	"testing"
	"time"

	"github.com/n3wth/skillflow/pkg/models"
	"github.com/n3wth/skillflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var editedAt = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func newTestEditor(t *testing.T) *Editor {
	t.Helper()

	return NewEditor(
		testutil.DefaultRegistry(t),
		WithClock(testutil.FixedClock(editedAt)),
		WithIDGenerator(testutil.SequentialIDs()),
	)
}

func TestEditor_AddNode(t *testing.T) {
	editor := newTestEditor(t)
	original := testutil.CreateTestWorkflow()

	wf, node, err := editor.AddNode(original, "research-assistant")
	require.NoError(t, err)
	require.Len(t, wf.Nodes, 1)
	assert.Equal(t, "node-1", node.ID)
	assert.Equal(t, models.Position{X: 100, Y: 150}, node.Position)
	assert.Equal(t, editedAt, wf.UpdatedAt)

	assert.Empty(t, original.Nodes)
	assert.Equal(t, testutil.FixedTime, original.UpdatedAt)

	wf, node, err = editor.AddNode(wf, "doc-coauthoring")
	require.NoError(t, err)
	assert.Equal(t, models.Position{X: 150, Y: 180}, node.Position)
	assert.Len(t, wf.Nodes, 2)
}

func TestEditor_AddNodeSkillWithoutSchema(t *testing.T) {
	editor := newTestEditor(t)

	wf, _, err := editor.AddNode(testutil.CreateTestWorkflow(), "sql-optimizer")
	require.NoError(t, err)
	assert.Len(t, wf.Nodes, 1)
}

func TestEditor_AddNodeUnknownSkill(t *testing.T) {
	editor := newTestEditor(t)
	original := testutil.CreateTestWorkflow()

	wf, node, err := editor.AddNode(original, "ci-cd-builder")
	require.ErrorIs(t, err, ErrUnknownSkill)
	assert.Nil(t, node)
	assert.Same(t, original, wf)
	assert.Equal(t, testutil.FixedTime, wf.UpdatedAt)
}

func TestDefaultPosition(t *testing.T) {
	tests := []struct {
		count int
		want  models.Position
	}{
		{0, models.Position{X: 100, Y: 150}},
		{1, models.Position{X: 150, Y: 180}},
		{7, models.Position{X: 450, Y: 160}},
		{8, models.Position{X: 100, Y: 190}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultPosition(tt.count), "count %d", tt.count)
	}
}

func TestEditor_RemoveNodeCascades(t *testing.T) {
	editor := newTestEditor(t)
	wf := testutil.LinearChainWorkflow()

	next := editor.RemoveNode(wf, "b")

	require.Len(t, next.Nodes, 2)
	assert.Empty(t, next.Connections)
	for _, conn := range next.Connections {
		assert.NotEqual(t, "b", conn.SourceNodeID)
		assert.NotEqual(t, "b", conn.TargetNodeID)
	}

	assert.Len(t, wf.Connections, 2)
	assert.Equal(t, editedAt, next.UpdatedAt)
}

func TestEditor_RemoveNodeKeepsUnrelatedConnections(t *testing.T) {
	editor := newTestEditor(t)
	wf := testutil.LinearChainWorkflow()

	next := editor.RemoveNode(wf, "a")

	require.Len(t, next.Connections, 1)
	assert.Equal(t, "bc", next.Connections[0].ID)
}

func TestEditor_UpdateNodePosition(t *testing.T) {
	editor := newTestEditor(t)
	wf := testutil.ResearchToDraftWorkflow()

	next := editor.UpdateNodePosition(wf, "n1", models.Position{X: 320, Y: 40})

	assert.Equal(t, models.Position{X: 320, Y: 40}, next.Node("n1").Position)
	assert.Equal(t, models.Position{X: 100, Y: 150}, wf.Node("n1").Position)
}

func TestClampPosition(t *testing.T) {
	assert.Equal(t, models.Position{X: 0, Y: 20}, ClampPosition(models.Position{X: -15, Y: 20}))
	assert.Equal(t, models.Position{X: 5, Y: 0}, ClampPosition(models.Position{X: 5, Y: -1}))
}

func TestEditor_AddConnection(t *testing.T) {
	editor := newTestEditor(t)
	wf := testutil.CreateTestWorkflow(testutil.WithNodes(
		testutil.Node("n1", "research-assistant"),
		testutil.Node("n2", "doc-coauthoring"),
	))

	next, conn, err := editor.AddConnection(wf, Endpoint{"n1", "findings"}, Endpoint{"n2", "draft"})
	require.NoError(t, err)
	require.Len(t, next.Connections, 1)
	assert.Equal(t, "conn-1", conn.ID)
	assert.Equal(t, "n1", conn.SourceNodeID)
	assert.Equal(t, "findings", conn.SourceOutputID)
	assert.Equal(t, "n2", conn.TargetNodeID)
	assert.Equal(t, "draft", conn.TargetInputID)
	assert.Empty(t, wf.Connections)
}

func TestEditor_AddConnectionReplacesExisting(t *testing.T) {
	editor := newTestEditor(t)
	wf := testutil.CreateTestWorkflow(testutil.WithNodes(
		testutil.Node("n1", "research-assistant"),
		testutil.Node("n2", "copywriting"),
		testutil.Node("n3", "doc-coauthoring"),
	))

	wf, first, err := editor.AddConnection(wf, Endpoint{"n1", "findings"}, Endpoint{"n3", "style"})
	require.NoError(t, err)

	wf, second, err := editor.AddConnection(wf, Endpoint{"n2", "copy"}, Endpoint{"n3", "style"})
	require.NoError(t, err)

	targeting := 0
	for _, conn := range wf.Connections {
		if conn.TargetNodeID == "n3" && conn.TargetInputID == "style" {
			targeting++
			assert.Equal(t, second.ID, conn.ID)
		}
	}

	assert.Equal(t, 1, targeting)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestEditor_AddConnectionErrors(t *testing.T) {
	editor := newTestEditor(t)
	wf := testutil.CreateTestWorkflow(testutil.WithNodes(
		testutil.Node("n1", "research-assistant"),
		testutil.Node("n2", "doc-coauthoring"),
		testutil.Node("img", "canvas-design"),
		testutil.Node("opaque", "sql-optimizer"),
	))

	tests := []struct {
		name    string
		from    Endpoint
		to      Endpoint
		wantErr error
	}{
		{"self loop", Endpoint{"n1", "findings"}, Endpoint{"n1", "topic"}, ErrSelfLoop},
		{"missing source node", Endpoint{"ghost", "findings"}, Endpoint{"n2", "draft"}, ErrNodeNotFound},
		{"missing target node", Endpoint{"n1", "findings"}, Endpoint{"ghost", "draft"}, ErrNodeNotFound},
		{"source without schema", Endpoint{"opaque", "query"}, Endpoint{"n2", "draft"}, ErrSchemaNotFound},
		{"unknown output", Endpoint{"n1", "summary"}, Endpoint{"n2", "draft"}, ErrPortNotFound},
		{"unknown input", Endpoint{"n1", "findings"}, Endpoint{"n2", "outline"}, ErrPortNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, conn, err := editor.AddConnection(wf, tt.from, tt.to)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, conn)
			assert.Same(t, wf, next)
		})
	}
}

func TestEditor_AddConnectionIncompatible(t *testing.T) {
	editor := newTestEditor(t)
	wf := testutil.CreateTestWorkflow(testutil.WithNodes(
		testutil.Node("art", "canvas-design"),
		testutil.Node("doc", "doc-coauthoring"),
	))

	_, _, err := editor.AddConnection(wf, Endpoint{"art", "artwork"}, Endpoint{"doc", "style"})
	require.Error(t, err)
	assert.True(t, IsIncompatibleTypes(err))
	assert.EqualError(t, err, "Cannot connect image to text")
}

func TestEditor_RemoveConnectionAndClear(t *testing.T) {
	editor := newTestEditor(t)
	wf := testutil.LinearChainWorkflow()

	next := editor.RemoveConnection(wf, "ab")
	require.Len(t, next.Connections, 1)
	assert.Equal(t, "bc", next.Connections[0].ID)

	cleared := editor.Clear(wf)
	assert.Empty(t, cleared.Nodes)
	assert.Empty(t, cleared.Connections)
	assert.Equal(t, wf.Name, cleared.Name)
	assert.Len(t, wf.Nodes, 3)
}
