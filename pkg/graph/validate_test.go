package graph

import (
	"testing"

	"github.com/n3wth/skillflow/pkg/models"
	"github.com/n3wth/skillflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	catalog := testutil.DefaultRegistry(t)

	tests := []struct {
		name     string
		workflow *models.Workflow
		want     []string
	}{
		{
			name:     "valid chain",
			workflow: testutil.LinearChainWorkflow(),
			want:     []string{},
		},
		{
			name:     "blank name",
			workflow: testutil.ResearchToDraftWorkflow(),
			want:     []string{MsgNameRequired},
		},
		{
			name: "dangling source and target",
			workflow: testutil.CreateTestWorkflow(
				testutil.WithNodes(testutil.Node("n1", "research-assistant")),
				testutil.WithConnections(testutil.Connect("c1", "ghost", "findings", "phantom", "draft")),
			),
			want: []string{
				"Connection references non-existent source node: ghost",
				"Connection references non-existent target node: phantom",
			},
		},
		{
			name: "unknown ports",
			workflow: testutil.CreateTestWorkflow(
				testutil.WithNodes(testutil.Node("n1", "research-assistant"), testutil.Node("n2", "doc-coauthoring")),
				testutil.WithConnections(testutil.Connect("c1", "n1", "summary", "n2", "outline")),
			),
			want: []string{
				`Invalid output "summary" for skill "research-assistant"`,
				`Invalid input "outline" for skill "doc-coauthoring"`,
			},
		},
		{
			name: "incompatible types",
			workflow: testutil.CreateTestWorkflow(
				testutil.WithNodes(testutil.Node("art", "canvas-design"), testutil.Node("doc", "doc-coauthoring")),
				testutil.WithConnections(testutil.Connect("c1", "art", "artwork", "doc", "style")),
			),
			want: []string{"Incompatible types: image cannot connect to text"},
		},
		{
			name: "skills without schema are not port checked",
			workflow: testutil.CreateTestWorkflow(
				testutil.WithNodes(testutil.Node("n1", "ci-cd-builder"), testutil.Node("n2", "doc-coauthoring")),
				testutil.WithConnections(testutil.Connect("c1", "n1", "anything", "n2", "nothing")),
			),
			want: []string{},
		},
	}

	tests[1].workflow.Name = "   "

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.workflow, catalog)

			assert.Equal(t, tt.want, result.Errors)
			assert.Equal(t, len(tt.want) == 0, result.Valid)
		})
	}
}

func TestValidate_Accumulates(t *testing.T) {
	catalog := testutil.DefaultRegistry(t)
	wf := testutil.CreateTestWorkflow(
		testutil.WithName(""),
		testutil.WithConnections(testutil.Connect("c1", "ghost", "out", "phantom", "in")),
	)

	result := Validate(wf, catalog)

	assert.False(t, result.Valid)
	assert.GreaterOrEqual(t, len(result.Errors), 3)
	assert.Contains(t, result.Errors, MsgNameRequired)
	assert.Contains(t, result.Errors, MsgNodesRequired)
	assert.Contains(t, result.Errors, "Connection references non-existent source node: ghost")
}

func TestValidationResult_Err(t *testing.T) {
	assert.NoError(t, ValidationResult{Valid: true, Errors: []string{}}.Err())

	err := ValidationResult{Errors: []string{MsgNameRequired, MsgNodesRequired}}.Err()
	require.Error(t, err)

	messages, ok := ValidationMessages(err)
	require.True(t, ok)
	assert.Equal(t, []string{MsgNameRequired, MsgNodesRequired}, messages)
	assert.Contains(t, err.Error(), MsgNodesRequired)
}
