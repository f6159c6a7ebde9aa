package services

import (
	"strings"
	"testing"

	"github.com/n3wth/skillflow/pkg/codec"
	"github.com/n3wth/skillflow/pkg/models"
	"github.com/n3wth/skillflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflow_CreateFromTemplate(t *testing.T) {
	service, _ := newTestService(t)

	copied, err := service.CreateFromTemplate(t.Context(), "research-report")
	require.NoError(t, err)

	assert.Equal(t, "1", copied.ID)
	assert.True(t, strings.HasSuffix(copied.Name, " (Copy)"))
	assert.Nil(t, copied.Author)
	assert.False(t, copied.IsPublic)
	assert.Equal(t, testutil.FixedTime, copied.CreatedAt)
	assert.NotEmpty(t, copied.Nodes)

	stored, err := service.FetchByID(t.Context(), copied.ID)
	require.NoError(t, err)
	assert.Equal(t, copied.Name, stored.Name)
}

func TestWorkflow_CreateFromTemplate_NotFound(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.CreateFromTemplate(t.Context(), "does-not-exist")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	assert.True(t, IsNotFoundError(err))
}

func TestWorkflow_ExportImport(t *testing.T) {
	service, store := newTestService(t)

	require.NoError(t, store.WorkflowRepository().Save(t.Context(), testutil.ResearchToDraftWorkflow()))

	exported, err := service.Export(t.Context(), "wf-research")
	require.NoError(t, err)
	assert.Contains(t, exported, "\n  \"id\": \"wf-research\"")

	imported, err := service.Import(t.Context(), exported)
	require.NoError(t, err)

	assert.Equal(t, "1", imported.ID)
	assert.Equal(t, "Research Report (Imported)", imported.Name)
	assert.Len(t, imported.Nodes, 2)
	assert.Len(t, imported.Connections, 1)

	stored, err := service.FetchByID(t.Context(), imported.ID)
	require.NoError(t, err)
	assert.Equal(t, imported.Name, stored.Name)
}

func TestWorkflow_Import_Invalid(t *testing.T) {
	service, _ := newTestService(t)

	for _, text := range []string{"", "not json", `{"id":"x","nodes":[]}`} {
		_, err := service.Import(t.Context(), text)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidImport)
		assert.True(t, IsValidationError(err))
	}
}

func TestWorkflow_Share(t *testing.T) {
	service, store := newTestService(t)

	require.NoError(t, store.WorkflowRepository().Save(t.Context(), testutil.ResearchToDraftWorkflow()))

	link, err := service.Share(t.Context(), "wf-research", "https://skills.example.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://skills.example.com/workflows/new?data="))

	decoded, ok := codec.ParseShareURL(link)
	require.True(t, ok)
	assert.Equal(t, "Research Report (Imported)", decoded.Name)
}

func TestWorkflow_Share_TooLarge(t *testing.T) {
	service, store := newTestService(t)

	nodes := make([]*models.WorkflowNode, 0, 40)
	for i := range 40 {
		nodes = append(nodes, testutil.CreateTestNode(testutil.WithNodeID("node-"+strings.Repeat("x", i%5)+string(rune('a'+i%26)))))
	}

	require.NoError(t, store.WorkflowRepository().Save(t.Context(), testutil.CreateTestWorkflow(
		testutil.WithWorkflowID("big"),
		testutil.WithNodes(nodes...),
	)))

	_, err := service.Share(t.Context(), "big", "https://skills.example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShareTooLarge)
	assert.False(t, IsValidationError(err))
}
