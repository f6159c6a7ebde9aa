package builder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/n3wth/skillflow/pkg/executor"
	"github.com/n3wth/skillflow/pkg/graph"
	"github.com/n3wth/skillflow/pkg/models"
	"github.com/n3wth/skillflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSaver struct {
	mock.Mock
}

func (m *mockSaver) Save(ctx context.Context, wf *models.Workflow) error {
	args := m.Called(ctx, wf)

	return args.Error(0)
}

type fixture struct {
	session *Session
	clock   *testutil.ManualClock
	saver   *mockSaver
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	catalog := testutil.DefaultRegistry(t)
	clock := testutil.NewManualClock(testutil.FixedTime)
	saver := &mockSaver{}

	opts = append([]Option{
		WithClock(clock.Now),
		WithIDGenerator(testutil.SequentialIDs()),
		WithSaver(saver),
		WithRunner(executor.NewExecutor(catalog, executor.WithDelay(0))),
	}, opts...)

	return &fixture{
		session: NewSession(catalog, opts...),
		clock:   clock,
		saver:   saver,
	}
}

func TestNewSession_EmptyWorkflow(t *testing.T) {
	f := newFixture(t)

	wf := f.session.Workflow()
	assert.Equal(t, "1", wf.ID)
	assert.Empty(t, wf.Name)
	assert.Empty(t, wf.Nodes)
	assert.Empty(t, wf.Connections)
	assert.Equal(t, testutil.FixedTime, wf.CreatedAt)
	assert.False(t, f.session.IsSaved())
	assert.Empty(t, f.session.Errors())
}

func TestSession_AddAndConnect(t *testing.T) {
	f := newFixture(t)

	research, err := f.session.AddNode("research-assistant")
	require.NoError(t, err)
	draft, err := f.session.AddNode("doc-coauthoring")
	require.NoError(t, err)

	assert.Equal(t, models.Position{X: 100, Y: 150}, research.Position)
	assert.Equal(t, models.Position{X: 150, Y: 180}, draft.Position)

	f.session.StartConnection(research.ID, "findings")
	from, ok := f.session.ConnectingFrom()
	require.True(t, ok)
	assert.Equal(t, graph.Endpoint{NodeID: research.ID, PortID: "findings"}, from)

	conn, err := f.session.CompleteConnection(draft.ID, "draft")
	require.NoError(t, err)

	_, ok = f.session.ConnectingFrom()
	assert.False(t, ok)

	wf := f.session.Workflow()
	require.Len(t, wf.Connections, 1)
	assert.Equal(t, conn.ID, wf.Connections[0].ID)
}

func TestSession_AddUnknownSkill(t *testing.T) {
	f := newFixture(t)

	_, err := f.session.AddNode("nope")
	require.ErrorIs(t, err, graph.ErrUnknownSkill)
	assert.Empty(t, f.session.Workflow().Nodes)
	assert.Empty(t, f.session.Errors())
}

func TestSession_IncompatibleConnectionErrorExpires(t *testing.T) {
	f := newFixture(t)

	research, err := f.session.AddNode("research-assistant")
	require.NoError(t, err)
	docx, err := f.session.AddNode("docx")
	require.NoError(t, err)

	f.session.StartConnection(research.ID, "sources")
	_, err = f.session.CompleteConnection(docx.ID, "template")
	require.True(t, graph.IsIncompatibleTypes(err))

	assert.Equal(t, []string{"Cannot connect data to document"}, f.session.Errors())
	assert.Empty(t, f.session.Workflow().Connections)

	_, ok := f.session.ConnectingFrom()
	assert.False(t, ok)

	f.clock.Advance(TransientErrorTTL - time.Millisecond)
	assert.NotEmpty(t, f.session.Errors())

	f.clock.Advance(time.Millisecond)
	assert.Empty(t, f.session.Errors())
}

func TestSession_CompleteConnectionSilentRejections(t *testing.T) {
	f := newFixture(t, WithWorkflow(testutil.ResearchToDraftWorkflow()))

	_, err := f.session.CompleteConnection("n2", "draft")
	require.ErrorIs(t, err, ErrNoPendingConnection)

	f.session.StartConnection("n1", "findings")
	_, err = f.session.CompleteConnection("n1", "topic")
	require.ErrorIs(t, err, graph.ErrSelfLoop)

	f.session.StartConnection("n1", "missing")
	_, err = f.session.CompleteConnection("n2", "draft")
	require.ErrorIs(t, err, graph.ErrPortNotFound)

	assert.Empty(t, f.session.Errors())
	assert.Len(t, f.session.Workflow().Connections, 1)
}

func TestSession_ReconnectReplacesInput(t *testing.T) {
	f := newFixture(t, WithWorkflow(testutil.ResearchToDraftWorkflow()))

	f.session.StartConnection("n1", "sources")
	conn, err := f.session.CompleteConnection("n2", "draft")
	require.NoError(t, err)

	wf := f.session.Workflow()
	require.Len(t, wf.Connections, 1)
	assert.Equal(t, conn.ID, wf.Connections[0].ID)
	assert.Equal(t, "sources", wf.Connections[0].SourceOutputID)
}

func TestSession_RemoveNodeClearsSelection(t *testing.T) {
	f := newFixture(t, WithWorkflow(testutil.ResearchToDraftWorkflow()))

	f.session.Select("n1")
	f.session.RemoveNode("n1")

	wf := f.session.Workflow()
	assert.Empty(t, f.session.Selected())
	assert.Len(t, wf.Nodes, 1)
	assert.Empty(t, wf.Connections)

	assert.False(t, f.session.RemoveSelected())

	f.session.Select("n2")
	assert.True(t, f.session.RemoveSelected())
	assert.Empty(t, f.session.Workflow().Nodes)
}

func TestSession_MoveNodeClamps(t *testing.T) {
	f := newFixture(t, WithWorkflow(testutil.ResearchToDraftWorkflow()))

	f.session.MoveNode("n1", models.Position{X: -40, Y: 320})

	assert.Equal(t, models.Position{X: 0, Y: 320}, f.session.Workflow().Node("n1").Position)
}

func TestSession_EscapeAndClear(t *testing.T) {
	f := newFixture(t, WithWorkflow(testutil.ResearchToDraftWorkflow()))

	f.session.Select("n1")
	f.session.StartConnection("n1", "findings")
	f.session.Escape()

	_, ok := f.session.ConnectingFrom()
	assert.False(t, ok)
	assert.Empty(t, f.session.Selected())

	f.session.Select("n2")
	f.session.StartConnection("n1", "findings")
	f.session.Clear()

	wf := f.session.Workflow()
	assert.Empty(t, wf.Nodes)
	assert.Empty(t, wf.Connections)
	assert.Equal(t, "Research Report", wf.Name)
	assert.Empty(t, f.session.Selected())

	_, ok = f.session.ConnectingFrom()
	assert.False(t, ok)
}

func TestSession_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("blank name asks for one", func(t *testing.T) {
		f := newFixture(t)

		require.ErrorIs(t, f.session.Save(ctx), ErrNameRequired)
		f.saver.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("invalid workflow keeps errors", func(t *testing.T) {
		f := newFixture(t, WithWorkflow(testutil.CreateTestWorkflow()))

		err := f.session.Save(ctx)

		messages, ok := graph.ValidationMessages(err)
		require.True(t, ok)
		assert.Equal(t, []string{graph.MsgNodesRequired}, messages)
		assert.Equal(t, messages, f.session.Errors())

		f.clock.Advance(time.Hour)
		assert.Equal(t, messages, f.session.Errors())
		assert.False(t, f.session.IsSaved())
	})

	t.Run("valid workflow is persisted", func(t *testing.T) {
		f := newFixture(t, WithWorkflow(testutil.ResearchToDraftWorkflow()))
		f.saver.On("Save", ctx, mock.MatchedBy(func(wf *models.Workflow) bool {
			return wf.ID == "wf-research"
		})).Return(nil).Once()

		require.NoError(t, f.session.Save(ctx))
		assert.True(t, f.session.IsSaved())
		f.saver.AssertExpectations(t)

		_, err := f.session.AddNode("docx")
		require.NoError(t, err)
		assert.False(t, f.session.IsSaved())
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture(t, WithWorkflow(testutil.ResearchToDraftWorkflow()))
		f.saver.On("Save", ctx, mock.Anything).Return(errors.New("disk full"))

		require.EqualError(t, f.session.Save(ctx), "disk full")
		assert.False(t, f.session.IsSaved())
	})
}

func TestSession_SaveWithName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WithWorkflow(testutil.CreateTestWorkflow(
		testutil.WithName(""),
		testutil.WithNodes(testutil.Node("n1", "research-assistant")),
	)))

	f.saver.On("Save", ctx, mock.Anything).Return(nil)

	err := f.session.SaveWithName(ctx, SaveOptions{Name: "   "})
	require.Error(t, err)
	assert.Equal(t, []string{graph.MsgNameRequired}, f.session.Errors())
	assert.Empty(t, f.session.Workflow().Name)

	err = f.session.SaveWithName(ctx, SaveOptions{
		Name:        "Research",
		Description: "Find sources",
		IsPublic:    true,
		Tags:        []string{"research"},
	})
	require.NoError(t, err)

	wf := f.session.Workflow()
	assert.Equal(t, "Research", wf.Name)
	assert.Equal(t, "Find sources", wf.Description)
	assert.True(t, wf.IsPublic)
	assert.Equal(t, []string{"research"}, wf.Tags)
	assert.Empty(t, f.session.Errors())
	f.saver.AssertNumberOfCalls(t, "Save", 1)
}

func TestSession_SaveWithoutSaver(t *testing.T) {
	session := NewSession(testutil.DefaultRegistry(t), WithWorkflow(testutil.ResearchToDraftWorkflow()))

	require.ErrorIs(t, session.Save(context.Background()), ErrNoSaver)
}

func TestSession_PrepareAndRun(t *testing.T) {
	f := newFixture(t, WithWorkflow(testutil.ResearchToDraftWorkflow()))

	required, err := f.session.PrepareRun()
	require.NoError(t, err)
	require.Len(t, required, 1)
	assert.Equal(t, "n1", required[0].NodeID)
	assert.Equal(t, "topic", required[0].InputID)

	var progress int
	state, err := f.session.Run(context.Background(), models.InitialInputs{
		"n1": {"topic": "graph databases"},
	}, func(*models.ExecutionState) {
		progress++
	})
	require.NoError(t, err)

	assert.True(t, state.IsComplete)
	assert.Equal(t, 6, progress)
	assert.Equal(t, state.CompiledPrompt, f.session.Execution().CompiledPrompt)
	assert.Contains(t, state.CompiledPrompt, "- **Topic**: graph databases")
}

func TestSession_PrepareRunInvalid(t *testing.T) {
	f := newFixture(t)

	_, err := f.session.PrepareRun()
	require.Error(t, err)
	assert.ElementsMatch(t, []string{graph.MsgNameRequired, graph.MsgNodesRequired}, f.session.Errors())
}

func TestSession_RunFailureBecomesError(t *testing.T) {
	wf := testutil.CreateTestWorkflow(
		testutil.WithNodes(testutil.Node("x", "doc-coauthoring"), testutil.Node("y", "doc-coauthoring")),
		testutil.WithConnections(
			testutil.Connect("xy", "x", "revised-document", "y", "draft"),
			testutil.Connect("yx", "y", "revised-document", "x", "draft"),
		),
	)
	f := newFixture(t, WithWorkflow(wf))

	state, err := f.session.Run(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, []string{err.Error()}, f.session.Errors())
	assert.Equal(t, err.Error(), state.Error)
}

func TestSession_Import(t *testing.T) {
	f := newFixture(t, WithWorkflow(testutil.ResearchToDraftWorkflow()))

	require.ErrorIs(t, f.session.Import("{}"), ErrInvalidImport)
	assert.Equal(t, []string{MsgInvalidImport}, f.session.Errors())
	assert.Equal(t, "wf-research", f.session.Workflow().ID)

	f.clock.Advance(TransientErrorTTL)
	assert.Empty(t, f.session.Errors())

	exported, err := f.session.Export()
	require.NoError(t, err)

	f.session.Select("n1")
	require.NoError(t, f.session.Import(exported))

	wf := f.session.Workflow()
	assert.Equal(t, "Research Report (Imported)", wf.Name)
	assert.NotEqual(t, "wf-research", wf.ID)
	assert.Len(t, wf.Nodes, 2)
	assert.Empty(t, f.session.Selected())
	assert.Equal(t, "Research Report (Imported).json", f.session.FileName())
}
