package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/n3wth/skillflow/pkg/persistence"
	"github.com/n3wth/skillflow/pkg/persistence/postgresql"
	"github.com/n3wth/skillflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"workflows", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	if testing.Short() {
		t.Skip("postgres container tests are skipped in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("skillflow_test"),
			postgres.WithUsername("skillflow"),
			postgres.WithPassword("skillflow"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx, databaseURL
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	var exists bool

	err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = 'workflows')`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "workflows table should exist")

	var version int

	err = db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	assert.NoError(t, p.HealthCheck(ctx))
}

func TestNewPersistence_SaveAndRetrieveWorkflow(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.WorkflowRepository()

	author := "newth-skills"
	workflow := testutil.ResearchToDraftWorkflow()
	workflow.Description = "Research then draft"
	workflow.Tags = []string{"research", "docs"}
	workflow.Author = &author

	require.NoError(t, repo.Save(ctx, workflow))

	retrieved, err := repo.GetByID(ctx, workflow.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved)

	assert.Equal(t, workflow.Name, retrieved.Name)
	assert.Equal(t, workflow.Description, retrieved.Description)
	assert.Equal(t, workflow.Nodes, retrieved.Nodes)
	assert.Equal(t, workflow.Connections, retrieved.Connections)
	assert.Equal(t, workflow.Tags, retrieved.Tags)
	require.NotNil(t, retrieved.Author)
	assert.Equal(t, author, *retrieved.Author)
	assert.True(t, workflow.CreatedAt.Equal(retrieved.CreatedAt))

	notFound, err := repo.GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, notFound)
}

func TestNewPersistence_UpdateAndDeleteWorkflow(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.WorkflowRepository()

	workflow := testutil.ResearchToDraftWorkflow()
	require.NoError(t, repo.Save(ctx, workflow))

	workflow.Name = "Renamed"
	workflow.Connections = nil
	require.NoError(t, repo.Save(ctx, workflow))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Renamed", all[0].Name)
	assert.Empty(t, all[0].Connections)

	require.NoError(t, repo.Delete(ctx, workflow.ID))
	assert.True(t, persistence.IsWorkflowNotFound(repo.Delete(ctx, workflow.ID)))
}

func TestNewPersistence_ListWorkflows(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.WorkflowRepository()

	for i, name := range []string{"Gamma", "Alpha", "Beta"} {
		wf := testutil.CreateTestWorkflow(testutil.WithWorkflowID("wf-"+name), testutil.WithName(name))
		wf.CreatedAt = testutil.FixedTime.Add(time.Duration(i) * time.Hour)
		wf.IsPublic = name != "Beta"
		require.NoError(t, repo.Save(ctx, wf))
	}

	result, err := repo.ListWorkflows(ctx, persistence.ListWorkflowsOptions{
		SortBy:    persistence.SortByName,
		SortOrder: persistence.SortOrderAsc,
		Limit:     1,
	})
	require.NoError(t, err)
	require.Len(t, result.Workflows, 1)
	assert.Equal(t, "Alpha", result.Workflows[0].Name)
	assert.Equal(t, int64(3), result.TotalCount)
	assert.True(t, result.HasNextPage)

	result, err = repo.ListWorkflows(ctx, persistence.ListWorkflowsOptions{PublicOnly: true})
	require.NoError(t, err)
	require.Len(t, result.Workflows, 2)
	assert.Equal(t, "Alpha", result.Workflows[0].Name)
	assert.False(t, result.HasNextPage)
}
