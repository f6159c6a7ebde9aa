// Package redis stores workflows in Redis: one JSON value per workflow plus a
// set indexing every stored id.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/n3wth/skillflow/pkg/models"
	"github.com/n3wth/skillflow/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "skillflow:workflow:"
	indexKey  = "skillflow:workflows"
)

// Persistence implements persistence.Persistence on a Redis client.
type Persistence struct {
	client       *redis.Client
	workflowRepo *WorkflowRepository
}

// NewPersistence connects to a redis:// URL.
func NewPersistence(ctx context.Context, logger *slog.Logger, redisURL string) (*Persistence, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewPersistenceWithClient(logger, client), nil
}

// NewPersistenceWithClient wraps an existing client. Closing the persistence
// closes the client.
func NewPersistenceWithClient(logger *slog.Logger, client *redis.Client) *Persistence {
	return &Persistence{
		client:       client,
		workflowRepo: NewWorkflowRepository(client, logger),
	}
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}

type WorkflowRepository struct {
	client *redis.Client
	logger *slog.Logger
}

func NewWorkflowRepository(client *redis.Client, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{client: client, logger: logger}
}

func workflowKey(id string) string {
	return keyPrefix + id
}

// GetAll loads every indexed workflow. Index entries whose value has
// disappeared are skipped.
func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow index: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(ids))
	if len(ids) == 0 {
		return workflows, nil
	}

	slices.Sort(ids)

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, workflowKey(id))
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load workflows: %w", err)
	}

	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			r.logger.WarnContext(ctx, "Workflow index entry without value", "workflow_id", ids[i])

			continue
		}

		workflow, err := decode(ids[i], []byte(raw))
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	raw, err := r.client.Get(ctx, workflowKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to fetch workflow %s: %w", id, err)
	}

	return decode(id, raw)
}

// Save writes the document and its index entry atomically.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	if workflow.UpdatedAt.IsZero() {
		workflow.UpdatedAt = now
	}

	data, err := json.Marshal(workflow)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %s: %w", workflow.ID, err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, workflowKey(workflow.ID), data, 0)
		pipe.SAdd(ctx, indexKey, workflow.ID)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	var deleted *redis.IntCmd

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, workflowKey(id))
		pipe.SRem(ctx, indexKey, id)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	if deleted.Val() == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func (r *WorkflowRepository) ListWorkflows(ctx context.Context, opts persistence.ListWorkflowsOptions) (*persistence.WorkflowListResult, error) {
	if _, err := opts.Normalize(); err != nil {
		return nil, err
	}

	workflows, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return persistence.ListInMemory(workflows, opts)
}

func decode(id string, raw []byte) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := json.Unmarshal(raw, &workflow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", id, err)
	}

	return &workflow, nil
}
