// Package registry holds the skill catalog: display metadata and the port
// contract of every known skill.
package registry

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/n3wth/skillflow/pkg/models"
)

// Catalog is the read side of the registry used by the graph editor, the
// scheduler and the executor. A missing entry is reported with false, never an
// error: callers decide how to treat an opaque node.
type Catalog interface {
	Lookup(skillID string) (*models.SkillIOSchema, bool)
	Skill(skillID string) (*models.Skill, bool)
}

type Registry struct {
	logger  *slog.Logger
	mu      sync.RWMutex
	skills  map[string]*models.Skill
	schemas map[string]*models.SkillIOSchema
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:  logger,
		skills:  make(map[string]*models.Skill),
		schemas: make(map[string]*models.SkillIOSchema),
	}
}

// Register adds a skill and its optional port contract. Both values are
// copied; later changes by the caller are not observed.
func (r *Registry) Register(skill *models.Skill, schema *models.SkillIOSchema) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if skill != nil {
		r.skills[skill.ID] = skill.Clone()
	}

	if schema != nil {
		r.schemas[schema.SkillID] = schema.Clone()
	}
}

// Lookup returns a copy of the port contract of skillID.
func (r *Registry) Lookup(skillID string) (*models.SkillIOSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, ok := r.schemas[skillID]
	if !ok {
		return nil, false
	}

	return schema.Clone(), true
}

// Skill returns a copy of the catalog entry of skillID.
func (r *Registry) Skill(skillID string) (*models.Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	skill, ok := r.skills[skillID]
	if !ok {
		return nil, false
	}

	return skill.Clone(), true
}

// Skills returns every catalog entry sorted by id.
func (r *Registry) Skills() []*models.Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()

	skills := make([]*models.Skill, 0, len(r.skills))
	for _, skill := range r.skills {
		skills = append(skills, skill.Clone())
	}

	sort.Slice(skills, func(i, j int) bool {
		return skills[i].ID < skills[j].ID
	})

	return skills
}

// SchemaCount returns the number of skills with a port contract.
func (r *Registry) SchemaCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.schemas)
}

func (r *Registry) HealthCheck() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.skills) == 0 {
		return "no skills registered", false
	}

	return "registry ok", true
}
