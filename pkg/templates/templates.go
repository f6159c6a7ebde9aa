package templates

import (
	"time"

	"github.com/n3wth/skillflow/pkg/models"
)

const copySuffix = " (Copy)"

// All returns copies of every seed template in display order.
func All() []*models.Workflow {
	all := make([]*models.Workflow, 0, len(seeds))
	for _, seed := range seeds {
		all = append(all, seed.Clone())
	}

	return all
}

// Get returns a copy of the template with the given id.
func Get(id string) (*models.Workflow, bool) {
	for _, seed := range seeds {
		if seed.ID == id {
			return seed.Clone(), true
		}
	}

	return nil, false
}

// Copy turns a template into a private workflow owned by the caller.
func Copy(tpl *models.Workflow, now time.Time, id string) *models.Workflow {
	wf := tpl.Clone()
	wf.ID = id
	wf.Name = tpl.Name + copySuffix
	wf.CreatedAt = now
	wf.UpdatedAt = now
	wf.Author = nil
	wf.IsPublic = false

	return wf
}
