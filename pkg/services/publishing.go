package services

import (
	"context"
	"fmt"

	"github.com/n3wth/skillflow/pkg/codec"
	"github.com/n3wth/skillflow/pkg/models"
	"github.com/n3wth/skillflow/pkg/templates"
)

// CreateFromTemplate stores a copy of a seed template.
func (w *Workflow) CreateFromTemplate(ctx context.Context, templateID string) (*models.Workflow, error) {
	tpl, ok := templates.Get(templateID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
	}

	copied := templates.Copy(tpl, w.now(), w.newID())
	normalize(copied)

	if err := w.store(ctx, copied); err != nil {
		return nil, fmt.Errorf("failed to copy template: %w", err)
	}

	return copied, nil
}

// Import parses an exported document and stores it as a new workflow.
func (w *Workflow) Import(ctx context.Context, text string) (*models.Workflow, error) {
	imported, ok := codec.ImportAt(text, w.now(), w.newID)
	if !ok {
		return nil, NewValidationError("Import", "INVALID_IMPORT", "Invalid workflow file", ErrInvalidImport)
	}

	normalize(imported)

	if err := w.store(ctx, imported); err != nil {
		return nil, fmt.Errorf("failed to import workflow: %w", err)
	}

	return imported, nil
}

// Export renders a stored workflow as an indented JSON document.
func (w *Workflow) Export(ctx context.Context, workflowID string) (string, error) {
	workflow, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return "", err
	}

	return codec.Export(workflow)
}

// Share builds a link that carries the whole workflow in its query string.
func (w *Workflow) Share(ctx context.Context, workflowID, baseURL string) (string, error) {
	workflow, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return "", err
	}

	link, ok := codec.ShareURL(baseURL, workflow)
	if !ok {
		return "", &ServiceError{
			Op:      "Share",
			Code:    "SHARE_TOO_LARGE",
			Message: fmt.Sprintf("workflow exceeds %d characters when encoded", codec.MaxShareLength),
			Err:     ErrShareTooLarge,
		}
	}

	return link, nil
}
