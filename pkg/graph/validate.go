package graph

import (
	"fmt"
	"strings"

	"github.com/n3wth/skillflow/pkg/compat"
	"github.com/n3wth/skillflow/pkg/models"
	"github.com/n3wth/skillflow/pkg/registry"
)

const (
	MsgNameRequired  = "Workflow name is required"
	MsgNodesRequired = "Workflow must have at least one skill"
)

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Err returns nil for a valid result and a *ValidationError otherwise.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}

	return &ValidationError{Errors: append([]string(nil), r.Errors...)}
}

// Validate checks the workflow and collects every problem it finds. Port
// existence and type compatibility are only checked when both endpoint
// skills have a schema.
func Validate(wf *models.Workflow, catalog registry.Catalog) ValidationResult {
	errs := make([]string, 0)

	if strings.TrimSpace(wf.Name) == "" {
		errs = append(errs, MsgNameRequired)
	}

	if len(wf.Nodes) == 0 {
		errs = append(errs, MsgNodesRequired)
	}

	for _, conn := range wf.Connections {
		source := wf.Node(conn.SourceNodeID)
		target := wf.Node(conn.TargetNodeID)

		if source == nil {
			errs = append(errs, "Connection references non-existent source node: "+conn.SourceNodeID)
		}

		if target == nil {
			errs = append(errs, "Connection references non-existent target node: "+conn.TargetNodeID)
		}

		if source == nil || target == nil {
			continue
		}

		sourceSchema, sourceOK := catalog.Lookup(source.SkillID)
		targetSchema, targetOK := catalog.Lookup(target.SkillID)

		if !sourceOK || !targetOK {
			continue
		}

		output, outputOK := sourceSchema.Output(conn.SourceOutputID)
		input, inputOK := targetSchema.Input(conn.TargetInputID)

		if !outputOK {
			errs = append(errs, fmt.Sprintf("Invalid output %q for skill %q", conn.SourceOutputID, source.SkillID))
		}

		if !inputOK {
			errs = append(errs, fmt.Sprintf("Invalid input %q for skill %q", conn.TargetInputID, target.SkillID))
		}

		if outputOK && inputOK && !compat.IsCompatible(output.Type, input.Type) {
			errs = append(errs, fmt.Sprintf("Incompatible types: %s cannot connect to %s", output.Type, input.Type))
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
