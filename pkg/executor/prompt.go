package executor

import (
	"fmt"
	"strings"

	"github.com/n3wth/skillflow/pkg/models"
)

const (
	untitledWorkflow = "Untitled"
	noDescription    = "No description provided."
	missingRequired  = "[Required - not connected]"
	missingOptional  = "[Optional - not provided]"
)

// promptHeader returns the opening lines of a compiled prompt.
func promptHeader(wf *models.Workflow) []string {
	name := wf.Name
	if name == "" {
		name = untitledWorkflow
	}

	description := wf.Description
	if description == "" {
		description = noDescription
	}

	return []string{
		"# Workflow: " + name,
		"",
		description,
		"",
		"---",
		"",
	}
}

// RenderNode renders the prompt fragment of one node. A nil skill or schema
// yields the unknown skill placeholder.
func RenderNode(skillID string, skill *models.Skill, schema *models.SkillIOSchema, inputs map[string]string) string {
	if skill == nil || schema == nil {
		return fmt.Sprintf("[Unknown skill: %s]", skillID)
	}

	lines := []string{
		"## " + skill.Name,
		"",
		skill.Description,
		"",
	}

	if len(schema.Inputs) > 0 {
		lines = append(lines, "### Inputs")

		for _, input := range schema.Inputs {
			value := inputs[input.ID]

			switch {
			case value != "":
				lines = append(lines, fmt.Sprintf("- **%s**: %s", input.Name, value))
			case input.Required:
				lines = append(lines, fmt.Sprintf("- **%s**: %s", input.Name, missingRequired))
			default:
				lines = append(lines, fmt.Sprintf("- **%s**: %s", input.Name, missingOptional))
			}
		}

		lines = append(lines, "")
	}

	if len(schema.Outputs) > 0 {
		lines = append(lines, "### Expected Outputs")

		for _, output := range schema.Outputs {
			lines = append(lines, fmt.Sprintf("- **%s** (%s): %s", output.Name, output.Type, output.Description))
		}

		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// SimulatedOutputs returns one placeholder value per declared output.
func SimulatedOutputs(skillID string, schema *models.SkillIOSchema) map[string]string {
	outputs := make(map[string]string)
	if schema == nil {
		return outputs
	}

	for _, output := range schema.Outputs {
		outputs[output.ID] = fmt.Sprintf("[%s from %s]", output.Name, skillID)
	}

	return outputs
}
