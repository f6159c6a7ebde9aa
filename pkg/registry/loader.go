package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/n3wth/skillflow/pkg/models"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrInvalidCatalog is returned when a catalog document does not match the
// expected shape.
var ErrInvalidCatalog = errors.New("invalid catalog")

const catalogSchema = `{
  "type": "object",
  "required": ["skills"],
  "properties": {
    "version": {"type": "integer", "minimum": 1},
    "skills": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "category": {"type": "string"},
          "tags": {"type": ["array", "null"], "items": {"type": "string"}},
          "io": {
            "type": "object",
            "additionalProperties": false,
            "properties": {
              "inputs": {"$ref": "#/definitions/ports"},
              "outputs": {"$ref": "#/definitions/ports"}
            }
          }
        }
      }
    }
  },
  "definitions": {
    "ports": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["id", "name", "type"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string"},
          "type": {"enum": ["text", "code", "document", "data", "image", "presentation", "analysis", "any"]},
          "description": {"type": "string"},
          "required": {"type": "boolean"}
        }
      }
    }
  }
}`

type catalogFile struct {
	Version int            `yaml:"version"`
	Skills  []catalogEntry `yaml:"skills"  validate:"dive"`
}

type catalogEntry struct {
	models.Skill `yaml:",inline"`

	IO *catalogIO `yaml:"io,omitempty"`
}

type catalogIO struct {
	Inputs  []models.SkillIO `yaml:"inputs"  validate:"dive"`
	Outputs []models.SkillIO `yaml:"outputs" validate:"dive"`
}

// NewDefaultRegistry returns a registry filled with the built-in catalog.
func NewDefaultRegistry(logger *slog.Logger) (*Registry, error) {
	registry := NewRegistry(logger)

	err := registry.load(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in catalog: %w", err)
	}

	logger.Debug("Loaded built-in catalog", "skills", len(registry.skills), "schemas", len(registry.schemas))

	return registry, nil
}

// LoadCatalog reads a YAML or JSON catalog file and returns a registry with
// its entries.
func LoadCatalog(logger *slog.Logger, path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	registry := NewRegistry(logger)

	err = registry.load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}

	logger.Info("Loaded catalog", "path", path, "skills", len(registry.skills), "schemas", len(registry.schemas))

	return registry, nil
}

func (r *Registry) load(data []byte) error {
	var document any
	if err := yaml.Unmarshal(data, &document); err != nil {
		return fmt.Errorf("failed to parse catalog: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(catalogSchema),
		gojsonschema.NewGoLoader(document),
	)
	if err != nil {
		return fmt.Errorf("failed to validate catalog: %w", err)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}

		return fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(messages, "; "))
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to decode catalog: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(file); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	seen := make(map[string]bool, len(file.Skills))
	for _, entry := range file.Skills {
		if seen[entry.ID] {
			return fmt.Errorf("%w: duplicate skill %q", ErrInvalidCatalog, entry.ID)
		}

		seen[entry.ID] = true

		var schema *models.SkillIOSchema
		if entry.IO != nil {
			schema = &models.SkillIOSchema{
				SkillID: entry.ID,
				Inputs:  entry.IO.Inputs,
				Outputs: entry.IO.Outputs,
			}

			if err := checkUniquePorts(schema); err != nil {
				return err
			}
		}

		skill := entry.Skill
		r.Register(&skill, schema)
	}

	return nil
}

func checkUniquePorts(schema *models.SkillIOSchema) error {
	for kind, ports := range map[string][]models.SkillIO{"input": schema.Inputs, "output": schema.Outputs} {
		seen := make(map[string]bool, len(ports))
		for _, port := range ports {
			if seen[port.ID] {
				return fmt.Errorf("%w: duplicate %s %q on skill %q", ErrInvalidCatalog, kind, port.ID, schema.SkillID)
			}

			seen[port.ID] = true
		}
	}

	return nil
}
