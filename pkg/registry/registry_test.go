package registry

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/n3wth/skillflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	return path
}

func TestNewDefaultRegistry(t *testing.T) {
	registry, err := NewDefaultRegistry(slog.Default())
	require.NoError(t, err)

	assert.Len(t, registry.Skills(), 45)
	assert.Equal(t, 21, registry.SchemaCount())

	schema, ok := registry.Lookup("research-assistant")
	require.True(t, ok)
	assert.Equal(t, "research-assistant", schema.SkillID)

	topic, ok := schema.Input("topic")
	require.True(t, ok)
	assert.True(t, topic.Required)
	assert.Equal(t, models.IOTypeText, topic.Type)

	findings, ok := schema.Output("findings")
	require.True(t, ok)
	assert.Equal(t, "Findings", findings.Name)
	assert.Equal(t, models.IOTypeAnalysis, findings.Type)

	skill, ok := registry.Skill("doc-coauthoring")
	require.True(t, ok)
	assert.Equal(t, "Doc Co-authoring", skill.Name)
	assert.Equal(t, "business", skill.Category)

	// catalog entries without a port contract
	_, ok = registry.Skill("sql-optimizer")
	assert.True(t, ok)
	_, ok = registry.Lookup("sql-optimizer")
	assert.False(t, ok)

	_, ok = registry.Lookup("ci-cd-builder")
	assert.False(t, ok)
	_, ok = registry.Skill("ci-cd-builder")
	assert.False(t, ok)

	message, healthy := registry.HealthCheck()
	assert.True(t, healthy)
	assert.Equal(t, "registry ok", message)
}

func TestRegistry_LookupReturnsCopies(t *testing.T) {
	registry := NewRegistry(slog.Default())
	registry.Register(
		&models.Skill{ID: "pdf", Name: "PDF Toolkit", Tags: []string{"pdf"}},
		&models.SkillIOSchema{
			SkillID: "pdf",
			Inputs:  []models.SkillIO{{ID: "pdf-file", Name: "PDF", Type: models.IOTypeDocument, Required: true}},
		},
	)

	schema, ok := registry.Lookup("pdf")
	require.True(t, ok)
	schema.Inputs[0].Required = false

	again, _ := registry.Lookup("pdf")
	assert.True(t, again.Inputs[0].Required)

	skill, _ := registry.Skill("pdf")
	skill.Tags[0] = "changed"

	again2, _ := registry.Skill("pdf")
	assert.Equal(t, "pdf", again2.Tags[0])
}

func TestRegistry_SkillsSorted(t *testing.T) {
	registry := NewRegistry(slog.Default())
	registry.Register(&models.Skill{ID: "xlsx", Name: "Spreadsheets"}, nil)
	registry.Register(&models.Skill{ID: "docx", Name: "Word Documents"}, nil)
	registry.Register(&models.Skill{ID: "pdf", Name: "PDF Toolkit"}, nil)

	skills := registry.Skills()
	require.Len(t, skills, 3)
	assert.Equal(t, "docx", skills[0].ID)
	assert.Equal(t, "pdf", skills[1].ID)
	assert.Equal(t, "xlsx", skills[2].ID)
}

func TestRegistry_HealthCheckEmpty(t *testing.T) {
	message, healthy := NewRegistry(slog.Default()).HealthCheck()
	assert.False(t, healthy)
	assert.Equal(t, "no skills registered", message)
}

func TestLoadCatalog(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr bool
		check   func(t *testing.T, registry *Registry)
	}{
		{
			name: "yaml catalog",
			file: "catalog.yaml",
			content: `version: 1
skills:
  - id: summarizer
    name: Summarizer
    category: productivity
    tags: [text]
    io:
      inputs:
        - id: source
          name: Source
          type: document
          required: true
      outputs:
        - id: summary
          name: Summary
          type: text
  - id: opaque
    name: Opaque
`,
			check: func(t *testing.T, registry *Registry) {
				schema, ok := registry.Lookup("summarizer")
				require.True(t, ok)
				require.Len(t, schema.Inputs, 1)
				assert.True(t, schema.Inputs[0].Required)

				_, ok = registry.Lookup("opaque")
				assert.False(t, ok)

				_, ok = registry.Skill("opaque")
				assert.True(t, ok)
			},
		},
		{
			name:    "json catalog",
			file:    "catalog.json",
			content: `{"skills": [{"id": "tagger", "name": "Tagger", "io": {"inputs": [], "outputs": [{"id": "tags", "name": "Tags", "type": "data"}]}}]}`,
			check: func(t *testing.T, registry *Registry) {
				schema, ok := registry.Lookup("tagger")
				require.True(t, ok)
				assert.Empty(t, schema.Inputs)
				assert.Len(t, schema.Outputs, 1)
			},
		},
		{
			name:    "unknown port type",
			file:    "bad-type.yaml",
			content: "skills:\n  - id: a\n    name: A\n    io:\n      inputs:\n        - id: clip\n          name: Clip\n          type: video\n",
			wantErr: true,
		},
		{
			name:    "missing skills",
			file:    "empty.yaml",
			content: "version: 1\n",
			wantErr: true,
		},
		{
			name:    "duplicate skill",
			file:    "dup.yaml",
			content: "skills:\n  - id: a\n    name: A\n  - id: a\n    name: Again\n",
			wantErr: true,
		},
		{
			name:    "duplicate port",
			file:    "dup-port.yaml",
			content: "skills:\n  - id: a\n    name: A\n    io:\n      outputs:\n        - {id: x, name: X, type: text}\n        - {id: x, name: Y, type: code}\n",
			wantErr: true,
		},
		{
			name:    "not yaml",
			file:    "broken.yaml",
			content: "skills: [\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCatalog(t, tt.file, tt.content)

			registry, err := LoadCatalog(slog.Default(), path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, registry)

				return
			}

			require.NoError(t, err)
			tt.check(t, registry)
		})
	}
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	_, err := LoadCatalog(slog.Default(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
