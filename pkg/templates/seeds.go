// Package templates holds the seed workflows offered as starting points in
// the builder.
package templates

import (
	"time"

	"github.com/n3wth/skillflow/pkg/models"
)

var seedAuthor = "newth-skills"

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func node(id, skillID string, x, y float64) *models.WorkflowNode {
	return &models.WorkflowNode{ID: id, SkillID: skillID, Position: models.Position{X: x, Y: y}}
}

func connect(id, sourceNodeID, sourceOutputID, targetNodeID, targetInputID string) *models.Connection {
	return &models.Connection{
		ID:             id,
		SourceNodeID:   sourceNodeID,
		SourceOutputID: sourceOutputID,
		TargetNodeID:   targetNodeID,
		TargetInputID:  targetInputID,
	}
}

// ci-cd-setup references ci-cd-builder, which has no catalog entry; running it
// renders the unknown skill placeholder for that node.
var seeds = []*models.Workflow{
	{
		ID:          "research-report",
		Name:        "Research Report Generator",
		Description: "Automatically research a topic and generate a comprehensive report document",
		Nodes: []*models.WorkflowNode{
			node("node-1", "research-assistant", 100, 200),
			node("node-2", "doc-coauthoring", 400, 200),
			node("node-3", "docx", 700, 200),
		},
		Connections: []*models.Connection{
			connect("conn-1", "node-1", "findings", "node-2", "draft"),
			connect("conn-2", "node-2", "revised-document", "node-3", "content"),
		},
		CreatedAt: date(2026, 1, 15),
		UpdatedAt: date(2026, 1, 15),
		Author:    &seedAuthor,
		IsPublic:  true,
		Tags:      []string{"research", "documents", "automation"},
	},
	{
		ID:          "business-presentation",
		Name:        "Business Strategy Presentation",
		Description: "Analyze a business question and create a professional presentation with the findings",
		Nodes: []*models.WorkflowNode{
			node("node-1", "business-panel", 100, 200),
			node("node-2", "pptx", 400, 200),
		},
		Connections: []*models.Connection{
			connect("conn-1", "node-1", "analysis", "node-2", "content"),
		},
		CreatedAt: date(2026, 1, 10),
		UpdatedAt: date(2026, 1, 10),
		Author:    &seedAuthor,
		IsPublic:  true,
		Tags:      []string{"business", "presentations", "strategy"},
	},
	{
		ID:          "animated-landing",
		Name:        "Animated Landing Page",
		Description: "Design a landing page with beautiful GSAP animations",
		Nodes: []*models.WorkflowNode{
			node("node-1", "frontend-design", 100, 200),
			node("node-2", "gsap-animations", 400, 200),
		},
		Connections: []*models.Connection{
			connect("conn-1", "node-1", "component-code", "node-2", "target"),
		},
		CreatedAt: date(2026, 1, 5),
		UpdatedAt: date(2026, 1, 5),
		Author:    &seedAuthor,
		IsPublic:  true,
		Tags:      []string{"development", "animation", "ui"},
	},
	{
		ID:          "generative-art-skill",
		Name:        "Custom Art Skill Creator",
		Description: "Create a new skill for generating algorithmic art in a specific style",
		Nodes: []*models.WorkflowNode{
			node("node-1", "algorithmic-art", 100, 200),
			node("node-2", "skill-creator", 400, 200),
		},
		Connections: []*models.Connection{
			connect("conn-1", "node-1", "p5-code", "node-2", "requirements"),
		},
		CreatedAt: date(2026, 1, 1),
		UpdatedAt: date(2026, 1, 1),
		Author:    &seedAuthor,
		IsPublic:  true,
		Tags:      []string{"creative", "skills", "art"},
	},
	{
		ID:          "email-campaign",
		Name:        "Email Campaign Generator",
		Description: "Write compelling email copy, design templates, and prepare for delivery",
		Nodes: []*models.WorkflowNode{
			node("node-1", "copywriting", 100, 200),
			node("node-2", "theme-factory", 350, 200),
			node("node-3", "docx", 600, 200),
		},
		Connections: []*models.Connection{
			connect("conn-1", "node-1", "copy", "node-2", "artifact"),
			connect("conn-2", "node-2", "styled-artifact", "node-3", "content"),
		},
		CreatedAt: date(2026, 1, 20),
		UpdatedAt: date(2026, 1, 20),
		Author:    &seedAuthor,
		IsPublic:  true,
		Tags:      []string{"marketing", "email", "copywriting"},
	},
	{
		ID:          "api-documentation",
		Name:        "Complete API Documentation",
		Description: "Generate professional API documentation from code or specifications",
		Nodes: []*models.WorkflowNode{
			node("node-1", "api-docs-generator", 100, 200),
			node("node-2", "doc-coauthoring", 400, 200),
			node("node-3", "pptx", 700, 200),
		},
		Connections: []*models.Connection{
			connect("conn-1", "node-1", "documentation", "node-2", "draft"),
			connect("conn-2", "node-2", "revised-document", "node-3", "content"),
		},
		CreatedAt: date(2026, 1, 18),
		UpdatedAt: date(2026, 1, 18),
		Author:    &seedAuthor,
		IsPublic:  true,
		Tags:      []string{"development", "documentation", "api"},
	},
	{
		ID:          "content-pipeline",
		Name:        "Social Content Pipeline",
		Description: "Write, design, and format content for social media platforms",
		Nodes: []*models.WorkflowNode{
			node("node-1", "copywriting", 100, 150),
			node("node-2", "canvas-design", 350, 150),
			node("node-3", "slack-gif-creator", 600, 150),
		},
		Connections: []*models.Connection{
			connect("conn-1", "node-1", "copy", "node-2", "concept"),
			connect("conn-2", "node-2", "artwork", "node-3", "concept"),
		},
		CreatedAt: date(2026, 1, 16),
		UpdatedAt: date(2026, 1, 16),
		Author:    &seedAuthor,
		IsPublic:  true,
		Tags:      []string{"marketing", "social", "creative"},
	},
	{
		ID:          "invoice-processor",
		Name:        "Automated Invoice Processor",
		Description: "Extract data from invoices, validate, and generate reports",
		Nodes: []*models.WorkflowNode{
			node("node-1", "pdf", 100, 200),
			node("node-2", "xlsx", 400, 200),
			node("node-3", "business-panel", 700, 200),
		},
		Connections: []*models.Connection{
			connect("conn-1", "node-1", "extracted-data", "node-2", "data"),
			connect("conn-2", "node-2", "analysis", "node-3", "context"),
		},
		CreatedAt: date(2026, 1, 14),
		UpdatedAt: date(2026, 1, 14),
		Author:    &seedAuthor,
		IsPublic:  true,
		Tags:      []string{"automation", "finance", "reporting"},
	},
	{
		ID:          "book-chapter",
		Name:        "Book Chapter Writing Workflow",
		Description: "Research, draft, edit, and format a complete book chapter",
		Nodes: []*models.WorkflowNode{
			node("node-1", "research-assistant", 100, 200),
			node("node-2", "doc-coauthoring", 350, 200),
			node("node-3", "docx", 600, 200),
			node("node-4", "pdf", 850, 200),
		},
		Connections: []*models.Connection{
			connect("conn-1", "node-1", "findings", "node-2", "draft"),
			connect("conn-2", "node-2", "revised-document", "node-3", "content"),
			connect("conn-3", "node-3", "output-document", "node-4", "pdf-file"),
		},
		CreatedAt: date(2026, 1, 12),
		UpdatedAt: date(2026, 1, 12),
		Author:    &seedAuthor,
		IsPublic:  true,
		Tags:      []string{"writing", "research", "publishing"},
	},
	{
		ID:          "ci-cd-setup",
		Name:        "CI/CD Pipeline Generator",
		Description: "Create a complete deployment pipeline with testing, building, and deployment stages",
		Nodes: []*models.WorkflowNode{
			node("node-1", "ci-cd-builder", 100, 200),
			node("node-2", "git-workflow", 400, 200),
			node("node-3", "api-docs-generator", 700, 200),
		},
		Connections: []*models.Connection{
			connect("conn-1", "node-1", "pipeline", "node-2", "context"),
			connect("conn-2", "node-2", "commands", "node-3", "api-spec"),
		},
		CreatedAt: date(2026, 1, 10),
		UpdatedAt: date(2026, 1, 10),
		Author:    &seedAuthor,
		IsPublic:  true,
		Tags:      []string{"devops", "automation", "deployment"},
	},
	{
		ID:          "competitor-analysis",
		Name:        "Competitive Intelligence Report",
		Description: "Research competitors and generate actionable competitive analysis",
		Nodes: []*models.WorkflowNode{
			node("node-1", "research-assistant", 100, 200),
			node("node-2", "business-panel", 400, 200),
			node("node-3", "pptx", 700, 200),
		},
		Connections: []*models.Connection{
			connect("conn-1", "node-1", "findings", "node-2", "context"),
			connect("conn-2", "node-2", "recommendations", "node-3", "content"),
		},
		CreatedAt: date(2026, 1, 8),
		UpdatedAt: date(2026, 1, 8),
		Author:    &seedAuthor,
		IsPublic:  true,
		Tags:      []string{"business", "research", "strategy"},
	},
	{
		ID:          "database-optimization",
		Name:        "Database Query Optimization",
		Description: "Analyze, optimize, and document database queries for performance",
		Nodes: []*models.WorkflowNode{
			node("node-1", "sql-optimizer", 100, 200),
			node("node-2", "code-reviewer", 400, 200),
			node("node-3", "api-docs-generator", 700, 200),
		},
		Connections: []*models.Connection{
			connect("conn-1", "node-1", "optimized-query", "node-2", "code"),
			connect("conn-2", "node-2", "feedback", "node-3", "api-spec"),
		},
		CreatedAt: date(2026, 1, 6),
		UpdatedAt: date(2026, 1, 6),
		Author:    &seedAuthor,
		IsPublic:  true,
		Tags:      []string{"database", "performance", "optimization"},
	},
}
