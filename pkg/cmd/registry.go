// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/n3wth/skillflow/pkg/registry"
)

// NewRegistry loads the skill catalog from catalogPath, or the built-in
// catalog when the path is empty.
func NewRegistry(logger *slog.Logger, catalogPath string) (*registry.Registry, error) {
	if catalogPath == "" {
		return registry.NewDefaultRegistry(logger)
	}

	return registry.LoadCatalog(logger, catalogPath)
}
