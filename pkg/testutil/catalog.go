package testutil

import (
	"log/slog"
	"testing"

	"github.com/n3wth/skillflow/pkg/registry"
	"github.com/stretchr/testify/require"
)

// DefaultRegistry loads the built-in catalog or fails the test.
func DefaultRegistry(t testing.TB) *registry.Registry {
	t.Helper()

	reg, err := registry.NewDefaultRegistry(slog.Default())
	require.NoError(t, err)

	return reg
}
