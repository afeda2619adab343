package engine

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/sitegen/internal/logging"
	"github.com/conneroisu/sitegen/internal/resolver"
)

func newTestEngine(t *testing.T, files map[string]string) *Engine {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	return New(resolver.New(fs, "data", "", "partials", "layouts"), logging.Nop())
}

func render(t *testing.T, e *Engine, source string, opts Options) (string, error) {
	t.Helper()
	return e.RenderString(context.Background(), "pages/test.html", source, opts)
}
