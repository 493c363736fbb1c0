package ai

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBuiltinPrompt(t *testing.T) {
	pm := NewPromptManager("")

	out, err := pm.RenderPrompt(PromptDataSummary, map[string]string{"ROWS": "3", "COLUMNS": "2"})
	require.NoError(t, err)
	assert.Contains(t, out, "- Rows: 3")
	assert.Contains(t, out, "- Columns: 2")
	assert.Contains(t, out, "Keep it concise and business-focused.")
}

func TestPromptsDirOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PromptExecutiveSummary+".txt"), []byte("Summarize {METRICS} briefly."), 0o644))

	pm := NewPromptManager(dir)
	out, err := pm.RenderPrompt(PromptExecutiveSummary, map[string]string{"METRICS": "clicks"})
	require.NoError(t, err)
	assert.Equal(t, "Summarize clicks briefly.", out)

	// Templates missing from the directory still come from the built-in set.
	_, err = pm.LoadPrompt(PromptDataSummary)
	assert.NoError(t, err)
}

func TestUnknownPrompt(t *testing.T) {
	_, err := NewPromptManager("").LoadPrompt("nope")
	assert.Error(t, err)
}
