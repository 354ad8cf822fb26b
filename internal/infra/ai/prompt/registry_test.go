package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/docmind/internal/domain/ai"
)

func TestDefaultRegistryTypes(t *testing.T) {
	r := Default()
	assert.Equal(t, []string{"action_items", "explain_simple", "risks", "summary"}, r.Types())
	for _, typ := range r.Types() {
		sys, err := r.SystemPrompt(typ)
		require.NoError(t, err)
		assert.NotEmpty(t, sys)
	}
}

func TestUserContentEmbedsText(t *testing.T) {
	r, err := NewRegistry(map[string]Prompt{"summary": {System: "S", Template: "TEXT: {text}"}})
	require.NoError(t, err)

	got, err := r.UserContent("summary", "hello")
	require.NoError(t, err)
	assert.Equal(t, "TEXT: hello", got)

	sys, err := r.SystemPrompt("summary")
	require.NoError(t, err)
	assert.Equal(t, "S", sys)
}

func TestUnknownAnalysisType(t *testing.T) {
	r := Default()
	assert.False(t, r.Has("poem"))

	_, err := r.SystemPrompt("poem")
	assert.ErrorIs(t, err, ai.ErrUnknownAnalysisType)
	_, err = r.UserContent("poem", "x")
	assert.ErrorIs(t, err, ai.ErrUnknownAnalysisType)
	_, err = r.Lookup("Summary")
	assert.ErrorIs(t, err, ai.ErrUnknownAnalysisType)
}

func TestNewRegistryRejectsBadEntries(t *testing.T) {
	_, err := NewRegistry(map[string]Prompt{"x": {System: "", Template: "{text}"}})
	assert.Error(t, err)
	_, err = NewRegistry(map[string]Prompt{"x": {System: "S", Template: "no placeholder"}})
	assert.Error(t, err)
	_, err = NewRegistry(map[string]Prompt{" ": {System: "S", Template: "{text}"}})
	assert.Error(t, err)
}

func TestLoadRegistryFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
glossary:
  system: "List the key terms."
  template: "Terms in:\n{text}"
summary:
  system: "Short summary."
  template: "{text}"
`), 0o600))

	r, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.True(t, r.Has("glossary"))
	assert.True(t, r.Has("risks"))

	sys, err := r.SystemPrompt("summary")
	require.NoError(t, err)
	assert.Equal(t, "Short summary.", sys)

	got, err := r.UserContent("glossary", "abc")
	require.NoError(t, err)
	assert.Equal(t, "Terms in:\nabc", got)
}

func TestLoadRegistryWithoutFile(t *testing.T) {
	r, err := LoadRegistry("")
	require.NoError(t, err)
	assert.Len(t, r.Types(), 4)

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
