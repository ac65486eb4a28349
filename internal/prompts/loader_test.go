package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	prompt, err := Get("regeneration.json", "summary")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Return ONLY the improved text")
}

func TestGetMissingFile(t *testing.T) {
	_, err := Get("nonexistent.json", "summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGetMissingKey(t *testing.T) {
	_, err := Get("regeneration.json", "haiku")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGetPanicsOnMissing(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("regeneration.json", "haiku")
	})
}

func TestFormat(t *testing.T) {
	out := Format("Improve {{.Field}} for {{.Name}}", map[string]string{
		"Field": "the summary",
		"Name":  "Jordan",
	})
	assert.Equal(t, "Improve the summary for Jordan", out)

	// Unknown placeholders survive untouched.
	assert.Equal(t, "{{.Other}}", Format("{{.Other}}", nil))
}

func TestKeys(t *testing.T) {
	keys, err := Keys("regeneration.json")
	require.NoError(t, err)
	assert.Contains(t, keys, "summary")
	assert.Contains(t, keys, "project_description")
}
