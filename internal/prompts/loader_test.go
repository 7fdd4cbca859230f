package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("branding.json", "generate-names")
	require.NoError(t, err)
	assert.Contains(t, prompt, "brand naming strategist")
	assert.Contains(t, prompt, "{{.Industry}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("branding.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestFormat(t *testing.T) {
	template := "Name ideas for {{.Industry}}: {{.Description}} ({{.Missing}})"
	result := Format(template, map[string]string{
		"Industry":    "Coffee",
		"Description": "a roastery in Lisbon",
	})
	assert.Equal(t, "Name ideas for Coffee: a roastery in Lisbon ({{.Missing}})", result)
}

func TestFormat_ValuesAreNotExpanded(t *testing.T) {
	template := "Brand: {{.BrandName}}. About: {{.Description}}"
	data := map[string]string{
		"BrandName":   "Lumen",
		"Description": "we love {{.BrandName}} and {{.Industry}}",
		"Industry":    "Lighting",
	}
	want := "Brand: Lumen. About: we love {{.BrandName}} and {{.Industry}}"
	// map iteration order varies, so repeat
	for i := 0; i < 50; i++ {
		require.Equal(t, want, Format(template, data))
	}
}

func TestRender_FillsEveryBrandingPlaceholder(t *testing.T) {
	ClearCache()

	data := map[string]string{
		"Industry":    "Technology & Software",
		"Description": "A cloud analytics tool",
		"Keywords":    "modern, bold",
		"BrandName":   "Nimbus",
		"Vibe":        "professional",
		"Style":       "minimal geometric",
		"Colors":      "#112233, #445566",
	}

	keys, err := List("branding.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"generate-identity", "generate-logo", "generate-names", "generate-taglines"}, keys)

	for _, key := range keys {
		out, err := Render("branding.json", key, data)
		require.NoError(t, err)
		assert.NotContains(t, out, "{{.", "unfilled placeholder in %s", key)
	}
}
