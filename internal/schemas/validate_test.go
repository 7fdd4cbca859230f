package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AllSchemasAreValidJSON(t *testing.T) {
	for _, name := range []string{Names, Taglines, Identity} {
		t.Run(name, func(t *testing.T) {
			content, err := Load(name)
			require.NoError(t, err)

			var v map[string]any
			assert.NoError(t, json.Unmarshal([]byte(content), &v))
		})
	}
}

func TestLoad_Unknown(t *testing.T) {
	_, err := Load("billing")
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidate_Names(t *testing.T) {
	assert.NoError(t, Validate(Names, `{"names":["Nimbus","Stratus"],"rationale":"cloud words"}`))

	err := Validate(Names, `{"names":[],"rationale":"none"}`)
	require.Error(t, err)
	ve, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Equal(t, Names, ve.Schema)
	assert.NotEmpty(t, ve.Errors)
}

func TestValidate_IdentityPalette(t *testing.T) {
	valid := `{
		"missionStatement": "Make data obvious.",
		"brandValues": ["clarity", "speed"],
		"colorPalette": ["#0A1F44", "#1E88E5", "#FFC107", "#F5F5F5", "212121"],
		"typographyRecommendation": "Inter for headings, Source Sans for body",
		"visualStyle": "clean geometric"
	}`
	assert.NoError(t, Validate(Identity, valid))

	shortPalette := `{
		"missionStatement": "Make data obvious.",
		"brandValues": ["clarity"],
		"colorPalette": ["#0A1F44", "blue"],
		"typographyRecommendation": "Inter",
		"visualStyle": "clean"
	}`
	err := Validate(Identity, shortPalette)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity")
}

func TestValidateJSONString_MalformedDocument(t *testing.T) {
	schema, err := Load(Taglines)
	require.NoError(t, err)

	err = ValidateJSONString(schema, `{"taglines": [`)
	require.Error(t, err)
	_, ok := err.(*SchemaLoadError)
	assert.True(t, ok)
}
