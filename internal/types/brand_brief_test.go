package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrandBrief_JSONKeys(t *testing.T) {
	brief := BrandBrief{
		BasicInfo: BasicInfo{
			BusinessName:        "Acme",
			Industry:            "Technology & Software",
			BusinessDescription: "A cloud analytics tool",
		},
		VisualPreferences: VisualPreferences{
			ColorPalette:     []string{"#112233"},
			StylePreferences: StylePreferences{ModernClassic: "modern"},
		},
		GeneratedAssets: GeneratedAssets{LogoURL: "https://cdn.example.com/logo.png"},
	}

	data, err := json.Marshal(brief)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"basicInfo"`)
	assert.Contains(t, s, `"businessName":"Acme"`)
	assert.Contains(t, s, `"visualPreferences"`)
	assert.Contains(t, s, `"modernClassic":"modern"`)
	assert.Contains(t, s, `"generatedAssets"`)
	assert.Contains(t, s, `"logoUrl":"https://cdn.example.com/logo.png"`)
}

func TestBrandBrief_Validate(t *testing.T) {
	tests := []struct {
		name    string
		brief   BrandBrief
		wantErr bool
	}{
		{
			name:  "empty brief is valid",
			brief: BrandBrief{},
		},
		{
			name: "valid palette and styles",
			brief: BrandBrief{VisualPreferences: VisualPreferences{
				ColorPalette: []string{"#fff", "#1A2B3C"},
				StylePreferences: StylePreferences{
					ModernClassic:       "classic",
					BoldSubtle:          "subtle",
					PlayfulProfessional: "balanced",
				},
			}},
		},
		{
			name: "bad hex color",
			brief: BrandBrief{VisualPreferences: VisualPreferences{
				ColorPalette: []string{"blue"},
			}},
			wantErr: true,
		},
		{
			name: "unknown style value",
			brief: BrandBrief{VisualPreferences: VisualPreferences{
				StylePreferences: StylePreferences{BoldSubtle: "loud"},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.brief.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBrandBrief_CloneIsDeep(t *testing.T) {
	brief := NewBrandBrief()
	brief.GeneratedAssets.Names = []string{"Nimbus"}
	brief.VisualPreferences.ColorPalette = []string{"#000000"}

	clone := brief.Clone()
	clone.GeneratedAssets.Names[0] = "Changed"
	clone.VisualPreferences.ColorPalette[0] = "#FFFFFF"

	assert.Equal(t, "Nimbus", brief.GeneratedAssets.Names[0])
	assert.Equal(t, "#000000", brief.VisualPreferences.ColorPalette[0])
	assert.Equal(t, brief.ID, clone.ID)
}

func TestBrandBrief_ResolvedName(t *testing.T) {
	brief := &BrandBrief{}
	assert.Equal(t, "", brief.ResolvedName())

	brief.GeneratedAssets.Names = []string{"Nimbus", "Stratus"}
	assert.Equal(t, "Nimbus", brief.ResolvedName())

	brief.BasicInfo.BusinessName = "Acme"
	assert.Equal(t, "Acme", brief.ResolvedName())
}

func TestSection_Valid(t *testing.T) {
	for _, s := range Sections() {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Section("billing").Valid())
}
