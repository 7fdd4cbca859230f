// Package generation wraps the four brand generation calls (names, taglines,
// identity, logo) behind a single Service interface.
package generation

import "context"

// Service is the remote generation boundary the orchestrator depends on.
// Each call is a plain request/response; any failure is returned as an error.
type Service interface {
	GenerateNames(ctx context.Context, in NamesInput) (*NamesOutput, error)
	GenerateTagline(ctx context.Context, in TaglineInput) (*TaglineOutput, error)
	GenerateIdentity(ctx context.Context, in IdentityInput) (*IdentityOutput, error)
	GenerateLogo(ctx context.Context, in LogoInput) (*LogoOutput, error)
}

// NamesInput is the request for name generation.
type NamesInput struct {
	Industry    string   `json:"industry"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
}

// NamesOutput lists candidate names and why they were chosen.
type NamesOutput struct {
	Names     []string `json:"names"`
	Rationale string   `json:"rationale"`
}

// TaglineInput is the request for tagline generation.
type TaglineInput struct {
	BrandName string `json:"brandName"`
	Industry  string `json:"industry"`
	Vibe      string `json:"vibe,omitempty"`
}

// TaglineOutput lists candidate taglines.
type TaglineOutput struct {
	Taglines []string `json:"taglines"`
}

// IdentityInput is the request for identity generation.
type IdentityInput struct {
	BrandName   string `json:"brandName"`
	Industry    string `json:"industry"`
	Description string `json:"description"`
}

// IdentityOutput is the core brand identity.
type IdentityOutput struct {
	MissionStatement         string   `json:"missionStatement"`
	BrandValues              []string `json:"brandValues"`
	ColorPalette             []string `json:"colorPalette"`
	TypographyRecommendation string   `json:"typographyRecommendation"`
	VisualStyle              string   `json:"visualStyle"`
}

// LogoInput is the request for logo generation.
type LogoInput struct {
	BrandName   string   `json:"brandName"`
	Industry    string   `json:"industry"`
	Description string   `json:"description"`
	Colors      []string `json:"colors"`
	Style       string   `json:"style"`
}

// LogoOutput carries the generated image location. ImageURL is "" when the
// model produced no media; that is not an error.
type LogoOutput struct {
	ImageURL string `json:"imageUrl"`
}
