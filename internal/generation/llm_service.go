package generation

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/brandbot/internal/llm"
	"github.com/jonathan/brandbot/internal/prompts"
	"github.com/jonathan/brandbot/internal/schemas"
)

const promptFile = "branding.json"

// Operation names, used in error messages and logs
const (
	OpNames    = "generate_names"
	OpTagline  = "generate_tagline"
	OpIdentity = "generate_identity"
	OpLogo     = "generate_logo"
)

// LLMService implements Service on top of an llm.Client.
type LLMService struct {
	client llm.Client
}

// NewLLMService creates a service that sends every request through client.
func NewLLMService(client llm.Client) *LLMService {
	return &LLMService{client: client}
}

// GenerateNames proposes business names for an industry and description.
func (s *LLMService) GenerateNames(ctx context.Context, in NamesInput) (*NamesOutput, error) {
	if strings.TrimSpace(in.Industry) == "" && strings.TrimSpace(in.Description) == "" {
		return nil, &ValidationError{Operation: OpNames, Field: "industry", Message: "industry or description is required"}
	}

	var out NamesOutput
	err := s.generateJSON(ctx, OpNames, "generate-names", schemas.Names, llm.TierStandard, map[string]string{
		"Industry":    orNone(in.Industry),
		"Description": orNone(in.Description),
		"Keywords":    orNone(strings.Join(in.Keywords, ", ")),
	}, &out)
	if err != nil {
		return nil, err
	}

	out.Names = normalizeList(out.Names)
	out.Rationale = strings.TrimSpace(out.Rationale)
	if len(out.Names) == 0 {
		return nil, &ParseError{Operation: OpNames, Message: "response contained no usable names"}
	}
	return &out, nil
}

// GenerateTagline writes taglines for a named brand.
func (s *LLMService) GenerateTagline(ctx context.Context, in TaglineInput) (*TaglineOutput, error) {
	if strings.TrimSpace(in.BrandName) == "" {
		return nil, &ValidationError{Operation: OpTagline, Field: "brandName", Message: "brand name is required"}
	}

	var out TaglineOutput
	err := s.generateJSON(ctx, OpTagline, "generate-taglines", schemas.Taglines, llm.TierLite, map[string]string{
		"BrandName": in.BrandName,
		"Industry":  orNone(in.Industry),
		"Vibe":      orNone(in.Vibe),
	}, &out)
	if err != nil {
		return nil, err
	}

	out.Taglines = normalizeList(out.Taglines)
	if len(out.Taglines) == 0 {
		return nil, &ParseError{Operation: OpTagline, Message: "response contained no usable taglines"}
	}
	return &out, nil
}

// GenerateIdentity produces mission, values, palette, typography and visual style.
func (s *LLMService) GenerateIdentity(ctx context.Context, in IdentityInput) (*IdentityOutput, error) {
	if strings.TrimSpace(in.BrandName) == "" {
		return nil, &ValidationError{Operation: OpIdentity, Field: "brandName", Message: "brand name is required"}
	}

	var out IdentityOutput
	err := s.generateJSON(ctx, OpIdentity, "generate-identity", schemas.Identity, llm.TierStandard, map[string]string{
		"BrandName":   in.BrandName,
		"Industry":    orNone(in.Industry),
		"Description": orNone(in.Description),
	}, &out)
	if err != nil {
		return nil, err
	}

	out.MissionStatement = strings.TrimSpace(out.MissionStatement)
	out.BrandValues = normalizeList(out.BrandValues)
	out.ColorPalette = normalizePalette(out.ColorPalette)
	out.TypographyRecommendation = strings.TrimSpace(out.TypographyRecommendation)
	out.VisualStyle = strings.TrimSpace(out.VisualStyle)
	return &out, nil
}

// GenerateLogo renders a logo image and returns it as a data URL.
// An answer without media yields an empty ImageURL and no error.
func (s *LLMService) GenerateLogo(ctx context.Context, in LogoInput) (*LogoOutput, error) {
	if strings.TrimSpace(in.BrandName) == "" {
		return nil, &ValidationError{Operation: OpLogo, Field: "brandName", Message: "brand name is required"}
	}

	prompt, err := prompts.Render(promptFile, "generate-logo", map[string]string{
		"BrandName":   in.BrandName,
		"Industry":    orNone(in.Industry),
		"Description": orNone(in.Description),
		"Style":       orNone(in.Style),
		"Colors":      orNone(strings.Join(in.Colors, ", ")),
	})
	if err != nil {
		return nil, &APICallError{Operation: OpLogo, Message: "failed to build prompt", Cause: err}
	}

	img, err := s.client.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, &APICallError{Operation: OpLogo, Message: "failed to generate image", Cause: err}
	}

	return &LogoOutput{ImageURL: img.DataURL()}, nil
}

func (s *LLMService) generateJSON(ctx context.Context, op, promptKey, schema string, tier llm.ModelTier, data map[string]string, out any) error {
	prompt, err := prompts.Render(promptFile, promptKey, data)
	if err != nil {
		return &APICallError{Operation: op, Message: "failed to build prompt", Cause: err}
	}

	text, err := s.client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		return &APICallError{Operation: op, Message: "failed to generate content from LLM", Cause: err}
	}

	if err := schemas.Validate(schema, text); err != nil {
		return &ParseError{Operation: op, Message: "response does not match schema", Cause: err}
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return &ParseError{Operation: op, Message: "failed to parse JSON response", Cause: err}
	}
	return nil
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}
