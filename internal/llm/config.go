// Package llm provides centralized model configuration and the client abstraction
// used by the brand generation services.
package llm

// ModelTier represents the capability level of a model
type ModelTier string

const (
	// TierLite is for short, cheap generations such as taglines
	TierLite ModelTier = "lite"
	// TierStandard is for structured output: names and identity
	TierStandard ModelTier = "standard"
	// TierAdvanced is for generations that need more reasoning
	TierAdvanced ModelTier = "advanced"
	// TierImage is the image-capable model used for logos
	TierImage ModelTier = "image"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider, the only one wired today.
const ProviderGemini Provider = "gemini"

// DefaultTemperature keeps naming and copywriting varied between runs.
const DefaultTemperature float32 = 0.8

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
			TierImage:    "gemini-2.5-flash-image",
		},
		Temperature: DefaultTemperature,
	}
}

// GetModel returns the model name for a given tier.
// Text tiers fall back to standard, then lite. The image tier never falls
// back to a text-only model.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if tier == TierImage {
		return ""
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider:    c.Provider,
		Models:      make(map[ModelTier]string, len(c.Models)+1),
		Temperature: c.Temperature,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
