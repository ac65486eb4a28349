package llm

// ModelTier represents the capability level of a model.
type ModelTier string

const (
	// TierStandard covers straightforward rewriting: taglines, summaries.
	TierStandard ModelTier = "standard"
	// TierAdvanced covers rewriting that needs more nuance: project and
	// experience descriptions with surrounding context.
	TierAdvanced ModelTier = "advanced"
)

// Config holds the model configuration and sampling parameters.
type Config struct {
	Models          map[ModelTier]string
	Temperature     float32
	MaxOutputTokens int32
}

// DefaultConfig returns the default Gemini configuration. A slightly high
// temperature keeps rewrites varied between retries.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature:     0.7,
		MaxOutputTokens: 512,
	}
}

// Model returns the model name for a tier, falling back to standard.
func (c *Config) Model(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	return c.Models[TierStandard]
}

// WithModel returns a copy of the config with one tier overridden.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := &Config{
		Models:          make(map[ModelTier]string, len(c.Models)),
		Temperature:     c.Temperature,
		MaxOutputTokens: c.MaxOutputTokens,
	}
	for k, v := range c.Models {
		out.Models[k] = v
	}
	out.Models[tier] = model
	return out
}
