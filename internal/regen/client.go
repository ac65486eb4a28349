// Package regen implements the per-field "improve this text" cycle: it
// validates input locally, sends one prompt per request to the LLM, and
// applies the improved value back to the targeted field only.
package regen

import (
	"context"
	"strings"
	"sync"

	"github.com/jordan/portfolio-studio/internal/llm"
	"github.com/jordan/portfolio-studio/internal/prompts"
)

// Field keys accepted for regeneration.
const (
	FieldSummary               = "summary"
	FieldTagline               = "tagline"
	FieldBio                   = "bio"
	FieldProjectDescription    = "project_description"
	FieldExperienceDescription = "experience_description"
)

// promptCatalog is the prompt file holding one rewriting instruction per
// field. The model is told to return only the improved text so the response
// can replace the field as-is.
const promptCatalog = "regeneration.json"

// tiers selects the model tier per field. Descriptions carry more context
// and benefit from the stronger model.
var tiers = map[string]llm.ModelTier{
	FieldSummary:               llm.TierStandard,
	FieldTagline:               llm.TierStandard,
	FieldBio:                   llm.TierStandard,
	FieldProjectDescription:    llm.TierAdvanced,
	FieldExperienceDescription: llm.TierAdvanced,
}

// AllowedField reports whether key is a regenerable field.
func AllowedField(key string) bool {
	_, ok := tiers[key]
	return ok
}

// Client runs field regeneration requests. At most one request may be
// outstanding per client; re-invocation while pending is refused.
type Client struct {
	llm llm.Client

	mu      sync.Mutex
	pending bool
}

// NewClient wraps an LLM client.
func NewClient(llmClient llm.Client) *Client {
	return &Client{llm: llmClient}
}

// Regenerate improves currentValue for the named field. The current value
// must be non-empty after trimming; an empty value fails fast locally and
// issues no network call. On failure the caller's field value is untouched
// and the error is retryable.
func (c *Client) Regenerate(ctx context.Context, field, currentValue, contextSummary string) (string, error) {
	if !AllowedField(field) {
		return "", &ErrInvalidInput{Field: field, Message: "field is not regenerable"}
	}
	if strings.TrimSpace(currentValue) == "" {
		return "", &ErrInvalidInput{Field: field, Message: "add some text first to improve"}
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return "", &ErrRequestPending{Field: field}
	}
	c.pending = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.pending = false
		c.mu.Unlock()
	}()

	prompt := buildPrompt(field, currentValue, contextSummary)
	improved, err := c.llm.GenerateText(ctx, prompt, tiers[field])
	if err != nil {
		return "", &ErrGenerationFailed{Field: field, Cause: err}
	}

	improved = strings.TrimSpace(improved)
	if improved == "" {
		return "", &ErrGenerationFailed{Field: field, Cause: errEmptyResponse}
	}
	return improved, nil
}

func buildPrompt(field, currentValue, contextSummary string) string {
	var b strings.Builder
	b.WriteString(prompts.MustGet(promptCatalog, field))
	b.WriteString("\n\n")
	if contextSummary != "" {
		b.WriteString("Context: ")
		b.WriteString(contextSummary)
		b.WriteString("\n\n")
	}
	b.WriteString("Text to improve: ")
	b.WriteString(currentValue)
	return b.String()
}
