package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// sharedHTTPClient is used by all providers; a 2-minute timeout keeps a hung
// connection from pinning a bulk run indefinitely.
var sharedHTTPClient = &http.Client{
	Timeout: 2 * time.Minute,
}

// defaultMaxTokens is the fallback when Request.MaxTokens is not set.
const defaultMaxTokens = 1024

// Request holds the parameters for a completion call.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	TopP         float64
	MaxTokens    int
	// Model overrides the provider's configured model when non-empty.
	Model string
}

// Response holds the result of a completion call.
type Response struct {
	Content string
	Model   string // actual model used, echoed back for diagnostics
}

// Provider is the interface for text-completion backends.
type Provider interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// NewProvider parses a "provider:model" string and returns the appropriate
// Provider. The API key is supplied by the caller, which reads it from the
// environment at process startup; an empty key is rejected here so callers
// never construct a provider that cannot authenticate.
// Example: "openai:gpt-4o-mini" or "anthropic:claude-sonnet-4-6".
func NewProvider(providerModel, apiKey string) (Provider, error) {
	parts := strings.SplitN(providerModel, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid model format %q: expected provider:model (e.g. openai:gpt-4o-mini)", providerModel)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no API key provided for provider %q", parts[0])
	}
	switch parts[0] {
	case "openai":
		return &openaiProvider{model: parts[1], apiKey: apiKey}, nil
	case "anthropic":
		return &anthropicProvider{model: parts[1], apiKey: apiKey}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q: supported providers are openai, anthropic", parts[0])
	}
}

// truncate limits a string to maxLen runes, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
