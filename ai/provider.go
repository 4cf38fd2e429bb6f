// Package ai defines the interface for LLM providers used to turn
// natural-language questions into SQL.
//
// Design decisions:
//   - Provider is an interface so backends (OpenAI, Azure, Anthropic,
//     Gemini, Ollama) can be swapped without touching the core pipeline.
//   - All methods accept context for cancellation; timeouts belong here,
//     not in the orchestrator.
//   - Providers receive a fully assembled prompt. Prompt construction
//     (mode instructions, schema context, user request) is core logic and
//     lives in the core package, not here.
//   - Failures carry a Kind (auth, rate_limit, timeout, malformed_response,
//     unavailable) so surfaces can render precise messages.
package ai

import (
	"context"
	"net/http"
	"time"
)

// systemPrompt frames every generation request.
const systemPrompt = `You are an expert SQL developer. Generate clean, efficient SQL.`

// connectivityPrompt is the tiny request used by TestConnectivity.
const connectivityPrompt = `Reply with exactly: OK`

// Provider is the interface all LLM backends implement.
type Provider interface {
	// Generate sends a prompt and returns the raw model response text.
	Generate(ctx context.Context, prompt string) (string, error)

	// TestConnectivity performs a minimal round-trip to verify the
	// provider is reachable and the credentials work.
	TestConnectivity(ctx context.Context) error

	// Name returns the provider name for display, e.g. "OpenAI (gpt-4o)".
	Name() string
}

// httpClient is shared by all providers. The timeout bounds a single
// generation call end to end.
var httpClient = &http.Client{Timeout: 90 * time.Second}

// testConnectivity implements the shared connectivity check: a minimal
// generation that only has to come back non-empty.
func testConnectivity(ctx context.Context, p Provider) error {
	reply, err := p.Generate(ctx, connectivityPrompt)
	if err != nil {
		return err
	}
	if reply == "" {
		return malformed(p.Name(), "empty response to connectivity check")
	}
	return nil
}
