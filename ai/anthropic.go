package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Anthropic implements the Provider interface for the Anthropic Messages API.
type Anthropic struct {
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

var _ Provider = (*Anthropic)(nil)

// NewAnthropic creates an Anthropic provider.
func NewAnthropic(apiKey, model string, temperature float64, maxTokens int) *Anthropic {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Anthropic{apiKey: apiKey, model: model, temperature: temperature, maxTokens: maxTokens}
}

func (a *Anthropic) Name() string {
	return fmt.Sprintf("Anthropic (%s)", a.model)
}

func (a *Anthropic) TestConnectivity(ctx context.Context) error {
	return testConnectivity(ctx, a)
}

func (a *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	type apiMsg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	// Anthropic doesn't use a "system" role in messages — it's a top-level field.
	body := map[string]interface{}{
		"model":      a.model,
		"max_tokens": a.maxTokens,
		"system":     systemPrompt,
		"messages":   []apiMsg{{Role: "user", Content: prompt}},
	}
	if a.temperature > 0 {
		body["temperature"] = a.temperature
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.anthropic.com/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	LogRequest("generate", a.Name(), prompt)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", wrapTransport(a.Name(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", wrapTransport(a.Name(), err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := fromStatus(a.Name(), resp.StatusCode, respBody)
		LogResponse("generate", a.Name(), "", apiErr)
		return "", apiErr
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", malformed(a.Name(), "parse error: "+err.Error())
	}

	// Concatenate all text blocks
	var text string
	for _, block := range result.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	text = strings.TrimSpace(text)

	if text == "" {
		return "", malformed(a.Name(), "no text content returned")
	}

	LogResponse("generate", a.Name(), text, nil)
	return text, nil
}
