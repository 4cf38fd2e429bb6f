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

// OpenAI implements the Provider interface for OpenAI's Chat API.
type OpenAI struct {
	apiKey      string
	model       string
	endpoint    string
	temperature float64
	maxTokens   int
}

var _ Provider = (*OpenAI)(nil)

// NewOpenAI creates an OpenAI provider. A custom endpoint allows pointing
// at OpenAI-compatible gateways.
func NewOpenAI(apiKey, model, endpoint string, temperature float64, maxTokens int) *OpenAI {
	if model == "" {
		model = "gpt-4o"
	}
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1/chat/completions"
	}
	return &OpenAI{
		apiKey:      apiKey,
		model:       model,
		endpoint:    endpoint,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (o *OpenAI) Name() string {
	return fmt.Sprintf("OpenAI (%s)", o.model)
}

func (o *OpenAI) TestConnectivity(ctx context.Context) error {
	return testConnectivity(ctx, o)
}

func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	type chatMsg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	body := map[string]interface{}{
		"model": o.model,
		"messages": []chatMsg{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	}
	if o.temperature > 0 {
		body["temperature"] = o.temperature
	}
	if o.maxTokens > 0 {
		body["max_tokens"] = o.maxTokens
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	LogRequest("generate", o.Name(), prompt)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", wrapTransport(o.Name(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", wrapTransport(o.Name(), err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := fromStatus(o.Name(), resp.StatusCode, respBody)
		LogResponse("generate", o.Name(), "", apiErr)
		return "", apiErr
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", malformed(o.Name(), "parse error: "+err.Error())
	}

	if len(result.Choices) == 0 {
		return "", malformed(o.Name(), "no choices returned")
	}

	text := strings.TrimSpace(result.Choices[0].Message.Content)
	LogResponse("generate", o.Name(), text, nil)
	return text, nil
}
