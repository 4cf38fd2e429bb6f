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

// Azure implements the Provider interface for Azure OpenAI deployments.
// Azure addresses models through per-resource deployments rather than
// model names, and authenticates with an api-key header.
type Azure struct {
	apiKey      string
	endpoint    string // e.g. https://my-resource.openai.azure.com
	deployment  string
	apiVersion  string
	temperature float64
	maxTokens   int
}

var _ Provider = (*Azure)(nil)

// NewAzure creates an Azure OpenAI provider.
func NewAzure(apiKey, endpoint, deployment string, temperature float64, maxTokens int) *Azure {
	return &Azure{
		apiKey:      apiKey,
		endpoint:    strings.TrimRight(endpoint, "/"),
		deployment:  deployment,
		apiVersion:  "2024-02-01",
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (a *Azure) Name() string {
	return fmt.Sprintf("Azure OpenAI (%s)", a.deployment)
}

func (a *Azure) TestConnectivity(ctx context.Context) error {
	return testConnectivity(ctx, a)
}

func (a *Azure) Generate(ctx context.Context, prompt string) (string, error) {
	type chatMsg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	body := map[string]interface{}{
		"messages": []chatMsg{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	}
	if a.temperature > 0 {
		body["temperature"] = a.temperature
	}
	if a.maxTokens > 0 {
		body["max_tokens"] = a.maxTokens
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		a.endpoint, a.deployment, a.apiVersion)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", a.apiKey)

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
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", malformed(a.Name(), "parse error: "+err.Error())
	}

	if len(result.Choices) == 0 {
		return "", malformed(a.Name(), "no choices returned")
	}

	text := strings.TrimSpace(result.Choices[0].Message.Content)
	LogResponse("generate", a.Name(), text, nil)
	return text, nil
}
