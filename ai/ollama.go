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

// Ollama implements the Provider interface for local Ollama instances.
type Ollama struct {
	host        string
	model       string
	temperature float64
}

var _ Provider = (*Ollama)(nil)

// NewOllama creates an Ollama provider.
func NewOllama(host, model string, temperature float64) *Ollama {
	if host == "" {
		host = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	return &Ollama{host: strings.TrimRight(host, "/"), model: model, temperature: temperature}
}

func (o *Ollama) Name() string {
	return fmt.Sprintf("Ollama (%s)", o.model)
}

func (o *Ollama) TestConnectivity(ctx context.Context) error {
	return testConnectivity(ctx, o)
}

func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
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
		"stream": false,
	}
	if o.temperature > 0 {
		body["options"] = map[string]interface{}{"temperature": o.temperature}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.host+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

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
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", malformed(o.Name(), "parse error: "+err.Error())
	}

	text := strings.TrimSpace(result.Message.Content)
	if text == "" {
		return "", malformed(o.Name(), "empty message content")
	}

	LogResponse("generate", o.Name(), text, nil)
	return text, nil
}
