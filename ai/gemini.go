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

// Gemini implements the Provider interface for Google's Gemini API.
type Gemini struct {
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

var _ Provider = (*Gemini)(nil)

// NewGemini creates a Gemini provider.
func NewGemini(apiKey, model string, temperature float64, maxTokens int) *Gemini {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Gemini{apiKey: apiKey, model: model, temperature: temperature, maxTokens: maxTokens}
}

func (g *Gemini) Name() string {
	return fmt.Sprintf("Gemini (%s)", g.model)
}

func (g *Gemini) TestConnectivity(ctx context.Context) error {
	return testConnectivity(ctx, g)
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role"`
		Parts []part `json:"parts"`
	}

	genConfig := map[string]interface{}{}
	if g.temperature > 0 {
		genConfig["temperature"] = g.temperature
	}
	if g.maxTokens > 0 {
		genConfig["maxOutputTokens"] = g.maxTokens
	}

	body := map[string]interface{}{
		"contents": []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		"systemInstruction": map[string]interface{}{
			"parts": []part{{Text: systemPrompt}},
		},
	}
	if len(genConfig) > 0 {
		body["generationConfig"] = genConfig
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent", g.model)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	LogRequest("generate", g.Name(), prompt)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", wrapTransport(g.Name(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", wrapTransport(g.Name(), err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := fromStatus(g.Name(), resp.StatusCode, respBody)
		LogResponse("generate", g.Name(), "", apiErr)
		return "", apiErr
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", malformed(g.Name(), "parse error: "+err.Error())
	}

	if len(result.Candidates) == 0 {
		return "", malformed(g.Name(), "no candidates returned")
	}

	var text string
	for _, p := range result.Candidates[0].Content.Parts {
		text += p.Text
	}
	text = strings.TrimSpace(text)

	if text == "" {
		return "", malformed(g.Name(), "no text content returned")
	}

	LogResponse("generate", g.Name(), text, nil)
	return text, nil
}
