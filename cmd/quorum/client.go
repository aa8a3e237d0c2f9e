package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"dev.quorum.council/internal/provider"
)

// httpClient talks to an OpenAI-compatible chat completions endpoint.
// Per provider, the endpoint and model come from QUORUM_<NAME>_BASE_URL
// and QUORUM_<NAME>_MODEL; the API key comes from the provider's usual
// key variable. Providers without a configured base URL fail at call
// time, which the engine degrades to fallback entries.
type httpClient struct {
	name    string
	baseURL string
	model   string
	apiKey  string
	http    *http.Client
}

var apiKeyEnv = map[string]string{
	"claude":   "ANTHROPIC_API_KEY",
	"gpt":      "OPENAI_API_KEY",
	"gemini":   "GEMINI_API_KEY",
	"mistral":  "MISTRAL_API_KEY",
	"deepseek": "DEEPSEEK_API_KEY",
}

func newClient(name string) provider.Gateway {
	prefix := "QUORUM_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	return &httpClient{
		name:    name,
		baseURL: os.Getenv(prefix + "_BASE_URL"),
		model:   os.Getenv(prefix + "_MODEL"),
		apiKey:  os.Getenv(apiKeyEnv[name]),
		http:    &http.Client{},
	}
}

func (c *httpClient) Name() string { return c.name }

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *httpClient) Generate(ctx context.Context, req provider.Request) (provider.Response, error) {
	if c.baseURL == "" {
		return provider.Response{}, fmt.Errorf("no endpoint configured for %s", c.name)
	}

	messages := make([]chatMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return provider.Response{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.baseURL, "/")+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return provider.Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return provider.Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.Response{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return provider.Response{}, fmt.Errorf("%s returned %d: %s", c.name, resp.StatusCode, truncate(string(data), 200))
	}

	var decoded chatResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return provider.Response{}, fmt.Errorf("decode %s response: %w", c.name, err)
	}
	if decoded.Error != nil {
		return provider.Response{}, fmt.Errorf("%s: %s", c.name, decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return provider.Response{}, fmt.Errorf("%s returned no choices", c.name)
	}

	return provider.Response{Text: decoded.Choices[0].Message.Content}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
