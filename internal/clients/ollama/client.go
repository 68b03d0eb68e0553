package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/ollama/ollama/api"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a local Ollama server as an alternative scoring backend.
type Client struct {
	api    *api.Client
	model  string
	system string
	format json.RawMessage
}

func NewClient(baseURL string, model string, system string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url: %w", err)
	}

	return &Client{
		api:    api.NewClient(u, &http.Client{Timeout: timeout}),
		model:  model,
		system: system,
		format: json.RawMessage(`"json"`),
	}, nil
}

// SetFormat constrains the output, either "json" or a JSON schema document.
func (c *Client) SetFormat(format json.RawMessage) {
	c.format = format
}

func (c *Client) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:   c.model,
		Prompt:  prompt,
		System:  c.system,
		Format:  c.format,
		Stream:  &stream,
		Options: map[string]any{"temperature": 0.2},
	}

	var sb strings.Builder
	err := c.api.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", err
	}

	return sb.String(), nil
}
