// Package gemini adapts the Generative Language API to insights.TextGenerator.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	gl "google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"

	"planeja/internal/insights"
)

const DefaultModel = "gemini-2.5-flash"

type Client struct {
	svc   *gl.Service
	model string
}

// Ensure interface conformance
var _ insights.TextGenerator = (*Client)(nil)

// New builds a client authenticated with an API key. Extra options are
// passed through to the generated service, e.g. option.WithEndpoint in tests.
func New(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing Gemini API key (set GEMINI_API_KEY)")
	}
	if model == "" {
		model = DefaultModel
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := gl.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create generative language service: %w", err)
	}

	slog.InfoContext(ctx, "Gemini client initialized", "model", model)
	return &Client{svc: svc, model: model}, nil
}

// Generate sends prompt as a single user turn and asks for a JSON response.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	req := &gl.GenerateContentRequest{
		Contents: []*gl.Content{{
			Role:  "user",
			Parts: []*gl.Part{{Text: prompt}},
		}},
		GenerationConfig: &gl.GenerationConfig{
			ResponseMimeType: "application/json",
		},
	}

	resp, err := c.svc.Models.GenerateContent("models/"+c.model, req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return responseText(resp), nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *gl.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}
