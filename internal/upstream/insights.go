package upstream

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// InsightsClient is the text-generation collaborator.
type InsightsClient struct {
	*client
}

func NewInsightsClient(opts ...Option) (*InsightsClient, error) {
	c, err := newClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("insights client: %w", err)
	}
	return &InsightsClient{client: c}, nil
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

func (c *InsightsClient) Generate(ctx context.Context, prompt string) (string, error) {
	var resp generateResponse
	if err := c.postJSON(ctx, "/generate", generateRequest{Prompt: prompt}, &resp); err != nil {
		return "", fmt.Errorf("generate insight: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", errors.New("generate insight: empty response")
	}
	return text, nil
}
