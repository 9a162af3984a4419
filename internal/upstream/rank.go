package upstream

import (
	"context"
	"fmt"

	"github.com/godilite/profile-audit/internal/service"
)

// RankClient asks the ranking service where a business appears in local results.
type RankClient struct {
	*client
}

func NewRankClient(opts ...Option) (*RankClient, error) {
	c, err := newClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("rank client: %w", err)
	}
	return &RankClient{client: c}, nil
}

func (c *RankClient) Lookup(ctx context.Context, query service.RankQuery) (service.RankResult, error) {
	var resp service.RankResult
	if err := c.postJSON(ctx, "/rank", query, &resp); err != nil {
		return service.RankResult{}, fmt.Errorf("rank lookup: %w", err)
	}
	return resp, nil
}
