package storefront

import (
	"context"
	"fmt"

	"github.com/creamcroissant/ovenboard/internal/deal"
)

// ActiveDeals fetches the currently active promotional deals.
func (c *Client) ActiveDeals(ctx context.Context) ([]deal.Deal, error) {
	var result struct {
		Deals []deal.Deal `json:"deals"`
	}
	if err := c.get(ctx, "/api/v1/deals?active=true", &result); err != nil {
		return nil, fmt.Errorf("list active deals: %w", err)
	}
	return result.Deals, nil
}
