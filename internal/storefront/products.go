package storefront

import (
	"context"
	"fmt"
)

// Product is the slice of the storefront product catalog the low-stock
// watch needs.
type Product struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// Products fetches the product catalog with current stock levels.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var result struct {
		Products []Product `json:"products"`
	}
	if err := c.get(ctx, "/api/v1/products", &result); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return result.Products, nil
}
