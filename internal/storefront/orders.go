package storefront

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/creamcroissant/ovenboard/internal/order"
)

// ListOrders fetches orders, newest first. Timestamps stay raw strings;
// parsing belongs to the timeline estimator.
func (c *Client) ListOrders(ctx context.Context, limit int) ([]order.Order, error) {
	path := "/api/v1/orders"
	if limit > 0 {
		path += "?limit=" + url.QueryEscape(fmt.Sprint(limit))
	}
	var result struct {
		Orders []order.Order `json:"orders"`
	}
	if err := c.get(ctx, path, &result); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return result.Orders, nil
}

// GetOrder fetches a single order with its line items. A 404 from the
// storefront yields (nil, nil).
func (c *Client) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	var result struct {
		Order order.Order `json:"order"`
	}
	if err := c.get(ctx, "/api/v1/orders/"+url.PathEscape(id), &result); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return &result.Order, nil
}

// UpdateOrderStatus pushes a status change to the storefront.
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status order.Status) error {
	body := struct {
		Status string `json:"status"`
	}{Status: string(status)}
	if err := c.patch(ctx, "/api/v1/orders/"+url.PathEscape(id)+"/status", body, nil); err != nil {
		return fmt.Errorf("update order %s status: %w", id, err)
	}
	return nil
}
