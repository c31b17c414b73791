package order

import "encoding/json"

// Order is the subset of a storefront order the dashboard works with.
// Timestamps stay in their raw wire form; the estimator owns parsing.
type Order struct {
	ID        string     `json:"id"`
	Status    Status     `json:"status"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
	Customer  string     `json:"customer_name,omitempty"`
	TotalDue  float64    `json:"total,omitempty"`
	Items     []LineItem `json:"items,omitempty"`
}

// LineItem is one order line. Product id and price arrive as json.Number
// because the storefront API is not consistent about numeric encoding;
// classification tolerates both and degrades when parsing fails.
type LineItem struct {
	ProductID json.Number `json:"product_id,omitempty"`
	Name      string      `json:"name,omitempty"`
	Price     json.Number `json:"price,omitempty"`
	Quantity  int         `json:"quantity,omitempty"`
	IsDeal    *bool       `json:"is_deal,omitempty"`
}
