// Package notification implements the dashboard notification ledger: a
// capacity-bounded, persisted event log shared by every open dashboard view,
// with a change broadcast so views never drift apart.
package notification

// Type enumerates the business events that produce notifications.
type Type string

const (
	TypeOrderCreated          Type = "order_created"
	TypeOrderStatusChanged    Type = "order_status_changed"
	TypePaymentReceived       Type = "payment_received"
	TypeDeliveryAssigned      Type = "delivery_assigned"
	TypeDeliveryStatusChanged Type = "delivery_status_changed"
	TypeLowStock              Type = "low_stock"
)

// Module tags a notification with the dashboard area it belongs to, so a
// view can filter to its own context.
type Module string

const (
	// ModuleAll is a filter value, not a tag: it disables module filtering.
	ModuleAll Module = "all"

	ModuleOrders    Module = "orders"
	ModulePayments  Module = "payments"
	ModuleDelivery  Module = "delivery"
	ModuleInventory Module = "inventory"
)

// Notification is one ledger entry. Only Unread ever changes after creation.
type Notification struct {
	ID          string         `json:"id"`
	Type        Type           `json:"type"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	Module      Module         `json:"module"`
	Data        map[string]any `json:"data,omitempty"`
	DisplayTime string         `json:"display_time"`
	Timestamp   int64          `json:"timestamp"`
	Unread      bool           `json:"unread"`
	Link        string         `json:"link,omitempty"`
}

// Filter constrains a ledger listing. Zero values disable each criterion;
// Limit <= 0 means no truncation.
type Filter struct {
	Module     Module
	Type       Type
	UnreadOnly bool
	Limit      int
}

// Draft is the caller-supplied part of a notification; the ledger assigns
// identity, timestamps and read state.
type Draft struct {
	Type    Type
	Title   string
	Message string
	Module  Module
	Data    map[string]any
	Link    string
}
