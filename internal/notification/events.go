package notification

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// The constructors below are the only places notification copy lives.
// They bind each business event to a fixed module and message shape; the
// rest of the system passes the resulting Draft to Ledger.Add unchanged.

var money = message.NewPrinter(language.English)

// OrderCreated announces a new storefront order.
func OrderCreated(orderID, customer string, total float64) Draft {
	return Draft{
		Type:    TypeOrderCreated,
		Module:  ModuleOrders,
		Title:   "New Order",
		Message: money.Sprintf("Order #%s from %s (%.2f)", orderID, customer, total),
		Data:    map[string]any{"order_id": orderID},
		Link:    "/orders/" + orderID,
	}
}

// OrderStatusChanged announces an order moving to a new stage.
func OrderStatusChanged(orderID, statusLabel string) Draft {
	return Draft{
		Type:    TypeOrderStatusChanged,
		Module:  ModuleOrders,
		Title:   "Order Updated",
		Message: fmt.Sprintf("Order #%s is now %s", orderID, statusLabel),
		Data:    map[string]any{"order_id": orderID, "status": statusLabel},
		Link:    "/orders/" + orderID,
	}
}

// PaymentReceived announces a settled payment.
func PaymentReceived(orderID string, amount float64) Draft {
	return Draft{
		Type:    TypePaymentReceived,
		Module:  ModulePayments,
		Title:   "Payment Received",
		Message: money.Sprintf("Payment of %.2f received for order #%s", amount, orderID),
		Data:    map[string]any{"order_id": orderID, "amount": amount},
		Link:    "/orders/" + orderID,
	}
}

// DeliveryAssigned announces a courier picking up an order.
func DeliveryAssigned(orderID, courier string) Draft {
	return Draft{
		Type:    TypeDeliveryAssigned,
		Module:  ModuleDelivery,
		Title:   "Delivery Assigned",
		Message: fmt.Sprintf("%s will deliver order #%s", courier, orderID),
		Data:    map[string]any{"order_id": orderID, "courier": courier},
		Link:    "/orders/" + orderID,
	}
}

// DeliveryStatusChanged announces courier progress.
func DeliveryStatusChanged(orderID, status string) Draft {
	return Draft{
		Type:    TypeDeliveryStatusChanged,
		Module:  ModuleDelivery,
		Title:   "Delivery Update",
		Message: fmt.Sprintf("Delivery for order #%s: %s", orderID, status),
		Data:    map[string]any{"order_id": orderID, "status": status},
		Link:    "/orders/" + orderID,
	}
}

// LowStock warns that a product is running out.
func LowStock(productID int64, name string, remaining int) Draft {
	return Draft{
		Type:    TypeLowStock,
		Module:  ModuleInventory,
		Title:   "Low Stock",
		Message: fmt.Sprintf("%s is down to %d left", name, remaining),
		Data:    map[string]any{"product_id": productID, "remaining": remaining},
		Link:    fmt.Sprintf("/products/%d", productID),
	}
}
