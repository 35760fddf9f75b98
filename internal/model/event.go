package model

import "github.com/google/uuid"

const EventStockUpdate = "stock_update"

const (
	ActionProductCreated = "product_created"
	ActionProductUpdated = "product_updated"
	ActionProductDeleted = "product_deleted"
	ActionOrderConfirmed = "purchase_order_confirmed"
)

// StockLevel is a product's quantity after a change, with the change applied.
type StockLevel struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Delta     int       `json:"delta"`
}

// StockEvent is pushed to live clients after a committed stock change.
type StockEvent struct {
	Type     string       `json:"type"`
	Action   string       `json:"action"`
	OrderID  *uuid.UUID   `json:"order_id,omitempty"`
	Products []StockLevel `json:"products"`
	Message  string       `json:"message"`
}
