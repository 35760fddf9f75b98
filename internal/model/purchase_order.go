package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus records whether a purchase order has been confirmed at least once.
type OrderStatus string

const (
	OrderDraft     OrderStatus = "draft"
	OrderConfirmed OrderStatus = "confirmed"
)

const (
	DefaultPaymentTerms = "COD"
	DateLayout          = "2006-01-02"
)

// DefaultTaxPercent is applied when an order is created without a tax rate.
var DefaultTaxPercent = decimal.RequireFromString("12.00")

// PurchaseOrder is a supplier order header. Subtotal, tax and total are
// derived from Items on every read and never stored.
type PurchaseOrder struct {
	BaseModel
	SupplierName    string          `gorm:"type:varchar(255);not null" json:"supplier_name"`
	SupplierAddress string          `gorm:"type:varchar(255)" json:"supplier_address"`
	BusinessName    string          `gorm:"type:varchar(255);not null" json:"business_name"`
	BusinessAddress string          `gorm:"type:varchar(255)" json:"business_address"`
	PaymentTerms    string          `gorm:"type:varchar(255);not null" json:"payment_terms"`
	Date            time.Time       `gorm:"type:date;not null" json:"date"`
	TaxPercent      decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tax_percent"` // 12.00 means 12%

	Status       OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ConfirmedAt  *time.Time  `json:"confirmed_at,omitempty"`
	ConfirmCount int         `gorm:"not null;default:0" json:"confirm_count"`

	Items []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// PurchaseOrderItem is one line of a purchase order. ProductSKU and
// ProductName are a snapshot of the product taken when the line is created.
type PurchaseOrderItem struct {
	BaseModel
	PurchaseOrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	ProductID       uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product         *Product  `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:NO ACTION;" json:"-"`

	ProductSKU  string `gorm:"type:varchar(64)" json:"product_sku"`
	ProductName string `gorm:"type:varchar(255)" json:"product_name"`

	QuantityReceived int             `gorm:"not null" json:"quantity_received"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Position         int             `gorm:"not null;default:0" json:"position"`
}

// ApplySnapshot copies the product's SKU and name into blank snapshot
// fields. Values that are already set are left untouched.
func (i *PurchaseOrderItem) ApplySnapshot(p *Product) {
	if i.ProductSKU == "" {
		i.ProductSKU = p.SKU
	}
	if i.ProductName == "" {
		i.ProductName = p.Name
	}
}

// CreatePurchaseOrderRequest is the header plus line items of a new order.
type CreatePurchaseOrderRequest struct {
	SupplierName    string                           `json:"supplier_name" validate:"required,max=255"`
	SupplierAddress string                           `json:"supplier_address" validate:"max=255"`
	BusinessName    string                           `json:"business_name" validate:"required,max=255"`
	BusinessAddress string                           `json:"business_address" validate:"max=255"`
	PaymentTerms    string                           `json:"payment_terms" validate:"max=255"`
	Date            string                           `json:"date" validate:"omitempty,datetime=2006-01-02"`
	TaxPercent      *decimal.Decimal                 `json:"tax_percent" validate:"omitempty,percent"`
	Items           []CreatePurchaseOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type CreatePurchaseOrderItemRequest struct {
	ProductID        uuid.UUID        `json:"product_id" validate:"uuid_required"`
	ProductSKU       string           `json:"product_sku" validate:"max=64"`
	ProductName      string           `json:"product_name" validate:"max=255"`
	QuantityReceived int              `json:"quantity_received" validate:"gte=1"`
	UnitPrice        *decimal.Decimal `json:"unit_price" validate:"required,money"`
}

// ToPurchaseOrder builds a draft order from a validated request. An empty
// date falls back to today in now's location.
func (r *CreatePurchaseOrderRequest) ToPurchaseOrder(now time.Time) (*PurchaseOrder, error) {
	po := &PurchaseOrder{
		SupplierName:    r.SupplierName,
		SupplierAddress: r.SupplierAddress,
		BusinessName:    r.BusinessName,
		BusinessAddress: r.BusinessAddress,
		PaymentTerms:    r.PaymentTerms,
		TaxPercent:      DefaultTaxPercent,
		Status:          OrderDraft,
	}
	if po.PaymentTerms == "" {
		po.PaymentTerms = DefaultPaymentTerms
	}
	if r.TaxPercent != nil {
		po.TaxPercent = *r.TaxPercent
	}

	if r.Date == "" {
		y, m, d := now.Date()
		po.Date = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	} else {
		date, err := time.ParseInLocation(DateLayout, r.Date, now.Location())
		if err != nil {
			return nil, err
		}
		po.Date = date
	}

	po.Items = make([]PurchaseOrderItem, len(r.Items))
	for i, it := range r.Items {
		po.Items[i] = PurchaseOrderItem{
			ProductID:        it.ProductID,
			ProductSKU:       it.ProductSKU,
			ProductName:      it.ProductName,
			QuantityReceived: it.QuantityReceived,
			UnitPrice:        *it.UnitPrice,
			Position:         i,
		}
	}
	return po, nil
}

// PurchaseOrderResponse is the read view of an order with its computed totals.
// Money values are rendered with exactly two decimal places.
type PurchaseOrderResponse struct {
	ID              uuid.UUID                   `json:"id"`
	SupplierName    string                      `json:"supplier_name"`
	SupplierAddress string                      `json:"supplier_address"`
	BusinessName    string                      `json:"business_name"`
	BusinessAddress string                      `json:"business_address"`
	PaymentTerms    string                      `json:"payment_terms"`
	Date            string                      `json:"date"`
	TaxPercent      string                      `json:"tax_percent"`
	Status          OrderStatus                 `json:"status"`
	ConfirmedAt     *time.Time                  `json:"confirmed_at,omitempty"`
	ConfirmCount    int                         `json:"confirm_count"`
	CreatedAt       time.Time                   `json:"created_at"`
	Items           []PurchaseOrderItemResponse `json:"items"`
	Subtotal        string                      `json:"subtotal"`
	TaxValue        string                      `json:"tax_value"`
	TotalWithTax    string                      `json:"total_with_tax"`
}

type PurchaseOrderItemResponse struct {
	ID               uuid.UUID `json:"id"`
	ProductID        uuid.UUID `json:"product_id"`
	ProductSKU       string    `json:"product_sku"`
	ProductName      string    `json:"product_name"`
	QuantityReceived int       `json:"quantity_received"`
	UnitPrice        string    `json:"unit_price"`
	LineTotal        string    `json:"line_total"`
}

// ToResponse converts PurchaseOrder to PurchaseOrderResponse
func (po *PurchaseOrder) ToResponse() PurchaseOrderResponse {
	totals := po.Totals()
	response := PurchaseOrderResponse{
		ID:              po.ID,
		SupplierName:    po.SupplierName,
		SupplierAddress: po.SupplierAddress,
		BusinessName:    po.BusinessName,
		BusinessAddress: po.BusinessAddress,
		PaymentTerms:    po.PaymentTerms,
		Date:            po.Date.Format(DateLayout),
		TaxPercent:      po.TaxPercent.StringFixed(2),
		Status:          po.Status,
		ConfirmedAt:     po.ConfirmedAt,
		ConfirmCount:    po.ConfirmCount,
		CreatedAt:       po.CreatedAt,
		Items:           make([]PurchaseOrderItemResponse, len(po.Items)),
		Subtotal:        totals.Subtotal.StringFixed(2),
		TaxValue:        totals.TaxValue.StringFixed(2),
		TotalWithTax:    totals.TotalWithTax.StringFixed(2),
	}

	for i, it := range po.Items {
		response.Items[i] = PurchaseOrderItemResponse{
			ID:               it.ID,
			ProductID:        it.ProductID,
			ProductSKU:       it.ProductSKU,
			ProductName:      it.ProductName,
			QuantityReceived: it.QuantityReceived,
			UnitPrice:        it.UnitPrice.StringFixed(2),
			LineTotal:        it.LineTotal().StringFixed(2),
		}
	}

	return response
}
