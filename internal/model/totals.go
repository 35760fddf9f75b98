package model

import (
	"bytes"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// OrderTotals holds the derived money values of a purchase order.
type OrderTotals struct {
	Subtotal     decimal.Decimal
	TaxValue     decimal.Decimal
	TotalWithTax decimal.Decimal
}

// LineTotal is unit price times quantity received, exact.
func (i PurchaseOrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.QuantityReceived)))
}

// Subtotal sums the line totals of items starting from 0.00.
func Subtotal(items []PurchaseOrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// TaxRate turns a whole-number percent (12.00) into a factor (0.12).
func TaxRate(taxPercent decimal.Decimal) decimal.Decimal {
	return taxPercent.Div(hundred)
}

// TaxValue is subtotal × rate rounded half-up to cents.
func TaxValue(subtotal, taxPercent decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(TaxRate(taxPercent)).Round(2)
}

// TotalWithTax is subtotal × (1 + rate) rounded half-up to cents. It is
// computed on its own path and not as subtotal + TaxValue.
func TotalWithTax(subtotal, taxPercent decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(one.Add(TaxRate(taxPercent))).Round(2)
}

func (po *PurchaseOrder) Subtotal() decimal.Decimal {
	return Subtotal(po.Items)
}

func (po *PurchaseOrder) TaxValue() decimal.Decimal {
	return TaxValue(po.Subtotal(), po.TaxPercent)
}

func (po *PurchaseOrder) TotalWithTax() decimal.Decimal {
	return TotalWithTax(po.Subtotal(), po.TaxPercent)
}

// Totals computes all derived values with a single pass over the items.
func (po *PurchaseOrder) Totals() OrderTotals {
	subtotal := po.Subtotal()
	return OrderTotals{
		Subtotal:     subtotal,
		TaxValue:     TaxValue(subtotal, po.TaxPercent),
		TotalWithTax: TotalWithTax(subtotal, po.TaxPercent),
	}
}

// StockIncrement is the quantity to add to one product when an order is confirmed.
type StockIncrement struct {
	ProductID uuid.UUID
	Quantity  int
}

// StockIncrements aggregates quantity received per product, sorted by
// product id so every confirmation takes row locks in the same order.
func StockIncrements(items []PurchaseOrderItem) []StockIncrement {
	byProduct := make(map[uuid.UUID]int, len(items))
	for _, it := range items {
		byProduct[it.ProductID] += it.QuantityReceived
	}

	incs := make([]StockIncrement, 0, len(byProduct))
	for id, qty := range byProduct {
		incs = append(incs, StockIncrement{ProductID: id, Quantity: qty})
	}
	sort.Slice(incs, func(i, j int) bool {
		return bytes.Compare(incs[i].ProductID[:], incs[j].ProductID[:]) < 0
	})
	return incs
}
