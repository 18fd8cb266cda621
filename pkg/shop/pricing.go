package shop

import (
	"github.com/shopspring/decimal"

	"github.com/shopa-beauty/storefront-api/pkg/models"
)

var (
	// ShippingFee is charged once per order.
	ShippingFee = decimal.NewFromInt(5)
	// TaxRate applies to the subtotal only.
	TaxRate = decimal.NewFromFloat(0.10)
)

// Totals is the money breakdown of one order.
type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// LineTotal is unit price times quantity.
func LineTotal(price float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
}

// ComputeTotals adds the flat shipping fee and tax to a subtotal.
func ComputeTotals(subtotal decimal.Decimal) Totals {
	tax := subtotal.Mul(TaxRate)
	return Totals{
		Subtotal: subtotal,
		Shipping: ShippingFee,
		Tax:      tax,
		Total:    subtotal.Add(ShippingFee).Add(tax),
	}
}

// Receipt rebuilds the breakdown from a stored order. Item prices are line
// totals already, so they are summed as-is.
func Receipt(order *models.Order) models.Receipt {
	subtotal := decimal.Zero
	for _, item := range order.Items {
		subtotal = subtotal.Add(decimal.NewFromFloat(item.LineTotal))
	}
	totals := ComputeTotals(subtotal)

	return models.Receipt{
		OrderID:  order.ID,
		Subtotal: totals.Subtotal.InexactFloat64(),
		Shipping: totals.Shipping.InexactFloat64(),
		Tax:      totals.Tax.InexactFloat64(),
		Total:    order.Total,
		Items:    order.GetItemCount(),
	}
}
