package models

import "github.com/shopspring/decimal"

var (
	TaxRate               = decimal.RequireFromString("0.08")
	FreeShippingThreshold = decimal.NewFromInt(50)
	FlatShippingFee       = decimal.RequireFromString("9.99")
)

// PricedLine is the minimum a totals computation needs from a line.
type PricedLine struct {
	Price    float64
	Quantity int
}

// Totals is the financial breakdown shared by the cart preview and orders
type Totals struct {
	Subtotal float64 `json:"subtotal" bson:"subtotal"`
	Tax      float64 `json:"tax" bson:"tax"`
	Shipping float64 `json:"shipping" bson:"shipping"`
	Total    float64 `json:"total" bson:"total"`
}

// CalculateTotals applies 8% tax and free shipping strictly above 50, else 9.99.
// Amounts are not rounded to cents.
func CalculateTotals(lines []PricedLine) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	tax := subtotal.Mul(TaxRate)

	shipping := FlatShippingFee
	if subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	return Totals{
		Subtotal: subtotal.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Total:    subtotal.Add(tax).Add(shipping).InexactFloat64(),
	}
}
