package domain

import "github.com/shopspring/decimal"

const centsScale = 2

// ComputeTotals derives every total from items. Subtotal, tax and grand total are
// each rounded to cents on their own, so the grand total is not the once-rounded
// sum of the exact components.
func ComputeTotals(items []LineItem, rules PricingRules) Totals {
	if len(items) == 0 {
		return EmptyState().Totals
	}

	itemCount := 0
	subtotal := decimal.Zero
	hasLuxury := false
	for _, item := range items {
		itemCount += item.Quantity
		subtotal = subtotal.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		if item.Product.Price.GreaterThan(rules.LuxuryPriceThreshold) {
			hasLuxury = true
		}
	}

	shipping := rules.StandardShipping
	switch {
	case subtotal.GreaterThan(rules.FreeShippingThreshold):
		shipping = decimal.Zero
	case hasLuxury:
		shipping = rules.LuxuryShipping
	}

	tax := subtotal.Mul(rules.TaxRate).Round(centsScale)

	return Totals{
		ItemCount:  itemCount,
		Subtotal:   subtotal.Round(centsScale),
		Shipping:   shipping,
		Tax:        tax,
		GrandTotal: subtotal.Add(shipping).Add(tax).Round(centsScale),
	}
}

// LineTotal is price × quantity rounded to cents.
func LineTotal(item LineItem) decimal.Decimal {
	return item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(centsScale)
}
