// Package money holds the storefront's price arithmetic and display helpers.
//
// All amounts are USD decimals. Rounding is half away from zero to whole cents,
// which is what decimal.Round does.
package money

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const centsScale = 2

const deliveryLeadTime = 3 * 24 * time.Hour

var printer = message.NewPrinter(language.AmericanEnglish)

// Round rounds to whole cents.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(centsScale)
}

// FromFloat converts a JSON/config float to a decimal using its shortest representation.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// Float returns the cents-rounded amount as a float64 for wire formats.
func Float(d decimal.Decimal) float64 {
	f, _ := Round(d).Float64()
	return f
}

// Format renders d as US currency, e.g. "$1,234.50" or "-$3.83".
func Format(d decimal.Decimal) string {
	rounded := Round(d)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	f, _ := rounded.Float64()
	return sign + "$" + printer.Sprint(number.Decimal(f, number.Scale(centsScale)))
}

// EstimatedDelivery returns the customer-facing arrival day for an order placed at now.
func EstimatedDelivery(now time.Time) string {
	return now.Add(deliveryLeadTime).Format("Monday, January 2")
}
