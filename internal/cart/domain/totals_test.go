package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func product(id, price string) Product {
	return Product{ID: id, Name: id, Price: decimal.RequireFromString(price)}
}

func line(id string, p Product, qty int) LineItem {
	return LineItem{ID: id, Product: p, Quantity: qty}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, got.Equal(decimal.RequireFromString(want)), "%s: want %s, got %s", field, want, got)
}

func TestComputeTotalsScenarios(t *testing.T) {
	rules := DefaultPricingRules()

	cases := []struct {
		name       string
		items      []LineItem
		count      int
		subtotal   string
		shipping   string
		tax        string
		grandTotal string
	}{
		{
			name:       "single standard item",
			items:      []LineItem{line("a", product("berbere-gondar", "45"), 1)},
			count:      1,
			subtotal:   "45.00",
			shipping:   "10",
			tax:        "3.83",
			grandTotal: "58.83",
		},
		{
			name:       "single item above free shipping threshold",
			items:      []LineItem{line("b", product("berbere-aged", "85"), 1)},
			count:      1,
			subtotal:   "85.00",
			shipping:   "0",
			tax:        "7.23",
			grandTotal: "92.23",
		},
		{
			name: "luxury item below threshold",
			items: []LineItem{
				line("c", product("chef", "60"), 1),
				line("d", product("pouch", "14.99"), 1),
			},
			count:      2,
			subtotal:   "74.99",
			shipping:   "15",
			tax:        "6.37",
			grandTotal: "96.36",
		},
		{
			name: "no luxury item below threshold",
			items: []LineItem{
				line("e", product("mild", "35"), 1),
				line("f", product("honey", "39.99"), 1),
			},
			count:      2,
			subtotal:   "74.99",
			shipping:   "10",
			tax:        "6.37",
			grandTotal: "91.36",
		},
		{
			name:       "quantities multiply",
			items:      []LineItem{line("g", product("shero-yellow", "25"), 4)},
			count:      4,
			subtotal:   "100.00",
			shipping:   "0",
			tax:        "8.50",
			grandTotal: "108.50",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeTotals(tc.items, rules)
			assert.Equal(t, tc.count, got.ItemCount)
			assertDecimal(t, tc.subtotal, got.Subtotal, "subtotal")
			assertDecimal(t, tc.shipping, got.Shipping, "shipping")
			assertDecimal(t, tc.tax, got.Tax, "tax")
			assertDecimal(t, tc.grandTotal, got.GrandTotal, "grandTotal")
		})
	}
}

func TestShippingThresholdIsStrictlyAbove(t *testing.T) {
	rules := DefaultPricingRules()

	exactlyWithLuxury := ComputeTotals([]LineItem{line("k", product("korarima", "75"), 1)}, rules)
	assertDecimal(t, "15", exactlyWithLuxury.Shipping, "shipping at 75 with luxury item")

	exactlyStandard := ComputeTotals([]LineItem{line("s", product("shero-yellow", "25"), 3)}, rules)
	assertDecimal(t, "10", exactlyStandard.Shipping, "shipping at 75 without luxury item")

	justAbove := ComputeTotals([]LineItem{
		line("s", product("shero-yellow", "25"), 3),
		line("p", product("pin", "0.01"), 1),
	}, rules)
	assertDecimal(t, "0", justAbove.Shipping, "shipping at 75.01")
}

func TestLuxuryFlagIsStrictlyAbovePriceThreshold(t *testing.T) {
	got := ComputeTotals([]LineItem{line("a", product("fifty", "50"), 1)}, DefaultPricingRules())
	assertDecimal(t, "10", got.Shipping, "shipping")
}

func TestComputeTotalsEmptyIsZero(t *testing.T) {
	got := ComputeTotals(nil, DefaultPricingRules())
	assert.Equal(t, 0, got.ItemCount)
	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.Shipping.IsZero())
	assert.True(t, got.Tax.IsZero())
	assert.True(t, got.GrandTotal.IsZero())
}

// Tax is taken from the exact subtotal, not the cents-rounded one.
func TestTaxUsesExactSubtotal(t *testing.T) {
	items := []LineItem{line("x", product("sample", "17.5859"), 1)}
	got := ComputeTotals(items, DefaultPricingRules())

	assertDecimal(t, "17.59", got.Subtotal, "subtotal")
	// 17.5859 * 0.085 = 1.4948015, whereas 17.59 * 0.085 would round to 1.50
	assertDecimal(t, "1.49", got.Tax, "tax")
	assertDecimal(t, "29.08", got.GrandTotal, "grandTotal")
}

func TestLineTotal(t *testing.T) {
	assertDecimal(t, "137.97", LineTotal(line("a", product("p", "45.99"), 3)), "line total")
}
