package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog record a line item points at. It is never mutated by the cart.
type Product struct {
	ID       string
	Name     string
	Category string
	Price    decimal.Decimal
	Weight   string
	Region   string
}

// Customizations are opaque to total computation.
type Customizations struct {
	GiftWrap     string
	Message      string
	DeliveryDate string
}

func (c *Customizations) IsZero() bool {
	return c == nil || (c.GiftWrap == "" && c.Message == "" && c.DeliveryDate == "")
}

func (c *Customizations) Equal(other *Customizations) bool {
	if c.IsZero() || other.IsZero() {
		return c.IsZero() && other.IsZero()
	}
	return *c == *other
}

// MaxLineQuantity caps a single line. It keeps item counts and line totals far
// from int overflow.
const MaxLineQuantity = 999

// ValidQuantity reports whether q may be stored on a line.
func ValidQuantity(q int) bool {
	return q > 0 && q <= MaxLineQuantity
}

type LineItem struct {
	ID             string
	Product        Product
	Quantity       int
	Customizations *Customizations
	AddedAt        time.Time
}

type Totals struct {
	ItemCount  int
	Subtotal   decimal.Decimal
	Shipping   decimal.Decimal
	Tax        decimal.Decimal
	GrandTotal decimal.Decimal
}

// CartState is one immutable snapshot of a shopper's cart. Transitions always
// build a new value with a fresh Items slice.
type CartState struct {
	Items  []LineItem
	IsOpen bool
	Totals
}

// PricingRules parameterise shipping and tax.
type PricingRules struct {
	FreeShippingThreshold decimal.Decimal
	LuxuryPriceThreshold  decimal.Decimal
	LuxuryShipping        decimal.Decimal
	StandardShipping      decimal.Decimal
	TaxRate               decimal.Decimal
}

func DefaultPricingRules() PricingRules {
	return PricingRules{
		FreeShippingThreshold: decimal.NewFromInt(75),
		LuxuryPriceThreshold:  decimal.NewFromInt(50),
		LuxuryShipping:        decimal.NewFromInt(15),
		StandardShipping:      decimal.NewFromInt(10),
		TaxRate:               decimal.RequireFromString("0.085"),
	}
}

func EmptyState() CartState {
	return CartState{
		Items: []LineItem{},
		Totals: Totals{
			Subtotal:   decimal.Zero,
			Shipping:   decimal.Zero,
			Tax:        decimal.Zero,
			GrandTotal: decimal.Zero,
		},
	}
}

func (s CartState) IsEmpty() bool {
	return len(s.Items) == 0
}

// Find returns the line item with the given id.
func (s CartState) Find(id string) (LineItem, bool) {
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return LineItem{}, false
}

func (s CartState) Open() CartState {
	s.Items = cloneItems(s.Items)
	s.IsOpen = true
	return s
}

func (s CartState) Close() CartState {
	s.Items = cloneItems(s.Items)
	s.IsOpen = false
	return s
}

func (s CartState) Toggle() CartState {
	s.Items = cloneItems(s.Items)
	s.IsOpen = !s.IsOpen
	return s
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

// Equal compares totals by value, ignoring decimal representation.
func (t Totals) Equal(o Totals) bool {
	return t.ItemCount == o.ItemCount &&
		t.Subtotal.Equal(o.Subtotal) &&
		t.Shipping.Equal(o.Shipping) &&
		t.Tax.Equal(o.Tax) &&
		t.GrandTotal.Equal(o.GrandTotal)
}

func (p Product) Equal(o Product) bool {
	return p.ID == o.ID &&
		p.Name == o.Name &&
		p.Category == o.Category &&
		p.Price.Equal(o.Price) &&
		p.Weight == o.Weight &&
		p.Region == o.Region
}

func (l LineItem) Equal(o LineItem) bool {
	return l.ID == o.ID &&
		l.Product.Equal(o.Product) &&
		l.Quantity == o.Quantity &&
		l.Customizations.Equal(o.Customizations) &&
		l.AddedAt.Equal(o.AddedAt)
}

// Equal compares two snapshots by value.
func (s CartState) Equal(o CartState) bool {
	if s.IsOpen != o.IsOpen || len(s.Items) != len(o.Items) || !s.Totals.Equal(o.Totals) {
		return false
	}
	for i := range s.Items {
		if !s.Items[i].Equal(o.Items[i]) {
			return false
		}
	}
	return true
}
