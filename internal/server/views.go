package server

import (
	"time"

	cartdomain "github.com/nahomjim91/spice-marketplace/internal/cart/domain"
	catalogdomain "github.com/nahomjim91/spice-marketplace/internal/catalog/domain"
	checkoutdomain "github.com/nahomjim91/spice-marketplace/internal/checkout/domain"
	"github.com/nahomjim91/spice-marketplace/internal/money"
	"github.com/shopspring/decimal"
)

type amountView struct {
	Amount    float64 `json:"amount"`
	Formatted string  `json:"formatted"`
}

func newAmountView(d decimal.Decimal) amountView {
	return amountView{Amount: money.Float(d), Formatted: money.Format(d)}
}

type productView struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Category string     `json:"category"`
	Price    amountView `json:"price"`
	Weight   string     `json:"weight"`
	Region   string     `json:"region"`
	InStock  bool       `json:"in_stock"`
}

func newCatalogProductView(p catalogdomain.Product) productView {
	return productView{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    newAmountView(p.Price),
		Weight:   p.Weight,
		Region:   p.Region,
		InStock:  p.InStock,
	}
}

type cartProductView struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Category string     `json:"category"`
	Price    amountView `json:"price"`
	Weight   string     `json:"weight"`
	Region   string     `json:"region"`
}

type customizationsView struct {
	GiftWrap     string `json:"gift_wrap,omitempty"`
	Message      string `json:"message,omitempty"`
	DeliveryDate string `json:"delivery_date,omitempty"`
}

type lineItemView struct {
	ID             string              `json:"id"`
	Product        cartProductView     `json:"product"`
	Quantity       int                 `json:"quantity"`
	Customizations *customizationsView `json:"customizations,omitempty"`
	AddedAt        time.Time           `json:"added_at"`
	LineTotal      amountView          `json:"line_total"`
}

type totalsView struct {
	ItemCount  int        `json:"item_count"`
	Subtotal   amountView `json:"subtotal"`
	Shipping   amountView `json:"shipping"`
	Tax        amountView `json:"tax"`
	GrandTotal amountView `json:"grand_total"`
}

type cartView struct {
	SessionID string         `json:"session_id"`
	Items     []lineItemView `json:"items"`
	IsOpen    bool           `json:"is_open"`
	Totals    totalsView     `json:"totals"`
}

func newLineItemViews(items []cartdomain.LineItem) []lineItemView {
	out := make([]lineItemView, 0, len(items))
	for _, item := range items {
		view := lineItemView{
			ID: item.ID,
			Product: cartProductView{
				ID:       item.Product.ID,
				Name:     item.Product.Name,
				Category: item.Product.Category,
				Price:    newAmountView(item.Product.Price),
				Weight:   item.Product.Weight,
				Region:   item.Product.Region,
			},
			Quantity:  item.Quantity,
			AddedAt:   item.AddedAt,
			LineTotal: newAmountView(cartdomain.LineTotal(item)),
		}
		if !item.Customizations.IsZero() {
			view.Customizations = &customizationsView{
				GiftWrap:     item.Customizations.GiftWrap,
				Message:      item.Customizations.Message,
				DeliveryDate: item.Customizations.DeliveryDate,
			}
		}
		out = append(out, view)
	}
	return out
}

func newTotalsView(t cartdomain.Totals) totalsView {
	return totalsView{
		ItemCount:  t.ItemCount,
		Subtotal:   newAmountView(t.Subtotal),
		Shipping:   newAmountView(t.Shipping),
		Tax:        newAmountView(t.Tax),
		GrandTotal: newAmountView(t.GrandTotal),
	}
}

func newCartView(sessionID string, state cartdomain.CartState) cartView {
	return cartView{
		SessionID: sessionID,
		Items:     newLineItemViews(state.Items),
		IsOpen:    state.IsOpen,
		Totals:    newTotalsView(state.Totals),
	}
}

type receiptView struct {
	OrderID           string         `json:"order_id"`
	PaymentIntentID   string         `json:"payment_intent_id"`
	Amount            amountView     `json:"amount"`
	Currency          string         `json:"currency"`
	Items             []lineItemView `json:"items"`
	Totals            totalsView     `json:"totals"`
	EstimatedDelivery string         `json:"estimated_delivery"`
	PlacedAt          time.Time      `json:"placed_at"`
}

func newReceiptView(r *checkoutdomain.Receipt) receiptView {
	return receiptView{
		OrderID:           r.OrderID,
		PaymentIntentID:   r.PaymentIntentID,
		Amount:            newAmountView(r.Amount),
		Currency:          r.Currency,
		Items:             newLineItemViews(r.Items),
		Totals:            newTotalsView(r.Totals),
		EstimatedDelivery: r.EstimatedDelivery,
		PlacedAt:          r.PlacedAt,
	}
}

type orderView struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Provider        string     `json:"provider"`
	PaymentIntentID string     `json:"payment_intent_id"`
	Currency        string     `json:"currency"`
	ItemCount       int        `json:"item_count"`
	Subtotal        amountView `json:"subtotal"`
	Shipping        amountView `json:"shipping"`
	Tax             amountView `json:"tax"`
	GrandTotal      amountView `json:"grand_total"`
	CreatedAt       time.Time  `json:"created_at"`
}

func newOrderView(o *checkoutdomain.Order) orderView {
	return orderView{
		ID:              o.ID,
		Email:           o.Email,
		Provider:        o.Provider,
		PaymentIntentID: o.PaymentIntentID,
		Currency:        o.Currency,
		ItemCount:       o.ItemCount,
		Subtotal:        newAmountView(o.Subtotal),
		Shipping:        newAmountView(o.Shipping),
		Tax:             newAmountView(o.Tax),
		GrandTotal:      newAmountView(o.GrandTotal),
		CreatedAt:       o.CreatedAt,
	}
}
