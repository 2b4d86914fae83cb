package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nahomjim91/spice-marketplace/internal/cart/domain"
	"github.com/nahomjim91/spice-marketplace/internal/money"
)

var ErrCorruptSnapshot = errors.New("corrupt_cart_snapshot")

// snapshot mirrors the JSON blob the storefront keeps for session restore.
// Field names match what the web client has always written so old blobs load.
type snapshot struct {
	Items      []snapshotItem `json:"items"`
	IsOpen     bool           `json:"isOpen"`
	Total      float64        `json:"total"`
	ItemCount  int            `json:"itemCount"`
	Shipping   float64        `json:"shipping"`
	Tax        float64        `json:"tax"`
	FinalTotal float64        `json:"finalTotal"`
}

type snapshotItem struct {
	ID             string                  `json:"id"`
	Product        snapshotProduct         `json:"product"`
	Quantity       int                     `json:"quantity"`
	Customizations *snapshotCustomizations `json:"customizations,omitempty"`
	AddedAt        time.Time               `json:"addedAt"`
}

type snapshotProduct struct {
	ID       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	Category string  `json:"category,omitempty"`
	Price    float64 `json:"price"`
	Weight   string  `json:"weight,omitempty"`
	Region   string  `json:"region,omitempty"`
}

type snapshotCustomizations struct {
	GiftWrap     string `json:"gift_wrap,omitempty"`
	Message      string `json:"message,omitempty"`
	DeliveryDate string `json:"delivery_date,omitempty"`
}

// Encode serializes the whole state, derived totals included.
func Encode(state domain.CartState) (string, error) {
	snap := snapshot{
		Items:      make([]snapshotItem, 0, len(state.Items)),
		IsOpen:     state.IsOpen,
		Total:      money.Float(state.Subtotal),
		ItemCount:  state.ItemCount,
		Shipping:   money.Float(state.Shipping),
		Tax:        money.Float(state.Tax),
		FinalTotal: money.Float(state.GrandTotal),
	}
	for _, item := range state.Items {
		// Prices are whole cents, which survive the float64 round trip through JSON.
		price, _ := item.Product.Price.Float64()
		si := snapshotItem{
			ID: item.ID,
			Product: snapshotProduct{
				ID:       item.Product.ID,
				Name:     item.Product.Name,
				Category: item.Product.Category,
				Price:    price,
				Weight:   item.Product.Weight,
				Region:   item.Product.Region,
			},
			Quantity: item.Quantity,
			AddedAt:  item.AddedAt.UTC(),
		}
		if !item.Customizations.IsZero() {
			si.Customizations = &snapshotCustomizations{
				GiftWrap:     item.Customizations.GiftWrap,
				Message:      item.Customizations.Message,
				DeliveryDate: item.Customizations.DeliveryDate,
			}
		}
		snap.Items = append(snap.Items, si)
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Decode parses a blob back into a state. Totals are taken as stored; callers
// that care about rule drift recompute them.
func Decode(blob string) (domain.CartState, error) {
	if strings.TrimSpace(blob) == "" {
		return domain.CartState{}, ErrCorruptSnapshot
	}

	var snap snapshot
	if err := json.Unmarshal([]byte(blob), &snap); err != nil {
		return domain.CartState{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	state := domain.EmptyState()
	state.IsOpen = snap.IsOpen
	state.ItemCount = snap.ItemCount
	state.Subtotal = money.Round(money.FromFloat(snap.Total))
	state.Shipping = money.Round(money.FromFloat(snap.Shipping))
	state.Tax = money.Round(money.FromFloat(snap.Tax))
	state.GrandTotal = money.Round(money.FromFloat(snap.FinalTotal))

	seen := make(map[string]bool, len(snap.Items))
	for _, si := range snap.Items {
		if si.ID == "" || seen[si.ID] {
			return domain.CartState{}, fmt.Errorf("%w: missing or duplicate line id %q", ErrCorruptSnapshot, si.ID)
		}
		if !domain.ValidQuantity(si.Quantity) {
			return domain.CartState{}, fmt.Errorf("%w: line %s has quantity %d", ErrCorruptSnapshot, si.ID, si.Quantity)
		}
		if si.Product.ID == "" || si.Product.Price < 0 {
			return domain.CartState{}, fmt.Errorf("%w: line %s has an invalid product", ErrCorruptSnapshot, si.ID)
		}
		seen[si.ID] = true

		item := domain.LineItem{
			ID: si.ID,
			Product: domain.Product{
				ID:       si.Product.ID,
				Name:     si.Product.Name,
				Category: si.Product.Category,
				Price:    money.FromFloat(si.Product.Price),
				Weight:   si.Product.Weight,
				Region:   si.Product.Region,
			},
			Quantity: si.Quantity,
			AddedAt:  si.AddedAt.UTC(),
		}
		if si.Customizations != nil {
			item.Customizations = &domain.Customizations{
				GiftWrap:     si.Customizations.GiftWrap,
				Message:      si.Customizations.Message,
				DeliveryDate: si.Customizations.DeliveryDate,
			}
		}
		state.Items = append(state.Items, item)
	}

	return state, nil
}
