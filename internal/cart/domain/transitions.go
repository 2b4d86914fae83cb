package domain

// Transitions applies cart mutations. Every method returns a new CartState with
// recomputed totals and leaves its input untouched.
type Transitions struct {
	Rules PricingRules
	Merge MergePolicy
}

func NewTransitions(rules PricingRules, merge MergePolicy) Transitions {
	if merge == nil {
		merge = MergeByProductID
	}
	return Transitions{Rules: rules, Merge: merge}
}

// CheckAdd reports ErrInvalidQuantity when adding line to s would leave a line
// outside 1..MaxLineQuantity.
func (t Transitions) CheckAdd(s CartState, line LineItem) error {
	if !ValidQuantity(line.Quantity) {
		return ErrInvalidQuantity
	}
	if i := t.mergeIndex(s.Items, line); i >= 0 && s.Items[i].Quantity > MaxLineQuantity-line.Quantity {
		return ErrInvalidQuantity
	}
	return nil
}

// AddItem merges line into the first matching row or appends it, and opens the cart.
// A line CheckAdd rejects leaves s as it was.
func (t Transitions) AddItem(s CartState, line LineItem) CartState {
	if t.CheckAdd(s, line) != nil {
		return s
	}

	items := cloneItems(s.Items)
	if i := t.mergeIndex(items, line); i >= 0 {
		items[i].Quantity += line.Quantity
	} else {
		items = append(items, line)
	}

	next := t.withItems(s, items)
	next.IsOpen = true
	return next
}

func (t Transitions) mergeIndex(items []LineItem, line LineItem) int {
	merge := t.Merge
	if merge == nil {
		merge = MergeByProductID
	}
	for i := range items {
		if merge(items[i], line.Product, line.Customizations) {
			return i
		}
	}
	return -1
}

func (t Transitions) RemoveItem(s CartState, id string) CartState {
	items := make([]LineItem, 0, len(s.Items))
	for _, item := range s.Items {
		if item.ID == id {
			continue
		}
		items = append(items, item)
	}
	return t.withItems(s, items)
}

// UpdateQuantity replaces the quantity of id; a quantity at or below zero removes the line.
// Quantities above MaxLineQuantity leave s as it was.
func (t Transitions) UpdateQuantity(s CartState, id string, quantity int) CartState {
	if quantity <= 0 {
		return t.RemoveItem(s, id)
	}
	if quantity > MaxLineQuantity {
		return s
	}
	items := cloneItems(s.Items)
	for i := range items {
		if items[i].ID == id {
			items[i].Quantity = quantity
		}
	}
	return t.withItems(s, items)
}

func (t Transitions) Clear() CartState {
	return EmptyState()
}

// Recompute rebuilds the derived totals of s under the current rules.
func (t Transitions) Recompute(s CartState) CartState {
	return t.withItems(s, cloneItems(s.Items))
}

func (t Transitions) withItems(s CartState, items []LineItem) CartState {
	return CartState{
		Items:  items,
		IsOpen: s.IsOpen,
		Totals: ComputeTotals(items, t.Rules),
	}
}
