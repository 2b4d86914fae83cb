package service

import (
	"context"
	"sync"

	"github.com/nahomjim91/spice-marketplace/internal/cart/domain"
	"github.com/nahomjim91/spice-marketplace/internal/observability/metrics"
	"github.com/nahomjim91/spice-marketplace/pkg/log/ctxlogger"
)

// Session is the single owner of one shopper's cart. Each mutation runs to
// completion under the session lock: validate, transition, persist, then notify.
type Session struct {
	id     string
	key    string
	engine *Engine

	mu          sync.Mutex
	state       domain.CartState
	subscribers []subscriber
	nextSub     int
	closed      bool

	// applied numbers each accepted mutation under mu; delivered trails it
	// under notifyMu so snapshots reach subscribers in apply order.
	applied   uint64
	notifyMu  sync.Mutex
	notified  *sync.Cond
	delivered uint64
}

type subscriber struct {
	id int
	fn func(domain.CartState)
}

func (s *Session) ID() string {
	return s.id
}

// State returns the current snapshot. Callers may keep it; later changes never alter it.
func (s *Session) State() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to receive every new snapshot. Subscribers are called in
// registration order, one snapshot at a time, in the order mutations applied.
// fn may read State but must not mutate the session. The returned func unregisters it.
func (s *Session) Subscribe(fn func(domain.CartState)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || fn == nil {
		return func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// AddItem looks productID up in the catalog and adds quantity of it.
func (s *Session) AddItem(ctx context.Context, productID string, quantity int, c *domain.Customizations) (domain.CartState, error) {
	if quantity <= 0 {
		return s.State(), domain.ErrInvalidQuantity
	}
	product, err := s.engine.lookup(ctx, productID)
	if err != nil {
		return s.State(), err
	}
	return s.AddProduct(ctx, product, quantity, c)
}

// AddProduct adds a caller-supplied product reference. Prices are held to
// whole cents; anything finer is rejected as ErrInvalidProduct.
func (s *Session) AddProduct(ctx context.Context, product domain.Product, quantity int, c *domain.Customizations) (domain.CartState, error) {
	if !domain.ValidQuantity(quantity) {
		return s.State(), domain.ErrInvalidQuantity
	}
	if product.ID == "" || product.Price.IsNegative() || !product.Price.Equal(product.Price.Truncate(2)) {
		return s.State(), domain.ErrInvalidProduct
	}
	line := s.engine.newLine(product, quantity, c)
	return s.apply(ctx, metrics.OperationAdd, func(t domain.Transitions, cur domain.CartState) (domain.CartState, error) {
		if err := t.CheckAdd(cur, line); err != nil {
			return cur, err
		}
		return t.AddItem(cur, line), nil
	})
}

func (s *Session) RemoveItem(ctx context.Context, id string) (domain.CartState, error) {
	return s.apply(ctx, metrics.OperationRemove, func(t domain.Transitions, cur domain.CartState) (domain.CartState, error) {
		return t.RemoveItem(cur, id), nil
	})
}

// UpdateQuantity sets the quantity of line id. Zero or less removes the line;
// more than domain.MaxLineQuantity is rejected.
func (s *Session) UpdateQuantity(ctx context.Context, id string, quantity int) (domain.CartState, error) {
	if quantity > domain.MaxLineQuantity {
		return s.State(), domain.ErrInvalidQuantity
	}
	return s.apply(ctx, metrics.OperationUpdateQuantity, func(t domain.Transitions, cur domain.CartState) (domain.CartState, error) {
		return t.UpdateQuantity(cur, id, quantity), nil
	})
}

func (s *Session) ClearCart(ctx context.Context) (domain.CartState, error) {
	return s.apply(ctx, metrics.OperationClear, func(t domain.Transitions, _ domain.CartState) (domain.CartState, error) {
		return t.Clear(), nil
	})
}

func (s *Session) ToggleCart(ctx context.Context) (domain.CartState, error) {
	return s.apply(ctx, metrics.OperationToggle, func(_ domain.Transitions, cur domain.CartState) (domain.CartState, error) {
		return cur.Toggle(), nil
	})
}

func (s *Session) OpenCart(ctx context.Context) (domain.CartState, error) {
	return s.apply(ctx, metrics.OperationOpen, func(_ domain.Transitions, cur domain.CartState) (domain.CartState, error) {
		return cur.Open(), nil
	})
}

func (s *Session) CloseCart(ctx context.Context) (domain.CartState, error) {
	return s.apply(ctx, metrics.OperationClose, func(_ domain.Transitions, cur domain.CartState) (domain.CartState, error) {
		return cur.Close(), nil
	})
}

// Close ends the session. Later mutations fail with ErrSessionClosed; State keeps
// returning the last snapshot.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subscribers = nil
}

// Discard closes the session and removes its persisted snapshot.
func (s *Session) Discard(ctx context.Context) {
	s.Close()
	s.engine.forget(ctxlogger.ContextWithSessionID(ctx, s.id), s.key)
}

func (s *Session) apply(ctx context.Context, operation string, fn func(domain.Transitions, domain.CartState) (domain.CartState, error)) (domain.CartState, error) {
	ctx = ctxlogger.ContextWithSessionID(ctx, s.id)

	s.mu.Lock()
	if s.closed {
		state := s.state
		s.mu.Unlock()
		return state, domain.ErrSessionClosed
	}

	next, err := fn(s.engine.transitions(), s.state)
	if err != nil {
		state := s.state
		s.mu.Unlock()
		return state, err
	}
	s.state = next
	s.engine.persist(ctx, s.key, next)
	s.engine.metrics.IncOperation(operation)

	s.applied++
	seq := s.applied
	subscribers := make([]subscriber, len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	for s.delivered != seq-1 {
		s.notified.Wait()
	}
	defer func() {
		s.delivered = seq
		s.notified.Broadcast()
	}()
	for _, sub := range subscribers {
		sub.fn(next)
	}
	return next, nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
