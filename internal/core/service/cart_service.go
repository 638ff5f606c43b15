package service

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/storefront-cart/internal/core/domain"
	"github.com/rl1809/storefront-cart/internal/core/pricing"
	"github.com/rl1809/storefront-cart/internal/port"
)

type Option func(*CartService)

// WithNotifyCooldown sets the window in which a repeated identical
// notification is suppressed.
func WithNotifyCooldown(d time.Duration) Option {
	return func(s *CartService) { s.cooldown = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *CartService) { s.now = now }
}

// CartService owns the cart contents. Every mutation is flushed to the
// repository before it returns; persistence failures are logged and never
// reach the caller.
type CartService struct {
	repo     port.CartRepository
	notifier port.Notifier
	dedup    *Deduper
	cooldown time.Duration
	now      func() time.Time

	mu         sync.Mutex
	items      []domain.LineItem
	eventQueue chan domain.CartEvent
	closed     bool
}

// NewCartService builds the service and hydrates it from repo. A queueSize
// of zero disables change events.
func NewCartService(ctx context.Context, repo port.CartRepository, notifier port.Notifier, queueSize int, opts ...Option) *CartService {
	s := &CartService{
		repo:     repo,
		notifier: notifier,
		cooldown: DefaultNotifyCooldown,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dedup = NewDeduper(s.cooldown, s.now)
	if queueSize > 0 {
		s.eventQueue = make(chan domain.CartEvent, queueSize)
	}

	s.hydrate(ctx)
	return s
}

func (s *CartService) hydrate(ctx context.Context) {
	items, err := s.repo.Load(ctx)
	if err != nil {
		log.Printf("cart hydrate failed, starting empty: %v", err)
		items = nil
	}
	s.items = cloneItems(items)
}

// AddToCart adds quantity units of product. An existing line keeps its
// position and has its quantity increased. Non-positive quantities are
// applied as given.
func (s *CartService) AddToCart(ctx context.Context, product domain.Product, quantity int) {
	s.mu.Lock()

	var message string
	var eventType domain.EventType
	if i := s.indexOf(product.ID); i >= 0 {
		s.items[i].Quantity += quantity
		message = fmt.Sprintf("Updated %s quantity in cart", product.Title)
		eventType = domain.EventItemIncremented
	} else {
		product.Images = slices.Clone(product.Images)
		s.items = append(s.items, domain.LineItem{Product: product, Quantity: quantity})
		message = fmt.Sprintf("Added %s to cart", product.Title)
		eventType = domain.EventItemAdded
	}

	s.flush(ctx)
	s.publish(eventType, product.ID, quantity, message)
	s.mu.Unlock()

	s.notify(message)
}

// RemoveFromCart drops the line for productID. Unknown ids are ignored.
func (s *CartService) RemoveFromCart(ctx context.Context, productID int64) {
	s.mu.Lock()

	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}

	removed := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	message := fmt.Sprintf("Removed %s from cart", removed.Title)

	s.flush(ctx)
	s.publish(domain.EventItemRemoved, productID, removed.Quantity, message)
	s.mu.Unlock()

	s.notify(message)
}

// UpdateQuantity sets the quantity of an existing line. Quantities below one
// and unknown ids are ignored.
func (s *CartService) UpdateQuantity(ctx context.Context, productID int64, quantity int) {
	if quantity < 1 {
		return
	}

	s.mu.Lock()

	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}

	previous := s.items[i].Quantity
	s.items[i].Quantity = quantity

	var message string
	if previous != quantity {
		message = fmt.Sprintf("Updated %s quantity to %d", s.items[i].Title, quantity)
		s.publish(domain.EventQuantityUpdated, productID, quantity, message)
	}
	s.flush(ctx)
	s.mu.Unlock()

	if message != "" {
		s.notify(message)
	}
}

// ClearCart empties the cart.
func (s *CartService) ClearCart(ctx context.Context) {
	const message = "Cart cleared"

	s.mu.Lock()
	s.items = []domain.LineItem{}
	s.flush(ctx)
	s.publish(domain.EventCartCleared, 0, 0, message)
	s.mu.Unlock()

	s.notify(message)
}

// Snapshot is a consistent read of the cart taken under a single lock.
type Snapshot struct {
	Items []domain.LineItem
	Total float64
	Count int
}

// Snapshot returns the items, total and count as of one point in time.
func (s *CartService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Items: cloneItems(s.items),
		Total: s.total(),
		Count: s.count(),
	}
}

// Total sums the discounted line prices in cart order.
func (s *CartService) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total()
}

// Count sums the quantities of all lines.
func (s *CartService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count()
}

// Items returns a copy of the cart in insertion order.
func (s *CartService) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

func (s *CartService) total() float64 {
	total := 0.0
	for _, item := range s.items {
		total += pricing.EffectivePrice(item.Price, item.DiscountPercentage) * float64(item.Quantity)
	}
	return total
}

func (s *CartService) count() int {
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

func cloneItems(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(items))
	for i, item := range items {
		item.Images = slices.Clone(item.Images)
		out[i] = item
	}
	return out
}

func (s *CartService) GetEventQueue() <-chan domain.CartEvent {
	return s.eventQueue
}

// Close stops change events. The cart stays usable.
func (s *CartService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.eventQueue != nil {
		close(s.eventQueue)
	}
}

func (s *CartService) indexOf(productID int64) int {
	return slices.IndexFunc(s.items, func(item domain.LineItem) bool {
		return item.ID == productID
	})
}

// flush must be called with mu held.
func (s *CartService) flush(ctx context.Context) {
	if err := s.repo.Save(ctx, cloneItems(s.items)); err != nil {
		log.Printf("cart flush failed: %v", err)
	}
}

// publish must be called with mu held.
func (s *CartService) publish(eventType domain.EventType, productID int64, quantity int, message string) {
	if s.eventQueue == nil || s.closed {
		return
	}

	event := domain.CartEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		ProductID:  productID,
		Quantity:   quantity,
		Message:    message,
		OccurredAt: s.now(),
	}

	select {
	case s.eventQueue <- event:
	default:
		log.Printf("event queue full, dropping %s event %s", event.Type, event.ID)
	}
}

func (s *CartService) notify(message string) {
	if s.notifier == nil || !s.dedup.Allow(message) {
		return
	}
	s.notifier.Notify(message)
}
