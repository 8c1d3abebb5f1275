package cart

import (
	"context"
	"encoding/json"
	"sync"

	"woostore/storefront/internal/domain"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Store holds the authoritative list of cart line items for one session.
// Every mutation is written to its Storage before the call returns.
type Store struct {
	mu      sync.Mutex
	storage Storage
	items   []domain.CartLineItem
}

// New creates a store and hydrates it from storage. Unreadable or malformed
// persisted data is logged and the cart starts empty.
func New(ctx context.Context, storage Storage) *Store {
	s := &Store{
		storage: storage,
		items:   make([]domain.CartLineItem, 0),
	}
	s.hydrate(ctx)
	return s
}

func (s *Store) hydrate(ctx context.Context) {
	data, err := s.storage.Load(ctx)
	if err != nil {
		log.Warnf("🛒 Failed to load persisted cart, starting empty: %v", err)
		return
	}
	if len(data) == 0 {
		return
	}

	items, err := Decode(data)
	if err != nil {
		log.Warnf("🛒 Discarding malformed persisted cart: %v", err)
		return
	}

	// One line per product: repeated ids are merged by summing their quantities
	for _, item := range items {
		if item.ID <= 0 || item.Quantity < 1 {
			log.Debugf("🛒 Dropping invalid persisted line item %d (quantity %d)", item.ID, item.Quantity)
			continue
		}
		if i := s.indexOf(item.ID); i >= 0 {
			log.Debugf("🛒 Merging duplicate persisted line item %d", item.ID)
			s.items[i].Quantity += item.Quantity
			continue
		}
		s.items = append(s.items, item)
	}
	log.Debugf("🛒 Hydrated cart with %d line items", len(s.items))
}

// AddToCart increments the quantity of an existing line item or appends a new one with quantity 1.
func (s *Store) AddToCart(ctx context.Context, item domain.CartLineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(item.ID); i >= 0 {
		s.items[i].Quantity++
	} else {
		item.Quantity = 1
		s.items = append(s.items, item)
	}
	s.persist(ctx)
}

// RemoveFromCart deletes the line item with the given id. Absent ids are ignored.
func (s *Store) RemoveFromCart(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(id)
	s.persist(ctx)
}

// UpdateQuantity sets the quantity of a line item; n <= 0 removes it.
func (s *Store) UpdateQuantity(ctx context.Context, id int64, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 {
		s.remove(id)
	} else if i := s.indexOf(id); i >= 0 {
		s.items[i].Quantity = n
	}
	s.persist(ctx)
}

// ClearCart empties the cart
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]domain.CartLineItem, 0)
	s.persist(ctx)
}

// Items returns a copy of the line items in insertion order
func (s *Store) Items() []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.CartLineItem, len(s.items))
	copy(items, s.items)
	return items
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// Total returns the unrounded sum of price*quantity, recomputed on every call.
// Prices that do not parse as decimals contribute nothing.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Total(s.items)
}

// FormatTotal returns the total rounded to two places for display
func (s *Store) FormatTotal() string {
	return s.Total().StringFixed(2)
}

// ItemCount returns the sum of quantities
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

func (s *Store) indexOf(id int64) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) remove(id int64) {
	if i := s.indexOf(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
}

// persist must be called with s.mu held. Write failures are logged, not returned.
func (s *Store) persist(ctx context.Context) {
	data, err := Encode(s.items)
	if err != nil {
		log.Errorf("🛒 Failed to encode cart: %v", err)
		return
	}
	if err := s.storage.Save(ctx, data); err != nil {
		log.Errorf("🛒 Failed to persist cart: %v", err)
	}
}

// Total sums price*quantity over items without rounding
func Total(items []domain.CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			log.Warnf("🛒 Ignoring unparsable price %q for item %d", item.Price, item.ID)
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Encode serializes line items as a JSON array
func Encode(items []domain.CartLineItem) ([]byte, error) {
	if items == nil {
		items = []domain.CartLineItem{}
	}
	return json.Marshal(items)
}

// Decode parses a JSON array of line items
func Decode(data []byte) ([]domain.CartLineItem, error) {
	var items []domain.CartLineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}
