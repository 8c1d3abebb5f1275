package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"woostore/storefront/internal/client"
	"woostore/storefront/internal/domain"
	"woostore/storefront/internal/domain/event"
	"woostore/storefront/internal/queue"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// ErrEmptyCart is returned when an order has no line items
var ErrEmptyCart = errors.New("order has no line items")

const defaultReadBackoff = 2 * time.Second

type OrderService struct {
	client      client.WooCommerceClient
	events      queue.EventStream
	now         func() time.Time
	readBackoff time.Duration // Pause after a failed stream read
}

// NewOrderService creates the order proxy service. events may be nil, in which case nothing is published.
func NewOrderService(client client.WooCommerceClient, events queue.EventStream) *OrderService {
	return &OrderService{
		client:      client,
		events:      events,
		now:         time.Now,
		readBackoff: defaultReadBackoff,
	}
}

// Submit forwards the order upstream and returns the upstream order. Payment state,
// status and customer are reset before forwarding.
// A failed event publish is logged and does not fail the order.
func (s *OrderService) Submit(ctx context.Context, doc *domain.OrderDocument) (*domain.Order, error) {
	if doc == nil || len(doc.LineItems) == 0 {
		return nil, ErrEmptyCart
	}

	// Orders created through the proxy are always unpaid guest orders awaiting payment,
	// whatever the caller asked for.
	doc.SetPaid = false
	doc.Status = domain.OrderStatusPending
	doc.CustomerID = 0

	order, err := s.client.CreateOrder(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if s.events != nil {
		placed := &event.OrderPlaced{
			OrderID:   order.ID,
			Number:    order.Number,
			Total:     order.Total,
			ItemCount: itemCount(doc.LineItems),
			PlacedAt:  s.now().UTC(),
		}
		if _, err := s.events.Publish(ctx, placed); err != nil {
			log.Errorf("❌ Failed to publish %s for order %d: %v", placed.EventType(), order.ID, err)
		}
	}

	return order, nil
}

func itemCount(items []domain.OrderLineItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

// RunOrderLog consumes OrderPlaced events and writes one structured log line per order
// until ctx is cancelled.
func (s *OrderService) RunOrderLog(ctx context.Context, numWorkers int) error {
	if s.events == nil {
		return nil
	}
	if err := s.events.EnsureStream(ctx, event.OrderPlacedType); err != nil {
		return err
	}

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			consumer := fmt.Sprintf("order-log-%d", workerID)
			log.Infof("🚀 Starting order log worker %d as consumer %s", workerID, consumer)
			for {
				select {
				case <-ctx.Done():
					log.Infof("🛑 Order log worker %d stopping", workerID)
					return
				default:
					msg, err := s.events.Read(ctx, event.OrderPlacedType, consumer, 5*time.Second)
					if err != nil {
						if ctx.Err() == nil {
							log.Errorf("❌ Failed to read order events, retrying in %s: %v", s.readBackoff, err)
						}
						select {
						case <-ctx.Done():
						case <-time.After(s.readBackoff):
						}
						continue
					}
					if msg == nil {
						continue
					}
					if err := s.processOrderPlaced(ctx, msg); err != nil {
						log.Errorf("❌ Failed to process message %s: %v", msg.ID, err)
					}
				}
			}
		}(i + 1)
	}

	wg.Wait()
	return nil
}

func (s *OrderService) processOrderPlaced(ctx context.Context, msg *redis.XMessage) error {
	data, ok := msg.Values["event_data"].(string)
	if !ok {
		return fmt.Errorf("invalid event data in message %s", msg.ID)
	}

	placed, err := event.UnmarshalEvent[*event.OrderPlaced]([]byte(data))
	if err != nil {
		return fmt.Errorf("failed to unmarshal order placed event: %w", err)
	}

	log.WithFields(log.Fields{
		"order_id":   placed.OrderID,
		"number":     placed.Number,
		"total":      placed.Total,
		"item_count": placed.ItemCount,
		"placed_at":  placed.PlacedAt.Format(time.RFC3339),
	}).Info("🧾 Order placed")

	if err := s.events.Ack(ctx, event.OrderPlacedType, msg.ID); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", msg.ID, err)
	}
	return nil
}
