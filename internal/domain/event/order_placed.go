package event

import "time"

const OrderPlacedType = "OrderPlaced"

type OrderPlaced struct {
	OrderID   int64     `json:"order_id"`   // Upstream-assigned order id
	Number    string    `json:"number"`     // Display number, usually the id
	Total     string    `json:"total"`      // Upstream order total
	ItemCount int       `json:"item_count"` // Sum of line item quantities
	PlacedAt  time.Time `json:"placed_at"`
}

func (e *OrderPlaced) EventType() string {
	return OrderPlacedType
}

func (e *OrderPlaced) EventValue() ([]byte, error) {
	return DefaultEventValue(e)
}
