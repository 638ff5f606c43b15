package domain

import "time"

type EventType string

const (
	EventItemAdded       EventType = "item_added"
	EventItemIncremented EventType = "item_incremented"
	EventItemRemoved     EventType = "item_removed"
	EventQuantityUpdated EventType = "quantity_updated"
	EventCartCleared     EventType = "cart_cleared"
)

// CartEvent records one completed cart mutation.
type CartEvent struct {
	ID         string
	Type       EventType
	ProductID  int64
	Quantity   int
	Message    string
	OccurredAt time.Time
}
