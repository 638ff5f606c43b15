package port

import (
	"context"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

type EventRepository interface {
	// SaveEvent appends a cart event to the history log
	SaveEvent(ctx context.Context, event domain.CartEvent) error
}
