package port

import (
	"context"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

type CartRepository interface {
	// Load returns the persisted cart, nil when nothing has been stored yet
	Load(ctx context.Context) ([]domain.LineItem, error)

	// Save replaces the persisted cart with items
	Save(ctx context.Context, items []domain.LineItem) error
}
