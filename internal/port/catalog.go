package port

import (
	"context"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

type Catalog interface {
	FetchAllProducts(ctx context.Context) ([]domain.Product, error)
	FetchProductByID(ctx context.Context, id int64) (domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
}
