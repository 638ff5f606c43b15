package handler

import (
	"github.com/rl1809/storefront-cart/internal/core/domain"
	"github.com/rl1809/storefront-cart/internal/core/pricing"
	"github.com/rl1809/storefront-cart/internal/core/service"
)

type LineItemView struct {
	domain.LineItem
	EffectivePrice float64 `json:"effective_price"`
	LineTotal      float64 `json:"line_total"`
	FormattedPrice string  `json:"formatted_price"`
}

type CartView struct {
	Items          []LineItemView `json:"items"`
	Count          int            `json:"count"`
	Total          float64        `json:"total"`
	FormattedTotal string         `json:"formatted_total"`
}

func newCartView(cart *service.CartService) CartView {
	snap := cart.Snapshot()
	views := make([]LineItemView, 0, len(snap.Items))
	for _, item := range snap.Items {
		price := pricing.EffectivePrice(item.Price, item.DiscountPercentage)
		views = append(views, LineItemView{
			LineItem:       item,
			EffectivePrice: price,
			LineTotal:      price * float64(item.Quantity),
			FormattedPrice: pricing.FormatPrice(item.Price, item.DiscountPercentage),
		})
	}

	return CartView{
		Items:          views,
		Count:          snap.Count,
		Total:          snap.Total,
		FormattedTotal: pricing.FormatNaira(pricing.ConvertToNaira(snap.Total)),
	}
}
