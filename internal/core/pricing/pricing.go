// Package pricing converts catalog prices for display in naira.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	USDToNGN    = 1550
	nairaSymbol = "₦"
)

// EffectivePrice applies a percentage discount to a unit price.
func EffectivePrice(price, discountPercentage float64) float64 {
	return price * (1 - discountPercentage/100)
}

func ConvertToNaira(usd float64) float64 {
	return usd * USDToNGN
}

// FormatNaira renders amount with the naira symbol, thousands separators and
// no fraction digits. Halves round away from zero.
func FormatNaira(amount float64) string {
	rounded := decimal.NewFromFloat(amount).Round(0)
	digits := rounded.Abs().StringFixed(0)

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(nairaSymbol)
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatPrice discounts a USD price, converts it and formats it for display.
func FormatPrice(usd, discountPercentage float64) string {
	return FormatNaira(ConvertToNaira(EffectivePrice(usd, discountPercentage)))
}
