package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedCart = errors.New("malformed cart")

// LineItem is a product held in the cart together with its quantity.
type LineItem struct {
	Product
	Quantity int `json:"quantity"`
}

// fields a stored line item must carry to be accepted
var requiredFields = []string{"id", "title", "price", "quantity"}

// EncodeLineItems serializes items as a JSON array. A nil slice encodes as [].
func EncodeLineItems(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	return data, nil
}

// DecodeLineItems parses a stored cart. Unknown fields are ignored; missing
// required fields, wrong types and duplicate ids yield ErrMalformedCart.
func DecodeLineItems(data []byte) ([]LineItem, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCart, err)
	}

	items := make([]LineItem, 0, len(raw))
	seen := make(map[int64]struct{}, len(raw))
	for i, entry := range raw {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(entry, &fields); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrMalformedCart, i, err)
		}
		for _, name := range requiredFields {
			v, ok := fields[name]
			if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
				return nil, fmt.Errorf("%w: item %d: missing %q", ErrMalformedCart, i, name)
			}
		}

		var item LineItem
		if err := json.Unmarshal(entry, &item); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrMalformedCart, i, err)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product id %d", ErrMalformedCart, item.ID)
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}

	return items, nil
}
