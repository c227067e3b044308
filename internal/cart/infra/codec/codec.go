// Package codec serializes carts for the persistent stores. A cart is stored
// as an ordered JSON array of line objects.
package codec

import (
	"bytes"
	"encoding/json"

	"github.com/dwikikusuma/storefront-cart/internal/cart/app"
	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	"github.com/pkg/errors"
)

func Encode(cart domain.Cart) ([]byte, error) {
	lines := cart.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return nil, errors.Wrap(err, "encode cart")
	}
	return b, nil
}

// Decode treats empty input, null and [] alike as the empty cart.
func Decode(raw []byte) (domain.Cart, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return domain.Cart{}, nil
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return domain.Cart{}, errors.Wrapf(app.ErrMalformedCart, "decode: %v", err)
	}
	if len(lines) == 0 {
		return domain.Cart{}, nil
	}

	cart := domain.Cart{Lines: lines}
	if err := cart.Validate(); err != nil {
		return domain.Cart{}, errors.Wrapf(app.ErrMalformedCart, "validate: %v", err)
	}
	return cart, nil
}
