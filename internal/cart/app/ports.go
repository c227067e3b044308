package app

import (
	"context"

	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
)

// CartStore is the durable slot holding one serialized cart per session.
// Load returns ErrCartNotFound when nothing is stored and an error wrapping
// ErrMalformedCart when the stored value cannot be decoded.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (domain.Cart, error)
	Save(ctx context.Context, sessionID string, cart domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

type AuthStatusSource interface {
	IsAuthenticated(ctx context.Context) bool
}
