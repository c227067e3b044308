package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/storefront-cart/internal/cart/app"
	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	checkoutapp "github.com/dwikikusuma/storefront-cart/internal/checkout/app"
)

type CartSessionReader struct {
	sessions *cartapp.Sessions
}

func NewCartSessionReader(sessions *cartapp.Sessions) *CartSessionReader {
	return &CartSessionReader{sessions: sessions}
}

func (r *CartSessionReader) Lines(ctx context.Context, sessionID string) ([]checkoutapp.CartLine, error) {
	m, err := r.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return cartLines(m.Cart()), nil
}

// Checkout drains the session's cart through place. The cart stays locked
// until place returns, so adds racing a checkout land after the clear.
func (r *CartSessionReader) Checkout(ctx context.Context, sessionID string, place func([]checkoutapp.CartLine) error) error {
	m, err := r.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	return m.Drain(ctx, func(cart domain.Cart) error {
		return place(cartLines(cart))
	})
}

func cartLines(cart domain.Cart) []checkoutapp.CartLine {
	items := make([]checkoutapp.CartLine, 0, len(cart.Lines))
	for _, it := range cart.Lines {
		items = append(items, checkoutapp.CartLine{
			ProductID: it.ID,
			Title:     it.Title,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}
	return items
}
