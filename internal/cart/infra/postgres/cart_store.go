package postgres

import (
	"context"
	"database/sql"

	"github.com/dwikikusuma/storefront-cart/internal/cart/app"
	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	"github.com/dwikikusuma/storefront-cart/internal/cart/infra/codec"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const (
	loadCartSQL   = `SELECT lines FROM carts WHERE session_id = $1`
	saveCartSQL   = `INSERT INTO carts (session_id, lines) VALUES ($1, $2) ON CONFLICT (session_id) DO UPDATE SET lines = EXCLUDED.lines, updated_at = now()`
	deleteCartSQL = `DELETE FROM carts WHERE session_id = $1`
)

type CartStore struct {
	db *sqlx.DB
}

func NewCartStore(db *sql.DB) *CartStore {
	return &CartStore{db: sqlx.NewDb(db, "postgres")}
}

func (s *CartStore) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw, loadCartSQL, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Cart{}, app.ErrCartNotFound
	}
	if err != nil {
		return domain.Cart{}, errors.Wrap(err, "select cart")
	}
	return codec.Decode(raw)
}

func (s *CartStore) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	raw, err := codec.Encode(cart)
	if err != nil {
		return err
	}
	// lib/pq sends []byte as bytea, so jsonb goes over as text.
	if _, err := s.db.ExecContext(ctx, saveCartSQL, sessionID, string(raw)); err != nil {
		return errors.Wrap(err, "upsert cart")
	}
	return nil
}

func (s *CartStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, deleteCartSQL, sessionID); err != nil {
		return errors.Wrap(err, "delete cart")
	}
	return nil
}
