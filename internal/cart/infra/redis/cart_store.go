package redis

import (
	"context"
	"time"

	"github.com/dwikikusuma/storefront-cart/internal/cart/app"
	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	"github.com/dwikikusuma/storefront-cart/internal/cart/infra/codec"
	goredis "github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const keyPrefix = "cart:"

type CartStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewCartStore stores each cart under cart:<session>. A positive ttl is
// refreshed on every save so abandoned carts age out.
func NewCartStore(rdb *goredis.Client, ttl time.Duration) *CartStore {
	if ttl < 0 {
		ttl = 0
	}
	return &CartStore{rdb: rdb, ttl: ttl}
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

func (s *CartStore) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	raw, err := s.rdb.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.Cart{}, app.ErrCartNotFound
	}
	if err != nil {
		return domain.Cart{}, errors.Wrapf(err, "redis get %s", key(sessionID))
	}
	return codec.Decode(raw)
}

func (s *CartStore) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	raw, err := codec.Encode(cart)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, key(sessionID), raw, s.ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key(sessionID))
	}
	return nil
}

func (s *CartStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, key(sessionID)).Err(); err != nil {
		return errors.Wrapf(err, "redis del %s", key(sessionID))
	}
	return nil
}
