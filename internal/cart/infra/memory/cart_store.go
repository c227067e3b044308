package memory

import (
	"context"
	"sync"

	"github.com/dwikikusuma/storefront-cart/internal/cart/app"
	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	"github.com/dwikikusuma/storefront-cart/internal/cart/infra/codec"
)

// CartStore keeps encoded carts in process memory. Values go through the
// same codec as the durable backends.
type CartStore struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string][]byte)}
}

func (s *CartStore) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	s.mu.RLock()
	raw, ok := s.carts[sessionID]
	s.mu.RUnlock()
	if !ok {
		return domain.Cart{}, app.ErrCartNotFound
	}
	return codec.Decode(raw)
}

func (s *CartStore) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	raw, err := codec.Encode(cart)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.carts[sessionID] = raw
	s.mu.Unlock()
	return nil
}

func (s *CartStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.carts, sessionID)
	s.mu.Unlock()
	return nil
}

// Put stores raw bytes as-is. Used to seed carts written by older clients.
func (s *CartStore) Put(sessionID string, raw []byte) {
	s.mu.Lock()
	s.carts[sessionID] = append([]byte(nil), raw...)
	s.mu.Unlock()
}
