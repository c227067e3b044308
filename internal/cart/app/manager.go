package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidQuantity  = errors.New("quantity out of range")
	ErrInvalidSession   = errors.New("invalid session id")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrCartNotFound     = errors.New("cart not found")
	ErrMalformedCart    = errors.New("malformed cart")
	ErrPersistence      = errors.New("cart persistence failed")
)

const (
	DefaultNotificationTTL   = 4 * time.Second
	DefaultNotificationLimit = 5
	DefaultSessionIdle       = 30 * time.Minute

	// MaxCartQuantity caps the summed quantity of a cart, so every line
	// quantity and the count fit the int32 wire fields of the transports.
	MaxCartQuantity = math.MaxInt32
)

const (
	msgLoginRequired = "Please login to add products to cart"
	msgSaveFailed    = "Could not update your cart, please try again"
)

type Options struct {
	NotificationTTL time.Duration
	// NotificationLimit caps the live queue; zero selects the default and a
	// negative value leaves it unbounded.
	NotificationLimit int
	SessionIdle       time.Duration
}

func (o Options) withDefaults() Options {
	if o.NotificationTTL <= 0 {
		o.NotificationTTL = DefaultNotificationTTL
	}
	if o.NotificationLimit == 0 {
		o.NotificationLimit = DefaultNotificationLimit
	}
	if o.SessionIdle <= 0 {
		o.SessionIdle = DefaultSessionIdle
	}
	return o
}

// Manager owns the cart of one session. Every mutation is written to the
// store before it becomes visible in memory.
type Manager struct {
	sessionID string
	store     CartStore
	auth      AuthStatusSource
	log       *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	cart     domain.Cart
	count    int
	lastUsed time.Time

	notes *notificationQueue
}

func NewManager(ctx context.Context, sessionID string, store CartStore, auth AuthStatusSource, opts Options, log *slog.Logger) (*Manager, error) {
	if log == nil {
		log = slog.Default()
	}
	opts = opts.withDefaults()
	log = log.With(slog.String("session_id", sessionID))

	cart, err := store.Load(ctx, sessionID)
	switch {
	case err == nil:
		if verr := cart.Validate(); verr != nil {
			log.Warn("discarding invalid stored cart", slog.Any("err", verr))
			cart = domain.Cart{}
		}
	case errors.Is(err, ErrCartNotFound):
		cart = domain.Cart{}
	case errors.Is(err, ErrMalformedCart):
		log.Warn("discarding malformed stored cart", slog.Any("err", err))
		cart = domain.Cart{}
	default:
		return nil, fmt.Errorf("load: %w: %w", ErrPersistence, err)
	}

	limit := opts.NotificationLimit
	if limit < 0 {
		limit = 0
	}

	return &Manager{
		sessionID: sessionID,
		store:     store,
		auth:      auth,
		log:       log,
		now:       time.Now,
		cart:      cart,
		count:     cart.Count(),
		lastUsed:  time.Now(),
		notes:     newNotificationQueue(opts.NotificationTTL, limit),
	}, nil
}

func (m *Manager) SessionID() string {
	return m.sessionID
}

// Add merges quantity into the line for p.ID, creating it when absent.
// A zero quantity means one.
func (m *Manager) Add(ctx context.Context, p domain.Product, quantity int) error {
	if quantity == 0 {
		quantity = 1
	}
	if quantity > MaxCartQuantity {
		return ErrInvalidQuantity
	}
	if quantity < 0 || strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Title) == "" || p.Price.IsNegative() {
		return ErrInvalidInput
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.auth.IsAuthenticated(ctx) {
		m.notes.push(domain.KindError, msgLoginRequired, m.now())
		return ErrNotAuthenticated
	}

	if m.count > MaxCartQuantity-quantity {
		return ErrInvalidQuantity
	}

	next := m.cart.Clone()
	if i := next.Index(p.ID); i >= 0 {
		next.Lines[i].Quantity += quantity
	} else {
		next.Lines = append(next.Lines, domain.CartLine{Product: p, Quantity: quantity})
	}

	if err := m.commit(ctx, next); err != nil {
		return err
	}

	m.notes.push(domain.KindSuccess, domain.ShortTitle(p.Title)+" added to cart", m.now())
	return nil
}

// Remove drops the line for productID. Removing an absent line does nothing.
func (m *Manager) Remove(ctx context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.cart.Index(productID)
	if i < 0 {
		return nil
	}
	removed := m.cart.Lines[i]

	next := m.cart.Clone()
	next.Lines = slices.Delete(next.Lines, i, i+1)

	if err := m.commit(ctx, next); err != nil {
		return err
	}

	m.notes.push(domain.KindError, domain.ShortTitle(removed.Title)+" removed from cart", m.now())
	return nil
}

// UpdateQuantity sets the quantity of an existing line. Quantities below one
// are rejected, as is a quantity that would push the cart past
// MaxCartQuantity; removal goes through Remove.
func (m *Manager) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 || quantity > MaxCartQuantity {
		return ErrInvalidQuantity
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.cart.Index(productID)
	if i < 0 || m.cart.Lines[i].Quantity == quantity {
		return nil
	}
	if m.count-m.cart.Lines[i].Quantity > MaxCartQuantity-quantity {
		return ErrInvalidQuantity
	}

	next := m.cart.Clone()
	next.Lines[i].Quantity = quantity
	return m.commit(ctx, next)
}

// Drain hands the current cart to place while holding the cart lock and
// empties the cart once place succeeds, so no mutation can slip in between
// reading the lines and clearing them. An error from place leaves the cart
// as it was.
func (m *Manager) Drain(ctx context.Context, place func(domain.Cart) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := place(m.cart.Clone()); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, m.sessionID); err != nil {
		return m.persistFailed("delete", err)
	}
	m.cart = domain.Cart{}
	m.count = 0
	return nil
}

// Clear empties the cart and deletes the stored copy.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(ctx, m.sessionID); err != nil {
		return m.persistFailed("delete", err)
	}
	m.cart = domain.Cart{}
	m.count = 0
	return nil
}

func (m *Manager) DismissNotification(id uint64) {
	m.notes.remove(id)
}

func (m *Manager) Notifications() []domain.Notification {
	return m.notes.snapshot()
}

func (m *Manager) Cart() domain.Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.Clone()
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// Close stops pending notification timers. The cart itself stays usable.
func (m *Manager) Close() {
	m.notes.close()
}

func (m *Manager) touch(now time.Time) {
	m.mu.Lock()
	m.lastUsed = now
	m.mu.Unlock()
}

func (m *Manager) idleSince() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastUsed
}

// commit must be called with m.mu held.
func (m *Manager) commit(ctx context.Context, next domain.Cart) error {
	if err := m.store.Save(ctx, m.sessionID, next); err != nil {
		return m.persistFailed("save", err)
	}
	m.cart = next
	m.count = next.Count()
	return nil
}

func (m *Manager) persistFailed(op string, err error) error {
	m.log.Error("cart persistence failed", slog.String("op", op), slog.Any("err", err))
	m.notes.push(domain.KindError, msgSaveFailed, m.now())
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
