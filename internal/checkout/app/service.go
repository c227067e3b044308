package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/dwikikusuma/storefront-cart/internal/checkout/domain"
	"github.com/shopspring/decimal"
)

type CartReader interface {
	Lines(ctx context.Context, sessionID string) ([]CartLine, error)
	// Checkout passes the current lines to place under the cart's lock and
	// clears the cart only when place returns nil.
	Checkout(ctx context.Context, sessionID string, place func([]CartLine) error) error
}

type CartLine struct {
	ProductID string
	Title     string
	Price     decimal.Decimal
	Quantity  int
}

type Options struct {
	ShopName       string
	WhatsAppNumber string
	Shipping       decimal.Decimal
	CurrencySymbol string
}

var defaultOptions = Options{
	ShopName:       "BuyNGo",
	WhatsAppNumber: "917575837112",
	Shipping:       decimal.NewFromInt(10),
	CurrencySymbol: "₹",
}

type Service struct {
	cart CartReader
	opts Options
	log  *slog.Logger
}

func NewService(cart CartReader, opts Options, log *slog.Logger) *Service {
	if opts.ShopName == "" {
		opts.ShopName = defaultOptions.ShopName
	}
	if opts.WhatsAppNumber == "" {
		opts.WhatsAppNumber = defaultOptions.WhatsAppNumber
	}
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = defaultOptions.CurrencySymbol
	}
	if opts.Shipping.IsNegative() {
		opts.Shipping = defaultOptions.Shipping
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{cart: cart, opts: opts, log: log}
}

var ErrEmptyCart = errors.New("cart is empty")

// ValidationError lists the form fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid checkout form: " + strings.Join(names, ", ")
}

func (s *Service) Quote(ctx context.Context, sessionID string) (domain.Quote, error) {
	items, err := s.cart.Lines(ctx, sessionID)
	if err != nil {
		return domain.Quote{}, err
	}
	return s.quote(items)
}

func (s *Service) quote(items []CartLine) (domain.Quote, error) {
	if len(items) == 0 {
		return domain.Quote{}, ErrEmptyCart
	}

	lines := make([]domain.QuoteLine, 0, len(items))
	subtotal := decimal.Zero
	for _, it := range items {
		if it.Quantity <= 0 {
			return domain.Quote{}, fmt.Errorf("quantity must be greater than zero: %d", it.Quantity)
		}
		lineTotal := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		lines = append(lines, domain.QuoteLine{
			ProductID: it.ProductID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
			LineTotal: lineTotal,
		})
	}

	return domain.Quote{
		Lines:    lines,
		Subtotal: subtotal,
		Shipping: s.opts.Shipping,
		Total:    subtotal.Add(s.opts.Shipping),
	}, nil
}

// Place builds the order message and chat link from the cart and clears the
// cart in the same step. A failed clear does not fail the order.
func (s *Service) Place(ctx context.Context, sessionID string, form domain.Form) (domain.Order, error) {
	var (
		order  domain.Order
		placed bool
	)
	err := s.cart.Checkout(ctx, sessionID, func(items []CartLine) error {
		q, err := s.quote(items)
		if err != nil {
			return err
		}
		if fields := form.Validate(); fields != nil {
			return &ValidationError{Fields: fields}
		}

		msg := s.message(form, q)
		order = domain.Order{
			Quote:   q,
			Message: msg,
			Link:    "https://wa.me/" + s.opts.WhatsAppNumber + "?text=" + encodeComponent(msg),
		}
		placed = true
		return nil
	})
	if err != nil && !placed {
		return domain.Order{}, err
	}
	if err != nil {
		s.log.Error("clear cart after checkout failed",
			slog.String("session_id", sessionID),
			slog.Any("err", err),
		)
	}
	return order, nil
}

func (s *Service) message(f domain.Form, q domain.Quote) string {
	cur := s.opts.CurrencySymbol

	var b strings.Builder
	fmt.Fprintf(&b, "Order from %s\n", s.opts.ShopName)
	fmt.Fprintf(&b, "Name: %s %s\n", f.FirstName, f.LastName)
	fmt.Fprintf(&b, "Phone: %s\n", f.Phone)
	fmt.Fprintf(&b, "Email: %s\n", f.Email)
	fmt.Fprintf(&b, "Payment: %s\n", f.Method())
	fmt.Fprintf(&b, "Address: %s,\nCity: %s, State: %s, Pincode: %s, Country: %s\n",
		f.Address, f.City, f.State, f.ZipCode, f.Country)
	b.WriteString("Items:\n")
	for _, l := range q.Lines {
		fmt.Fprintf(&b, "- %s (%s%s) (Qty: %d)\n", l.Title, cur, l.UnitPrice.StringFixed(2), l.Quantity)
	}
	fmt.Fprintf(&b, "Total: %s%s", cur, q.Total.StringFixed(2))
	return b.String()
}

// encodeComponent percent-encodes s for a query value, spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
