package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
}

type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

func (l CartLine) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is ordered by insertion and holds at most one line per product id.
type Cart struct {
	Lines []CartLine
}

var ErrInvalidCart = errors.New("invalid cart")

func (c Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

func (c Cart) Index(productID string) int {
	for i, l := range c.Lines {
		if l.ID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) Clone() Cart {
	if c.Lines == nil {
		return Cart{}
	}
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}

func (c Cart) Validate() error {
	seen := make(map[string]struct{}, len(c.Lines))
	for i, l := range c.Lines {
		if strings.TrimSpace(l.ID) == "" {
			return fmt.Errorf("%w: line %d has no product id", ErrInvalidCart, i)
		}
		if l.Quantity < 1 {
			return fmt.Errorf("%w: line %d quantity must be positive, got %d", ErrInvalidCart, i, l.Quantity)
		}
		if l.Price.IsNegative() {
			return fmt.Errorf("%w: line %d price cannot be negative, got %s", ErrInvalidCart, i, l.Price)
		}
		if _, dup := seen[l.ID]; dup {
			return fmt.Errorf("%w: duplicate line for product %s", ErrInvalidCart, l.ID)
		}
		seen[l.ID] = struct{}{}
	}
	return nil
}

const shortTitleWords = 5

// ShortTitle keeps the first five words of a title for notification text.
func ShortTitle(title string) string {
	words := strings.Fields(title)
	if len(words) <= shortTitleWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:shortTitleWords], " ") + "..."
}
