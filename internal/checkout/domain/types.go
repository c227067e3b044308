package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	CashOnDelivery PaymentMethod = "cash-on-delivery"
	CreditCard     PaymentMethod = "credit-card"
)

type QuoteLine struct {
	ProductID string
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

type Quote struct {
	Lines    []QuoteLine
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Form is the customer's checkout input. Card fields are only read when the
// payment method is CreditCard and are never copied into an Order.
type Form struct {
	FirstName     string        `json:"firstName"`
	LastName      string        `json:"lastName"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	Address       string        `json:"address"`
	City          string        `json:"city"`
	State         string        `json:"state"`
	ZipCode       string        `json:"zipCode"`
	Country       string        `json:"country"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`

	CardNumber string `json:"cardNumber,omitempty"`
	CardName   string `json:"cardName,omitempty"`
	ExpiryDate string `json:"expiryDate,omitempty"`
	CVV        string `json:"cvv,omitempty"`
}

type Order struct {
	Quote   Quote
	Message string
	Link    string
}

var (
	emailRe  = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phoneRe  = regexp.MustCompile(`^[0-9\-\+\s()]{10,15}$`)
	cardRe   = regexp.MustCompile(`^[0-9]{16}$`)
	expiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	cvvRe    = regexp.MustCompile(`^[0-9]{3,4}$`)
	spaceRe  = regexp.MustCompile(`\s`)
)

const msgRequired = "This field is required"

// Method returns the payment method, defaulting to cash on delivery.
func (f Form) Method() PaymentMethod {
	if f.PaymentMethod == "" {
		return CashOnDelivery
	}
	return f.PaymentMethod
}

// Validate returns a message per invalid field, or nil when the form is
// acceptable.
func (f Form) Validate() map[string]string {
	errs := make(map[string]string)

	required := []struct{ name, value string }{
		{"firstName", f.FirstName},
		{"lastName", f.LastName},
		{"email", f.Email},
		{"phone", f.Phone},
		{"address", f.Address},
		{"city", f.City},
		{"state", f.State},
		{"zipCode", f.ZipCode},
		{"country", f.Country},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs[r.name] = msgRequired
		}
	}

	if f.Email != "" && !emailRe.MatchString(f.Email) {
		errs["email"] = "Please enter a valid email address"
	}
	if f.Phone != "" && !phoneRe.MatchString(f.Phone) {
		errs["phone"] = "Please enter a valid phone number"
	}

	switch f.Method() {
	case CashOnDelivery:
	case CreditCard:
		f.validateCard(errs)
	default:
		errs["paymentMethod"] = "Unsupported payment method"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (f Form) validateCard(errs map[string]string) {
	switch {
	case strings.TrimSpace(f.CardNumber) == "":
		errs["cardNumber"] = "Card number is required"
	case !cardRe.MatchString(spaceRe.ReplaceAllString(f.CardNumber, "")):
		errs["cardNumber"] = "Please enter a valid 16-digit card number"
	}

	if strings.TrimSpace(f.CardName) == "" {
		errs["cardName"] = "Name on card is required"
	}

	switch {
	case strings.TrimSpace(f.ExpiryDate) == "":
		errs["expiryDate"] = "Expiry date is required"
	case !expiryRe.MatchString(f.ExpiryDate):
		errs["expiryDate"] = "Please use MM/YY format"
	}

	switch {
	case strings.TrimSpace(f.CVV) == "":
		errs["cvv"] = "CVV is required"
	case !cvvRe.MatchString(f.CVV):
		errs["cvv"] = "CVV must be 3 or 4 digits"
	}
}
