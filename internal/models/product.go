package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a product record carries no currency
const DefaultCurrency = "USD"

// Product is a sellable catalog item
type Product struct {
	ID               string `validate:"required,max=64,excludesall=/?#"`
	Name             string `validate:"required,max=255"`
	ShortDescription string `validate:"max=512"`
	Description      string
	Price            decimal.Decimal
	Currency         string `validate:"len=3,alpha"`
	ImageURL         string `validate:"omitempty,max=2048"`
	ImageAlt         string `validate:"max=255"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Domain errors
var (
	ErrInvalidProduct = errors.New("invalid product")
	ErrNegativePrice  = errors.New("product price cannot be negative")
	ErrPricePrecision = errors.New("product price has more than two decimal places")
	ErrPriceTooLarge  = errors.New("product price exceeds the maximum")
)

// MaxPrice is the largest price the products table can hold (NUMERIC(12, 2))
var MaxPrice = decimal.RequireFromString("9999999999.99")

var validate = validator.New()

// Validate checks the product record before it is persisted
func (p *Product) Validate() error {
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	p.Currency = strings.ToUpper(p.Currency)

	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: field %s failed %q", ErrInvalidProduct, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if !p.Price.Equal(p.Price.Truncate(2)) {
		return ErrPricePrecision
	}
	if p.Price.GreaterThan(MaxPrice) {
		return ErrPriceTooLarge
	}
	return nil
}

var currencySymbols = map[string]string{
	"USD": "$",
	"CAD": "CA$",
	"AUD": "A$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// DisplayPrice returns the price formatted for display, e.g. "$89.99"
func (p Product) DisplayPrice() string {
	currency := strings.ToUpper(p.Currency)
	if currency == "" {
		currency = DefaultCurrency
	}

	places := int32(2)
	if currency == "JPY" {
		places = 0
	}
	amount := p.Price.StringFixed(places)

	if symbol, ok := currencySymbols[currency]; ok {
		return symbol + amount
	}
	return fmt.Sprintf("%s %s", amount, currency)
}
