package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the ISO code every storefront price is quoted in.
const DefaultCurrency = "gbp"

// ParsePrice parses a decimal price string such as "39.99".
func ParsePrice(value string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("price is empty")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", value, err)
	}
	return d.Round(2), nil
}

// MustPrice is ParsePrice for literals known at compile time.
func MustPrice(value string) decimal.Decimal {
	d, err := ParsePrice(value)
	if err != nil {
		panic(err)
	}
	return d
}

// ToMinorUnits converts a price to pence (or cents), rounding half away from zero.
func ToMinorUnits(price decimal.Decimal) int64 {
	return price.Shift(2).Round(0).IntPart()
}

// FromMinorUnits converts pence back to a two-place decimal price.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Shift(-2)
}

// FormatPrice renders a price with its currency symbol, e.g. "£39.99" or "-£15.97".
func FormatPrice(price decimal.Decimal, currency string) string {
	symbol := currencySymbol(currency)
	if price.IsNegative() {
		return "-" + symbol + price.Neg().StringFixed(2)
	}
	return symbol + price.StringFixed(2)
}

func currencySymbol(currency string) string {
	switch strings.ToLower(currency) {
	case "gbp", "":
		return "£"
	case "usd":
		return "$"
	case "eur":
		return "€"
	default:
		return strings.ToUpper(currency) + " "
	}
}

// RoundTo99 drops the fractional part and adds .99, e.g. 93.47 -> 93.99.
func RoundTo99(price decimal.Decimal) decimal.Decimal {
	return price.Floor().Add(decimal.New(99, -2))
}
