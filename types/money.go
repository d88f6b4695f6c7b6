// Package types provides common types used across digigate.
package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Money represents a monetary value in the smallest currency unit.
// All arithmetic is integer-only, no floating point.
//
// Examples:
//   - EUR(999) = €9.99 (999 cents)
//   - USD(4900) = $49.00 (4900 cents)
//   - XOF(5000) = FCFA 5000 (no minor unit)
type Money struct {
	Amount   int64  `json:"amount"`   // Smallest unit (cents, etc)
	Currency string `json:"currency"` // ISO 4217 lowercase: "eur", "usd", "xof"
}

// EUR creates a Money value in Euros (cents).
func EUR(cents int64) Money { return Money{Amount: cents, Currency: "eur"} }

// USD creates a Money value in US Dollars (cents).
func USD(cents int64) Money { return Money{Amount: cents, Currency: "usd"} }

// XOF creates a Money value in West African CFA francs (no decimal).
func XOF(francs int64) Money { return Money{Amount: francs, Currency: "xof"} }

// Zero returns a zero Money value in the specified currency.
func Zero(currency string) Money { return Money{Amount: 0, Currency: strings.ToLower(currency)} }

// ParseMajor parses a major-unit amount such as "9.99" or "5000" into Money.
// Fractions longer than the currency allows are rejected rather than rounded.
func ParseMajor(s, currency string) (Money, error) {
	currency = strings.ToLower(strings.TrimSpace(currency))
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, fmt.Errorf("money: empty amount")
	}

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, hasFrac := strings.Cut(s, ".")
	decimals := currencyDecimals(currency)
	if hasFrac && len(frac) > decimals {
		return Money{}, fmt.Errorf("money: %q has more than %d decimal places for %s", s, decimals, currency)
	}
	frac += strings.Repeat("0", decimals-len(frac))

	major, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Money{}, fmt.Errorf("money: parse %q: %w", s, err)
	}
	amount := major * pow10(decimals)
	if decimals > 0 {
		minor, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return Money{}, fmt.Errorf("money: parse %q: %w", s, err)
		}
		amount += minor
	}
	if neg {
		amount = -amount
	}

	return Money{Amount: amount, Currency: currency}, nil
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool { return m.Amount == 0 }

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool { return m.Amount > 0 }

// Equal returns true if both Money values are equal (same amount and currency).
func (m Money) Equal(other Money) bool {
	return m.Amount == other.Amount && m.Currency == other.Currency
}

// LessThan returns true if this Money is less than other. Panics if currencies don't match.
func (m Money) LessThan(other Money) bool {
	m.assertSameCurrency(other)
	return m.Amount < other.Amount
}

// FormatMajor returns the major unit string without currency symbol.
// For currencies with 2 decimal places: "9.99" for EUR(999).
// For currencies with 0 decimal places (XOF): "5000" for XOF(5000).
func (m Money) FormatMajor() string {
	decimals := currencyDecimals(m.Currency)
	if decimals == 0 {
		return fmt.Sprintf("%d", m.Amount)
	}

	divisor := pow10(decimals)

	isNegative := m.Amount < 0
	absAmount := m.Amount
	if isNegative {
		absAmount = -absAmount
	}

	major := absAmount / divisor
	minor := absAmount % divisor

	format := fmt.Sprintf("%%d.%%0%dd", decimals)
	result := fmt.Sprintf(format, major, minor)

	if isNegative {
		return "-" + result
	}
	return result
}

// String returns a human-readable string with currency symbol.
// Examples: "€9.99", "$49.00", "FCFA 5000"
func (m Money) String() string {
	return currencySymbol(m.Currency) + m.FormatMajor()
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Display  string `json:"display"`
	}{
		Amount:   m.Amount,
		Currency: m.Currency,
		Display:  m.String(),
	})
}

func (m Money) assertSameCurrency(other Money) {
	if m.Currency != other.Currency {
		panic(fmt.Sprintf("money: currency mismatch: %s != %s", m.Currency, other.Currency))
	}
}

func currencySymbol(currency string) string {
	symbols := map[string]string{
		"eur": "€",
		"usd": "$",
		"gbp": "£",
		"xof": "FCFA ",
		"xaf": "FCFA ",
		"chf": "CHF ",
	}
	if sym, ok := symbols[strings.ToLower(currency)]; ok {
		return sym
	}
	return strings.ToUpper(currency) + " "
}

func currencyDecimals(currency string) int {
	zeroDecimal := map[string]bool{
		"xof": true, // West African CFA franc
		"xaf": true, // Central African CFA franc
		"jpy": true,
		"krw": true,
	}
	if zeroDecimal[strings.ToLower(currency)] {
		return 0
	}
	return 2
}

func pow10(n int) int64 {
	p := int64(1)
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}
