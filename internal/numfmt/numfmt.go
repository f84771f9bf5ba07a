// =============================================================================
// NFC-e to PDF Converter - Numeric Formatting
// =============================================================================
//
// Brazilian number presentation for money, quantities and access keys.
// Amounts use a period as thousands separator and a comma as decimal
// separator ("1.234,50"). Rounding is half away from zero and always
// happens on the value before it is formatted.
//
// =============================================================================

package numfmt

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of fractional digits of every money value.
const CurrencyPlaces = 2

// QuantityPlaces is the number of fractional digits shown for quantities.
const QuantityPlaces = 4

// Round2 rounds d half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// BRL formats d as a pt-BR amount with exactly two fractional digits.
//
// EXAMPLES:
//
//	1234.5     -> "1.234,50"
//	0          -> "0,00"
//	999999.999 -> "1.000.000,00"
func BRL(d decimal.Decimal) string {
	return group(d.Round(CurrencyPlaces).StringFixed(CurrencyPlaces))
}

// Quantity formats d with four fractional digits using the same separators.
func Quantity(d decimal.Decimal) string {
	return group(d.Round(QuantityPlaces).StringFixed(QuantityPlaces))
}

// ParseBRL reads back a value produced by BRL or Quantity.
func ParseBRL(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid pt-BR number %q: %w", s, err)
	}
	return d, nil
}

// FormatKey splits an access key into space separated groups of four digits.
func FormatKey(key string) string {
	if key == "" {
		return ""
	}
	var groups []string
	for len(key) > 4 {
		groups = append(groups, key[:4])
		key = key[4:]
	}
	groups = append(groups, key)
	return strings.Join(groups, " ")
}

// group rewrites a fixed-point string like "-1234567.50" as "-1.234.567,50".
func group(fixed string) string {
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteByte(intPart[i])
	}
	if fracPart != "" {
		b.WriteByte(',')
		b.WriteString(fracPart)
	}
	return b.String()
}
