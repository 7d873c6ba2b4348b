// Package core holds the domain model of the ledger: entities, the error
// taxonomy, and the parsing rules that turn free text into typed records.
package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var amountPattern = regexp.MustCompile(`^\d+([.,]\d+)?$`)

// ParseAmount parses a monetary token into an exact decimal. A comma is
// accepted as a decimal separator synonym for a dot. A malformed token
// fails with ErrInvalidAmount; a well-formed non-positive value fails with
// ErrNonPositiveAmount so callers can word the hint accordingly.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !amountPattern.MatchString(s) {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if d.Sign() <= 0 {
		return decimal.Decimal{}, ErrNonPositiveAmount
	}
	return d, nil
}
