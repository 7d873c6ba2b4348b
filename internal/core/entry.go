package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// entryPattern gates which messages are treated as ledger entries at all:
// an optional leading +, a number with an optional fractional part, then
// whitespace and at least one non-space character.
var entryPattern = regexp.MustCompile(`^\+?\d+([.,]\d+)?\s+\S+`)

// Entry is a parsed free-text ledger line: "1000 кафе" is an expense,
// "+5000 зарплата" an income.
type Entry struct {
	Kind          Kind
	Amount        decimal.Decimal
	CategoryTitle string
}

// ParseEntry resolves a raw message into an Entry. Commands and text that
// does not look like an entry fail with ErrNotEntry; a well-shaped entry
// with a bad amount fails with ErrInvalidAmount.
func ParseEntry(text string) (Entry, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "/") {
		return Entry{}, ErrNotEntry
	}
	if !entryPattern.MatchString(text) {
		return Entry{}, ErrNotEntry
	}

	kind := Expense
	if strings.HasPrefix(text, "+") {
		kind = Income
		text = strings.TrimSpace(text[1:])
	}

	// Split on the first whitespace run: the remainder is the category
	// title and may itself contain spaces.
	cut := strings.IndexFunc(text, isSpace)
	amountTok := text[:cut]
	title := strings.TrimSpace(text[cut:])

	amount, err := ParseAmount(amountTok)
	if err != nil {
		return Entry{}, err
	}

	return Entry{Kind: kind, Amount: amount, CategoryTitle: title}, nil
}

// isSpace mirrors the regexp \s class, so any separator the gate accepts
// is also a split point.
func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\f' || r == '\r'
}
