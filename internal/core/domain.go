package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Private ChatKind = "private"
	Group   ChatKind = "group"

	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// ChatKind distinguishes a personal ledger from a shared group ledger.
	// A chat id alone is never a key: private and group ids overlap on the
	// source platform, so every lookup carries the kind too.
	ChatKind string

	// Kind is the transaction variant, fixed at creation.
	Kind string

	User struct {
		ID         int64
		TelegramID int64
		Username   string
		FirstName  string
	}

	// Context is one isolated scope of financial activity: a private chat
	// or a group. It owns its categories and all transactions inside it.
	Context struct {
		ID     int64
		ChatID int64
		Kind   ChatKind
	}

	Category struct {
		ID        int64
		ContextID int64
		Title     string
		IsDefault bool
		IsDeleted bool
	}

	Transaction struct {
		ID         int64
		UserID     int64
		ContextID  int64
		CategoryID int64
		Amount     decimal.Decimal
		CreatedAt  time.Time
	}
)

var (
	// ErrNotEntry marks input that is not a ledger entry at all (a command,
	// or text that does not match the amount-category shape). Callers must
	// ignore such input silently.
	ErrNotEntry = errors.New("not a ledger entry")

	ErrInvalidAmount       = errors.New("invalid amount")
	ErrNonPositiveAmount   = errors.New("amount not positive")
	ErrEmptyTitle          = errors.New("empty category title")
	ErrBadPeriod           = errors.New("unrecognized period")
	ErrUserNotFound        = errors.New("user not found")
	ErrContextNotFound     = errors.New("context not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrNotAuthor           = errors.New("not the transaction author")
	ErrNotGroup            = errors.New("not a group chat")
	ErrNotAdmin            = errors.New("not a chat administrator")
)

// FoldTitle normalizes a category title for comparison. Matching is
// case-insensitive across the full range of letters (titles are typically
// Cyrillic, which SQLite's lower() does not fold, so folding happens here).
func FoldTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// DefaultCategories is the fixed set seeded into every new context.
var DefaultCategories = []string{
	"аванс", "авто", "алкоголь", "аптека", "бензин", "больницы", "дом",
	"зарплата", "ипотека", "кафе", "коммунальные", "красота", "кредит",
	"образование", "одежда", "питомцы", "подарки", "продукты", "прочее",
	"путешествия", "развлечения", "сигареты", "спорт", "транспорт",
	"участок", "хобби", "хозтовары", "электроника",
}
