package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Summary is the total income and expense over a period.
	Summary struct {
		Period  Period
		Income  decimal.Decimal
		Expense decimal.Decimal
	}

	// CategoryAmount is one line of a per-category breakdown.
	CategoryAmount struct {
		Title  string
		Amount decimal.Decimal
	}

	// Breakdown groups a period's transactions by category, for income and
	// expense independently, ordered by summed amount descending.
	Breakdown struct {
		Period       Period
		Income       []CategoryAmount
		Expense      []CategoryAmount
		IncomeTotal  decimal.Decimal
		ExpenseTotal decimal.Decimal
	}

	// Line is one transaction in an itemized listing.
	Line struct {
		At       time.Time
		Amount   decimal.Decimal
		Category string
	}

	// DayDetail is the chronological listing of a single day's
	// transactions, per kind, each with its own total.
	DayDetail struct {
		Date         time.Time
		Income       []Line
		Expense      []Line
		IncomeTotal  decimal.Decimal
		ExpenseTotal decimal.Decimal
	}
)
