package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"budgetbot/internal/core"
)

// Incomes and expenses are disjoint same-shaped relations; the kind picks
// the table. Only these two literals ever reach the SQL text.
func tableFor(kind core.Kind) string {
	if kind == core.Income {
		return "incomes"
	}
	return "expenses"
}

// CategoryAmountRow is one transaction joined with its category title,
// fetched for in-memory aggregation.
type CategoryAmountRow struct {
	Title  string
	Amount decimal.Decimal
}

// LineRow is one transaction of an itemized listing.
type LineRow struct {
	CreatedAt time.Time
	Amount    decimal.Decimal
	Title     string
}

// InsertTransaction persists one ledger row and returns its id.
func (q *Queries) InsertTransaction(ctx context.Context, kind core.Kind, t core.Transaction) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO `+tableFor(kind)+` (user_id, context_id, category_id, amount, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		t.UserID, t.ContextID, t.CategoryID, t.Amount.String(), formatTime(t.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", kind, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// TransactionByID fetches one row of the given kind.
func (q *Queries) TransactionByID(ctx context.Context, kind core.Kind, id int64) (core.Transaction, error) {
	var (
		t         core.Transaction
		amount    string
		createdAt string
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT id, user_id, context_id, category_id, amount, created_at
		 FROM `+tableFor(kind)+` WHERE id = ?`, id,
	).Scan(&t.ID, &t.UserID, &t.ContextID, &t.CategoryID, &amount, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("select %s: %w", kind, err)
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored time %q: %w", createdAt, err)
	}
	return t, nil
}

// DeleteTransaction hard-deletes a row; reversal has no soft-delete.
func (q *Queries) DeleteTransaction(ctx context.Context, kind core.Kind, id int64) error {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM `+tableFor(kind)+` WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	} else if n == 0 {
		return core.ErrTransactionNotFound
	}
	return nil
}

// AmountsInPeriod returns the raw amounts of one user in one context over
// [from, to), with no category filter. Summation happens in the caller so
// it stays exact decimal.
func (q *Queries) AmountsInPeriod(ctx context.Context, kind core.Kind, contextID, userID int64, from, to time.Time) ([]decimal.Decimal, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT amount FROM `+tableFor(kind)+`
		 WHERE context_id = ? AND user_id = ? AND created_at >= ? AND created_at < ?`,
		contextID, userID, formatTime(from), formatTime(to),
	)
	if err != nil {
		return nil, fmt.Errorf("select %s amounts: %w", kind, err)
	}
	defer rows.Close()

	var amounts []decimal.Decimal
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan amount: %w", err)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", s, err)
		}
		amounts = append(amounts, d)
	}
	return amounts, rows.Err()
}

// CategoryAmountsInPeriod returns (title, amount) pairs in insertion order,
// excluding rows whose category is soft-deleted.
func (q *Queries) CategoryAmountsInPeriod(ctx context.Context, kind core.Kind, contextID, userID int64, from, to time.Time) ([]CategoryAmountRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT c.title, t.amount
		 FROM `+tableFor(kind)+` t
		 JOIN categories c ON c.id = t.category_id
		 WHERE t.context_id = ? AND t.user_id = ?
		   AND t.created_at >= ? AND t.created_at < ?
		   AND c.is_deleted = 0
		 ORDER BY t.created_at, t.id`,
		contextID, userID, formatTime(from), formatTime(to),
	)
	if err != nil {
		return nil, fmt.Errorf("select %s by category: %w", kind, err)
	}
	defer rows.Close()

	var out []CategoryAmountRow
	for rows.Next() {
		var (
			r CategoryAmountRow
			s string
		)
		if err := rows.Scan(&r.Title, &s); err != nil {
			return nil, fmt.Errorf("scan category amount: %w", err)
		}
		if r.Amount, err = decimal.NewFromString(s); err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", s, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LinesInPeriod returns itemized (time, amount, title) rows ascending by
// timestamp, excluding rows whose category is soft-deleted.
func (q *Queries) LinesInPeriod(ctx context.Context, kind core.Kind, contextID, userID int64, from, to time.Time) ([]LineRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT t.created_at, t.amount, c.title
		 FROM `+tableFor(kind)+` t
		 JOIN categories c ON c.id = t.category_id
		 WHERE t.context_id = ? AND t.user_id = ?
		   AND t.created_at >= ? AND t.created_at < ?
		   AND c.is_deleted = 0
		 ORDER BY t.created_at, t.id`,
		contextID, userID, formatTime(from), formatTime(to),
	)
	if err != nil {
		return nil, fmt.Errorf("select %s lines: %w", kind, err)
	}
	defer rows.Close()

	var out []LineRow
	for rows.Next() {
		var (
			l         LineRow
			createdAt string
			amount    string
		)
		if err := rows.Scan(&createdAt, &amount, &l.Title); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		if l.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse stored time %q: %w", createdAt, err)
		}
		if l.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", amount, err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// DeleteTransactionsByContext hard-deletes every row of one kind in a
// context. Only the clear-context cascade uses this.
func (q *Queries) DeleteTransactionsByContext(ctx context.Context, kind core.Kind, contextID int64) error {
	if _, err := q.db.ExecContext(ctx,
		`DELETE FROM `+tableFor(kind)+` WHERE context_id = ?`, contextID,
	); err != nil {
		return fmt.Errorf("delete %ss: %w", kind, err)
	}
	return nil
}
