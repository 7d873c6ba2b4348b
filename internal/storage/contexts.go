package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgetbot/internal/core"
)

// ContextByChat looks up a context by its composite (chat id, kind) key.
func (q *Queries) ContextByChat(ctx context.Context, chatID int64, kind core.ChatKind) (core.Context, error) {
	var c core.Context
	err := q.db.QueryRowContext(ctx,
		`SELECT id, chat_id, chat_kind FROM contexts WHERE chat_id = ? AND chat_kind = ?`,
		chatID, string(kind),
	).Scan(&c.ID, &c.ChatID, &c.Kind)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Context{}, core.ErrContextNotFound
	}
	if err != nil {
		return core.Context{}, fmt.Errorf("select context: %w", err)
	}
	return c, nil
}

// GetOrCreateContext returns the context for the chat, creating it on first
// touch. The second return reports whether this call created the row, so
// the caller knows to seed default categories. Two racing first messages
// cannot produce two contexts: the UNIQUE(chat_id, chat_kind) constraint
// makes the loser's insert a no-op and the refetch returns the winner's row.
func (q *Queries) GetOrCreateContext(ctx context.Context, chatID int64, kind core.ChatKind) (core.Context, bool, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO contexts (chat_id, chat_kind) VALUES (?, ?)`,
		chatID, string(kind),
	)
	if err != nil {
		return core.Context{}, false, fmt.Errorf("insert context: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return core.Context{}, false, fmt.Errorf("rows affected: %w", err)
	}
	c, err := q.ContextByChat(ctx, chatID, kind)
	if err != nil {
		return core.Context{}, false, err
	}
	return c, inserted == 1, nil
}

// DeleteContext removes the context row itself. Categories and transactions
// must already be gone; the caller orders the cascade.
func (q *Queries) DeleteContext(ctx context.Context, contextID int64) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM contexts WHERE id = ?`, contextID); err != nil {
		return fmt.Errorf("delete context: %w", err)
	}
	return nil
}
