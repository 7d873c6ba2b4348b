package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgetbot/internal/core"
)

// UserByTelegramID looks up a user by platform identity.
func (q *Queries) UserByTelegramID(ctx context.Context, tgID int64) (core.User, error) {
	var u core.User
	err := q.db.QueryRowContext(ctx,
		`SELECT id, tg_id, username, first_name FROM users WHERE tg_id = ?`, tgID,
	).Scan(&u.ID, &u.TelegramID, &u.Username, &u.FirstName)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

// GetOrCreateUser returns the user for tgID, creating it on first contact.
// Profile fields are first-write-wins: an existing row is never updated.
// A concurrent creator is absorbed by INSERT OR IGNORE plus the refetch.
func (q *Queries) GetOrCreateUser(ctx context.Context, tgID int64, username, firstName string) (core.User, error) {
	_, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (tg_id, username, first_name) VALUES (?, ?, ?)`,
		tgID, username, firstName,
	)
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	return q.UserByTelegramID(ctx, tgID)
}
