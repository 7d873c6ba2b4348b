package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgetbot/internal/core"
)

const categoryColumns = `id, context_id, title, is_default, is_deleted`

func scanCategory(row *sql.Row) (core.Category, error) {
	var c core.Category
	err := row.Scan(&c.ID, &c.ContextID, &c.Title, &c.IsDefault, &c.IsDeleted)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("select category: %w", err)
	}
	return c, nil
}

// ActiveCategoryByTitle resolves a non-deleted category by folded title.
func (q *Queries) ActiveCategoryByTitle(ctx context.Context, contextID int64, title string) (core.Category, error) {
	return scanCategory(q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE context_id = ? AND title_norm = ? AND is_deleted = 0`,
		contextID, core.FoldTitle(title),
	))
}

// AnyCategoryByTitle resolves a category by folded title regardless of its
// deletion state. Soft-deleted matches are what the restore path flips back.
func (q *Queries) AnyCategoryByTitle(ctx context.Context, contextID int64, title string) (core.Category, error) {
	return scanCategory(q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE context_id = ? AND title_norm = ? ORDER BY is_deleted LIMIT 1`,
		contextID, core.FoldTitle(title),
	))
}

// InsertCategory creates a category. The partial unique index on
// (context_id, title_norm) absorbs a concurrent creation of the same title;
// created is false when someone else won and the caller should refetch.
func (q *Queries) InsertCategory(ctx context.Context, contextID int64, title string, isDefault bool) (created bool, err error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO categories (context_id, title, title_norm, is_default, is_deleted)
		 VALUES (?, ?, ?, ?, 0)`,
		contextID, title, core.FoldTitle(title), isDefault,
	)
	if err != nil {
		return false, fmt.Errorf("insert category: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return inserted == 1, nil
}

// SetCategoryDeleted flips the soft-delete tag. Deletion never removes the
// row: historical transactions keep their category reference.
func (q *Queries) SetCategoryDeleted(ctx context.Context, categoryID int64, deleted bool) error {
	if _, err := q.db.ExecContext(ctx,
		`UPDATE categories SET is_deleted = ? WHERE id = ?`, deleted, categoryID,
	); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// ListActiveCategories returns the non-deleted titles of a context in
// lexicographic order.
func (q *Queries) ListActiveCategories(ctx context.Context, contextID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT title FROM categories WHERE context_id = ? AND is_deleted = 0 ORDER BY title`,
		contextID,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan category title: %w", err)
		}
		titles = append(titles, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return titles, nil
}

// DeleteCategoriesByContext hard-deletes every category of a context.
// Only the clear-context cascade uses this.
func (q *Queries) DeleteCategoriesByContext(ctx context.Context, contextID int64) error {
	if _, err := q.db.ExecContext(ctx,
		`DELETE FROM categories WHERE context_id = ?`, contextID,
	); err != nil {
		return fmt.Errorf("delete categories: %w", err)
	}
	return nil
}
