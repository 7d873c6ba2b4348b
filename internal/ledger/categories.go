package ledger

import (
	"context"
	"errors"
	"strings"

	"budgetbot/internal/core"
	"budgetbot/internal/storage"
)

// CategoryOutcome reports how AddCategory settled.
type CategoryOutcome int

const (
	CategoryCreated CategoryOutcome = iota
	CategoryRestored
	CategoryExists
)

// AddCategory creates a custom category in a group context. A matching
// soft-deleted category is restored instead of duplicated; a matching
// active one is reported as already existing. Admin-only.
func (s *Service) AddCategory(ctx context.Context, scope Scope, sender Identity, title string) (CategoryOutcome, error) {
	if err := s.requireGroupAdmin(ctx, scope, sender); err != nil {
		return 0, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, core.ErrEmptyTitle
	}

	var outcome CategoryOutcome
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		c, err := s.resolveContext(ctx, q, scope)
		if err != nil {
			return err
		}

		existing, err := q.AnyCategoryByTitle(ctx, c.ID, title)
		switch {
		case err == nil && existing.IsDeleted:
			outcome = CategoryRestored
			return q.SetCategoryDeleted(ctx, existing.ID, false)
		case err == nil:
			outcome = CategoryExists
			return nil
		case !errors.Is(err, core.ErrCategoryNotFound):
			return err
		}

		created, err := q.InsertCategory(ctx, c.ID, title, false)
		if err != nil {
			return err
		}
		if !created {
			// Lost a race against a concurrent add of the same title.
			outcome = CategoryExists
			return nil
		}
		outcome = CategoryCreated
		return nil
	})
	return outcome, err
}

// RemoveCategory soft-deletes an active category in a group context.
// The row and its historical transactions stay. Admin-only.
func (s *Service) RemoveCategory(ctx context.Context, scope Scope, sender Identity, title string) error {
	if err := s.requireGroupAdmin(ctx, scope, sender); err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return core.ErrEmptyTitle
	}

	return s.store.WithTx(ctx, func(q *storage.Queries) error {
		c, err := s.resolveContext(ctx, q, scope)
		if err != nil {
			return err
		}
		cat, err := q.ActiveCategoryByTitle(ctx, c.ID, title)
		if err != nil {
			return err
		}
		return q.SetCategoryDeleted(ctx, cat.ID, true)
	})
}

// ListCategories returns the context's active category titles,
// lexicographically ordered.
func (s *Service) ListCategories(ctx context.Context, scope Scope) ([]string, error) {
	var titles []string
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		c, err := s.resolveContext(ctx, q, scope)
		if err != nil {
			return err
		}
		titles, err = q.ListActiveCategories(ctx, c.ID)
		return err
	})
	return titles, err
}

// ClearContext hard-deletes everything a context owns and then the context
// itself, in dependency order, atomically. Admin-only.
func (s *Service) ClearContext(ctx context.Context, scope Scope, sender Identity) error {
	if err := s.requireGroupAdmin(ctx, scope, sender); err != nil {
		return err
	}
	return s.store.WithTx(ctx, func(q *storage.Queries) error {
		c, err := q.ContextByChat(ctx, scope.ChatID, scope.Kind)
		if err != nil {
			return err
		}
		if err := q.DeleteTransactionsByContext(ctx, core.Expense, c.ID); err != nil {
			return err
		}
		if err := q.DeleteTransactionsByContext(ctx, core.Income, c.ID); err != nil {
			return err
		}
		if err := q.DeleteCategoriesByContext(ctx, c.ID); err != nil {
			return err
		}
		return q.DeleteContext(ctx, c.ID)
	})
}
