package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"budgetbot/internal/core"
	"budgetbot/internal/storage"
)

// Receipt confirms a recorded transaction. Its (Kind, ID) pair keys the
// reversal affordance the transport attaches to the confirmation.
type Receipt struct {
	ID       int64
	Kind     core.Kind
	Amount   decimal.Decimal
	Category string
	At       time.Time
}

// RecordTransaction parses one raw message into a ledger entry and persists
// it. Input that is not an entry fails with ErrNotEntry and must be ignored
// by the caller; a well-shaped entry with an unknown category fails with
// ErrCategoryNotFound.
func (s *Service) RecordTransaction(ctx context.Context, scope Scope, sender Identity, text string) (Receipt, error) {
	entry, err := core.ParseEntry(text)
	if err != nil {
		return Receipt{}, err
	}

	var r Receipt
	err = s.store.WithTx(ctx, func(q *storage.Queries) error {
		user, err := q.GetOrCreateUser(ctx, sender.TelegramID, sender.Username, sender.FirstName)
		if err != nil {
			return err
		}
		c, err := s.resolveContext(ctx, q, scope)
		if err != nil {
			return err
		}
		cat, err := q.ActiveCategoryByTitle(ctx, c.ID, entry.CategoryTitle)
		if err != nil {
			return err
		}

		now := s.now()
		id, err := q.InsertTransaction(ctx, entry.Kind, core.Transaction{
			UserID:     user.ID,
			ContextID:  c.ID,
			CategoryID: cat.ID,
			Amount:     entry.Amount,
			CreatedAt:  now,
		})
		if err != nil {
			return err
		}
		r = Receipt{ID: id, Kind: entry.Kind, Amount: entry.Amount, Category: cat.Title, At: now}
		return nil
	})
	return r, err
}

// ReverseTransaction hard-deletes a recorded transaction. Only the author
// may reverse; a missing row (never existed or already reversed) fails
// with ErrTransactionNotFound.
func (s *Service) ReverseTransaction(ctx context.Context, kind core.Kind, id int64, sender Identity) error {
	return s.store.WithTx(ctx, func(q *storage.Queries) error {
		t, err := q.TransactionByID(ctx, kind, id)
		if err != nil {
			return err
		}
		user, err := q.UserByTelegramID(ctx, sender.TelegramID)
		if errors.Is(err, core.ErrUserNotFound) {
			return core.ErrNotAuthor
		}
		if err != nil {
			return err
		}
		if user.ID != t.UserID {
			return core.ErrNotAuthor
		}
		return q.DeleteTransaction(ctx, kind, id)
	})
}
