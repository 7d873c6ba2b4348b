// Package ledger is the resolution and aggregation engine: it turns parsed
// input into persisted financial records scoped to (context, user, category)
// and answers statistics queries over time windows. It knows nothing about
// the chat transport; handlers call it with plain identities and text.
package ledger

import (
	"context"
	"fmt"
	"time"

	"budgetbot/internal/core"
	"budgetbot/internal/storage"
)

// PrivilegeChecker reports whether a sender may administer a chat. The
// transport implements it against the platform's member roles.
type PrivilegeChecker interface {
	IsPrivileged(ctx context.Context, chatID, userID int64) (bool, error)
}

// PrivilegeFunc adapts a function to PrivilegeChecker.
type PrivilegeFunc func(ctx context.Context, chatID, userID int64) (bool, error)

func (f PrivilegeFunc) IsPrivileged(ctx context.Context, chatID, userID int64) (bool, error) {
	return f(ctx, chatID, userID)
}

// Identity is the platform-provided sender identity.
type Identity struct {
	TelegramID int64
	Username   string
	FirstName  string
}

// Scope names the chat a request belongs to.
type Scope struct {
	ChatID int64
	Kind   core.ChatKind
}

// Service wires the store, the privilege checker, and an injected clock.
type Service struct {
	store *storage.Store
	perms PrivilegeChecker
	now   func() time.Time
}

// New builds a Service. A nil clock means time.Now in UTC.
func New(store *storage.Store, perms PrivilegeChecker, clock func() time.Time) *Service {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Service{store: store, perms: perms, now: clock}
}

// ResolveUser returns the stable user record for a platform identity,
// creating it on first contact. Profile fields are never refreshed.
func (s *Service) ResolveUser(ctx context.Context, id Identity) (core.User, error) {
	var u core.User
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		u, err = q.GetOrCreateUser(ctx, id.TelegramID, id.Username, id.FirstName)
		return err
	})
	return u, err
}

// ResolveContext returns the stable context record for a chat, creating it
// and seeding the default category set atomically on first touch.
func (s *Service) ResolveContext(ctx context.Context, scope Scope) (core.Context, error) {
	var c core.Context
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		c, err = s.resolveContext(ctx, q, scope)
		return err
	})
	return c, err
}

func (s *Service) resolveContext(ctx context.Context, q *storage.Queries, scope Scope) (core.Context, error) {
	c, created, err := q.GetOrCreateContext(ctx, scope.ChatID, scope.Kind)
	if err != nil {
		return core.Context{}, err
	}
	if created {
		for _, title := range core.DefaultCategories {
			if _, err := q.InsertCategory(ctx, c.ID, title, true); err != nil {
				return core.Context{}, fmt.Errorf("seed default category %q: %w", title, err)
			}
		}
	}
	return c, nil
}

// requireGroupAdmin gates category management and context clearing: group
// chats only, privileged members only.
func (s *Service) requireGroupAdmin(ctx context.Context, scope Scope, sender Identity) error {
	if scope.Kind != core.Group {
		return core.ErrNotGroup
	}
	ok, err := s.perms.IsPrivileged(ctx, scope.ChatID, sender.TelegramID)
	if err != nil {
		return fmt.Errorf("check privileges: %w", err)
	}
	if !ok {
		return core.ErrNotAdmin
	}
	return nil
}
