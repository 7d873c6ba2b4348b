// Package telegram is the chat transport: it dispatches commands, free-text
// ledger entries, and inline-button callbacks into the ledger service and
// renders its results as replies. All domain policy lives in the service;
// this package only maps platform types and texts.
package telegram

import (
	"context"
	"time"

	tele "gopkg.in/telebot.v3"

	"budgetbot/internal/core"
	"budgetbot/internal/ledger"
	"budgetbot/internal/log"
)

// opTimeout bounds every store-backed operation triggered by one update.
const opTimeout = 10 * time.Second

// NewBot builds the long-polling bot client.
func NewBot(token string, pollTimeout time.Duration, logger *log.Logger) (*tele.Bot, error) {
	return tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: pollTimeout},
		OnError: func(err error, c tele.Context) {
			logger.Error("handler failed", "error", err)
		},
	})
}

// Admins answers the ledger's privilege checks from the chat platform's
// member roles. Lookup failures read as not privileged.
type Admins struct {
	Bot *tele.Bot
}

func (a Admins) IsPrivileged(_ context.Context, chatID, userID int64) (bool, error) {
	member, err := a.Bot.ChatMemberOf(&tele.Chat{ID: chatID}, &tele.User{ID: userID})
	if err != nil {
		return false, nil
	}
	return member.Role == tele.Administrator || member.Role == tele.Creator, nil
}

// scopeOf maps a platform chat to a ledger scope. Supergroups are groups:
// the ledger only distinguishes personal from shared contexts.
func scopeOf(chat *tele.Chat) ledger.Scope {
	kind := core.Group
	if chat.Type == tele.ChatPrivate {
		kind = core.Private
	}
	return ledger.Scope{ChatID: chat.ID, Kind: kind}
}

func identityOf(u *tele.User) ledger.Identity {
	return ledger.Identity{TelegramID: u.ID, Username: u.Username, FirstName: u.FirstName}
}
