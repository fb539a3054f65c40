package handlers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"lemon16/models"
	"lemon16/stats"
	"lemon16/store"
	"lemon16/websocket"
)

// Notifier delivers fire-and-forget messages to users affected by admin
// actions. The Telegram bot implements it.
type Notifier interface {
	SendText(userID int64, text string) error
}

// Deps wires the handler package. Set once at startup via Init.
type Deps struct {
	Users             store.Users
	Logs              store.Logs
	Notifier          Notifier
	Aggregator        *stats.Aggregator
	WSManager         *websocket.Manager
	JWTSecret         string
	AdminPasswordHash string
}

var deps Deps

func Init(d Deps) {
	deps = d
}

// refresh recomputes the snapshot and pushes it to every dashboard session.
// Called after each user-mutating admin action.
func refresh(ctx context.Context) {
	snap, err := deps.Aggregator.ComputeSnapshot(ctx)
	if err != nil {
		log.Error().Err(err).Msg("snapshot recompute failed")
		return
	}
	deps.WSManager.BroadcastUpdate(snap)
}

// logAction appends to the audit trail and pushes the entry to dashboard
// sessions immediately, independent of snapshot broadcasts.
func logAction(ctx context.Context, userID, action string) {
	entry := models.LogEntry{UserID: userID, Action: action, Timestamp: time.Now()}
	if err := deps.Logs.Append(ctx, entry); err != nil {
		log.Error().Err(err).Msg("log append failed")
	}
	deps.WSManager.BroadcastLog(entry)
}

// notify sends a message to a user and swallows delivery failures: admin
// actions never fail because Telegram was unreachable.
func notify(userID int64, text string) {
	if err := deps.Notifier.SendText(userID, text); err != nil {
		log.Error().Err(err).Int64("userId", userID).Msg("notification failed")
	}
}
