package service

import (
	"context"
	"log/slog"

	"rizq/internal/middleware"
	"rizq/internal/notifications"
)

// UserNotifier delivers a user event to every session of one user.
type UserNotifier interface {
	NotifyUser(ctx context.Context, userID uint, ev notifications.UserEvent) error
}

// publisher emits change and user events after a write has committed.
// Delivery failures are logged; the write has already succeeded.
type publisher struct {
	feed  notifications.Feed
	users UserNotifier
}

func (p publisher) change(ctx context.Context, ev notifications.ChangeEvent) {
	if p.feed == nil {
		return
	}
	if err := p.feed.Publish(ctx, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "change event not published",
			slog.String("table", ev.Table),
			slog.String("event", string(ev.Type)),
			slog.Uint64("record_id", uint64(ev.RecordID)),
			slog.String("error", err.Error()),
		)
	}
}

func (p publisher) user(ctx context.Context, userID uint, eventType string, payload any) {
	if p.users == nil {
		return
	}
	err := p.users.NotifyUser(ctx, userID, notifications.UserEvent{Type: eventType, Payload: payload})
	if err != nil {
		middleware.Logger.WarnContext(ctx, "user event not delivered",
			slog.String("type", eventType),
			slog.Uint64("user_id", uint64(userID)),
			slog.String("error", err.Error()),
		)
	}
}
