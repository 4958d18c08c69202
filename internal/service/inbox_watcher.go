package service

import (
	"context"
	"log/slog"
	"time"

	"rizq/internal/middleware"
	"rizq/internal/models"
	"rizq/internal/notifications"
)

// DefaultInboxDebounce coalesces bursts of message changes into one recompute.
const DefaultInboxDebounce = 50 * time.Millisecond

// InboxSnapshot is the payload of an inbox user event.
type InboxSnapshot struct {
	Conversations []models.ConversationSummary `json:"conversations"`
	UnreadCount   int64                        `json:"unread_count"`
}

// InboxWatcher recomputes a user's conversation list and unread badge
// whenever a message they sent or received is inserted or updated.
type InboxWatcher struct {
	feed          notifications.Feed
	conversations *ConversationService
	debounce      time.Duration
}

// NewInboxWatcher returns a watcher. A non-positive debounce selects the default.
func NewInboxWatcher(feed notifications.Feed, conversations *ConversationService, debounce time.Duration) *InboxWatcher {
	if debounce <= 0 {
		debounce = DefaultInboxDebounce
	}
	return &InboxWatcher{feed: feed, conversations: conversations, debounce: debounce}
}

// Snapshot computes the current inbox of userID.
func (w *InboxWatcher) Snapshot(ctx context.Context, userID uint) (*InboxSnapshot, error) {
	convs, err := w.conversations.ListConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	unread, err := w.conversations.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &InboxSnapshot{Conversations: convs, UnreadCount: unread}, nil
}

// Watch pushes an initial snapshot and then one snapshot per burst of
// relevant changes until ctx ends or push fails. The feed subscription is
// opened on entry and closed on return.
func (w *InboxWatcher) Watch(ctx context.Context, userID uint, push func(*InboxSnapshot) error) error {
	sub, err := w.feed.Subscribe(ctx, notifications.Filter{
		Table:  notifications.TableMessages,
		Events: []notifications.EventType{notifications.EventInsert, notifications.EventUpdate},
		UserID: userID,
	})
	if err != nil {
		return err
	}
	defer func() { _ = sub.Close() }()

	refresh := func() error {
		snap, err := w.Snapshot(ctx, userID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			middleware.Logger.WarnContext(ctx, "inbox recompute failed",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()),
			)
			return nil
		}
		return push(snap)
	}

	if err := refresh(); err != nil {
		return err
	}

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-sub.Events():
			if !ok {
				return ctx.Err()
			}
			if pending == nil {
				timer = time.NewTimer(w.debounce)
				pending = timer.C
			}
		case <-pending:
			pending = nil
			timer = nil
			if err := refresh(); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}
