package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"rizq/internal/middleware"
	"rizq/internal/observability"

	"github.com/redis/go-redis/v9"
)

// ChangeChannel derives the Redis channel carrying change events for table.
func ChangeChannel(table string) string {
	return "changes:" + table
}

// RedisFeed carries change events over Redis pub/sub so every API instance
// sees writes made by the others.
type RedisFeed struct {
	rdb *redis.Client
}

// NewRedisFeed creates a feed on the given Redis client.
func NewRedisFeed(rdb *redis.Client) *RedisFeed {
	return &RedisFeed{rdb: rdb}
}

// Publish sends ev on the table's change channel.
func (f *RedisFeed) Publish(ctx context.Context, ev ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	if err := f.rdb.Publish(ctx, ChangeChannel(ev.Table), payload).Err(); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}
	observability.FeedEvents.WithLabelValues(ev.Table, string(ev.Type), "published").Inc()
	return nil
}

// Subscribe opens a Redis subscription on the table's change channel. The
// subscription is confirmed before Subscribe returns and ends when ctx is
// cancelled or the handle is closed.
func (f *RedisFeed) Subscribe(ctx context.Context, filter Filter) (*Subscription, error) {
	ps := f.rdb.Subscribe(ctx, ChangeChannel(filter.Table))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", ChangeChannel(filter.Table), err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	sub := newSubscription(filter, func() {
		cancel()
		_ = ps.Close()
		<-done
	})

	go func() {
		defer close(done)
		defer close(sub.events)
		defer func() {
			if r := recover(); r != nil {
				middleware.Logger.Error("panic in change feed subscriber",
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()

		ch := ps.Channel()
		for {
			select {
			case <-runCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					middleware.Logger.Warn("discarding malformed change event",
						slog.String("channel", msg.Channel),
						slog.String("error", err.Error()),
					)
					continue
				}
				if filter.Matches(ev) {
					sub.deliver(ev)
				}
			}
		}
	}()

	return sub, nil
}
