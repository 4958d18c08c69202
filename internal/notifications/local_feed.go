package notifications

import (
	"context"
	"sync"

	"rizq/internal/observability"
)

// LocalFeed fans change events out to in-process subscribers. It backs the
// service when Redis is not configured.
type LocalFeed struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// NewLocalFeed creates an empty in-process feed.
func NewLocalFeed() *LocalFeed {
	return &LocalFeed{subs: make(map[*Subscription]struct{})}
}

// Publish delivers ev to every matching subscriber. Full subscribers miss the event.
func (f *LocalFeed) Publish(_ context.Context, ev ChangeEvent) error {
	observability.FeedEvents.WithLabelValues(ev.Table, string(ev.Type), "published").Inc()

	f.mu.RLock()
	defer f.mu.RUnlock()
	for sub := range f.subs {
		if sub.filter.Matches(ev) {
			sub.deliver(ev)
		}
	}
	return nil
}

// Subscribe registers a subscriber for events matching filter.
func (f *LocalFeed) Subscribe(ctx context.Context, filter Filter) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sub *Subscription
	sub = newSubscription(filter, func() {
		f.mu.Lock()
		delete(f.subs, sub)
		close(sub.events)
		f.mu.Unlock()
	})

	f.mu.Lock()
	f.subs[sub] = struct{}{}
	f.mu.Unlock()
	return sub, nil
}

// Len returns the number of open subscriptions.
func (f *LocalFeed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
