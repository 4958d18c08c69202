package notifications

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"rizq/internal/models"
	"rizq/internal/observability"
)

// EventType is the kind of row change carried by a ChangeEvent.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
)

const (
	TableMessages = "messages"
	TableDeals    = "deals"
)

// subscriptionBuffer is the per-subscription event buffer. Events beyond it are dropped.
const subscriptionBuffer = 64

// ChangeEvent describes one inserted or updated row.
type ChangeEvent struct {
	Table    string          `json:"table"`
	Type     EventType       `json:"type"`
	RecordID uint            `json:"record_id"`
	UserIDs  []uint          `json:"user_ids"`
	Record   json.RawMessage `json:"record,omitempty"`
	At       time.Time       `json:"at"`
}

// MessageEvent builds a change event for a message row.
func MessageEvent(t EventType, msg *models.Message) ChangeEvent {
	record, _ := json.Marshal(msg)
	return ChangeEvent{
		Table:    TableMessages,
		Type:     t,
		RecordID: msg.ID,
		UserIDs:  []uint{msg.SenderID, msg.RecipientID},
		Record:   record,
		At:       time.Now().UTC(),
	}
}

// DealEvent builds a change event for a deal row.
func DealEvent(t EventType, deal *models.Deal) ChangeEvent {
	record, _ := json.Marshal(deal)
	return ChangeEvent{
		Table:    TableDeals,
		Type:     t,
		RecordID: deal.ID,
		UserIDs:  []uint{deal.InitiatorID, deal.RecipientID},
		Record:   record,
		At:       time.Now().UTC(),
	}
}

// Filter selects change events. Empty Events matches every event type and a
// zero UserID matches every row.
type Filter struct {
	Table  string
	Events []EventType
	UserID uint
}

// Matches reports whether ev passes the filter.
func (f Filter) Matches(ev ChangeEvent) bool {
	if f.Table != ev.Table {
		return false
	}
	if len(f.Events) > 0 && !slices.Contains(f.Events, ev.Type) {
		return false
	}
	if f.UserID != 0 && !slices.Contains(ev.UserIDs, f.UserID) {
		return false
	}
	return true
}

// Feed is a row change notification stream scoped by table, event type and user.
type Feed interface {
	Publish(ctx context.Context, ev ChangeEvent) error
	Subscribe(ctx context.Context, f Filter) (*Subscription, error)
}

// Subscription is the handle returned by Feed.Subscribe. Close releases
// exactly this handle and may be called more than once.
type Subscription struct {
	filter  Filter
	events  chan ChangeEvent
	release func()
	once    sync.Once
}

func newSubscription(f Filter, release func()) *Subscription {
	observability.FeedSubscriptions.Inc()
	return &Subscription{
		filter:  f,
		events:  make(chan ChangeEvent, subscriptionBuffer),
		release: release,
	}
}

// Events returns the channel of matching events. It is closed after Close.
func (s *Subscription) Events() <-chan ChangeEvent { return s.events }

// Filter returns the filter the subscription was opened with.
func (s *Subscription) Filter() Filter { return s.filter }

// Close unsubscribes. Calls after the first are no-ops.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		if s.release != nil {
			s.release()
		}
		observability.FeedSubscriptions.Dec()
	})
	return nil
}

// deliver hands ev to the subscriber without blocking the publisher.
func (s *Subscription) deliver(ev ChangeEvent) bool {
	select {
	case s.events <- ev:
		observability.FeedEvents.WithLabelValues(ev.Table, string(ev.Type), "delivered").Inc()
		return true
	default:
		observability.FeedEvents.WithLabelValues(ev.Table, string(ev.Type), "dropped").Inc()
		return false
	}
}
