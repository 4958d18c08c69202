package notifications

import (
	"context"
	"testing"
	"time"

	"rizq/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, sub *Subscription) ChangeEvent {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(testEventuallyTimeout):
		t.Fatal("no change event received")
	}
	return ChangeEvent{}
}

func assertNoEvent(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFilter_Matches(t *testing.T) {
	msg := &models.Message{ID: 9, SenderID: 1, RecipientID: 2, Content: "hi"}
	insert := MessageEvent(EventInsert, msg)
	update := MessageEvent(EventUpdate, msg)

	tests := []struct {
		name   string
		filter Filter
		ev     ChangeEvent
		want   bool
	}{
		{"table only", Filter{Table: TableMessages}, insert, true},
		{"other table", Filter{Table: TableDeals}, insert, false},
		{"event listed", Filter{Table: TableMessages, Events: []EventType{EventUpdate}}, update, true},
		{"event not listed", Filter{Table: TableMessages, Events: []EventType{EventUpdate}}, insert, false},
		{"sender matches", Filter{Table: TableMessages, UserID: 1}, insert, true},
		{"recipient matches", Filter{Table: TableMessages, UserID: 2}, insert, true},
		{"stranger", Filter{Table: TableMessages, UserID: 3}, insert, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.ev))
		})
	}

	deal := DealEvent(EventUpdate, &models.Deal{ID: 3, InitiatorID: 5, RecipientID: 6})
	assert.True(t, Filter{Table: TableDeals, UserID: 6}.Matches(deal))
	assert.Equal(t, uint(3), deal.RecordID)
	assert.Contains(t, string(deal.Record), `"initiator_id":5`)
}

func TestLocalFeed_DeliversMatchingEvents(t *testing.T) {
	feed := NewLocalFeed()
	ctx := context.Background()

	mine, err := feed.Subscribe(ctx, Filter{Table: TableMessages, UserID: 2})
	require.NoError(t, err)
	defer func() { _ = mine.Close() }()
	other, err := feed.Subscribe(ctx, Filter{Table: TableMessages, UserID: 7})
	require.NoError(t, err)
	defer func() { _ = other.Close() }()

	require.NoError(t, feed.Publish(ctx, MessageEvent(EventInsert, &models.Message{ID: 1, SenderID: 1, RecipientID: 2})))

	ev := recv(t, mine)
	assert.Equal(t, uint(1), ev.RecordID)
	assert.Equal(t, EventInsert, ev.Type)
	assertNoEvent(t, other)
}

func TestLocalFeed_CloseReleasesOnlyItsHandle(t *testing.T) {
	feed := NewLocalFeed()
	ctx := context.Background()
	filter := Filter{Table: TableMessages, UserID: 2}

	first, err := feed.Subscribe(ctx, filter)
	require.NoError(t, err)
	second, err := feed.Subscribe(ctx, filter)
	require.NoError(t, err)
	require.Equal(t, 2, feed.Len())

	require.NoError(t, first.Close())
	require.NoError(t, first.Close())
	assert.Equal(t, 1, feed.Len())

	_, open := <-first.Events()
	assert.False(t, open)

	require.NoError(t, feed.Publish(ctx, MessageEvent(EventUpdate, &models.Message{ID: 4, SenderID: 1, RecipientID: 2})))
	assert.Equal(t, uint(4), recv(t, second).RecordID)

	require.NoError(t, second.Close())
	assert.Equal(t, 0, feed.Len())
}

func TestLocalFeed_FullSubscriberDoesNotBlockPublisher(t *testing.T) {
	feed := NewLocalFeed()
	ctx := context.Background()
	sub, err := feed.Subscribe(ctx, Filter{Table: TableMessages})
	require.NoError(t, err)
	defer func() { _ = sub.Close() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriptionBuffer*2; i++ {
			_ = feed.Publish(ctx, MessageEvent(EventInsert, &models.Message{ID: uint(i + 1), SenderID: 1, RecipientID: 2}))
		}
	}()

	select {
	case <-done:
	case <-time.After(testEventuallyTimeout):
		t.Fatal("publisher blocked on a full subscriber")
	}
	assert.Len(t, sub.Events(), subscriptionBuffer)
}

func TestLocalFeed_SubscribeWithCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLocalFeed().Subscribe(ctx, Filter{Table: TableMessages})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedisFeed_RoundTrip(t *testing.T) {
	rdb := newTestRedis(t)
	feed := NewRedisFeed(rdb)
	ctx := context.Background()

	sub, err := feed.Subscribe(ctx, Filter{Table: TableMessages, Events: []EventType{EventInsert}, UserID: 2})
	require.NoError(t, err)

	require.NoError(t, feed.Publish(ctx, MessageEvent(EventUpdate, &models.Message{ID: 1, SenderID: 1, RecipientID: 2})))
	require.NoError(t, feed.Publish(ctx, MessageEvent(EventInsert, &models.Message{ID: 2, SenderID: 8, RecipientID: 9})))
	require.NoError(t, feed.Publish(ctx, MessageEvent(EventInsert, &models.Message{ID: 3, SenderID: 1, RecipientID: 2, Content: "hello"})))

	ev := recv(t, sub)
	assert.Equal(t, uint(3), ev.RecordID)
	assert.ElementsMatch(t, []uint{1, 2}, ev.UserIDs)
	assert.Contains(t, string(ev.Record), `"content":"hello"`)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
	_, open := <-sub.Events()
	assert.False(t, open)
}

func TestRedisFeed_ContextCancelEndsSubscription(t *testing.T) {
	rdb := newTestRedis(t)
	feed := NewRedisFeed(rdb)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := feed.Subscribe(ctx, Filter{Table: TableDeals})
	require.NoError(t, err)
	cancel()

	assert.Eventually(t, func() bool {
		select {
		case _, open := <-sub.Events():
			return !open
		default:
			return false
		}
	}, testEventuallyTimeout, testPollInterval)
	assert.NoError(t, sub.Close())
}

func TestChangeChannel(t *testing.T) {
	assert.Equal(t, "changes:messages", ChangeChannel(TableMessages))
	assert.Equal(t, "changes:deals", ChangeChannel(TableDeals))
}
