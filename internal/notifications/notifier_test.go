package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestNotifier_PublishUser(t *testing.T) {
	// Notifier with nil Redis should return nil error (fail-open/noop)
	n := NewNotifier(nil)
	assert.False(t, n.Enabled())
	err := n.PublishUser(context.Background(), 1, "test payload")
	assert.NoError(t, err)
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(string, string) {}))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		userID   uint
		expected string
	}{
		{1, "notifications:user:1"},
		{100, "notifications:user:100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, UserChannel(tt.userID))
		id, ok := parseUserChannel(tt.expected)
		assert.True(t, ok)
		assert.Equal(t, tt.userID, id)
	}

	for _, bad := range []string{"notifications:user:", "notifications:user:abc", "changes:messages", "notifications:user:0"} {
		_, ok := parseUserChannel(bad)
		assert.False(t, ok, bad)
	}
}

func TestUserEvent_Encode(t *testing.T) {
	raw, err := UserEvent{Type: EventOpenConversation, Payload: map[string]uint{"user_id": 4}}.Encode()
	require.NoError(t, err)

	var decoded struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, "open_conversation", decoded.Type)
	assert.JSONEq(t, `{"user_id":4}`, string(decoded.Payload))
}

func TestNotifier_PatternSubscriberDelivers(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan [2]string, 4)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(channel, payload string) {
		got <- [2]string{channel, payload}
	}))

	require.NoError(t, n.PublishUser(ctx, 42, `{"type":"inbox"}`))

	select {
	case msg := <-got:
		assert.Equal(t, "notifications:user:42", msg[0])
		assert.Equal(t, `{"type":"inbox"}`, msg[1])
	case <-time.After(testEventuallyTimeout):
		t.Fatal("user event not delivered")
	}
}

func TestNotifier_SubscriberRecoversFromPanic(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan string, 4)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(_, payload string) {
		calls <- payload
		if payload == "boom" {
			panic("handler failed")
		}
	}))

	require.NoError(t, n.PublishUser(ctx, 1, "boom"))
	require.NoError(t, n.PublishUser(ctx, 1, "after"))

	var seen []string
	assert.Eventually(t, func() bool {
		for {
			select {
			case p := <-calls:
				seen = append(seen, p)
			default:
				return len(seen) == 2
			}
		}
	}, testEventuallyTimeout, testPollInterval)
	assert.Equal(t, []string{"boom", "after"}, seen)
}
