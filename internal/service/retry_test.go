package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"rizq/internal/models"
	"rizq/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// messageRepoStub overrides the calls a test cares about; the embedded
// interface is nil and panics on anything else.
type messageRepoStub struct {
	repository.MessageRepository
	counterpartyIDsFn func(context.Context, uint) ([]uint, error)
	lastBetweenFn     func(context.Context, uint, uint) (*models.Message, error)
	countUnreadFromFn func(context.Context, uint, uint) (int64, error)
	countUnreadFn     func(context.Context, uint) (int64, error)
}

func (s *messageRepoStub) CounterpartyIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.counterpartyIDsFn(ctx, userID)
}
func (s *messageRepoStub) LastBetween(ctx context.Context, userID, counterpartyID uint) (*models.Message, error) {
	return s.lastBetweenFn(ctx, userID, counterpartyID)
}
func (s *messageRepoStub) CountUnreadFrom(ctx context.Context, senderID, recipientID uint) (int64, error) {
	return s.countUnreadFromFn(ctx, senderID, recipientID)
}
func (s *messageRepoStub) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	return s.countUnreadFn(ctx, recipientID)
}

type profileRepoStub struct {
	repository.ProfileRepository
	getByIDFn func(context.Context, uint) (*models.Profile, error)
}

func (s *profileRepoStub) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	return s.getByIDFn(ctx, id)
}

var errStoreDown = errors.New("connection reset")

func fastRetry() RetryPolicy {
	return RetryPolicy{MaxTries: 3, Initial: time.Millisecond}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	var calls atomic.Int32
	got, err := retry(context.Background(), fastRetry(), "test.op", func(context.Context) (int, error) {
		if calls.Add(1) < 3 {
			return 0, models.NewTransientError(errStoreDown)
		}
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetry_ExhaustedReturnsTransient(t *testing.T) {
	var calls atomic.Int32
	_, err := retry(context.Background(), fastRetry(), "test.op", func(context.Context) (int, error) {
		calls.Add(1)
		return 0, models.NewTransientError(errStoreDown)
	})
	assert.True(t, models.IsTransient(err), "got %v", err)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetry_PermanentErrorsAreNotRetried(t *testing.T) {
	for _, perm := range []error{
		models.NewValidationError("bad"),
		models.NewForbiddenError("no"),
		models.NewNotFoundError("Deal", 1),
		models.NewInvalidTransitionError(models.DealStatusActive, models.DealStatusActive),
		errStoreDown,
	} {
		var calls atomic.Int32
		err := retryErr(context.Background(), fastRetry(), "test.op", func(context.Context) error {
			calls.Add(1)
			return perm
		})
		assert.Equal(t, perm, err)
		assert.Equal(t, int32(1), calls.Load(), "%v retried", perm)
	}
}

func TestRetry_CancelledContextIsTransient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	_, err := retry(ctx, RetryPolicy{MaxTries: 5, Initial: time.Hour}, "test.op", func(context.Context) (int, error) {
		calls.Add(1)
		cancel()
		return 0, models.NewTransientError(errStoreDown)
	})
	assert.True(t, models.IsTransient(err), "got %v", err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestConversationService_RetriesTransientReads(t *testing.T) {
	var failures atomic.Int32
	failures.Store(2)
	stub := &messageRepoStub{
		counterpartyIDsFn: func(context.Context, uint) ([]uint, error) {
			if failures.Add(-1) >= 0 {
				return nil, models.NewTransientError(errStoreDown)
			}
			return []uint{2}, nil
		},
		lastBetweenFn: func(_ context.Context, userID, other uint) (*models.Message, error) {
			return &models.Message{ID: 1, SenderID: other, RecipientID: userID, Content: "hey", CreatedAt: time.Now()}, nil
		},
		countUnreadFromFn: func(context.Context, uint, uint) (int64, error) { return 1, nil },
	}
	profiles := NewProfileDirectory(&profileRepoStub{getByIDFn: func(_ context.Context, id uint) (*models.Profile, error) {
		return &models.Profile{ID: id, Username: "sami"}, nil
	}}, nil, time.Minute, fastRetry())
	svc := NewConversationService(stub, profiles, ConversationOptions{Retry: fastRetry()})

	convs, err := svc.ListConversations(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "sami", convs[0].Counterparty.Username)
}

func TestConversationService_MessageLookupFailureFailsList(t *testing.T) {
	stub := &messageRepoStub{
		counterpartyIDsFn: func(context.Context, uint) ([]uint, error) { return []uint{2, 3, 4}, nil },
		lastBetweenFn: func(_ context.Context, _, other uint) (*models.Message, error) {
			if other == 3 {
				return nil, models.NewInternalError(errStoreDown)
			}
			return nil, nil
		},
		countUnreadFromFn: func(context.Context, uint, uint) (int64, error) { return 0, nil },
	}
	profiles := NewProfileDirectory(&profileRepoStub{getByIDFn: func(_ context.Context, id uint) (*models.Profile, error) {
		return nil, models.NewTransientError(errStoreDown)
	}}, nil, time.Minute, NoRetry())
	svc := NewConversationService(stub, profiles, ConversationOptions{Retry: NoRetry(), FanoutLimit: 1})

	_, err := svc.ListConversations(context.Background(), 1)
	assert.True(t, models.IsCode(err, models.CodeInternal), "got %v", err)
}

func TestConversationService_ProfileFailureDegrades(t *testing.T) {
	stub := &messageRepoStub{
		counterpartyIDsFn: func(context.Context, uint) ([]uint, error) { return []uint{2, 3}, nil },
		lastBetweenFn:     func(context.Context, uint, uint) (*models.Message, error) { return nil, nil },
		countUnreadFromFn: func(context.Context, uint, uint) (int64, error) { return 0, nil },
	}
	profiles := NewProfileDirectory(&profileRepoStub{getByIDFn: func(_ context.Context, id uint) (*models.Profile, error) {
		if id == 3 {
			return nil, models.NewTransientError(errStoreDown)
		}
		return &models.Profile{ID: id, Username: "dana"}, nil
	}}, nil, time.Minute, NoRetry())
	svc := NewConversationService(stub, profiles, ConversationOptions{Retry: NoRetry()})

	convs, err := svc.ListConversations(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, "dana", convs[0].Counterparty.Username)
	assert.Equal(t, models.UnknownProfile(3), convs[1].Counterparty)
}
