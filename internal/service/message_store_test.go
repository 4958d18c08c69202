package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"rizq/internal/models"
	"rizq/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hookedMessages overrides selected MessageRepository calls.
type hookedMessages struct {
	repository.MessageRepository
	create func(ctx context.Context, msg *models.Message) error
	thread func(ctx context.Context, userID, counterpartyID uint) ([]models.Message, error)
}

func (h *hookedMessages) Create(ctx context.Context, msg *models.Message) error {
	if h.create != nil {
		return h.create(ctx, msg)
	}
	return h.MessageRepository.Create(ctx, msg)
}

func (h *hookedMessages) Thread(ctx context.Context, userID, counterpartyID uint) ([]models.Message, error) {
	if h.thread != nil {
		return h.thread(ctx, userID, counterpartyID)
	}
	return h.MessageRepository.Thread(ctx, userID, counterpartyID)
}

func (e *testEnv) convsWith(messages repository.MessageRepository) *ConversationService {
	return NewConversationService(messages, e.profiles, ConversationOptions{
		Retry: NoRetry(),
		Feed:  e.feed,
		Users: e.users,
	})
}

func TestConversationService_SendMessage_UnresolvedClientIDConflict(t *testing.T) {
	env := newTestEnv(t, "")
	a := env.profile(t, "amira")
	b := env.profile(t, "bilal")

	// The unique index fires but the winning row cannot be found.
	messages := &hookedMessages{
		MessageRepository: repository.NewMessageRepository(env.db),
		create: func(context.Context, *models.Message) error {
			return fmt.Errorf("%w: %v", repository.ErrDuplicateClientID,
				errors.New("UNIQUE constraint failed: messages.sender_id, messages.client_id"))
		},
	}
	convs := env.convsWith(messages)

	msg, created, err := convs.SendMessage(context.Background(), SendMessageInput{
		SenderID: a, RecipientID: b, Content: "hello", ClientID: uuid.NewString(),
	})
	require.Error(t, err)
	assert.Nil(t, msg)
	assert.False(t, created)
	assert.True(t, models.IsCode(err, models.CodeInternal), "got %v", err)
	assert.Equal(t, 500, models.HTTPStatus(err))

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.NotContains(t, appErr.Message, "UNIQUE")
}

func TestConversationService_FetchThreadLeavesLateArrivalsUnread(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	a := env.profile(t, "amira")
	b := env.profile(t, "bilal")
	shown := env.message(t, a, b, "shown", time.Now().Add(-time.Minute))

	var late models.Message
	inner := repository.NewMessageRepository(env.db)
	messages := &hookedMessages{
		MessageRepository: inner,
		thread: func(ctx context.Context, userID, counterpartyID uint) ([]models.Message, error) {
			thread, err := inner.Thread(ctx, userID, counterpartyID)
			// A message lands after the thread was read.
			late = env.message(t, a, b, "late", time.Now())
			return thread, err
		},
	}

	thread, err := env.convsWith(messages).FetchThread(ctx, b, a)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, shown.ID, thread[0].ID)
	assert.True(t, thread[0].IsRead)

	var stored models.Message
	require.NoError(t, env.db.First(&stored, late.ID).Error)
	assert.False(t, stored.IsRead)
	require.NoError(t, env.db.First(&stored, shown.ID).Error)
	assert.True(t, stored.IsRead)

	unread, err := env.convs.UnreadCount(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}
