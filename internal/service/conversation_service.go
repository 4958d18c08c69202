package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"rizq/internal/models"
	"rizq/internal/notifications"
	"rizq/internal/observability"
	"rizq/internal/repository"
	"rizq/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// DefaultFanoutLimit bounds concurrent per-counterparty lookups.
const DefaultFanoutLimit = 8

// ConversationService derives per-counterparty conversations from the message
// table and tracks read state.
type ConversationService struct {
	messages repository.MessageRepository
	profiles *ProfileDirectory
	events   publisher
	fanout   int
	retry    RetryPolicy
	now      func() time.Time
}

// ConversationOptions tunes a ConversationService. Zero values select defaults.
type ConversationOptions struct {
	FanoutLimit int
	Retry       RetryPolicy
	Feed        notifications.Feed
	Users       UserNotifier
}

// SendMessageInput is the input for sending a message.
type SendMessageInput struct {
	SenderID    uint
	RecipientID uint
	Content     string
	// ClientID is the caller's temporary id. A resend with the same id returns
	// the message already stored.
	ClientID string
}

// NewConversationService returns a new ConversationService.
func NewConversationService(
	messages repository.MessageRepository,
	profiles *ProfileDirectory,
	opts ConversationOptions,
) *ConversationService {
	if opts.FanoutLimit <= 0 {
		opts.FanoutLimit = DefaultFanoutLimit
	}
	if opts.Retry.MaxTries == 0 {
		opts.Retry = DefaultRetryPolicy()
	}
	return &ConversationService{
		messages: messages,
		profiles: profiles,
		events:   publisher{feed: opts.Feed, users: opts.Users},
		fanout:   opts.FanoutLimit,
		retry:    opts.Retry,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListConversations returns one summary per counterparty userID has exchanged
// messages with, most recent first. Conversations without a resolvable last
// message sort last.
func (s *ConversationService) ListConversations(ctx context.Context, userID uint) (_ []models.ConversationSummary, err error) {
	ctx, span := observability.StartSpan(ctx, "ConversationService.ListConversations",
		attribute.Int64("user.id", int64(userID)))
	defer func() { observability.EndSpan(span, err) }()

	ids, err := retry(ctx, s.retry, "message.counterparties", func(ctx context.Context) ([]uint, error) {
		return s.messages.CounterpartyIDs(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	observability.ConversationFanoutSize.Observe(float64(len(ids)))
	span.SetAttributes(attribute.Int("conversation.fanout", len(ids)))

	out := make([]models.ConversationSummary, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanout)
	for i, counterpartyID := range ids {
		g.Go(func() error {
			summary, err := s.summarize(gctx, userID, counterpartyID)
			if err != nil {
				return err
			}
			out[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortConversations(out)
	return out, nil
}

// summarize resolves one conversation. A missing profile degrades to a
// placeholder; message lookups must succeed.
func (s *ConversationService) summarize(ctx context.Context, userID, counterpartyID uint) (models.ConversationSummary, error) {
	last, err := retry(ctx, s.retry, "message.last_between", func(ctx context.Context) (*models.Message, error) {
		return s.messages.LastBetween(ctx, userID, counterpartyID)
	})
	if err != nil {
		return models.ConversationSummary{}, err
	}
	unread, err := retry(ctx, s.retry, "message.count_unread_from", func(ctx context.Context) (int64, error) {
		return s.messages.CountUnreadFrom(ctx, counterpartyID, userID)
	})
	if err != nil {
		return models.ConversationSummary{}, err
	}
	return models.ConversationSummary{
		Counterparty: s.profiles.Resolve(ctx, counterpartyID),
		LastMessage:  last,
		UnreadCount:  unread,
	}, nil
}

func sortConversations(convs []models.ConversationSummary) {
	sort.SliceStable(convs, func(i, j int) bool {
		ti, okI := convs[i].LastActivity()
		tj, okJ := convs[j].LastActivity()
		switch {
		case okI && okJ && !ti.Equal(tj):
			return ti.After(tj)
		case okI != okJ:
			return okI
		}
		return convs[i].Counterparty.ID < convs[j].Counterparty.ID
	})
}

// SendMessage stores a new unread message from SenderID to RecipientID. The
// second result is false when ClientID matched an already stored message.
func (s *ConversationService) SendMessage(ctx context.Context, in SendMessageInput) (*models.Message, bool, error) {
	content, err := validation.MessageContent(in.Content)
	if err != nil {
		return nil, false, models.NewValidationError(err.Error())
	}
	if err := validation.ClientID(in.ClientID); err != nil {
		return nil, false, models.NewValidationError(err.Error())
	}

	var clientID *string
	if in.ClientID != "" {
		clientID = &in.ClientID
		existing, err := s.messages.FindByClientID(ctx, in.SenderID, in.ClientID)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}
	}

	if _, err := s.profiles.Lookup(ctx, in.RecipientID); err != nil {
		return nil, false, err
	}

	msg := &models.Message{
		SenderID:    in.SenderID,
		RecipientID: in.RecipientID,
		Content:     content,
		ClientID:    clientID,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		if !errors.Is(err, repository.ErrDuplicateClientID) {
			return nil, false, err
		}
		if clientID != nil {
			// A concurrent resend won the insert.
			existing, findErr := s.messages.FindByClientID(ctx, in.SenderID, in.ClientID)
			if findErr != nil {
				return nil, false, findErr
			}
			if existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, models.NewInternalError(err)
	}

	s.events.change(ctx, notifications.MessageEvent(notifications.EventInsert, msg))
	return msg, true, nil
}

// FetchThread returns every message between userID and counterpartyID, oldest
// first, and marks the ones userID received as read.
func (s *ConversationService) FetchThread(ctx context.Context, userID, counterpartyID uint) ([]models.Message, error) {
	if userID == counterpartyID {
		return nil, models.NewValidationError("Cannot open a conversation with yourself")
	}
	thread, err := retry(ctx, s.retry, "message.thread", func(ctx context.Context) ([]models.Message, error) {
		return s.messages.Thread(ctx, userID, counterpartyID)
	})
	if err != nil {
		return nil, err
	}

	// Only what the viewer was shown is marked; later arrivals stay unread.
	var lastUnread uint
	for i := range thread {
		if thread[i].RecipientID == userID && !thread[i].IsRead && thread[i].ID > lastUnread {
			lastUnread = thread[i].ID
		}
	}
	if lastUnread == 0 {
		return thread, nil
	}

	at := s.now()
	if _, err := s.markRead(ctx, counterpartyID, userID, lastUnread, at); err != nil {
		return nil, err
	}
	for i := range thread {
		if thread[i].RecipientID == userID && !thread[i].IsRead {
			thread[i].IsRead = true
			thread[i].ReadAt = &at
		}
	}
	return thread, nil
}

// MarkRead flags one message read. Only its recipient may do so; marking an
// already-read message is a no-op.
func (s *ConversationService) MarkRead(ctx context.Context, messageID, userID uint) error {
	msg, err := retry(ctx, s.retry, "message.get", func(ctx context.Context) (*models.Message, error) {
		return s.messages.GetByID(ctx, messageID)
	})
	if err != nil {
		return err
	}
	if msg.RecipientID != userID {
		return models.NewForbiddenError("Only the recipient can mark a message read")
	}

	at := s.now()
	marked, err := retry(ctx, s.retry, "message.mark_read", func(ctx context.Context) (int64, error) {
		return s.messages.MarkRead(ctx, messageID, userID, at)
	})
	if err != nil {
		return err
	}
	if marked > 0 {
		msg.IsRead = true
		msg.ReadAt = &at
		s.events.change(ctx, notifications.MessageEvent(notifications.EventUpdate, msg))
	}
	return nil
}

// MarkAllRead flags every unread message from senderID to recipientID and
// returns how many changed.
func (s *ConversationService) MarkAllRead(ctx context.Context, senderID, recipientID uint) (int64, error) {
	return s.markRead(ctx, senderID, recipientID, 0, s.now())
}

func (s *ConversationService) markRead(ctx context.Context, senderID, recipientID, upToID uint, at time.Time) (int64, error) {
	marked, err := retry(ctx, s.retry, "message.mark_all_read", func(ctx context.Context) (int64, error) {
		return s.messages.MarkAllRead(ctx, senderID, recipientID, upToID, at)
	})
	if err != nil {
		return 0, err
	}
	if marked > 0 {
		s.events.change(ctx, notifications.ChangeEvent{
			Table:   notifications.TableMessages,
			Type:    notifications.EventUpdate,
			UserIDs: []uint{senderID, recipientID},
			At:      at,
		})
	}
	return marked, nil
}

// UnreadCount counts every unread message addressed to userID.
func (s *ConversationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return retry(ctx, s.retry, "message.count_unread", func(ctx context.Context) (int64, error) {
		return s.messages.CountUnread(ctx, userID)
	})
}

// OpenConversationPayload is sent to a user's sessions asking them to show a conversation.
type OpenConversationPayload struct {
	Counterparty models.ProfileSummary `json:"counterparty"`
}

// RequestOpenConversation asks every session of userID to open the
// conversation with counterpartyID.
func (s *ConversationService) RequestOpenConversation(ctx context.Context, userID, counterpartyID uint) error {
	if userID == counterpartyID {
		return models.NewValidationError("Cannot open a conversation with yourself")
	}
	counterparty, err := s.profiles.Lookup(ctx, counterpartyID)
	if err != nil {
		return err
	}
	s.events.user(ctx, userID, notifications.EventOpenConversation, OpenConversationPayload{Counterparty: counterparty})
	return nil
}
