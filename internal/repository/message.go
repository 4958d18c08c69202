package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rizq/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines the interface for direct message data operations
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	FindByClientID(ctx context.Context, senderID uint, clientID string) (*models.Message, error)
	CounterpartyIDs(ctx context.Context, userID uint) ([]uint, error)
	LastBetween(ctx context.Context, userID, counterpartyID uint) (*models.Message, error)
	CountUnreadFrom(ctx context.Context, senderID, recipientID uint) (int64, error)
	CountUnread(ctx context.Context, recipientID uint) (int64, error)
	Thread(ctx context.Context, userID, counterpartyID uint) ([]models.Message, error)
	MarkRead(ctx context.Context, id, recipientID uint, at time.Time) (int64, error)
	// MarkAllRead flags unread messages from senderID to recipientID. A non-zero
	// upToID leaves messages with a larger id untouched.
	MarkAllRead(ctx context.Context, senderID, recipientID, upToID uint, at time.Time) (int64, error)
}

type messageRepository struct {
	store
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB, opts ...Option) MessageRepository {
	return &messageRepository{store: newStore(db, opts)}
}

const pairClause = "(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)"

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	onUnique := func(err error) error { return fmt.Errorf("%w: %v", ErrDuplicateClientID, err) }
	return r.run(ctx, "message.create", onUnique, func(db *gorm.DB) error {
		return db.Create(msg).Error
	})
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	err := r.run(ctx, "message.get", nil, func(db *gorm.DB) error {
		if err := db.First(&msg, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Message", id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) FindByClientID(ctx context.Context, senderID uint, clientID string) (*models.Message, error) {
	var found []models.Message
	err := r.run(ctx, "message.find_by_client_id", nil, func(db *gorm.DB) error {
		return db.Where("sender_id = ? AND client_id = ?", senderID, clientID).Limit(1).Find(&found).Error
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// CounterpartyIDs returns every user userID has sent to or received from,
// excluding userID itself.
func (r *messageRepository) CounterpartyIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := r.run(ctx, "message.counterparties", nil, func(db *gorm.DB) error {
		return db.Raw(`
			SELECT recipient_id AS id FROM messages WHERE sender_id = ? AND recipient_id <> ?
			UNION
			SELECT sender_id AS id FROM messages WHERE recipient_id = ? AND sender_id <> ?`,
			userID, userID, userID, userID,
		).Scan(&ids).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *messageRepository) LastBetween(ctx context.Context, userID, counterpartyID uint) (*models.Message, error) {
	var found []models.Message
	err := r.run(ctx, "message.last_between", nil, func(db *gorm.DB) error {
		return db.Where(pairClause, userID, counterpartyID, counterpartyID, userID).
			Order("created_at DESC").
			Order("id DESC").
			Limit(1).
			Find(&found).Error
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (r *messageRepository) CountUnreadFrom(ctx context.Context, senderID, recipientID uint) (int64, error) {
	var count int64
	err := r.run(ctx, "message.count_unread_from", nil, func(db *gorm.DB) error {
		return db.Model(&models.Message{}).
			Where("sender_id = ? AND recipient_id = ? AND is_read = ?", senderID, recipientID, false).
			Count(&count).Error
	})
	return count, err
}

func (r *messageRepository) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.run(ctx, "message.count_unread", nil, func(db *gorm.DB) error {
		return db.Model(&models.Message{}).
			Where("recipient_id = ? AND is_read = ?", recipientID, false).
			Count(&count).Error
	})
	return count, err
}

func (r *messageRepository) Thread(ctx context.Context, userID, counterpartyID uint) ([]models.Message, error) {
	msgs := []models.Message{}
	err := r.run(ctx, "message.thread", nil, func(db *gorm.DB) error {
		return db.Where(pairClause, userID, counterpartyID, counterpartyID, userID).
			Order("created_at ASC").
			Order("id ASC").
			Find(&msgs).Error
	})
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkRead flags one message read if recipientID received it. Already-read
// messages are left untouched and report zero rows.
func (r *messageRepository) MarkRead(ctx context.Context, id, recipientID uint, at time.Time) (int64, error) {
	var affected int64
	err := r.run(ctx, "message.mark_read", nil, func(db *gorm.DB) error {
		res := db.Model(&models.Message{}).
			Where("id = ? AND recipient_id = ? AND is_read = ?", id, recipientID, false).
			Updates(map[string]interface{}{"is_read": true, "read_at": at})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (r *messageRepository) MarkAllRead(ctx context.Context, senderID, recipientID, upToID uint, at time.Time) (int64, error) {
	var affected int64
	err := r.run(ctx, "message.mark_all_read", nil, func(db *gorm.DB) error {
		q := db.Model(&models.Message{}).
			Where("sender_id = ? AND recipient_id = ? AND is_read = ?", senderID, recipientID, false)
		if upToID > 0 {
			q = q.Where("id <= ?", upToID)
		}
		res := q.Updates(map[string]interface{}{"is_read": true, "read_at": at})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}
