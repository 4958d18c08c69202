package models

import "time"

// Message is a direct message between two users.
type Message struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	SenderID    uint       `gorm:"not null;index:idx_messages_pair,priority:1;uniqueIndex:idx_messages_sender_client,priority:1" json:"sender_id"`
	RecipientID uint       `gorm:"not null;index:idx_messages_pair,priority:2;index:idx_messages_unread,priority:1" json:"recipient_id"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	ClientID    *string    `gorm:"size:64;uniqueIndex:idx_messages_sender_client,priority:2" json:"client_id,omitempty"`
	IsRead      bool       `gorm:"not null;default:false;index:idx_messages_unread,priority:2" json:"is_read"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `gorm:"index:idx_messages_pair,priority:3" json:"created_at"`
}

// MaxMessageLength bounds Message.Content in runes.
const MaxMessageLength = 10000

// Involves reports whether userID sent or received m.
func (m *Message) Involves(userID uint) bool {
	return m.SenderID == userID || m.RecipientID == userID
}

// ConversationSummary is the derived per-counterparty view of a user's messages.
type ConversationSummary struct {
	Counterparty ProfileSummary `json:"counterparty"`
	LastMessage  *Message       `json:"last_message"`
	UnreadCount  int64          `json:"unread_count"`
}

// LastActivity returns the timestamp conversations sort by and whether one exists.
func (c *ConversationSummary) LastActivity() (time.Time, bool) {
	if c.LastMessage == nil {
		return time.Time{}, false
	}
	return c.LastMessage.CreatedAt, true
}
