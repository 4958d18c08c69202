// Package validation checks user-supplied marketplace input.
package validation

import (
	"errors"
	"strings"
	"unicode/utf8"

	"rizq/internal/models"

	"github.com/google/uuid"
)

var (
	ErrEmptyMessage    = errors.New("Message content cannot be empty")
	ErrMessageTooLong  = errors.New("Message content is too long")
	ErrInvalidEncoding = errors.New("Message content must be valid UTF-8")
	ErrInvalidClientID = errors.New("client_id must be a UUID")
	ErrEmptyPitch      = errors.New("A message is required")
)

// MessageContent trims content and enforces the length bounds of a message.
func MessageContent(content string) (string, error) {
	if !utf8.ValidString(content) {
		return "", ErrInvalidEncoding
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > models.MaxMessageLength {
		return "", ErrMessageTooLong
	}
	return content, nil
}

// DealPitch validates the message attached to a deal proposal.
func DealPitch(message string) (string, error) {
	message, err := MessageContent(message)
	if errors.Is(err, ErrEmptyMessage) {
		return "", ErrEmptyPitch
	}
	return message, err
}

// ClientID accepts an empty id or a canonical UUID.
func ClientID(id string) error {
	if id == "" {
		return nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidClientID
	}
	return nil
}
