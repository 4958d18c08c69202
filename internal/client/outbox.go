package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"rizq/internal/models"
	"rizq/internal/validation"

	"github.com/google/uuid"
)

// ErrNotPending is returned when resolving a temporary id that was never
// staged or has already been confirmed or failed.
var ErrNotPending = errors.New("outbox: entry is not pending")

// EntryState is the lifecycle of one outbox entry.
type EntryState string

const (
	EntryPending   EntryState = "pending"
	EntryConfirmed EntryState = "confirmed"
)

// Entry is one locally displayed message. Message is set once confirmed.
type Entry struct {
	TempID      string
	RecipientID uint
	Content     string
	State       EntryState
	Message     *models.Message
}

// MessageSender is the transport an Outbox sends through.
type MessageSender interface {
	SendMessage(ctx context.Context, recipientID uint, content, clientID string) (*models.Message, bool, error)
}

// SendError carries the content of a rolled back send so it can be restored.
type SendError struct {
	Content string
	Err     error
}

func (e *SendError) Error() string { return fmt.Sprintf("send failed: %v", e.Err) }
func (e *SendError) Unwrap() error { return e.Err }

// Outbox holds messages shown before the server confirms them.
type Outbox struct {
	mu      sync.Mutex
	entries []*Entry
	byTemp  map[string]*Entry
}

// NewOutbox returns an empty outbox.
func NewOutbox() *Outbox {
	return &Outbox{byTemp: make(map[string]*Entry)}
}

// Stage appends a pending entry under a fresh temporary id.
func (o *Outbox) Stage(recipientID uint, content string) (string, error) {
	if _, err := validation.MessageContent(content); err != nil {
		return "", models.NewValidationError(err.Error())
	}
	e := &Entry{
		TempID:      uuid.NewString(),
		RecipientID: recipientID,
		Content:     content,
		State:       EntryPending,
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = append(o.entries, e)
	o.byTemp[e.TempID] = e
	return e.TempID, nil
}

// Confirm replaces the pending entry with the persisted message.
func (o *Outbox) Confirm(tempID string, msg *models.Message) error {
	if msg == nil {
		return errors.New("outbox: confirm without message")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.byTemp[tempID]
	if !ok || e.State != EntryPending {
		return ErrNotPending
	}
	e.State = EntryConfirmed
	e.Message = msg
	delete(o.byTemp, tempID)
	return nil
}

// Fail removes the pending entry and returns its content for retry.
func (o *Outbox) Fail(tempID string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.byTemp[tempID]
	if !ok || e.State != EntryPending {
		return "", ErrNotPending
	}
	delete(o.byTemp, tempID)
	for i, cur := range o.entries {
		if cur == e {
			o.entries = append(o.entries[:i], o.entries[i+1:]...)
			break
		}
	}
	return e.Content, nil
}

// Entries returns a copy of the outbox in staging order.
func (o *Outbox) Entries() []Entry {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Entry, len(o.entries))
	for i, e := range o.entries {
		out[i] = *e
	}
	return out
}

// Pending counts unresolved entries.
func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.byTemp)
}

// Send stages content, sends it with the temporary id as client id and
// resolves the entry. On failure the entry is rolled back and a *SendError
// returns the content.
func (o *Outbox) Send(ctx context.Context, sender MessageSender, recipientID uint, content string) (*models.Message, error) {
	tempID, err := o.Stage(recipientID, content)
	if err != nil {
		return nil, err
	}
	msg, _, err := sender.SendMessage(ctx, recipientID, content, tempID)
	if err != nil {
		restored, failErr := o.Fail(tempID)
		if failErr != nil {
			return nil, errors.Join(err, failErr)
		}
		return nil, &SendError{Content: restored, Err: err}
	}
	if err := o.Confirm(tempID, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
