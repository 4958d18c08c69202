package notifications

import (
	"context"
)

// Dispatcher delivers user events to a user's websocket sessions. With Redis
// the event goes through the Notifier so every instance's hub receives it;
// without Redis it is broadcast on the local hub directly.
type Dispatcher struct {
	notifier *Notifier
	hub      *Hub
}

// NewDispatcher creates a Dispatcher. Either argument may be nil.
func NewDispatcher(notifier *Notifier, hub *Hub) *Dispatcher {
	return &Dispatcher{notifier: notifier, hub: hub}
}

// NotifyUser encodes ev and delivers it to userID.
func (d *Dispatcher) NotifyUser(ctx context.Context, userID uint, ev UserEvent) error {
	payload, err := ev.Encode()
	if err != nil {
		return err
	}
	if d.notifier.Enabled() {
		return d.notifier.PublishUser(ctx, userID, payload)
	}
	if d.hub != nil {
		d.hub.Broadcast(userID, payload)
	}
	return nil
}
