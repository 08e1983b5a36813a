package alert

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/alarm-node/internal/logger"
)

// Channel delivers an alert to whoever watches the node.
type Channel interface {
	RaiseAlert(ctx context.Context, message string) error
}

// Event is an alert as it is delivered to remote watchers.
type Event struct {
	// ID is unique per raised alert.
	ID string `json:"id"`
	// Message is the localized alert text.
	Message string `json:"message"`
	// RaisedAt is when the alert was raised.
	RaisedAt time.Time `json:"raised_at"`
}

// NewEvent stamps a message with a fresh id and the current time.
func NewEvent(message string) Event {
	return Event{
		ID:       uuid.NewString(),
		Message:  message,
		RaisedAt: time.Now().UTC(),
	}
}

// Fanout raises the alert on every channel and joins their errors.
type Fanout []Channel

// RaiseAlert implements Channel.
func (f Fanout) RaiseAlert(ctx context.Context, message string) error {
	var errs []error

	for _, c := range f {
		if err := c.RaiseAlert(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Log writes alerts to the log.
type Log struct{}

// RaiseAlert implements Channel.
func (Log) RaiseAlert(ctx context.Context, message string) error {
	logger.WarnKV(ctx, "Alert raised", "alert", message)

	return nil
}

// Recorder keeps raised alerts in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

var _ Channel = (*Recorder)(nil)

// RaiseAlert implements Channel.
func (r *Recorder) RaiseAlert(_ context.Context, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, NewEvent(message))

	return nil
}

// Events returns a copy of the raised alerts.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Event(nil), r.events...)
}

// Count returns the number of raised alerts.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.events)
}
