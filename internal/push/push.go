// Package push delivers out-of-band notifications to users. Delivery is
// fire-and-forget: callers never fail because a push could not be sent.
package push

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	KindMatch    = "match"
	dispatchWait = 5 * time.Second
)

// Event is one notification addressed to a user.
type Event struct {
	ID      string         `json:"id"`
	UserID  uint64         `json:"userId"`
	Kind    string         `json:"kind"`
	Title   string         `json:"title"`
	Body    string         `json:"body"`
	Payload map[string]any `json:"payload,omitempty"`
	SentAt  time.Time      `json:"sentAt"`
}

// NewEvent stamps a fresh id and time on an event.
func NewEvent(userID uint64, kind, title, body string, payload map[string]any) Event {
	return Event{
		ID:      uuid.NewString(),
		UserID:  userID,
		Kind:    kind,
		Title:   title,
		Body:    body,
		Payload: payload,
		SentAt:  time.Now().UTC(),
	}
}

// Notifier delivers events to the realtime transport.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Nop drops every event. Used when no transport is configured.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

// Dispatcher runs notifications in the background with a bounded wait and
// logs failures instead of returning them.
type Dispatcher struct {
	notifier Notifier
	log      *slog.Logger
	wg       sync.WaitGroup
}

func NewDispatcher(n Notifier, log *slog.Logger) *Dispatcher {
	if n == nil {
		n = Nop{}
	}
	return &Dispatcher{notifier: n, log: log}
}

// Dispatch sends the events asynchronously. The request context is not
// reused: the push must outlive the request that triggered it.
func (d *Dispatcher) Dispatch(events ...Event) {
	for _, ev := range events {
		d.wg.Add(1)
		go func(ev Event) {
			defer d.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), dispatchWait)
			defer cancel()
			if err := d.notifier.Notify(ctx, ev); err != nil {
				d.log.Warn("push delivery failed", "event", ev.ID, "user", ev.UserID, "kind", ev.Kind, "err", err)
				return
			}
			d.log.Debug("push delivered", "event", ev.ID, "user", ev.UserID, "kind", ev.Kind)
		}(ev)
	}
}

// Wait blocks until every dispatched event finished. Used on shutdown and in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
