// Package notify is the boundary to the notification collaborator.
//
// The engine emits an Event after a lifecycle change has been committed.
// Formatting and delivery (digest or immediate email) happen elsewhere; this
// package only defines the signal and a logging implementation.
package notify

import (
	"context"
	"crypto/rand"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind names a lifecycle signal.
type Kind string

const (
	RequestCreated   Kind = "request.created"
	RequestClaimed   Kind = "request.claimed"
	RequestFulfilled Kind = "request.fulfilled"
	MemberJoined     Kind = "group.member_joined"
)

// Event is one signal for the notification collaborator.
type Event struct {
	// ID is a ULID, so events sort by emission time.
	ID        string
	Kind      Kind
	GroupID   string
	RequestID string
	// ActorID is the user whose action produced the event.
	ActorID    string
	Recipients []string
	OccurredAt time.Time
}

// Notifier receives lifecycle events.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewEvent stamps an event with a fresh ULID.
func NewEvent(kind Kind, at time.Time) Event {
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(at), entropy)
	entropyMu.Unlock()
	return Event{ID: id.String(), Kind: kind, OccurredAt: at}
}

// LogNotifier writes every event to the structured log.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs to logger (slog.Default if nil).
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, event Event) error {
	n.logger.InfoContext(ctx, "Notification signal",
		"event_id", event.ID,
		"kind", event.Kind,
		"group_id", event.GroupID,
		"request_id", event.RequestID,
		"actor_id", event.ActorID,
		"recipients", len(event.Recipients),
	)
	return nil
}

// Nop discards events.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

// Recorder keeps events in memory. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(_ context.Context, event Event) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Emit sends event and logs, rather than returns, a delivery failure: the
// change it describes is already committed.
func Emit(ctx context.Context, n Notifier, event Event) {
	if n == nil || len(event.Recipients) == 0 {
		return
	}
	if err := n.Notify(ctx, event); err != nil {
		slog.WarnContext(ctx, "Notification signal dropped",
			"kind", event.Kind,
			"event_id", event.ID,
			"error", err,
		)
	}
}
