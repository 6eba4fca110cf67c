package sync

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound signals that the remote calendar has no event under the
	// requested id. Inside the reconciler it is control flow, not a failure.
	ErrNotFound = errors.New("remote event not found")

	// ErrAuthExpired signals that the Google credential is no longer valid
	// and the run may only continue after reauthorization.
	ErrAuthExpired = errors.New("calendar credentials expired")
)

// RemoteEvent is an event as currently stored in the remote calendar.
type RemoteEvent struct {
	ID          string
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
	Status      string

	// Managed marks events created by this system. The reconciler never
	// touches events without the marker; the calendar is a shared resource.
	Managed bool

	// NaturalKey is the business identity stored on the event when it was
	// created, used by purge and dedupe passes.
	NaturalKey string

	Updated time.Time
}

// EventStore is the remote calendar boundary consumed by the reconciler.
type EventStore interface {
	Get(ctx context.Context, id string) (*RemoteEvent, error)
	Insert(ctx context.Context, event RemoteEvent) error
	Update(ctx context.Context, event RemoteEvent) error
	Delete(ctx context.Context, id string) error
	// ListFuture returns all events starting after now, managed or not.
	ListFuture(ctx context.Context) ([]RemoteEvent, error)
}
