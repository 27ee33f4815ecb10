package notify

import (
	"context"
	"errors"
	"time"
)

// ErrSubscriberNotFound is returned by stores when a device id has no row.
var ErrSubscriberNotFound = errors.New("subscriber not found")

// NewsStore reads and marks news rows.
type NewsStore interface {
	// UnsentSince returns items published at or after the cutoff whose
	// notification_sent_at is still null, newest first.
	UnsentSince(ctx context.Context, cutoff time.Time) ([]NewsItem, error)
	// MarkNotified stamps notification_sent_at for one item. Rows already
	// stamped are left untouched.
	MarkNotified(ctx context.Context, newsID int64, at time.Time) error
}

// SubscriberStore persists per-device notification preferences.
type SubscriberStore interface {
	Enabled(ctx context.Context) ([]Subscriber, error)
	Get(ctx context.Context, deviceID string) (Subscriber, error)
	Upsert(ctx context.Context, sub Subscriber) error
	// ClearEndpoint nulls a device's push subscription after the provider
	// reports it gone. Clearing an already-cleared device is a no-op.
	ClearEndpoint(ctx context.Context, deviceID string) error
	Delete(ctx context.Context, deviceID string) error
}

// Pusher delivers one encrypted payload to one push endpoint.
type Pusher interface {
	Send(ctx context.Context, sub PushSubscription, body []byte) (statusCode int, err error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
