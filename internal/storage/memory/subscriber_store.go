package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/yhkim-dev/newsroom-push/internal/notify"
)

// SubscriberStore keeps subscriber rows in a map guarded by a mutex.
type SubscriberStore struct {
	mu   sync.RWMutex
	subs map[string]notify.Subscriber
}

// NewSubscriberStore constructs a SubscriberStore.
func NewSubscriberStore() *SubscriberStore {
	return &SubscriberStore{subs: make(map[string]notify.Subscriber)}
}

// Enabled returns all subscribers with the enabled flag set, ordered by
// device id for deterministic iteration.
func (s *SubscriberStore) Enabled(_ context.Context) ([]notify.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []notify.Subscriber
	for _, sub := range s.subs {
		if sub.Enabled {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out, nil
}

// Get fetches one subscriber by device id.
func (s *SubscriberStore) Get(_ context.Context, deviceID string) (notify.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[deviceID]
	if !ok {
		return notify.Subscriber{}, notify.ErrSubscriberNotFound
	}
	return sub, nil
}

// Upsert inserts or replaces a subscriber keyed by device id. Enabled
// schedules must carry parseable bounds.
func (s *SubscriberStore) Upsert(_ context.Context, sub notify.Subscriber) error {
	if sub.DeviceID == "" {
		return errors.New("device id is required")
	}
	if err := sub.Schedule.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.DeviceID] = sub
	return nil
}

// ClearEndpoint nulls a device's push subscription. Unknown or
// already-cleared devices are a no-op, keeping concurrent cleanup
// idempotent.
func (s *SubscriberStore) ClearEndpoint(_ context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[deviceID]
	if !ok {
		return nil
	}
	sub.Subscription = nil
	s.subs[deviceID] = sub
	return nil
}

// Delete removes a device's row. Deleting a missing row is a no-op.
func (s *SubscriberStore) Delete(_ context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, deviceID)
	return nil
}
