// Package memory provides in-memory store implementations for
// development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/yhkim-dev/newsroom-push/internal/notify"
)

// NewsStore keeps news rows in a map guarded by a mutex.
type NewsStore struct {
	mu    sync.RWMutex
	items map[int64]notify.NewsItem
}

// NewNewsStore constructs a NewsStore.
func NewNewsStore() *NewsStore {
	return &NewsStore{items: make(map[int64]notify.NewsItem)}
}

// Put inserts or replaces a news row.
func (s *NewsStore) Put(item notify.NewsItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
}

// UnsentSince returns unsent items published at or after the cutoff,
// newest first.
func (s *NewsStore) UnsentSince(_ context.Context, cutoff time.Time) ([]notify.NewsItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []notify.NewsItem
	for _, item := range s.items {
		if item.NotifiedAt != nil {
			continue
		}
		if item.PubDate.Before(cutoff) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PubDate.After(out[j].PubDate)
	})
	return out, nil
}

// MarkNotified stamps the sent-at field once; an already-stamped row is
// left untouched.
func (s *NewsStore) MarkNotified(_ context.Context, newsID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[newsID]
	if !ok {
		return errors.New("news item not found")
	}
	if item.NotifiedAt != nil {
		return nil
	}
	ts := at
	item.NotifiedAt = &ts
	s.items[newsID] = item
	return nil
}

// Get fetches one row by ID (test helper).
func (s *NewsStore) Get(newsID int64) (notify.NewsItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[newsID]
	return item, ok
}
