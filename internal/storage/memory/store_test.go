package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yhkim-dev/newsroom-push/internal/notify"
)

func TestNewsStore_UnsentSince(t *testing.T) {
	t.Parallel()

	store := NewNewsStore()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	sent := now.Add(-time.Minute)

	store.Put(notify.NewsItem{ID: 1, Title: "old", PubDate: now.Add(-time.Hour)})
	store.Put(notify.NewsItem{ID: 2, Title: "in window", PubDate: now.Add(-3 * time.Minute)})
	store.Put(notify.NewsItem{ID: 3, Title: "newest", PubDate: now.Add(-time.Minute)})
	store.Put(notify.NewsItem{ID: 4, Title: "already sent", PubDate: now.Add(-2 * time.Minute), NotifiedAt: &sent})

	items, err := store.UnsentSince(context.Background(), now.Add(-6*time.Minute))
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, int64(3), items[0].ID)
	require.Equal(t, int64(2), items[1].ID)
}

func TestNewsStore_MarkNotifiedIsOneShot(t *testing.T) {
	t.Parallel()

	store := NewNewsStore()
	now := time.Now().UTC()
	store.Put(notify.NewsItem{ID: 1, PubDate: now})

	require.NoError(t, store.MarkNotified(context.Background(), 1, now))
	first, _ := store.Get(1)
	require.NotNil(t, first.NotifiedAt)

	// A second mark keeps the original stamp.
	require.NoError(t, store.MarkNotified(context.Background(), 1, now.Add(time.Hour)))
	second, _ := store.Get(1)
	require.Equal(t, first.NotifiedAt, second.NotifiedAt)

	require.Error(t, store.MarkNotified(context.Background(), 99, now))
}

func TestSubscriberStore_EnabledFiltersAndSorts(t *testing.T) {
	t.Parallel()

	store := NewSubscriberStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, notify.Subscriber{DeviceID: "b", Enabled: true}))
	require.NoError(t, store.Upsert(ctx, notify.Subscriber{DeviceID: "a", Enabled: true}))
	require.NoError(t, store.Upsert(ctx, notify.Subscriber{DeviceID: "c", Enabled: false}))

	subs, err := store.Enabled(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	require.Equal(t, "a", subs[0].DeviceID)
	require.Equal(t, "b", subs[1].DeviceID)
}

func TestSubscriberStore_UpsertValidatesSchedule(t *testing.T) {
	t.Parallel()

	store := NewSubscriberStore()
	ctx := context.Background()

	err := store.Upsert(ctx, notify.Subscriber{
		DeviceID: "d",
		Schedule: notify.Schedule{Enabled: true, Start: "junk", End: "06:00"},
	})
	require.Error(t, err)

	require.Error(t, store.Upsert(ctx, notify.Subscriber{}))
}

func TestSubscriberStore_ClearEndpointIdempotent(t *testing.T) {
	t.Parallel()

	store := NewSubscriberStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, notify.Subscriber{
		DeviceID:     "d",
		Enabled:      true,
		Subscription: &notify.PushSubscription{Endpoint: "https://push.example/d"},
	}))

	require.NoError(t, store.ClearEndpoint(ctx, "d"))
	sub, err := store.Get(ctx, "d")
	require.NoError(t, err)
	require.Nil(t, sub.Subscription)

	require.NoError(t, store.ClearEndpoint(ctx, "d"))
	require.NoError(t, store.ClearEndpoint(ctx, "missing"))
}

func TestSubscriberStore_Delete(t *testing.T) {
	t.Parallel()

	store := NewSubscriberStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, notify.Subscriber{DeviceID: "d"}))
	require.NoError(t, store.Delete(ctx, "d"))
	_, err := store.Get(ctx, "d")
	require.ErrorIs(t, err, notify.ErrSubscriberNotFound)
	require.NoError(t, store.Delete(ctx, "d"))
}
