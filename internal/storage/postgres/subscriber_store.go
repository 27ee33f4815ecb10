package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/yhkim-dev/newsroom-push/internal/notify"
)

// errMalformedRow marks rows whose JSONB blobs fail to decode; Enabled
// drops such rows instead of failing the whole query.
var errMalformedRow = errors.New("malformed subscriber row")

// SubscriberStore persists rows in the user_notification_settings table.
// The preference blobs (subscription, categories, keywords, schedule)
// live in JSONB columns and are decoded into typed values at the read
// boundary; rows with malformed blobs are dropped there instead of
// leaking zero values into matching.
type SubscriberStore struct {
	pool   querier
	logger *zap.Logger
}

// NewSubscriberStore wraps an existing pool.
func NewSubscriberStore(pool *pgxpool.Pool, logger *zap.Logger) *SubscriberStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriberStore{pool: pool, logger: logger}
}

// NewSubscriberStoreWithPool constructs a store from any pool-like value
// (primarily for pgxmock in tests).
func NewSubscriberStoreWithPool(pool querier, logger *zap.Logger) (*SubscriberStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriberStore{pool: pool, logger: logger}, nil
}

const subscriberColumns = `device_id, push_subscription, enabled, categories, keywords, schedule, updated_at`

const enabledQuery = `
SELECT ` + subscriberColumns + `
FROM user_notification_settings
WHERE enabled = TRUE`

// Enabled returns every subscriber with the enabled flag set. Rows whose
// preference blobs fail validation are skipped and logged.
func (s *SubscriberStore) Enabled(ctx context.Context) ([]notify.Subscriber, error) {
	rows, err := s.pool.Query(ctx, enabledQuery)
	if err != nil {
		return nil, fmt.Errorf("query enabled subscribers: %w", err)
	}
	defer rows.Close()

	var subs []notify.Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			if errors.Is(err, errMalformedRow) {
				s.logger.Warn("dropping subscriber with malformed preferences", zap.Error(err))
				continue
			}
			return nil, err
		}
		if err := sub.Schedule.Validate(); err != nil {
			s.logger.Warn("dropping subscriber with malformed schedule",
				zap.String("device_id", sub.DeviceID),
				zap.Error(err),
			)
			continue
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriber rows: %w", err)
	}
	return subs, nil
}

const getSubscriberQuery = `
SELECT ` + subscriberColumns + `
FROM user_notification_settings
WHERE device_id = $1`

// Get fetches one subscriber by device id.
func (s *SubscriberStore) Get(ctx context.Context, deviceID string) (notify.Subscriber, error) {
	rows, err := s.pool.Query(ctx, getSubscriberQuery, deviceID)
	if err != nil {
		return notify.Subscriber{}, fmt.Errorf("query subscriber: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return notify.Subscriber{}, fmt.Errorf("query subscriber: %w", err)
		}
		return notify.Subscriber{}, notify.ErrSubscriberNotFound
	}
	return scanSubscriber(rows)
}

const upsertQuery = `
INSERT INTO user_notification_settings
	(device_id, push_subscription, enabled, categories, keywords, schedule, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (device_id) DO UPDATE SET
	push_subscription = EXCLUDED.push_subscription,
	enabled = EXCLUDED.enabled,
	categories = EXCLUDED.categories,
	keywords = EXCLUDED.keywords,
	schedule = EXCLUDED.schedule,
	updated_at = EXCLUDED.updated_at`

// Upsert inserts or replaces a subscriber keyed by device id. Enabled
// schedules must carry parseable bounds.
func (s *SubscriberStore) Upsert(ctx context.Context, sub notify.Subscriber) error {
	if sub.DeviceID == "" {
		return errors.New("device id is required")
	}
	if err := sub.Schedule.Validate(); err != nil {
		return err
	}

	var subscriptionJSON []byte
	if sub.Subscription != nil {
		var err error
		subscriptionJSON, err = json.Marshal(sub.Subscription)
		if err != nil {
			return fmt.Errorf("marshal push subscription: %w", err)
		}
	}
	categoriesJSON, err := json.Marshal(orEmptyMap(sub.Categories))
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}
	keywordsJSON, err := json.Marshal(orEmptySlice(sub.Keywords))
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}
	scheduleJSON, err := json.Marshal(sub.Schedule)
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}

	_, err = s.pool.Exec(ctx, upsertQuery,
		sub.DeviceID,
		subscriptionJSON,
		sub.Enabled,
		categoriesJSON,
		keywordsJSON,
		scheduleJSON,
		sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert subscriber: %w", err)
	}
	return nil
}

const clearEndpointQuery = `
UPDATE user_notification_settings
SET push_subscription = NULL
WHERE device_id = $1`

// ClearEndpoint nulls a device's push subscription after the provider
// reports the endpoint gone. Clearing a missing or already-cleared row
// is a no-op, which keeps concurrent cleanup idempotent.
func (s *SubscriberStore) ClearEndpoint(ctx context.Context, deviceID string) error {
	if _, err := s.pool.Exec(ctx, clearEndpointQuery, deviceID); err != nil {
		return fmt.Errorf("clear subscriber endpoint: %w", err)
	}
	return nil
}

const deleteQuery = `
DELETE FROM user_notification_settings
WHERE device_id = $1`

// Delete removes a device's row. Deleting a missing row is a no-op.
func (s *SubscriberStore) Delete(ctx context.Context, deviceID string) error {
	if _, err := s.pool.Exec(ctx, deleteQuery, deviceID); err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	return nil
}

// Close releases the underlying pool resources.
func (s *SubscriberStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func scanSubscriber(row pgx.Row) (notify.Subscriber, error) {
	var sub notify.Subscriber
	var subscriptionJSON, categoriesJSON, keywordsJSON, scheduleJSON []byte
	var updatedAt *time.Time

	if err := row.Scan(
		&sub.DeviceID,
		&subscriptionJSON,
		&sub.Enabled,
		&categoriesJSON,
		&keywordsJSON,
		&scheduleJSON,
		&updatedAt,
	); err != nil {
		return notify.Subscriber{}, fmt.Errorf("scan subscriber row: %w", err)
	}
	if updatedAt != nil {
		sub.UpdatedAt = *updatedAt
	}

	if len(subscriptionJSON) > 0 {
		var ps notify.PushSubscription
		if err := json.Unmarshal(subscriptionJSON, &ps); err != nil {
			return notify.Subscriber{}, fmt.Errorf("%w: push subscription for %s: %v", errMalformedRow, sub.DeviceID, err)
		}
		// A blob without an endpoint is as good as no subscription.
		if ps.Endpoint != "" {
			sub.Subscription = &ps
		}
	}
	if len(categoriesJSON) > 0 {
		if err := json.Unmarshal(categoriesJSON, &sub.Categories); err != nil {
			return notify.Subscriber{}, fmt.Errorf("%w: categories for %s: %v", errMalformedRow, sub.DeviceID, err)
		}
	}
	if len(keywordsJSON) > 0 {
		if err := json.Unmarshal(keywordsJSON, &sub.Keywords); err != nil {
			return notify.Subscriber{}, fmt.Errorf("%w: keywords for %s: %v", errMalformedRow, sub.DeviceID, err)
		}
	}
	if len(scheduleJSON) > 0 {
		if err := json.Unmarshal(scheduleJSON, &sub.Schedule); err != nil {
			return notify.Subscriber{}, fmt.Errorf("%w: schedule for %s: %v", errMalformedRow, sub.DeviceID, err)
		}
	}
	return sub, nil
}

func orEmptyMap(m map[string]bool) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	return m
}

func orEmptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
