// Package dispatcher fans one composed payload out to push endpoints.
package dispatcher

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/yhkim-dev/newsroom-push/internal/notify"
)

// Dispatcher sends payloads to batches of subscribers concurrently.
// One semaphore caps in-flight sends across all batches, so callers may
// dispatch several batches at once without multiplying the bound.
type Dispatcher struct {
	pusher      notify.Pusher
	subscribers notify.SubscriberStore
	sem         chan struct{}
	logger      *zap.Logger
}

// New creates a Dispatcher. A nil pusher means signing credentials were
// missing at startup; batches then fail fast without network attempts.
func New(pusher notify.Pusher, subscribers notify.SubscriberStore, concurrency int, logger *zap.Logger) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		pusher:      pusher,
		subscribers: subscribers,
		sem:         make(chan struct{}, concurrency),
		logger:      logger,
	}
}

// SendBatch delivers the payload to every target concurrently. Each
// target is attempted and reported independently: one failure never
// suppresses another target's attempt or its outcome. Outcomes are
// returned in target order.
func (d *Dispatcher) SendBatch(ctx context.Context, targets []notify.Target, payload notify.Payload) []notify.DeliveryOutcome {
	if len(targets) == 0 {
		return nil
	}

	if d.pusher == nil {
		outcomes := make([]notify.DeliveryOutcome, len(targets))
		for i, t := range targets {
			outcomes[i] = notify.DeliveryOutcome{
				DeviceID: t.DeviceID,
				Reason:   notify.ReasonConfig,
				Error:    "push credentials not configured",
			}
			notify.TotalFailed.WithLabelValues(string(notify.ReasonConfig)).Inc()
		}
		return outcomes
	}

	body, err := json.Marshal(payload)
	if err != nil {
		outcomes := make([]notify.DeliveryOutcome, len(targets))
		for i, t := range targets {
			outcomes[i] = notify.DeliveryOutcome{
				DeviceID: t.DeviceID,
				Reason:   notify.ReasonSendFailed,
				Error:    "marshal payload: " + err.Error(),
			}
		}
		return outcomes
	}

	outcomes := make([]notify.DeliveryOutcome, len(targets))
	var wg sync.WaitGroup

	for i, target := range targets {
		wg.Add(1)
		go func(idx int, t notify.Target) {
			defer wg.Done()
			d.sem <- struct{}{}
			defer func() { <-d.sem }()
			outcomes[idx] = d.sendOne(ctx, t, body)
		}(i, target)
	}
	wg.Wait()
	return outcomes
}

func (d *Dispatcher) sendOne(ctx context.Context, target notify.Target, body []byte) notify.DeliveryOutcome {
	status, err := d.pusher.Send(ctx, target.Subscription, body)
	if err != nil {
		d.logger.Warn("push send failed",
			zap.String("device_id", target.DeviceID),
			zap.Error(err),
		)
		notify.TotalFailed.WithLabelValues(string(notify.ReasonSendFailed)).Inc()
		return notify.DeliveryOutcome{
			DeviceID: target.DeviceID,
			Reason:   notify.ReasonSendFailed,
			Error:    err.Error(),
		}
	}

	switch {
	case status >= 200 && status < 300:
		return notify.DeliveryOutcome{DeviceID: target.DeviceID, Success: true, StatusCode: status}
	case status == http.StatusGone:
		d.cleanupExpired(ctx, target.DeviceID)
		notify.TotalFailed.WithLabelValues(string(notify.ReasonGone)).Inc()
		return notify.DeliveryOutcome{
			DeviceID:   target.DeviceID,
			Reason:     notify.ReasonGone,
			StatusCode: status,
			Error:      "subscription gone",
		}
	case status == http.StatusNotFound:
		d.logger.Warn("push endpoint not found", zap.String("device_id", target.DeviceID))
		notify.TotalFailed.WithLabelValues(string(notify.ReasonNotFound)).Inc()
		return notify.DeliveryOutcome{
			DeviceID:   target.DeviceID,
			Reason:     notify.ReasonNotFound,
			StatusCode: status,
			Error:      "subscription not found",
		}
	default:
		notify.TotalFailed.WithLabelValues(string(notify.ReasonSendFailed)).Inc()
		return notify.DeliveryOutcome{
			DeviceID:   target.DeviceID,
			Reason:     notify.ReasonSendFailed,
			StatusCode: status,
			Error:      "unexpected push status",
		}
	}
}

// cleanupExpired nulls the endpoint for a device whose subscription the
// provider reports as permanently gone. Safe to race across devices and
// idempotent for one device: clearing an already-cleared row is a no-op.
func (d *Dispatcher) cleanupExpired(ctx context.Context, deviceID string) {
	if d.subscribers == nil {
		return
	}
	if err := d.subscribers.ClearEndpoint(ctx, deviceID); err != nil {
		d.logger.Error("clear expired subscription failed",
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
		return
	}
	notify.TotalExpired.Inc()
	d.logger.Info("expired subscription removed", zap.String("device_id", deviceID))
}

// Tally reduces a batch of outcomes to sent/failed counts.
func Tally(outcomes []notify.DeliveryOutcome) (sent, failed int) {
	for _, o := range outcomes {
		if o.Success {
			sent++
		} else {
			failed++
		}
	}
	return sent, failed
}
