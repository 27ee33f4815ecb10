// Package webpush implements notify.Pusher over the Web Push protocol
// with VAPID signing.
package webpush

import (
	"context"
	"fmt"
	"net/http"
	"time"

	wp "github.com/SherClockHolmes/webpush-go"

	"github.com/yhkim-dev/newsroom-push/internal/notify"
)

// Config holds the VAPID key pair and send options.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	// Subscriber is the contact URI (mailto: or https:) claimed in the
	// VAPID token, required by push providers.
	Subscriber string
	TTL        time.Duration
	Timeout    time.Duration
}

// Pusher sends encrypted payloads to subscriber endpoints.
type Pusher struct {
	cfg    Config
	client *http.Client
}

// New validates the VAPID credentials and builds a Pusher. Missing keys
// are a startup error so that delivery can fail fast instead of
// attempting unsigned network calls.
func New(cfg Config) (*Pusher, error) {
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		return nil, fmt.Errorf("vapid key pair is required")
	}
	if cfg.Subscriber == "" {
		return nil, fmt.Errorf("vapid subscriber contact is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Pusher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Send posts the encrypted body to one endpoint and returns the
// provider's status code. Transport failures return an error; HTTP-level
// rejections (410, 404, 5xx) are left to the caller to classify.
func (p *Pusher) Send(ctx context.Context, sub notify.PushSubscription, body []byte) (int, error) {
	resp, err := wp.SendNotificationWithContext(ctx, body, &wp.Subscription{
		Endpoint: sub.Endpoint,
		Keys: wp.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &wp.Options{
		HTTPClient:      p.client,
		Subscriber:      p.cfg.Subscriber,
		VAPIDPublicKey:  p.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: p.cfg.VAPIDPrivateKey,
		TTL:             int(p.cfg.TTL / time.Second),
	})
	if err != nil {
		return 0, fmt.Errorf("send web push: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return resp.StatusCode, nil
}
