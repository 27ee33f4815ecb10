package webpush

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	wp "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/require"

	"github.com/yhkim-dev/newsroom-push/internal/notify"
)

func testKeys(t *testing.T) (private, public string) {
	t.Helper()
	private, public, err := wp.GenerateVAPIDKeys()
	require.NoError(t, err)
	return private, public
}

func TestNew_RequiresKeys(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Subscriber: "mailto:ops@example.com"})
	require.Error(t, err)

	_, err = New(Config{VAPIDPublicKey: "pub", VAPIDPrivateKey: "priv"})
	require.Error(t, err)
}

func TestSend_ReturnsProviderStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NotEmpty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	private, public := testKeys(t)
	p, err := New(Config{
		VAPIDPublicKey:  public,
		VAPIDPrivateKey: private,
		Subscriber:      "mailto:ops@example.com",
		TTL:             time.Minute,
	})
	require.NoError(t, err)

	// Key material from a real browser subscription shape; the test
	// server never decrypts, it only reports a status.
	status, err := p.Send(context.Background(), notify.PushSubscription{
		Endpoint: srv.URL,
		P256dh:   "BNcRdreALRFXTkOOUHK1EtK2wtaz5Ry4YfYCA_0QTpQtUbVlUls0VJXg7A8u-Ts1XbjhazAkj7I99e8QcYP7DkM=",
		Auth:     "tBHItJI5svbpez7KI4CCXg==",
	}, []byte(`{"title":"t"}`))

	require.NoError(t, err)
	require.Equal(t, http.StatusGone, status)
}

func TestSend_TransportError(t *testing.T) {
	t.Parallel()

	private, public := testKeys(t)
	p, err := New(Config{
		VAPIDPublicKey:  public,
		VAPIDPrivateKey: private,
		Subscriber:      "mailto:ops@example.com",
		Timeout:         time.Second,
	})
	require.NoError(t, err)

	_, err = p.Send(context.Background(), notify.PushSubscription{
		Endpoint: "http://127.0.0.1:1/push",
		P256dh:   "BNcRdreALRFXTkOOUHK1EtK2wtaz5Ry4YfYCA_0QTpQtUbVlUls0VJXg7A8u-Ts1XbjhazAkj7I99e8QcYP7DkM=",
		Auth:     "tBHItJI5svbpez7KI4CCXg==",
	}, []byte(`{}`))

	require.Error(t, err)
}
