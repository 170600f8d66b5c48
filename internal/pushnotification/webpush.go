package pushnotification

import (
	"context"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/kazz187/leavepush/internal/config"
	"github.com/kazz187/leavepush/internal/pushsubscription"
)

type WebPushTransport struct {
	vapidEnv   *config.VAPIDEnv
	ttl        int
	httpClient webpush.HTTPClient
}

type WebPushOption func(*WebPushTransport)

// WithHTTPClient overrides the client used to reach push services.
func WithHTTPClient(c webpush.HTTPClient) WebPushOption {
	return func(t *WebPushTransport) {
		t.httpClient = c
	}
}

func NewWebPushTransport(vapidEnv *config.VAPIDEnv, ttl int, opts ...WebPushOption) *WebPushTransport {
	t := &WebPushTransport{
		vapidEnv: vapidEnv,
		ttl:      ttl,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *WebPushTransport) Send(ctx context.Context, sub *pushsubscription.Subscription, payload []byte) error {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys[pushsubscription.KeyP256dh],
			Auth:   sub.Keys[pushsubscription.KeyAuth],
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, wpSub, &webpush.Options{
		HTTPClient:      t.httpClient,
		Subscriber:      t.vapidEnv.VAPIDSubject,
		VAPIDPublicKey:  t.vapidEnv.VAPIDPublicKey,
		VAPIDPrivateKey: t.vapidEnv.VAPIDPrivateKey,
		TTL:             t.ttl,
	})
	if err != nil {
		return fmt.Errorf("send web push: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return ErrGone
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service responded %d", resp.StatusCode)
	}
	return nil
}
