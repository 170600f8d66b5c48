package pushnotification

import (
	"context"
	"errors"

	"github.com/kazz187/leavepush/internal/pushsubscription"
)

// ErrGone is returned by a Transport when the push service reports that the
// subscription will never accept messages again.
var ErrGone = errors.New("push subscription gone")

type Transport interface {
	Send(ctx context.Context, sub *pushsubscription.Subscription, payload []byte) error
}

type TransportFunc func(ctx context.Context, sub *pushsubscription.Subscription, payload []byte) error

func (f TransportFunc) Send(ctx context.Context, sub *pushsubscription.Subscription, payload []byte) error {
	return f(ctx, sub, payload)
}
