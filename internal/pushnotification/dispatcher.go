package pushnotification

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/kazz187/leavepush/internal/pushsubscription"
	"github.com/kazz187/leavepush/pkg/cerr"
	"github.com/kazz187/leavepush/pkg/clog"
	"github.com/kazz187/leavepush/pkg/panicerr"
)

const defaultTimeout = 10 * time.Second

type Outcome string

const (
	OutcomeDelivered     Outcome = "delivered"
	OutcomeNotSubscribed Outcome = "not_subscribed"
	OutcomeGone          Outcome = "gone"
	OutcomeFailed        Outcome = "failed"
)

// Result summarises a fan-out.
type Result struct {
	Sent    int `json:"sent"`
	Removed int `json:"removed"`
}

type Dispatcher struct {
	repo      pushsubscription.Repository
	transport Transport
	timeout   time.Duration
	limiter   *rate.Limiter
	metrics   *Metrics
}

type Option func(*Dispatcher)

// WithTimeout bounds each delivery. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithRateLimit paces deliveries to perSecond. Zero disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(disp *Dispatcher) {
		if perSecond > 0 {
			disp.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(disp *Dispatcher) {
		disp.metrics = m
	}
}

func NewDispatcher(repo pushsubscription.Repository, transport Transport, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		repo:      repo,
		transport: transport,
		timeout:   defaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NotifyMany sends payload to every recipient that has a subscription.
// Recipients without one are skipped. Gone subscriptions are dropped and the
// table is written back once at the end. A failed delivery never stops the
// loop, and the caller going away does not cut the fan-out short.
func (d *Dispatcher) NotifyMany(ctx context.Context, recipientIDs []string, payload *Payload) (Result, error) {
	ctx = clog.ContextWithChildSlog(context.WithoutCancel(ctx))
	clog.AddAttribute(ctx, "dispatch_id", ulid.Make().String())

	data, err := json.Marshal(payload)
	if err != nil {
		return Result{}, cerr.NewError(cerr.Internal, "failed to encode notification", err)
	}

	subs, err := d.repo.List(ctx)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, id := range recipientIDs {
		sub, ok := subs[id]
		if !ok {
			continue
		}
		switch d.deliver(ctx, sub, data) {
		case OutcomeDelivered:
			res.Sent++
		case OutcomeGone:
			delete(subs, id)
			res.Removed++
		}
	}

	if res.Removed > 0 {
		// Best effort: a failed write leaves the gone entries for the next fan-out.
		if err := d.repo.ReplaceAll(ctx, subs); err != nil {
			slog.ErrorContext(ctx, "push: failed to persist pruned subscriptions", "error", err)
		}
	}
	slog.InfoContext(ctx, "push: fan-out finished",
		"recipients", len(recipientIDs), "sent", res.Sent, "removed", res.Removed)
	return res, nil
}

// NotifyOne sends payload to a single user. A gone subscription is removed
// before returning.
func (d *Dispatcher) NotifyOne(ctx context.Context, userID string, payload *Payload) (Outcome, error) {
	ctx = clog.ContextWithChildSlog(context.WithoutCancel(ctx))
	clog.AddAttribute(ctx, "dispatch_id", ulid.Make().String())

	data, err := json.Marshal(payload)
	if err != nil {
		return OutcomeFailed, cerr.NewError(cerr.Internal, "failed to encode notification", err)
	}

	sub, err := d.repo.Get(ctx, userID)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return OutcomeNotSubscribed, nil
		}
		return OutcomeFailed, err
	}

	outcome := d.deliver(ctx, sub, data)
	if outcome == OutcomeGone {
		if _, err := d.repo.Delete(ctx, userID); err != nil {
			slog.ErrorContext(ctx, "push: failed to remove gone subscription", "recipient_id", userID, "error", err)
		}
	}
	return outcome, nil
}

func (d *Dispatcher) deliver(ctx context.Context, sub *pushsubscription.Subscription, data []byte) Outcome {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			slog.WarnContext(ctx, "push: rate limiter wait failed", "recipient_id", sub.UserID, "error", err)
			d.metrics.observe(OutcomeFailed)
			return OutcomeFailed
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := panicerr.Do(func() error {
		return d.transport.Send(sendCtx, sub, data)
	})

	var outcome Outcome
	switch {
	case err == nil:
		outcome = OutcomeDelivered
		slog.DebugContext(ctx, "push: delivered", "recipient_id", sub.UserID)
	case errors.Is(err, ErrGone):
		outcome = OutcomeGone
		slog.InfoContext(ctx, "push: subscription gone, removing", "recipient_id", sub.UserID, "endpoint", sub.Endpoint)
	default:
		outcome = OutcomeFailed
		slog.WarnContext(ctx, "push: delivery failed", "recipient_id", sub.UserID, "endpoint", sub.Endpoint, "error", err)
	}
	d.metrics.observe(outcome)
	return outcome
}
