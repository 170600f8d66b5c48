package pushsubscription

import "context"

// Repository stores at most one subscription per user.
type Repository interface {
	Get(ctx context.Context, userID string) (*Subscription, error)
	// Put creates or replaces the subscription for s.UserID.
	Put(ctx context.Context, s *Subscription) error
	// Delete reports whether a subscription existed.
	Delete(ctx context.Context, userID string) (bool, error)
	// List returns all subscriptions keyed by user ID. Unlike Get it fails on
	// storage errors, since its result may be written back with ReplaceAll.
	List(ctx context.Context) (map[string]*Subscription, error)
	// ReplaceAll persists subs as the complete table.
	ReplaceAll(ctx context.Context, subs map[string]*Subscription) error
	Count(ctx context.Context) (int, error)
}
