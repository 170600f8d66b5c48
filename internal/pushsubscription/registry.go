package pushsubscription

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/kazz187/leavepush/internal/user"
	"github.com/kazz187/leavepush/pkg/cerr"
)

type Registry struct {
	repo  Repository
	users user.Repository
	now   func() time.Time
}

func NewRegistry(repo Repository, users user.Repository) *Registry {
	return &Registry{
		repo:  repo,
		users: users,
		now:   time.Now,
	}
}

// Subscribe stores the push channel for userID, replacing any previous one.
// Both timestamps are set to the current time on every call.
func (r *Registry) Subscribe(ctx context.Context, userID, endpoint string, keys map[string]string) (*Subscription, error) {
	userID = strings.TrimSpace(userID)
	endpoint = strings.TrimSpace(endpoint)
	if userID == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "userId is required", nil)
	}
	if endpoint == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "subscription.endpoint is required", nil)
	}

	now := r.now().UTC()
	sub := &Subscription{
		UserID:    userID,
		Endpoint:  endpoint,
		Keys:      keys,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.repo.Put(ctx, sub); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "push subscription saved", "user_id", userID)
	return sub, nil
}

// Unsubscribe removes the subscription for userID. A user without a
// subscription is not an error; removed is false in that case.
func (r *Registry) Unsubscribe(ctx context.Context, userID string) (removed bool, err error) {
	if strings.TrimSpace(userID) == "" {
		return false, cerr.NewError(cerr.InvalidArgument, "userId is required", nil)
	}
	removed, err = r.repo.Delete(ctx, userID)
	if err != nil {
		return false, err
	}
	if removed {
		slog.InfoContext(ctx, "push subscription removed", "user_id", userID)
	}
	return removed, nil
}

func (r *Registry) Get(ctx context.Context, userID string) (*Subscription, error) {
	return r.repo.Get(ctx, userID)
}

// ListEligibleRecipients returns the IDs of managers and HR staff, excluding
// excludeUserID (usually the requester).
func (r *Registry) ListEligibleRecipients(ctx context.Context, excludeUserID string) ([]string, error) {
	users, err := r.users.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		if u.ID == excludeUserID || !u.ReviewsLeave() {
			continue
		}
		ids = append(ids, u.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

type Stats struct {
	TotalSubscriptions int `json:"totalSubscriptions"`
	TotalUsers         int `json:"totalUsers"`
}

func (r *Registry) Stats(ctx context.Context) (Stats, error) {
	subs, err := r.repo.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	users, err := r.users.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{TotalSubscriptions: subs, TotalUsers: users}, nil
}
