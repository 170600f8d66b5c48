package repositoryimpl

import (
	"context"

	"github.com/kazz187/leavepush/internal/pushsubscription"
	"github.com/kazz187/leavepush/internal/recordstore"
	"github.com/kazz187/leavepush/pkg/cerr"
	"github.com/kazz187/leavepush/pkg/storage"
)

const subscriptionsTable = "subscriptions"

// JSONRepository keeps all subscriptions in one JSON document keyed by user
// ID. Every mutation rewrites the whole document.
type JSONRepository struct {
	table *recordstore.Table[pushsubscription.Subscription]
}

var _ pushsubscription.Repository = (*JSONRepository)(nil)

func NewJSONRepository(s storage.Storage) *JSONRepository {
	return &JSONRepository{table: recordstore.NewTable[pushsubscription.Subscription](s, subscriptionsTable)}
}

func (r *JSONRepository) Get(ctx context.Context, userID string) (*pushsubscription.Subscription, error) {
	s, ok := r.table.Read(ctx)[userID]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, "push subscription not found", nil)
	}
	s.UserID = userID
	return &s, nil
}

func (r *JSONRepository) Put(ctx context.Context, s *pushsubscription.Subscription) error {
	rows, err := r.table.Load(ctx)
	if err != nil {
		return err
	}
	rows[s.UserID] = *s
	return r.table.Write(ctx, rows)
}

func (r *JSONRepository) Delete(ctx context.Context, userID string) (bool, error) {
	rows, err := r.table.Load(ctx)
	if err != nil {
		return false, err
	}
	if _, ok := rows[userID]; !ok {
		return false, nil
	}
	delete(rows, userID)
	if err := r.table.Write(ctx, rows); err != nil {
		return false, err
	}
	return true, nil
}

func (r *JSONRepository) List(ctx context.Context) (map[string]*pushsubscription.Subscription, error) {
	rows, err := r.table.Load(ctx)
	if err != nil {
		return nil, err
	}
	subs := make(map[string]*pushsubscription.Subscription, len(rows))
	for id, s := range rows {
		s.UserID = id
		subs[id] = &s
	}
	return subs, nil
}

func (r *JSONRepository) ReplaceAll(ctx context.Context, subs map[string]*pushsubscription.Subscription) error {
	rows := make(map[string]pushsubscription.Subscription, len(subs))
	for id, s := range subs {
		rows[id] = *s
	}
	return r.table.Write(ctx, rows)
}

func (r *JSONRepository) Count(ctx context.Context) (int, error) {
	return len(r.table.Read(ctx)), nil
}
