package repositoryimpl

import (
	"context"
	"log/slog"
	"sort"

	"github.com/kazz187/leavepush/internal/recordstore"
	"github.com/kazz187/leavepush/internal/user"
	"github.com/kazz187/leavepush/pkg/cerr"
	"github.com/kazz187/leavepush/pkg/storage"
)

const usersTable = "users"

type JSONRepository struct {
	table *recordstore.Table[user.User]
}

var _ user.Repository = (*JSONRepository)(nil)

func NewJSONRepository(s storage.Storage) *JSONRepository {
	return &JSONRepository{table: recordstore.NewTable[user.User](s, usersTable)}
}

func (r *JSONRepository) Get(ctx context.Context, id string) (*user.User, error) {
	u, ok := r.table.Read(ctx)[id]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, "user not found", nil)
	}
	u.ID = id
	return &u, nil
}

func (r *JSONRepository) List(ctx context.Context) ([]*user.User, error) {
	rows := r.table.Read(ctx)
	users := make([]*user.User, 0, len(rows))
	for id, u := range rows {
		u.ID = id
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *JSONRepository) Count(ctx context.Context) (int, error) {
	return len(r.table.Read(ctx)), nil
}

func (r *JSONRepository) Seed(ctx context.Context, users []*user.User) (bool, error) {
	exists, err := r.table.Exists(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	rows := make(map[string]user.User, len(users))
	for _, u := range users {
		rows[u.ID] = *u
	}
	if err := r.table.Write(ctx, rows); err != nil {
		return false, err
	}
	slog.InfoContext(ctx, "seeded users table", "count", len(rows))
	return true, nil
}
