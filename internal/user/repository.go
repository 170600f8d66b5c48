package user

import "context"

type Repository interface {
	Get(ctx context.Context, id string) (*User, error)
	// List returns all users ordered by ID.
	List(ctx context.Context) ([]*User, error)
	Count(ctx context.Context) (int, error)
	// Seed writes users when the table has never been created. It reports
	// whether anything was written.
	Seed(ctx context.Context, users []*User) (bool, error)
}
