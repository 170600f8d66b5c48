// Package recordstore keeps small keyed tables as JSON documents on a
// storage.Storage.
//
// A table is read and written as a whole. There is no locking across a
// read-modify-write cycle: two writers that interleave lose one update, the
// last write wins.
package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kazz187/leavepush/pkg/cerr"
	"github.com/kazz187/leavepush/pkg/storage"
)

// Table is a JSON object mapping string keys to rows of type V.
type Table[V any] struct {
	store storage.Storage
	name  string
}

func NewTable[V any](s storage.Storage, name string) *Table[V] {
	return &Table[V]{store: s, name: name}
}

func (t *Table[V]) Name() string {
	return t.name
}

func (t *Table[V]) path() string {
	return t.name + ".json"
}

// Read returns the persisted rows. A missing, unreadable or corrupt document
// yields an empty table; the failure is logged and not returned.
func (t *Table[V]) Read(ctx context.Context) map[string]V {
	rows, err := t.Load(ctx)
	if err != nil {
		return map[string]V{}
	}
	return rows
}

// Load is Read for read-modify-write paths. Only a missing or corrupt
// document yields an empty table; any other storage failure is returned so
// the caller does not write back a table it never saw.
func (t *Table[V]) Load(ctx context.Context) (map[string]V, error) {
	data, err := t.store.Read(ctx, t.path())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return map[string]V{}, nil
		}
		slog.ErrorContext(ctx, "record store: failed to read table", "table", t.name, "error", err)
		return nil, cerr.WrapStorageReadError(t.name, err)
	}

	var rows map[string]V
	if err := json.Unmarshal(data, &rows); err != nil {
		slog.ErrorContext(ctx, "record store: failed to parse table, using empty table", "table", t.name, "error", err)
		return map[string]V{}, nil
	}
	if rows == nil {
		rows = map[string]V{}
	}
	return rows, nil
}

// Write replaces the persisted table with rows. Failures are logged and
// returned; nothing is retried.
func (t *Table[V]) Write(ctx context.Context, rows map[string]V) error {
	if rows == nil {
		rows = map[string]V{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal table %s: %w", t.name, err))
	}
	if err := t.store.Write(ctx, t.path(), data); err != nil {
		slog.ErrorContext(ctx, "record store: failed to write table", "table", t.name, "error", err)
		return cerr.WrapStorageWriteError(t.name, err)
	}
	return nil
}

// Exists reports whether the table document has ever been written.
func (t *Table[V]) Exists(ctx context.Context) (bool, error) {
	ok, err := t.store.Exists(ctx, t.path())
	if err != nil {
		return false, cerr.WrapStorageReadError(t.name, err)
	}
	return ok, nil
}
