package panicerr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo(t *testing.T) {
	sentinel := errors.New("boom")

	assert.NoError(t, Do(func() error { return nil }))
	assert.ErrorIs(t, Do(func() error { return sentinel }), sentinel)

	err := Do(func() error { panic("transport exploded") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transport exploded")
}

func TestSafeContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := SafeContext(func(ctx context.Context) error { return ctx.Err() })(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	err = SafeContext(func(context.Context) error { panic("nope") })(ctx)
	assert.Error(t, err)
}
