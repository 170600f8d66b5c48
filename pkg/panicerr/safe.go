// Package panicerr turns panics into errors.
package panicerr

import (
	"context"

	"github.com/sourcegraph/conc/panics"
)

// Do runs fn and returns its error, or the recovered panic as an error.
func Do(fn func() error) error {
	var (
		catcher panics.Catcher
		err     error
	)
	catcher.Try(func() {
		err = fn()
	})
	if r := catcher.Recovered(); r != nil {
		return r.AsError()
	}
	return err
}

// SafeContext wraps fn for use with context-aware runners such as
// conc's ContextPool.
func SafeContext(fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		return Do(func() error { return fn(ctx) })
	}
}
