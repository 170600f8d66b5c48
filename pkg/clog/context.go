package clog

import (
	"context"
	"maps"
	"sync"
)

// ErrorAttributeKey and StackAttributeKey are the attribute names used for
// errors recorded on a request context.
const (
	ErrorAttributeKey = "error.message"
	StackAttributeKey = "error.stack"
)

type attrBag struct {
	mu         sync.RWMutex
	attributes map[string]any
}

type attrBagKey struct{}

// ContextWithSlog returns a context carrying a fresh attribute bag. Attributes
// added to it are appended to every record logged with that context.
func ContextWithSlog(ctx context.Context) context.Context {
	return context.WithValue(ctx, attrBagKey{}, &attrBag{attributes: make(map[string]any)})
}

// ContextWithChildSlog returns a context with a new bag seeded from the
// attributes already on ctx. Later additions do not leak back to the parent.
func ContextWithChildSlog(ctx context.Context) context.Context {
	attrs := GetAttributes(ctx)
	if attrs == nil {
		attrs = make(map[string]any)
	}
	delete(attrs, ErrorAttributeKey)
	delete(attrs, StackAttributeKey)
	return context.WithValue(ctx, attrBagKey{}, &attrBag{attributes: attrs})
}

func bagFrom(ctx context.Context) *attrBag {
	b, _ := ctx.Value(attrBagKey{}).(*attrBag)
	return b
}

func AddAttribute(ctx context.Context, key string, value any) {
	b := bagFrom(ctx)
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attributes[key] = value
}

func AddAttributes(ctx context.Context, attributes map[string]any) {
	b := bagFrom(ctx)
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	maps.Copy(b.attributes, attributes)
}

// GetAttributes returns a copy of the attributes stored on ctx, or nil.
func GetAttributes(ctx context.Context) map[string]any {
	b := bagFrom(ctx)
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return maps.Clone(b.attributes)
}

func AddError(ctx context.Context, err error) {
	AddAttribute(ctx, ErrorAttributeKey, err)
}

func AddStack(ctx context.Context, stack string) {
	AddAttribute(ctx, StackAttributeKey, stack)
}

func GetError(ctx context.Context) error {
	err, _ := GetAttributes(ctx)[ErrorAttributeKey].(error)
	return err
}
