package pipeline

import (
	"context"

	db "github.com/KazanKK/dataferry/database"
	"github.com/KazanKK/dataferry/internal/outcome"
)

// Opener builds a store for a backend; *db.Factory is the production one.
type Opener interface {
	Build(ctx context.Context, kind db.Kind, desc db.ConnectionDescriptor) (db.Store, error)
}

// WithStore opens a store, hands it to fn and closes it again, so a handle
// never outlives the operation that acquired it.
func WithStore(ctx context.Context, opener Opener, kind db.Kind, desc db.ConnectionDescriptor, fn func(db.Store) outcome.Result) outcome.Result {
	store, err := opener.Build(ctx, kind, desc)
	if err != nil {
		return outcome.Fail(err)
	}
	defer store.Close()
	return fn(store)
}

// WithStores is WithStore for a source and a destination.
func WithStores(ctx context.Context, opener Opener,
	srcKind db.Kind, srcDesc db.ConnectionDescriptor,
	dstKind db.Kind, dstDesc db.ConnectionDescriptor,
	fn func(src, dst db.Store) outcome.Result) outcome.Result {
	return WithStore(ctx, opener, srcKind, srcDesc, func(src db.Store) outcome.Result {
		return WithStore(ctx, opener, dstKind, dstDesc, func(dst db.Store) outcome.Result {
			return fn(src, dst)
		})
	})
}
