package cache

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"
)

// Flight collapses concurrent calls for the same key into a single execution.
// The key is forgotten as soon as the execution settles, so Flight holds no
// results of its own.
type Flight[K ~string, V any] struct {
	group singleflight.Group
}

// Do runs produce for key unless a call for key is already running, in which
// case it waits for that call's result. shared reports whether the result was
// handed to more than one caller. When ctx is done Do stops waiting, but the
// running execution is left to finish for the other callers.
func (f *Flight[K, V]) Do(
	ctx context.Context,
	key K,
	produce func() (V, error),
) (value V, shared bool, err error) {
	ch := f.group.DoChan(string(key), func() (result any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("produce %q: panic: %v", string(key), r)
			}
		}()

		return produce()
	})

	select {
	case <-ctx.Done():
		return value, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return value, res.Shared, res.Err
		}
		if v, ok := res.Val.(V); ok {
			value = v
		}

		return value, res.Shared, nil
	}
}
