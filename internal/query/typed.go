package query

import "context"

// DataAs returns e.Data as a T. ok is false when there is no data or it has
// a different type.
func DataAs[T any](e Entry) (v T, ok bool) {
	v, ok = e.Data.(T)
	return v, ok
}

// FetchAs is Fetch for a fetcher with a concrete result type.
func FetchAs[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	e := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if e.Err != nil {
		var zero T
		return zero, e.Err
	}
	v, _ := DataAs[T](e)
	return v, nil
}

// MutateAs is Mutate for a producer with a concrete result type.
func MutateAs[T any](ctx context.Context, c *Cache, key string, produce func(context.Context) (T, error), opts ...MutateOption) (T, error) {
	data, err := c.Mutate(ctx, key, func(ctx context.Context) (any, error) {
		return produce(ctx)
	}, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := data.(T)
	return v, nil
}
