package repo

import "context"

// Slots is a named-value storage: one key holds one serialized blob.
type Slots interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}
