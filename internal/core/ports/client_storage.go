package ports

import "context"

// ClientStorage is the durable per-browser key/value store. sid partitions it.
// Implementations must be safe for concurrent use.
type ClientStorage interface {
	Get(ctx context.Context, sid, key string) (string, bool, error)
	Set(ctx context.Context, sid, key, value string) error
	Remove(ctx context.Context, sid, key string) error
}
