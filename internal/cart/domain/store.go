package domain

import "context"

// Store persists one opaque serialized cart per key.
type Store interface {
	Save(ctx context.Context, key, blob string) error
	// Load reports found=false when nothing is stored under key.
	Load(ctx context.Context, key string) (blob string, found bool, err error)
	Delete(ctx context.Context, key string) error
}
