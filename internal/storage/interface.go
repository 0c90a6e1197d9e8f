package storage

import (
	"context"
)

// Storage holds uploaded spreadsheets until a worker imports them.
type Storage interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}
