package usage

import "context"

// Storage persists usage aggregates across restarts. Load returns (nil, nil)
// when no snapshot exists yet.
type Storage interface {
	Load(ctx context.Context) (*Stats, error)
	Save(ctx context.Context, stats *Stats) error
	Close() error
}

// NopStorage discards everything; used when persistence is disabled.
type NopStorage struct{}

func (NopStorage) Load(context.Context) (*Stats, error) { return nil, nil }
func (NopStorage) Save(context.Context, *Stats) error { return nil }
func (NopStorage) Close() error { return nil }
