package ports

import (
	"context"
	"time"

	"vitrine/contexts/merchandising/banner-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

// RecordSource fetches the canonical record for one slot. The boolean is
// false when the slot has no server record; that is not an error.
type RecordSource interface {
	FetchRecord(ctx context.Context, slot entities.Slot) (entities.Record, bool, error)
}

// ConfigBackend is the durable key-value layer under the crop-config cache.
type ConfigBackend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// BannerUpdate is a change notification for one slot.
type BannerUpdate struct {
	ID      string
	Version int64
}

// SyncFeed delivers banner change notifications to a handler. The returned
// function removes the handler completely; calling it twice is safe.
type SyncFeed interface {
	SubscribeBannerUpdates(handler func(BannerUpdate)) (unsubscribe func())
}
