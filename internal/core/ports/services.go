package ports

import (
	"context"

	"github.com/benfen/radarmap/internal/core/domain"
)

// EventPublisher publishes overlay lifecycle events to a message broker.
type EventPublisher interface {
	PublishOverlayUpdated(ctx context.Context, overlay *domain.Overlay) error
	PublishOverlayDeleted(ctx context.Context, id string) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to overlay lifecycle events.
type EventSubscriber interface {
	SubscribeOverlayUpdates(ctx context.Context, handler func(ctx context.Context, overlay *domain.Overlay) error) error
	SubscribeOverlayDeletes(ctx context.Context, handler func(ctx context.Context, id string) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
