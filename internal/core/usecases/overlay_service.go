package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/benfen/radarmap/internal/core/domain"
	"github.com/benfen/radarmap/internal/core/ports"
	"github.com/benfen/radarmap/internal/pkg/geospatial"
)

// OverlayService handles overlay lifecycle: creation, lookup, geometry and
// style mutations, deletion. Every mutation goes to the repository first and
// is then announced on the event bus so live map clients repaint.
type OverlayService struct {
	overlays  ports.OverlayRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
}

// NewOverlayService creates a new OverlayService.
func NewOverlayService(overlays ports.OverlayRepository, cache ports.CacheService, publisher ports.EventPublisher) *OverlayService {
	return &OverlayService{overlays: overlays, cache: cache, publisher: publisher}
}

// Create validates and persists a new overlay. A nil style gets the default.
// Zero radii are legitimate (a minimal shape, not an error); negative radii
// are not.
func (s *OverlayService) Create(ctx context.Context, name string, center domain.GeoPoint, sector domain.Sector, style *domain.Style) (*domain.Overlay, error) {
	if err := validateSector(sector); err != nil {
		return nil, err
	}
	if err := center.Validate(); err != nil {
		return nil, err
	}

	st := domain.DefaultStyle()
	if style != nil {
		st = *style
	}

	overlay := &domain.Overlay{
		ID:     uuid.NewString(),
		Name:   name,
		Center: center,
		Sector: sector,
		Style:  st,
	}
	if err := s.overlays.Create(ctx, overlay); err != nil {
		return nil, fmt.Errorf("create overlay: %w", err)
	}

	if s.publisher != nil {
		_ = s.publisher.PublishOverlayUpdated(ctx, overlay)
	}
	return overlay, nil
}

// GetByID returns a single overlay, cache-aside.
func (s *OverlayService) GetByID(ctx context.Context, id string) (*domain.Overlay, error) {
	cacheKey := "overlay:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var o domain.Overlay
			if err := json.Unmarshal(data, &o); err == nil {
				return &o, nil
			}
		}
	}

	overlay, err := s.overlays.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(overlay); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}
	return overlay, nil
}

// List returns overlays with the total count for pagination.
func (s *OverlayService) List(ctx context.Context, limit, offset int) ([]domain.Overlay, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.overlays.List(ctx, limit, offset)
}

// FindNearby returns overlays whose center lies within radiusMeters of the
// given point, nearest first.
func (s *OverlayService) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Overlay, error) {
	if radiusMeters <= 0 {
		return nil, fmt.Errorf("radius must be positive")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	candidates, err := s.overlays.FindNearby(ctx, lat, lon, radiusMeters, limit)
	if err != nil {
		return nil, err
	}

	// The repository prefilters on a bounding box; confirm with the exact
	// great-circle distance.
	result := candidates[:0]
	for _, o := range candidates {
		if geospatial.Haversine(lat, lon, o.Center.Lat, o.Center.Lon) <= radiusMeters {
			result = append(result, o)
		}
	}
	return result, nil
}

// Move replaces the overlay's center, invalidates caches, and announces the
// change.
func (s *OverlayService) Move(ctx context.Context, id string, center domain.GeoPoint) (*domain.Overlay, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}

	overlay, err := s.overlays.Move(ctx, id, center)
	if err != nil {
		return nil, fmt.Errorf("move overlay: %w", err)
	}
	s.invalidate(ctx, id)

	if s.publisher != nil {
		_ = s.publisher.PublishOverlayUpdated(ctx, overlay)
	}
	return overlay, nil
}

// UpdateSector replaces the overlay's geodesic descriptor.
func (s *OverlayService) UpdateSector(ctx context.Context, id string, sector domain.Sector) (*domain.Overlay, error) {
	if err := validateSector(sector); err != nil {
		return nil, err
	}

	overlay, err := s.overlays.UpdateSector(ctx, id, sector)
	if err != nil {
		return nil, fmt.Errorf("update sector: %w", err)
	}
	s.invalidate(ctx, id)

	if s.publisher != nil {
		_ = s.publisher.PublishOverlayUpdated(ctx, overlay)
	}
	return overlay, nil
}

// UpdateStyle replaces the overlay's presentation style.
func (s *OverlayService) UpdateStyle(ctx context.Context, id string, style domain.Style) (*domain.Overlay, error) {
	overlay, err := s.overlays.UpdateStyle(ctx, id, style)
	if err != nil {
		return nil, fmt.Errorf("update style: %w", err)
	}
	s.invalidate(ctx, id)

	if s.publisher != nil {
		_ = s.publisher.PublishOverlayUpdated(ctx, overlay)
	}
	return overlay, nil
}

// Delete removes the overlay and announces the removal.
func (s *OverlayService) Delete(ctx context.Context, id string) error {
	if err := s.overlays.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete overlay: %w", err)
	}
	s.invalidate(ctx, id)

	if s.publisher != nil {
		_ = s.publisher.PublishOverlayDeleted(ctx, id)
	}
	return nil
}

// SubscribeInvalidations registers durable event handlers that drop cached
// entries when another instance mutates or deletes an overlay. Local
// mutations invalidate directly; this covers the peers.
func (s *OverlayService) SubscribeInvalidations(ctx context.Context, events ports.EventSubscriber) error {
	if err := events.SubscribeOverlayUpdates(ctx, func(ctx context.Context, overlay *domain.Overlay) error {
		s.invalidate(ctx, overlay.ID)
		return nil
	}); err != nil {
		return fmt.Errorf("subscribe overlay updates: %w", err)
	}
	if err := events.SubscribeOverlayDeletes(ctx, func(ctx context.Context, id string) error {
		s.invalidate(ctx, id)
		return nil
	}); err != nil {
		return fmt.Errorf("subscribe overlay deletes: %w", err)
	}
	return nil
}

func (s *OverlayService) invalidate(ctx context.Context, id string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "overlay:id:"+id)
	}
}

func validateSector(sec domain.Sector) error {
	if sec.InnerRadius < 0 || sec.OuterRadius < 0 {
		return fmt.Errorf("sector radii must be non-negative")
	}
	// Angles are intentionally unconstrained: winding is the caller's
	// contract, including end < start and spans beyond 2π.
	return nil
}
