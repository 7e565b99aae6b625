package ports

import (
	"context"

	"github.com/benfen/radarmap/internal/core/domain"
)

// OverlayRepository persists radar-sector overlays.
type OverlayRepository interface {
	Create(ctx context.Context, overlay *domain.Overlay) error
	GetByID(ctx context.Context, id string) (*domain.Overlay, error)
	List(ctx context.Context, limit, offset int) ([]domain.Overlay, int, error)
	FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Overlay, error)
	Move(ctx context.Context, id string, center domain.GeoPoint) (*domain.Overlay, error)
	UpdateSector(ctx context.Context, id string, sector domain.Sector) (*domain.Overlay, error)
	UpdateStyle(ctx context.Context, id string, style domain.Style) (*domain.Overlay, error)
	Delete(ctx context.Context, id string) error
}
