package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/benfen/radarmap/internal/core/domain"
	"github.com/benfen/radarmap/internal/core/geometry"
	"github.com/benfen/radarmap/internal/core/ports"
	"github.com/benfen/radarmap/internal/pkg/metrics"
)

// RenderRequest describes the client viewport a path should be computed
// for. Origin is the absolute pixel coordinate of the viewport's top-left
// corner at the requested zoom; anchor and bounds come back relative to it.
type RenderRequest struct {
	Zoom      float64 `json:"zoom"`
	CRS       string  `json:"crs"`
	OriginX   float64 `json:"origin_x"`
	OriginY   float64 `json:"origin_y"`
	Tolerance float64 `json:"tolerance"`
}

const (
	fallbackTolerance = 10.0
	fallbackCacheTTL  = 300
)

// RenderService turns persisted overlays into view-dependent path strings.
// Results are cached per viewport; any overlay mutation changes UpdatedAt,
// which is part of the cache key, so stale entries are never served.
type RenderService struct {
	overlays  *OverlayService
	cache     ports.CacheService
	tolerance float64
	cacheTTL  int
}

// NewRenderService creates a new RenderService. defaultTolerance is the
// hit-test margin applied when a request carries none; cacheTTLSeconds
// bounds how long a rendered result may be served. Non-positive values
// fall back to built-in defaults.
func NewRenderService(overlays *OverlayService, cache ports.CacheService, defaultTolerance float64, cacheTTLSeconds int) *RenderService {
	if defaultTolerance <= 0 {
		defaultTolerance = fallbackTolerance
	}
	if cacheTTLSeconds <= 0 {
		cacheTTLSeconds = fallbackCacheTTL
	}
	return &RenderService{
		overlays:  overlays,
		cache:     cache,
		tolerance: defaultTolerance,
		cacheTTL:  cacheTTLSeconds,
	}
}

// Render computes the path, anchor, pixel radii, and bounds for one overlay
// under the requested viewport.
func (s *RenderService) Render(ctx context.Context, id string, req RenderRequest) (*domain.RenderResult, error) {
	if req.Zoom < 0 || req.Zoom > 30 {
		return nil, fmt.Errorf("zoom out of range: %v", req.Zoom)
	}
	if req.Tolerance < 0 {
		return nil, fmt.Errorf("tolerance must be non-negative")
	}
	if req.Tolerance == 0 {
		req.Tolerance = s.tolerance
	}

	overlay, err := s.overlays.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("render:%s:%d:%s:z%g:%.1f:%.1f:%.1f",
		id, overlay.UpdatedAt.Unix(), req.CRS, req.Zoom, req.OriginX, req.OriginY, req.Tolerance)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var res domain.RenderResult
			if err := json.Unmarshal(data, &res); err == nil {
				metrics.RenderCacheHits.Inc()
				return &res, nil
			}
		}
		metrics.RenderCacheMisses.Inc()
	}

	timer := metrics.RenderTimer()
	res := RenderOverlay(overlay, req)
	timer.ObserveDuration()
	metrics.RendersTotal.WithLabelValues(res.CRS).Inc()

	if s.cache != nil {
		if data, err := json.Marshal(res); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}
	return res, nil
}

// RenderOverlay runs one full refresh pass for an overlay against the
// requested viewport: project both radii, place the anchor, build the path
// and bounds. Pure computation, reused by the HTTP, GraphQL, and WebSocket
// surfaces.
func RenderOverlay(overlay *domain.Overlay, req RenderRequest) *domain.RenderResult {
	crs := geometry.CRSByCode(req.CRS)
	view := geometry.NewView(crs, req.Zoom, geometry.Point{X: req.OriginX, Y: req.OriginY})

	shape := geometry.NewSectorOverlay(overlay.Center, geometry.NewSectorDescriptor(
		overlay.Sector.InnerRadius, overlay.Sector.OuterRadius,
		overlay.Sector.StartAngle, overlay.Sector.EndAngle,
	))
	shape.SetStyle(overlay.Style)
	if req.Tolerance > 0 {
		shape.SetTolerance(req.Tolerance)
	}
	shape.Attach(view, nil)

	sec := shape.Sector()
	anchor := shape.Anchor()
	bounds := shape.ComputeBounds()

	res := &domain.RenderResult{
		OverlayID:     overlay.ID,
		Zoom:          req.Zoom,
		CRS:           crs.Code(),
		Path:          shape.ComputePath(),
		Anchor:        domain.PixelPoint{X: anchor.X, Y: anchor.Y},
		InnerRadiusPx: sec.InnerRadiusPx,
		OuterRadiusPx: sec.OuterRadiusPx,
		Style:         overlay.Style,
	}
	res.Bounds = domain.PixelBounds{
		Min: domain.PixelPoint{X: bounds.Min.X, Y: bounds.Min.Y},
		Max: domain.PixelPoint{X: bounds.Max.X, Y: bounds.Max.Y},
	}
	return res
}
