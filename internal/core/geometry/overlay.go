package geometry

import "github.com/benfen/radarmap/internal/core/domain"

// VectorOverlay is the drawable-path capability: anything that can produce
// a path string and a pixel bounding box for the current view.
type VectorOverlay interface {
	ComputePath() string
	ComputeBounds() Bounds
}

// Renderer is the drawing backend. It receives the finished path string and
// draws or updates it; the overlay never talks to the screen directly.
type Renderer interface {
	Draw(path string, style domain.Style, bounds Bounds)
}

// defaultTolerance is the hit-test margin added around the outer radius
// when sizing the bounding box.
const defaultTolerance = 10.0

// SectorOverlay is a live radar-sector overlay instance: one geographic
// center, one sector descriptor, and the view-dependent state derived from
// them. Every mutation triggers exactly one synchronous refresh that
// recomputes anchor, pixel radii, bounds, and path from the geodesic source
// of truth, then hands the path to the renderer.
//
// Geometry is meaningless until Attach has been called with a live view;
// that precondition is the caller's responsibility.
type SectorOverlay struct {
	center domain.GeoPoint
	sector *SectorDescriptor
	style  domain.Style

	view     *View
	renderer Renderer

	tolerance float64

	anchor Point
	bounds Bounds
	path   string
}

// NewSectorOverlay creates an overlay at center. A nil sector defaults to
// the zero descriptor.
func NewSectorOverlay(center domain.GeoPoint, sector *SectorDescriptor) *SectorOverlay {
	if sector == nil {
		sector = NewSectorDescriptor(0, 0, 0, 0)
	}
	return &SectorOverlay{
		center:    center,
		sector:    sector,
		style:     domain.DefaultStyle(),
		tolerance: defaultTolerance,
	}
}

// Attach binds the overlay to a view and renderer and performs the first
// refresh.
func (o *SectorOverlay) Attach(v *View, r Renderer) {
	o.view = v
	o.renderer = r
	o.refresh()
}

// SetCenter moves the overlay and refreshes once.
func (o *SectorOverlay) SetCenter(c domain.GeoPoint) {
	o.center = c
	o.refresh()
}

// SetSector replaces the descriptor and refreshes once.
func (o *SectorOverlay) SetSector(s *SectorDescriptor) {
	if s == nil {
		s = NewSectorDescriptor(0, 0, 0, 0)
	}
	o.sector = s
	o.refresh()
}

// SetStyle replaces the style and refreshes once.
func (o *SectorOverlay) SetStyle(st domain.Style) {
	o.style = st
	o.refresh()
}

// SetView repositions the overlay against a changed viewport (pan, zoom, or
// projection change) and refreshes once.
func (o *SectorOverlay) SetView(v *View) {
	o.view = v
	o.refresh()
}

// SetTolerance overrides the hit-test margin and refreshes once.
func (o *SectorOverlay) SetTolerance(t float64) {
	o.tolerance = t
	o.refresh()
}

// refresh runs one full projection pass. The pixel radii consumed by the
// path builder always come from this same pass — never a stale value mixed
// with a fresh one.
func (o *SectorOverlay) refresh() {
	if o.view == nil {
		return
	}

	o.sector.InnerRadiusPx = ProjectRadius(o.view, o.center, o.sector.InnerRadius)
	o.sector.OuterRadiusPx = ProjectRadius(o.view, o.center, o.sector.OuterRadius)

	o.anchor = o.view.LayerPoint(o.center).Round()
	o.bounds = SectorBounds(o.anchor, o.sector.OuterRadiusPx, o.hitTolerance())
	o.path = SectorPath(o.anchor,
		float64(o.sector.InnerRadiusPx), float64(o.sector.OuterRadiusPx),
		o.sector.StartAngle, o.sector.EndAngle)

	if o.renderer != nil {
		o.renderer.Draw(o.path, o.style, o.bounds)
	}
}

// hitTolerance widens the bounding box past the outer radius so strokes and
// near-miss clicks still hit.
func (o *SectorOverlay) hitTolerance() float64 {
	t := o.tolerance
	if o.style.Stroke {
		t += o.style.Weight / 2
	}
	return t
}

// ComputePath returns the path from the most recent refresh.
func (o *SectorOverlay) ComputePath() string { return o.path }

// ComputeBounds returns the bounds from the most recent refresh.
func (o *SectorOverlay) ComputeBounds() Bounds { return o.bounds }

// Anchor returns the center's layer-point from the most recent refresh.
func (o *SectorOverlay) Anchor() Point { return o.anchor }

// Center returns the overlay's geographic center.
func (o *SectorOverlay) Center() domain.GeoPoint { return o.center }

// Sector returns the overlay's descriptor, including the pixel-radius cache
// from the most recent refresh.
func (o *SectorOverlay) Sector() *SectorDescriptor { return o.sector }

// Style returns the overlay's style.
func (o *SectorOverlay) Style() domain.Style { return o.style }

var _ VectorOverlay = (*SectorOverlay)(nil)
