package domain

import (
	"time"
)

// Sector is the authoritative, map-independent geometry of a radar sector:
// an annulus segment bounded by two concentric arcs and two radial edges.
// Radii are geodesic meters; angles are radians and deliberately not
// normalized — EndAngle may be smaller than StartAngle or exceed
// StartAngle + 2π, and the winding is the caller's responsibility.
type Sector struct {
	InnerRadius float64 `json:"inner_radius"` // meters, >= 0
	OuterRadius float64 `json:"outer_radius"` // meters, >= 0
	StartAngle  float64 `json:"start_angle"`  // radians
	EndAngle    float64 `json:"end_angle"`    // radians
}

// Style carries the drawing attributes forwarded unmodified to the
// rendering backend.
type Style struct {
	Stroke      bool    `json:"stroke"`
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	Opacity     float64 `json:"opacity"`
	Fill        bool    `json:"fill"`
	FillColor   string  `json:"fill_color,omitempty"`
	FillOpacity float64 `json:"fill_opacity"`
}

// DefaultStyle returns the style applied to overlays created without one.
func DefaultStyle() Style {
	return Style{
		Stroke:      true,
		Color:       "#3388ff",
		Weight:      3,
		Opacity:     1,
		Fill:        true,
		FillOpacity: 0.2,
	}
}

// Overlay is a persisted radar-sector overlay: one geographic center and
// one sector descriptor, plus presentation style.
type Overlay struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Center    GeoPoint  `json:"center"`
	Sector    Sector    `json:"sector"`
	Style     Style     `json:"style"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PixelPoint is a screen-space coordinate.
type PixelPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PixelBounds is an axis-aligned screen-space box.
type PixelBounds struct {
	Min PixelPoint `json:"min"`
	Max PixelPoint `json:"max"`
}

// RenderResult is the view-dependent output of one refresh pass: the SVG
// path string, pixel bounds, and the pixel radii derived from the overlay's
// geodesic radii at the requested zoom. It is never stored — every pass
// recomputes it from the geodesic source of truth.
type RenderResult struct {
	OverlayID     string      `json:"overlay_id"`
	Zoom          float64     `json:"zoom"`
	CRS           string      `json:"crs"`
	Path          string      `json:"path"`
	Anchor        PixelPoint  `json:"anchor"`
	InnerRadiusPx int         `json:"inner_radius_px"`
	OuterRadiusPx int         `json:"outer_radius_px"`
	Bounds        PixelBounds `json:"bounds"`
	Style         Style       `json:"style"`
}
