package geometry

import "github.com/benfen/radarmap/internal/core/domain"

// View is the pixel-space state of a map viewport: a CRS, a zoom level, and
// the pixel origin (the absolute pixel coordinate of the viewport's
// top-left corner). Overlays derive all screen geometry from it and
// recompute from scratch whenever it changes.
type View struct {
	CRS         CRS
	Zoom        float64
	PixelOrigin Point
}

// NewView returns a view at the given zoom with the given pixel origin.
func NewView(crs CRS, zoom float64, origin Point) *View {
	return &View{CRS: crs, Zoom: zoom, PixelOrigin: origin}
}

// Project maps a geographic position to absolute pixel coordinates at the
// view's zoom.
func (v *View) Project(ll domain.GeoPoint) Point {
	return v.CRS.LatLngToPoint(ll, v.Zoom)
}

// Unproject maps absolute pixel coordinates back to a geographic position.
func (v *View) Unproject(p Point) domain.GeoPoint {
	return v.CRS.PointToLatLng(p, v.Zoom)
}

// LayerPoint maps a geographic position to viewport-relative (layer) pixel
// coordinates — the direct anchor placement primitive.
func (v *View) LayerPoint(ll domain.GeoPoint) Point {
	return v.Project(ll).Sub(v.PixelOrigin)
}
