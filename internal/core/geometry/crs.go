package geometry

import (
	"math"

	"github.com/benfen/radarmap/internal/core/domain"
	"github.com/benfen/radarmap/internal/pkg/geospatial"
)

// CRS maps geographic coordinates to a projected plane and on to absolute
// pixel coordinates at a zoom level. It is the projection half of the host
// map collaborator; views and overlays only consume this interface.
type CRS interface {
	// Project maps a geographic position onto the projected plane
	// (meters for earth CRSs, abstract units for planar ones).
	Project(ll domain.GeoPoint) Point
	// Unproject is the inverse of Project.
	Unproject(p Point) domain.GeoPoint

	// LatLngToPoint maps a geographic position to absolute pixel
	// coordinates at the given zoom.
	LatLngToPoint(ll domain.GeoPoint, zoom float64) Point
	// PointToLatLng is the inverse of LatLngToPoint.
	PointToLatLng(p Point, zoom float64) domain.GeoPoint

	// Scale is the pixels-per-plane-unit factor at a zoom level.
	Scale(zoom float64) float64

	// Distance returns the distance between two positions in the CRS's
	// linear unit.
	Distance(a, b domain.GeoPoint) float64
	// EarthRadius is the mean radius used to convert geodesic distances
	// to angular ones. Meaningless for non-spherical CRSs.
	EarthRadius() float64
	// Spherical reports whether Distance is the standard great-circle
	// distance on a spherical earth.
	Spherical() bool
	// Code identifies the CRS (e.g. "EPSG:3857").
	Code() string
}

// CRSByCode resolves a CRS identifier. Unknown codes fall back to EPSG:3857,
// the projection every mainstream slippy map uses.
func CRSByCode(code string) CRS {
	switch code {
	case "flat", "simple":
		return Flat{}
	default:
		return EPSG3857{}
	}
}

const (
	// mercatorRadius is the projection radius of the web-Mercator
	// spheroid. Distinct from the mean radius used for distances.
	mercatorRadius = 6378137.0

	// maxMercatorLatitude is where the web-Mercator square cuts off.
	maxMercatorLatitude = 85.0511287798

	degToRad = math.Pi / 180
)

// EPSG3857 is the spherical web-Mercator CRS.
type EPSG3857 struct{}

func (EPSG3857) Project(ll domain.GeoPoint) Point {
	lat := math.Max(math.Min(maxMercatorLatitude, ll.Lat), -maxMercatorLatitude)
	sin := math.Sin(lat * degToRad)

	return Point{
		X: mercatorRadius * ll.Lon * degToRad,
		Y: mercatorRadius * math.Log((1+sin)/(1-sin)) / 2,
	}
}

func (EPSG3857) Unproject(p Point) domain.GeoPoint {
	return domain.GeoPoint{
		Lat: (2*math.Atan(math.Exp(p.Y/mercatorRadius)) - math.Pi/2) / degToRad,
		Lon: p.X / degToRad / mercatorRadius,
	}
}

func (c EPSG3857) LatLngToPoint(ll domain.GeoPoint, zoom float64) Point {
	return mercatorTransform(c.Project(ll), c.Scale(zoom))
}

func (c EPSG3857) PointToLatLng(p Point, zoom float64) domain.GeoPoint {
	return c.Unproject(mercatorUntransform(p, c.Scale(zoom)))
}

func (EPSG3857) Scale(zoom float64) float64 {
	return 256 * math.Pow(2, zoom)
}

func (EPSG3857) Distance(a, b domain.GeoPoint) float64 {
	return geospatial.Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}

func (EPSG3857) EarthRadius() float64 { return geospatial.EarthMeanRadius }

func (EPSG3857) Spherical() bool { return true }

func (EPSG3857) Code() string { return "EPSG:3857" }

// mercatorTransform maps plane meters into the [0, scale] pixel square.
func mercatorTransform(p Point, scale float64) Point {
	const k = 0.5 / (math.Pi * mercatorRadius)
	return Point{
		X: scale * (k*p.X + 0.5),
		Y: scale * (-k*p.Y + 0.5),
	}
}

func mercatorUntransform(p Point, scale float64) Point {
	const k = 0.5 / (math.Pi * mercatorRadius)
	return Point{
		X: (p.X/scale - 0.5) / k,
		Y: (p.Y/scale - 0.5) / -k,
	}
}

// Flat is a planar CRS for non-geographic maps: x is longitude, y is
// latitude, distances are Euclidean in degrees-as-units. The counterpart of
// a flat/simple CRS in slippy-map libraries.
type Flat struct{}

func (Flat) Project(ll domain.GeoPoint) Point {
	return Point{X: ll.Lon, Y: -ll.Lat}
}

func (Flat) Unproject(p Point) domain.GeoPoint {
	return domain.GeoPoint{Lat: -p.Y, Lon: p.X}
}

func (c Flat) LatLngToPoint(ll domain.GeoPoint, zoom float64) Point {
	s := c.Scale(zoom)
	p := c.Project(ll)
	return Point{X: p.X * s, Y: p.Y * s}
}

func (c Flat) PointToLatLng(p Point, zoom float64) domain.GeoPoint {
	s := c.Scale(zoom)
	return c.Unproject(Point{X: p.X / s, Y: p.Y / s})
}

func (Flat) Scale(zoom float64) float64 {
	return math.Pow(2, zoom)
}

func (Flat) Distance(a, b domain.GeoPoint) float64 {
	dx := b.Lon - a.Lon
	dy := b.Lat - a.Lat
	return math.Sqrt(dx*dx + dy*dy)
}

func (Flat) EarthRadius() float64 { return 0 }

func (Flat) Spherical() bool { return false }

func (Flat) Code() string { return "flat" }
