package geometry

import (
	"math"

	"github.com/benfen/radarmap/internal/core/domain"
)

// ProjectRadius converts a geodesic radius (meters around center) into the
// equivalent pixel radius at the view's current zoom. It is a pure
// function: callers thread the result into the path builder themselves.
//
// A zero geoRadius yields exactly 0; any positive radius yields at least 1
// pixel so degenerate shapes still render. The same rounding and floor
// policy applies to both the spherical and the planar branch.
func ProjectRadius(v *View, center domain.GeoPoint, geoRadius float64) int {
	if geoRadius == 0 {
		return 0
	}

	var px float64
	if v.CRS.Spherical() {
		px = sphericalRadius(v, center, geoRadius)
	} else {
		px = planarRadius(v, center, geoRadius)
	}

	if math.IsNaN(px) {
		return 0
	}
	return int(math.Max(math.Round(px), 1))
}

// sphericalRadius measures the radius in pixels under a spherical-earth
// CRS, compensating for the projection's latitude-dependent distortion.
//
// Projecting the center directly and offsetting by a fixed pixel count
// would draw a circle that is geodesically wrong away from the equator:
// Mercator-style projections stretch north-south distance nonlinearly with
// latitude. Instead the two points one angular radius north and south of
// the center are projected and averaged, giving a midpoint that sits where
// the circle's visual center belongs. The longitudinal angular radius is
// then derived from the latitudinal one via the spherical law of cosines,
// so the on-screen shape stays a true circle of the intended geodesic
// radius at that latitude.
func sphericalRadius(v *View, center domain.GeoPoint, geoRadius float64) float64 {
	lat, lng := center.Lat, center.Lon
	latR := (geoRadius / v.CRS.EarthRadius()) / degToRad // degrees

	top := v.Project(domain.GeoPoint{Lat: lat + latR, Lon: lng})
	bottom := v.Project(domain.GeoPoint{Lat: lat - latR, Lon: lng})
	p := top.Add(bottom).DivBy(2)
	lat2 := v.Unproject(p).Lat

	lngR := math.Acos((math.Cos(latR*degToRad)-math.Sin(lat*degToRad)*math.Sin(lat2*degToRad))/
		(math.Cos(lat*degToRad)*math.Cos(lat2*degToRad))) / degToRad

	// Extreme latitudes push the acos argument out of [-1, 1]. Fall back
	// to the small-angle approximation.
	if math.IsNaN(lngR) || lngR == 0 {
		lngR = latR / math.Cos(degToRad*lat)
	}

	return p.X - v.Project(domain.GeoPoint{Lat: lat2, Lon: lng - lngR}).X
}

// planarRadius measures the radius in pixels under a non-spherical CRS by
// offsetting the center in projected (not geographic) space and taking the
// horizontal pixel delta.
func planarRadius(v *View, center domain.GeoPoint, geoRadius float64) float64 {
	pp := v.CRS.Project(center)
	offset := v.CRS.Unproject(Point{X: pp.X - geoRadius, Y: pp.Y})

	return v.Project(center).X - v.Project(offset).X
}
