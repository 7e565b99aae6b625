package geospatial

import "math"

// EarthMeanRadius is the mean earth radius in meters, the constant that
// converts geodesic distances to angular radii on a spherical earth.
const EarthMeanRadius = 6371000.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthMeanRadius * c
}

// BoundingBox returns a geographic box around a point with the given radius
// in meters. Used as a cheap prefilter before exact distance checks.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / 111320.0
	lonDelta := radiusMeters / (111320.0 * math.Cos(toRad(lat)))

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}

// Destination returns the point reached by travelling distanceMeters from
// (lat, lon) along the given bearing (degrees clockwise from north) on a
// spherical earth.
func Destination(lat, lon, bearingDeg, distanceMeters float64) (destLat, destLon float64) {
	ang := distanceMeters / EarthMeanRadius
	brg := toRad(bearingDeg)
	latR := toRad(lat)
	lonR := toRad(lon)

	lat2 := math.Asin(math.Sin(latR)*math.Cos(ang) +
		math.Cos(latR)*math.Sin(ang)*math.Cos(brg))
	lon2 := lonR + math.Atan2(
		math.Sin(brg)*math.Sin(ang)*math.Cos(latR),
		math.Cos(ang)-math.Sin(latR)*math.Sin(lat2),
	)

	return toDeg(lat2), toDeg(lon2)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
