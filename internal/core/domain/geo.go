package domain

import "fmt"

// GeoPoint is a WGS 84 coordinate. Latitude and longitude are degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that the coordinate lies within WGS 84 bounds.
func (p GeoPoint) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude out of range: %v", p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude out of range: %v", p.Lon)
	}
	return nil
}
