package geometry_test

import (
	"math"
	"testing"

	"github.com/benfen/radarmap/internal/core/domain"
	"github.com/benfen/radarmap/internal/core/geometry"
)

func TestEPSG3857_ProjectUnprojectRoundTrip(t *testing.T) {
	crs := geometry.EPSG3857{}

	for _, ll := range []domain.GeoPoint{
		{Lat: 0, Lon: 0},
		{Lat: 43.263, Lon: -2.935},
		{Lat: -33.86, Lon: 151.21},
		{Lat: 50.5, Lon: 30.5},
	} {
		got := crs.Unproject(crs.Project(ll))
		if math.Abs(got.Lat-ll.Lat) > 1e-9 || math.Abs(got.Lon-ll.Lon) > 1e-9 {
			t.Errorf("roundtrip drifted: %+v -> %+v", ll, got)
		}
	}
}

func TestEPSG3857_PixelRoundTripAtZoom(t *testing.T) {
	crs := geometry.EPSG3857{}
	ll := domain.GeoPoint{Lat: 43.263, Lon: -2.935}

	p := crs.LatLngToPoint(ll, 15)
	back := crs.PointToLatLng(p, 15)
	if math.Abs(back.Lat-ll.Lat) > 1e-6 || math.Abs(back.Lon-ll.Lon) > 1e-6 {
		t.Errorf("pixel roundtrip drifted: %+v -> %+v", ll, back)
	}
}

func TestEPSG3857_OriginOfPixelSquare(t *testing.T) {
	crs := geometry.EPSG3857{}

	// (0,0) sits in the middle of the world square at every zoom.
	p := crs.LatLngToPoint(domain.GeoPoint{}, 3)
	want := crs.Scale(3) / 2
	if math.Abs(p.X-want) > 1e-6 || math.Abs(p.Y-want) > 1e-6 {
		t.Errorf("equator origin should project to the square center %v, got %+v", want, p)
	}
}

func TestEPSG3857_LatitudeClamp(t *testing.T) {
	crs := geometry.EPSG3857{}

	pole := crs.Project(domain.GeoPoint{Lat: 90, Lon: 0})
	clamped := crs.Project(domain.GeoPoint{Lat: 85.0511287798, Lon: 0})
	if math.Abs(pole.Y-clamped.Y) > 1e-6 {
		t.Errorf("poles must clamp to the Mercator cutoff: %v vs %v", pole.Y, clamped.Y)
	}
}

func TestEPSG3857_DistanceIsHaversine(t *testing.T) {
	crs := geometry.EPSG3857{}

	// One degree of longitude at the equator.
	d := crs.Distance(domain.GeoPoint{}, domain.GeoPoint{Lon: 1})
	want := 2 * math.Pi * crs.EarthRadius() / 360
	if math.Abs(d-want) > 1 {
		t.Errorf("equatorial degree should be %v m, got %v", want, d)
	}
	if !crs.Spherical() {
		t.Error("EPSG:3857 must report a spherical distance function")
	}
}

func TestFlat_RoundTripAndDistance(t *testing.T) {
	crs := geometry.Flat{}

	ll := domain.GeoPoint{Lat: 12.5, Lon: -7.25}
	if got := crs.PointToLatLng(crs.LatLngToPoint(ll, 5), 5); got != ll {
		t.Errorf("flat roundtrip drifted: %+v -> %+v", ll, got)
	}

	if d := crs.Distance(domain.GeoPoint{}, domain.GeoPoint{Lat: 3, Lon: 4}); d != 5 {
		t.Errorf("flat distance should be Euclidean, got %v", d)
	}
	if crs.Spherical() {
		t.Error("flat CRS must not report a spherical distance function")
	}
}

func TestCRSByCode(t *testing.T) {
	if geometry.CRSByCode("flat").Code() != "flat" {
		t.Error("flat code should resolve to the planar CRS")
	}
	if geometry.CRSByCode("").Code() != "EPSG:3857" {
		t.Error("unknown codes should fall back to EPSG:3857")
	}
	if geometry.CRSByCode("EPSG:3857").Code() != "EPSG:3857" {
		t.Error("EPSG:3857 should resolve to itself")
	}
}

func TestView_LayerPointSubtractsOrigin(t *testing.T) {
	crs := geometry.EPSG3857{}
	ll := domain.GeoPoint{Lat: 43.263, Lon: -2.935}
	origin := crs.LatLngToPoint(ll, 12)

	v := geometry.NewView(crs, 12, origin)
	if p := v.LayerPoint(ll); math.Abs(p.X) > 1e-9 || math.Abs(p.Y) > 1e-9 {
		t.Errorf("the origin position should land on (0,0), got %+v", p)
	}
}
