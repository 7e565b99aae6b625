package geometry

import (
	"math"
	"strconv"
	"strings"
)

// SectorDescriptor holds the pixel-space inputs of one path construction:
// anchor-relative radii in pixels and the two radial-edge angles. It is the
// projection cache attached to a live overlay; the geodesic source of truth
// lives in domain.Sector.
type SectorDescriptor struct {
	InnerRadius float64 // geodesic meters
	OuterRadius float64 // geodesic meters
	StartAngle  float64 // radians
	EndAngle    float64 // radians

	// Pixel radii from the most recent projection pass. Stale before the
	// first refresh against a live view.
	InnerRadiusPx int
	OuterRadiusPx int
}

// NewSectorDescriptor builds a descriptor from geodesic radii (meters) and
// angles (radians). All arguments default to zero; angles are taken as-is
// with no normalization.
func NewSectorDescriptor(innerRadius, outerRadius, startAngle, endAngle float64) *SectorDescriptor {
	return &SectorDescriptor{
		InnerRadius: innerRadius,
		OuterRadius: outerRadius,
		StartAngle:  startAngle,
		EndAngle:    endAngle,
	}
}

// SectorPath builds the closed SVG path for an annulus sector: from the
// inner-radius point at startAngle straight out to the outer radius, along
// the outer arc to endAngle, straight in to the inner radius, and back
// along the inner arc to the start.
//
// Each arc is a single A command. The large-arc flag is 1 iff the raw
// angular span endAngle-startAngle exceeds π; the formula is applied
// verbatim to unnormalized spans (negative or >2π spans get whatever flag
// the subtraction yields — winding is the caller's contract). The outer
// arc sweeps positively (flag 1), the inner return arc negatively (flag 0).
//
// innerRadius == 0 collapses the inner arc onto the anchor point; the path
// stays well formed.
func SectorPath(anchor Point, innerRadius, outerRadius, startAngle, endAngle float64) string {
	largeArc := "0"
	if endAngle-startAngle > math.Pi {
		largeArc = "1"
	}

	innerStart := arcPoint(anchor, innerRadius, startAngle)
	outerStart := arcPoint(anchor, outerRadius, startAngle)
	outerEnd := arcPoint(anchor, outerRadius, endAngle)
	innerEnd := arcPoint(anchor, innerRadius, endAngle)

	var b strings.Builder
	b.WriteString("M ")
	writePoint(&b, innerStart)
	b.WriteString(" L ")
	writePoint(&b, outerStart)
	b.WriteString(" A ")
	writeCoord(&b, outerRadius)
	b.WriteByte(' ')
	writeCoord(&b, outerRadius)
	b.WriteString(" 0 " + largeArc + " 1 ")
	writePoint(&b, outerEnd)
	b.WriteString(" L ")
	writePoint(&b, innerEnd)
	b.WriteString(" A ")
	writeCoord(&b, innerRadius)
	b.WriteByte(' ')
	writeCoord(&b, innerRadius)
	b.WriteString(" 0 " + largeArc + " 0 ")
	writePoint(&b, innerStart)
	b.WriteString(" z")

	return b.String()
}

// SectorBounds is the axis-aligned pixel box used for culling and
// hit-testing: a square centered on the anchor with half-width of the outer
// pixel radius plus a tolerance margin.
func SectorBounds(anchor Point, outerRadiusPx int, tolerance float64) Bounds {
	half := float64(outerRadiusPx) + tolerance
	return Bounds{
		Min: Point{anchor.X - half, anchor.Y - half},
		Max: Point{anchor.X + half, anchor.Y + half},
	}
}

// arcPoint is the vertex at radius r and angle theta around the anchor.
func arcPoint(anchor Point, r, theta float64) Point {
	return Point{
		X: r*math.Cos(theta) + anchor.X,
		Y: r*math.Sin(theta) + anchor.Y,
	}
}

func writePoint(b *strings.Builder, p Point) {
	writeCoord(b, p.X)
	b.WriteByte(' ')
	writeCoord(b, p.Y)
}

func writeCoord(b *strings.Builder, f float64) {
	b.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
}
