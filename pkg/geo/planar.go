package geo

import (
	"math"

	"github.com/golang/geo/r2"
)

// YawFromDelta returns the heading of the vector from a to b.
func YawFromDelta(a, b r2.Point) float64 {
	d := b.Sub(a)
	return math.Atan2(d.Y, d.X)
}

func EuclideanDist(a, b r2.Point) float64 {
	return b.Sub(a).Norm()
}

// RotateOffset rotates the vector (dist, 0) by yaw, i.e. an offset of length
// dist pointing along the heading yaw.
func RotateOffset(dist, yaw float64) r2.Point {
	return r2.Point{X: dist * math.Cos(yaw), Y: dist * math.Sin(yaw)}
}

// ProjectOntoSegment returns the point on the segment (a,b) nearest to p.
func ProjectOntoSegment(a, b, p r2.Point) r2.Point {
	d := b.Sub(a)
	lenSq := d.Dot(d)
	if lenSq == 0 {
		return a
	}
	t := p.Sub(a).Dot(d) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(d.Mul(t))
}

// DistToSegment returns the distance from p to the segment (a,b).
func DistToSegment(a, b, p r2.Point) float64 {
	return EuclideanDist(ProjectOntoSegment(a, b, p), p)
}

// PolylineLength sums the straight-line lengths between consecutive points.
func PolylineLength(path []r2.Point) float64 {
	length := 0.0
	for i := 1; i < len(path); i++ {
		length += EuclideanDist(path[i-1], path[i])
	}
	return length
}

// AngleDiffMod returns the absolute angular difference between two headings
// modulo pi, so a heading and its reverse compare as equal. Field rows are
// drivable in both directions.
func AngleDiffMod(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), math.Pi)
	if d > math.Pi/2 {
		d = math.Pi - d
	}
	return d
}
