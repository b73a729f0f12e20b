package datastructure

import (
	"math"

	"github.com/golang/geo/r2"
)

// Pose is an oriented position in the world frame. Theta is the heading in
// radians, counter-clockwise from the positive x axis.
type Pose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

func NewPose(x, y, theta float64) Pose {
	return Pose{X: x, Y: y, Theta: theta}
}

func NewPoseFromPoint(p r2.Point, theta float64) Pose {
	return Pose{X: p.X, Y: p.Y, Theta: theta}
}

func (p Pose) Pos() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

// GridPose is a discretized pose on the collision grid. Dir indexes one of
// the eight 45-degree headings, 0 = +x, counting counter-clockwise.
type GridPose struct {
	X   int
	Y   int
	Dir int
}

func NewGridPose(x, y, dir int) GridPose {
	return GridPose{X: x, Y: y, Dir: dir}
}

// DirTheta returns the world heading of the discrete direction index.
func (g GridPose) DirTheta() float64 {
	return float64(g.Dir) * math.Pi / 4
}

// DirFromTheta snaps a world heading to the nearest of the eight discrete
// direction indices.
func DirFromTheta(theta float64) int {
	d := int(math.Round(theta/(math.Pi/4))) % 8
	if d < 0 {
		d += 8
	}
	return d
}
