package course

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"

	"github.com/fieldops/coursenav/pkg/datastructure"
)

// three parallel rows, 20m long, 2m apart:
//
//	y=4  2 ----------------
//	y=2  1 ----------------
//	y=0  0 ----------------
//	     x=0             x=20
func buildTestCourse() *Graph {
	rows := []Row{
		{Start: r2.Point{X: 0, Y: 0}, End: r2.Point{X: 20, Y: 0}},
		{Start: r2.Point{X: 0, Y: 2}, End: r2.Point{X: 20, Y: 2}},
		{Start: r2.Point{X: 0, Y: 4}, End: r2.Point{X: 20, Y: 4}},
	}
	return BuildBoustrophedonCourse(rows)
}

func TestBoustrophedonCourseStructure(t *testing.T) {
	g := buildTestCourse()

	assert.Equal(t, 3, g.NumSegments())
	// two headlands per row pair, each arc registered once per direction
	assert.Equal(t, 8, g.NumTransitions())

	s0 := g.Segment(0)
	assert.Len(t, s0.ForwardTransitions, 2)
	assert.Empty(t, s0.BackwardTransitions)

	s1 := g.Segment(1)
	assert.Len(t, s1.ForwardTransitions, 2)
	assert.Len(t, s1.BackwardTransitions, 2)

	s2 := g.Segment(2)
	assert.Empty(t, s2.ForwardTransitions)
	assert.Len(t, s2.BackwardTransitions, 2)
}

func TestTransitionEndpoints(t *testing.T) {
	g := buildTestCourse()

	far := g.Transition(g.Segment(0).ForwardTransitions[0])
	assert.Equal(t, r2.Point{X: 20, Y: 0}, far.EntryPoint(true))
	assert.Equal(t, r2.Point{X: 20, Y: 2}, far.ExitPoint(true))
	// backward traversal swaps entry and exit
	assert.Equal(t, far.EntryPoint(true), far.ExitPoint(false))
	assert.Equal(t, far.ExitPoint(true), far.EntryPoint(false))

	assert.Greater(t, far.ArcLength(), 2.0) // longer than the straight gap
}

func TestFindClosestSegment(t *testing.T) {
	g := buildTestCourse()

	seg, ok := g.FindClosestSegment(datastructure.NewPose(5, 0.2, 0), math.Pi/8, 0.5)
	assert.True(t, ok)
	assert.Equal(t, int32(0), seg.ID)

	// reverse heading still binds, rows are drivable both ways
	seg, ok = g.FindClosestSegment(datastructure.NewPose(5, 1.8, math.Pi), math.Pi/8, 0.5)
	assert.True(t, ok)
	assert.Equal(t, int32(1), seg.ID)

	// heading perpendicular to every row
	_, ok = g.FindClosestSegment(datastructure.NewPose(5, 0.2, math.Pi/2), math.Pi/8, 0.5)
	assert.False(t, ok)

	// too far from any row
	_, ok = g.FindClosestSegment(datastructure.NewPose(5, 1.0, 0), math.Pi/8, 0.5)
	assert.False(t, ok)
}

func TestFindClosestSegmentVerticalRow(t *testing.T) {
	// a vertical row has a zero-extent bounding box in x, the index pads it
	// to a sliver and still finds it
	g := NewGraph([]Segment{
		{ID: 0, Start: r2.Point{X: 5, Y: 0}, End: r2.Point{X: 5, Y: 10}},
	}, nil)

	seg, ok := g.FindClosestSegment(datastructure.NewPose(5.2, 4, math.Pi/2), math.Pi/8, 0.5)
	assert.True(t, ok)
	assert.Equal(t, int32(0), seg.ID)
}

func TestNearestPointOnSegment(t *testing.T) {
	g := buildTestCourse()

	p := g.NearestPointOnSegment(0, r2.Point{X: 7, Y: 0.3})
	assert.InDelta(t, 7, p.X, 1e-12)
	assert.InDelta(t, 0, p.Y, 1e-12)

	p = g.NearestPointOnSegment(0, r2.Point{X: 25, Y: 1})
	assert.Equal(t, r2.Point{X: 20, Y: 0}, p)
}

func TestSegmentYawAndDirection(t *testing.T) {
	g := buildTestCourse()
	assert.InDelta(t, 0, g.Segment(0).Yaw(), 1e-12)
	assert.Equal(t, r2.Point{X: 20, Y: 0}, g.Segment(0).Direction())
}
