package coursesearch

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"

	"github.com/fieldops/coursenav/pkg/course"
	"github.com/fieldops/coursenav/pkg/datastructure"
)

// three parallel rows, 20m long, 2m apart, semicircular headland arcs:
//
//	y=4  2 ----------------
//	y=2  1 ----------------
//	y=0  0 ----------------
//	     x=0             x=20
func buildTestCourse() *course.Graph {
	rows := []course.Row{
		{Start: r2.Point{X: 0, Y: 0}, End: r2.Point{X: 20, Y: 0}},
		{Start: r2.Point{X: 0, Y: 2}, End: r2.Point{X: 20, Y: 2}},
		{Start: r2.Point{X: 0, Y: 4}, End: r2.Point{X: 20, Y: 4}},
	}
	return course.BuildBoustrophedonCourse(rows)
}

func TestSameSegmentDirectPath(t *testing.T) {
	g := buildTestCourse()
	p := NewPlanner(DefaultConfig())

	path, cost, ok := p.FindCoursePath(g, 0, 0, r2.Point{X: 2, Y: 0}, r2.Point{X: 8, Y: 0})
	assert.True(t, ok)
	assert.InDelta(t, 6, cost, 1e-9)
	assert.Len(t, path, 2)
	assert.Equal(t, datastructure.NewPose(2, 0, 0), path[0])
	assert.Equal(t, datastructure.NewPose(8, 0, 0), path[1])
}

func TestSameSegmentBackwardPenalty(t *testing.T) {
	g := buildTestCourse()
	p := NewPlanner(DefaultConfig())

	_, cost, ok := p.FindCoursePath(g, 0, 0, r2.Point{X: 8, Y: 0}, r2.Point{X: 2, Y: 0})
	assert.True(t, ok)
	assert.InDelta(t, 15, cost, 1e-9) // 6m against the row direction, x2.5
}

// Driving from (18,0) on row 0 to (18,2) on row 1: forward 2m to the far
// headland, around the arc, then 2m backward on row 1 with one direction
// reversal. The arc length of the connecting curve is deliberately not part
// of the candidate total.
func TestAdjacentRowCost(t *testing.T) {
	g := buildTestCourse()
	p := NewPlanner(DefaultConfig())

	path, cost, ok := p.FindCoursePath(g, 0, 1, r2.Point{X: 18, Y: 0}, r2.Point{X: 18, Y: 2})
	assert.True(t, ok)
	// 2 (forward to the headland) + 2*2.5 (backward on row 1) + 0.7 + 5.0 (one reversal)
	assert.InDelta(t, 12.7, cost, 1e-9)

	assert.Equal(t, datastructure.NewPose(18, 0, 0), path[0])
	last := path[len(path)-1]
	assert.Equal(t, datastructure.NewPose(18, 2, 0), last)
}

func TestAdjacentRowPathShape(t *testing.T) {
	g := buildTestCourse()
	p := NewPlanner(DefaultConfig())

	path, _, ok := p.FindCoursePath(g, 0, 1, r2.Point{X: 18, Y: 0}, r2.Point{X: 18, Y: 2})
	assert.True(t, ok)

	// the reversal stub extends past the curve end along row 1
	foundStub := false
	for _, pose := range path {
		if math.Abs(pose.X-20.7) < 1e-9 && math.Abs(pose.Y-2) < 1e-9 {
			foundStub = true
		}
	}
	assert.True(t, foundStub)

	// the curve is rendered point by point, the path is more than endpoints
	assert.Greater(t, len(path), 4)
}

func TestTurnSurchargeConfigurable(t *testing.T) {
	g := buildTestCourse()
	p := NewPlanner(Config{
		BackwardPenaltyFactor:  1.0,
		TurningPenalty:         0,
		TurningStraightSegment: 0,
	})

	_, cost, ok := p.FindCoursePath(g, 0, 1, r2.Point{X: 18, Y: 0}, r2.Point{X: 18, Y: 2})
	assert.True(t, ok)
	// without penalties only the straight hops remain
	assert.InDelta(t, 4, cost, 1e-9)
}

// Ending exactly at the curve exit keeps the whole route in one direction:
// no reversal, no surcharge, and the hop on row 1 is degenerate so only the
// curve geometry is rendered between the boundary poses.
func TestNoReversalRouteHasNoSurcharge(t *testing.T) {
	g := buildTestCourse()
	p := NewPlanner(DefaultConfig())

	path, cost, ok := p.FindCoursePath(g, 0, 1, r2.Point{X: 18, Y: 0}, r2.Point{X: 20, Y: 2})
	assert.True(t, ok)
	assert.InDelta(t, 2, cost, 1e-9)

	// boundary pose + 8 curve poses + boundary pose
	assert.Len(t, path, 10)
	assert.Equal(t, datastructure.NewPose(18, 0, 0), path[0])
	assert.Equal(t, datastructure.NewPose(20, 2, 0), path[len(path)-1])
}

// With two rows the end segment is reachable through both headlands. The
// near-headland node is dequeued first (its seed hop is short), but its
// deferred end connection is long; the far-headland node dequeued later
// yields the cheaper total. The frontier must drain fully before the
// running minimum is final.
func TestLaterGoalCandidateWins(t *testing.T) {
	g := course.BuildBoustrophedonCourse([]course.Row{
		{Start: r2.Point{X: 0, Y: 0}, End: r2.Point{X: 20, Y: 0}},
		{Start: r2.Point{X: 0, Y: 2}, End: r2.Point{X: 20, Y: 2}},
	})
	p := NewPlanner(DefaultConfig())

	path, cost, ok := p.FindCoursePath(g, 0, 1, r2.Point{X: 2, Y: 0}, r2.Point{X: 17, Y: 2})
	assert.True(t, ok)
	// far headland: 18 forward + 3*2.5 backward + 0.7 + 5.0 (one reversal).
	// The near-headland route connects first at 39.1 and loses.
	assert.InDelta(t, 31.2, cost, 1e-9)

	// the winning route rounds the far headland, past x=20
	maxX := 0.0
	for _, pose := range path {
		maxX = math.Max(maxX, pose.X)
	}
	assert.Greater(t, maxX, 20.0)
}

// A single curve registered against its target: travel on both rows runs
// with the row direction, but the curve itself must be taken target to
// source. Both hops around it reverse twice, each charging the turning
// surcharge two times, and the rendered path pulls a straight stub before
// the curve and recovers with one after it.
func TestDoubleTurnCostAndStubs(t *testing.T) {
	segments := []course.Segment{
		{ID: 0, Start: r2.Point{X: 0, Y: 0}, End: r2.Point{X: 10, Y: 0}, BackwardTransitions: []int32{0}},
		{ID: 1, Start: r2.Point{X: 0, Y: 2}, End: r2.Point{X: 10, Y: 2}},
	}
	transitions := []course.Transition{
		{ID: 0, SourceID: 1, TargetID: 0, Path: []r2.Point{{X: 6, Y: 2}, {X: 6, Y: 1}, {X: 6, Y: 0}}},
	}
	g := course.NewGraph(segments, transitions)
	p := NewPlanner(DefaultConfig())

	path, cost, ok := p.FindCoursePath(g, 0, 1, r2.Point{X: 2, Y: 0}, r2.Point{X: 9, Y: 2})
	assert.True(t, ok)
	// 4 + 3 straight, plus 2*(0.7+5.0) on the hop into the curve and again
	// on the hop out of it
	assert.InDelta(t, 29.8, cost, 1e-9)

	assert.Len(t, path, 6)
	assert.Equal(t, datastructure.NewPose(2, 0, 0), path[0])
	// stub overshooting the curve entry, still headed along row 0
	assert.InDelta(t, 6.7, path[1].X, 1e-9)
	assert.InDelta(t, 0, path[1].Y, 1e-9)
	assert.InDelta(t, 0, path[1].Theta, 1e-9)
	// recovery stub past the curve's source end, headed back along row 1
	assert.InDelta(t, 5.3, path[4].X, 1e-9)
	assert.InDelta(t, 2, path[4].Y, 1e-9)
	assert.InDelta(t, math.Pi, path[4].Theta, 1e-9)
	assert.Equal(t, datastructure.NewPose(9, 2, 0), path[len(path)-1])
}

func TestTwoRowHopPath(t *testing.T) {
	g := buildTestCourse()
	p := NewPlanner(DefaultConfig())

	path, cost, ok := p.FindCoursePath(g, 0, 2, r2.Point{X: 18, Y: 0}, r2.Point{X: 18, Y: 4})
	assert.True(t, ok)
	assert.Greater(t, cost, 12.7)
	assert.Equal(t, datastructure.NewPose(18, 0, 0), path[0])
	assert.Equal(t, datastructure.NewPose(18, 4, 0), path[len(path)-1])
}

func TestPlannerIsStateless(t *testing.T) {
	g := buildTestCourse()
	p := NewPlanner(DefaultConfig())

	path1, cost1, ok1 := p.FindCoursePath(g, 0, 2, r2.Point{X: 3, Y: 0}, r2.Point{X: 17, Y: 4})
	path2, cost2, ok2 := p.FindCoursePath(g, 0, 2, r2.Point{X: 3, Y: 0}, r2.Point{X: 17, Y: 4})
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, cost1, cost2)
	assert.Equal(t, path1, path2)
}

func TestCombine(t *testing.T) {
	centre := []datastructure.Pose{
		datastructure.NewPose(1, 1, 0),
		datastructure.NewPose(2, 2, 0),
	}
	assert.Equal(t, centre, Combine(nil, centre, nil))

	start := []datastructure.Pose{datastructure.NewPose(0, 0, 0)}
	end := []datastructure.Pose{datastructure.NewPose(3, 3, 0)}
	full := Combine(start, centre, end)
	assert.Len(t, full, 4)
	assert.Equal(t, start[0], full[0])
	assert.Equal(t, end[0], full[3])
}
