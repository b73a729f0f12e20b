package snap

import (
	"log"
	"math"

	"github.com/golang/geo/r2"

	"github.com/fieldops/coursenav/pkg/course"
	"github.com/fieldops/coursenav/pkg/datastructure"
	"github.com/fieldops/coursenav/pkg/engine/pathfinding"
	"github.com/fieldops/coursenav/pkg/grid"
)

const (
	// DefaultAngleTolerance bounds how far a pose heading may deviate from a
	// row direction (modulo pi) and still bind to it.
	DefaultAngleTolerance = math.Pi / 8
	// DefaultDistTolerance bounds the lateral distance to the row in meters.
	DefaultDistTolerance = 0.5
)

// BindToSegment snaps a pose to the nearest course segment within the
// standard tolerances and returns the segment ID and the projected point on
// it.
func BindToSegment(g *course.Graph, pose datastructure.Pose) (int32, r2.Point, bool) {
	seg, ok := g.FindClosestSegment(pose, DefaultAngleTolerance, DefaultDistTolerance)
	if !ok {
		return 0, r2.Point{}, false
	}
	return seg.ID, g.NearestPointOnSegment(seg.ID, pose.Pos()), true
}

// AppendixFinder connects an off-course pose to the course over the collision
// grid. The cheap no-turn pathfinder runs first; only when it fails does the
// turning-enabled variant retry the same goal.
type AppendixFinder struct {
	angleTolerance float64
	distTolerance  float64
}

func NewAppendixFinder() *AppendixFinder {
	return &AppendixFinder{
		angleTolerance: DefaultAngleTolerance,
		distTolerance:  DefaultDistTolerance,
	}
}

// FindAppendix returns the world-frame connector from pose to the nearest
// reachable point on the course. A pose that already binds to a segment needs
// no connector and yields an empty appendix. With reversed set the grid search
// backs up instead of driving forward, used for the connector at the end of a
// mission which is driven course-to-pose.
func (f *AppendixFinder) FindAppendix(g *course.Graph, cg *grid.CollisionGrid,
	pose datastructure.Pose, reversed bool) ([]datastructure.Pose, bool) {

	if _, ok := g.FindClosestSegment(pose, f.angleTolerance, f.distTolerance); ok {
		return nil, true
	}

	start, ok := cg.GridPose(pose)
	if !ok {
		log.Printf("appendix start pose (%f, %f) is outside the map", pose.X, pose.Y)
		return nil, false
	}
	goal := pathfinding.NearCourseGoal(g, cg, f.angleTolerance, f.distTolerance)

	gridPath := pathfinding.NewNoTurnStrategy(reversed).FindPath(cg, start, goal)
	if gridPath == nil {
		log.Printf("no-turn appendix search failed, retrying with turning allowed")
		gridPath = pathfinding.NewTurningStrategy(reversed).FindPath(cg, start, goal)
	}
	if gridPath == nil {
		log.Printf("no appendix found from pose (%f, %f)", pose.X, pose.Y)
		return nil, false
	}

	res := make([]datastructure.Pose, 0, len(gridPath))
	for _, gp := range gridPath {
		res = append(res, cg.WorldPose(gp))
	}
	return res, true
}
