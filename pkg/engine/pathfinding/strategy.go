package pathfinding

import (
	"math"

	"github.com/fieldops/coursenav/pkg/course"
	"github.com/fieldops/coursenav/pkg/datastructure"
	"github.com/fieldops/coursenav/pkg/grid"
)

// GoalFunc reports whether a grid pose satisfies the goal condition.
type GoalFunc func(datastructure.GridPose) bool

// Strategy is one grid pathfinder variant. Callers try the no-turn variant
// first and fall back to the turning-enabled one with the same goal test.
type Strategy interface {
	FindPath(cg *grid.CollisionGrid, start datastructure.GridPose, goal GoalFunc) []datastructure.GridPose
}

// NewNoTurnStrategy returns a pathfinder that may only curve gradually, never
// rotate in place. With reversed set, the vehicle backs up instead of driving
// forward, for appendices that are read against the direction of travel.
func NewNoTurnStrategy(reversed bool) Strategy {
	return &gridSearch{allowSpin: false, reversed: reversed}
}

// NewTurningStrategy additionally allows in-place rotation at a fixed cost.
func NewTurningStrategy(reversed bool) Strategy {
	return &gridSearch{allowSpin: true, reversed: reversed}
}

// NearCourseGoal is true when the grid pose, converted to world coordinates,
// lies close to some course segment within the standard binding tolerances.
func NearCourseGoal(g *course.Graph, cg *grid.CollisionGrid, angleTolerance, distTolerance float64) GoalFunc {
	return func(gp datastructure.GridPose) bool {
		_, ok := g.FindClosestSegment(cg.WorldPose(gp), angleTolerance, distTolerance)
		return ok
	}
}

var dirDeltas = [8][2]int{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

func stepCost(dir int) float64 {
	if dir%2 == 1 {
		return math.Sqrt2
	}
	return 1
}
