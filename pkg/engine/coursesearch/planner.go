package coursesearch

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/fieldops/coursenav/pkg/course"
	"github.com/fieldops/coursenav/pkg/datastructure"
	"github.com/fieldops/coursenav/pkg/geo"
)

type Config struct {
	// BackwardPenaltyFactor multiplies the cost of any backward traversal.
	BackwardPenaltyFactor float64
	// TurningPenalty is the fixed cost charged per direction reversal.
	TurningPenalty float64
	// TurningStraightSegment is the clearance distance the vehicle pulls
	// straight at a reversal, charged as cost and rendered as a stub pose.
	TurningStraightSegment float64
}

func DefaultConfig() Config {
	return Config{
		BackwardPenaltyFactor:  2.5,
		TurningPenalty:         5.0,
		TurningStraightSegment: 0.7,
	}
}

// Planner searches the course graph for the least-cost drivable path between
// two points already bound to course segments. It holds only configuration,
// all search state lives in a per-call context, so a single Planner is safe
// to share.
type Planner struct {
	cfg Config
}

func NewPlanner(cfg Config) *Planner {
	return &Planner{cfg: cfg}
}

// FindCoursePath returns the oriented pose sequence from startPt on
// startSegment to endPt on endSegment, its cost, and whether a path exists.
// When both points lie on the same segment the search is skipped entirely.
func (p *Planner) FindCoursePath(g *course.Graph, startSegment, endSegment int32,
	startPt, endPt r2.Point) ([]datastructure.Pose, float64, bool) {

	if startSegment == endSegment {
		seg := g.Segment(startSegment)
		return p.DirectPath(g, startSegment, startPt, endPt), p.directCost(seg, startPt, endPt), true
	}

	ctx := newSearchContext(p.cfg, g, startSegment, endSegment, startPt, endPt)
	ctx.run()

	if math.IsInf(ctx.minCost, 1) {
		return nil, 0, false
	}
	return ctx.bestPath, ctx.minCost, true
}

// DirectPath is the same-segment short-circuit: just the two boundary poses,
// both headed along the segment.
func (p *Planner) DirectPath(g *course.Graph, segmentID int32, startPt, endPt r2.Point) []datastructure.Pose {
	yaw := g.Segment(segmentID).Yaw()
	return []datastructure.Pose{
		datastructure.NewPoseFromPoint(startPt, yaw),
		datastructure.NewPoseFromPoint(endPt, yaw),
	}
}

func (p *Planner) directCost(seg *course.Segment, startPt, endPt r2.Point) float64 {
	dist := geo.EuclideanDist(startPt, endPt)
	if seg.Direction().Dot(endPt.Sub(startPt)) >= 0 {
		return dist
	}
	return p.cfg.BackwardPenaltyFactor * dist
}

// Combine concatenates the start appendix, the course path and the end
// appendix. With both appendices empty the centre is returned unchanged.
func Combine(start, centre, end []datastructure.Pose) []datastructure.Pose {
	if len(start) == 0 && len(end) == 0 {
		return centre
	}
	res := make([]datastructure.Pose, 0, len(start)+len(centre)+len(end))
	res = append(res, start...)
	res = append(res, centre...)
	res = append(res, end...)
	return res
}
