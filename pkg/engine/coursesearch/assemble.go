package coursesearch

import (
	"log"
	"math"

	"github.com/golang/geo/r2"

	"github.com/fieldops/coursenav/pkg/datastructure"
	"github.com/fieldops/coursenav/pkg/geo"
)

// generatePath turns a finished transition chain into the oriented pose
// sequence a vehicle can follow. Each hop contributes its curve plus, where
// the travel direction flips, the straight turning stub that gives the
// vehicle room to reverse. The ordering of stub and curve depends on which
// side of the curve the reversal happens.
func (ctx *searchContext) generatePath(chain []int32) []datastructure.Pose {
	res := make([]datastructure.Pose, 0, 2+4*len(chain))
	res = append(res, ctx.boundaryPose(ctx.startSegment, ctx.startPt))

	segmentForward := ctx.startSegmentForward(chain[0])

	for _, idx := range chain {
		n := &ctx.nodes[idx]
		t := ctx.course.Transition(n.transitionID)

		if ctx.effectiveLengthOfNextSegment(idx) < lengthEpsilon {
			// degenerate hop on the resulting segment, curve only
			res = ctx.insertCurveSegment(res, idx)
			continue
		}

		nextForward := ctx.nextSegmentForward(idx)

		if segmentForward == nextForward {
			if n.curveForward == nextForward {
				res = ctx.insertCurveSegment(res, idx)
			} else {
				// double turn: pull straight before the curve, run the
				// curve against the travel direction, recover after it
				res = ctx.extendWithStraightTurningSegment(res, t.EntryPoint(n.curveForward))
				res = ctx.insertCurveSegment(res, idx)
				if n.curveForward {
					res = ctx.extendAlongTargetSegment(res, idx)
				} else {
					res = ctx.extendAlongSourceSegment(res, idx)
				}
			}
		} else {
			switch {
			case segmentForward && n.curveForward:
				res = ctx.insertCurveSegment(res, idx)
				res = ctx.extendAlongTargetSegment(res, idx)
			case segmentForward && !n.curveForward:
				res = ctx.extendAlongTargetSegment(res, idx)
				res = ctx.insertCurveSegment(res, idx)
			case !segmentForward && n.curveForward:
				res = ctx.extendAlongSourceSegment(res, idx)
				res = ctx.insertCurveSegment(res, idx)
			default:
				res = ctx.insertCurveSegment(res, idx)
				res = ctx.extendAlongSourceSegment(res, idx)
			}
		}

		segmentForward = nextForward
	}

	res = append(res, ctx.boundaryPose(ctx.endSegment, ctx.endPt))
	return res
}

// boundaryPose places a pose at pt headed along the segment.
func (ctx *searchContext) boundaryPose(segmentID int32, pt r2.Point) datastructure.Pose {
	return datastructure.NewPoseFromPoint(pt, ctx.course.Segment(segmentID).Yaw())
}

// extendAlongTargetSegment appends the turning stub past the curve's target
// end, pointed along the target segment.
func (ctx *searchContext) extendAlongTargetSegment(res []datastructure.Pose, idx int32) []datastructure.Pose {
	n := &ctx.nodes[idx]
	t := ctx.course.Transition(n.transitionID)
	yaw := ctx.course.Segment(t.TargetID).Yaw()
	pt := t.Path[len(t.Path)-1].Add(geo.RotateOffset(ctx.cfg.TurningStraightSegment, yaw))
	return append(res, datastructure.NewPoseFromPoint(pt, yaw))
}

// extendAlongSourceSegment appends the turning stub past the curve's source
// end, pointed back along the source segment.
func (ctx *searchContext) extendAlongSourceSegment(res []datastructure.Pose, idx int32) []datastructure.Pose {
	n := &ctx.nodes[idx]
	t := ctx.course.Transition(n.transitionID)
	yaw := ctx.course.Segment(t.SourceID).Yaw() + math.Pi
	pt := t.Path[0].Add(geo.RotateOffset(ctx.cfg.TurningStraightSegment, yaw))
	return append(res, datastructure.NewPoseFromPoint(pt, yaw))
}

// extendWithStraightTurningSegment appends a stub that overshoots pt by the
// turning clearance, continuing the direction the path was already heading.
func (ctx *searchContext) extendWithStraightTurningSegment(res []datastructure.Pose, pt r2.Point) []datastructure.Pose {
	prev := res[len(res)-1].Pos()
	dir := pt.Sub(prev)
	norm := dir.Norm()
	if norm < lengthEpsilon {
		log.Printf("skipping degenerate turning segment at (%f, %f)", pt.X, pt.Y)
		return res
	}
	pos := pt.Add(dir.Mul(ctx.cfg.TurningStraightSegment / norm))
	return append(res, datastructure.NewPoseFromPoint(pos, math.Atan2(dir.Y, dir.X)))
}

// insertCurveSegment renders the curve point by point in the node's traversal
// order, each pose headed along the local polyline delta.
func (ctx *searchContext) insertCurveSegment(res []datastructure.Pose, idx int32) []datastructure.Pose {
	n := &ctx.nodes[idx]
	path := ctx.course.Transition(n.transitionID).Path
	if n.curveForward {
		for j := 1; j < len(path); j++ {
			yaw := geo.YawFromDelta(path[j-1], path[j])
			res = append(res, datastructure.NewPoseFromPoint(path[j], yaw))
		}
	} else {
		for j := len(path) - 2; j >= 0; j-- {
			yaw := geo.YawFromDelta(path[j+1], path[j])
			res = append(res, datastructure.NewPoseFromPoint(path[j], yaw))
		}
	}
	return res
}
