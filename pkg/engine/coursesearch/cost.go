package coursesearch

import "github.com/golang/geo/r2"

// curveCost is the node's arc length, penalized when the curve is traversed
// backward.
func (ctx *searchContext) curveCost(idx int32) float64 {
	n := &ctx.nodes[idx]
	arc := ctx.course.Transition(n.transitionID).ArcLength()
	if n.curveForward {
		return arc
	}
	return ctx.cfg.BackwardPenaltyFactor * arc
}

// straightCost prices the straight hop between from and to on the node's
// resulting segment: Euclidean distance, penalized when driven against the
// segment direction, plus the turning surcharge.
//
// A single turn (direction differs from the preceding hop) costs one turning
// stub and one penalty. A double turn (direction kept, but the curve runs
// against it, so the maneuver reverses twice) costs both twice.
func (ctx *searchContext) straightCost(idx int32, from, to r2.Point) float64 {
	n := &ctx.nodes[idx]

	segmentForward := ctx.isSegmentForward(n.nextSegment, from, to)
	cost := to.Sub(from).Norm()
	if !segmentForward {
		cost *= ctx.cfg.BackwardPenaltyFactor
	}

	if ctx.prevSegmentForward(idx) != segmentForward {
		// single turn
		cost += ctx.cfg.TurningStraightSegment
		cost += ctx.cfg.TurningPenalty
	} else if segmentForward != n.curveForward {
		// double turn
		cost += 2 * ctx.cfg.TurningStraightSegment
		cost += 2 * ctx.cfg.TurningPenalty
	}

	return cost
}
