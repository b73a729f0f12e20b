package coursesearch

import (
	"log"
	"math"

	"github.com/golang/geo/r2"

	"github.com/fieldops/coursenav/pkg/course"
	"github.com/fieldops/coursenav/pkg/datastructure"
)

const none = int32(-1)

const lengthEpsilon = 1e-9

// node is the per-transition search state. Exactly one node exists per
// transition for the duration of a search; the arena is indexed by transition
// ID and prev/next are arena indices, not pointers.
type node struct {
	transitionID int32
	curveForward bool
	nextSegment  int32

	cost    float64
	prev    int32
	next    int32
	inQueue bool
}

// searchContext holds all mutable state of one planning call. It is built
// fresh per call and discarded, nothing leaks across invocations.
type searchContext struct {
	cfg    Config
	course *course.Graph

	startSegment int32
	endSegment   int32
	startPt      r2.Point
	endPt        r2.Point

	nodes    []node
	minCost  float64
	bestPath []datastructure.Pose
}

func newSearchContext(cfg Config, g *course.Graph, startSegment, endSegment int32,
	startPt, endPt r2.Point) *searchContext {
	return &searchContext{
		cfg:          cfg,
		course:       g,
		startSegment: startSegment,
		endSegment:   endSegment,
		startPt:      startPt,
		endPt:        endPt,
		minCost:      math.Inf(1),
	}
}

func (ctx *searchContext) initNodes() {
	ctx.nodes = make([]node, ctx.course.NumTransitions())
	for i := range ctx.nodes {
		ctx.nodes[i] = node{cost: math.Inf(1), prev: none, next: none}
	}
	for _, s := range ctx.course.Segments() {
		for _, tid := range s.ForwardTransitions {
			t := ctx.course.Transition(tid)
			ctx.nodes[tid].transitionID = tid
			ctx.nodes[tid].curveForward = true
			ctx.nodes[tid].nextSegment = t.TargetID
		}
		for _, tid := range s.BackwardTransitions {
			t := ctx.course.Transition(tid)
			ctx.nodes[tid].transitionID = tid
			ctx.nodes[tid].curveForward = false
			ctx.nodes[tid].nextSegment = t.SourceID
		}
	}
}

// entryPoint is where the node's curve begins in its traversal order.
func (ctx *searchContext) entryPoint(idx int32) r2.Point {
	n := &ctx.nodes[idx]
	return ctx.course.Transition(n.transitionID).EntryPoint(n.curveForward)
}

// exitPoint is where the node's curve ends in its traversal order.
func (ctx *searchContext) exitPoint(idx int32) r2.Point {
	n := &ctx.nodes[idx]
	return ctx.course.Transition(n.transitionID).ExitPoint(n.curveForward)
}

// startPointOnNextSegment is where travel along the node's resulting segment
// begins: the curve exit, or the projected start point if the resulting
// segment is the start segment.
func (ctx *searchContext) startPointOnNextSegment(idx int32) r2.Point {
	n := &ctx.nodes[idx]
	if n.nextSegment == ctx.startSegment {
		return ctx.startPt
	}
	return ctx.exitPoint(idx)
}

// endPointOnNextSegment is where travel along the node's resulting segment
// ends: the end point on the end segment, the entry of the successor's curve,
// or the far end of the segment when no successor is linked.
func (ctx *searchContext) endPointOnNextSegment(idx int32) r2.Point {
	n := &ctx.nodes[idx]
	if n.nextSegment == ctx.endSegment {
		return ctx.endPt
	}
	if n.next == none {
		seg := ctx.course.Segment(n.nextSegment)
		if n.curveForward {
			return seg.End
		}
		return seg.Start
	}
	return ctx.entryPoint(n.next)
}

func (ctx *searchContext) effectiveLengthOfNextSegment(idx int32) float64 {
	return ctx.endPointOnNextSegment(idx).Sub(ctx.startPointOnNextSegment(idx)).Norm()
}

// isSegmentForward reports whether moving from pos to target runs with the
// segment's defining direction. A near-zero movement vector cannot decide a
// direction and is logged, the sign test still answers forward.
func (ctx *searchContext) isSegmentForward(segmentID int32, pos, target r2.Point) bool {
	moveDir := target.Sub(pos)
	if moveDir.Norm() < 0.1 {
		log.Printf("effective segment size is small: %f", moveDir.Norm())
	}
	return ctx.course.Segment(segmentID).Direction().Dot(moveDir) >= 0
}

func (ctx *searchContext) startSegmentForward(idx int32) bool {
	return ctx.isSegmentForward(ctx.startSegment, ctx.startPt, ctx.entryPoint(idx))
}

func (ctx *searchContext) nextSegmentForward(idx int32) bool {
	n := &ctx.nodes[idx]
	return ctx.isSegmentForward(n.nextSegment,
		ctx.startPointOnNextSegment(idx), ctx.endPointOnNextSegment(idx))
}

// prevSegmentForward resolves the travel direction on the segment leading
// into this node's curve. For a chain head that is the start segment and the
// projected start point, otherwise the predecessor's exit.
func (ctx *searchContext) prevSegmentForward(idx int32) bool {
	n := &ctx.nodes[idx]
	if n.prev == none {
		return ctx.startSegmentForward(idx)
	}
	p := &ctx.nodes[n.prev]
	return ctx.isSegmentForward(p.nextSegment,
		ctx.startPointOnNextSegment(n.prev), ctx.entryPoint(idx))
}
