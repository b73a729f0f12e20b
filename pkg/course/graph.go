package course

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/golang/geo/r2"

	"github.com/fieldops/coursenav/pkg/datastructure"
	"github.com/fieldops/coursenav/pkg/geo"
)

// Segment is one straight course element (a field row) with a defined forward
// direction from Start to End. The adjacency lists hold transition IDs:
// ForwardTransitions are curves leaving this segment traversed source->target,
// BackwardTransitions are curves arriving here that can be traversed
// target->source. A curve usable from both sides appears as two distinct
// transitions, so per-transition search state can never alias.
type Segment struct {
	ID    int32
	Start r2.Point
	End   r2.Point

	ForwardTransitions  []int32
	BackwardTransitions []int32
}

func (s *Segment) Direction() r2.Point {
	return s.End.Sub(s.Start)
}

func (s *Segment) Yaw() float64 {
	return geo.YawFromDelta(s.Start, s.End)
}

// Transition is a curved arc between two segments, an ordered polyline from a
// point on the source segment to a point on the target segment.
type Transition struct {
	ID       int32
	SourceID int32
	TargetID int32
	Path     []r2.Point
}

func (t *Transition) ArcLength() float64 {
	return geo.PolylineLength(t.Path)
}

// EntryPoint is the first path point in the given traversal order.
func (t *Transition) EntryPoint(curveForward bool) r2.Point {
	if curveForward {
		return t.Path[0]
	}
	return t.Path[len(t.Path)-1]
}

// ExitPoint is the last path point in the given traversal order.
func (t *Transition) ExitPoint(curveForward bool) r2.Point {
	if curveForward {
		return t.Path[len(t.Path)-1]
	}
	return t.Path[0]
}

type segmentEntry struct {
	seg  *Segment
	rect rtreego.Rect
}

func (e *segmentEntry) Bounds() rtreego.Rect {
	return e.rect
}

// Graph is the read-only course graph. Segment and transition IDs index their
// slices directly.
type Graph struct {
	segments    []Segment
	transitions []Transition
	index       *rtreego.Rtree
}

func NewGraph(segments []Segment, transitions []Transition) *Graph {
	g := &Graph{
		segments:    segments,
		transitions: transitions,
		index:       rtreego.NewTree(2, 2, 16),
	}
	for i := range g.segments {
		s := &g.segments[i]
		g.index.Insert(&segmentEntry{seg: s, rect: segmentRect(s, 0)})
	}
	return g
}

func (g *Graph) Segment(id int32) *Segment {
	return &g.segments[id]
}

func (g *Graph) Transition(id int32) *Transition {
	return &g.transitions[id]
}

func (g *Graph) Segments() []Segment {
	return g.segments
}

func (g *Graph) NumSegments() int {
	return len(g.segments)
}

func (g *Graph) NumTransitions() int {
	return len(g.transitions)
}

// FindClosestSegment returns the segment nearest to the pose whose direction
// is within angleTolerance of the pose heading (modulo pi, rows are drivable
// both ways) and whose distance to the pose is within distTolerance.
func (g *Graph) FindClosestSegment(pose datastructure.Pose, angleTolerance, distTolerance float64) (*Segment, bool) {
	p := pose.Pos()
	query, err := rtreego.NewRect(
		rtreego.Point{p.X - distTolerance, p.Y - distTolerance},
		[]float64{2 * distTolerance, 2 * distTolerance},
	)
	if err != nil {
		return nil, false
	}

	var best *Segment
	bestDist := math.Inf(1)
	for _, hit := range g.index.SearchIntersect(query) {
		s := hit.(*segmentEntry).seg
		if geo.AngleDiffMod(s.Yaw(), pose.Theta) > angleTolerance {
			continue
		}
		dist := geo.DistToSegment(s.Start, s.End, p)
		if dist <= distTolerance && dist < bestDist {
			bestDist = dist
			best = s
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

// NearestPointOnSegment projects p onto the segment with the given ID.
func (g *Graph) NearestPointOnSegment(id int32, p r2.Point) r2.Point {
	s := g.Segment(id)
	return geo.ProjectOntoSegment(s.Start, s.End, p)
}

func segmentRect(s *Segment, pad float64) rtreego.Rect {
	minX := math.Min(s.Start.X, s.End.X) - pad
	minY := math.Min(s.Start.Y, s.End.Y) - pad
	lenX := math.Abs(s.End.X-s.Start.X) + 2*pad
	lenY := math.Abs(s.End.Y-s.Start.Y) + 2*pad

	// rtreego rejects zero-extent rectangles, axis-aligned rows need a sliver
	const minExtent = 1e-6
	if lenX < minExtent {
		lenX = minExtent
	}
	if lenY < minExtent {
		lenY = minExtent
	}
	rect, err := rtreego.NewRect(rtreego.Point{minX, minY}, []float64{lenX, lenY})
	if err != nil {
		panic(err)
	}
	return rect
}
