package course

import (
	"math"

	"github.com/golang/geo/r2"
)

// Row is one straight field row, driven forward from Start to End.
type Row struct {
	Start r2.Point
	End   r2.Point
}

const defaultArcPoints = 9

// BuildBoustrophedonCourse builds a course graph from parallel rows:
// one segment per row plus semicircular headland arcs between adjacent rows
// on both headlands. Every arc is registered twice, once in the source
// segment's forward list and once as a distinct transition in the target
// segment's backward list, so each direction of use has its own identity.
func BuildBoustrophedonCourse(rows []Row) *Graph {
	segments := make([]Segment, len(rows))
	for i, r := range rows {
		segments[i] = Segment{ID: int32(i), Start: r.Start, End: r.End}
	}

	transitions := make([]Transition, 0, 4*(len(rows)-1))
	addArc := func(sourceID, targetID int32, path []r2.Point) {
		forward := Transition{
			ID:       int32(len(transitions)),
			SourceID: sourceID,
			TargetID: targetID,
			Path:     path,
		}
		transitions = append(transitions, forward)
		segments[sourceID].ForwardTransitions = append(segments[sourceID].ForwardTransitions, forward.ID)

		backward := Transition{
			ID:       int32(len(transitions)),
			SourceID: sourceID,
			TargetID: targetID,
			Path:     path,
		}
		transitions = append(transitions, backward)
		segments[targetID].BackwardTransitions = append(segments[targetID].BackwardTransitions, backward.ID)
	}

	for i := 0; i+1 < len(rows); i++ {
		src := int32(i)
		dst := int32(i + 1)
		rowDir := normalize(rows[i].End.Sub(rows[i].Start))

		// far headland, arc bulges beyond the row ends
		addArc(src, dst, semicircle(rows[i].End, rows[i+1].End, rowDir, defaultArcPoints))
		// near headland, arc bulges behind the row starts
		addArc(src, dst, semicircle(rows[i].Start, rows[i+1].Start, rowDir.Mul(-1), defaultArcPoints))
	}

	return NewGraph(segments, transitions)
}

// semicircle samples a half-circle polyline from a to b bulging toward the
// unit vector out.
func semicircle(a, b, out r2.Point, n int) []r2.Point {
	center := a.Add(b).Mul(0.5)
	radius := b.Sub(a).Norm() / 2
	u := normalize(b.Sub(a))

	path := make([]r2.Point, 0, n)
	for k := 0; k < n; k++ {
		theta := math.Pi * float64(k) / float64(n-1)
		p := center.Sub(u.Mul(radius * math.Cos(theta))).Add(out.Mul(radius * math.Sin(theta)))
		path = append(path, p)
	}
	return path
}

func normalize(p r2.Point) r2.Point {
	n := p.Norm()
	if n == 0 {
		return p
	}
	return p.Mul(1 / n)
}
