package coursesearch

import (
	"log"
	"strings"

	"github.com/fieldops/coursenav/pkg/datastructure"
	"github.com/fieldops/coursenav/pkg/util"
)

// run performs the least-cost search over the transition arena. Reaching the
// end segment does not stop the loop: the cost of connecting a candidate to
// the actual end point is only added at finalization, so the first node to
// reach the end segment is not necessarily globally optimal. The loop runs
// until the frontier is empty and keeps a running minimum over all candidates.
func (ctx *searchContext) run() {
	ctx.initNodes()

	pq := datastructure.NewMinHeap[int32]()
	ctx.enqueueStartingNodes(pq)

	for pq.Size() > 0 {
		current, err := pq.ExtractMin()
		if err != nil {
			break
		}
		idx := current.Item
		n := &ctx.nodes[idx]
		n.inQueue = false

		if n.nextSegment == ctx.endSegment {
			ctx.generatePathCandidate(idx)
			continue
		}

		seg := ctx.course.Segment(n.nextSegment)
		for _, transitions := range [][]int32{seg.ForwardTransitions, seg.BackwardTransitions} {
			for _, neighborID := range transitions {
				neighbor := &ctx.nodes[neighborID]

				newCost := n.cost +
					ctx.curveCost(idx) +
					ctx.straightCost(idx, ctx.startPointOnNextSegment(idx), ctx.entryPoint(neighborID))

				if newCost < neighbor.cost {
					neighbor.prev = idx
					n.next = neighborID
					neighbor.cost = newCost

					item := datastructure.PriorityQueueNode[int32]{Rank: newCost, Item: neighborID}
					if neighbor.inQueue {
						pq.DecreaseKey(item)
					} else {
						pq.Insert(item)
						neighbor.inQueue = true
					}
				}
			}
		}
	}
}

// enqueueStartingNodes seeds the frontier with every transition reachable
// from the start segment, priced from the projected start point to the
// transition entry. The turning surcharge relative to the start segment's
// direction is already included here.
func (ctx *searchContext) enqueueStartingNodes(pq *datastructure.MinHeap[int32]) {
	seg := ctx.course.Segment(ctx.startSegment)
	for _, transitions := range [][]int32{seg.ForwardTransitions, seg.BackwardTransitions} {
		for _, tid := range transitions {
			n := &ctx.nodes[tid]
			n.cost = ctx.straightCost(tid, ctx.startPt, ctx.entryPoint(tid))
			pq.Insert(datastructure.PriorityQueueNode[int32]{Rank: n.cost, Item: tid})
			n.inQueue = true
		}
	}
}

// generatePathCandidate finalizes a node whose resulting segment is the end
// segment: the deferred straight cost to the actual end point joins the total
// here, and only an improvement over the running minimum is assembled.
// The node's recorded cost is left untouched so later relaxations still see
// its true value.
func (ctx *searchContext) generatePathCandidate(idx int32) {
	additional := ctx.straightCost(idx, ctx.startPointOnNextSegment(idx), ctx.endPt)
	total := ctx.nodes[idx].cost + additional
	if total >= ctx.minCost {
		return
	}
	ctx.minCost = total

	chain := make([]int32, 0)
	for tmp := idx; tmp != none; tmp = ctx.nodes[tmp].prev {
		chain = append(chain, tmp)
		if p := ctx.nodes[tmp].prev; p != none {
			// repair forward links for assembly
			ctx.nodes[p].next = tmp
		}
	}
	chain = util.ReverseG(chain)

	log.Printf("found path candidate with signature %s and cost %f", ctx.signature(chain), total)

	ctx.bestPath = ctx.generatePath(chain)
}

// signature renders the travel direction of every hop as > or <, prefixed by
// the direction on the start segment. Debug aid only.
func (ctx *searchContext) signature(chain []int32) string {
	var sb strings.Builder
	if ctx.startSegmentForward(chain[0]) {
		sb.WriteByte('>')
	} else {
		sb.WriteByte('<')
	}
	for _, idx := range chain {
		if ctx.nextSegmentForward(idx) {
			sb.WriteByte('>')
		} else {
			sb.WriteByte('<')
		}
	}
	return sb.String()
}
