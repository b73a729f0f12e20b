package pathfinding

import (
	"github.com/fieldops/coursenav/pkg/datastructure"
	"github.com/fieldops/coursenav/pkg/grid"
	"github.com/fieldops/coursenav/pkg/util"
)

const spinCost = 0.4

type gridSearch struct {
	allowSpin bool
	reversed  bool
}

// FindPath runs a least-cost search over (cell, heading) states until the
// goal test accepts a state or the reachable space is exhausted. Headings may
// change by at most 45 degrees per step; the turning variant may also rotate
// in place without moving.
func (gs *gridSearch) FindPath(cg *grid.CollisionGrid, start datastructure.GridPose, goal GoalFunc) []datastructure.GridPose {
	if !cg.InBounds(start.X, start.Y) {
		return nil
	}

	width := cg.Width()
	key := func(p datastructure.GridPose) int64 {
		return (int64(p.Y)*int64(width)+int64(p.X))*8 + int64(p.Dir)
	}

	pq := datastructure.NewMinHeap[int64]()
	costSoFar := make(map[int64]float64)
	cameFrom := make(map[int64]int64)
	states := make(map[int64]datastructure.GridPose)
	visited := make(map[int64]struct{})

	startKey := key(start)
	costSoFar[startKey] = 0
	states[startKey] = start
	cameFrom[startKey] = -1
	pq.Insert(datastructure.PriorityQueueNode[int64]{Rank: 0, Item: startKey})

	relax := func(currentKey int64, next datastructure.GridPose, cost float64) {
		nextKey := key(next)
		if _, done := visited[nextKey]; done {
			return
		}
		if !cg.IsTraversable(cg.WorldPose(next)) {
			return
		}
		newCost := costSoFar[currentKey] + cost
		old, seen := costSoFar[nextKey]
		if !seen {
			costSoFar[nextKey] = newCost
			states[nextKey] = next
			cameFrom[nextKey] = currentKey
			pq.Insert(datastructure.PriorityQueueNode[int64]{Rank: newCost, Item: nextKey})
		} else if newCost < old {
			costSoFar[nextKey] = newCost
			cameFrom[nextKey] = currentKey
			pq.DecreaseKey(datastructure.PriorityQueueNode[int64]{Rank: newCost, Item: nextKey})
		}
	}

	for pq.Size() > 0 {
		current, err := pq.ExtractMin()
		if err != nil {
			break
		}
		state := states[current.Item]

		if goal(state) {
			return reconstruct(current.Item, cameFrom, states)
		}
		visited[current.Item] = struct{}{}

		for ddir := -1; ddir <= 1; ddir++ {
			nd := (state.Dir + ddir + 8) % 8
			delta := dirDeltas[nd]
			sign := 1
			if gs.reversed {
				sign = -1
			}
			next := datastructure.NewGridPose(state.X+sign*delta[0], state.Y+sign*delta[1], nd)
			if !cg.InBounds(next.X, next.Y) {
				continue
			}
			relax(current.Item, next, stepCost(nd))
		}

		if gs.allowSpin {
			for _, ddir := range []int{-1, 1} {
				nd := (state.Dir + ddir + 8) % 8
				relax(current.Item, datastructure.NewGridPose(state.X, state.Y, nd), spinCost)
			}
		}
	}

	return nil
}

func reconstruct(goalKey int64, cameFrom map[int64]int64, states map[int64]datastructure.GridPose) []datastructure.GridPose {
	path := make([]datastructure.GridPose, 0)
	for k := goalKey; k != -1; k = cameFrom[k] {
		path = append(path, states[k])
	}
	return util.ReverseG(path)
}
