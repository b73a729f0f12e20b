package datastructure

import "errors"

var (
	ErrPriorityQueueEmpty    = errors.New("priority queue is empty")
	ErrPriorityQueueNotFound = errors.New("item not found in priority queue")
)

type PriorityQueueNode[T comparable] struct {
	Rank float64
	Item T
}

// MinHeap is a binary min-heap ordered by Rank, with an index map so that
// DecreaseKey runs in O(log n).
type MinHeap[T comparable] struct {
	heap  []PriorityQueueNode[T]
	index map[T]int
}

func NewMinHeap[T comparable]() *MinHeap[T] {
	return &MinHeap[T]{
		heap:  make([]PriorityQueueNode[T], 0),
		index: make(map[T]int),
	}
}

func (pq *MinHeap[T]) Size() int {
	return len(pq.heap)
}

func (pq *MinHeap[T]) Contains(item T) bool {
	_, ok := pq.index[item]
	return ok
}

func (pq *MinHeap[T]) Insert(node PriorityQueueNode[T]) {
	pq.heap = append(pq.heap, node)
	pq.index[node.Item] = len(pq.heap) - 1
	pq.up(len(pq.heap) - 1)
}

func (pq *MinHeap[T]) GetMin() (PriorityQueueNode[T], error) {
	if len(pq.heap) == 0 {
		return PriorityQueueNode[T]{}, ErrPriorityQueueEmpty
	}
	return pq.heap[0], nil
}

func (pq *MinHeap[T]) ExtractMin() (PriorityQueueNode[T], error) {
	if len(pq.heap) == 0 {
		return PriorityQueueNode[T]{}, ErrPriorityQueueEmpty
	}
	min := pq.heap[0]
	last := len(pq.heap) - 1
	pq.swap(0, last)
	pq.heap = pq.heap[:last]
	delete(pq.index, min.Item)
	if last > 0 {
		pq.down(0)
	}
	return min, nil
}

// DecreaseKey lowers the rank of an item already in the queue. Inserting the
// item again with a lower rank is not allowed, the heap keeps one entry per
// item.
func (pq *MinHeap[T]) DecreaseKey(node PriorityQueueNode[T]) error {
	i, ok := pq.index[node.Item]
	if !ok {
		return ErrPriorityQueueNotFound
	}
	if node.Rank > pq.heap[i].Rank {
		return errors.New("new rank is greater than current rank")
	}
	pq.heap[i].Rank = node.Rank
	pq.up(i)
	return nil
}

func (pq *MinHeap[T]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if pq.heap[parent].Rank <= pq.heap[i].Rank {
			break
		}
		pq.swap(i, parent)
		i = parent
	}
}

func (pq *MinHeap[T]) down(i int) {
	n := len(pq.heap)
	for {
		left := 2*i + 1
		right := 2*i + 2
		smallest := i
		if left < n && pq.heap[left].Rank < pq.heap[smallest].Rank {
			smallest = left
		}
		if right < n && pq.heap[right].Rank < pq.heap[smallest].Rank {
			smallest = right
		}
		if smallest == i {
			break
		}
		pq.swap(i, smallest)
		i = smallest
	}
}

func (pq *MinHeap[T]) swap(i, j int) {
	pq.heap[i], pq.heap[j] = pq.heap[j], pq.heap[i]
	pq.index[pq.heap[i].Item] = i
	pq.index[pq.heap[j].Item] = j
}
