package book

import (
	"container/heap"

	"github.com/ethereum/go-ethereum/common"

	"github.com/verifiedmkt/poolbook/pkg/fixed"
)

// heapNode is one resting order's position in a price heap.
type heapNode struct {
	price fixed.Value
	ref   common.Hash
	seq   uint64
}

// priceHeap is a binary heap of resting orders with a ref→index map so
// arbitrary entries can be removed or reprioritized in O(log n), not just the
// root. Every move goes through Swap, which keeps the map in sync; nothing
// writes the node slice directly.
//
// max=true orders highest price first (buy side), max=false lowest first
// (sell side). At-market entries (price 0) outrank any priced entry on both
// sides; equal prices resolve FIFO by insertion sequence.
type priceHeap struct {
	nodes []heapNode
	index map[common.Hash]int
	max   bool
}

func newPriceHeap(max bool) *priceHeap {
	return &priceHeap{
		index: make(map[common.Hash]int),
		max:   max,
	}
}

// heap.Interface

func (h *priceHeap) Len() int { return len(h.nodes) }

func (h *priceHeap) Less(i, j int) bool {
	a, b := h.nodes[i], h.nodes[j]
	az, bz := a.price.IsZero(), b.price.IsZero()
	if az != bz {
		return az // at-market entries first
	}
	if !az {
		switch a.price.Cmp(b.price) {
		case -1:
			return !h.max
		case 1:
			return h.max
		}
	}
	return a.seq < b.seq
}

func (h *priceHeap) Swap(i, j int) {
	h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i]
	h.index[h.nodes[i].ref] = i
	h.index[h.nodes[j].ref] = j
}

func (h *priceHeap) Push(x any) {
	n := x.(heapNode)
	h.index[n.ref] = len(h.nodes)
	h.nodes = append(h.nodes, n)
}

func (h *priceHeap) Pop() any {
	old := h.nodes
	n := len(old)
	last := old[n-1]
	h.nodes = old[:n-1]
	delete(h.index, last.ref)
	return last
}

// engine-facing helpers

func (h *priceHeap) insert(price fixed.Value, ref common.Hash, seq uint64) {
	heap.Push(h, heapNode{price: price, ref: ref, seq: seq})
}

func (h *priceHeap) restore(n heapNode) {
	heap.Push(h, n)
}

// peek returns the best entry without removing it.
func (h *priceHeap) peek() (heapNode, bool) {
	if len(h.nodes) == 0 {
		return heapNode{}, false
	}
	return h.nodes[0], true
}

// removeRoot pops the best entry.
func (h *priceHeap) removeRoot() (heapNode, bool) {
	if len(h.nodes) == 0 {
		return heapNode{}, false
	}
	return heap.Pop(h).(heapNode), true
}

// remove deletes an arbitrary entry by reference.
func (h *priceHeap) remove(ref common.Hash) (heapNode, bool) {
	i, ok := h.index[ref]
	if !ok {
		return heapNode{}, false
	}
	return heap.Remove(h, i).(heapNode), true
}

// update reprioritizes an entry in place, preserving its FIFO sequence.
func (h *priceHeap) update(ref common.Hash, newPrice fixed.Value) bool {
	i, ok := h.index[ref]
	if !ok {
		return false
	}
	h.nodes[i].price = newPrice
	heap.Fix(h, i)
	return true
}

func (h *priceHeap) contains(ref common.Hash) bool {
	_, ok := h.index[ref]
	return ok
}

func (h *priceHeap) depth() int { return len(h.nodes) }

// bestPrice returns the best resting price. ok=false signals no liquidity;
// callers check before popping, so an empty heap is a sentinel, not a panic.
func (h *priceHeap) bestPrice() (fixed.Value, bool) {
	if len(h.nodes) == 0 {
		return fixed.Zero(), false
	}
	return h.nodes[0].price, true
}
