package book

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/verifiedmkt/poolbook/pkg/fixed"
)

func ref(n byte) common.Hash {
	var h common.Hash
	h[31] = n
	return h
}

// verifyHeap checks the heap property (no child outranks its parent) and
// that the ref→index map matches every node's actual position.
func verifyHeap(t *testing.T, h *priceHeap) {
	t.Helper()
	for i := range h.nodes {
		for _, c := range []int{2*i + 1, 2*i + 2} {
			if c < len(h.nodes) && h.Less(c, i) {
				t.Fatalf("heap property violated: child %d outranks parent %d", c, i)
			}
		}
		if got := h.index[h.nodes[i].ref]; got != i {
			t.Fatalf("index map out of sync: ref %s at %d, map says %d", h.nodes[i].ref.Hex(), i, got)
		}
	}
	if len(h.index) != len(h.nodes) {
		t.Fatalf("index size %d != node count %d", len(h.index), len(h.nodes))
	}
}

func TestHeapOrdering(t *testing.T) {
	prices := []string{"50", "10", "99", "42", "77", "10", "63"}

	t.Run("buy max-heap", func(t *testing.T) {
		h := newPriceHeap(true)
		for i, p := range prices {
			h.insert(fixed.MustParse(p), ref(byte(i)), uint64(i))
			verifyHeap(t, h)
		}
		want := []string{"99", "77", "63", "50", "42", "10", "10"}
		for _, w := range want {
			n, ok := h.removeRoot()
			if !ok {
				t.Fatal("heap exhausted early")
			}
			if n.price.String() != w {
				t.Errorf("popped %s, want %s", n.price, w)
			}
			verifyHeap(t, h)
		}
	})

	t.Run("sell min-heap", func(t *testing.T) {
		h := newPriceHeap(false)
		for i, p := range prices {
			h.insert(fixed.MustParse(p), ref(byte(i)), uint64(i))
		}
		want := []string{"10", "10", "42", "50", "63", "77", "99"}
		for _, w := range want {
			n, _ := h.removeRoot()
			if n.price.String() != w {
				t.Errorf("popped %s, want %s", n.price, w)
			}
			verifyHeap(t, h)
		}
	})
}

func TestHeapEqualPricesAreFIFO(t *testing.T) {
	h := newPriceHeap(false)
	h.insert(fixed.MustParse("100"), ref(1), 1)
	h.insert(fixed.MustParse("100"), ref(2), 2)
	h.insert(fixed.MustParse("100"), ref(3), 3)

	for i := byte(1); i <= 3; i++ {
		n, _ := h.removeRoot()
		if n.ref != ref(i) {
			t.Errorf("pop %d: got %s, want %s", i, n.ref.Hex(), ref(i).Hex())
		}
	}
}

func TestHeapAtMarketOutranksPriced(t *testing.T) {
	for _, max := range []bool{true, false} {
		h := newPriceHeap(max)
		h.insert(fixed.MustParse("100"), ref(1), 1)
		h.insert(fixed.Zero(), ref(2), 2) // at-market
		h.insert(fixed.MustParse("1"), ref(3), 3)

		n, _ := h.peek()
		if n.ref != ref(2) {
			t.Errorf("max=%v: at-market entry not on top, got ref %s", max, n.ref.Hex())
		}
	}
}

func TestHeapArbitraryRemoval(t *testing.T) {
	h := newPriceHeap(true)
	for i := 0; i < 10; i++ {
		h.insert(fixed.FromUnits(uint64(i*7%10+1)), ref(byte(i)), uint64(i))
	}
	verifyHeap(t, h)

	// Remove from the middle, then the root, then a missing ref.
	if _, ok := h.remove(ref(4)); !ok {
		t.Fatal("remove(ref 4) failed")
	}
	verifyHeap(t, h)

	root, _ := h.peek()
	if _, ok := h.remove(root.ref); !ok {
		t.Fatal("remove(root) failed")
	}
	verifyHeap(t, h)

	if _, ok := h.remove(ref(99)); ok {
		t.Error("remove of unknown ref succeeded")
	}
	if h.depth() != 8 {
		t.Errorf("depth = %d, want 8", h.depth())
	}
}

func TestHeapUpdatePriority(t *testing.T) {
	h := newPriceHeap(false)
	h.insert(fixed.MustParse("100"), ref(1), 1)
	h.insert(fixed.MustParse("200"), ref(2), 2)
	h.insert(fixed.MustParse("300"), ref(3), 3)

	// Reprice the worst ask to the best.
	if !h.update(ref(3), fixed.MustParse("50")) {
		t.Fatal("update failed")
	}
	verifyHeap(t, h)

	n, _ := h.peek()
	if n.ref != ref(3) {
		t.Errorf("best after update = %s, want ref 3", n.ref.Hex())
	}
	if h.update(ref(42), fixed.MustParse("1")) {
		t.Error("update of unknown ref succeeded")
	}
}

func TestHeapEmptySentinels(t *testing.T) {
	h := newPriceHeap(true)
	if _, ok := h.peek(); ok {
		t.Error("peek on empty heap reported liquidity")
	}
	if _, ok := h.bestPrice(); ok {
		t.Error("bestPrice on empty heap reported liquidity")
	}
	if _, ok := h.removeRoot(); ok {
		t.Error("removeRoot on empty heap succeeded")
	}
}
