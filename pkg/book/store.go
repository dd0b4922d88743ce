package book

import (
	"github.com/ethereum/go-ethereum/common"
)

// OrderStore holds every order record by reference plus a per-trader ref
// list for settlement lookups. Records are retained after fill/cancel so
// trade reversal has something to re-open.
type OrderStore struct {
	orders   map[common.Hash]*Order
	byTrader map[common.Address][]common.Hash
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders:   make(map[common.Hash]*Order),
		byTrader: make(map[common.Address][]common.Hash),
	}
}

// Add registers a new order record. Duplicate references panic: the
// generator guarantees uniqueness, so a collision is book corruption.
func (s *OrderStore) Add(o *Order) {
	if _, exists := s.orders[o.Ref]; exists {
		panic("book: duplicate order reference " + o.Ref.Hex())
	}
	s.orders[o.Ref] = o
	s.byTrader[o.Trader] = append(s.byTrader[o.Trader], o.Ref)
}

// Get returns the order record for ref.
func (s *OrderStore) Get(ref common.Hash) (*Order, bool) {
	o, ok := s.orders[ref]
	return o, ok
}

// RefsOf returns a copy of trader's order references, oldest first.
func (s *OrderStore) RefsOf(trader common.Address) []common.Hash {
	refs := s.byTrader[trader]
	out := make([]common.Hash, len(refs))
	copy(out, refs)
	return out
}

func (s *OrderStore) Len() int { return len(s.orders) }
