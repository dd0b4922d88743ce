package storage

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/ethereum/go-ethereum/common"

	"github.com/verifiedmkt/poolbook/pkg/book"
)

// PebbleStore is the write-through persistence layer behind the matching
// engine. The book stays authoritative in memory; this store exists so a
// restart can rebuild it via LoadOrders/LoadTrades.
type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Close() error { return s.db.Close() }

// SaveOrder persists one order record, keyed by trader and reference.
func (s *PebbleStore) SaveOrder(o *book.Order) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	if err := s.db.Set(orderKey(o.Trader, o.Ref), data, pebble.Sync); err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	return nil
}

// SaveTrade persists one trader's view of a trade.
func (s *PebbleStore) SaveTrade(trader common.Address, t *book.Trade) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal trade: %w", err)
	}
	if err := s.db.Set(tradeKey(trader, t.Seq), data, pebble.Sync); err != nil {
		return fmt.Errorf("save trade: %w", err)
	}
	return nil
}

// DeleteTrade removes one trader's view after settlement claims it.
func (s *PebbleStore) DeleteTrade(trader common.Address, seq uint64) error {
	if err := s.db.Delete(tradeKey(trader, seq), pebble.Sync); err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}
	return nil
}

var _ book.Persister = (*PebbleStore)(nil)

// LoadOrders returns every persisted order record, terminal ones included;
// the book decides which re-enter the heaps.
func (s *PebbleStore) LoadOrders() ([]*book.Order, error) {
	prefix := []byte(prefixOrder)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var orders []*book.Order
	for iter.First(); iter.Valid(); iter.Next() {
		var o book.Order
		if err := json.Unmarshal(iter.Value(), &o); err != nil {
			continue // skip invalid entries
		}
		orders = append(orders, &o)
	}
	return orders, iter.Error()
}

// LoadTrades returns every trader's unsettled trade records.
func (s *PebbleStore) LoadTrades() (map[common.Address][]*book.Trade, error) {
	prefix := []byte(prefixTrade)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	trades := make(map[common.Address][]*book.Trade)
	for iter.First(); iter.Valid(); iter.Next() {
		trader, ok := traderFromTradeKey(iter.Key())
		if !ok {
			continue
		}
		var t book.Trade
		if err := json.Unmarshal(iter.Value(), &t); err != nil {
			continue
		}
		trades[trader] = append(trades[trader], &t)
	}
	return trades, iter.Error()
}
