package book

import (
	"github.com/ethereum/go-ethereum/common"
)

// TradeLedger is the per-trader trade history. Every trade is recorded under
// both the party and the counterparty with the same sequence id; the two
// views are removed independently as each side settles.
type TradeLedger struct {
	nextSeq uint64
	trades  map[common.Address]map[uint64]*Trade
	ids     map[common.Address][]uint64
}

func NewTradeLedger() *TradeLedger {
	return &TradeLedger{
		nextSeq: 1,
		trades:  make(map[common.Address]map[uint64]*Trade),
		ids:     make(map[common.Address][]uint64),
	}
}

// Record assigns the next sequence id and stores the trade under both
// traders' histories. The trade is shared, not copied; callers must not
// mutate it afterwards.
func (l *TradeLedger) Record(t *Trade) uint64 {
	t.Seq = l.nextSeq
	l.nextSeq++
	l.put(t.Party, t)
	if t.Counterparty != t.Party {
		l.put(t.Counterparty, t)
	}
	return t.Seq
}

func (l *TradeLedger) put(trader common.Address, t *Trade) {
	m, ok := l.trades[trader]
	if !ok {
		m = make(map[uint64]*Trade)
		l.trades[trader] = m
	}
	m[t.Seq] = t
	l.ids[trader] = append(l.ids[trader], t.Seq)
}

// Get returns trader's view of trade seq.
func (l *TradeLedger) Get(trader common.Address, seq uint64) (*Trade, bool) {
	t, ok := l.trades[trader][seq]
	return t, ok
}

// SeqIDs returns a copy of trader's trade sequence ids, oldest first.
func (l *TradeLedger) SeqIDs(trader common.Address) []uint64 {
	ids := make([]uint64, 0, len(l.trades[trader]))
	for _, id := range l.ids[trader] {
		if _, still := l.trades[trader][id]; still {
			ids = append(ids, id)
		}
	}
	return ids
}

// Remove drops one trader's view of a settled trade. The counterparty's view
// is untouched.
func (l *TradeLedger) Remove(trader common.Address, seq uint64) error {
	if _, ok := l.trades[trader][seq]; !ok {
		return ErrTradeNotFound
	}
	delete(l.trades[trader], seq)
	return nil
}

// Restore reloads a persisted trade under one trader's history, advancing
// the sequence counter past it.
func (l *TradeLedger) Restore(trader common.Address, t *Trade) {
	l.put(trader, t)
	if t.Seq >= l.nextSeq {
		l.nextSeq = t.Seq + 1
	}
}
