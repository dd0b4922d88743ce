package book

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/verifiedmkt/poolbook/pkg/fixed"
)

var (
	tAlice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	tBob   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func sampleTrade() *Trade {
	return &Trade{
		PartyRef:        ref(1),
		CounterpartyRef: ref(2),
		Party:           tAlice,
		Counterparty:    tBob,
		PartySide:       Buy,
		SecurityQty:     fixed.MustParse("1.5"),
		CurrencyQty:     fixed.MustParse("30"),
		Price:           fixed.MustParse("20"),
	}
}

func TestLedgerRecordTouchesBothHistories(t *testing.T) {
	l := NewTradeLedger()
	seq := l.Record(sampleTrade())

	if seq != 1 {
		t.Errorf("first seq = %d, want 1", seq)
	}
	for _, trader := range []common.Address{tAlice, tBob} {
		got, ok := l.Get(trader, seq)
		if !ok {
			t.Fatalf("trade missing from %s history", trader.Hex())
		}
		if got.SecurityQty.String() != "1.5" || got.CurrencyQty.String() != "30" {
			t.Errorf("trade quantities corrupted: %s / %s", got.SecurityQty, got.CurrencyQty)
		}
	}
}

func TestLedgerSequenceIsShared(t *testing.T) {
	l := NewTradeLedger()
	s1 := l.Record(sampleTrade())
	s2 := l.Record(sampleTrade())
	if s2 != s1+1 {
		t.Errorf("sequence not monotonic: %d then %d", s1, s2)
	}
	if ids := l.SeqIDs(tAlice); len(ids) != 2 || ids[0] != s1 || ids[1] != s2 {
		t.Errorf("SeqIDs = %v", ids)
	}
}

func TestLedgerRemoveIsPerTrader(t *testing.T) {
	l := NewTradeLedger()
	seq := l.Record(sampleTrade())

	if err := l.Remove(tAlice, seq); err != nil {
		t.Fatal(err)
	}
	if _, ok := l.Get(tAlice, seq); ok {
		t.Error("alice's view survived removal")
	}
	if _, ok := l.Get(tBob, seq); !ok {
		t.Error("bob's view removed by alice's settlement")
	}
	if err := l.Remove(tAlice, seq); !errors.Is(err, ErrTradeNotFound) {
		t.Errorf("double remove: err = %v, want ErrTradeNotFound", err)
	}
	if ids := l.SeqIDs(tAlice); len(ids) != 0 {
		t.Errorf("SeqIDs after removal = %v", ids)
	}
}

func TestLedgerRestoreAdvancesSequence(t *testing.T) {
	l := NewTradeLedger()
	old := sampleTrade()
	old.Seq = 7
	l.Restore(tAlice, old)
	l.Restore(tBob, old)

	if seq := l.Record(sampleTrade()); seq != 8 {
		t.Errorf("seq after restore = %d, want 8", seq)
	}
}
