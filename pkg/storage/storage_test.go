package storage

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/verifiedmkt/poolbook/pkg/book"
	"github.com/verifiedmkt/poolbook/pkg/fixed"
	"github.com/verifiedmkt/poolbook/pkg/util"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func openStore(t *testing.T) *PebbleStore {
	t.Helper()
	s, err := NewPebbleStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOrderRoundTrip(t *testing.T) {
	s := openStore(t)

	o := &book.Order{
		Ref:          common.HexToHash("0x01"),
		Trader:       alice,
		Side:         book.Sell,
		Kind:         book.Limit,
		Unit:         book.SecurityUnits,
		RemainingQty: fixed.MustParse("20"),
		LimitPrice:   fixed.MustParse("20"),
		Status:       book.StatusOpen,
		Seq:          3,
	}
	if err := s.SaveOrder(o); err != nil {
		t.Fatal(err)
	}

	// Overwrite with an updated copy; reload must see the latest state.
	o.RemainingQty = fixed.MustParse("18.5")
	o.Status = book.StatusPartiallyFilled
	if err := s.SaveOrder(o); err != nil {
		t.Fatal(err)
	}

	orders, err := s.LoadOrders()
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 {
		t.Fatalf("loaded %d orders, want 1", len(orders))
	}
	got := orders[0]
	if got.RemainingQty.String() != "18.5" || got.Status != book.StatusPartiallyFilled || got.Seq != 3 {
		t.Errorf("loaded order = %s qty %s seq %d", got.Status, got.RemainingQty, got.Seq)
	}
}

func TestTradesGroupByTraderInOrder(t *testing.T) {
	s := openStore(t)

	for seq := uint64(1); seq <= 3; seq++ {
		tr := &book.Trade{
			Seq:          seq,
			Party:        alice,
			Counterparty: bob,
			PartySide:    book.Buy,
			SecurityQty:  fixed.MustParse("1"),
			CurrencyQty:  fixed.MustParse("100"),
			Price:        fixed.MustParse("100"),
		}
		if err := s.SaveTrade(alice, tr); err != nil {
			t.Fatal(err)
		}
		if err := s.SaveTrade(bob, tr); err != nil {
			t.Fatal(err)
		}
	}

	trades, err := s.LoadTrades()
	if err != nil {
		t.Fatal(err)
	}
	if len(trades[alice]) != 3 || len(trades[bob]) != 3 {
		t.Fatalf("loaded %d/%d trades, want 3/3", len(trades[alice]), len(trades[bob]))
	}
	for i, tr := range trades[alice] {
		if tr.Seq != uint64(i+1) {
			t.Errorf("trade %d has seq %d, want execution order", i, tr.Seq)
		}
	}
}

func TestDeleteTradeIsPerTrader(t *testing.T) {
	s := openStore(t)

	tr := &book.Trade{Seq: 1, Party: alice, Counterparty: bob,
		SecurityQty: fixed.MustParse("1"), CurrencyQty: fixed.MustParse("5"), Price: fixed.MustParse("5")}
	if err := s.SaveTrade(alice, tr); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveTrade(bob, tr); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteTrade(alice, 1); err != nil {
		t.Fatal(err)
	}
	trades, err := s.LoadTrades()
	if err != nil {
		t.Fatal(err)
	}
	if len(trades[alice]) != 0 {
		t.Errorf("alice still has %d trades after claim", len(trades[alice]))
	}
	if len(trades[bob]) != 1 {
		t.Errorf("bob lost his trade copy: %d", len(trades[bob]))
	}
}

func TestLoadedStateRebuildsBook(t *testing.T) {
	s := openStore(t)

	resting := &book.Order{
		Ref:          common.HexToHash("0x10"),
		Trader:       alice,
		Side:         book.Sell,
		Kind:         book.Limit,
		Unit:         book.SecurityUnits,
		RemainingQty: fixed.MustParse("10"),
		LimitPrice:   fixed.MustParse("100"),
		Status:       book.StatusOpen,
		Seq:          2,
	}
	cancelled := &book.Order{
		Ref:          common.HexToHash("0x11"),
		Trader:       bob,
		Side:         book.Sell,
		Kind:         book.Limit,
		Unit:         book.SecurityUnits,
		RemainingQty: fixed.MustParse("3"),
		LimitPrice:   fixed.MustParse("90"),
		Status:       book.StatusCancelled,
		Seq:          1,
	}
	for _, o := range []*book.Order{resting, cancelled} {
		if err := s.SaveOrder(o); err != nil {
			t.Fatal(err)
		}
	}
	tr := &book.Trade{Seq: 4, Party: bob, Counterparty: alice, PartySide: book.Buy,
		SecurityQty: fixed.MustParse("2"), CurrencyQty: fixed.MustParse("200"), Price: fixed.MustParse("100")}
	if err := s.SaveTrade(bob, tr); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveTrade(alice, tr); err != nil {
		t.Fatal(err)
	}

	orders, err := s.LoadOrders()
	if err != nil {
		t.Fatal(err)
	}
	trades, err := s.LoadTrades()
	if err != nil {
		t.Fatal(err)
	}

	manager := common.HexToAddress("0x00000000000000000000000000000000000000f1")
	b := book.New(manager, manager, book.Params{}, util.RealClock{}, nil)
	b.Restore(orders, trades)

	// Only the active order re-enters the heap; the cancelled one is
	// queryable history.
	if b.Depth(book.Sell) != 1 {
		t.Fatalf("sell depth = %d, want 1", b.Depth(book.Sell))
	}
	if p, err := b.BestPrice(book.Sell); err != nil || p.String() != "100" {
		t.Fatalf("best ask = %s (%v), want 100", p, err)
	}
	if o, err := b.Order(bob, cancelled.Ref); err != nil || o.Status != book.StatusCancelled {
		t.Errorf("cancelled order = %+v (%v)", o, err)
	}

	// Restored history stays queryable and the sequence continues past it.
	if got, err := b.Trade(bob, bob, 4); err != nil || got.CurrencyQty.String() != "200" {
		t.Errorf("restored trade = %+v (%v)", got, err)
	}
	res, err := b.Place(manager, book.Submission{
		Trader: bob, Side: book.Buy, Kind: book.Market,
		Qty: fixed.MustParse("10"), Unit: book.SecurityUnits,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trades) != 1 || res.Trades[0] != 5 {
		t.Errorf("trade seq after restore = %v, want [5]", res.Trades)
	}
}
