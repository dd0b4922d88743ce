package book

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/verifiedmkt/poolbook/pkg/fixed"
	"github.com/verifiedmkt/poolbook/pkg/util"
)

// Params are the book-level trading limits, checked on every submission.
type Params struct {
	// MinOrderSize rejects dust orders (security units). Zero disables.
	MinOrderSize fixed.Value
	// PriceBandBps bounds execution prices relative to the last traded
	// price, in basis points. Zero disables.
	PriceBandBps uint64
}

// Persister is the write-through hook for durable state. All methods are
// best-effort from the engine's point of view: matching state is
// authoritative in memory and failures are logged, not propagated.
type Persister interface {
	SaveOrder(o *Order) error
	SaveTrade(trader common.Address, t *Trade) error
	DeleteTrade(trader common.Address, seq uint64) error
}

// Book is the matching engine: two price heaps, the order store and the
// trade ledger behind a single mutex. Each submission runs to completion
// under the lock; there is no partial-commit state visible to anyone.
//
// The manager identity (the owning pool) is the only caller allowed to
// place, expire, revert or claim; a trader may cancel or edit their own
// orders through the manager's delegation.
type Book struct {
	mu sync.Mutex

	params  Params
	owner   common.Address
	manager common.Address

	buys  *priceHeap
	sells *priceHeap

	store  *OrderStore
	ledger *TradeLedger
	refs   *RefGen
	clock  util.Clock
	log    *zap.SugaredLogger

	persist Persister

	// OnTrade fires synchronously for every committed trade (and reversal).
	// Handlers must not call back into the Book.
	OnTrade func(*Trade)

	lastPrice fixed.Value
	stops     []common.Hash
	nextSeq   uint64 // heap insertion sequence (FIFO tie-break)
}

// New creates an empty book. logger may be nil.
func New(owner, manager common.Address, params Params, clock util.Clock, logger *zap.SugaredLogger) *Book {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if clock == nil {
		clock = util.RealClock{}
	}
	return &Book{
		params:  params,
		owner:   owner,
		manager: manager,
		buys:    newPriceHeap(true),
		sells:   newPriceHeap(false),
		store:   NewOrderStore(),
		ledger:  NewTradeLedger(),
		refs:    NewRefGen(clock),
		clock:   clock,
		log:     logger,
		nextSeq: 1,
	}
}

// SetPersister attaches the write-through store. Call before taking traffic.
func (b *Book) SetPersister(p Persister) { b.persist = p }

// Submission is one incoming order.
type Submission struct {
	Trader     common.Address
	Side       Side
	Kind       Kind
	Qty        fixed.Value
	Unit       Unit
	LimitPrice fixed.Value
	StopPrice  fixed.Value
}

// Result reports what happened to a submission.
type Result struct {
	Ref            common.Hash
	Status         Status
	SecurityTraded fixed.Value
	CurrencyTraded fixed.Value
	Trades         []uint64
}

// fill is one planned match against a resting maker. Nothing is mutated
// until the whole plan is known to succeed.
type fill struct {
	node     heapNode
	maker    *Order
	price    fixed.Value
	security fixed.Value
	currency fixed.Value
}

// Place accepts a new order, matches it against the counter side and either
// fills it, rests the remainder (limit), parks it (stop) or rejects it
// (market with insufficient depth). Manager-only.
func (b *Book) Place(caller common.Address, sub Submission) (Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != b.manager {
		return Result{}, ErrUnauthorizedAccess
	}
	if err := b.validate(sub); err != nil {
		return Result{}, err
	}

	now := b.clock.Now().UnixMilli()
	o := &Order{
		Ref:          b.refs.Next(sub.Trader),
		Trader:       sub.Trader,
		Side:         sub.Side,
		Kind:         sub.Kind,
		Unit:         sub.Unit,
		RemainingQty: sub.Qty,
		LimitPrice:   sub.LimitPrice,
		StopPrice:    sub.StopPrice,
		Status:       StatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if o.Kind == Stop {
		b.store.Add(o)
		b.stops = append(b.stops, o.Ref)
		b.persistOrder(o)
		b.log.Infow("stop_parked", "ref", o.Ref.Hex(), "trader", o.Trader.Hex(),
			"side", o.Side.String(), "stop_price", o.StopPrice.String())
		// The last traded price may already cross the stop; sweep so it
		// does not sit parked until the next match.
		b.sweepStops()
		return Result{Ref: o.Ref, Status: o.Status}, nil
	}

	// The record enters the store only once the match succeeds: a rejected
	// submission must leave no state behind, heap or store.
	res, err := b.execute(o)
	if err != nil {
		return Result{}, err
	}
	b.store.Add(o)
	b.sweepStops()
	return res, nil
}

func (b *Book) validate(sub Submission) error {
	if sub.Qty.IsZero() {
		return fmt.Errorf("zero quantity: %w", ErrUnhandledRequest)
	}
	switch sub.Kind {
	case Market:
		if !sub.LimitPrice.IsZero() {
			return fmt.Errorf("market order with limit price: %w", ErrUnhandledRequest)
		}
	case Limit:
		if sub.Unit != SecurityUnits {
			return fmt.Errorf("limit order must be security-denominated: %w", ErrUnhandledRequest)
		}
	case Stop:
		if sub.StopPrice.IsZero() {
			return fmt.Errorf("stop order without stop price: %w", ErrUnhandledRequest)
		}
	default:
		return fmt.Errorf("unknown order kind: %w", ErrUnhandledRequest)
	}
	if sub.Unit == SecurityUnits && !b.params.MinOrderSize.IsZero() && sub.Qty.Lt(b.params.MinOrderSize) {
		return ErrOrderBelowMinimumSize
	}
	return nil
}

// execute runs the plan/commit match for a market or limit order.
// Callers hold the lock.
func (b *Book) execute(o *Order) (Result, error) {
	plans, remaining, err := b.plan(o)
	if err != nil {
		return Result{}, err
	}

	if o.Kind != Limit && !remaining.IsZero() {
		// Market orders (and triggered stops, which execute as market) are
		// depth-or-reject: restore every speculative pop so the book is
		// byte-identical to before the attempt.
		counter := b.heapFor(o.Side.Opposite())
		for _, f := range plans {
			counter.restore(f.node)
		}
		return Result{}, ErrInsufficientLiquidity
	}

	return b.commit(o, plans, remaining), nil
}

// plan pops counter-side orders best-first and computes fills without
// mutating any order. Popped nodes stay out of the heap; the caller either
// commits (reinserting partial makers) or restores them all.
func (b *Book) plan(o *Order) ([]fill, fixed.Value, error) {
	counter := b.heapFor(o.Side.Opposite())

	var plans []fill
	var parked []heapNode
	// Skipped entries go back regardless of outcome.
	defer func() {
		for _, n := range parked {
			counter.restore(n)
		}
	}()

	remaining := o.RemainingQty
	for !remaining.IsZero() {
		node, ok := counter.peek()
		if !ok {
			break
		}

		// The maker's price wins; an at-market maker takes the taker's.
		execPrice := node.price
		if execPrice.IsZero() {
			execPrice = o.LimitPrice
		}
		if execPrice.IsZero() {
			// Zero-price vs zero-price: no valid execution price. Both
			// wait for a priced counterparty.
			counter.removeRoot()
			parked = append(parked, node)
			continue
		}

		// Crossing check between two priced orders.
		if !o.LimitPrice.IsZero() && !node.price.IsZero() && !crosses(o.Side, o.LimitPrice, node.price) {
			break
		}

		maker, ok := b.store.Get(node.ref)
		if !ok {
			panic("book: heap entry without order record " + node.ref.Hex())
		}
		if maker.Trader == o.Trader {
			// Never match a trader against themselves.
			counter.removeRoot()
			parked = append(parked, node)
			continue
		}

		if violation := b.bandViolated(execPrice); violation {
			for _, f := range plans {
				counter.restore(f.node)
			}
			return nil, fixed.Zero(), ErrPriceOutOfBound
		}

		security, currency := fillAmounts(o, maker.RemainingQty, execPrice, remaining)
		if security.IsZero() {
			// Remainder too small to buy a single wei of security.
			break
		}

		counter.removeRoot()
		plans = append(plans, fill{
			node:     node,
			maker:    maker,
			price:    execPrice,
			security: security,
			currency: currency,
		})

		if o.Unit == SecurityUnits {
			remaining = remaining.Sub(security)
		} else {
			remaining = remaining.Sub(currency)
		}
	}

	return plans, remaining, nil
}

// fillAmounts computes one fill's security and currency legs at execPrice.
// Rounding always favors the book: the asset paid out rounds down, the asset
// charged rounds up.
func fillAmounts(taker *Order, makerQty, execPrice, remaining fixed.Value) (security, currency fixed.Value) {
	if taker.Unit == SecurityUnits {
		security = remaining.Min(makerQty)
		if taker.Side == Buy {
			currency = security.MulUp(execPrice) // charged to the buyer
		} else {
			currency = security.MulDown(execPrice) // paid to the seller
		}
		return security, currency
	}

	// Currency-denominated market order.
	if taker.Side == Buy {
		// Taker spends currency, receives security.
		capacity := makerQty.MulUp(execPrice)
		if remaining.Gte(capacity) {
			return makerQty, capacity
		}
		return remaining.DivDown(execPrice), remaining
	}
	// Taker sells security to collect a target currency amount.
	capacity := makerQty.MulDown(execPrice)
	if remaining.Gte(capacity) {
		return makerQty, capacity
	}
	security = remaining.DivUp(execPrice).Min(makerQty)
	return security, remaining
}

// crosses reports whether a priced taker and maker can trade.
func crosses(takerSide Side, takerPrice, makerPrice fixed.Value) bool {
	if takerSide == Buy {
		return makerPrice.Lte(takerPrice)
	}
	return makerPrice.Gte(takerPrice)
}

// commit applies a successful plan: maker updates, trade records, taker
// disposition. Callers hold the lock.
func (b *Book) commit(o *Order, plans []fill, remaining fixed.Value) Result {
	counter := b.heapFor(o.Side.Opposite())
	now := b.clock.Now().UnixMilli()

	res := Result{Ref: o.Ref, SecurityTraded: fixed.Zero(), CurrencyTraded: fixed.Zero()}

	for _, f := range plans {
		maker := f.maker
		maker.RemainingQty = maker.RemainingQty.Sub(f.security)
		maker.UpdatedAt = now
		if maker.RemainingQty.IsZero() {
			maker.Status = StatusFilled
		} else {
			maker.Status = StatusPartiallyFilled
			counter.restore(f.node) // partial maker keeps price and FIFO slot
		}
		b.persistOrder(maker)

		t := &Trade{
			PartyRef:        o.Ref,
			CounterpartyRef: maker.Ref,
			Party:           o.Trader,
			Counterparty:    maker.Trader,
			PartySide:       o.Side,
			SecurityQty:     f.security,
			CurrencyQty:     f.currency,
			Price:           f.price,
			ExecutedAt:      now,
		}
		b.ledger.Record(t)
		b.persistTrade(t)
		b.lastPrice = f.price
		res.Trades = append(res.Trades, t.Seq)
		res.SecurityTraded = res.SecurityTraded.Add(f.security)
		res.CurrencyTraded = res.CurrencyTraded.Add(f.currency)

		b.log.Infow("trade_executed", "seq", t.Seq,
			"party", t.Party.Hex(), "counterparty", t.Counterparty.Hex(),
			"security", f.security.String(), "currency", f.currency.String(),
			"price", f.price.String())

		if b.OnTrade != nil {
			b.OnTrade(t)
		}
	}

	o.RemainingQty = remaining
	o.UpdatedAt = now
	switch {
	case remaining.IsZero():
		o.Status = StatusFilled
	case len(plans) > 0:
		o.Status = StatusPartiallyFilled
	default:
		o.Status = StatusOpen
	}

	if o.Kind == Limit && !remaining.IsZero() {
		o.Seq = b.nextSeq
		b.nextSeq++
		b.heapFor(o.Side).insert(o.LimitPrice, o.Ref, o.Seq)
	}
	b.persistOrder(o)

	res.Status = o.Status
	return res
}

// bandViolated checks an execution price against the configured band around
// the last traded price.
func (b *Book) bandViolated(price fixed.Value) bool {
	if b.params.PriceBandBps == 0 || b.lastPrice.IsZero() {
		return false
	}
	var diff fixed.Value
	if price.Gt(b.lastPrice) {
		diff = price.Sub(b.lastPrice)
	} else {
		diff = b.lastPrice.Sub(price)
	}
	band := fixed.FromUnits(b.params.PriceBandBps).DivDown(fixed.FromUnits(10000))
	return diff.Gt(b.lastPrice.MulDown(band))
}

// Cancel removes a resting or parked order. Allowed for the order's own
// trader, the manager, or the owner. Returns the unfilled quantity so the
// pool can refund the backing tokens.
func (b *Book) Cancel(caller common.Address, ref common.Hash) (fixed.Value, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, err := b.authorizedOrder(caller, ref)
	if err != nil {
		return fixed.Zero(), err
	}
	if !o.Active() {
		return fixed.Zero(), ErrOrderAlreadyFilled
	}

	b.unrest(o)
	o.Status = StatusCancelled
	o.UpdatedAt = b.clock.Now().UnixMilli()
	b.persistOrder(o)

	b.log.Infow("order_cancelled", "ref", ref.Hex(), "remaining", o.RemainingQty.String())
	return o.RemainingQty, nil
}

// Edit changes an active order's quantity and/or limit price. A price change
// reprioritizes the heap entry in place.
func (b *Book) Edit(caller common.Address, ref common.Hash, newQty, newPrice fixed.Value) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, err := b.authorizedOrder(caller, ref)
	if err != nil {
		return err
	}
	if !o.Active() {
		return ErrOrderAlreadyFilled
	}
	if newQty.IsZero() {
		return fmt.Errorf("zero quantity: %w", ErrUnhandledRequest)
	}
	if o.Unit == SecurityUnits && !b.params.MinOrderSize.IsZero() && newQty.Lt(b.params.MinOrderSize) {
		return ErrOrderBelowMinimumSize
	}

	if o.Kind == Stop {
		// A parked stop has no heap entry; the editable price is its
		// trigger. It still executes as a market order when it trips.
		if newPrice.IsZero() {
			return fmt.Errorf("stop order without stop price: %w", ErrUnhandledRequest)
		}
		o.StopPrice = newPrice
	} else if !newPrice.Eq(o.LimitPrice) {
		b.heapFor(o.Side).update(ref, newPrice)
		o.LimitPrice = newPrice
	}
	o.RemainingQty = newQty
	o.UpdatedAt = b.clock.Now().UnixMilli()
	b.persistOrder(o)

	b.log.Infow("order_edited", "ref", ref.Hex(), "qty", newQty.String(), "price", newPrice.String())
	return nil
}

// Expire marks an order expired on behalf of the pool's cut-off check.
// Manager-only; expiry timing itself is the pool's business.
func (b *Book) Expire(caller common.Address, ref common.Hash) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != b.manager {
		return ErrUnauthorizedAccess
	}
	o, ok := b.store.Get(ref)
	if !ok {
		return ErrOrderNotFound
	}
	if !o.Active() {
		return ErrOrderAlreadyFilled
	}

	b.unrest(o)
	o.Status = StatusExpired
	o.UpdatedAt = b.clock.Now().UnixMilli()
	b.persistOrder(o)
	return nil
}

// RevertTrade re-opens trader's side of a prior trade and appends a reversal
// record referencing the original. History is never deleted by a reversal.
// Manager-only.
func (b *Book) RevertTrade(caller common.Address, trader common.Address, seq uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != b.manager {
		return ErrUnauthorizedAccess
	}
	t, ok := b.ledger.Get(trader, seq)
	if !ok {
		return ErrTradeNotFound
	}
	if t.Reversal {
		return fmt.Errorf("cannot revert a reversal: %w", ErrUnhandledRequest)
	}

	ref := t.PartyRef
	if t.Counterparty == trader {
		ref = t.CounterpartyRef
	}
	o, ok := b.store.Get(ref)
	if !ok {
		return ErrOrderNotFound
	}

	reverted := t.SecurityQty
	if o.Unit == CurrencyUnits {
		reverted = t.CurrencyQty
	}
	wasCancelled := o.Status == StatusCancelled
	o.RemainingQty = o.RemainingQty.Add(reverted)
	if wasCancelled {
		o.Status = StatusOpen
	} else {
		o.Status = StatusPartiallyFilled
	}
	o.UpdatedAt = b.clock.Now().UnixMilli()

	// Only limit orders rest; a reverted market fill stays off-book.
	if o.Kind == Limit && !b.heapFor(o.Side).contains(o.Ref) {
		o.Seq = b.nextSeq
		b.nextSeq++
		b.heapFor(o.Side).insert(o.LimitPrice, o.Ref, o.Seq)
	}
	b.persistOrder(o)

	rev := &Trade{
		PartyRef:        t.PartyRef,
		CounterpartyRef: t.CounterpartyRef,
		Party:           t.Party,
		Counterparty:    t.Counterparty,
		PartySide:       t.PartySide.Opposite(),
		SecurityQty:     t.SecurityQty,
		CurrencyQty:     t.CurrencyQty,
		Price:           t.Price,
		ExecutedAt:      b.clock.Now().UnixMilli(),
		Reversal:        true,
		OriginalSeq:     seq,
	}
	b.ledger.Record(rev)
	b.persistTrade(rev)
	if b.OnTrade != nil {
		b.OnTrade(rev)
	}

	b.log.Infow("trade_reverted", "original_seq", seq, "reversal_seq", rev.Seq, "ref", ref.Hex())
	return nil
}

// ClaimTrade removes one trader's view of a settled trade. Manager-only.
func (b *Book) ClaimTrade(caller common.Address, trader common.Address, seq uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != b.manager {
		return ErrUnauthorizedAccess
	}
	if err := b.ledger.Remove(trader, seq); err != nil {
		return err
	}
	if b.persist != nil {
		if err := b.persist.DeleteTrade(trader, seq); err != nil {
			b.log.Warnw("trade_delete_failed", "trader", trader.Hex(), "seq", seq, "err", err)
		}
	}
	return nil
}

// TriggerStops sweeps parked stop orders against an externally supplied
// reference price. Manager-only; the engine also sweeps automatically after
// every committed match using the last traded price.
func (b *Book) TriggerStops(caller common.Address, refPrice fixed.Value) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != b.manager {
		return ErrUnauthorizedAccess
	}
	b.sweepStopsAt(refPrice)
	return nil
}

func (b *Book) sweepStops() {
	b.sweepStopsAt(b.lastPrice)
}

// sweepStopsAt repeatedly executes triggered stops as market orders until a
// pass triggers none. A stop that cannot fill stays parked.
func (b *Book) sweepStopsAt(refPrice fixed.Value) {
	if refPrice.IsZero() {
		return
	}
	for {
		progressed := false
		kept := b.stops[:0]
		for _, ref := range b.stops {
			o, ok := b.store.Get(ref)
			if !ok || !o.Active() {
				continue // cancelled or expired while parked
			}
			if !stopTriggered(o, refPrice) {
				kept = append(kept, ref)
				continue
			}
			if _, err := b.execute(o); err != nil {
				// Insufficient depth or band violation: stay parked.
				kept = append(kept, ref)
				continue
			}
			b.log.Infow("stop_triggered", "ref", ref.Hex(), "trigger_price", refPrice.String())
			progressed = true
			refPrice = b.lastPrice
		}
		b.stops = kept
		if !progressed {
			return
		}
	}
}

func stopTriggered(o *Order, refPrice fixed.Value) bool {
	if o.Side == Buy {
		return refPrice.Gte(o.StopPrice)
	}
	return refPrice.Lte(o.StopPrice)
}

// unrest removes an order from whichever structure it is resting in.
func (b *Book) unrest(o *Order) {
	if o.Kind == Stop {
		for i, ref := range b.stops {
			if ref == o.Ref {
				b.stops = append(b.stops[:i], b.stops[i+1:]...)
				return
			}
		}
		return
	}
	b.heapFor(o.Side).remove(o.Ref)
}

func (b *Book) authorizedOrder(caller common.Address, ref common.Hash) (*Order, error) {
	o, ok := b.store.Get(ref)
	if !ok {
		return nil, ErrOrderNotFound
	}
	if caller != o.Trader && caller != b.manager && caller != b.owner {
		return nil, ErrUnauthorizedAccess
	}
	return o, nil
}

func (b *Book) heapFor(s Side) *priceHeap {
	if s == Buy {
		return b.buys
	}
	return b.sells
}

func (b *Book) persistOrder(o *Order) {
	if b.persist == nil {
		return
	}
	if err := b.persist.SaveOrder(o); err != nil {
		b.log.Warnw("order_persist_failed", "ref", o.Ref.Hex(), "err", err)
	}
}

func (b *Book) persistTrade(t *Trade) {
	if b.persist == nil {
		return
	}
	if err := b.persist.SaveTrade(t.Party, t); err != nil {
		b.log.Warnw("trade_persist_failed", "trader", t.Party.Hex(), "seq", t.Seq, "err", err)
	}
	if t.Counterparty != t.Party {
		if err := b.persist.SaveTrade(t.Counterparty, t); err != nil {
			b.log.Warnw("trade_persist_failed", "trader", t.Counterparty.Hex(), "seq", t.Seq, "err", err)
		}
	}
}

// ==============================
// Queries
// ==============================

// Order returns a copy of the order record. Restricted to the order's
// trader, the owner, or the manager.
func (b *Book) Order(caller common.Address, ref common.Hash) (Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, err := b.authorizedOrder(caller, ref)
	if err != nil {
		return Order{}, err
	}
	return *o, nil
}

// OrdersOf returns copies of all of trader's orders, oldest first.
func (b *Book) OrdersOf(caller common.Address, trader common.Address) ([]Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != trader && caller != b.manager && caller != b.owner {
		return nil, ErrUnauthorizedAccess
	}
	refs := b.store.RefsOf(trader)
	out := make([]Order, 0, len(refs))
	for _, ref := range refs {
		if o, ok := b.store.Get(ref); ok {
			out = append(out, *o)
		}
	}
	return out, nil
}

// Trade returns trader's view of one trade.
func (b *Book) Trade(caller common.Address, trader common.Address, seq uint64) (Trade, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != trader && caller != b.manager && caller != b.owner {
		return Trade{}, ErrUnauthorizedAccess
	}
	t, ok := b.ledger.Get(trader, seq)
	if !ok {
		return Trade{}, ErrTradeNotFound
	}
	return *t, nil
}

// TradesOf returns copies of trader's unsettled trades, oldest first.
func (b *Book) TradesOf(caller common.Address, trader common.Address) ([]Trade, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != trader && caller != b.manager && caller != b.owner {
		return nil, ErrUnauthorizedAccess
	}
	ids := b.ledger.SeqIDs(trader)
	out := make([]Trade, 0, len(ids))
	for _, id := range ids {
		if t, ok := b.ledger.Get(trader, id); ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

// BestPrice returns the best resting price on a side, or ErrEmptyOrderbook.
// A zero price means the best entry is an at-market order.
func (b *Book) BestPrice(s Side) (fixed.Value, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.heapFor(s).bestPrice()
	if !ok {
		return fixed.Zero(), ErrEmptyOrderbook
	}
	return p, nil
}

// Depth returns the number of resting orders on a side.
func (b *Book) Depth(s Side) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.heapFor(s).depth()
}

// LastPrice returns the most recent execution price (zero before any trade).
func (b *Book) LastPrice() fixed.Value {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastPrice
}

// ==============================
// Restore
// ==============================

// Restore reloads persisted state on boot: active limit orders re-enter the
// heaps with their original FIFO sequence, stops re-park, and trades refill
// the ledger. Must be called before the book takes traffic.
func (b *Book) Restore(orders []*Order, trades map[common.Address][]*Trade) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, o := range orders {
		b.store.Add(o)
		if !o.Active() {
			continue
		}
		switch o.Kind {
		case Stop:
			b.stops = append(b.stops, o.Ref)
		case Limit:
			b.heapFor(o.Side).insert(o.LimitPrice, o.Ref, o.Seq)
			if o.Seq >= b.nextSeq {
				b.nextSeq = o.Seq + 1
			}
		}
	}
	for trader, ts := range trades {
		for _, t := range ts {
			b.ledger.Restore(trader, t)
		}
	}
	b.log.Infow("book_restored", "orders", len(orders), "buy_depth", b.buys.depth(), "sell_depth", b.sells.depth())
}
