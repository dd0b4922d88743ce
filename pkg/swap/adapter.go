package swap

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/verifiedmkt/poolbook/pkg/book"
	"github.com/verifiedmkt/poolbook/pkg/fixed"
)

// Request is one inbound swap from the pool. GivenIn means Amount is
// denominated in TokenIn (the trader states what they pay); otherwise it is
// denominated in TokenOut (the trader states what they want).
type Request struct {
	TokenIn  common.Address
	TokenOut common.Address
	Amount   fixed.Value
	Trader   common.Address
	GivenIn  bool
	Data     []byte
}

// Adapter sits between the pool's swap interface and the matching engine.
// It owns the token-pair mapping (which token is the security, which the
// currency) and calls the book with the pool's manager identity.
type Adapter struct {
	book     *book.Book
	manager  common.Address
	security common.Address
	currency common.Address
	log      *zap.SugaredLogger
}

func NewAdapter(b *book.Book, manager, security, currency common.Address, logger *zap.SugaredLogger) *Adapter {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Adapter{book: b, manager: manager, security: security, currency: currency, log: logger}
}

// OnSwap decodes the request's order instructions, runs the book operation
// and returns the settled amount: for given-in swaps the tokens-out to
// deliver, for given-out swaps the tokens-in to collect. Cancels return the
// unfilled quantity so the pool can refund the backing tokens; edits return
// zero. Resting limit and parked stop orders also return zero — nothing has
// settled yet.
func (a *Adapter) OnSwap(req Request) (fixed.Value, error) {
	side, err := a.sideOf(req)
	if err != nil {
		return fixed.Zero(), err
	}

	ins, err := DecodeInstruction(req.Data)
	if err != nil {
		return fixed.Zero(), err
	}

	switch ins.Op {
	case OpCancel:
		remaining, err := a.book.Cancel(req.Trader, ins.Ref)
		if err != nil {
			return fixed.Zero(), err
		}
		a.log.Infow("swap_cancel", "trader", req.Trader.Hex(), "ref", ins.Ref.Hex(), "refund", remaining.String())
		return remaining, nil

	case OpEdit:
		if err := a.book.Edit(req.Trader, ins.Ref, req.Amount, ins.Price); err != nil {
			return fixed.Zero(), err
		}
		return fixed.Zero(), nil
	}

	sub, err := a.submission(req, side, ins)
	if err != nil {
		return fixed.Zero(), err
	}
	res, err := a.book.Place(a.manager, sub)
	if err != nil {
		return fixed.Zero(), err
	}

	a.log.Infow("swap_order", "trader", req.Trader.Hex(), "ref", res.Ref.Hex(),
		"op", ins.Op.String(), "status", res.Status.String(),
		"security", res.SecurityTraded.String(), "currency", res.CurrencyTraded.String())
	return a.settledAmount(req, side, res), nil
}

// sideOf maps the token pair onto a book side. Paying currency for security
// is a buy; paying security for currency is a sell.
func (a *Adapter) sideOf(req Request) (book.Side, error) {
	switch {
	case req.TokenIn == a.currency && req.TokenOut == a.security:
		return book.Buy, nil
	case req.TokenIn == a.security && req.TokenOut == a.currency:
		return book.Sell, nil
	default:
		return 0, fmt.Errorf("pair %s/%s: %w", req.TokenIn.Hex(), req.TokenOut.Hex(), book.ErrInvalidToken)
	}
}

// submission turns a decoded new-order instruction into a book submission.
// The request's amount denomination follows the swap direction: given-in
// amounts are in TokenIn, given-out amounts in TokenOut.
func (a *Adapter) submission(req Request, side book.Side, ins Instruction) (book.Submission, error) {
	unit := book.SecurityUnits
	if (side == book.Buy) == req.GivenIn {
		// Buy given-in pays currency; sell given-out wants currency.
		unit = book.CurrencyUnits
	}

	sub := book.Submission{
		Trader: req.Trader,
		Side:   side,
		Qty:    req.Amount,
		Unit:   unit,
	}

	switch ins.Op {
	case OpNone, OpMarket:
		sub.Kind = book.Market

	case OpLimit:
		sub.Kind = book.Limit
		sub.LimitPrice = ins.Price
		if unit == book.CurrencyUnits {
			// Limit orders rest in security units; convert at the limit
			// price. A currency amount with no price has no conversion.
			if ins.Price.IsZero() {
				return book.Submission{}, fmt.Errorf("currency-denominated limit without price: %w", book.ErrUnhandledRequest)
			}
			sub.Qty = req.Amount.DivDown(ins.Price)
			sub.Unit = book.SecurityUnits
		}

	case OpStop:
		sub.Kind = book.Stop
		sub.StopPrice = ins.Price

	default:
		return book.Submission{}, fmt.Errorf("op %s as new order: %w", ins.Op, book.ErrUnhandledRequest)
	}
	return sub, nil
}

// settledAmount picks the result leg the pool settles on.
func (a *Adapter) settledAmount(req Request, side book.Side, res book.Result) fixed.Value {
	if req.GivenIn {
		// Deliver the out token.
		if side == book.Buy {
			return res.SecurityTraded
		}
		return res.CurrencyTraded
	}
	// Collect the in token.
	if side == book.Buy {
		return res.CurrencyTraded
	}
	return res.SecurityTraded
}
