package book

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/verifiedmkt/poolbook/pkg/fixed"
)

// Side is the order direction: buyers take security, sellers take currency.
type Side int8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// Opposite returns the counter side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Kind is the order type.
//
// Market orders are depth-or-reject and never rest. Limit orders rest when
// unmatched; a Limit order with price 0 rests "at market" and executes at its
// counterparty's price. Stop orders park off-book until the last traded price
// crosses their stop price, then execute as market orders.
type Kind int8

const (
	Market Kind = iota
	Limit
	Stop
)

func (k Kind) String() string {
	switch k {
	case Market:
		return "market"
	case Limit:
		return "limit"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

// Unit says which asset RemainingQty is denominated in. Resting orders are
// always in security units; market orders may arrive denominated in the
// currency they spend instead.
type Unit int8

const (
	SecurityUnits Unit = iota
	CurrencyUnits
)

func (u Unit) String() string {
	switch u {
	case SecurityUnits:
		return "security"
	case CurrencyUnits:
		return "currency"
	default:
		return "unknown"
	}
}

// Status is the order lifecycle state.
type Status int8

const (
	StatusOpen Status = iota
	StatusPartiallyFilled
	StatusFilled
	StatusCancelled
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusPartiallyFilled:
		return "partially_filled"
	case StatusFilled:
		return "filled"
	case StatusCancelled:
		return "cancelled"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Order is a single order record. RemainingQty only decreases while the order
// is active; Status only advances.
type Order struct {
	Ref    common.Hash    `json:"ref"`
	Trader common.Address `json:"trader"`
	Side   Side           `json:"side"`
	Kind   Kind           `json:"kind"`
	Unit   Unit           `json:"unit"`

	RemainingQty fixed.Value `json:"remainingQty"`
	LimitPrice   fixed.Value `json:"limitPrice"` // 0 = at-market
	StopPrice    fixed.Value `json:"stopPrice"`  // stop orders only

	Status Status `json:"status"`

	// Seq is the book insertion sequence; same-priced resting orders match
	// in ascending Seq (FIFO).
	Seq uint64 `json:"seq"`

	CreatedAt int64 `json:"createdAt"` // unix milliseconds
	UpdatedAt int64 `json:"updatedAt"`
}

// Active reports whether the order can still match, cancel or edit.
func (o *Order) Active() bool {
	return o.Status == StatusOpen || o.Status == StatusPartiallyFilled
}

// Trade is one match event. Party is the taker, Counterparty the maker whose
// resting price set the execution price. Records are immutable once created;
// a reversal appends a new record referencing the original rather than
// rewriting history.
type Trade struct {
	Seq uint64 `json:"seq"`

	PartyRef        common.Hash    `json:"partyRef"`
	CounterpartyRef common.Hash    `json:"counterpartyRef"`
	Party           common.Address `json:"party"`
	Counterparty    common.Address `json:"counterparty"`
	PartySide       Side           `json:"partySide"`

	SecurityQty fixed.Value `json:"securityQty"`
	CurrencyQty fixed.Value `json:"currencyQty"`
	Price       fixed.Value `json:"price"`

	ExecutedAt int64 `json:"executedAt"` // unix milliseconds

	Reversal    bool   `json:"reversal,omitempty"`
	OriginalSeq uint64 `json:"originalSeq,omitempty"`
}
