package book

import "errors"

// Every error aborts the enclosing order submission atomically; the engine
// restores any speculative heap pops before returning one of these.
var (
	ErrOrderAlreadyFilled    = errors.New("order already filled or cancelled")
	ErrUnauthorizedAccess    = errors.New("unauthorized access")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrOrderBelowMinimumSize = errors.New("order below minimum size")
	ErrPriceOutOfBound       = errors.New("price out of bound")
	ErrInvalidToken          = errors.New("invalid token")
	ErrUnhandledRequest      = errors.New("unhandled request")
	ErrEmptyOrderbook        = errors.New("empty orderbook")
	ErrOrderNotFound         = errors.New("order not found")
	ErrTradeNotFound         = errors.New("trade not found")
)
