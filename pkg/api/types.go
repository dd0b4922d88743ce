package api

// API response types for REST endpoints and WebSocket messages.
// Fixed-point quantities travel as decimal strings.

// ==============================
// REST Response Types
// ==============================

// BookSummary represents the resting state of the order book.
type BookSummary struct {
	BestBid   string `json:"bestBid"`   // "" when the side is empty
	BestAsk   string `json:"bestAsk"`   // "0" means an at-market order on top
	BidDepth  int    `json:"bidDepth"`  // resting buy orders
	AskDepth  int    `json:"askDepth"`  // resting sell orders
	LastPrice string `json:"lastPrice"` // "0" before the first trade
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
}

// OrderInfo represents an order (resting or historical).
type OrderInfo struct {
	Ref       string `json:"ref"`
	Trader    string `json:"trader"`
	Side      string `json:"side"` // "buy" or "sell"
	Kind      string `json:"kind"` // "market", "limit", "stop"
	Price     string `json:"price"`
	StopPrice string `json:"stopPrice,omitempty"`
	Remaining string `json:"remaining"`
	Status    string `json:"status"` // "open", "partially_filled", "filled", "cancelled", "expired"
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// TradeInfo represents one trader's view of an executed trade.
type TradeInfo struct {
	Seq          uint64 `json:"seq"`
	Party        string `json:"party"`
	Counterparty string `json:"counterparty"`
	Side         string `json:"side"` // taker's side
	SecurityQty  string `json:"securityQty"`
	CurrencyQty  string `json:"currencyQty"`
	Price        string `json:"price"`
	ExecutedAt   int64  `json:"executedAt"`
	Reversal     bool   `json:"reversal,omitempty"`
	OriginalSeq  uint64 `json:"originalSeq,omitempty"`
}

// ==============================
// REST Request Types
// ==============================

// SwapRequest is the payload for POST /api/v1/swap. Data carries the
// hex-encoded order instruction payload; empty means a plain market order.
type SwapRequest struct {
	TokenIn  string `json:"tokenIn"`
	TokenOut string `json:"tokenOut"`
	Amount   string `json:"amount"`
	Trader   string `json:"trader"`
	GivenIn  bool   `json:"givenIn"`
	Data     string `json:"data,omitempty"`
}

// SwapResponse is the settled result of a swap.
type SwapResponse struct {
	Amount string `json:"amount"` // tokens out (given-in) or tokens in (given-out)
}

// ErrorResponse is returned for all errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ==============================
// WebSocket Message Types
// ==============================

// WSSubscribeRequest is sent by clients to manage channel subscriptions.
type WSSubscribeRequest struct {
	Op       string   `json:"op"`       // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"` // "trades", "book"
}

// TradeUpdate is broadcast on the "trades" channel for every execution.
type TradeUpdate struct {
	Type        string `json:"type"` // "trade"
	Seq         uint64 `json:"seq"`
	SecurityQty string `json:"securityQty"`
	CurrencyQty string `json:"currencyQty"`
	Price       string `json:"price"`
	Side        string `json:"side"`
	Reversal    bool   `json:"reversal,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

// BookUpdate is broadcast on the "book" channel after state changes.
type BookUpdate struct {
	Type      string `json:"type"` // "book"
	BestBid   string `json:"bestBid"`
	BestAsk   string `json:"bestAsk"`
	BidDepth  int    `json:"bidDepth"`
	AskDepth  int    `json:"askDepth"`
	LastPrice string `json:"lastPrice"`
	Timestamp int64  `json:"timestamp"`
}
