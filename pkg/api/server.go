package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/verifiedmkt/poolbook/pkg/book"
	"github.com/verifiedmkt/poolbook/pkg/fixed"
	"github.com/verifiedmkt/poolbook/pkg/swap"
)

// Server exposes the book over REST and WebSocket. Query routes are scoped
// per trader address: the path address is also the caller identity, so the
// book's own access checks apply (a trader only sees their own records).
type Server struct {
	book    *book.Book
	adapter *swap.Adapter
	router  *mux.Router
	hub     *Hub
	log     *zap.SugaredLogger
}

func NewServer(b *book.Book, adapter *swap.Adapter, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{
		book:    b,
		adapter: adapter,
		router:  mux.NewRouter(),
		hub:     NewHub(logger),
		log:     logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Book endpoints
	api.HandleFunc("/book", s.handleGetBook).Methods("GET")

	// Trader-scoped endpoints
	api.HandleFunc("/accounts/{address}/orders", s.handleGetOrders).Methods("GET")
	api.HandleFunc("/accounts/{address}/orders/{ref}", s.handleGetOrder).Methods("GET")
	api.HandleFunc("/accounts/{address}/trades", s.handleGetTrades).Methods("GET")
	api.HandleFunc("/accounts/{address}/trades/{seq}", s.handleGetTrade).Methods("GET")

	// Swap submission
	api.HandleFunc("/swap", s.handleSwap).Methods("POST")

	// WebSocket endpoint
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start runs the WebSocket hub and blocks serving HTTP.
func (s *Server) Start(addr string) error {
	go s.hub.Run()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:3001"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	s.log.Infow("api_listening", "addr", addr)
	return http.ListenAndServe(addr, c.Handler(s.router))
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.bookSummary())
}

func (s *Server) bookSummary() BookSummary {
	out := BookSummary{
		BidDepth:  s.book.Depth(book.Buy),
		AskDepth:  s.book.Depth(book.Sell),
		LastPrice: s.book.LastPrice().String(),
		Timestamp: time.Now().UnixMilli(),
	}
	if p, err := s.book.BestPrice(book.Buy); err == nil {
		out.BestBid = p.String()
	}
	if p, err := s.book.BestPrice(book.Sell); err == nil {
		out.BestAsk = p.String()
	}
	return out
}

func (s *Server) handleGetOrders(w http.ResponseWriter, r *http.Request) {
	trader, ok := pathAddress(w, r)
	if !ok {
		return
	}
	orders, err := s.book.OrdersOf(trader, trader)
	if err != nil {
		respondBookError(w, err)
		return
	}
	out := make([]OrderInfo, len(orders))
	for i := range orders {
		out[i] = orderInfo(&orders[i])
	}
	respondJSON(w, out)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	trader, ok := pathAddress(w, r)
	if !ok {
		return
	}
	ref := common.HexToHash(mux.Vars(r)["ref"])
	o, err := s.book.Order(trader, ref)
	if err != nil {
		respondBookError(w, err)
		return
	}
	respondJSON(w, orderInfo(&o))
}

func (s *Server) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	trader, ok := pathAddress(w, r)
	if !ok {
		return
	}
	trades, err := s.book.TradesOf(trader, trader)
	if err != nil {
		respondBookError(w, err)
		return
	}
	out := make([]TradeInfo, len(trades))
	for i := range trades {
		out[i] = tradeInfo(&trades[i])
	}
	respondJSON(w, out)
}

func (s *Server) handleGetTrade(w http.ResponseWriter, r *http.Request) {
	trader, ok := pathAddress(w, r)
	if !ok {
		return
	}
	seq, err := strconv.ParseUint(mux.Vars(r)["seq"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sequence id", err.Error())
		return
	}
	t, err := s.book.Trade(trader, trader, seq)
	if err != nil {
		respondBookError(w, err)
		return
	}
	respondJSON(w, tradeInfo(&t))
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var req SwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if !common.IsHexAddress(req.Trader) || !common.IsHexAddress(req.TokenIn) || !common.IsHexAddress(req.TokenOut) {
		respondError(w, http.StatusBadRequest, "invalid address", "")
		return
	}
	amount, err := fixed.Parse(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}
	data, err := hex.DecodeString(strings.TrimPrefix(req.Data, "0x"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid instruction payload", err.Error())
		return
	}

	out, err := s.adapter.OnSwap(swap.Request{
		TokenIn:  common.HexToAddress(req.TokenIn),
		TokenOut: common.HexToAddress(req.TokenOut),
		Amount:   amount,
		Trader:   common.HexToAddress(req.Trader),
		GivenIn:  req.GivenIn,
		Data:     data,
	})
	if err != nil {
		respondBookError(w, err)
		return
	}

	s.BroadcastBook()
	respondJSON(w, SwapResponse{Amount: out.String()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// ==============================
// Broadcast Methods
// ==============================

// BroadcastTrade publishes an execution to "trades" subscribers. Wire it to
// the book's OnTrade hook.
func (s *Server) BroadcastTrade(t *book.Trade) {
	s.hub.BroadcastToChannel("trades", TradeUpdate{
		Type:        "trade",
		Seq:         t.Seq,
		SecurityQty: t.SecurityQty.String(),
		CurrencyQty: t.CurrencyQty.String(),
		Price:       t.Price.String(),
		Side:        t.PartySide.String(),
		Reversal:    t.Reversal,
		Timestamp:   t.ExecutedAt,
	})
}

// BroadcastBook publishes the current top-of-book to "book" subscribers.
func (s *Server) BroadcastBook() {
	sum := s.bookSummary()
	s.hub.BroadcastToChannel("book", BookUpdate{
		Type:      "book",
		BestBid:   sum.BestBid,
		BestAsk:   sum.BestAsk,
		BidDepth:  sum.BidDepth,
		AskDepth:  sum.AskDepth,
		LastPrice: sum.LastPrice,
		Timestamp: sum.Timestamp,
	})
}

// ==============================
// Helper Functions
// ==============================

func pathAddress(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	raw := mux.Vars(r)["address"]
	if !common.IsHexAddress(raw) {
		respondError(w, http.StatusBadRequest, "invalid address", "")
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

func orderInfo(o *book.Order) OrderInfo {
	info := OrderInfo{
		Ref:       o.Ref.Hex(),
		Trader:    o.Trader.Hex(),
		Side:      o.Side.String(),
		Kind:      o.Kind.String(),
		Price:     o.LimitPrice.String(),
		Remaining: o.RemainingQty.String(),
		Status:    o.Status.String(),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if !o.StopPrice.IsZero() {
		info.StopPrice = o.StopPrice.String()
	}
	return info
}

func tradeInfo(t *book.Trade) TradeInfo {
	return TradeInfo{
		Seq:          t.Seq,
		Party:        t.Party.Hex(),
		Counterparty: t.Counterparty.Hex(),
		Side:         t.PartySide.String(),
		SecurityQty:  t.SecurityQty.String(),
		CurrencyQty:  t.CurrencyQty.String(),
		Price:        t.Price.String(),
		ExecutedAt:   t.ExecutedAt,
		Reversal:     t.Reversal,
		OriginalSeq:  t.OriginalSeq,
	}
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Message: message,
	})
}

// respondBookError maps the book's error taxonomy onto HTTP statuses.
func respondBookError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, book.ErrUnauthorizedAccess):
		status = http.StatusForbidden
	case errors.Is(err, book.ErrOrderNotFound), errors.Is(err, book.ErrTradeNotFound),
		errors.Is(err, book.ErrEmptyOrderbook):
		status = http.StatusNotFound
	case errors.Is(err, book.ErrOrderAlreadyFilled):
		status = http.StatusConflict
	case errors.Is(err, book.ErrInsufficientLiquidity), errors.Is(err, book.ErrPriceOutOfBound),
		errors.Is(err, book.ErrOrderBelowMinimumSize):
		status = http.StatusUnprocessableEntity
	}
	respondError(w, status, err.Error(), "")
}
