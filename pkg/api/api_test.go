package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/verifiedmkt/poolbook/pkg/book"
	"github.com/verifiedmkt/poolbook/pkg/fixed"
	"github.com/verifiedmkt/poolbook/pkg/swap"
	"github.com/verifiedmkt/poolbook/pkg/util"
)

var (
	secToken = common.HexToAddress("0x0000000000000000000000000000000000001001")
	curToken = common.HexToAddress("0x0000000000000000000000000000000000001002")
	poolAddr = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob      = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	clock := util.FixedClock{T: time.UnixMilli(1_700_000_000_000)}
	b := book.New(poolAddr, poolAddr, book.Params{}, clock, nil)
	adapter := swap.NewAdapter(b, poolAddr, secToken, curToken, nil)
	return NewServer(b, adapter, nil)
}

func doJSON(t *testing.T, s *Server, method, path, body string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("")
	} else {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return rec
}

func placeLimitSell(t *testing.T, s *Server, trader common.Address, qty, price string) {
	t.Helper()
	data, err := swap.EncodeOrder("Limit", fixed.MustParse(price))
	if err != nil {
		t.Fatal(err)
	}
	body := fmt.Sprintf(`{"tokenIn":%q,"tokenOut":%q,"amount":%q,"trader":%q,"givenIn":true,"data":"0x%x"}`,
		secToken.Hex(), curToken.Hex(), qty, trader.Hex(), data)
	rec := doJSON(t, s, "POST", "/api/v1/swap", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("swap: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestBookSummaryEndpoint(t *testing.T) {
	s := newTestServer(t)

	var sum BookSummary
	doJSON(t, s, "GET", "/api/v1/book", "", &sum)
	if sum.BidDepth != 0 || sum.AskDepth != 0 || sum.BestAsk != "" {
		t.Errorf("empty book summary = %+v", sum)
	}

	placeLimitSell(t, s, bob, "10", "100")
	doJSON(t, s, "GET", "/api/v1/book", "", &sum)
	if sum.AskDepth != 1 || sum.BestAsk != "100" {
		t.Errorf("summary after place = %+v", sum)
	}
}

func TestSwapAndTraderQueries(t *testing.T) {
	s := newTestServer(t)
	placeLimitSell(t, s, bob, "10", "100")

	// Alice buys 5 at market, spending currency for security.
	body := fmt.Sprintf(`{"tokenIn":%q,"tokenOut":%q,"amount":"5","trader":%q,"givenIn":false}`,
		curToken.Hex(), secToken.Hex(), alice.Hex())
	var res SwapResponse
	rec := doJSON(t, s, "POST", "/api/v1/swap", body, &res)
	if rec.Code != http.StatusOK {
		t.Fatalf("swap: status %d body %s", rec.Code, rec.Body.String())
	}
	if res.Amount != "500" {
		t.Errorf("collected amount = %s, want 500", res.Amount)
	}

	var trades []TradeInfo
	doJSON(t, s, "GET", "/api/v1/accounts/"+alice.Hex()+"/trades", "", &trades)
	if len(trades) != 1 || trades[0].Price != "100" || trades[0].SecurityQty != "5" {
		t.Fatalf("trades = %+v", trades)
	}

	var orders []OrderInfo
	doJSON(t, s, "GET", "/api/v1/accounts/"+bob.Hex()+"/orders", "", &orders)
	if len(orders) != 1 || orders[0].Remaining != "5" || orders[0].Status != "partially_filled" {
		t.Fatalf("orders = %+v", orders)
	}

	var single TradeInfo
	path := fmt.Sprintf("/api/v1/accounts/%s/trades/%d", bob.Hex(), trades[0].Seq)
	doJSON(t, s, "GET", path, "", &single)
	if single.Seq != trades[0].Seq {
		t.Errorf("trade by seq = %+v", single)
	}
}

func TestQueryScoping(t *testing.T) {
	s := newTestServer(t)
	placeLimitSell(t, s, bob, "10", "100")

	var orders []OrderInfo
	doJSON(t, s, "GET", "/api/v1/accounts/"+bob.Hex()+"/orders", "", &orders)
	if len(orders) != 1 {
		t.Fatalf("orders = %d", len(orders))
	}

	// Alice cannot read bob's order through her own scope.
	rec := doJSON(t, s, "GET", "/api/v1/accounts/"+alice.Hex()+"/orders/"+orders[0].Ref, "", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign order read: status %d", rec.Code)
	}

	rec = doJSON(t, s, "GET", "/api/v1/accounts/not-an-address/orders", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad address: status %d", rec.Code)
	}
}

func TestSwapErrorStatuses(t *testing.T) {
	s := newTestServer(t)

	// Market order on an empty book is rejected, book untouched.
	body := fmt.Sprintf(`{"tokenIn":%q,"tokenOut":%q,"amount":"5","trader":%q,"givenIn":true}`,
		curToken.Hex(), secToken.Hex(), alice.Hex())
	rec := doJSON(t, s, "POST", "/api/v1/swap", body, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("insufficient liquidity: status %d body %s", rec.Code, rec.Body.String())
	}

	// Unknown token pair.
	body = fmt.Sprintf(`{"tokenIn":%q,"tokenOut":%q,"amount":"5","trader":%q,"givenIn":true}`,
		alice.Hex(), secToken.Hex(), alice.Hex())
	rec = doJSON(t, s, "POST", "/api/v1/swap", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid token: status %d", rec.Code)
	}
}
