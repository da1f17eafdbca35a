package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/coinex/internal/domain"
	"github.com/efreitasn/coinex/internal/engine"
	"github.com/efreitasn/coinex/internal/ledger"
	"github.com/efreitasn/coinex/internal/notify"
	"github.com/efreitasn/coinex/internal/pricing"
	"github.com/efreitasn/coinex/internal/service"
	"github.com/efreitasn/coinex/internal/store"
)

// testEnv bundles all dependencies for handler integration tests.
type testEnv struct {
	router http.Handler
	users  *store.UserStore
	assets *store.AssetStore
	btc    *domain.Ticker
}

func newTestEnv() *testEnv {
	users := store.NewUserStore()
	tickers := store.NewTickerStore()
	assets := store.NewAssetStore()
	orders := store.NewOrderStore()
	trades := store.NewTradeStore()
	lgr := ledger.New(users, assets)
	books := engine.NewBookManager()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	matcher := engine.NewMatcher(books, orders, trades, lgr,
		decimal.RequireFromString("0.015"), 3, logger)

	btc := tickers.Create("BTC", "Bitcoin", domain.TickerTypeCrypto)

	orderSvc := service.NewOrderService(matcher, users, tickers, orders, notify.NopSink{}, logger)
	accountSvc := service.NewAccountService(users, orders, assets, tickers, lgr, pricing.NewStaticOracle())
	bookSvc := service.NewBookService(books, tickers)
	router := NewRouter(orderSvc, accountSvc, bookSvc, logger)

	return &testEnv{
		router: router,
		users:  users,
		assets: assets,
		btc:    btc,
	}
}

func (env *testEnv) addUser(id int64, cents int64) {
	env.users.Put(&domain.User{ID: id, Balance: cents, CreatedAt: time.Now()})
}

func (env *testEnv) addHolding(userID int64, amount string) {
	a := env.assets.GetOrCreate(userID, env.btc.ID)
	a.Amount = decimal.RequireFromString(amount)
}

// doJSON sends a JSON request as the given user and returns the
// recorder. userID 0 omits the header.
func (env *testEnv) doJSON(t *testing.T, method, path string, userID int64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set("X-User-ID", strconv.FormatInt(userID, 10))
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

// decodeJSON decodes the response body into v.
func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rr.Body.String())
	}
}

// placeOrder submits an order via the API, expecting 201, and returns
// the response body.
func (env *testEnv) placeOrder(t *testing.T, userID int64, side, price, amount string) map[string]any {
	t.Helper()
	rr := env.doJSON(t, "POST", "/orders", userID, map[string]any{
		"symbol": "BTC",
		"side":   side,
		"price":  price,
		"amount": amount,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("place order: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	decodeJSON(t, rr, &resp)
	return resp
}

func TestHealthz(t *testing.T) {
	env := newTestEnv()
	rr := env.doJSON(t, "GET", "/healthz", 0, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestPlaceOrderEndpoint(t *testing.T) {
	env := newTestEnv()
	env.addUser(1, 1_000_000)

	resp := env.placeOrder(t, 1, "BUY", "9000", "1")
	if resp["status"] != "open" {
		t.Errorf("status = %v, want open", resp["status"])
	}
	if resp["side"] != "BUY" {
		t.Errorf("side = %v", resp["side"])
	}
	if resp["order_id"] == "" {
		t.Error("missing order_id")
	}
	if resp["filled_at"] != nil {
		t.Errorf("filled_at = %v, want null", resp["filled_at"])
	}
}

func TestPlaceOrderEndpoint_Matched(t *testing.T) {
	env := newTestEnv()
	env.addUser(1, 1_000_000)
	env.addUser(2, 0)
	env.addHolding(2, "1")

	env.placeOrder(t, 1, "BUY", "9000", "1")
	resp := env.placeOrder(t, 2, "SELL", "9000", "1")
	if resp["status"] != "filled" {
		t.Errorf("status = %v, want filled", resp["status"])
	}
	if resp["filled_at"] == nil {
		t.Error("filled_at missing on a filled order")
	}
}

func TestPlaceOrderEndpoint_StringAndNumberDecimals(t *testing.T) {
	env := newTestEnv()
	env.addUser(1, 10_000_000)

	// Price as JSON number, amount as string: both accepted.
	rr := env.doJSON(t, "POST", "/orders", 1, map[string]any{
		"symbol": "BTC",
		"side":   "BUY",
		"price":  9000.5,
		"amount": "0.000000010000000001",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestPlaceOrderEndpoint_Errors(t *testing.T) {
	env := newTestEnv()
	env.addUser(1, 100)

	tests := []struct {
		name   string
		userID int64
		body   any
		code   int
	}{
		{
			name:   "missing user header",
			userID: 0,
			body:   map[string]any{"symbol": "BTC", "side": "BUY", "price": "1", "amount": "1"},
			code:   http.StatusUnauthorized,
		},
		{
			name:   "unknown user",
			userID: 42,
			body:   map[string]any{"symbol": "BTC", "side": "BUY", "price": "1", "amount": "1"},
			code:   http.StatusNotFound,
		},
		{
			name:   "unknown symbol",
			userID: 1,
			body:   map[string]any{"symbol": "NOPE", "side": "BUY", "price": "1", "amount": "1"},
			code:   http.StatusNotFound,
		},
		{
			name:   "invalid side",
			userID: 1,
			body:   map[string]any{"symbol": "BTC", "side": "HOLD", "price": "1", "amount": "1"},
			code:   http.StatusUnprocessableEntity,
		},
		{
			name:   "negative price",
			userID: 1,
			body:   map[string]any{"symbol": "BTC", "side": "BUY", "price": "-1", "amount": "1"},
			code:   http.StatusUnprocessableEntity,
		},
		{
			name:   "unknown field",
			userID: 1,
			body:   map[string]any{"symbol": "BTC", "side": "BUY", "price": "1", "amount": "1", "bogus": true},
			code:   http.StatusBadRequest,
		},
		{
			name:   "insufficient funds",
			userID: 1,
			body:   map[string]any{"symbol": "BTC", "side": "BUY", "price": "9000", "amount": "1"},
			code:   http.StatusBadRequest,
		},
		{
			name:   "insufficient holdings",
			userID: 1,
			body:   map[string]any{"symbol": "BTC", "side": "SELL", "price": "9000", "amount": "1"},
			code:   http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.doJSON(t, "POST", "/orders", tt.userID, tt.body)
			if rr.Code != tt.code {
				t.Errorf("expected %d, got %d: %s", tt.code, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestPlaceOrderEndpoint_RequiresJSONContentType(t *testing.T) {
	env := newTestEnv()
	env.addUser(1, 1_000_000)

	req := httptest.NewRequest("POST", "/orders", strings.NewReader(`{"symbol":"BTC"}`))
	req.Header.Set("X-User-ID", "1")
	req.Header.Set("Content-Type", "text/plain")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestCancelOrderEndpoint(t *testing.T) {
	env := newTestEnv()
	env.addUser(1, 1_000_000)
	env.addUser(2, 1_000_000)

	placed := env.placeOrder(t, 1, "BUY", "9000", "1")
	orderID := placed["order_id"].(string)

	// Another user cannot cancel it.
	rr := env.doJSON(t, "DELETE", "/orders/"+orderID, 2, nil)
	if rr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rr.Code)
	}

	rr = env.doJSON(t, "DELETE", "/orders/"+orderID, 1, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	decodeJSON(t, rr, &resp)
	if resp["status"] != "cancelled" {
		t.Errorf("status = %v, want cancelled", resp["status"])
	}
	if resp["cancelled_at"] == nil {
		t.Error("cancelled_at missing")
	}

	// A second cancel is rejected.
	rr = env.doJSON(t, "DELETE", "/orders/"+orderID, 1, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 on re-cancel, got %d", rr.Code)
	}

	rr = env.doJSON(t, "DELETE", "/orders/unknown", 1, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown order, got %d", rr.Code)
	}
}

func TestListOrdersEndpoint(t *testing.T) {
	env := newTestEnv()
	env.addUser(1, 10_000_000)

	env.placeOrder(t, 1, "BUY", "9000", "1")
	env.placeOrder(t, 1, "BUY", "9100", "1")

	rr := env.doJSON(t, "GET", "/orders", 1, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp struct {
		Orders []map[string]any `json:"orders"`
	}
	decodeJSON(t, rr, &resp)
	if len(resp.Orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(resp.Orders))
	}
}

func TestOrderBookEndpoint(t *testing.T) {
	env := newTestEnv()
	env.addUser(1, 10_000_000)
	env.addUser(2, 0)
	env.addHolding(2, "5")

	env.placeOrder(t, 1, "BUY", "9000", "1")
	env.placeOrder(t, 2, "SELL", "9100", "1")

	rr := env.doJSON(t, "GET", "/orderbook?symbol=BTC", 0, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Symbol     string           `json:"symbol"`
		BuyOrders  []map[string]any `json:"buy_orders"`
		SellOrders []map[string]any `json:"sell_orders"`
		Stats      map[string]any   `json:"stats"`
	}
	decodeJSON(t, rr, &resp)
	if resp.Symbol != "BTC" {
		t.Errorf("symbol = %s", resp.Symbol)
	}
	if len(resp.BuyOrders) != 1 || len(resp.SellOrders) != 1 {
		t.Fatalf("sides = %d/%d, want 1/1", len(resp.BuyOrders), len(resp.SellOrders))
	}
	if resp.Stats["spread"] == nil {
		t.Error("stats missing spread")
	}

	// Validation errors.
	if rr := env.doJSON(t, "GET", "/orderbook", 0, nil); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing symbol: expected 422, got %d", rr.Code)
	}
	if rr := env.doJSON(t, "GET", "/orderbook?symbol=BTC&limit=abc", 0, nil); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad limit: expected 422, got %d", rr.Code)
	}
	if rr := env.doJSON(t, "GET", "/orderbook?symbol=BTC&limit=0", 0, nil); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("limit 0: expected 422, got %d", rr.Code)
	}
	if rr := env.doJSON(t, "GET", "/orderbook?symbol=NOPE", 0, nil); rr.Code != http.StatusNotFound {
		t.Errorf("unknown symbol: expected 404, got %d", rr.Code)
	}
}

func TestBalanceEndpoint(t *testing.T) {
	env := newTestEnv()
	env.addUser(1, 1_000_000)

	env.placeOrder(t, 1, "BUY", "9000", "1")

	rr := env.doJSON(t, "GET", "/balance", 1, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp struct {
		Available decimal.Decimal `json:"available_balance"`
		Total     decimal.Decimal `json:"total_balance"`
		Locked    decimal.Decimal `json:"locked_amount"`
	}
	decodeJSON(t, rr, &resp)
	if !resp.Available.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("available = %s, want 1000", resp.Available)
	}
	if !resp.Locked.Equal(decimal.NewFromInt(9000)) {
		t.Errorf("locked = %s, want 9000", resp.Locked)
	}
	if !resp.Total.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("total = %s, want 10000", resp.Total)
	}

	if rr := env.doJSON(t, "GET", "/balance", 42, nil); rr.Code != http.StatusNotFound {
		t.Errorf("unknown user: expected 404, got %d", rr.Code)
	}
}

func TestHoldingsEndpoint(t *testing.T) {
	env := newTestEnv()
	env.addUser(1, 0)
	env.addHolding(1, "0.5")

	rr := env.doJSON(t, "GET", "/holdings", 1, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp struct {
		Holdings []struct {
			Symbol string          `json:"symbol"`
			Value  decimal.Decimal `json:"value"`
		} `json:"holdings"`
	}
	decodeJSON(t, rr, &resp)
	if len(resp.Holdings) != 1 {
		t.Fatalf("got %d holdings, want 1", len(resp.Holdings))
	}
	if resp.Holdings[0].Symbol != "BTC" {
		t.Errorf("symbol = %s", resp.Holdings[0].Symbol)
	}
	// 0.5 BTC at the 42580 table price.
	if !resp.Holdings[0].Value.Equal(decimal.NewFromInt(21290)) {
		t.Errorf("value = %s, want 21290", resp.Holdings[0].Value)
	}
}

func TestUserIDHeaderValidation(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest("GET", "/balance", nil)
	req.Header.Set("X-User-ID", "abc")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("malformed header: expected 400, got %d", rr.Code)
	}

	req = httptest.NewRequest("GET", "/balance", nil)
	req.Header.Set("X-User-ID", "-3")
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("negative id: expected 400, got %d", rr.Code)
	}
}
