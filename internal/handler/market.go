package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/coinex/internal/service"
)

// MarketHandler handles order book, holdings, and balance endpoints.
type MarketHandler struct {
	accountSvc *service.AccountService
	bookSvc    *service.BookService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(accountSvc *service.AccountService, bookSvc *service.BookService) *MarketHandler {
	return &MarketHandler{
		accountSvc: accountSvc,
		bookSvc:    bookSvc,
	}
}

// bookRowResponse is one open order in the order book response.
type bookRowResponse struct {
	OrderID   string          `json:"order_id"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	Filled    decimal.Decimal `json:"filled"`
	Remaining decimal.Decimal `json:"remaining"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt string          `json:"created_at"`
}

type bookStatsResponse struct {
	MarketPrice     decimal.Decimal `json:"market_price"`
	HighestBid      decimal.Decimal `json:"highest_bid"`
	LowestAsk       decimal.Decimal `json:"lowest_ask"`
	Spread          decimal.Decimal `json:"spread"`
	TotalBuyVolume  decimal.Decimal `json:"total_buy_volume"`
	TotalSellVolume decimal.Decimal `json:"total_sell_volume"`
	TotalBuyValue   decimal.Decimal `json:"total_buy_value"`
	TotalSellValue  decimal.Decimal `json:"total_sell_value"`
}

type bookResponse struct {
	Symbol     string            `json:"symbol"`
	BuyOrders  []bookRowResponse `json:"buy_orders"`
	SellOrders []bookRowResponse `json:"sell_orders"`
	Stats      bookStatsResponse `json:"stats"`
}

// GetOrderBook handles GET /orderbook?symbol=&limit=.
func (h *MarketHandler) GetOrderBook(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		WriteError(w, http.StatusUnprocessableEntity, "validation_error", "symbol is required")
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, http.StatusUnprocessableEntity, "validation_error", "limit must be an integer")
			return
		}
		limit = n
	}

	book, err := h.bookSvc.OrderBook(symbol, limit)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	resp := bookResponse{
		Symbol:     book.Symbol,
		BuyOrders:  toRowResponses(book.BuyOrders),
		SellOrders: toRowResponses(book.SellOrders),
		Stats: bookStatsResponse{
			MarketPrice:     book.Stats.MarketPrice,
			HighestBid:      book.Stats.HighestBid,
			LowestAsk:       book.Stats.LowestAsk,
			Spread:          book.Stats.Spread,
			TotalBuyVolume:  book.Stats.TotalBuyVolume,
			TotalSellVolume: book.Stats.TotalSellVolume,
			TotalBuyValue:   book.Stats.TotalBuyValue,
			TotalSellValue:  book.Stats.TotalSellValue,
		},
	}
	WriteJSON(w, http.StatusOK, resp)
}

func toRowResponses(rows []service.BookRow) []bookRowResponse {
	resp := make([]bookRowResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, bookRowResponse{
			OrderID:   row.OrderID,
			Price:     row.Price,
			Amount:    row.Amount,
			Filled:    row.Filled,
			Remaining: row.Remaining,
			Total:     row.Total,
			CreatedAt: row.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp
}

// holdingResponse is one sellable position in the holdings response.
type holdingResponse struct {
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	Available    decimal.Decimal `json:"available"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Value        decimal.Decimal `json:"value"`
}

// GetHoldings handles GET /holdings.
func (h *MarketHandler) GetHoldings(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	holdings, err := h.accountSvc.Holdings(uid)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	resp := make([]holdingResponse, 0, len(holdings))
	for _, hd := range holdings {
		resp = append(resp, holdingResponse{
			Symbol:       hd.Symbol,
			Name:         hd.Name,
			Available:    hd.Available,
			CurrentPrice: hd.CurrentPrice,
			Value:        hd.Value,
		})
	}
	WriteJSON(w, http.StatusOK, map[string]any{"holdings": resp})
}

// balanceResponse is the JSON shape of the balance endpoint.
type balanceResponse struct {
	AvailableBalance decimal.Decimal `json:"available_balance"`
	TotalBalance     decimal.Decimal `json:"total_balance"`
	LockedAmount     decimal.Decimal `json:"locked_amount"`
}

// GetBalance handles GET /balance.
func (h *MarketHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	balance, err := h.accountSvc.Balance(uid)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, balanceResponse{
		AvailableBalance: balance.Available,
		TotalBalance:     balance.Total,
		LockedAmount:     balance.Locked,
	})
}
