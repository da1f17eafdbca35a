package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/coinex/internal/domain"
	"github.com/efreitasn/coinex/internal/engine"
	"github.com/efreitasn/coinex/internal/store"
)

// BookRow represents a single open order in the order book response.
type BookRow struct {
	OrderID   string
	Price     decimal.Decimal
	Amount    decimal.Decimal
	Filled    decimal.Decimal
	Remaining decimal.Decimal
	Total     decimal.Decimal
	CreatedAt time.Time
}

// BookStats aggregates the market statistics of a book snapshot.
// MarketPrice is the average of the best bid and ask when both
// exist, else whichever exists, else zero.
type BookStats struct {
	MarketPrice     decimal.Decimal
	HighestBid      decimal.Decimal
	LowestAsk       decimal.Decimal
	Spread          decimal.Decimal
	TotalBuyVolume  decimal.Decimal
	TotalSellVolume decimal.Decimal
	TotalBuyValue   decimal.Decimal
	TotalSellValue  decimal.Decimal
}

// BookResponse is the order book for a symbol: buys best-first
// (highest price), sells best-first (lowest price), plus stats over
// the returned slices.
type BookResponse struct {
	Symbol     string
	BuyOrders  []BookRow
	SellOrders []BookRow
	Stats      BookStats
}

// BookService serves read-only order book snapshots.
type BookService struct {
	books   *engine.BookManager
	tickers *store.TickerStore
}

// NewBookService creates a BookService with the given dependencies.
func NewBookService(books *engine.BookManager, tickers *store.TickerStore) *BookService {
	return &BookService{
		books:   books,
		tickers: tickers,
	}
}

// OrderBook returns up to limit open orders per side for the symbol
// with aggregated stats. limit must be between 1 and 1000.
func (s *BookService) OrderBook(symbol string, limit int) (*BookResponse, error) {
	if limit < 1 || limit > 1000 {
		return nil, &domain.ValidationError{Field: "limit", Message: "must be between 1 and 1000"}
	}
	ticker, err := s.tickers.GetBySymbol(symbol)
	if err != nil {
		return nil, err
	}

	buys, sells := s.books.GetOrCreate(ticker.ID).Snapshot(limit)

	resp := &BookResponse{
		Symbol:     ticker.Symbol,
		BuyOrders:  toRows(buys),
		SellOrders: toRows(sells),
	}
	resp.Stats = computeStats(resp.BuyOrders, resp.SellOrders)
	return resp, nil
}

func toRows(orders []*domain.Order) []BookRow {
	rows := make([]BookRow, 0, len(orders))
	for _, o := range orders {
		remaining := o.Remaining()
		rows = append(rows, BookRow{
			OrderID:   o.ID,
			Price:     o.Price,
			Amount:    o.Amount,
			Filled:    o.FilledQuantity,
			Remaining: remaining,
			Total:     o.Total(),
			CreatedAt: o.OpenedAt,
		})
	}
	return rows
}

// computeStats derives the market stats from the returned slices,
// which arrive best-price-first on both sides.
func computeStats(buys, sells []BookRow) BookStats {
	stats := BookStats{
		MarketPrice:     decimal.Zero,
		HighestBid:      decimal.Zero,
		LowestAsk:       decimal.Zero,
		Spread:          decimal.Zero,
		TotalBuyVolume:  decimal.Zero,
		TotalSellVolume: decimal.Zero,
		TotalBuyValue:   decimal.Zero,
		TotalSellValue:  decimal.Zero,
	}

	hasBid := len(buys) > 0
	hasAsk := len(sells) > 0
	if hasBid {
		stats.HighestBid = buys[0].Price
	}
	if hasAsk {
		stats.LowestAsk = sells[0].Price
	}
	switch {
	case hasBid && hasAsk:
		stats.MarketPrice = stats.HighestBid.Add(stats.LowestAsk).Div(decimal.NewFromInt(2))
		stats.Spread = stats.LowestAsk.Sub(stats.HighestBid)
	case hasBid:
		stats.MarketPrice = stats.HighestBid
	case hasAsk:
		stats.MarketPrice = stats.LowestAsk
	}

	for _, row := range buys {
		stats.TotalBuyVolume = stats.TotalBuyVolume.Add(row.Remaining)
		stats.TotalBuyValue = stats.TotalBuyValue.Add(row.Remaining.Mul(row.Price))
	}
	for _, row := range sells {
		stats.TotalSellVolume = stats.TotalSellVolume.Add(row.Remaining)
		stats.TotalSellValue = stats.TotalSellValue.Add(row.Remaining.Mul(row.Price))
	}
	return stats
}
