package domain

// TickerType classifies a tradable symbol.
type TickerType string

const (
	TickerTypeCrypto    TickerType = "crypto"
	TickerTypeCurrency  TickerType = "currency"
	TickerTypeCommodity TickerType = "commodity"
	TickerTypeStock     TickerType = "stock"
)

// Ticker represents a tradable symbol. Tickers are immutable once
// created.
type Ticker struct {
	ID     int64
	Symbol string
	Name   string
	Type   TickerType
}
