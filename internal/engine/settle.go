package engine

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/efreitasn/coinex/internal/domain"
)

// settle executes a confirmed match between the incoming order and a
// resting candidate with identical remaining quantity. The caller
// holds the book's write lock, which makes the whole sequence one
// atomic unit: either everything below commits or nothing does.
//
// The trade executes at the sell order's price regardless of which
// side arrived first, and the buy order's price is rewritten to that
// executed price.
func (m *Matcher) settle(book *Book, incoming, resting *domain.Order) (*domain.Trade, error) {
	buy, sell := incoming, resting
	if incoming.Side == domain.OrderSideSell {
		buy, sell = resting, incoming
	}

	now := time.Now()
	price := sell.Price
	quantity := buy.Remaining() // == sell.Remaining() by the exact-match rule
	value := price.Mul(quantity)

	// Commissions are computed per side at the same rate and stored
	// to cents.
	buyCommission := value.Mul(m.commissionRate).Round(domain.CurrencyPrecision)
	sellCommission := value.Mul(m.commissionRate).Round(domain.CurrencyPrecision)

	// The seller's locked holding leaves the ledger first. This is
	// the only fallible ledger step; a failure here aborts the
	// settlement with zero visible change.
	if err := m.ledger.ReleaseLocked(sell.UserID, sell.TickerID, quantity); err != nil {
		return nil, err
	}

	// Claim both orders with a conditional OPEN→FILLED transition.
	// The claim applies the whole fill in one critical section: the
	// statuses, the executed price on the buy side, and both filled
	// quantities, so concurrent readers never see a half-settled
	// order. A lost claim restores the seller's lock and reports a
	// conflict.
	if err := m.orders.FillPair(buy.ID, sell.ID, price, quantity, now); err != nil {
		m.ledger.RestoreLocked(sell.UserID, sell.TickerID, quantity)
		return nil, err
	}

	// Asset leg: the traded quantity moves to the buyer.
	m.ledger.CreditAsset(buy.UserID, buy.TickerID, quantity)

	// Cash leg: the seller receives the trade value minus the sell
	// commission. The buyer's cash was locked in full at placement and
	// is consumed as-is; the buy commission is recorded on the trade
	// but never deducted from any balance. That asymmetry is
	// intentional.
	if err := m.ledger.CreditFunds(sell.UserID, value.Sub(sellCommission)); err != nil {
		return nil, err
	}

	trade := &domain.Trade{
		ID:             uuid.New().String(),
		BuyOrderID:     buy.ID,
		SellOrderID:    sell.ID,
		TickerID:       buy.TickerID,
		Price:          price,
		Quantity:       quantity,
		BuyCommission:  buyCommission,
		SellCommission: sellCommission,
		ExecutedAt:     now,
	}
	m.trades.Append(trade)

	book.Remove(resting.ID)

	m.logger.Info("trade settled",
		slog.String("trade_id", trade.ID),
		slog.String("buy_order_id", buy.ID),
		slog.String("sell_order_id", sell.ID),
		slog.Int64("buyer_id", buy.UserID),
		slog.Int64("seller_id", sell.UserID),
		slog.Int64("ticker_id", trade.TickerID),
		slog.String("price", price.String()),
		slog.String("quantity", quantity.String()),
		slog.String("value", value.String()),
		slog.String("buy_commission", buyCommission.String()),
		slog.String("sell_commission", sellCommission.String()),
		slog.String("seller_receives", value.Sub(sellCommission).String()),
	)

	return trade, nil
}
