package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/efreitasn/coinex/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WebhookSink delivers notifications as HTTP POSTs to a single
// endpoint. Delivery is fire-and-forget: errors are dropped, and
// nothing in the core ever waits on a delivery.
type WebhookSink struct {
	url    string
	client *http.Client
}

// NewWebhookSink creates a WebhookSink posting to url with the given
// per-request timeout.
func NewWebhookSink(url string, timeout time.Duration) *WebhookSink {
	return &WebhookSink{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// orderEventPayload is the JSON body for order.* events.
type orderEventPayload struct {
	Event     string          `json:"event"`
	Timestamp string          `json:"timestamp"`
	OrderID   string          `json:"order_id"`
	UserID    int64           `json:"user_id"`
	TickerID  int64           `json:"ticker_id"`
	Side      string          `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	Filled    decimal.Decimal `json:"filled_quantity"`
	Status    string          `json:"status"`
}

// tradeEventPayload is the JSON body for trade.executed events.
type tradeEventPayload struct {
	Event          string          `json:"event"`
	Timestamp      string          `json:"timestamp"`
	TradeID        string          `json:"trade_id"`
	BuyOrderID     string          `json:"buy_order_id"`
	SellOrderID    string          `json:"sell_order_id"`
	BuyUserID      int64           `json:"buy_user_id"`
	SellUserID     int64           `json:"sell_user_id"`
	TickerID       int64           `json:"ticker_id"`
	Price          decimal.Decimal `json:"price"`
	Quantity       decimal.Decimal `json:"quantity"`
	BuyCommission  decimal.Decimal `json:"buy_commission"`
	SellCommission decimal.Decimal `json:"sell_commission"`
}

// profileEventPayload is the JSON body for profile.updated events.
type profileEventPayload struct {
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"`
	UserID    int64  `json:"user_id"`
}

// OrderUpdated posts an order.<action> event.
func (s *WebhookSink) OrderUpdated(order *domain.Order, action string) {
	payload := orderEventPayload{
		Event:     "order." + action,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		OrderID:   order.ID,
		UserID:    order.UserID,
		TickerID:  order.TickerID,
		Side:      string(order.Side),
		Price:     order.Price,
		Amount:    order.Amount,
		Filled:    order.FilledQuantity,
		Status:    string(order.Status),
	}
	go s.deliver(payload.Event, payload)
}

// TradeExecuted posts a trade.executed event.
func (s *WebhookSink) TradeExecuted(trade *domain.Trade, buyOrder, sellOrder *domain.Order) {
	payload := tradeEventPayload{
		Event:          "trade.executed",
		Timestamp:      trade.ExecutedAt.UTC().Format(time.RFC3339),
		TradeID:        trade.ID,
		BuyOrderID:     trade.BuyOrderID,
		SellOrderID:    trade.SellOrderID,
		BuyUserID:      buyOrder.UserID,
		SellUserID:     sellOrder.UserID,
		TickerID:       trade.TickerID,
		Price:          trade.Price,
		Quantity:       trade.Quantity,
		BuyCommission:  trade.BuyCommission,
		SellCommission: trade.SellCommission,
	}
	go s.deliver(payload.Event, payload)
}

// ProfileUpdated posts a profile.updated event.
func (s *WebhookSink) ProfileUpdated(userID int64) {
	payload := profileEventPayload{
		Event:     "profile.updated",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		UserID:    userID,
	}
	go s.deliver(payload.Event, payload)
}

// deliver sends the payload via HTTP POST with delivery headers.
// Errors are silently ignored (fire-and-forget).
func (s *WebhookSink) deliver(eventType string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Delivery-Id", uuid.New().String())
	req.Header.Set("X-Event-Type", eventType)

	resp, err := s.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
