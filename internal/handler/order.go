package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/coinex/internal/domain"
	"github.com/efreitasn/coinex/internal/service"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// placeOrderRequest is the JSON request body for POST /orders.
// Price and amount accept JSON numbers or strings; strings avoid
// float precision loss on 18-digit quantities.
type placeOrderRequest struct {
	Symbol string          `json:"symbol"`
	Side   string          `json:"side"`
	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"amount"`
}

// orderResponse is the JSON shape of an order. Nullable timestamps
// use pointers.
type orderResponse struct {
	OrderID     string          `json:"order_id"`
	UserID      int64           `json:"user_id"`
	Symbol      string          `json:"symbol,omitempty"`
	Side        string          `json:"side"`
	Price       decimal.Decimal `json:"price"`
	Amount      decimal.Decimal `json:"amount"`
	Filled      decimal.Decimal `json:"filled_quantity"`
	Remaining   decimal.Decimal `json:"remaining"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
	OpenedAt    string          `json:"opened_at"`
	FilledAt    *string         `json:"filled_at"`
	CancelledAt *string         `json:"cancelled_at"`
}

func buildOrderResponse(o *domain.Order) orderResponse {
	resp := orderResponse{
		OrderID:   o.ID,
		UserID:    o.UserID,
		Side:      string(o.Side),
		Price:     o.Price,
		Amount:    o.Amount,
		Filled:    o.FilledQuantity,
		Remaining: o.Remaining(),
		Total:     o.Total(),
		Status:    string(o.Status),
		OpenedAt:  o.OpenedAt.UTC().Format(time.RFC3339),
	}
	if o.FilledAt != nil {
		s := o.FilledAt.UTC().Format(time.RFC3339)
		resp.FilledAt = &s
	}
	if o.CancelledAt != nil {
		s := o.CancelledAt.UTC().Format(time.RFC3339)
		resp.CancelledAt = &s
	}
	return resp
}

// PlaceOrder handles POST /orders.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req placeOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	order, err := h.orderSvc.PlaceOrder(service.PlaceOrderRequest{
		UserID: uid,
		Symbol: req.Symbol,
		Side:   domain.OrderSide(req.Side),
		Price:  req.Price,
		Amount: req.Amount,
	})
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildOrderResponse(order))
}

// ListOrders handles GET /orders.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	orders, err := h.orderSvc.ListOrders(uid)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, buildOrderResponse(o))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"orders": resp})
}

// CancelOrder handles DELETE /orders/{order_id}.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	orderID := chi.URLParam(r, "order_id")
	order, err := h.orderSvc.CancelOrder(orderID, uid)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildOrderResponse(order))
}
