package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"order-service/internal/apperr"
	"order-service/internal/domain"
	"order-service/internal/logx"
)

// OrderHandler serves the order resource.
type OrderHandler struct {
	logger logx.Logger
	uc     orderUsecase
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(logger logx.Logger, uc orderUsecase) *OrderHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &OrderHandler{logger: logger, uc: uc}
}

// Create handles POST /api/v1/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(h.logger, w, r)
	if !ok {
		return
	}
	var req createOrderRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	o, err := h.uc.Create(r.Context(), actor, req.toInput())
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeData(h.logger, w, r, http.StatusCreated, "order created", orderToResponse(o))
}

// List handles GET /api/v1/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(h.logger, w, r)
	if !ok {
		return
	}
	f, err := orderFilterFrom(r)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	list, err := h.uc.List(r.Context(), actor, f)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeData(h.logger, w, r, http.StatusOK, "", ordersToResponse(list))
}

// Get handles GET /api/v1/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(h.logger, w, r)
	if !ok {
		return
	}
	id, ok := idFromURL(r, "id")
	if !ok {
		writeMessage(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}
	o, err := h.uc.Get(r.Context(), actor, id)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeData(h.logger, w, r, http.StatusOK, "", orderToResponse(o))
}

// History handles GET /api/v1/orders/{id}/history.
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(h.logger, w, r)
	if !ok {
		return
	}
	id, ok := idFromURL(r, "id")
	if !ok {
		writeMessage(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}
	list, err := h.uc.History(r.Context(), actor, id)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeData(h.logger, w, r, http.StatusOK, "", historyToResponse(list))
}

// UpdateStatus handles PATCH /api/v1/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(h.logger, w, r)
	if !ok {
		return
	}
	id, ok := idFromURL(r, "id")
	if !ok {
		writeMessage(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}
	var req updateStatusRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	res, err := h.uc.UpdateStatus(r.Context(), actor, domain.StatusChange{
		OrderID: id,
		Status:  domain.OrderStatus(strings.TrimSpace(string(req.Status))),
		Notes:   req.Notes,
	})
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeData(h.logger, w, r, http.StatusOK, "order status updated", statusChangeDTO{
		OrderID:        res.OrderID,
		PreviousStatus: res.PreviousStatus,
		Status:         res.Status,
		DriverID:       res.DriverID,
		ChangedAt:      res.ChangedAt,
	})
}

func orderFilterFrom(r *http.Request) (domain.OrderFilter, error) {
	page, err := parsePage(r)
	if err != nil {
		return domain.OrderFilter{}, err
	}
	f := domain.OrderFilter{Limit: page.limit, Offset: page.offset}
	q := r.URL.Query()
	if s := strings.TrimSpace(q.Get("status")); s != "" {
		st := domain.OrderStatus(s)
		f.Status = &st
	}
	if s := strings.TrimSpace(q.Get("priority")); s != "" {
		p := domain.Priority(s)
		f.Priority = &p
	}
	if f.DriverID, err = int64Query(q.Get("driver_id"), "driver_id"); err != nil {
		return domain.OrderFilter{}, err
	}
	if f.ClientID, err = int64Query(q.Get("client_id"), "client_id"); err != nil {
		return domain.OrderFilter{}, err
	}
	return f, nil
}

func int64Query(raw, name string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil, apperr.Invalid("invalid %s", name)
	}
	return &v, nil
}
