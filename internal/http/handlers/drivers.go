package handlers

import (
	"net/http"
	"strings"

	"order-service/internal/domain"
	"order-service/internal/logx"
)

// DriverHandler serves driver profiles and the driver push channel.
type DriverHandler struct {
	logger logx.Logger
	uc     driverUsecase
	socket driverSocket
}

// NewDriverHandler creates a DriverHandler. socket may be nil when push is disabled.
func NewDriverHandler(logger logx.Logger, uc driverUsecase, socket driverSocket) *DriverHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &DriverHandler{logger: logger, uc: uc, socket: socket}
}

// List handles GET /api/v1/drivers.
func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	f := domain.DriverFilter{Limit: page.limit, Offset: page.offset}
	if s := strings.TrimSpace(r.URL.Query().Get("status")); s != "" {
		st := domain.DriverStatus(s)
		f.Status = &st
	}
	list, err := h.uc.List(r.Context(), f)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeData(h.logger, w, r, http.StatusOK, "", driversToResponse(list))
}

// Get handles GET /api/v1/drivers/{id}.
func (h *DriverHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromURL(r, "id")
	if !ok {
		writeMessage(h.logger, w, r, http.StatusBadRequest, "invalid driver id")
		return
	}
	d, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeData(h.logger, w, r, http.StatusOK, "", driverToResponse(*d))
}

// Me handles GET /api/v1/drivers/me.
func (h *DriverHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(h.logger, w, r)
	if !ok {
		return
	}
	d, err := h.uc.ByUser(r.Context(), actor.UserID)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeData(h.logger, w, r, http.StatusOK, "", driverToResponse(*d))
}

// Create handles POST /api/v1/drivers.
func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(h.logger, w, r)
	if !ok {
		return
	}
	var req createDriverRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	d := req.toModel()
	id, err := h.uc.Create(r.Context(), actor, d)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	d.ID = id
	writeData(h.logger, w, r, http.StatusCreated, "driver created", driverToResponse(*d))
}

// UpdateStatus handles PATCH /api/v1/drivers/{id}/status.
func (h *DriverHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(h.logger, w, r)
	if !ok {
		return
	}
	id, ok := idFromURL(r, "id")
	if !ok {
		writeMessage(h.logger, w, r, http.StatusBadRequest, "invalid driver id")
		return
	}
	var req driverStatusRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	d, err := h.uc.UpdateStatus(r.Context(), actor, domain.DriverStatusChange{
		DriverID: id,
		Status:   domain.DriverStatus(strings.TrimSpace(string(req.Status))),
	})
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeData(h.logger, w, r, http.StatusOK, "driver status updated", driverToResponse(*d))
}

// Socket handles GET /api/v1/ws/drivers and upgrades the connection for the caller's driver profile.
func (h *DriverHandler) Socket(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(h.logger, w, r)
	if !ok {
		return
	}
	if h.socket == nil {
		writeMessage(h.logger, w, r, http.StatusServiceUnavailable, "push channel disabled")
		return
	}
	d, err := h.uc.ByUser(r.Context(), actor.UserID)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	h.socket.ServeDriver(w, r, d.ID)
}
