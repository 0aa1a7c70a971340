package handlers

import (
	"net/http"

	"order-service/internal/domain"
	"order-service/internal/logx"
)

// AssignmentHandler serves driver assignment endpoints.
type AssignmentHandler struct {
	logger logx.Logger
	uc     assignmentUsecase
}

// NewAssignmentHandler creates an AssignmentHandler.
func NewAssignmentHandler(logger logx.Logger, uc assignmentUsecase) *AssignmentHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &AssignmentHandler{logger: logger, uc: uc}
}

// Assign handles POST /api/v1/orders/{id}/assign-driver.
func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(h.logger, w, r)
	if !ok {
		return
	}
	id, ok := idFromURL(r, "id")
	if !ok {
		writeMessage(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}
	var req assignRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	res, err := h.uc.Assign(r.Context(), actor, req.toModel(id))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeData(h.logger, w, r, http.StatusCreated, "driver assigned", assignmentToResponse(res))
}

// Accept handles POST /api/v1/orders/{id}/accept.
func (h *AssignmentHandler) Accept(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(h.logger, w, r)
	if !ok {
		return
	}
	id, ok := idFromURL(r, "id")
	if !ok {
		writeMessage(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}
	res, err := h.uc.Accept(r.Context(), actor, id)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeData(h.logger, w, r, http.StatusOK, "assignment accepted", acceptDTO{
		AssignmentID: res.AssignmentID,
		OrderID:      res.OrderID,
		DriverID:     res.DriverID,
		AcceptedAt:   res.AcceptedAt,
	})
}

// ProofOfDelivery handles POST /api/v1/orders/{id}/proof-of-delivery.
func (h *AssignmentHandler) ProofOfDelivery(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(h.logger, w, r)
	if !ok {
		return
	}
	id, ok := idFromURL(r, "id")
	if !ok {
		writeMessage(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}
	var req proofRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	res, err := h.uc.CompleteDelivery(r.Context(), actor, domain.ProofOfDelivery{
		OrderID:       id,
		RecipientName: req.RecipientName,
		SignatureRef:  req.SignatureRef,
		PhotoRef:      req.PhotoRef,
		Notes:         req.Notes,
	})
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeData(h.logger, w, r, http.StatusOK, "delivery completed", completionDTO{
		OrderID:      res.OrderID,
		AssignmentID: res.AssignmentID,
		DriverID:     res.DriverID,
		ProofID:      res.ProofID,
		CompletedAt:  res.CompletedAt,
	})
}

// BulkAssign handles POST /api/v1/admin/orders/bulk-assign.
func (h *AssignmentHandler) BulkAssign(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(h.logger, w, r)
	if !ok {
		return
	}
	var req bulkAssignRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	items := make([]domain.AssignRequest, 0, len(req.Assignments))
	for _, it := range req.Assignments {
		items = append(items, it.toModel(it.OrderID))
	}
	res, err := h.uc.BulkAssign(r.Context(), actor, items)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeData(h.logger, w, r, http.StatusOK, "bulk assignment processed", bulkToResponse(res))
}

// EmergencyReassign handles POST /api/v1/admin/orders/{id}/emergency-reassign.
func (h *AssignmentHandler) EmergencyReassign(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(h.logger, w, r)
	if !ok {
		return
	}
	id, ok := idFromURL(r, "id")
	if !ok {
		writeMessage(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}
	var req emergencyRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	res, err := h.uc.EmergencyReassign(r.Context(), actor, domain.EmergencyReassignRequest{
		OrderID:     id,
		NewDriverID: req.NewDriverID,
		Reason:      req.Reason,
		Urgent:      req.Urgent,
	})
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeData(h.logger, w, r, http.StatusOK, "order reassigned", emergencyDTO{
		OrderID:          res.OrderID,
		PreviousDriverID: res.PreviousDriverID,
		NewDriverID:      res.NewDriverID,
		AssignmentID:     res.AssignmentID,
		Priority:         res.Priority,
		ReassignedAt:     res.ReassignedAt,
	})
}
