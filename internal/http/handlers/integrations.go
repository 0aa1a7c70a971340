package handlers

import (
	"net/http"

	"order-service/internal/logx"
)

// IntegrationHandler exposes manual control over external system sync.
type IntegrationHandler struct {
	logger logx.Logger
	uc     integrationUsecase
}

// NewIntegrationHandler creates an IntegrationHandler.
func NewIntegrationHandler(logger logx.Logger, uc integrationUsecase) *IntegrationHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &IntegrationHandler{logger: logger, uc: uc}
}

// Retry handles POST /api/v1/admin/orders/{id}/integrations/retry.
func (h *IntegrationHandler) Retry(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(h.logger, w, r)
	if !ok {
		return
	}
	id, ok := idFromURL(r, "id")
	if !ok {
		writeMessage(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}
	list, err := h.uc.Retry(r.Context(), actor, id)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeData(h.logger, w, r, http.StatusOK, "integration sync retried", integrationsToResponse(list))
}
