// Package handler exposes the quote-request HTTP endpoints.
package handler

import (
	"net/http"

	"conciergerie_backend/internal/requests/service"
	"conciergerie_backend/internal/requests/transport"
	"conciergerie_backend/platform/httpkit"
	"conciergerie_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidRequest = "requête invalide"

// Handler serves the public submission endpoint and the staff read/status
// endpoints.
type Handler struct {
	svc *service.Service
	log *logger.Logger
}

// New creates the requests handler.
func New(svc *service.Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Submit accepts a quote-request submission from the public site or the
// chat intake flow.
func (h *Handler) Submit(c *gin.Context) {
	var req transport.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.Submit(c.Request.Context(), &req)
	if httpkit.HandleError(c, err) {
		return
	}

	h.log.Info("quote request submitted", "request_number", result.RequestNumber)
	httpkit.JSON(c, http.StatusCreated, transport.SubmitResponse{
		Success:       true,
		ID:            result.ID.String(),
		RequestNumber: result.RequestNumber,
	})
}

// List returns requests for the staff portal, optionally filtered by
// status (?status=pending).
func (h *Handler) List(c *gin.Context) {
	requests, err := h.svc.List(c.Request.Context(), c.Query("status"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"success": true, "requests": requests, "count": len(requests)})
}

// GetByID returns one request enriched with its conversation transcript.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	detail, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"success": true, "request": detail})
}

// UpdateStatus applies a workflow transition to a request.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.svc.UpdateStatus(c.Request.Context(), id, &req); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"success": true})
}
