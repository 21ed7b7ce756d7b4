// Package handler exposes the staff quote finalization and document
// endpoints.
package handler

import (
	"net/http"

	"conciergerie_backend/internal/quotes/service"
	"conciergerie_backend/internal/quotes/transport"
	"conciergerie_backend/platform/httpkit"
	"conciergerie_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidRequest = "requête invalide"

// Handler serves the portal quote endpoints.
type Handler struct {
	svc *service.Service
	log *logger.Logger
}

// New creates the quotes handler.
func New(svc *service.Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Finalize turns a quote request into a sent quote with an archived PDF.
func (h *Handler) Finalize(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.Finalize(c.Request.Context(), requestID, &req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FinalizeResponse{
		Success:     true,
		QuoteID:     result.QuoteID.String(),
		QuoteNumber: result.QuoteNumber,
		PDFPath:     result.PDFPath,
	})
}

// SaveDocument renders a document payload and archives the PDF, returning
// its storage path.
func (h *Handler) SaveDocument(c *gin.Context) {
	var req transport.SaveDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	path, err := h.svc.SaveDocument(c.Request.Context(), &req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.SaveDocumentResponse{Success: true, Path: path})
}
