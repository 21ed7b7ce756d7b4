package chat

import (
	"net/http"

	"conciergerie_backend/internal/chat/llm"
	"conciergerie_backend/platform/httpkit"
	"conciergerie_backend/platform/logger"
	"conciergerie_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChatRequest is the payload of both chat endpoints.
type ChatRequest struct {
	SessionID string        `json:"sessionId"`
	Messages  []llm.Message `json:"messages" validate:"required,min=1,dive"`
}

// Handler serves the SSE chat endpoints.
type Handler struct {
	svc *Service
	val *validator.Validator
	log *logger.Logger
}

// NewHandler creates the chat handler.
func NewHandler(svc *Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, val: val, log: log}
}

func (h *Handler) bind(c *gin.Context) (*ChatRequest, bool) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "requête invalide", nil)
		return nil, false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "requête invalide", validator.Fields(err))
		return nil, false
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}
	return &req, true
}

func sseHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}

// ClientChat streams the public intake assistant. The final SSE event
// carries the session id and, when the conversation became ready, the
// auto-submission result.
func (h *Handler) ClientChat(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	sseHeaders(c)
	flusher, _ := c.Writer.(http.Flusher)

	onDelta := func(delta string) error {
		c.SSEvent("message", gin.H{"delta": delta})
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	submission, err := h.svc.StreamClientChat(c.Request.Context(), req.SessionID, req.Messages, onDelta)
	if err != nil {
		h.log.WithSessionID(req.SessionID).Error("chat stream failed", "error", err)
		c.SSEvent("error", gin.H{"error": "une erreur est survenue"})
		if flusher != nil {
			flusher.Flush()
		}
		return
	}

	done := gin.H{"done": true, "sessionId": req.SessionID}
	if submission != nil {
		done["submission"] = submission
	}
	c.SSEvent("message", done)
	if flusher != nil {
		flusher.Flush()
	}
}

// CollaboratorChat streams the staff document assistant. The route is
// mounted behind the portal session middleware.
func (h *Handler) CollaboratorChat(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	sseHeaders(c)
	flusher, _ := c.Writer.(http.Flusher)

	onDelta := func(delta string) error {
		c.SSEvent("message", gin.H{"delta": delta})
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	if err := h.svc.StreamCollaboratorChat(c.Request.Context(), req.Messages, onDelta); err != nil {
		h.log.Error("collaborator chat stream failed", "error", err)
		c.SSEvent("error", gin.H{"error": "une erreur est survenue"})
		if flusher != nil {
			flusher.Flush()
		}
		return
	}

	c.SSEvent("message", gin.H{"done": true})
	if flusher != nil {
		flusher.Flush()
	}
}
