package ai

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"aidocs-backend/internal/documents"
	"aidocs-backend/internal/llm"
	"aidocs-backend/internal/shared/server/middleware"
	"aidocs-backend/internal/shared/server/respond"
)

// Handler wires the enrichment endpoints to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches AI routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ai/summarize/:documentId", h.summarize)
	rg.POST("/ai/extract-key-points/:documentId", h.extractKeyPoints)
	rg.POST("/ai/ask/:documentId", h.ask)
}

func (h *Handler) summarize(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	summary, err := h.Svc.Summarize(c.Request.Context(), userID, c.Param("documentId"))
	if err != nil {
		respondEnrichmentError(c, err, "failed to summarize document")
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"summary": summary})
}

func (h *Handler) extractKeyPoints(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	points, err := h.Svc.ExtractKeyPoints(c.Request.Context(), userID, c.Param("documentId"))
	if err != nil {
		respondEnrichmentError(c, err, "failed to extract key points")
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"keyPoints": points})
}

type askRequest struct {
	Question string `json:"question"`
}

func (h *Handler) ask(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	answer, err := h.Svc.AskQuestion(c.Request.Context(), userID, c.Param("documentId"), req.Question)
	if err != nil {
		if errors.Is(err, ErrNoQuestion) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "question is required", nil)
			return
		}
		respondEnrichmentError(c, err, "failed to answer question")
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"answer": answer})
}

func respondEnrichmentError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, documents.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, llm.ErrNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, "ai_unavailable", "AI features are not configured", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", message, nil)
	}
}
