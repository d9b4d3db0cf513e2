package search

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"aidocs-backend/internal/llm"
	"aidocs-backend/internal/shared/server/middleware"
	"aidocs-backend/internal/shared/server/respond"
)

// Handler wires the search endpoint to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the search route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ai/search", h.search)
}

type searchRequest struct {
	Query string `json:"query"`
}

func (h *Handler) search(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	results, err := h.Svc.Search(c.Request.Context(), userID, strings.TrimSpace(req.Query))
	if err != nil {
		switch {
		case errors.Is(err, ErrNoQuery):
			respond.Error(c, http.StatusBadRequest, "validation_error", "search query is required", nil)
		case errors.Is(err, llm.ErrNotConfigured):
			respond.Error(c, http.StatusServiceUnavailable, "ai_unavailable", "AI features are not configured", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "search failed", nil)
		}
		return
	}

	if results == nil {
		results = []Result{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"results": results})
}
