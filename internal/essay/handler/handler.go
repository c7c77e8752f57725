package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/essaypilot/essaypilot/internal/essay"
	"github.com/essaypilot/essaypilot/internal/essay/service"
	"github.com/essaypilot/essaypilot/pkg/logger"
	"github.com/essaypilot/essaypilot/pkg/middleware"
)

// Handler exposes the essay CRUD API. All routes assume AuthMiddleware has
// populated the caller identity on the request context.
type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the essay routes on an authenticated router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/essays", h.List)
	rg.POST("/essays", h.Create)
	rg.GET("/essays/:id", h.Get)
	rg.PUT("/essays/:id", h.Update)
	rg.DELETE("/essays/:id", h.Delete)
}

// essayWithAnalyses mirrors the detail response shape: the essay plus its
// most recent analysis (at most one element).
type essayWithAnalyses struct {
	*essay.Essay
	Analyses []*essay.Analysis `json:"analyses"`
}

func (h *Handler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	essays, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		logger.Errorf("error fetching essays: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch essays"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"essays": essays})
}

func (h *Handler) Create(c *gin.Context) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.UserID(c)
	e, err := h.svc.Create(c.Request.Context(), userID, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
			return
		}
		logger.Errorf("error creating essay: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create essay"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"essay": e})
}

func (h *Handler) Get(c *gin.Context) {
	userID := middleware.UserID(c)
	e, latest, err := h.svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Failed to fetch essay")
		return
	}
	analyses := []*essay.Analysis{}
	if latest != nil {
		analyses = append(analyses, latest)
	}
	c.JSON(http.StatusOK, gin.H{"essay": essayWithAnalyses{Essay: e, Analyses: analyses}})
}

func (h *Handler) Update(c *gin.Context) {
	var req struct {
		Title            *string `json:"title"`
		Content          *string `json:"content"`
		TargetUniversity *string `json:"targetUniversity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.UserID(c)
	e, err := h.svc.Update(c.Request.Context(), userID, c.Param("id"), service.UpdateInput{
		Title:            req.Title,
		Content:          req.Content,
		TargetUniversity: req.TargetUniversity,
	})
	if err != nil {
		h.writeError(c, err, "Failed to update essay")
		return
	}
	c.JSON(http.StatusOK, gin.H{"essay": e})
}

func (h *Handler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if err := h.svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.writeError(c, err, "Failed to delete essay")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Essay deleted successfully"})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Essay not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	default:
		logger.Errorf("%s: %v", fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
