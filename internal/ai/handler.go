package ai

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/essaypilot/essaypilot/internal/essay"
	"github.com/essaypilot/essaypilot/internal/essay/service"
	"github.com/essaypilot/essaypilot/pkg/logger"
	"github.com/essaypilot/essaypilot/pkg/middleware"
)

// Handler exposes the analyze and rewrite endpoints. Routes assume
// AuthMiddleware has populated the caller identity on the request context.
type Handler struct {
	analyzer *Analyzer
	rewriter *Rewriter
	essays   *service.Service
}

func NewHandler(analyzer *Analyzer, rewriter *Rewriter, essays *service.Service) *Handler {
	return &Handler{analyzer: analyzer, rewriter: rewriter, essays: essays}
}

// Register mounts the model-backed routes on an authenticated router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.Analyze)
	rg.POST("/rewrite", h.Rewrite)
}

func (h *Handler) Analyze(c *gin.Context) {
	var req struct {
		Text             string `json:"text"`
		TargetUniversity string `json:"targetUniversity"`
		EssayID          string `json:"essayId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text is required"})
		return
	}

	analysis, err := h.analyzer.Analyze(c.Request.Context(), req.Text, req.TargetUniversity)
	if err != nil {
		logger.Errorf("analyze request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze text: " + err.Error()})
		return
	}

	// When the essay being analyzed is identified, keep the result so the
	// essay detail endpoint can return it later. Failures here must not
	// swallow the analysis the caller is waiting for.
	if req.EssayID != "" && h.essays != nil {
		if err := h.persistAnalysis(c, req.EssayID, analysis); err != nil {
			logger.Warnf("could not store analysis for essay %s: %v", req.EssayID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}

func (h *Handler) persistAnalysis(c *gin.Context, essayID string, a *Analysis) error {
	suggestions := make([]essay.Suggestion, 0, len(a.Suggestions))
	for _, s := range a.Suggestions {
		suggestions = append(suggestions, essay.Suggestion{
			OriginalText: s.OriginalText,
			Feedback:     s.Feedback,
			Category:     s.Category,
		})
	}
	_, err := h.essays.SaveAnalysis(c.Request.Context(), middleware.UserID(c), &essay.Analysis{
		EssayID:         essayID,
		ClarityScore:    a.ClarityScore,
		ImpactScore:     a.ImpactScore,
		ToneScore:       a.ToneScore,
		FeedbackSummary: a.FeedbackSummary,
		Suggestions:     suggestions,
	})
	return err
}

func (h *Handler) Rewrite(c *gin.Context) {
	var req struct {
		Text             string    `json:"text"`
		TargetUniversity string    `json:"targetUniversity"`
		FeedbackData     *Analysis `json:"feedbackData"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text is required"})
		return
	}

	rewritten, err := h.rewriter.Rewrite(c.Request.Context(), req.Text, req.TargetUniversity, req.FeedbackData)
	if err != nil {
		logger.Errorf("rewrite request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rewrite essay: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rewrittenText": rewritten})
}
