package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/essaypilot/essaypilot/pkg/logger"
	"github.com/essaypilot/essaypilot/pkg/metrics"
)

// Suggestion is one actionable edit tied to a quote from the essay.
type Suggestion struct {
	OriginalText string `json:"originalText"`
	Feedback     string `json:"feedback"`
	Category     string `json:"category"`
}

// Analysis is the structured feedback returned to callers. Scores are always
// within [0, 100] and Suggestions is never nil.
type Analysis struct {
	ClarityScore    int          `json:"clarityScore"`
	ImpactScore     int          `json:"impactScore"`
	ToneScore       int          `json:"toneScore"`
	FeedbackSummary string       `json:"feedbackSummary"`
	Suggestions     []Suggestion `json:"suggestions"`
}

// Analyzer turns essay text into structured feedback via the model client.
// Model output that cannot be parsed into a usable analysis degrades to a
// fixed fallback rather than an error, so a flaky model never breaks the
// endpoint.
type Analyzer struct {
	client Client
}

func NewAnalyzer(client Client) *Analyzer {
	return &Analyzer{client: client}
}

func (a *Analyzer) Analyze(ctx context.Context, text, targetUniversity string) (*Analysis, error) {
	prompt := buildAnalysisPrompt(text, targetUniversity)

	raw, err := a.client.GenerateContent(ctx, prompt)
	if err != nil {
		metrics.ModelRequests.WithLabelValues("analyze", "error").Inc()
		return nil, fmt.Errorf("generate analysis: %w", err)
	}
	metrics.ModelRequests.WithLabelValues("analyze", "ok").Inc()

	return parseAnalysis(raw), nil
}

// fallbackAnalysis is returned whenever the model reply is not usable JSON.
func fallbackAnalysis() *Analysis {
	return &Analysis{
		ClarityScore:    75,
		ImpactScore:     70,
		ToneScore:       80,
		FeedbackSummary: "Unable to parse AI response. Please try again.",
		Suggestions:     []Suggestion{},
	}
}

// rawAnalysis tolerates models that return scores as numbers or as quoted
// numeric strings, and suggestions in any shape.
type rawAnalysis struct {
	ClarityScore    interface{}     `json:"clarityScore"`
	ImpactScore     interface{}     `json:"impactScore"`
	ToneScore       interface{}     `json:"toneScore"`
	FeedbackSummary string          `json:"feedbackSummary"`
	Suggestions     json.RawMessage `json:"suggestions"`
}

func parseAnalysis(reply string) *Analysis {
	cleaned := stripCodeFences(reply)

	var parsed rawAnalysis
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		logger.Warnf("analysis reply was not valid JSON, using fallback: %v", err)
		metrics.AnalysisFallbacks.Inc()
		return fallbackAnalysis()
	}

	// A missing, zero or empty score means the model did not produce real
	// feedback, so the whole reply is discarded.
	if !scorePresent(parsed.ClarityScore) || !scorePresent(parsed.ImpactScore) || !scorePresent(parsed.ToneScore) {
		logger.Warnf("analysis reply missing scores, using fallback")
		metrics.AnalysisFallbacks.Inc()
		return fallbackAnalysis()
	}

	return &Analysis{
		ClarityScore:    coerceScore(parsed.ClarityScore),
		ImpactScore:     coerceScore(parsed.ImpactScore),
		ToneScore:       coerceScore(parsed.ToneScore),
		FeedbackSummary: parsed.FeedbackSummary,
		Suggestions:     parseSuggestions(parsed.Suggestions),
	}
}

// stripCodeFences removes a leading ```json (or bare ```) fence and the
// trailing fence, which some models emit despite being told not to.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func scorePresent(v interface{}) bool {
	switch n := v.(type) {
	case float64:
		return n != 0
	case string:
		return n != ""
	case nil:
		return false
	default:
		return true
	}
}

// coerceScore converts a number or numeric string into an int clamped to
// [0, 100].
func coerceScore(v interface{}) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	f = math.Min(100, math.Max(0, f))
	return int(math.Round(f))
}

func parseSuggestions(raw json.RawMessage) []Suggestion {
	if len(raw) == 0 {
		return []Suggestion{}
	}
	var suggestions []Suggestion
	if err := json.Unmarshal(raw, &suggestions); err != nil || suggestions == nil {
		return []Suggestion{}
	}
	return suggestions
}
