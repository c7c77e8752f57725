package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/essaypilot/essaypilot/pkg/metrics"
)

// Rewriter produces an improved draft of an essay. Unlike Analyzer the reply
// is free text, so there is no repair step: whatever the model returns is
// trimmed and handed back.
type Rewriter struct {
	client Client
}

func NewRewriter(client Client) *Rewriter {
	return &Rewriter{client: client}
}

func (r *Rewriter) Rewrite(ctx context.Context, text, targetUniversity string, feedback *Analysis) (string, error) {
	prompt := buildRewritePrompt(text, targetUniversity, feedback)

	raw, err := r.client.GenerateContent(ctx, prompt)
	if err != nil {
		metrics.ModelRequests.WithLabelValues("rewrite", "error").Inc()
		return "", fmt.Errorf("generate rewrite: %w", err)
	}
	metrics.ModelRequests.WithLabelValues("rewrite", "ok").Inc()

	return strings.TrimSpace(raw), nil
}
