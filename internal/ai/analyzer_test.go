package ai

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeClient returns a canned reply, or an error when reply is empty.
type fakeClient struct {
	reply string
	err   error
	// last prompt seen, for assertions on prompt construction
	prompt string
}

func (f *fakeClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

const validReply = `{
	"clarityScore": 85,
	"impactScore": 78,
	"toneScore": 92,
	"feedbackSummary": "Strong narrative with a memorable opening.",
	"suggestions": [
		{"originalText": "I have always been passionate", "feedback": "Replace with a concrete scene.", "category": "Impact"}
	]
}`

func TestAnalyze_ParsesValidReply(t *testing.T) {
	client := &fakeClient{reply: validReply}
	a := NewAnalyzer(client)

	got, err := a.Analyze(context.Background(), "my essay text", "")
	require.NoError(t, err)
	require.Equal(t, 85, got.ClarityScore)
	require.Equal(t, 78, got.ImpactScore)
	require.Equal(t, 92, got.ToneScore)
	require.Equal(t, "Strong narrative with a memorable opening.", got.FeedbackSummary)
	require.Len(t, got.Suggestions, 1)
	require.Equal(t, "Impact", got.Suggestions[0].Category)
}

func TestAnalyze_StripsCodeFences(t *testing.T) {
	client := &fakeClient{reply: "```json\n" + validReply + "\n```"}
	a := NewAnalyzer(client)

	got, err := a.Analyze(context.Background(), "text", "")
	require.NoError(t, err)
	require.Equal(t, 85, got.ClarityScore)
}

func TestAnalyze_FallbackOnProse(t *testing.T) {
	client := &fakeClient{reply: "Sure! Here is my feedback on your essay."}
	a := NewAnalyzer(client)

	got, err := a.Analyze(context.Background(), "text", "")
	require.NoError(t, err)
	require.Equal(t, fallbackAnalysis(), got)
	require.NotNil(t, got.Suggestions)
	require.Empty(t, got.Suggestions)
}

func TestAnalyze_FallbackOnZeroScore(t *testing.T) {
	client := &fakeClient{reply: `{"clarityScore": 0, "impactScore": 78, "toneScore": 92, "feedbackSummary": "x", "suggestions": []}`}
	a := NewAnalyzer(client)

	got, err := a.Analyze(context.Background(), "text", "")
	require.NoError(t, err)
	require.Equal(t, fallbackAnalysis(), got)
}

func TestAnalyze_FallbackOnMissingScore(t *testing.T) {
	client := &fakeClient{reply: `{"impactScore": 78, "toneScore": 92, "feedbackSummary": "x", "suggestions": []}`}
	a := NewAnalyzer(client)

	got, err := a.Analyze(context.Background(), "text", "")
	require.NoError(t, err)
	require.Equal(t, fallbackAnalysis(), got)
}

func TestAnalyze_ClampsScores(t *testing.T) {
	client := &fakeClient{reply: `{"clarityScore": "150", "impactScore": -5, "toneScore": 88.6, "feedbackSummary": "x", "suggestions": []}`}
	a := NewAnalyzer(client)

	got, err := a.Analyze(context.Background(), "text", "")
	require.NoError(t, err)
	require.Equal(t, 100, got.ClarityScore)
	require.Equal(t, 0, got.ImpactScore)
	require.Equal(t, 89, got.ToneScore)
}

func TestAnalyze_NonArraySuggestions(t *testing.T) {
	client := &fakeClient{reply: `{"clarityScore": 80, "impactScore": 80, "toneScore": 80, "feedbackSummary": "x", "suggestions": "none"}`}
	a := NewAnalyzer(client)

	got, err := a.Analyze(context.Background(), "text", "")
	require.NoError(t, err)
	require.NotNil(t, got.Suggestions)
	require.Empty(t, got.Suggestions)
}

func TestAnalyze_ClientError(t *testing.T) {
	client := &fakeClient{err: fmt.Errorf("quota exceeded")}
	a := NewAnalyzer(client)

	_, err := a.Analyze(context.Background(), "text", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "quota exceeded")
}

func TestAnalysisPrompt_UniversityContext(t *testing.T) {
	client := &fakeClient{reply: validReply}
	a := NewAnalyzer(client)

	_, err := a.Analyze(context.Background(), "text", "Stanford")
	require.NoError(t, err)
	require.Contains(t, client.prompt, "This essay is specifically for Stanford")

	_, err = a.Analyze(context.Background(), "text", "")
	require.NoError(t, err)
	require.Contains(t, client.prompt, "No specific target university was provided")
}

func TestStripCodeFences(t *testing.T) {
	require.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	require.Equal(t, `{"a":1}`, stripCodeFences("```\n{\"a\":1}\n```"))
	require.Equal(t, `{"a":1}`, stripCodeFences("  {\"a\":1}  "))
}
