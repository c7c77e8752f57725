package ai

import (
	"fmt"
	"strings"
)

// buildAnalysisPrompt produces the single-turn instruction for essay
// feedback. The model is told to reply with a bare JSON object using fixed
// field names so the reply can be parsed directly.
func buildAnalysisPrompt(text, targetUniversity string) string {
	var universityContext string
	if targetUniversity != "" {
		universityContext = fmt.Sprintf("\n\nIMPORTANT: This essay is specifically for %s. Tailor your feedback based on what %s values in their applicants (research their mission, culture, and what they look for). Consider whether the essay demonstrates fit with %s's unique characteristics and values.",
			targetUniversity, targetUniversity, targetUniversity)
	} else {
		universityContext = "\n\nNote: No specific target university was provided. Give general college application essay feedback."
	}

	return fmt.Sprintf(`You are an expert college admissions essay consultant trained on successful application essays. Your goal is to help students craft standout college application essays that admissions officers will remember.%s

Analyze this college application essay focusing on what admissions officers look for:

**CLARITY (0-100)**: How clear, readable, and well-structured is the writing? Is the narrative easy to follow? Are ideas expressed precisely without confusion or ambiguity?

**TONE (0-100)**: Does the essay sound authentic and reflect the student's genuine voice? Is it confident without being arrogant? Is the tone appropriate for a college application (not too casual, not too stiff)?

**IMPACT (0-100)**: How powerfully does the student communicate their story and ideas? Is it memorable and compelling? Does it showcase unique perspectives, personal growth, or meaningful experiences that make the student stand out?

Provide:
1. Three scores (0-100) for Clarity, Tone, and Impact
2. A brief feedback summary (2-3 sentences) focusing on the essay's effectiveness as a college application essay
3. 3-5 specific, actionable suggestions that will elevate the essay, each with:
   - originalText: An exact quote from the essay (10-30 words)
   - feedback: Specific advice on how to improve it for college admissions (not just grammar fixes, but substantive improvements)
   - category: "Clarity", "Tone", or "Impact"

Focus on helping the student refine their authentic voice while meeting high admissions standards. Look for:
- Showing vs. telling (use specific examples instead of generic statements)
- Unique personal insights and growth
- Authentic voice (not trying to sound impressive, but genuinely reflective)
- Strong narrative structure and flow
- Memorable opening and closing
- Avoiding clichés and generic statements

College Application Essay:
"""
%s
"""

Respond ONLY with valid JSON in this exact format (no markdown, no code blocks):
{
  "clarityScore": 85,
  "impactScore": 78,
  "toneScore": 92,
  "feedbackSummary": "Your summary here...",
  "suggestions": [
    {
      "originalText": "exact quote from essay",
      "feedback": "specific improvement advice",
      "category": "Clarity"
    }
  ]
}`, universityContext, text)
}

// buildRewritePrompt produces the rewrite instruction. Optional blocks are
// appended for the target university and for prior analysis feedback the
// rewrite should address.
func buildRewritePrompt(text, targetUniversity string, feedback *Analysis) string {
	var universityContext string
	if targetUniversity != "" {
		universityContext = fmt.Sprintf("\n\nThis essay is specifically for %s. Rewrite it to better align with what %s values in their applicants. Research %s's mission, culture, and what they look for in students. Ensure the rewritten essay demonstrates authentic fit with %s's unique characteristics.",
			targetUniversity, targetUniversity, targetUniversity, targetUniversity)
	}

	var feedbackContext string
	if feedback != nil {
		var lines []string
		for i, s := range feedback.Suggestions {
			lines = append(lines, fmt.Sprintf("%d. [%s] %q - %s", i+1, s.Category, s.OriginalText, s.Feedback))
		}
		feedbackContext = fmt.Sprintf(`

Previous Analysis Feedback:
- Clarity Score: %d/100
- Impact Score: %d/100
- Tone Score: %d/100
- Summary: %s

Key Suggestions to Address:
%s`, feedback.ClarityScore, feedback.ImpactScore, feedback.ToneScore, feedback.FeedbackSummary, strings.Join(lines, "\n"))
	}

	return fmt.Sprintf(`You are an expert college admissions essay writer. Your task is to rewrite the following college application essay to make it more compelling, authentic, and effective.%s%s

IMPORTANT GUIDELINES:
1. **Preserve the student's authentic voice and core story** - Don't change what makes them unique
2. **Show, don't tell** - Replace generic statements with specific, vivid examples
3. **Strengthen the narrative** - Improve flow, structure, and storytelling
4. **Elevate impact** - Make the essay more memorable and compelling
5. **Maintain authenticity** - The essay should still sound like a real student, not overly polished
6. **Address the feedback** - Incorporate improvements based on the analysis suggestions
7. **Keep similar length** - Don't make it significantly longer or shorter
8. **Use active voice** - Replace passive constructions with active ones
9. **Remove clichés** - Replace generic phrases with original, specific language
10. **Strong opening and closing** - Make sure the essay hooks readers and ends memorably

Original Essay:
"""
%s
"""

Respond with ONLY the rewritten essay text (no markdown, no explanations, no labels, just the essay itself):`, universityContext, feedbackContext, text)
}
