package essay

import "time"

// Essay is the persisted document a user is composing. Essays are owned
// exclusively by their creating user; only the owner may read, mutate, or
// delete one.
type Essay struct {
	ID               string    `json:"id" bson:"id"`
	UserID           string    `json:"userId" bson:"userId"`
	Title            string    `json:"title" bson:"title"`
	Content          string    `json:"content" bson:"content"`
	TargetUniversity *string   `json:"targetUniversity,omitempty" bson:"targetUniversity,omitempty"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Analysis is a stored scoring result for one essay. Immutable once created;
// an essay accumulates analyses most-recent-first.
type Analysis struct {
	ID              string       `json:"id" bson:"id"`
	EssayID         string       `json:"essayId" bson:"essayId"`
	ClarityScore    int          `json:"clarityScore" bson:"clarityScore"`
	ImpactScore     int          `json:"impactScore" bson:"impactScore"`
	ToneScore       int          `json:"toneScore" bson:"toneScore"`
	FeedbackSummary string       `json:"feedbackSummary" bson:"feedbackSummary"`
	Suggestions     []Suggestion `json:"suggestions" bson:"suggestions"`
	CreatedAt       time.Time    `json:"createdAt" bson:"createdAt"`
}

// Suggestion is one quoted-excerpt improvement note tied to an Analysis.
// Category is one of "Clarity", "Tone" or "Impact".
type Suggestion struct {
	OriginalText string `json:"originalText" bson:"originalText"`
	Feedback     string `json:"feedback" bson:"feedback"`
	Category     string `json:"category" bson:"category"`
}
