package analyzer

import "time"

// TurnAnalysis is the canonical per-utterance record: one normalized
// shape regardless of which models produced the raw outputs. Immutable
// once returned by Analyze.
type TurnAnalysis struct {
	Text      string    `json:"text"`
	Sentiment Sentiment `json:"sentiment"`
	Emotion   Emotion   `json:"emotion"`
	Context   Context   `json:"context"`
	Entities  []Entity  `json:"entities"`
	Timestamp time.Time `json:"timestamp"`
}

// Sentiment is the binary polarity verdict, label POSITIVE or NEGATIVE.
type Sentiment struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Emotion is the highest-scoring entry of the emotion classifier's
// output, after label remapping.
type Emotion struct {
	Primary    string  `json:"primary_emotion"`
	Confidence float64 `json:"confidence"`
}

// Context is the top-ranked zero-shot category from the caller's
// candidate theme set.
type Context struct {
	Primary string  `json:"primary_context"`
	Score   float64 `json:"score"`
}

// Entity is one mention in text order. The same surface form mentioned
// twice yields two entries.
type Entity struct {
	Type        string  `json:"entity_type"`
	SurfaceForm string  `json:"surface_form"`
	Confidence  float64 `json:"confidence"`
}
