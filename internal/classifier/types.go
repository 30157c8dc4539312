package classifier

type textRequest struct {
	Text string `json:"text"`
}

// SentimentResult is the binary polarity verdict, label POSITIVE or NEGATIVE.
type SentimentResult struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// LabelScore is one entry of the emotion classifier's per-label output.
// Labels may be opaque model identifiers (e.g. "LABEL_3"), not names.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type emotionResponse struct {
	Scores []LabelScore `json:"scores"`
}

type zeroShotRequest struct {
	Text            string   `json:"text"`
	CandidateLabels []string `json:"candidate_labels"`
}

// ZeroShotResult holds ranked candidate labels with parallel scores,
// best match first.
type ZeroShotResult struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// RawEntity is one extracted span, already aggregated to whole-entity
// granularity by the sidecar.
type RawEntity struct {
	EntityGroup string  `json:"entity_group"`
	Word        string  `json:"word"`
	Score       float64 `json:"score"`
}

type nerResponse struct {
	Entities []RawEntity `json:"entities"`
}
