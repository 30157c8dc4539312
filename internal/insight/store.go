package insight

import (
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/sonderlabs/mirror/internal/analyzer"
)

// EmotionalPattern is one step of the conversation's emotional
// trajectory, one entry per processed turn.
type EmotionalPattern struct {
	Emotion    string    `json:"emotion"`
	Confidence float64   `json:"confidence"`
	Context    string    `json:"context"`
	Timestamp  time.Time `json:"timestamp"`
}

// Store accumulates one conversation's insights: the emotional
// trajectory, theme frequencies in first-seen order, and every entity
// mention. A store belongs to a single session; writers must be
// serialized by the owner (see the session package).
type Store struct {
	EmotionalPatterns []EmotionalPattern                  `json:"emotional_patterns"`
	RecurringThemes   *orderedmap.OrderedMap[string, int] `json:"recurring_themes"`
	EntitiesMentioned []analyzer.Entity                   `json:"entities_mentioned"`
}

func NewStore() *Store {
	return &Store{
		RecurringThemes: orderedmap.New[string, int](),
	}
}

// Update folds one analyzed turn into the store: appends the turn's
// emotional pattern, bumps its theme count, and appends every entity
// mention in order. Replaying the same analysis counts it twice;
// exactly-once invocation per turn is the caller's job.
func (s *Store) Update(a *analyzer.TurnAnalysis) {
	s.EmotionalPatterns = append(s.EmotionalPatterns, EmotionalPattern{
		Emotion:    a.Emotion.Primary,
		Confidence: a.Emotion.Confidence,
		Context:    a.Context.Primary,
		Timestamp:  a.Timestamp,
	})

	count, _ := s.RecurringThemes.Get(a.Context.Primary)
	s.RecurringThemes.Set(a.Context.Primary, count+1)

	s.EntitiesMentioned = append(s.EntitiesMentioned, a.Entities...)
}
