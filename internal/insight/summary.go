package insight

import (
	"errors"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrEmptyHistory signals a summary request before any exchange has
// happened. It is a normal-path result, not a failure; callers can
// tell "no conversation yet" apart from a conversation that produced
// no themes or entities.
var ErrEmptyHistory = errors.New("no conversation data yet")

// recentEmotionWindow is how many trailing emotional patterns a
// summary reports.
const recentEmotionWindow = 5

// ThemeCount pairs a theme with its mention count.
type ThemeCount struct {
	Theme string `json:"theme"`
	Count int    `json:"count"`
}

// Summary is a point-in-time report derived from the store. It is
// recomputed on demand and never itself the source of truth.
type Summary struct {
	TotalExchanges     int                                 `json:"total_exchanges"`
	MostDiscussedTheme *ThemeCount                         `json:"most_discussed_theme,omitempty"`
	RecentEmotions     []string                            `json:"recent_emotional_pattern"`
	UniqueEntities     int                                 `json:"unique_entities_mentioned"`
	ConversationThemes *orderedmap.OrderedMap[string, int] `json:"conversation_themes"`
}

// Summarize derives the session report without mutating the store.
// exchanges is the conversation history length; zero yields
// ErrEmptyHistory rather than a zero-valued summary.
func (s *Store) Summarize(exchanges int) (*Summary, error) {
	if exchanges == 0 {
		return nil, ErrEmptyHistory
	}

	return &Summary{
		TotalExchanges:     exchanges,
		MostDiscussedTheme: s.mostDiscussedTheme(),
		RecentEmotions:     s.recentEmotions(),
		UniqueEntities:     s.uniqueEntityCount(),
		ConversationThemes: s.themesSnapshot(),
	}, nil
}

// mostDiscussedTheme is a stable argmax: ties keep the theme that
// entered the conversation first.
func (s *Store) mostDiscussedTheme() *ThemeCount {
	var best *ThemeCount
	for pair := s.RecurringThemes.Oldest(); pair != nil; pair = pair.Next() {
		if best == nil || pair.Value > best.Count {
			best = &ThemeCount{Theme: pair.Key, Count: pair.Value}
		}
	}
	return best
}

func (s *Store) recentEmotions() []string {
	start := len(s.EmotionalPatterns) - recentEmotionWindow
	if start < 0 {
		start = 0
	}
	out := make([]string, 0, len(s.EmotionalPatterns)-start)
	for _, p := range s.EmotionalPatterns[start:] {
		out = append(out, p.Emotion)
	}
	return out
}

// uniqueEntityCount dedupes by exact surface form; the entity type
// does not participate, so PER "Sam" and ORG "Sam" count once.
func (s *Store) uniqueEntityCount() int {
	seen := make(map[string]struct{}, len(s.EntitiesMentioned))
	for _, e := range s.EntitiesMentioned {
		seen[e.SurfaceForm] = struct{}{}
	}
	return len(seen)
}

// themesSnapshot copies the counts in insertion order, detached from
// the live store.
func (s *Store) themesSnapshot() *orderedmap.OrderedMap[string, int] {
	snap := orderedmap.New[string, int]()
	for pair := s.RecurringThemes.Oldest(); pair != nil; pair = pair.Next() {
		snap.Set(pair.Key, pair.Value)
	}
	return snap
}
