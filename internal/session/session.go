package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sonderlabs/mirror/internal/analyzer"
	"github.com/sonderlabs/mirror/internal/insight"
)

// Turn is one recorded exchange: the utterance and its analysis.
type Turn struct {
	ID       uuid.UUID              `json:"id"`
	Seq      int                    `json:"seq"`
	Text     string                 `json:"text"`
	Analysis *analyzer.TurnAnalysis `json:"analysis"`
	At       time.Time              `json:"at"`
}

// Session owns one conversation's history and insight store. The write
// lock serializes turn recording; summaries take the read lock, so a
// reader never observes a half-applied turn. Separate sessions share
// no state and proceed fully in parallel.
type Session struct {
	ID string

	mu        sync.RWMutex
	insights  *insight.Store
	history   []Turn
	exchanges int
}

func New(id string) *Session {
	return &Session{ID: id, insights: insight.NewStore()}
}

// Restore rebuilds a session from persisted state. exchanges is where
// the turn sequence resumes; newly recorded turns continue from there.
func Restore(id string, st *insight.Store, exchanges int) *Session {
	return &Session{ID: id, insights: st, exchanges: exchanges}
}

// Record appends the turn to the history and folds its analysis into
// the insight store as one step. Callers invoke it exactly once per
// analyzed turn.
func (s *Session) Record(a *analyzer.TurnAnalysis) Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turn := Turn{
		ID:       uuid.New(),
		Seq:      s.exchanges,
		Text:     a.Text,
		Analysis: a,
		At:       a.Timestamp,
	}
	s.history = append(s.history, turn)
	s.exchanges++
	s.insights.Update(a)
	return turn
}

// Summary reports the conversation so far. Before the first recorded
// turn it returns insight.ErrEmptyHistory.
func (s *Session) Summary() (*insight.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.insights.Summarize(s.exchanges)
}

// Exchanges is the number of turns recorded, including persisted ones
// for a restored session.
func (s *Session) Exchanges() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exchanges
}

// History returns a copy of the turns recorded by this process.
func (s *Session) History() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}
