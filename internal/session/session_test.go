package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sonderlabs/mirror/internal/analyzer"
	"github.com/sonderlabs/mirror/internal/insight"
)

func mkAnalysis(emotion, context string) *analyzer.TurnAnalysis {
	return &analyzer.TurnAnalysis{
		Text:      "test utterance",
		Sentiment: analyzer.Sentiment{Label: "POSITIVE", Confidence: 0.9},
		Emotion:   analyzer.Emotion{Primary: emotion, Confidence: 0.85},
		Context:   analyzer.Context{Primary: context, Score: 0.7},
		Timestamp: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestRecord_AdvancesSession(t *testing.T) {
	s := New("conv-1")

	t1 := s.Record(mkAnalysis("joy", "goals"))
	t2 := s.Record(mkAnalysis("fear", "health"))

	if t1.Seq != 0 || t2.Seq != 1 {
		t.Errorf("expected sequential seq 0,1, got %d,%d", t1.Seq, t2.Seq)
	}
	if t1.ID == t2.ID {
		t.Error("expected distinct turn ids")
	}
	if s.Exchanges() != 2 {
		t.Errorf("expected 2 exchanges, got %d", s.Exchanges())
	}
	if len(s.History()) != 2 {
		t.Errorf("expected 2 history entries, got %d", len(s.History()))
	}

	summary, err := s.Summary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalExchanges != 2 {
		t.Errorf("expected 2 total exchanges, got %d", summary.TotalExchanges)
	}
	if summary.MostDiscussedTheme.Theme != "goals" {
		t.Errorf("expected first-inserted goals on tie, got %q", summary.MostDiscussedTheme.Theme)
	}
}

func TestSummary_EmptySession(t *testing.T) {
	s := New("conv-empty")

	_, err := s.Summary()
	if !errors.Is(err, insight.ErrEmptyHistory) {
		t.Fatalf("expected ErrEmptyHistory, got %v", err)
	}
}

func TestHistory_ReturnsCopy(t *testing.T) {
	s := New("conv-copy")
	s.Record(mkAnalysis("joy", "goals"))

	h := s.History()
	h[0].Text = "mutated"

	if s.History()[0].Text != "test utterance" {
		t.Error("expected history mutation to stay local to the copy")
	}
}

func TestRecord_ConcurrentTurnsNotLost(t *testing.T) {
	s := New("conv-parallel")

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		theme := "work stress"
		if i%2 == 0 {
			theme = "health"
		}
		go func(theme string) {
			defer wg.Done()
			s.Record(mkAnalysis("fear", theme))
		}(theme)
	}
	wg.Wait()

	if s.Exchanges() != n {
		t.Errorf("expected %d exchanges, got %d", n, s.Exchanges())
	}

	summary, err := s.Summary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sum := 0
	for pair := summary.ConversationThemes.Oldest(); pair != nil; pair = pair.Next() {
		sum += pair.Value
	}
	if sum != n {
		t.Errorf("expected theme counts to sum to %d, got %d", n, sum)
	}
	if len(summary.RecentEmotions) != 5 {
		t.Errorf("expected 5 recent emotions, got %d", len(summary.RecentEmotions))
	}
}

func TestRestore_ContinuesFromPersistedCount(t *testing.T) {
	st := insight.NewStore()
	st.Update(mkAnalysis("joy", "goals"))
	st.Update(mkAnalysis("sadness", "health"))

	s := Restore("conv-restored", st, 2)

	summary, err := s.Summary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalExchanges != 2 {
		t.Errorf("expected 2 exchanges from restore, got %d", summary.TotalExchanges)
	}

	turn := s.Record(mkAnalysis("anger", "goals"))
	if turn.Seq != 2 {
		t.Errorf("expected next seq 2 after restore, got %d", turn.Seq)
	}
	if s.Exchanges() != 3 {
		t.Errorf("expected 3 exchanges, got %d", s.Exchanges())
	}
}

func TestManager_GetCreatesOnce(t *testing.T) {
	m := NewManager()

	a := m.Get("conv-a")
	b := m.Get("conv-a")
	if a != b {
		t.Error("expected same session instance for same id")
	}
	if m.Count() != 1 {
		t.Errorf("expected 1 session, got %d", m.Count())
	}

	if _, ok := m.Lookup("conv-b"); ok {
		t.Error("expected lookup miss for unknown conversation")
	}
}

func TestManager_AdoptKeepsExisting(t *testing.T) {
	m := NewManager()

	original := m.Get("conv-a")
	restored := Restore("conv-a", insight.NewStore(), 5)

	got := m.Adopt(restored)
	if got != original {
		t.Error("expected adopt to keep the already-registered session")
	}

	got = m.Adopt(Restore("conv-new", insight.NewStore(), 1))
	if got.ID != "conv-new" {
		t.Errorf("expected adopted session, got %q", got.ID)
	}
	if m.Count() != 2 {
		t.Errorf("expected 2 sessions, got %d", m.Count())
	}
}

func TestManager_Remove(t *testing.T) {
	m := NewManager()
	m.Get("conv-a")

	m.Remove("conv-a")
	if _, ok := m.Lookup("conv-a"); ok {
		t.Error("expected session gone after remove")
	}
	if m.Count() != 0 {
		t.Errorf("expected 0 sessions, got %d", m.Count())
	}
}

func TestManager_IndependentConversationsInParallel(t *testing.T) {
	m := NewManager()

	const n = 10
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			s := m.Get(fmt.Sprintf("conv-%d", i))
			s.Record(mkAnalysis("joy", "daily life"))
		}(i)
	}
	wg.Wait()

	if m.Count() != n {
		t.Fatalf("expected %d sessions, got %d", n, m.Count())
	}
	for i := 0; i < n; i++ {
		s, ok := m.Lookup(fmt.Sprintf("conv-%d", i))
		if !ok {
			t.Fatalf("missing session conv-%d", i)
		}
		if s.Exchanges() != 1 {
			t.Errorf("conv-%d: expected 1 exchange, got %d", i, s.Exchanges())
		}
	}
}
