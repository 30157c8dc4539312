package processor

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sonderlabs/mirror/internal/analyzer"
	"github.com/sonderlabs/mirror/internal/classifier"
	"github.com/sonderlabs/mirror/internal/reflection"
	"github.com/sonderlabs/mirror/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newSidecar fakes the inference service. The zero-shot handler echoes
// the first candidate label back so theme routing is observable.
func newSidecar(t *testing.T, failPath string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/sentiment", func(w http.ResponseWriter, r *http.Request) {
		if failPath == "/sentiment" {
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"label": "NEGATIVE", "score": 0.91})
	})
	mux.HandleFunc("/emotion", func(w http.ResponseWriter, r *http.Request) {
		if failPath == "/emotion" {
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"scores": []map[string]any{
			{"label": "LABEL_0", "score": 0.84},
			{"label": "LABEL_1", "score": 0.05},
		}})
	})
	mux.HandleFunc("/zeroshot", func(w http.ResponseWriter, r *http.Request) {
		if failPath == "/zeroshot" {
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
			return
		}
		var req struct {
			CandidateLabels []string `json:"candidate_labels"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]any{
			"labels": []string{req.CandidateLabels[0]},
			"scores": []float64{0.77},
		})
	})
	mux.HandleFunc("/ner", func(w http.ResponseWriter, r *http.Request) {
		if failPath == "/ner" {
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"entities": []map[string]any{
			{"entity_group": "PER", "word": "Sam", "score": 0.99},
		}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestProcessor(t *testing.T, failPath string) (*Processor, *session.Manager) {
	t.Helper()
	srv := newSidecar(t, failPath)
	logger := discardLogger()
	mgr := session.NewManager()
	an := analyzer.New(classifier.NewClient(srv.URL), logger)
	p := New(mgr, an, reflection.New(), nil, nil, []string{"work stress", "family"}, logger)
	return p, mgr
}

func utterance(t *testing.T, conversationID, text string, themes ...string) []byte {
	t.Helper()
	data, err := json.Marshal(UtteranceEvent{
		ConversationID: conversationID,
		Text:           text,
		Themes:         themes,
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return data
}

func TestHandleUtteranceHeard_RecordsTurn(t *testing.T) {
	p, mgr := newTestProcessor(t, "")

	p.HandleUtteranceHeard("mirror.utterance.heard", utterance(t, "conv-1", "Everything at work is piling up."))

	sess, ok := mgr.Lookup("conv-1")
	if !ok {
		t.Fatal("expected session conv-1 to exist")
	}
	if sess.Exchanges() != 1 {
		t.Fatalf("expected 1 exchange, got %d", sess.Exchanges())
	}

	sum, err := sess.Summary()
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if sum.MostDiscussedTheme.Theme != "work stress" {
		t.Errorf("expected theme work stress, got %q", sum.MostDiscussedTheme.Theme)
	}
	if sum.RecentEmotions[0] != "sadness" {
		t.Errorf("expected sadness, got %q", sum.RecentEmotions[0])
	}
	if sum.UniqueEntities != 1 {
		t.Errorf("expected 1 unique entity, got %d", sum.UniqueEntities)
	}
}

func TestHandleUtteranceHeard_ClassifierFailureDiscardsTurn(t *testing.T) {
	p, mgr := newTestProcessor(t, "/emotion")

	p.HandleUtteranceHeard("mirror.utterance.heard", utterance(t, "conv-1", "Everything at work is piling up."))

	if _, ok := mgr.Lookup("conv-1"); ok {
		t.Fatal("expected no session after discarded turn")
	}
	if mgr.Count() != 0 {
		t.Errorf("expected 0 sessions, got %d", mgr.Count())
	}
}

func TestHandleUtteranceHeard_EmptyTextRejected(t *testing.T) {
	p, mgr := newTestProcessor(t, "")

	p.HandleUtteranceHeard("mirror.utterance.heard", utterance(t, "conv-1", "   "))

	if mgr.Count() != 0 {
		t.Errorf("expected 0 sessions, got %d", mgr.Count())
	}
}

func TestHandleUtteranceHeard_MissingConversationID(t *testing.T) {
	p, mgr := newTestProcessor(t, "")

	p.HandleUtteranceHeard("mirror.utterance.heard", utterance(t, "", "hello"))

	if mgr.Count() != 0 {
		t.Errorf("expected 0 sessions, got %d", mgr.Count())
	}
}

func TestHandleUtteranceHeard_MalformedEvent(t *testing.T) {
	p, mgr := newTestProcessor(t, "")

	p.HandleUtteranceHeard("mirror.utterance.heard", []byte("not json"))

	if mgr.Count() != 0 {
		t.Errorf("expected 0 sessions, got %d", mgr.Count())
	}
}

func TestHandleUtteranceHeard_PerTurnThemesOverride(t *testing.T) {
	p, mgr := newTestProcessor(t, "")

	p.HandleUtteranceHeard("mirror.utterance.heard",
		utterance(t, "conv-1", "I finally tried that new recipe.", "cooking", "travel"))

	sess, ok := mgr.Lookup("conv-1")
	if !ok {
		t.Fatal("expected session conv-1 to exist")
	}
	sum, err := sess.Summary()
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if sum.MostDiscussedTheme.Theme != "cooking" {
		t.Errorf("expected theme cooking, got %q", sum.MostDiscussedTheme.Theme)
	}
}

func TestHandleUtteranceHeard_SeparateConversations(t *testing.T) {
	p, mgr := newTestProcessor(t, "")

	p.HandleUtteranceHeard("mirror.utterance.heard", utterance(t, "conv-1", "Work is hard."))
	p.HandleUtteranceHeard("mirror.utterance.heard", utterance(t, "conv-2", "Work is hard."))
	p.HandleUtteranceHeard("mirror.utterance.heard", utterance(t, "conv-1", "Still hard."))

	if mgr.Count() != 2 {
		t.Fatalf("expected 2 sessions, got %d", mgr.Count())
	}
	one, _ := mgr.Lookup("conv-1")
	two, _ := mgr.Lookup("conv-2")
	if one.Exchanges() != 2 {
		t.Errorf("expected conv-1 to have 2 exchanges, got %d", one.Exchanges())
	}
	if two.Exchanges() != 1 {
		t.Errorf("expected conv-2 to have 1 exchange, got %d", two.Exchanges())
	}
}
