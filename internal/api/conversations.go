package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/sonderlabs/mirror/internal/analyzer"
	"github.com/sonderlabs/mirror/internal/insight"
	"github.com/sonderlabs/mirror/internal/reflection"
	"github.com/sonderlabs/mirror/internal/session"
)

// turnRequest is the POST body for turn ingest. Themes narrows the
// zero-shot candidate set for this turn only.
type turnRequest struct {
	Text   string   `json:"text"`
	Themes []string `json:"themes,omitempty"`
}

type turnResponse struct {
	TurnID   string                 `json:"turn_id"`
	Seq      int                    `json:"seq"`
	Analysis *analyzer.TurnAnalysis `json:"analysis"`
	Reply    reflection.Reply       `json:"reply"`
}

// postTurn handles POST /api/v1/mirror/conversations/{id}/turns.
// Invalid input never reaches the classifiers; a classifier outage
// discards the turn whole and reports which sub-classifier failed.
func (s *Server) postTurn(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	themes := req.Themes
	if len(themes) == 0 {
		themes = s.themes
	}

	a, err := s.analyzer.Analyze(r.Context(), req.Text, themes)
	if err != nil {
		var ce *analyzer.ClassifierError
		switch {
		case errors.As(err, &ce):
			s.logger.Error("classification unavailable",
				"conversation_id", conversationID,
				"classifier", ce.Classifier,
				"error", err,
			)
			writeError(w, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, analyzer.ErrEmptyText), errors.Is(err, analyzer.ErrNoThemes):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	sess := s.resolveSession(r.Context(), conversationID)
	turn := sess.Record(a)
	reply := s.responder.Respond(a)

	if s.store != nil {
		if err := s.store.SaveTurn(r.Context(), conversationID, turn.ID, turn.Seq, a); err != nil {
			s.logger.Error("failed to persist turn",
				"conversation_id", conversationID,
				"turn_id", turn.ID,
				"error", err,
			)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(turnResponse{
		TurnID:   turn.ID.String(),
		Seq:      turn.Seq,
		Analysis: a,
		Reply:    reply,
	})
}

// getSummary handles GET /api/v1/mirror/conversations/{id}/summary.
// Unknown conversations and conversations with no recorded turns both
// answer 404 with the no_data sentinel, without creating a session.
func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")

	sess, ok := s.sessions.Lookup(conversationID)
	if !ok {
		if s.store == nil {
			writeNoData(w)
			return
		}
		st, exchanges, err := s.store.LoadSession(r.Context(), conversationID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			writeNoData(w)
			return
		case err != nil:
			s.logger.Error("failed to load session",
				"conversation_id", conversationID,
				"error", err,
			)
			writeError(w, http.StatusInternalServerError, "failed to load conversation")
			return
		}
		sess = s.sessions.Adopt(session.Restore(conversationID, st, exchanges))
	}

	sum, err := sess.Summary()
	if err != nil {
		if errors.Is(err, insight.ErrEmptyHistory) {
			writeNoData(w)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(sum)
}

// deleteConversation handles DELETE /api/v1/mirror/conversations/{id}.
func (s *Server) deleteConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")

	s.sessions.Remove(conversationID)
	if s.store != nil {
		if err := s.store.DeleteConversation(r.Context(), conversationID); err != nil {
			s.logger.Error("failed to delete conversation rows",
				"conversation_id", conversationID,
				"error", err,
			)
			writeError(w, http.StatusInternalServerError, "failed to delete conversation")
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolveSession returns the live session for a conversation,
// rebuilding it from the database on first sight when persistence is
// configured.
func (s *Server) resolveSession(ctx context.Context, conversationID string) *session.Session {
	if sess, ok := s.sessions.Lookup(conversationID); ok {
		return sess
	}

	if s.store != nil {
		st, exchanges, err := s.store.LoadSession(ctx, conversationID)
		if err == nil {
			s.logger.Info("session restored",
				"conversation_id", conversationID,
				"exchanges", exchanges,
			)
			return s.sessions.Adopt(session.Restore(conversationID, st, exchanges))
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error("failed to load session, starting fresh",
				"conversation_id", conversationID,
				"error", err,
			)
		}
	}

	return s.sessions.Get(conversationID)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeNoData(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "no_data",
		"message": "no conversation data yet",
	})
}
