package processor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/sonderlabs/mirror/internal/analyzer"
	"github.com/sonderlabs/mirror/internal/bus"
	"github.com/sonderlabs/mirror/internal/reflection"
	"github.com/sonderlabs/mirror/internal/session"
	"github.com/sonderlabs/mirror/internal/store"
)

// UtteranceEvent is the payload on bus.SubjectUtteranceHeard. Themes
// narrows the zero-shot candidate set for this turn; when empty, the
// service-wide theme list applies.
type UtteranceEvent struct {
	ConversationID string   `json:"conversation_id"`
	Text           string   `json:"text"`
	Themes         []string `json:"themes,omitempty"`
}

// Processor orchestrates the mirror pipeline for utterances arriving
// over the bus: analyze, reply, record, persist, announce.
type Processor struct {
	sessions  *session.Manager
	analyzer  *analyzer.Analyzer
	responder *reflection.Responder
	bus       *bus.Client
	store     *store.Store
	themes    []string
	logger    *slog.Logger
}

func New(mgr *session.Manager, an *analyzer.Analyzer, rsp *reflection.Responder, b *bus.Client, st *store.Store, themes []string, logger *slog.Logger) *Processor {
	return &Processor{
		sessions:  mgr,
		analyzer:  an,
		responder: rsp,
		bus:       b,
		store:     st,
		themes:    themes,
		logger:    logger,
	}
}

// HandleUtteranceHeard is the NATS handler for mirror.utterance.heard.
// A turn that fails analysis is discarded whole: nothing is recorded,
// nothing is published.
func (p *Processor) HandleUtteranceHeard(subject string, data []byte) {
	ctx := context.Background()

	var evt UtteranceEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse utterance event", "error", err)
		return
	}
	if evt.ConversationID == "" {
		p.logger.Error("utterance event missing conversation_id")
		return
	}

	themes := evt.Themes
	if len(themes) == 0 {
		themes = p.themes
	}

	a, err := p.analyzer.Analyze(ctx, evt.Text, themes)
	if err != nil {
		var ce *analyzer.ClassifierError
		if errors.As(err, &ce) {
			p.logger.Error("classification unavailable, turn discarded",
				"conversation_id", evt.ConversationID,
				"classifier", ce.Classifier,
				"error", err,
			)
		} else {
			p.logger.Warn("utterance rejected",
				"conversation_id", evt.ConversationID,
				"error", err,
			)
		}
		return
	}

	sess := p.resolveSession(ctx, evt.ConversationID)
	turn := sess.Record(a)
	reply := p.responder.Respond(a)

	if p.store != nil {
		if err := p.store.SaveTurn(ctx, evt.ConversationID, turn.ID, turn.Seq, a); err != nil {
			p.logger.Error("failed to persist turn",
				"conversation_id", evt.ConversationID,
				"turn_id", turn.ID,
				"error", err,
			)
		}
	}

	if p.bus != nil {
		if err := p.bus.Publish(bus.SubjectTurnAnalyzed, bus.TurnAnalyzedEvent{
			ConversationID: evt.ConversationID,
			TurnID:         turn.ID.String(),
			Seq:            turn.Seq,
			Analysis:       a,
			Reply:          reply,
		}); err != nil {
			p.logger.Error("failed to publish turn analyzed", "error", err)
		}
	}

	p.logger.Info("turn recorded",
		"conversation_id", evt.ConversationID,
		"seq", turn.Seq,
		"emotion", a.Emotion.Primary,
		"context", a.Context.Primary,
	)
}

// resolveSession returns the live session for a conversation,
// rebuilding it from the database on first sight when persistence is
// configured.
func (p *Processor) resolveSession(ctx context.Context, conversationID string) *session.Session {
	if sess, ok := p.sessions.Lookup(conversationID); ok {
		return sess
	}

	if p.store != nil {
		st, exchanges, err := p.store.LoadSession(ctx, conversationID)
		if err == nil {
			p.logger.Info("session restored",
				"conversation_id", conversationID,
				"exchanges", exchanges,
			)
			return p.sessions.Adopt(session.Restore(conversationID, st, exchanges))
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			p.logger.Error("failed to load session, starting fresh",
				"conversation_id", conversationID,
				"error", err,
			)
		}
	}

	return p.sessions.Get(conversationID)
}
