package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sonderlabs/mirror/internal/analyzer"
)

// SaveTurn writes one analyzed turn across the insight tables.
// Tables: conversations, turns, entity_mentions, recurring_themes.
// The whole turn lands in a single transaction or not at all.
func (s *Store) SaveTurn(ctx context.Context, conversationID string, turnID uuid.UUID, seq int, a *analyzer.TurnAnalysis) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// 1. Upsert conversation
	_, err = tx.Exec(ctx, `
		INSERT INTO conversations (id, created_at, updated_at)
		VALUES ($1, now(), now())
		ON CONFLICT (id) DO UPDATE SET updated_at = now()`,
		conversationID,
	)
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}

	// 2. Insert turn
	_, err = tx.Exec(ctx, `
		INSERT INTO turns (id, conversation_id, seq, text, sentiment_label, sentiment_confidence,
			emotion, emotion_confidence, context, context_score, analyzed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		turnID, conversationID, seq, a.Text,
		a.Sentiment.Label, a.Sentiment.Confidence,
		a.Emotion.Primary, a.Emotion.Confidence,
		a.Context.Primary, a.Context.Score,
		a.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}

	// 3. Insert entity mentions, keeping their in-turn order
	for i, e := range a.Entities {
		_, err = tx.Exec(ctx, `
			INSERT INTO entity_mentions (id, conversation_id, turn_id, ord, entity_type, surface_form, confidence)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New(), conversationID, turnID, i, e.Type, e.SurfaceForm, e.Confidence,
		)
		if err != nil {
			return fmt.Errorf("insert entity mention: %w", err)
		}
	}

	// 4. Bump the theme count. A new theme keeps the seq of the turn
	// that first mentioned it; loads order by that seq, so first-mention
	// order survives restarts and concurrent saves. Seqs are assigned
	// under the session lock and unique per conversation, so no two
	// themes can share an order key.
	_, err = tx.Exec(ctx, `
		INSERT INTO recurring_themes (conversation_id, theme, mention_count, first_seq)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (conversation_id, theme)
		DO UPDATE SET mention_count = recurring_themes.mention_count + 1`,
		conversationID, a.Context.Primary, seq,
	)
	if err != nil {
		return fmt.Errorf("upsert theme: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}
