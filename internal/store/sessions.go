package store

import (
	"context"
	"fmt"

	"github.com/sonderlabs/mirror/internal/analyzer"
	"github.com/sonderlabs/mirror/internal/insight"
)

// LoadSession rebuilds a conversation's insight store from the insight
// tables. The exchange count is derived from the highest persisted seq,
// not the row count, so the sequence resumes past any turn whose write
// was lost. Theme rows come back in first-mention order so tie-breaks
// behave exactly as they did before the restart. Unknown conversations
// surface pgx.ErrNoRows from the existence check.
func (s *Store) LoadSession(ctx context.Context, conversationID string) (*insight.Store, int, error) {
	var id string
	err := s.pool.QueryRow(ctx, `
		SELECT id FROM conversations WHERE id = $1`,
		conversationID,
	).Scan(&id)
	if err != nil {
		return nil, 0, err
	}

	var exchanges int
	err = s.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(seq) + 1, 0) FROM turns WHERE conversation_id = $1`,
		conversationID,
	).Scan(&exchanges)
	if err != nil {
		return nil, 0, fmt.Errorf("count exchanges: %w", err)
	}

	st := insight.NewStore()

	if err := s.loadPatterns(ctx, conversationID, st); err != nil {
		return nil, 0, err
	}
	if err := s.loadThemes(ctx, conversationID, st); err != nil {
		return nil, 0, err
	}
	if err := s.loadEntities(ctx, conversationID, st); err != nil {
		return nil, 0, err
	}

	return st, exchanges, nil
}

func (s *Store) loadPatterns(ctx context.Context, conversationID string, st *insight.Store) error {
	rows, err := s.pool.Query(ctx, `
		SELECT emotion, emotion_confidence, context, analyzed_at
		FROM turns
		WHERE conversation_id = $1
		ORDER BY seq`,
		conversationID,
	)
	if err != nil {
		return fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p insight.EmotionalPattern
		if err := rows.Scan(&p.Emotion, &p.Confidence, &p.Context, &p.Timestamp); err != nil {
			return fmt.Errorf("scan turn: %w", err)
		}
		st.EmotionalPatterns = append(st.EmotionalPatterns, p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate turns: %w", err)
	}
	return nil
}

func (s *Store) loadThemes(ctx context.Context, conversationID string, st *insight.Store) error {
	rows, err := s.pool.Query(ctx, `
		SELECT theme, mention_count
		FROM recurring_themes
		WHERE conversation_id = $1
		ORDER BY first_seq`,
		conversationID,
	)
	if err != nil {
		return fmt.Errorf("query themes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var theme string
		var count int
		if err := rows.Scan(&theme, &count); err != nil {
			return fmt.Errorf("scan theme: %w", err)
		}
		st.RecurringThemes.Set(theme, count)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate themes: %w", err)
	}
	return nil
}

func (s *Store) loadEntities(ctx context.Context, conversationID string, st *insight.Store) error {
	rows, err := s.pool.Query(ctx, `
		SELECT em.entity_type, em.surface_form, em.confidence
		FROM entity_mentions em
		JOIN turns t ON t.id = em.turn_id
		WHERE em.conversation_id = $1
		ORDER BY t.seq, em.ord`,
		conversationID,
	)
	if err != nil {
		return fmt.Errorf("query entity mentions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e analyzer.Entity
		if err := rows.Scan(&e.Type, &e.SurfaceForm, &e.Confidence); err != nil {
			return fmt.Errorf("scan entity mention: %w", err)
		}
		st.EntitiesMentioned = append(st.EntitiesMentioned, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate entity mentions: %w", err)
	}
	return nil
}

// DeleteConversation removes a conversation and all of its insight rows.
func (s *Store) DeleteConversation(ctx context.Context, conversationID string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM conversations WHERE id = $1`,
		conversationID,
	)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}
