package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// InitSchema creates the insight tables when they do not exist yet.
func (s *Store) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaDDL {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS conversations (
		id         text PRIMARY KEY,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS turns (
		id                   uuid PRIMARY KEY,
		conversation_id      text NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		seq                  int NOT NULL,
		text                 text NOT NULL,
		sentiment_label      text NOT NULL,
		sentiment_confidence double precision NOT NULL,
		emotion              text NOT NULL,
		emotion_confidence   double precision NOT NULL,
		context              text NOT NULL,
		context_score        double precision NOT NULL,
		analyzed_at          timestamptz NOT NULL,
		UNIQUE (conversation_id, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS entity_mentions (
		id              uuid PRIMARY KEY,
		conversation_id text NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		turn_id         uuid NOT NULL REFERENCES turns(id) ON DELETE CASCADE,
		ord             int NOT NULL,
		entity_type     text NOT NULL,
		surface_form    text NOT NULL,
		confidence      double precision NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS recurring_themes (
		conversation_id text NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		theme           text NOT NULL,
		mention_count   int NOT NULL,
		first_seq       int NOT NULL,
		PRIMARY KEY (conversation_id, theme)
	)`,
}
