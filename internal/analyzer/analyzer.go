package analyzer

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sonderlabs/mirror/internal/classifier"
)

// Clock supplies per-turn timestamps. Readings must be monotonically
// non-decreasing within one analyzer.
type Clock interface {
	Now() time.Time
}

// systemClock clamps wall-clock readings so timestamps never move
// backwards across turns.
type systemClock struct {
	mu   sync.Mutex
	last time.Time
}

func (c *systemClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now().UTC()
	if now.Before(c.last) {
		now = c.last
	}
	c.last = now
	return now
}

type Analyzer struct {
	classifiers *classifier.Client
	clock       Clock
	logger      *slog.Logger
}

func New(c *classifier.Client, logger *slog.Logger) *Analyzer {
	return &Analyzer{classifiers: c, clock: &systemClock{}, logger: logger}
}

// NewWithClock is for callers that control time.
func NewWithClock(c *classifier.Client, clock Clock, logger *slog.Logger) *Analyzer {
	return &Analyzer{classifiers: c, clock: clock, logger: logger}
}

// Analyze runs the four classifiers against text and folds their
// outputs into one canonical record. Input is validated before any
// call goes out; any classifier failure discards the whole turn.
func (a *Analyzer) Analyze(ctx context.Context, text string, candidateThemes []string) (*TurnAnalysis, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if len(candidateThemes) == 0 {
		return nil, ErrNoThemes
	}

	var (
		sentiment *classifier.SentimentResult
		emotions  []classifier.LabelScore
		zeroShot  *classifier.ZeroShotResult
		entities  []classifier.RawEntity
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if sentiment, err = a.classifiers.ClassifySentiment(gctx, text); err != nil {
			return &ClassifierError{Classifier: "sentiment", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if emotions, err = a.classifiers.ClassifyEmotion(gctx, text); err != nil {
			return &ClassifierError{Classifier: "emotion", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if zeroShot, err = a.classifiers.ClassifyZeroShot(gctx, text, candidateThemes); err != nil {
			return &ClassifierError{Classifier: "zeroshot", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if entities, err = a.classifiers.ExtractEntities(gctx, text); err != nil {
			return &ClassifierError{Classifier: "ner", Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Highest-scoring emotion wins; ties keep the earlier entry.
	top := emotions[0]
	for _, s := range emotions[1:] {
		if s.Score > top.Score {
			top = s
		}
	}

	analysis := &TurnAnalysis{
		Text:      text,
		Sentiment: Sentiment{Label: sentiment.Label, Confidence: sentiment.Score},
		Emotion:   Emotion{Primary: canonicalEmotion(top.Label), Confidence: top.Score},
		Context:   Context{Primary: zeroShot.Labels[0], Score: zeroShot.Scores[0]},
		Entities:  make([]Entity, 0, len(entities)),
		Timestamp: a.clock.Now(),
	}
	for _, e := range entities {
		analysis.Entities = append(analysis.Entities, Entity{
			Type:        e.EntityGroup,
			SurfaceForm: e.Word,
			Confidence:  e.Score,
		})
	}

	a.logger.Debug("turn analyzed",
		"emotion", analysis.Emotion.Primary,
		"context", analysis.Context.Primary,
		"entities", len(analysis.Entities),
		"label_table", emotionLabelVersion,
	)

	return analysis, nil
}
