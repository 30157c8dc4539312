package reflection

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/sonderlabs/mirror/internal/analyzer"
)

// Question selection gates: a strongly detected emotion is asked about
// directly; otherwise a confident context label picks the track;
// everything else falls back to open self-reflection.
const (
	emotionConfidenceGate = 0.8
	contextScoreGate      = 0.6
)

// Reply is the generated reflective response to one analyzed turn.
type Reply struct {
	Acknowledgment string `json:"acknowledgment"`
	Question       string `json:"question"`
	ActionPoint    string `json:"action_point"`
}

// Responder composes replies from the template tables.
type Responder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func New() *Responder {
	return &Responder{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Respond builds the acknowledgment, reflection question, and action
// point for one turn.
func (r *Responder) Respond(a *analyzer.TurnAnalysis) Reply {
	return Reply{
		Acknowledgment: r.acknowledge(a),
		Question:       r.selectQuestion(a),
		ActionPoint:    r.actionPoint(a),
	}
}

func (r *Responder) acknowledge(a *analyzer.TurnAnalysis) string {
	ack := fallbackAcknowledgment
	if opts, ok := acknowledgments[a.Emotion.Primary]; ok {
		ack = r.pick(opts)
	}
	return ack + entityAcknowledgment(a.Entities)
}

// entityAcknowledgment names the first person mentioned, or failing
// that the first place.
func entityAcknowledgment(entities []analyzer.Entity) string {
	var person, place string
	for _, e := range entities {
		switch e.Type {
		case "PER":
			if person == "" {
				person = e.SurfaceForm
			}
		case "LOC":
			if place == "" {
				place = e.SurfaceForm
			}
		}
	}
	if person != "" {
		return fmt.Sprintf(" It sounds like %s plays an important role in this.", person)
	}
	if place != "" {
		return fmt.Sprintf(" And this connection to %s seems significant.", place)
	}
	return ""
}

func (r *Responder) selectQuestion(a *analyzer.TurnAnalysis) string {
	if a.Emotion.Confidence > emotionConfidenceGate {
		if qs, ok := questionTemplates[a.Emotion.Primary]; ok {
			return r.pick(qs)
		}
	}
	if a.Context.Score > contextScoreGate {
		if qs, ok := questionTemplates[a.Context.Primary]; ok {
			return r.pick(qs)
		}
	}
	return r.pick(questionTemplates["self_reflection"])
}

func (r *Responder) actionPoint(a *analyzer.TurnAnalysis) string {
	action := r.pick(fallbackActions)
	if opts, ok := actionTemplates[a.Emotion.Primary]; ok {
		action = r.pick(opts)
	}
	tone := strings.ToLower(a.Sentiment.Label)
	return fmt.Sprintf("There's a clear feeling of %s in what you expressed, and a kind of %s tone that lingers as you share. One gentle step forward might be: %s",
		a.Emotion.Primary, tone, action)
}

func (r *Responder) pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return options[r.rng.Intn(len(options))]
}
