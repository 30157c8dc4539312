package analyzer

// emotionLabelVersion identifies the remap table in effect. Bump when
// the emotion model's label layout changes.
const emotionLabelVersion = "v1"

// emotionLabels maps the emotion model's positional identifiers to the
// canonical vocabulary.
var emotionLabels = map[string]string{
	"LABEL_0": "sadness",
	"LABEL_1": "joy",
	"LABEL_2": "love",
	"LABEL_3": "anger",
	"LABEL_4": "fear",
	"LABEL_5": "surprise",
}

// canonicalEmotion resolves a raw model label to its canonical name.
// Unknown labels pass through verbatim so a model swap never breaks
// downstream consumers.
func canonicalEmotion(raw string) string {
	if name, ok := emotionLabels[raw]; ok {
		return name
	}
	return raw
}
