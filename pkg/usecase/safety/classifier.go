package safety

import (
	"context"
	"strings"

	"github.com/thebardchat/angel-cloud/pkg/model"
	"github.com/thebardchat/angel-cloud/pkg/utils/logging"
)

const (
	sentimentWeight = 0.3
	highThreshold   = -0.5

	tokenCutset = ".,!?;:\"'()[]{}"
)

// CrisisRecorder persists crisis events detected during classification.
type CrisisRecorder interface {
	LogCrisis(ctx context.Context, text string, severity model.Severity) (model.RecordID, error)
}

// Classifier screens inbound text for crisis indicators and sentiment
// polarity. All matching is deterministic; the word lists are fixed at
// construction time.
type Classifier struct {
	crisis   []string
	positive map[string]struct{}
	negative map[string]struct{}
	recorder CrisisRecorder
}

// New creates a classifier from the given lexicon. A nil lexicon falls back
// to the built-in one.
func New(lex *Lexicon, recorder CrisisRecorder) *Classifier {
	if lex == nil {
		lex = DefaultLexicon()
	}

	x := &Classifier{
		crisis:   make([]string, 0, len(lex.Crisis)),
		positive: make(map[string]struct{}, len(lex.Positive)),
		negative: make(map[string]struct{}, len(lex.Negative)),
		recorder: recorder,
	}
	for _, phrase := range lex.Crisis {
		x.crisis = append(x.crisis, strings.ToLower(phrase))
	}
	for _, word := range lex.Positive {
		x.positive[strings.ToLower(word)] = struct{}{}
	}
	for _, word := range lex.Negative {
		x.negative[strings.ToLower(word)] = struct{}{}
	}

	return x
}

// Classify scans text for crisis indicators and scores its sentiment. It
// never fails: any input, including empty text, yields a result. When a
// crisis indicator matches, the event is recorded before Classify returns
// so that a downstream failure cannot lose it; a failed write is logged
// and does not change the result.
func (x *Classifier) Classify(ctx context.Context, text string) model.Classification {
	folded := strings.ToLower(text)

	crisis := false
	for _, phrase := range x.crisis {
		if strings.Contains(folded, phrase) {
			crisis = true
			break
		}
	}

	var pos, neg int
	for _, token := range strings.Fields(folded) {
		token = strings.Trim(token, tokenCutset)
		if token == "" {
			continue
		}
		if _, ok := x.positive[token]; ok {
			pos++
		}
		if _, ok := x.negative[token]; ok {
			neg++
		}
	}

	score := clamp(sentimentWeight*float64(pos) - sentimentWeight*float64(neg))

	urgency := model.UrgencyNormal
	switch {
	case crisis:
		urgency = model.UrgencyCritical
	case score < highThreshold:
		urgency = model.UrgencyHigh
	}

	if crisis && x.recorder != nil {
		if _, err := x.recorder.LogCrisis(ctx, text, model.SeverityHigh); err != nil {
			logging.From(ctx).Error("failed to record crisis event", "error", err)
		}
	}

	return model.Classification{
		SentimentScore: score,
		Crisis:         crisis,
		Urgency:        urgency,
	}
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}
