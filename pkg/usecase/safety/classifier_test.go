package safety_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/thebardchat/angel-cloud/pkg/model"
	"github.com/thebardchat/angel-cloud/pkg/usecase/safety"
)

type recordedCrisis struct {
	text     string
	severity model.Severity
}

type mockRecorder struct {
	calls []recordedCrisis
	err   error
}

func (m *mockRecorder) LogCrisis(ctx context.Context, text string, severity model.Severity) (model.RecordID, error) {
	m.calls = append(m.calls, recordedCrisis{text: text, severity: severity})
	if m.err != nil {
		return "", m.err
	}
	return model.NewRecordID(), nil
}

func TestClassifyCrisis(t *testing.T) {
	rec := &mockRecorder{}
	x := safety.New(nil, rec)

	c := x.Classify(context.Background(), "I feel hopeless and want to die")

	gt.True(t, c.Crisis)
	gt.Equal(t, c.Urgency, model.UrgencyCritical)

	// The event must already be persisted when Classify returns
	gt.A(t, rec.calls).Length(1)
	gt.Equal(t, rec.calls[0].text, "I feel hopeless and want to die")
	gt.Equal(t, rec.calls[0].severity, model.SeverityHigh)
}

func TestClassifyPositive(t *testing.T) {
	rec := &mockRecorder{}
	x := safety.New(nil, rec)

	c := x.Classify(context.Background(), "I'm grateful and happy today")

	gt.False(t, c.Crisis)
	gt.Equal(t, c.SentimentScore, 0.6)
	gt.Equal(t, c.Urgency, model.UrgencyNormal)
	gt.A(t, rec.calls).Length(0)
}

func TestClassifyNegativeRaisesUrgency(t *testing.T) {
	x := safety.New(nil, &mockRecorder{})

	c := x.Classify(context.Background(), "I feel so sad and alone")

	gt.False(t, c.Crisis)
	gt.Equal(t, c.SentimentScore, -0.6)
	gt.Equal(t, c.Urgency, model.UrgencyHigh)
}

func TestClassifyMildNegativeStaysNormal(t *testing.T) {
	x := safety.New(nil, &mockRecorder{})

	// One negative hit scores -0.3, which is above the high-urgency line
	c := x.Classify(context.Background(), "today was sad")

	gt.Equal(t, c.SentimentScore, -0.3)
	gt.Equal(t, c.Urgency, model.UrgencyNormal)
}

func TestClassifyEmptyInput(t *testing.T) {
	rec := &mockRecorder{}
	x := safety.New(nil, rec)

	c := x.Classify(context.Background(), "")

	gt.False(t, c.Crisis)
	gt.Equal(t, c.SentimentScore, 0.0)
	gt.Equal(t, c.Urgency, model.UrgencyNormal)
	gt.A(t, rec.calls).Length(0)
}

func TestClassifyClampsScore(t *testing.T) {
	x := safety.New(nil, &mockRecorder{})

	pos := x.Classify(context.Background(), "happy grateful thankful blessed joy")
	gt.Equal(t, pos.SentimentScore, 1.0)

	neg := x.Classify(context.Background(), "sad angry lonely scared afraid")
	gt.Equal(t, neg.SentimentScore, -1.0)
}

func TestClassifyCaseInsensitive(t *testing.T) {
	rec := &mockRecorder{}
	x := safety.New(nil, rec)

	c := x.Classify(context.Background(), "I FEEL HOPELESS")
	gt.True(t, c.Crisis)
	gt.A(t, rec.calls).Length(1)

	upper := x.Classify(context.Background(), "GRATEFUL and HAPPY")
	gt.Equal(t, upper.SentimentScore, 0.6)
}

func TestClassifyTrimsPunctuation(t *testing.T) {
	x := safety.New(nil, &mockRecorder{})

	c := x.Classify(context.Background(), "Grateful, happy!")
	gt.Equal(t, c.SentimentScore, 0.6)
}

func TestClassifyRecorderFailure(t *testing.T) {
	rec := &mockRecorder{err: errors.New("store down")}
	x := safety.New(nil, rec)

	c := x.Classify(context.Background(), "I want to die")

	// A failed write never changes the classification result
	gt.True(t, c.Crisis)
	gt.Equal(t, c.Urgency, model.UrgencyCritical)
	gt.A(t, rec.calls).Length(1)
}

func TestClassifyDeterministic(t *testing.T) {
	x := safety.New(nil, &mockRecorder{})

	first := x.Classify(context.Background(), "I feel so sad and alone")
	second := x.Classify(context.Background(), "I feel so sad and alone")
	gt.Equal(t, first, second)
}

func TestDefaultLexicon(t *testing.T) {
	lex := safety.DefaultLexicon()

	gt.A(t, lex.Crisis).Longer(0)
	gt.A(t, lex.Positive).Longer(0)
	gt.A(t, lex.Negative).Longer(0)

	found := map[string]bool{}
	for _, phrase := range lex.Crisis {
		found[phrase] = true
	}
	gt.True(t, found["hopeless"])
	gt.True(t, found["want to die"])
}

func TestLoadLexicon(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yml")
	body := []byte("crisis:\n  - danger phrase\npositive:\n  - sunny\nnegative:\n  - gloomy\n")
	gt.NoError(t, os.WriteFile(path, body, 0o644))

	lex, err := safety.LoadLexicon(path)
	gt.NoError(t, err)
	gt.A(t, lex.Crisis).Length(1)

	x := safety.New(lex, &mockRecorder{})
	c := x.Classify(context.Background(), "this is a danger phrase here")
	gt.True(t, c.Crisis)

	sunny := x.Classify(context.Background(), "sunny but gloomy")
	gt.Equal(t, sunny.SentimentScore, 0.0)
}

func TestLoadLexiconMissingFile(t *testing.T) {
	_, err := safety.LoadLexicon("/no/such/lexicon.yml")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagConfig))
}

func TestLoadLexiconMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yml")
	gt.NoError(t, os.WriteFile(path, []byte("crisis: {not: [a, list"), 0o644))

	_, err := safety.LoadLexicon(path)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagConfig))
}
