package sentiment

import (
	"errors"
	"testing"
)

func TestScore(t *testing.T) {
	s := New(nil)

	tests := []struct {
		text       string
		label      string
		confidence string
	}{
		{"I love this, it is great", Positive, High},
		{"This is terrible and slow", Negative, High},
		{"The table has three columns", Neutral, Low},
		{"This is not good", Negative, Medium},
		{"The editor doesn't feel intuitive", Negative, Medium},
		{"very good", Positive, High},
		{"", Neutral, Low},
	}

	for _, tt := range tests {
		got := s.Score(tt.text)
		if got.Label != tt.label || got.Confidence != tt.confidence {
			t.Errorf("Score(%q) = %+v, want %s/%s", tt.text, got, tt.label, tt.confidence)
		}
		if got.Polarity < -1 || got.Polarity > 1 || got.Subjectivity < 0 || got.Subjectivity > 1 {
			t.Errorf("Score(%q) out of range: %+v", tt.text, got)
		}
	}
}

func TestIntensifierAndNegation(t *testing.T) {
	a := NewLexiconAnalyzer(nil)
	plain, _, _ := a.Analyze("good")
	strong, _, _ := a.Analyze("very good")
	negated, _, _ := a.Analyze("not good")
	far, _, _ := a.Analyze("not that this was ever good")

	if strong <= plain {
		t.Errorf("intensifier should raise polarity: %v <= %v", strong, plain)
	}
	if negated >= 0 {
		t.Errorf("negation should flip polarity, got %v", negated)
	}
	if far != plain {
		t.Errorf("negation should not reach past its window, got %v", far)
	}
}

type failingAnalyzer struct{ panic bool }

func (f failingAnalyzer) Analyze(string) (float64, float64, error) {
	if f.panic {
		panic("boom")
	}
	return 0.9, 0.9, errors.New("unavailable")
}

func TestScoreAnalyzerFailure(t *testing.T) {
	for _, a := range []Analyzer{failingAnalyzer{}, failingAnalyzer{panic: true}} {
		if got := New(a).Score("great stuff"); got != NeutralResult {
			t.Errorf("failure should yield neutral, got %+v", got)
		}
	}
}

func TestLabelThresholds(t *testing.T) {
	tests := []struct {
		p     float64
		label string
		tier  string
	}{
		{0.1, Neutral, Low},
		{0.11, Positive, Low},
		{-0.1, Neutral, Low},
		{-0.2, Negative, Medium},
		{0.5, Positive, High},
		{-0.75, Negative, High},
		{0.19, Positive, Low},
	}
	for _, tt := range tests {
		if got := Label(tt.p); got != tt.label {
			t.Errorf("Label(%v) = %s, want %s", tt.p, got, tt.label)
		}
		if got := ConfidenceTier(tt.p); got != tt.tier {
			t.Errorf("ConfidenceTier(%v) = %s, want %s", tt.p, got, tt.tier)
		}
	}
}

func TestParseLexiconRejectsBadEntries(t *testing.T) {
	bad := []string{
		"words:\n  good: [0.5]\n",
		"words:\n  good: [2, 0.5]\n",
		"words: [oops",
	}
	for _, doc := range bad {
		if _, err := ParseLexicon([]byte(doc)); err == nil {
			t.Errorf("ParseLexicon(%q) should fail", doc)
		}
	}
}
