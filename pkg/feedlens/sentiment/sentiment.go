// Package sentiment scores the polarity of feedback text.
package sentiment

import (
	"math"
	"strings"
)

// Labels.
const (
	Positive = "Positive"
	Negative = "Negative"
	Neutral  = "Neutral"
)

// Confidence tiers.
const (
	High   = "High"
	Medium = "Medium"
	Low    = "Low"
)

// Analyzer computes polarity in [-1,1] and subjectivity in [0,1].
type Analyzer interface {
	Analyze(text string) (polarity, subjectivity float64, err error)
}

// Result is a scored text.
type Result struct {
	Polarity     float64
	Subjectivity float64
	Label        string
	Confidence   string
}

// NeutralResult is returned for empty text and analyzer failures.
var NeutralResult = Result{Label: Neutral, Confidence: Low}

// Scorer wraps an Analyzer with labelling and failure handling.
type Scorer struct {
	analyzer Analyzer
}

// New returns a Scorer over a. A nil a selects the built-in lexicon analyzer.
func New(a Analyzer) *Scorer {
	if a == nil {
		a = NewLexiconAnalyzer(nil)
	}
	return &Scorer{analyzer: a}
}

// Score labels text. Analyzer errors and panics yield NeutralResult.
func (s *Scorer) Score(text string) (res Result) {
	if strings.TrimSpace(text) == "" {
		return NeutralResult
	}
	defer func() {
		if r := recover(); r != nil {
			res = NeutralResult
		}
	}()

	p, subj, err := s.analyzer.Analyze(text)
	if err != nil || math.IsNaN(p) || math.IsNaN(subj) {
		return NeutralResult
	}
	p = round(clamp(p, -1, 1))
	subj = round(clamp(subj, 0, 1))
	return Result{
		Polarity:     p,
		Subjectivity: subj,
		Label:        Label(p),
		Confidence:   ConfidenceTier(p),
	}
}

// Label maps polarity to Positive (> 0.1), Negative (< -0.1) or Neutral.
func Label(polarity float64) string {
	switch {
	case polarity > 0.1:
		return Positive
	case polarity < -0.1:
		return Negative
	}
	return Neutral
}

// ConfidenceTier grades the magnitude of polarity.
func ConfidenceTier(polarity float64) string {
	switch a := math.Abs(polarity); {
	case a >= 0.5:
		return High
	case a >= 0.2:
		return Medium
	}
	return Low
}

func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}
