package cluster

import (
	"fmt"
	"math"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/cognicore/feedlens/pkg/feedlens/internalerr"
	"github.com/cognicore/feedlens/pkg/feedlens/textclean"
)

// Metric selects the base string similarity.
type Metric string

const (
	// Sequence is the matching-blocks ratio 2*M/T over characters.
	Sequence Metric = "sequence"
	// Levenshtein is 1 - edit distance / longer length.
	Levenshtein Metric = "levenshtein"
)

// ParseMetric accepts a metric name case-insensitively. Blank selects
// Sequence.
func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case "", Sequence:
		return Sequence, nil
	case Levenshtein:
		return Levenshtein, nil
	}
	return "", fmt.Errorf("%w: unknown similarity metric %q", internalerr.ErrInvalidInput, s)
}

// sharedWordWeight scales the shared-vocabulary bonus.
const sharedWordWeight = 0.2

// doc is an item prepared for pairwise comparison.
type doc struct {
	norm  string
	chars []string
	words map[string]struct{}
}

func prepare(text string) doc {
	norm := textclean.Normalize(text)
	d := doc{norm: norm, words: make(map[string]struct{})}
	for _, r := range norm {
		d.chars = append(d.chars, string(r))
	}
	for _, w := range strings.Fields(norm) {
		d.words[w] = struct{}{}
	}
	return d
}

// Similarity scores two texts in [0,1]: the base ratio of their normalized
// forms plus 0.2 times the share of words they have in common.
func Similarity(a, b string, metric Metric) float64 {
	return similarity(prepare(a), prepare(b), metric)
}

func similarity(a, b doc, metric Metric) float64 {
	if a.norm == b.norm {
		return 1
	}

	var base float64
	switch metric {
	case Levenshtein:
		base = levenshtein.Similarity(a.norm, b.norm, nil)
	default:
		// autojunk off: frequent characters such as spaces must still match
		base = difflib.NewMatcherWithJunk(a.chars, b.chars, false, nil).Ratio()
	}

	bonus := 0.0
	if n := max(len(a.words), len(b.words)); n > 0 {
		shared := 0
		for w := range a.words {
			if _, ok := b.words[w]; ok {
				shared++
			}
		}
		bonus = float64(shared) / float64(n) * sharedWordWeight
	}
	return math.Min(1, base+bonus)
}
