// Package drift compares a taxonomy against the feedback it classified and
// suggests keyword maintenance: subcategory keywords that the records filed
// under them rarely use, and frequent words no table covers.
package drift

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/cognicore/feedlens/pkg/feedlens/config"
	"github.com/cognicore/feedlens/pkg/feedlens/keywords"
	"github.com/cognicore/feedlens/pkg/feedlens/record"
	"github.com/cognicore/feedlens/pkg/feedlens/taxonomy"
)

// Drift type constants.
const (
	LowCoverage = "low_coverage" // keyword rarely present in its subcategory's records
	Orphan      = "orphan"       // frequent word outside every keyword table
)

// Stats captures keyword coverage over a batch of records.
type Stats struct {
	Type string
	// Category is "Primary / Subcategory" for low coverage and the most
	// common primary category of the carrying records for orphans.
	Category    string
	Keyword     string
	SupportDocs int64   // records containing the keyword anywhere
	MissedDocs  int64   // subcategory records lacking the keyword
	Coverage    float64 // share of subcategory records with the keyword; document frequency for orphans
}

// Suggestion is a proposed taxonomy edit.
type Suggestion struct {
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Keyword     string  `json:"keyword"`
	Confidence  float64 `json:"confidence"`
	SupportDocs int64   `json:"support_docs"`
	MissedDocs  int64   `json:"missed_docs"`
}

// Reviewer optionally approves suggestions.
type Reviewer interface {
	Approve(ctx context.Context, sugg Suggestion) (bool, error)
}

// Thresholds control sensitivity.
type Thresholds struct {
	MinCoverage    float64 // e.g. 0.4 (40% coverage)
	MinMissedDocs  int64   // e.g. 10 records lacking the keyword
	MinOrphanDF    float64 // minimum document frequency for orphan words (e.g. 0.05 = 5%)
	MinOrphanDocs  int64   // absolute floor for orphan support
	ConfidenceBias float64 // default boost for confidence
}

// Detector generates taxonomy keyword suggestions.
type Detector struct {
	Taxonomy   *config.Taxonomy
	Tokenizer  *keywords.Tokenizer
	Thresholds Thresholds
	Reviewer   Reviewer // optional
}

// Run collects drift statistics over recs and returns the approved
// suggestions, low coverage first in taxonomy order, then orphans by support.
func (d *Detector) Run(ctx context.Context, recs []record.EnrichedRecord) ([]Suggestion, error) {
	th := d.thresholdsOrDefault()
	var suggestions []Suggestion
	for _, stat := range d.Collect(recs) {
		switch stat.Type {
		case Orphan:
			if stat.SupportDocs < th.MinOrphanDocs || stat.Coverage < th.MinOrphanDF {
				continue
			}
			suggestions = append(suggestions, Suggestion{
				Type:        Orphan,
				Category:    stat.Category,
				Keyword:     stat.Keyword,
				Confidence:  orphanConfidence(stat, th),
				SupportDocs: stat.SupportDocs,
			})
		default:
			if stat.Coverage >= th.MinCoverage || stat.MissedDocs < th.MinMissedDocs {
				continue
			}
			suggestions = append(suggestions, Suggestion{
				Type:        LowCoverage,
				Category:    stat.Category,
				Keyword:     stat.Keyword,
				Confidence:  coverageConfidence(stat, th),
				SupportDocs: stat.SupportDocs,
				MissedDocs:  stat.MissedDocs,
			})
		}
	}

	if d.Reviewer == nil {
		return suggestions, nil
	}

	var approved []Suggestion
	for _, sugg := range suggestions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := d.Reviewer.Approve(ctx, sugg)
		if err != nil {
			return nil, err
		}
		if ok {
			approved = append(approved, sugg)
		}
	}
	return approved, nil
}

// Collect computes raw statistics without applying thresholds.
func (d *Detector) Collect(recs []record.EnrichedRecord) []Stats {
	tax := d.Taxonomy
	if tax == nil {
		tax = config.Default()
	}
	tok := d.Tokenizer
	if tok == nil {
		tok = keywords.Default()
	}

	texts := make([]string, len(recs))
	for i, r := range recs {
		body := r.CleanContent
		if body == "" {
			body = r.Content
		}
		texts[i] = strings.ToLower(r.Title + " " + body)
	}

	var out []Stats
	for _, cat := range tax.Categories {
		for _, sub := range cat.Subcategories {
			var group []int
			for i, r := range recs {
				if r.Category.Primary == cat.Name && r.Category.Subcategory == sub.Name {
					group = append(group, i)
				}
			}
			if len(group) == 0 {
				continue
			}
			for _, kw := range sub.Keywords {
				kw = strings.ToLower(kw)
				var support, inGroup int64
				for _, text := range texts {
					if keywords.Contains(text, kw) {
						support++
					}
				}
				for _, i := range group {
					if keywords.Contains(texts[i], kw) {
						inGroup++
					}
				}
				out = append(out, Stats{
					Type:        LowCoverage,
					Category:    cat.Name + " / " + sub.Name,
					Keyword:     kw,
					SupportDocs: support,
					MissedDocs:  int64(len(group)) - inGroup,
					Coverage:    float64(inGroup) / float64(len(group)),
				})
			}
		}
	}

	return append(out, orphans(recs, texts, tax, tok)...)
}

func orphans(recs []record.EnrichedRecord, texts []string, tax *config.Taxonomy, tok *keywords.Tokenizer) []Stats {
	if len(recs) == 0 {
		return nil
	}
	covered := coveredWords(tax, tok)

	df := make(map[string]int64)
	cats := make(map[string]map[string]int)
	for i, text := range texts {
		for _, w := range tok.Words(text) {
			df[w]++
			if cats[w] == nil {
				cats[w] = make(map[string]int)
			}
			cats[w][recs[i].Category.Primary]++
		}
	}

	var out []Stats
	for w, n := range df {
		if isCovered(w, covered) {
			continue
		}
		out = append(out, Stats{
			Type:        Orphan,
			Category:    dominant(cats[w]),
			Keyword:     w,
			SupportDocs: n,
			Coverage:    float64(n) / float64(len(recs)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SupportDocs != out[j].SupportDocs {
			return out[i].SupportDocs > out[j].SupportDocs
		}
		return out[i].Keyword < out[j].Keyword
	})
	return out
}

// coveredWords is every word of every keyword table in tax.
func coveredWords(tax *config.Taxonomy, tok *keywords.Tokenizer) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(kws []string) {
		for _, kw := range kws {
			for _, w := range tok.Words(kw) {
				if _, ok := seen[w]; !ok {
					seen[w] = struct{}{}
					out = append(out, w)
				}
			}
		}
	}
	for _, cat := range tax.Categories {
		for _, sub := range cat.Subcategories {
			add(sub.Keywords)
		}
	}
	for _, lc := range tax.LegacyCategories {
		add(lc.Keywords)
	}
	for _, defs := range [][]config.TagDef{tax.Domains, tax.Workloads} {
		for _, d := range defs {
			add(d.Keywords)
		}
	}
	for _, kws := range tax.Audience.Keywords {
		add(kws)
	}
	add(tax.SearchKeywords)
	return out
}

// isCovered allows inflected forms, so "crashes" is covered by "crash".
func isCovered(word string, covered []string) bool {
	for _, c := range covered {
		if word == c || keywords.Contains(word, c) {
			return true
		}
	}
	return false
}

// dominant returns the most frequent real category, ties by name.
func dominant(counts map[string]int) string {
	best, bestN := "", 0
	for name, n := range counts {
		if name == "" || name == taxonomy.OtherCategory {
			continue
		}
		if n > bestN || (n == bestN && name < best) {
			best, bestN = name, n
		}
	}
	return best
}

func (d *Detector) thresholdsOrDefault() Thresholds {
	th := d.Thresholds
	if th.MinCoverage == 0 {
		th.MinCoverage = 0.4
	}
	if th.MinMissedDocs == 0 {
		th.MinMissedDocs = 10
	}
	if th.MinOrphanDF == 0 {
		th.MinOrphanDF = 0.05
	}
	if th.MinOrphanDocs == 0 {
		th.MinOrphanDocs = 2
	}
	if th.ConfidenceBias == 0 {
		th.ConfidenceBias = 0.2
	}
	return th
}

func coverageConfidence(stat Stats, th Thresholds) float64 {
	missedComponent := 1 - math.Exp(-float64(stat.MissedDocs)/float64(th.MinMissedDocs))
	coverageComponent := 1 - stat.Coverage
	return clamp(th.ConfidenceBias + 0.5*missedComponent + 0.5*coverageComponent)
}

func orphanConfidence(stat Stats, th Thresholds) float64 {
	// higher document frequency means a more established topic
	dfComponent := 1 - math.Exp(-stat.Coverage/th.MinOrphanDF)
	confidence := th.ConfidenceBias + 0.8*dfComponent
	if stat.Category != "" {
		confidence += 0.1
	}
	return clamp(confidence)
}

func clamp(v float64) float64 {
	return math.Round(math.Max(0, math.Min(1, v))*1000) / 1000
}
