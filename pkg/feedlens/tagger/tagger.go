// Package tagger attaches domain and workload labels to feedback by keyword
// coverage.
package tagger

import (
	"math"
	"sort"
	"strings"

	"github.com/cognicore/feedlens/pkg/feedlens/config"
	"github.com/cognicore/feedlens/pkg/feedlens/keywords"
	"github.com/cognicore/feedlens/pkg/feedlens/record"
)

const (
	// ForumBoost is added to a workload named by the record's forum.
	ForumBoost = 0.15
	// ForumMarker prefixes the synthetic keyword of a forum-boosted tag.
	ForumMarker = "forum:"
)

// Tagger scores text against a list of tag definitions. It is immutable and
// safe for concurrent use.
type Tagger struct {
	defs []config.TagDef
}

// New returns a Tagger over defs. Keywords are expected to be lowercase, as
// produced by config validation.
func New(defs []config.TagDef) *Tagger {
	return &Tagger{defs: defs}
}

// Tag returns every definition with at least one matched keyword, sorted by
// confidence descending. Equal confidences keep definition order.
// Confidence is the share of the definition's keywords found in text.
func (t *Tagger) Tag(text string) []record.Tag {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil
	}

	var tags []record.Tag
	for _, def := range t.defs {
		matched := keywords.Matched(lower, def.Keywords)
		if len(matched) == 0 {
			continue
		}
		tags = append(tags, record.Tag{
			Key:             def.Key,
			Label:           def.Name,
			Confidence:      coverage(len(matched), len(def.Keywords)),
			MatchedKeywords: matched,
		})
	}
	sortTags(tags)
	return tags
}

// WorkloadTagger is a Tagger that also honours the forum a record came from.
type WorkloadTagger struct {
	*Tagger
	forums map[string]string
}

// NewWorkload builds a WorkloadTagger from a validated taxonomy.
func NewWorkload(tax *config.Taxonomy) *WorkloadTagger {
	forums := make(map[string]string, len(tax.ForumWorkloads))
	for hint, key := range tax.ForumWorkloads {
		forums[normalizeHint(hint)] = key
	}
	return &WorkloadTagger{Tagger: New(tax.Workloads), forums: forums}
}

// NewDomain builds the domain Tagger from a validated taxonomy.
func NewDomain(tax *config.Taxonomy) *Tagger {
	return New(tax.Domains)
}

// TagWithHint tags text and, when sourceHint names a known forum, boosts that
// forum's workload by ForumBoost, adding it even without keyword matches.
func (w *WorkloadTagger) TagWithHint(text, sourceHint string) []record.Tag {
	tags := w.Tag(text)

	key, ok := w.forums[normalizeHint(sourceHint)]
	if !ok {
		return tags
	}
	marker := ForumMarker + strings.TrimSpace(sourceHint)

	found := false
	for i := range tags {
		if tags[i].Key == key {
			tags[i].Confidence = round(math.Min(1, tags[i].Confidence+ForumBoost))
			tags[i].MatchedKeywords = append(tags[i].MatchedKeywords, marker)
			tags[i].ForumBoosted = true
			found = true
		}
	}
	if !found {
		for _, def := range w.defs {
			if def.Key == key {
				tags = append(tags, record.Tag{
					Key:             def.Key,
					Label:           def.Name,
					Confidence:      ForumBoost,
					MatchedKeywords: []string{marker},
					ForumBoosted:    true,
				})
				break
			}
		}
	}
	sortTags(tags)
	return tags
}

// Primary returns the label of the first tag, or "".
func Primary(tags []record.Tag) string {
	return record.PrimaryLabel(tags)
}

func sortTags(tags []record.Tag) {
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Confidence > tags[j].Confidence
	})
}

func coverage(matched, total int) float64 {
	if total == 0 {
		return 0
	}
	return round(math.Min(1, float64(matched)/float64(total)))
}

func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// normalizeHint folds forum names like "Data Factory" and "data-factory".
func normalizeHint(hint string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(hint)
}
