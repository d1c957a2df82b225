// Package taxonomy assigns feedback to a category and subcategory of a
// configured taxonomy.
package taxonomy

import (
	"math"
	"strings"

	"github.com/cognicore/feedlens/pkg/feedlens/audience"
	"github.com/cognicore/feedlens/pkg/feedlens/config"
	"github.com/cognicore/feedlens/pkg/feedlens/keywords"
)

// Defaults reported when no subcategory scores above zero.
const (
	OtherCategory    = "Other"
	OtherSubcategory = "Uncategorized"
	DefaultPriority  = "medium"
	// OtherLegacy is the flat category for text no legacy keyword matches.
	OtherLegacy = "Other / Uncategorized"

	// UnknownAudience lowers confidence when detection could not decide.
	UnknownAudience = "Unknown"
	allAudiences    = "All"
)

// Result is the outcome of Classify.
type Result struct {
	Primary         string
	Subcategory     string
	FeatureArea     string
	Priority        string
	Confidence      float64
	Audience        string
	MatchedKeywords []string
}

// Classifier scores every (category, subcategory) pair against a record.
// It is immutable and safe for concurrent use.
type Classifier struct {
	categories []config.Category
	legacy     []config.LegacyCategory
	priorities map[string]config.Priority
	audience   *audience.Detector
}

// New builds a Classifier over a validated taxonomy.
func New(tax *config.Taxonomy) *Classifier {
	return &Classifier{
		categories: tax.Categories,
		legacy:     tax.LegacyCategories,
		priorities: tax.Priorities,
		audience:   audience.New(tax.Audience),
	}
}

// Audience returns the detector the classifier uses.
func (c *Classifier) Audience() *audience.Detector {
	return c.audience
}

// Classify picks the best scoring subcategory. Score is the number of
// matched subcategory keywords, plus 2 when the category targets the detected
// audience (or "All"), plus 1 when the category audience fits the source.
// Ties keep the pair that comes first in the taxonomy.
func (c *Classifier) Classify(text, source, scenario, organization string) Result {
	aud := c.audience.Detect(text, source, scenario, organization)
	lower := strings.ToLower(text)
	src := strings.ToLower(source)

	res := Result{
		Primary:     OtherCategory,
		Subcategory: OtherSubcategory,
		Priority:    DefaultPriority,
		Audience:    aud,
	}
	if strings.TrimSpace(lower) == "" {
		return res
	}

	bestScore, bestHits := 0, 0
	var best *config.Subcategory
	var bestCat *config.Category
	for ci := range c.categories {
		cat := &c.categories[ci]
		bonus := 0
		if cat.Audience == aud || cat.Audience == allAudiences {
			bonus += 2
		}
		if sourceAligned(cat.Audience, src) {
			bonus++
		}
		for si := range cat.Subcategories {
			sub := &cat.Subcategories[si]
			hits := keywords.CountMatches(lower, sub.Keywords)
			if hits == 0 {
				continue
			}
			if score := hits + bonus; score > bestScore {
				bestScore, bestHits, best, bestCat = score, hits, sub, cat
			}
		}
	}
	if best == nil {
		return res
	}

	res.Primary = bestCat.Name
	res.Subcategory = best.Name
	res.FeatureArea = best.FeatureArea
	res.Priority = best.Priority
	res.Confidence = confidence(bestHits, len(best.Keywords), aud)
	res.MatchedKeywords = keywords.Matched(lower, best.Keywords)
	return res
}

func sourceAligned(categoryAudience, source string) bool {
	switch categoryAudience {
	case audience.Developer:
		return strings.Contains(source, "github")
	case audience.Customer:
		return strings.Contains(source, "community") || strings.Contains(source, "reddit") || strings.Contains(source, "forum")
	}
	return false
}

// confidence averages keyword coverage (saturating at 20% of the list) with
// an audience certainty term, rounded to two decimals.
func confidence(hits, total int, aud string) float64 {
	coverage := 0.0
	if total > 0 {
		coverage = math.Min(1, float64(hits)/(float64(total)*0.2))
	}
	audienceTerm := 0.5
	if aud == UnknownAudience {
		audienceTerm = 0.2
	}
	return math.Round((coverage+audienceTerm)/2*100) / 100
}

// Legacy returns the name of the first flat category with a matching keyword.
func (c *Classifier) Legacy(text string) string {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return OtherLegacy
	}
	for _, lc := range c.legacy {
		if keywords.ContainsAny(lower, lc.Keywords...) {
			return lc.Name
		}
	}
	return OtherLegacy
}

// PriorityWeight returns the configured weight of priority, or 0.
func (c *Classifier) PriorityWeight(priority string) int {
	return c.priorities[strings.ToLower(priority)].Weight
}

// SLADays returns the configured SLA in days of priority, or 0.
func (c *Classifier) SLADays(priority string) int {
	return c.priorities[strings.ToLower(priority)].SLADays
}
