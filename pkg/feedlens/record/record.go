// Package record defines the raw and enriched feedback shapes that flow
// through the pipeline.
package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/cognicore/feedlens/pkg/feedlens/internalerr"
)

// IdentityTitleLength is how much content stands in for a missing title when
// deriving a feedback id.
const IdentityTitleLength = 100

// RawRecord is a feedback item as supplied by a collector.
type RawRecord struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Source       string   `json:"source"`
	Author       string   `json:"author"`
	CreatedDate  string   `json:"created_date"`
	Scenario     string   `json:"scenario,omitempty"`
	Organization string   `json:"organization,omitempty"`
	URL          string   `json:"url,omitempty"`
	Area         string   `json:"area,omitempty"`
	Tag          string   `json:"tag,omitempty"`
	Labels       []string `json:"labels,omitempty"`
	SourceHint   string   `json:"source_hint,omitempty"`
}

// Validate reports ErrInvalidRecord when the record carries no text at all.
func (r RawRecord) Validate() error {
	if strings.TrimSpace(r.Title) == "" && strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("%w: title and content are both empty", internalerr.ErrInvalidRecord)
	}
	return nil
}

// IdentityTitle is the title used for id derivation: the title itself, or the
// first IdentityTitleLength runes of content when the title is blank.
func (r RawRecord) IdentityTitle() string {
	if strings.TrimSpace(r.Title) != "" {
		return r.Title
	}
	if c := []rune(r.Content); len(c) > IdentityTitleLength {
		return string(c[:IdentityTitleLength])
	}
	return r.Content
}

// Text is the title and content joined for classification.
func (r RawRecord) Text() string {
	switch {
	case r.Title == "":
		return r.Content
	case r.Content == "":
		return r.Title
	}
	return r.Title + " " + r.Content
}

// Sentiment is the scored polarity of a record.
type Sentiment struct {
	Label        string  `json:"label"`
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`
	Confidence   string  `json:"confidence"`
}

// Category is the hierarchical classification of a record.
type Category struct {
	Primary     string  `json:"primary"`
	Subcategory string  `json:"subcategory"`
	FeatureArea string  `json:"feature_area"`
	Priority    string  `json:"priority"`
	Confidence  float64 `json:"confidence"`
}

// Tag is a domain or workload label attached to a record.
type Tag struct {
	Key             string   `json:"key,omitempty"`
	Label           string   `json:"label"`
	Confidence      float64  `json:"confidence"`
	MatchedKeywords []string `json:"matched_keywords"`
	ForumBoosted    bool     `json:"forum_boosted,omitempty"`
}

// EnrichedRecord is a RawRecord plus everything derived from it.
type EnrichedRecord struct {
	RawRecord

	FeedbackID      string    `json:"feedback_id"`
	CleanContent    string    `json:"clean_content"`
	Gist            string    `json:"gist"`
	Intent          string    `json:"intent"`
	Sentiment       Sentiment `json:"sentiment"`
	Category        Category  `json:"category"`
	LegacyCategory  string    `json:"legacy_category"`
	Audience        string    `json:"audience"`
	ImpactType      string    `json:"impact_type"`
	Domains         []Tag     `json:"domains"`
	PrimaryDomain   string    `json:"primary_domain,omitempty"`
	Workloads       []Tag     `json:"workloads"`
	PrimaryWorkload string    `json:"primary_workload,omitempty"`
	MatchedKeywords []string  `json:"matched_keywords,omitempty"`

	State       State     `json:"state"`
	Notes       string    `json:"notes,omitempty"`
	UpdatedBy   string    `json:"updated_by,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// PrimaryLabel returns the label of the highest-confidence tag, or "" when
// tags is empty. Tags are expected to be sorted already.
func PrimaryLabel(tags []Tag) string {
	if len(tags) == 0 {
		return ""
	}
	return tags[0].Label
}

// createdLayouts are tried in order when parsing a supplied created date.
var createdLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// ParseCreated parses a created date in any of the formats collectors emit.
// Values without a zone are read as UTC.
func ParseCreated(created string) (time.Time, bool) {
	created = strings.TrimSpace(created)
	if created == "" {
		return time.Time{}, false
	}
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, created); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CreatedTime is ParseCreated applied to r.CreatedDate.
func (r RawRecord) CreatedTime() (time.Time, bool) {
	return ParseCreated(r.CreatedDate)
}
