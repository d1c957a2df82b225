package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/feedlens/pkg/feedlens/internalerr"
)

// Taxonomy holds every table the enrichment pipeline reads. Slices keep the
// order of the source file, which is also the tie-break order for scoring.
type Taxonomy struct {
	Categories       []Category
	LegacyCategories []LegacyCategory
	Domains          []TagDef
	Workloads        []TagDef
	Audience         AudienceConfig
	ForumWorkloads   map[string]string
	Priorities       map[string]Priority
	SearchKeywords   []string
}

// Category is a top-level taxonomy node with ordered subcategories.
type Category struct {
	Key           string
	Name          string
	Audience      string
	Description   string
	Subcategories []Subcategory
}

// Subcategory carries the keywords scored by the taxonomy classifier.
type Subcategory struct {
	Key         string   `yaml:"-"`
	Name        string   `yaml:"name"`
	Keywords    []string `yaml:"keywords"`
	Priority    string   `yaml:"priority"`
	FeatureArea string   `yaml:"feature_area"`
}

// LegacyCategory is an entry of the flat first-match categorizer.
type LegacyCategory struct {
	Key      string   `yaml:"-"`
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// TagDef describes a domain or workload label.
type TagDef struct {
	Key         string   `yaml:"-"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	Color       string   `yaml:"color"`
}

// AudienceConfig configures audience detection.
type AudienceConfig struct {
	Labels     []string
	Default    string
	Keywords   map[string][]string
	SourceBias map[string]SourceBias
}

// SourceBias adds Weight to Audience when a record's source matches.
type SourceBias struct {
	Audience string  `yaml:"audience"`
	Weight   float64 `yaml:"weight"`
}

// Priority describes the weight and SLA of a priority level.
type Priority struct {
	Weight  int `yaml:"weight"`
	SLADays int `yaml:"sla_days"`
}

// Default audience labels used when a taxonomy does not declare its own.
var DefaultAudienceLabels = []string{"Developer", "Customer", "ISV"}

// DefaultAudience is the fallback label when no audience signal fires.
const DefaultAudience = "Customer"

type rawTaxonomy struct {
	Categories       yaml.Node           `yaml:"categories"`
	LegacyCategories yaml.Node           `yaml:"legacy_categories"`
	Domains          yaml.Node           `yaml:"domains"`
	Workloads        yaml.Node           `yaml:"workloads"`
	Audience         rawAudience         `yaml:"audience"`
	ForumWorkloads   map[string]string   `yaml:"forum_workloads"`
	Priorities       map[string]Priority `yaml:"priorities"`
	SearchKeywords   []string            `yaml:"search_keywords"`
}

type rawCategory struct {
	Name          string    `yaml:"name"`
	Audience      string    `yaml:"audience"`
	Description   string    `yaml:"description"`
	Subcategories yaml.Node `yaml:"subcategories"`
}

type rawAudience struct {
	Labels     []string              `yaml:"labels"`
	Default    string                `yaml:"default"`
	Keywords   yaml.Node             `yaml:"keywords"`
	SourceBias map[string]SourceBias `yaml:"source_bias"`
}

// UnmarshalYAML decodes a taxonomy while preserving mapping order.
func (t *Taxonomy) UnmarshalYAML(node *yaml.Node) error {
	var raw rawTaxonomy
	if err := node.Decode(&raw); err != nil {
		return err
	}

	out := Taxonomy{
		ForumWorkloads: raw.ForumWorkloads,
		Priorities:     raw.Priorities,
		SearchKeywords: raw.SearchKeywords,
	}

	err := eachEntry(&raw.Categories, func(key string, v *yaml.Node) error {
		var rc rawCategory
		if err := v.Decode(&rc); err != nil {
			return err
		}
		cat := Category{Key: key, Name: rc.Name, Audience: rc.Audience, Description: rc.Description}
		err := eachEntry(&rc.Subcategories, func(subKey string, sv *yaml.Node) error {
			var sub Subcategory
			if err := sv.Decode(&sub); err != nil {
				return err
			}
			sub.Key = subKey
			cat.Subcategories = append(cat.Subcategories, sub)
			return nil
		})
		if err != nil {
			return fmt.Errorf("category %s: %w", key, err)
		}
		out.Categories = append(out.Categories, cat)
		return nil
	})
	if err != nil {
		return err
	}

	if err := eachEntry(&raw.LegacyCategories, func(key string, v *yaml.Node) error {
		var lc LegacyCategory
		if err := v.Decode(&lc); err != nil {
			return err
		}
		lc.Key = key
		out.LegacyCategories = append(out.LegacyCategories, lc)
		return nil
	}); err != nil {
		return err
	}

	if out.Domains, err = decodeTagDefs(&raw.Domains); err != nil {
		return fmt.Errorf("domains: %w", err)
	}
	if out.Workloads, err = decodeTagDefs(&raw.Workloads); err != nil {
		return fmt.Errorf("workloads: %w", err)
	}

	out.Audience = AudienceConfig{
		Labels:     raw.Audience.Labels,
		Default:    raw.Audience.Default,
		SourceBias: raw.Audience.SourceBias,
		Keywords:   make(map[string][]string),
	}
	var keywordOrder []string
	if err := eachEntry(&raw.Audience.Keywords, func(key string, v *yaml.Node) error {
		var kws []string
		if err := v.Decode(&kws); err != nil {
			return err
		}
		out.Audience.Keywords[key] = kws
		keywordOrder = append(keywordOrder, key)
		return nil
	}); err != nil {
		return fmt.Errorf("audience keywords: %w", err)
	}
	if len(out.Audience.Labels) == 0 {
		out.Audience.Labels = keywordOrder
	}

	*t = out
	return nil
}

func decodeTagDefs(node *yaml.Node) ([]TagDef, error) {
	var defs []TagDef
	err := eachEntry(node, func(key string, v *yaml.Node) error {
		var d TagDef
		if err := v.Decode(&d); err != nil {
			return err
		}
		d.Key = key
		defs = append(defs, d)
		return nil
	})
	return defs, err
}

// eachEntry walks a mapping node in document order. A zero node (absent
// key) or explicit null is treated as empty.
func eachEntry(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if node == nil || node.Kind == 0 {
		return nil
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: expected a mapping", internalerr.ErrInvalidConfig, node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// ParseTaxonomy decodes and validates a YAML or JSON taxonomy document.
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var tax Taxonomy
	if err := yaml.Unmarshal(data, &tax); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	if err := tax.Validate(); err != nil {
		return nil, err
	}
	return &tax, nil
}

// LoadTaxonomy loads a taxonomy from a YAML or JSON file
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tax, err := ParseTaxonomy(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tax, nil
}

// Validate checks table integrity and fills in defaults. Errors wrap
// internalerr.ErrInvalidConfig.
func (t *Taxonomy) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", internalerr.ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	for ci := range t.Categories {
		cat := &t.Categories[ci]
		if cat.Name == "" {
			cat.Name = cat.Key
		}
		if cat.Audience == "" {
			cat.Audience = "All"
		}
		if len(cat.Subcategories) == 0 {
			return invalid("category %s has no subcategories", cat.Key)
		}
		for si := range cat.Subcategories {
			sub := &cat.Subcategories[si]
			if len(nonBlank(sub.Keywords)) == 0 {
				return invalid("subcategory %s/%s has no keywords", cat.Key, sub.Key)
			}
			sub.Keywords = lowerAll(nonBlank(sub.Keywords))
			if sub.Name == "" {
				sub.Name = sub.Key
			}
			if sub.Priority == "" {
				sub.Priority = "medium"
			}
			sub.Priority = strings.ToLower(sub.Priority)
		}
	}

	for i := range t.LegacyCategories {
		lc := &t.LegacyCategories[i]
		if lc.Name == "" {
			lc.Name = lc.Key
		}
		lc.Keywords = lowerAll(nonBlank(lc.Keywords))
	}

	for _, defs := range [][]TagDef{t.Domains, t.Workloads} {
		for i := range defs {
			d := &defs[i]
			if len(nonBlank(d.Keywords)) == 0 {
				return invalid("tag %s has no keywords", d.Key)
			}
			d.Keywords = lowerAll(nonBlank(d.Keywords))
			if d.Name == "" {
				d.Name = d.Key
			}
		}
	}

	for hint, key := range t.ForumWorkloads {
		if !t.hasWorkload(key) {
			return invalid("forum %s maps to unknown workload %s", hint, key)
		}
	}

	aud := &t.Audience
	if len(aud.Labels) == 0 {
		aud.Labels = append([]string(nil), DefaultAudienceLabels...)
	}
	if aud.Default == "" {
		aud.Default = DefaultAudience
		if !contains(aud.Labels, aud.Default) {
			aud.Default = aud.Labels[0]
		}
	}
	if !contains(aud.Labels, aud.Default) {
		return invalid("default audience %s is not a configured label", aud.Default)
	}
	for label := range aud.Keywords {
		if !contains(aud.Labels, label) {
			return invalid("audience keywords for unknown label %s", label)
		}
	}
	for source, bias := range aud.SourceBias {
		if !contains(aud.Labels, bias.Audience) {
			return invalid("source bias %s targets unknown audience %s", source, bias.Audience)
		}
	}

	if t.Priorities == nil {
		t.Priorities = DefaultPriorities()
	}
	return nil
}

func (t *Taxonomy) hasWorkload(key string) bool {
	for _, w := range t.Workloads {
		if w.Key == key {
			return true
		}
	}
	return false
}

// DefaultPriorities returns the built-in priority table.
func DefaultPriorities() map[string]Priority {
	return map[string]Priority{
		"critical": {Weight: 4, SLADays: 1},
		"high":     {Weight: 3, SLADays: 7},
		"medium":   {Weight: 2, SLADays: 14},
		"low":      {Weight: 1, SLADays: 30},
	}
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
