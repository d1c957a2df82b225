// Package audience decides which user segment a feedback item speaks for.
package audience

import (
	"strings"

	"github.com/cognicore/feedlens/pkg/feedlens/config"
	"github.com/cognicore/feedlens/pkg/feedlens/keywords"
)

// Labels used by the built-in source and scenario bias.
const (
	Developer = "Developer"
	Customer  = "Customer"
	ISV       = "ISV"
)

var (
	portalTerms = []string{"developer portal", "dev portal", "workload development", "wdk", "workload development kit", "extensibility toolkit"}
	isvTerms    = []string{"isv", "partner", "vendor", "publish", "publishing", "marketplace", "monetize", "certification", "listing"}
	saasTerms   = []string{"multi-tenant", "multitenant", "multi tenant", "saas", "tenant isolation", "our customers", "per-tenant"}
)

// Detector scores text against per-audience keyword lists. It is immutable
// and safe for concurrent use.
type Detector struct {
	labels   []string
	fallback string
	keywords map[string][]string
	bias     []sourceBias
}

type sourceBias struct {
	source   string
	audience string
	weight   float64
}

// Score is one audience's total for a record.
type Score struct {
	Audience string
	Score    float64
}

// New builds a Detector from a validated audience configuration.
func New(cfg config.AudienceConfig) *Detector {
	d := &Detector{
		labels:   append([]string(nil), cfg.Labels...),
		fallback: cfg.Default,
		keywords: make(map[string][]string, len(cfg.Keywords)),
	}
	if len(d.labels) == 0 {
		d.labels = append([]string(nil), config.DefaultAudienceLabels...)
	}
	if d.fallback == "" {
		d.fallback = d.labels[0]
		for _, l := range d.labels {
			if l == config.DefaultAudience {
				d.fallback = l
			}
		}
	}
	for label, kws := range cfg.Keywords {
		lower := make([]string, 0, len(kws))
		for _, kw := range kws {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				lower = append(lower, kw)
			}
		}
		d.keywords[label] = lower
	}
	for source, b := range cfg.SourceBias {
		d.bias = append(d.bias, sourceBias{source: strings.ToLower(source), audience: b.Audience, weight: b.Weight})
	}
	return d
}

// Labels returns the configured audience labels in tie-break order.
func (d *Detector) Labels() []string {
	return append([]string(nil), d.labels...)
}

// Default returns the label used when no signal fires.
func (d *Detector) Default() string {
	return d.fallback
}

// Detect returns the highest scoring audience. Ties go to the label listed
// first; when every score is zero the configured default is returned.
func (d *Detector) Detect(text, source, scenario, organization string) string {
	best, bestScore := "", 0.0
	for _, s := range d.Scores(text, source, scenario, organization) {
		if s.Score > bestScore {
			best, bestScore = s.Audience, s.Score
		}
	}
	if best == "" {
		return d.fallback
	}
	return best
}

// Scores returns every label's total in label order.
func (d *Detector) Scores(text, source, scenario, organization string) []Score {
	lower := strings.ToLower(text)
	if organization != "" {
		lower += "\n" + strings.ToLower(organization)
	}

	totals := make(map[string]float64, len(d.labels))
	for _, label := range d.labels {
		totals[label] += float64(keywords.CountMatches(lower, d.keywords[label]))
	}

	src := strings.ToLower(strings.TrimSpace(source))
	if len(d.bias) > 0 {
		for _, b := range d.bias {
			if src != "" && strings.Contains(src, b.source) {
				totals[b.audience] += b.weight
			}
		}
	} else {
		d.legacyBias(totals, lower, src, strings.ToLower(strings.TrimSpace(scenario)))
	}

	out := make([]Score, len(d.labels))
	for i, label := range d.labels {
		out[i] = Score{Audience: label, Score: totals[label]}
	}
	return out
}

// legacyBias applies the built-in source and scenario heuristics. Labels that
// are not configured are skipped.
func (d *Detector) legacyBias(totals map[string]float64, text, source, scenario string) {
	add := func(label string, w float64) {
		if _, ok := totals[label]; ok {
			totals[label] += w
		}
	}

	switch {
	case strings.Contains(source, "github"), source == "ado", strings.Contains(source, "azure devops"):
		add(Developer, 3)
	case strings.Contains(source, "reddit"):
		add(Customer, 1)
	case strings.Contains(source, "forum"), strings.Contains(source, "community"):
		add(Customer, 0.5)
	}

	if keywords.ContainsAny(text, portalTerms...) {
		add(Developer, 5)
	}

	switch scenario {
	case "partner":
		if keywords.ContainsAny(text, isvTerms...) {
			add(ISV, 3)
		} else {
			add(Developer, 2)
		}
	case "customer":
		add(Customer, 2)
	case "internal":
		add(Developer, 2)
	}

	if keywords.ContainsAny(text, saasTerms...) {
		add(ISV, 3)
	}
}
