// Package intent labels the rhetorical type of a feedback item.
package intent

import (
	"regexp"
	"strings"
)

// Label is the detected intent of a feedback item.
type Label string

const (
	Bug            Label = "Bug"
	FeatureRequest Label = "Feature Request"
	Performance    Label = "Performance"
	Question       Label = "Question"
	Discussion     Label = "Discussion"
	Feedback       Label = "Feedback"
)

type family struct {
	label    Label
	patterns []*regexp.Regexp
}

// families are checked in order and the first match wins. Bug comes first
// because bug language often rides along with a request ("this breaks,
// please fix") and should dominate.
var families = []family{
	{Bug, compile(
		`\b(bugs?|crash(es|ed|ing)?|errors?|exceptions?|broken|breaks|breaking|defects?|glitch(es)?|regressions?)\b`,
		`\b(fails?|failed|failing|failures?)\b`,
		`\b(not working|doesn'?t work|does not work|isn'?t working|stopped working|no longer works?|won'?t (load|open|start|save))\b`,
		`\b(stack ?trace|wrong results?|incorrect (results?|behaviou?r|data)|unexpected (behaviou?r|results?|error))\b`,
	)},
	{FeatureRequest, compile(
		`\b(feature requests?|enhancements?|suggestions?|suggest(ing)?|wish(list)?)\b`,
		`\b(please (add|support|allow|provide|consider)|add support|support for|could you (add|support)|would (be|love) (great|nice|helpful|useful|to see)|would love)\b`,
		`\b(need(s|ed)? (a|an|the)? ?(way|option|ability|feature|setting)|ability to|allow (us|me|users|admins) to|should (be able|support|have|allow))\b`,
		`\b(improve(ment|ments)?|it would be|want(ed)? to be able)\b`,
	)},
	{Performance, compile(
		`\b(slow(ly|ness|er)?|performance|latency|laggy|lagging|lags?|throughput|bottlenecks?)\b`,
		`\b(time ?outs?|timed out|takes (forever|too long|ages|hours|minutes)|hang(s|ing)?|freez(e|es|ing)|froze)\b`,
		`\b(high (cpu|memory)|memory (leak|usage|pressure)|out of memory|speed up)\b`,
	)},
	{Question, compile(
		`\?`,
		`\b(how (do|can|to|does|should|would)|what (is|are|does|do)|why (is|does|do|are)|where (is|are|do|can)|is (it|there) (possible|a way)|can (i|we|you|someone))\b`,
		`\b(does anyone|any (idea|ideas|way|guidance|advice)|questions?|help me|wondering|clarif(y|ication))\b`,
	)},
	{Discussion, compile(
		`\b(discussions?|thoughts|opinions?|what do you think|anyone else|experiences? with)\b`,
		`\b(compare|comparison|versus|vs\.?|best practices?|recommend(ation|ations|ed)?|pros and cons|share)\b`,
	)},
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// Classify returns the first intent family matching text. Text is expected
// to be normalized; it is lowercased again so callers can pass raw text.
// No match yields Feedback.
func Classify(text string) Label {
	text = strings.ToLower(text)
	if strings.TrimSpace(text) == "" {
		return Feedback
	}
	for _, f := range families {
		for _, p := range f.patterns {
			if p.MatchString(text) {
				return f.label
			}
		}
	}
	return Feedback
}

// Prefix renders the label as a gist prefix such as "[Bug] ".
func (l Label) Prefix() string {
	return "[" + string(l) + "] "
}

var explicitTag = []*regexp.Regexp{
	regexp.MustCompile(`^\s*\[[^\]]+\]`),
	regexp.MustCompile(`^\s*(bug|feature( request)?|request|question|idea|suggestion|issue|fr|q)\s*[:\-]`),
}

var impliedIntent = []*regexp.Regexp{
	regexp.MustCompile(`\?\s*$`),
	regexp.MustCompile(`^\s*(how|what|why|where|when|can|could|is|are|does|do|should|would)\b`),
	regexp.MustCompile(`\b(please add|add support|support for|not working|doesn'?t work|fails?|failed|failing|errors?|crash(es|ed)?|broken|bugs?|feature request|request for)\b`),
}

// Tagged reports whether text opens with an explicit intent marker such as
// "[Bug]" or "Feature request:".
func Tagged(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range explicitTag {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

// Implied reports whether a title already states its own intent, either with
// an explicit marker or through question or request phrasing.
func Implied(title string) bool {
	if Tagged(title) {
		return true
	}
	lower := strings.ToLower(title)
	for _, p := range impliedIntent {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

var (
	bugLabels      = []string{"bug", "defect", "error"}
	featureLabels  = []string{"enhancement", "feature", "feature request"}
	questionLabels = []string{"question", "help wanted", "support"}

	bugWords      = []string{"error", "bug", "issue", "problem", "broken", "crash"}
	featureWords  = []string{"suggest", "feature", "improve", "enhancement", "add"}
	questionWords = []string{"help", "how to", "question", "how do i"}
)

// ImpactType classifies a record's impact from its tracker labels first and
// its content second. The result is one of Bug, Feature Request, Question or
// Feedback.
func ImpactType(content string, labels []string) string {
	names := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		names[strings.ToLower(strings.TrimSpace(l))] = struct{}{}
	}
	hasLabel := func(candidates []string) bool {
		for _, c := range candidates {
			if _, ok := names[c]; ok {
				return true
			}
		}
		return false
	}
	switch {
	case hasLabel(bugLabels):
		return string(Bug)
	case hasLabel(featureLabels):
		return string(FeatureRequest)
	case hasLabel(questionLabels):
		return string(Question)
	}

	lower := strings.ToLower(content)
	switch {
	case containsAny(lower, bugWords):
		return string(Bug)
	case containsAny(lower, featureWords):
		return string(FeatureRequest)
	case containsAny(lower, questionWords):
		return string(Question)
	}
	return string(Feedback)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
