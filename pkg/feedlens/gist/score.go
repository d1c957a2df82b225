package gist

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

type weighted struct {
	weight   int
	patterns []*regexp.Regexp
}

// askFamilies score a sentence once per family that matches.
var askFamilies = []weighted{
	{5, compile(
		`\b(need(s|ed)?|want(s|ed)? to|would like|wish|looking for (a way|an option|the ability))\b`,
		`\b(please (add|provide|support|allow|make|fix|consider|enable)|request(ing)?|ability to|allow (us|me|users|admins) to|should (be able|support|allow|have))\b`,
	)},
	{4, compile(
		`\b(can'?t|cannot|unable to|not able to|fails?|failed|failing|errors?|broken|doesn'?t|does not|won'?t|not working|problems?|issues?)\b`,
	)},
	{3, compile(
		`\b(would (help|save|make|allow|enable|improve)|so that|in order to|because|benefit|easier|faster|simpler|more efficient)\b`,
	)},
	{2, compile(
		`\b(how (do|can|to|should)|is (it|there) (possible|a way)|what is the|why (does|is))\b`,
		`\?$`,
	)},
}

var techTerms = regexp.MustCompile(`\b(api|sdk|wdk|lakehouse|warehouse|notebook|pipeline|dataflow|semantic model|dataset|workspace|capacity|connector|gateway|spark|sql|kql|power bi|git|deployment|permission|refresh|schema|endpoint|eventstream|onelake|shortcut|data agent|copilot)s?\b`)

var (
	greeting     = regexp.MustCompile(`^(hi|hello|hey|dear|greetings|good (morning|afternoon|evening)|thanks|thank you|cheers)\b`)
	genericTitle = regexp.MustCompile(`^\W*(feedback|question|questions|issue|bug|help|request|suggestion|idea|problem|test|update|hi|hello|untitled|no title)\W*$`)
	editMarker   = regexp.MustCompile(`^\W*(edit(ed)?|update[d]?|eta|tl;?dr|ps)\b\s*[:\-]?`)
)

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

func isGreeting(s string) bool {
	return greeting.MatchString(strings.ToLower(strings.TrimSpace(s)))
}

// askScore rates how well a sentence states what the author wants.
func askScore(sentence string) int {
	lower := strings.ToLower(sentence)
	score := 0
	for _, fam := range askFamilies {
		for _, p := range fam.patterns {
			if p.MatchString(lower) {
				score += fam.weight
				break
			}
		}
	}

	terms := len(techTerms.FindAllString(lower, -1))
	if terms > 2 {
		terms = 2
	}
	score += terms

	if isGreeting(lower) {
		score -= 3
	}
	switch n := utf8.RuneCountInString(sentence); {
	case n < 20:
		score -= 2
	case n > 200:
		score -= 2
	}
	return score
}

// coreAsk returns the best scoring sentence when it scores at least 2. Ties
// keep the earlier sentence.
func coreAsk(sentences []string) (string, bool) {
	best, bestScore := "", 0
	for _, s := range sentences {
		if sc := askScore(s); sc > bestScore {
			best, bestScore = s, sc
		}
	}
	if bestScore < 2 {
		return "", false
	}
	return best, true
}

var (
	componentTerms = regexp.MustCompile(`\b(lakehouse|warehouse|notebook|pipeline|dataflow|semantic model|dataset|report|dashboard|workspace|capacity|eventstream|eventhouse|kql database|spark job|connector|gateway|api|sdk|data agent|copilot|onelake|shortcut|git integration|deployment pipeline|workload hub|marketplace)s?\b`)
	actionTerms    = regexp.MustCompile(`\b(refresh|export|import|load|query|deploy|deployment|schedule|share|sharing|publish|connect|sync|copy|migrat(e|ion)|authenticat(e|ion)|monitor(ing)?|debug(ging)?|filter(ing)?|search(ing)?|install(ation)?|backup|restore)\b`)
	archTerms      = regexp.MustCompile(`\b(scalability|multi-tenant|real-time|streaming|partitioning|caching|latency|throughput|security|governance|lineage|permissions)\b`)
	productTerms   = regexp.MustCompile(`\b(fabric|power bi|azure|synapse|databricks|excel|teams|sql server|purview)\b`)
)

// keywordSummary composes "Component - Action" from up to three terms.
// Components and actions come first; a text naming only products yields "".
func keywordSummary(text string) string {
	lower := strings.ToLower(text)
	var terms []string
	seen := make(map[string]bool)
	add := func(re *regexp.Regexp) {
		for _, m := range re.FindAllString(lower, -1) {
			m = strings.TrimSuffix(m, "s")
			if len(terms) == 3 || seen[m] {
				continue
			}
			seen[m] = true
			terms = append(terms, m)
		}
	}
	add(componentTerms)
	add(actionTerms)
	if len(terms) == 0 {
		return ""
	}
	add(archTerms)
	add(productTerms)

	for i, t := range terms {
		terms[i] = titleCase(t)
	}
	return strings.Join(terms, " - ")
}

var acronyms = map[string]string{"api": "API", "sdk": "SDK", "kql": "KQL", "bi": "BI", "sql": "SQL"}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if a, ok := acronyms[w]; ok {
			words[i] = a
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = strings.ToUpper(string(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
