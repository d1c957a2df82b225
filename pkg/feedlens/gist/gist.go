// Package gist produces short, intent-prefixed summaries of feedback text.
//
// Strategies run in order and the first that yields text wins:
//
//  1. reuse a descriptive first line (title), optionally extended with the
//     body's core ask
//  2. the highest scoring "core ask" sentence of the body
//  3. a "Component - Action" keyword summary
//  4. the first meaningful sentence
//  5. the first meaningful words
package gist

import (
	"strings"
	"unicode/utf8"

	"github.com/cognicore/feedlens/pkg/feedlens/intent"
	"github.com/cognicore/feedlens/pkg/feedlens/keywords"
	"github.com/cognicore/feedlens/pkg/feedlens/textclean"
)

const (
	// DefaultMaxLength applies when a caller passes a non-positive length.
	DefaultMaxLength = 150
	// Empty is returned for blank input.
	Empty = "Empty feedback"

	minTitleLength    = 15
	minSentenceLength = 15
	maxCoreAskLength  = 100
	salvageWords      = 10
	ellipsis          = "..."
)

// Generator builds gists. The zero value is not usable; use New.
type Generator struct {
	tokenizer *keywords.Tokenizer
}

// New returns a Generator that uses tok to pick meaningful words. A nil tok
// selects the default stopword list.
func New(tok *keywords.Tokenizer) *Generator {
	if tok == nil {
		tok = keywords.Default()
	}
	return &Generator{tokenizer: tok}
}

var defaultGenerator = New(nil)

// Generate summarizes raw with the default generator.
func Generate(raw string, maxLength int) string {
	return defaultGenerator.Generate(raw, maxLength)
}

// Generate summarizes raw in at most maxLength runes. It never returns ""
// and never panics; if every strategy fails the cleaned text is truncated.
func (g *Generator) Generate(raw string, maxLength int) (out string) {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if strings.TrimSpace(raw) == "" {
		return Truncate(Empty, maxLength)
	}

	defer func() {
		if r := recover(); r != nil {
			out = fallback(raw, maxLength)
		}
	}()

	cleaned := textclean.Clean(raw)
	if cleaned == "" {
		return fallback(raw, maxLength)
	}

	title, body := splitTitle(cleaned)
	label := intent.Classify(cleaned)

	if s, ok := g.fromTitle(title, body, label, maxLength); ok {
		return s
	}

	if body == "" {
		body = cleaned
	}
	sentences := splitSentences(body)
	prefix := label.Prefix()
	if intent.Tagged(cleaned) {
		prefix = ""
	}

	if ask, ok := coreAsk(sentences); ok {
		return compose(prefix, ask, maxLength)
	}
	if summary := keywordSummary(cleaned); summary != "" {
		return compose(prefix, summary, maxLength)
	}
	if first := firstMeaningful(sentences); first != "" {
		return compose(prefix, first, maxLength)
	}
	if words := g.salvage(cleaned); words != "" {
		return compose(prefix, words, maxLength)
	}
	return fallback(raw, maxLength)
}

// fromTitle implements title reuse.
func (g *Generator) fromTitle(title, body string, label intent.Label, maxLength int) (string, bool) {
	n := utf8.RuneCountInString(title)
	if n <= minTitleLength || n > maxLength {
		return "", false
	}
	if isGreeting(title) || genericTitle.MatchString(strings.ToLower(title)) {
		return "", false
	}

	prefix := label.Prefix()
	if intent.Tagged(title) {
		prefix = ""
	}

	if body != "" && !intent.Implied(title) {
		if ask, ok := coreAsk(splitSentences(body)); ok &&
			utf8.RuneCountInString(ask) < maxCoreAskLength &&
			g.novelty(title, ask) > 0.5 {
			combined := strings.TrimRight(title, " .:;,!") + ": " + ask
			if utf8.RuneCountInString(prefix+combined) <= maxLength {
				return prefix + combined, true
			}
		}
	}
	return compose(prefix, title, maxLength), true
}

// novelty is the share of ask's meaningful words that do not occur in title.
func (g *Generator) novelty(title, ask string) float64 {
	words := g.tokenizer.Words(ask)
	if len(words) == 0 {
		return 0
	}
	seen := g.tokenizer.WordSet(title)
	fresh := 0
	for _, w := range words {
		if _, ok := seen[w]; !ok {
			fresh++
		}
	}
	return float64(fresh) / float64(len(words))
}

func (g *Generator) salvage(text string) string {
	words := g.tokenizer.Tokenize(text)
	if len(words) > salvageWords {
		words = words[:salvageWords]
	}
	return strings.Join(words, " ")
}

func splitTitle(text string) (title, body string) {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+1:])
	}
	return strings.TrimSpace(text), ""
}

// splitSentences breaks text at line breaks and at ., ! or ? followed by
// whitespace.
func splitSentences(text string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}
	runes := []rune(text)
	for i, r := range runes {
		if r == '\n' {
			flush()
			continue
		}
		cur.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && (i+1 == len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n') {
			flush()
		}
	}
	flush()
	return out
}

func firstMeaningful(sentences []string) string {
	for _, s := range sentences {
		if utf8.RuneCountInString(s) < minSentenceLength {
			continue
		}
		if isGreeting(s) || editMarker.MatchString(strings.ToLower(s)) {
			continue
		}
		return s
	}
	return ""
}

// compose prefixes text and truncates it so the result fits maxLength. The
// prefix is dropped when it would leave no room for text.
func compose(prefix, text string, maxLength int) string {
	room := maxLength - utf8.RuneCountInString(prefix)
	if prefix == "" || room < len(ellipsis)+1 {
		return Truncate(text, maxLength)
	}
	return prefix + Truncate(text, room)
}

func fallback(raw string, maxLength int) string {
	s := textclean.CollapseWhitespace(strings.ReplaceAll(raw, "\n", " "))
	if s == "" {
		return Truncate(Empty, maxLength)
	}
	return Truncate(s, maxLength)
}

// Truncate shortens s to at most maxLength runes, cutting at the last word
// boundary and appending "...". Only a single word longer than the limit, or
// a limit too small for the ellipsis, is cut mid-word.
func Truncate(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= len(ellipsis) {
		return string(runes[:maxLength])
	}
	cut := runes[:maxLength-len(ellipsis)]
	// keep the cut on a word boundary unless the next rune already starts one
	if runes[len(cut)] != ' ' {
		if i := lastSpace(cut); i > 0 {
			cut = cut[:i]
		}
	}
	head := strings.TrimRight(string(cut), " ,;:-")
	if head == "" {
		head = string(runes[:maxLength-len(ellipsis)])
	}
	return head + ellipsis
}

func lastSpace(rs []rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i] == ' ' {
			return i
		}
	}
	return -1
}
