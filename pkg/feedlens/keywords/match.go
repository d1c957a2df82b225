// Package keywords provides tokenization, stopwords and boundary-aware
// keyword matching shared by the classifiers.
package keywords

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// inflections may follow a keyword without breaking the match, so "pipeline"
// matches "pipelines" and "crash" matches "crashed".
var inflections = []string{"s", "es", "ed", "d", "ing"}

// Contains reports whether keyword occurs in text on word boundaries. Both
// arguments must already be lowercase. A simple inflection suffix is
// tolerated after the keyword.
func Contains(text, keyword string) bool {
	if keyword == "" || len(keyword) > len(text) {
		return false
	}
	from := 0
	for from <= len(text)-len(keyword) {
		idx := strings.Index(text[from:], keyword)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(keyword)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}
	return false
}

func boundaryBefore(text string, pos int) bool {
	if pos == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:pos])
	return !isWordRune(r)
}

func boundaryAfter(text string, pos int) bool {
	if pos >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[pos:])
	if !isWordRune(r) {
		return true
	}
	for _, suffix := range inflections {
		if strings.HasPrefix(text[pos:], suffix) {
			tail := pos + len(suffix)
			if tail >= len(text) {
				return true
			}
			next, _ := utf8.DecodeRuneInString(text[tail:])
			if !isWordRune(next) {
				return true
			}
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// Matched returns the keywords found in text, preserving keyword order and
// original casing. Matching is case-insensitive.
func Matched(text string, kws []string) []string {
	if text == "" || len(kws) == 0 {
		return nil
	}
	lower := strings.ToLower(text)
	var out []string
	for _, kw := range kws {
		if Contains(lower, strings.ToLower(strings.TrimSpace(kw))) {
			out = append(out, kw)
		}
	}
	return out
}

// CountMatches returns how many keywords occur in text. text must already be
// lowercase; keywords are lowercased here.
func CountMatches(text string, kws []string) int {
	n := 0
	for _, kw := range kws {
		if Contains(text, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}

// ContainsAny reports whether any keyword occurs in the lowercase text.
func ContainsAny(text string, kws ...string) bool {
	for _, kw := range kws {
		if Contains(text, kw) {
			return true
		}
	}
	return false
}
