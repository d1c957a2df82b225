package sentiment

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/feedlens/pkg/feedlens/internalerr"
)

//go:embed lexicon/en.yaml
var defaultLexicon []byte

// negationWindow is how many tokens a negation word reaches forward.
const negationWindow = 3

// Entry is the polarity and subjectivity of one lexicon word.
type Entry struct {
	Polarity     float64
	Subjectivity float64
}

// Lexicon drives LexiconAnalyzer.
type Lexicon struct {
	Words        map[string]Entry
	Intensifiers map[string]float64
	Negations    map[string]struct{}
}

type rawLexicon struct {
	Negations    []string             `yaml:"negations"`
	Intensifiers map[string]float64   `yaml:"intensifiers"`
	Words        map[string][]float64 `yaml:"words"`
}

// ParseLexicon decodes a YAML lexicon.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var raw rawLexicon
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: lexicon: %v", internalerr.ErrInvalidConfig, err)
	}
	lex := &Lexicon{
		Words:        make(map[string]Entry, len(raw.Words)),
		Intensifiers: make(map[string]float64, len(raw.Intensifiers)),
		Negations:    make(map[string]struct{}, len(raw.Negations)),
	}
	for w, v := range raw.Words {
		if len(v) != 2 {
			return nil, fmt.Errorf("%w: lexicon word %q needs [polarity, subjectivity]", internalerr.ErrInvalidConfig, w)
		}
		if v[0] < -1 || v[0] > 1 || v[1] < 0 || v[1] > 1 {
			return nil, fmt.Errorf("%w: lexicon word %q out of range", internalerr.ErrInvalidConfig, w)
		}
		lex.Words[strings.ToLower(w)] = Entry{Polarity: v[0], Subjectivity: v[1]}
	}
	for w, m := range raw.Intensifiers {
		lex.Intensifiers[strings.ToLower(w)] = m
	}
	for _, w := range raw.Negations {
		lex.Negations[strings.ToLower(w)] = struct{}{}
	}
	return lex, nil
}

// LoadLexicon reads a YAML lexicon from path.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseLexicon(data)
}

// DefaultLexicon returns the built-in English lexicon.
func DefaultLexicon() *Lexicon {
	lex, err := ParseLexicon(defaultLexicon)
	if err != nil {
		panic(fmt.Sprintf("sentiment: built-in lexicon: %v", err))
	}
	return lex
}

// LexiconAnalyzer averages the polarity and subjectivity of lexicon words
// found in text. An intensifier scales the next scored word; a negation
// within negationWindow tokens flips it at half strength.
type LexiconAnalyzer struct {
	lex *Lexicon
}

// NewLexiconAnalyzer returns an analyzer over lex, or over the built-in
// lexicon when lex is nil.
func NewLexiconAnalyzer(lex *Lexicon) *LexiconAnalyzer {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &LexiconAnalyzer{lex: lex}
}

// Analyze implements Analyzer.
func (a *LexiconAnalyzer) Analyze(text string) (float64, float64, error) {
	var sumP, sumS float64
	n := 0
	negate := 0
	intensity := 1.0

	for _, tok := range words(text) {
		if a.isNegation(tok) {
			negate = negationWindow
			continue
		}
		if m, ok := a.lex.Intensifiers[tok]; ok {
			intensity *= m
			continue
		}
		if e, ok := a.lex.Words[tok]; ok {
			p := e.Polarity * intensity
			s := e.Subjectivity * intensity
			if negate > 0 {
				p *= -0.5
			}
			sumP += p
			sumS += s
			n++
			negate, intensity = 0, 1
			continue
		}
		intensity = 1
		if negate > 0 {
			negate--
		}
	}

	if n == 0 {
		return 0, 0, nil
	}
	polarity := clamp(sumP/float64(n), -1, 1)
	subjectivity := clamp(sumS/float64(n), 0, 1)
	return polarity, subjectivity, nil
}

func (a *LexiconAnalyzer) isNegation(tok string) bool {
	if strings.HasSuffix(tok, "n't") {
		return true
	}
	_, ok := a.lex.Negations[tok]
	return ok
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
