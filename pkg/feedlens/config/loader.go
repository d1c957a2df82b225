package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/feedlens/pkg/feedlens/internalerr"
	"github.com/cognicore/feedlens/pkg/feedlens/keywords"
)

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	return &sl, nil
}

// Loader loads all configuration files and constructs components
type Loader struct {
	TaxonomyPath string
	StoplistPath string
	// ExtraStopwords are appended to whichever stoplist is in effect.
	ExtraStopwords []string
}

// Components holds all loaded configuration components
type Components struct {
	Taxonomy  *Taxonomy
	Tokenizer *keywords.Tokenizer
}

// Load reads all configuration files and returns initialized components.
// Empty paths fall back to the built-in tables.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	if l.TaxonomyPath != "" {
		tax, err := LoadTaxonomy(l.TaxonomyPath)
		if err != nil {
			return nil, fmt.Errorf("load taxonomy: %w", err)
		}
		comp.Taxonomy = tax
	} else {
		comp.Taxonomy = Default()
	}

	stops := keywords.DefaultStopwords
	if l.StoplistPath != "" {
		sl, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		stops = sl.Terms
	}
	comp.Tokenizer = keywords.NewTokenizer(stops)
	for _, w := range l.ExtraStopwords {
		comp.Tokenizer.AddStopword(w)
	}

	return comp, nil
}
