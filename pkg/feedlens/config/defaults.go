package config

import (
	_ "embed"
	"fmt"
)

//go:embed defaults/taxonomy.yaml
var defaultTaxonomy []byte

// Default returns the built-in taxonomy. Every call decodes a fresh copy, so
// callers may modify the result.
func Default() *Taxonomy {
	tax, err := ParseTaxonomy(defaultTaxonomy)
	if err != nil {
		panic(fmt.Sprintf("config: built-in taxonomy: %v", err))
	}
	return tax
}

// DefaultTaxonomyYAML returns the raw built-in taxonomy document, useful as a
// starting point for custom tables.
func DefaultTaxonomyYAML() []byte {
	out := make([]byte, len(defaultTaxonomy))
	copy(out, defaultTaxonomy)
	return out
}
