// Package ident derives stable feedback identifiers from record content.
//
// Empty components are skipped before hashing, so a title with no content
// and the same text as content with no title share an id.
package ident

import (
	"crypto/sha256"
	"strings"

	"github.com/google/uuid"

	"github.com/cognicore/feedlens/pkg/feedlens/record"
	"github.com/cognicore/feedlens/pkg/feedlens/textclean"
)

// ContentPrefix is the number of normalized content runes that feed the
// hash. Records differing only past this point share an id.
const ContentPrefix = 500

// Generate returns a UUID-shaped id for the given fields. The same logical
// input always yields the same id: title and content are normalized, only the
// calendar day of created is used when it parses, and no salt is mixed in.
func Generate(title, content, source, author, created string) string {
	normContent := textclean.Normalize(content)
	if r := []rune(normContent); len(r) > ContentPrefix {
		normContent = string(r[:ContentPrefix])
	}

	components := []string{
		textclean.Normalize(title),
		normContent,
		strings.ToLower(source),
		strings.ToLower(author),
		Day(created),
	}

	parts := components[:0]
	for _, c := range components {
		if c != "" {
			parts = append(parts, c)
		}
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	var id uuid.UUID
	copy(id[:], sum[:16])
	return id.String()
}

// FromRecord generates the id of r, standing in leading content for a
// missing title.
func FromRecord(r record.RawRecord) string {
	return Generate(r.IdentityTitle(), r.Content, r.Source, r.Author, r.CreatedDate)
}

// Day reduces a created timestamp to YYYY-MM-DD. Unparseable values fall back
// to their first ten characters; blank values yield "".
func Day(created string) string {
	created = strings.TrimSpace(created)
	if created == "" {
		return ""
	}
	if t, ok := record.ParseCreated(created); ok {
		return t.Format("2006-01-02")
	}
	if r := []rune(created); len(r) > 10 {
		return string(r[:10])
	}
	return created
}
