package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cognicore/feedlens/pkg/feedlens/internalerr"
	"github.com/cognicore/feedlens/pkg/feedlens/record"
)

// Store is the main interface for persisting and curating enriched feedback
type Store interface {
	Close() error

	// Upsert inserts rec or refreshes its enrichment, keyed by FeedbackID.
	// Curation fields and reviewer overrides of an existing record survive.
	Upsert(ctx context.Context, rec record.EnrichedRecord) error
	Get(ctx context.Context, id string) (record.EnrichedRecord, error)
	List(ctx context.Context, f Filter) ([]record.EnrichedRecord, error)

	// Curation
	UpdateState(ctx context.Context, id string, state record.State, notes, user string) error
	UpdateDomain(ctx context.Context, id, domain, user string) error
	UpdateAudience(ctx context.Context, id, audience, user string) error
}

// Filter narrows List results. Zero fields match everything. String fields
// compare case-insensitively; Domain and Workload match the primary labels.
type Filter struct {
	Source    string
	Audience  string
	Domain    string
	Workload  string
	State     record.State
	Category  string
	Sentiment string
	// Search is a case-insensitive substring of title, content or gist.
	Search string
	// Since and Until bound the parsed created date, inclusive. Records
	// without a parseable date are excluded when either bound is set.
	Since  time.Time
	Until  time.Time
	Limit  int
	Offset int
}

// Validate rejects negative paging and unknown states.
func (f Filter) Validate() error {
	if f.Limit < 0 || f.Offset < 0 {
		return fmt.Errorf("%w: negative limit or offset", internalerr.ErrInvalidInput)
	}
	if f.State != "" && !f.State.Valid() {
		return fmt.Errorf("%w: unknown state %q", internalerr.ErrInvalidInput, f.State)
	}
	return nil
}

// Match reports whether rec passes every field of f except paging.
func (f Filter) Match(rec record.EnrichedRecord) bool {
	eq := func(want, got string) bool {
		return want == "" || strings.EqualFold(want, got)
	}
	if !eq(f.Source, rec.Source) || !eq(f.Audience, rec.Audience) ||
		!eq(f.Domain, rec.PrimaryDomain) || !eq(f.Workload, rec.PrimaryWorkload) ||
		!eq(string(f.State), string(rec.State)) || !eq(f.Category, rec.Category.Primary) ||
		!eq(f.Sentiment, rec.Sentiment.Label) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(rec.Title), needle) &&
			!strings.Contains(strings.ToLower(rec.Content), needle) &&
			!strings.Contains(strings.ToLower(rec.Gist), needle) {
			return false
		}
	}
	if !f.Since.IsZero() || !f.Until.IsZero() {
		created, ok := rec.CreatedTime()
		if !ok {
			return false
		}
		created = created.UTC().Truncate(time.Second)
		if !f.Since.IsZero() && created.Before(f.Since.UTC().Truncate(time.Second)) {
			return false
		}
		if !f.Until.IsZero() && created.After(f.Until.UTC().Truncate(time.Second)) {
			return false
		}
	}
	return true
}

// SortNewestFirst orders records by created date descending, undated
// records last, ties broken by feedback id.
func SortNewestFirst(recs []record.EnrichedRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		ti, oki := recs[i].CreatedTime()
		tj, okj := recs[j].CreatedTime()
		switch {
		case oki && okj:
			ti, tj = ti.UTC().Truncate(time.Second), tj.UTC().Truncate(time.Second)
			if !ti.Equal(tj) {
				return ti.After(tj)
			}
		case oki != okj:
			return oki
		}
		return recs[i].FeedbackID < recs[j].FeedbackID
	})
}

// Page applies Offset and Limit to an already filtered, sorted slice.
func (f Filter) Page(recs []record.EnrichedRecord) []record.EnrichedRecord {
	if f.Offset >= len(recs) {
		return nil
	}
	recs = recs[f.Offset:]
	if f.Limit > 0 && f.Limit < len(recs) {
		recs = recs[:f.Limit]
	}
	return recs
}

// CheckID rejects blank feedback ids.
func CheckID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty feedback id", internalerr.ErrInvalidInput)
	}
	return nil
}

// NotFound wraps internalerr.ErrNotFound for id.
func NotFound(id string) error {
	return fmt.Errorf("feedback %s: %w", id, internalerr.ErrNotFound)
}

// CheckState rejects states outside record.States.
func CheckState(state record.State) error {
	if !state.Valid() {
		return fmt.Errorf("%w: unknown state %q", internalerr.ErrInvalidInput, state)
	}
	return nil
}

// CheckAudience rejects a blank audience override.
func CheckAudience(audience string) error {
	if strings.TrimSpace(audience) == "" {
		return fmt.Errorf("%w: empty audience", internalerr.ErrInvalidInput)
	}
	return nil
}

// User returns user, or record.SystemUser when it is blank.
func User(user string) string {
	if strings.TrimSpace(user) == "" {
		return record.SystemUser
	}
	return user
}
