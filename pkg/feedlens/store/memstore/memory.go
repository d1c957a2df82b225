package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/cognicore/feedlens/pkg/feedlens/record"
	"github.com/cognicore/feedlens/pkg/feedlens/store"
)

type entry struct {
	rec         record.EnrichedRecord
	audienceSet bool
	domainSet   bool
}

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	now     func() time.Time
	entries map[string]*entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// Upsert stores rec keyed by FeedbackID. An existing record keeps its
// curation fields and any reviewer audience or domain override.
func (s *Store) Upsert(ctx context.Context, rec record.EnrichedRecord) error {
	if err := store.CheckID(rec.FeedbackID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec = copyRecord(rec)
	if rec.State == "" {
		rec.State = record.DefaultState
	}
	if old, ok := s.entries[rec.FeedbackID]; ok {
		rec.State = old.rec.State
		rec.Notes = old.rec.Notes
		rec.UpdatedBy = old.rec.UpdatedBy
		rec.LastUpdated = old.rec.LastUpdated
		if old.audienceSet {
			rec.Audience = old.rec.Audience
		}
		if old.domainSet {
			rec.PrimaryDomain = old.rec.PrimaryDomain
		}
		old.rec = rec
		return nil
	}
	s.entries[rec.FeedbackID] = &entry{rec: rec}
	return nil
}

// Get returns the record with the given feedback id.
func (s *Store) Get(ctx context.Context, id string) (record.EnrichedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entries[id]; ok {
		return copyRecord(e.rec), nil
	}
	return record.EnrichedRecord{}, store.NotFound(id)
}

// List returns matching records, newest first.
func (s *Store) List(ctx context.Context, f store.Filter) ([]record.EnrichedRecord, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var out []record.EnrichedRecord
	for _, e := range s.entries {
		if f.Match(e.rec) {
			out = append(out, copyRecord(e.rec))
		}
	}
	s.mu.RUnlock()

	store.SortNewestFirst(out)
	return f.Page(out), nil
}

// UpdateState moves a record to state and records the reviewer.
func (s *Store) UpdateState(ctx context.Context, id string, state record.State, notes, user string) error {
	if err := store.CheckState(state); err != nil {
		return err
	}
	return s.update(id, user, func(e *entry) {
		e.rec.State = state
		e.rec.Notes = notes
	})
}

// UpdateDomain overrides the primary domain. An empty domain drops the
// override and restores the tagged primary domain.
func (s *Store) UpdateDomain(ctx context.Context, id, domain, user string) error {
	return s.update(id, user, func(e *entry) {
		if domain == "" {
			e.rec.PrimaryDomain = record.PrimaryLabel(e.rec.Domains)
			e.domainSet = false
			return
		}
		e.rec.PrimaryDomain = domain
		e.domainSet = true
	})
}

// UpdateAudience overrides the audience.
func (s *Store) UpdateAudience(ctx context.Context, id, audience, user string) error {
	if err := store.CheckAudience(audience); err != nil {
		return err
	}
	return s.update(id, user, func(e *entry) {
		e.rec.Audience = audience
		e.audienceSet = true
	})
}

func (s *Store) update(id, user string, fn func(*entry)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return store.NotFound(id)
	}
	fn(e)
	e.rec.UpdatedBy = store.User(user)
	e.rec.LastUpdated = s.now().UTC()
	return nil
}

func copyRecord(r record.EnrichedRecord) record.EnrichedRecord {
	r.Labels = append([]string(nil), r.Labels...)
	r.MatchedKeywords = append([]string(nil), r.MatchedKeywords...)
	r.Domains = copyTags(r.Domains)
	r.Workloads = copyTags(r.Workloads)
	return r
}

func copyTags(tags []record.Tag) []record.Tag {
	if tags == nil {
		return nil
	}
	out := make([]record.Tag, len(tags))
	for i, t := range tags {
		t.MatchedKeywords = append([]string(nil), t.MatchedKeywords...)
		out[i] = t
	}
	return out
}
