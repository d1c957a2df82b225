package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/cognicore/feedlens/pkg/feedlens/record"
	"github.com/cognicore/feedlens/pkg/feedlens/store"
)

// createdLayout is fixed width so created_at sorts lexically.
const createdLayout = "2006-01-02T15:04:05Z"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist. The payload column holds
// the full enriched record; the other columns serve filtering and curation.
// A NULL override column means the reviewer never touched that field.
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS feedback (
	feedback_id TEXT PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL DEFAULT '',
	gist TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	audience TEXT NOT NULL DEFAULT '',
	audience_override TEXT,
	primary_domain TEXT NOT NULL DEFAULT '',
	domain_override TEXT,
	primary_workload TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	sentiment TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT 'New',
	notes TEXT NOT NULL DEFAULT '',
	updated_by TEXT NOT NULL DEFAULT '',
	last_updated TEXT NOT NULL DEFAULT '',
	payload TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_feedback_created ON feedback(created_at);
CREATE INDEX IF NOT EXISTS idx_feedback_source ON feedback(source);
CREATE INDEX IF NOT EXISTS idx_feedback_state ON feedback(state);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// Upsert inserts or refreshes a record keyed by feedback id
func (s *sqliteStore) Upsert(ctx context.Context, rec record.EnrichedRecord) error {
	if err := store.CheckID(rec.FeedbackID); err != nil {
		return err
	}
	if rec.State == "" {
		rec.State = record.DefaultState
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", rec.FeedbackID, err)
	}

	query, args, err := sq.Insert("feedback").
		Columns("feedback_id", "title", "content", "gist", "source", "audience",
			"primary_domain", "primary_workload", "category", "sentiment", "created_at",
			"state", "notes", "updated_by", "last_updated", "payload").
		Values(rec.FeedbackID, rec.Title, rec.Content, rec.Gist, rec.Source, rec.Audience,
			rec.PrimaryDomain, rec.PrimaryWorkload, rec.Category.Primary, rec.Sentiment.Label,
			createdAt(rec), string(rec.State), rec.Notes, rec.UpdatedBy, formatTime(rec.LastUpdated),
			string(payload)).
		Suffix(`ON CONFLICT(feedback_id) DO UPDATE SET
	title=excluded.title,
	content=excluded.content,
	gist=excluded.gist,
	source=excluded.source,
	audience=excluded.audience,
	primary_domain=excluded.primary_domain,
	primary_workload=excluded.primary_workload,
	category=excluded.category,
	sentiment=excluded.sentiment,
	created_at=excluded.created_at,
	payload=excluded.payload`).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", rec.FeedbackID, err)
	}
	return nil
}

func selectRecords() sq.SelectBuilder {
	return sq.Select("payload", "state", "notes", "updated_by", "last_updated",
		"audience_override", "domain_override").From("feedback")
}

// Get returns the record with the given feedback id
func (s *sqliteStore) Get(ctx context.Context, id string) (record.EnrichedRecord, error) {
	query, args, err := selectRecords().Where(sq.Eq{"feedback_id": id}).ToSql()
	if err != nil {
		return record.EnrichedRecord{}, err
	}
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return record.EnrichedRecord{}, store.NotFound(id)
	}
	if err != nil {
		return record.EnrichedRecord{}, fmt.Errorf("get %s: %w", id, err)
	}
	return rec, nil
}

// List returns records matching f, newest first
func (s *sqliteStore) List(ctx context.Context, f store.Filter) ([]record.EnrichedRecord, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	q := selectRecords()
	eq := func(expr, value string) {
		if value != "" {
			q = q.Where(expr+" = ? COLLATE NOCASE", value)
		}
	}
	eq("source", f.Source)
	eq("COALESCE(audience_override, audience)", f.Audience)
	eq("COALESCE(domain_override, primary_domain)", f.Domain)
	eq("primary_workload", f.Workload)
	eq("state", string(f.State))
	eq("category", f.Category)
	eq("sentiment", f.Sentiment)

	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		q = q.Where(`(title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\' OR gist LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern)
	}
	if !f.Since.IsZero() || !f.Until.IsZero() {
		q = q.Where(sq.NotEq{"created_at": ""})
	}
	if !f.Since.IsZero() {
		q = q.Where(sq.GtOrEq{"created_at": f.Since.UTC().Format(createdLayout)})
	}
	if !f.Until.IsZero() {
		q = q.Where(sq.LtOrEq{"created_at": f.Until.UTC().Format(createdLayout)})
	}

	q = q.OrderBy("created_at = ''", "created_at DESC", "feedback_id")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	} else if f.Offset > 0 {
		// SQLite only accepts OFFSET after LIMIT.
		q = q.Limit(math.MaxInt64)
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var out []record.EnrichedRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list feedback: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UpdateState moves a record to state and records the reviewer
func (s *sqliteStore) UpdateState(ctx context.Context, id string, state record.State, notes, user string) error {
	if err := store.CheckState(state); err != nil {
		return err
	}
	return s.update(ctx, id, user, map[string]any{"state": string(state), "notes": notes})
}

// UpdateDomain overrides the primary domain; an empty domain drops the
// override so the tagged domain shows again
func (s *sqliteStore) UpdateDomain(ctx context.Context, id, domain, user string) error {
	var override any
	if domain != "" {
		override = domain
	}
	return s.update(ctx, id, user, map[string]any{"domain_override": override})
}

// UpdateAudience overrides the audience
func (s *sqliteStore) UpdateAudience(ctx context.Context, id, audience, user string) error {
	if err := store.CheckAudience(audience); err != nil {
		return err
	}
	return s.update(ctx, id, user, map[string]any{"audience_override": audience})
}

func (s *sqliteStore) update(ctx context.Context, id, user string, set map[string]any) error {
	set["updated_by"] = store.User(user)
	set["last_updated"] = formatTime(s.now())

	query, args, err := sq.Update("feedback").SetMap(set).Where(sq.Eq{"feedback_id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}
	if n == 0 {
		return store.NotFound(id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (record.EnrichedRecord, error) {
	var (
		payload, state, notes, updatedBy, lastUpdated string
		audienceOverride, domainOverride              sql.NullString
		rec                                           record.EnrichedRecord
	)
	if err := row.Scan(&payload, &state, &notes, &updatedBy, &lastUpdated, &audienceOverride, &domainOverride); err != nil {
		return rec, err
	}
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return rec, fmt.Errorf("decode payload: %w", err)
	}
	rec.State = record.State(state)
	rec.Notes = notes
	rec.UpdatedBy = updatedBy
	rec.LastUpdated = parseTime(lastUpdated)
	if audienceOverride.Valid {
		rec.Audience = audienceOverride.String
	}
	if domainOverride.Valid {
		rec.PrimaryDomain = domainOverride.String
	}
	return rec, nil
}

func createdAt(rec record.EnrichedRecord) string {
	t, ok := rec.CreatedTime()
	if !ok {
		return ""
	}
	return t.UTC().Format(createdLayout)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
