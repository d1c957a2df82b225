// Package feedlens enriches raw feedback records with ids, gists, intent,
// taxonomy categories, audience, domain and workload tags and sentiment, and
// groups near-duplicates into repeating-request reports.
package feedlens

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/feedlens/pkg/feedlens/cluster"
	"github.com/cognicore/feedlens/pkg/feedlens/config"
	"github.com/cognicore/feedlens/pkg/feedlens/drift"
	"github.com/cognicore/feedlens/pkg/feedlens/gist"
	"github.com/cognicore/feedlens/pkg/feedlens/ident"
	"github.com/cognicore/feedlens/pkg/feedlens/intent"
	"github.com/cognicore/feedlens/pkg/feedlens/internalerr"
	"github.com/cognicore/feedlens/pkg/feedlens/keywords"
	"github.com/cognicore/feedlens/pkg/feedlens/metrics"
	"github.com/cognicore/feedlens/pkg/feedlens/record"
	"github.com/cognicore/feedlens/pkg/feedlens/sentiment"
	"github.com/cognicore/feedlens/pkg/feedlens/store"
	"github.com/cognicore/feedlens/pkg/feedlens/tagger"
	"github.com/cognicore/feedlens/pkg/feedlens/taxonomy"
	"github.com/cognicore/feedlens/pkg/feedlens/textclean"
)

// Failure reasons reported in BatchResult and metrics.
const (
	ReasonInvalid = "invalid"
	ReasonPanic   = "panic"
)

// Enricher is the main enrichment pipeline facade
type Enricher struct {
	tables    *config.Taxonomy
	tokenizer *keywords.Tokenizer
	taxonomy  *taxonomy.Classifier
	domains   *tagger.Tagger
	workloads *tagger.WorkloadTagger
	gist      *gist.Generator
	sentiment *sentiment.Scorer
	clusterer *cluster.Clusterer
	search    []string
	gistMax   int
	store     store.Store
	log       *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Options configures an Enricher. Zero fields select built-in defaults.
type Options struct {
	Taxonomy  *config.Taxonomy
	Tokenizer *keywords.Tokenizer
	Analyzer  sentiment.Analyzer
	GistMax   int
	// SearchKeywords fill EnrichedRecord.MatchedKeywords when set.
	SearchKeywords []string
	Store          store.Store
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	Now            func() time.Time
}

// New creates an Enricher with the given dependencies
func New(opts Options) *Enricher {
	tax := opts.Taxonomy
	if tax == nil {
		tax = config.Default()
	}
	tok := opts.Tokenizer
	if tok == nil {
		tok = keywords.Default()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	gistMax := opts.GistMax
	if gistMax <= 0 {
		gistMax = gist.DefaultMaxLength
	}
	return &Enricher{
		tables:    tax,
		tokenizer: tok,
		taxonomy:  taxonomy.New(tax),
		domains:   tagger.NewDomain(tax),
		workloads: tagger.NewWorkload(tax),
		gist:      gist.New(tok),
		sentiment: sentiment.New(opts.Analyzer),
		clusterer: cluster.New(tok),
		search:    opts.SearchKeywords,
		gistMax:   gistMax,
		store:     opts.Store,
		log:       log,
		metrics:   opts.Metrics,
		now:       now,
	}
}

// Close cleanly shuts down the Enricher and its store
func (e *Enricher) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Enrich derives every enrichment field of raw. Only records failing
// record.Validate are rejected; every other input yields a record.
func (e *Enricher) Enrich(raw record.RawRecord) (record.EnrichedRecord, error) {
	if err := raw.Validate(); err != nil {
		return record.EnrichedRecord{}, err
	}
	start := time.Now()

	full := raw.Title
	if raw.Content != "" {
		if full != "" {
			full += "\n\n"
		}
		full += raw.Content
	}
	cleaned := flatten(full)

	cat := e.taxonomy.Classify(cleaned, raw.Source, raw.Scenario, raw.Organization)
	score := e.sentiment.Score(cleaned)
	domains := e.domains.Tag(cleaned)
	workloads := e.workloads.TagWithHint(cleaned, raw.SourceHint)

	rec := record.EnrichedRecord{
		RawRecord:    raw,
		FeedbackID:   ident.FromRecord(raw),
		CleanContent: textclean.Clean(raw.Content),
		Gist:         e.gist.Generate(full, e.gistMax),
		Intent:       string(intent.Classify(cleaned)),
		Sentiment: record.Sentiment{
			Label:        score.Label,
			Polarity:     score.Polarity,
			Subjectivity: score.Subjectivity,
			Confidence:   score.Confidence,
		},
		Category: record.Category{
			Primary:     cat.Primary,
			Subcategory: cat.Subcategory,
			FeatureArea: cat.FeatureArea,
			Priority:    cat.Priority,
			Confidence:  cat.Confidence,
		},
		LegacyCategory:  e.taxonomy.Legacy(cleaned),
		Audience:        cat.Audience,
		ImpactType:      intent.ImpactType(cleaned, raw.Labels),
		Domains:         domains,
		PrimaryDomain:   tagger.Primary(domains),
		Workloads:       workloads,
		PrimaryWorkload: tagger.Primary(workloads),
		State:           record.DefaultState,
		UpdatedBy:       record.SystemUser,
		LastUpdated:     e.now().UTC(),
	}
	if len(e.search) > 0 {
		rec.MatchedKeywords = keywords.Matched(cleaned, e.search)
	}

	e.metrics.ObserveEnriched(raw.Source, time.Since(start))
	return rec, nil
}

// Failure describes a record that EnrichBatch could not enrich.
type Failure struct {
	Index  int
	Title  string
	Reason string
	Err    error
}

// BatchResult holds enriched records in input order plus the rejects.
type BatchResult struct {
	Records  []record.EnrichedRecord
	Failures []Failure
}

// EnrichBatch enriches raws with up to workers goroutines. A bad record
// never stops the batch: it is reported in Failures and skipped. Cancelling
// ctx stops scheduling and returns ctx.Err().
func (e *Enricher) EnrichBatch(ctx context.Context, raws []record.RawRecord, workers int) (BatchResult, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]record.EnrichedRecord, len(raws))
	errs := make([]error, len(raws))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range raws {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = e.safeEnrich(raws[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return BatchResult{}, err
	}

	var out BatchResult
	out.Records = make([]record.EnrichedRecord, 0, len(raws))
	for i, err := range errs {
		if err == nil {
			out.Records = append(out.Records, results[i])
			continue
		}
		f := Failure{Index: i, Title: raws[i].Title, Reason: ReasonPanic, Err: err}
		if errors.Is(err, internalerr.ErrInvalidRecord) {
			f.Reason = ReasonInvalid
		}
		e.metrics.ObserveFailed(f.Reason)
		e.log.Warn("skipping record",
			zap.Int("index", i),
			zap.String("title", f.Title),
			zap.String("reason", f.Reason),
			zap.Error(err))
		out.Failures = append(out.Failures, f)
	}

	e.log.Info("batch enriched",
		zap.Int("records", len(out.Records)),
		zap.Int("failures", len(out.Failures)),
		zap.Int("workers", workers))
	return out, nil
}

func (e *Enricher) safeEnrich(raw record.RawRecord) (rec record.EnrichedRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, err = record.EnrichedRecord{}, fmt.Errorf("enrich panicked: %v", r)
		}
	}()
	return e.Enrich(raw)
}

// Cluster groups near-duplicate records into a repeating-requests report.
func (e *Enricher) Cluster(ctx context.Context, recs []record.EnrichedRecord, opts cluster.Options) (cluster.Report, error) {
	start := time.Now()
	report, err := e.clusterer.Cluster(ctx, cluster.FromRecords(recs), opts)
	if err != nil {
		return cluster.Report{}, err
	}
	e.metrics.ObserveClusters(report.ClusterCount, time.Since(start))
	e.log.Info("clustering complete",
		zap.String("report", report.ID),
		zap.Int("items", report.TotalItems),
		zap.Int("clusters", report.ClusterCount),
		zap.Float64("repetition_rate", report.RepetitionRate))
	return report, nil
}

// Drift reports taxonomy keywords the records under-use and frequent words
// the keyword tables miss.
func (e *Enricher) Drift(ctx context.Context, recs []record.EnrichedRecord, th drift.Thresholds) ([]drift.Suggestion, error) {
	d := drift.Detector{Taxonomy: e.tables, Tokenizer: e.tokenizer, Thresholds: th}
	suggs, err := d.Run(ctx, recs)
	if err != nil {
		return nil, err
	}
	e.log.Info("drift analysis complete",
		zap.Int("records", len(recs)),
		zap.Int("suggestions", len(suggs)))
	return suggs, nil
}

// Persist upserts recs into the configured store and returns how many were
// written before any error.
func (e *Enricher) Persist(ctx context.Context, recs []record.EnrichedRecord) (int, error) {
	if e.store == nil {
		return 0, internalerr.ErrStoreUnavailable
	}
	n := 0
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			e.metrics.ObservePersisted(n)
			return n, err
		}
		if err := e.store.Upsert(ctx, rec); err != nil {
			e.metrics.ObservePersisted(n)
			return n, fmt.Errorf("persist %s: %w", rec.FeedbackID, err)
		}
		n++
	}
	e.metrics.ObservePersisted(n)
	e.log.Debug("records persisted", zap.Int("count", n))
	return n, nil
}

// Store returns the configured store, or nil.
func (e *Enricher) Store() store.Store {
	return e.store
}

// Taxonomy returns the category classifier, for priority and SLA lookups.
func (e *Enricher) Taxonomy() *taxonomy.Classifier {
	return e.taxonomy
}

// flatten cleans text and joins its lines for keyword scoring.
func flatten(text string) string {
	return strings.ReplaceAll(textclean.Clean(text), "\n", " ")
}
