package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/cognicore/feedlens/internal/jsonl"
	"github.com/cognicore/feedlens/internal/logging"
	"github.com/cognicore/feedlens/pkg/feedlens"
	"github.com/cognicore/feedlens/pkg/feedlens/cluster"
	"github.com/cognicore/feedlens/pkg/feedlens/config"
	"github.com/cognicore/feedlens/pkg/feedlens/drift"
	"github.com/cognicore/feedlens/pkg/feedlens/metrics"
	"github.com/cognicore/feedlens/pkg/feedlens/record"
	"github.com/cognicore/feedlens/pkg/feedlens/store/sqlite"
)

func main() {
	var (
		configPath   = flag.String("config", "", "Settings YAML file (optional)")
		inputPath    = flag.String("input", "", "Input JSONL or JSON array of raw feedback (required)")
		taxonomyPath = flag.String("taxonomy", "", "Taxonomy YAML/JSON file (default: built-in)")
		stoplistPath = flag.String("stoplist", "", "Stoplist YAML file (default: built-in)")
		dbPath       = flag.String("db", "", "SQLite database path; \"-\" disables persistence")
		outputPath   = flag.String("output", "", "Write enriched records as JSONL to this file (\"-\" for stdout)")
		reportPath   = flag.String("report", "", "Write the cluster report as JSON to this file (\"-\" for stdout)")
		driftPath    = flag.String("drift", "", "Write taxonomy drift suggestions as JSON to this file (\"-\" for stdout)")
		gistMax      = flag.Int("gist-max", 0, "Maximum gist length in characters")
		threshold    = flag.Float64("threshold", cluster.DefaultThreshold, "Similarity threshold for duplicate clustering")
		metric       = flag.String("metric", "", "Similarity metric: sequence or levenshtein")
		workers      = flag.Int("workers", 0, "Parallel enrichment workers")
		logLevel     = flag.String("log-level", "", "Log level (debug, info, warn, error)")
		logFormat    = flag.String("log-format", "", "Log format (console or json)")
		metricsAddr  = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address while running")
	)
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("--input required")
	}

	settings, err := config.LoadSettings(*configPath)
	if err != nil {
		log.Fatal("Failed to load settings:", err)
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["taxonomy"] {
		settings.TaxonomyPath = *taxonomyPath
	}
	if set["stoplist"] {
		settings.StoplistPath = *stoplistPath
	}
	if set["db"] {
		settings.DBPath = *dbPath
	}
	if set["gist-max"] {
		settings.GistMax = *gistMax
	}
	if set["threshold"] {
		settings.Threshold = threshold
	}
	if set["metric"] {
		settings.Metric = *metric
	}
	if set["workers"] {
		settings.Workers = *workers
	}
	if set["log-level"] {
		settings.LogLevel = *logLevel
	}
	if set["log-format"] {
		settings.LogFormat = *logFormat
	}
	if set["metrics-addr"] {
		settings.MetricsAddr = *metricsAddr
	}
	if settings.DBPath == "-" {
		settings.DBPath = ""
	}

	logger, err := logging.New(settings.LogLevel, settings.LogFormat)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := outputs{records: *outputPath, report: *reportPath, drift: *driftPath}
	if err := run(ctx, settings, *inputPath, out, logger); err != nil {
		logger.Fatal("feedlens failed", zap.Error(err))
	}
}

// outputs names the optional files run writes. "-" means stdout.
type outputs struct {
	records string
	report  string
	drift   string
}

// run enriches inputPath, persists the records, and writes the optional
// outputs.
func run(ctx context.Context, settings config.Settings, inputPath string, out outputs, logger *zap.Logger) error {
	metric, err := cluster.ParseMetric(settings.Metric)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	enricher, cleanup, err := buildEnricher(ctx, settings, reg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if settings.MetricsAddr != "" {
		srv := &http.Server{Addr: settings.MetricsAddr, Handler: metrics.Handler(reg)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics", zap.String("addr", settings.MetricsAddr))
	}

	rows, skipped, err := jsonl.LoadFile(inputPath)
	for _, s := range skipped {
		logger.Warn("skipping malformed input line", zap.Int("line", s.Line), zap.Error(s.Err))
	}
	if err != nil {
		return fmt.Errorf("load input: %w", err)
	}
	raws := make([]record.RawRecord, len(rows))
	for i, row := range rows {
		raws[i] = record.Canonicalize(row)
	}
	logger.Info("loaded feedback", zap.String("input", inputPath), zap.Int("records", len(raws)))

	batch, err := enricher.EnrichBatch(ctx, raws, settings.Workers)
	if err != nil {
		return fmt.Errorf("enrich: %w", err)
	}

	if enricher.Store() != nil {
		n, err := enricher.Persist(ctx, batch.Records)
		if err != nil {
			return err
		}
		logger.Info("records persisted", zap.String("db", settings.DBPath), zap.Int("count", n))
	}

	if out.records != "" {
		if err := writeTo(out.records, func(w io.Writer) error {
			return jsonl.Write(w, batch.Records)
		}); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	opts := cluster.Options{Metric: metric, Workers: settings.Workers}
	if settings.Threshold != nil {
		opts.Threshold, opts.ThresholdSet = *settings.Threshold, true
	}
	report, err := enricher.Cluster(ctx, batch.Records, opts)
	if err != nil {
		return fmt.Errorf("cluster: %w", err)
	}
	if out.report != "" {
		if err := writeTo(out.report, indentJSON(report)); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	if out.drift != "" {
		suggs, err := enricher.Drift(ctx, batch.Records, drift.Thresholds{})
		if err != nil {
			return fmt.Errorf("drift: %w", err)
		}
		if err := writeTo(out.drift, indentJSON(suggs)); err != nil {
			return fmt.Errorf("write drift: %w", err)
		}
	}

	logger.Info("enrichment complete",
		zap.Int("enriched", len(batch.Records)),
		zap.Int("failed", len(batch.Failures)),
		zap.Int("clusters", report.ClusterCount),
		zap.String("repetition_rate", strconv.FormatFloat(report.RepetitionRate, 'f', 1, 64)+"%"))
	return nil
}

// buildEnricher loads configuration and opens the store named in settings.
func buildEnricher(ctx context.Context, settings config.Settings, reg prometheus.Registerer, logger *zap.Logger) (*feedlens.Enricher, func(), error) {
	loader := config.Loader{
		TaxonomyPath: settings.TaxonomyPath,
		StoplistPath: settings.StoplistPath,
	}
	components, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	opts := feedlens.Options{
		Taxonomy:       components.Taxonomy,
		Tokenizer:      components.Tokenizer,
		GistMax:        settings.GistMax,
		SearchKeywords: components.Taxonomy.SearchKeywords,
		Logger:         logger,
		Metrics:        metrics.New(reg),
	}
	if settings.DBPath != "" {
		st, err := sqlite.OpenSQLite(ctx, settings.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		opts.Store = st
	}

	enricher := feedlens.New(opts)
	cleanup := func() {
		if err := enricher.Close(); err != nil {
			logger.Warn("closing store", zap.Error(err))
		}
	}
	return enricher, cleanup, nil
}

func indentJSON(v any) func(io.Writer) error {
	return func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

func writeTo(path string, fn func(io.Writer) error) error {
	if path == "-" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
