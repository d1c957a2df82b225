package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cognicore/feedlens/pkg/feedlens/config"
	"github.com/cognicore/feedlens/pkg/feedlens/gist"
	"github.com/cognicore/feedlens/pkg/feedlens/internalerr"
	"github.com/cognicore/feedlens/pkg/feedlens/record"
	"github.com/cognicore/feedlens/pkg/feedlens/store"
	"github.com/cognicore/feedlens/pkg/feedlens/store/sqlite"
)

// options is everything the browser does in one invocation.
type options struct {
	filter      store.Filter
	setState    string
	setDomain   string
	setAudience string
	note        string
	user        string
	asJSON      bool
}

func main() {
	var (
		configPath  = flag.String("config", "", "Settings YAML file (optional)")
		dbPath      = flag.String("db", "", "SQLite database path")
		source      = flag.String("source", "", "Filter by source")
		audience    = flag.String("audience", "", "Filter by audience")
		domain      = flag.String("domain", "", "Filter by primary domain")
		workload    = flag.String("workload", "", "Filter by primary workload")
		state       = flag.String("state", "", "Filter by curation state")
		category    = flag.String("category", "", "Filter by primary category")
		sentiment   = flag.String("sentiment", "", "Filter by sentiment label")
		search      = flag.String("search", "", "Substring search over title, content and gist")
		since       = flag.String("since", "", "Only records created on or after this date")
		until       = flag.String("until", "", "Only records created on or before this date")
		limit       = flag.Int("limit", 20, "Maximum records to list")
		offset      = flag.Int("offset", 0, "Records to skip")
		setState    = flag.String("set-state", "", "Curate: id=STATE")
		setDomain   = flag.String("set-domain", "", "Curate: id=DOMAIN (empty DOMAIN restores the tagged domain)")
		setAudience = flag.String("set-audience", "", "Curate: id=AUDIENCE")
		note        = flag.String("note", "", "Notes stored with -set-state")
		user        = flag.String("user", "", "Reviewer name recorded with curation changes")
		asJSON      = flag.Bool("json", false, "Print records as JSON lines")
	)
	flag.Parse()

	settings, err := config.LoadSettings(*configPath)
	if err != nil {
		log.Fatal("Failed to load settings:", err)
	}
	if *dbPath != "" {
		settings.DBPath = *dbPath
	}

	opts := options{
		filter: store.Filter{
			Source:    *source,
			Audience:  *audience,
			Domain:    *domain,
			Workload:  *workload,
			Category:  *category,
			Sentiment: *sentiment,
			Search:    *search,
			Limit:     *limit,
			Offset:    *offset,
		},
		setState:    *setState,
		setDomain:   *setDomain,
		setAudience: *setAudience,
		note:        *note,
		user:        *user,
		asJSON:      *asJSON,
	}
	if *state != "" {
		if opts.filter.State, err = record.ParseState(*state); err != nil {
			log.Fatal(err)
		}
	}
	if opts.filter.Since, err = parseDate(*since, false); err != nil {
		log.Fatal("--since: ", err)
	}
	if opts.filter.Until, err = parseDate(*until, true); err != nil {
		log.Fatal("--until: ", err)
	}

	ctx := context.Background()
	st, err := sqlite.OpenSQLite(ctx, settings.DBPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer st.Close()

	if err := run(ctx, st, opts, os.Stdout); err != nil {
		st.Close()
		log.Fatal(err)
	}
}

func run(ctx context.Context, st store.Store, opts options, w io.Writer) error {
	curated := false
	if opts.setState != "" {
		id, value, err := splitAssignment(opts.setState)
		if err != nil {
			return err
		}
		state, err := record.ParseState(value)
		if err != nil {
			return err
		}
		if err := st.UpdateState(ctx, id, state, opts.note, opts.user); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s -> %s\n", id, state)
		curated = true
	}
	if opts.setDomain != "" {
		id, value, err := splitAssignment(opts.setDomain)
		if err != nil {
			return err
		}
		if err := st.UpdateDomain(ctx, id, value, opts.user); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s domain -> %q\n", id, value)
		curated = true
	}
	if opts.setAudience != "" {
		id, value, err := splitAssignment(opts.setAudience)
		if err != nil {
			return err
		}
		if err := st.UpdateAudience(ctx, id, value, opts.user); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s audience -> %s\n", id, value)
		curated = true
	}
	if curated {
		return nil
	}

	recs, err := st.List(ctx, opts.filter)
	if err != nil {
		return err
	}
	if opts.asJSON {
		enc := json.NewEncoder(w)
		for _, rec := range recs {
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSOURCE\tAUDIENCE\tCATEGORY\tDOMAIN\tSTATE\tGIST")
	for _, rec := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.FeedbackID,
			dash(rec.CreatedDate),
			dash(rec.Source),
			dash(rec.Audience),
			dash(rec.Category.Primary),
			dash(rec.PrimaryDomain),
			rec.State,
			gist.Truncate(rec.Gist, 60))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d record(s)\n", len(recs))
	return nil
}

// splitAssignment parses "id=value". The value may be empty.
func splitAssignment(s string) (id, value string, err error) {
	id, value, ok := strings.Cut(s, "=")
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return "", "", fmt.Errorf("%w: expected id=value, got %q", internalerr.ErrInvalidInput, s)
	}
	return id, strings.TrimSpace(value), nil
}

// parseDate parses a filter bound. A bare day used as an upper bound covers
// the whole day.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, ok := record.ParseCreated(s)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unrecognized date %q", internalerr.ErrInvalidInput, s)
	}
	if endOfDay && len(s) == len("2006-01-02") {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
