// Package cluster groups near-duplicate feedback into repeating requests.
//
// Clustering is greedy and single-pass: items are visited in input order and
// each unassigned item absorbs every other unassigned item that scores at or
// above the threshold against it. Matches of matches are not followed, so the
// result is not a transitive closure.
package cluster

import (
	"context"
	"crypto/rand"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/feedlens/pkg/feedlens/keywords"
	"github.com/cognicore/feedlens/pkg/feedlens/record"
)

// Defaults applied by Options.withDefaults.
const (
	DefaultThreshold   = 0.4
	DefaultTopKeywords = 10
)

// Item is one feedback text to cluster.
type Item struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// FromRecords builds items from enriched records, keyed by feedback id.
func FromRecords(recs []record.EnrichedRecord) []Item {
	items := make([]Item, len(recs))
	for i, r := range recs {
		text := r.CleanContent
		if text == "" {
			text = r.Content
		}
		if r.Title != "" {
			text = r.Title + " " + text
		}
		items[i] = Item{ID: r.FeedbackID, Text: text}
	}
	return items
}

// Options tune a clustering run.
type Options struct {
	// Threshold is the minimum similarity to join a cluster. Zero means the
	// default unless ThresholdSet is true.
	Threshold    float64
	ThresholdSet bool
	Metric       Metric
	// Workers bounds parallel pairwise scoring; values below 2 score serially.
	Workers     int
	TopKeywords int
}

func (o Options) withDefaults() Options {
	if !o.ThresholdSet && o.Threshold == 0 {
		o.Threshold = DefaultThreshold
	}
	if o.Metric == "" {
		o.Metric = Sequence
	}
	if o.TopKeywords <= 0 {
		o.TopKeywords = DefaultTopKeywords
	}
	return o
}

// Member is an item absorbed into a cluster.
type Member struct {
	Item       Item    `json:"item"`
	Similarity float64 `json:"similarity"`
}

// Cluster is a group of near-duplicate items.
type Cluster struct {
	Representative Item     `json:"representative"`
	Members        []Member `json:"members"`
	SharedKeywords []string `json:"shared_keywords"`
	Count          int      `json:"count"`
}

// KeywordCount is a keyword and the number of items using it.
type KeywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Report summarizes a clustering run.
type Report struct {
	ID             string         `json:"id"`
	GeneratedAt    time.Time      `json:"generated_at"`
	TotalItems     int            `json:"total_items"`
	UniqueRequests int            `json:"unique_requests"`
	ClusterCount   int            `json:"cluster_count"`
	RepetitionRate float64        `json:"repetition_rate"`
	Clusters       []Cluster      `json:"clusters"`
	TopKeywords    []KeywordCount `json:"top_keywords"`
	Threshold      float64        `json:"threshold"`
	Metric         Metric         `json:"metric"`
}

// Clusterer builds reports. It is safe for concurrent use.
type Clusterer struct {
	tokenizer *keywords.Tokenizer

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New returns a Clusterer that extracts keywords with tok. A nil tok selects
// the default stopword list.
func New(tok *keywords.Tokenizer) *Clusterer {
	if tok == nil {
		tok = keywords.Default()
	}
	return &Clusterer{
		tokenizer: tok,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
}

// Run clusters items with a fresh default Clusterer.
func Run(items []Item, opts Options) Report {
	rep, _ := New(nil).Cluster(context.Background(), items, opts)
	return rep
}

// Cluster groups items and reports only clusters with more than one item.
// The only error is ctx's.
func (c *Clusterer) Cluster(ctx context.Context, items []Item, opts Options) (Report, error) {
	opts = opts.withDefaults()
	rep := Report{
		ID:          c.newID(),
		GeneratedAt: time.Now().UTC(),
		TotalItems:  len(items),
		Threshold:   opts.Threshold,
		Metric:      opts.Metric,
		Clusters:    []Cluster{},
	}

	docs := make([]doc, len(items))
	kwSets := make([][]string, len(items))
	for i, it := range items {
		docs[i] = prepare(it.Text)
		kwSets[i] = c.tokenizer.Words(it.Text)
	}

	assigned := make([]bool, len(items))
	scores := make([]float64, len(items))
	clustered := 0

	for i := range items {
		if assigned[i] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		assigned[i] = true

		if err := scoreRow(ctx, docs, i, assigned, scores, opts); err != nil {
			return Report{}, err
		}

		cl := Cluster{Representative: items[i]}
		memberIdx := []int{i}
		for j := range items {
			if assigned[j] || scores[j] < opts.Threshold {
				continue
			}
			assigned[j] = true
			cl.Members = append(cl.Members, Member{Item: items[j], Similarity: round(scores[j])})
			memberIdx = append(memberIdx, j)
		}
		cl.Count = len(memberIdx)
		if cl.Count < 2 {
			continue
		}
		cl.SharedKeywords = intersect(kwSets, memberIdx)
		rep.Clusters = append(rep.Clusters, cl)
		clustered += cl.Count
	}

	rep.ClusterCount = len(rep.Clusters)
	rep.UniqueRequests = rep.TotalItems - clustered
	if rep.TotalItems > 0 {
		rep.RepetitionRate = math.Round(float64(clustered)/float64(rep.TotalItems)*1000) / 10
	}
	rep.TopKeywords = topKeywords(kwSets, opts.TopKeywords)
	return rep, nil
}

// scoreRow fills scores[j] with the similarity of item i to every unassigned
// item j.
func scoreRow(ctx context.Context, docs []doc, i int, assigned []bool, scores []float64, opts Options) error {
	if opts.Workers < 2 {
		for j := range docs {
			if !assigned[j] {
				scores[j] = similarity(docs[i], docs[j], opts.Metric)
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for j := range docs {
		if assigned[j] {
			continue
		}
		j := j
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores[j] = similarity(docs[i], docs[j], opts.Metric)
			return nil
		})
	}
	return g.Wait()
}

func (c *Clusterer) newID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ulid.MustNew(ulid.Now(), c.entropy).String()
}

// intersect returns the keywords shared by every listed item, in the order
// they appear in the first one.
func intersect(sets [][]string, idx []int) []string {
	shared := []string{}
	for _, w := range sets[idx[0]] {
		inAll := true
		for _, k := range idx[1:] {
			if !containsWord(sets[k], w) {
				inAll = false
				break
			}
		}
		if inAll {
			shared = append(shared, w)
		}
	}
	return shared
}

func containsWord(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}

// topKeywords counts in how many items each keyword occurs. Ties keep
// first-seen order.
func topKeywords(sets [][]string, limit int) []KeywordCount {
	counts := make(map[string]int)
	var order []string
	for _, words := range sets {
		for _, w := range words {
			if counts[w] == 0 {
				order = append(order, w)
			}
			counts[w]++
		}
	}
	out := make([]KeywordCount, len(order))
	for i, w := range order {
		out[i] = KeywordCount{Word: w, Count: counts[w]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}
