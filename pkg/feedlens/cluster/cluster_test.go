package cluster

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cognicore/feedlens/pkg/feedlens/record"
)

func items(texts ...string) []Item {
	out := make([]Item, len(texts))
	for i, t := range texts {
		out[i] = Item{ID: string(rune('a' + i)), Text: t}
	}
	return out
}

func TestClusterExactDuplicatesAtThresholdOne(t *testing.T) {
	long := strings.Repeat("the semantic model refresh fails with a gateway timeout ", 8)
	in := items(long, "Add dark mode to the report editor", long, strings.ToUpper(long))

	rep := Run(in, Options{Threshold: 1.0, ThresholdSet: true})
	if rep.ClusterCount != 1 {
		t.Fatalf("expected 1 cluster, got %d (%+v)", rep.ClusterCount, rep.Clusters)
	}
	cl := rep.Clusters[0]
	if cl.Count != 3 || cl.Representative.ID != "a" {
		t.Errorf("unexpected cluster %+v", cl)
	}
	for _, m := range cl.Members {
		if m.Similarity != 1 {
			t.Errorf("duplicate similarity = %v", m.Similarity)
		}
	}
	if rep.UniqueRequests != 1 {
		t.Errorf("UniqueRequests = %d, want 1", rep.UniqueRequests)
	}
	if rep.RepetitionRate != 75 {
		t.Errorf("RepetitionRate = %v, want 75", rep.RepetitionRate)
	}
}

func TestClusterThresholdZeroGroupsEverything(t *testing.T) {
	in := items("alpha", "completely different", "nothing in common here", "")
	rep := Run(in, Options{Threshold: 0, ThresholdSet: true})

	if rep.ClusterCount != 1 || rep.Clusters[0].Count != len(in) {
		t.Fatalf("expected one cluster of %d, got %+v", len(in), rep.Clusters)
	}
	if rep.UniqueRequests != 0 || rep.RepetitionRate != 100 {
		t.Errorf("unexpected totals: unique=%d rate=%v", rep.UniqueRequests, rep.RepetitionRate)
	}
}

func TestClusterIsGreedyNotTransitive(t *testing.T) {
	// A~B and B~C, but A and C share almost nothing.
	in := items("aaaa aaaa", "aaaa bbbb", "bbbb bbbb")
	rep := Run(in, Options{Threshold: 0.5, ThresholdSet: true})

	if rep.ClusterCount != 1 {
		t.Fatalf("expected 1 cluster, got %+v", rep.Clusters)
	}
	cl := rep.Clusters[0]
	if cl.Representative.ID != "a" || cl.Count != 2 || cl.Members[0].Item.ID != "b" {
		t.Errorf("unexpected cluster %+v", cl)
	}
	if rep.UniqueRequests != 1 {
		t.Errorf("C should stay unclustered, unique = %d", rep.UniqueRequests)
	}
}

func TestClusterDefaults(t *testing.T) {
	rep := Run(nil, Options{})
	if rep.Threshold != DefaultThreshold || rep.Metric != Sequence {
		t.Errorf("defaults not applied: %+v", rep)
	}
	if rep.TotalItems != 0 || rep.RepetitionRate != 0 || rep.Clusters == nil {
		t.Errorf("unexpected empty report: %+v", rep)
	}
	if len(rep.ID) != 26 {
		t.Errorf("report id %q is not a ULID", rep.ID)
	}
}

func TestClusterSharedAndTopKeywords(t *testing.T) {
	in := items(
		"Export to PDF fails for large reports",
		"export to pdf fails for big reports",
		"Dark mode",
	)
	rep := Run(in, Options{})
	if rep.ClusterCount != 1 {
		t.Fatalf("expected 1 cluster, got %+v", rep.Clusters)
	}
	shared := strings.Join(rep.Clusters[0].SharedKeywords, ",")
	if shared != "export,pdf,fails,reports" {
		t.Errorf("SharedKeywords = %s", shared)
	}
	if len(rep.TopKeywords) == 0 || rep.TopKeywords[0].Word != "export" || rep.TopKeywords[0].Count != 2 {
		t.Errorf("TopKeywords = %+v", rep.TopKeywords)
	}

	limited := Run(in, Options{TopKeywords: 2})
	if len(limited.TopKeywords) != 2 {
		t.Errorf("TopKeywords limit ignored: %+v", limited.TopKeywords)
	}
}

func TestClusterParallelMatchesSerial(t *testing.T) {
	in := items(
		"Refresh fails on the semantic model",
		"semantic model refresh fails",
		"Need git integration for notebooks",
		"git integration for notebooks please",
		"Dark mode",
		"refresh of semantic model failing",
	)
	serial := Run(in, Options{})
	parallel := Run(in, Options{Workers: 4})

	if serial.ClusterCount != parallel.ClusterCount || serial.UniqueRequests != parallel.UniqueRequests {
		t.Fatalf("serial %+v vs parallel %+v", serial.Clusters, parallel.Clusters)
	}
	for i := range serial.Clusters {
		if serial.Clusters[i].Count != parallel.Clusters[i].Count {
			t.Errorf("cluster %d differs", i)
		}
	}
}

func TestClusterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil).Cluster(ctx, items("a", "b"), Options{Workers: 2})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSimilarity(t *testing.T) {
	for _, m := range []Metric{Sequence, Levenshtein} {
		if got := Similarity("Export fails!", "export   fails", m); got != 1 {
			t.Errorf("%s: normalized duplicates should score 1, got %v", m, got)
		}
		got := Similarity("export to csv", "jjj qqq", m)
		if got < 0 || got >= 0.5 {
			t.Errorf("%s: unrelated texts scored %v", m, got)
		}
	}
	if got := Similarity("a b c", "a b d", Sequence); got > 1 {
		t.Errorf("similarity %v exceeds 1", got)
	}
}

func TestFromRecords(t *testing.T) {
	recs := []record.EnrichedRecord{
		{RawRecord: record.RawRecord{Title: "Slow", Content: "<p>raw</p>"}, FeedbackID: "id-1", CleanContent: "raw"},
		{RawRecord: record.RawRecord{Content: "only content"}, FeedbackID: "id-2"},
	}
	got := FromRecords(recs)
	if got[0].ID != "id-1" || got[0].Text != "Slow raw" {
		t.Errorf("item 0 = %+v", got[0])
	}
	if got[1].Text != "only content" {
		t.Errorf("item 1 = %+v", got[1])
	}
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in   string
		want Metric
		ok   bool
	}{
		{"", Sequence, true},
		{"Sequence", Sequence, true},
		{" levenshtein ", Levenshtein, true},
		{"jaccard", "", false},
	}
	for _, tt := range tests {
		got, err := ParseMetric(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseMetric(%q) = %q, %v", tt.in, got, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("ParseMetric(%q) should fail", tt.in)
		}
	}
}
