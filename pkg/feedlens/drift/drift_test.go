package drift

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cognicore/feedlens/pkg/feedlens/config"
	"github.com/cognicore/feedlens/pkg/feedlens/record"
)

func testTaxonomy() *config.Taxonomy {
	return &config.Taxonomy{
		Categories: []config.Category{{
			Key:  "BUGS",
			Name: "Bugs",
			Subcategories: []config.Subcategory{
				{Key: "CRASHES", Name: "Crashes", Keywords: []string{"crash", "segfault"}},
				{Key: "LEAKS", Name: "Leaks", Keywords: []string{"leak"}},
			},
		}},
		Domains: []config.TagDef{{Key: "PERF", Name: "Performance", Keywords: []string{"slow"}}},
	}
}

func crashRecords(n int) []record.EnrichedRecord {
	var recs []record.EnrichedRecord
	for i := 0; i < n; i++ {
		recs = append(recs, record.EnrichedRecord{
			RawRecord: record.RawRecord{
				Title:   fmt.Sprintf("App crash %d", i),
				Content: "The notebook kernel crashes on launch",
			},
			Category: record.Category{Primary: "Bugs", Subcategory: "Crashes"},
		})
	}
	return recs
}

type rejectOrphans struct{ calls int }

func (r *rejectOrphans) Approve(_ context.Context, s Suggestion) (bool, error) {
	r.calls++
	return s.Type != Orphan, nil
}

func TestRun(t *testing.T) {
	d := Detector{Taxonomy: testTaxonomy()}
	suggs, err := d.Run(context.Background(), crashRecords(12))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	byKeyword := map[string]Suggestion{}
	for _, s := range suggs {
		byKeyword[s.Keyword] = s
	}

	seg, ok := byKeyword["segfault"]
	if !ok {
		t.Fatalf("expected low coverage suggestion for segfault, got %+v", suggs)
	}
	if seg.Type != LowCoverage || seg.Category != "Bugs / Crashes" || seg.MissedDocs != 12 || seg.SupportDocs != 0 {
		t.Errorf("unexpected segfault suggestion %+v", seg)
	}
	if seg.Confidence <= 0 || seg.Confidence > 1 {
		t.Errorf("confidence out of range: %v", seg.Confidence)
	}
	if _, ok := byKeyword["crash"]; ok {
		t.Error("fully covered keyword should not be suggested")
	}
	if _, ok := byKeyword["leak"]; ok {
		t.Error("subcategory without records should not be evaluated")
	}

	nb, ok := byKeyword["notebook"]
	if !ok {
		t.Fatalf("expected orphan suggestion for notebook, got %+v", suggs)
	}
	if nb.Type != Orphan || nb.Category != "Bugs" || nb.SupportDocs != 12 {
		t.Errorf("unexpected notebook suggestion %+v", nb)
	}
	if _, ok := byKeyword["crashes"]; ok {
		t.Error("inflected keyword should count as covered")
	}

	if suggs[0].Type != LowCoverage {
		t.Errorf("low coverage suggestions should come first, got %+v", suggs[0])
	}
}

func TestRunThresholds(t *testing.T) {
	d := Detector{Taxonomy: testTaxonomy()}
	suggs, err := d.Run(context.Background(), crashRecords(5))
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range suggs {
		if s.Type == LowCoverage {
			t.Errorf("5 missed records are below the default floor: %+v", s)
		}
	}

	d.Thresholds = Thresholds{MinMissedDocs: 5}
	suggs, err = d.Run(context.Background(), crashRecords(5))
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, s := range suggs {
		if s.Type == LowCoverage && s.Keyword == "segfault" {
			found = true
		}
	}
	if !found {
		t.Error("lowered floor should surface segfault")
	}
}

func TestRunReviewer(t *testing.T) {
	rev := &rejectOrphans{}
	d := Detector{Taxonomy: testTaxonomy(), Reviewer: rev}
	suggs, err := d.Run(context.Background(), crashRecords(12))
	if err != nil {
		t.Fatal(err)
	}
	if rev.calls == 0 {
		t.Fatal("reviewer not consulted")
	}
	for _, s := range suggs {
		if s.Type == Orphan {
			t.Errorf("rejected suggestion kept: %+v", s)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Run(ctx, crashRecords(12)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCollectEmpty(t *testing.T) {
	d := Detector{Taxonomy: testTaxonomy()}
	if stats := d.Collect(nil); len(stats) != 0 {
		t.Errorf("expected no stats, got %+v", stats)
	}
}

func TestDominant(t *testing.T) {
	got := dominant(map[string]int{"Other": 9, "Bugs": 2, "Docs": 2, "": 5})
	if got != "Bugs" {
		t.Errorf("dominant = %q, want Bugs", got)
	}
}
