package tagger

import (
	"strings"
	"testing"

	"github.com/cognicore/feedlens/pkg/feedlens/config"
	"github.com/cognicore/feedlens/pkg/feedlens/record"
)

func TestDomainTagSSO(t *testing.T) {
	domains := NewDomain(config.Default())

	tags := domains.Tag("We need SSO and RBAC for our workspace")
	var auth *record.Tag
	for i := range tags {
		if tags[i].Label == "Authentication & Security" {
			auth = &tags[i]
		}
	}
	if auth == nil {
		t.Fatalf("expected Authentication & Security in %+v", tags)
	}
	if auth.Confidence <= 0 {
		t.Errorf("confidence should be positive, got %v", auth.Confidence)
	}
	if strings.Join(auth.MatchedKeywords, ",") != "sso,rbac" {
		t.Errorf("matched keywords = %v", auth.MatchedKeywords)
	}
}

func TestTagSortedAndBounded(t *testing.T) {
	domains := NewDomain(config.Default())
	tags := domains.Tag("Dashboard report latency is slow; the API connector times out during sync, and login via SSO fails")
	if len(tags) < 2 {
		t.Fatalf("expected several domains, got %+v", tags)
	}
	for i, tag := range tags {
		if tag.Confidence <= 0 || tag.Confidence > 1 {
			t.Errorf("confidence %v out of range", tag.Confidence)
		}
		if i > 0 && tags[i-1].Confidence < tag.Confidence {
			t.Errorf("tags not sorted: %+v", tags)
		}
	}
	if Primary(tags) != tags[0].Label {
		t.Error("Primary should return the first label")
	}
}

func TestTagEmpty(t *testing.T) {
	domains := NewDomain(config.Default())
	if tags := domains.Tag(""); len(tags) != 0 {
		t.Errorf("expected no tags, got %+v", tags)
	}
	if tags := domains.Tag("lorem ipsum"); len(tags) != 0 {
		t.Errorf("expected no tags, got %+v", tags)
	}
	if Primary(nil) != "" {
		t.Error("Primary of no tags should be empty")
	}
}

func TestTagCoverageCapped(t *testing.T) {
	tg := New([]config.TagDef{{Key: "K", Name: "K", Keywords: []string{"alpha", "beta"}}})
	tags := tg.Tag("alpha beta")
	if len(tags) != 1 || tags[0].Confidence != 1 {
		t.Errorf("full coverage should be 1, got %+v", tags)
	}
}

func TestTagStableOrder(t *testing.T) {
	tg := New([]config.TagDef{
		{Key: "B", Name: "Bravo", Keywords: []string{"shared"}},
		{Key: "A", Name: "Alpha", Keywords: []string{"shared"}},
	})
	tags := tg.Tag("shared")
	if len(tags) != 2 || tags[0].Label != "Bravo" {
		t.Errorf("equal confidences should keep definition order, got %+v", tags)
	}
}

func TestWorkloadTagger(t *testing.T) {
	workloads := NewWorkload(config.Default())

	tests := []struct {
		name        string
		text        string
		hint        string
		wantPrimary string
		wantBoosted bool
	}{
		{"keywords only", "Spark notebook fails on the lakehouse", "", "Data Engineering", false},
		{"boost existing match", "notebook crashes", "data-engineering", "Data Engineering", true},
		{"force include", "hello world", "Data Factory", "Data Factory", true},
		{"boost wins over weak text", "semantic model refresh from the pipeline", "datafactory", "Data Factory", true},
		{"unknown hint ignored", "Spark notebook", "random-board", "Data Engineering", false},
		{"no signal", "hello world", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags := workloads.TagWithHint(tt.text, tt.hint)
			if got := Primary(tags); got != tt.wantPrimary {
				t.Fatalf("Primary = %q, want %q (%+v)", got, tt.wantPrimary, tags)
			}
			if tt.wantPrimary == "" {
				return
			}
			top := tags[0]
			if top.ForumBoosted != tt.wantBoosted {
				t.Errorf("ForumBoosted = %v, want %v", top.ForumBoosted, tt.wantBoosted)
			}
			if tt.wantBoosted {
				marker := ForumMarker + tt.hint
				last := top.MatchedKeywords[len(top.MatchedKeywords)-1]
				if last != marker {
					t.Errorf("expected marker %q, got %v", marker, top.MatchedKeywords)
				}
			}
			if top.Confidence > 1 {
				t.Errorf("confidence %v exceeds 1", top.Confidence)
			}
		})
	}
}

func TestWorkloadForumOnlyConfidence(t *testing.T) {
	workloads := NewWorkload(config.Default())
	tags := workloads.TagWithHint("", "powerbi")
	if len(tags) != 1 || tags[0].Confidence != ForumBoost || tags[0].Label != "Power BI" {
		t.Errorf("unexpected tags %+v", tags)
	}
}
