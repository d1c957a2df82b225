package ident

import (
	"regexp"
	"strings"
	"testing"

	"github.com/cognicore/feedlens/pkg/feedlens/record"
)

var uuidShape = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestGenerateDeterministic(t *testing.T) {
	a := Generate("Export fails", "The CSV export fails for large tables", "GitHub", "octocat", "2024-03-05T10:00:00Z")
	b := Generate("Export fails", "The CSV export fails for large tables", "GitHub", "octocat", "2024-03-05T10:00:00Z")
	if a != b {
		t.Fatalf("ids differ: %s vs %s", a, b)
	}
	if !uuidShape.MatchString(a) {
		t.Errorf("id %q is not UUID-shaped", a)
	}
}

func TestGenerateIgnoresTimeOfDay(t *testing.T) {
	morning := Generate("Slow refresh", "Refresh takes an hour", "Reddit", "u1", "2024-03-05T08:15:00Z")
	evening := Generate("Slow refresh", "Refresh takes an hour", "Reddit", "u1", "2024-03-05T22:40:10Z")
	if morning != evening {
		t.Errorf("same-day ids differ: %s vs %s", morning, evening)
	}

	nextDay := Generate("Slow refresh", "Refresh takes an hour", "Reddit", "u1", "2024-03-06T08:15:00Z")
	if nextDay == morning {
		t.Error("different days should produce different ids")
	}
}

func TestGenerateNormalizesText(t *testing.T) {
	a := Generate("Export Fails!", "The  CSV export,\nfails.", "GitHub", "Octocat", "")
	b := Generate("export fails", "the csv export fails", "github", "octocat", "")
	if a != b {
		t.Errorf("normalized inputs should collide: %s vs %s", a, b)
	}
}

func TestGenerateDistinguishesInputs(t *testing.T) {
	base := Generate("title", "content", "source", "author", "2024-01-01")
	variants := []string{
		Generate("title2", "content", "source", "author", "2024-01-01"),
		Generate("title", "content2", "source", "author", "2024-01-01"),
		Generate("title", "content", "source2", "author", "2024-01-01"),
		Generate("title", "content", "source", "author2", "2024-01-01"),
		Generate("title", "content", "source", "author", "2024-01-02"),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base", i)
		}
	}
}

func TestGenerateContentPrefix(t *testing.T) {
	prefix := strings.Repeat("a", ContentPrefix)
	a := Generate("t", prefix+" tail one", "s", "a", "")
	b := Generate("t", prefix+" tail two", "s", "a", "")
	if a != b {
		t.Error("content beyond the prefix should not affect the id")
	}
}

func TestDay(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"2024-03-05T10:00:00Z", "2024-03-05"},
		{"2024-03-05T10:00:00+02:00", "2024-03-05"},
		{"2024-03-05T10:00:00.123456", "2024-03-05"},
		{"2024-03-05 23:59:59", "2024-03-05"},
		{"2024-03-05", "2024-03-05"},
		{"Tue, 05 Mar 2024 10:00:00 GMT", "2024-03-05"},
		{"sometime last week", "sometime l"},
	}
	for _, tt := range tests {
		if got := Day(tt.in); got != tt.want {
			t.Errorf("Day(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFromRecordTitleFallback(t *testing.T) {
	content := strings.Repeat("workspace capacity ", 20)
	r := record.RawRecord{Content: content, Source: "Reddit", Author: "u1", CreatedDate: "2024-02-01"}

	want := Generate(r.IdentityTitle(), content, "Reddit", "u1", "2024-02-01")
	if got := FromRecord(r); got != want {
		t.Errorf("FromRecord = %s, want %s", got, want)
	}
	if FromRecord(r) == Generate("", content, "Reddit", "u1", "2024-02-01") {
		t.Error("missing title should fall back to leading content")
	}
}

func TestGenerateSkipsEmptyComponents(t *testing.T) {
	titleOnly := Generate("abc", "", "Forum", "u1", "2024-03-05")
	contentOnly := Generate("", "abc", "Forum", "u1", "2024-03-05")
	if titleOnly != contentOnly {
		t.Errorf("empty components should be skipped: %s vs %s", titleOnly, contentOnly)
	}
}
