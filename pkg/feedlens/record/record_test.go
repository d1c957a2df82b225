package record

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cognicore/feedlens/pkg/feedlens/internalerr"
)

func TestCanonicalizeAliases(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
		want RawRecord
	}{
		{
			name: "reddit style",
			in: map[string]any{
				"Title": "Slow lakehouse", "Feedback": "Queries take minutes",
				"Sources": "Reddit", "Customer": "u/someone", "Created": "2024-03-01T10:00:00",
			},
			want: RawRecord{Title: "Slow lakehouse", Content: "Queries take minutes", Source: "Reddit", Author: "u/someone", CreatedDate: "2024-03-01T10:00:00"},
		},
		{
			name: "github style",
			in: map[string]any{
				"title": "Crash", "body": "It crashes", "source": "GitHub", "user": "octo",
				"created_at": "2024-03-02", "url": "https://example.com/1",
			},
			want: RawRecord{Title: "Crash", Content: "It crashes", Source: "GitHub", Author: "octo", CreatedDate: "2024-03-02", URL: "https://example.com/1"},
		},
		{
			name: "first non-blank alias wins",
			in:   map[string]any{"Content": "  ", "Body": "from body", "text": "from text"},
			want: RawRecord{Content: "from body"},
		},
		{
			name: "nil and numbers",
			in:   map[string]any{"Title": nil, "Content": 42.0, "Author": true},
			want: RawRecord{Content: "42", Author: "true"},
		},
		{
			name: "forum hint",
			in:   map[string]any{"Content": "x", "Board": "data-factory", "Scenario": "Partner", "Organization": "Contoso"},
			want: RawRecord{Content: "x", SourceHint: "data-factory", Scenario: "Partner", Organization: "Contoso"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonicalize(tt.in)
			got.Labels = nil
			if got.Title != tt.want.Title || got.Content != tt.want.Content || got.Source != tt.want.Source ||
				got.Author != tt.want.Author || got.CreatedDate != tt.want.CreatedDate || got.URL != tt.want.URL ||
				got.SourceHint != tt.want.SourceHint || got.Scenario != tt.want.Scenario || got.Organization != tt.want.Organization {
				t.Errorf("Canonicalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCanonicalizeLabels(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"strings", []any{"bug", "ui"}, []string{"bug", "ui"}},
		{"github objects", []any{map[string]any{"name": "enhancement"}, map[string]any{"name": "help wanted"}}, []string{"enhancement", "help wanted"}},
		{"comma separated", "bug, performance", []string{"bug", "performance"}},
		{"typed", []string{"question"}, []string{"question"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonicalize(map[string]any{"labels": tt.in}).Labels
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Labels = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := (RawRecord{Content: "hello"}).Validate(); err != nil {
		t.Errorf("Content-only record should be valid: %v", err)
	}
	if err := (RawRecord{Title: "hello"}).Validate(); err != nil {
		t.Errorf("Title-only record should be valid: %v", err)
	}
	err := RawRecord{Title: " ", Content: "\n"}.Validate()
	if !errors.Is(err, internalerr.ErrInvalidRecord) {
		t.Errorf("Expected ErrInvalidRecord, got %v", err)
	}
}

func TestIdentityTitle(t *testing.T) {
	if got := (RawRecord{Title: "T", Content: "C"}).IdentityTitle(); got != "T" {
		t.Errorf("IdentityTitle = %q", got)
	}
	long := strings.Repeat("é", 150)
	got := RawRecord{Content: long}.IdentityTitle()
	if len([]rune(got)) != IdentityTitleLength {
		t.Errorf("Expected %d runes, got %d", IdentityTitleLength, len([]rune(got)))
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		r    RawRecord
		want string
	}{
		{RawRecord{Title: "a", Content: "b"}, "a b"},
		{RawRecord{Title: "a"}, "a"},
		{RawRecord{Content: "b"}, "b"},
	}
	for _, tt := range tests {
		if got := tt.r.Text(); got != tt.want {
			t.Errorf("Text() = %q, want %q", got, tt.want)
		}
	}
}

func TestStringify(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := Stringify(ts); got != "2024-01-02T03:04:05Z" {
		t.Errorf("Stringify(time) = %q", got)
	}
	if got := Stringify(1.5); got != "1.5" {
		t.Errorf("Stringify(1.5) = %q", got)
	}
}

func TestParseState(t *testing.T) {
	tests := []struct {
		in   string
		want State
		ok   bool
	}{
		{"new", StateNew, true},
		{"In Progress", StateInProgress, true},
		{"in_progress", StateInProgress, true},
		{"IRRELEVANT", StateIrrelevant, true},
		{"done", "", false},
	}
	for _, tt := range tests {
		got, err := ParseState(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseState(%q) = %q, %v", tt.in, got, err)
		}
		if !tt.ok && !errors.Is(err, internalerr.ErrInvalidInput) {
			t.Errorf("ParseState(%q) should fail with ErrInvalidInput, got %v", tt.in, err)
		}
	}
	if !DefaultState.Valid() || State("Done").Valid() {
		t.Error("Valid() mismatch")
	}
}

func TestParseCreated(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-03-05T10:11:12Z", "2024-03-05T10:11:12Z", true},
		{"2024-03-05 10:11:12", "2024-03-05T10:11:12Z", true},
		{"2024-03-05", "2024-03-05T00:00:00Z", true},
		{"03/05/2024", "2024-03-05T00:00:00Z", true},
		{"yesterday", "", false},
		{"  ", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseCreated(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseCreated(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got.UTC().Format(time.RFC3339) != tt.want {
			t.Errorf("ParseCreated(%q) = %s, want %s", tt.in, got.UTC().Format(time.RFC3339), tt.want)
		}
	}
}
