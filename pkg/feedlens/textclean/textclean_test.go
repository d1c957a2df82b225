package textclean

import (
	"strings"
	"testing"
)

func TestCleanEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t\n"} {
		if got := Clean(in); got != "" {
			t.Errorf("Clean(%q) = %q, want empty", in, got)
		}
	}
}

func TestCleanHTML(t *testing.T) {
	in := `<div><p>The <b>export</b> button &amp; the menu</p><p>are broken</p></div>`
	got := Clean(in)
	want := "The export button & the menu\nare broken"
	if got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestCleanLiteralAngleBrackets(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"if count<limit then fail", "if count<limit then fail"},
		{"x<y is true", "x<y is true"},
		{"a > b and b < c", "a > b and b < c"},
		{"<b>Export</b> fails when rows<limit", "Export fails when rows<limit"},
		{"x<y then <i>retry</i>", "x<y then retry"},
		{"love it <3", "love it <3"},
		{"Export fails <br", "Export fails <br"},
	}
	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanRemovesCSSBeforeTags(t *testing.T) {
	in := "<style>p { color: red; }</style>\np.MsoNormal {margin:0cm; font-size:11pt;}\nThe refresh job times out"
	got := Clean(in)
	if got != "The refresh job times out" {
		t.Errorf("Clean() = %q", got)
	}
}

func TestCleanMalformedCSSFragment(t *testing.T) {
	got := Clean("font-family: Calibri; Pipelines fail on retry")
	if strings.Contains(got, "Calibri") {
		t.Errorf("css fragment survived: %q", got)
	}
	if !strings.Contains(got, "Pipelines fail on retry") {
		t.Errorf("body lost: %q", got)
	}
}

func TestCleanEmailArtifacts(t *testing.T) {
	in := "From: Jane Doe <jane@contoso.com>\nSubject: Capacity\nPlease reach out to ops@contoso.com about the capacity limits.\n--\nJane Doe\nContoso"
	got := Clean(in)
	if strings.Contains(got, "From:") || strings.Contains(got, "Subject:") {
		t.Errorf("header survived: %q", got)
	}
	if strings.Contains(got, "ops@contoso.com") {
		t.Errorf("address survived: %q", got)
	}
	if !strings.Contains(got, "reach out to "+EmailPlaceholder+" about") {
		t.Errorf("placeholder missing: %q", got)
	}
	if strings.Contains(got, "Contoso\n") || strings.HasSuffix(got, "Contoso") {
		t.Errorf("signature survived: %q", got)
	}
}

func TestCleanSignoff(t *testing.T) {
	got := Clean("The gateway drops connections nightly.\n\nThanks,\nBob")
	if got != "The gateway drops connections nightly." {
		t.Errorf("Clean() = %q", got)
	}
}

func TestCleanMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"See [the docs](https://example.com/docs) for **details**", "See the docs for details"},
		{"![screenshot](img.png) shows the `error` state", "screenshot shows the error state"},
		{"## Heading\n> quoted *text*", "Heading\nquoted text"},
		{"keep snake_case_names intact", "keep snake_case_names intact"},
	}
	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := CollapseWhitespace("  a   b \n\n\n  c  d  \n")
	if got != "a b\nc d" {
		t.Errorf("CollapseWhitespace() = %q", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Hello,   World!", "hello world"},
		{"  Mixed\tCASE\nlines ", "mixed case lines"},
		{"snake_case stays", "snake_case stays"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
