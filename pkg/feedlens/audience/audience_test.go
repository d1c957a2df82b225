package audience

import (
	"testing"

	"github.com/cognicore/feedlens/pkg/feedlens/config"
)

func defaultDetector() *Detector {
	return New(config.Default().Audience)
}

func TestDetect(t *testing.T) {
	d := defaultDetector()

	tests := []struct {
		name     string
		text     string
		source   string
		scenario string
		want     string
	}{
		{"no signal falls back", "", "", "", "Customer"},
		{"github source", "Export is slow", "GitHub", "", "Developer"},
		{"ado source", "Export is slow", "ADO", "", "Developer"},
		{"developer keywords", "The SDK api fails to compile when I debug", "Reddit", "", "Developer"},
		{"customer keywords", "As a business user I browse the workload hub", "", "", "Customer"},
		{"isv keywords", "As an ISV we want to publish and monetize on the marketplace", "", "", "ISV"},
		{"portal terms", "The developer portal sample is outdated", "Reddit", "", "Developer"},
		{"partner scenario with isv terms", "we need better certification docs", "", "Partner", "ISV"},
		{"partner scenario without isv terms", "docs are confusing", "", "Partner", "Developer"},
		{"customer scenario", "docs are confusing", "", "Customer", "Customer"},
		{"internal scenario", "docs are confusing", "", "Internal", "Developer"},
		{"saas terms", "our multi-tenant SaaS offering needs tenant isolation", "", "", "ISV"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Detect(tt.text, tt.source, tt.scenario, ""); got != tt.want {
				t.Errorf("Detect() = %s, want %s (scores %+v)", got, tt.want, d.Scores(tt.text, tt.source, tt.scenario, ""))
			}
		})
	}
}

func TestDetectAlwaysReturnsConfiguredLabel(t *testing.T) {
	d := defaultDetector()
	allowed := map[string]bool{}
	for _, l := range d.Labels() {
		allowed[l] = true
	}

	texts := []string{"", "!!!", "sdk marketplace workload hub isv", "日本語のフィードバック"}
	sources := []string{"", "GitHub", "Reddit", "Fabric Community", "ADO", "unknown"}
	scenarios := []string{"", "Partner", "Customer", "Internal", "Other"}
	for _, text := range texts {
		for _, source := range sources {
			for _, scenario := range scenarios {
				got := d.Detect(text, source, scenario, "Contoso")
				if !allowed[got] {
					t.Fatalf("Detect(%q, %q, %q) = %q, not a configured label", text, source, scenario, got)
				}
			}
		}
	}
}

func TestDetectTieBreakFollowsLabelOrder(t *testing.T) {
	d := New(config.AudienceConfig{
		Labels:   []string{"Beta", "Alpha"},
		Default:  "Alpha",
		Keywords: map[string][]string{"Alpha": {"shared"}, "Beta": {"shared"}},
	})
	if got := d.Detect("a shared word", "", "", ""); got != "Beta" {
		t.Errorf("tie should go to the first label, got %s", got)
	}
}

func TestConfiguredSourceBiasReplacesLegacy(t *testing.T) {
	d := New(config.AudienceConfig{
		Labels:     []string{"Developer", "Customer"},
		Default:    "Developer",
		SourceBias: map[string]config.SourceBias{"community": {Audience: "Customer", Weight: 2}},
	})

	if got := d.Detect("", "Fabric Community", "", ""); got != "Customer" {
		t.Errorf("community bias should pick Customer, got %s", got)
	}
	if got := d.Detect("", "Reddit", "Customer", ""); got != "Developer" {
		t.Errorf("legacy scenario bias should not apply, got %s", got)
	}
}

func TestLegacyBiasSkipsUnknownLabels(t *testing.T) {
	d := New(config.AudienceConfig{Labels: []string{"Builder", "Buyer"}, Default: "Buyer"})
	if got := d.Detect("wdk sample", "GitHub", "Internal", ""); got != "Buyer" {
		t.Errorf("Detect() = %s, want Buyer", got)
	}
}
