package enrichment

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestEmailsRejectsAssetsAndNoise(t *testing.T) {
	ex := NewExtractor(DefaultRules())
	markup := `
		<img src="/img/logo@2x.png">
		<script src="bundle@1.2.js"></script>
		<a href="mailto:Info@Acme.com">Info@Acme.com</a>
		<span>pixel: someone@tracking-pixel.com</span>
		<meta content="noreply@acme.com">
		<p>ld: user@schema.org</p>
		<p>Sales: sales@acme.com.</p>`

	got := ex.Emails(markup)
	want := []string{"info@acme.com", "sales@acme.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestEmailsNoiseDomainsMatchWholeLabels(t *testing.T) {
	ex := NewExtractor(DefaultRules())
	tests := []struct {
		email string
		want  bool
	}{
		{email: "info@mydomain.com", want: true},
		{email: "hello@sentryhomes.co.uk", want: true},
		{email: "bookings@cloudflarecafe.com", want: true},
		{email: "user@domain.com", want: false},
		{email: "abc123@o450.ingest.sentry.io", want: false},
		{email: "f00d@sentry-next.wixpress.com", want: false},
		{email: "you@example.com", want: false},
		{email: "someone@tracking-pixel.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got := len(ex.Emails("<p>"+tt.email+"</p>")) == 1
			if got != tt.want {
				t.Fatalf("expected accepted=%v for %s, got %v", tt.want, tt.email, got)
			}
		})
	}
}

func TestPickEmailPreference(t *testing.T) {
	ex := NewExtractor(DefaultRules())
	cases := []struct {
		name       string
		candidates []string
		website    string
		want       string
	}{
		{"own domain wins over prefix", []string{"info@gmail.com", "jane@acme.com"}, "https://www.acme.com", "jane@acme.com"},
		{"subdomain shares registrable domain", []string{"bob@other.com", "desk@mail.acme.co.uk"}, "shop.acme.co.uk", "desk@mail.acme.co.uk"},
		{"prefix order when no domain match", []string{"jo@x.com", "hello@y.com", "info@z.com"}, "https://acme.com", "info@z.com"},
		{"first remaining otherwise", []string{"jo@x.com", "amy@y.com"}, "https://acme.com", "jo@x.com"},
		{"empty", nil, "https://acme.com", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ex.PickEmail(tc.candidates, tc.website); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestPickEmailScenarioOwnDomain(t *testing.T) {
	ex := NewExtractor(DefaultRules())
	markup := `<p>support@othersite.com</p><p>someone@tracking-pixel.com</p><footer>info@acme.com</footer>`
	if got := ex.PickEmail(ex.Emails(markup), "acme.com"); got != "info@acme.com" {
		t.Fatalf("expected info@acme.com, got %q", got)
	}
}

func TestSocialHandle(t *testing.T) {
	ex := NewExtractor(DefaultRules())
	cases := []struct {
		name   string
		markup string
		want   string
	}{
		{"instagram profile", `<a href="https://www.instagram.com/acme_spa/">IG</a>`, "acme_spa"},
		{"reserved segments skipped", `<a href="https://instagram.com/p/Cx1">post</a><a href="https://instagram.com/explore/">x</a><a href="//instagram.com/acme.spa">ig</a>`, "acme.spa"},
		{"instagram preferred over facebook", `<a href="https://facebook.com/acmespa">fb</a><a href="https://instagram.com/acme">ig</a>`, "acme"},
		{"facebook fallback", `<a href="https://www.facebook.com/sharer.php?u=x">s</a><a href="https://www.facebook.com/AcmeSpa">fb</a>`, "facebook:AcmeSpa"},
		{"tiktok strips at", `<a href="https://www.tiktok.com/@acmespa">tt</a>`, "tiktok:acmespa"},
		{"none", `<a href="https://twitter.com/acme">x</a>`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ex.SocialHandle(tc.markup); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRegistrableDomain(t *testing.T) {
	cases := map[string]string{
		"https://www.acme.com/contact": "acme.com",
		"shop.acme.co.uk":              "acme.co.uk",
		"acme.com":                     "acme.com",
		"":                             "",
	}
	for in, want := range cases {
		if got := registrableDomain(in); got != want {
			t.Errorf("registrableDomain(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadRulesOverridesOnlyGivenFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := "contact_paths:\n  - /get-in-touch\nnoise_tokens:\n  - SPAMTRAP\nmin_content_bytes: 50\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(rules.ContactPaths, []string{"/get-in-touch"}) {
		t.Fatalf("expected overridden contact paths, got %v", rules.ContactPaths)
	}
	if !reflect.DeepEqual(rules.NoiseTokens, []string{"spamtrap"}) {
		t.Fatalf("expected lower-cased noise tokens, got %v", rules.NoiseTokens)
	}
	if rules.MinContentBytes != 50 {
		t.Fatalf("expected 50, got %d", rules.MinContentBytes)
	}
	if !reflect.DeepEqual(rules.PreferredPrefixes, DefaultRules().PreferredPrefixes) {
		t.Fatalf("expected default prefixes to survive, got %v", rules.PreferredPrefixes)
	}
}

func TestLoadRulesEmptyPathReturnsDefaults(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(rules, DefaultRules()) {
		t.Fatalf("expected defaults")
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
