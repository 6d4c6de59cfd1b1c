package sanitize

import "testing"

func TestTextStripsTagsAndCollapsesWhitespace(t *testing.T) {
	got := Text("  <b>Glow</b>\n\t Aesthetics &amp; Spa ")
	if got != "Glow Aesthetics & Spa" {
		t.Fatalf("expected %q, got %q", "Glow Aesthetics & Spa", got)
	}
}

func TestStripHTMLRemovesEncodedTags(t *testing.T) {
	got := StripHTML("&lt;script&gt;x&lt;/script&gt;Clinic")
	if got != "xClinic" {
		t.Fatalf("expected %q, got %q", "xClinic", got)
	}
}
