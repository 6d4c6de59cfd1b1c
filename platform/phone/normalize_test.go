package phone

import "testing"

func TestNormalizeE164UKNumber(t *testing.T) {
	got := NormalizeE164("020 7946 0958", "United Kingdom")
	if got != "+442079460958" {
		t.Fatalf("expected +442079460958, got %q", got)
	}
}

func TestNormalizeE164KeepsUnparseableInput(t *testing.T) {
	got := NormalizeE164("  call us  ", "United Kingdom")
	if got != "call us" {
		t.Fatalf("expected trimmed input, got %q", got)
	}
}

func TestRegionForCountry(t *testing.T) {
	cases := map[string]string{
		"United Kingdom": "GB",
		"usa":            "US",
		"nl":             "NL",
		"":               "GB",
		"Atlantis":       "GB",
	}
	for country, want := range cases {
		if got := RegionForCountry(country); got != want {
			t.Errorf("RegionForCountry(%q) = %q, want %q", country, got, want)
		}
	}
}

func TestDigitCount(t *testing.T) {
	if got := DigitCount("+44 (0)20 7946-0958"); got != 13 {
		t.Fatalf("expected 13 digits, got %d", got)
	}
}

func TestFindFirstSkipsShortAndLongRuns(t *testing.T) {
	text := "Open 9 - 5. Ref 12345. Call 020 7946 0958 or 0800 123 4567. Order 1234567890123456789."
	if got := FindFirst(text); got != "020 7946 0958" {
		t.Fatalf("expected %q, got %q", "020 7946 0958", got)
	}
}

func TestFindFirstNoMatch(t *testing.T) {
	if got := FindFirst("no digits here, only 2024"); got != "" {
		t.Fatalf("expected no match, got %q", got)
	}
}

func TestFindFirstDoesNotSpanLines(t *testing.T) {
	if got := FindFirst("Unit 4\n020 7946 0018"); got != "020 7946 0018" {
		t.Fatalf("expected %q, got %q", "020 7946 0018", got)
	}
	if got := FindFirst("020 7946 0018\n0161 496 0000"); got != "020 7946 0018" {
		t.Fatalf("expected %q, got %q", "020 7946 0018", got)
	}
}

func TestFindFirstValid(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "address line above", text: "Unit 4\n020 7946 0018", want: "+442079460018"},
		{name: "numbers on adjacent lines", text: "020 7946 0018\n0161 496 0000", want: "+442079460018"},
		{name: "address digit on same line", text: "Unit 4 020 7946 0018", want: "+442079460018"},
		{name: "two numbers on one line", text: "Tel 020 7946 0018 0161 496 0000", want: "+442079460018"},
		{name: "glued digits never validate", text: "Unit 4020 7946 0018", want: ""},
		{name: "international format", text: "Call +44 20 7946 0958 today", want: "+442079460958"},
		{name: "no number", text: "Open daily 9 - 5", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindFirstValid(tt.text, "United Kingdom"); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
