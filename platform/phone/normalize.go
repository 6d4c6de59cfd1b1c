// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	defaultRegion = "GB"

	minPhoneDigits = 10
	maxPhoneDigits = 15
)

// phoneRunRegex matches digit/punctuation runs that could be a phone number.
// Only horizontal whitespace may appear inside a run, so numbers never span lines.
var phoneRunRegex = regexp.MustCompile(`\+?\(?\d[\d \t\x{00A0}().\-]{7,22}\d`)

var countryRegions = map[string]string{
	"united kingdom": "GB",
	"uk":             "GB",
	"great britain":  "GB",
	"england":        "GB",
	"scotland":       "GB",
	"wales":          "GB",
	"ireland":        "IE",
	"united states":  "US",
	"usa":            "US",
	"canada":         "CA",
	"australia":      "AU",
	"new zealand":    "NZ",
	"netherlands":    "NL",
	"germany":        "DE",
	"france":         "FR",
	"spain":          "ES",
	"italy":          "IT",
}

// RegionForCountry maps a free-text country name (or ISO code) to a phonenumbers region.
// Unknown countries fall back to GB.
func RegionForCountry(country string) string {
	key := strings.ToLower(strings.TrimSpace(country))
	if key == "" {
		return defaultRegion
	}
	if region, ok := countryRegions[key]; ok {
		return region
	}
	if len(key) == 2 {
		return strings.ToUpper(key)
	}
	return defaultRegion
}

// NormalizeE164 formats a phone number to E.164 using the region for country.
// If parsing fails, it returns the trimmed input.
func NormalizeE164(input, country string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	if e164, ok := parseValid(trimmed, RegionForCountry(country)); ok {
		return e164
	}
	return trimmed
}

func parseValid(input, region string) (string, bool) {
	number, err := phonenumbers.Parse(input, region)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return "", false
	}
	return phonenumbers.Format(number, phonenumbers.E164), true
}

// DigitCount returns the number of ASCII digits in s.
func DigitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// FindFirst returns the first digit run in text with a plausible phone length
// (10-15 digits once punctuation is stripped), trimmed. Empty when none qualifies.
func FindFirst(text string) string {
	for _, match := range phoneRunRegex.FindAllString(text, -1) {
		n := DigitCount(match)
		if n >= minPhoneDigits && n <= maxPhoneDigits {
			return strings.TrimSpace(match)
		}
	}
	return ""
}

// FindFirstValid returns the first number in free text that phonenumbers
// accepts for country, formatted as E.164. A run that glues neighbouring
// digits onto a number is narrowed group by group until a valid number is
// left. Empty when nothing validates.
func FindFirstValid(text, country string) string {
	region := RegionForCountry(country)
	for _, match := range phoneRunRegex.FindAllString(text, -1) {
		groups := strings.Fields(match)
		for start := 0; start < len(groups); start++ {
			for end := len(groups); end > start; end-- {
				candidate := strings.Join(groups[start:end], " ")
				n := DigitCount(candidate)
				if n < minPhoneDigits || n > maxPhoneDigits {
					continue
				}
				if e164, ok := parseValid(candidate, region); ok {
					return e164
				}
			}
		}
	}
	return ""
}
