package sources

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	ratingRegex = regexp.MustCompile(`(\d(?:[.,]\d+)?)`)
	countRegex  = regexp.MustCompile(`(\d[\d,]*)`)
)

// ParseRating extracts a 0-5 rating from free text such as "4.5 star rating".
func ParseRating(text string) *float64 {
	match := ratingRegex.FindString(text)
	if match == "" {
		return nil
	}
	value, err := strconv.ParseFloat(strings.Replace(match, ",", ".", 1), 64)
	if err != nil || value < 0 || value > 5 {
		return nil
	}
	return &value
}

// ParseCount extracts a non-negative integer such as "1,204 reviews".
func ParseCount(text string) *int {
	match := countRegex.FindString(text)
	if match == "" {
		return nil
	}
	value, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil || value < 0 {
		return nil
	}
	return &value
}

// CityFromAddress guesses the locality from a comma-separated address:
// the segment before the country (or the last one), with postcode tokens removed.
// "1 High St, London W1D 1AA, UK" -> "London".
func CityFromAddress(address string) string {
	parts := strings.Split(address, ",")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	if len(segments) < 2 {
		return ""
	}

	candidate := segments[len(segments)-1]
	if len(segments) >= 3 || isCountryLike(candidate) {
		candidate = segments[len(segments)-2]
	}

	words := strings.Fields(candidate)
	kept := words[:0]
	for _, w := range words {
		if strings.IndexFunc(w, unicode.IsDigit) >= 0 {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

func isCountryLike(segment string) bool {
	switch strings.ToLower(segment) {
	case "uk", "united kingdom", "gb", "usa", "us", "united states", "ireland", "australia", "canada":
		return true
	}
	return false
}
