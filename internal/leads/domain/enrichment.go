package domain

// FieldStatus distinguishes a genuinely absent value from a failed crawl.
// The pipeline treats StatusNotFound and StatusError the same way at the batch level.
type FieldStatus string

const (
	StatusFound    FieldStatus = "found"
	StatusNotFound FieldStatus = "not_found"
	StatusError    FieldStatus = "error"
)

// FieldResult is the outcome for one extracted contact field.
type FieldResult struct {
	Status FieldStatus
	Value  string
	Err    string
}

// Found builds a found result.
func Found(value string) FieldResult {
	return FieldResult{Status: StatusFound, Value: value}
}

// NotFound builds a not-found result.
func NotFound() FieldResult {
	return FieldResult{Status: StatusNotFound}
}

// Failed builds an error result.
func Failed(err error) FieldResult {
	return FieldResult{Status: StatusError, Err: err.Error()}
}

// EnrichmentResult is the output of crawling one lead's website.
// Skipped is set for leads that had no website or no contact gap.
type EnrichmentResult struct {
	Website      string
	Skipped      bool
	Email        FieldResult
	Phone        FieldResult
	SocialHandle FieldResult
}

// Any reports whether at least one field was found.
func (r EnrichmentResult) Any() bool {
	return r.Email.Status == StatusFound || r.Phone.Status == StatusFound || r.SocialHandle.Status == StatusFound
}
