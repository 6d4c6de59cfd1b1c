package enrichment

import (
	"net/url"
	"regexp"
	"strings"

	"leadgen_backend/platform/phone"

	"golang.org/x/net/publicsuffix"
)

var (
	emailRegex  = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	socialRegex = regexp.MustCompile(`(?i)(?:https?:)?//(?:www\.|m\.)?(instagram\.com|facebook\.com|fb\.com|tiktok\.com)/(@?[a-z0-9_.\-]+)`)
)

const (
	platformInstagram = "instagram"
	platformFacebook  = "facebook"
	platformTikTok    = "tiktok"
)

// Extractor applies the contact heuristics to page markup.
type Extractor struct {
	rules Rules
}

// NewExtractor creates an extractor for rules.
func NewExtractor(rules Rules) *Extractor {
	return &Extractor{rules: rules}
}

// Emails returns the usable addresses in markup, in order of appearance, deduplicated.
func (e *Extractor) Emails(markup string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, match := range emailRegex.FindAllString(markup, -1) {
		email := strings.ToLower(strings.Trim(match, ".-"))
		if !e.acceptEmail(email) {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out
}

func (e *Extractor) acceptEmail(email string) bool {
	for _, ext := range e.rules.RejectedExtensions {
		if strings.HasSuffix(email, ext) {
			return false
		}
	}
	for _, token := range e.rules.NoiseTokens {
		if strings.Contains(email, token) {
			return false
		}
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	return !e.noiseDomain(email[at+1:])
}

func (e *Extractor) noiseDomain(domain string) bool {
	labels := strings.Split(domain, ".")
	for _, noise := range e.rules.NoiseDomains {
		if strings.Contains(noise, ".") {
			if domain == noise || strings.HasSuffix(domain, "."+noise) {
				return true
			}
			continue
		}
		for _, label := range labels {
			if label == noise {
				return true
			}
		}
	}
	return false
}

// PickEmail chooses one address: first on the site's registrable domain, then
// the first with a preferred prefix (in prefix order), then the first overall.
func (e *Extractor) PickEmail(candidates []string, website string) string {
	if len(candidates) == 0 {
		return ""
	}

	if site := registrableDomain(website); site != "" {
		for _, email := range candidates {
			at := strings.LastIndex(email, "@")
			if at >= 0 && registrableDomain(email[at+1:]) == site {
				return email
			}
		}
	}

	for _, prefix := range e.rules.PreferredPrefixes {
		for _, email := range candidates {
			if strings.HasPrefix(email, prefix) {
				return email
			}
		}
	}
	return candidates[0]
}

// SocialHandle returns the first Instagram handle in markup, or failing that
// the first Facebook or TikTok profile as "platform:handle".
func (e *Extractor) SocialHandle(markup string) string {
	fallback := ""
	for _, m := range socialRegex.FindAllStringSubmatch(markup, -1) {
		platform := platformFor(m[1])
		handle := strings.TrimRight(strings.TrimPrefix(m[2], "@"), ".")
		if handle == "" || e.reservedSegment(handle) {
			continue
		}
		if platform == platformInstagram {
			return handle
		}
		if fallback == "" {
			fallback = platform + ":" + handle
		}
	}
	return fallback
}

func (e *Extractor) reservedSegment(segment string) bool {
	lower := strings.ToLower(segment)
	for _, reserved := range e.rules.ReservedSocialSegments {
		if lower == reserved {
			return true
		}
	}
	return false
}

// Phone returns the first number in text that validates for country, as E.164.
func (e *Extractor) Phone(text, country string) string {
	return phone.FindFirstValid(text, country)
}

func platformFor(host string) string {
	switch strings.ToLower(host) {
	case "instagram.com":
		return platformInstagram
	case "tiktok.com":
		return platformTikTok
	default:
		return platformFacebook
	}
}

// registrableDomain reduces a URL or hostname to its eTLD+1 ("shop.acme.co.uk" -> "acme.co.uk").
func registrableDomain(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}
	host := raw
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		host = u.Hostname()
	} else if i := strings.IndexAny(host, "/:"); i >= 0 {
		host = host[:i]
	}
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return ""
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}
