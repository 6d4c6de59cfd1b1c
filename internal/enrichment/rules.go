package enrichment

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultMinContentBytes = 200

// Rules holds the tunable heuristics. Zero-valued fields in an override file
// keep their defaults.
type Rules struct {
	ContactPaths           []string `yaml:"contact_paths"`
	RejectedExtensions     []string `yaml:"rejected_extensions"`
	NoiseTokens            []string `yaml:"noise_tokens"`
	NoiseDomains           []string `yaml:"noise_domains"`
	PreferredPrefixes      []string `yaml:"preferred_prefixes"`
	ReservedSocialSegments []string `yaml:"reserved_social_segments"`
	MinContentBytes        int      `yaml:"min_content_bytes"`
}

var (
	defaultContactPaths       = []string{"/contact", "/contact-us", "/about", "/about-us"}
	defaultRejectedExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico", ".bmp", ".js", ".css"}
	defaultPreferredPrefixes  = []string{"info@", "hello@", "contact@", "enquiries@", "bookings@", "reception@"}

	// Matched anywhere in the address.
	defaultNoiseTokens = []string{"tracking", "schema.org", "noreply", "no-reply", "donotreply", "yourname"}

	// Matched against the address domain: a dotted entry matches the domain or a
	// subdomain of it, a bare label matches any whole label of the domain.
	defaultNoiseDomains = []string{
		"sentry", "wixpress", "godaddy", "cloudflare",
		"example.com", "domain.com", "email.com",
	}

	// Path segments on social hosts that are not profiles.
	defaultReservedSocialSegments = []string{
		"p", "reel", "reels", "stories", "explore", "accounts", "about",
		"sharer", "sharer.php", "share", "plugins", "tr", "login", "help", "legal",
		"privacy", "policies", "watch", "tag", "hashtag", "pages", "profile.php",
	}
)

// DefaultRules returns the built-in heuristics.
func DefaultRules() Rules {
	return Rules{
		ContactPaths:           append([]string(nil), defaultContactPaths...),
		RejectedExtensions:     append([]string(nil), defaultRejectedExtensions...),
		NoiseTokens:            append([]string(nil), defaultNoiseTokens...),
		NoiseDomains:           append([]string(nil), defaultNoiseDomains...),
		PreferredPrefixes:      append([]string(nil), defaultPreferredPrefixes...),
		ReservedSocialSegments: append([]string(nil), defaultReservedSocialSegments...),
		MinContentBytes:        defaultMinContentBytes,
	}
}

// LoadRules reads a YAML override file on top of the defaults.
// An empty path returns the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if strings.TrimSpace(path) == "" {
		return rules, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("read enrichment rules: %w", err)
	}

	var override Rules
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return rules, fmt.Errorf("parse enrichment rules: %w", err)
	}

	if len(override.ContactPaths) > 0 {
		rules.ContactPaths = override.ContactPaths
	}
	if len(override.RejectedExtensions) > 0 {
		rules.RejectedExtensions = lowerAll(override.RejectedExtensions)
	}
	if len(override.NoiseTokens) > 0 {
		rules.NoiseTokens = lowerAll(override.NoiseTokens)
	}
	if len(override.NoiseDomains) > 0 {
		rules.NoiseDomains = lowerAll(override.NoiseDomains)
	}
	if len(override.PreferredPrefixes) > 0 {
		rules.PreferredPrefixes = lowerAll(override.PreferredPrefixes)
	}
	if len(override.ReservedSocialSegments) > 0 {
		rules.ReservedSocialSegments = lowerAll(override.ReservedSocialSegments)
	}
	if override.MinContentBytes > 0 {
		rules.MinContentBytes = override.MinContentBytes
	}
	return rules, nil
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
