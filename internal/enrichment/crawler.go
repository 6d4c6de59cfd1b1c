package enrichment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultCrawlTimeout = 10 * time.Second
	defaultMaxBodyBytes = 2 * 1024 * 1024

	blockSelector = "p, div, li, tr, td, th, h1, h2, h3, h4, h5, h6, address, section, header, footer, article"
)

// Page is one fetched website page.
type Page struct {
	URL    string
	Markup string
	Text   string
	// Mailto holds addresses from mailto: links, which often survive obfuscated body text.
	Mailto []string
}

// Crawler fetches lead websites.
type Crawler struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// NewCrawler creates a crawler. A nil client gets one with timeout.
func NewCrawler(client *http.Client, timeout time.Duration, userAgent string, maxBody int64) *Crawler {
	if timeout <= 0 {
		timeout = defaultCrawlTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &Crawler{client: client, userAgent: userAgent, maxBody: maxBody}
}

// Fetch downloads and parses rawURL. Non-2xx responses are errors.
func (c *Crawler) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("website %s responded with status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	doc.Find("script, style, noscript").Remove()
	// Text() joins sibling nodes without a separator; keep block boundaries on separate lines.
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockSelector).AppendHtml("\n")

	page := &Page{
		URL:    rawURL,
		Markup: string(body),
		Text:   strings.TrimSpace(doc.Find("body").Text()),
	}
	doc.Find(`a[href]`).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.HasPrefix(strings.ToLower(href), "mailto:") {
			return
		}
		addr := href[len("mailto:"):]
		if idx := strings.Index(addr, "?"); idx != -1 {
			addr = addr[:idx]
		}
		if decoded, err := url.QueryUnescape(addr); err == nil {
			addr = decoded
		}
		if addr = strings.TrimSpace(addr); addr != "" {
			page.Mailto = append(page.Mailto, addr)
		}
	})
	return page, nil
}

// normalizeWebsite returns an absolute http(s) URL for a stored website value.
func normalizeWebsite(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty website")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("unsupported website %q", raw)
	}
	return u, nil
}
