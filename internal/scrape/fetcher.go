// Package scrape fetches web pages and converts them to plaintext for LLM
// extraction.
package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Page is a fetched page reduced to plaintext.
type Page struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	Text       string `json:"text"`
	StatusCode int    `json:"status_code"`
}

// Config tunes the fetcher.
type Config struct {
	Timeout time.Duration
	// MinContentLen is the minimum plaintext length for a page to count
	// as real content.
	MinContentLen int
	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int
}

// Fetcher fetches pages via net/http with block detection.
type Fetcher struct {
	client *http.Client
	cfg    Config
}

// NewFetcher creates a fetcher.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MinContentLen <= 0 {
		cfg.MinContentLen = 200
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 512 * 1024
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		cfg: cfg,
	}
}

// FetchText fetches one URL and returns its plaintext. Blocked, failed, and
// near-empty pages return errors.
func (f *Fetcher) FetchText(ctx context.Context, targetURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(f.cfg.MaxBodyBytes)))
	if err != nil {
		return nil, eris.Wrap(err, "scrape: read body")
	}

	if reason := detectBlock(resp, body); reason != "" {
		return nil, eris.Errorf("scrape: blocked (%s)", reason)
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("scrape: status %d", resp.StatusCode)
	}

	text := stripHTML(string(body))
	if len(text) < f.cfg.MinContentLen {
		return nil, eris.Errorf("scrape: page too thin (%d chars)", len(text))
	}

	return &Page{
		URL:        targetURL,
		Title:      extractTitle(body),
		Text:       text,
		StatusCode: resp.StatusCode,
	}, nil
}

// standardPaths are the company-site pages worth reading beyond the root.
var standardPaths = []string{"", "/about", "/about-us", "/investors", "/news"}

// FetchSite fetches the root and the standard informational pages of a
// company website, keeping pages that yield real content. Failures on
// individual pages are logged and skipped.
func (f *Fetcher) FetchSite(ctx context.Context, baseURL string) []Page {
	baseURL = strings.TrimRight(baseURL, "/")

	var pages []Page
	for _, path := range standardPaths {
		page, err := f.FetchText(ctx, baseURL+path)
		if err != nil {
			if ctx.Err() != nil {
				return pages
			}
			zap.L().Debug("site page skipped",
				zap.String("url", baseURL+path),
				zap.Error(err),
			)
			continue
		}
		pages = append(pages, *page)
	}
	return pages
}

// detectBlock looks for anti-bot responses: Cloudflare challenges, captcha
// pages, and JS-only shells. Returns an empty string when the page is real.
func detectBlock(resp *http.Response, body []byte) string {
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("server") == "cloudflare" {
			return "cloudflare"
		}
	}

	lower := strings.ToLower(string(body))
	if strings.Contains(lower, "checking your browser") || strings.Contains(lower, "cf-browser-verification") {
		return "cloudflare"
	}
	if strings.Contains(lower, "captcha") {
		return "captcha"
	}
	if len(body) < 2000 && strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
		return "js_shell"
	}
	return ""
}

var titleRe = regexp.MustCompile(`(?i)<title[^>]*>(.*?)</title>`)

func extractTitle(body []byte) string {
	m := titleRe.FindSubmatch(body)
	if len(m) > 1 {
		return strings.TrimSpace(string(m[1]))
	}
	return ""
}

var (
	stripTagRe   = regexp.MustCompile(`<[^>]+>`)
	multiSpaceRe = regexp.MustCompile(`[ \t]+`)
	multiNLRe    = regexp.MustCompile(`\n{3,}`)
)

// stripHTML drops script/style/nav/footer blocks, removes tags, decodes
// common entities, and collapses whitespace.
func stripHTML(html string) string {
	for _, tag := range []string{"script", "style", "nav", "footer"} {
		re := regexp.MustCompile(`(?is)<` + tag + `[^>]*>.*?</` + tag + `>`)
		html = re.ReplaceAllString(html, "")
	}

	html = stripTagRe.ReplaceAllString(html, " ")

	r := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	html = r.Replace(html)

	html = multiSpaceRe.ReplaceAllString(html, " ")
	html = multiNLRe.ReplaceAllString(html, "\n\n")

	return strings.TrimSpace(html)
}
