// Package googleweb provides a keyless client that scrapes Google's web
// search results page. It yields URLs only; titles are derived from the URL
// path since the markup around result titles changes too often to parse
// reliably.
package googleweb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const defaultBaseURL = "https://www.google.com"

// ErrRateLimited is returned when Google serves a captcha or 429.
var ErrRateLimited = errors.New("googleweb: rate limited")

// Client performs Google web-scrape search operations.
type Client interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// Result is a single search hit. Snippets are not available from the
// scraped page.
type Result struct {
	Title string
	URL   string
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Google web-scrape client. No API key is required.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var (
	redirectLinkRe = regexp.MustCompile(`href="/url\?q=([^"&]+)`)
	titleCaser     = cases.Title(language.English)
)

func (c *httpClient) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("num", "20")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "googleweb: create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "googleweb: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "googleweb: read response")
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("googleweb: unexpected status %d", resp.StatusCode)
	}

	body := string(respBody)
	if strings.Contains(body, "/sorry/index") {
		return nil, ErrRateLimited
	}

	return parseResults(body, maxResults), nil
}

// parseResults extracts target URLs from the /url?q= redirect links on the
// results page, skipping Google's own properties.
func parseResults(body string, maxResults int) []Result {
	matches := redirectLinkRe.FindAllStringSubmatch(body, -1)

	seen := map[string]bool{}
	var results []Result
	for _, m := range matches {
		if maxResults > 0 && len(results) >= maxResults {
			break
		}
		raw, err := url.QueryUnescape(m[1])
		if err != nil {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			continue
		}
		if strings.Contains(u.Host, "google.com") {
			continue
		}
		if seen[raw] {
			continue
		}
		seen[raw] = true
		results = append(results, Result{
			Title: TitleFromURL(u),
			URL:   raw,
		})
	}
	return results
}

// TitleFromURL derives a readable title from the last path segment of a
// URL, falling back to the host when the path is empty.
func TitleFromURL(u *url.URL) string {
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return u.Host
	}
	segments := strings.Split(path, "/")
	slug := segments[len(segments)-1]
	slug = strings.TrimSuffix(slug, ".html")
	slug = strings.TrimSuffix(slug, ".htm")
	slug = strings.ReplaceAll(slug, "-", " ")
	slug = strings.ReplaceAll(slug, "_", " ")
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return u.Host
	}
	return titleCaser.String(slug)
}
