// Package duckduckgo provides a keyless client for the DuckDuckGo HTML
// search endpoint.
package duckduckgo

import (
	"context"
	"errors"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://html.duckduckgo.com"

// ErrRateLimited is returned when DuckDuckGo throttles the client.
var ErrRateLimited = errors.New("duckduckgo: rate limited")

// Client performs DuckDuckGo search operations.
type Client interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// Result is a single search hit from the HTML results page.
type Result struct {
	Title   string
	Snippet string
	URL     string
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default endpoint base URL.
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

// NewClient creates a DuckDuckGo client. No API key is required.
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
	resultLinkRe    = regexp.MustCompile(`(?s)<a[^>]+class="result__a"[^>]+href="([^"]+)"[^>]*>(.*?)</a>`)
	resultSnippetRe = regexp.MustCompile(`(?s)<a[^>]+class="result__snippet"[^>]*>(.*?)</a>`)
	tagRe           = regexp.MustCompile(`<[^>]+>`)
)

func (c *httpClient) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	form := url.Values{}
	form.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/html/", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "duckduckgo: create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "duckduckgo: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "duckduckgo: read response")
	}

	// DuckDuckGo answers throttled clients with 202 challenge pages or 429.
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusAccepted {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("duckduckgo: unexpected status %d", resp.StatusCode)
	}

	body := string(respBody)
	if strings.Contains(body, "anomaly-modal") {
		return nil, ErrRateLimited
	}

	return parseResults(body, maxResults), nil
}

// parseResults extracts title, link and snippet triples from the HTML
// results page. Links and snippets appear in document order, so the nth
// snippet belongs to the nth link.
func parseResults(body string, maxResults int) []Result {
	links := resultLinkRe.FindAllStringSubmatch(body, -1)
	snippets := resultSnippetRe.FindAllStringSubmatch(body, -1)

	var results []Result
	for i, m := range links {
		if maxResults > 0 && len(results) >= maxResults {
			break
		}
		link := unwrapRedirect(html.UnescapeString(m[1]))
		if link == "" {
			continue
		}
		title := cleanHTML(m[2])
		snippet := ""
		if i < len(snippets) {
			snippet = cleanHTML(snippets[i][1])
		}
		results = append(results, Result{
			Title:   title,
			Snippet: snippet,
			URL:     link,
		})
	}
	return results
}

// unwrapRedirect resolves DuckDuckGo's /l/?uddg= redirect links to their
// target URL.
func unwrapRedirect(link string) string {
	if strings.HasPrefix(link, "//") {
		link = "https:" + link
	}
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && u.Path == "/l/" {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	return link
}

func cleanHTML(s string) string {
	s = tagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(html.UnescapeString(s))
}
