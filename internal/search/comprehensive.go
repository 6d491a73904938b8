package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/evoke-group/presales-cli/internal/model"
	"github.com/evoke-group/presales-cli/internal/scrape"
	"github.com/evoke-group/presales-cli/pkg/anthropic"
)

// Request identifies the prospect being researched. Industry and Focus
// steer query generation; Website, when supplied, is scraped directly
// instead of waiting for site auto-detection.
type Request struct {
	Company  string
	Industry string
	Focus    string
	Website  string
}

// Report is the aggregated output of a research run.
type Report struct {
	Company  string               `json:"company"`
	Industry string               `json:"industry,omitempty"`
	Results  []model.SearchResult `json:"results"`
	// Pages holds full-text pages scraped to supplement thin snippets:
	// the company site and any finance portal page found.
	Pages   []scrape.Page        `json:"pages,omitempty"`
	Quality model.QualityMetrics `json:"quality"`
}

// ResearcherConfig tunes the gap-filling passes.
type ResearcherConfig struct {
	// QualityThreshold triggers the targeted query batch when the
	// composite quality score stays below it.
	QualityThreshold float64
	// LowVolumeThreshold triggers industry and targeted queries when
	// fewer unique results were collected.
	LowVolumeThreshold int
	// WebsiteThreshold triggers official-website queries and site
	// scraping when fewer unique results were collected.
	WebsiteThreshold int
	// TargetCategories is the category count a complete run covers.
	TargetCategories int
	// LLMModel is the model used for ticker guessing.
	LLMModel string
}

// Researcher runs the full research pipeline for one company: the base
// cascade, finance page detection, website scraping, and quality-driven
// follow-up batches.
type Researcher struct {
	cascade *Cascade
	queries *QueryBuilder
	fetcher *scrape.Fetcher
	llm     anthropic.Client
	cfg     ResearcherConfig
}

// NewResearcher wires the research pipeline. fetcher and llm may be nil;
// the corresponding supplements are then skipped.
func NewResearcher(cascade *Cascade, queries *QueryBuilder, fetcher *scrape.Fetcher, llm anthropic.Client, cfg ResearcherConfig) *Researcher {
	if cfg.QualityThreshold <= 0 {
		cfg.QualityThreshold = 0.5
	}
	if cfg.LowVolumeThreshold <= 0 {
		cfg.LowVolumeThreshold = 15
	}
	if cfg.WebsiteThreshold <= 0 {
		cfg.WebsiteThreshold = 20
	}
	if cfg.TargetCategories <= 0 {
		cfg.TargetCategories = 5
	}
	return &Researcher{cascade: cascade, queries: queries, fetcher: fetcher, llm: llm, cfg: cfg}
}

// Research runs the pipeline for one prospect. Supplement failures degrade
// the report rather than failing it; only context cancellation aborts.
func (r *Researcher) Research(ctx context.Context, req Request) (*Report, error) {
	report := &Report{Company: req.Company, Industry: req.Industry}

	queries := r.queries.Build(ctx, req.Company, req.Industry, req.Focus)
	results, err := r.cascade.Run(ctx, queries)
	if err != nil {
		return nil, err
	}
	report.Results = results

	if req.Website != "" {
		r.addSuppliedSite(ctx, report, req.Website)
	}
	r.addFinancePage(ctx, report)

	if req.Website == "" && uniqueURLs(report.Results) < r.cfg.WebsiteThreshold {
		r.addWebsite(ctx, report)
	}
	if uniqueURLs(report.Results) < r.cfg.LowVolumeThreshold {
		r.addQueryBatch(ctx, report, IndustryQueries(req.Company, req.Industry))
	}

	report.Quality = AssessQuality(report.Results, r.cfg.TargetCategories)
	if report.Quality.Score < r.cfg.QualityThreshold && uniqueURLs(report.Results) < r.cfg.LowVolumeThreshold {
		r.addQueryBatch(ctx, report, TargetedQueries(req.Company))
		report.Quality = AssessQuality(report.Results, r.cfg.TargetCategories)
	}

	zap.L().Info("research run complete",
		zap.String("company", req.Company),
		zap.Int("results", len(report.Results)),
		zap.Int("pages", len(report.Pages)),
		zap.Float64("quality", report.Quality.Score),
	)
	return report, nil
}

// addQueryBatch runs extra queries through the cascade and merges new URLs
// into the report.
func (r *Researcher) addQueryBatch(ctx context.Context, report *Report, queries []string) {
	if len(queries) == 0 {
		return
	}
	extra, err := r.cascade.Run(ctx, queries)
	if err != nil {
		zap.L().Warn("follow-up query batch failed",
			zap.String("company", report.Company),
			zap.Error(err),
		)
		return
	}

	seen := map[string]bool{}
	for _, res := range report.Results {
		seen[res.URL] = true
	}
	for _, res := range extra {
		if seen[res.URL] {
			continue
		}
		seen[res.URL] = true
		report.Results = append(report.Results, res)
	}
}

var quoteURLRe = regexp.MustCompile(`finance\.yahoo\.com/quote/([A-Za-z0-9.\-]+)`)

// addFinancePage locates the company's Yahoo Finance quote page and scrapes
// it. Detection order: quote URLs already in the results, a site-scoped
// search, then an LLM ticker guess as last resort. Private companies simply
// yield nothing.
func (r *Researcher) addFinancePage(ctx context.Context, report *Report) {
	if r.fetcher == nil {
		return
	}

	quoteURL := findQuoteURL(report.Results)
	if quoteURL == "" {
		hits, err := r.cascade.Run(ctx, []string{fmt.Sprintf("%q site:finance.yahoo.com", report.Company)})
		if err == nil {
			quoteURL = findQuoteURL(hits)
		}
	}
	if quoteURL == "" && r.llm != nil {
		if ticker := r.guessTicker(ctx, report.Company); ticker != "" {
			quoteURL = "https://finance.yahoo.com/quote/" + url.PathEscape(ticker)
		}
	}
	if quoteURL == "" {
		return
	}

	page, err := r.fetcher.FetchText(ctx, quoteURL)
	if err != nil {
		zap.L().Debug("finance page fetch failed",
			zap.String("url", quoteURL),
			zap.Error(err),
		)
		return
	}
	report.Pages = append(report.Pages, *page)
	report.Results = append(report.Results, model.SearchResult{
		Source:   "finance_page",
		Title:    page.Title,
		Snippet:  truncate(page.Text, 300),
		URL:      quoteURL,
		Category: CategoryFinancial,
	})
}

func findQuoteURL(results []model.SearchResult) string {
	for _, res := range results {
		if m := quoteURLRe.FindString(res.URL); m != "" {
			return "https://" + m
		}
	}
	return ""
}

type tickerGuess struct {
	Ticker string `json:"ticker"`
}

// guessTicker asks the LLM for the company's stock ticker. Returns empty
// for private companies and on any failure.
func (r *Researcher) guessTicker(ctx context.Context, company string) string {
	prompt := fmt.Sprintf(`What is the stock ticker symbol for the company %q?
Respond with JSON only: {"ticker": "SYM"} for a public company or {"ticker": ""} if it is private or you are unsure.`, company)

	resp, err := r.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     r.cfg.LLMModel,
		MaxTokens: 64,
		Prompt:    prompt,
	})
	if err != nil {
		zap.L().Debug("ticker guess failed", zap.String("company", company), zap.Error(err))
		return ""
	}

	var guess tickerGuess
	if err := json.Unmarshal([]byte(cleanJSONResponse(resp.Text)), &guess); err != nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(guess.Ticker))
}

// addSuppliedSite scrapes the caller-supplied company website.
func (r *Researcher) addSuppliedSite(ctx context.Context, report *Report, website string) {
	if r.fetcher == nil {
		return
	}
	website = strings.TrimRight(strings.TrimSpace(website), "/")
	if website == "" {
		return
	}
	if !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		website = "https://" + website
	}
	r.addSitePages(ctx, report, website)
}

// addWebsite issues official-website queries, then scrapes the most likely
// company site found.
func (r *Researcher) addWebsite(ctx context.Context, report *Report) {
	r.addQueryBatch(ctx, report, AltWebsiteQueries(report.Company))
	if r.fetcher == nil {
		return
	}

	siteURL := findCompanySite(report.Results, report.Company)
	if siteURL == "" {
		return
	}
	r.addSitePages(ctx, report, siteURL)
}

func (r *Researcher) addSitePages(ctx context.Context, report *Report, siteURL string) {
	pages := r.fetcher.FetchSite(ctx, siteURL)
	report.Pages = append(report.Pages, pages...)
	for _, page := range pages {
		report.Results = append(report.Results, model.SearchResult{
			Source:   "company_site",
			Title:    page.Title,
			Snippet:  truncate(page.Text, 300),
			URL:      page.URL,
			Category: CategoryCompanyInfo,
		})
	}
}

// findCompanySite picks the first result whose host contains the simplified
// company name and is not a known profile or news site.
func findCompanySite(results []model.SearchResult, company string) string {
	slug := simplifyName(company)
	if slug == "" {
		return ""
	}
	for _, res := range results {
		u, err := url.Parse(res.URL)
		if err != nil || u.Host == "" {
			continue
		}
		host := strings.ToLower(u.Host)
		if isProfileHost(host) {
			continue
		}
		if strings.Contains(strings.ReplaceAll(host, "-", ""), slug) {
			return u.Scheme + "://" + u.Host
		}
	}
	return ""
}

func isProfileHost(host string) bool {
	for _, known := range []string{
		"linkedin.com", "crunchbase.com", "wikipedia.org", "facebook.com",
		"twitter.com", "x.com", "yahoo.com", "bloomberg.com", "reuters.com",
		"glassdoor.com", "indeed.com", "youtube.com",
	} {
		if strings.HasSuffix(host, known) {
			return true
		}
	}
	return false
}

// simplifyName lower-cases a company name and strips spaces, punctuation,
// and legal suffixes for host matching.
func simplifyName(company string) string {
	name := strings.ToLower(company)
	for _, suffix := range []string{" inc", " inc.", " corp", " corp.", " corporation", " llc", " ltd", " ltd.", " plc", " co.", " company", " group"} {
		name = strings.TrimSuffix(name, suffix)
	}
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func uniqueURLs(results []model.SearchResult) int {
	seen := map[string]bool{}
	for _, res := range results {
		if res.URL != "" {
			seen[res.URL] = true
		}
	}
	return len(seen)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
