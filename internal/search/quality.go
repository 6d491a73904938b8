package search

import (
	"sort"

	"github.com/evoke-group/presales-cli/internal/model"
)

// Quality weights and normalization points. A run with 20 unique URLs,
// all categories covered, and 300-char average snippets scores 1.0.
const (
	volumeWeight   = 0.4
	coverageWeight = 0.3
	depthWeight    = 0.3

	volumeSaturation  = 20
	snippetSaturation = 300.0
)

// AssessQuality grades an aggregated result collection. targetCategories is
// the number of distinct categories a complete run should cover.
func AssessQuality(results []model.SearchResult, targetCategories int) model.QualityMetrics {
	if targetCategories <= 0 {
		targetCategories = 5
	}

	urls := map[string]bool{}
	cats := map[string]bool{}
	var snippetTotal int
	for _, r := range results {
		if r.URL != "" {
			urls[r.URL] = true
		}
		if r.Category != "" {
			cats[r.Category] = true
		}
		snippetTotal += len(r.Snippet)
	}

	var avgSnippet float64
	if len(results) > 0 {
		avgSnippet = float64(snippetTotal) / float64(len(results))
	}

	volume := float64(len(urls)) / volumeSaturation
	if volume > 1 {
		volume = 1
	}
	coverage := float64(len(cats)) / float64(targetCategories)
	if coverage > 1 {
		coverage = 1
	}
	depth := avgSnippet / snippetSaturation
	if depth > 1 {
		depth = 1
	}

	categories := make([]string, 0, len(cats))
	for c := range cats {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	m := model.QualityMetrics{
		Score:             volumeWeight*volume + coverageWeight*coverage + depthWeight*depth,
		TotalResults:      len(results),
		UniqueURLs:        len(urls),
		CategoriesCovered: len(cats),
		Categories:        categories,
		AvgSnippetLength:  avgSnippet,
	}

	if len(urls) < volumeSaturation/2 {
		m.Recommendations = append(m.Recommendations, "low result volume, broaden queries or add engines")
	}
	if !cats[CategoryFinancial] {
		m.Recommendations = append(m.Recommendations, "no financial sources found, try investor relations or finance portals")
	}
	if !cats[CategoryLeadership] {
		m.Recommendations = append(m.Recommendations, "no leadership sources found, try executive team queries")
	}
	if avgSnippet < snippetSaturation/3 {
		m.Recommendations = append(m.Recommendations, "snippets are thin, consider scraping key pages directly")
	}

	return m
}
