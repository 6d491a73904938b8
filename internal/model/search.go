package model

// SearchResult is a single web hit from one of the search engines.
type SearchResult struct {
	Source   string `json:"source"`
	Query    string `json:"query"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	URL      string `json:"url"`
	Category string `json:"category"`
}

// QualityMetrics assesses how adequate an aggregated result collection is.
// Score is a composite in [0, 1] used to decide whether additional targeted
// queries are worth issuing.
type QualityMetrics struct {
	Score             float64  `json:"quality_score"`
	TotalResults      int      `json:"total_results"`
	UniqueURLs        int      `json:"unique_urls"`
	CategoriesCovered int      `json:"categories_covered"`
	Categories        []string `json:"categories"`
	AvgSnippetLength  float64  `json:"avg_snippet_length"`
	Recommendations   []string `json:"recommendations"`
}
