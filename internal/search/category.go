package search

import "strings"

// Result categories used for quality grading and report grouping.
const (
	CategoryFinancial   = "financial"
	CategoryLeadership  = "leadership"
	CategoryNews        = "news"
	CategoryCompanyInfo = "company_info"
	CategoryGeneral     = "general"
)

var categoryMarkers = []struct {
	category string
	markers  []string
}{
	{CategoryFinancial, []string{
		"finance.yahoo", "investor", "earnings", "stock", "revenue",
		"annual-report", "sec.gov", "10-k", "financial",
	}},
	{CategoryLeadership, []string{
		"leadership", "executive", "linkedin.com/in", "management-team",
		"board-of-directors", "ceo", "cio", "cto",
	}},
	{CategoryNews, []string{
		"news", "press", "announce", "/blog", "article", "prnewswire",
		"businesswire",
	}},
	{CategoryCompanyInfo, []string{
		"about", "company", "overview", "wikipedia", "crunchbase",
		"linkedin.com/company", "/profile",
	}},
}

// Categorize assigns a result to a category by looking for marker
// substrings in its URL and title. First matching category wins, so
// financial markers outrank leadership and so on.
func Categorize(url, title string) string {
	haystack := strings.ToLower(url + " " + title)
	for _, cm := range categoryMarkers {
		for _, marker := range cm.markers {
			if strings.Contains(haystack, marker) {
				return cm.category
			}
		}
	}
	return CategoryGeneral
}
