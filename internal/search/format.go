package search

import (
	"fmt"
	"strings"

	"github.com/evoke-group/presales-cli/internal/model"
)

// categoryOrder fixes the section order of formatted reports.
var categoryOrder = []string{
	CategoryCompanyInfo,
	CategoryFinancial,
	CategoryLeadership,
	CategoryNews,
	CategoryGeneral,
}

var categoryHeadings = map[string]string{
	CategoryCompanyInfo: "Company Information",
	CategoryFinancial:   "Financial",
	CategoryLeadership:  "Leadership",
	CategoryNews:        "News & Announcements",
	CategoryGeneral:     "Other Sources",
}

// FormatReport renders a report as category-grouped text suitable both for
// terminal display and as LLM extraction input.
func FormatReport(report *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Research: %s\n", report.Company)
	if report.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", report.Industry)
	}
	fmt.Fprintf(&b, "Results: %d unique sources, quality %.2f\n", report.Quality.UniqueURLs, report.Quality.Score)

	grouped := map[string][]model.SearchResult{}
	for _, res := range report.Results {
		grouped[res.Category] = append(grouped[res.Category], res)
	}

	for _, category := range categoryOrder {
		results := grouped[category]
		if len(results) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s (%d)\n", categoryHeadings[category], len(results))
		for _, res := range results {
			fmt.Fprintf(&b, "- %s\n  %s\n", res.Title, res.URL)
			if res.Snippet != "" {
				fmt.Fprintf(&b, "  %s\n", res.Snippet)
			}
		}
	}

	for _, page := range report.Pages {
		fmt.Fprintf(&b, "\n## Page: %s (%s)\n%s\n", page.Title, page.URL, page.Text)
	}

	return b.String()
}
