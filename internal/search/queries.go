package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/evoke-group/presales-cli/pkg/anthropic"
)

// QueryBuilder assembles the query set for a research run. A base template
// set is always used; an optional LLM pass adds company-specific queries.
type QueryBuilder struct {
	llm        anthropic.Client
	model      string
	maxQueries int
}

// NewQueryBuilder creates a query builder. llm may be nil, in which case
// only template queries are produced.
func NewQueryBuilder(llm anthropic.Client, model string, maxQueries int) *QueryBuilder {
	if maxQueries <= 0 {
		maxQueries = 10
	}
	return &QueryBuilder{llm: llm, model: model, maxQueries: maxQueries}
}

// Build returns the deduplicated query set for a company, capped at the
// configured maximum. Industry and focus add their own template variants;
// LLM failures degrade to the template set.
func (b *QueryBuilder) Build(ctx context.Context, company, industry, focus string) []string {
	queries := baseQueries(company)
	queries = append(queries, IndustryQueries(company, industry)...)
	queries = append(queries, focusQueries(company, focus)...)

	if b.llm != nil {
		generated, err := b.generate(ctx, company, industry, focus)
		if err != nil {
			zap.L().Warn("query generation failed, using template queries",
				zap.String("company", company),
				zap.Error(err),
			)
		} else {
			queries = append(queries, generated...)
		}
	}

	return capQueries(dedupeQueries(queries), b.maxQueries)
}

// baseQueries covers the four intelligence angles a run always needs:
// financial, technology, strategic, and recent news.
func baseQueries(company string) []string {
	return []string{
		fmt.Sprintf("%q financial results revenue earnings", company),
		fmt.Sprintf("%q annual report financial performance", company),
		fmt.Sprintf("%q market capitalization stock price", company),
		fmt.Sprintf("%q quarterly earnings investor relations", company),
		fmt.Sprintf("%q technology stack IT infrastructure", company),
		fmt.Sprintf("%q cloud adoption digital transformation", company),
		fmt.Sprintf("%q software vendors technology partners", company),
		fmt.Sprintf("%q automation AI machine learning", company),
		fmt.Sprintf("%q strategic partnerships alliances", company),
		fmt.Sprintf("%q acquisitions mergers business development", company),
		fmt.Sprintf("%q market position competitive landscape", company),
		fmt.Sprintf("%q business model revenue streams", company),
		fmt.Sprintf("%q recent announcements press releases", company),
		fmt.Sprintf("%q latest news updates developments", company),
		fmt.Sprintf("%q leadership team executives management", company),
		fmt.Sprintf("%q industry trends market analysis", company),
	}
}

// AltWebsiteQueries targets the company's own web presence when the main
// run returned few results.
func AltWebsiteQueries(company string) []string {
	return []string{
		fmt.Sprintf("%q official website", company),
		fmt.Sprintf("%s company website about", company),
	}
}

// IndustryQueries add industry-context queries. They are part of the base
// build and also reissued alone for thin result sets.
func IndustryQueries(company, industry string) []string {
	if industry == "" {
		return nil
	}
	return []string{
		fmt.Sprintf("%q %s market share position", company, industry),
		fmt.Sprintf("%q %s challenges opportunities", company, industry),
		fmt.Sprintf("%q %s technology adoption trends", company, industry),
	}
}

// focusQueries add variants targeting the caller's stated focus area.
func focusQueries(company, focus string) []string {
	if focus == "" {
		return nil
	}
	return []string{
		fmt.Sprintf("%q %s initiatives projects", company, focus),
		fmt.Sprintf("%q %s strategy roadmap", company, focus),
	}
}

// TargetedQueries is the last-resort batch issued when quality stays low:
// profile sites plus investor and press angles.
func TargetedQueries(company string) []string {
	return []string{
		fmt.Sprintf("%q site:linkedin.com/company", company),
		fmt.Sprintf("%q site:crunchbase.com", company),
		fmt.Sprintf("%q investor relations", company),
		fmt.Sprintf("%q press release", company),
	}
}

type generatedQueries struct {
	Queries []string `json:"queries"`
}

// generate asks the LLM for additional company-specific queries.
func (b *QueryBuilder) generate(ctx context.Context, company, industry, focus string) ([]string, error) {
	prompt := fmt.Sprintf(`Generate 3 web search queries to research the company %q`, company)
	if industry != "" {
		prompt += fmt.Sprintf(` in the %s industry`, industry)
	}
	if focus != "" {
		prompt += fmt.Sprintf(`, with emphasis on %s`, focus)
	}
	prompt += `. Focus on angles not covered by generic overview, news, financial, and leadership searches.
Respond with JSON only: {"queries": ["...", "...", "..."]}`

	resp, err := b.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     b.model,
		MaxTokens: 512,
		Prompt:    prompt,
	})
	if err != nil {
		return nil, err
	}

	var parsed generatedQueries
	if err := json.Unmarshal([]byte(cleanJSONResponse(resp.Text)), &parsed); err != nil {
		return nil, err
	}
	return parsed.Queries, nil
}

// cleanJSONResponse strips markdown code fences and surrounding prose from
// an LLM response, keeping the first top-level JSON object.
func cleanJSONResponse(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

func dedupeQueries(queries []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		key := strings.ToLower(q)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
	}
	return out
}

func capQueries(queries []string, max int) []string {
	if len(queries) > max {
		return queries[:max]
	}
	return queries
}
