package search

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoke-group/presales-cli/pkg/anthropic"
)

// fakeLLM returns a canned response text.
type fakeLLM struct {
	text string
	err  error
}

func (f *fakeLLM) CreateMessage(context.Context, anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{Text: f.text}, nil
}

func TestBuild_TemplatesOnly(t *testing.T) {
	b := NewQueryBuilder(nil, "", 10)
	queries := b.Build(context.Background(), "Acme Corp", "Manufacturing", "")

	require.NotEmpty(t, queries)
	assert.LessOrEqual(t, len(queries), 10)
	for _, q := range queries {
		assert.Contains(t, q, "Acme Corp")
	}
}

func TestBuild_IncludesIndustryAndFocusVariants(t *testing.T) {
	b := NewQueryBuilder(nil, "", 30)
	queries := b.Build(context.Background(), "Acme Corp", "Manufacturing", "supply chain")

	// 16 base + 3 industry + 2 focus.
	assert.Len(t, queries, 21)
	assert.Contains(t, queries, `"Acme Corp" Manufacturing market share position`)
	assert.Contains(t, queries, `"Acme Corp" supply chain initiatives projects`)
	assert.Contains(t, queries, `"Acme Corp" supply chain strategy roadmap`)
}

func TestBuild_MergesGeneratedQueries(t *testing.T) {
	llm := &fakeLLM{text: `{"queries": ["\"Acme Corp\" sustainability report", "\"Acme Corp\" supply chain"]}`}
	b := NewQueryBuilder(llm, "model", 30)

	queries := b.Build(context.Background(), "Acme Corp", "", "")
	assert.Contains(t, queries, `"Acme Corp" sustainability report`)
}

func TestBuild_LLMFailureDegradesToTemplates(t *testing.T) {
	llm := &fakeLLM{err: eris.New("boom")}
	b := NewQueryBuilder(llm, "model", 30)

	queries := b.Build(context.Background(), "Acme Corp", "", "")
	assert.Equal(t, len(baseQueries("Acme Corp")), len(queries))
}

func TestBuild_CapsAndDeduplicates(t *testing.T) {
	llm := &fakeLLM{text: `{"queries": ["\"Acme Corp\" market position competitive landscape", "extra one", "extra two"]}`}
	b := NewQueryBuilder(llm, "model", 8)

	queries := b.Build(context.Background(), "Acme Corp", "", "")
	assert.LessOrEqual(t, len(queries), 8)

	seen := map[string]bool{}
	for _, q := range queries {
		assert.False(t, seen[q], "duplicate query %q", q)
		seen[q] = true
	}
}

func TestCleanJSONResponse(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanJSONResponse("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSONResponse("Here you go:\n{\"a\":1}\nHope that helps."))
	assert.Equal(t, `{"a":1}`, cleanJSONResponse(`{"a":1}`))
}

func TestTargetedQueries_CoverProfileSites(t *testing.T) {
	queries := TargetedQueries("Acme")
	joined := ""
	for _, q := range queries {
		joined += q + " "
	}
	assert.Contains(t, joined, "linkedin.com")
	assert.Contains(t, joined, "crunchbase.com")
}
