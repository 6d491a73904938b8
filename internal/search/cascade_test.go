package search

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoke-group/presales-cli/internal/model"
)

// fakeEngine serves canned results and records how often it was called.
type fakeEngine struct {
	name      string
	available bool
	results   []model.SearchResult
	err       error
	calls     int
}

func (f *fakeEngine) Name() string    { return f.name }
func (f *fakeEngine) Available() bool { return f.available }

func (f *fakeEngine) Search(context.Context, string, int) ([]model.SearchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func results(urls ...string) []model.SearchResult {
	out := make([]model.SearchResult, len(urls))
	for i, u := range urls {
		out[i] = model.SearchResult{Source: "fake", Title: "t", URL: u}
	}
	return out
}

func TestCascade_DeduplicatesAcrossEnginesAndQueries(t *testing.T) {
	first := &fakeEngine{name: "first", available: true, results: results("https://a.com", "https://b.com")}
	second := &fakeEngine{name: "second", available: true, results: results("https://b.com", "https://c.com")}

	c := NewCascade([]Engine{first, second}, CascadeConfig{TargetPerQuery: 10, StopFraction: 0.9})
	got, err := c.Run(context.Background(), []string{"q1", "q2"})
	require.NoError(t, err)

	seen := map[string]int{}
	for _, r := range got {
		seen[r.URL]++
	}
	for url, count := range seen {
		assert.Equal(t, 1, count, "url %s duplicated", url)
	}
	assert.Len(t, got, 3)
}

func TestCascade_EarlyStopSkipsLaterEngines(t *testing.T) {
	first := &fakeEngine{name: "first", available: true,
		results: results("https://a.com", "https://b.com", "https://c.com", "https://d.com")}
	second := &fakeEngine{name: "second", available: true, results: results("https://e.com")}

	// Target 5 at fraction 0.7 stops at 3 collected.
	c := NewCascade([]Engine{first, second}, CascadeConfig{TargetPerQuery: 5, StopFraction: 0.7})
	_, err := c.Run(context.Background(), []string{"q"})
	require.NoError(t, err)

	assert.Equal(t, 1, first.calls)
	assert.Zero(t, second.calls, "target met by first engine")
}

func TestCascade_FailedEngineCascades(t *testing.T) {
	first := &fakeEngine{name: "first", available: true, err: eris.New("boom")}
	second := &fakeEngine{name: "second", available: true, results: results("https://a.com")}

	c := NewCascade([]Engine{first, second}, CascadeConfig{TargetPerQuery: 5})
	got, err := c.Run(context.Background(), []string{"q"})
	require.NoError(t, err)

	assert.Len(t, got, 1)
	assert.Equal(t, 1, second.calls)
}

func TestCascade_SkipsUnavailableEngines(t *testing.T) {
	keyed := &fakeEngine{name: "keyed", available: false, results: results("https://a.com")}
	open := &fakeEngine{name: "open", available: true, results: results("https://b.com")}

	c := NewCascade([]Engine{keyed, open}, CascadeConfig{TargetPerQuery: 5})
	got, err := c.Run(context.Background(), []string{"q"})
	require.NoError(t, err)

	assert.Zero(t, keyed.calls)
	require.Len(t, got, 1)
	assert.Equal(t, "https://b.com", got[0].URL)
}

func TestCascade_AssignsCategories(t *testing.T) {
	engine := &fakeEngine{name: "e", available: true,
		results: results("https://finance.yahoo.com/quote/ACME")}

	c := NewCascade([]Engine{engine}, CascadeConfig{TargetPerQuery: 5})
	got, err := c.Run(context.Background(), []string{"q"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, CategoryFinancial, got[0].Category)
}
