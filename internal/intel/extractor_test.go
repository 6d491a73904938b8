package intel

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoke-group/presales-cli/internal/model"
	"github.com/evoke-group/presales-cli/internal/search"
	"github.com/evoke-group/presales-cli/pkg/openai"
)

type fakeCompleter struct {
	json string
	err  error
}

func (f *fakeCompleter) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, eris.New("fake: not implemented")
}

func (f *fakeCompleter) Complete(context.Context, openai.CompletionRequest) (string, error) {
	return "", eris.New("fake: not implemented")
}

func (f *fakeCompleter) CompleteJSON(context.Context, openai.CompletionRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.json, nil
}

func sampleReport() *search.Report {
	return &search.Report{
		Company: "Acme",
		Results: []model.SearchResult{
			{Title: "Acme overview", URL: "https://acme.com", Category: search.CategoryCompanyInfo},
		},
	}
}

func TestExtract_NormalizesMissingFields(t *testing.T) {
	client := &fakeCompleter{json: `{"confidence_score": 0.6}`}
	e := NewExtractor(client, "model", DefaultLimits())

	got := e.Extract(context.Background(), sampleReport())

	require.Empty(t, got.Error)
	assert.NotNil(t, got.FinancialData)
	assert.NotNil(t, got.Technologies)
	assert.NotNil(t, got.Technologies.Confirmed)
	assert.NotNil(t, got.VendorsPartners)
	assert.NotNil(t, got.RecentProjects)
	assert.NotNil(t, got.LeadershipTeam)
	assert.InDelta(t, 0.6, got.ConfidenceScore, 0.001)
}

func TestExtract_AppliesListLimits(t *testing.T) {
	var leaders []string
	for i := 0; i < 12; i++ {
		leaders = append(leaders, `{"name": "L", "position": "VP"}`)
	}
	client := &fakeCompleter{json: `{"leadership_team": [` + strings.Join(leaders, ",") + `]}`}
	e := NewExtractor(client, "model", DefaultLimits())

	got := e.Extract(context.Background(), sampleReport())
	assert.Len(t, got.LeadershipTeam, 8)
}

func TestExtract_ParseErrorKeepsTruncatedRaw(t *testing.T) {
	raw := "not json at all " + strings.Repeat("x", 600)
	client := &fakeCompleter{json: raw}
	e := NewExtractor(client, "model", DefaultLimits())

	got := e.Extract(context.Background(), sampleReport())
	assert.Equal(t, "parse_error", got.Error)
	assert.Len(t, got.Raw, 500)
	assert.Nil(t, got.FinancialData, "failed extraction must not fabricate fields")
}

func TestExtract_NoEvidence(t *testing.T) {
	e := NewExtractor(&fakeCompleter{}, "model", DefaultLimits())
	got := e.Extract(context.Background(), &search.Report{Company: "Acme"})
	assert.Equal(t, "no_data", got.Error)
}

func TestExtract_CompletionErrorReported(t *testing.T) {
	client := &fakeCompleter{err: eris.New("rate limited")}
	e := NewExtractor(client, "model", DefaultLimits())

	got := e.Extract(context.Background(), sampleReport())
	assert.Contains(t, got.Error, "completion_error")
}

func TestExtract_ClampsConfidence(t *testing.T) {
	client := &fakeCompleter{json: `{"confidence_score": 3.5}`}
	e := NewExtractor(client, "model", DefaultLimits())

	got := e.Extract(context.Background(), sampleReport())
	assert.InDelta(t, 1.0, got.ConfidenceScore, 0.001)
}
