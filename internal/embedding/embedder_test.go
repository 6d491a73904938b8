package embedding

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoke-group/presales-cli/internal/model"
	"github.com/evoke-group/presales-cli/pkg/openai"
)

// fakeOpenAI counts embedding calls and can fail specific batches.
type fakeOpenAI struct {
	calls     int
	failCalls map[int]bool
	dims      int
}

func (f *fakeOpenAI) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.failCalls[f.calls] {
		return nil, eris.New("fake: batch failed")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		vec := make([]float32, f.dims)
		vec[0] = float32(len(texts[i]))
		out[i] = vec
	}
	return out, nil
}

func (f *fakeOpenAI) Complete(context.Context, openai.CompletionRequest) (string, error) {
	return "", eris.New("fake: not implemented")
}

func (f *fakeOpenAI) CompleteJSON(context.Context, openai.CompletionRequest) (string, error) {
	return "", eris.New("fake: not implemented")
}

func records(n int) []model.Record {
	recs := make([]model.Record, n)
	for i := range recs {
		recs[i] = model.Record{Row: i, ClientName: "Client", Industry: "Tech"}
	}
	return recs
}

func TestEmbedRecords_Batching(t *testing.T) {
	client := &fakeOpenAI{dims: 4}
	svc := NewService(client, Config{Dimensions: 4, BatchSize: 2}, nil)

	vectors, err := svc.EmbedRecords(context.Background(), records(5))
	require.NoError(t, err)
	assert.Len(t, vectors, 5)
	assert.Equal(t, 3, client.calls, "5 records at batch size 2 is 3 batches")
}

func TestEmbedRecords_ZeroVectorFallback(t *testing.T) {
	client := &fakeOpenAI{dims: 4, failCalls: map[int]bool{2: true}}
	svc := NewService(client, Config{Dimensions: 4, BatchSize: 2}, nil)

	vectors, err := svc.EmbedRecords(context.Background(), records(4))
	require.NoError(t, err)
	require.Len(t, vectors, 4)

	// First batch succeeded, second batch padded with zeros.
	assert.NotZero(t, vectors[0][0])
	assert.Equal(t, make([]float32, 4), vectors[2])
	assert.Equal(t, make([]float32, 4), vectors[3])
}

func TestEmbedRecords_CacheHit(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	mtime := time.Now()
	sourceMtime := func() time.Time { return mtime }

	client := &fakeOpenAI{dims: 4}
	svc := NewService(client, Config{Dimensions: 4, BatchSize: 2, CachePath: cachePath}, sourceMtime)

	recs := records(3)
	_, err := svc.EmbedRecords(context.Background(), recs)
	require.NoError(t, err)
	callsAfterFirst := client.calls

	vectors, err := svc.EmbedRecords(context.Background(), recs)
	require.NoError(t, err)
	assert.Len(t, vectors, 3)
	assert.Equal(t, callsAfterFirst, client.calls, "second load should be served from cache")
}

func TestEmbedRecords_CacheInvalidatedByMtime(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	mtime := time.Now()
	sourceMtime := func() time.Time { return mtime }

	client := &fakeOpenAI{dims: 4}
	svc := NewService(client, Config{Dimensions: 4, BatchSize: 10, CachePath: cachePath}, sourceMtime)

	recs := records(2)
	_, err := svc.EmbedRecords(context.Background(), recs)
	require.NoError(t, err)

	mtime = mtime.Add(time.Minute)
	_, err = svc.EmbedRecords(context.Background(), recs)
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls, "mtime change should force regeneration")
}

func TestRecordText_SkipsEmptyFields(t *testing.T) {
	text := RecordText(model.Record{ClientName: "Acme", Solution: "Built it"})
	assert.Equal(t, "Acme Built it", text)
}
