// Package embedding generates and caches embedding vectors for portfolio
// records.
package embedding

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/evoke-group/presales-cli/internal/model"
	"github.com/evoke-group/presales-cli/pkg/openai"
)

// Embedder produces one vector per record.
type Embedder interface {
	EmbedRecords(ctx context.Context, records []model.Record) ([][]float32, error)
	// EmbedQuery embeds a single free-text query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Config tunes the embedder.
type Config struct {
	Dimensions int
	BatchSize  int
	CachePath  string
}

// Service embeds records through OpenAI with an on-disk cache keyed by the
// workbook's modification time and record count.
type Service struct {
	client openai.Client
	cfg    Config

	// sourceMtime identifies the workbook snapshot the records came from.
	sourceMtime func() time.Time
}

// NewService creates an embedder. sourceMtime reports the modification time
// of the record source so cached vectors can be invalidated when it changes.
func NewService(client openai.Client, cfg Config, sourceMtime func() time.Time) *Service {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = 1536
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	return &Service{client: client, cfg: cfg, sourceMtime: sourceMtime}
}

// cacheFile is the persisted embedding cache.
type cacheFile struct {
	SourceMtime int64       `json:"source_mtime"`
	RowCount    int         `json:"row_count"`
	Embeddings  [][]float32 `json:"embeddings"`
}

// EmbedRecords returns one vector per record, serving from the cache when
// the workbook and row count are unchanged. Batches that fail after retries
// contribute zero vectors rather than failing the whole set.
func (s *Service) EmbedRecords(ctx context.Context, records []model.Record) ([][]float32, error) {
	mtime := time.Time{}
	if s.sourceMtime != nil {
		mtime = s.sourceMtime()
	}

	if cached := s.loadCache(mtime, len(records)); cached != nil {
		zap.L().Debug("embedding cache hit", zap.Int("vectors", len(cached)))
		return cached, nil
	}

	vectors := make([][]float32, 0, len(records))
	for start := 0; start < len(records); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(records) {
			end = len(records)
		}

		texts := make([]string, 0, end-start)
		for _, rec := range records[start:end] {
			texts = append(texts, RecordText(rec))
		}

		batch, err := s.client.EmbedBatch(ctx, texts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrap(err, "embedding: batch cancelled")
			}
			zap.L().Warn("embedding batch failed, padding with zero vectors",
				zap.Int("start", start),
				zap.Int("size", end-start),
				zap.Error(err),
			)
			for range texts {
				vectors = append(vectors, make([]float32, s.cfg.Dimensions))
			}
			continue
		}
		vectors = append(vectors, batch...)
	}

	s.saveCache(mtime, len(records), vectors)
	return vectors, nil
}

// EmbedQuery embeds a single text. Query embeddings are never cached.
func (s *Service) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	batch, err := s.client.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, eris.Wrap(err, "embedding: embed query")
	}
	return batch[0], nil
}

// loadCache returns cached vectors when the source snapshot matches, nil
// otherwise. Corrupt cache files are treated as a miss.
func (s *Service) loadCache(mtime time.Time, rowCount int) [][]float32 {
	if s.cfg.CachePath == "" {
		return nil
	}

	data, err := os.ReadFile(s.cfg.CachePath)
	if err != nil {
		return nil
	}

	var cached cacheFile
	if err := json.Unmarshal(data, &cached); err != nil {
		zap.L().Warn("embedding cache unreadable, regenerating",
			zap.String("path", s.cfg.CachePath),
			zap.Error(err),
		)
		return nil
	}

	if cached.SourceMtime != mtime.UnixNano() || cached.RowCount != rowCount {
		return nil
	}
	if len(cached.Embeddings) != rowCount {
		return nil
	}
	return cached.Embeddings
}

// saveCache persists the vectors atomically via a temp file rename. Cache
// write failures are logged, not returned; the vectors are still usable.
func (s *Service) saveCache(mtime time.Time, rowCount int, vectors [][]float32) {
	if s.cfg.CachePath == "" {
		return
	}

	data, err := json.Marshal(cacheFile{
		SourceMtime: mtime.UnixNano(),
		RowCount:    rowCount,
		Embeddings:  vectors,
	})
	if err != nil {
		zap.L().Warn("embedding cache marshal failed", zap.Error(err))
		return
	}

	dir := filepath.Dir(s.cfg.CachePath)
	tmp, err := os.CreateTemp(dir, ".embeddings-*.json")
	if err != nil {
		zap.L().Warn("embedding cache write failed", zap.Error(err))
		return
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()        //nolint:errcheck
		os.Remove(tmpName) //nolint:errcheck
		zap.L().Warn("embedding cache write failed", zap.Error(err))
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		zap.L().Warn("embedding cache write failed", zap.Error(err))
		return
	}
	if err := os.Rename(tmpName, s.cfg.CachePath); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		zap.L().Warn("embedding cache rename failed", zap.Error(err))
	}
}

// RecordText builds the text embedded for a record by joining its
// descriptive fields.
func RecordText(rec model.Record) string {
	parts := []string{
		rec.ClientName,
		rec.Industry,
		rec.Technologies,
		rec.BusinessCase,
		rec.Solution,
		rec.Deliverables,
		rec.Problem,
	}
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}
