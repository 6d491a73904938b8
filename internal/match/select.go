package match

import (
	"context"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/evoke-group/presales-cli/internal/embedding"
	"github.com/evoke-group/presales-cli/internal/model"
)

// Selector ranks portfolio records against prospect criteria.
type Selector struct {
	embedder embedding.Embedder
}

// NewSelector creates a selector over the given embedder.
func NewSelector(embedder embedding.Embedder) *Selector {
	return &Selector{embedder: embedder}
}

// Select scores the records against the criteria and returns the top limit
// candidates in descending score order. Records sharing a score keep their
// portfolio order. An industry pre-filter narrows the field first; when it
// matches nothing, all records are considered.
func (s *Selector) Select(ctx context.Context, records []model.Record, c Criteria, limit int) ([]model.ScoredCandidate, error) {
	if len(records) == 0 {
		return nil, nil
	}

	pool := filterByIndustry(records, c.Industry)
	if len(pool) == 0 {
		zap.L().Debug("industry pre-filter matched nothing, scoring all records",
			zap.String("industry", c.Industry),
		)
		pool = records
	}

	queryVec, err := s.embedder.EmbedQuery(ctx, queryText(c))
	if err != nil {
		return nil, eris.Wrap(err, "match: embed criteria")
	}

	recordVecs, err := s.embedder.EmbedRecords(ctx, records)
	if err != nil {
		return nil, eris.Wrap(err, "match: embed records")
	}

	candidates := make([]model.ScoredCandidate, 0, len(pool))
	for _, rec := range pool {
		var sim float64
		if rec.Row < len(recordVecs) {
			sim = embedding.Cosine(queryVec, recordVecs[rec.Row])
		}
		candidates = append(candidates, ScoreRecord(rec, sim, c))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MatchScore > candidates[j].MatchScore
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// filterByIndustry keeps records whose industry contains the target as a
// case-insensitive substring. It is deliberately narrower than the scoring
// affinity; misses fall back to scoring everything.
func filterByIndustry(records []model.Record, industry string) []model.Record {
	needle := strings.ToLower(strings.TrimSpace(industry))
	if needle == "" {
		return records
	}
	var kept []model.Record
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Industry), needle) {
			kept = append(kept, rec)
		}
	}
	return kept
}

// queryText builds the embedded prospect description from the criteria.
func queryText(c Criteria) string {
	text := c.Industry
	for _, tech := range c.Technologies {
		text += " " + tech
	}
	if c.Focus != "" {
		text += " " + c.Focus
	}
	return text
}
