// Package match scores portfolio records against a prospect profile and
// selects the best candidates.
package match

import (
	"fmt"
	"math"
	"strings"

	"github.com/evoke-group/presales-cli/internal/model"
)

// Criteria describes the prospect being matched against the portfolio.
type Criteria struct {
	Industry     string
	Technologies []string
	// Focus is free text whose significant words (longer than 3 chars)
	// are checked against each record's business case and problem.
	Focus string
}

// Signal weights. Scores are capped at 100.
const (
	semanticWeight      = 40.0
	industryExactScore  = 20.0
	industryRelScore    = 10.0
	techExactScore      = 20.0
	techPartialScore    = 10.0
	valueSolutionScore  = 5.0
	valueDeliverScore   = 5.0
	activeBonus         = 5.0
	focusBonus          = 5.0
	minSolutionChars    = 100
	minDeliverableChars = 50
)

// ScoreRecord computes the composite match score for one record. similarity
// is the cosine similarity of the record and prospect embeddings. The score
// for a record depends only on that record and the criteria.
func ScoreRecord(rec model.Record, similarity float64, c Criteria) model.ScoredCandidate {
	var raw float64
	var reasoning []string

	semantic := similarity * semanticWeight
	raw += semantic
	reasoning = append(reasoning, fmt.Sprintf("semantic similarity %.2f contributes %.1f points", similarity, semantic))

	switch industryAffinity(rec.Industry, c.Industry) {
	case affinityExact:
		raw += industryExactScore
		reasoning = append(reasoning, fmt.Sprintf("industry %q matches target %q", rec.Industry, c.Industry))
	case affinityRelated:
		raw += industryRelScore
		reasoning = append(reasoning, fmt.Sprintf("industry %q related to target %q", rec.Industry, c.Industry))
	}

	switch techAffinity(rec.Technologies, c.Technologies) {
	case affinityExact:
		raw += techExactScore
		reasoning = append(reasoning, "technology stack matches requested technologies")
	case affinityRelated:
		raw += techPartialScore
		reasoning = append(reasoning, "technology stack overlaps requested technologies")
	}

	if len(rec.Solution) > minSolutionChars {
		raw += valueSolutionScore
		reasoning = append(reasoning, "detailed solution description")
	}
	if len(rec.Deliverables) > minDeliverableChars {
		raw += valueDeliverScore
		reasoning = append(reasoning, "substantial deliverables")
	}

	if rec.Status == model.StatusActive {
		raw += activeBonus
		reasoning = append(reasoning, "active engagement")
	}

	if focusMatches(rec, c.Focus) {
		raw += focusBonus
		reasoning = append(reasoning, "focus keywords found in business case or problem statement")
	}

	return model.ScoredCandidate{
		Record:             rec,
		MatchScore:         math.Min(100, raw),
		SemanticSimilarity: similarity * 100,
		RawScore:           raw,
		Reasoning:          reasoning,
	}
}

type affinity int

const (
	affinityNone affinity = iota
	affinityRelated
	affinityExact
)

// industryAffinity classifies how closely a record's industry matches the
// target. The target appearing inside the record's industry is an exact
// match; any shared whitespace token is a related match.
func industryAffinity(recorded, target string) affinity {
	recorded = strings.ToLower(strings.TrimSpace(recorded))
	target = strings.ToLower(strings.TrimSpace(target))
	if recorded == "" || target == "" {
		return affinityNone
	}
	if strings.Contains(recorded, target) {
		return affinityExact
	}
	if tokensOverlap(recorded, target) {
		return affinityRelated
	}
	return affinityNone
}

// techAffinity classifies technology overlap. Any requested technology
// appearing verbatim in the record is exact; any shared whitespace token
// across the lists is partial.
func techAffinity(recorded string, requested []string) affinity {
	recorded = strings.ToLower(recorded)
	if recorded == "" || len(requested) == 0 {
		return affinityNone
	}

	for _, tech := range requested {
		tech = strings.ToLower(strings.TrimSpace(tech))
		if tech != "" && strings.Contains(recorded, tech) {
			return affinityExact
		}
	}
	if tokensOverlap(recorded, strings.ToLower(strings.Join(requested, " "))) {
		return affinityRelated
	}
	return affinityNone
}

// focusMatches reports whether any significant focus word appears in the
// record's business case or problem statement.
func focusMatches(rec model.Record, focus string) bool {
	haystack := strings.ToLower(rec.BusinessCase + " " + rec.Problem)
	for _, word := range significantWords(focus) {
		if strings.Contains(haystack, word) {
			return true
		}
	}
	return false
}

// tokensOverlap reports whether the two texts share any whitespace token,
// however short.
func tokensOverlap(a, b string) bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(a) {
		set[w] = true
	}
	for _, w := range strings.Fields(b) {
		if set[w] {
			return true
		}
	}
	return false
}

// significantWords lower-cases and splits text, keeping words longer than
// three characters.
func significantWords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r == ' ' || r == ',' || r == ';' || r == '/' || r == '&' || r == '\t' || r == '\n'
	})
	var words []string
	for _, f := range fields {
		f = strings.Trim(f, ".()-")
		if len(f) > 3 {
			words = append(words, f)
		}
	}
	return words
}
