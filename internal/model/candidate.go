package model

// ScoredCandidate pairs a portfolio record with its match score against a
// query. Scores are percentages in [0, 100]; Reasoning lists one line per
// applied scoring signal.
type ScoredCandidate struct {
	Record             Record   `json:"record"`
	MatchScore         float64  `json:"match_score"`
	SemanticSimilarity float64  `json:"semantic_similarity"`
	RawScore           float64  `json:"raw_score"`
	Reasoning          []string `json:"reasoning_bullets"`
}
