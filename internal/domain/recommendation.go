package domain

type Method string

const (
	MethodPopular      Method = "popular"
	MethodHybrid       Method = "hybrid"
	MethodContentBased Method = "content_based"
	MethodCategory     Method = "category"
)

// Source tags for candidates produced by the generators.
const (
	SourceCollaborative = "collaborative"
	SourceContent       = "content"
)

type ScoredCandidate struct {
	ProductID string  `json:"product_id"`
	Score     float64 `json:"score"`
	Source    string  `json:"source"`
}

type RecommendationResult struct {
	ProductIDs []string `json:"product_ids"`
	Method     Method   `json:"method"`
	CacheHit   bool     `json:"-"`
}

type CollaborativeMetrics struct {
	NumUsers        int `json:"numUsers"`
	NumProducts     int `json:"numProducts"`
	NumInteractions int `json:"numInteractions"`
}

type ContentMetrics struct {
	NumProducts int `json:"numProducts"`
	NumFeatures int `json:"numFeatures"`
}

type TrainingMetrics struct {
	Collaborative CollaborativeMetrics `json:"collaborative"`
	ContentBased  ContentMetrics       `json:"contentBased"`
	DurationMs    int64                `json:"durationMs"`
}
