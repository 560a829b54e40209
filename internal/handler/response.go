package handler

import "github.com/actuallystonmai/product-recommender/internal/domain"

type ModelsLoaded struct {
	Collaborative bool `json:"collaborative"`
	ContentBased  bool `json:"contentBased"`
}

type HealthResponse struct {
	Status       string       `json:"status"`
	ModelsLoaded ModelsLoaded `json:"modelsLoaded"`
}

type UserRecommendationsResponse struct {
	Success         bool          `json:"success"`
	Recommendations []string      `json:"recommendations"`
	Method          domain.Method `json:"method"`
}

type SimilarProductsResponse struct {
	Success         bool          `json:"success"`
	SimilarProducts []string      `json:"similarProducts"`
	Method          domain.Method `json:"method"`
}

type FrequentlyBoughtResponse struct {
	Success  bool     `json:"success"`
	Products []string `json:"products"`
}

type TrainResponse struct {
	Success bool                    `json:"success"`
	Metrics *domain.TrainingMetrics `json:"metrics"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
