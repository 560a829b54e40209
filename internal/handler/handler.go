package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/actuallystonmai/product-recommender/internal/domain"
	"github.com/actuallystonmai/product-recommender/internal/logging"
)

// Recommender is the part of *service.Service the HTTP layer uses.
type Recommender interface {
	GetUserRecommendations(ctx context.Context, userID string, limit int) (*domain.RecommendationResult, error)
	GetSimilarProducts(ctx context.Context, productID string, limit int) (*domain.RecommendationResult, error)
	GetFrequentlyBoughtTogether(ctx context.Context, productID string, limit int) (*domain.RecommendationResult, error)
	Train(ctx context.Context) (*domain.TrainingMetrics, error)
	ModelsLoaded() (collaborative, content bool)
}

type Handler struct {
	service  Recommender
	validate *validator.Validate
}

func NewHandler(svc Recommender) *Handler {
	return &Handler{service: svc, validate: validator.New()}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("failed to write response")
	}
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: message})
}

// statusFor maps an error from the service layer to an HTTP status and a
// client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, "Product not found"
	case errors.Is(err, domain.ErrInsufficientData):
		return http.StatusUnprocessableEntity, "Not enough data to train models"
	case errors.Is(err, domain.ErrDataAccess):
		return http.StatusServiceUnavailable, "Data store is temporarily unavailable"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "Request timed out, please try again"
	default:
		return http.StatusInternalServerError, "An unexpected error occurred"
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeError(w, status, msg)
}

// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	collab, content := h.service.ModelsLoaded()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		ModelsLoaded: ModelsLoaded{
			Collaborative: collab,
			ContentBased:  content,
		},
	})
}

// POST /train
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.Train(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TrainResponse{Success: true, Metrics: metrics})
}
