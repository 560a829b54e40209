package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type limitQuery struct {
	Limit int `validate:"omitempty,min=1,max=50"`
}

// parseLimit reads ?limit=N. Zero means "use the endpoint default".
func (h *Handler) parseLimit(r *http.Request) (int, bool) {
	var q limitQuery
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, false
		}
		q.Limit = parsed
		if parsed == 0 {
			return 0, false
		}
	}
	if err := h.validate.Struct(q); err != nil {
		return 0, false
	}
	return q.Limit, true
}

// GET /recommendations/user/{userId}
func (h *Handler) GetUserRecommendations(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.parseLimit(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid limit parameter")
		return
	}

	result, err := h.service.GetUserRecommendations(r.Context(), chi.URLParam(r, "userId"), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	setCacheStatus(w, result.CacheHit)

	writeJSON(w, http.StatusOK, UserRecommendationsResponse{
		Success:         true,
		Recommendations: nonNil(result.ProductIDs),
		Method:          result.Method,
	})
}

// GET /recommendations/product/{productId}
func (h *Handler) GetSimilarProducts(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.parseLimit(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid limit parameter")
		return
	}

	result, err := h.service.GetSimilarProducts(r.Context(), chi.URLParam(r, "productId"), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	setCacheStatus(w, result.CacheHit)

	writeJSON(w, http.StatusOK, SimilarProductsResponse{
		Success:         true,
		SimilarProducts: nonNil(result.ProductIDs),
		Method:          result.Method,
	})
}

// GET /recommendations/frequently-bought/{productId}
func (h *Handler) GetFrequentlyBoughtTogether(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.parseLimit(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid limit parameter")
		return
	}

	result, err := h.service.GetFrequentlyBoughtTogether(r.Context(), chi.URLParam(r, "productId"), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	setCacheStatus(w, result.CacheHit)

	writeJSON(w, http.StatusOK, FrequentlyBoughtResponse{
		Success:  true,
		Products: nonNil(result.ProductIDs),
	})
}

// setCacheStatus reports through X-Cache whether the list came from the
// response cache.
func setCacheStatus(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "HIT")
		return
	}
	w.Header().Set("X-Cache", "MISS")
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
