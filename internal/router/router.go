package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/actuallystonmai/product-recommender/internal/handler"
	"github.com/actuallystonmai/product-recommender/internal/logging"
)

type Options struct {
	AllowedOrigins []string
	// TrainRateLimit is the number of POST /train calls allowed per minute
	// and client IP. Zero disables the limit.
	TrainRateLimit int
	RequestTimeout time.Duration
}

func Setup(h *handler.Handler, opts Options) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Cache"},
		MaxAge:         300,
	}))

	// Routes
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(opts.RequestTimeout))
		r.Get("/recommendations/user/{userId}", h.GetUserRecommendations)
		r.Get("/recommendations/product/{productId}", h.GetSimilarProducts)
		r.Get("/recommendations/frequently-bought/{productId}", h.GetFrequentlyBoughtTogether)
	})

	// training is long-running, so no request timeout here
	r.Group(func(r chi.Router) {
		if opts.TrainRateLimit > 0 {
			r.Use(httprate.LimitByIP(opts.TrainRateLimit, time.Minute))
		}
		r.Post("/train", h.Train)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			logging.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}
