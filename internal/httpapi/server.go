package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"churnd/internal/model"
	"churnd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Predict(ctx context.Context, in types.CustomerInput) (types.CustomerPrediction, error)
	PredictBatch(ctx context.Context, ins []types.CustomerInput) ([]types.CustomerPrediction, error)
	Health() types.HealthResponse
	Ready() bool
}

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		if !svc.Ready() {
			status = "unhealthy"
		}
		writeJSON(w, http.StatusOK, types.RootResponse{
			Message: "churnd customer behavior prediction API",
			Status:  status,
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Health())
	})

	r.Post("/predict", handlePredict(svc))
	r.Post("/predict/batch", handlePredictBatch(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// handlePredict serves POST /predict: one validated CustomerInput in, one
// CustomerPrediction out.
//
// @Summary     Predict behavior for a single customer
// @Accept      json
// @Produce     json
// @Param       customer body types.CustomerInput true "Customer record"
// @Success     200 {object} types.CustomerPrediction
// @Failure     400 {object} types.ErrorResponse
// @Failure     500 {object} types.ErrorResponse
// @Router      /predict [post]
func handlePredict(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in types.CustomerInput
		if !decodeBody(w, r, &in) {
			return
		}
		if err := in.Validate(); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		start := time.Now()
		// Join server base context with request context so shutdown cancels work too.
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		pred, err := svc.Predict(joinedCtx, in)
		if err != nil {
			// If context was canceled (client disconnect), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status, detail := mapPredictError(err, "prediction failed")
			observePrediction("predict", "error", start)
			writeJSONError(w, status, detail)
			logEnd(r, "predict", status, start, err)
			return
		}
		observePrediction("predict", "ok", start)
		writeJSON(w, http.StatusOK, pred)
		logEnd(r, "predict", http.StatusOK, start, nil)
	}
}

// handlePredictBatch serves POST /predict/batch. Validation is
// all-or-nothing: the first invalid record rejects the whole request.
// Output preserves input order.
//
// @Summary     Predict behavior for multiple customers
// @Accept      json
// @Produce     json
// @Param       request body types.BatchPredictionRequest true "Customer records"
// @Success     200 {object} types.BatchPredictionResponse
// @Failure     400 {object} types.ErrorResponse
// @Failure     500 {object} types.ErrorResponse
// @Router      /predict/batch [post]
func handlePredictBatch(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.BatchPredictionRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if len(req.Customers) == 0 {
			writeJSONError(w, http.StatusBadRequest, "customers is required")
			return
		}
		if len(req.Customers) > maxBatchSize {
			writeJSONError(w, http.StatusBadRequest,
				fmt.Sprintf("batch size %d exceeds limit %d", len(req.Customers), maxBatchSize))
			return
		}
		for i, c := range req.Customers {
			if err := c.Validate(); err != nil {
				writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("customers[%d]: %s", i, err))
				return
			}
		}
		observeBatchSize(len(req.Customers))
		start := time.Now()
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		preds, err := svc.PredictBatch(joinedCtx, req.Customers)
		if err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status, detail := mapPredictError(err, "batch prediction failed")
			observePrediction("predict_batch", "error", start)
			writeJSONError(w, status, detail)
			logEnd(r, "predict_batch", status, start, err)
			return
		}
		observePrediction("predict_batch", "ok", start)
		writeJSON(w, http.StatusOK, types.BatchPredictionResponse{Predictions: preds})
		logEnd(r, "predict_batch", http.StatusOK, start, nil)
	}
}

// decodeBody enforces content type and body size, then decodes JSON into v.
// It writes the error response itself and reports success.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	// Limit body size (configurable, default 1MiB)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// mapPredictError maps well-known model errors to HTTP status codes.
// Unknown errors become a 500 with a generic detail.
func mapPredictError(err error, generic string) (int, string) {
	if model.IsUnknownCategory(err) {
		return http.StatusBadRequest, err.Error()
	}
	if model.IsNotLoaded(err) {
		return http.StatusInternalServerError, err.Error()
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode(), he.Error()
	}
	return http.StatusInternalServerError, generic
}
