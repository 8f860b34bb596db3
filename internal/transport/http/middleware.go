package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"

	"github.com/kahvecikaan/product-catalog/internal/domain"
)

type contextKey string

// ContextKeyProduct holds the decoded and validated domain.ProductDTO
const ContextKeyProduct contextKey = "product"

// Middleware struct holds dependencies for middleware functions
type Middleware struct {
	Logger    hclog.Logger
	Validator *domain.Validation
	Metrics   *Metrics
}

// NewMiddleware creates a new Middleware instance
func NewMiddleware(logger hclog.Logger, validator *domain.Validation, metrics *Metrics) *Middleware {
	return &Middleware{
		Logger:    logger,
		Validator: validator,
		Metrics:   metrics,
	}
}

// ContentTypeMiddleware sets the Content-Type header to application/json
func (m *Middleware) ContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// CompressionMiddleware gzips responses for clients that accept it. Websocket
// upgrades are passed through untouched.
func (m *Middleware) CompressionMiddleware(next http.Handler) http.Handler {
	compressed := handlers.CompressHandler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			next.ServeHTTP(w, r)
			return
		}
		compressed.ServeHTTP(w, r)
	})
}

// LoggingMiddleware logs the incoming requests and responses and records
// request metrics
func (m *Middleware) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		m.Logger.Debug("Incoming request",
			"method", r.Method,
			"url", r.URL.Path,
			"request_id", requestID,
		)

		w.Header().Set("X-Request-ID", requestID)

		stats := httpsnoop.CaptureMetrics(next, w, r)

		m.Logger.Info("Completed request",
			"method", r.Method,
			"url", r.URL.Path,
			"status", stats.Code,
			"request_id", requestID,
			"duration", stats.Duration,
		)

		if m.Metrics != nil {
			m.Metrics.Observe(r.Method, routeTemplate(r), stats.Code, stats.Duration)
		}
	})
}

// ValidationMiddleware decodes and validates the product payload and adds it
// to the request context
func (m *Middleware) ValidationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var dto domain.ProductDTO
		err := json.NewDecoder(r.Body).Decode(&dto)
		if err != nil {
			m.Logger.Error("Error decoding product", "error", err)
			writeError(w, http.StatusBadRequest, "Invalid product data")
			return
		}

		errs := m.Validator.Validate(&dto)
		if len(errs) > 0 {
			m.Logger.Debug("Validation errors", "errors", errs.Errors())
			writeJSON(w, http.StatusUnprocessableEntity, ValidationError{Messages: errs.Errors()})
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyProduct, dto)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func productFromContext(r *http.Request) (domain.ProductDTO, bool) {
	dto, ok := r.Context().Value(ContextKeyProduct).(domain.ProductDTO)
	return dto, ok
}

// routeTemplate keeps metric label cardinality bounded by using the matched
// route pattern rather than the raw path
func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return "unmatched"
	}
	return tpl
}
