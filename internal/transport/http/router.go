package http

import (
	_ "embed"
	"net/http"

	"github.com/go-openapi/runtime/middleware"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kahvecikaan/product-catalog/internal/domain"
	websocketTransport "github.com/kahvecikaan/product-catalog/internal/transport/websocket"
)

//go:embed swagger.yaml
var swaggerSpec []byte

// RouterConfig holds everything NewRouter wires together. Images and
// WebSocket are optional.
type RouterConfig struct {
	Products       *ProductHandler
	Images         *ImageHandler
	WebSocket      *websocketTransport.Handler
	Validator      *domain.Validation
	Logger         hclog.Logger
	Registry       *prometheus.Registry
	AllowedOrigins []string
}

func DefaultAllowedOrigins() []string {
	return []string{"http://localhost:3000"}
}

// NewRouter builds the HTTP handler for the service. CORS and panic recovery
// wrap the router so preflight requests never reach route matching.
func NewRouter(cfg RouterConfig) http.Handler {
	router := mux.NewRouter()

	metrics := NewMetrics()
	if cfg.Registry != nil {
		cfg.Registry.MustRegister(metrics)
	}

	mw := NewMiddleware(cfg.Logger, cfg.Validator, metrics)

	// Apply global middleware
	router.Use(mw.LoggingMiddleware)
	router.Use(mw.CompressionMiddleware)
	router.Use(mw.ContentTypeMiddleware)

	ph := cfg.Products
	router.HandleFunc("/products", ph.ListProducts).Methods(http.MethodGet)
	router.HandleFunc("/products/{id:[0-9]+}", ph.GetProductByID).Methods(http.MethodGet)
	router.HandleFunc("/products/{id:[0-9]+}", ph.DeleteProduct).Methods(http.MethodDelete)

	// Routes with a product body go through the validation middleware
	router.Handle("/products", mw.ValidationMiddleware(http.HandlerFunc(ph.CreateProduct))).
		Methods(http.MethodPost)
	router.Handle("/products/{id:[0-9]+}", mw.ValidationMiddleware(http.HandlerFunc(ph.UpdateProduct))).
		Methods(http.MethodPut, http.MethodPatch)

	if ih := cfg.Images; ih != nil {
		imagePath := "/images/{id:[0-9]+}/{filename:[a-zA-Z0-9_\\-]+\\.[a-z]{3,4}}"
		router.HandleFunc(imagePath, ih.GetImage).Methods(http.MethodGet)
		router.HandleFunc(imagePath, ih.UploadREST).Methods(http.MethodPost)
		router.HandleFunc("/images", ih.UploadMultipart).Methods(http.MethodPost)
	}

	if wsh := cfg.WebSocket; wsh != nil {
		router.HandleFunc("/ws", wsh.HandleWebSocket).Methods(http.MethodGet)
	}

	// Unmatched requests skip router middleware, so the fallbacks are wrapped
	// to keep them in the request log and metrics under the "unmatched" route
	router.NotFoundHandler = mw.LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Resource not found")
	}))
	router.MethodNotAllowedHandler = mw.LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}))

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	if cfg.Registry != nil {
		router.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	// Swagger UI and specification routes
	router.HandleFunc("/swagger.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(swaggerSpec)
	}).Methods(http.MethodGet)

	redoc := middleware.Redoc(middleware.RedocOpts{SpecURL: "/swagger.yaml"}, nil)
	router.Handle("/docs", redoc).Methods(http.MethodGet)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins()
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With"}),
		handlers.ExposedHeaders([]string{"X-Request-ID"}),
		handlers.AllowCredentials(),
		handlers.MaxAge(86400),
	)

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(cfg.Logger.StandardLogger(&hclog.StandardLoggerOptions{ForceLevel: hclog.Error})),
	)

	return recovery(cors(router))
}
