package routes

import (
	"net/http"

	"github.com/sjwitcher/obd2-explorer/backend/internal/api/handlers"
	"github.com/sjwitcher/obd2-explorer/backend/internal/api/middleware"
	"github.com/sjwitcher/obd2-explorer/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	lookupHandler *handlers.LookupHandler
	metrics       *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(lookupHandler *handlers.LookupHandler, metrics *observability.Metrics) *Router {
	return &Router{
		mux:           http.NewServeMux(),
		lookupHandler: lookupHandler,
		metrics:       metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	r.mux.HandleFunc("GET /{$}", r.lookupHandler.Home)
	r.mux.HandleFunc("POST /lookup", r.lookupHandler.Lookup)

	// Apply middleware in reverse order (last middleware wraps first).
	// Recovery sits innermost so logging still records the 500; CORS is
	// outermost so its headers are present on every response.
	var handler http.Handler = r.mux
	handler = middleware.RecoveryMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
