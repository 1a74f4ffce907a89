package httpadapter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/routers"

	"github.com/kirillkom/vendor-finder/internal/config"
	"github.com/kirillkom/vendor-finder/internal/core/ports"
	"github.com/kirillkom/vendor-finder/internal/observability/metrics"
)

const metricsService = "api"

type Router struct {
	cfg         config.Config
	discovery   ports.VendorDiscoveryService
	metrics     *metrics.HTTPServerMetrics
	searchRoute *routers.Route
}

// NewRouter panics when the embedded OpenAPI document cannot be loaded.
func NewRouter(cfg config.Config, discovery ports.VendorDiscoveryService, httpMetrics *metrics.HTTPServerMetrics) *Router {
	route, err := loadSearchRoute()
	if err != nil {
		panic(fmt.Sprintf("http router: %v", err))
	}
	return &Router{
		cfg:         cfg,
		discovery:   discovery,
		metrics:     httpMetrics,
		searchRoute: route,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc(searchPath, rt.searchVendors)
	mux.HandleFunc("/search", rt.searchVendors)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight,
		time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond, rt.recordRejected)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.recordRejected)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(metricsService, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) searchVendors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if err := validateSearchRequest(r, rt.searchRoute); err != nil {
		rt.writeError(w, r, err)
		return
	}
	params, err := bindSearchParams(r.URL.Query())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	result, err := rt.discovery.FindVendors(r.Context(), params.discoveryRequest())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("vendor_search_failed",
			"request_id", requestIDFromContext(r.Context()),
			"status", status,
			"error", err.Error(),
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (rt *Router) recordRejected(reason string) {
	if rt.metrics != nil {
		rt.metrics.RecordRejected(metricsService, reason)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
