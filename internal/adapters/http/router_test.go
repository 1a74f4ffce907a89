package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/kirillkom/vendor-finder/internal/config"
	"github.com/kirillkom/vendor-finder/internal/core/domain"
	"github.com/kirillkom/vendor-finder/internal/observability/metrics"
)

type stubDiscovery struct {
	mu    sync.Mutex
	calls []domain.DiscoveryRequest
	err   error
}

func (s *stubDiscovery) FindVendors(_ context.Context, req domain.DiscoveryRequest) (*domain.AgentResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return &domain.AgentResult{
		Query:        domain.QueryEcho{Service: req.Service, Location: req.Location, Platform: domain.PlatformAuto},
		TotalVendors: 1,
		Vendors: []domain.VendorCandidate{{
			Identity:        domain.VendorIdentity{Name: "Cake Hub", SourceProvider: "google", URL: "https://cakehub.example"},
			ConfidenceScore: 0.8,
		}},
		Attempts:   1,
		StopReason: domain.StopDecision,
	}, nil
}

func newTestHandler(cfg config.Config, discovery *stubDiscovery) http.Handler {
	return NewRouter(cfg, discovery, nil).Handler()
}

func TestSearchVendorsBindsQueryParameters(t *testing.T) {
	discovery := &stubDiscovery{}
	handler := newTestHandler(config.Config{}, discovery)

	req := httptest.NewRequest(http.MethodGet,
		"/v1/vendors/search?service=cake&location=Lagos&platform=twitter&max_results=3&min_confidence=0.5", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if len(discovery.calls) != 1 {
		t.Fatalf("expected one discovery call, got %d", len(discovery.calls))
	}
	got := discovery.calls[0]
	if got.Service != "cake" || got.Location != "Lagos" || got.Platform != "twitter" ||
		got.Limit() != 3 || got.ConfidenceFloor() != 0.5 {
		t.Fatalf("unexpected discovery request: %+v", got)
	}

	var body domain.AgentResult
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.TotalVendors != 1 || body.Vendors[0].Identity.Name != "Cake Hub" {
		t.Fatalf("unexpected response body: %+v", body)
	}
}

func TestSearchAliasLeavesOptionalParametersUnset(t *testing.T) {
	discovery := &stubDiscovery{}
	handler := newTestHandler(config.Config{}, discovery)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/search?service=plumber&location=Ikeja", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	got := discovery.calls[0]
	if got.Platform != "" || got.MaxResults != nil || got.MinConfidence != nil {
		t.Fatalf("optional parameters must stay unset for defaults, got %+v", got)
	}
}

func TestSearchVendorsRejectsInvalidQuery(t *testing.T) {
	cases := map[string]string{
		"missing service":    "/v1/vendors/search?location=Lagos",
		"missing location":   "/v1/vendors/search?service=cake",
		"max_results range":  "/v1/vendors/search?service=cake&location=Lagos&max_results=50",
		"non numeric limit":  "/v1/vendors/search?service=cake&location=Lagos&max_results=many",
		"confidence too low": "/search?service=cake&location=Lagos&min_confidence=0.01",
		"zero max_results":   "/v1/vendors/search?service=cake&location=Lagos&max_results=0",
		"zero confidence":    "/v1/vendors/search?service=cake&location=Lagos&min_confidence=0",
	}
	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			discovery := &stubDiscovery{}
			handler := newTestHandler(config.Config{}, discovery)

			res := httptest.NewRecorder()
			handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, target, nil))

			if res.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", res.Code)
			}
			var body map[string]string
			if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if strings.TrimSpace(body["error"]) == "" {
				t.Fatalf("expected error message")
			}
			if len(discovery.calls) != 0 {
				t.Fatalf("discovery must not run for invalid input")
			}
		})
	}
}

func TestSearchVendorsMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", domain.WrapError(domain.ErrInvalidInput, "find vendors", errors.New("bad")), http.StatusBadRequest},
		{"temporary", domain.WrapError(domain.ErrTemporary, "nats request", errors.New("no responders")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestHandler(config.Config{}, &stubDiscovery{err: tc.err})

			res := httptest.NewRecorder()
			handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/vendors/search?service=cake&location=Lagos", nil))
			if res.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, res.Code)
			}
		})
	}
}

func TestSearchVendorsRejectsPost(t *testing.T) {
	handler := newTestHandler(config.Config{}, &stubDiscovery{})

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/v1/vendors/search?service=cake&location=Lagos", nil))
	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	handler := newTestHandler(config.Config{}, &stubDiscovery{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-123")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if got := res.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("expected request id echo, got %q", got)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestMetricsEndpointCountsSearchRequests(t *testing.T) {
	httpMetrics := metrics.NewHTTPServerMetrics("api")
	handler := NewRouter(config.Config{}, &stubDiscovery{}, httpMetrics).Handler()

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/search?service=cake&location=Lagos", nil))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `vf_http_requests_total{method="GET",path="/v1/vendors/search",service="api",status="200"} 1`) {
		t.Fatalf("expected search request counter, got:\n%s", res.Body.String())
	}
}
