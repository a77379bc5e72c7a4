package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"voicechallan/internal/config"
	"voicechallan/internal/dto"
	"voicechallan/internal/handler"
	"voicechallan/internal/metrics"
	"voicechallan/internal/middleware"
	"voicechallan/internal/service"

	"github.com/stretchr/testify/assert"
)

// listOnly answers List and leaves every other method unimplemented.
type listOnly struct{ service.ChallanService }

func (listOnly) List(_ context.Context, f dto.ChallanFilter) (*dto.ChallanListResponse, error) {
	return &dto.ChallanListResponse{Data: []dto.ChallanSummary{}, Page: f.Page, Limit: f.Limit}, nil
}

func testEngine(env string, limiter *middleware.IPRateLimiter) (*config.Config, Deps) {
	cfg := &config.Config{Env: env, CORSAllowedOrigins: "*"}
	ok := func(context.Context) error { return nil }
	return cfg, Deps{
		Challans:    listOnly{},
		Metrics:     metrics.NewRegistry(),
		RateLimiter: limiter,
		Checks:      map[string]handler.Check{"db": ok, "redis": ok},
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRouter_PublicEndpoints(t *testing.T) {
	r := New(testEngine("test", nil))

	w := get(t, r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	assert.Equal(t, http.StatusOK, get(t, r, "/api/list-challans").Code)

	w = get(t, r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/api/list-challans",status="200"} 1`)
}

func TestRouter_SwaggerOnlyOutsideProduction(t *testing.T) {
	dev := New(testEngine("development", nil))
	assert.NotEqual(t, http.StatusNotFound, get(t, dev, "/swagger/index.html").Code)

	prod := New(testEngine("production", nil))
	assert.Equal(t, http.StatusNotFound, get(t, prod, "/swagger/index.html").Code)
}

func TestRouter_RateLimitAppliesToAPIOnly(t *testing.T) {
	r := New(testEngine("test", middleware.NewIPRateLimiter(0.001, 1)))

	assert.Equal(t, http.StatusOK, get(t, r, "/api/list-challans").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(t, r, "/api/list-challans").Code)
	assert.Equal(t, http.StatusOK, get(t, r, "/health").Code)
}
