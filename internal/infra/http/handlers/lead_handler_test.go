package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-leads/internal/infra/database"
	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/router"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := database.NewMemoryStore()
	svc := usecase.NewLeadService(store, nil)
	svc.Now = func() time.Time { return time.UnixMilli(1700000000000) }

	h := NewRouter(RouterConfig{
		Dispatcher:     router.NewDispatcher(svc),
		Health:         NewHealthHandler(store, nil),
		Logger:         zerolog.Nop(),
		AllowedOrigins: []string{"*"},
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp, decoded
}

func TestLeadLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp, body := call(t, srv, http.MethodPost, "/leads", `{"id":"L1","nome":"Ana","email":"a@x.com","telefone":"+551199999"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Lead criada!", body["message"])
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	resp, body = call(t, srv, http.MethodGet, "/leads/L1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	item := body["Item"].(map[string]any)
	assert.Equal(t, false, item["clientSince"])
	assert.Equal(t, "Ana", item["nome"])
	assert.Equal(t, float64(1700000000000), item["prospectSince"])

	resp, body = call(t, srv, http.MethodPut, "/leads/L1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Lead atualizada!", body["message"])

	resp, body = call(t, srv, http.MethodPut, "/leads/L1", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Essa lead já foi atualizada.", body["message"])

	resp, body = call(t, srv, http.MethodGet, "/leads", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["Count"])

	resp, body = call(t, srv, http.MethodDelete, "/leads/L1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Lead deletada!", body["message"])

	resp, body = call(t, srv, http.MethodGet, "/leads/L1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Lead não encontrada.", body["message"])
}

func TestCreateRejectsBadBodyOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{"", "not json", `{"id":"L1","nome":"Ana","email":"a@x.com"}`} {
		resp, decoded := call(t, srv, http.MethodPost, "/leads", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.Equal(t, "Parâmetros inválidos.", decoded["message"], body)
	}
}

func TestUnknownRoutesOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/clientes"},
		{http.MethodPatch, "/leads/L1"},
		{http.MethodPost, "/leads/L1"},
	} {
		resp, body := call(t, srv, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, tc.path)
		assert.Equal(t, "Rota não encontrada.", body["error"], tc.path)
	}
}

func TestPreflightEchoesOrigin(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/leads/L1", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "PUT")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type", resp.Header.Get("Access-Control-Allow-Headers"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Success", body["message"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	call(t, srv, http.MethodGet, "/leads", "")

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "lead_operations_total")
}

func TestMetricsCollapseUnknownPathsIntoOneSeries(t *testing.T) {
	srv := newTestServer(t)
	call(t, srv, http.MethodGet, "/rota-aleatoria-a1", "")
	call(t, srv, http.MethodGet, "/rota-aleatoria-b2", "")
	call(t, srv, http.MethodGet, "/leads", "")

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	scraped := string(raw)

	assert.NotContains(t, scraped, "rota-aleatoria")
	assert.Contains(t, scraped, `http_requests_total{method="GET",path="unmatched",status="404"}`)
	assert.Contains(t, scraped, `http_requests_total{method="GET",path="/leads",status="200"}`)
}

func TestRateLimitKeysOnProxyHeadersOnlyWhenTrusted(t *testing.T) {
	for _, tc := range []struct {
		name       string
		trustProxy bool
		wantSecond int
	}{
		{"direto", false, http.StatusTooManyRequests},
		{"atrás de proxy", true, http.StatusOK},
	} {
		t.Run(tc.name, func(t *testing.T) {
			limiter := middleware.NewRateLimiter(1, time.Minute)
			t.Cleanup(limiter.Stop)

			h := NewRouter(RouterConfig{
				Dispatcher:     router.NewDispatcher(usecase.NewLeadService(database.NewMemoryStore(), nil)),
				Logger:         zerolog.Nop(),
				AllowedOrigins: []string{"*"},
				RateLimiter:    limiter,
				TrustProxy:     tc.trustProxy,
			})

			var codes []int
			for _, xff := range []string{"1.0.0.1", "1.0.0.2"} {
				req := httptest.NewRequest(http.MethodGet, "/leads", nil)
				req.RemoteAddr = "10.0.0.1:5555"
				req.Header.Set("X-Forwarded-For", xff)
				w := httptest.NewRecorder()
				h.ServeHTTP(w, req)
				codes = append(codes, w.Code)
			}

			assert.Equal(t, []int{http.StatusOK, tc.wantSecond}, codes)
		})
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

type closedBroker struct{ closed bool }

func (b closedBroker) IsClosed() bool { return b.closed }

func TestHealthHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := NewHealthHandler(database.NewMemoryStore(), closedBroker{closed: false})
		w := httptest.NewRecorder()

		h.Handle(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp HealthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "healthy", resp.Dependencies["store"])
		assert.Equal(t, "healthy", resp.Dependencies["rabbitmq"])
	})

	t.Run("degraded", func(t *testing.T) {
		h := NewHealthHandler(failingPinger{}, closedBroker{closed: true})
		w := httptest.NewRecorder()

		h.Handle(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp HealthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "degraded", resp.Status)
		assert.Contains(t, resp.Dependencies["store"], "connection refused")
	})

	t.Run("broker not configured", func(t *testing.T) {
		h := NewHealthHandler(database.NewMemoryStore(), nil)
		w := httptest.NewRecorder()

		h.Handle(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
