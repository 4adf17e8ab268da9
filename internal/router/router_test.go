package router

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/vacina-dashboard/internal/handler/health"
	promHandler "github.com/jwalitptl/vacina-dashboard/internal/handler/prometheus"
	screenHandler "github.com/jwalitptl/vacina-dashboard/internal/handler/screen"
	"github.com/jwalitptl/vacina-dashboard/internal/middleware"
	"github.com/jwalitptl/vacina-dashboard/internal/model"
	"github.com/jwalitptl/vacina-dashboard/internal/screens"
	"github.com/jwalitptl/vacina-dashboard/internal/session"
	"github.com/jwalitptl/vacina-dashboard/pkg/metrics"
)

func token(t *testing.T, sub, role string) string {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{"sub": sub, "role": role, "exp": time.Now().Add(time.Hour).Unix()})
	require.NoError(t, err)
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`)) + "." + enc.EncodeToString(payload) + ".c2ln"
}

func setupRouter(t *testing.T, ready error) (*gin.Engine, *metrics.Metrics) {
	t.Helper()
	m, reg := metrics.New("test")
	registry := screens.NewRegistry(screens.Config{Debounce: 10 * time.Millisecond}, screens.Loaders{
		Patients: func(ctx context.Context, s *session.Session) ([]model.Patient, error) {
			out := make([]model.Patient, 12)
			for i := range out {
				out[i] = model.Patient{UUID: fmt.Sprintf("p%d", i), ID: int64(i + 1), NomeCompleto: fmt.Sprintf("Paciente %02d", i), Ativo: true}
			}
			return out, nil
		},
	})

	r := NewRouter(Handlers{
		Health: health.NewHandler(map[string]health.Check{
			"backend": func(context.Context) error { return ready },
		}),
		Metrics: promHandler.New(reg).Handler(),
		Screens: screenHandler.NewHandler(registry, "/login", zerolog.Nop()),
	}, m, RouterConfig{
		Mode:       gin.TestMode,
		Timeout:    time.Second,
		CORSConfig: middleware.DefaultCORSConfig(),
	})
	r.Setup()
	return r.Engine(), m
}

func serve(e *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestHealthRoutes(t *testing.T) {
	e, m := setupRouter(t, nil)

	w := serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1.0", w.Header().Get("X-API-Version"))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))

	w = serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP"}`, w.Body.String())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestTotal.WithLabelValues(http.MethodGet, "/api/v1/health/live", "200")))
}

func TestReadinessReportsFailingCheck(t *testing.T) {
	e, m := setupRouter(t, errors.New("circuit breaker is open"))

	w := serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"DOWN","reason":{"backend":"circuit breaker is open"}}`, w.Body.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorTotal.WithLabelValues(http.MethodGet, "/api/v1/health/ready", "server")))
}

func TestAPIRequiresToken(t *testing.T) {
	e, _ := setupRouter(t, nil)

	w := serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/screens/pacientes", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestScreenViewWithBearer(t *testing.T) {
	e, _ := setupRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/screens/pacientes?page=2", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "joao", "USER"))
	w := serve(e, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")

	var res struct {
		Data struct {
			Page       int `json:"page"`
			TotalPages int `json:"totalPages"`
			Total      int `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Data.Page)
	assert.Equal(t, 2, res.Data.TotalPages)
	assert.Equal(t, 12, res.Data.Total)
}

func TestElevatedScreenForbidden(t *testing.T) {
	e, _ := setupRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/screens/usuarios", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "joao", "USER"))
	w := serve(e, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPagesRedirectToLogin(t *testing.T) {
	e, _ := setupRouter(t, nil)

	w := serve(e, httptest.NewRequest(http.MethodGet, "/telas/pacientes", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestScreenPageRenders(t *testing.T) {
	e, _ := setupRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/telas/pacientes", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token(t, "joao", "USER")})
	w := serve(e, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<title>Pacientes | Vacina</title>")
	assert.Contains(t, w.Body.String(), "Paciente 11")
	assert.NotContains(t, w.Body.String(), "Paciente 00")
	assert.Contains(t, w.Body.String(), `href="?move=next"`)
}

func TestMetricsEndpoint(t *testing.T) {
	e, _ := setupRouter(t, nil)
	serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))

	w := serve(e, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_requests_total")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestUnmatchedRoute(t *testing.T) {
	e, m := setupRouter(t, nil)

	w := serve(e, httptest.NewRequest(http.MethodGet, "/nada", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorTotal.WithLabelValues(http.MethodGet, "unmatched", "client")))
}
