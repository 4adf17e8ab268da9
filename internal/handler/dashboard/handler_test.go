package dashboard

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/vacina-dashboard/internal/dashboard"
	"github.com/jwalitptl/vacina-dashboard/internal/middleware"
	"github.com/jwalitptl/vacina-dashboard/internal/model"
	"github.com/jwalitptl/vacina-dashboard/internal/session"
	"github.com/jwalitptl/vacina-dashboard/internal/web"
	apperrors "github.com/jwalitptl/vacina-dashboard/pkg/errors"
)

type fakeBackend struct {
	patientsErr error
}

func (f *fakeBackend) ListPatients(context.Context, string, bool) ([]model.Patient, error) {
	if f.patientsErr != nil {
		return nil, f.patientsErr
	}
	return []model.Patient{{UUID: "a", DataNascimento: "2010-01-01"}, {UUID: "b", DataNascimento: "1980-01-01"}}, nil
}

func (f *fakeBackend) ListVaccinations(context.Context, string) ([]model.Vaccination, error) {
	today := time.Now().Format("2006-01-02")
	return []model.Vaccination{
		{PessoaUUID: "a", Vacina: &model.VaccineRef{Nome: "BCG"}, DataAplicacao: today},
		{PessoaUUID: "a", Vacina: &model.VaccineRef{Nome: "Hepatite B"}, DataAplicacao: today},
	}, nil
}

func setup(b dashboard.Backend) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(web.Templates())
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextSession, &session.Session{
			Token:  "tok",
			Claims: &session.Claims{Role: model.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "maria"}},
		})
		c.Next()
	})
	h := NewHandler(dashboard.NewService(b, nil, zerolog.Nop()), zerolog.Nop())
	h.RegisterRoutes(r.Group("/api"))
	h.RegisterPages(r.Group(""))
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestChartFormats(t *testing.T) {
	r := setup(&fakeBackend{})

	w := get(r, "/api/dashboard/charts/periodo")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<svg")
	assert.Contains(t, w.Header().Get("Cache-Control"), "max-age=60")

	w = get(r, "/api/dashboard/charts/faixa-etaria.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	assert.Equal(t, http.StatusBadRequest, get(r, "/api/dashboard/charts/periodo.gif").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/api/dashboard/charts/nada.svg").Code)
}

func TestChartPipelineFailure(t *testing.T) {
	r := setup(&fakeBackend{patientsErr: apperrors.Transport(errors.New("refused"))})

	w := get(r, "/api/dashboard/charts/faixa-etaria")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), apperrors.MsgConnection)
}

func TestWidgets(t *testing.T) {
	r := setup(&fakeBackend{})

	w := get(r, "/api/dashboard/widgets/top-vacinas")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Hepatite B")

	assert.Equal(t, http.StatusOK, get(r, "/api/dashboard/widgets/faixa-etaria-legenda").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/dashboard/widgets/cadastrados-vacinados").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/api/dashboard/widgets/nada").Code)
}

func TestSummaryListsFailedPipelines(t *testing.T) {
	r := setup(&fakeBackend{patientsErr: apperrors.Transport(errors.New("refused"))})

	w := get(r, "/api/dashboard")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"faixa-etaria":"`+apperrors.MsgConnection+`"`)
	assert.Contains(t, w.Body.String(), `"topVacinas":{"items":[`)
}

func TestPageInlinesChartsAndErrors(t *testing.T) {
	r := setup(&fakeBackend{patientsErr: apperrors.Transport(errors.New("refused"))})

	w := get(r, "/dashboard")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, `<p class="chart-error">`+apperrors.MsgConnection+`</p>`)
	assert.Contains(t, body, "BCG")
}
