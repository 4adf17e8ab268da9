package screen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/vacina-dashboard/internal/listing"
	"github.com/jwalitptl/vacina-dashboard/internal/middleware"
	"github.com/jwalitptl/vacina-dashboard/internal/model"
	"github.com/jwalitptl/vacina-dashboard/internal/screens"
	"github.com/jwalitptl/vacina-dashboard/internal/session"
	"github.com/jwalitptl/vacina-dashboard/internal/web"
	apperrors "github.com/jwalitptl/vacina-dashboard/pkg/errors"
)

type view struct {
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
	Total      int            `json:"total"`
	Filter     listing.Filter `json:"filter"`
	Result     string         `json:"result"`
}

func patients(n int) []model.Patient {
	out := make([]model.Patient, n)
	for i := range out {
		sexo := "F"
		if i%2 == 1 {
			sexo = "M"
		}
		out[i] = model.Patient{UUID: fmt.Sprintf("p%d", i), ID: int64(i + 1), NomeCompleto: fmt.Sprintf("Paciente %02d", i), Sexo: sexo, Ativo: i != 0}
	}
	return out
}

func setup(t *testing.T, role string, loadErr error) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	registry := screens.NewRegistry(screens.Config{Debounce: 10 * time.Millisecond}, screens.Loaders{
		Patients: func(context.Context, *session.Session) ([]model.Patient, error) {
			if loadErr != nil {
				return nil, loadErr
			}
			return patients(25), nil
		},
	})

	r := gin.New()
	r.SetHTMLTemplate(web.Templates())
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextSession, &session.Session{
			Token:  "tok",
			Claims: &session.Claims{Role: role, RegisteredClaims: jwt.RegisteredClaims{Subject: t.Name()}},
		})
		c.Next()
	})
	h := NewHandler(registry, "/login", zerolog.Nop())
	h.RegisterRoutes(r.Group("/api"))
	h.RegisterPages(r.Group(""))
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, view) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var res struct {
		Data view `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	return w, res.Data
}

func TestViewAppliesQuery(t *testing.T) {
	r := setup(t, "USER", nil)

	w, v := do(t, r, http.MethodGet, "/api/screens/pacientes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, v.Page)
	assert.Equal(t, 3, v.TotalPages)

	_, v = do(t, r, http.MethodGet, "/api/screens/pacientes?move=next", "")
	assert.Equal(t, 2, v.Page)

	_, v = do(t, r, http.MethodGet, "/api/screens/pacientes?sexo=M", "")
	assert.Equal(t, 1, v.Page)
	assert.Equal(t, 12, v.Total)
	assert.Equal(t, "M", v.Filter.Fields["sexo"])

	_, v = do(t, r, http.MethodGet, "/api/screens/pacientes?sexo=", "")
	assert.Equal(t, 25, v.Total)
	assert.Empty(t, v.Filter.Fields)
}

func TestGoTo(t *testing.T) {
	r := setup(t, "USER", nil)

	_, v := do(t, r, http.MethodPost, "/api/screens/pacientes/page/3", "")
	assert.Equal(t, 3, v.Page)
	_, v = do(t, r, http.MethodPost, "/api/screens/pacientes/page/next", "")
	assert.Equal(t, 3, v.Page)
	_, v = do(t, r, http.MethodPost, "/api/screens/pacientes/page/prev", "")
	assert.Equal(t, 2, v.Page)
	_, v = do(t, r, http.MethodPost, "/api/screens/pacientes/page/9", "")
	assert.Equal(t, 2, v.Page)

	w, _ := do(t, r, http.MethodPost, "/api/screens/pacientes/page/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFilterReplaceAndClear(t *testing.T) {
	r := setup(t, "USER", nil)

	w, v := do(t, r, http.MethodPut, "/api/screens/pacientes/filter", `{"q":"paciente 0"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, v.Total)
	assert.NotEmpty(t, v.Result)

	_, v = do(t, r, http.MethodDelete, "/api/screens/pacientes/filter", "")
	assert.Equal(t, 25, v.Total)
	assert.Empty(t, v.Filter.Text)
}

func TestInputIsScheduled(t *testing.T) {
	r := setup(t, "USER", nil)

	w, _ := do(t, r, http.MethodPost, "/api/screens/pacientes/input", `{"q":"ana"}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), MsgFilterScheduled)
}

func TestUnknownAndRestrictedScreens(t *testing.T) {
	r := setup(t, "USER", nil)

	w, _ := do(t, r, http.MethodGet, "/api/screens/nada", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = do(t, r, http.MethodGet, "/api/screens/usuarios", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLoadFailures(t *testing.T) {
	r := setup(t, "USER", apperrors.Transport(errors.New("refused")))
	w, _ := do(t, r, http.MethodGet, "/api/screens/pacientes", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w, _ = do(t, r, http.MethodGet, "/telas/pacientes", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<p class="load-error">`+apperrors.MsgConnection+`</p>`)

	r = setup(t, "USER", apperrors.Malformed(errors.New("scalar")))
	w, v := do(t, r, http.MethodGet, "/api/screens/pacientes", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, v.Total)
}

func TestPageRedirectsOnExpiredBackendSession(t *testing.T) {
	r := setup(t, "USER", apperrors.Unauthorized(errors.New("backend said 401")))

	w, _ := do(t, r, http.MethodGet, "/telas/pacientes", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), session.CookieName+"=;")
}

func TestFromQuery(t *testing.T) {
	current := listing.Filter{Text: "ana", Fields: map[string]string{"status": "true"}}

	f, changed := fromQuery(current, url.Values{"page": {"2"}, "move": {"next"}})
	assert.False(t, changed)
	assert.Equal(t, current, f)

	f, changed = fromQuery(current, url.Values{"q": {"bia"}, "status": {""}, "sexo": {"F"}})
	assert.True(t, changed)
	assert.Equal(t, listing.Filter{Text: "bia", Fields: map[string]string{"sexo": "F"}}, f)
	assert.Equal(t, "true", current.Fields["status"])
}

func TestMerge(t *testing.T) {
	current := listing.Filter{Text: "old", Fields: map[string]string{"status": "true", "sexo": "F"}}

	got := merge(current, listing.Filter{Text: "novo", Fields: map[string]string{"sexo": ""}})
	assert.Equal(t, listing.Filter{Text: "novo", Fields: map[string]string{"status": "true"}}, got)
}
