package dashboard

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/vacina-dashboard/internal/chart"
	"github.com/jwalitptl/vacina-dashboard/internal/dashboard"
	"github.com/jwalitptl/vacina-dashboard/internal/handler"
	"github.com/jwalitptl/vacina-dashboard/internal/middleware"
	"github.com/jwalitptl/vacina-dashboard/internal/web"
	"github.com/jwalitptl/vacina-dashboard/internal/widget"
	apperrors "github.com/jwalitptl/vacina-dashboard/pkg/errors"
	"github.com/jwalitptl/vacina-dashboard/pkg/httputil"
)

const (
	WidgetTop        = "top-vacinas"
	WidgetAgesLegend = "faixa-etaria-legenda"
	WidgetComparison = "cadastrados-vacinados"
)

type Handler struct {
	service *dashboard.Service
	logger  zerolog.Logger
}

func NewHandler(service *dashboard.Service, logger zerolog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	d := r.Group("/dashboard")
	{
		d.GET("", h.Summary)
		d.GET("/charts/:chart", middleware.Cache(middleware.ChartCacheConfig()), h.Chart)
		d.GET("/widgets/:widget", h.Widget)
	}
}

// RegisterPages mounts the home page.
func (h *Handler) RegisterPages(r *gin.RouterGroup) {
	r.GET("/dashboard", h.Page)
}

// Summary answers all four summaries. Failed pipelines are listed in
// errors and do not fail the request.
func (h *Handler) Summary(c *gin.Context) {
	s, ok := handler.Session(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, h.service.Load(c.Request.Context(), s.Token))
}

// Chart renders periodo or faixa-etaria as SVG or PNG, e.g. periodo.png.
func (h *Handler) Chart(c *gin.Context) {
	s, ok := handler.Session(c)
	if !ok {
		return
	}
	name, ext, found := strings.Cut(c.Param("chart"), ".")
	if !found {
		ext = string(chart.FormatSVG)
	}
	format, err := chart.ParseFormat(ext)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("Formato de gráfico inválido", err))
		return
	}

	ctx := c.Request.Context()
	var buf bytes.Buffer
	var renderErr error
	switch name {
	case dashboard.PipelinePeriod:
		p, err := h.service.Period(ctx, s.Token)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		renderErr = h.service.RenderPeriod(&buf, format, p)
	case dashboard.PipelineAges:
		d, err := h.service.Ages(ctx, s.Token)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		renderErr = h.service.RenderAges(&buf, format, d)
	default:
		httputil.RespondWithError(c, apperrors.NotFound("Gráfico não encontrado", fmt.Errorf("unknown chart %q", name)))
		return
	}
	if renderErr != nil {
		httputil.RespondWithError(c, apperrors.Internal(renderErr))
		return
	}
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// Widget renders one of the HTML fragments of the home page.
func (h *Handler) Widget(c *gin.Context) {
	s, ok := handler.Session(c)
	if !ok {
		return
	}
	frag, err := h.widget(c, s.Token, c.Param("widget"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", frag)
}

func (h *Handler) widget(c *gin.Context, token, name string) ([]byte, error) {
	ctx := c.Request.Context()
	var buf bytes.Buffer
	switch name {
	case WidgetTop:
		top, err := h.service.TopVaccines(ctx, token)
		if err != nil {
			return nil, err
		}
		if err := widget.Render(&buf, "bars", widget.Bars(top.Items)); err != nil {
			return nil, apperrors.Internal(err)
		}
	case WidgetAgesLegend:
		ages, err := h.service.Ages(ctx, token)
		if err != nil {
			return nil, err
		}
		if err := widget.Render(&buf, "legend", widget.Legend(ages.Data())); err != nil {
			return nil, apperrors.Internal(err)
		}
	case WidgetComparison:
		cmp, err := h.service.Comparison(ctx, token)
		if err != nil {
			return nil, err
		}
		if err := widget.Render(&buf, "comparison", widget.Comparison(*cmp)); err != nil {
			return nil, apperrors.Internal(err)
		}
	default:
		return nil, apperrors.NotFound("Componente não encontrado", fmt.Errorf("unknown widget %q", name))
	}
	return buf.Bytes(), nil
}

// Page renders the home page. Each card shows its pipeline's error in
// place of the chart when that pipeline failed.
func (h *Handler) Page(c *gin.Context) {
	s, ok := handler.Session(c)
	if !ok {
		return
	}
	d := h.service.Load(c.Request.Context(), s.Token)
	page := web.DashboardPage{
		Nav:    web.Nav{Username: s.Username(), Elevated: s.Elevated(), Current: "dashboard"},
		Errors: map[string]string{},
	}
	for k, v := range d.Errors {
		page.Errors[k] = v
	}

	failed := func(pipeline, what string, err error) {
		h.logger.Error().Err(err).Str("pipeline", pipeline).Msg("failed to render " + what)
		page.Errors[pipeline] = apperrors.Message(apperrors.Internal(err))
	}
	fragment := func(pipeline, name string, data interface{}) template.HTML {
		html, err := widget.HTML(name, data)
		if err != nil {
			failed(pipeline, "widget", err)
		}
		return html
	}
	svg := func(pipeline string, draw func(*bytes.Buffer) error) template.HTML {
		var buf bytes.Buffer
		if err := draw(&buf); err != nil {
			failed(pipeline, "chart", err)
			return ""
		}
		return template.HTML(buf.String())
	}

	if d.Period != nil {
		page.PeriodChart = svg(dashboard.PipelinePeriod, func(buf *bytes.Buffer) error {
			return h.service.RenderPeriod(buf, chart.FormatSVG, d.Period)
		})
	}
	if d.TopVaccines != nil {
		page.Top = fragment(dashboard.PipelineTop, "bars", widget.Bars(d.TopVaccines.Items))
	}
	if d.Ages != nil {
		page.AgesChart = svg(dashboard.PipelineAges, func(buf *bytes.Buffer) error {
			return h.service.RenderAges(buf, chart.FormatSVG, d.Ages)
		})
		page.Legend = fragment(dashboard.PipelineAges, "legend", widget.Legend(d.Ages.Data()))
	}
	if d.Comparison != nil {
		page.Comparison = fragment(dashboard.PipelineComparison, "comparison", widget.Comparison(*d.Comparison))
	}
	c.HTML(http.StatusOK, web.PageDashboard, page)
}
