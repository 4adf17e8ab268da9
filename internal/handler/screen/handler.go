package screen

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/vacina-dashboard/internal/handler"
	"github.com/jwalitptl/vacina-dashboard/internal/listing"
	"github.com/jwalitptl/vacina-dashboard/internal/middleware"
	"github.com/jwalitptl/vacina-dashboard/internal/screens"
	"github.com/jwalitptl/vacina-dashboard/internal/session"
	"github.com/jwalitptl/vacina-dashboard/internal/web"
	apperrors "github.com/jwalitptl/vacina-dashboard/pkg/errors"
	"github.com/jwalitptl/vacina-dashboard/pkg/httputil"
)

const MsgFilterScheduled = "Filtro agendado"

type Handler struct {
	registry  *screens.Registry
	loginURL  string
	logger    zerolog.Logger
	heartbeat time.Duration
}

func NewHandler(registry *screens.Registry, loginURL string, logger zerolog.Logger) *Handler {
	return &Handler{registry: registry, loginURL: loginURL, logger: logger, heartbeat: 25 * time.Second}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	screen := r.Group("/screens/:screen")
	{
		screen.GET("", h.View)
		screen.POST("/reload", h.Reload)
		screen.PUT("/filter", h.ApplyFilter)
		screen.DELETE("/filter", h.ClearFilter)
		screen.POST("/page/:n", h.GoTo)
		screen.POST("/input", h.Input)
		screen.GET("/events", h.Events)
	}
}

// RegisterPages mounts the HTML list pages.
func (h *Handler) RegisterPages(r *gin.RouterGroup) {
	r.GET("/telas/:screen", h.Page)
	r.GET("/telas/:screen/events", h.PageEvents)
}

func (h *Handler) binding(c *gin.Context) (screens.Binding, *session.Session, bool) {
	s, ok := handler.Session(c)
	if !ok {
		return nil, nil, false
	}
	b, err := h.registry.Screen(s, c.Param("screen"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return nil, nil, false
	}
	return b, s, true
}

// load fetches the screen's records, once or again when force is set. A
// malformed payload leaves an empty screen and is not reported as a failure.
func (h *Handler) load(c *gin.Context, b screens.Binding, force bool) error {
	var err error
	if force {
		err = b.Reload(c.Request.Context())
	} else {
		err = b.Ensure(c.Request.Context())
	}
	if err == nil {
		return nil
	}
	if apperrors.Is(err, apperrors.ErrMalformed) {
		h.logger.Warn().Err(err).Str("screen", b.Name()).Msg("malformed payload, showing empty screen")
		return nil
	}
	return err
}

// View answers the current page, applying the filter and page given in the
// query string.
func (h *Handler) View(c *gin.Context) {
	b, _, ok := h.binding(c)
	if !ok {
		return
	}
	if err := h.load(c, b, false); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, navigate(b, c.Request.URL.Query()))
}

func (h *Handler) Reload(c *gin.Context) {
	b, _, ok := h.binding(c)
	if !ok {
		return
	}
	if err := h.load(c, b, true); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, b.View())
}

// ApplyFilter replaces the whole filter and returns to the first page.
func (h *Handler) ApplyFilter(c *gin.Context) {
	b, _, ok := h.binding(c)
	if !ok {
		return
	}
	var f listing.Filter
	if !handler.Bind(c, &f) {
		return
	}
	if err := h.load(c, b, false); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, b.ApplyFilter(f))
}

func (h *Handler) ClearFilter(c *gin.Context) {
	b, _, ok := h.binding(c)
	if !ok {
		return
	}
	if err := h.load(c, b, false); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, b.ClearFilter())
}

// GoTo moves to a page number or to the next or previous page. Moves
// outside the page range leave the page unchanged.
func (h *Handler) GoTo(c *gin.Context) {
	b, _, ok := h.binding(c)
	if !ok {
		return
	}
	if err := h.load(c, b, false); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var view interface{}
	switch arg := c.Param("n"); arg {
	case "next":
		view, _ = b.Next()
	case "prev":
		view, _ = b.Prev()
	default:
		n, err := strconv.Atoi(arg)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("Página inválida", err))
			return
		}
		view, _ = b.GoTo(n)
	}
	httputil.RespondWithSuccess(c, view)
}

// Input takes the search box as it is typed. The filter is applied once
// typing pauses and the new page is sent to the screen's event stream.
func (h *Handler) Input(c *gin.Context) {
	b, _, ok := h.binding(c)
	if !ok {
		return
	}
	var f listing.Filter
	if !handler.Bind(c, &f) {
		return
	}
	if err := h.load(c, b, false); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	b.Input(merge(b.Filter(), f))
	httputil.RespondWithMessage(c, http.StatusAccepted, MsgFilterScheduled)
}

// Events streams the page views produced by Input as JSON.
func (h *Handler) Events(c *gin.Context) {
	b, _, ok := h.binding(c)
	if !ok {
		return
	}
	h.stream(c, b, func(v interface{}) {
		c.SSEvent("view", v)
	})
}

// Page renders a list page.
func (h *Handler) Page(c *gin.Context) {
	b, s, ok := h.binding(c)
	if !ok {
		return
	}
	page := web.ScreenPage{
		Nav:    web.Nav{Username: s.Username(), Elevated: s.Elevated(), Current: b.Name()},
		Screen: b.Name(),
	}
	if err := h.load(c, b, false); err != nil {
		if apperrors.Is(err, apperrors.ErrUnauthorized) {
			middleware.ClearToken(c)
			c.Redirect(http.StatusFound, h.loginURL)
			return
		}
		_ = c.Error(err)
		page.Error = apperrors.Message(err)
	}
	page.View = navigate(b, c.Request.URL.Query())
	c.HTML(http.StatusOK, web.PageScreen, page)
}

// PageEvents streams the re-rendered table of an open list page.
func (h *Handler) PageEvents(c *gin.Context) {
	b, _, ok := h.binding(c)
	if !ok {
		return
	}
	h.stream(c, b, func(v interface{}) {
		var buf bytes.Buffer
		if err := web.Render(&buf, web.FragmentTable, web.ScreenPage{Screen: b.Name(), View: v}); err != nil {
			h.logger.Error().Err(err).Str("screen", b.Name()).Msg("failed to render table")
			return
		}
		c.SSEvent("table", buf.String())
	})
}

func (h *Handler) stream(c *gin.Context, b screens.Binding, send func(v interface{})) {
	views, cancel := b.Subscribe()
	defer cancel()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Stream(func(io.Writer) bool {
		select {
		case v, ok := <-views:
			if !ok {
				return false
			}
			send(v)
			return true
		case <-ticker.C:
			c.SSEvent("ping", "")
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// navigate applies the query string to b: filter values first, which
// return to page one, then an explicit page or move.
func navigate(b screens.Binding, q url.Values) interface{} {
	if f, changed := fromQuery(b.Filter(), q); changed {
		b.ApplyFilter(f)
	}
	switch q.Get("move") {
	case "next":
		b.Next()
	case "prev":
		b.Prev()
	}
	if p := q.Get("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			b.GoTo(n)
		}
	}
	return b.View()
}

var reserved = map[string]bool{"page": true, "move": true}

// fromQuery overlays the query's filter values on current. An empty value
// clears that field.
func fromQuery(current listing.Filter, q url.Values) (listing.Filter, bool) {
	changed := false
	next := listing.Filter{Text: current.Text, Fields: map[string]string{}}
	for k, v := range current.Fields {
		next.Fields[k] = v
	}
	for key, values := range q {
		if reserved[key] || len(values) == 0 {
			continue
		}
		value := values[0]
		if key == "q" {
			changed = changed || value != current.Text
			next.Text = value
			continue
		}
		changed = changed || value != current.Fields[key]
		if value == "" {
			delete(next.Fields, key)
		} else {
			next.Fields[key] = value
		}
	}
	return next, changed
}

// merge keeps current's field values unless in overrides them.
func merge(current, in listing.Filter) listing.Filter {
	out := listing.Filter{Text: in.Text, Fields: map[string]string{}}
	for k, v := range current.Fields {
		out.Fields[k] = v
	}
	for k, v := range in.Fields {
		if v == "" {
			delete(out.Fields, k)
			continue
		}
		out.Fields[k] = v
	}
	return out
}
