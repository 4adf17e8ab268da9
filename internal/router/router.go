package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/vacina-dashboard/internal/middleware"
	"github.com/jwalitptl/vacina-dashboard/internal/web"
	"github.com/jwalitptl/vacina-dashboard/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// PageHandler also serves HTML pages outside the API group.
type PageHandler interface {
	Handler
	RegisterPages(*gin.RouterGroup)
}

// Handlers are the route groups mounted by the router.
type Handlers struct {
	Health    Handler
	Metrics   gin.HandlerFunc
	Dashboard PageHandler
	Screens   PageHandler
	Patients  Handler
	Profile   Handler
}

type Router struct {
	engine   *gin.Engine
	handlers Handlers
	metrics  *metrics.Metrics
	config   RouterConfig
}

type RouterConfig struct {
	Mode       string
	RateLimit  rate.Limit
	RateBurst  int
	Timeout    time.Duration
	CORSConfig middleware.CORSConfig
	Session    middleware.SessionConfig
}

const eventsPath = "/events"

func NewRouter(handlers Handlers, m *metrics.Metrics, config RouterConfig) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	if config.RateLimit <= 0 {
		config.RateLimit = rate.Inf
	}
	if config.Session.LoginURL == "" {
		config.Session.LoginURL = middleware.DefaultSessionConfig().LoginURL
	}

	engine := gin.New()
	engine.SetHTMLTemplate(web.Templates())

	r := &Router{
		engine:   engine,
		handlers: handlers,
		metrics:  m,
		config:   config,
	}

	// Add core middlewares
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
	)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(
		rateLimiter.RateLimit(),
		middleware.Timeout(middleware.TimeoutConfig{
			Duration: config.Timeout,
			Skip: []string{
				"/api/v1/screens/:screen" + eventsPath,
				"/telas/:screen" + eventsPath,
			},
		}),
		middleware.SizeLimit(middleware.DefaultSizeLimitConfig()),
	)

	return r
}

func (r *Router) Setup() {
	if r.handlers.Metrics != nil {
		r.engine.GET("/metrics", r.handlers.Metrics)
	}
	r.engine.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/dashboard")
	})

	api := r.engine.Group("/api/v1")

	// Add version header
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})
	api.Use(
		middleware.Cache(middleware.DefaultCacheConfig()),
		middleware.Validation(middleware.DefaultValidationConfig()),
	)

	// Health check endpoints
	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(api)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.Authenticate(r.config.Session))
	r.setupProtectedRoutes(protected)

	pages := r.engine.Group("")
	pages.Use(middleware.AuthenticatePage(r.config.Session))
	r.setupPages(pages)
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	for _, h := range []Handler{r.handlers.Dashboard, r.handlers.Screens, r.handlers.Patients, r.handlers.Profile} {
		if h != nil {
			h.RegisterRoutes(rg)
		}
	}
}

func (r *Router) setupPages(rg *gin.RouterGroup) {
	for _, h := range []PageHandler{r.handlers.Dashboard, r.handlers.Screens} {
		if h != nil {
			h.RegisterPages(rg)
		}
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		if r.metrics == nil {
			return
		}
		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.RequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			errType := "client"
			if c.Writer.Status() >= 500 {
				errType = "server"
			}
			r.metrics.ErrorTotal.WithLabelValues(c.Request.Method, path, errType).Inc()
		}
	}
}
