package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/vacina-dashboard/config"
	"github.com/jwalitptl/vacina-dashboard/internal/backend"
	"github.com/jwalitptl/vacina-dashboard/internal/dashboard"
	dashboardHandler "github.com/jwalitptl/vacina-dashboard/internal/handler/dashboard"
	"github.com/jwalitptl/vacina-dashboard/internal/handler/health"
	patientHandler "github.com/jwalitptl/vacina-dashboard/internal/handler/patient"
	"github.com/jwalitptl/vacina-dashboard/internal/handler/prometheus"
	screenHandler "github.com/jwalitptl/vacina-dashboard/internal/handler/screen"
	userHandler "github.com/jwalitptl/vacina-dashboard/internal/handler/user"
	"github.com/jwalitptl/vacina-dashboard/internal/middleware"
	"github.com/jwalitptl/vacina-dashboard/internal/model"
	"github.com/jwalitptl/vacina-dashboard/internal/patient"
	"github.com/jwalitptl/vacina-dashboard/internal/router"
	"github.com/jwalitptl/vacina-dashboard/internal/screens"
	"github.com/jwalitptl/vacina-dashboard/internal/session"
	"github.com/jwalitptl/vacina-dashboard/pkg/logger"
	"github.com/jwalitptl/vacina-dashboard/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.Setup(cfg.Logger())
	m, registry := metrics.New("vacina_dashboard")

	client := backend.NewClient(cfg.BackendClient(), m, logger.Component(l, "backend"))

	store, err := newStore(cfg, m, l)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to create session store")
	}
	defer store.Close()

	// Initialize services
	patientSvc := patient.NewService(client, store, logger.Component(l, "patient"))
	dashboardSvc := dashboard.NewService(client, m, logger.Component(l, "dashboard"))
	screenRegistry := screens.NewRegistry(cfg.ScreenRegistry(), screens.Loaders{
		Patients: func(ctx context.Context, s *session.Session) ([]model.Patient, error) {
			return client.ListPatients(ctx, s.Token, s.Elevated())
		},
		Vaccines: func(ctx context.Context, s *session.Session) ([]model.Vaccine, error) {
			return client.ListVaccines(ctx, s.Token)
		},
		Users: func(ctx context.Context, s *session.Session) ([]model.User, error) {
			return client.ListUsers(ctx, s.Token)
		},
		History: patientSvc.SelectedHistory,
	})

	// Initialize handlers
	handlers := router.Handlers{
		Health: health.NewHandler(map[string]health.Check{
			"backend": client.Ping,
			"session": store.Ping,
		}),
		Metrics:   prometheus.New(registry).Handler(),
		Dashboard: dashboardHandler.NewHandler(dashboardSvc, logger.Component(l, "dashboard")),
		Screens:   screenHandler.NewHandler(screenRegistry, cfg.Session.LoginURL, logger.Component(l, "screens")),
		Patients:  patientHandler.NewHandler(patientSvc, screenRegistry, logger.Component(l, "patient")),
		Profile:   userHandler.NewHandler(patientSvc, screenRegistry),
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.Security.AllowedOrigins

	// Setup router
	r := router.NewRouter(handlers, m, router.RouterConfig{
		Mode:       cfg.Server.Mode,
		RateLimit:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:  cfg.RateLimit.Burst,
		Timeout:    cfg.Server.RequestTimeout,
		CORSConfig: cors,
		Session:    middleware.SessionConfig{LoginURL: cfg.Session.LoginURL},
	})
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		l.Info().Str("addr", srv.Addr).Str("backend", cfg.Backend.URL).Msg("starting dashboard")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	l.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	l.Info().Msg("server exited properly")
}

func newStore(cfg *config.Config, m *metrics.Metrics, l zerolog.Logger) (session.Store, error) {
	if cfg.Session.Store != config.StoreRedis {
		return session.NewMemoryStore(cfg.Session.TTL, m), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return session.NewRedisStore(ctx, cfg.RedisStore(), m, logger.Component(l, "session"))
}
