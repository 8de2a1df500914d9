package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/polymath-ai/polymath/config"
	"github.com/polymath-ai/polymath/internal/gateway"
	"github.com/polymath-ai/polymath/internal/orchestrator"
	"github.com/polymath-ai/polymath/internal/profile"
	"github.com/polymath-ai/polymath/internal/sources"
	"github.com/polymath-ai/polymath/internal/telemetry"
)

// Server owns the HTTP surface over the orchestration core.
type Server struct {
	cfg       *config.Config
	orch      *orchestrator.Orchestrator
	profiles  profile.Store
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

func New(cfg *config.Config, orch *orchestrator.Orchestrator, profiles profile.Store, tele *telemetry.Telemetry) *Server {
	return &Server{
		cfg:       cfg,
		orch:      orch,
		profiles:  profiles,
		telemetry: tele,
		logger:    log.New(log.Writer(), "[HTTP] ", log.LstdFlags),
	}
}

// Echo builds the configured echo instance with all routes registered.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	// Unified HTTP error handler with structured JSON and logging
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := "internal server error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		s.logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.POST("/chat", s.chat)
	api.POST("/chat/stream", s.chatStream)
	api.GET("/agents", s.listAgents)
	api.GET("/user/:id/profile", s.getProfile)
	api.PUT("/user/:id/profile", s.putProfile)

	return e
}

// Run wires the full dependency graph from configuration and serves until
// the listener fails.
func Run(cfg *config.Config) error {
	tele := telemetry.New(cfg.Telemetry)
	llm := gateway.NewLLMClient(cfg.LLM, tele)
	search := gateway.NewSearchClient(cfg.Search, tele)

	validator, err := sources.NewValidator(cfg.Sources.ProbeTimeout, tele)
	if err != nil {
		return fmt.Errorf("building source validator: %w", err)
	}
	finder := sources.NewSynthesizer(llm, validator, nil)

	var profiles profile.Store
	if cfg.Profiles.RedisAddr != "" {
		profiles, err = profile.NewRedisStore(context.Background(), cfg.Profiles.RedisAddr, cfg.Profiles.RedisPassword, cfg.Profiles.RedisDB)
		if err != nil {
			return fmt.Errorf("building profile store: %w", err)
		}
	} else {
		profiles = profile.NewMemoryStore()
	}

	orchLogger := log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	orch := orchestrator.New(cfg, llm, llm, search, finder, tele, orchLogger)

	srv := New(cfg, orch, profiles, tele)
	e := srv.Echo()

	addr := cfg.General.Listen
	if addr == "" {
		addr = ":5000"
	}
	srv.logger.Printf("listening on %s", addr)
	return e.Start(addr)
}
