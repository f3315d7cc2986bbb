// Package server hosts the invox HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/invoxhq/invox/internal/api"
	"github.com/invoxhq/invox/internal/cache"
	"github.com/invoxhq/invox/internal/config"
	"github.com/invoxhq/invox/internal/extractor"
	"github.com/invoxhq/invox/internal/home"
	"github.com/invoxhq/invox/internal/metrics"
	"github.com/invoxhq/invox/internal/pipeline"
	"github.com/invoxhq/invox/internal/pricing"
	"github.com/invoxhq/invox/internal/providers"
	"github.com/invoxhq/invox/internal/server/endpoints"
	"github.com/invoxhq/invox/internal/svcctx"
)

// Server is the main Invox HTTP server.
type Server struct {
	httpServer *http.Server
	configMgr  *config.Manager
	logger     *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Home is the invox home directory
	Home *home.Dir
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ConfigManager == nil {
		return nil, errors.New("config manager is required")
	}

	appCfg := cfg.ConfigManager.Get()

	extractionCache := cache.New(
		time.Duration(appCfg.Cache.TTLSeconds)*time.Second,
		appCfg.Cache.MaxEntries,
	)
	recorder := metrics.NewRecorder()

	client := newConfigSwitchedClient(cfg.ConfigManager, cfg.Logger)
	pipe := pipeline.New(extractor.New(client, cfg.Logger), extractionCache, recorder, cfg.Logger)
	if cfg.Home != nil {
		pipe.SetArtifactDir(cfg.Home)
	}

	s := &Server{
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
		services: &svcctx.Services{
			ConfigManager: cfg.ConfigManager,
			Pipeline:      pipe,
			PricingRepo:   pricing.NewMemoryRepository(),
			Cache:         extractionCache,
			Recorder:      recorder,
			Logger:        cfg.Logger,
			Home:          cfg.Home,
		},
	}

	cfg.ConfigManager.OnChange(func(c *config.Config) {
		extractionCache.Configure(
			time.Duration(c.Cache.TTLSeconds)*time.Second,
			c.Cache.MaxEntries,
		)
		cfg.Logger.Info("configuration reloaded",
			"model", c.LLM.Model,
			"mock", c.LLM.Mock,
			"cache_ttl_seconds", c.Cache.TTLSeconds)
	})

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Extraction calls wait on the model
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start starts the server.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Services returns the server's service container. Exposed for tests.
func (s *Server) Services() *svcctx.Services {
	return s.services
}

// Handler returns the fully wired HTTP handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// configSwitchedClient routes each request to the mock or OpenAI client based
// on the configuration at call time, so flipping llm.mock in config.yaml takes
// effect without a restart. The OpenAI client is built lazily because a mock
// deployment may never configure an API key.
type configSwitchedClient struct {
	cm     *config.Manager
	logger *slog.Logger

	mock *providers.MockClient

	mu     sync.Mutex
	openai providers.LLMClient
}

func newConfigSwitchedClient(cm *config.Manager, logger *slog.Logger) providers.LLMClient {
	return &configSwitchedClient{
		cm:     cm,
		logger: logger,
		mock:   &providers.MockClient{},
	}
}

func (c *configSwitchedClient) Name() string {
	if c.cm.Get().LLM.Mock {
		return c.mock.Name()
	}
	return providers.OpenAIName
}

func (c *configSwitchedClient) Chat(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResult, error) {
	cfg := c.cm.Get()
	if cfg.LLM.Mock {
		return c.mock.Chat(ctx, req)
	}
	return c.openaiClient(cfg).Chat(ctx, req)
}

func (c *configSwitchedClient) openaiClient(cfg *config.Config) providers.LLMClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openai == nil {
		c.openai = providers.NewOpenAIClient(providers.OpenAIConfig{
			APIKey:     cfg.ResolveAPIKey(),
			Model:      cfg.LLM.Model,
			RateLimit:  cfg.LLM.RateLimit,
			MaxRetries: cfg.LLM.MaxRetries,
			Timeout:    time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		})
	}
	return c.openai
}
