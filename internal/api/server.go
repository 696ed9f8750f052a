package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gridgate-dev/gridgate/internal/api/handlers"
	"github.com/gridgate-dev/gridgate/internal/logging"
	"github.com/gridgate-dev/gridgate/internal/version"
)

// Server is the gridgate HTTP API server.
type Server struct {
	cfg        *Config
	httpServer *http.Server
	startTime  time.Time
}

// NewServer creates an API server from a validated configuration.
func NewServer(cfg *Config) *Server {
	// Set Gin to release mode for production
	gin.SetMode(gin.ReleaseMode)

	return &Server{
		cfg:       cfg,
		startTime: time.Now(),
	}
}

// Start binds the listener and serves in a background goroutine.
func (s *Server) Start() error {
	logging.Info("Starting HTTP API server on %s:%d", s.cfg.BindAddr, s.cfg.BindPort)

	router := gin.New()

	// Configure Gin logging only if not already configured by CLI tools
	if !logging.IsConfiguredByCLI() {
		gin.DefaultWriter = logging.NewLevelWriter("INFO", "gin")
		gin.DefaultErrorWriter = logging.NewLevelWriter("ERROR", "gin")
	}

	router.Use(s.loggingMiddleware())
	router.Use(s.corsMiddleware())
	router.Use(gin.Recovery())

	s.setupRoutes(router)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.BindAddr, s.cfg.BindPort),
		Handler: router,
		// Timeouts for production
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Test binding first to catch errors immediately
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind to %s: %w", s.httpServer.Addr, err)
	}
	listener.Close()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("HTTP server failed: %v", err)
		}
	}()

	logging.Success("HTTP API server started successfully")
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down HTTP API server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// handleHealth delegates to handlers.HandleHealth
func (s *Server) handleHealth(c *gin.Context) {
	handlers.HandleHealth(version.GridgatedVersion, s.startTime)(c)
}

// handleSubmitMutations delegates to handlers.HandleSubmitMutations
func (s *Server) handleSubmitMutations(c *gin.Context) {
	handlers.HandleSubmitMutations(s.cfg.Executor, s.cfg.Tasks)(c)
}

// handleTasks delegates to handlers.HandleTasks
func (s *Server) handleTasks(c *gin.Context) {
	handlers.HandleTasks(s.cfg.Tasks)(c)
}

// handleTaskByID delegates to handlers.HandleTaskByID
func (s *Server) handleTaskByID(c *gin.Context) {
	handlers.HandleTaskByID(s.cfg.Tasks)(c)
}

// handleGetPolicy delegates to handlers.HandleGetPolicy
func (s *Server) handleGetPolicy(c *gin.Context) {
	handlers.HandleGetPolicy(s.cfg.Enforcer)(c)
}

// handleUpdatePolicy delegates to handlers.HandleUpdatePolicy
func (s *Server) handleUpdatePolicy(c *gin.Context) {
	handlers.HandleUpdatePolicy(s.cfg.Enforcer)(c)
}

// handleLimiter delegates to handlers.HandleLimiter
func (s *Server) handleLimiter(c *gin.Context) {
	handlers.HandleLimiter(s.cfg.Limiter)(c)
}

// handleSnapshots delegates to handlers.HandleSnapshots
func (s *Server) handleSnapshots(c *gin.Context) {
	handlers.HandleSnapshots(s.cfg.Snapshots)(c)
}

// handleSnapshotByID delegates to handlers.HandleSnapshotByID
func (s *Server) handleSnapshotByID(c *gin.Context) {
	handlers.HandleSnapshotByID(s.cfg.Snapshots)(c)
}
