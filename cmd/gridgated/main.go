// Package main implements the gridgate daemon (gridgated).
// Gridgate is a safety gateway for spreadsheet mutations: callers submit
// typed mutation batches over a REST API, and the daemon applies policy
// gating, rate limiting, batch compilation, diff capture, and snapshot
// protection before anything reaches the remote document API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gridgate-dev/gridgate/internal/api"
	"github.com/gridgate-dev/gridgate/internal/batch"
	"github.com/gridgate-dev/gridgate/internal/config"
	"github.com/gridgate-dev/gridgate/internal/diff"
	"github.com/gridgate-dev/gridgate/internal/logging"
	"github.com/gridgate-dev/gridgate/internal/policy"
	"github.com/gridgate-dev/gridgate/internal/ratelimit"
	"github.com/gridgate-dev/gridgate/internal/sheets"
	"github.com/gridgate-dev/gridgate/internal/snapshot"
	"github.com/gridgate-dev/gridgate/internal/taskstore"
	"github.com/gridgate-dev/gridgate/internal/validate"
	"github.com/gridgate-dev/gridgate/internal/version"
)

const (
	DefaultBind = "127.0.0.1:8488" // Default API bind address
)

// Global configuration
var daemonConfig struct {
	BindAddr      string  // API server bind address
	BindPort      int     // API server bind port
	Endpoint      string  // Remote document API base URL
	PolicyFile    string  // Optional policy YAML path
	ReadRate      float64 // Read tokens per second
	WriteRate     float64 // Write tokens per second
	Burst         float64 // Bucket capacity for both classes
	SnapshotCopy  bool    // Capture full document content in snapshots
	RemoteTimeout time.Duration
	LogLevel      string // Log level: DEBUG, INFO, WARN, ERROR
}

// Root command
var rootCmd = &cobra.Command{
	Use:   "gridgated",
	Short: "Safety gateway daemon for spreadsheet mutation pipelines",
	Long: `Gridgate daemon (gridgated) sits between automation tools and a remote
spreadsheet API. Every submitted mutation batch passes a policy gate,
a rate limiter, and batch compilation; destructive operations need
explicit ranges, and high-risk operations get a snapshot first.`,
	Version: version.GridgatedVersion,
	Example: `  # Start with defaults (loopback API, default policy)
  gridgated

  # Bind externally with a policy file
  gridgated --bind=0.0.0.0:8488 --policy=/etc/gridgate/policy.yaml

  # Point at a staging document API with tighter write pacing
  gridgated --endpoint=https://staging.example.com/v4 --write-rate=0.5`,
	PreRunE: validateDaemonConfig,
	RunE:    runDaemon,
}

func init() {
	// Network flags
	rootCmd.Flags().StringVar(&daemonConfig.BindAddr, "bind", DefaultBind,
		"Address and port for the API server (e.g., 0.0.0.0:8488)")
	rootCmd.Flags().StringVar(&daemonConfig.Endpoint, "endpoint", config.DefaultSheetsEndpoint,
		"Base URL of the remote document API")
	rootCmd.Flags().DurationVar(&daemonConfig.RemoteTimeout, "remote-timeout", 30*time.Second,
		"Per-call timeout for remote API requests")

	// Safety flags
	rootCmd.Flags().StringVar(&daemonConfig.PolicyFile, "policy", "",
		"Path to a policy YAML file (defaults apply when omitted)")
	rootCmd.Flags().BoolVar(&daemonConfig.SnapshotCopy, "snapshot-content", false,
		"Capture full document content in pre-mutation snapshots (costs one read per snapshot)")

	// Rate limiting flags
	rootCmd.Flags().Float64Var(&daemonConfig.ReadRate, "read-rate", 1.0,
		"Read tokens per second for the rate limiter")
	rootCmd.Flags().Float64Var(&daemonConfig.WriteRate, "write-rate", 1.0,
		"Write tokens per second for the rate limiter")
	rootCmd.Flags().Float64Var(&daemonConfig.Burst, "burst", 10,
		"Token bucket capacity for both call classes")

	// Operational flags
	rootCmd.Flags().StringVar(&daemonConfig.LogLevel, "log-level", config.DefaultLogLevel,
		"Log level: DEBUG, INFO, WARN, ERROR")
}

// Validates configuration before running
func validateDaemonConfig(cmd *cobra.Command, args []string) error {
	netAddr, err := validate.ParseBindAddress(daemonConfig.BindAddr)
	if err != nil {
		return fmt.Errorf("invalid bind address: %w", err)
	}

	// Daemon requires non-zero ports (port 0 would let OS choose)
	if err := validate.ValidateField(netAddr.Port, "required,min=1,max=65535"); err != nil {
		return fmt.Errorf("daemon requires specific port (not 0): %w", err)
	}
	daemonConfig.BindAddr = netAddr.Host
	daemonConfig.BindPort = netAddr.Port

	if err := validate.ValidateEndpointURL(daemonConfig.Endpoint); err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}

	if err := logging.ValidateLogLevel(daemonConfig.LogLevel); err != nil {
		return err
	}
	logging.SetLevel(daemonConfig.LogLevel)

	return nil
}

// loadPolicy reads the policy file or falls back to defaults.
func loadPolicy() (policy.Config, error) {
	if daemonConfig.PolicyFile == "" {
		return policy.DefaultConfig(), nil
	}
	cfg, err := policy.LoadConfig(daemonConfig.PolicyFile)
	if err != nil {
		return policy.Config{}, fmt.Errorf("failed to load policy from %s: %w", daemonConfig.PolicyFile, err)
	}
	logging.Info("Loaded policy from %s", daemonConfig.PolicyFile)
	return cfg, nil
}

// Runs the daemon with graceful shutdown handling
func runDaemon(cmd *cobra.Command, args []string) error {
	logging.Info("Starting gridgate daemon v%s", version.GridgatedVersion)
	logging.Info("Remote endpoint: %s", daemonConfig.Endpoint)
	logging.Info("Binding API to %s:%d", daemonConfig.BindAddr, daemonConfig.BindPort)

	policyCfg, err := loadPolicy()
	if err != nil {
		return err
	}
	enforcer, err := policy.NewEnforcer(policyCfg)
	if err != nil {
		return fmt.Errorf("failed to create policy enforcer: %w", err)
	}

	limiter, err := ratelimit.New(ratelimit.Config{
		ReadRate:   daemonConfig.ReadRate,
		ReadBurst:  daemonConfig.Burst,
		WriteRate:  daemonConfig.WriteRate,
		WriteBurst: daemonConfig.Burst,
	})
	if err != nil {
		return fmt.Errorf("failed to create rate limiter: %w", err)
	}
	defer limiter.Close()

	client := sheets.NewHTTPClient(daemonConfig.Endpoint, daemonConfig.RemoteTimeout,
		"gridgated/"+version.GridgatedVersion)

	differ, err := diff.NewEngine(diff.DefaultConfig(), client)
	if err != nil {
		return fmt.Errorf("failed to create diff engine: %w", err)
	}

	var snapReader snapshot.DocumentReader
	if daemonConfig.SnapshotCopy {
		snapReader = client
	}
	snapshots := snapshot.NewMemoryService(snapReader)

	executor, err := batch.NewExecutor(batch.DefaultExecutorConfig(), client, enforcer, limiter, differ, snapshots)
	if err != nil {
		return fmt.Errorf("failed to create executor: %w", err)
	}

	tasks, err := taskstore.New(taskstore.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to create task store: %w", err)
	}
	defer tasks.Close()

	apiConfig := api.DefaultConfig()
	apiConfig.BindAddr = daemonConfig.BindAddr
	apiConfig.BindPort = daemonConfig.BindPort
	apiConfig.Executor = executor
	apiConfig.Enforcer = enforcer
	apiConfig.Limiter = limiter
	apiConfig.Tasks = tasks
	apiConfig.Snapshots = snapshots
	if err := apiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid API configuration: %w", err)
	}

	server := api.NewServer(apiConfig)
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logging.Success("Gridgate daemon started successfully")
	logging.Info("Daemon running... Press Ctrl+C to shutdown")

	sig := <-sigCh
	logging.Info("Received signal: %v", sig)

	// Graceful shutdown
	logging.Info("Initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("Error shutting down API server: %v", err)
	}

	logging.Success("Gridgate daemon shutdown completed")
	return nil
}

// Main entry point
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
