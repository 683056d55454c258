// Renovad is a renovation decision-guidance chat service.
//
// It serves an SSE chat API that walks users through decision graphs
// (tile, flooring, budget, inspection), escalates comparison-style
// questions into multi-section research reports after confirmation,
// and grounds answers in a local knowledge base plus an extracted
// user profile.
//
// Usage:
//
//	# Start the server with defaults
//	renovad serve
//
//	# Use a specific config file
//	renovad serve --config /etc/renovad/config.yaml
//
// Configuration comes from ~/.config/renovad/config.yaml plus
// RENOVAD_* environment variables; see internal/config.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/renovad/internal/config"
	"github.com/fyrsmithlabs/renovad/internal/decision"
	"github.com/fyrsmithlabs/renovad/internal/generation"
	"github.com/fyrsmithlabs/renovad/internal/logging"
	"github.com/fyrsmithlabs/renovad/internal/memory"
	"github.com/fyrsmithlabs/renovad/internal/orchestrator"
	"github.com/fyrsmithlabs/renovad/internal/profile"
	"github.com/fyrsmithlabs/renovad/internal/research"
	"github.com/fyrsmithlabs/renovad/internal/retrieval"
	"github.com/fyrsmithlabs/renovad/internal/server"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var configFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "renovad",
	Short:   "Renovation decision-guidance chat service",
	Version: fmt.Sprintf("%s (commit %s, built %s)", version, gitCommit, buildDate),
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the renovad HTTP server",
	Long: `Start the renovad HTTP server.

The server exposes:
  POST /api/v1/chat       SSE chat endpoint
  POST /api/v1/knowledge  knowledge-base ingestion
  GET  /health            health check
  GET  /metrics           Prometheus metrics`,
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.config/renovad/config.yaml)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadWithFile(configFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.NewLogger(logging.NewDefaultConfig(), nil)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Zap()

	log.Info("starting renovad",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port))

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv, err := buildServer(cfg, log)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	log.Info("shutdown complete")
	return nil
}

// buildServer wires configuration into the full service graph:
// registry, stores, generation, retrieval, research, orchestrator,
// HTTP server.
func buildServer(cfg *config.Config, log *zap.Logger) (*server.Server, error) {
	registry, err := loadRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("loading decision graphs: %w", err)
	}

	working, err := buildWorkingStore(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("initializing working memory: %w", err)
	}

	gen, err := generation.NewService(generation.Config{
		BaseURL:    cfg.Generation.BaseURL,
		Model:      cfg.Generation.Model,
		APIKey:     cfg.Generation.APIKey.Value(),
		Timeout:    cfg.Generation.Timeout.Duration(),
		RateLimit:  cfg.Generation.RateLimit,
		MaxRetries: cfg.Generation.MaxRetries,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("initializing generation service: %w", err)
	}

	var kb *retrieval.Store
	if cfg.Retrieval.Enabled {
		kb, err = retrieval.NewStore(retrieval.Config{
			Path:             expandHome(cfg.Retrieval.Path),
			Collection:       cfg.Retrieval.Collection,
			TopK:             cfg.Retrieval.TopK,
			EmbeddingBaseURL: cfg.Generation.BaseURL,
			EmbeddingAPIKey:  cfg.Generation.APIKey.Value(),
		}, log)
		if err != nil {
			return nil, fmt.Errorf("initializing knowledge base: %w", err)
		}
	}

	engine := decision.NewEngine(registry, decision.NewMemoryStore(),
		decision.EngineOptions{OverwriteOnRematch: cfg.Decision.OverwriteOnRematch}, log)

	orchCfg := orchestrator.Config{
		Options: orchestrator.Options{
			UserType:        orchestrator.UserTypeConsumer,
			DecisionEnabled: true,
			ResearchEnabled: cfg.Research.Enabled,
			ToolsEnabled:    cfg.Tools.Enabled,
			MemoryEnabled:   cfg.Memory.Enabled,
			RetrievalTopK:   cfg.Retrieval.TopK,
		},
		Profiles:    profile.NewStore(),
		Engine:      engine,
		Coordinator: research.NewCoordinator(working, log),
		Pipeline:    research.NewPipeline(gen, log),
		Generator:   gen,
		Working:     working,
		ShortTerm:   memory.NewShortTerm(cfg.Memory.ShortTermLimit),
		LongTerm:    memory.NewLongTerm(),
		Logger:      log,
	}
	if kb != nil {
		orchCfg.Retriever = kb
	}
	orch, err := orchestrator.New(orchCfg)
	if err != nil {
		return nil, fmt.Errorf("initializing orchestrator: %w", err)
	}

	return server.NewServer(orch, kb, log, &server.Config{
		Host: "0.0.0.0",
		Port: cfg.Server.Port,
	})
}

func loadRegistry(cfg *config.Config) (*decision.Registry, error) {
	if cfg.Decision.GraphsPath != "" {
		return decision.NewRegistryFromFile(expandHome(cfg.Decision.GraphsPath))
	}
	return decision.NewRegistry()
}

func buildWorkingStore(cfg *config.Config, log *zap.Logger) (memory.WorkingStore, error) {
	if cfg.Memory.WorkingStore == "nats" {
		log.Info("using NATS working memory",
			zap.String("url", cfg.Memory.NATSURL),
			zap.String("bucket", cfg.Memory.NATSBucket))
		return memory.NewNATSWorkingStore(cfg.Memory.NATSURL, cfg.Memory.NATSBucket)
	}
	return memory.NewWorkingStore(), nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
