package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rybkr/gitgraph/internal/config"
	"github.com/rybkr/gitgraph/internal/domain"
	"github.com/rybkr/gitgraph/internal/log"
	"github.com/rybkr/gitgraph/internal/metrics"
	"github.com/rybkr/gitgraph/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		host    string
		port    int
		noWatch bool
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the commit graph over HTTP",
		Long: `Serve the commit graph over HTTP and push updates to websocket clients.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  GITGRAPH_REPO              Repository path (default: .)
  GITGRAPH_GIT_PATH          git executable (default: PATH lookup)
  GITGRAPH_DEFAULT_LIMIT     Commits per graph (default: 400, max: 2000)
  GITGRAPH_HOST              Host to bind to (default: 127.0.0.1)
  GITGRAPH_PORT              Port to listen on (default: 8080)
  GITGRAPH_LOG_LEVEL         debug, info, warn, error (default: info)
  GITGRAPH_LOG_FORMAT        auto, console, json (default: auto)
  GITGRAPH_POLL_INTERVAL     Poll period (default: 5s)
  GITGRAPH_WATCH             Watch the git directory for changes (default: true)
  GITGRAPH_WATCH_DEBOUNCE    Quiet period after a change (default: 100ms)
  GITGRAPH_ALLOWED_ORIGINS   Comma-separated browser origins (default: *)

Endpoints:
  GET /api/info              Repository name, root and git directory
  GET /api/graph?limit=N     Commit graph
  GET /api/summary?limit=N   Commit, edge, merge, branch and tag counts
  GET /api/ws                Websocket with info, graph, summary and error messages
  GET /metrics               Prometheus metrics
  GET /healthz               Liveness check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			cfg = cfg.WithListen(host, port).WithAllowedOrigins(origins)
			if noWatch {
				cfg = cfg.WithWatch(false)
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Host to bind to (overrides GITGRAPH_HOST)")
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (overrides GITGRAPH_PORT)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Rely on polling only")
	cmd.Flags().StringSliceVar(&origins, "allowed-origins", nil, "Browser origins for CORS and websockets (overrides GITGRAPH_ALLOWED_ORIGINS)")

	return cmd
}

func runServe(ctx context.Context, cfg config.AppConfig) error {
	logger := log.NewLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ws, err := openWorkspace(cfg)
	if err != nil {
		return err
	}

	collector, err := domain.NewGraphCollector(ws, domain.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting server",
		zap.String("version", version),
		zap.String("repo", ws.RootPath()),
		zap.String("addr", cfg.Addr()),
	)

	srv := server.NewServer(collector, ws.Info(), cfg, metrics.NewCollector("gitgraph"), logger)
	if err := srv.Run(ctx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
