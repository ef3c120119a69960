package main

import (
	"github.com/rybkr/gitgraph/internal/command"
	"github.com/rybkr/gitgraph/internal/domain"
	"github.com/rybkr/gitgraph/internal/log"
	"github.com/rybkr/gitgraph/internal/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func stdioCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

The server offers one tool, git-graph, which returns the commit graph of
the configured repository. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(flags)
		},
	}
}

func runStdio(flags *globalFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	logger := log.NewLogger(cfg)
	defer func() { _ = logger.Sync() }()

	// Without a repository the server still starts; the tool then reports
	// that no workspace is attached.
	var host domain.Host
	ws, err := openWorkspace(cfg)
	if err != nil {
		logger.Warn("no repository attached", zap.Error(err))
	} else {
		host = ws
	}

	logger.Info("starting MCP server", zap.String("version", version))

	runner := command.NewRunner(
		command.WithDefaultLimit(cfg.DefaultLimit()),
		command.WithLogger(logger),
	)
	return mcp.NewServer(runner, host, version, logger).ServeStdio()
}
