// Package main is the entry point for the gitgraph CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rybkr/gitgraph/internal/config"
	"github.com/rybkr/gitgraph/internal/workspace"
	"github.com/spf13/cobra"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	envFile  string
	repo     string
	git      string
	logLevel string
}

func rootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:           "gitgraph",
		Short:         "Commit graph of a git repository",
		Long:          `gitgraph turns the output of git log into a commit graph with parent edges and ref decorations, printed as a document, served over HTTP or offered as an MCP tool.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "Path to .env file")
	cmd.PersistentFlags().StringVar(&flags.repo, "repo", "", "Path to the repository (default: GITGRAPH_REPO or .)")
	cmd.PersistentFlags().StringVar(&flags.git, "git", "", "git executable to run (default: GITGRAPH_GIT_PATH or PATH lookup)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (default: GITGRAPH_LOG_LEVEL or info)")

	cmd.AddCommand(graphCmd(&flags))
	cmd.AddCommand(serveCmd(&flags))
	cmd.AddCommand(stdioCmd(&flags))
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from the .env file and environment, then
// applies the persistent flags.
func loadConfig(flags *globalFlags) (config.AppConfig, error) {
	cfg, err := config.Load(flags.envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg.WithRepo(flags.repo).WithGitPath(flags.git).WithLogLevel(flags.logLevel), nil
}

func openWorkspace(cfg config.AppConfig) (*workspace.Workspace, error) {
	var opts []workspace.Option
	if cfg.GitPath() != "" {
		opts = append(opts, workspace.WithGitPath(cfg.GitPath()))
	}
	ws, err := workspace.Open(cfg.Repo(), opts...)
	if err != nil {
		var notRepo *workspace.NotRepositoryError
		if errors.As(err, &notRepo) {
			return nil, fmt.Errorf("%s is not inside a git repository (set --repo or GITGRAPH_REPO): %w", cfg.Repo(), err)
		}
		return nil, fmt.Errorf("open repository %s: %w", cfg.Repo(), err)
	}
	return ws, nil
}
