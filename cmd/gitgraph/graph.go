package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rybkr/gitgraph/internal/command"
	"github.com/rybkr/gitgraph/internal/domain"
	"github.com/rybkr/gitgraph/internal/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func graphCmd(flags *globalFlags) *cobra.Command {
	var (
		output  string
		summary bool
	)

	cmd := &cobra.Command{
		Use:   "graph [limit]",
		Short: "Print the commit graph",
		Long: `Print the commit graph of the repository.

The optional limit caps the number of commits (1 to 2000). When it is
missing or blank the GITGRAPH_DEFAULT_LIMIT setting applies (default: 400). When the history
has more commits than the limit, the document is marked truncated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd.Context(), cmd.OutOrStdout(), flags, args, output, summary)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "json", "Document format: json or yaml")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print branch, tag and merge counts instead of the graph")

	return cmd
}

func runGraph(ctx context.Context, out io.Writer, flags *globalFlags, args []string, output string, summary bool) error {
	format, err := command.ParseFormat(output)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	logger := log.NewLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ws, err := openWorkspace(cfg)
	if err != nil {
		return err
	}

	var doc string
	if summary {
		doc, err = renderSummary(ctx, ws, args, cfg.DefaultLimit(), format, logger)
	} else {
		runner := command.NewRunner(
			command.WithFormat(format),
			command.WithDefaultLimit(cfg.DefaultLimit()),
			command.WithLogger(logger),
		)
		doc, err = runner.Run(ctx, command.GitGraph, args, ws)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, doc)
	return err
}

func renderSummary(ctx context.Context, host domain.Host, args []string, defaultLimit int, format command.Format, logger *zap.Logger) (string, error) {
	opts, err := command.ParseOptionsWithDefault(args, defaultLimit)
	if err != nil {
		return "", err
	}

	collector, err := domain.NewGraphCollector(host, domain.WithLogger(logger))
	if err != nil {
		return "", err
	}

	graph, err := collector.Collect(ctx, opts.Limit)
	if err != nil {
		return "", command.GitError(err)
	}
	return command.Render(domain.Summarize(graph), format)
}
