package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/rybkr/gitgraph/internal/git"
	"go.uber.org/zap"
)

// Host supplies the git executable, environment and working directory.
type Host interface {
	Which(name string) (string, bool)
	ShellEnv() []string
	RootPath() string
}

// LogRunner produces raw git log output.
type LogRunner interface {
	RunLog(ctx context.Context, inv git.Invocation) (string, error)
}

// GraphCollector captures the commit graph of one working tree.
type GraphCollector struct {
	executable string
	root       string
	env        []string
	runner     LogRunner
	logger     *zap.Logger
}

// CollectorOption configures a GraphCollector.
type CollectorOption func(*GraphCollector)

// WithRunner replaces the subprocess runner.
func WithRunner(r LogRunner) CollectorOption {
	return func(c *GraphCollector) {
		c.runner = r
	}
}

// WithLogger sets the collector's logger.
func WithLogger(l *zap.Logger) CollectorOption {
	return func(c *GraphCollector) {
		c.logger = l
	}
}

// NewGraphCollector resolves git through host. It fails with
// git.ErrBinaryMissing when the host cannot find the executable.
func NewGraphCollector(host Host, opts ...CollectorOption) (*GraphCollector, error) {
	gitPath, ok := host.Which("git")
	if !ok {
		return nil, git.ErrBinaryMissing
	}

	c := &GraphCollector{
		executable: gitPath,
		root:       host.RootPath(),
		env:        host.ShellEnv(),
		runner:     git.NewCommandRunner(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Collect fetches one commit past the clamped limit, parses the log and
// assembles the graph.
func (c *GraphCollector) Collect(ctx context.Context, limit int) (GitGraph, error) {
	limit = ClampLimit(limit)
	start := time.Now()

	raw, err := c.runner.RunLog(ctx, git.Invocation{
		Executable: c.executable,
		Dir:        c.root,
		Env:        c.env,
		MaxCount:   FetchLimit(limit),
	})
	if err != nil {
		return GitGraph{}, fmt.Errorf("collect graph: %w", err)
	}

	commits, err := git.ParseLog(raw)
	if err != nil {
		return GitGraph{}, fmt.Errorf("collect graph: %w", err)
	}

	graph := Assemble(commits, limit)
	c.logger.Debug("collected graph",
		zap.String("root", c.root),
		zap.Int("limit", limit),
		zap.Int("commits", len(graph.Commits)),
		zap.Int("edges", len(graph.Edges)),
		zap.Bool("truncated", graph.Truncated),
		zap.Duration("elapsed", time.Since(start)),
	)
	return graph, nil
}
