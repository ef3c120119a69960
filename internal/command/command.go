// Package command implements the git-graph command: it validates the
// arguments, collects the graph for a workspace and renders the document.
// Failures surface as errors whose message is the user-facing text.
package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rybkr/gitgraph/internal/domain"
	"github.com/rybkr/gitgraph/internal/git"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// GitGraph is the only command name this package answers to.
const GitGraph = "git-graph"

// ErrNoWorkspace is returned when the command runs without a workspace.
var ErrNoWorkspace = errors.New("git graph slash command requires an attached workspace/root")

// UnknownCommandError reports a command name other than GitGraph.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown slash command `%s`", e.Name)
}

// Format selects how a graph document is rendered.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name; "" means JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want json or yaml)", s)
	}
}

// Options are the parsed command arguments.
type Options struct {
	Limit int
}

// ParseOptions reads the optional limit argument. A missing or blank
// argument means domain.DefaultLimit; anything else must be an integer and
// is clamped to [1, domain.MaxLimit]. Extra arguments are ignored.
func ParseOptions(args []string) (Options, error) {
	return ParseOptionsWithDefault(args, domain.DefaultLimit)
}

// ParseOptionsWithDefault is ParseOptions with a configured fallback for a
// missing or blank limit. The fallback is clamped too.
func ParseOptionsWithDefault(args []string, fallback int) (Options, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return Options{Limit: domain.ClampLimit(fallback)}, nil
	}
	limit, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return Options{}, &git.ParseError{Reason: fmt.Sprintf("invalid limit: %v", err), Err: err}
	}
	return Options{Limit: domain.ClampLimit(limit)}, nil
}

// Collector builds a graph; domain.GraphCollector satisfies it.
type Collector interface {
	Collect(ctx context.Context, limit int) (domain.GitGraph, error)
}

// Runner executes commands against hosts.
type Runner struct {
	format       Format
	defaultLimit int
	logger       *zap.Logger
	newCollector func(domain.Host) (Collector, error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithFormat sets the rendered document format.
func WithFormat(f Format) Option {
	return func(r *Runner) {
		r.format = f
	}
}

// WithDefaultLimit sets the limit used when none is given.
func WithDefaultLimit(limit int) Option {
	return func(r *Runner) {
		r.defaultLimit = domain.ClampLimit(limit)
	}
}

// WithLogger sets the runner's logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithCollectorFactory replaces how collectors are built for a host.
func WithCollectorFactory(fn func(domain.Host) (Collector, error)) Option {
	return func(r *Runner) {
		r.newCollector = fn
	}
}

// NewRunner returns a Runner rendering JSON by default.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		format:       FormatJSON,
		defaultLimit: domain.DefaultLimit,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.newCollector == nil {
		logger := r.logger
		r.newCollector = func(h domain.Host) (Collector, error) {
			c, err := domain.NewGraphCollector(h, domain.WithLogger(logger))
			if err != nil {
				return nil, err
			}
			return c, nil
		}
	}
	return r
}

// Run executes the named command for host and returns the rendered document.
func (r *Runner) Run(ctx context.Context, name string, args []string, host domain.Host) (string, error) {
	if name != GitGraph {
		return "", &UnknownCommandError{Name: name}
	}
	if host == nil {
		return "", ErrNoWorkspace
	}

	opts, err := ParseOptionsWithDefault(args, r.defaultLimit)
	if err != nil {
		return "", err
	}

	collector, err := r.newCollector(host)
	if err != nil {
		return "", err
	}

	graph, err := collector.Collect(ctx, opts.Limit)
	if err != nil {
		r.logger.Warn("git graph failed", zap.Error(err))
		return "", GitError(err)
	}

	return Render(graph, r.format)
}

// GitError drops the context added on the way up and returns the typed
// git error itself, so its message is what the caller shows.
func GitError(err error) error {
	var (
		spawnErr    *git.SpawnError
		commandErr  *git.CommandError
		encodingErr *git.EncodingError
		parseErr    *git.ParseError
	)
	switch {
	case errors.Is(err, git.ErrBinaryMissing):
		return git.ErrBinaryMissing
	case errors.As(err, &spawnErr):
		return spawnErr
	case errors.As(err, &commandErr):
		return commandErr
	case errors.As(err, &encodingErr):
		return encodingErr
	case errors.As(err, &parseErr):
		return parseErr
	default:
		return err
	}
}

// Render serializes a graph, or any other value, as a pretty-printed document.
func Render(v any, format Format) (string, error) {
	switch format {
	case FormatYAML:
		out, err := yaml.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to serialize graph: %w", err)
		}
		return string(out), nil
	default:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to serialize graph: %w", err)
		}
		return string(out), nil
	}
}
