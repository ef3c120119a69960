package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rybkr/gitgraph/internal/domain"
	"github.com/rybkr/gitgraph/internal/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type fakeHost struct{ git string }

func (h fakeHost) Which(name string) (string, bool) { return h.git, h.git != "" }
func (h fakeHost) ShellEnv() []string               { return nil }
func (h fakeHost) RootPath() string                 { return "/repo" }

type staticRunner struct {
	raw string
	err error
}

func (s staticRunner) RunLog(context.Context, git.Invocation) (string, error) {
	return s.raw, s.err
}

const sampleLog = "abc123\x1f\x1fJane Doe\x1fjd@example.com\x1f2 days ago\x1f2024-05-01T10:00:00Z\x1f1714557600\x1fInitial commit\x1fHEAD -> main, origin/main\x1e"

func runnerWith(raw string, err error, opts ...Option) *Runner {
	factory := WithCollectorFactory(func(h domain.Host) (Collector, error) {
		c, cerr := domain.NewGraphCollector(h, domain.WithRunner(staticRunner{raw: raw, err: err}))
		if cerr != nil {
			return nil, cerr
		}
		return c, nil
	})
	return NewRunner(append(opts, factory)...)
}

func TestParseOptions(t *testing.T) {
	cases := []struct {
		args []string
		want int
	}{
		{nil, 400},
		{[]string{}, 400},
		{[]string{"  "}, 400},
		{[]string{"25"}, 25},
		{[]string{" 25 "}, 25},
		{[]string{"0"}, 1},
		{[]string{"-3"}, 1},
		{[]string{"5000"}, 2000},
		{[]string{"10", "ignored"}, 10},
	}
	for _, tc := range cases {
		opts, err := ParseOptions(tc.args)
		require.NoError(t, err, "args %v", tc.args)
		assert.Equal(t, tc.want, opts.Limit, "args %v", tc.args)
	}
}

func TestParseOptionsRejectsNonNumeric(t *testing.T) {
	_, err := ParseOptions([]string{"many"})
	require.Error(t, err)
	assert.True(t, git.IsParseError(err))
	assert.Contains(t, err.Error(), "invalid limit")
}

func TestRunUnknownCommand(t *testing.T) {
	_, err := NewRunner().Run(context.Background(), "git-log", nil, fakeHost{git: "git"})
	var uc *UnknownCommandError
	require.True(t, errors.As(err, &uc))
	assert.Equal(t, "unknown slash command `git-log`", err.Error())
}

func TestRunWithoutWorkspace(t *testing.T) {
	_, err := NewRunner().Run(context.Background(), GitGraph, nil, nil)
	assert.ErrorIs(t, err, ErrNoWorkspace)
}

func TestRunWithoutGit(t *testing.T) {
	_, err := NewRunner().Run(context.Background(), GitGraph, nil, fakeHost{})
	assert.ErrorIs(t, err, git.ErrBinaryMissing)
	assert.Equal(t, "git executable was not found on PATH", err.Error())
}

func TestRunRendersJSON(t *testing.T) {
	out, err := runnerWith(sampleLog, nil).Run(context.Background(), GitGraph, nil, fakeHost{git: "git"})
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "\n  \"commits\": ["), "document should be indented")

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, false, doc["truncated"])
	assert.Equal(t, []any{}, doc["edges"])

	commits := doc["commits"].([]any)
	require.Len(t, commits, 1)
	commit := commits[0].(map[string]any)
	assert.Equal(t, "abc123", commit["oid"])
	assert.Equal(t, "abc123", commit["short_oid"])
	assert.Equal(t, []any{}, commit["parents"])
	assert.Equal(t, float64(1714557600), commit["committed_timestamp"])

	decorations := commit["decorations"].(map[string]any)
	assert.Equal(t, "main", decorations["head"])
	assert.Equal(t, []any{"origin/main"}, decorations["remote_branches"])
	assert.Equal(t, []any{}, decorations["local_branches"])
	assert.Equal(t, []any{}, decorations["tags"])
}

func TestRunRendersNullHead(t *testing.T) {
	raw := "abc\x1f\x1fA\x1fa@x\x1fnow\x1ft\x1f1\x1fs\x1f\x1e"
	out, err := runnerWith(raw, nil).Run(context.Background(), GitGraph, nil, fakeHost{git: "git"})
	require.NoError(t, err)
	assert.Contains(t, out, `"head": null`)
}

func TestRunRendersYAML(t *testing.T) {
	out, err := runnerWith(sampleLog, nil, WithFormat(FormatYAML)).Run(context.Background(), GitGraph, []string{"5"}, fakeHost{git: "git"})
	require.NoError(t, err)

	var g domain.GitGraph
	require.NoError(t, yaml.Unmarshal([]byte(out), &g))
	require.Len(t, g.Commits, 1)
	assert.Equal(t, "abc123", g.Commits[0].OID)
	assert.Equal(t, "main", g.Commits[0].Decorations.HeadName())
}

func TestRunSurfacesCollaboratorErrors(t *testing.T) {
	failure := &git.CommandError{ExitCode: 128, Stderr: "fatal: your current branch 'main' does not have any commits yet"}
	_, err := runnerWith("", failure).Run(context.Background(), GitGraph, nil, fakeHost{git: "git"})
	require.Error(t, err)
	assert.Equal(t, "git log exited with an error: fatal: your current branch 'main' does not have any commits yet", err.Error())
	var commandErr *git.CommandError
	require.ErrorAs(t, err, &commandErr)
	assert.Equal(t, 128, commandErr.ExitCode)
}

func TestRunSurfacesParseErrors(t *testing.T) {
	raw := "abc\x1f\x1fA\x1fa@x\x1fnow\x1ft\x1fnot-a-number\x1fs\x1f\x1e"
	_, err := runnerWith(raw, nil).Run(context.Background(), GitGraph, nil, fakeHost{git: "git"})
	assert.True(t, git.IsParseError(err))
	assert.True(t, strings.HasPrefix(err.Error(), "failed to parse git output: record 0: timestamp parse error"), err.Error())
}

func TestRunRejectsBadLimitBeforeCollecting(t *testing.T) {
	called := false
	r := NewRunner(WithCollectorFactory(func(domain.Host) (Collector, error) {
		called = true
		return nil, errors.New("unreachable")
	}))
	_, err := r.Run(context.Background(), GitGraph, []string{"ten"}, fakeHost{git: "git"})
	assert.True(t, git.IsParseError(err))
	assert.False(t, called)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatJSON, "JSON": FormatJSON, "yaml": FormatYAML, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

type limitRecorder struct {
	limits []int
}

func (l *limitRecorder) Collect(_ context.Context, limit int) (domain.GitGraph, error) {
	l.limits = append(l.limits, limit)
	return domain.Assemble(nil, limit), nil
}

func TestParseOptionsWithDefault(t *testing.T) {
	cases := []struct {
		args     []string
		fallback int
		want     int
	}{
		{nil, 25, 25},
		{[]string{""}, 25, 25},
		{[]string{" "}, 0, 1},
		{nil, 9000, 2000},
		{[]string{"7"}, 25, 7},
	}
	for _, tc := range cases {
		opts, err := ParseOptionsWithDefault(tc.args, tc.fallback)
		require.NoError(t, err, "args %v", tc.args)
		assert.Equal(t, tc.want, opts.Limit, "args %v fallback %d", tc.args, tc.fallback)
	}
}

func TestRunDefaultLimitAppliesToMissingAndBlankArgs(t *testing.T) {
	rec := &limitRecorder{}
	r := NewRunner(
		WithDefaultLimit(30),
		WithCollectorFactory(func(domain.Host) (Collector, error) { return rec, nil }),
	)

	for _, args := range [][]string{nil, {""}, {"  ", "extra"}, {"12"}} {
		_, err := r.Run(context.Background(), GitGraph, args, fakeHost{git: "git"})
		require.NoError(t, err)
	}
	assert.Equal(t, []int{30, 30, 30, 12}, rec.limits)
}

func TestRunUnwrapsCollectorContext(t *testing.T) {
	failure := &git.EncodingError{Offset: 4}
	r := NewRunner(WithCollectorFactory(func(domain.Host) (Collector, error) {
		return failingCollector{err: fmt.Errorf("collect graph: %w", failure)}, nil
	}))

	_, err := r.Run(context.Background(), GitGraph, nil, fakeHost{git: "git"})
	assert.Same(t, failure, err)
	assert.Equal(t, "git output was not valid UTF-8: invalid byte at offset 4", err.Error())
}

type failingCollector struct {
	err error
}

func (f failingCollector) Collect(context.Context, int) (domain.GitGraph, error) {
	return domain.GitGraph{}, f.err
}
