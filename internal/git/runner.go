package git

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"unicode/utf8"
)

// CommandRunner runs git log as a subprocess.
type CommandRunner struct{}

// NewCommandRunner returns a CommandRunner.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{}
}

// RunLog executes git log for inv and returns its standard output.
// inv.Env is appended to the inherited environment, so its entries win.
func (r *CommandRunner) RunLog(ctx context.Context, inv Invocation) (string, error) {
	if inv.Executable == "" {
		return "", ErrBinaryMissing
	}

	cmd := exec.CommandContext(ctx, inv.Executable, LogArgs(inv.MaxCount)...)
	cmd.Dir = inv.Dir
	cmd.Env = append(os.Environ(), inv.Env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", &SpawnError{Err: ctx.Err()}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &CommandError{
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(stderr.String()),
			}
		}
		return "", &SpawnError{Err: err}
	}

	return DecodeOutput(stdout.Bytes())
}

// DecodeOutput converts captured output to a string, rejecting invalid UTF-8.
func DecodeOutput(out []byte) (string, error) {
	if utf8.Valid(out) {
		return string(out), nil
	}
	offset := 0
	for offset < len(out) {
		r, size := utf8.DecodeRune(out[offset:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		offset += size
	}
	return "", &EncodingError{Offset: offset}
}
