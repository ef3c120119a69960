package git

import (
	"errors"
	"fmt"
)

// ErrBinaryMissing is returned when no git executable can be located.
var ErrBinaryMissing = errors.New("git executable was not found on PATH")

// SpawnError wraps a failure to start the git process.
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to run git: %v", e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// CommandError reports a git process that exited with a non-zero status.
// Stderr holds the trimmed standard error output.
type CommandError struct {
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git log exited with an error: %s", e.Stderr)
}

// EncodingError reports git output that is not valid UTF-8.
type EncodingError struct {
	Offset int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("git output was not valid UTF-8: invalid byte at offset %d", e.Offset)
}

// ParseError reports a malformed log record.
type ParseError struct {
	Reason string
	Err    error
}

// NewParseError returns a ParseError with a formatted reason.
func NewParseError(format string, args ...any) *ParseError {
	return &ParseError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse git output: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is, or wraps, a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
