package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultHugoBinary is the generator executable looked up in $PATH.
const DefaultHugoBinary = "hugo"

// Runner invokes the site generator against a site root and returns its stdout.
type Runner interface {
	Run(ctx context.Context, root string, args ...string) ([]byte, error)
}

// ExecRunner runs the generator as a subprocess.
type ExecRunner struct {
	// Binary is the executable name or path (default "hugo").
	Binary string
}

// Run executes `<binary> -s <root> <args...>` in the current working directory.
func (r ExecRunner) Run(ctx context.Context, root string, args ...string) ([]byte, error) {
	bin := r.Binary
	if bin == "" {
		bin = DefaultHugoBinary
	}

	cmd := exec.CommandContext(ctx, bin, append([]string{"-s", root}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &HostToolFailedError{
				Args:   cmd.Args,
				Stderr: strings.TrimSpace(stderr.String()),
			}
		}
		return nil, &HostToolUnavailableError{Binary: bin, Err: err}
	}
	return stdout.Bytes(), nil
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

// HostToolFailedError reports a generator run that exited non-zero.
type HostToolFailedError struct {
	Args   []string
	Stderr string
}

func (e *HostToolFailedError) Error() string {
	msg := fmt.Sprintf("%s failed", strings.Join(e.Args, " "))
	if e.Stderr != "" {
		msg += ":\n" + e.Stderr
	}
	return msg
}

// HostToolUnavailableError reports a generator that could not be started.
type HostToolUnavailableError struct {
	Binary string
	Err    error
}

func (e *HostToolUnavailableError) Error() string {
	return fmt.Sprintf("cannot run %s: %v", e.Binary, e.Err)
}

func (e *HostToolUnavailableError) Unwrap() error { return e.Err }

// MalformedConfigError reports generator output that does not match the
// expected configuration shape.
type MalformedConfigError struct {
	Err error
}

func (e *MalformedConfigError) Error() string {
	return fmt.Sprintf("malformed site configuration: %v", e.Err)
}

func (e *MalformedConfigError) Unwrap() error { return e.Err }
