// Package sysexec runs host administration commands. All platform access of
// the orchestrator (zoneadm, zonecfg, dladm, zfs, beadm...) goes through a
// Runner so it can be faked in tests and elevated consistently.
package sysexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/slok/zonectl/internal/log"
)

// Cmd describes a single host administration command. Arguments are passed as
// an argv vector, never through a shell.
type Cmd struct {
	Name string
	Args []string
	// Stdin optionally feeds the command standard input (e.g. zonecfg
	// configuration scripts).
	Stdin string
	// NoElevate runs the command as the invoking user even when an elevator
	// is configured.
	NoElevate bool
}

// String returns the command as a loggable line.
func (c Cmd) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the captured outcome of a finished command. A non-zero exit code
// is a regular result, not a Go error, callers decide what it means.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success returns true if the command exited zero.
func (r Result) Success() bool { return r.ExitCode == 0 }

// ErrorText returns the most useful failure text of the result, preferring
// stderr over stdout.
func (r Result) ErrorText() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(r.Stdout)
}

// Runner executes administration commands on the host.
type Runner interface {
	Run(ctx context.Context, cmd Cmd) (Result, error)
}

// RunnerConfig is the configuration of the local runner.
type RunnerConfig struct {
	// Elevator is the privilege elevation command prepended to every
	// invocation (pfexec on illumos). Empty disables elevation.
	Elevator string
	// Logger is the logger.
	Logger log.Logger
}

func (c *RunnerConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "sysexec.Runner"})

	return nil
}

type runner struct {
	elevator string
	logger   log.Logger
}

// NewRunner returns a Runner that executes commands on the local host.
func NewRunner(config RunnerConfig) (Runner, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return runner{
		elevator: config.Elevator,
		logger:   config.Logger,
	}, nil
}

func (r runner) Run(ctx context.Context, c Cmd) (Result, error) {
	if c.Name == "" {
		return Result{}, fmt.Errorf("command name is required")
	}

	name, args := c.Name, c.Args
	if r.elevator != "" && !c.NoElevate {
		name, args = r.elevator, append([]string{c.Name}, c.Args...)
	}

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if c.Stdin != "" {
		cmd.Stdin = strings.NewReader(c.Stdin)
	}

	r.logger.Debugf("Running %q", c.String())

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		// A non-zero exit is a command outcome. Everything else (missing
		// binary, cancelled context...) means the command never ran to
		// completion and is a real error.
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return result, fmt.Errorf("could not execute %q: %w", c.String(), err)
		}
		if ctx.Err() != nil {
			return result, fmt.Errorf("could not execute %q: %w", c.String(), ctx.Err())
		}
		result.ExitCode = exitErr.ExitCode()
		r.logger.Debugf("Command %q exited with code %d", c.String(), result.ExitCode)
	}

	return result, nil
}
