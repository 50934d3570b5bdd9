// Package console tracks interactive zone console sessions so lifecycle
// operations can tear them down before stopping or deleting a zone.
package console

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/slok/zonectl/internal/conventions"
	"github.com/slok/zonectl/internal/log"
	"github.com/slok/zonectl/internal/sysexec"
)

// Terminator ends the console session of a zone, if any. Terminating a zone
// without a session is a no-op.
type Terminator interface {
	Terminate(ctx context.Context, zone string) error
}

// TrackerConfig is the configuration of the session tracker.
type TrackerConfig struct {
	// DataDir is the zonectl data directory holding console PID files.
	DataDir string
	// Runner optionally kills leftover console processes recorded in PID
	// files by a previous run. Without it stale files are only removed.
	Runner sysexec.Runner
	Logger log.Logger
}

func (c *TrackerConfig) defaults() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "console.Tracker"})

	return nil
}

// Tracker is an in-memory console session registry with PID file
// bookkeeping for sessions that outlived the process that spawned them.
type Tracker struct {
	dataDir string
	runner  sysexec.Runner
	logger  log.Logger

	mu       sync.Mutex
	sessions map[string]func()
}

// NewTracker creates a new console session tracker.
func NewTracker(config TrackerConfig) (*Tracker, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Tracker{
		dataDir:  config.DataDir,
		runner:   config.Runner,
		logger:   config.Logger,
		sessions: map[string]func(){},
	}, nil
}

// Register records a live console session and its stop function. Registering
// a zone twice replaces the previous session after stopping it.
func (t *Tracker) Register(zone string, stop func()) {
	t.mu.Lock()
	previous := t.sessions[zone]
	t.sessions[zone] = stop
	t.mu.Unlock()

	if previous != nil {
		t.logger.Warningf("Replacing already registered console session of zone %q", zone)
		previous()
	}
}

// Active returns true while the zone has a registered console session.
func (t *Tracker) Active(zone string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.sessions[zone]
	return ok
}

// Terminate ends the console session of a zone. It stops the in-memory
// session if one is registered and cleans up the PID file of a session left
// behind by a previous run, killing its process when a runner is available.
func (t *Tracker) Terminate(ctx context.Context, zone string) error {
	t.mu.Lock()
	stop := t.sessions[zone]
	delete(t.sessions, zone)
	t.mu.Unlock()

	if stop != nil {
		t.logger.Debugf("Stopping console session of zone %q", zone)
		stop()
	}

	return t.cleanupPIDFile(ctx, zone)
}

func (t *Tracker) cleanupPIDFile(ctx context.Context, zone string) error {
	path := conventions.ConsolePIDPath(t.dataDir, zone)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not read console PID file of zone %q: %w", zone, err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		t.logger.Warningf("Ignoring malformed console PID file of zone %q", zone)
	} else if t.runner != nil {
		// Console processes run as the invoking user, no elevation wanted.
		// The process being gone already is fine.
		res, err := t.runner.Run(ctx, sysexec.Cmd{Name: "kill", Args: []string{"-TERM", strconv.Itoa(pid)}, NoElevate: true})
		if err != nil {
			return fmt.Errorf("could not kill console process of zone %q: %w", zone, err)
		}
		if !res.Success() {
			t.logger.Debugf("Console process %d of zone %q was already gone", pid, zone)
		}
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not remove console PID file of zone %q: %w", zone, err)
	}

	return nil
}
