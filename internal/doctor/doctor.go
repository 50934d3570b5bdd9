// Package doctor runs the host preflight checks: the platform commands the
// handlers shell out to must be present and the data directory must be
// writable. Every probe produces a result, a broken host reads as a report,
// not as an error.
package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/slok/zonectl/internal/log"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/sysexec"
)

// requiredCommands are the platform commands the handlers shell out to. A
// host missing any of them cannot run a worker.
var requiredCommands = []string{"zoneadm", "zonecfg", "dladm", "zfs", "beadm"}

// CheckerConfig is the configuration of the preflight checker.
type CheckerConfig struct {
	// DataDir is where the task database lives.
	DataDir string
	Exec    sysexec.Runner
	Logger  log.Logger
}

func (c *CheckerConfig) defaults() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	if c.Exec == nil {
		return fmt.Errorf("command runner is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "doctor.Checker"})

	return nil
}

// Checker probes the host for everything a worker needs.
type Checker struct {
	dataDir string
	exec    sysexec.Runner
	logger  log.Logger
}

// NewChecker returns a new preflight checker.
func NewChecker(config CheckerConfig) (*Checker, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Checker{
		dataDir: config.DataDir,
		exec:    config.Exec,
		logger:  config.Logger,
	}, nil
}

// Run executes every preflight check and returns the results.
func (c *Checker) Run(ctx context.Context) []model.CheckResult {
	results := make([]model.CheckResult, 0, len(requiredCommands)+2)

	for _, name := range requiredCommands {
		results = append(results, c.commandPresent(ctx, name, model.CheckStatusError))
	}
	// Without pfexec the commands run unelevated, which works for root and
	// reads but not for zone changes.
	results = append(results, c.commandPresent(ctx, "pfexec", model.CheckStatusWarning))
	results = append(results, c.dataDirWritable())

	for _, r := range results {
		c.logger.WithValues(log.Kv{"check": r.ID, "status": r.Status}).Debugf("%s", r.Message)
	}

	return results
}

// commandPresent probes PATH for a command, missing is the status a failed
// probe reports.
func (c *Checker) commandPresent(ctx context.Context, name string, missing model.CheckStatus) model.CheckResult {
	check := model.CheckResult{ID: name + "_present"}

	result, err := c.exec.Run(ctx, sysexec.Cmd{Name: "which", Args: []string{name}, NoElevate: true})
	switch {
	case err != nil:
		check.Status = missing
		check.Message = fmt.Sprintf("could not probe for %s: %s", name, err)
	case !result.Success():
		check.Status = missing
		if missing == model.CheckStatusWarning {
			check.Message = fmt.Sprintf("%s not found, commands will run without privilege elevation", name)
		} else {
			check.Message = fmt.Sprintf("%s not found in PATH", name)
		}
	default:
		check.Status = model.CheckStatusOK
		check.Message = fmt.Sprintf("%s found at %s", name, strings.TrimSpace(result.Stdout))
	}

	return check
}

// dataDirWritable creates the data directory if needed and proves it can
// hold files.
func (c *Checker) dataDirWritable() model.CheckResult {
	check := model.CheckResult{ID: "data_dir_writable"}

	if err := os.MkdirAll(c.dataDir, 0755); err != nil {
		check.Status = model.CheckStatusError
		check.Message = fmt.Sprintf("could not create the data directory %q: %s", c.dataDir, err)
		return check
	}

	probe := filepath.Join(c.dataDir, ".doctor")
	if err := os.WriteFile(probe, []byte("ok"), 0600); err != nil {
		check.Status = model.CheckStatusError
		check.Message = fmt.Sprintf("data directory %q is not writable: %s", c.dataDir, err)
		return check
	}
	_ = os.Remove(probe)

	check.Status = model.CheckStatusOK
	check.Message = fmt.Sprintf("data directory %q is writable", c.dataDir)
	return check
}
