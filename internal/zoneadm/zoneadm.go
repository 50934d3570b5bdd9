// Package zoneadm drives zone lifecycle through the zoneadm and zonecfg
// system utilities.
package zoneadm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/slok/zonectl/internal/log"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/sysexec"
)

// ZoneInfo is a single zone as reported by `zoneadm list -cp`.
type ZoneInfo struct {
	// ID is the runtime zone ID, -1 when the zone is not running.
	ID       int
	Name     string
	State    model.ZoneStatus
	Zonepath string
	UUID     string
	Brand    string
	IPType   string
}

// ClientConfig is the configuration of the zoneadm client.
type ClientConfig struct {
	Runner sysexec.Runner
	Logger log.Logger
}

func (c *ClientConfig) defaults() error {
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "zoneadm.Client"})

	return nil
}

// Client runs zone administration commands on the host.
type Client struct {
	runner sysexec.Runner
	logger log.Logger
}

// NewClient creates a new zoneadm client.
func NewClient(config ClientConfig) (*Client, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Client{
		runner: config.Runner,
		logger: config.Logger,
	}, nil
}

// List enumerates every configured zone on the host. The global zone is not
// part of the result.
func (c *Client) List(ctx context.Context) ([]ZoneInfo, error) {
	res, err := c.exec(ctx, "list zones", sysexec.Cmd{Name: "zoneadm", Args: []string{"list", "-cp"}})
	if err != nil {
		return nil, err
	}

	var zones []ZoneInfo
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		info, err := parseListLine(line)
		if err != nil {
			// A line we can't make sense of degrades to a skip, the rest of
			// the listing is still usable.
			c.logger.Warningf("Skipping unparsable zoneadm list line %q: %s", line, err)
			continue
		}
		if info.Name == "global" {
			continue
		}

		zones = append(zones, info)
	}

	return zones, nil
}

// State returns the live state of a single zone. Returns a not found error
// when the zone is not configured on the host.
func (c *Client) State(ctx context.Context, zone string) (model.ZoneStatus, error) {
	zones, err := c.List(ctx)
	if err != nil {
		return "", err
	}

	for _, z := range zones {
		if z.Name == zone {
			return z.State, nil
		}
	}

	return "", fmt.Errorf("zone %q: %w", zone, model.ErrNotFound)
}

// Boot boots a zone.
func (c *Client) Boot(ctx context.Context, zone string) error {
	_, err := c.exec(ctx, fmt.Sprintf("boot zone %q", zone), sysexec.Cmd{Name: "zoneadm", Args: []string{"-z", zone, "boot"}})
	return err
}

// Shutdown shuts a zone down gracefully. Prefer Halt as a fallback when a
// graceful shutdown fails.
func (c *Client) Shutdown(ctx context.Context, zone string) error {
	_, err := c.exec(ctx, fmt.Sprintf("shut down zone %q", zone), sysexec.Cmd{Name: "zoneadm", Args: []string{"-z", zone, "shutdown"}})
	return err
}

// Halt stops a zone forcibly without running its shutdown scripts.
func (c *Client) Halt(ctx context.Context, zone string) error {
	_, err := c.exec(ctx, fmt.Sprintf("halt zone %q", zone), sysexec.Cmd{Name: "zoneadm", Args: []string{"-z", zone, "halt"}})
	return err
}

// Install installs a configured zone.
func (c *Client) Install(ctx context.Context, zone string) error {
	_, err := c.exec(ctx, fmt.Sprintf("install zone %q", zone), sysexec.Cmd{Name: "zoneadm", Args: []string{"-z", zone, "install"}})
	return err
}

// Uninstall uninstalls a zone, removing its root file system.
func (c *Client) Uninstall(ctx context.Context, zone string) error {
	_, err := c.exec(ctx, fmt.Sprintf("uninstall zone %q", zone), sysexec.Cmd{Name: "zoneadm", Args: []string{"-z", zone, "uninstall", "-F"}})
	return err
}

// Configure creates or replaces the configuration of a zone by feeding a
// zonecfg script on standard input.
func (c *Client) Configure(ctx context.Context, zone string, config model.ZoneConfiguration) error {
	script, err := BuildScript(config)
	if err != nil {
		return fmt.Errorf("could not configure zone %q: %w", zone, err)
	}

	_, err = c.exec(ctx, fmt.Sprintf("configure zone %q", zone), sysexec.Cmd{Name: "zonecfg", Args: []string{"-z", zone}, Stdin: script})
	return err
}

// Unconfigure removes the configuration of a zone.
func (c *Client) Unconfigure(ctx context.Context, zone string) error {
	_, err := c.exec(ctx, fmt.Sprintf("unconfigure zone %q", zone), sysexec.Cmd{Name: "zonecfg", Args: []string{"-z", zone, "delete", "-F"}})
	return err
}

// Export reads the live configuration of a zone.
func (c *Client) Export(ctx context.Context, zone string) (*model.ZoneConfiguration, error) {
	res, err := c.runner.Run(ctx, sysexec.Cmd{Name: "zonecfg", Args: []string{"-z", zone, "export"}})
	if err != nil {
		return nil, fmt.Errorf("could not export zone %q: %w", zone, err)
	}
	if !res.Success() {
		if strings.Contains(res.ErrorText(), "No such zone") {
			return nil, fmt.Errorf("zone %q: %w", zone, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not export zone %q: %s", zone, res.ErrorText())
	}

	config := ParseExport(res.Stdout)

	return &config, nil
}

// FixZonepathPermissions restores the zone path mode after a privileged boot,
// which resets it and breaks non-root tooling access.
func (c *Client) FixZonepathPermissions(ctx context.Context, zonepath string) error {
	_, err := c.exec(ctx, fmt.Sprintf("fix permissions of %q", zonepath), sysexec.Cmd{Name: "chmod", Args: []string{"700", zonepath}})
	return err
}

func (c *Client) exec(ctx context.Context, action string, cmd sysexec.Cmd) (sysexec.Result, error) {
	res, err := c.runner.Run(ctx, cmd)
	if err != nil {
		return res, fmt.Errorf("could not %s: %w", action, err)
	}
	if !res.Success() {
		return res, fmt.Errorf("could not %s: %s", action, res.ErrorText())
	}

	return res, nil
}

// parseListLine parses one `zoneadm list -cp` line:
// zoneid:zonename:state:zonepath:uuid:brand:ip-type.
func parseListLine(line string) (ZoneInfo, error) {
	fields := splitParsable(line)
	if len(fields) < 7 {
		return ZoneInfo{}, fmt.Errorf("expected 7 fields, got %d", len(fields))
	}

	id := -1
	if fields[0] != "-" {
		parsed, err := strconv.Atoi(fields[0])
		if err != nil {
			return ZoneInfo{}, fmt.Errorf("invalid zone ID %q: %w", fields[0], err)
		}
		id = parsed
	}

	return ZoneInfo{
		ID:       id,
		Name:     fields[1],
		State:    model.ZoneStatus(fields[2]),
		Zonepath: fields[3],
		UUID:     fields[4],
		Brand:    fields[5],
		IPType:   fields[6],
	}, nil
}

// splitParsable splits colon separated parsable output, honoring the `\:`
// escape the -p flag uses for colons inside field values.
func splitParsable(line string) []string {
	var fields []string
	var field strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			field.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ':':
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	fields = append(fields, field.String())

	return fields
}
