// Package beadm drives boot environment administration through the beadm
// system utility.
package beadm

import (
	"context"
	"fmt"
	"sort"

	"github.com/slok/zonectl/internal/log"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/sysexec"
)

// ClientConfig is the configuration of the beadm client.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "beadm.Client"})

	return nil
}

// Client runs boot environment administration commands on the host.
type Client struct {
	runner sysexec.Runner
	logger log.Logger
}

// NewClient creates a new beadm client.
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

// Create creates a boot environment, optionally cloning a source environment
// or snapshot and activating the result.
func (c *Client) Create(ctx context.Context, p model.BootEnvCreatePayload) error {
	args := []string{"create"}
	if p.Activate {
		args = append(args, "-a")
	}
	if p.Description != "" {
		args = append(args, "-d", p.Description)
	}
	if p.Source != "" {
		args = append(args, "-e", p.Source)
	}
	for _, k := range sortedKeys(p.Properties) {
		args = append(args, "-o", k+"="+p.Properties[k])
	}
	args = append(args, p.Name)

	_, err := c.exec(ctx, fmt.Sprintf("create boot environment %q", p.Name), sysexec.Cmd{Name: "beadm", Args: args})
	return err
}

// Destroy destroys a boot environment without prompting, optionally taking
// its snapshots with it.
func (c *Client) Destroy(ctx context.Context, name string, destroySnapshots bool) error {
	args := []string{"destroy", "-F"}
	if destroySnapshots {
		args = append(args, "-s")
	}
	args = append(args, name)

	_, err := c.exec(ctx, fmt.Sprintf("destroy boot environment %q", name), sysexec.Cmd{Name: "beadm", Args: args})
	return err
}

// Activate marks a boot environment as the one to boot, permanently or for
// the next boot only.
func (c *Client) Activate(ctx context.Context, name string, temporary bool) error {
	args := []string{"activate"}
	if temporary {
		args = append(args, "-t")
	}
	args = append(args, name)

	_, err := c.exec(ctx, fmt.Sprintf("activate boot environment %q", name), sysexec.Cmd{Name: "beadm", Args: args})
	return err
}

// Mount mounts an inactive boot environment. Shared mode optionally mounts
// the shared filesystems read-only or read-write.
func (c *Client) Mount(ctx context.Context, name, mountpoint, sharedMode string) error {
	args := []string{"mount"}
	if sharedMode != "" {
		args = append(args, "-s", sharedMode)
	}
	args = append(args, name, mountpoint)

	_, err := c.exec(ctx, fmt.Sprintf("mount boot environment %q", name), sysexec.Cmd{Name: "beadm", Args: args})
	return err
}

// Unmount unmounts a boot environment.
func (c *Client) Unmount(ctx context.Context, name string, force bool) error {
	args := []string{"unmount"}
	if force {
		args = append(args, "-f")
	}
	args = append(args, name)

	_, err := c.exec(ctx, fmt.Sprintf("unmount boot environment %q", name), sysexec.Cmd{Name: "beadm", Args: args})
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

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
