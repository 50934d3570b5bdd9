// Package zfs drives dataset administration through the zfs system utility.
package zfs

import (
	"context"
	"fmt"
	"strings"

	"github.com/slok/zonectl/internal/log"
	"github.com/slok/zonectl/internal/sysexec"
)

// ClientConfig is the configuration of the zfs client.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "zfs.Client"})

	return nil
}

// Client runs dataset administration commands on the host.
type Client struct {
	runner sysexec.Runner
	logger log.Logger
}

// NewClient creates a new zfs client.
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

// List returns dataset names. With a dataset it returns just that dataset,
// without one it enumerates every dataset on the host.
func (c *Client) List(ctx context.Context, dataset string) ([]string, error) {
	args := []string{"list", "-H", "-o", "name"}
	if dataset != "" {
		args = append(args, dataset)
	}

	res, err := c.runner.Run(ctx, sysexec.Cmd{Name: "zfs", Args: args})
	if err != nil {
		return nil, fmt.Errorf("could not list datasets: %w", err)
	}
	if !res.Success() {
		return nil, fmt.Errorf("could not list datasets: %s", res.ErrorText())
	}

	var names []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		names = append(names, line)
	}

	return names, nil
}

// Exists checks whether a dataset exists. A clean "does not exist" answer is
// not an error.
func (c *Client) Exists(ctx context.Context, dataset string) (bool, error) {
	res, err := c.runner.Run(ctx, sysexec.Cmd{Name: "zfs", Args: []string{"list", "-H", "-o", "name", dataset}})
	if err != nil {
		return false, fmt.Errorf("could not check dataset %q: %w", dataset, err)
	}
	if !res.Success() {
		if strings.Contains(res.ErrorText(), "does not exist") {
			return false, nil
		}
		return false, fmt.Errorf("could not check dataset %q: %s", dataset, res.ErrorText())
	}

	return true, nil
}

// Destroy destroys a dataset, recursively when asked, taking every child and
// snapshot under it.
func (c *Client) Destroy(ctx context.Context, dataset string, recursive bool) error {
	args := []string{"destroy"}
	if recursive {
		args = append(args, "-r")
	}
	args = append(args, dataset)

	c.logger.Infof("Destroying dataset %q (recursive: %t)", dataset, recursive)

	res, err := c.runner.Run(ctx, sysexec.Cmd{Name: "zfs", Args: args})
	if err != nil {
		return fmt.Errorf("could not destroy dataset %q: %w", dataset, err)
	}
	if !res.Success() {
		return fmt.Errorf("could not destroy dataset %q: %s", dataset, res.ErrorText())
	}

	return nil
}
