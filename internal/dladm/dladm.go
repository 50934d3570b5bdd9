// Package dladm drives datalink and address administration through the dladm
// and ipadm system utilities.
package dladm

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/slok/zonectl/internal/log"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/sysexec"
)

// LinkInfo is a single datalink as reported by `dladm show-link`.
type LinkInfo struct {
	Link  string
	Class model.LinkClass
}

// VNICInfo is a single VNIC as reported by `dladm show-vnic`.
type VNICInfo struct {
	Link       string
	Over       string
	MACAddress string
}

// LinkStat is a single datalink traffic counter sample.
type LinkStat struct {
	Link    string
	RXBytes int64
	TXBytes int64
}

// AddrInfo is a single address object as reported by `ipadm show-addr`.
type AddrInfo struct {
	AddrObj string
	State   string
	Address string
}

// ClientConfig is the configuration of the dladm client.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "dladm.Client"})

	return nil
}

// Client runs link administration commands on the host.
type Client struct {
	runner sysexec.Runner
	logger log.Logger
}

// NewClient creates a new dladm client.
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

// CreateVNIC creates a virtual NIC over a lower datalink.
func (c *Client) CreateVNIC(ctx context.Context, p model.VNICCreatePayload) error {
	args := []string{"create-vnic"}
	if p.Temporary {
		args = append(args, "-t")
	}
	args = append(args, "-l", p.Lower)
	args = append(args, macArgs(p.MAC)...)
	if p.VlanID > 0 {
		args = append(args, "-v", strconv.Itoa(p.VlanID))
	}
	if len(p.Props) > 0 {
		args = append(args, "-p", propList(p.Props))
	}
	args = append(args, p.Link)

	_, err := c.exec(ctx, fmt.Sprintf("create vnic %q", p.Link), sysexec.Cmd{Name: "dladm", Args: args})
	return err
}

// DeleteVNIC deletes a virtual NIC.
func (c *Client) DeleteVNIC(ctx context.Context, link string, temporary bool) error {
	args := []string{"delete-vnic"}
	if temporary {
		args = append(args, "-t")
	}
	args = append(args, link)

	_, err := c.exec(ctx, fmt.Sprintf("delete vnic %q", link), sysexec.Cmd{Name: "dladm", Args: args})
	return err
}

// SetLinkProps applies a batch of link properties with a single command.
func (c *Client) SetLinkProps(ctx context.Context, link string, props map[string]string) error {
	if len(props) == 0 {
		return fmt.Errorf("no properties to set: %w", model.ErrNotValid)
	}

	args := []string{"set-linkprop", "-p", propList(props), link}

	_, err := c.exec(ctx, fmt.Sprintf("set properties of %q", link), sysexec.Cmd{Name: "dladm", Args: args})
	return err
}

// CreateVLAN creates a VLAN link over a lower datalink.
func (c *Client) CreateVLAN(ctx context.Context, p model.VLANCreatePayload) error {
	args := []string{"create-vlan"}
	if p.Temporary {
		args = append(args, "-t")
	}
	args = append(args, "-l", p.Lower, "-v", strconv.Itoa(p.VlanID), p.Link)

	_, err := c.exec(ctx, fmt.Sprintf("create vlan %q", p.Link), sysexec.Cmd{Name: "dladm", Args: args})
	return err
}

// DeleteVLAN deletes a VLAN link.
func (c *Client) DeleteVLAN(ctx context.Context, link string, temporary bool) error {
	args := []string{"delete-vlan"}
	if temporary {
		args = append(args, "-t")
	}
	args = append(args, link)

	_, err := c.exec(ctx, fmt.Sprintf("delete vlan %q", link), sysexec.Cmd{Name: "dladm", Args: args})
	return err
}

// CreateAggr creates a link aggregation over member links.
func (c *Client) CreateAggr(ctx context.Context, p model.AggrCreatePayload) error {
	args := []string{"create-aggr"}
	if p.Temporary {
		args = append(args, "-t")
	}
	for _, l := range p.Links {
		args = append(args, "-l", l)
	}
	if p.Policy != "" {
		args = append(args, "-P", p.Policy)
	}
	if p.LACPMode != "" {
		args = append(args, "-L", p.LACPMode)
	}
	if p.LACPTimer != "" {
		args = append(args, "-T", p.LACPTimer)
	}
	args = append(args, p.Link)

	_, err := c.exec(ctx, fmt.Sprintf("create aggr %q", p.Link), sysexec.Cmd{Name: "dladm", Args: args})
	return err
}

// DeleteAggr deletes a link aggregation.
func (c *Client) DeleteAggr(ctx context.Context, link string, temporary bool) error {
	args := []string{"delete-aggr"}
	if temporary {
		args = append(args, "-t")
	}
	args = append(args, link)

	_, err := c.exec(ctx, fmt.Sprintf("delete aggr %q", link), sysexec.Cmd{Name: "dladm", Args: args})
	return err
}

// AddAggrLinks adds member links to an aggregation with a single command.
func (c *Client) AddAggrLinks(ctx context.Context, link string, links []string, temporary bool) error {
	args := []string{"add-aggr"}
	if temporary {
		args = append(args, "-t")
	}
	for _, l := range links {
		args = append(args, "-l", l)
	}
	args = append(args, link)

	_, err := c.exec(ctx, fmt.Sprintf("add links to aggr %q", link), sysexec.Cmd{Name: "dladm", Args: args})
	return err
}

// RemoveAggrLinks removes member links from an aggregation with a single
// command.
func (c *Client) RemoveAggrLinks(ctx context.Context, link string, links []string, temporary bool) error {
	args := []string{"remove-aggr"}
	if temporary {
		args = append(args, "-t")
	}
	for _, l := range links {
		args = append(args, "-l", l)
	}
	args = append(args, link)

	_, err := c.exec(ctx, fmt.Sprintf("remove links from aggr %q", link), sysexec.Cmd{Name: "dladm", Args: args})
	return err
}

// CreateEtherstub creates an etherstub.
func (c *Client) CreateEtherstub(ctx context.Context, link string, temporary bool) error {
	args := []string{"create-etherstub"}
	if temporary {
		args = append(args, "-t")
	}
	args = append(args, link)

	_, err := c.exec(ctx, fmt.Sprintf("create etherstub %q", link), sysexec.Cmd{Name: "dladm", Args: args})
	return err
}

// DeleteEtherstub deletes an etherstub. Fails while VNICs still ride on it.
func (c *Client) DeleteEtherstub(ctx context.Context, link string, temporary bool) error {
	args := []string{"delete-etherstub"}
	if temporary {
		args = append(args, "-t")
	}
	args = append(args, link)

	_, err := c.exec(ctx, fmt.Sprintf("delete etherstub %q", link), sysexec.Cmd{Name: "dladm", Args: args})
	return err
}

// ShowLinks enumerates every datalink on the host with its class.
func (c *Client) ShowLinks(ctx context.Context) ([]LinkInfo, error) {
	res, err := c.exec(ctx, "list links", sysexec.Cmd{Name: "dladm", Args: []string{"show-link", "-p", "-o", "link,class"}})
	if err != nil {
		return nil, err
	}

	var links []LinkInfo
	for _, fields := range c.parseLines(res.Stdout, 2) {
		links = append(links, LinkInfo{Link: fields[0], Class: model.LinkClass(fields[1])})
	}

	return links, nil
}

// ShowVNICs enumerates every VNIC on the host.
func (c *Client) ShowVNICs(ctx context.Context) ([]VNICInfo, error) {
	res, err := c.exec(ctx, "list vnics", sysexec.Cmd{Name: "dladm", Args: []string{"show-vnic", "-p", "-o", "link,over,macaddress"}})
	if err != nil {
		return nil, err
	}

	var vnics []VNICInfo
	for _, fields := range c.parseLines(res.Stdout, 3) {
		vnics = append(vnics, VNICInfo{Link: fields[0], Over: fields[1], MACAddress: fields[2]})
	}

	return vnics, nil
}

// VNICsOver enumerates the VNICs riding on a lower datalink, in the order the
// system reports them.
func (c *Client) VNICsOver(ctx context.Context, lower string) ([]string, error) {
	res, err := c.exec(ctx, fmt.Sprintf("list vnics over %q", lower), sysexec.Cmd{Name: "dladm", Args: []string{"show-vnic", "-p", "-o", "link", "-l", lower}})
	if err != nil {
		return nil, err
	}

	var vnics []string
	for _, fields := range c.parseLines(res.Stdout, 1) {
		vnics = append(vnics, fields[0])
	}

	return vnics, nil
}

// ShowLinkStats samples the traffic counters of every datalink.
func (c *Client) ShowLinkStats(ctx context.Context) ([]LinkStat, error) {
	res, err := c.exec(ctx, "read link statistics", sysexec.Cmd{Name: "dladm", Args: []string{"show-link", "-s", "-p", "-o", "link,rbytes,obytes"}})
	if err != nil {
		return nil, err
	}

	var stats []LinkStat
	for _, fields := range c.parseLines(res.Stdout, 3) {
		rx, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			c.logger.Warningf("Skipping link %q statistics, bad rbytes %q", fields[0], fields[1])
			continue
		}
		tx, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			c.logger.Warningf("Skipping link %q statistics, bad obytes %q", fields[0], fields[2])
			continue
		}
		stats = append(stats, LinkStat{Link: fields[0], RXBytes: rx, TXBytes: tx})
	}

	return stats, nil
}

// ShowAddrs enumerates every address object on the host through ipadm.
func (c *Client) ShowAddrs(ctx context.Context) ([]AddrInfo, error) {
	res, err := c.exec(ctx, "list addresses", sysexec.Cmd{Name: "ipadm", Args: []string{"show-addr", "-p", "-o", "addrobj,state,addr"}})
	if err != nil {
		return nil, err
	}

	var addrs []AddrInfo
	for _, fields := range c.parseLines(res.Stdout, 3) {
		addrs = append(addrs, AddrInfo{AddrObj: fields[0], State: fields[1], Address: fields[2]})
	}

	return addrs, nil
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

// parseLines splits parsable output into per-line field slices, skipping
// lines that don't carry the expected field count.
func (c *Client) parseLines(stdout string, want int) [][]string {
	var out [][]string
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := splitParsable(line)
		if len(fields) < want {
			c.logger.Warningf("Skipping unparsable line %q: expected %d fields, got %d", line, want, len(fields))
			continue
		}
		out = append(out, fields)
	}

	return out
}

// splitParsable splits colon separated parsable output, honoring the `\:`
// escape the -p flag uses for colons inside field values (MAC addresses,
// IPv6 addresses).
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

// macArgs renders a MAC policy as create-vnic arguments. An empty mode lets
// the system pick.
func macArgs(mac model.VNICMAC) []string {
	switch mac.Mode {
	case model.MACModeAuto:
		return []string{"-m", "auto"}
	case model.MACModeFactory:
		return []string{"-m", "factory", "-n", strconv.Itoa(mac.Slot)}
	case model.MACModeRandom:
		args := []string{"-m", "random"}
		if mac.Prefix != "" {
			args = append(args, "-r", mac.Prefix)
		}
		return args
	case model.MACModeFixed:
		return []string{"-m", mac.Address}
	default:
		return nil
	}
}

// propList renders properties as the comma separated k=v list dladm expects,
// in stable key order.
func propList(props map[string]string) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+props[k])
	}

	return strings.Join(pairs, ",")
}
