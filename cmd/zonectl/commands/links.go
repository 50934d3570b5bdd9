package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/printer"
	"github.com/slok/zonectl/internal/storage/sqlite"
)

type LinksCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewLinksCommand returns the links command.
func NewLinksCommand(rootCmd *RootCommand, app *kingpin.Application) *LinksCommand {
	c := &LinksCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("links", "List the datalink records of the host with their latest monitoring samples.")
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c LinksCommand) Name() string { return c.Cmd.FullCommand() }

func (c LinksCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Initialize storage (SQLite).
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}

	interfaces, err := repo.ListInterfaces(ctx, c.rootCmd.Host)
	if err != nil {
		return fmt.Errorf("could not list interfaces: %w", err)
	}

	usage, err := repo.LatestUsage(ctx, c.rootCmd.Host)
	if err != nil {
		return fmt.Errorf("could not load usage samples: %w", err)
	}

	addrs, err := repo.LatestIPAddresses(ctx, c.rootCmd.Host)
	if err != nil {
		return fmt.Errorf("could not load address samples: %w", err)
	}

	// Join the records and the monitoring samples per link.
	usageByLink := make(map[string]model.NetworkUsage, len(usage))
	for _, u := range usage {
		usageByLink[u.Link] = u
	}
	addrsByLink := map[string][]model.IPAddress{}
	for _, a := range addrs {
		addrsByLink[a.Link()] = append(addrsByLink[a.Link()], a)
	}

	views := make([]printer.LinkView, 0, len(interfaces))
	for _, iface := range interfaces {
		view := printer.LinkView{
			Interface: iface,
			Addresses: addrsByLink[iface.Link],
		}
		if u, ok := usageByLink[iface.Link]; ok {
			view.Usage = &u
		}
		views = append(views, view)
	}

	// Print output.
	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if err := p.PrintLinks(views); err != nil {
		return fmt.Errorf("could not print links: %w", err)
	}

	return nil
}
