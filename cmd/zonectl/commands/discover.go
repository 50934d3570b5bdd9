package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/printer"
	"github.com/slok/zonectl/internal/queue"
	"github.com/slok/zonectl/internal/storage/sqlite"
)

type DiscoverCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	createdBy string
	format    string
}

// NewDiscoverCommand returns the discover command.
func NewDiscoverCommand(rootCmd *RootCommand, app *kingpin.Application) *DiscoverCommand {
	c := &DiscoverCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("discover", "Enqueue a high priority discovery task that reconciles the records with the live host.")
	c.Cmd.Flag("created-by", "Who the task is recorded as created by.").Default(defaultCreator()).StringVar(&c.createdBy)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c DiscoverCommand) Name() string { return c.Cmd.FullCommand() }

func (c DiscoverCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Initialize storage (SQLite).
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}

	// Create queue service.
	svc, err := queue.NewService(queue.ServiceConfig{
		Host:    c.rootCmd.Host,
		Storage: repo,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute enqueue.
	task, err := svc.Enqueue(ctx, queue.EnqueueRequest{
		Operation: model.OperationZoneDiscover,
		Priority:  model.TaskPriorityHigh,
		CreatedBy: c.createdBy,
	})
	if err != nil {
		return fmt.Errorf("could not enqueue discovery task: %w", err)
	}

	// Print output.
	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if err := p.PrintTask(*task); err != nil {
		return fmt.Errorf("could not print task: %w", err)
	}

	return nil
}
