package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/zonectl/internal/printer"
	"github.com/slok/zonectl/internal/queue"
	"github.com/slok/zonectl/internal/storage/sqlite"
)

type ReadyCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
}

// NewReadyCommand returns the ready command.
func NewReadyCommand(rootCmd *RootCommand, app *kingpin.Application) *ReadyCommand {
	c := &ReadyCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("ready", "Promote a prepared task so the worker can claim it.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)

	return c
}

func (c ReadyCommand) Name() string { return c.Cmd.FullCommand() }

func (c ReadyCommand) Run(ctx context.Context) error {
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

	// Execute ready.
	task, err := svc.Ready(ctx, c.taskID)
	if err != nil {
		return fmt.Errorf("could not promote task: %w", err)
	}

	// Print success message.
	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("Task pending dispatch: %s", task.ID)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
