package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/printer"
	"github.com/slok/zonectl/internal/queue"
	"github.com/slok/zonectl/internal/storage"
	"github.com/slok/zonectl/internal/storage/sqlite"
)

type TasksCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	statuses  []string
	operation string
	zone      string
	limit     int
	format    string
}

// NewTasksCommand returns the tasks command.
func NewTasksCommand(rootCmd *RootCommand, app *kingpin.Application) *TasksCommand {
	c := &TasksCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("tasks", "List the tasks of the host queue.")
	c.Cmd.Flag("status", "Filter by status, repeatable (prepared, pending, running, completed, failed, cancelled).").EnumsVar(&c.statuses,
		string(model.TaskStatusPrepared), string(model.TaskStatusPending), string(model.TaskStatusRunning),
		string(model.TaskStatusCompleted), string(model.TaskStatusFailed), string(model.TaskStatusCancelled))
	c.Cmd.Flag("operation", "Filter by operation.").StringVar(&c.operation)
	c.Cmd.Flag("zone", "Filter by zone name.").StringVar(&c.zone)
	c.Cmd.Flag("limit", "Maximum number of tasks to show, newest first (0 shows all).").IntVar(&c.limit)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c TasksCommand) Name() string { return c.Cmd.FullCommand() }

func (c TasksCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Parse operation filter if provided.
	var operation model.Operation
	if c.operation != "" {
		operation = model.Operation(c.operation)
		if !operation.Valid() {
			return fmt.Errorf("invalid operation filter: %s", c.operation)
		}
	}

	var statuses []model.TaskStatus
	for _, s := range c.statuses {
		statuses = append(statuses, model.TaskStatus(s))
	}

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

	// Execute list.
	tasks, err := svc.List(ctx, storage.TaskListFilter{
		Statuses:  statuses,
		Operation: operation,
		ZoneName:  c.zone,
		Limit:     c.limit,
	})
	if err != nil {
		return fmt.Errorf("could not list tasks: %w", err)
	}

	// Print output.
	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if err := p.PrintTasks(tasks); err != nil {
		return fmt.Errorf("could not print tasks: %w", err)
	}

	return nil
}
