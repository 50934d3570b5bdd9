package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/zonectl/internal/conventions"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/printer"
	"github.com/slok/zonectl/internal/queue"
	storageio "github.com/slok/zonectl/internal/storage/io"
	"github.com/slok/zonectl/internal/storage/sqlite"
)

type EnqueueCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	operation string
	zone      string
	priority  string
	createdBy string
	metadata  string
	template  string
	format    string
}

// NewEnqueueCommand returns the enqueue command.
func NewEnqueueCommand(rootCmd *RootCommand, app *kingpin.Application) *EnqueueCommand {
	c := &EnqueueCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("enqueue", "Enqueue a task for the host worker.")
	c.Cmd.Arg("operation", "Task operation (zone_create, zone_delete, vnic_create, be_activate, ...).").Required().StringVar(&c.operation)
	c.Cmd.Flag("zone", "Zone the task targets (required for zone operations).").StringVar(&c.zone)
	c.Cmd.Flag("priority", "Dispatch priority.").Default(string(model.TaskPriorityMedium)).EnumVar(&c.priority,
		string(model.TaskPriorityLow), string(model.TaskPriorityBackground), string(model.TaskPriorityMedium), string(model.TaskPriorityHigh))
	c.Cmd.Flag("created-by", "Who the task is recorded as created by.").Default(defaultCreator()).StringVar(&c.createdBy)
	c.Cmd.Flag("metadata", "Operation metadata as an inline JSON object.").StringVar(&c.metadata)
	c.Cmd.Flag("template", "Zone template name from the data dir templates (zone_create only).").StringVar(&c.template)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c EnqueueCommand) Name() string { return c.Cmd.FullCommand() }

func (c EnqueueCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	if c.metadata != "" && c.template != "" {
		return fmt.Errorf("--metadata and --template are mutually exclusive")
	}

	zoneName := c.zone
	var metadata json.RawMessage
	if c.metadata != "" {
		metadata = json.RawMessage(c.metadata)
	}

	// Zone templates expand into the creation payload.
	if c.template != "" {
		if model.Operation(c.operation) != model.OperationZoneCreate {
			return fmt.Errorf("--template is only valid for %s tasks", model.OperationZoneCreate)
		}

		templates := storageio.NewTemplateYAMLRepository(os.DirFS(filepath.Join(c.rootCmd.DataDir, conventions.TemplatesDir)))
		tpl, err := templates.GetTemplate(ctx, c.template+".yaml")
		if err != nil {
			return fmt.Errorf("could not load zone template %q: %w", conventions.TemplatePath(c.rootCmd.DataDir, c.template), err)
		}

		if zoneName == "" {
			zoneName = tpl.Name
		}

		metadata, err = json.Marshal(tpl.Payload)
		if err != nil {
			return fmt.Errorf("could not encode template payload: %w", err)
		}
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

	// Execute enqueue.
	task, err := svc.Enqueue(ctx, queue.EnqueueRequest{
		ZoneName:  zoneName,
		Operation: model.Operation(c.operation),
		Priority:  model.TaskPriority(c.priority),
		CreatedBy: c.createdBy,
		Metadata:  metadata,
	})
	if err != nil {
		return fmt.Errorf("could not enqueue task: %w", err)
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
