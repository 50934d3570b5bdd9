package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/zonectl/internal/doctor"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/printer"
	"github.com/slok/zonectl/internal/sysexec"
)

type DoctorCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewDoctorCommand returns the doctor command.
func NewDoctorCommand(rootCmd *RootCommand, app *kingpin.Application) *DoctorCommand {
	c := &DoctorCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("doctor", "Run preflight checks for the zone management host.")
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c DoctorCommand) Name() string { return c.Cmd.FullCommand() }

func (c DoctorCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	runner, err := sysexec.NewRunner(sysexec.RunnerConfig{
		Elevator: c.rootCmd.elevator(),
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("could not create command runner: %w", err)
	}

	checker, err := doctor.NewChecker(doctor.CheckerConfig{
		DataDir: c.rootCmd.DataDir,
		Exec:    runner,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create checker: %w", err)
	}

	results := checker.Run(ctx)

	// Print output.
	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if err := p.PrintChecks(results); err != nil {
		return fmt.Errorf("could not print checks: %w", err)
	}

	// Return error if there are any errors.
	if model.HasErrors(results) {
		return fmt.Errorf("preflight checks failed")
	}

	return nil
}
