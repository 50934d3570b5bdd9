package commands

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/zonectl/internal/conventions"
	"github.com/slok/zonectl/internal/log"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	Host       string
	DataDir    string
	DBPath     string
	Pfexec     bool

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	hostname, _ := os.Hostname()
	app.Flag("host", "Host identity tasks and records are keyed on.").Default(hostname).StringVar(&c.Host)

	defaultDataDir := filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir)
	app.Flag("data-dir", "Path to the zonectl data directory.").Envar("ZONECTL_DATA_DIR").Default(defaultDataDir).StringVar(&c.DataDir)
	app.Flag("db-path", "Path to the SQLite database file.").Envar("ZONECTL_DB_PATH").Default(conventions.DBPath(defaultDataDir)).StringVar(&c.DBPath)
	app.Flag("pfexec", "Run platform commands through pfexec (disable with --no-pfexec).").Default("true").BoolVar(&c.Pfexec)

	return c
}

// elevator returns the privilege elevation command for the command runner.
func (c *RootCommand) elevator() string {
	if c.Pfexec {
		return "pfexec"
	}
	return ""
}

// defaultCreator is the created-by default recorded on tasks enqueued from
// the CLI.
func defaultCreator() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "cli"
}
