package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"

	"github.com/slok/zonectl/internal/beadm"
	"github.com/slok/zonectl/internal/console"
	"github.com/slok/zonectl/internal/discovery"
	"github.com/slok/zonectl/internal/dladm"
	"github.com/slok/zonectl/internal/handler/bootenv"
	"github.com/slok/zonectl/internal/handler/link"
	"github.com/slok/zonectl/internal/handler/zone"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/queue"
	"github.com/slok/zonectl/internal/reclaim"
	"github.com/slok/zonectl/internal/storage/sqlite"
	"github.com/slok/zonectl/internal/sysexec"
	"github.com/slok/zonectl/internal/zfs"
	"github.com/slok/zonectl/internal/zoneadm"
)

type WorkerCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	workers       int
	pollInterval  time.Duration
	discoverEvery time.Duration
}

// NewWorkerCommand returns the worker command.
func NewWorkerCommand(rootCmd *RootCommand, app *kingpin.Application) *WorkerCommand {
	c := &WorkerCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("worker", "Run the task queue worker that executes zone operations on this host.")
	c.Cmd.Flag("workers", "Number of concurrent claim loops.").Default("1").IntVar(&c.workers)
	c.Cmd.Flag("poll-interval", "How long an idle claim loop waits before polling the queue again.").Default("2s").DurationVar(&c.pollInterval)
	c.Cmd.Flag("discover-every", "Enqueue a background discovery task at this interval (0 disables).").Default("0").DurationVar(&c.discoverEvery)

	return c
}

func (c WorkerCommand) Name() string { return c.Cmd.FullCommand() }

func (c WorkerCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	runner, err := sysexec.NewRunner(sysexec.RunnerConfig{
		Elevator: c.rootCmd.elevator(),
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("could not create command runner: %w", err)
	}

	// Platform clients.
	zones, err := zoneadm.NewClient(zoneadm.ClientConfig{Runner: runner, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create zoneadm client: %w", err)
	}

	links, err := dladm.NewClient(dladm.ClientConfig{Runner: runner, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create dladm client: %w", err)
	}

	datasets, err := zfs.NewClient(zfs.ClientConfig{Runner: runner, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create zfs client: %w", err)
	}

	bootEnvs, err := beadm.NewClient(beadm.ClientConfig{Runner: runner, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create beadm client: %w", err)
	}

	// Console session bookkeeping, also reaps sessions left by a previous run.
	consoles, err := console.NewTracker(console.TrackerConfig{
		DataDir: c.rootCmd.DataDir,
		Runner:  runner,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create console tracker: %w", err)
	}

	// Initialize storage (SQLite).
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}

	analyzer, err := reclaim.NewAnalyzer(reclaim.AnalyzerConfig{
		Zones:    zones,
		Datasets: datasets,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("could not create reclaim analyzer: %w", err)
	}

	reconciler, err := discovery.NewReconciler(discovery.ReconcilerConfig{
		Host:    c.rootCmd.Host,
		Zones:   zones,
		Links:   links,
		Storage: repo,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create reconciler: %w", err)
	}

	// Register every operation handler.
	registry := queue.NewRegistry()

	zoneHandlers, err := zone.NewHandlers(zone.HandlersConfig{
		Host:       c.rootCmd.Host,
		Zones:      zones,
		Analyzer:   analyzer,
		Reconciler: reconciler,
		Console:    consoles,
		Links:      links,
		Storage:    repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create zone handlers: %w", err)
	}
	if err := zoneHandlers.Register(registry); err != nil {
		return fmt.Errorf("could not register zone handlers: %w", err)
	}

	linkHandlers, err := link.NewHandlers(link.HandlersConfig{
		Host:    c.rootCmd.Host,
		Links:   links,
		Storage: repo,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create link handlers: %w", err)
	}
	if err := linkHandlers.Register(registry); err != nil {
		return fmt.Errorf("could not register link handlers: %w", err)
	}

	beHandlers, err := bootenv.NewHandlers(bootenv.HandlersConfig{
		BootEnvs: bootEnvs,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("could not create boot environment handlers: %w", err)
	}
	if err := beHandlers.Register(registry); err != nil {
		return fmt.Errorf("could not register boot environment handlers: %w", err)
	}

	dispatcher, err := queue.NewDispatcher(queue.DispatcherConfig{
		Host:     c.rootCmd.Host,
		Storage:  repo,
		Registry: registry,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("could not create dispatcher: %w", err)
	}

	worker, err := queue.NewWorker(queue.WorkerConfig{
		Dispatcher:   dispatcher,
		Workers:      c.workers,
		PollInterval: c.pollInterval,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("could not create worker: %w", err)
	}

	var g run.Group

	// Task worker loops.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				return worker.Run(ctx)
			},
			func(_ error) {
				cancel()
			},
		)
	}

	// Periodic discovery enqueue.
	if c.discoverEvery > 0 {
		queueSvc, err := queue.NewService(queue.ServiceConfig{
			Host:    c.rootCmd.Host,
			Storage: repo,
			Logger:  logger,
		})
		if err != nil {
			return fmt.Errorf("could not create queue service: %w", err)
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				ticker := time.NewTicker(c.discoverEvery)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return nil
					case <-ticker.C:
					}

					_, err := queueSvc.Enqueue(ctx, queue.EnqueueRequest{
						Operation: model.OperationZoneDiscover,
						Priority:  model.TaskPriorityBackground,
						CreatedBy: "worker",
					})
					if err != nil {
						logger.Warningf("Could not enqueue the periodic discovery task: %s", err)
					}
				}
			},
			func(_ error) {
				cancel()
			},
		)
	}

	logger.Infof("Worker starting: host=%s workers=%d", c.rootCmd.Host, c.workers)
	return g.Run()
}
