// Package zone implements the task handlers of the zone lifecycle
// operations: create, start, stop, restart, delete and discover.
package zone

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/zonectl/internal/console"
	"github.com/slok/zonectl/internal/discovery"
	"github.com/slok/zonectl/internal/log"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/queue"
	"github.com/slok/zonectl/internal/reclaim"
	"github.com/slok/zonectl/internal/storage"
	"github.com/slok/zonectl/internal/zoneadm"
)

// ZoneManager drives live zones.
type ZoneManager interface {
	List(ctx context.Context) ([]zoneadm.ZoneInfo, error)
	State(ctx context.Context, zone string) (model.ZoneStatus, error)
	Boot(ctx context.Context, zone string) error
	Shutdown(ctx context.Context, zone string) error
	Halt(ctx context.Context, zone string) error
	Install(ctx context.Context, zone string) error
	Uninstall(ctx context.Context, zone string) error
	Configure(ctx context.Context, zone string, config model.ZoneConfiguration) error
	Unconfigure(ctx context.Context, zone string) error
	Export(ctx context.Context, zone string) (*model.ZoneConfiguration, error)
	FixZonepathPermissions(ctx context.Context, zonepath string) error
}

// Analyzer plans and executes dataset reclamation.
type Analyzer interface {
	Plan(ctx context.Context, zone string, config model.ZoneConfiguration) (*reclaim.Plan, error)
	Destroy(ctx context.Context, plan *reclaim.Plan) (*reclaim.Result, error)
}

// Reconciler syncs the store with the live system.
type Reconciler interface {
	Run(ctx context.Context) (*discovery.Result, error)
	ScanNetworks(ctx context.Context) (*discovery.NetworkResult, error)
}

// VNICDeleter removes live VNICs during zone network cleanup.
type VNICDeleter interface {
	DeleteVNIC(ctx context.Context, link string, temporary bool) error
}

// defaultRestartSettle is how long restart waits between the stop and the
// start so the zone's services release their resources.
const defaultRestartSettle = 3 * time.Second

// HandlersConfig is the configuration of the zone handlers.
type HandlersConfig struct {
	Host       string
	Zones      ZoneManager
	Analyzer   Analyzer
	Reconciler Reconciler
	Console    console.Terminator
	Links      VNICDeleter
	Storage    storage.Repository
	// RestartSettle overrides the wait between stop and start on restart.
	RestartSettle time.Duration
	Logger        log.Logger
}

func (c *HandlersConfig) defaults() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Zones == nil {
		return fmt.Errorf("zone manager is required")
	}
	if c.Analyzer == nil {
		return fmt.Errorf("analyzer is required")
	}
	if c.Reconciler == nil {
		return fmt.Errorf("reconciler is required")
	}
	if c.Console == nil {
		return fmt.Errorf("console terminator is required")
	}
	if c.Links == nil {
		return fmt.Errorf("vnic deleter is required")
	}
	if c.Storage == nil {
		return fmt.Errorf("storage is required")
	}
	if c.RestartSettle <= 0 {
		c.RestartSettle = defaultRestartSettle
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "handler.Zone"})

	return nil
}

// Handlers are the zone lifecycle task handlers.
type Handlers struct {
	host          string
	zones         ZoneManager
	analyzer      Analyzer
	reconciler    Reconciler
	console       console.Terminator
	links         VNICDeleter
	storage       storage.Repository
	restartSettle time.Duration
	logger        log.Logger
}

// NewHandlers creates the zone handlers.
func NewHandlers(config HandlersConfig) (*Handlers, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Handlers{
		host:          config.Host,
		zones:         config.Zones,
		analyzer:      config.Analyzer,
		reconciler:    config.Reconciler,
		console:       config.Console,
		links:         config.Links,
		storage:       config.Storage,
		restartSettle: config.RestartSettle,
		logger:        config.Logger,
	}, nil
}

// Register binds every zone operation on the registry.
func (h *Handlers) Register(registry *queue.Registry) error {
	for op, fn := range map[model.Operation]queue.HandlerFunc{
		model.OperationZoneCreate:   h.Create,
		model.OperationZoneStart:    h.Start,
		model.OperationZoneStop:     h.Stop,
		model.OperationZoneRestart:  h.Restart,
		model.OperationZoneDelete:   h.Delete,
		model.OperationZoneDiscover: h.Discover,
	} {
		if err := registry.Register(op, fn); err != nil {
			return err
		}
	}
	return nil
}

// setZoneStatus refreshes the stored status of a zone after a lifecycle
// change.
func (h *Handlers) setZoneStatus(ctx context.Context, zone string, status model.ZoneStatus) error {
	record, err := h.storage.GetZone(ctx, h.host, zone)
	if err != nil {
		return fmt.Errorf("could not load the zone record: %w", err)
	}

	record.Status = status
	record.LastSeen = time.Now().UTC()
	if err := h.storage.UpdateZone(ctx, *record); err != nil {
		return fmt.Errorf("could not update the zone record: %w", err)
	}

	return nil
}

// liveZone returns the live listing entry of a zone.
func (h *Handlers) liveZone(ctx context.Context, zone string) (*zoneadm.ZoneInfo, error) {
	infos, err := h.zones.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list the live zones: %w", err)
	}
	for _, info := range infos {
		if info.Name == zone {
			return &info, nil
		}
	}
	return nil, fmt.Errorf("zone %q is not on the live system: %w", zone, model.ErrNotFound)
}
