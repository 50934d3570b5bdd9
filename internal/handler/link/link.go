// Package link implements the task handlers of the datalink operations:
// VNICs, VLANs, link aggregations and etherstubs. The handlers drive the
// platform commands and keep the interface records in the store in sync,
// record problems never undo a link change that already happened.
package link

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/slok/zonectl/internal/log"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/queue"
	"github.com/slok/zonectl/internal/storage"
)

// LinkManager drives the datalink administration commands.
type LinkManager interface {
	CreateVNIC(ctx context.Context, p model.VNICCreatePayload) error
	DeleteVNIC(ctx context.Context, link string, temporary bool) error
	SetLinkProps(ctx context.Context, link string, props map[string]string) error
	CreateVLAN(ctx context.Context, p model.VLANCreatePayload) error
	DeleteVLAN(ctx context.Context, link string, temporary bool) error
	CreateAggr(ctx context.Context, p model.AggrCreatePayload) error
	DeleteAggr(ctx context.Context, link string, temporary bool) error
	AddAggrLinks(ctx context.Context, link string, links []string, temporary bool) error
	RemoveAggrLinks(ctx context.Context, link string, links []string, temporary bool) error
	CreateEtherstub(ctx context.Context, link string, temporary bool) error
	DeleteEtherstub(ctx context.Context, link string, temporary bool) error
	VNICsOver(ctx context.Context, lower string) ([]string, error)
}

// HandlersConfig is the configuration of the link handlers.
type HandlersConfig struct {
	Host    string
	Links   LinkManager
	Storage storage.NetworkRepository
	Logger  log.Logger
}

func (c *HandlersConfig) defaults() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Links == nil {
		return fmt.Errorf("link manager is required")
	}
	if c.Storage == nil {
		return fmt.Errorf("storage is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "handler.Link"})

	return nil
}

// Handlers implements the datalink task operations.
type Handlers struct {
	host    string
	links   LinkManager
	storage storage.NetworkRepository
	logger  log.Logger
}

// NewHandlers returns the link handlers.
func NewHandlers(config HandlersConfig) (*Handlers, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Handlers{
		host:    config.Host,
		links:   config.Links,
		storage: config.Storage,
		logger:  config.Logger,
	}, nil
}

// Register binds every datalink operation on the registry.
func (h *Handlers) Register(registry *queue.Registry) error {
	for op, fn := range map[model.Operation]queue.HandlerFunc{
		model.OperationVNICCreate:      h.VNICCreate,
		model.OperationVNICDelete:      h.VNICDelete,
		model.OperationVNICSetProps:    h.VNICSetProps,
		model.OperationVLANCreate:      h.VLANCreate,
		model.OperationVLANDelete:      h.VLANDelete,
		model.OperationAggrCreate:      h.AggrCreate,
		model.OperationAggrDelete:      h.AggrDelete,
		model.OperationAggrModifyLinks: h.AggrModifyLinks,
		model.OperationEtherstubCreate: h.EtherstubCreate,
		model.OperationEtherstubDelete: h.EtherstubDelete,
	} {
		if err := registry.Register(op, fn); err != nil {
			return err
		}
	}
	return nil
}

// recordInterface upserts the store record of a link that now exists on the
// system. The zone association comes from the task, discovery preserves it
// on later scans.
func (h *Handlers) recordInterface(ctx context.Context, link string, class model.LinkClass, zone string) error {
	iface := model.NetworkInterface{
		Host:  h.host,
		Link:  link,
		Class: class,
		Zone:  zone,
	}
	if err := h.storage.UpsertInterface(ctx, iface); err != nil {
		return fmt.Errorf("could not persist the interface record: %w", err)
	}
	return nil
}

// forgetInterface removes the record and the samples of a link that no
// longer exists on the system.
func (h *Handlers) forgetInterface(ctx context.Context, link string, class model.LinkClass) error {
	var errs *multierror.Error
	if err := h.storage.DeleteInterface(ctx, h.host, link, class); err != nil && !errors.Is(err, model.ErrNotFound) {
		errs = multierror.Append(errs, fmt.Errorf("could not delete the interface record of %q: %w", link, err))
	}
	if err := h.storage.DeleteUsageByLink(ctx, h.host, link); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("could not delete the usage samples of %q: %w", link, err))
	}
	if err := h.storage.DeleteIPAddressesByLink(ctx, h.host, link); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("could not delete the address samples of %q: %w", link, err))
	}
	return errs.ErrorOrNil()
}

// cleanupString renders a cleanup error for the task record.
func cleanupString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
