// Package discovery reconciles the store against the live system. The live
// system is the only ground truth: zones appear and disappear behind the
// orchestrator's back (manual zoneadm runs, host reboots, crashed
// provisioning), so every pass re-enumerates from scratch and never trusts
// anything a previous pass saw.
package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/slok/zonectl/internal/conventions"
	"github.com/slok/zonectl/internal/dladm"
	"github.com/slok/zonectl/internal/log"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/storage"
	"github.com/slok/zonectl/internal/zoneadm"
)

// ZoneReader reads live zone definitions.
type ZoneReader interface {
	List(ctx context.Context) ([]zoneadm.ZoneInfo, error)
	Export(ctx context.Context, zone string) (*model.ZoneConfiguration, error)
}

// LinkReader reads the live datalink and address state.
type LinkReader interface {
	ShowLinks(ctx context.Context) ([]dladm.LinkInfo, error)
	ShowLinkStats(ctx context.Context) ([]dladm.LinkStat, error)
	ShowAddrs(ctx context.Context) ([]dladm.AddrInfo, error)
}

// Storage is the persistence the reconciler needs.
type Storage interface {
	storage.ZoneRepository
	storage.NetworkRepository
}

// DefaultRetention is how long monitoring samples are kept before a scan
// pass prunes them.
const DefaultRetention = 7 * 24 * time.Hour

// ReconcilerConfig is the configuration of the reconciler.
type ReconcilerConfig struct {
	// Host is the identity every store record is keyed on.
	Host    string
	Zones   ZoneReader
	Links   LinkReader
	Storage Storage
	// Retention is the age past which monitoring samples are pruned.
	Retention time.Duration
	Logger    log.Logger
}

func (c *ReconcilerConfig) defaults() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Zones == nil {
		return fmt.Errorf("zone reader is required")
	}
	if c.Links == nil {
		return fmt.Errorf("link reader is required")
	}
	if c.Storage == nil {
		return fmt.Errorf("storage is required")
	}
	if c.Retention == 0 {
		c.Retention = DefaultRetention
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "discovery.Reconciler"})

	return nil
}

// Reconciler diffs live zones and links against the stored records and makes
// the store match.
type Reconciler struct {
	host      string
	zones     ZoneReader
	links     LinkReader
	storage   Storage
	retention time.Duration
	logger    log.Logger
}

// NewReconciler creates a new reconciler.
func NewReconciler(config ReconcilerConfig) (*Reconciler, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Reconciler{
		host:      config.Host,
		zones:     config.Zones,
		links:     config.Links,
		storage:   config.Storage,
		retention: config.Retention,
		logger:    config.Logger,
	}, nil
}

// Result aggregates one zone reconciliation pass.
type Result struct {
	// Discovered counts live zones that had no record and got one.
	Discovered int
	// Orphaned counts records newly flagged because their zone is gone.
	Orphaned int
	// Refreshed counts records updated from their live zone.
	Refreshed int
}

// NetworkResult aggregates one network scan pass.
type NetworkResult struct {
	Interfaces   int
	UsageSamples int
	Addresses    int
	Pruned       int
}

// Run reconciles the zone records of the host against the live zones.
// Live-only zones get a fresh record, store-only records are flagged orphaned
// (never deleted, they keep the audit trail and pending tasks reachable) and
// zones present on both sides are refreshed from the live definition.
// Per-zone failures accumulate, the counts reflect what succeeded.
func (r *Reconciler) Run(ctx context.Context) (*Result, error) {
	live, err := r.zones.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not enumerate live zones: %w", err)
	}

	stored, err := r.storage.ListZones(ctx, r.host)
	if err != nil {
		return nil, fmt.Errorf("could not list stored zones: %w", err)
	}

	storedByName := map[string]model.Zone{}
	for _, z := range stored {
		storedByName[z.Name] = z
	}
	liveNames := map[string]struct{}{}
	for _, z := range live {
		liveNames[z.Name] = struct{}{}
	}

	var mu sync.Mutex
	result := &Result{}

	var group multierror.Group
	for _, z := range live {
		z := z
		record, known := storedByName[z.Name]
		group.Go(func() error {
			if !known {
				if err := r.discoverZone(ctx, z); err != nil {
					return err
				}
				mu.Lock()
				result.Discovered++
				mu.Unlock()
				return nil
			}

			if err := r.refreshZone(ctx, z, record); err != nil {
				return err
			}
			mu.Lock()
			result.Refreshed++
			mu.Unlock()
			return nil
		})
	}

	errs := group.Wait()

	for name, record := range storedByName {
		if _, alive := liveNames[name]; alive || record.IsOrphaned {
			continue
		}
		r.logger.WithValues(log.Kv{"zone": name}).Infof("Zone is gone from the live system, flagging record as orphaned")
		if err := r.storage.SetZoneOrphaned(ctx, r.host, name, true); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("could not orphan zone %q: %w", name, err))
			continue
		}
		result.Orphaned++
	}

	return result, errs.ErrorOrNil()
}

func (r *Reconciler) discoverZone(ctx context.Context, z zoneadm.ZoneInfo) error {
	config, err := r.zones.Export(ctx, z.Name)
	if err != nil {
		return fmt.Errorf("could not export configuration of zone %q: %w", z.Name, err)
	}

	now := time.Now().UTC()
	zone := model.Zone{
		Name:           z.Name,
		ZoneID:         z.ID,
		Host:           r.host,
		Status:         z.State,
		Brand:          z.Brand,
		Configuration:  *config,
		AutoDiscovered: true,
		LastSeen:       now,
	}
	if err := r.storage.CreateZone(ctx, zone); err != nil {
		return fmt.Errorf("could not create record of discovered zone %q: %w", z.Name, err)
	}

	r.logger.WithValues(log.Kv{"zone": z.Name}).Infof("Discovered live zone without a record")
	return nil
}

func (r *Reconciler) refreshZone(ctx context.Context, z zoneadm.ZoneInfo, record model.Zone) error {
	config, err := r.zones.Export(ctx, z.Name)
	if err != nil {
		return fmt.Errorf("could not export configuration of zone %q: %w", z.Name, err)
	}

	// Live exports never carry operator bookkeeping, whatever the record
	// accumulated moves forward.
	config.Provisioning = mergeProvisioning(record.Configuration.Provisioning, config.Provisioning)

	record.ZoneID = z.ID
	record.Status = z.State
	record.Brand = z.Brand
	record.Configuration = *config
	record.IsOrphaned = false
	record.LastSeen = time.Now().UTC()

	if err := r.storage.UpdateZone(ctx, record); err != nil {
		return fmt.Errorf("could not refresh record of zone %q: %w", z.Name, err)
	}

	return nil
}

// mergeProvisioning layers the live keys over the stored ones so operator
// bookkeeping survives a refresh.
func mergeProvisioning(stored, live map[string]string) map[string]string {
	if len(stored) == 0 {
		return live
	}

	merged := make(map[string]string, len(stored)+len(live))
	for k, v := range stored {
		merged[k] = v
	}
	for k, v := range live {
		merged[k] = v
	}
	return merged
}

// ScanNetworks refreshes the interface records of the host and appends one
// traffic and one address sample per live link, then prunes samples older
// than the retention window. Zone ownership follows the link naming
// convention, links an operator associated by hand keep their association.
func (r *Reconciler) ScanNetworks(ctx context.Context) (*NetworkResult, error) {
	links, err := r.links.ShowLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not enumerate live links: %w", err)
	}

	zones, err := r.storage.ListZones(ctx, r.host)
	if err != nil {
		return nil, fmt.Errorf("could not list stored zones: %w", err)
	}

	now := time.Now().UTC()
	result := &NetworkResult{}
	var errs *multierror.Error

	for _, l := range links {
		iface := model.NetworkInterface{
			Host:  r.host,
			Link:  l.Link,
			Class: l.Class,
			Zone:  r.linkZone(ctx, l.Link, l.Class, zones),
		}
		if err := r.storage.UpsertInterface(ctx, iface); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("could not upsert interface %q: %w", l.Link, err))
			continue
		}
		result.Interfaces++
	}

	stats, err := r.links.ShowLinkStats(ctx)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("could not read link statistics: %w", err))
	}
	for _, s := range stats {
		sample := model.NetworkUsage{
			Host:          r.host,
			Link:          s.Link,
			ScanTimestamp: now,
			RXBytes:       s.RXBytes,
			TXBytes:       s.TXBytes,
		}
		if err := r.storage.RecordUsage(ctx, sample); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("could not record usage of link %q: %w", s.Link, err))
			continue
		}
		result.UsageSamples++
	}

	addrs, err := r.links.ShowAddrs(ctx)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("could not read addresses: %w", err))
	}
	for _, a := range addrs {
		obs := model.IPAddress{
			Host:          r.host,
			AddrObj:       a.AddrObj,
			ScanTimestamp: now,
			Address:       a.Address,
			State:         a.State,
		}
		obs.Zone = zoneOfLink(obs.Link(), zones)
		if err := r.storage.RecordIPAddress(ctx, obs); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("could not record address %q: %w", a.AddrObj, err))
			continue
		}
		result.Addresses++
	}

	before := now.Add(-r.retention)
	if n, err := r.storage.PruneUsageBefore(ctx, r.host, before); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("could not prune old usage samples: %w", err))
	} else {
		result.Pruned += n
	}
	if n, err := r.storage.PruneIPAddressesBefore(ctx, r.host, before); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("could not prune old address samples: %w", err))
	} else {
		result.Pruned += n
	}

	return result, errs.ErrorOrNil()
}

// linkZone resolves the zone of a link: naming convention first, otherwise
// whatever association the existing record already carries.
func (r *Reconciler) linkZone(ctx context.Context, link string, class model.LinkClass, zones []model.Zone) string {
	if zone := zoneOfLink(link, zones); zone != "" {
		return zone
	}

	existing, err := r.storage.GetInterface(ctx, r.host, link, class)
	if err != nil || existing == nil {
		return ""
	}
	return existing.Zone
}

func zoneOfLink(link string, zones []model.Zone) string {
	for _, z := range zones {
		if conventions.LinkBelongsToZone(link, z.Name) {
			return z.Name
		}
	}
	return ""
}
