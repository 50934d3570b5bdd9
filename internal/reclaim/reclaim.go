// Package reclaim decides which of a zone's datasets are safe to destroy
// when the zone is deleted. Storage is routinely shared across zones (a
// common parent dataset, a shared zvol), so a recursive destroy keyed only on
// the deleted zone's own paths can take another live zone's data with it. The
// analyzer extracts every dataset the zone references, verifies them against
// the live system, builds the set of datasets every other zone still needs
// and only destroys candidates that protect nothing in that set.
package reclaim

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/slok/zonectl/internal/log"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/zoneadm"
)

// ZoneReader reads live zone definitions.
type ZoneReader interface {
	List(ctx context.Context) ([]zoneadm.ZoneInfo, error)
	Export(ctx context.Context, zone string) (*model.ZoneConfiguration, error)
}

// DatasetManager checks and destroys datasets.
type DatasetManager interface {
	Exists(ctx context.Context, dataset string) (bool, error)
	Destroy(ctx context.Context, dataset string, recursive bool) error
}

// AnalyzerConfig is the configuration of the analyzer.
type AnalyzerConfig struct {
	Zones    ZoneReader
	Datasets DatasetManager
	Logger   log.Logger
}

func (c *AnalyzerConfig) defaults() error {
	if c.Zones == nil {
		return fmt.Errorf("zone reader is required")
	}
	if c.Datasets == nil {
		return fmt.Errorf("dataset manager is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "reclaim.Analyzer"})

	return nil
}

// Analyzer plans and executes dataset reclamation for deleted zones.
type Analyzer struct {
	zones    ZoneReader
	datasets DatasetManager
	logger   log.Logger
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(config AnalyzerConfig) (*Analyzer, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Analyzer{
		zones:    config.Zones,
		datasets: config.Datasets,
		logger:   config.Logger,
	}, nil
}

// Plan is the decision of the analyzer for one zone: the verified dataset
// candidates in destruction order and the datasets other live zones still
// reference.
type Plan struct {
	Zone string
	// Candidates are the verified datasets of the zone, parents before
	// children.
	Candidates []string
	// Protected are the datasets every other live zone references.
	Protected []string
}

// Result summarizes an executed plan.
type Result struct {
	Destroyed []string
	Skipped   []string
}

// Plan analyzes what deleting the zone may destroy. It never touches the
// system beyond read-only queries, so it is safe to run before the zone is
// torn down. Candidates that cannot be verified are left out with a warning;
// a protected set that cannot be fully built is an error, destroying anything
// without knowing what the other zones need is not acceptable.
func (a *Analyzer) Plan(ctx context.Context, zone string, config model.ZoneConfiguration) (*Plan, error) {
	candidates := ExtractDatasets(config)
	a.logger.WithValues(log.Kv{"zone": zone}).Debugf("Extracted %d dataset candidates", len(candidates))

	verified := a.verify(ctx, candidates)

	protected, err := a.protectedSet(ctx, zone)
	if err != nil {
		return nil, fmt.Errorf("could not build the protected dataset set: %w", err)
	}

	sortShortestFirst(verified)

	return &Plan{
		Zone:       zone,
		Candidates: verified,
		Protected:  protected,
	}, nil
}

// Destroy executes a plan, destroying every unprotected candidate
// recursively. Failures accumulate instead of stopping the loop and the
// accumulated error is returned at the end: leftover storage does not
// self-heal, callers must treat it as a failed reclamation even when part of
// the plan succeeded.
func (a *Analyzer) Destroy(ctx context.Context, plan *Plan) (*Result, error) {
	logger := a.logger.WithValues(log.Kv{"zone": plan.Zone})

	var errs *multierror.Error
	result := &Result{}
	for _, ds := range plan.Candidates {
		if p, hit := protectedBy(ds, plan.Protected); hit {
			logger.Infof("Keeping dataset %q, another zone references %q", ds, p)
			result.Skipped = append(result.Skipped, ds)
			continue
		}

		// A parent earlier in the plan may have taken this one with it.
		exists, err := a.datasets.Exists(ctx, ds)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if !exists {
			logger.Debugf("Dataset %q already gone", ds)
			continue
		}

		if err := a.datasets.Destroy(ctx, ds, true); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		result.Destroyed = append(result.Destroyed, ds)
	}

	return result, errs.ErrorOrNil()
}

// verify keeps the candidates that exist as live datasets. Verification
// failures drop the candidate and are logged, a stale reference in an old
// configuration must not block the deletion.
func (a *Analyzer) verify(ctx context.Context, candidates []string) []string {
	var mu sync.Mutex
	verified := make([]string, 0, len(candidates))

	var group multierror.Group
	for _, ds := range candidates {
		ds := ds
		group.Go(func() error {
			exists, err := a.datasets.Exists(ctx, ds)
			if err != nil {
				return fmt.Errorf("could not verify dataset %q: %w", ds, err)
			}
			if !exists {
				return nil
			}

			mu.Lock()
			verified = append(verified, ds)
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait().ErrorOrNil(); err != nil {
		a.logger.Warningf("Some dataset candidates could not be verified and were left out: %s", err)
	}

	return verified
}

// protectedSet gathers the datasets referenced by every live zone except the
// one being deleted, from their live exported configurations.
func (a *Analyzer) protectedSet(ctx context.Context, zone string) ([]string, error) {
	zones, err := a.zones.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list live zones: %w", err)
	}

	var mu sync.Mutex
	set := map[string]struct{}{}

	var group multierror.Group
	for _, z := range zones {
		if z.Name == zone {
			continue
		}
		z := z
		group.Go(func() error {
			config, err := a.zones.Export(ctx, z.Name)
			if err != nil {
				return fmt.Errorf("could not export configuration of zone %q: %w", z.Name, err)
			}

			mu.Lock()
			for _, ds := range ExtractDatasets(*config) {
				set[ds] = struct{}{}
			}
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait().ErrorOrNil(); err != nil {
		return nil, err
	}

	protected := make([]string, 0, len(set))
	for ds := range set {
		protected = append(protected, ds)
	}
	sort.Strings(protected)

	return protected, nil
}

var diskAttrRegexp = regexp.MustCompile(`^disk\d+$`)

// ExtractDatasets collects every dataset a zone configuration references:
// the root dataset derived from the zonepath (trailing segment stripped),
// the boot disk, declared disks, legacy numbered disk attributes, zvol
// paths in device matches and filesystem specials, and explicit dataset
// delegations. The result is deduplicated and sorted, identical input always
// yields the identical candidate set.
func ExtractDatasets(config model.ZoneConfiguration) []string {
	set := map[string]struct{}{}
	add := func(ds string) {
		if ds != "" {
			set[ds] = struct{}{}
		}
	}

	if p := strings.TrimPrefix(config.Zonepath, "/"); p != "" {
		if i := strings.LastIndex(p, "/"); i > 0 {
			add(p[:i])
		}
	}

	add(config.BootDisk)
	for _, disk := range config.Disks {
		add(disk)
	}
	for _, attr := range config.Attributes {
		if attr.Name == "bootdisk" || diskAttrRegexp.MatchString(attr.Name) {
			add(attr.Value)
		}
	}
	for _, dev := range config.Devices {
		add(zvolDataset(dev.Match))
	}
	for _, fsys := range config.Filesystems {
		add(zvolDataset(fsys.Special))
	}
	for _, ds := range config.Datasets {
		add(ds)
	}

	datasets := make([]string, 0, len(set))
	for ds := range set {
		datasets = append(datasets, ds)
	}
	sort.Strings(datasets)

	return datasets
}

// zvolDataset extracts the dataset name out of a zvol device path, empty for
// paths that are not zvols.
func zvolDataset(path string) string {
	for _, prefix := range []string{"/dev/zvol/dsk/", "/dev/zvol/rdsk/"} {
		if rest, ok := strings.CutPrefix(path, prefix); ok {
			return rest
		}
	}
	return ""
}

// protectedBy reports whether destroying the candidate would take a
// protected dataset with it: the candidate matches a protected entry exactly
// or is a path ancestor of one. The check is segment aware, `pool/zone1` is
// not an ancestor of `pool/zone10`.
func protectedBy(candidate string, protected []string) (string, bool) {
	for _, p := range protected {
		if candidate == p || strings.HasPrefix(p, candidate+"/") {
			return p, true
		}
	}
	return "", false
}

// sortShortestFirst orders datasets parents before children so a recursive
// destroy of a parent makes the child destroys no-ops instead of failures.
func sortShortestFirst(datasets []string) {
	sort.Slice(datasets, func(i, j int) bool {
		di, dj := strings.Count(datasets[i], "/"), strings.Count(datasets[j], "/")
		if di != dj {
			return di < dj
		}
		return datasets[i] < datasets[j]
	})
}
