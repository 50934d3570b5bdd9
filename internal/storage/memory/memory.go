package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/slok/zonectl/internal/log"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/storage"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository. It is used
// by tests and by read-only commands that run without a state database.
type Repository struct {
	tasks      map[string]model.Task
	zones      map[string]model.Zone
	interfaces map[string]model.NetworkInterface
	usage      []model.NetworkUsage
	ips        []model.IPAddress
	mu         sync.RWMutex
	logger     log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		tasks:      make(map[string]model.Task),
		zones:      make(map[string]model.Zone),
		interfaces: make(map[string]model.NetworkInterface),
		logger:     cfg.Logger,
	}, nil
}

func hostKey(host, name string) string { return host + "/" + name }

func ifaceKey(host, link string, class model.LinkClass) string {
	return host + "/" + link + "/" + string(class)
}

// CreateTask creates a new task in the repository.
func (r *Repository) CreateTask(ctx context.Context, t model.Task) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[t.ID]; ok {
		return fmt.Errorf("task with id %s: %w", t.ID, model.ErrAlreadyExists)
	}

	r.tasks[t.ID] = t
	r.logger.Debugf("Created task in repository: %s", t.ID)

	return nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	taskCopy := task
	return &taskCopy, nil
}

// ClaimNextTask atomically claims the best pending task of the host.
func (r *Repository) ClaimNextTask(ctx context.Context, host string) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var best *model.Task
	for id := range r.tasks {
		task := r.tasks[id]
		if task.Host != host || task.Status != model.TaskStatusPending {
			continue
		}
		if best == nil || claimsBefore(task, *best) {
			taskCopy := task
			best = &taskCopy
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no pending task for host %s: %w", host, model.ErrNotFound)
	}

	best.Status = model.TaskStatusRunning
	best.UpdatedAt = time.Now()
	r.tasks[best.ID] = *best

	taskCopy := *best
	return &taskCopy, nil
}

// claimsBefore returns true if a dispatches before b: higher priority first,
// then older, then smaller id as the final tie break.
func claimsBefore(a, b model.Task) bool {
	if a.Priority.Rank() != b.Priority.Rank() {
		return a.Priority.Rank() > b.Priority.Rank()
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func (r *Repository) finishTask(id string, from, to model.TaskStatus, apply func(*model.Task)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}
	if task.Status != from || !model.ValidTaskTransition(from, to) {
		return fmt.Errorf("task %s cannot move from %s to %s: %w", id, task.Status, to, model.ErrNotValid)
	}

	task.Status = to
	task.UpdatedAt = time.Now()
	if apply != nil {
		apply(&task)
	}
	r.tasks[id] = task

	return nil
}

// MarkTaskCompleted finishes a running task successfully.
func (r *Repository) MarkTaskCompleted(ctx context.Context, id string, message, cleanupError string) error {
	return r.finishTask(id, model.TaskStatusRunning, model.TaskStatusCompleted, func(t *model.Task) {
		t.Message = message
		t.CleanupError = cleanupError
	})
}

// MarkTaskFailed finishes a running task with its failure reason.
func (r *Repository) MarkTaskFailed(ctx context.Context, id string, reason string) error {
	return r.finishTask(id, model.TaskStatusRunning, model.TaskStatusFailed, func(t *model.Task) {
		t.Error = reason
	})
}

// MarkTaskCancelled cancels a pending task.
func (r *Repository) MarkTaskCancelled(ctx context.Context, id string) error {
	return r.finishTask(id, model.TaskStatusPending, model.TaskStatusCancelled, nil)
}

// MarkTaskReady moves a prepared task to pending.
func (r *Repository) MarkTaskReady(ctx context.Context, id string) error {
	return r.finishTask(id, model.TaskStatusPrepared, model.TaskStatusPending, nil)
}

// CancelPendingTasksByZone cancels every pending task of a zone.
func (r *Repository) CancelPendingTasksByZone(ctx context.Context, host, zoneName string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cancelled := 0
	now := time.Now()
	for id, task := range r.tasks {
		if task.Host != host || task.ZoneName != zoneName || task.Status != model.TaskStatusPending {
			continue
		}
		task.Status = model.TaskStatusCancelled
		task.UpdatedAt = now
		r.tasks[id] = task
		cancelled++
	}

	return cancelled, nil
}

// ListTasks returns the tasks of a host matching the filter, newest first.
func (r *Repository) ListTasks(ctx context.Context, host string, filter storage.TaskListFilter) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]model.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		if task.Host != host {
			continue
		}
		if filter.Operation != "" && task.Operation != filter.Operation {
			continue
		}
		if filter.ZoneName != "" && task.ZoneName != filter.ZoneName {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, task.Status) {
			continue
		}
		tasks = append(tasks, task)
	}

	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})

	if filter.Limit > 0 && len(tasks) > filter.Limit {
		tasks = tasks[:filter.Limit]
	}

	return tasks, nil
}

func containsStatus(statuses []model.TaskStatus, s model.TaskStatus) bool {
	for _, status := range statuses {
		if status == s {
			return true
		}
	}
	return false
}

// CreateZone creates a new zone record in the repository.
func (r *Repository) CreateZone(ctx context.Context, z model.Zone) error {
	if err := z.Validate(); err != nil {
		return fmt.Errorf("invalid zone: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := hostKey(z.Host, z.Name)
	if _, ok := r.zones[key]; ok {
		return fmt.Errorf("zone %s on host %s: %w", z.Name, z.Host, model.ErrAlreadyExists)
	}

	r.zones[key] = z
	r.logger.Debugf("Created zone in repository: %s", z.Name)

	return nil
}

// GetZone retrieves a zone record by host and name.
func (r *Repository) GetZone(ctx context.Context, host, name string) (*model.Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	zone, ok := r.zones[hostKey(host, name)]
	if !ok {
		return nil, fmt.Errorf("zone %s: %w", name, model.ErrNotFound)
	}

	zoneCopy := zone
	return &zoneCopy, nil
}

// ListZones returns all zone records of a host sorted by name.
func (r *Repository) ListZones(ctx context.Context, host string) ([]model.Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	zones := make([]model.Zone, 0, len(r.zones))
	for _, zone := range r.zones {
		if zone.Host == host {
			zones = append(zones, zone)
		}
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].Name < zones[j].Name })

	return zones, nil
}

// UpdateZone updates an existing zone record.
func (r *Repository) UpdateZone(ctx context.Context, z model.Zone) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := hostKey(z.Host, z.Name)
	if _, ok := r.zones[key]; !ok {
		return fmt.Errorf("zone %s: %w", z.Name, model.ErrNotFound)
	}

	r.zones[key] = z
	r.logger.Debugf("Updated zone in repository: %s", z.Name)

	return nil
}

// DeleteZone deletes a zone record.
func (r *Repository) DeleteZone(ctx context.Context, host, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := hostKey(host, name)
	if _, ok := r.zones[key]; !ok {
		return fmt.Errorf("zone %s: %w", name, model.ErrNotFound)
	}

	delete(r.zones, key)
	r.logger.Debugf("Deleted zone from repository: %s", name)

	return nil
}

// SetZoneOrphaned flips the orphan flag of a zone record.
func (r *Repository) SetZoneOrphaned(ctx context.Context, host, name string, orphaned bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := hostKey(host, name)
	zone, ok := r.zones[key]
	if !ok {
		return fmt.Errorf("zone %s: %w", name, model.ErrNotFound)
	}

	zone.IsOrphaned = orphaned
	zone.UpdatedAt = time.Now()
	r.zones[key] = zone

	return nil
}

// UpsertInterface creates or refreshes a network interface record.
func (r *Repository) UpsertInterface(ctx context.Context, n model.NetworkInterface) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("invalid interface: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := ifaceKey(n.Host, n.Link, n.Class)
	if existing, ok := r.interfaces[key]; ok {
		n.CreatedAt = existing.CreatedAt
	}
	r.interfaces[key] = n

	return nil
}

// GetInterface retrieves a network interface by host, link and class.
func (r *Repository) GetInterface(ctx context.Context, host, link string, class model.LinkClass) (*model.NetworkInterface, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	iface, ok := r.interfaces[ifaceKey(host, link, class)]
	if !ok {
		return nil, fmt.Errorf("interface %s: %w", link, model.ErrNotFound)
	}

	ifaceCopy := iface
	return &ifaceCopy, nil
}

// ListInterfaces returns all interfaces of a host sorted by link name.
func (r *Repository) ListInterfaces(ctx context.Context, host string) ([]model.NetworkInterface, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ifaces := make([]model.NetworkInterface, 0, len(r.interfaces))
	for _, iface := range r.interfaces {
		if iface.Host == host {
			ifaces = append(ifaces, iface)
		}
	}
	sort.Slice(ifaces, func(i, j int) bool { return ifaces[i].Link < ifaces[j].Link })

	return ifaces, nil
}

// ListInterfacesByZone returns the interfaces assigned to a zone sorted by
// link name.
func (r *Repository) ListInterfacesByZone(ctx context.Context, host, zoneName string) ([]model.NetworkInterface, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ifaces := []model.NetworkInterface{}
	for _, iface := range r.interfaces {
		if iface.Host == host && iface.Zone == zoneName {
			ifaces = append(ifaces, iface)
		}
	}
	sort.Slice(ifaces, func(i, j int) bool { return ifaces[i].Link < ifaces[j].Link })

	return ifaces, nil
}

// DeleteInterface deletes a network interface record. Same-named records of
// another class are untouched.
func (r *Repository) DeleteInterface(ctx context.Context, host, link string, class model.LinkClass) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := ifaceKey(host, link, class)
	if _, ok := r.interfaces[key]; !ok {
		return fmt.Errorf("interface %s: %w", link, model.ErrNotFound)
	}

	delete(r.interfaces, key)

	return nil
}

// AssignInterfaceZone sets or clears the zone association of an interface.
func (r *Repository) AssignInterfaceZone(ctx context.Context, host, link string, class model.LinkClass, zoneName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := ifaceKey(host, link, class)
	iface, ok := r.interfaces[key]
	if !ok {
		return fmt.Errorf("interface %s: %w", link, model.ErrNotFound)
	}

	iface.Zone = zoneName
	iface.UpdatedAt = time.Now()
	r.interfaces[key] = iface

	return nil
}

// RecordUsage appends a traffic sample. A second sample of the same link and
// second is the same observation and refreshes it in place.
func (r *Repository) RecordUsage(ctx context.Context, u model.NetworkUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, prev := range r.usage {
		if prev.Host == u.Host && prev.Link == u.Link && prev.ScanTimestamp.Equal(u.ScanTimestamp) {
			r.usage[i] = u
			return nil
		}
	}
	r.usage = append(r.usage, u)

	return nil
}

// RecordIPAddress appends an address observation, refreshing it in place when
// the same address object is observed twice within a second.
func (r *Repository) RecordIPAddress(ctx context.Context, a model.IPAddress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, prev := range r.ips {
		if prev.Host == a.Host && prev.AddrObj == a.AddrObj && prev.ScanTimestamp.Equal(a.ScanTimestamp) {
			r.ips[i] = a
			return nil
		}
	}
	r.ips = append(r.ips, a)

	return nil
}

// LatestUsage returns the newest traffic sample of every link of the host.
func (r *Repository) LatestUsage(ctx context.Context, host string) ([]model.NetworkUsage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Samples are append ordered, the last one per link wins.
	latest := map[string]model.NetworkUsage{}
	for _, u := range r.usage {
		if u.Host == host {
			latest[u.Link] = u
		}
	}

	out := make([]model.NetworkUsage, 0, len(latest))
	for _, u := range latest {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Link < out[j].Link })

	return out, nil
}

// LatestIPAddresses returns the newest observation of every address object of
// the host.
func (r *Repository) LatestIPAddresses(ctx context.Context, host string) ([]model.IPAddress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	latest := map[string]model.IPAddress{}
	for _, a := range r.ips {
		if a.Host == host {
			latest[a.AddrObj] = a
		}
	}

	out := make([]model.IPAddress, 0, len(latest))
	for _, a := range latest {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddrObj < out[j].AddrObj })

	return out, nil
}

// DeleteUsageByLink deletes all traffic samples of a link.
func (r *Repository) DeleteUsageByLink(ctx context.Context, host, link string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.usage = filterUsage(r.usage, func(u model.NetworkUsage) bool {
		return u.Host == host && u.Link == link
	})

	return nil
}

// DeleteIPAddressesByLink deletes all address observations of a link.
func (r *Repository) DeleteIPAddressesByLink(ctx context.Context, host, link string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ips = filterIPs(r.ips, func(a model.IPAddress) bool {
		return a.Host == host && a.Link() == link
	})

	return nil
}

// DeleteUsageByLinkPrefix deletes the traffic samples of every link starting
// with the prefix.
func (r *Repository) DeleteUsageByLinkPrefix(ctx context.Context, host, prefix string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.usage = filterUsage(r.usage, func(u model.NetworkUsage) bool {
		return u.Host == host && strings.HasPrefix(u.Link, prefix)
	})

	return nil
}

// DeleteIPAddressesByLinkPrefix deletes the address observations of every
// link starting with the prefix.
func (r *Repository) DeleteIPAddressesByLinkPrefix(ctx context.Context, host, prefix string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ips = filterIPs(r.ips, func(a model.IPAddress) bool {
		return a.Host == host && strings.HasPrefix(a.Link(), prefix)
	})

	return nil
}

// PruneUsageBefore deletes traffic samples older than the timestamp.
func (r *Repository) PruneUsageBefore(ctx context.Context, host string, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := len(r.usage)
	r.usage = filterUsage(r.usage, func(u model.NetworkUsage) bool {
		return u.Host == host && u.ScanTimestamp.Before(before)
	})

	return prev - len(r.usage), nil
}

// PruneIPAddressesBefore deletes address observations older than the timestamp.
func (r *Repository) PruneIPAddressesBefore(ctx context.Context, host string, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := len(r.ips)
	r.ips = filterIPs(r.ips, func(a model.IPAddress) bool {
		return a.Host == host && a.ScanTimestamp.Before(before)
	})

	return prev - len(r.ips), nil
}

func filterUsage(in []model.NetworkUsage, drop func(model.NetworkUsage) bool) []model.NetworkUsage {
	out := in[:0]
	for _, u := range in {
		if !drop(u) {
			out = append(out, u)
		}
	}
	return out
}

func filterIPs(in []model.IPAddress, drop func(model.IPAddress) bool) []model.IPAddress {
	out := in[:0]
	for _, a := range in {
		if !drop(a) {
			out = append(out, a)
		}
	}
	return out
}
