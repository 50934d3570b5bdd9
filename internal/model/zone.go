package model

import (
	"fmt"
	"regexp"
	"time"
)

var zoneNameRegexp = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ZoneStatus mirrors the live zone states reported by the platform.
type ZoneStatus string

const (
	ZoneStatusConfigured   ZoneStatus = "configured"
	ZoneStatusIncomplete   ZoneStatus = "incomplete"
	ZoneStatusInstalled    ZoneStatus = "installed"
	ZoneStatusReady        ZoneStatus = "ready"
	ZoneStatusRunning      ZoneStatus = "running"
	ZoneStatusShuttingDown ZoneStatus = "shutting_down"
	ZoneStatusDown         ZoneStatus = "down"
)

// Zone represents a zone record, created by discovery or explicit
// provisioning and kept in sync with the live definition.
type Zone struct {
	Name   string
	ZoneID int
	Host   string
	Status ZoneStatus
	Brand  string
	// Configuration mirrors the live zone definition plus operator
	// bookkeeping that the live system never reports.
	Configuration ZoneConfiguration
	// AutoDiscovered marks records created by discovery instead of
	// explicit provisioning.
	AutoDiscovered bool
	// IsOrphaned marks records whose live zone no longer exists. Orphans are
	// never deleted automatically, they keep the audit trail and any pending
	// tasks reachable.
	IsOrphaned bool
	LastSeen   time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate validates the zone model.
func (z Zone) Validate() error {
	if err := ValidateZoneName(z.Name); err != nil {
		return err
	}
	if z.Host == "" {
		return fmt.Errorf("zone host is required: %w", ErrNotValid)
	}
	return nil
}

// ValidateZoneName validates a zone name.
func ValidateZoneName(name string) error {
	if name == "" {
		return fmt.Errorf("zone name is required: %w", ErrNotValid)
	}
	if !zoneNameRegexp.MatchString(name) {
		return fmt.Errorf("zone name %q is invalid (allowed: [a-zA-Z0-9._-], no leading separator): %w", name, ErrNotValid)
	}
	return nil
}

// ZoneAttribute is a generic attr resource of a zone definition. Legacy
// numbered disk attributes (disk0, disk1, ...) carry dataset paths here.
type ZoneAttribute struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Value string `json:"value"`
}

// ZoneDevice is a device resource of a zone definition.
type ZoneDevice struct {
	Match string `json:"match"`
}

// ZoneFilesystem is an fs resource of a zone definition.
type ZoneFilesystem struct {
	Special string `json:"special"`
	Dir     string `json:"dir,omitempty"`
	Type    string `json:"type,omitempty"`
}

// ZoneNetwork is a net resource of a zone definition.
type ZoneNetwork struct {
	Physical       string `json:"physical"`
	AllowedAddress string `json:"allowed_address,omitempty"`
}

// ZoneConfiguration mirrors a live zone definition. It is persisted as a JSON
// document and refreshed from the live export on every discovery pass, except
// for Provisioning which only operators write.
type ZoneConfiguration struct {
	Zonepath    string           `json:"zonepath,omitempty"`
	Brand       string           `json:"brand,omitempty"`
	IPType      string           `json:"ip_type,omitempty"`
	Autoboot    bool             `json:"autoboot,omitempty"`
	BootDisk    string           `json:"boot_disk,omitempty"`
	Disks       []string         `json:"disks,omitempty"`
	Attributes  []ZoneAttribute  `json:"attributes,omitempty"`
	Devices     []ZoneDevice     `json:"devices,omitempty"`
	Filesystems []ZoneFilesystem `json:"filesystems,omitempty"`
	Datasets    []string         `json:"datasets,omitempty"`
	Networks    []ZoneNetwork    `json:"networks,omitempty"`
	// Provisioning is operator authored bookkeeping (image source, template,
	// creator...). Live exports never produce it, discovery merges it forward.
	Provisioning map[string]string `json:"provisioning,omitempty"`
}

// Empty returns true when the configuration carries no live definition at all.
func (c ZoneConfiguration) Empty() bool {
	return c.Zonepath == "" && c.BootDisk == "" && len(c.Disks) == 0 &&
		len(c.Attributes) == 0 && len(c.Devices) == 0 &&
		len(c.Filesystems) == 0 && len(c.Datasets) == 0 && len(c.Networks) == 0
}

// Attribute returns the named attr resource, if declared.
func (c ZoneConfiguration) Attribute(name string) (ZoneAttribute, bool) {
	for _, a := range c.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return ZoneAttribute{}, false
}
