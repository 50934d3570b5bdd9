package model

import (
	"encoding/json"
	"fmt"
)

// TaskPayload is the decoded, operation-specific metadata document of a task.
// The metadata shape is a contract between the enqueuing caller and the
// handler of that operation, decoded exactly once at the dispatch boundary.
type TaskPayload interface {
	Validate() error
}

// DecodeTaskPayload decodes and validates the raw metadata of a task into the
// typed payload of its operation. Operations without a payload (and staged
// operations, whose metadata stays opaque to the orchestration core) return a
// nil payload.
func DecodeTaskPayload(op Operation, raw json.RawMessage) (TaskPayload, error) {
	switch op {
	case OperationZoneCreate:
		return decodePayload[ZoneCreatePayload](op, raw, false)
	case OperationZoneDelete:
		return decodePayload[ZoneDeletePayload](op, raw, true)
	case OperationZoneStart, OperationZoneStop, OperationZoneRestart, OperationZoneDiscover:
		return nil, nil
	case OperationVNICCreate:
		return decodePayload[VNICCreatePayload](op, raw, false)
	case OperationVNICDelete:
		return decodePayload[VNICDeletePayload](op, raw, false)
	case OperationVNICSetProps:
		return decodePayload[VNICSetPropsPayload](op, raw, false)
	case OperationVLANCreate:
		return decodePayload[VLANCreatePayload](op, raw, false)
	case OperationVLANDelete:
		return decodePayload[VLANDeletePayload](op, raw, false)
	case OperationAggrCreate:
		return decodePayload[AggrCreatePayload](op, raw, false)
	case OperationAggrDelete:
		return decodePayload[AggrDeletePayload](op, raw, false)
	case OperationAggrModifyLinks:
		return decodePayload[AggrModifyLinksPayload](op, raw, false)
	case OperationEtherstubCreate:
		return decodePayload[EtherstubCreatePayload](op, raw, false)
	case OperationEtherstubDelete:
		return decodePayload[EtherstubDeletePayload](op, raw, false)
	case OperationBootEnvCreate:
		return decodePayload[BootEnvCreatePayload](op, raw, false)
	case OperationBootEnvDelete:
		return decodePayload[BootEnvDeletePayload](op, raw, false)
	case OperationBootEnvActivate:
		return decodePayload[BootEnvActivatePayload](op, raw, false)
	case OperationBootEnvMount:
		return decodePayload[BootEnvMountPayload](op, raw, false)
	case OperationBootEnvUnmount:
		return decodePayload[BootEnvUnmountPayload](op, raw, false)
	case OperationArtifactProcess:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown operation %q: %w", op, ErrNotValid)
	}
}

func decodePayload[T TaskPayload](op Operation, raw json.RawMessage, optional bool) (TaskPayload, error) {
	var p T
	switch {
	case len(raw) == 0 || string(raw) == "null":
		if !optional {
			return nil, fmt.Errorf("operation %s requires metadata: %w", op, ErrNotValid)
		}
	default:
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("could not decode %s metadata (%s): %w", op, err, ErrNotValid)
		}
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s metadata: %w", op, err)
	}

	return p, nil
}

// ZoneCreatePayload provisions a new zone from a full configuration.
type ZoneCreatePayload struct {
	Configuration ZoneConfiguration `json:"configuration"`
	Install       bool              `json:"install,omitempty"`
	Boot          bool              `json:"boot,omitempty"`
}

// Validate validates the payload.
func (p ZoneCreatePayload) Validate() error {
	if p.Configuration.Zonepath == "" {
		return fmt.Errorf("configuration zonepath is required: %w", ErrNotValid)
	}
	if p.Configuration.Brand == "" {
		return fmt.Errorf("configuration brand is required: %w", ErrNotValid)
	}
	if p.Boot && !p.Install {
		return fmt.Errorf("boot requires install: %w", ErrNotValid)
	}
	return nil
}

// ZoneDeletePayload selects what zone teardown removes besides the zone
// definition itself.
type ZoneDeletePayload struct {
	RemoveDatasets bool `json:"remove_datasets,omitempty"`
	RemoveNetwork  bool `json:"remove_network,omitempty"`
}

// Validate validates the payload.
func (p ZoneDeletePayload) Validate() error { return nil }

// MACMode selects how a VNIC MAC address is assigned.
type MACMode string

const (
	MACModeAuto    MACMode = "auto"
	MACModeFactory MACMode = "factory"
	MACModeRandom  MACMode = "random"
	MACModeFixed   MACMode = "fixed"
)

// VNICMAC is the MAC assignment policy of a VNIC.
type VNICMAC struct {
	Mode MACMode `json:"mode,omitempty"`
	// Slot is the factory MAC slot, only for factory mode.
	Slot int `json:"slot,omitempty"`
	// Prefix is an optional OUI prefix for random mode.
	Prefix string `json:"prefix,omitempty"`
	// Address is the explicit address for fixed mode.
	Address string `json:"address,omitempty"`
}

// Validate validates the MAC policy.
func (m VNICMAC) Validate() error {
	switch m.Mode {
	case "", MACModeAuto, MACModeRandom:
	case MACModeFactory:
		if m.Slot < 0 {
			return fmt.Errorf("factory mac slot cannot be negative: %w", ErrNotValid)
		}
	case MACModeFixed:
		if m.Address == "" {
			return fmt.Errorf("fixed mac mode requires an address: %w", ErrNotValid)
		}
	default:
		return fmt.Errorf("unknown mac mode %q: %w", m.Mode, ErrNotValid)
	}
	return nil
}

// VNICCreatePayload creates a virtual NIC over a lower datalink.
type VNICCreatePayload struct {
	Link      string            `json:"link"`
	Lower     string            `json:"lower"`
	MAC       VNICMAC           `json:"mac,omitempty"`
	VlanID    int               `json:"vlan_id,omitempty"`
	Props     map[string]string `json:"props,omitempty"`
	Temporary bool              `json:"temporary,omitempty"`
}

// Validate validates the payload.
func (p VNICCreatePayload) Validate() error {
	if p.Link == "" {
		return fmt.Errorf("link is required: %w", ErrNotValid)
	}
	if p.Lower == "" {
		return fmt.Errorf("lower link is required: %w", ErrNotValid)
	}
	if err := p.MAC.Validate(); err != nil {
		return err
	}
	if p.VlanID < 0 || p.VlanID > 4094 {
		return fmt.Errorf("vlan id %d out of range: %w", p.VlanID, ErrNotValid)
	}
	return nil
}

// VNICDeletePayload deletes a virtual NIC.
type VNICDeletePayload struct {
	Link      string `json:"link"`
	Temporary bool   `json:"temporary,omitempty"`
}

// Validate validates the payload.
func (p VNICDeletePayload) Validate() error {
	if p.Link == "" {
		return fmt.Errorf("link is required: %w", ErrNotValid)
	}
	return nil
}

// VNICSetPropsPayload applies a batch of link properties atomically.
type VNICSetPropsPayload struct {
	Link  string            `json:"link"`
	Props map[string]string `json:"props"`
}

// Validate validates the payload.
func (p VNICSetPropsPayload) Validate() error {
	if p.Link == "" {
		return fmt.Errorf("link is required: %w", ErrNotValid)
	}
	if len(p.Props) == 0 {
		return fmt.Errorf("at least one property is required: %w", ErrNotValid)
	}
	return nil
}

// VLANCreatePayload creates a tagged VLAN link over a lower datalink.
type VLANCreatePayload struct {
	Link      string `json:"link"`
	Lower     string `json:"lower"`
	VlanID    int    `json:"vlan_id"`
	Temporary bool   `json:"temporary,omitempty"`
}

// Validate validates the payload.
func (p VLANCreatePayload) Validate() error {
	if p.Link == "" {
		return fmt.Errorf("link is required: %w", ErrNotValid)
	}
	if p.Lower == "" {
		return fmt.Errorf("lower link is required: %w", ErrNotValid)
	}
	if p.VlanID < 1 || p.VlanID > 4094 {
		return fmt.Errorf("vlan id %d out of range: %w", p.VlanID, ErrNotValid)
	}
	return nil
}

// VLANDeletePayload deletes a VLAN link.
type VLANDeletePayload struct {
	Link      string `json:"link"`
	Temporary bool   `json:"temporary,omitempty"`
}

// Validate validates the payload.
func (p VLANDeletePayload) Validate() error {
	if p.Link == "" {
		return fmt.Errorf("link is required: %w", ErrNotValid)
	}
	return nil
}

// AggrCreatePayload creates a link aggregation over member links.
type AggrCreatePayload struct {
	Link      string   `json:"link"`
	Links     []string `json:"links"`
	Policy    string   `json:"policy,omitempty"`
	LACPMode  string   `json:"lacp_mode,omitempty"`
	LACPTimer string   `json:"lacp_timer,omitempty"`
	Temporary bool     `json:"temporary,omitempty"`
}

// Validate validates the payload.
func (p AggrCreatePayload) Validate() error {
	if p.Link == "" {
		return fmt.Errorf("link is required: %w", ErrNotValid)
	}
	if len(p.Links) == 0 {
		return fmt.Errorf("at least one member link is required: %w", ErrNotValid)
	}
	return nil
}

// AggrDeletePayload deletes a link aggregation.
type AggrDeletePayload struct {
	Link      string `json:"link"`
	Temporary bool   `json:"temporary,omitempty"`
}

// Validate validates the payload.
func (p AggrDeletePayload) Validate() error {
	if p.Link == "" {
		return fmt.Errorf("link is required: %w", ErrNotValid)
	}
	return nil
}

// AggrModifyLinksPayload adds and/or removes member links of an aggregation.
type AggrModifyLinksPayload struct {
	Link      string   `json:"link"`
	Add       []string `json:"add,omitempty"`
	Remove    []string `json:"remove,omitempty"`
	Temporary bool     `json:"temporary,omitempty"`
}

// Validate validates the payload.
func (p AggrModifyLinksPayload) Validate() error {
	if p.Link == "" {
		return fmt.Errorf("link is required: %w", ErrNotValid)
	}
	if len(p.Add) == 0 && len(p.Remove) == 0 {
		return fmt.Errorf("at least one link to add or remove is required: %w", ErrNotValid)
	}
	return nil
}

// EtherstubCreatePayload creates an etherstub.
type EtherstubCreatePayload struct {
	Link      string `json:"link"`
	Temporary bool   `json:"temporary,omitempty"`
}

// Validate validates the payload.
func (p EtherstubCreatePayload) Validate() error {
	if p.Link == "" {
		return fmt.Errorf("link is required: %w", ErrNotValid)
	}
	return nil
}

// EtherstubDeletePayload deletes an etherstub. Force removes dependent VNICs
// first, the platform refuses to delete a stub that still has any.
type EtherstubDeletePayload struct {
	Link      string `json:"link"`
	Force     bool   `json:"force,omitempty"`
	Temporary bool   `json:"temporary,omitempty"`
}

// Validate validates the payload.
func (p EtherstubDeletePayload) Validate() error {
	if p.Link == "" {
		return fmt.Errorf("link is required: %w", ErrNotValid)
	}
	return nil
}

// BootEnvCreatePayload creates a boot environment, optionally cloned from a
// source environment or snapshot (`be` or `be@snapshot`).
type BootEnvCreatePayload struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Source      string            `json:"source,omitempty"`
	Activate    bool              `json:"activate,omitempty"`
	Properties  map[string]string `json:"properties,omitempty"`
}

// Validate validates the payload.
func (p BootEnvCreatePayload) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("boot environment name is required: %w", ErrNotValid)
	}
	return nil
}

// BootEnvDeletePayload destroys a boot environment.
type BootEnvDeletePayload struct {
	Name string `json:"name"`
	// DestroySnapshots also removes the snapshots associated with the
	// environment.
	DestroySnapshots bool `json:"destroy_snapshots,omitempty"`
}

// Validate validates the payload.
func (p BootEnvDeletePayload) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("boot environment name is required: %w", ErrNotValid)
	}
	return nil
}

// BootEnvActivatePayload activates a boot environment for the next boot.
type BootEnvActivatePayload struct {
	Name string `json:"name"`
	// Temporary activates only for the next boot.
	Temporary bool `json:"temporary,omitempty"`
}

// Validate validates the payload.
func (p BootEnvActivatePayload) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("boot environment name is required: %w", ErrNotValid)
	}
	return nil
}

// BootEnvMountPayload mounts a boot environment.
type BootEnvMountPayload struct {
	Name       string `json:"name"`
	Mountpoint string `json:"mountpoint"`
	// SharedMode optionally mounts shared filesystems as ro or rw.
	SharedMode string `json:"shared_mode,omitempty"`
}

// Validate validates the payload.
func (p BootEnvMountPayload) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("boot environment name is required: %w", ErrNotValid)
	}
	if p.Mountpoint == "" {
		return fmt.Errorf("mountpoint is required: %w", ErrNotValid)
	}
	if p.SharedMode != "" && p.SharedMode != "ro" && p.SharedMode != "rw" {
		return fmt.Errorf("shared mode %q is invalid (allowed: ro, rw): %w", p.SharedMode, ErrNotValid)
	}
	return nil
}

// BootEnvUnmountPayload unmounts a boot environment.
type BootEnvUnmountPayload struct {
	Name  string `json:"name"`
	Force bool   `json:"force,omitempty"`
}

// Validate validates the payload.
func (p BootEnvUnmountPayload) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("boot environment name is required: %w", ErrNotValid)
	}
	return nil
}
