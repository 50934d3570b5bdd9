package model

import (
	"fmt"
	"strings"
	"time"
)

// LinkClass is the datalink class of a network interface.
type LinkClass string

const (
	LinkClassVNIC      LinkClass = "vnic"
	LinkClassVLAN      LinkClass = "vlan"
	LinkClassAggr      LinkClass = "aggr"
	LinkClassEtherstub LinkClass = "etherstub"
	LinkClassPhys      LinkClass = "phys"
)

var knownLinkClasses = map[LinkClass]struct{}{
	LinkClassVNIC:      {},
	LinkClassVLAN:      {},
	LinkClassAggr:      {},
	LinkClassEtherstub: {},
	LinkClassPhys:      {},
}

// Valid returns true if the class is a known one.
func (c LinkClass) Valid() bool {
	_, ok := knownLinkClasses[c]
	return ok
}

// ZoneDeletable returns true for classes that zone teardown may delete from
// the live system. Physical links and shared fabric (etherstubs, aggrs) are
// only ever disassociated.
func (c LinkClass) ZoneDeletable() bool { return c == LinkClassVNIC }

// NetworkInterface is a datalink known to the host. Zone is a soft reference,
// the store does not enforce it.
type NetworkInterface struct {
	Host      string
	Link      string
	Class     LinkClass
	Zone      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate validates the network interface model.
func (n NetworkInterface) Validate() error {
	if n.Host == "" {
		return fmt.Errorf("interface host is required: %w", ErrNotValid)
	}
	if n.Link == "" {
		return fmt.Errorf("interface link is required: %w", ErrNotValid)
	}
	if !n.Class.Valid() {
		return fmt.Errorf("unknown link class %q: %w", n.Class, ErrNotValid)
	}
	return nil
}

// NetworkUsage is one append-only traffic sample for a link. Rows are never
// mutated after insert, only bulk-deleted during cleanup.
type NetworkUsage struct {
	Host          string
	Link          string
	ScanTimestamp time.Time
	RXBytes       int64
	TXBytes       int64
}

// IPAddress is one append-only address observation for an address object.
// Rows are never mutated after insert, only bulk-deleted during cleanup.
type IPAddress struct {
	Host          string
	AddrObj       string
	ScanTimestamp time.Time
	Address       string
	State         string
	Zone          string
}

// Link returns the datalink part of the address object (`vnic0/v4` -> `vnic0`).
func (a IPAddress) Link() string {
	link, _, _ := strings.Cut(a.AddrObj, "/")
	return link
}
