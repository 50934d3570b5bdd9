package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/slok/zonectl/internal/model"
)

// UpsertInterface creates or refreshes a network interface record, keeping
// the original creation timestamp on refresh.
func (r *Repository) UpsertInterface(ctx context.Context, n model.NetworkInterface) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("invalid interface: %w", err)
	}

	query := `
		INSERT INTO network_interfaces (host, link, class, zone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (host, link, class) DO UPDATE SET
			zone = excluded.zone,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		n.Host, n.Link, n.Class, n.Zone, n.CreatedAt.Unix(), n.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("could not upsert interface: %w", err)
	}

	return nil
}

// GetInterface retrieves a network interface by host, link and class.
func (r *Repository) GetInterface(ctx context.Context, host, link string, class model.LinkClass) (*model.NetworkInterface, error) {
	query := ifaceSelect + ` WHERE host = ? AND link = ? AND class = ?`

	row := r.db.QueryRowContext(ctx, query, host, link, class)
	iface, err := r.scanInterface(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("interface %s: %w", link, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query interface: %w", err)
	}

	return &iface, nil
}

// ListInterfaces returns all interfaces of a host sorted by link name.
func (r *Repository) ListInterfaces(ctx context.Context, host string) ([]model.NetworkInterface, error) {
	query := ifaceSelect + ` WHERE host = ? ORDER BY link ASC`
	return r.queryInterfaces(ctx, query, host)
}

// ListInterfacesByZone returns the interfaces assigned to a zone sorted by
// link name.
func (r *Repository) ListInterfacesByZone(ctx context.Context, host, zoneName string) ([]model.NetworkInterface, error) {
	query := ifaceSelect + ` WHERE host = ? AND zone = ? ORDER BY link ASC`
	return r.queryInterfaces(ctx, query, host, zoneName)
}

// DeleteInterface deletes a network interface record. Same-named records of
// another class are untouched.
func (r *Repository) DeleteInterface(ctx context.Context, host, link string, class model.LinkClass) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM network_interfaces WHERE host = ? AND link = ? AND class = ?`, host, link, class)
	if err != nil {
		return fmt.Errorf("could not delete interface: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("interface %s: %w", link, model.ErrNotFound)
	}

	r.logger.Debugf("Deleted interface from repository: %s", link)
	return nil
}

// AssignInterfaceZone sets or clears the zone association of an interface.
func (r *Repository) AssignInterfaceZone(ctx context.Context, host, link string, class model.LinkClass, zoneName string) error {
	query := `UPDATE network_interfaces SET zone = ?, updated_at = ? WHERE host = ? AND link = ? AND class = ?`

	result, err := r.db.ExecContext(ctx, query, zoneName, time.Now().UTC().Unix(), host, link, class)
	if err != nil {
		return fmt.Errorf("could not update interface: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("interface %s: %w", link, model.ErrNotFound)
	}

	return nil
}

// RecordUsage appends a traffic sample. A second sample of the same link and
// second is the same observation and refreshes the row instead of erroring.
func (r *Repository) RecordUsage(ctx context.Context, u model.NetworkUsage) error {
	query := `
		INSERT INTO network_usage (host, link, scan_timestamp, rx_bytes, tx_bytes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (host, link, scan_timestamp) DO UPDATE SET
			rx_bytes = excluded.rx_bytes,
			tx_bytes = excluded.tx_bytes
	`

	_, err := r.db.ExecContext(ctx, query, u.Host, u.Link, u.ScanTimestamp.Unix(), u.RXBytes, u.TXBytes)
	if err != nil {
		return fmt.Errorf("could not insert usage sample: %w", err)
	}

	return nil
}

// RecordIPAddress appends an address observation, refreshing the row when the
// same address object is observed twice within a second.
func (r *Repository) RecordIPAddress(ctx context.Context, a model.IPAddress) error {
	query := `
		INSERT INTO ip_addresses (host, addr_obj, scan_timestamp, address, state, zone)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (host, addr_obj, scan_timestamp) DO UPDATE SET
			address = excluded.address,
			state = excluded.state,
			zone = excluded.zone
	`

	_, err := r.db.ExecContext(ctx, query, a.Host, a.AddrObj, a.ScanTimestamp.Unix(), a.Address, a.State, a.Zone)
	if err != nil {
		return fmt.Errorf("could not insert ip address: %w", err)
	}

	return nil
}

// LatestUsage returns the newest traffic sample of every link of the host.
func (r *Repository) LatestUsage(ctx context.Context, host string) ([]model.NetworkUsage, error) {
	// Row ids are monotonic, the max id per link is its newest sample.
	query := `
		SELECT host, link, scan_timestamp, rx_bytes, tx_bytes
		FROM network_usage
		WHERE host = ? AND id IN (
			SELECT MAX(id) FROM network_usage WHERE host = ? GROUP BY link
		)
		ORDER BY link ASC
	`

	rows, err := r.db.QueryContext(ctx, query, host, host)
	if err != nil {
		return nil, fmt.Errorf("could not query usage samples: %w", err)
	}
	defer rows.Close()

	var samples []model.NetworkUsage
	for rows.Next() {
		var u model.NetworkUsage
		var scanTS int64
		if err := rows.Scan(&u.Host, &u.Link, &scanTS, &u.RXBytes, &u.TXBytes); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		u.ScanTimestamp = timeFromUnix(scanTS)
		samples = append(samples, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return samples, nil
}

// LatestIPAddresses returns the newest observation of every address object of
// the host.
func (r *Repository) LatestIPAddresses(ctx context.Context, host string) ([]model.IPAddress, error) {
	query := `
		SELECT host, addr_obj, scan_timestamp, address, state, zone
		FROM ip_addresses
		WHERE host = ? AND id IN (
			SELECT MAX(id) FROM ip_addresses WHERE host = ? GROUP BY addr_obj
		)
		ORDER BY addr_obj ASC
	`

	rows, err := r.db.QueryContext(ctx, query, host, host)
	if err != nil {
		return nil, fmt.Errorf("could not query ip addresses: %w", err)
	}
	defer rows.Close()

	var addrs []model.IPAddress
	for rows.Next() {
		var a model.IPAddress
		var scanTS int64
		if err := rows.Scan(&a.Host, &a.AddrObj, &scanTS, &a.Address, &a.State, &a.Zone); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		a.ScanTimestamp = timeFromUnix(scanTS)
		addrs = append(addrs, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return addrs, nil
}

// DeleteUsageByLink deletes all traffic samples of a link.
func (r *Repository) DeleteUsageByLink(ctx context.Context, host, link string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM network_usage WHERE host = ? AND link = ?`, host, link)
	if err != nil {
		return fmt.Errorf("could not delete usage samples: %w", err)
	}

	return nil
}

// DeleteIPAddressesByLink deletes all address observations of a link. Address
// objects are matched on their datalink part (`link` or `link/...`).
func (r *Repository) DeleteIPAddressesByLink(ctx context.Context, host, link string) error {
	// substr instead of LIKE: links commonly contain `_`, which LIKE treats
	// as a wildcard.
	query := `
		DELETE FROM ip_addresses
		WHERE host = ? AND (addr_obj = ? OR substr(addr_obj, 1, ?) = ?)
	`

	_, err := r.db.ExecContext(ctx, query, host, link, len(link)+1, link+"/")
	if err != nil {
		return fmt.Errorf("could not delete ip addresses: %w", err)
	}

	return nil
}

// DeleteUsageByLinkPrefix deletes the traffic samples of every link starting
// with the prefix.
func (r *Repository) DeleteUsageByLinkPrefix(ctx context.Context, host, prefix string) error {
	query := `DELETE FROM network_usage WHERE host = ? AND substr(link, 1, ?) = ?`

	_, err := r.db.ExecContext(ctx, query, host, len(prefix), prefix)
	if err != nil {
		return fmt.Errorf("could not delete usage samples: %w", err)
	}

	return nil
}

// DeleteIPAddressesByLinkPrefix deletes the address observations of every
// link starting with the prefix.
func (r *Repository) DeleteIPAddressesByLinkPrefix(ctx context.Context, host, prefix string) error {
	query := `DELETE FROM ip_addresses WHERE host = ? AND substr(addr_obj, 1, ?) = ?`

	_, err := r.db.ExecContext(ctx, query, host, len(prefix), prefix)
	if err != nil {
		return fmt.Errorf("could not delete ip addresses: %w", err)
	}

	return nil
}

// PruneUsageBefore deletes traffic samples older than the timestamp.
func (r *Repository) PruneUsageBefore(ctx context.Context, host string, before time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM network_usage WHERE host = ? AND scan_timestamp < ?`, host, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("could not prune usage samples: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not get rows affected: %w", err)
	}

	return int(rows), nil
}

// PruneIPAddressesBefore deletes address observations older than the timestamp.
func (r *Repository) PruneIPAddressesBefore(ctx context.Context, host string, before time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM ip_addresses WHERE host = ? AND scan_timestamp < ?`, host, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("could not prune ip addresses: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not get rows affected: %w", err)
	}

	return int(rows), nil
}

const ifaceSelect = `
	SELECT host, link, class, zone, created_at, updated_at
	FROM network_interfaces`

func (r *Repository) queryInterfaces(ctx context.Context, query string, args ...any) ([]model.NetworkInterface, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query interfaces: %w", err)
	}
	defer rows.Close()

	var ifaces []model.NetworkInterface
	for rows.Next() {
		iface, err := r.scanInterface(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		ifaces = append(ifaces, iface)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ifaces, nil
}

func (r *Repository) scanInterface(s scanner) (model.NetworkInterface, error) {
	var iface model.NetworkInterface
	var createdAt, updatedAt int64

	err := s.Scan(&iface.Host, &iface.Link, &iface.Class, &iface.Zone, &createdAt, &updatedAt)
	if err != nil {
		return model.NetworkInterface{}, err
	}

	iface.CreatedAt = timeFromUnix(createdAt)
	iface.UpdatedAt = timeFromUnix(updatedAt)

	return iface, nil
}
