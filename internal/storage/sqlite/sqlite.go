package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slok/zonectl/internal/log"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.Repository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository creates a new SQLite repository and runs pending migrations.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	// busy_timeout makes concurrent claim loops wait for the write lock
	// instead of erroring with SQLITE_BUSY.
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// CreateZone creates a new zone record in the repository.
func (r *Repository) CreateZone(ctx context.Context, z model.Zone) error {
	if err := z.Validate(); err != nil {
		return fmt.Errorf("invalid zone: %w", err)
	}

	configJSON, err := json.Marshal(z.Configuration)
	if err != nil {
		return fmt.Errorf("could not serialize zone configuration: %w", err)
	}

	query := `
		INSERT INTO zones (
			host, name, zone_id, status, brand, configuration,
			auto_discovered, is_orphaned, last_seen, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		z.Host,
		z.Name,
		z.ZoneID,
		z.Status,
		z.Brand,
		string(configJSON),
		z.AutoDiscovered,
		z.IsOrphaned,
		unixOrNil(z.LastSeen),
		z.CreatedAt.Unix(),
		z.UpdatedAt.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: zones.") {
			return fmt.Errorf("zone already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert zone: %w", err)
	}

	r.logger.Debugf("Created zone in repository: %s", z.Name)
	return nil
}

// GetZone retrieves a zone record by host and name.
func (r *Repository) GetZone(ctx context.Context, host, name string) (*model.Zone, error) {
	query := `
		SELECT
			host, name, zone_id, status, brand, configuration,
			auto_discovered, is_orphaned, last_seen, created_at, updated_at
		FROM zones
		WHERE host = ? AND name = ?
	`

	row := r.db.QueryRowContext(ctx, query, host, name)
	zone, err := r.scanZone(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("zone %s: %w", name, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query zone: %w", err)
	}

	return &zone, nil
}

// ListZones returns all zone records of a host sorted by name.
func (r *Repository) ListZones(ctx context.Context, host string) ([]model.Zone, error) {
	query := `
		SELECT
			host, name, zone_id, status, brand, configuration,
			auto_discovered, is_orphaned, last_seen, created_at, updated_at
		FROM zones
		WHERE host = ?
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, host)
	if err != nil {
		return nil, fmt.Errorf("could not query zones: %w", err)
	}
	defer rows.Close()

	var zones []model.Zone
	for rows.Next() {
		zone, err := r.scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		zones = append(zones, zone)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return zones, nil
}

// UpdateZone updates an existing zone record.
func (r *Repository) UpdateZone(ctx context.Context, z model.Zone) error {
	configJSON, err := json.Marshal(z.Configuration)
	if err != nil {
		return fmt.Errorf("could not serialize zone configuration: %w", err)
	}

	query := `
		UPDATE zones
		SET
			zone_id = ?,
			status = ?,
			brand = ?,
			configuration = ?,
			auto_discovered = ?,
			is_orphaned = ?,
			last_seen = ?,
			updated_at = ?
		WHERE host = ? AND name = ?
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		z.ZoneID,
		z.Status,
		z.Brand,
		string(configJSON),
		z.AutoDiscovered,
		z.IsOrphaned,
		unixOrNil(z.LastSeen),
		z.UpdatedAt.Unix(),
		z.Host,
		z.Name,
	)
	if err != nil {
		return fmt.Errorf("could not update zone: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("zone %s: %w", z.Name, model.ErrNotFound)
	}

	r.logger.Debugf("Updated zone in repository: %s", z.Name)
	return nil
}

// DeleteZone deletes a zone record.
func (r *Repository) DeleteZone(ctx context.Context, host, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM zones WHERE host = ? AND name = ?`, host, name)
	if err != nil {
		return fmt.Errorf("could not delete zone: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("zone %s: %w", name, model.ErrNotFound)
	}

	r.logger.Debugf("Deleted zone from repository: %s", name)
	return nil
}

// SetZoneOrphaned flips the orphan flag of a zone record.
func (r *Repository) SetZoneOrphaned(ctx context.Context, host, name string, orphaned bool) error {
	query := `UPDATE zones SET is_orphaned = ?, updated_at = ? WHERE host = ? AND name = ?`

	result, err := r.db.ExecContext(ctx, query, orphaned, time.Now().UTC().Unix(), host, name)
	if err != nil {
		return fmt.Errorf("could not update zone: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("zone %s: %w", name, model.ErrNotFound)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanZone(s scanner) (model.Zone, error) {
	var zone model.Zone
	var configJSON string
	var lastSeen sql.NullInt64
	var createdAt, updatedAt int64

	err := s.Scan(
		&zone.Host,
		&zone.Name,
		&zone.ZoneID,
		&zone.Status,
		&zone.Brand,
		&configJSON,
		&zone.AutoDiscovered,
		&zone.IsOrphaned,
		&lastSeen,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return model.Zone{}, err
	}

	if err := json.Unmarshal([]byte(configJSON), &zone.Configuration); err != nil {
		return model.Zone{}, fmt.Errorf("could not deserialize zone configuration: %w", err)
	}

	if lastSeen.Valid {
		zone.LastSeen = timeFromUnix(lastSeen.Int64)
	}
	zone.CreatedAt = timeFromUnix(createdAt)
	zone.UpdatedAt = timeFromUnix(updatedAt)

	return zone, nil
}

func unixOrNil(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	u := t.Unix()
	return &u
}

func timeFromUnix(unix int64) time.Time { return time.Unix(unix, 0).UTC() }
