package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/alquipy/notifier/internal/domain"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Compile-time check: FilterRepository implements domain.FilterRepository.
var _ domain.FilterRepository = (*FilterRepository)(nil)

// FilterRepository implements domain.FilterRepository using SQLite. It is
// the local/dev alternative to the remote data service.
type FilterRepository struct {
	db *sql.DB
}

// New opens a SQLite database, runs migrations, and returns a ready repository.
func New(dataSourceName string) (*FilterRepository, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single connection avoids SQLITE_BUSY and keeps :memory: databases
	// from splitting across pool connections.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return NewFromDB(db)
}

// NewFromDB wraps an existing database connection, runs migrations, and
// returns a ready repository. Use this when the *sql.DB has been
// pre-configured (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB) (*FilterRepository, error) {
	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return &FilterRepository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *FilterRepository) Close() error {
	return r.db.Close()
}

// DB returns the underlying database connection for use by other adapters
// (e.g., river).
func (r *FilterRepository) DB() *sql.DB {
	return r.db
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

const timeFormat = "2006-01-02T15:04:05Z"

func (r *FilterRepository) WaitlistByListing(ctx context.Context, listingID string) ([]domain.WaitlistFilter, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT listing_id, email FROM waitlist_entries
		 WHERE listing_id = ? AND email <> ''`, listingID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying waitlist: %w", err)
	}
	defer rows.Close()

	var entries []domain.WaitlistFilter
	for rows.Next() {
		var e domain.WaitlistFilter
		if err := rows.Scan(&e.ListingID, &e.Email); err != nil {
			return nil, fmt.Errorf("scanning waitlist entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (r *FilterRepository) ActiveAlerts(ctx context.Context) ([]domain.AlertFilter, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, city, property_type, max_price, min_bedrooms,
		        no_guarantor, no_deposit, pets_required, active
		 FROM alerts WHERE active = 1 AND email <> ''`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.AlertFilter
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

func (r *FilterRepository) CreateWaitlistEntry(ctx context.Context, entry domain.WaitlistFilter) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO waitlist_entries (listing_id, email, created_at)
		 VALUES (?, ?, ?)`,
		entry.ListingID, entry.Email, time.Now().UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting waitlist entry: %w", err)
	}
	return nil
}

func (r *FilterRepository) CreateAlert(ctx context.Context, alert domain.AlertFilter) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO alerts (id, email, city, property_type, max_price, min_bedrooms,
		                     no_guarantor, no_deposit, pets_required, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.ID, alert.Email,
		nullableString(alert.City), nullableString(string(alert.Type)),
		nullableInt64(alert.MaxPrice), nullableInt(alert.MinBedrooms),
		boolToInt(alert.NoGuarantor), boolToInt(alert.NoDeposit), boolToInt(alert.PetsRequired),
		boolToInt(alert.Active), time.Now().UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting alert: %w", err)
	}
	return nil
}

// scanAlert maps one alerts row onto the domain filter, translating SQL
// NULLs into unset constraints.
func scanAlert(rows *sql.Rows) (domain.AlertFilter, error) {
	var a domain.AlertFilter
	var city, propertyType sql.NullString
	var maxPrice sql.NullInt64
	var minBedrooms sql.NullInt64
	var noGuarantor, noDeposit, petsRequired, active int

	err := rows.Scan(&a.ID, &a.Email, &city, &propertyType, &maxPrice, &minBedrooms,
		&noGuarantor, &noDeposit, &petsRequired, &active)
	if err != nil {
		return domain.AlertFilter{}, fmt.Errorf("scanning alert row: %w", err)
	}

	if city.Valid {
		a.City = city.String
	}
	if propertyType.Valid {
		a.Type = domain.PropertyType(propertyType.String)
	}
	if maxPrice.Valid {
		v := maxPrice.Int64
		a.MaxPrice = &v
	}
	if minBedrooms.Valid {
		v := int(minBedrooms.Int64)
		a.MinBedrooms = &v
	}
	a.NoGuarantor = noGuarantor != 0
	a.NoDeposit = noDeposit != 0
	a.PetsRequired = petsRequired != 0
	a.Active = active != 0

	return a, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
