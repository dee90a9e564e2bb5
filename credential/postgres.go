package credential

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"

	"github.com/jonwraymond/credwatch/health"
)

// DefaultTable is the table PostgresStore reads when none is configured.
const DefaultTable = "integration_credentials"

var tablePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PostgresStore reads credential metadata from a Postgres table with columns
// service, created_at, updated_at and last_checked_status.
type PostgresStore struct {
	db    *sql.DB
	table string
}

// NewPostgresStore wraps an open database handle. table may be schema
// qualified; empty means DefaultTable.
func NewPostgresStore(db *sql.DB, table string) (*PostgresStore, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tablePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	return &PostgresStore{db: db, table: table}, nil
}

// OpenPostgres opens a connection pool for dsn and wraps it.
func OpenPostgres(dsn, table string) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrMissingDSN
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("credential: open postgres: %w", err)
	}
	store, err := NewPostgresStore(db, table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Records reads every requested record in a single query.
func (s *PostgresStore) Records(ctx context.Context, services []string) ([]Record, error) {
	query := `SELECT service, created_at, updated_at, last_checked_status FROM ` + s.table
	var args []any
	if len(services) > 0 {
		query += ` WHERE service = ANY($1)`
		args = append(args, pq.Array(services))
	}
	query += ` ORDER BY service`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("credential: query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r         Record
			created   sql.NullTime
			updated   sql.NullTime
			lastCheck sql.NullString
		)
		if err := rows.Scan(&r.Service, &created, &updated, &lastCheck); err != nil {
			return nil, fmt.Errorf("credential: scan record: %w", err)
		}
		if created.Valid {
			r.CreatedAt = created.Time
		}
		if updated.Valid {
			r.UpdatedAt = updated.Time
		}
		if lastCheck.Valid {
			// Unrecognized values are treated as never checked.
			r.LastCheckedStatus, _ = health.ParseStatus(lastCheck.String)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("credential: iterate records: %w", err)
	}
	return records, nil
}

// Ping checks that the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("credential: ping postgres: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Ensure PostgresStore implements Store
var _ Store = (*PostgresStore)(nil)
