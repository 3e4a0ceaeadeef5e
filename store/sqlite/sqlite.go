/*
Package sqlite provides a SQLite-backed implementation of drug.Store.

PURPOSE:
  Persists drug records for the reference server and CLI. The dose engine
  itself never touches storage; this package only decodes stored columns back
  into plain values and hands them to drug.Import().

ENCODING:
  Fractions are stored as text in simple form ("3/2") and decoded with
  fraction.Parse, so the column round-trips exactly. Recurrence is stored as
  the (kind, arg, origin) triple; origin is a nullable RFC3339 timestamp.

KEY TABLES:
  drugs: One row per drug, keyed by the uuid assigned by the API

CONCURRENCY:
  Uses sync.RWMutex for thread-safety around the single connection pool.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./doses.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  err = store.Save(ctx, d)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - drug/store.go: Interface definition
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rxdose/dose-engine/drug"
	"github.com/rxdose/dose-engine/fraction"
	"github.com/rxdose/dose-engine/generic"
)

// Store implements drug.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ drug.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every :memory: connection is a separate database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS drugs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		form INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		refill_size INTEGER NOT NULL DEFAULT 0,
		current_supply TEXT NOT NULL DEFAULT '0',
		dose_morning TEXT NOT NULL DEFAULT '0',
		dose_noon TEXT NOT NULL DEFAULT '0',
		dose_evening TEXT NOT NULL DEFAULT '0',
		dose_night TEXT NOT NULL DEFAULT '0',
		recurrence_kind INTEGER NOT NULL DEFAULT 0,
		recurrence_arg INTEGER NOT NULL DEFAULT 0,
		recurrence_origin TEXT,
		comment TEXT,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_drugs_active
		ON drugs(active);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DRUGS
// =============================================================================

const selectDrug = `
	SELECT id, name, form, active, refill_size, current_supply,
		dose_morning, dose_noon, dose_evening, dose_night,
		recurrence_kind, recurrence_arg, recurrence_origin, comment
	FROM drugs`

// Save inserts or replaces a drug.
func (s *Store) Save(ctx context.Context, d *drug.Drug) error {
	if d.ID == "" {
		return generic.InvalidArgument("id", "", "drug id required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := d.Record()

	var origin sql.NullString
	if !r.RecurrenceOrigin.IsZero() {
		origin = sql.NullString{String: r.RecurrenceOrigin.Format(time.RFC3339Nano), Valid: true}
	}

	query := `
		INSERT INTO drugs (id, name, form, active, refill_size, current_supply,
			dose_morning, dose_noon, dose_evening, dose_night,
			recurrence_kind, recurrence_arg, recurrence_origin, comment, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			form = excluded.form,
			active = excluded.active,
			refill_size = excluded.refill_size,
			current_supply = excluded.current_supply,
			dose_morning = excluded.dose_morning,
			dose_noon = excluded.dose_noon,
			dose_evening = excluded.dose_evening,
			dose_night = excluded.dose_night,
			recurrence_kind = excluded.recurrence_kind,
			recurrence_arg = excluded.recurrence_arg,
			recurrence_origin = excluded.recurrence_origin,
			comment = excluded.comment,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		string(r.ID), r.Name, int(r.Form), r.Active, r.RefillSize,
		r.CurrentSupply.Text(false),
		r.Doses[drug.Morning].Text(false),
		r.Doses[drug.Noon].Text(false),
		r.Doses[drug.Evening].Text(false),
		r.Doses[drug.Night].Text(false),
		int(r.RecurrenceKind), r.RecurrenceArg, origin, r.Comment,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save drug %s: %w", r.ID, err)
	}
	return nil
}

// Get retrieves a drug by ID.
func (s *Store) Get(ctx context.Context, id drug.DrugID) (*drug.Drug, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectDrug+" WHERE id = ?", string(id))
	d, err := scanDrug(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", generic.ErrDrugNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// List returns all drugs ordered by name.
func (s *Store) List(ctx context.Context) ([]*drug.Drug, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectDrug+" ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drugs []*drug.Drug
	for rows.Next() {
		d, err := scanDrug(rows)
		if err != nil {
			return nil, err
		}
		drugs = append(drugs, d)
	}
	return drugs, rows.Err()
}

// Delete removes a drug.
func (s *Store) Delete(ctx context.Context, id drug.DrugID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM drugs WHERE id = ?", string(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrDrugNotFound, id)
	}
	return nil
}

// =============================================================================
// DECODING
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanDrug(row scanner) (*drug.Drug, error) {
	var (
		id, name                      string
		form, refillSize, kind        int
		active                        bool
		arg                           int64
		supply                        string
		morning, noon, evening, night string
		origin, comment               sql.NullString
	)

	if err := row.Scan(&id, &name, &form, &active, &refillSize, &supply,
		&morning, &noon, &evening, &night,
		&kind, &arg, &origin, &comment); err != nil {
		return nil, err
	}

	rec := drug.Record{
		ID:             drug.DrugID(id),
		Name:           name,
		Form:           drug.Form(form),
		Active:         active,
		RefillSize:     refillSize,
		RecurrenceKind: drug.RecurrenceKind(kind),
		RecurrenceArg:  arg,
		Comment:        comment.String,
	}

	var err error
	if rec.CurrentSupply, err = decodeFraction("current_supply", supply); err != nil {
		return nil, err
	}
	for i, text := range []string{morning, noon, evening, night} {
		if rec.Doses[i], err = decodeFraction(drug.DoseTime(i).String(), text); err != nil {
			return nil, err
		}
	}

	if origin.Valid {
		t, err := time.Parse(time.RFC3339Nano, origin.String)
		if err != nil {
			return nil, fmt.Errorf("drug %s: recurrence_origin: %w", id, err)
		}
		rec.RecurrenceOrigin = t
	}

	return drug.Import(rec), nil
}

func decodeFraction(column, text string) (fraction.Fraction, error) {
	f, err := fraction.Parse(text)
	if err != nil {
		return fraction.Zero, fmt.Errorf("column %s: %w", column, err)
	}
	return f, nil
}
