// Package catalog stores named predicate definitions in SQLite.
//
// Each row keeps the definition document and the fingerprint of the tree it
// builds, so equivalent predicates saved under different names can be found.
package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/predkit/internal/definition"
	"github.com/roach88/predkit/internal/filter"
	"github.com/roach88/predkit/internal/fingerprint"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema
// 1 - Added index on definitions.fingerprint
const currentSchemaVersion = 1

// ErrNotFound is returned when no definition has the requested name.
var ErrNotFound = errors.New("catalog: definition not found")

// Entry is a stored definition.
type Entry struct {
	Name        string
	Entity      string
	Fingerprint string
	Revision    int
	Definition  *definition.Definition
}

// Catalog is a SQLite-backed set of named definitions.
type Catalog struct {
	db      *sql.DB
	filters filter.Builder
}

// Open creates or opens a catalog database at path.
//
// The database runs in WAL mode with a 5-second busy timeout and a single
// open connection. Open is idempotent.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Put validates def, builds it and stores it under def.Name, replacing any
// previous definition with that name. It returns the stored entry.
func (c *Catalog) Put(ctx context.Context, def *definition.Definition) (Entry, error) {
	l, err := definition.Build(def, c.filters)
	if err != nil {
		return Entry{}, fmt.Errorf("put %q: %w", def.Name, err)
	}

	doc, err := definition.MarshalJSON(def)
	if err != nil {
		return Entry{}, fmt.Errorf("put %q: %w", def.Name, err)
	}

	fp := fingerprint.Of(l)
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO definitions (name, entity, definition, fingerprint)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			entity = excluded.entity,
			definition = excluded.definition,
			fingerprint = excluded.fingerprint,
			revision = definitions.revision + 1
	`, def.Name, def.Entity, string(doc), fp)
	if err != nil {
		return Entry{}, fmt.Errorf("put %q: %w", def.Name, err)
	}

	slog.Debug("stored definition", "name", def.Name, "entity", def.Entity, "fingerprint", fp)
	return c.Get(ctx, def.Name)
}

// Get returns the definition stored under name, or ErrNotFound.
func (c *Catalog) Get(ctx context.Context, name string) (Entry, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT name, entity, definition, fingerprint, revision
		FROM definitions
		WHERE name = ?
	`, name)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("get %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get %q: %w", name, err)
	}
	return e, nil
}

// List returns every entry ordered by name (binary collation).
// Returns an empty slice (not nil) when the catalog is empty.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	return c.query(ctx, `
		SELECT name, entity, definition, fingerprint, revision
		FROM definitions
		ORDER BY name COLLATE BINARY ASC
	`)
}

// FindByFingerprint returns the entries whose predicate tree has the given
// fingerprint, ordered by name.
func (c *Catalog) FindByFingerprint(ctx context.Context, fp string) ([]Entry, error) {
	return c.query(ctx, `
		SELECT name, entity, definition, fingerprint, revision
		FROM definitions
		WHERE fingerprint = ?
		ORDER BY name COLLATE BINARY ASC
	`, fp)
}

// Delete removes the definition stored under name, or returns ErrNotFound.
func (c *Catalog) Delete(ctx context.Context, name string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM definitions WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %q: %w", name, ErrNotFound)
	}

	slog.Debug("deleted definition", "name", name)
	return nil
}

func (c *Catalog) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query definitions: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate definitions: %w", err)
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e   Entry
		doc string
	)
	if err := s.Scan(&e.Name, &e.Entity, &doc, &e.Fingerprint, &e.Revision); err != nil {
		return Entry{}, err
	}

	def, err := definition.ParseJSON([]byte(doc))
	if err != nil {
		return Entry{}, fmt.Errorf("decode definition %q: %w", e.Name, err)
	}
	e.Definition = def
	return e, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_definitions_fingerprint
		ON definitions(fingerprint)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}
