package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

// Index records every extracted page so `rustdown list` and the MCP server
// can answer queries without re-walking the output tree.
type Index struct {
	conn *sql.DB
}

func New(dbPath string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	conn, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	idx := &Index{conn: conn}
	if err := idx.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return idx, nil
}

func (idx *Index) Close() error {
	return idx.conn.Close()
}

func (idx *Index) initSchema() error {
	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_package_id START 1;`,
		`CREATE SEQUENCE IF NOT EXISTS seq_page_id START 1;`,

		`CREATE TABLE IF NOT EXISTS packages (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			version TEXT NOT NULL,
			extracted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(name, version)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_packages_name ON packages (name)`,

		`CREATE TABLE IF NOT EXISTS pages (
			id INTEGER PRIMARY KEY,
			package_id INTEGER REFERENCES packages(id),
			path TEXT NOT NULL,
			kind TEXT NOT NULL,
			caption TEXT,
			file TEXT NOT NULL,
			content_hash TEXT,
			UNIQUE(package_id, path)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_package ON pages (package_id)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_path ON pages (path)`,
	}

	for _, q := range queries {
		if _, err := idx.conn.Exec(q); err != nil {
			return fmt.Errorf("executing %q: %w", q, err)
		}
	}
	return nil
}

type Package struct {
	ID          int
	Name        string
	Version     string
	ExtractedAt time.Time
}

// UpsertPackage returns the package row for (name, version), creating it on
// first extraction and bumping extracted_at otherwise.
func (idx *Index) UpsertPackage(name, version string) (*Package, error) {
	var p Package
	err := idx.conn.QueryRow(
		`SELECT id, name, version, extracted_at FROM packages WHERE name = ? AND version = ?`,
		name, version,
	).Scan(&p.ID, &p.Name, &p.Version, &p.ExtractedAt)

	if err == nil {
		if _, err := idx.conn.Exec(`UPDATE packages SET extracted_at = CURRENT_TIMESTAMP WHERE id = ?`, p.ID); err != nil {
			return nil, fmt.Errorf("touching package: %w", err)
		}
		return &p, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("checking package: %w", err)
	}

	_, err = idx.conn.Exec(
		`INSERT INTO packages (id, name, version) VALUES (nextval('seq_package_id'), ?, ?)`,
		name, version,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting package: %w", err)
	}

	var id int
	if err := idx.conn.QueryRow("SELECT currval('seq_package_id')").Scan(&id); err != nil {
		return nil, fmt.Errorf("getting package id: %w", err)
	}

	return &Package{ID: id, Name: name, Version: version, ExtractedAt: time.Now()}, nil
}

type PageRecord struct {
	ID          int
	PackageID   int
	Path        string
	Kind        string
	Caption     string
	File        string
	ContentHash string
}

// ReplacePages atomically swaps a package's page records for a new set.
func (idx *Index) ReplacePages(packageID int, pages []PageRecord) error {
	tx, err := idx.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM pages WHERE package_id = ?`, packageID); err != nil {
		return fmt.Errorf("deleting stale pages: %w", err)
	}

	for _, p := range pages {
		_, err := tx.Exec(
			`INSERT INTO pages (id, package_id, path, kind, caption, file, content_hash)
			 VALUES (nextval('seq_page_id'), ?, ?, ?, ?, ?, ?)`,
			packageID, p.Path, p.Kind, p.Caption, p.File, p.ContentHash,
		)
		if err != nil {
			return fmt.Errorf("inserting page %s: %w", p.Path, err)
		}
	}

	return tx.Commit()
}

// ListPages returns the recorded pages, optionally filtered by package name.
func (idx *Index) ListPages(packageName string) ([]PageRecord, error) {
	query := `SELECT p.id, p.package_id, p.path, p.kind, p.caption, p.file, p.content_hash
		FROM pages p JOIN packages pkg ON pkg.id = p.package_id`
	var args []interface{}
	if packageName != "" {
		query += ` WHERE pkg.name = ?`
		args = append(args, packageName)
	}
	query += ` ORDER BY p.path`

	rows, err := idx.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	defer rows.Close()

	var pages []PageRecord
	for rows.Next() {
		var p PageRecord
		var caption, hash sql.NullString
		if err := rows.Scan(&p.ID, &p.PackageID, &p.Path, &p.Kind, &caption, &p.File, &hash); err != nil {
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		p.Caption = caption.String
		p.ContentHash = hash.String
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// GetPageByPath looks up a single page by its "::"-joined Rust path.
func (idx *Index) GetPageByPath(path string) (*PageRecord, error) {
	var p PageRecord
	var caption, hash sql.NullString
	err := idx.conn.QueryRow(
		`SELECT id, package_id, path, kind, caption, file, content_hash FROM pages WHERE path = ?`,
		path,
	).Scan(&p.ID, &p.PackageID, &p.Path, &p.Kind, &caption, &p.File, &hash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Caption = caption.String
	p.ContentHash = hash.String
	return &p, nil
}

// ListPackages returns every indexed package.
func (idx *Index) ListPackages() ([]Package, error) {
	rows, err := idx.conn.Query(`SELECT id, name, version, extracted_at FROM packages ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packages []Package
	for rows.Next() {
		var p Package
		if err := rows.Scan(&p.ID, &p.Name, &p.Version, &p.ExtractedAt); err != nil {
			return nil, err
		}
		packages = append(packages, p)
	}
	return packages, rows.Err()
}

// CountPages returns the number of recorded pages for a package.
func (idx *Index) CountPages(packageID int) (int, error) {
	var count int
	err := idx.conn.QueryRow(`SELECT COUNT(*) FROM pages WHERE package_id = ?`, packageID).Scan(&count)
	return count, err
}
