package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"inmobiliaria-analyzer/models"
)

// SQLiteStore persists scraped properties in a local SQLite file. It is the
// default backend.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the SQLite database at path and
// ensures the properties table exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS properties (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			price        REAL,
			area_m2      REAL,
			rooms        INTEGER,
			baths        INTEGER,
			neighborhood TEXT,
			operation    TEXT NOT NULL,
			url          TEXT,
			scraped_at   DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_properties_operation    ON properties(operation);
		CREATE INDEX IF NOT EXISTS idx_properties_neighborhood ON properties(neighborhood);
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// SaveRaw appends scraped rows to the properties table.
func (s *SQLiteStore) SaveRaw(props []models.RawProperty) error {
	if len(props) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO properties (price, area_m2, rooms, baths, neighborhood, operation, url, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range props {
		if _, err := stmt.Exec(
			nullableFloat(p.Price), nullableFloat(p.AreaM2),
			nullableInt(p.Rooms), nullableInt(p.Baths),
			p.Neighborhood, string(p.Operation), p.URL,
			p.ScrapedAt.Format(time.RFC3339),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: insert row: %w", err)
		}
	}
	return tx.Commit()
}

// FetchAll reads the whole properties table. Returns ErrDataUnavailable when
// it holds no rows.
func (s *SQLiteStore) FetchAll() ([]models.RawProperty, error) {
	rows, err := s.db.Query(`
		SELECT price, area_m2, rooms, baths, neighborhood, operation, url, scraped_at
		FROM properties
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: fetch all: %w", err)
	}
	defer rows.Close()

	props, err := scanProperties(rows)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	if len(props) == 0 {
		return nil, ErrDataUnavailable
	}
	return props, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullableFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func nullableInt(i *int) interface{} {
	if i == nil {
		return nil
	}
	return *i
}

// scanProperties converts nullable columns back into pointer fields.
func scanProperties(rows *sql.Rows) ([]models.RawProperty, error) {
	var props []models.RawProperty
	for rows.Next() {
		var (
			price, area  sql.NullFloat64
			rooms, baths sql.NullInt64
			neighborhood sql.NullString
			operation    string
			url          sql.NullString
			scrapedAt    string
		)
		if err := rows.Scan(&price, &area, &rooms, &baths, &neighborhood, &operation, &url, &scrapedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		p := models.RawProperty{
			Neighborhood: neighborhood.String,
			Operation:    models.Operation(operation),
			URL:          url.String,
		}
		if price.Valid {
			v := price.Float64
			p.Price = &v
		}
		if area.Valid {
			v := area.Float64
			p.AreaM2 = &v
		}
		if rooms.Valid {
			v := int(rooms.Int64)
			p.Rooms = &v
		}
		if baths.Valid {
			v := int(baths.Int64)
			p.Baths = &v
		}
		if t, err := time.Parse(time.RFC3339, scrapedAt); err == nil {
			p.ScrapedAt = t
		}
		props = append(props, p)
	}
	return props, rows.Err()
}
