package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"inmobiliaria-analyzer/models"
)

// PostgresStore persists scraped properties in PostgreSQL. It is selected
// when a Postgres host is configured, for deployments where several runs
// share one database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresStore.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS properties (
			id           SERIAL PRIMARY KEY,
			price        NUMERIC(12,2),
			area_m2      NUMERIC(8,2),
			rooms        INTEGER,
			baths        INTEGER,
			neighborhood TEXT,
			operation    VARCHAR(20) NOT NULL,
			url          TEXT,
			scraped_at   TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_properties_operation    ON properties(operation);
		CREATE INDEX IF NOT EXISTS idx_properties_neighborhood ON properties(neighborhood);
		CREATE INDEX IF NOT EXISTS idx_properties_price        ON properties(price);
	`)
	return err
}

// SaveRaw batch-inserts scraped rows.
func (ps *PostgresStore) SaveRaw(props []models.RawProperty) error {
	if len(props) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(props); i += batchSize {
		end := i + batchSize
		if end > len(props) {
			end = len(props)
		}
		if err := ps.insertBatch(props[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (ps *PostgresStore) insertBatch(batch []models.RawProperty) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*8)

	for idx, p := range batch {
		base := idx * 8
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		valueArgs = append(valueArgs,
			nullableFloat(p.Price), nullableFloat(p.AreaM2),
			nullableInt(p.Rooms), nullableInt(p.Baths),
			p.Neighborhood, string(p.Operation), p.URL, p.ScrapedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO properties (price, area_m2, rooms, baths, neighborhood, operation, url, scraped_at)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	_, err := ps.db.Exec(query, valueArgs...)
	if err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

// FetchAll reads the whole properties table. Returns ErrDataUnavailable when
// it holds no rows.
func (ps *PostgresStore) FetchAll() ([]models.RawProperty, error) {
	rows, err := ps.db.Query(`
		SELECT price, area_m2, rooms, baths, neighborhood, operation, url, scraped_at
		FROM properties
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var props []models.RawProperty
	for rows.Next() {
		var (
			price, area  sql.NullFloat64
			rooms, baths sql.NullInt64
			neighborhood sql.NullString
			operation    string
			url          sql.NullString
			scrapedAt    time.Time
		)
		if err := rows.Scan(&price, &area, &rooms, &baths, &neighborhood, &operation, &url, &scrapedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}

		p := models.RawProperty{
			Neighborhood: neighborhood.String,
			Operation:    models.Operation(operation),
			URL:          url.String,
			ScrapedAt:    scrapedAt,
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
		props = append(props, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(props) == 0 {
		return nil, ErrDataUnavailable
	}
	return props, nil
}

// Close closes the underlying connection pool.
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
