package storage

import (
	"errors"

	"inmobiliaria-analyzer/models"
)

// ErrDataUnavailable is returned when the property table is absent or empty.
// The pipeline halts before cleaning when it sees this; it is a different
// condition from a query that legitimately matches nothing.
var ErrDataUnavailable = errors.New("no scraped property data available; run the scraper first")

// PropertyStore is the interface any storage backend must satisfy. Raw
// scraped rows are persisted wholesale and read back wholesale at the start
// of a processing run.
type PropertyStore interface {
	SaveRaw(props []models.RawProperty) error
	FetchAll() ([]models.RawProperty, error)
	Close() error
}
