package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"inmobiliaria-analyzer/models"
)

// CSVWriter exports the cleaned property table to a CSV file so that the
// processed dataset can be inspected or fed into external tools.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"price", "area_m2", "rooms", "baths", "neighborhood", "operation",
		"price_per_m2", "price_tier", "size_tier", "url", "scraped_at",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteProperties appends the cleaned rows to the file.
func (c *CSVWriter) WriteProperties(props []models.Property) error {
	for _, p := range props {
		row := []string{
			strconv.FormatFloat(p.Price, 'f', 2, 64),
			strconv.FormatFloat(p.AreaM2, 'f', 1, 64),
			formatOptInt(p.Rooms),
			formatOptInt(p.Baths),
			p.Neighborhood,
			string(p.Operation),
			strconv.FormatFloat(p.PricePerM2, 'f', 2, 64),
			p.PriceTier,
			p.SizeTier,
			p.URL,
			p.ScrapedAt.Format(time.RFC3339),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func formatOptInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
