package services

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"inmobiliaria-analyzer/config"
	"inmobiliaria-analyzer/models"
	"inmobiliaria-analyzer/utils"
)

var titleCaser = cases.Title(language.Spanish)

// Cleaner transforms RawProperties into clean, validated Properties.
// Records missing price, area or neighborhood are dropped, and the survivors
// are filtered to the configured price/area bounds.
type Cleaner struct {
	bounds config.Bounds
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given bounds and logger.
func NewCleaner(bounds config.Bounds, logger *utils.Logger) *Cleaner {
	return &Cleaner{bounds: bounds, logger: logger}
}

// Clean processes raw properties and returns the cleaned table. An empty
// input yields an empty table, never an error. Clean is a projection: running
// it over a previously cleaned table (re-wrapped as raw) changes nothing.
func (c *Cleaner) Clean(raw []models.RawProperty) []models.Property {
	result := make([]models.Property, 0, len(raw))

	missing := 0
	outOfBounds := 0

	for _, r := range raw {
		if r.Price == nil || r.AreaM2 == nil || strings.TrimSpace(r.Neighborhood) == "" {
			missing++
			continue
		}

		price, area := *r.Price, *r.AreaM2
		if price < c.bounds.MinPrice || price > c.bounds.MaxPrice ||
			area < c.bounds.MinArea || area > c.bounds.MaxArea {
			outOfBounds++
			continue
		}

		result = append(result, models.Property{
			Price:        price,
			AreaM2:       area,
			Rooms:        r.Rooms,
			Baths:        r.Baths,
			Neighborhood: NormalizeNeighborhood(r.Neighborhood),
			Operation:    r.Operation,
			PricePerM2:   price / area,
			PriceTier:    priceTier(price),
			SizeTier:     sizeTier(area),
			URL:          r.URL,
			ScrapedAt:    r.ScrapedAt,
		})
	}

	c.logger.Info("[cleaner] Cleaned %d → %d properties (dropped %d incomplete, %d out of bounds)",
		len(raw), len(result), missing, outOfBounds)
	return result
}

// NormalizeNeighborhood trims surrounding whitespace and title-cases the name
// so that "POCITOS" and " pocitos " group together.
func NormalizeNeighborhood(s string) string {
	return titleCaser.String(strings.TrimSpace(s))
}

// priceTier buckets a sale/rent price into the fixed market segments used
// across reports. The top bin is open-ended.
func priceTier(price float64) string {
	switch {
	case price <= 100000:
		return "Economic"
	case price <= 200000:
		return "Mid"
	case price <= 300000:
		return "High"
	default:
		return "Premium"
	}
}

// sizeTier buckets an area in m² into the fixed size segments.
func sizeTier(area float64) string {
	switch {
	case area <= 50:
		return "Small"
	case area <= 80:
		return "Medium"
	case area <= 120:
		return "Large"
	default:
		return "Extra-large"
	}
}
