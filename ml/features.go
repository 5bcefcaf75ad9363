package ml

import (
	"sort"

	"inmobiliaria-analyzer/models"
)

// Feature column names. One-hot columns are derived per dataset and carry
// these prefixes; the full ordered list is persisted with the fitted model so
// inference always sees the exact train-time layout.
const (
	colArea         = "area_m2"
	colRooms        = "rooms"
	colBaths        = "baths"
	colPricePerRoom = "price_per_room"
	colM2PerRoom    = "m2_per_room"
	colBathsPerRoom = "baths_per_room"

	neighborhoodPrefix = "barrio_"
	operationPrefix    = "operation_"
)

// FeatureTable is an engineered design matrix with its target vector.
// Column order is deterministic for a given dataset.
type FeatureTable struct {
	Columns []string
	Rows    [][]float64
	Target  []float64
}

// FeatureBuilder engineers model features from cleaned properties. Missing
// room/bath counts are filled with the dataset median, captured so that
// inference applies the same fill values.
type FeatureBuilder struct {
	FillRooms float64
	FillBaths float64
}

// NewFeatureBuilder computes fill medians over the given dataset.
func NewFeatureBuilder(props []models.Property) *FeatureBuilder {
	var rooms, baths []float64
	for _, p := range props {
		if p.Rooms != nil {
			rooms = append(rooms, float64(*p.Rooms))
		}
		if p.Baths != nil {
			baths = append(baths, float64(*p.Baths))
		}
	}
	return &FeatureBuilder{
		FillRooms: medianOf(rooms),
		FillBaths: medianOf(baths),
	}
}

// Build produces the design matrix for the dataset. The target is price per
// m². One-hot neighborhood/operation columns are emitted for every category
// present, in sorted order after the numeric columns.
func (b *FeatureBuilder) Build(props []models.Property) *FeatureTable {
	neighborhoods := map[string]struct{}{}
	operations := map[string]struct{}{}
	for _, p := range props {
		neighborhoods[p.Neighborhood] = struct{}{}
		operations[string(p.Operation)] = struct{}{}
	}

	columns := []string{colArea, colRooms, colBaths, colPricePerRoom, colM2PerRoom, colBathsPerRoom}
	for _, n := range sortedKeys(neighborhoods) {
		columns = append(columns, neighborhoodPrefix+n)
	}
	for _, op := range sortedKeys(operations) {
		columns = append(columns, operationPrefix+op)
	}

	table := &FeatureTable{
		Columns: columns,
		Rows:    make([][]float64, 0, len(props)),
		Target:  make([]float64, 0, len(props)),
	}
	for _, p := range props {
		features := b.Features(p)
		row := make([]float64, len(columns))
		for i, col := range columns {
			row[i] = features[col]
		}
		table.Rows = append(table.Rows, row)
		table.Target = append(table.Target, p.PricePerM2)
	}
	return table
}

// Features engineers the feature map for a single property. The same code
// path serves training and inference; the fitted model aligns the map to its
// persisted column order, so categories unseen at train time simply leave
// their indicator columns at zero.
func (b *FeatureBuilder) Features(p models.Property) map[string]float64 {
	rooms := b.FillRooms
	if p.Rooms != nil {
		rooms = float64(*p.Rooms)
	}
	baths := b.FillBaths
	if p.Baths != nil {
		baths = float64(*p.Baths)
	}

	features := map[string]float64{
		colArea:  p.AreaM2,
		colRooms: rooms,
		colBaths: baths,
	}
	if rooms > 0 {
		features[colPricePerRoom] = p.Price / rooms
		features[colM2PerRoom] = p.AreaM2 / rooms
		features[colBathsPerRoom] = baths / rooms
	}
	if p.Neighborhood != "" {
		features[neighborhoodPrefix+p.Neighborhood] = 1
	}
	if p.Operation != "" {
		features[operationPrefix+string(p.Operation)] = 1
	}
	return features
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func medianOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
