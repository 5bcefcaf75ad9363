package ml

import (
	"reflect"
	"testing"

	"inmobiliaria-analyzer/models"
)

func f(v float64) *float64 { return &v }
func n(v int) *int         { return &v }

func mlProp(price, area float64, rooms, baths int, neighborhood string, op models.Operation) models.Property {
	return models.Property{
		Price: price, AreaM2: area, Rooms: n(rooms), Baths: n(baths),
		Neighborhood: neighborhood, Operation: op, PricePerM2: price / area,
	}
}

func TestFeatureColumnsDeterministic(t *testing.T) {
	props := []models.Property{
		mlProp(100000, 50, 2, 1, "Pocitos", models.OperationSale),
		mlProp(120000, 60, 3, 2, "Buceo", models.OperationSale),
		mlProp(800, 45, 1, 1, "Carrasco", models.OperationRent),
	}

	b := NewFeatureBuilder(props)
	first := b.Build(props)
	second := b.Build(props)

	if !reflect.DeepEqual(first.Columns, second.Columns) {
		t.Errorf("column order not deterministic:\n%v\n%v", first.Columns, second.Columns)
	}

	// One-hot columns must exist for every category seen.
	want := map[string]bool{
		"barrio_Buceo": true, "barrio_Carrasco": true, "barrio_Pocitos": true,
		"operation_venta": true, "operation_alquiler": true,
	}
	for _, col := range first.Columns {
		delete(want, col)
	}
	if len(want) != 0 {
		t.Errorf("missing one-hot columns: %v", want)
	}
}

func TestFeatureMedianFill(t *testing.T) {
	props := []models.Property{
		mlProp(100000, 50, 1, 1, "Pocitos", models.OperationSale),
		mlProp(120000, 60, 3, 1, "Pocitos", models.OperationSale),
		{Price: 110000, AreaM2: 55, Neighborhood: "Pocitos",
			Operation: models.OperationSale, PricePerM2: 2000}, // rooms/baths missing
	}

	b := NewFeatureBuilder(props)
	if b.FillRooms != 2 {
		t.Errorf("FillRooms: got %v, want median 2", b.FillRooms)
	}
	if b.FillBaths != 1 {
		t.Errorf("FillBaths: got %v, want median 1", b.FillBaths)
	}

	features := b.Features(props[2])
	if features[colRooms] != 2 {
		t.Errorf("missing rooms should be median-filled: got %v", features[colRooms])
	}
}

func TestFeatureRatioGuards(t *testing.T) {
	// No room data anywhere: fill median is 0, ratios must not divide by zero.
	p := models.Property{Price: 100000, AreaM2: 50, Neighborhood: "Pocitos",
		Operation: models.OperationSale, PricePerM2: 2000}

	b := NewFeatureBuilder([]models.Property{p})
	features := b.Features(p)

	if v := features[colPricePerRoom]; v != 0 {
		t.Errorf("price_per_room with zero rooms: got %v, want 0", v)
	}
}

func TestFeatureTableShape(t *testing.T) {
	props := []models.Property{
		mlProp(100000, 50, 2, 1, "Pocitos", models.OperationSale),
		mlProp(120000, 60, 3, 2, "Buceo", models.OperationSale),
	}

	table := NewFeatureBuilder(props).Build(props)
	if len(table.Rows) != 2 || len(table.Target) != 2 {
		t.Fatalf("table shape: %d rows, %d targets", len(table.Rows), len(table.Target))
	}
	for i, row := range table.Rows {
		if len(row) != len(table.Columns) {
			t.Errorf("row %d has %d values for %d columns", i, len(row), len(table.Columns))
		}
	}
	if table.Target[0] != 2000 {
		t.Errorf("target should be price per m²: got %v", table.Target[0])
	}
}
