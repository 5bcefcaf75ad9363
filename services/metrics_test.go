package services

import (
	"math"
	"testing"

	"inmobiliaria-analyzer/models"
)

func prop(price, area float64, neighborhood string, op models.Operation) models.Property {
	return models.Property{
		Price: price, AreaM2: area, Neighborhood: neighborhood,
		Operation: op, PricePerM2: price / area,
	}
}

func TestComputeROIPocitosScenario(t *testing.T) {
	a := NewMarketAnalyzer(newTestLogger())

	props := []models.Property{
		prop(100000, 50, "Pocitos", models.OperationSale),
		prop(1200, 50, "Pocitos", models.OperationRent),
	}

	rois := a.ComputeROI(props)
	if len(rois) != 1 {
		t.Fatalf("expected 1 ROI entry, got %d", len(rois))
	}
	// (1200 * 12 / 100000) * 100 = 14.4
	if got, want := rois[0].AnnualROIPercent, 14.4; math.Abs(got-want) > 1e-9 {
		t.Errorf("AnnualROIPercent: got %v, want %v", got, want)
	}
	if rois[0].Neighborhood != "Pocitos" {
		t.Errorf("Neighborhood: got %q, want Pocitos", rois[0].Neighborhood)
	}
}

func TestComputeROIRequiresBothSubsets(t *testing.T) {
	a := NewMarketAnalyzer(newTestLogger())

	props := []models.Property{
		prop(100000, 50, "Pocitos", models.OperationSale),
		prop(1200, 50, "Pocitos", models.OperationRent),
		prop(200000, 80, "Carrasco", models.OperationSale), // no rent data
		prop(900, 40, "Buceo", models.OperationRent),       // no sale data
	}

	rois := a.ComputeROI(props)
	if len(rois) != 1 {
		t.Fatalf("expected only neighborhoods present in both subsets, got %d entries", len(rois))
	}
	for _, r := range rois {
		if r.Neighborhood == "Carrasco" || r.Neighborhood == "Buceo" {
			t.Errorf("neighborhood %q should have been excluded", r.Neighborhood)
		}
	}
}

func TestComputeROISortedDescending(t *testing.T) {
	a := NewMarketAnalyzer(newTestLogger())

	props := []models.Property{
		prop(100000, 50, "Pocitos", models.OperationSale),
		prop(500, 50, "Pocitos", models.OperationRent), // 6%
		prop(100000, 50, "Buceo", models.OperationSale),
		prop(1000, 50, "Buceo", models.OperationRent), // 12%
	}

	rois := a.ComputeROI(props)
	if len(rois) != 2 {
		t.Fatalf("expected 2 ROI entries, got %d", len(rois))
	}
	if rois[0].Neighborhood != "Buceo" {
		t.Errorf("expected Buceo (higher ROI) first, got %q", rois[0].Neighborhood)
	}
	if rois[0].AnnualROIPercent < rois[1].AnnualROIPercent {
		t.Error("ROI table is not sorted descending")
	}
}

func TestComputeROISkipsZeroSalePrice(t *testing.T) {
	a := NewMarketAnalyzer(newTestLogger())

	props := []models.Property{
		prop(0, 50, "Pocitos", models.OperationSale),
		prop(1200, 50, "Pocitos", models.OperationRent),
	}

	rois := a.ComputeROI(props)
	if len(rois) != 0 {
		t.Fatalf("expected zero-sale-price neighborhood to be skipped, got %d entries", len(rois))
	}
}

func TestComputeROIEmptyInput(t *testing.T) {
	a := NewMarketAnalyzer(newTestLogger())
	if rois := a.ComputeROI(nil); len(rois) != 0 {
		t.Errorf("expected empty ROI table for empty input, got %d", len(rois))
	}
}

func TestMarketMetricsGroupsByOperation(t *testing.T) {
	a := NewMarketAnalyzer(newTestLogger())

	props := []models.Property{
		prop(100000, 50, "Pocitos", models.OperationSale),
		prop(200000, 100, "Pocitos", models.OperationSale),
		prop(1000, 50, "Pocitos", models.OperationRent),
	}

	sale, rent := a.MarketMetrics(props)
	if len(sale) != 1 || len(rent) != 1 {
		t.Fatalf("expected 1 sale and 1 rent group, got %d and %d", len(sale), len(rent))
	}

	s := sale[0]
	if s.Count != 2 {
		t.Errorf("sale count: got %d, want 2", s.Count)
	}
	if s.PriceMean != 150000 {
		t.Errorf("sale PriceMean: got %v, want 150000", s.PriceMean)
	}
	if s.PriceMedian != 150000 {
		t.Errorf("sale PriceMedian: got %v, want 150000", s.PriceMedian)
	}
	if s.AreaMean != 75 {
		t.Errorf("sale AreaMean: got %v, want 75", s.AreaMean)
	}
	if s.PricePerM2Mean != 2000 {
		t.Errorf("sale PricePerM2Mean: got %v, want 2000", s.PricePerM2Mean)
	}

	if rent[0].Count != 1 {
		t.Errorf("rent count: got %d, want 1", rent[0].Count)
	}
	if rent[0].PriceStdDev != 0 {
		t.Errorf("stddev of a single row should be 0, got %v", rent[0].PriceStdDev)
	}
}

func TestStatsHelpers(t *testing.T) {
	if got := median([]float64{3, 1, 2}); got != 2 {
		t.Errorf("median odd: got %v, want 2", got)
	}
	if got := median([]float64{4, 1, 2, 3}); got != 2.5 {
		t.Errorf("median even: got %v, want 2.5", got)
	}
	if got := mean(nil); got != 0 {
		t.Errorf("mean of empty: got %v, want 0", got)
	}
	// sample stddev of {2, 4} = sqrt(2)
	if got := stddev([]float64{2, 4}); math.Abs(got-math.Sqrt2) > 1e-12 {
		t.Errorf("stddev: got %v, want sqrt(2)", got)
	}
}
