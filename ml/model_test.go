package ml

import (
	"math"
	"path/filepath"
	"testing"

	"inmobiliaria-analyzer/models"
)

// linearDataset builds properties whose price per m² is an exact linear
// function of area, so a least-squares fit should recover it almost exactly.
func linearDataset(n int) []models.Property {
	props := make([]models.Property, 0, n)
	for i := 0; i < n; i++ {
		area := 40.0 + float64(i*4)
		ppm2 := 1000.0 + 10.0*area
		rooms := 1 + i%3
		baths := 1 + i%2
		neighborhood := "Pocitos"
		if i%2 == 1 {
			neighborhood = "Buceo"
		}
		props = append(props, mlProp(ppm2*area, area, rooms, baths, neighborhood, models.OperationSale))
	}
	return props
}

func TestFitRequiresEnoughData(t *testing.T) {
	_, err := NewRegressor().Fit(linearDataset(5))
	if err == nil {
		t.Fatal("expected an error for a dataset below the minimum size")
	}
}

func TestFitRecoversLinearRelation(t *testing.T) {
	props := linearDataset(30)

	model, err := NewRegressor().Fit(props)
	if err != nil {
		t.Fatal(err)
	}

	// The holdout metrics should reflect a near-perfect fit.
	if model.MAE > 20 {
		t.Errorf("MAE too high for an exactly linear dataset: %v", model.MAE)
	}
	if model.R2 < 0.98 {
		t.Errorf("R² too low for an exactly linear dataset: %v", model.R2)
	}

	p := props[10]
	got := model.PredictProperty(p)
	want := p.PricePerM2
	if math.Abs(got-want)/want > 0.05 {
		t.Errorf("PredictProperty: got %v, want ~%v", got, want)
	}
}

func TestFitIsDeterministic(t *testing.T) {
	props := linearDataset(30)

	a, err := NewRegressor().Fit(props)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewRegressor().Fit(props)
	if err != nil {
		t.Fatal(err)
	}

	if a.MAE != b.MAE || a.R2 != b.R2 {
		t.Errorf("training is not deterministic: MAE %v vs %v, R² %v vs %v", a.MAE, b.MAE, a.R2, b.R2)
	}
}

func TestPredictUnseenCategoryContributesZero(t *testing.T) {
	props := linearDataset(30)
	model, err := NewRegressor().Fit(props)
	if err != nil {
		t.Fatal(err)
	}

	seen := mlProp(120000, 60, 2, 1, "Pocitos", models.OperationSale)
	unseen := seen
	unseen.Neighborhood = "Barrio Desconocido"

	builder := &FeatureBuilder{FillRooms: model.FillRooms, FillBaths: model.FillBaths}
	seenFeatures := builder.Features(seen)
	unseenFeatures := builder.Features(unseen)

	// The unseen indicator is simply absent from the model's columns, so
	// the prediction must match one with the Pocitos indicator zeroed.
	delete(seenFeatures, "barrio_Pocitos")
	if got, want := model.Predict(unseenFeatures), model.Predict(seenFeatures); got != want {
		t.Errorf("unseen category prediction: got %v, want %v", got, want)
	}
}

func TestPredictMissingColumnsDefaultToZero(t *testing.T) {
	props := linearDataset(30)
	model, err := NewRegressor().Fit(props)
	if err != nil {
		t.Fatal(err)
	}

	// Predicting from an empty feature map must not panic and must equal the
	// all-zero row.
	got := model.Predict(map[string]float64{})
	row := make([]float64, len(model.Columns))
	if want := model.predictRow(row); got != want {
		t.Errorf("empty feature map: got %v, want %v", got, want)
	}
}

func TestModelSaveLoadRoundtrip(t *testing.T) {
	props := linearDataset(30)
	model, err := NewRegressor().Fit(props)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := model.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadModel(path)
	if err != nil {
		t.Fatal(err)
	}

	p := props[3]
	if got, want := loaded.PredictProperty(p), model.PredictProperty(p); got != want {
		t.Errorf("loaded model predicts %v, original %v", got, want)
	}
}

func TestLoadModelRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	if err := (&Model{}).Save(path); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadModel(path); err == nil {
		t.Fatal("expected an error loading an incomplete model")
	}
}

func TestGaussianSolve(t *testing.T) {
	// 2x + y = 5, x + 3y = 10 → x = 1, y = 3
	a := [][]float64{{2, 1}, {1, 3}}
	b := []float64{5, 10}

	x, err := gaussianSolve(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(x[0]-1) > 1e-9 || math.Abs(x[1]-3) > 1e-9 {
		t.Errorf("solution: got %v, want [1 3]", x)
	}
}
