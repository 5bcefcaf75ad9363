package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"inmobiliaria-analyzer/models"
)

const (
	testFraction = 0.2
	randomSeed   = 42
	// ridge keeps the normal equations solvable when one-hot columns are
	// collinear (every row has exactly one barrio indicator set).
	ridge = 1e-6
)

// Predictor fits a price-per-m² estimator over a cleaned property table.
type Predictor interface {
	Fit(props []models.Property) (*Model, error)
}

// Regressor is a linear least-squares Predictor with standardized features,
// the equivalent of the regression stage of the analysis pipeline.
type Regressor struct{}

// NewRegressor creates a Regressor.
func NewRegressor() *Regressor {
	return &Regressor{}
}

// Scaler standardizes features to zero mean and unit variance. Its state is
// persisted with the model so inference applies the train-time scaling.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

func fitScaler(rows [][]float64, width int) *Scaler {
	s := &Scaler{Mean: make([]float64, width), Std: make([]float64, width)}
	n := float64(len(rows))
	for _, row := range rows {
		for j, v := range row {
			s.Mean[j] += v
		}
	}
	for j := range s.Mean {
		s.Mean[j] /= n
	}
	for _, row := range rows {
		for j, v := range row {
			d := v - s.Mean[j]
			s.Std[j] += d * d
		}
	}
	for j := range s.Std {
		s.Std[j] = math.Sqrt(s.Std[j] / n)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	return s
}

func (s *Scaler) transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out
}

// Model is a fitted price-per-m² estimator: regression weights, the scaler
// state and the ordered feature columns captured at train time, plus holdout
// evaluation metrics.
type Model struct {
	Columns   []string  `json:"feature_columns"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Scaler    *Scaler   `json:"scaler"`
	FillRooms float64   `json:"fill_rooms"`
	FillBaths float64   `json:"fill_baths"`
	MAE       float64   `json:"mae"`
	RMSE      float64   `json:"rmse"`
	R2        float64   `json:"r2"`
	TrainedAt time.Time `json:"trained_at"`
}

// Fit trains the regressor on the cleaned table and evaluates it on a
// deterministic holdout split.
func (r *Regressor) Fit(props []models.Property) (*Model, error) {
	if len(props) < 10 {
		return nil, fmt.Errorf("not enough data to train: %d properties (need at least 10)", len(props))
	}

	builder := NewFeatureBuilder(props)
	table := builder.Build(props)

	rng := rand.New(rand.NewSource(randomSeed))
	order := rng.Perm(len(table.Rows))
	testSize := int(float64(len(order)) * testFraction)
	if testSize < 1 {
		testSize = 1
	}

	var trainX, testX [][]float64
	var trainY, testY []float64
	for i, idx := range order {
		if i < testSize {
			testX = append(testX, table.Rows[idx])
			testY = append(testY, table.Target[idx])
		} else {
			trainX = append(trainX, table.Rows[idx])
			trainY = append(trainY, table.Target[idx])
		}
	}

	scaler := fitScaler(trainX, len(table.Columns))
	scaledTrain := make([][]float64, len(trainX))
	for i, row := range trainX {
		scaledTrain[i] = scaler.transform(row)
	}

	weights, intercept, err := solveLeastSquares(scaledTrain, trainY)
	if err != nil {
		return nil, fmt.Errorf("fit regression: %w", err)
	}

	m := &Model{
		Columns:   table.Columns,
		Weights:   weights,
		Intercept: intercept,
		Scaler:    scaler,
		FillRooms: builder.FillRooms,
		FillBaths: builder.FillBaths,
		TrainedAt: time.Now(),
	}
	m.evaluate(testX, testY)
	return m, nil
}

func (m *Model) evaluate(testX [][]float64, testY []float64) {
	if len(testY) == 0 {
		return
	}
	var absSum, sqSum float64
	meanY := 0.0
	for _, y := range testY {
		meanY += y
	}
	meanY /= float64(len(testY))

	var ssTot float64
	for i, row := range testX {
		pred := m.predictRow(row)
		diff := pred - testY[i]
		absSum += math.Abs(diff)
		sqSum += diff * diff
		d := testY[i] - meanY
		ssTot += d * d
	}
	n := float64(len(testY))
	m.MAE = absSum / n
	m.RMSE = math.Sqrt(sqSum / n)
	if ssTot > 0 {
		m.R2 = 1 - sqSum/ssTot
	}
}

// Predict estimates price per m² for an engineered feature map. Features are
// aligned to the train-time column order; columns missing from the map —
// including one-hot indicators for categories never seen at train time —
// contribute zero.
func (m *Model) Predict(features map[string]float64) float64 {
	row := make([]float64, len(m.Columns))
	for j, col := range m.Columns {
		row[j] = features[col]
	}
	return m.predictRow(row)
}

// PredictProperty engineers features for one property using the persisted
// fill medians, then predicts.
func (m *Model) PredictProperty(p models.Property) float64 {
	builder := &FeatureBuilder{FillRooms: m.FillRooms, FillBaths: m.FillBaths}
	return m.Predict(builder.Features(p))
}

func (m *Model) predictRow(row []float64) float64 {
	scaled := m.Scaler.transform(row)
	sum := m.Intercept
	for j, w := range m.Weights {
		sum += w * scaled[j]
	}
	return sum
}

// Save persists the fitted model (weights, scaler, column order) as JSON.
func (m *Model) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("model: create dir: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("model: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("model: write %q: %w", path, err)
	}
	return nil
}

// LoadModel reads a previously fitted model from disk.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: read %q: %w", path, err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("model: unmarshal %q: %w", path, err)
	}
	if len(m.Columns) == 0 || len(m.Weights) != len(m.Columns) || m.Scaler == nil {
		return nil, fmt.Errorf("model: file %q is incomplete or corrupt", path)
	}
	return &m, nil
}

// solveLeastSquares fits y = Xw + b by solving the ridge-damped normal
// equations with Gaussian elimination. The intercept column is appended
// internally and not regularized.
func solveLeastSquares(x [][]float64, y []float64) (weights []float64, intercept float64, err error) {
	if len(x) == 0 {
		return nil, 0, fmt.Errorf("empty design matrix")
	}
	p := len(x[0]) + 1 // +1 intercept

	// Augmented rows: [features..., 1]
	xtx := make([][]float64, p)
	for i := range xtx {
		xtx[i] = make([]float64, p)
	}
	xty := make([]float64, p)

	for i, row := range x {
		aug := append(append([]float64(nil), row...), 1)
		for a := 0; a < p; a++ {
			for b := 0; b < p; b++ {
				xtx[a][b] += aug[a] * aug[b]
			}
			xty[a] += aug[a] * y[i]
		}
	}
	for a := 0; a < p-1; a++ {
		xtx[a][a] += ridge
	}

	solution, err := gaussianSolve(xtx, xty)
	if err != nil {
		return nil, 0, err
	}
	return solution[:p-1], solution[p-1], nil
}

// gaussianSolve solves Ax = b in place with partial pivoting.
func gaussianSolve(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular system at column %d", col)
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < n; r++ {
			factor := a[r][col] / a[col][col]
			for c := col; c < n; c++ {
				a[r][c] -= factor * a[col][c]
			}
			b[r] -= factor * b[col]
		}
	}

	x := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		sum := b[r]
		for c := r + 1; c < n; c++ {
			sum -= a[r][c] * x[c]
		}
		x[r] = sum / a[r][r]
	}
	return x, nil
}
