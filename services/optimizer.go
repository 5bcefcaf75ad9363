package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"inmobiliaria-analyzer/config"
	"inmobiliaria-analyzer/models"
	"inmobiliaria-analyzer/utils"
)

// ErrNoCandidates is the valid empty-result state of a query: the budget or
// location filter matched nothing. It is not a system failure and must never
// be confused with missing source data.
var ErrNoCandidates = errors.New("no properties match the requested filters")

// Optimizer ranks sale listings by a risk-weighted investment score and
// produces personalized recommendations.
type Optimizer struct {
	weights  map[models.RiskTolerance]config.Weights
	topN     int
	analyzer *MarketAnalyzer
	logger   *utils.Logger
}

// NewOptimizer creates an Optimizer using the configured weight table and
// recommendation list length.
func NewOptimizer(cfg *config.Config, analyzer *MarketAnalyzer, logger *utils.Logger) *Optimizer {
	return &Optimizer{
		weights:  cfg.RiskWeights,
		topN:     cfg.TopN,
		analyzer: analyzer,
		logger:   logger,
	}
}

// Score filters sale listings to the budget range, joins each to its
// neighborhood's annual ROI (falling back to the query-wide median when the
// neighborhood has no ROI estimate), min-max normalizes ROI, price per m²
// (inverted) and size over the candidate set, and combines them with the
// weight profile of the given tolerance.
//
// Results are sorted by investment score descending; ties go to the lower
// price, then the lexically smaller neighborhood, so rankings are
// reproducible. Returns ErrNoCandidates when the budget matches nothing.
func (o *Optimizer) Score(props []models.Property, roi []models.NeighborhoodROI,
	budgetMin, budgetMax float64, tolerance models.RiskTolerance) ([]models.ScoredProperty, error) {

	if budgetMin > budgetMax {
		return nil, fmt.Errorf("invalid budget range: min (%.0f) exceeds max (%.0f)", budgetMin, budgetMax)
	}
	weights, ok := o.weights[tolerance]
	if !ok {
		return nil, fmt.Errorf("no weights configured for risk tolerance %q", tolerance)
	}

	candidates := make([]models.ScoredProperty, 0, len(props))
	for _, p := range props {
		if p.Operation == models.OperationSale && p.Price >= budgetMin && p.Price <= budgetMax {
			candidates = append(candidates, models.ScoredProperty{Property: p})
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	roiByNeighborhood := make(map[string]float64, len(roi))
	for _, r := range roi {
		roiByNeighborhood[r.Neighborhood] = r.AnnualROIPercent
	}

	// The median substitute is computed once over the candidates that did
	// join, so every unmatched candidate gets the same value.
	var joined []float64
	for i := range candidates {
		if v, ok := roiByNeighborhood[candidates[i].Neighborhood]; ok {
			candidates[i].AnnualROIPercent = v
			joined = append(joined, v)
		} else {
			candidates[i].AnnualROIPercent = -1
		}
	}
	medianROI := median(joined)
	for i := range candidates {
		if candidates[i].AnnualROIPercent < 0 {
			candidates[i].AnnualROIPercent = medianROI
		}
	}

	rois := make([]float64, len(candidates))
	ppm2 := make([]float64, len(candidates))
	areas := make([]float64, len(candidates))
	for i, c := range candidates {
		rois[i] = c.AnnualROIPercent
		ppm2[i] = c.PricePerM2
		areas[i] = c.AreaM2
	}

	roiScores := minMaxScale(rois)
	ppm2Scores := minMaxScale(ppm2)
	sizeScores := minMaxScale(areas)

	for i := range candidates {
		candidates[i].ROIScore = roiScores[i]
		candidates[i].PricePerM2Score = 1 - ppm2Scores[i] // cheaper per m² scores higher
		candidates[i].SizeScore = sizeScores[i]
		candidates[i].InvestmentScore = candidates[i].ROIScore*weights.ROI +
			candidates[i].PricePerM2Score*weights.PricePerM2 +
			candidates[i].SizeScore*weights.Size
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.InvestmentScore != b.InvestmentScore {
			return a.InvestmentScore > b.InvestmentScore
		}
		if a.Price != b.Price {
			return a.Price < b.Price
		}
		return a.Neighborhood < b.Neighborhood
	})

	o.logger.Info("[optimizer] Scored %d candidates in budget [%.0f, %.0f], tolerance=%s",
		len(candidates), budgetMin, budgetMax, tolerance)
	return candidates, nil
}

// minMaxScale maps values onto [0,1]. A singleton or zero-variance input has
// no defined scaling, so every value becomes the neutral 0.5 instead of NaN.
func minMaxScale(xs []float64) []float64 {
	scaled := make([]float64, len(xs))
	if len(xs) == 0 {
		return scaled
	}

	min, max := xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}

	if max == min {
		for i := range scaled {
			scaled[i] = 0.5
		}
		return scaled
	}
	for i, x := range xs {
		scaled[i] = (x - min) / (max - min)
	}
	return scaled
}

// Recommend runs the full query pipeline: ROI table, scoring over the
// budget-filtered pool, then the optional location narrowing. The location
// filter is applied after scoring on purpose — scores stay comparable across
// the whole candidate pool even when the displayed subset is narrowed.
func (o *Optimizer) Recommend(props []models.Property, budgetMin, budgetMax float64,
	tolerance models.RiskTolerance, locationFilter string) (*models.Recommendation, error) {

	roi := o.analyzer.ComputeROI(props)

	scored, err := o.Score(props, roi, budgetMin, budgetMax, tolerance)
	if err != nil {
		return nil, err
	}

	if locationFilter != "" {
		needle := strings.ToLower(locationFilter)
		filtered := scored[:0:0]
		for _, s := range scored {
			if strings.Contains(strings.ToLower(s.Neighborhood), needle) {
				filtered = append(filtered, s)
			}
		}
		if len(filtered) == 0 {
			return nil, ErrNoCandidates
		}
		scored = filtered
	}

	top := scored
	if len(top) > o.topN {
		top = top[:o.topN]
	}

	return &models.Recommendation{
		BudgetMin:      budgetMin,
		BudgetMax:      budgetMax,
		RiskTolerance:  tolerance,
		LocationFilter: locationFilter,
		CandidateCount: len(scored),
		Top:            top,
		ByNeighborhood: rollupByNeighborhood(scored),
		Best:           scored[0],
	}, nil
}

// rollupByNeighborhood aggregates scored candidates per neighborhood, sorted
// by mean investment score descending.
func rollupByNeighborhood(scored []models.ScoredProperty) []models.NeighborhoodRollup {
	groups := make(map[string][]models.ScoredProperty)
	for _, s := range scored {
		groups[s.Neighborhood] = append(groups[s.Neighborhood], s)
	}

	rollups := make([]models.NeighborhoodRollup, 0, len(groups))
	for name, group := range groups {
		r := models.NeighborhoodRollup{
			Neighborhood: name,
			Count:        len(group),
			MinPrice:     group[0].Price,
			MaxPrice:     group[0].Price,
			MaxScore:     group[0].InvestmentScore,
		}
		var scoreSum, priceSum, roiSum, ppm2Sum float64
		for _, s := range group {
			scoreSum += s.InvestmentScore
			priceSum += s.Price
			roiSum += s.AnnualROIPercent
			ppm2Sum += s.PricePerM2
			if s.InvestmentScore > r.MaxScore {
				r.MaxScore = s.InvestmentScore
			}
			if s.Price < r.MinPrice {
				r.MinPrice = s.Price
			}
			if s.Price > r.MaxPrice {
				r.MaxPrice = s.Price
			}
		}
		n := float64(len(group))
		r.MeanScore = scoreSum / n
		r.MeanPrice = round2(priceSum / n)
		r.MeanROI = round2(roiSum / n)
		r.MeanPricePerM2 = round2(ppm2Sum / n)
		rollups = append(rollups, r)
	}

	sort.Slice(rollups, func(i, j int) bool {
		if rollups[i].MeanScore != rollups[j].MeanScore {
			return rollups[i].MeanScore > rollups[j].MeanScore
		}
		return rollups[i].Neighborhood < rollups[j].Neighborhood
	})
	return rollups
}
