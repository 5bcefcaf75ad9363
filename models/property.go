package models

import (
	"fmt"
	"time"
)

// Operation is the transaction type of a listing as published on the portal.
type Operation string

const (
	OperationSale Operation = "venta"
	OperationRent Operation = "alquiler"
)

// RiskTolerance selects the weight profile used by the investment scorer.
// It is a closed set: anything else is rejected at parse time.
type RiskTolerance string

const (
	RiskLow    RiskTolerance = "low"
	RiskMedium RiskTolerance = "medium"
	RiskHigh   RiskTolerance = "high"
)

// ParseRiskTolerance validates a user-supplied tolerance string.
func ParseRiskTolerance(s string) (RiskTolerance, error) {
	switch RiskTolerance(s) {
	case RiskLow, RiskMedium, RiskHigh:
		return RiskTolerance(s), nil
	}
	return "", fmt.Errorf("unknown risk tolerance %q (want low, medium or high)", s)
}

// RawProperty holds one scraped listing exactly as extracted from the page.
// Numeric fields are pointers because any of them can be absent in the
// source markup; only Operation is guaranteed by the scraper.
type RawProperty struct {
	Price        *float64
	AreaM2       *float64
	Rooms        *int
	Baths        *int
	Neighborhood string
	Operation    Operation
	URL          string
	ScrapedAt    time.Time
}

// Property is a cleaned, validated listing ready for analysis.
type Property struct {
	Price        float64
	AreaM2       float64
	Rooms        *int
	Baths        *int
	Neighborhood string
	Operation    Operation
	PricePerM2   float64
	PriceTier    string
	SizeTier     string
	URL          string
	ScrapedAt    time.Time
}

// NeighborhoodStats aggregates one neighborhood within one operation type.
type NeighborhoodStats struct {
	Neighborhood     string
	Count            int
	PriceMean        float64
	PriceMedian      float64
	PriceStdDev      float64
	PricePerM2Mean   float64
	PricePerM2Median float64
	PricePerM2StdDev float64
	AreaMean         float64
	AreaMedian       float64
}

// NeighborhoodROI is the estimated annual rental yield for a neighborhood,
// derived from the sale and rent averages of its listings.
type NeighborhoodROI struct {
	Neighborhood     string
	AvgSalePrice     float64
	AvgMonthlyRent   float64
	AnnualROIPercent float64
}

// ScoredProperty is a sale listing augmented with the normalized score
// components and the final risk-weighted investment score.
type ScoredProperty struct {
	Property
	AnnualROIPercent float64
	ROIScore         float64
	PricePerM2Score  float64
	SizeScore        float64
	InvestmentScore  float64
}

// NeighborhoodRollup summarizes scored candidates grouped by neighborhood.
type NeighborhoodRollup struct {
	Neighborhood   string
	MeanScore      float64
	MaxScore       float64
	Count          int
	MeanPrice      float64
	MinPrice       float64
	MaxPrice       float64
	MeanROI        float64
	MeanPricePerM2 float64
}

// Recommendation is the ranked result of one investment query.
type Recommendation struct {
	BudgetMin      float64
	BudgetMax      float64
	RiskTolerance  RiskTolerance
	LocationFilter string
	CandidateCount int
	Top            []ScoredProperty
	ByNeighborhood []NeighborhoodRollup
	Best           ScoredProperty
}
