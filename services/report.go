package services

import (
	"fmt"
	"strings"

	"inmobiliaria-analyzer/models"
)

// Reporter renders analysis results as a terminal report. It is the textual
// consumer of the pipeline; a dashboard would consume the same structures.
type Reporter struct{}

// NewReporter creates a Reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// PrintROI prints the neighborhood ROI ranking.
func (r *Reporter) PrintROI(rois []models.NeighborhoodROI, limit int) {
	thin := strings.Repeat("─", 58)

	fmt.Printf("\n\033[1;33m  Top Neighborhoods by Annual ROI\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(rois) == 0 {
		fmt.Printf("  No neighborhoods with both sale and rent data\n")
		return
	}
	if limit > 0 && len(rois) > limit {
		rois = rois[:limit]
	}
	for i, roi := range rois {
		fmt.Printf("  \033[1m%2d.\033[0m %-24s \033[1;32m%5.1f%%\033[0m  (sale avg $%.0f, rent avg $%.0f)\n",
			i+1, truncate(roi.Neighborhood, 22), roi.AnnualROIPercent,
			roi.AvgSalePrice, roi.AvgMonthlyRent)
	}
}

// PrintRecommendation prints the ranked investment recommendation.
func (r *Reporter) PrintRecommendation(rec *models.Recommendation) {
	sep := strings.Repeat("═", 58)
	thin := strings.Repeat("─", 58)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  💰 INVESTMENT ANALYSIS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("  Budget          : USD %.0f – %.0f\n", rec.BudgetMin, rec.BudgetMax)
	fmt.Printf("  Risk tolerance  : %s\n", rec.RiskTolerance)
	if rec.LocationFilter != "" {
		fmt.Printf("  Location filter : %s\n", rec.LocationFilter)
	}
	fmt.Printf("  Candidates      : %d\n\n", rec.CandidateCount)

	fmt.Printf("\033[1;33m  Top %d Opportunities\033[0m\n", len(rec.Top))
	fmt.Printf("  %s\n", thin)
	for i, p := range rec.Top {
		fmt.Printf("  \033[1m%2d.\033[0m %-20s $%-9.0f %4.0f m²  ROI %4.1f%%  score \033[1;32m%.3f\033[0m\n",
			i+1, truncate(p.Neighborhood, 18), p.Price, p.AreaM2,
			p.AnnualROIPercent, p.InvestmentScore)
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Neighborhood Rollup (top 5)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	rollups := rec.ByNeighborhood
	if len(rollups) > 5 {
		rollups = rollups[:5]
	}
	for _, n := range rollups {
		fmt.Printf("  %-20s mean %.3f  max %.3f  n=%-3d  avg $%.0f\n",
			truncate(n.Neighborhood, 18), n.MeanScore, n.MaxScore, n.Count, n.MeanPrice)
	}
	fmt.Println()

	best := rec.Best
	fmt.Printf("\033[1;33m  Best Opportunity\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Neighborhood : %s\n", best.Neighborhood)
	fmt.Printf("  Price        : \033[1;32mUSD %.0f\033[0m (%s)\n", best.Price, best.PriceTier)
	fmt.Printf("  Size         : %.0f m² (%s)\n", best.AreaM2, best.SizeTier)
	fmt.Printf("  Est. ROI     : %.1f%% / year\n", best.AnnualROIPercent)
	fmt.Printf("  Score        : \033[1;32m%.3f\033[0m\n", best.InvestmentScore)
	if best.URL != "" {
		fmt.Printf("  URL          : %s\n", best.URL)
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
