package services

import (
	"sort"

	"inmobiliaria-analyzer/models"
	"inmobiliaria-analyzer/utils"
)

// MarketAnalyzer computes per-neighborhood market metrics and the annual ROI
// table from a cleaned property table. All methods are pure: they derive new
// structures and never modify their input.
type MarketAnalyzer struct {
	logger *utils.Logger
}

// NewMarketAnalyzer creates a MarketAnalyzer with the given logger.
func NewMarketAnalyzer(logger *utils.Logger) *MarketAnalyzer {
	return &MarketAnalyzer{logger: logger}
}

// MarketMetrics groups the table by neighborhood, separately for sale and
// rent listings, and returns the per-group statistics sorted by name.
func (a *MarketAnalyzer) MarketMetrics(props []models.Property) (sale, rent []models.NeighborhoodStats) {
	sale = a.metricsFor(props, models.OperationSale)
	rent = a.metricsFor(props, models.OperationRent)
	a.logger.Info("[metrics] Market metrics computed — %d sale neighborhoods, %d rent neighborhoods",
		len(sale), len(rent))
	return sale, rent
}

func (a *MarketAnalyzer) metricsFor(props []models.Property, op models.Operation) []models.NeighborhoodStats {
	groups := make(map[string][]models.Property)
	for _, p := range props {
		if p.Operation == op {
			groups[p.Neighborhood] = append(groups[p.Neighborhood], p)
		}
	}

	stats := make([]models.NeighborhoodStats, 0, len(groups))
	for name, group := range groups {
		prices := make([]float64, len(group))
		ppm2 := make([]float64, len(group))
		areas := make([]float64, len(group))
		for i, p := range group {
			prices[i] = p.Price
			ppm2[i] = p.PricePerM2
			areas[i] = p.AreaM2
		}

		stats = append(stats, models.NeighborhoodStats{
			Neighborhood:     name,
			Count:            len(group),
			PriceMean:        round2(mean(prices)),
			PriceMedian:      round2(median(prices)),
			PriceStdDev:      round2(stddev(prices)),
			PricePerM2Mean:   round2(mean(ppm2)),
			PricePerM2Median: round2(median(ppm2)),
			PricePerM2StdDev: round2(stddev(ppm2)),
			AreaMean:         round2(mean(areas)),
			AreaMedian:       round2(median(areas)),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Neighborhood < stats[j].Neighborhood
	})
	return stats
}

// ComputeROI estimates the annual rental yield per neighborhood from the
// average sale price and average monthly rent of its listings. This is a
// coarse neighborhood-wide estimate, not a matched-comparables one.
// Neighborhoods missing from either the sale or the rent subset are excluded;
// a zero sale average (cannot happen within cleaning bounds) is skipped
// rather than producing an infinite yield. The result is sorted descending
// by annual ROI.
func (a *MarketAnalyzer) ComputeROI(props []models.Property) []models.NeighborhoodROI {
	saleAvg := avgPriceByNeighborhood(props, models.OperationSale)
	rentAvg := avgPriceByNeighborhood(props, models.OperationRent)

	rois := make([]models.NeighborhoodROI, 0, len(saleAvg))
	for name, sale := range saleAvg {
		rent, ok := rentAvg[name]
		if !ok || sale == 0 {
			continue
		}
		rois = append(rois, models.NeighborhoodROI{
			Neighborhood:     name,
			AvgSalePrice:     sale,
			AvgMonthlyRent:   rent,
			AnnualROIPercent: (rent * 12 / sale) * 100,
		})
	}

	sort.Slice(rois, func(i, j int) bool {
		if rois[i].AnnualROIPercent != rois[j].AnnualROIPercent {
			return rois[i].AnnualROIPercent > rois[j].AnnualROIPercent
		}
		return rois[i].Neighborhood < rois[j].Neighborhood
	})

	a.logger.Info("[metrics] ROI computed for %d neighborhoods (of %d with sale listings)",
		len(rois), len(saleAvg))
	return rois
}

func avgPriceByNeighborhood(props []models.Property, op models.Operation) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, p := range props {
		if p.Operation == op {
			sums[p.Neighborhood] += p.Price
			counts[p.Neighborhood]++
		}
	}
	avgs := make(map[string]float64, len(sums))
	for name, sum := range sums {
		avgs[name] = sum / float64(counts[name])
	}
	return avgs
}
