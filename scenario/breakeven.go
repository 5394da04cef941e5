package scenario

import (
	"github.com/lnjamming/ln-jamming-sim/simulator"
)

// CoeffPoint is one point on a fee-coefficient sweep.
type CoeffPoint struct {
	UpfrontBaseCoeff float64
	UpfrontRateCoeff float64
}

// BreakevenPointStats is the per-coefficient-pair breakeven verdict: how
// jamming revenue at the watched nodes compares to honest revenue there
// under the same fee coefficients.
type BreakevenPointStats struct {
	IsBreakeven                 bool
	JammingToHonestRevenueRatio float64
	HasRatio                    bool
	HonestRevenue               float64
	JammingRevenue              float64
}

// BreakevenStats summarizes a full sweep: the first coefficient pair (in
// sweep order) at which jamming revenue at the watched nodes overtakes
// honest revenue there, plus the per-point verdict across the whole grid.
type BreakevenStats struct {
	Found           bool
	BreakevenCoeffs CoeffPoint
	Stats           map[CoeffPoint]BreakevenPointStats
}

// computeBreakevenStats matches honest and jamming series results by
// coefficient pair and, at each, sums the revenue of targetNodes on both
// sides of the ledger. jamming_to_honest_revenue_ratio is left unset
// (HasRatio=false) when the honest side earned nothing at that point,
// since the ratio is undefined there -- following the reference
// implementation, a zero-honest-revenue point is never considered the
// breakeven point even if jamming revenue there is positive.
func computeBreakevenStats(honest, jamming []simulator.SeriesResult, targetNodes []string) BreakevenStats {
	jammingByCoeff := make(map[CoeffPoint]simulator.SeriesResult, len(jamming))
	for _, r := range jamming {
		jammingByCoeff[CoeffPoint{r.UpfrontBaseCoeff, r.UpfrontRateCoeff}] = r
	}

	result := BreakevenStats{Stats: make(map[CoeffPoint]BreakevenPointStats, len(honest))}
	for _, h := range honest {
		point := CoeffPoint{h.UpfrontBaseCoeff, h.UpfrontRateCoeff}
		j, ok := jammingByCoeff[point]
		if !ok {
			continue
		}

		honestRevenue := sumRevenueAt(h.Revenues, targetNodes)
		jammingRevenue := sumRevenueAt(j.Revenues, targetNodes)

		stats := BreakevenPointStats{
			HonestRevenue:  honestRevenue,
			JammingRevenue: jammingRevenue,
		}
		if honestRevenue != 0 {
			stats.HasRatio = true
			stats.JammingToHonestRevenueRatio = jammingRevenue / honestRevenue
			stats.IsBreakeven = stats.JammingToHonestRevenueRatio > 1
		}
		result.Stats[point] = stats

		if stats.IsBreakeven && !result.Found {
			result.Found = true
			result.BreakevenCoeffs = point
		}
	}
	return result
}

func sumRevenueAt(revenues map[string]float64, nodes []string) float64 {
	var total float64
	for _, n := range nodes {
		total += revenues[n]
	}
	return total
}
