// Package report writes a Scenario's simulation output in the three
// shapes the reference driver script supports: a JSON dump, a CSV file,
// and a console summary table.
package report

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/lnjamming/ln-jamming-sim/scenario"
	"github.com/lnjamming/ln-jamming-sim/simulator"
)

// jsonDoc is the on-disk shape of the JSON report: a flattened view of
// scenario.Result that marshals cleanly, since scenario.BreakevenStats
// keys its point map by a struct, which encoding/json can't marshal as
// an object key directly.
type jsonDoc struct {
	Params        scenario.RunParams  `json:"params"`
	Honest        []seriesDoc         `json:"honest"`
	Jamming       []seriesDoc         `json:"jamming"`
	BreakevenGrid []breakevenPointDoc `json:"breakeven_grid"`
	Breakeven     breakevenSummaryDoc `json:"breakeven"`
}

type seriesDoc struct {
	UpfrontBaseCoeff   float64            `json:"upfront_base_coeff"`
	UpfrontRateCoeff   float64            `json:"upfront_rate_coeff"`
	NumSent            float64            `json:"num_sent"`
	NumFailed          float64            `json:"num_failed"`
	NumReachedReceiver float64            `json:"num_reached_receiver"`
	NumHitTargetNode   float64            `json:"num_hit_target_node"`
	Revenues           map[string]float64 `json:"revenues"`
}

type breakevenPointDoc struct {
	UpfrontBaseCoeff            float64 `json:"upfront_base_coeff"`
	UpfrontRateCoeff            float64 `json:"upfront_rate_coeff"`
	IsBreakeven                 bool    `json:"is_breakeven"`
	HasRatio                    bool    `json:"has_ratio"`
	JammingToHonestRevenueRatio float64 `json:"jamming_to_honest_revenue_ratio"`
}

type breakevenSummaryDoc struct {
	Found            bool    `json:"found"`
	UpfrontBaseCoeff float64 `json:"upfront_base_coeff"`
	UpfrontRateCoeff float64 `json:"upfront_rate_coeff"`
}

func toSeriesDoc(r simulator.SeriesResult) seriesDoc {
	return seriesDoc{
		UpfrontBaseCoeff:   r.UpfrontBaseCoeff,
		UpfrontRateCoeff:   r.UpfrontRateCoeff,
		NumSent:            r.Stats.NumSent,
		NumFailed:          r.Stats.NumFailed,
		NumReachedReceiver: r.Stats.NumReachedReceiver,
		NumHitTargetNode:   r.Stats.NumHitTargetNode,
		Revenues:           r.Revenues,
	}
}

func toJSONDoc(result scenario.Result) jsonDoc {
	doc := jsonDoc{
		Params: result.Params,
		Breakeven: breakevenSummaryDoc{
			Found:            result.Breakeven.Found,
			UpfrontBaseCoeff: result.Breakeven.BreakevenCoeffs.UpfrontBaseCoeff,
			UpfrontRateCoeff: result.Breakeven.BreakevenCoeffs.UpfrontRateCoeff,
		},
	}
	for _, r := range result.Honest {
		doc.Honest = append(doc.Honest, toSeriesDoc(r))
	}
	for _, r := range result.Jamming {
		doc.Jamming = append(doc.Jamming, toSeriesDoc(r))
	}
	for point, stats := range result.Breakeven.Stats {
		doc.BreakevenGrid = append(doc.BreakevenGrid, breakevenPointDoc{
			UpfrontBaseCoeff:            point.UpfrontBaseCoeff,
			UpfrontRateCoeff:            point.UpfrontRateCoeff,
			IsBreakeven:                 stats.IsBreakeven,
			HasRatio:                    stats.HasRatio,
			JammingToHonestRevenueRatio: stats.JammingToHonestRevenueRatio,
		})
	}
	sortByCoeffs(doc.BreakevenGrid)
	return doc
}

func sortByCoeffs(points []breakevenPointDoc) {
	sort.Slice(points, func(i, j int) bool {
		a, b := points[i], points[j]
		if a.UpfrontBaseCoeff != b.UpfrontBaseCoeff {
			return a.UpfrontBaseCoeff < b.UpfrontBaseCoeff
		}
		return a.UpfrontRateCoeff < b.UpfrontRateCoeff
	})
}

// WriteJSON marshals result to path as indented JSON, mirroring
// results_to_json_file.
func WriteJSON(result scenario.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSONDoc(result))
}
