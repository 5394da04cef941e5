package report

import (
	"encoding/csv"
	"os"
	"sort"
	"strconv"

	"github.com/lnjamming/ln-jamming-sim/scenario"
	"github.com/lnjamming/ln-jamming-sim/simulator"
)

// WriteCSV writes result to path in the flattened row-per-coefficient-
// pair shape results_to_csv_file produces: a header block of scenario
// parameters and the breakeven coefficients, then one table per workload
// with one row per coefficient pair and one revenue column per node (the
// column named by the node's first 7 characters, prefixed h_ in the
// honest table and j_ in the jamming table, matching the reference
// script's column-naming scheme).
func WriteCSV(result scenario.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := writeParamsBlock(w, result); err != nil {
		return err
	}
	if err := writeBreakevenBlock(w, result); err != nil {
		return err
	}

	nodes := collectNodes(result)

	if err := writeSeriesBlock(w, "h", result.Honest, nodes); err != nil {
		return err
	}
	return writeSeriesBlock(w, "j", result.Jamming, nodes)
}

func writeParamsBlock(w *csv.Writer, result scenario.Result) error {
	rows := [][]string{
		{"duration", strconv.FormatFloat(result.Params.Duration, 'f', -1, 64)},
		{"num_runs_per_simulation", strconv.Itoa(result.Params.NumRunsPerSimulation)},
		{"max_route_length", strconv.Itoa(result.Params.MaxRouteLength)},
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Write([]string{})
}

func writeBreakevenBlock(w *csv.Writer, result scenario.Result) error {
	rows := [][]string{
		{"breakeven_found", strconv.FormatBool(result.Breakeven.Found)},
		{"breakeven_upfront_base_coeff", strconv.FormatFloat(result.Breakeven.BreakevenCoeffs.UpfrontBaseCoeff, 'f', -1, 64)},
		{"breakeven_upfront_rate_coeff", strconv.FormatFloat(result.Breakeven.BreakevenCoeffs.UpfrontRateCoeff, 'f', -1, 64)},
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Write([]string{})
}

func collectNodes(result scenario.Result) []string {
	seen := make(map[string]bool)
	var nodes []string
	add := func(revenues map[string]float64) {
		for n := range revenues {
			if !seen[n] {
				seen[n] = true
				nodes = append(nodes, n)
			}
		}
	}
	for _, r := range result.Honest {
		add(r.Revenues)
	}
	for _, r := range result.Jamming {
		add(r.Revenues)
	}
	sort.Strings(nodes)
	return nodes
}

func truncate7(s string) string {
	if len(s) <= 7 {
		return s
	}
	return s[:7]
}

func writeSeriesBlock(w *csv.Writer, prefix string, series []simulator.SeriesResult, nodes []string) error {
	header := []string{"upfront_base_coeff", "upfront_rate_coeff", "sent", "failed", "reached_receiver"}
	for _, n := range nodes {
		header = append(header, prefix+"_"+truncate7(n))
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range series {
		row := []string{
			strconv.FormatFloat(r.UpfrontBaseCoeff, 'f', -1, 64),
			strconv.FormatFloat(r.UpfrontRateCoeff, 'f', -1, 64),
			strconv.FormatFloat(r.Stats.NumSent, 'f', -1, 64),
			strconv.FormatFloat(r.Stats.NumFailed, 'f', -1, 64),
			strconv.FormatFloat(r.Stats.NumReachedReceiver, 'f', -1, 64),
		}
		for _, n := range nodes {
			row = append(row, strconv.FormatFloat(r.Revenues[n], 'f', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Write([]string{})
}
