package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/lnjamming/ln-jamming-sim/scenario"
)

// PrintTable renders result as a console summary: one table of honest vs.
// jamming revenue at the watched nodes across the coefficient grid, with
// the breakeven row (if any) called out. compact, when true, restricts
// the node columns to targetNodes instead of every node that earned
// revenue, mirroring the driver script's --compact_output flag.
func PrintTable(w io.Writer, result scenario.Result, targetNodes []string, compact bool) {
	nodes := collectNodes(result)
	if compact && len(targetNodes) > 0 {
		nodes = targetNodes
	}

	jammingByCoeff := make(map[scenario.CoeffPoint]int)
	for i, r := range result.Jamming {
		jammingByCoeff[scenario.CoeffPoint{UpfrontBaseCoeff: r.UpfrontBaseCoeff, UpfrontRateCoeff: r.UpfrontRateCoeff}] = i
	}
	honestByCoeff := make(map[scenario.CoeffPoint]int, len(result.Honest))
	for i, r := range result.Honest {
		honestByCoeff[scenario.CoeffPoint{UpfrontBaseCoeff: r.UpfrontBaseCoeff, UpfrontRateCoeff: r.UpfrontRateCoeff}] = i
	}

	points := make([]scenario.CoeffPoint, 0, len(result.Honest))
	for _, r := range result.Honest {
		points = append(points, scenario.CoeffPoint{UpfrontBaseCoeff: r.UpfrontBaseCoeff, UpfrontRateCoeff: r.UpfrontRateCoeff})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].UpfrontBaseCoeff != points[j].UpfrontBaseCoeff {
			return points[i].UpfrontBaseCoeff < points[j].UpfrontBaseCoeff
		}
		return points[i].UpfrontRateCoeff < points[j].UpfrontRateCoeff
	})

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.Style().Format.Header = text.FormatDefault

	header := table.Row{"base coeff", "rate coeff", "breakeven", "ratio"}
	for _, n := range nodes {
		header = append(header, "h:"+n, "j:"+n)
	}
	t.AppendHeader(header)

	for _, point := range points {
		stats, ok := result.Breakeven.Stats[point]
		row := table.Row{
			fmt.Sprintf("%.4f", point.UpfrontBaseCoeff),
			fmt.Sprintf("%.4f", point.UpfrontRateCoeff),
		}
		if ok && stats.IsBreakeven {
			row = append(row, "yes")
		} else {
			row = append(row, "")
		}
		if ok && stats.HasRatio {
			row = append(row, fmt.Sprintf("%.3f", stats.JammingToHonestRevenueRatio))
		} else {
			row = append(row, "n/a")
		}

		honest := result.Honest[honestByCoeff[point]]
		jIdx, hasJam := jammingByCoeff[point]

		for _, n := range nodes {
			row = append(row, fmt.Sprintf("%.2f", honest.Revenues[n]))
			if hasJam {
				row = append(row, fmt.Sprintf("%.2f", result.Jamming[jIdx].Revenues[n]))
			} else {
				row = append(row, "")
			}
		}
		t.AppendRow(row)

		if ok && stats.IsBreakeven {
			t.AppendSeparator()
		}
	}

	t.Render()
}
