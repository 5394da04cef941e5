package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lnjamming/ln-jamming-sim/scenario"
	"github.com/lnjamming/ln-jamming-sim/simulator"
)

func sampleResult() scenario.Result {
	honest := []simulator.SeriesResult{
		{
			UpfrontBaseCoeff: 0,
			UpfrontRateCoeff: 0,
			Stats:            simulator.AggregateStats{NumSent: 10, NumFailed: 1, NumReachedReceiver: 9},
			Revenues:         map[string]float64{"Hub": 100},
		},
		{
			UpfrontBaseCoeff: 1,
			UpfrontRateCoeff: 0,
			Stats:            simulator.AggregateStats{NumSent: 10, NumFailed: 2, NumReachedReceiver: 8},
			Revenues:         map[string]float64{"Hub": 50},
		},
	}
	jamming := []simulator.SeriesResult{
		{
			UpfrontBaseCoeff: 0,
			UpfrontRateCoeff: 0,
			Stats:            simulator.AggregateStats{NumSent: 5, NumFailed: 0, NumReachedReceiver: 5},
			Revenues:         map[string]float64{"Hub": 20},
		},
		{
			UpfrontBaseCoeff: 1,
			UpfrontRateCoeff: 0,
			Stats:            simulator.AggregateStats{NumSent: 5, NumFailed: 0, NumReachedReceiver: 5},
			Revenues:         map[string]float64{"Hub": 80},
		},
	}

	stats := map[scenario.CoeffPoint]scenario.BreakevenPointStats{
		{UpfrontBaseCoeff: 0, UpfrontRateCoeff: 0}: {HasRatio: true, JammingToHonestRevenueRatio: 0.2, HonestRevenue: 100, JammingRevenue: 20},
		{UpfrontBaseCoeff: 1, UpfrontRateCoeff: 0}: {HasRatio: true, JammingToHonestRevenueRatio: 1.6, IsBreakeven: true, HonestRevenue: 50, JammingRevenue: 80},
	}

	return scenario.Result{
		Params: scenario.RunParams{
			Duration:             20,
			NumRunsPerSimulation: 2,
			MaxRouteLength:       14,
		},
		Honest:  honest,
		Jamming: jamming,
		Breakeven: scenario.BreakevenStats{
			Found:           true,
			BreakevenCoeffs: scenario.CoeffPoint{UpfrontBaseCoeff: 1, UpfrontRateCoeff: 0},
			Stats:           stats,
		},
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	result := sampleResult()
	path := filepath.Join(t.TempDir(), "out.json")

	require.NoError(t, WriteJSON(result, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc jsonDoc
	require.NoError(t, json.Unmarshal(raw, &doc))

	require.Len(t, doc.Honest, 2)
	require.Len(t, doc.Jamming, 2)
	require.True(t, doc.Breakeven.Found)
	require.Equal(t, 1.0, doc.Breakeven.UpfrontBaseCoeff)
	require.Len(t, doc.BreakevenGrid, 2)
}

func TestWriteCSVProducesExpectedSections(t *testing.T) {
	result := sampleResult()
	path := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, WriteCSV(result, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	var sawHonestHeader, sawJammingHeader bool
	for _, row := range rows {
		if len(row) > 0 && row[0] == "upfront_base_coeff" {
			if !sawHonestHeader {
				sawHonestHeader = true
				require.Contains(t, row, "h_Hub")
			} else {
				sawJammingHeader = true
				require.Contains(t, row, "j_Hub")
			}
		}
	}
	require.True(t, sawHonestHeader)
	require.True(t, sawJammingHeader)
}

func TestPrintTableDoesNotPanicAndListsBreakeven(t *testing.T) {
	result := sampleResult()
	var buf bytes.Buffer

	PrintTable(&buf, result, []string{"Hub"}, true)

	out := buf.String()
	require.Contains(t, out, "h:Hub")
	require.Contains(t, out, "j:Hub")
	require.Contains(t, out, "yes")
}
