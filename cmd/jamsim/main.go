// Command jamsim runs one channel-jamming-vs-honest-traffic simulation
// scenario over a network snapshot and reports the fee-coefficient
// sweep's breakeven point.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lnjamming/ln-jamming-sim/jamconfig"
	"github.com/lnjamming/ln-jamming-sim/jamlog"
	"github.com/lnjamming/ln-jamming-sim/network"
	"github.com/lnjamming/ln-jamming-sim/report"
	"github.com/lnjamming/ln-jamming-sim/routing"
	"github.com/lnjamming/ln-jamming-sim/scenario"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "jamsim:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := jamconfig.LoadConfig(args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := jamlog.InitLoggingFromLevelString(cfg.LogLevel); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}

	var seed uint64
	if cfg.Seed != 0 {
		seed = uint64(cfg.Seed)
	} else {
		seed = uint64(time.Now().UnixNano())
	}

	f, err := os.Open(cfg.Snapshot)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	model, err := network.LoadSnapshot(f, cfg.DefaultNumSlotsPerChannel)
	f.Close()
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	sc, err := buildScenario(cfg, model)
	if err != nil {
		return fmt.Errorf("building scenario %s: %w", cfg.Scenario, err)
	}

	if cfg.TargetChannelCapacity != 0 {
		sc.SetTargetChannelCapacity(float64(cfg.TargetChannelCapacity))
	}

	result := sc.Run(scenario.RunParams{
		Duration:                      float64(cfg.Duration),
		UpfrontBaseCoeffs:             cfg.UpfrontBaseCoeffRange,
		UpfrontRateCoeffs:             cfg.UpfrontRateCoeffRange,
		MaxNumAttemptsPerRouteHonest:  cfg.MaxNumAttemptsHonest,
		MaxNumAttemptsPerRouteJamming: cfg.MaxNumAttemptsJamming,
		MaxNumRoutesHonest:            cfg.MaxNumRoutesHonest,
		NumRunsPerSimulation:          cfg.NumRunsPerSimulation,
		MaxRouteLength:                cfg.MaxRouteLength,
		HonestPaymentsPerSecond:       cfg.HonestPaymentsPerSecond,
		NumJammingBatches:             cfg.NumJammingBatches,
		MaxTargetHopsPerRoute:         cfg.MaxTargetNodePairsPerRoute,
		NormalizeForDuration:          true,
		ExtrapolateJammingRevenues:    cfg.ExtrapolateJammingRevenues,
		Seed:                          seed,
	})

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	stamp := strconv.FormatInt(time.Now().Unix(), 10)
	if cfg.JSON {
		path := filepath.Join(cfg.OutputDir, stamp+"-"+cfg.Scenario+".json")
		if err := report.WriteJSON(result, path); err != nil {
			return fmt.Errorf("writing JSON report: %w", err)
		}
	}
	if cfg.CSV {
		path := filepath.Join(cfg.OutputDir, stamp+"-"+cfg.Scenario+".csv")
		if err := report.WriteCSV(result, path); err != nil {
			return fmt.Errorf("writing CSV report: %w", err)
		}
	}

	targetNodes := append([]string{}, sc.TargetNode)
	for _, p := range sc.TargetNodePairs {
		targetNodes = append(targetNodes, p[0], p[1])
	}
	report.PrintTable(os.Stdout, result, targetNodes, cfg.CompactOutput)

	return nil
}

// buildScenario constructs the named hardcoded scenario the same way the
// reference driver script's main() branches on --scenario, since none of
// these node names, target hops, or routing constraints can be derived
// from the snapshot file alone.
func buildScenario(cfg *jamconfig.Config, model *network.Model) (*scenario.Scenario, error) {
	opts := scenario.Options{
		NumSlotsPerChannel:   cfg.DefaultNumSlotsPerChannel,
		SetDefaultSuccessFee: true,
		DefaultSuccessBase:   cfg.SuccessBaseFee,
		DefaultSuccessRate:   cfg.SuccessFeeRate,
		NumTargetNodePairs:   cfg.NumTargetNodePairs,
	}

	switch cfg.Scenario {
	case "abcd":
		opts.HonestSenders = []string{"Alice"}
		opts.HonestReceivers = []string{"Dave"}
		opts.TargetNodePairs = []routing.TargetHop{{"Bob", "Charlie"}}
		opts.HonestMustRouteViaNodes = []string{"Bob", "Charlie"}
		opts.JammerMustRouteViaNodes = []string{"Bob", "Charlie"}

	case "wheel-hardcoded-route":
		opts.HonestSenders = []string{"Alice", "Charlie"}
		opts.HonestReceivers = []string{"Bob", "Dave"}
		opts.TargetNodePairs = []routing.TargetHop{
			{"Alice", "Hub"}, {"Hub", "Bob"}, {"Charlie", "Hub"}, {"Hub", "Dave"},
		}
		opts.JammerSendsToNodes = []string{"Alice"}
		opts.JammerReceivesFromNodes = []string{"Dave"}
		opts.HonestMustRouteViaNodes = []string{"Hub"}
		opts.JammerMustRouteViaNodes = []string{"Alice", "Hub", "Bob", "Charlie", "Hub", "Dave"}

	case "wheel":
		opts.HonestSenders = []string{"Alice", "Charlie"}
		opts.HonestReceivers = []string{"Bob", "Dave"}
		opts.TargetNode = "Hub"
		opts.HonestMustRouteViaNodes = []string{"Hub"}

	case "real":
		const smallNode = "0263a6d2f0fed7b1e14d01a0c6a6a1c0fae6e0907c0ac415574091e7839a00405b"
		opts.TargetNode = smallNode
		opts.HonestMustRouteViaNodes = []string{smallNode}

	case "virtual":
		const targetNode = "0263a6d2f0fed7b1e14d01a0c6a6a1c0fae6e0907c0ac415574091e7839a00405b"
		neighbors := []string{
			"034502648ec5f4c673830e33984e72a03185f9df6758977fc3c67fade393d400e5",
			"03e5589e3801586ada3515728c4602716b62f0a50ca59f1b348a6c846d55eee4a5",
			"0391b71b1e30cce2f0e25dbe4ce848c19e159d1677a8368d1eb3e50a34d14f74f4",
			"029b17d9d393bb0a7db2cf14f96309b01e764f0553a5a50791e6d55202d9279191",
			"024a8228d764091fce2ed67e1a7404f83e38ea3c7cb42030a2789e73cf3b341365",
		}
		opts.HonestSenders = neighbors
		opts.HonestReceivers = neighbors
		opts.TargetNode = targetNode
		for _, n := range neighbors {
			opts.TargetNodePairs = append(opts.TargetNodePairs,
				routing.TargetHop{targetNode, n}, routing.TargetHop{n, targetNode})
		}
		opts.HonestMustRouteViaNodes = []string{targetNode}

	default:
		return nil, fmt.Errorf("unrecognized scenario %q", cfg.Scenario)
	}

	return scenario.New(cfg.Scenario, model, opts)
}
