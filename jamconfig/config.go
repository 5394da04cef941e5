// Package jamconfig parses the command line flags that configure one
// jamming-simulation run: which scenario to build, the snapshot to load
// it from, the fee-coefficient grid to sweep, and the per-workload
// simulation limits.
package jamconfig

import (
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Default values mirroring the reference driver script's argparse
// defaults.
const (
	DefaultDuration             = 60
	DefaultNumRunsPerSimulation = 10
	DefaultSuccessBaseFee       = 1
	DefaultSuccessFeeRate       = 5e-6
	DefaultNumSlotsPerChannel   = 483
	DefaultMaxNumAttemptsHonest = 3
	DefaultMaxNumRoutesHonest   = 10
	DefaultMaxRouteLength       = 14
	DefaultHonestPaymentsPerSec = 0.1
	DefaultLogLevel             = "info"
)

// Config is the full set of flags one jamsim invocation accepts.
type Config struct {
	Scenario string `long:"scenario" description:"which hardcoded scenario to build (abcd, wheel, wheel-hardcoded-route, real, virtual)" required:"true"`
	Snapshot string `long:"snapshot" description:"path to a listchannels-style JSON snapshot file" required:"true"`

	Duration             int `long:"duration" default:"60" description:"simulation duration in seconds"`
	NumRunsPerSimulation int `long:"num_runs_per_simulation" default:"10" description:"number of simulation runs per coefficient pair"`

	SuccessBaseFee float64 `long:"success_base_fee" default:"1" description:"success-case base fee in satoshis, same for every channel"`
	SuccessFeeRate float64 `long:"success_fee_rate" default:"0.000005" description:"success-case fee rate per unit amount, same for every channel"`

	DefaultNumSlotsPerChannel int `long:"default_num_slots_per_channel_in_direction" default:"483" description:"slot-queue capacity for honest channels; the jammer's own channels get more"`

	MaxNumAttemptsHonest  int `long:"max_num_attempts_honest" default:"3" description:"retry attempts per honest payment on balance/deliberate failure"`
	MaxNumAttemptsJamming int `long:"max_num_attempts_jamming" description:"retry attempts per jam route; defaults to default_num_slots_per_channel_in_direction + 10"`
	MaxNumRoutesHonest    int `long:"max_num_routes_honest" default:"10" description:"distinct routes tried per honest payment"`

	NoBalanceFailures bool `long:"no_balance_failures" description:"parsed but not applied: jamsim does not pass it to the simulator, so the random balance-failure roll stays on (an amount above channel capacity fails either way)"`

	UpfrontBaseCoeffRange []float64 `long:"upfront_base_coeff_range" description:"upfront base-fee coefficients to sweep, as multiples of the success base fee"`
	UpfrontRateCoeffRange []float64 `long:"upfront_rate_coeff_range" description:"upfront rate-fee coefficients to sweep, as multiples of the success fee rate"`

	TargetChannelCapacity int64 `long:"target_channel_capacity" description:"force every target-hop channel's capacity to this value"`

	HonestPaymentsPerSecond float64 `long:"honest_payments_per_second" default:"0.1" description:"mean honest payment arrival rate"`

	NumJammingBatches  int `long:"num_jamming_batches" description:"number of jamming batches to run; defaults to ceil(duration / JAM_DELAY)"`
	NumTargetNodePairs int `long:"num_target_node_pairs" description:"number of target node pairs to sample around the target node; 0 means all adjacent pairs"`

	MaxTargetNodePairsPerRoute int `long:"max_target_node_pairs_per_route" description:"target node pairs a single jamming route must try to cover"`
	MaxRouteLength             int `long:"max_route_length" default:"14" description:"maximum number of nodes in any route"`

	ExtrapolateJammingRevenues bool `long:"extrapolate_jamming_revenues" description:"derive the jamming revenue grid from a single run instead of a full sweep"`
	CompactOutput              bool `long:"compact_output" description:"only show console-table revenues for the target node and the endpoints of the target hops"`

	Seed int64 `long:"seed" description:"seed for randomness initialization; unset means nondeterministic"`

	LogLevel string `long:"log_level" default:"info" description:"logging verbosity: critical, error, warning, info, or debug"`

	OutputDir string `long:"output_dir" default:"results" description:"directory reports are written to"`
	JSON      bool   `long:"json" description:"also write a JSON report"`
	CSV       bool   `long:"csv" description:"also write a CSV report"`
}

// LoadConfig parses args (typically os.Args[1:]) into a Config, applying
// derived defaults that depend on other fields (max_num_attempts_jamming
// on default_num_slots_per_channel_in_direction, for instance) the same
// way the reference driver script computes them inline.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if cfg.MaxNumAttemptsJamming == 0 {
		cfg.MaxNumAttemptsJamming = cfg.DefaultNumSlotsPerChannel + 10
	}
	if cfg.MaxTargetNodePairsPerRoute == 0 {
		cfg.MaxTargetNodePairsPerRoute = cfg.MaxRouteLength - 3
	}
	if len(cfg.UpfrontBaseCoeffRange) == 0 {
		cfg.UpfrontBaseCoeffRange = defaultUpfrontBaseCoeffRange()
	}
	if len(cfg.UpfrontRateCoeffRange) == 0 {
		cfg.UpfrontRateCoeffRange = []float64{0}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LogLevel {
	case "critical", "error", "warning", "info", "debug":
	default:
		return fmt.Errorf("jamconfig: unrecognized log_level %q", c.LogLevel)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("jamconfig: duration must be positive, got %d", c.Duration)
	}
	return nil
}

// defaultUpfrontBaseCoeffRange mirrors DEFAULT_UPFRONT_BASE_COEFF_RANGE:
// [0, 0.0001, ..., 0.001].
func defaultUpfrontBaseCoeffRange() []float64 {
	out := make([]float64, 0, 11)
	for n := 0; n <= 10; n++ {
		out = append(out, float64(n)/10000)
	}
	return out
}
