package jamconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigAppliesDerivedDefaults(t *testing.T) {
	cfg, err := LoadConfig([]string{
		"--scenario", "wheel",
		"--snapshot", "./snapshots/listchannels_wheel.json",
	})
	require.NoError(t, err)

	require.Equal(t, DefaultNumSlotsPerChannel+10, cfg.MaxNumAttemptsJamming)
	require.Equal(t, DefaultMaxRouteLength-3, cfg.MaxTargetNodePairsPerRoute)
	require.Len(t, cfg.UpfrontBaseCoeffRange, 11)
	require.Equal(t, []float64{0}, cfg.UpfrontRateCoeffRange)
	require.Equal(t, "wheel", cfg.Scenario)
}

func TestLoadConfigRejectsBadLogLevel(t *testing.T) {
	_, err := LoadConfig([]string{
		"--scenario", "wheel",
		"--snapshot", "./snapshots/listchannels_wheel.json",
		"--log_level", "verbose",
	})
	require.Error(t, err)
}

func TestLoadConfigRespectsExplicitCoeffRanges(t *testing.T) {
	cfg, err := LoadConfig([]string{
		"--scenario", "abcd",
		"--snapshot", "./snapshots/listchannels_abcd.json",
		"--upfront_base_coeff_range", "0",
		"--upfront_base_coeff_range", "0.5",
		"--upfront_base_coeff_range", "1",
		"--max_num_attempts_jamming", "25",
	})
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0.5, 1}, cfg.UpfrontBaseCoeffRange)
	require.Equal(t, 25, cfg.MaxNumAttemptsJamming)
}
