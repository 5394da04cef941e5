package scenario

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lnjamming/ln-jamming-sim/chanmodel"
	"github.com/lnjamming/ln-jamming-sim/network"
)

// buildWheel wires a small star around Hub: Alice-Hub, Bob-Hub, Hub-Dave,
// every channel at 2 slots with a nominal fee schedule, large enough
// capacity that no balance failure is ever forced.
func buildWheel() *network.Model {
	m := network.NewModel(2)
	hops := []struct{ u, d string }{
		{"Alice", "Hub"},
		{"Bob", "Hub"},
		{"Hub", "Dave"},
	}
	for _, h := range hops {
		cd := chanmodel.NewChannelInDirection(2, 1, 0.01, 1, 0.01)
		m.AddChannel(h.u, h.d, h.u+"-"+h.d, 1_000_000, cd, cd)
	}
	return m
}

func TestNewDerivesHonestEndpointsAndTargetPairsFromTargetNode(t *testing.T) {
	m := buildWheel()
	s, err := New("wheel", m, Options{
		NumSlotsPerChannel:   2,
		SetDefaultSuccessFee: true,
		DefaultSuccessBase:   1,
		DefaultSuccessRate:   5e-6,
		TargetNode:           "Hub",
	})
	require.NoError(t, err)

	require.ElementsMatch(t, []string{"Alice", "Bob", "Dave"}, s.HonestSenders)
	require.ElementsMatch(t, []string{"Alice", "Bob", "Dave"}, s.HonestReceivers)
	require.Len(t, s.TargetNodePairs, 6) // 3 neighbors, both directions each

	// The jammer's pseudo-endpoints must now have channels into/out of
	// every one of Hub's neighbors.
	for _, n := range []string{"Alice", "Bob", "Dave"} {
		_, ok := m.Hop(JammerSenderName, n)
		require.True(t, ok, "missing jammer-sender channel to %s", n)
		_, ok = m.Hop(n, JammerReceiverName)
		require.True(t, ok, "missing jammer-receiver channel from %s", n)
	}
}

func TestNewRejectsMissingTargetInformation(t *testing.T) {
	m := buildWheel()
	_, err := New("wheel", m, Options{NumSlotsPerChannel: 2})
	require.Error(t, err)
}

func TestRunProducesOnePointPerCoefficientPairWithMatchingBreakevenGrid(t *testing.T) {
	m := buildWheel()
	s, err := New("wheel", m, Options{
		NumSlotsPerChannel:   2,
		SetDefaultSuccessFee: true,
		DefaultSuccessBase:   1,
		DefaultSuccessRate:   5e-6,
		TargetNode:           "Hub",
	})
	require.NoError(t, err)

	result := s.Run(RunParams{
		Duration:                      20,
		UpfrontBaseCoeffs:             []float64{0, 1},
		UpfrontRateCoeffs:             []float64{0, 1},
		MaxNumAttemptsPerRouteHonest:  1,
		MaxNumAttemptsPerRouteJamming: 50,
		MaxNumRoutesHonest:            2,
		NumRunsPerSimulation:          2,
		NormalizeForDuration:          true,
		Seed:                          1,
	})

	require.Len(t, result.Honest, 4)
	require.Len(t, result.Jamming, 4)
	require.Len(t, result.Breakeven.Stats, 4)

	for _, h := range result.Honest {
		point := CoeffPoint{h.UpfrontBaseCoeff, h.UpfrontRateCoeff}
		_, ok := result.Breakeven.Stats[point]
		require.True(t, ok, "missing breakeven stats for %v", point)
	}
}
