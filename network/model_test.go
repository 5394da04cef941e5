package network

import (
	"testing"

	"github.com/lnjamming/ln-jamming-sim/chanmodel"
	"github.com/stretchr/testify/require"
)

func TestAddChannelAndHopLookup(t *testing.T) {
	m := NewModel(2)
	alph := chanmodel.NewChannelInDirection(2, 1, 0.01, 1, 0.01)
	nonAlph := chanmodel.NewChannelInDirection(2, 2, 0.02, 2, 0.02)
	m.AddChannel("Alice", "Bob", "100x1x0", 1000, alph, nonAlph)

	hop, ok := m.Hop("Bob", "Alice")
	require.True(t, ok)
	ch, ok := hop.Channel("100x1x0")
	require.True(t, ok)
	require.Equal(t, alph, ch.InDirection(chanmodel.Alph))
	require.Equal(t, nonAlph, ch.InDirection(chanmodel.NonAlph))

	require.Equal(t, []string{"Alice", "Bob"}, m.Nodes())
}

func TestSelectFeeFunctionsUsesCheapest(t *testing.T) {
	m := NewModel(2)
	cheap := chanmodel.NewChannelInDirection(2, 0, 0, 0, 0)
	expensive := chanmodel.NewChannelInDirection(2, 10, 0, 0, 0)
	m.AddChannel("Alice", "Bob", "a", 1000, cheap, cheap)
	m.AddChannel("Alice", "Bob", "b", 1000, expensive, expensive)

	fns, ok := m.SelectFeeFunctions("Alice", "Bob", 100)
	require.True(t, ok)
	require.Equal(t, 0.0, fns.Upfront(100))
}

func TestRoutingAdjacencyFiltersByCapacity(t *testing.T) {
	m := NewModel(2)
	small := chanmodel.NewChannelInDirection(2, 0, 0, 0, 0)
	m.AddChannel("Alice", "Bob", "a", 100, small, small)

	adj := m.RoutingAdjacencyForAmount(50)
	require.Contains(t, adj["Alice"], "Bob")
	require.Contains(t, adj["Bob"], "Alice")

	adjTooBig := m.RoutingAdjacencyForAmount(1000)
	require.NotContains(t, adjTooBig["Alice"], "Bob")
}

func TestRevenueLedger(t *testing.T) {
	m := NewModel(2)
	m.ensureNode("Alice")
	m.AddRevenue("Alice", Upfront, 5)
	m.AddRevenue("Alice", Success, -2)
	require.Equal(t, 5.0, m.GetRevenue("Alice", Upfront))
	require.Equal(t, -2.0, m.GetRevenue("Alice", Success))

	m.ResetRevenues()
	require.Equal(t, 0.0, m.GetRevenue("Alice", Upfront))
}

func TestSetFeeFunctionForAll(t *testing.T) {
	m := NewModel(2)
	cd := chanmodel.NewChannelInDirection(2, 1, 0.01, 1, 0.01)
	m.AddChannel("Alice", "Bob", "a", 1000, cd, cd)

	m.SetFeeFunctionForAll(Upfront, 5, 0.05)
	hop, _ := m.Hop("Alice", "Bob")
	ch, _ := hop.Channel("a")
	require.Equal(t, 5.0, ch.InDirection(chanmodel.Alph).UpfrontBase)
	require.Equal(t, 0.05, ch.InDirection(chanmodel.Alph).UpfrontRate)
}
