package chanmodel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirectionBetween(t *testing.T) {
	require.Equal(t, Alph, DirectionBetween("Alice", "Bob"))
	require.Equal(t, NonAlph, DirectionBetween("Bob", "Alice"))
	require.Equal(t, Alph.Opposite(), NonAlph)
}

func TestCheapestChannelReallyCanForward(t *testing.T) {
	hop := NewHop()

	cheap := NewChannelInDirection(5, 0, 0, 0, 0)
	expensive := NewChannelInDirection(5, 10, 0, 0, 0)

	hop.AddChannel(NewChannel("101x1x0", 1000, cheap, cheap))
	hop.AddChannel(NewChannel("102x1x0", 1000, expensive, expensive))

	best, ok := hop.CheapestChannelReallyCanForward(Alph, 0, 100)
	require.True(t, ok)
	require.Equal(t, "101x1x0", best.CID)
}

func TestCheapestChannelSkipsJammedOrDisabled(t *testing.T) {
	hop := NewHop()

	jammed := NewChannelInDirection(1, 0, 0, 0, 0)
	jammed.StoreHTLC(100, InFlightHTLC{})

	open := NewChannelInDirection(1, 1, 0, 0, 0)

	hop.AddChannel(NewChannel("jammed", 1000, jammed, jammed))
	hop.AddChannel(NewChannel("open", 1000, open, open))

	best, ok := hop.CheapestChannelReallyCanForward(Alph, 0, 10)
	require.True(t, ok)
	require.Equal(t, "open", best.CID)

	// MaybeCanForward ignores jamming status entirely.
	bestMaybe, ok := hop.CheapestChannelMaybeCanForward(Alph, 10)
	require.True(t, ok)
	require.Equal(t, "jammed", bestMaybe.CID)
}

func TestHopCanForwardCannotForward(t *testing.T) {
	hop := NewHop()
	cd := NewChannelInDirection(1, 0, 0, 0, 0)
	cd.StoreHTLC(10, InFlightHTLC{})
	hop.AddChannel(NewChannel("a", 1000, cd, cd))

	require.True(t, hop.CannotForward(Alph, 5))
	require.False(t, hop.CanForward(Alph, 5))
	require.True(t, hop.CanForward(Alph, 10))
}

func TestMaybeVsReallyCanForwardCapacity(t *testing.T) {
	cd := NewChannelInDirection(1, 0, 0, 0, 0)
	ch := NewChannel("a", 50, cd, cd)

	require.False(t, ch.MaybeCanForward(Alph, 100))
	require.True(t, ch.MaybeCanForward(Alph, 50))
	require.False(t, ch.ReallyCanForward(Alph, 0, 100))
}
