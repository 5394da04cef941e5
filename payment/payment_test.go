package payment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeSelector returns a fixed FeeFunctions pair for every hop, keyed by
// (from, to).
type fakeSelector struct {
	fees map[[2]string]FeeFunctions
}

func (f *fakeSelector) SelectFeeFunctions(u, d string, amount float64) (FeeFunctions, bool) {
	fns, ok := f.fees[[2]string{u, d}]
	return fns, ok
}

func linearFees(upfrontBase, upfrontRate, successBase, successRate float64) FeeFunctions {
	return FeeFunctions{
		Upfront: func(a float64) float64 { return upfrontBase + upfrontRate*a },
		Success: func(a float64) float64 { return successBase + successRate*a },
	}
}

// TestBodyForAmount is scenario S6 ("body for amount"): target 1000 with
// upfront fee f(a) = 0.01*a + 5 must adjust body down to 986.
func TestBodyForAmount(t *testing.T) {
	upfront := func(a float64) float64 { return 0.01*a + 5 }
	got := BodyForAmount(1000, upfront)
	require.InDelta(t, 986, got, 1)
}

// TestBuildWrappingLaw checks the layering invariant holds pairwise along a
// constructed payment: each wrap's body (= downstream.Amount) plus the
// downstream hop's own upfront fee equals the wrap's own Amount.
func TestBuildWrappingLaw(t *testing.T) {
	selector := &fakeSelector{fees: map[[2]string]FeeFunctions{
		{"A", "M"}: linearFees(5, 0.05, 6, 0.06),
		{"M", "C"}: linearFees(3, 0.03, 4, 0.04),
		{"C", "D"}: linearFees(1, 0.01, 2, 0.02),
	}}

	p, err := Build([]string{"A", "M", "C", "D"}, 100, 1, true, selector)
	require.NoError(t, err)
	require.NotNil(t, p)

	// Walk outer to inner, checking each adjacent pair.
	cur := p
	for cur.DownstreamPayment != nil {
		inner := cur.DownstreamPayment
		require.Equal(t, inner.Amount+inner.UpfrontFee, cur.Amount)
		cur = inner
	}
	// Innermost hop carries the terminal processing delay/result.
	require.Equal(t, "D", cur.DownstreamNode)
	require.True(t, cur.DesiredResult)
	require.Equal(t, 1.0, cur.ProcessingDelay)
}

func TestBuildRejectsShortRoute(t *testing.T) {
	selector := &fakeSelector{fees: map[[2]string]FeeFunctions{}}
	_, err := Build([]string{"A"}, 100, 1, true, selector)
	require.Error(t, err)
}

func TestBuildRejectsUnreachableHop(t *testing.T) {
	selector := &fakeSelector{fees: map[[2]string]FeeFunctions{}}
	_, err := Build([]string{"A", "B"}, 100, 1, true, selector)
	require.Error(t, err)
	var nfErr *NoForwardingChannelError
	require.ErrorAs(t, err, &nfErr)
}
