package chanmodel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEnsureFreeSlotsAtomic checks all-or-nothing admission: a full 2-slot
// queue holds one HTLC that has expired at t=0 and one that has not, so
// asking for 2 free slots at t=0 must fail and leave the queue untouched,
// including the expired HTLC that had to be popped and pushed back.
func TestEnsureFreeSlotsAtomic(t *testing.T) {
	cd := NewChannelInDirection(2, 0, 0, 0, 0)
	cd.StoreHTLC(0, InFlightHTLC{PaymentID: "a"})
	cd.StoreHTLC(1, InFlightHTLC{PaymentID: "b"})

	before := append(slotHeap{}, cd.slots...)

	ok, released := cd.EnsureFreeSlots(0, 2)
	require.False(t, ok)
	require.Nil(t, released)
	require.Equal(t, before, cd.slots)
	require.Equal(t, 2, cd.NumSlotsOccupied())
}

func TestEnsureFreeSlotsExpiresOutdated(t *testing.T) {
	cd := NewChannelInDirection(2, 0, 0, 0, 0)
	cd.StoreHTLC(5, InFlightHTLC{PaymentID: "early"})
	cd.StoreHTLC(10, InFlightHTLC{PaymentID: "late"})

	ok, released := cd.EnsureFreeSlots(5, 1)
	require.True(t, ok)
	require.Len(t, released, 1)
	require.Equal(t, "early", released[0].HTLC.PaymentID)
	require.Equal(t, 1, cd.NumSlotsOccupied())
}

func TestEnsureFreeSlotsNonStrictBoundary(t *testing.T) {
	cd := NewChannelInDirection(1, 0, 0, 0, 0)
	cd.StoreHTLC(3, InFlightHTLC{PaymentID: "x"})

	// resolution_time <= now is treated as expired, including equality.
	ok, released := cd.EnsureFreeSlots(3, 1)
	require.True(t, ok)
	require.Len(t, released, 1)
}

func TestPopHTLCReturnsMinimum(t *testing.T) {
	cd := NewChannelInDirection(5, 0, 0, 0, 0)
	cd.StoreHTLC(7, InFlightHTLC{PaymentID: "c"})
	cd.StoreHTLC(2, InFlightHTLC{PaymentID: "a"})
	cd.StoreHTLC(4, InFlightHTLC{PaymentID: "b"})

	var order []string
	for !cd.IsEmpty() {
		_, htlc := cd.PopHTLC()
		order = append(order, htlc.PaymentID)
	}
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestSlotBoundNeverExceedsMax(t *testing.T) {
	cd := NewChannelInDirection(3, 0, 0, 0, 0)
	for i := 0; i < 3; i++ {
		cd.StoreHTLC(float64(i), InFlightHTLC{})
		require.LessOrEqual(t, cd.NumSlotsOccupied(), cd.MaxSlots())
	}
	require.True(t, cd.IsFull())
	require.Panics(t, func() {
		cd.StoreHTLC(99, InFlightHTLC{})
	})
}

func TestIsJammed(t *testing.T) {
	cd := NewChannelInDirection(1, 0, 0, 0, 0)
	require.False(t, cd.IsJammed(0))

	cd.StoreHTLC(10, InFlightHTLC{})
	require.True(t, cd.IsJammed(5))
	require.False(t, cd.IsJammed(10))
	require.False(t, cd.IsJammed(11))

	cd.Enabled = false
	require.True(t, cd.IsJammed(11))
}

func TestTotalFeeAsymmetry(t *testing.T) {
	// upfront is computed on body+success-fee, not on body.
	cd := NewChannelInDirection(10, 0, 0.1, 1, 0)
	body := 100.0
	got := cd.TotalFee(body)
	wantSuccess := cd.SuccessFee(body)
	wantUpfront := cd.UpfrontFee(body + wantSuccess)
	require.Equal(t, wantSuccess+wantUpfront, got)
	require.NotEqual(t, cd.UpfrontFee(body)+wantSuccess, got)
}
