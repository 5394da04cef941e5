package chanmodel

import (
	"container/heap"
	"math/rand"
)

// ReleasedHTLC pairs an HTLC with the resolution time it was stored under,
// as popped out of a slot queue.
type ReleasedHTLC struct {
	ResolutionTime float64
	HTLC           InFlightHTLC
}

// slotEntry is one element of the bounded min-heap of in-flight HTLCs. Seq
// is a monotonically increasing insertion counter used only to keep the
// heap's internal ordering deterministic when two entries share a
// resolution time; it plays no role in ensure_free_slots semantics, which
// key exclusively on ResolutionTime.
type slotEntry struct {
	ResolutionTime float64
	Seq            uint64
	HTLC           InFlightHTLC
}

// slotHeap implements container/heap.Interface as a min-heap ordered by
// (ResolutionTime, Seq).
type slotHeap []slotEntry

func (h slotHeap) Len() int { return len(h) }

func (h slotHeap) Less(i, j int) bool {
	if h[i].ResolutionTime != h[j].ResolutionTime {
		return h[i].ResolutionTime < h[j].ResolutionTime
	}
	return h[i].Seq < h[j].Seq
}

func (h slotHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *slotHeap) Push(x any) {
	*h = append(*h, x.(slotEntry))
}

func (h *slotHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}

// ChannelInDirection models one side of a Channel's forwarding process: a
// bounded slot queue of in-flight HTLCs, the direction's fee functions, and
// its deliberate-failure behavior.
type ChannelInDirection struct {
	maxSlots int
	slots    slotHeap
	nextSeq  uint64

	Enabled bool

	UpfrontBase float64
	UpfrontRate float64
	SuccessBase float64
	SuccessRate float64

	DeliberatelyFailProb float64
	SpoofingErrorKind    ErrorKind
}

// NewChannelInDirection builds a ChannelInDirection with the given slot
// capacity and fee policy. It starts enabled with no deliberate-failure
// behavior; callers toggle those via the exported fields or SetDeliberateFailure.
func NewChannelInDirection(maxSlots int, upfrontBase, upfrontRate, successBase, successRate float64) *ChannelInDirection {
	return &ChannelInDirection{
		maxSlots:          maxSlots,
		slots:             make(slotHeap, 0, maxSlots),
		Enabled:           true,
		UpfrontBase:       upfrontBase,
		UpfrontRate:       upfrontRate,
		SuccessBase:       successBase,
		SuccessRate:       successRate,
		SpoofingErrorKind: ErrFailedDeliberately,
	}
}

// MaxSlots returns the slot queue's bounded capacity.
func (c *ChannelInDirection) MaxSlots() int { return c.maxSlots }

// NumSlotsOccupied returns the number of slots currently holding an HTLC,
// including ones whose resolution time has already passed but have not yet
// been popped.
func (c *ChannelInDirection) NumSlotsOccupied() int { return len(c.slots) }

// IsFull reports whether the slot queue is at capacity.
func (c *ChannelInDirection) IsFull() bool { return len(c.slots) >= c.maxSlots }

// IsEmpty reports whether the slot queue holds no HTLCs.
func (c *ChannelInDirection) IsEmpty() bool { return len(c.slots) == 0 }

// TopResolutionTime returns the earliest resolution time among in-flight
// HTLCs. The second return value is false if the queue is empty.
func (c *ChannelInDirection) TopResolutionTime() (float64, bool) {
	if c.IsEmpty() {
		return 0, false
	}
	return c.slots[0].ResolutionTime, true
}

// IsJammed reports whether this direction cannot forward any payment at
// time t: either it is disabled, or its slot queue is full and the
// earliest in-flight HTLC resolves strictly after t.
func (c *ChannelInDirection) IsJammed(t float64) bool {
	if !c.Enabled {
		return true
	}
	top, ok := c.TopResolutionTime()
	return c.IsFull() && ok && top > t
}

// SetDeliberateFailure configures the probability and error kind used for
// deliberate (spoofed) failures on this direction.
func (c *ChannelInDirection) SetDeliberateFailure(prob float64, kind ErrorKind) {
	c.DeliberatelyFailProb = prob
	c.SpoofingErrorKind = kind
}

// RollsDeliberateFailure draws from rng to decide whether this direction
// deliberately fails the current attempt. The roll always happens, even
// when DeliberatelyFailProb is zero, so that the shared RNG stream stays
// aligned across otherwise-identical runs.
func (c *ChannelInDirection) RollsDeliberateFailure(rng *rand.Rand) bool {
	return rng.Float64() < c.DeliberatelyFailProb
}

// UpfrontFee computes the upfront fee for forwarding amount a.
func (c *ChannelInDirection) UpfrontFee(a float64) float64 {
	return c.UpfrontBase + c.UpfrontRate*a
}

// SuccessFee computes the success-case fee for forwarding amount a.
func (c *ChannelInDirection) SuccessFee(a float64) float64 {
	return c.SuccessBase + c.SuccessRate*a
}

// TotalFee returns the total fee (upfront + success) this direction would
// charge to forward a payment of the given body. Note the asymmetry: the
// upfront fee is computed on body + success fee, not on body alone.
func (c *ChannelInDirection) TotalFee(body float64) float64 {
	successFee := c.SuccessFee(body)
	upfrontFee := c.UpfrontFee(body + successFee)
	return successFee + upfrontFee
}

// EnsureFreeSlots tries to make n slots available at time t by popping
// expired (resolution time <= t) in-flight HTLCs. The operation is
// atomic: either n free slots end up available and every popped HTLC is
// returned to the caller for settlement, or nothing changes and (false,
// nil) is returned.
func (c *ChannelInDirection) EnsureFreeSlots(t float64, n int) (bool, []ReleasedHTLC) {
	free := c.maxSlots - len(c.slots)
	if free >= n {
		return true, nil
	}

	needed := n - free
	var popped []ReleasedHTLC
	var taken []slotEntry
	for i := 0; i < needed; i++ {
		if c.IsEmpty() {
			break
		}
		top := c.slots[0]
		if top.ResolutionTime > t {
			break
		}
		entry := heap.Pop(&c.slots).(slotEntry)
		taken = append(taken, entry)
		popped = append(popped, ReleasedHTLC{
			ResolutionTime: entry.ResolutionTime,
			HTLC:           entry.HTLC,
		})
	}

	if len(popped) < needed {
		// Could not free enough slots: restore exactly what we took,
		// with its original insertion counters, so the queue holds the
		// same entries in the same order as before the call.
		for _, e := range taken {
			heap.Push(&c.slots, e)
		}
		return false, nil
	}
	return true, popped
}

// StoreHTLC enqueues an in-flight HTLC at the given resolution time. The
// caller must have ensured a free slot first (e.g. via EnsureFreeSlots);
// StoreHTLC panics if the queue is already full.
func (c *ChannelInDirection) StoreHTLC(resolutionTime float64, htlc InFlightHTLC) {
	if c.IsFull() {
		panic("chanmodel: StoreHTLC called on a full slot queue")
	}
	c.pushRaw(resolutionTime, htlc)
}

func (c *ChannelInDirection) pushRaw(resolutionTime float64, htlc InFlightHTLC) {
	heap.Push(&c.slots, slotEntry{
		ResolutionTime: resolutionTime,
		Seq:            c.nextSeq,
		HTLC:           htlc,
	})
	c.nextSeq++
}

// PopHTLC dequeues and returns the HTLC with the earliest resolution time.
// It panics if the queue is empty.
func (c *ChannelInDirection) PopHTLC() (float64, InFlightHTLC) {
	if c.IsEmpty() {
		panic("chanmodel: PopHTLC called on an empty slot queue")
	}
	entry := heap.Pop(&c.slots).(slotEntry)
	return entry.ResolutionTime, entry.HTLC
}

// DrainAll pops every remaining in-flight HTLC in resolution-time order.
// Used by finalization at the end of a schedule.
func (c *ChannelInDirection) DrainAll() []ReleasedHTLC {
	var drained []ReleasedHTLC
	for !c.IsEmpty() {
		t, htlc := c.PopHTLC()
		drained = append(drained, ReleasedHTLC{ResolutionTime: t, HTLC: htlc})
	}
	return drained
}

// Reset empties the slot queue, e.g. between simulation runs. Fee policy,
// enabled status, and deliberate-failure behavior are left untouched.
func (c *ChannelInDirection) Reset() {
	c.slots = c.slots[:0]
	c.nextSeq = 0
}

// ResizeSlots changes the slot capacity. Any in-flight HTLCs are dropped,
// matching the reference implementation's behavior of resetting slots
// whenever the network model is reconfigured between experiments.
func (c *ChannelInDirection) ResizeSlots(maxSlots int) {
	c.maxSlots = maxSlots
	c.Reset()
}
