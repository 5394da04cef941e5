package chanmodel

import "sort"

// Channel is one funding output between two endpoints, identified by its
// short channel id (cid), together with both of its forwarding directions.
type Channel struct {
	CID      string
	Capacity float64

	dirAlph    *ChannelInDirection
	dirNonAlph *ChannelInDirection
}

// NewChannel builds a Channel. Either direction may be nil, meaning the
// snapshot never described that side (it is never default-enabled).
func NewChannel(cid string, capacity float64, alph, nonAlph *ChannelInDirection) *Channel {
	return &Channel{
		CID:        cid,
		Capacity:   capacity,
		dirAlph:    alph,
		dirNonAlph: nonAlph,
	}
}

// InDirection returns the ChannelInDirection for d, or nil if that side of
// the channel was never populated.
func (c *Channel) InDirection(d Direction) *ChannelInDirection {
	if d == Alph {
		return c.dirAlph
	}
	return c.dirNonAlph
}

// SetDirection installs the ChannelInDirection for d.
func (c *Channel) SetDirection(d Direction, cd *ChannelInDirection) {
	if d == Alph {
		c.dirAlph = cd
	} else {
		c.dirNonAlph = cd
	}
}

// MaybeCanForward reports whether this channel could carry amount in
// direction d, ignoring jamming status (i.e. time-insensitive). Used at
// payment-construction time, before a route is actually walked.
func (c *Channel) MaybeCanForward(d Direction, amount float64) bool {
	cd := c.InDirection(d)
	return cd != nil && cd.Enabled && amount <= c.Capacity
}

// ReallyCanForward reports whether this channel could carry amount in
// direction d at time t, accounting for jamming status.
func (c *Channel) ReallyCanForward(d Direction, t, amount float64) bool {
	cd := c.InDirection(d)
	if cd == nil {
		return false
	}
	return cd.Enabled && amount <= c.Capacity && !cd.IsJammed(t)
}

// Hop is the set of parallel channels connecting one unordered pair of
// endpoints.
type Hop struct {
	channels map[string]*Channel
}

// NewHop builds an empty Hop.
func NewHop() *Hop {
	return &Hop{channels: make(map[string]*Channel)}
}

// AddChannel registers ch under its cid. It panics if the cid is already
// present, matching the reference model's invariant that a cid names a
// single channel.
func (h *Hop) AddChannel(ch *Channel) {
	if _, exists := h.channels[ch.CID]; exists {
		panic("chanmodel: duplicate cid " + ch.CID + " added to hop")
	}
	h.channels[ch.CID] = ch
}

// Channel looks up a channel by cid.
func (h *Hop) Channel(cid string) (*Channel, bool) {
	ch, ok := h.channels[cid]
	return ch, ok
}

// Channels returns all channels in the hop, ordered by cid for determinism.
func (h *Hop) Channels() []*Channel {
	cids := make([]string, 0, len(h.channels))
	for cid := range h.channels {
		cids = append(cids, cid)
	}
	sort.Strings(cids)

	out := make([]*Channel, len(cids))
	for i, cid := range cids {
		out[i] = h.channels[cid]
	}
	return out
}

// CheapestChannelReallyCanForward returns the channel, among those that
// really_can_forward at time t, charging the lowest total_fee(amount).
// Ties are broken by cid ordering (Channels() is already cid-sorted, and
// the scan below is stable, so the first minimum found wins).
func (h *Hop) CheapestChannelReallyCanForward(d Direction, t, amount float64) (*Channel, bool) {
	var best *Channel
	var bestFee float64
	for _, ch := range h.Channels() {
		if !ch.ReallyCanForward(d, t, amount) {
			continue
		}
		fee := ch.InDirection(d).TotalFee(amount)
		if best == nil || fee < bestFee {
			best, bestFee = ch, fee
		}
	}
	return best, best != nil
}

// CheapestChannelMaybeCanForward is the time-insensitive counterpart of
// CheapestChannelReallyCanForward, used at payment-construction time.
func (h *Hop) CheapestChannelMaybeCanForward(d Direction, amount float64) (*Channel, bool) {
	var best *Channel
	var bestFee float64
	for _, ch := range h.Channels() {
		if !ch.MaybeCanForward(d, amount) {
			continue
		}
		fee := ch.InDirection(d).TotalFee(amount)
		if best == nil || fee < bestFee {
			best, bestFee = ch, fee
		}
	}
	return best, best != nil
}

// CanForward reports whether some channel in the hop can forward some
// positive amount in direction d at time t.
func (h *Hop) CanForward(d Direction, t float64) bool {
	for _, ch := range h.channels {
		if ch.ReallyCanForward(d, t, 0) {
			return true
		}
	}
	return false
}

// CannotForward is the negation of CanForward; used to decide whether a
// target hop counts as jammed.
func (h *Hop) CannotForward(d Direction, t float64) bool {
	return !h.CanForward(d, t)
}

// TotalSlotsOccupied sums the occupied slot count across every channel in
// the hop for direction d. Useful for diagnostics during jamming.
func (h *Hop) TotalSlotsOccupied(d Direction) int {
	total := 0
	for _, ch := range h.channels {
		if cd := ch.InDirection(d); cd != nil {
			total += cd.NumSlotsOccupied()
		}
	}
	return total
}
