// Package network holds the channel-graph model: the undirected multigraph
// of channels keyed by endpoint pair, a derived capacity-filtered routing
// view, and the per-node revenue ledger.
package network

import (
	"sort"

	"github.com/lnjamming/ln-jamming-sim/chanmodel"
	"github.com/lnjamming/ln-jamming-sim/payment"
	"github.com/lnjamming/ln-jamming-sim/routing"
)

// RevenueKind distinguishes the two revenue ledgers a node accrues.
type RevenueKind int

const (
	Upfront RevenueKind = iota
	Success
)

func (k RevenueKind) String() string {
	if k == Upfront {
		return "upfront_revenue"
	}
	return "success_revenue"
}

type pairKey [2]string

func hopKey(a, b string) pairKey {
	if a < b {
		return pairKey{a, b}
	}
	return pairKey{b, a}
}

// nodeRevenue tracks a node's two revenue ledgers.
type nodeRevenue struct {
	upfront float64
	success float64
}

// Model is the channel-graph model driving routing, fee selection, and
// revenue accounting. It corresponds to the reference implementation's
// LNModel: one undirected multigraph of channels, plus a derived directed,
// capacity-filtered routing view built on demand.
type Model struct {
	hops    map[pairKey]*chanmodel.Hop
	nodes   map[string]bool
	revenue map[string]*nodeRevenue

	defaultNumSlots int

	// CapacityFilteringSafetyMargin pads the amount used to filter
	// routing-view edges, to account for as-yet-unknown fees added by
	// upstream hops (mirrors the reference model's 5% margin).
	CapacityFilteringSafetyMargin float64
}

// NewModel builds an empty Model and records defaultNumSlots on it. The
// Model's own methods do not read that value: every ChannelInDirection is
// built with its own slot capacity (LoadSnapshot passes defaultNumSlots
// to each direction it creates).
func NewModel(defaultNumSlots int) *Model {
	return &Model{
		hops:                          make(map[pairKey]*chanmodel.Hop),
		nodes:                         make(map[string]bool),
		revenue:                       make(map[string]*nodeRevenue),
		defaultNumSlots:               defaultNumSlots,
		CapacityFilteringSafetyMargin: 0.05,
	}
}

func (m *Model) ensureNode(node string) {
	if !m.nodes[node] {
		m.nodes[node] = true
		m.revenue[node] = &nodeRevenue{}
	}
}

// AddChannel registers a channel between src and dst. alphDir and
// nonAlphDir are the ChannelInDirection for the Alph (src<dst) and
// NonAlph sides respectively; either may be nil if the snapshot only
// described one direction.
func (m *Model) AddChannel(src, dst, cid string, capacity float64, alphDir, nonAlphDir *chanmodel.ChannelInDirection) {
	m.ensureNode(src)
	m.ensureNode(dst)

	key := hopKey(src, dst)
	hop, ok := m.hops[key]
	if !ok {
		hop = chanmodel.NewHop()
		m.hops[key] = hop
	}
	hop.AddChannel(chanmodel.NewChannel(cid, capacity, alphDir, nonAlphDir))
}

// Hop returns the Hop between a and b (order-independent), if any.
func (m *Model) Hop(a, b string) (*chanmodel.Hop, bool) {
	hop, ok := m.hops[hopKey(a, b)]
	return hop, ok
}

// Nodes returns every known node, sorted for determinism.
func (m *Model) Nodes() []string {
	out := make([]string, 0, len(m.nodes))
	for n := range m.nodes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// SelectFeeFunctions implements payment.ChannelSelector: it resolves the
// cheapest-maybe-can-forward channel between u and d for amount, and
// returns its fee functions.
func (m *Model) SelectFeeFunctions(u, d string, amount float64) (payment.FeeFunctions, bool) {
	hop, ok := m.Hop(u, d)
	if !ok {
		return payment.FeeFunctions{}, false
	}
	dir := chanmodel.DirectionBetween(u, d)
	ch, ok := hop.CheapestChannelMaybeCanForward(dir, amount)
	if !ok {
		return payment.FeeFunctions{}, false
	}
	cd := ch.InDirection(dir)
	return payment.FeeFunctions{
		Upfront: cd.UpfrontFee,
		Success: cd.SuccessFee,
	}, true
}

// ReallyCanForward reports whether the hop (u, d) can really forward some
// positive amount at time t (i.e. is not jammed and is enabled).
func (m *Model) ReallyCanForward(u, d string, t float64) bool {
	hop, ok := m.Hop(u, d)
	if !ok {
		return false
	}
	return hop.CanForward(chanmodel.DirectionBetween(u, d), t)
}

// RoutingAdjacencyForAmount returns a directed adjacency list (node ->
// sorted neighbor list) restricted to hops with at least one enabled
// channel whose capacity covers amount inflated by
// CapacityFilteringSafetyMargin. Direction-disabled or capacity-too-small
// hops are omitted entirely, matching the reference model's
// get_routing_graph_for_amount filtering.
func (m *Model) RoutingAdjacencyForAmount(amount float64) map[string][]string {
	padded := amount * (1 + m.CapacityFilteringSafetyMargin)
	adj := make(map[string][]string)
	for key, hop := range m.hops {
		a, b := key[0], key[1]
		for _, pair := range [][2]string{{a, b}, {b, a}} {
			u, d := pair[0], pair[1]
			dir := chanmodel.DirectionBetween(u, d)
			for _, ch := range hop.Channels() {
				if ch.MaybeCanForward(dir, padded) {
					adj[u] = append(adj[u], d)
					break
				}
			}
		}
	}
	for node := range adj {
		sort.Strings(adj[node])
	}
	return adj
}

// ShortestRouteViaNodes stitches together the shortest sub-route (under
// the amount-filtered routing view) between each consecutive pair of
// nodes, used to honor an Event's must-route-via-nodes override. ok is
// false if any consecutive pair is unreachable.
func (m *Model) ShortestRouteViaNodes(nodes []string, amount float64) ([]string, bool) {
	if len(nodes) < 2 {
		return nil, false
	}
	g := routing.NewGraph(m.RoutingAdjacencyForAmount(amount))
	route := []string{nodes[0]}
	for i := 0; i+1 < len(nodes); i++ {
		sub, ok := g.ShortestPath(nodes[i], nodes[i+1])
		if !ok {
			return nil, false
		}
		route = append(route, sub[1:]...)
	}
	return route, true
}

// AddRevenue credits (or, for a negative amount, debits) a node's ledger.
func (m *Model) AddRevenue(node string, kind RevenueKind, amount float64) {
	m.ensureNode(node)
	r := m.revenue[node]
	if kind == Upfront {
		r.upfront += amount
	} else {
		r.success += amount
	}
}

// GetRevenue reads a node's ledger for kind.
func (m *Model) GetRevenue(node string, kind RevenueKind) float64 {
	r, ok := m.revenue[node]
	if !ok {
		return 0
	}
	if kind == Upfront {
		return r.upfront
	}
	return r.success
}

// ResetRevenues zeroes every node's revenue ledgers, e.g. between runs of
// the same scenario.
func (m *Model) ResetRevenues() {
	for _, r := range m.revenue {
		r.upfront = 0
		r.success = 0
	}
}

// SettleHTLC applies an in-flight HTLC's success-fee resolution rule: if
// the payment's desired result was reached and this hop is settleable
// (not the terminal hop into the ultimate receiver), debit upstream's
// success ledger and credit downstream's. Otherwise nothing moves: a jam
// or a failed honest payment never pays its success fee, and the terminal
// hop's success fee was already absorbed into the payment amount at
// construction time.
func (m *Model) SettleHTLC(upstream, downstream string, htlc chanmodel.InFlightHTLC) {
	if !htlc.SettleSuccessFee || !htlc.DesiredResult {
		return
	}
	m.AddRevenue(upstream, Success, -htlc.SuccessFee)
	m.AddRevenue(downstream, Success, htlc.SuccessFee)
}

// FinalizeInFlightHTLCs drains every channel direction's slot queue and
// settles each remaining HTLC, modeling eventual resolution at the
// simulation horizon for payments that were still in flight when a
// schedule ran out.
func (m *Model) FinalizeInFlightHTLCs(now float64) {
	for key, hop := range m.hops {
		a, b := key[0], key[1]
		for _, ch := range hop.Channels() {
			if cd := ch.InDirection(chanmodel.Alph); cd != nil {
				for _, released := range cd.DrainAll() {
					m.SettleHTLC(a, b, released.HTLC)
				}
			}
			if cd := ch.InDirection(chanmodel.NonAlph); cd != nil {
				for _, released := range cd.DrainAll() {
					m.SettleHTLC(b, a, released.HTLC)
				}
			}
		}
	}
}

// ResetInFlightHTLCs empties every direction's slot queue across the whole
// model, used between simulation runs.
func (m *Model) ResetInFlightHTLCs() {
	for _, hop := range m.hops {
		for _, ch := range hop.Channels() {
			if cd := ch.InDirection(chanmodel.Alph); cd != nil {
				cd.Reset()
			}
			if cd := ch.InDirection(chanmodel.NonAlph); cd != nil {
				cd.Reset()
			}
		}
	}
}

// SetFeeFunction overrides the fee function of kind for the single channel
// between node1 and node2 (the model assumes at most one channel per hop
// when used this way, matching the reference implementation).
func (m *Model) SetFeeFunction(node1, node2 string, kind RevenueKind, base, rate float64) bool {
	hop, ok := m.Hop(node1, node2)
	if !ok {
		return false
	}
	channels := hop.Channels()
	if len(channels) != 1 {
		return false
	}
	dir := chanmodel.DirectionBetween(node1, node2)
	cd := channels[0].InDirection(dir)
	if cd == nil {
		return false
	}
	if kind == Upfront {
		cd.UpfrontBase, cd.UpfrontRate = base, rate
	} else {
		cd.SuccessBase, cd.SuccessRate = base, rate
	}
	return true
}

// SetFeeFunctionForAll applies SetFeeFunction across every hop in the
// model, in both directions, used to sweep a fee-coefficient grid.
func (m *Model) SetFeeFunctionForAll(kind RevenueKind, base, rate float64) {
	for key := range m.hops {
		m.SetFeeFunction(key[0], key[1], kind, base, rate)
		m.SetFeeFunction(key[1], key[0], kind, base, rate)
	}
}

// SetUpfrontFeeFromCoeffForAll sets every hop's upfront fee function to
// (upfrontBaseCoeff * defaultSuccessBase, upfrontRateCoeff *
// defaultSuccessRate): the upfront-fee coefficient grid is defined as a
// multiple of the network's default success-case fee, not as raw
// base/rate values, so sweeping it stays comparable to the success-case
// fee it is meant to offset.
func (m *Model) SetUpfrontFeeFromCoeffForAll(upfrontBaseCoeff, upfrontRateCoeff, defaultSuccessBase, defaultSuccessRate float64) {
	m.SetFeeFunctionForAll(Upfront, upfrontBaseCoeff*defaultSuccessBase, upfrontRateCoeff*defaultSuccessRate)
}

// SetNumSlots resizes the slot queue for the single channel between
// node1 and node2, in both directions if both are populated.
func (m *Model) SetNumSlots(node1, node2 string, numSlots int) bool {
	hop, ok := m.Hop(node1, node2)
	if !ok {
		return false
	}
	channels := hop.Channels()
	if len(channels) != 1 {
		return false
	}
	resized := false
	for _, d := range []chanmodel.Direction{chanmodel.Alph, chanmodel.NonAlph} {
		if cd := channels[0].InDirection(d); cd != nil {
			cd.ResizeSlots(numSlots)
			resized = true
		}
	}
	return resized
}
