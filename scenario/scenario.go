package scenario

import (
	"fmt"
	"math"
	"sort"

	"github.com/lnjamming/ln-jamming-sim/chanmodel"
	"github.com/lnjamming/ln-jamming-sim/network"
	"github.com/lnjamming/ln-jamming-sim/routing"
	"github.com/lnjamming/ln-jamming-sim/simulator"
)

// Pseudo-endpoints the jammer is attached to: a channel opened from
// JammerSender into the upstream end of every target hop, and one from
// the downstream end of every target hop into JammerReceiver.
const (
	JammerSenderName   = "JammerSender"
	JammerReceiverName = "JammerReceiver"

	// DefaultMaxRouteLength mirrors run.py's own default: the protocol
	// constant it was meant to read (ProtocolParams["MAX_ROUTE_LENGTH"])
	// is absent from the retained params module, so the fixed value the
	// reference driver script falls back to is used directly.
	DefaultMaxRouteLength = 14
)

// Scenario bundles a network Model with the honest/jamming workload
// parameters needed to run one fee-coefficient sweep over it: which
// nodes send and receive honest traffic, which hop(s) the jammer is
// aiming at, and where the jammer's own pseudo-endpoints attach.
type Scenario struct {
	Name  string
	Model *network.Model

	HonestSenders   []string
	HonestReceivers []string

	TargetNode      string
	TargetNodePairs []routing.TargetHop

	HonestMustRouteViaNodes []string
	JammerMustRouteViaNodes []string

	DefaultSuccessBase float64
	DefaultSuccessRate float64
}

// Options configures New. Senders/Receivers/TargetNodePairs left empty
// are derived from TargetNode's adjacent channels, matching the
// reference implementation's behavior when those lists are omitted.
type Options struct {
	NumSlotsPerChannel int

	SetDefaultSuccessFee bool
	DefaultSuccessBase   float64
	DefaultSuccessRate   float64

	HonestSenders   []string
	HonestReceivers []string

	TargetNode         string
	TargetNodePairs    []routing.TargetHop
	NumTargetNodePairs int

	JammerSendsToNodes      []string
	JammerReceivesFromNodes []string

	HonestMustRouteViaNodes []string
	JammerMustRouteViaNodes []string
}

// New builds a Scenario over model: it resolves the honest sender/
// receiver sets and the jammer's target node pairs (deriving either from
// TargetNode's adjacent channels if not given explicitly), installs the
// jammer's pseudo-endpoint channels, and optionally sets a uniform
// default success fee across every hop.
func New(name string, model *network.Model, opts Options) (*Scenario, error) {
	if opts.TargetNode == "" && len(opts.TargetNodePairs) == 0 {
		return nil, fmt.Errorf("scenario %s: need either a target node or explicit target node pairs", name)
	}

	honestSenders, honestReceivers, err := resolveHonestEndpoints(model, opts)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}

	targetPairs, err := resolveTargetNodePairs(model, opts)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}

	if opts.SetDefaultSuccessFee {
		model.SetFeeFunctionForAll(network.Success, opts.DefaultSuccessBase, opts.DefaultSuccessRate)
	}

	if err := installJammerEndpoints(model, targetPairs, opts); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}

	return &Scenario{
		Name:                    name,
		Model:                   model,
		HonestSenders:           honestSenders,
		HonestReceivers:         honestReceivers,
		TargetNode:              opts.TargetNode,
		TargetNodePairs:         targetPairs,
		HonestMustRouteViaNodes: opts.HonestMustRouteViaNodes,
		JammerMustRouteViaNodes: opts.JammerMustRouteViaNodes,
		DefaultSuccessBase:      opts.DefaultSuccessBase,
		DefaultSuccessRate:      opts.DefaultSuccessRate,
	}, nil
}

// resolveHonestEndpoints returns opts' explicit sender/receiver lists, or,
// if either is empty, every node with a channel into (for receivers) or
// out of (for senders) TargetNode.
func resolveHonestEndpoints(model *network.Model, opts Options) ([]string, []string, error) {
	if len(opts.HonestSenders) > 0 && len(opts.HonestReceivers) > 0 {
		return opts.HonestSenders, opts.HonestReceivers, nil
	}
	if opts.TargetNode == "" {
		return nil, nil, fmt.Errorf("honest_senders/honest_receivers must be given explicitly when no target_node is set")
	}
	var neighbors []string
	for _, n := range model.Nodes() {
		if n == opts.TargetNode {
			continue
		}
		if _, ok := model.Hop(n, opts.TargetNode); ok {
			neighbors = append(neighbors, n)
		}
	}
	sort.Strings(neighbors)

	senders, receivers := opts.HonestSenders, opts.HonestReceivers
	if len(senders) == 0 {
		senders = neighbors
	}
	if len(receivers) == 0 {
		receivers = neighbors
	}
	return senders, receivers, nil
}

// resolveTargetNodePairs returns opts' explicit TargetNodePairs, or every
// channel touching TargetNode (in both directions), capped at
// NumTargetNodePairs if positive.
func resolveTargetNodePairs(model *network.Model, opts Options) ([]routing.TargetHop, error) {
	if len(opts.TargetNodePairs) > 0 {
		return opts.TargetNodePairs, nil
	}
	if opts.TargetNode == "" {
		return nil, fmt.Errorf("target_node_pairs must be given explicitly when no target_node is set")
	}
	var pairs []routing.TargetHop
	for _, n := range model.Nodes() {
		if n == opts.TargetNode {
			continue
		}
		if _, ok := model.Hop(n, opts.TargetNode); !ok {
			continue
		}
		pairs = append(pairs, routing.TargetHop{n, opts.TargetNode}, routing.TargetHop{opts.TargetNode, n})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	if opts.NumTargetNodePairs > 0 && opts.NumTargetNodePairs < len(pairs) {
		pairs = pairs[:opts.NumTargetNodePairs]
	}
	return pairs, nil
}

// installJammerEndpoints wires JammerSender and JammerReceiver into
// model: a zero-fee channel from JammerSender to every distinct upstream
// node of targetPairs, and one from every distinct downstream node to
// JammerReceiver. Capacity is set far above any amount the simulation
// will ever route, since the jammer's own channels are never meant to be
// a forwarding bottleneck -- only the target hops should saturate.
func installJammerEndpoints(model *network.Model, targetPairs []routing.TargetHop, opts Options) error {
	sendsTo := opts.JammerSendsToNodes
	receivesFrom := opts.JammerReceivesFromNodes
	if len(sendsTo) == 0 && len(receivesFrom) == 0 {
		seenUp, seenDown := map[string]bool{}, map[string]bool{}
		for _, pair := range targetPairs {
			if !seenUp[pair[0]] {
				seenUp[pair[0]] = true
				sendsTo = append(sendsTo, pair[0])
			}
			if !seenDown[pair[1]] {
				seenDown[pair[1]] = true
				receivesFrom = append(receivesFrom, pair[1])
			}
		}
	}

	numSlots := len(targetPairs) * (opts.NumSlotsPerChannel + 1)
	if numSlots <= 0 {
		numSlots = opts.NumSlotsPerChannel + 1
	}
	const jammerChannelCapacity = 1e18

	addOneWay := func(src, dst string) {
		cd := chanmodel.NewChannelInDirection(numSlots, 0, 0, 0, 0)
		dir := chanmodel.DirectionBetween(src, dst)
		var alph, nonAlph *chanmodel.ChannelInDirection
		if dir == chanmodel.Alph {
			alph = cd
		} else {
			nonAlph = cd
		}
		cid := fmt.Sprintf("jammer-%s-%s", src, dst)
		model.AddChannel(src, dst, cid, jammerChannelCapacity, alph, nonAlph)
	}

	for _, n := range sendsTo {
		addOneWay(JammerSenderName, n)
	}
	for _, n := range receivesFrom {
		addOneWay(n, JammerReceiverName)
	}
	return nil
}

// JammerRoute returns the literal route the jammer must follow when it
// has no Router available to search with: JammerSender, through every
// node of nodes in order, to JammerReceiver.
func JammerRoute(nodes []string) []string {
	route := make([]string, 0, len(nodes)+2)
	route = append(route, JammerSenderName)
	route = append(route, nodes...)
	route = append(route, JammerReceiverName)
	return route
}

// RunParams is everything Scenario.Run needs beyond the Scenario itself:
// the fee-coefficient grid to sweep and the per-workload simulation
// limits, mirroring the keyword arguments accepted by the reference
// driver's run entrypoint.
type RunParams struct {
	Duration float64

	UpfrontBaseCoeffs []float64
	UpfrontRateCoeffs []float64

	MaxNumAttemptsPerRouteHonest  int
	MaxNumAttemptsPerRouteJamming int
	MaxNumRoutesHonest            int
	NumRunsPerSimulation          int

	MaxRouteLength         int
	HonestPaymentsPerSecond float64

	// NumJammingBatches, if zero, is derived as ceil(Duration / JamDelay).
	NumJammingBatches int

	// MaxTargetHopsPerRoute caps how many target hops a single jam route
	// must cover; zero means try to cover every target hop pair.
	MaxTargetHopsPerRoute int

	NormalizeForDuration       bool
	ExtrapolateJammingRevenues bool

	Seed uint64
}

// Result is one Scenario.Run's full output: the honest and jamming
// series across the coefficient grid, plus the derived breakeven
// analysis between them.
type Result struct {
	Params     RunParams
	Honest     []simulator.SeriesResult
	Jamming    []simulator.SeriesResult
	Breakeven  BreakevenStats
}

// Run sweeps p's fee-coefficient grid through both an honest and a
// jamming simulation series over s.Model, then derives the breakeven
// point (the first coefficient pair at which jamming out-earns honest
// traffic, with revenue summed over the target nodes) between them.
func (s *Scenario) Run(p RunParams) Result {
	if p.MaxRouteLength == 0 {
		p.MaxRouteLength = DefaultMaxRouteLength
	}
	if p.HonestPaymentsPerSecond == 0 {
		p.HonestPaymentsPerSecond = HonestPaymentsPerSec
	}
	numBatches := p.NumJammingBatches
	if numBatches == 0 {
		numBatches = int(math.Ceil(p.Duration / JamDelay))
	}
	if numBatches < 1 {
		numBatches = 1
	}
	jammingDuration := float64(numBatches) * JamDelay

	honestRng := mathRandFromSeed(p.Seed)
	honestSim := simulator.NewSimulator(s.Model, honestRng, p.MaxNumRoutesHonest, p.MaxNumAttemptsPerRouteHonest, p.MaxRouteLength, p.NumRunsPerSimulation)
	honestSim.TargetNode = s.TargetNode
	simulator.NewHonestSimulator(honestSim, false)

	sampler := NewHonestSampler(p.Seed, p.HonestPaymentsPerSecond)
	genHonestSchedule := func(duration float64) *simulator.Schedule {
		return s.generateHonestSchedule(duration, sampler)
	}

	honestResults := honestSim.RunSimulationSeries(genHonestSchedule, p.Duration, p.UpfrontBaseCoeffs, p.UpfrontRateCoeffs, p.NumRunsPerSimulation, p.NormalizeForDuration, s.DefaultSuccessBase, s.DefaultSuccessRate)

	jamRng := mathRandFromSeed(p.Seed + 1)
	jamSim := simulator.NewSimulator(s.Model, jamRng, 1, p.MaxNumAttemptsPerRouteJamming, p.MaxRouteLength, p.NumRunsPerSimulation)
	jamSim.TargetNode = s.TargetNode
	jammer := simulator.NewJammingSimulator(jamSim, s.TargetNodePairs, float64(DustLimit))
	jammer.MustRouteViaNodes = s.JammerMustRouteViaNodes
	jammer.MaxTargetHopsPerRoute = p.MaxTargetHopsPerRoute

	genJammingSchedule := func(float64) *simulator.Schedule {
		return s.generateJammingSchedule(jammingDuration)
	}
	jammingResults := jammer.RunSimulationSeries(genJammingSchedule, jammingDuration, p.UpfrontBaseCoeffs, p.UpfrontRateCoeffs, p.NumRunsPerSimulation, p.NormalizeForDuration, p.ExtrapolateJammingRevenues, s.DefaultSuccessBase, s.DefaultSuccessRate)

	targetNodes := targetNodesFromPairs(s.TargetNodePairs)
	if s.TargetNode != "" {
		targetNodes = append(targetNodes, s.TargetNode)
	}

	return Result{
		Params:    p,
		Honest:    honestResults,
		Jamming:   jammingResults,
		Breakeven: computeBreakevenStats(honestResults, jammingResults, dedupeStrings(targetNodes)),
	}
}

// generateHonestSchedule builds one run's worth of honest traffic:
// independent sender/receiver pairs drawn uniformly from
// HonestSenders/HonestReceivers (a pair is redrawn if sender == receiver),
// an amount and processing delay drawn from sampler, spaced by a sampled
// inter-arrival gap, until duration is exhausted.
func (s *Scenario) generateHonestSchedule(duration float64, sampler *HonestSampler) *simulator.Schedule {
	sch := simulator.NewSchedule(duration)
	t := 0.0
	for t < duration {
		sender := s.HonestSenders[sampler.PickEndpoint(len(s.HonestSenders))]
		receiver := s.HonestReceivers[sampler.PickEndpoint(len(s.HonestReceivers))]
		if sender == receiver {
			continue
		}
		ev := simulator.NewEvent(sender, receiver, sampler.Amount(), sampler.ProcessingDelay(), true)
		ev.MustRouteViaNodes = s.HonestMustRouteViaNodes
		sch.PutEvent(t, ev)
		t += sampler.InterArrivalDelay()
	}
	return sch
}

// generateJammingSchedule builds the jamming workload: a single launch
// event at t=0 from JammerSender to JammerReceiver, carrying
// processing_delay=JamDelay. JammingSimulator.HandleEvent reschedules
// this same event every JamDelay seconds on its own, so one PutEvent
// call here produces every batch within duration.
func (s *Scenario) generateJammingSchedule(duration float64) *simulator.Schedule {
	sch := simulator.NewSchedule(duration)
	ev := simulator.NewEvent(JammerSenderName, JammerReceiverName, float64(DustLimit), JamDelay, false)
	sch.PutEvent(0, ev)
	return sch
}

// SetTargetChannelCapacity overrides the capacity of every channel on
// every target hop to capacity, letting a single-hop scenario sweep
// capacity the same way it sweeps fee coefficients.
func (s *Scenario) SetTargetChannelCapacity(capacity float64) {
	for _, pair := range s.TargetNodePairs {
		hop, ok := s.Model.Hop(pair[0], pair[1])
		if !ok {
			continue
		}
		for _, ch := range hop.Channels() {
			ch.Capacity = capacity
		}
	}
}

func targetNodesFromPairs(pairs []routing.TargetHop) []string {
	var out []string
	for _, p := range pairs {
		out = append(out, p[0], p[1])
	}
	return out
}

func dedupeStrings(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
