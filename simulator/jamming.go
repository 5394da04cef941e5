package simulator

import (
	"github.com/lnjamming/ln-jamming-sim/chanmodel"
	"github.com/lnjamming/ln-jamming-sim/routing"
)

// JammingSimulator replays the jamming workload: each dispatched event
// launches one batch of jams aimed at saturating every configured target
// hop's slot queue, then reschedules itself for the next batch.
type JammingSimulator struct {
	*Simulator

	// TargetHops are the directed hops the jammer is trying to keep
	// fully occupied.
	TargetHops []routing.TargetHop

	// MaxTargetHopsPerRoute caps how many target hops a single jam
	// route must cover; zero keeps the router's own default.
	MaxTargetHopsPerRoute int

	// MustRouteViaNodes, if set, pins every jam batch to a single
	// literal route instead of searching for one that covers as many
	// target hops as possible.
	MustRouteViaNodes []string

	// Amount is the body of a single jam HTLC (normally the network's
	// dust limit: the smallest body that still occupies a slot).
	Amount float64
}

// NewJammingSimulator wraps base with the jamming batch-launch strategy
// and installs itself as base's event handler.
func NewJammingSimulator(base *Simulator, targetHops []routing.TargetHop, amount float64) *JammingSimulator {
	j := &JammingSimulator{Simulator: base, TargetHops: targetHops, Amount: amount}
	j.SetHandler(j)
	return j
}

// HandleEvent implements EventHandler: it launches one jam batch, then
// reschedules itself for the next batch at now + ev.ProcessingDelay, as
// long as that time still falls within the running schedule.
func (j *JammingSimulator) HandleEvent(now float64, ev Event) {
	if len(j.MustRouteViaNodes) > 0 {
		j.sendJamWithStaticRoute(ev)
	} else {
		j.sendJamWithRouter(ev)
	}

	next := now + ev.ProcessingDelay
	if next <= j.schedule.EndTime {
		j.schedule.PutEvent(next, ev)
	}
}

// unjammedTargetHops returns the subset of TargetHops that can still
// forward at t.
func (j *JammingSimulator) unjammedTargetHops(t float64) []routing.TargetHop {
	var out []routing.TargetHop
	for _, hop := range j.TargetHops {
		if j.Model.ReallyCanForward(hop[0], hop[1], t) {
			out = append(out, hop)
		}
	}
	return out
}

func (j *JammingSimulator) allTargetHopsReallyJammed(t float64) bool {
	for _, hop := range j.TargetHops {
		if j.Model.ReallyCanForward(hop[0], hop[1], t) {
			return false
		}
	}
	return true
}

func removeTargetHop(hops []routing.TargetHop, victim routing.TargetHop) []routing.TargetHop {
	out := hops[:0]
	for _, h := range hops {
		if h != victim {
			out = append(out, h)
		}
	}
	return out
}

func countHopOccurrences(route []string, hop routing.TargetHop) int {
	count := 0
	for i := 0; i+1 < len(route); i++ {
		if route[i] == hop[0] && route[i+1] == hop[1] {
			count++
		}
	}
	return count
}

// sendJamWithStaticRoute sends a jam batch down the single literal route
// sender -> MustRouteViaNodes... -> receiver.
func (j *JammingSimulator) sendJamWithStaticRoute(ev Event) {
	route := append([]string{ev.Sender}, j.MustRouteViaNodes...)
	route = append(route, ev.Receiver)
	j.sendJamViaRoute(ev, route)
}

// sendJamWithRouter repeatedly asks a Router for routes covering as many
// still-unjammed target hops as possible, sending a jam batch down each,
// until every target hop is saturated or no further route can be found.
// A target hop confirmed jammed by a NO_SLOTS failure is removed from the
// router only when it occurs exactly once in the route that jammed it:
// if it occurs more than once, the route's other occurrences confound
// which one actually saturated it.
func (j *JammingSimulator) sendJamWithRouter(ev Event) {
	unjammed := j.unjammedTargetHops(j.now)

	adj := j.Model.RoutingAdjacencyForAmount(j.Amount)
	router := routing.NewRouter(adj, ev.Sender, ev.Receiver, j.MaxRouteLength)
	if j.MaxTargetHopsPerRoute > 0 {
		router.SetMaxTargetHopsPerRoute(j.MaxTargetHopsPerRoute)
	}
	router.SetTargetHops(unjammed, false)
	routes := router.Routes()
	idx := 0

	for !j.allTargetHopsReallyJammed(j.now) {
		if len(unjammed) == 0 {
			log.Debugf("no unjammed target hops left at time %v", j.now)
			break
		}
		if idx >= len(routes) {
			log.Warnf("couldn't find a route from %s to %s covering any of %v", ev.Sender, ev.Receiver, unjammed)
			break
		}
		route := routes[idx]
		idx++

		_, _, _, lastNodeReached, firstNodeNotReached := j.sendJamViaRoute(ev, route)
		if firstNodeNotReached == "" {
			continue
		}

		jammedHop := routing.TargetHop{lastNodeReached, firstNodeNotReached}
		if countHopOccurrences(route, jammedHop) != 1 {
			continue
		}
		router.RemoveHop(jammedHop[0], jammedHop[1])
		unjammed = removeTargetHop(unjammed, jammedHop)
		router.SetTargetHops(unjammed, false)
		routes = router.Routes()
		idx = 0
	}
}

// RunSimulationSeriesWithoutExtrapolation runs a full RunSimulation pass
// per coefficient pair, the same as the honest workload does.
func (j *JammingSimulator) RunSimulationSeriesWithoutExtrapolation(genSchedule func(duration float64) *Schedule, duration float64, upfrontBaseCoeffs, upfrontRateCoeffs []float64, numRuns int, normalizeForDuration bool, defaultSuccessBase, defaultSuccessRate float64) []SeriesResult {
	return j.Simulator.RunSimulationSeries(genSchedule, duration, upfrontBaseCoeffs, upfrontRateCoeffs, numRuns, normalizeForDuration, defaultSuccessBase, defaultSuccessRate)
}

// RunSimulationSeriesWithExtrapolation runs RunSimulation exactly once,
// at an arbitrary nonzero coefficient pair, then derives every other
// point in the grid analytically: a jam never pays a success fee, so a
// node's upfront revenue scales linearly with the per-jam upfront fee at
// the fixed jam amount, independent of how many jams actually landed.
// This is valid only because jam traffic is itself independent of the
// upfront fee (a jammer pays whatever is asked), which does not hold for
// the honest workload.
func (j *JammingSimulator) RunSimulationSeriesWithExtrapolation(genSchedule func(duration float64) *Schedule, duration float64, upfrontBaseCoeffs, upfrontRateCoeffs []float64, numRuns int, normalizeForDuration bool, defaultSuccessBase, defaultSuccessRate float64) []SeriesResult {
	sampleBase, sampleRate := 0.0, 0.0
	for _, b := range upfrontBaseCoeffs {
		if b != 0 {
			sampleBase = b
			break
		}
	}
	for _, r := range upfrontRateCoeffs {
		if r != 0 {
			sampleRate = r
			break
		}
	}

	oneJamUpfrontFee := func(base, rate float64) float64 {
		return base*defaultSuccessBase + rate*defaultSuccessRate*j.Amount
	}
	sampleFee := oneJamUpfrontFee(sampleBase, sampleRate)
	if sampleFee == 0 {
		log.Warnf("every coefficient in the sweep is zero, extrapolation is undefined")
		sampleFee = 1
	}

	j.Model.SetUpfrontFeeFromCoeffForAll(sampleBase, sampleRate, defaultSuccessBase, defaultSuccessRate)
	sampleStats, sampleRevenues := j.RunSimulation(genSchedule, duration, numRuns, normalizeForDuration)

	var results []SeriesResult
	for _, base := range upfrontBaseCoeffs {
		for _, rate := range upfrontRateCoeffs {
			scale := oneJamUpfrontFee(base, rate) / sampleFee
			revenues := make(map[string]float64, len(sampleRevenues))
			for node, v := range sampleRevenues {
				revenues[node] = v * scale
			}
			results = append(results, SeriesResult{
				UpfrontBaseCoeff: base,
				UpfrontRateCoeff: rate,
				Stats:            sampleStats,
				Revenues:         revenues,
			})
		}
	}
	return results
}

// RunSimulationSeries dispatches to the extrapolated or the brute-force
// sweep depending on extrapolate.
func (j *JammingSimulator) RunSimulationSeries(genSchedule func(duration float64) *Schedule, duration float64, upfrontBaseCoeffs, upfrontRateCoeffs []float64, numRuns int, normalizeForDuration, extrapolate bool, defaultSuccessBase, defaultSuccessRate float64) []SeriesResult {
	if extrapolate {
		return j.RunSimulationSeriesWithExtrapolation(genSchedule, duration, upfrontBaseCoeffs, upfrontRateCoeffs, numRuns, normalizeForDuration, defaultSuccessBase, defaultSuccessRate)
	}
	return j.RunSimulationSeriesWithoutExtrapolation(genSchedule, duration, upfrontBaseCoeffs, upfrontRateCoeffs, numRuns, normalizeForDuration, defaultSuccessBase, defaultSuccessRate)
}

// sendJamViaRoute builds a single jam payment over route and attempts it
// up to MaxNumAttemptsPerRoute times. Unlike an honest payment, a jam
// batch does not stop on its first success: only a NO_SLOTS failure (the
// hop is already saturated) ends the batch early.
func (j *JammingSimulator) sendJamViaRoute(ev Event, route []string) (numSent, numFailed, numReachedReceiver int, lastNodeReached, firstNodeNotReached string) {
	p, err := j.CreatePayment(route, j.Amount, ev.ProcessingDelay, false)
	if err != nil {
		log.Debugf("couldn't construct jam payment for route %v: %v", route, err)
		return 0, 0, 0, "", ""
	}

	for attempt := 0; attempt < j.MaxNumAttemptsPerRoute; attempt++ {
		reached, last, notReached, errKind := j.AttemptSendPayment(p, ev.Sender)
		numSent++
		numFailed++
		lastNodeReached, firstNodeNotReached = last, notReached
		if reached {
			numReachedReceiver++
			continue
		}
		if errKind == chanmodel.ErrNoSlots {
			break
		}
	}

	j.stats.NumSent += numSent
	j.stats.NumFailed += numFailed
	j.stats.NumReachedReceiver += numReachedReceiver
	j.markHit(route, lastNodeReached)
	return numSent, numFailed, numReachedReceiver, lastNodeReached, firstNodeNotReached
}
