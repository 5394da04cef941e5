package simulator

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/lnjamming/ln-jamming-sim/chanmodel"
	"github.com/lnjamming/ln-jamming-sim/network"
	"github.com/lnjamming/ln-jamming-sim/payment"
)

// EventHandler dispatches one Event at the simulator's current simulated
// time. HonestSimulator and JammingSimulator each implement this
// differently.
type EventHandler interface {
	HandleEvent(now float64, ev Event)
}

// Stats summarizes one execute_schedule run.
type Stats struct {
	NumSent            int
	NumFailed          int
	NumReachedReceiver int
	NumHitTargetNode   int
}

// AggregateStats summarizes Stats averaged (and optionally normalized by
// duration) across several runs; unlike Stats these are not necessarily
// whole numbers.
type AggregateStats struct {
	NumSent            float64
	NumFailed          float64
	NumReachedReceiver float64
	NumHitTargetNode   float64
}

// Simulator executes a Schedule of Events against a network Model. For
// each Event it builds a route, constructs a layered Payment, and walks
// it hop by hop, delegating per-event routing strategy to a handler
// (HonestSimulator or JammingSimulator).
type Simulator struct {
	Model *network.Model
	Rng   *rand.Rand

	MaxNumRoutes           int
	MaxNumAttemptsPerRoute int
	MaxRouteLength         int
	NumRunsPerSimulation   int
	NoBalanceFailures      bool

	// TargetNode, if set, is counted whenever an attempt's route
	// touches it, independent of the jamming target hops.
	TargetNode string

	handler EventHandler

	now      float64
	schedule *Schedule
	stats    Stats
	nodesHit map[string]bool
}

// NewSimulator builds a Simulator over model. The caller must call
// SetHandler before ExecuteSchedule.
func NewSimulator(model *network.Model, rng *rand.Rand, maxNumRoutes, maxNumAttemptsPerRoute, maxRouteLength, numRunsPerSimulation int) *Simulator {
	return &Simulator{
		Model:                  model,
		Rng:                    rng,
		MaxNumRoutes:           maxNumRoutes,
		MaxNumAttemptsPerRoute: maxNumAttemptsPerRoute,
		MaxRouteLength:         maxRouteLength,
		NumRunsPerSimulation:   numRunsPerSimulation,
	}
}

// SetHandler installs the per-event dispatch strategy.
func (s *Simulator) SetHandler(h EventHandler) {
	s.handler = h
}

// Now returns the simulator's current simulated time, valid only while a
// schedule is executing.
func (s *Simulator) Now() float64 { return s.now }

func (s *Simulator) reset() {
	s.Model.ResetInFlightHTLCs()
	s.Model.ResetRevenues()
	s.now = -1
	s.stats = Stats{}
	s.nodesHit = make(map[string]bool)
}

// markHit marks every node of route up to and including lastNodeReached
// as touched this run, and bumps the target-node hit counter if
// TargetNode was among them.
func (s *Simulator) markHit(route []string, lastNodeReached string) {
	hitTarget := false
	for _, n := range route {
		s.nodesHit[n] = true
		if n == s.TargetNode {
			hitTarget = true
		}
		if n == lastNodeReached {
			break
		}
	}
	if hitTarget {
		s.stats.NumHitTargetNode++
	}
}

// ExecuteSchedule drains sch, dispatching every event within its end
// time to the installed handler, then finalizes every in-flight HTLC
// still resident in the model's channel directions.
func (s *Simulator) ExecuteSchedule(sch *Schedule) Stats {
	s.reset()
	s.schedule = sch
	for {
		t, ev, ok := sch.GetEvent()
		if !ok {
			break
		}
		if t > sch.EndTime {
			break
		}
		s.now = t
		log.Debugf("dispatching event %s at time %v", ev.ID, t)
		s.handler.HandleEvent(s.now, ev)
	}
	s.now = sch.EndTime
	log.Debugf("finalizing in-flight HTLCs at time %v", s.now)
	s.Model.FinalizeInFlightHTLCs(s.now)
	return s.stats
}

// CreatePayment builds the layered Payment for route, using the network
// model's cheapest-maybe-can-forward selection rule for each hop's fee
// functions.
func (s *Simulator) CreatePayment(route []string, body, processingDelay float64, desiredResult bool) (*payment.Payment, error) {
	return payment.Build(route, body, processingDelay, desiredResult, s.Model)
}

// AttemptSendPayment walks p's layered chain hop by hop starting at
// sender, performing the channel-selection, deliberate-failure,
// slot-admission, and balance checks described by the hop-traversal
// state machine, crediting upfront fees and enqueuing HTLCs as it goes.
// It reports whether the receiver was reached and, if not, the hop at
// which the attempt failed.
func (s *Simulator) AttemptSendPayment(p *payment.Payment, sender string) (reachedReceiver bool, lastNodeReached, firstNodeNotReached string, errKind chanmodel.ErrorKind) {
	paymentID := uuid.NewString()
	uNode := sender
	cur := p

	for cur != nil {
		dNode := cur.DownstreamNode
		isLastHop := cur.DownstreamPayment == nil

		hop, ok := s.Model.Hop(uNode, dNode)
		if !ok {
			return false, uNode, dNode, chanmodel.ErrLowBalance
		}
		dir := chanmodel.DirectionBetween(uNode, dNode)
		ch, ok := hop.CheapestChannelMaybeCanForward(dir, cur.Amount)
		if !ok {
			return false, uNode, dNode, chanmodel.ErrLowBalance
		}
		cd := ch.InDirection(dir)

		if cd.RollsDeliberateFailure(s.Rng) {
			return false, uNode, dNode, cd.SpoofingErrorKind
		}

		freed, released := cd.EnsureFreeSlots(s.now, 1)
		if !freed {
			return false, uNode, dNode, chanmodel.ErrNoSlots
		}
		for _, r := range released {
			s.Model.SettleHTLC(uNode, dNode, r.HTLC)
		}

		lowBalance := cur.Amount > ch.Capacity
		if !lowBalance && !s.NoBalanceFailures {
			lowBalance = s.Rng.Float64() < cur.Amount/ch.Capacity
		}
		if lowBalance {
			return false, uNode, dNode, chanmodel.ErrLowBalance
		}

		s.Model.AddRevenue(uNode, network.Upfront, -cur.UpfrontFee)
		s.Model.AddRevenue(dNode, network.Upfront, cur.UpfrontFee)

		cd.StoreHTLC(s.now+cur.ProcessingDelay, chanmodel.InFlightHTLC{
			PaymentID:        paymentID,
			SuccessFee:       cur.SuccessFee,
			DesiredResult:    cur.DesiredResult,
			SettleSuccessFee: !isLastHop,
		})

		if isLastHop {
			return true, dNode, "", chanmodel.ErrNone
		}
		uNode = dNode
		cur = cur.DownstreamPayment
	}
	// Unreachable: Build always yields at least one layer.
	return false, uNode, "", chanmodel.ErrLowBalance
}

// RunSimulation runs genSchedule(duration) numRuns times through
// ExecuteSchedule and averages the resulting stats and per-node revenues.
// A node's revenue is only averaged over the runs in which it was
// actually touched, matching the reference implementation's
// nodes_hit-scoped bookkeeping. If normalizeForDuration is set, every
// per-run value is divided by duration before averaging.
func (s *Simulator) RunSimulation(genSchedule func(duration float64) *Schedule, duration float64, numRuns int, normalizeForDuration bool) (AggregateStats, map[string]float64) {
	normalize := func(v float64) float64 {
		if !normalizeForDuration {
			return v
		}
		return v / duration
	}

	var sumSent, sumFailed, sumReached, sumHit float64
	revenueSamples := make(map[string][]float64)

	for i := 0; i < numRuns; i++ {
		log.Debugf("simulation %d of %d", i+1, numRuns)
		sch := genSchedule(duration)
		runStats := s.ExecuteSchedule(sch)

		sumSent += normalize(float64(runStats.NumSent))
		sumFailed += normalize(float64(runStats.NumFailed))
		sumReached += normalize(float64(runStats.NumReachedReceiver))
		sumHit += normalize(float64(runStats.NumHitTargetNode))

		for node := range s.nodesHit {
			total := s.Model.GetRevenue(node, network.Upfront) + s.Model.GetRevenue(node, network.Success)
			revenueSamples[node] = append(revenueSamples[node], normalize(total))
		}
	}

	avgStats := AggregateStats{
		NumSent:            divOrZero(sumSent, numRuns),
		NumFailed:          divOrZero(sumFailed, numRuns),
		NumReachedReceiver: divOrZero(sumReached, numRuns),
		NumHitTargetNode:   divOrZero(sumHit, numRuns),
	}

	revenues := make(map[string]float64, len(s.Model.Nodes()))
	for _, node := range s.Model.Nodes() {
		revenues[node] = 0
	}
	for node, samples := range revenueSamples {
		revenues[node] = mean(samples)
	}
	return avgStats, revenues
}

// SeriesResult is one point of a fee-coefficient sweep: the coefficient
// pair that produced it, and the stats/revenues it averaged to.
type SeriesResult struct {
	UpfrontBaseCoeff float64
	UpfrontRateCoeff float64
	Stats            AggregateStats
	Revenues         map[string]float64
}

// RunSimulationSeries sweeps every (base, rate) pair in the coefficient
// grid, setting the network-wide upfront fee function to base *
// defaultSuccessBase, rate * defaultSuccessRate before each RunSimulation
// call: the upfront-fee coefficients are always expressed as multiples
// of the network's default success-case fee.
func (s *Simulator) RunSimulationSeries(genSchedule func(duration float64) *Schedule, duration float64, upfrontBaseCoeffs, upfrontRateCoeffs []float64, numRuns int, normalizeForDuration bool, defaultSuccessBase, defaultSuccessRate float64) []SeriesResult {
	var results []SeriesResult
	for _, base := range upfrontBaseCoeffs {
		for _, rate := range upfrontRateCoeffs {
			s.Model.SetUpfrontFeeFromCoeffForAll(base, rate, defaultSuccessBase, defaultSuccessRate)
			stats, revenues := s.RunSimulation(genSchedule, duration, numRuns, normalizeForDuration)
			results = append(results, SeriesResult{
				UpfrontBaseCoeff: base,
				UpfrontRateCoeff: rate,
				Stats:            stats,
				Revenues:         revenues,
			})
		}
	}
	return results
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func divOrZero(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
