package simulator

import (
	"github.com/lnjamming/ln-jamming-sim/payment"
	"github.com/lnjamming/ln-jamming-sim/routing"
)

// HonestSimulator replays the honest payment workload: for each event it
// builds up to MaxNumRoutes candidate routes and, for each, attempts
// delivery up to MaxNumAttemptsPerRoute times before moving to the next
// route.
type HonestSimulator struct {
	*Simulator

	// SubtractLastHopUpfrontFee applies body_for_amount at payment
	// construction: the last-hop body is lowered so that body plus the
	// last hop's upfront fee comes to event.Amount, to within 1. Jams
	// never do this (every hop's body must clear the dust limit).
	SubtractLastHopUpfrontFee bool
}

// NewHonestSimulator wraps base with the honest routing/retry strategy
// and installs itself as base's event handler.
func NewHonestSimulator(base *Simulator, subtractLastHopUpfrontFee bool) *HonestSimulator {
	h := &HonestSimulator{Simulator: base, SubtractLastHopUpfrontFee: subtractLastHopUpfrontFee}
	h.SetHandler(h)
	return h
}

// HandleEvent implements EventHandler.
func (h *HonestSimulator) HandleEvent(now float64, ev Event) {
	h.sendHonestPayment(ev)
}

func (h *HonestSimulator) sendHonestPayment(ev Event) {
	if len(ev.MustRouteViaNodes) > 0 {
		nodes := append([]string{ev.Sender}, append(append([]string{}, ev.MustRouteViaNodes...), ev.Receiver)...)
		route, ok := h.Model.ShortestRouteViaNodes(nodes, ev.Amount)
		if !ok {
			log.Debugf("couldn't build a route for %s->%s via %v, skipping", ev.Sender, ev.Receiver, ev.MustRouteViaNodes)
			return
		}
		log.Debugf("routed %s->%s via fixed nodes %v: %v", ev.Sender, ev.Receiver, ev.MustRouteViaNodes, route)
		h.sendHonestPaymentViaRoute(ev, route)
		return
	}

	adj := h.Model.RoutingAdjacencyForAmount(ev.Amount)
	r := routing.NewRouter(adj, ev.Sender, ev.Receiver, h.MaxRouteLength)
	routes := r.Routes()
	for i := 0; i < h.MaxNumRoutes && i < len(routes); i++ {
		route := routes[i]
		log.Debugf("trying route %d: %v", i+1, route)
		_, _, numReached := h.sendHonestPaymentViaRoute(ev, route)
		if numReached > 0 {
			log.Debugf("honest payment reached receiver via route %d, no need to try further routes", i+1)
			break
		}
	}
}

func (h *HonestSimulator) sendHonestPaymentViaRoute(ev Event, route []string) (numSent, numFailed, numReachedReceiver int) {
	lastHopBody := ev.Amount
	if h.SubtractLastHopUpfrontFee {
		lastHopBody = h.adjustBodyForRoute(route, ev.Amount)
	}
	log.Debugf("receiver will get %v in payment body", lastHopBody)

	p, err := h.CreatePayment(route, lastHopBody, ev.ProcessingDelay, ev.DesiredResult)
	if err != nil {
		log.Debugf("couldn't construct payment for route %v: %v", route, err)
		return 0, 0, 0
	}

	var lastNodeReached string
	for attempt := 0; attempt < h.MaxNumAttemptsPerRoute; attempt++ {
		reached, last, _, errKind := h.AttemptSendPayment(p, ev.Sender)
		numSent++
		lastNodeReached = last
		if reached {
			log.Debugf("payment reached the receiver after %d attempts", attempt+1)
			numReachedReceiver++
			break
		}
		numFailed++
		if !errKind.Retriable() {
			break
		}
	}

	h.stats.NumSent += numSent
	h.stats.NumFailed += numFailed
	h.stats.NumReachedReceiver += numReachedReceiver
	h.markHit(route, lastNodeReached)
	return numSent, numFailed, numReachedReceiver
}

// adjustBodyForRoute replaces amount with the body payment.BodyForAmount
// finds, for which body + last_hop.upfront_fee(body) lies within 1 of
// amount, using the same
// cheapest-maybe-can-forward channel the payment itself will be built
// against.
func (h *HonestSimulator) adjustBodyForRoute(route []string, amount float64) float64 {
	if len(route) < 2 {
		return amount
	}
	preReceiver, receiver := route[len(route)-2], route[len(route)-1]
	fees, ok := h.Model.SelectFeeFunctions(preReceiver, receiver, amount)
	if !ok {
		return amount
	}
	return payment.BodyForAmount(amount, fees.Upfront)
}
