// Package payment builds the recursive, fee-layered Payment wrapper that
// the simulator threads across a routed path.
package payment

import "math"

// FeeFunctions is the pair of fee functions a hop charges in one
// direction, as selected for a specific payment construction.
type FeeFunctions struct {
	Upfront func(amount float64) float64
	Success func(amount float64) float64
}

// ChannelSelector resolves, for a directed hop (u -> d) and a candidate
// amount, the fee functions of the cheapest channel that could carry it,
// ignoring jamming status (the "maybe-can-forward" rule of spec §4.3). It
// is implemented by the network model; defined here to avoid a dependency
// cycle between payment and network.
type ChannelSelector interface {
	SelectFeeFunctions(u, d string, amount float64) (FeeFunctions, bool)
}

// Payment is one layer of the recursive, fee-layered payment wrapper
// described in spec.md §3-4.3. Each layer corresponds to one hop on the
// route; DownstreamPayment is nil only for the innermost (last) layer.
type Payment struct {
	// Amount is the value this hop's HTLC carries.
	Amount float64

	// UpfrontFee and SuccessFee are this hop's own fees, charged by the
	// downstream endpoint of this hop.
	UpfrontFee float64
	SuccessFee float64

	// ProcessingDelay and DesiredResult are set only on the innermost
	// payment and inherited outward unchanged.
	ProcessingDelay float64
	DesiredResult   bool

	// DownstreamNode is the node this hop forwards to.
	DownstreamNode string

	// DownstreamPayment is the next, more-nested layer, or nil for the
	// innermost (last-hop) layer.
	DownstreamPayment *Payment
}

// Build constructs the layered Payment for route (a slice of node names,
// sender first, receiver last), given the body the receiver should end up
// with, the processing delay, and the desired outcome (true for honest,
// false for a jam). selector resolves each hop's fee functions via the
// cheapest-maybe-can-forward rule.
//
// Construction proceeds from receiver to sender per spec.md §4.3:
//  1. the innermost payment (last hop) sets Amount = body +
//     SuccessFee(body), UpfrontFee = UpfrontFee(Amount);
//  2. each outer wrap sets body' = previous.Amount, Amount' =
//     previous.Amount + previous.UpfrontFee, and computes this hop's own
//     SuccessFee'/UpfrontFee' against body' using this hop's own fee
//     functions.
func Build(route []string, body, processingDelay float64, desiredResult bool, selector ChannelSelector) (*Payment, error) {
	if len(route) < 2 {
		return nil, errRouteTooShort
	}

	lastHop := len(route) - 2
	fees, ok := selector.SelectFeeFunctions(route[lastHop], route[lastHop+1], body)
	if !ok {
		return nil, &NoForwardingChannelError{From: route[lastHop], To: route[lastHop+1]}
	}

	successFee := fees.Success(body)
	amount := body + successFee
	upfrontFee := fees.Upfront(amount)

	p := &Payment{
		Amount:          amount,
		UpfrontFee:      upfrontFee,
		SuccessFee:      successFee,
		ProcessingDelay: processingDelay,
		DesiredResult:   desiredResult,
		DownstreamNode:  route[lastHop+1],
	}

	for i := lastHop - 1; i >= 0; i-- {
		u, d := route[i], route[i+1]
		fees, ok := selector.SelectFeeFunctions(u, d, p.Amount)
		if !ok {
			return nil, &NoForwardingChannelError{From: u, To: d}
		}

		bodyPrime := p.Amount
		amountPrime := p.Amount + p.UpfrontFee

		p = &Payment{
			Amount:            amountPrime,
			UpfrontFee:        fees.Upfront(bodyPrime),
			SuccessFee:        fees.Success(bodyPrime),
			ProcessingDelay:   processingDelay,
			DesiredResult:     desiredResult,
			DownstreamNode:    d,
			DownstreamPayment: p,
		}
	}
	return p, nil
}

// BodyForAmount finds a whole-number body b for which b + upfrontFee(b)
// lies within 1 of targetAmount, by bisecting [0, targetAmount] with b
// rounded half-to-even at each step (at most maxSteps iterations). The
// result may overshoot the target by less than 1: for a target of 1000
// and upfrontFee(a) = 0.01a + 5 it returns 986, where 986 + 14.86 =
// 1000.86. Used for the honest last-hop amount adjustment: the sender
// reduces the last-hop body so that the receiver's upfront fee is already
// accounted for within the target.
func BodyForAmount(targetAmount float64, upfrontFee func(float64) float64) float64 {
	const maxSteps = 50
	const precision = 1.0

	minBody, maxBody := 0.0, targetAmount
	body := minBody
	for step := 0; step < maxSteps; step++ {
		body = math.RoundToEven((minBody + maxBody) / 2)
		amount := body + upfrontFee(body)
		if targetAmount-amount < precision && amount-targetAmount < precision {
			break
		}
		if amount < targetAmount {
			minBody = body
		} else {
			maxBody = body
		}
	}
	return body
}
