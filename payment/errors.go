package payment

import "errors"

// errRouteTooShort is returned by Build when given a route of fewer than
// two nodes (no hop to traverse).
var errRouteTooShort = errors.New("payment: route must have at least two nodes")

// NoForwardingChannelError reports that no channel between From and To
// could even maybe-forward the payment at construction time.
type NoForwardingChannelError struct {
	From, To string
}

func (e *NoForwardingChannelError) Error() string {
	return "payment: no channel can forward " + e.From + " -> " + e.To
}
