// Package simulator executes a Schedule of Events against a network
// model: for each event it builds a route, wraps a layered Payment, and
// walks it hop by hop, crediting and debiting fee revenue as it goes.
package simulator

import "github.com/google/uuid"

// Event is one scheduled payment (honest) or jam-batch launch (jamming).
// MustRouteViaNodes, when non-empty, pins the route through a literal
// sequence of intermediate nodes instead of delegating to a Router.
type Event struct {
	ID                string
	Sender            string
	Receiver          string
	Amount            float64
	ProcessingDelay   float64
	DesiredResult     bool
	MustRouteViaNodes []string
}

// NewEvent builds an Event with a fresh random id.
func NewEvent(sender, receiver string, amount, processingDelay float64, desiredResult bool) Event {
	return Event{
		ID:              uuid.NewString(),
		Sender:          sender,
		Receiver:        receiver,
		Amount:          amount,
		ProcessingDelay: processingDelay,
		DesiredResult:   desiredResult,
	}
}
