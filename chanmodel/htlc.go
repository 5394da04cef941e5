package chanmodel

// InFlightHTLC is the opaque payload stored in a ChannelInDirection's slot
// queue. Balances are never modeled on-chain, so an in-flight HTLC only
// carries what is needed to settle its success-case fee on resolution.
type InFlightHTLC struct {
	PaymentID     string
	SuccessFee    float64
	DesiredResult bool

	// SettleSuccessFee is false for the HTLC stored on the hop leading
	// into the payment's ultimate receiver: that hop's success fee was
	// already absorbed into the payment amount at construction time
	// (honest last-hop body adjustment), so neither side's ledger moves
	// when it resolves.
	SettleSuccessFee bool
}
