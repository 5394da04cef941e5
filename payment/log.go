package payment

import "github.com/btcsuite/btclog"

var log btclog.Logger = btclog.Disabled

// UseLogger sets the package-wide logger used by payment.
func UseLogger(logger btclog.Logger) {
	log = logger
}
