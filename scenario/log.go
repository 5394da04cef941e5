package scenario

import "github.com/btcsuite/btclog"

var log = btclog.Disabled

// UseLogger installs a logger for the scenario package, overriding the
// disabled default.
func UseLogger(logger btclog.Logger) {
	log = logger
}
