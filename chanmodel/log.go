package chanmodel

import "github.com/btcsuite/btclog"

// log is the package-level logger used throughout chanmodel. It is disabled
// by default; callers wire in a real backend through UseLogger.
var log btclog.Logger = btclog.Disabled

// UseLogger lets callers set the subsystem logger used by this package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
