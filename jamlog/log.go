// Package jamlog wires up the per-subsystem loggers every other package
// in this module exposes through its own UseLogger function, the same
// way lnd's build/log.go fans one backend out across its subsystems.
package jamlog

import (
	"io"
	"os"

	"github.com/btcsuite/btclog"

	"github.com/lnjamming/ln-jamming-sim/chanmodel"
	"github.com/lnjamming/ln-jamming-sim/network"
	"github.com/lnjamming/ln-jamming-sim/routing"
	"github.com/lnjamming/ln-jamming-sim/scenario"
	"github.com/lnjamming/ln-jamming-sim/simulator"
)

// Subsystem tags, short the way lnd's are: channel model, network model,
// routing, simulator, scenario.
const (
	subsystemChanModel = "CHDR"
	subsystemNetwork   = "NETW"
	subsystemRouting   = "ROUT"
	subsystemSimulator = "SIMU"
	subsystemScenario  = "SCEN"
)

// InitLogging builds a single btclog backend over w and installs one
// sub-logger per subsystem at level, overriding every package's default
// btclog.Disabled logger.
func InitLogging(w io.Writer, level btclog.Level) {
	backend := btclog.NewBackend(w)

	install := func(tag string, use func(btclog.Logger)) {
		l := backend.Logger(tag)
		l.SetLevel(level)
		use(l)
	}

	install(subsystemChanModel, chanmodel.UseLogger)
	install(subsystemNetwork, network.UseLogger)
	install(subsystemRouting, routing.UseLogger)
	install(subsystemSimulator, simulator.UseLogger)
	install(subsystemScenario, scenario.UseLogger)
}

// InitLoggingFromLevelString parses levelStr (critical, error, warning,
// info, debug) the same way the reference driver script's
// --log_level flag does, defaulting to Info on an empty string, and
// installs logging to stdout.
func InitLoggingFromLevelString(levelStr string) error {
	level, err := parseLevel(levelStr)
	if err != nil {
		return err
	}
	InitLogging(os.Stdout, level)
	return nil
}

func parseLevel(s string) (btclog.Level, error) {
	switch s {
	case "", "info":
		return btclog.LevelInfo, nil
	case "critical":
		return btclog.LevelCritical, nil
	case "error":
		return btclog.LevelError, nil
	case "warning", "warn":
		return btclog.LevelWarn, nil
	case "debug":
		return btclog.LevelDebug, nil
	default:
		return 0, &UnknownLevelError{Level: s}
	}
}

// UnknownLevelError reports a log-level string that parseLevel could not
// recognize.
type UnknownLevelError struct {
	Level string
}

func (e *UnknownLevelError) Error() string {
	return "jamlog: unrecognized log level " + e.Level
}
