package jamlog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitLoggingAcceptsKnownLevels(t *testing.T) {
	for _, lvl := range []string{"critical", "error", "warning", "info", "debug", ""} {
		var buf bytes.Buffer
		level, err := parseLevel(lvl)
		require.NoError(t, err)
		InitLogging(&buf, level)
	}
}

func TestInitLoggingRejectsUnknownLevel(t *testing.T) {
	_, err := parseLevel("verbose")
	require.Error(t, err)
}
