package network

import (
	"strings"
	"testing"

	"github.com/lnjamming/ln-jamming-sim/chanmodel"
	"github.com/stretchr/testify/require"
)

const sampleSnapshot = `{
  "channels": [
    {
      "short_channel_id": "1x1x0",
      "source": "Alice",
      "destination": "Bob",
      "satoshis": 100000,
      "active": true,
      "base_fee_millisatoshi": 1000,
      "fee_per_millionth": 1,
      "base_fee_millisatoshi_upfront": 2000,
      "fee_per_millionth_upfront": 2
    },
    {
      "short_channel_id": "1x1x0",
      "source": "Bob",
      "destination": "Alice",
      "satoshis": 100000,
      "active": false
    }
  ]
}`

func TestLoadSnapshotBothDirections(t *testing.T) {
	m, err := LoadSnapshot(strings.NewReader(sampleSnapshot), 2)
	require.NoError(t, err)

	hop, ok := m.Hop("Alice", "Bob")
	require.True(t, ok)
	ch, ok := hop.Channel("1x1x0")
	require.True(t, ok)
	require.Equal(t, 100000.0, ch.Capacity)

	alph := ch.InDirection(chanmodel.Alph)
	require.NotNil(t, alph)
	require.True(t, alph.Enabled)
	require.Equal(t, 1.0, alph.SuccessBase)
	require.Equal(t, 0.000001, alph.SuccessRate)
	require.Equal(t, 2.0, alph.UpfrontBase)
	require.Equal(t, 0.000002, alph.UpfrontRate)

	nonAlph := ch.InDirection(chanmodel.NonAlph)
	require.NotNil(t, nonAlph)
	require.False(t, nonAlph.Enabled)
	// Absent fee fields default to the success-fee default and zero upfront.
	require.Equal(t, defaultSuccessBase, nonAlph.SuccessBase)
	require.Equal(t, defaultSuccessRate, nonAlph.SuccessRate)
	require.Equal(t, 0.0, nonAlph.UpfrontBase)
}

func TestLoadSnapshotOneDirectionOnly(t *testing.T) {
	doc := `{"channels":[{"short_channel_id":"2x1x0","source":"Carol","destination":"Dave","satoshis":5000,"active":true}]}`
	m, err := LoadSnapshot(strings.NewReader(doc), 2)
	require.NoError(t, err)

	hop, ok := m.Hop("Carol", "Dave")
	require.True(t, ok)
	ch, _ := hop.Channel("2x1x0")
	require.NotNil(t, ch.InDirection(chanmodel.Alph))
	require.Nil(t, ch.InDirection(chanmodel.NonAlph))
}
