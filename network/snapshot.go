package network

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/lnjamming/ln-jamming-sim/chanmodel"
)

const (
	millisatPerSat   = 1000.0
	perMillion       = 1_000_000.0
	defaultSuccessBase = 1.0
	defaultSuccessRate = 5e-6
)

// channelRecord is one entry of a Core-Lightning-style listchannels.json
// snapshot, as described by the consumed snapshot format.
type channelRecord struct {
	ShortChannelID string  `json:"short_channel_id"`
	Source         string  `json:"source"`
	Destination    string  `json:"destination"`
	Satoshis       float64 `json:"satoshis"`
	Active         bool    `json:"active"`

	BaseFeeMillisatoshi        *float64 `json:"base_fee_millisatoshi"`
	FeePerMillionth            *float64 `json:"fee_per_millionth"`
	BaseFeeMillisatoshiUpfront *float64 `json:"base_fee_millisatoshi_upfront"`
	FeePerMillionthUpfront     *float64 `json:"fee_per_millionth_upfront"`
}

type snapshotFile struct {
	Channels []channelRecord `json:"channels"`
}

// LoadSnapshot parses a snapshot JSON document (as described by the
// external-interfaces snapshot format) into a fresh Model. defaultNumSlots
// is used as every direction's slot-queue capacity.
func LoadSnapshot(r io.Reader, defaultNumSlots int) (*Model, error) {
	var doc snapshotFile
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("network: decoding snapshot: %w", err)
	}

	m := NewModel(defaultNumSlots)
	seen := make(map[string]float64)

	for _, rec := range doc.Channels {
		if prevCapacity, ok := seen[rec.ShortChannelID]; ok && prevCapacity != rec.Satoshis {
			return nil, fmt.Errorf("network: channel %s has inconsistent capacity across directions", rec.ShortChannelID)
		}
		seen[rec.ShortChannelID] = rec.Satoshis

		cd := recordToDirection(rec, defaultNumSlots)
		dir := chanmodel.DirectionBetween(rec.Source, rec.Destination)

		hop, ok := m.Hop(rec.Source, rec.Destination)
		var ch *chanmodel.Channel
		if ok {
			ch, ok = hop.Channel(rec.ShortChannelID)
		}
		if ok {
			ch.SetDirection(dir, cd)
			continue
		}

		var alph, nonAlph *chanmodel.ChannelInDirection
		if dir == chanmodel.Alph {
			alph = cd
		} else {
			nonAlph = cd
		}
		m.AddChannel(rec.Source, rec.Destination, rec.ShortChannelID, rec.Satoshis, alph, nonAlph)
	}
	return m, nil
}

func recordToDirection(rec channelRecord, defaultNumSlots int) *chanmodel.ChannelInDirection {
	successBase, successRate := defaultSuccessBase, defaultSuccessRate
	if rec.BaseFeeMillisatoshi != nil {
		successBase = *rec.BaseFeeMillisatoshi / millisatPerSat
	}
	if rec.FeePerMillionth != nil {
		successRate = *rec.FeePerMillionth / perMillion
	}

	var upfrontBase, upfrontRate float64
	if rec.BaseFeeMillisatoshiUpfront != nil {
		upfrontBase = *rec.BaseFeeMillisatoshiUpfront / millisatPerSat
	}
	if rec.FeePerMillionthUpfront != nil {
		upfrontRate = *rec.FeePerMillionthUpfront / perMillion
	}

	cd := chanmodel.NewChannelInDirection(defaultNumSlots, upfrontBase, upfrontRate, successBase, successRate)
	cd.Enabled = rec.Active
	return cd
}
