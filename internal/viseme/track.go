// Package viseme defines the timed mouth-shape track that pairs a synthesized
// audio clip with lip-sync animation data.
package viseme

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Silence is the viseme id used when nothing is being spoken.
const Silence = 0

// ChannelCount is the number of viseme morph channels on a rigged face.
const ChannelCount = 22

// ChannelNames maps viseme ids to the morph-target names used on the avatar
// meshes (Oculus-style naming).
var ChannelNames = [ChannelCount]string{
	"viseme_sil",
	"viseme_aa",
	"viseme_ih",
	"viseme_ou",
	"viseme_E",
	"viseme_uh",
	"viseme_oh",
	"viseme_FF",
	"viseme_DD",
	"viseme_kk",
	"viseme_nn",
	"viseme_RR",
	"viseme_SS",
	"viseme_CH",
	"viseme_TH",
	"viseme_pp",
	"viseme_I",
	"viseme_A",
	"viseme_O",
	"viseme_U",
	"viseme_e",
	"viseme_i",
}

// ChannelName returns the morph-target name for a viseme id, or "" for ids
// outside the rig's range.
func ChannelName(id int) string {
	if id < 0 || id >= ChannelCount {
		return ""
	}
	return ChannelNames[id]
}

// Cue is a single timed viseme. On the wire it is the two-element JSON array
// [timestampMs, visemeId].
type Cue struct {
	TimeMs float64
	ID     int
}

// MarshalJSON encodes the cue as [timestampMs, visemeId].
func (c Cue) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.TimeMs, float64(c.ID)})
}

// UnmarshalJSON decodes the [timestampMs, visemeId] pair form.
func (c *Cue) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("viseme cue must be a [timestampMs, visemeId] pair, got %d elements", len(pair))
	}
	c.TimeMs = pair[0]
	c.ID = int(pair[1])
	return nil
}

// Track is an ordered viseme timeline, timestamps non-decreasing.
type Track []Cue

// ActiveAt returns the viseme id in effect at the given playback time: the cue
// with the largest timestamp not after t. Times before the first cue resolve
// to Silence.
func (t Track) ActiveAt(ms float64) int {
	active := Silence
	for _, cue := range t {
		if ms >= cue.TimeMs {
			active = cue.ID
		} else {
			break
		}
	}
	return active
}

// EndMs returns the timestamp of the last cue, or 0 for an empty track.
func (t Track) EndMs() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].TimeMs
}

// Sorted reports whether timestamps are non-decreasing.
func (t Track) Sorted() bool {
	return sort.SliceIsSorted(t, func(i, j int) bool { return t[i].TimeMs < t[j].TimeMs })
}

// Encode serializes the track to its wire form, a JSON array of
// [timestampMs, visemeId] pairs. An empty track encodes as "[]".
func (t Track) Encode() (string, error) {
	if t == nil {
		t = Track{}
	}
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encode viseme track: %w", err)
	}
	return string(data), nil
}

// Decode parses the wire form back into a track. The decoded track preserves
// the exact ordered pair sequence produced by Encode.
func Decode(s string) (Track, error) {
	if s == "" {
		return Track{}, nil
	}
	var t Track
	if err := json.Unmarshal([]byte(s), &t); err != nil {
		return nil, fmt.Errorf("decode viseme track: %w", err)
	}
	return t, nil
}
