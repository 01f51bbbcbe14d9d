package viseme

import (
	"strings"
	"time"
)

// Timing assumptions for text-derived timelines. Roughly 12.5 sounds per
// second, which tracks natural speech closely enough for lip-sync.
const (
	leadInMs  = 50.0
	perCueMs  = 80.0
	trailerMs = 100.0
)

// charToViseme maps letters to viseme ids. Characters without a mouth shape
// (punctuation, whitespace, unvoiced letters) map to Silence and produce no cue.
func charToViseme(ch rune) int {
	switch ch {
	case 'a', 'i':
		return 1 // viseme_aa
	case 'e':
		return 4 // viseme_E
	case 'o', 'u':
		return 3 // viseme_ou
	case 'f', 'v':
		return 7 // viseme_FF
	case 't', 'd', 's':
		return 8 // viseme_DD
	case 'k', 'g', 'c':
		return 9 // viseme_kk
	case 'n':
		return 10 // viseme_nn
	case 'r':
		return 11 // viseme_RR
	case 'p', 'b', 'm':
		return 15 // viseme_pp
	default:
		return Silence
	}
}

// FromText derives an approximate viseme timeline from raw text. Used when the
// TTS provider returns no timing metadata: each voiced character advances the
// clock by a fixed step so the mouth keeps moving for about as long as the
// audio plays.
func FromText(text string) Track {
	track := Track{}
	t := leadInMs
	for _, ch := range strings.ToLower(text) {
		id := charToViseme(ch)
		if id == Silence {
			continue
		}
		track = append(track, Cue{TimeMs: t, ID: id})
		t += perCueMs
	}
	return track
}

// EstimateDuration guesses how long the synthesized audio for a track will
// play, for clocked playback when the audio backend reports no duration.
func (t Track) EstimateDuration() time.Duration {
	return time.Duration(t.EndMs()+trailerMs) * time.Millisecond
}
