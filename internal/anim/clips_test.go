package anim

import (
	"math"
	"testing"

	"github.com/Amandubey211/AVA.AI/internal/state"
)

func TestChooseNextAvoidsImmediateRepeat(t *testing.T) {
	// With two candidates and one excluded, the pick is forced.
	got := ChooseNext(TalkingClips, "Talking", func(n int) int { return 0 })
	if got != "Talking2" {
		t.Errorf("ChooseNext after Talking = %q, want Talking2", got)
	}
	got = ChooseNext(TalkingClips, "Talking2", func(n int) int { return 0 })
	if got != "Talking" {
		t.Errorf("ChooseNext after Talking2 = %q, want Talking", got)
	}
}

func TestChooseNextSingleCandidate(t *testing.T) {
	// Only one variant: repeats are unavoidable and allowed.
	got := ChooseNext([]string{"Talking"}, "Talking", func(n int) int { return 0 })
	if got != "Talking" {
		t.Errorf("ChooseNext = %q, want Talking", got)
	}
}

func TestChooseNextEmpty(t *testing.T) {
	if got := ChooseNext(nil, "", func(n int) int { return 0 }); got != "" {
		t.Errorf("ChooseNext(nil) = %q, want empty", got)
	}
}

func TestClipForState(t *testing.T) {
	cases := []struct {
		status  state.ChatStatus
		playing bool
		want    string
	}{
		{state.StatusReady, false, ClipIdle},
		{state.StatusSubmitted, false, ClipThinking},
		{state.StatusSubmitted, true, ClipThinking},
		{state.StatusStreaming, true, ""},
		{state.StatusReady, true, ""},
		{state.StatusStreaming, false, ClipIdle},
		{state.StatusError, false, ClipIdle},
	}
	for _, tc := range cases {
		if got := ClipForState(tc.status, tc.playing); got != tc.want {
			t.Errorf("ClipForState(%s, playing=%v) = %q, want %q", tc.status, tc.playing, got, tc.want)
		}
	}
}

func TestClipMixerCrossFade(t *testing.T) {
	m := NewClipMixer()
	if m.Current() != ClipIdle {
		t.Fatalf("initial clip = %q", m.Current())
	}

	m.Play(ClipThinking)
	m.Update(0.25) // half the fade

	w := m.Weights()
	if math.Abs(w[ClipThinking]-0.5) > 1e-9 {
		t.Errorf("incoming weight = %v, want 0.5", w[ClipThinking])
	}
	if math.Abs(w[ClipIdle]-0.5) > 1e-9 {
		t.Errorf("outgoing weight = %v, want 0.5", w[ClipIdle])
	}

	m.Update(0.25)
	w = m.Weights()
	if w[ClipThinking] != 1 {
		t.Errorf("incoming weight after full fade = %v, want 1", w[ClipThinking])
	}
	if _, ok := w[ClipIdle]; ok {
		t.Errorf("outgoing clip still present after fade: %v", w)
	}
}

func TestClipMixerReplayCurrentIsNoop(t *testing.T) {
	m := NewClipMixer()
	m.Play(ClipIdle)
	m.Update(0.1)
	w := m.Weights()
	if w[ClipIdle] != 1 {
		t.Errorf("replaying current clip disturbed weight: %v", w[ClipIdle])
	}
}
