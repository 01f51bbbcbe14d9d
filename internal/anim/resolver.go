// Package anim is the avatar animation runtime: the pure viseme/expression
// resolver, the body-clip state machine, and the per-frame animator that
// blends morph-target weights toward their resolved targets.
package anim

import (
	"github.com/Amandubey211/AVA.AI/internal/avatar"
	"github.com/Amandubey211/AVA.AI/internal/viseme"
)

// Morph channels with fixed roles across all avatars.
const (
	BlinkChannel = "eye_close"
	SmileChannel = "mouthSmile"

	// SmileBaseline is the idle smile bias applied whenever no stronger
	// expression drives the smile channel.
	SmileBaseline = 0.2
)

// Interpolation speeds, per frame-normalized step. Mouth and eye signals snap
// quickly; releases and emotion transitions ease out slowly.
const (
	SpeedSnap    = 0.5 // blink, smile bias
	SpeedFast    = 0.2 // active viseme attack
	SpeedRelease = 0.1 // viseme release, emotion transitions
)

// Target is a resolved per-channel goal: the weight to approach and how fast
// to approach it.
type Target struct {
	Value float64
	Speed float64
}

// ResolverInput is everything the resolver needs for one frame. It is plain
// data so the resolver stays a pure function.
type ResolverInput struct {
	// Playback position of the active audio clip in milliseconds. Ignored
	// when HasAudio is false.
	PlaybackMs float64
	HasAudio   bool
	Track      viseme.Track

	Emotion     string
	Expressions map[string]avatar.Expression

	Blink bool
}

// Resolve maps the current signals to a target weight for every channel the
// runtime drives. Channels not present on a given rig are filtered later by
// the animator; the resolver itself never fails on unknown names.
func Resolve(in ResolverInput) map[string]Target {
	targets := make(map[string]Target, viseme.ChannelCount+8)

	// Viseme channels: everything releases to zero except the active shape.
	active := viseme.Silence
	if in.HasAudio && len(in.Track) > 0 {
		active = in.Track.ActiveAt(in.PlaybackMs)
	}
	for id := 0; id < viseme.ChannelCount; id++ {
		name := viseme.ChannelName(id)
		if id == active && active != viseme.Silence {
			targets[name] = Target{Value: 1, Speed: SpeedFast}
		} else {
			targets[name] = Target{Value: 0, Speed: SpeedRelease}
		}
	}

	// Expression channels: every mapped morph releases to zero, then the
	// active emotion drives its own set at the configured intensity.
	for _, expr := range in.Expressions {
		for _, name := range expr.MorphTargets {
			if _, exists := targets[name]; !exists {
				targets[name] = Target{Value: 0, Speed: SpeedRelease}
			}
		}
	}
	if in.Emotion != "" {
		if expr, ok := lookupExpression(in.Expressions, in.Emotion); ok {
			for _, name := range expr.MorphTargets {
				targets[name] = Target{Value: expr.Intensity, Speed: SpeedRelease}
			}
		}
	}

	// Idle smile bias, unless an expression already asks for more.
	if existing, ok := targets[SmileChannel]; !ok || existing.Value < SmileBaseline {
		targets[SmileChannel] = Target{Value: SmileBaseline, Speed: SpeedSnap}
	}

	// Blink is an independent overlay on the eye-closure channel.
	blink := 0.0
	if in.Blink {
		blink = 1.0
	}
	targets[BlinkChannel] = Target{Value: blink, Speed: SpeedSnap}

	return targets
}

func lookupExpression(m map[string]avatar.Expression, label string) (avatar.Expression, bool) {
	p := avatar.Profile{Expressions: m}
	return p.Emotion(label)
}
