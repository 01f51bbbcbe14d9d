package anim

import (
	"testing"

	"github.com/Amandubey211/AVA.AI/internal/avatar"
	"github.com/Amandubey211/AVA.AI/internal/viseme"
)

func testExpressions() map[string]avatar.Expression {
	return map[string]avatar.Expression{
		"happy": {MorphTargets: []string{"mouthSmile"}, Intensity: 0.8},
		"sad":   {MorphTargets: []string{"mouthFrownLeft", "mouthFrownRight"}, Intensity: 0.7},
	}
}

func TestResolveActiveViseme(t *testing.T) {
	track := viseme.Track{{TimeMs: 0, ID: 15}, {TimeMs: 200, ID: 4}}

	targets := Resolve(ResolverInput{
		PlaybackMs:  100,
		HasAudio:    true,
		Track:       track,
		Expressions: testExpressions(),
	})

	active := targets[viseme.ChannelName(15)]
	if active.Value != 1 || active.Speed != SpeedFast {
		t.Errorf("active viseme target = %+v, want value 1 speed %v", active, SpeedFast)
	}

	// Every other viseme channel releases slowly to zero.
	for id := 1; id < viseme.ChannelCount; id++ {
		if id == 15 {
			continue
		}
		name := viseme.ChannelName(id)
		if name == SmileChannel {
			continue
		}
		got := targets[name]
		if got.Value != 0 || got.Speed != SpeedRelease {
			t.Errorf("channel %s target = %+v, want release to 0", name, got)
		}
	}
}

func TestResolveSilenceWithoutAudio(t *testing.T) {
	track := viseme.Track{{TimeMs: 0, ID: 15}}

	targets := Resolve(ResolverInput{
		HasAudio:    false,
		Track:       track,
		Expressions: testExpressions(),
	})

	got := targets[viseme.ChannelName(15)]
	if got.Value != 0 {
		t.Errorf("viseme active without audio: %+v", got)
	}
}

func TestResolveEmotionDrivesMappedMorphs(t *testing.T) {
	targets := Resolve(ResolverInput{
		Emotion:     "sad",
		Expressions: testExpressions(),
	})

	for _, name := range []string{"mouthFrownLeft", "mouthFrownRight"} {
		got := targets[name]
		if got.Value != 0.7 || got.Speed != SpeedRelease {
			t.Errorf("%s target = %+v, want intensity 0.7", name, got)
		}
	}
}

func TestResolveUnmappedEmotionReleasesAll(t *testing.T) {
	targets := Resolve(ResolverInput{
		Emotion:     "bewildered",
		Expressions: testExpressions(),
	})

	for _, name := range []string{"mouthFrownLeft", "mouthFrownRight"} {
		if got := targets[name]; got.Value != 0 {
			t.Errorf("%s = %+v, want release for unmapped emotion", name, got)
		}
	}
}

func TestResolveSmileBaseline(t *testing.T) {
	targets := Resolve(ResolverInput{Expressions: testExpressions()})
	got := targets[SmileChannel]
	if got.Value != SmileBaseline || got.Speed != SpeedSnap {
		t.Errorf("idle smile = %+v, want baseline %v", got, SmileBaseline)
	}

	// A stronger smile from an expression wins over the baseline.
	targets = Resolve(ResolverInput{Emotion: "happy", Expressions: testExpressions()})
	got = targets[SmileChannel]
	if got.Value != 0.8 {
		t.Errorf("happy smile = %+v, want expression intensity 0.8", got)
	}
}

func TestResolveBlinkOverlay(t *testing.T) {
	targets := Resolve(ResolverInput{Blink: true, Expressions: testExpressions()})
	got := targets[BlinkChannel]
	if got.Value != 1 || got.Speed != SpeedSnap {
		t.Errorf("blink target = %+v, want snap to 1", got)
	}

	targets = Resolve(ResolverInput{Blink: false, Expressions: testExpressions()})
	if got := targets[BlinkChannel]; got.Value != 0 {
		t.Errorf("open-eye target = %+v, want 0", got)
	}
}

func TestResolveEmotionCaseInsensitive(t *testing.T) {
	targets := Resolve(ResolverInput{Emotion: "Happy", Expressions: testExpressions()})
	if got := targets[SmileChannel]; got.Value != 0.8 {
		t.Errorf("capitalized emotion ignored: %+v", got)
	}
}
