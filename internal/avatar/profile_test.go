package avatar

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestProfileJSONHidesPromptExposesScript(t *testing.T) {
	p := &Profile{
		ID:           "ava",
		SystemPrompt: "persona instructions stay server-side",
		Script: []ScriptedInteraction{{
			ID:           "intro",
			UserQuestion: "who are you",
			Response:     "I am Ava.",
			AudioURL:     "https://cdn.example.com/intro.mp3",
			Visemes:      "[[0,15],[80,0]]",
		}},
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)
	if strings.Contains(body, "persona instructions") {
		t.Error("system prompt leaked into catalog JSON")
	}
	for _, want := range []string{`"script"`, `"audioUrl"`, `"visemes"`, `"userQuestion"`} {
		if !strings.Contains(body, want) {
			t.Errorf("catalog JSON missing %s: %s", want, body)
		}
	}
}

func TestEmotionLookup(t *testing.T) {
	p := &Profile{
		Expressions: map[string]Expression{
			"happy": {MorphTargets: []string{"mouthSmile"}, Intensity: 0.8},
			"Sad":   {MorphTargets: []string{"mouthFrownLeft"}, Intensity: 0.7},
		},
	}

	if _, ok := p.Emotion("happy"); !ok {
		t.Error("exact match failed")
	}
	if e, ok := p.Emotion("HAPPY"); !ok || e.Intensity != 0.8 {
		t.Errorf("case-insensitive match failed: %+v %v", e, ok)
	}
	if _, ok := p.Emotion("sad"); !ok {
		t.Error("mixed-case key not matched")
	}
	if _, ok := p.Emotion("angry"); ok {
		t.Error("unmapped emotion matched")
	}
	if _, ok := p.Emotion(""); ok {
		t.Error("empty label matched")
	}

	var nilProfile *Profile
	if _, ok := nilProfile.Emotion("happy"); ok {
		t.Error("nil profile matched")
	}
}

func TestRigHas(t *testing.T) {
	r := NewRig([]string{"mouthSmile", "eye_close"})
	if !r.Has("mouthSmile") {
		t.Error("known channel missing")
	}
	if r.Has("browInnerUp") {
		t.Error("unknown channel present")
	}

	p := PermissiveRig()
	if !p.Has("anything_at_all") {
		t.Error("permissive rig rejected a channel")
	}
	if p.Channels() != nil {
		t.Error("permissive rig enumerated channels")
	}
}
