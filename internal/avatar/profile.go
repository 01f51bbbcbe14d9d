// Package avatar holds the static, per-avatar configuration: who the
// character is, which model and voice it uses, and how named emotions map to
// morph targets. Profiles are plain data; all avatars share one behavioral
// contract and differ only in these values.
package avatar

import "strings"

// Expression maps an emotion label to the morph targets it drives and the
// weight they are driven to.
type Expression struct {
	MorphTargets []string `mapstructure:"morph_targets" json:"morphTargets"`
	Intensity    float64  `mapstructure:"intensity" json:"intensity"`
}

// Profile describes one avatar.
type Profile struct {
	ID               string                `mapstructure:"id" json:"id"`
	Name             string                `mapstructure:"name" json:"name"`
	Character        string                `mapstructure:"character" json:"character"`
	ModelURL         string                `mapstructure:"model_url" json:"modelUrl"`
	IdleAnimationURL string                `mapstructure:"idle_animation_url" json:"idleAnimationUrl"`
	ImageURL         string                `mapstructure:"image_url" json:"imageUrl"`
	Tags             []string              `mapstructure:"tags" json:"tags"`
	ShortDescription string                `mapstructure:"short_description" json:"shortDescription"`
	VoiceID          string                `mapstructure:"voice_id" json:"voiceId"`
	SystemPrompt     string                `mapstructure:"system_prompt" json:"-"`
	Featured         bool                  `mapstructure:"featured" json:"featured"`
	Expressions      map[string]Expression `mapstructure:"expressions" json:"expressions"`
	Script           []ScriptedInteraction `mapstructure:"script" json:"script,omitempty"`
}

// ScriptedInteraction is a canned demo exchange playable without the model
// backend: the response text, its emotion, and a pre-baked viseme track.
type ScriptedInteraction struct {
	ID           string `mapstructure:"id" json:"id"`
	UserQuestion string `mapstructure:"user_question" json:"userQuestion"`
	Response     string `mapstructure:"response" json:"response"`
	Emotion      string `mapstructure:"emotion" json:"emotion"`
	AudioURL     string `mapstructure:"audio_url" json:"audioUrl"`
	Visemes      string `mapstructure:"visemes" json:"visemes"` // wire-format viseme track
}

// EmotionNeutral is the default emotion when a response carries no sentiment
// tag.
const EmotionNeutral = "neutral"

// Emotion returns the expression for a label, case-insensitively. The bool is
// false when the avatar has no mapping for that emotion.
func (p *Profile) Emotion(label string) (Expression, bool) {
	if p == nil || label == "" {
		return Expression{}, false
	}
	if e, ok := p.Expressions[label]; ok {
		return e, true
	}
	lower := strings.ToLower(label)
	for name, e := range p.Expressions {
		if strings.ToLower(name) == lower {
			return e, true
		}
	}
	return Expression{}, false
}
