package chat

import (
	"regexp"
	"strings"

	"github.com/Amandubey211/AVA.AI/internal/avatar"
)

// Model responses may end with a bracketed sentiment tag, e.g.
// "Hello there! [happy]". The tag drives the facial expression and is
// stripped before the text reaches speech synthesis. Only a trailing tag
// counts; brackets mid-sentence are ordinary text.
var emotionTagPattern = regexp.MustCompile(`\[([a-zA-Z]+)\]\s*$`)

// ExtractEmotion splits a model response into spoken text and emotion label.
// Responses without a tag, and empty responses, come back neutral.
func ExtractEmotion(response string) (text, emotion string) {
	emotion = avatar.EmotionNeutral
	text = response

	if m := emotionTagPattern.FindStringSubmatch(response); m != nil {
		emotion = strings.ToLower(m[1])
		text = emotionTagPattern.ReplaceAllString(response, "")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		emotion = avatar.EmotionNeutral
	}
	return text, emotion
}
