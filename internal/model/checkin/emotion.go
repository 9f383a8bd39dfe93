package checkin

import (
	"fmt"
	"strings"
)

// Emotion is the closed set of moods a check-in can record.
type Emotion string

const (
	Joy     Emotion = "joy"
	Peace   Emotion = "peace"
	Anxiety Emotion = "anxiety"
	Sadness Emotion = "sadness"
	Anger   Emotion = "anger"
)

// Intensity bounds for a check-in. DefaultIntensity is the slider midpoint
// presented before the user adjusts anything.
const (
	MinIntensity     = 1
	MaxIntensity     = 10
	DefaultIntensity = 5
)

// ParseEmotion validates a raw emotion value.
func ParseEmotion(raw string) (Emotion, error) {
	switch Emotion(strings.ToLower(strings.TrimSpace(raw))) {
	case Joy:
		return Joy, nil
	case Peace:
		return Peace, nil
	case Anxiety:
		return Anxiety, nil
	case Sadness:
		return Sadness, nil
	case Anger:
		return Anger, nil
	default:
		return "", fmt.Errorf("unknown emotion %q", raw)
	}
}

// Negative reports whether the emotion belongs to the negative set used by
// the crisis intensity and pattern layers.
func (e Emotion) Negative() bool {
	return e == Anxiety || e == Sadness || e == Anger
}

// ClampIntensity forces a value into the valid 1..10 range.
func ClampIntensity(v int) int {
	if v < MinIntensity {
		return MinIntensity
	}
	if v > MaxIntensity {
		return MaxIntensity
	}
	return v
}
