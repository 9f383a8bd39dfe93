// Package action recommends micro-actions: short coping exercises suggested
// after a Day check-in. Recommendation is deterministic by emotion and
// intensity; no generation call is involved.
package action

import (
	"fmt"

	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
)

// Intensity at or above this picks the settling variant; below it, the
// sustaining variant.
const settleThreshold = 7

type pair struct {
	settle  checkin.MicroAction
	sustain checkin.MicroAction
}

var catalogue = map[checkin.Emotion]pair{
	checkin.Joy: {
		sustain: checkin.MicroAction{
			ID:          "joy-note",
			Title:       "Keep a piece of it",
			Description: "Write one sentence about what made today good, somewhere you will find it again.",
			Minutes:     2,
		},
		settle: checkin.MicroAction{
			ID:          "joy-share",
			Title:       "Pass it on",
			Description: "Send a short message to someone who would enjoy hearing about your day.",
			Minutes:     3,
		},
	},
	checkin.Peace: {
		sustain: checkin.MicroAction{
			ID:          "peace-stretch",
			Title:       "Slow stretch",
			Description: "Stand up, reach overhead, and take five unhurried breaths.",
			Minutes:     2,
		},
		settle: checkin.MicroAction{
			ID:          "peace-tea",
			Title:       "A warm pause",
			Description: "Make a warm drink and do nothing else while you finish it.",
			Minutes:     5,
		},
	},
	checkin.Anxiety: {
		sustain: checkin.MicroAction{
			ID:          "anxiety-list",
			Title:       "Park the worries",
			Description: "Write down the three loudest worries. They will keep on paper; they don't all need answers tonight.",
			Minutes:     4,
		},
		settle: checkin.MicroAction{
			ID:          "anxiety-breathing",
			Title:       "Box breathing",
			Description: "Breathe in for four counts, hold four, out four, hold four. Repeat for ten rounds.",
			Minutes:     3,
		},
	},
	checkin.Sadness: {
		sustain: checkin.MicroAction{
			ID:          "sadness-walk",
			Title:       "Short walk",
			Description: "Step outside or to a window for a few minutes. No goal, just a change of air.",
			Minutes:     5,
		},
		settle: checkin.MicroAction{
			ID:          "sadness-grounding",
			Title:       "Five senses",
			Description: "Name five things you can see, four you can touch, three you can hear, two you can smell, one you can taste.",
			Minutes:     3,
		},
	},
	checkin.Anger: {
		sustain: checkin.MicroAction{
			ID:          "anger-write",
			Title:       "Unsent letter",
			Description: "Write what you wish you could say, then close the note without sending it.",
			Minutes:     5,
		},
		settle: checkin.MicroAction{
			ID:          "anger-release",
			Title:       "Tense and release",
			Description: "Clench your fists hard for five seconds, then let go completely. Repeat five times.",
			Minutes:     2,
		},
	},
}

// Recommend picks the micro-action for an emotion and intensity.
func Recommend(emotion checkin.Emotion, intensity int) (checkin.MicroAction, error) {
	entry, ok := catalogue[emotion]
	if !ok {
		return checkin.MicroAction{}, fmt.Errorf("no micro-action for emotion %q", emotion)
	}
	if intensity >= settleThreshold {
		return entry.settle, nil
	}
	return entry.sustain, nil
}
