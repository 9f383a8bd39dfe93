package crisis

import (
	"testing"
	"time"

	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
)

func TestEvaluateNoSignal(t *testing.T) {
	result := Evaluate(Input{Text: "today was a pretty ordinary day"})
	if result.IsCrisis {
		t.Fatalf("expected no crisis, got %+v", result)
	}
	if result.Reason != ReasonNone {
		t.Fatalf("expected reason none, got %s", result.Reason)
	}
	if result.Confidence != ConfidenceLow {
		t.Fatalf("expected low confidence, got %s", result.Confidence)
	}
}

func TestEvaluateSingleKeywordMediumConfidence(t *testing.T) {
	result := Evaluate(Input{Text: "sometimes I just want to hurt myself"})
	if !result.IsCrisis || result.Reason != ReasonKeyword {
		t.Fatalf("expected keyword crisis, got %+v", result)
	}
	if result.Confidence != ConfidenceMedium {
		t.Fatalf("expected medium confidence for one match, got %s", result.Confidence)
	}
}

func TestEvaluateTwoKeywordsHighConfidence(t *testing.T) {
	result := Evaluate(Input{Text: "I want to die, there is no reason to live"})
	if !result.IsCrisis || result.Reason != ReasonKeyword {
		t.Fatalf("expected keyword crisis, got %+v", result)
	}
	if result.Confidence != ConfidenceHigh {
		t.Fatalf("expected high confidence for two matches, got %s", result.Confidence)
	}
}

func TestEvaluateKeywordIgnoresCaseAndSpacing(t *testing.T) {
	result := Evaluate(Input{Text: "I WANT TO  DIE"})
	if !result.IsCrisis || result.Reason != ReasonKeyword {
		t.Fatalf("expected keyword crisis regardless of case, got %+v", result)
	}
}

func TestEvaluateIntensityThresholds(t *testing.T) {
	cases := []struct {
		emotion    checkin.Emotion
		intensity  int
		crisis     bool
		confidence Confidence
	}{
		{checkin.Sadness, 8, false, ""},
		{checkin.Sadness, 9, true, ConfidenceMedium},
		{checkin.Sadness, 10, true, ConfidenceHigh},
		{checkin.Anxiety, 9, true, ConfidenceMedium},
		{checkin.Anger, 10, true, ConfidenceHigh},
		{checkin.Joy, 10, false, ""},
		{checkin.Peace, 10, false, ""},
	}

	for _, tc := range cases {
		result := Evaluate(Input{Emotion: tc.emotion, Intensity: tc.intensity})
		if result.IsCrisis != tc.crisis {
			t.Fatalf("%s@%d: expected crisis=%v, got %+v", tc.emotion, tc.intensity, tc.crisis, result)
		}
		if tc.crisis {
			if result.Reason != ReasonIntensity {
				t.Fatalf("%s@%d: expected intensity reason, got %s", tc.emotion, tc.intensity, result.Reason)
			}
			if result.Confidence != tc.confidence {
				t.Fatalf("%s@%d: expected %s confidence, got %s", tc.emotion, tc.intensity, tc.confidence, result.Confidence)
			}
		}
	}
}

func TestEvaluateKeywordWinsOverIntensity(t *testing.T) {
	result := Evaluate(Input{
		Text:      "I want to die",
		Emotion:   checkin.Sadness,
		Intensity: 10,
	})
	if result.Reason != ReasonKeyword {
		t.Fatalf("expected keyword layer to short-circuit, got %s", result.Reason)
	}
}

func entryOn(daysAgo int, emotion checkin.Emotion, intensity int) checkin.Entry {
	return checkin.Entry{
		Date:      time.Now().UTC().AddDate(0, 0, -daysAgo),
		Emotion:   emotion,
		Intensity: intensity,
	}
}

func TestEvaluatePatternSevereDays(t *testing.T) {
	recent := []checkin.Entry{
		entryOn(0, checkin.Anxiety, 8),
		entryOn(1, checkin.Anxiety, 8),
		entryOn(2, checkin.Anxiety, 8),
	}

	result := Evaluate(Input{Recent: recent})
	if !result.IsCrisis || result.Reason != ReasonPattern {
		t.Fatalf("expected pattern crisis for 3 severe days, got %+v", result)
	}
	if result.Confidence != ConfidenceMedium {
		t.Fatalf("expected medium confidence for 3 days, got %s", result.Confidence)
	}

	for day := 3; day < 5; day++ {
		recent = append(recent, entryOn(day, checkin.Anxiety, 8))
	}
	result = Evaluate(Input{Recent: recent})
	if result.Confidence != ConfidenceHigh {
		t.Fatalf("expected high confidence for 5 days, got %s", result.Confidence)
	}
}

func TestEvaluatePatternIntensityJump(t *testing.T) {
	recent := []checkin.Entry{
		entryOn(0, checkin.Sadness, 9),
		entryOn(1, checkin.Peace, 2),
	}

	result := Evaluate(Input{Recent: recent})
	if !result.IsCrisis || result.Reason != ReasonPattern {
		t.Fatalf("expected pattern crisis for intensity jump, got %+v", result)
	}
	if result.Confidence != ConfidenceMedium {
		t.Fatalf("expected medium confidence for jump, got %s", result.Confidence)
	}
}

func TestEvaluatePatternJumpRequiresAdjacentDays(t *testing.T) {
	recent := []checkin.Entry{
		entryOn(0, checkin.Sadness, 9),
		entryOn(4, checkin.Peace, 2),
	}

	result := Evaluate(Input{Recent: recent})
	if result.IsCrisis {
		t.Fatalf("expected no crisis for a jump across non-adjacent days, got %+v", result)
	}
}

func TestEvaluatePatternProlongedElevatedDays(t *testing.T) {
	var recent []checkin.Entry
	for day := 0; day < 7; day++ {
		recent = append(recent, entryOn(day, checkin.Sadness, 7))
	}

	result := Evaluate(Input{Recent: recent})
	if !result.IsCrisis || result.Reason != ReasonPattern {
		t.Fatalf("expected pattern crisis for 7 elevated days, got %+v", result)
	}
	if result.Confidence != ConfidenceMedium {
		t.Fatalf("expected medium confidence, got %s", result.Confidence)
	}
}

func TestEvaluatePatternIgnoresPositiveEmotions(t *testing.T) {
	var recent []checkin.Entry
	for day := 0; day < 7; day++ {
		recent = append(recent, entryOn(day, checkin.Joy, 10))
	}

	result := Evaluate(Input{Recent: recent})
	if result.IsCrisis {
		t.Fatalf("expected no crisis for positive history, got %+v", result)
	}
}

func TestEvaluateCustomKeywordList(t *testing.T) {
	evaluator := New([]string{"code red"})

	result := evaluator.Evaluate(Input{Text: "this is a CODE RED moment"})
	if !result.IsCrisis {
		t.Fatalf("expected custom keyword to fire, got %+v", result)
	}

	result = evaluator.Evaluate(Input{Text: "I want to die"})
	if result.IsCrisis {
		t.Fatalf("custom list should replace defaults, got %+v", result)
	}
}

func TestEvaluateLiveMinimumLength(t *testing.T) {
	result := EvaluateLive("suicide")
	if result.IsCrisis {
		t.Fatalf("expected short partial input to be skipped, got %+v", result)
	}

	result = EvaluateLive("lately I keep thinking about suicide")
	if !result.IsCrisis || result.Reason != ReasonKeyword {
		t.Fatalf("expected keyword layer to fire on full text, got %+v", result)
	}
}

func TestEvaluateLiveKeywordLayerOnly(t *testing.T) {
	result := EvaluateLive("a perfectly calm stretch of sentences about the weather")
	if result.IsCrisis {
		t.Fatalf("expected no crisis without a flagged phrase, got %+v", result)
	}
	if result.Reason != ReasonNone {
		t.Fatalf("expected reason none, got %q", result.Reason)
	}
}
