package crisis

import (
	"fmt"
	"strings"
	"time"

	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
)

// Reason names the signal layer that fired.
type Reason string

const (
	ReasonKeyword   Reason = "keyword"
	ReasonIntensity Reason = "intensity"
	ReasonPattern   Reason = "pattern"
	ReasonNone      Reason = "none"
	// ReasonClassifier is reported only by the optional remote escalation
	// layer, never by the pure evaluator.
	ReasonClassifier Reason = "classifier"
)

// Confidence grades how strongly a layer fired.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Result is produced fresh on every evaluation and only ever travels as an
// event payload, never as mutable state.
type Result struct {
	IsCrisis   bool       `json:"isCrisis"`
	Reason     Reason     `json:"reason"`
	Confidence Confidence `json:"confidence"`
	Details    string     `json:"details,omitempty"`
}

// Input carries everything a single evaluation may consider. Zero values mean
// "not provided": an empty Text skips the keyword layer, an empty Emotion or
// zero Intensity skips the intensity layer, nil Recent skips the pattern
// layer. Recent must be ordered most-recent-first.
type Input struct {
	Text      string
	Emotion   checkin.Emotion
	Intensity int
	Recent    []checkin.Entry
}

// MinTextLength is the shortest free text worth running the keyword layer on
// for live (per-keystroke) evaluation; very short partial input produces
// false positives.
const MinTextLength = 10

// Evaluator scores crisis signals from text, emotion+intensity, and recent
// history. It is pure and cheap enough to run on every keystroke or slider
// change.
type Evaluator struct {
	keywords []string
}

// New builds an evaluator over the given keyword phrases; nil falls back to
// the curated default list.
func New(keywords []string) *Evaluator {
	if len(keywords) == 0 {
		keywords = DefaultKeywords()
	}
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if n := normalize(kw); n != "" {
			normalized = append(normalized, n)
		}
	}
	return &Evaluator{keywords: normalized}
}

// Evaluate runs the layers in fixed order (keyword, intensity, pattern) and
// returns the first one that fires.
func (e *Evaluator) Evaluate(in Input) Result {
	if r, ok := e.evaluateKeywords(in.Text); ok {
		return r
	}
	if r, ok := evaluateIntensity(in.Emotion, in.Intensity); ok {
		return r
	}
	if r, ok := evaluatePattern(in.Recent); ok {
		return r
	}
	return Result{IsCrisis: false, Reason: ReasonNone, Confidence: ConfidenceLow}
}

// EvaluateLive runs only the keyword layer and gates it on MinTextLength, so
// callers can re-check free text on every edit without touching the intensity
// or pattern layers.
func (e *Evaluator) EvaluateLive(text string) Result {
	if len([]rune(strings.TrimSpace(text))) < MinTextLength {
		return Result{IsCrisis: false, Reason: ReasonNone, Confidence: ConfidenceLow}
	}
	if r, ok := e.evaluateKeywords(text); ok {
		return r
	}
	return Result{IsCrisis: false, Reason: ReasonNone, Confidence: ConfidenceLow}
}

// Evaluate runs the default evaluator. Convenience for callers that do not
// customize the keyword list.
func Evaluate(in Input) Result {
	return defaultEvaluator.Evaluate(in)
}

// EvaluateLive runs the default evaluator's live keyword check.
func EvaluateLive(text string) Result {
	return defaultEvaluator.EvaluateLive(text)
}

var defaultEvaluator = New(nil)

func (e *Evaluator) evaluateKeywords(text string) (Result, bool) {
	normalized := normalize(text)
	if normalized == "" {
		return Result{}, false
	}

	var matched []string
	for _, kw := range e.keywords {
		if strings.Contains(normalized, kw) {
			matched = append(matched, kw)
		}
	}
	if len(matched) == 0 {
		return Result{}, false
	}

	confidence := ConfidenceMedium
	if len(matched) >= 2 {
		confidence = ConfidenceHigh
	}
	return Result{
		IsCrisis:   true,
		Reason:     ReasonKeyword,
		Confidence: confidence,
		Details:    fmt.Sprintf("matched %d phrase(s): %s", len(matched), strings.Join(matched, ", ")),
	}, true
}

func evaluateIntensity(emotion checkin.Emotion, intensity int) (Result, bool) {
	if emotion == "" || intensity == 0 {
		return Result{}, false
	}
	if !emotion.Negative() || intensity < 9 {
		return Result{}, false
	}
	confidence := ConfidenceMedium
	if intensity >= checkin.MaxIntensity {
		confidence = ConfidenceHigh
	}
	return Result{
		IsCrisis:   true,
		Reason:     ReasonIntensity,
		Confidence: confidence,
		Details:    fmt.Sprintf("%s at intensity %d", emotion, intensity),
	}, true
}

// evaluatePattern applies three independent rules over the recent history;
// the first that matches wins.
func evaluatePattern(recent []checkin.Entry) (Result, bool) {
	if len(recent) == 0 {
		return Result{}, false
	}

	// Rule 1: sustained severe days (negative emotion, intensity >= 8).
	if days := distinctDays(recent, 8); days >= 3 {
		confidence := ConfidenceMedium
		if days >= 5 {
			confidence = ConfidenceHigh
		}
		return Result{
			IsCrisis:   true,
			Reason:     ReasonPattern,
			Confidence: confidence,
			Details:    fmt.Sprintf("%d day(s) with severe negative intensity", days),
		}, true
	}

	// Rule 2: a sudden jump between the two most recent entries.
	if len(recent) >= 2 {
		latest, previous := recent[0], recent[1]
		if previous.Intensity <= 3 && latest.Intensity >= 9 &&
			latest.Intensity-previous.Intensity >= 6 &&
			withinAdjacentDays(latest.Date, previous.Date) {
			return Result{
				IsCrisis:   true,
				Reason:     ReasonPattern,
				Confidence: ConfidenceMedium,
				Details:    fmt.Sprintf("intensity jump %d -> %d", previous.Intensity, latest.Intensity),
			}, true
		}
	}

	// Rule 3: prolonged elevated days (negative emotion, intensity >= 7).
	if days := distinctDays(recent, 7); days >= 7 {
		return Result{
			IsCrisis:   true,
			Reason:     ReasonPattern,
			Confidence: ConfidenceMedium,
			Details:    fmt.Sprintf("%d day(s) with elevated negative intensity", days),
		}, true
	}

	return Result{}, false
}

// distinctDays counts distinct calendar days carrying a negative emotion at
// or above the intensity floor.
func distinctDays(recent []checkin.Entry, minIntensity int) int {
	days := make(map[string]struct{})
	for _, entry := range recent {
		if !entry.Emotion.Negative() || entry.Intensity < minIntensity {
			continue
		}
		days[entry.Date.UTC().Format("2006-01-02")] = struct{}{}
	}
	return len(days)
}

// withinAdjacentDays reports whether two timestamps fall on the same or
// adjacent calendar days.
func withinAdjacentDays(a, b time.Time) bool {
	da := a.UTC().Truncate(24 * time.Hour)
	db := b.UTC().Truncate(24 * time.Hour)
	diff := da.Sub(db)
	if diff < 0 {
		diff = -diff
	}
	return diff <= 24*time.Hour
}

// normalize lowercases and strips all whitespace so multi-word phrases match
// regardless of spacing.
func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), "")
}
