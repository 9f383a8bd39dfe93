// Package night implements the Night check-in state machine: a diary entry is
// analyzed into an AI letter, then saved automatically. The reducer is pure;
// generation, persistence, and the letter-step auto-save guard live in the
// orchestration layer.
package night

import (
	"github.com/dallae-labs/dallae/backend/internal/analysis/crisis"
	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
)

// Phase tags each state variant.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseEmotionStep    Phase = "emotion_step"
	PhaseDiaryStep      Phase = "diary_step"
	PhaseAnalyzing      Phase = "analyzing"
	PhaseLetterStep     Phase = "letter_step"
	PhaseSaving         Phase = "saving"
	PhaseSaved          Phase = "saved"
	PhaseCrisisDetected Phase = "crisis_detected"
	PhaseError          Phase = "error"
)

// State is the tagged union over the Night machine's states.
type State interface {
	Phase() Phase
	nightState()
}

// Idle is the state before the flow has started.
type Idle struct{}

// EmotionStep collects the evening's emotion and intensity. An empty Emotion
// means nothing has been picked yet.
type EmotionStep struct {
	Emotion   checkin.Emotion
	Intensity int
}

// DiaryStep collects the free-text diary. Summary is an optional
// externally-supplied same-day recap shown for continuity.
type DiaryStep struct {
	Emotion   checkin.Emotion
	Intensity int
	Summary   string
	Diary     string
}

// Analyzing suspends the flow while the letter is generated.
type Analyzing struct {
	Emotion   checkin.Emotion
	Intensity int
	Diary     string
}

// LetterStep presents the generated (or fallback) letter. Entering this state
// triggers the one-shot automatic save in the orchestration layer.
type LetterStep struct {
	Emotion   checkin.Emotion
	Intensity int
	Diary     string
	Letter    string
}

// Saving is the persistence attempt with its observable retry context.
type Saving struct {
	Emotion   checkin.Emotion
	Intensity int
	Diary     string
	Letter    string
	Retry     checkin.RetryContext
}

// Saved is the terminal state after a successful persist.
type Saved struct {
	Emotion   checkin.Emotion
	Intensity int
	Diary     string
	Letter    string
	EntryID   string
}

// CrisisDetected interrupts any live state; Return is restored verbatim.
type CrisisDetected struct {
	Return State
	Result crisis.Result
}

// Errored is the terminal state after save retries are exhausted.
type Errored struct {
	Message string
}

func (Idle) Phase() Phase           { return PhaseIdle }
func (EmotionStep) Phase() Phase    { return PhaseEmotionStep }
func (DiaryStep) Phase() Phase      { return PhaseDiaryStep }
func (Analyzing) Phase() Phase      { return PhaseAnalyzing }
func (LetterStep) Phase() Phase     { return PhaseLetterStep }
func (Saving) Phase() Phase         { return PhaseSaving }
func (Saved) Phase() Phase          { return PhaseSaved }
func (CrisisDetected) Phase() Phase { return PhaseCrisisDetected }
func (Errored) Phase() Phase        { return PhaseError }

func (Idle) nightState()           {}
func (EmotionStep) nightState()    {}
func (DiaryStep) nightState()      {}
func (Analyzing) nightState()      {}
func (LetterStep) nightState()     {}
func (Saving) nightState()         {}
func (Saved) nightState()          {}
func (CrisisDetected) nightState() {}
func (Errored) nightState()        {}

// Initial returns the machine's starting state. The flow auto-starts on
// mount, so hosts dispatch Start immediately after construction.
func Initial() State { return Idle{} }
