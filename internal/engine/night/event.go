package night

import (
	"github.com/dallae-labs/dallae/backend/internal/analysis/crisis"
	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
)

// Event is the tagged union over everything the Night machine handles.
type Event interface {
	nightEvent()
}

// Start begins the flow; the machine auto-starts on mount.
type Start struct{}

// SelectEmotion picks (or re-picks) the evening's emotion.
type SelectEmotion struct {
	Emotion checkin.Emotion
}

// SetIntensity sets the intensity slider.
type SetIntensity struct {
	Value int
}

// Advance moves to the diary step; a no-op while no emotion is picked.
// Summary optionally carries a same-day recap for display continuity.
type Advance struct {
	Summary string
}

// UpdateDiary live-updates the diary text before analysis.
type UpdateDiary struct {
	Text string
}

// Analyze submits the diary for letter generation; a no-op on empty text.
type Analyze struct{}

// LetterSucceeded stores the generated letter.
type LetterSucceeded struct {
	Letter string
}

// LetterFailed stores the fixed fallback letter; the failure is fully
// recovered and never surfaced.
type LetterFailed struct {
	Fallback string
}

// BeginSave starts the automatic persistence attempt on letter entry. The
// at-most-once guard lives in the orchestration layer.
type BeginSave struct{}

// SaveRetried surfaces one scheduled retry of the in-flight save.
type SaveRetried struct {
	Count int
	Err   string
}

// SaveSucceeded finishes the persistence attempt.
type SaveSucceeded struct {
	EntryID string
}

// SaveFailed reports exhausted retries.
type SaveFailed struct {
	Err string
}

// CrisisSignaled interrupts the current state with a crisis result.
type CrisisSignaled struct {
	Result crisis.Result
}

// CrisisHandled restores the state captured at interrupt time.
type CrisisHandled struct{}

// Reset returns to the emotion step from any state.
type Reset struct{}

func (Start) nightEvent()           {}
func (SelectEmotion) nightEvent()   {}
func (SetIntensity) nightEvent()    {}
func (Advance) nightEvent()         {}
func (UpdateDiary) nightEvent()     {}
func (Analyze) nightEvent()         {}
func (LetterSucceeded) nightEvent() {}
func (LetterFailed) nightEvent()    {}
func (BeginSave) nightEvent()       {}
func (SaveRetried) nightEvent()     {}
func (SaveSucceeded) nightEvent()   {}
func (SaveFailed) nightEvent()      {}
func (CrisisSignaled) nightEvent()  {}
func (CrisisHandled) nightEvent()   {}
func (Reset) nightEvent()           {}
