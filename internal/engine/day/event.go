package day

import (
	"github.com/dallae-labs/dallae/backend/internal/analysis/crisis"
	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
)

// Event is the tagged union over everything that can be dispatched into the
// Day machine. Events that represent async results carry fully-formed
// payloads so the reducer itself stays deterministic.
type Event interface {
	dayEvent()
}

// OpenModal presents the check-in entry point.
type OpenModal struct{}

// SelectEmotion picks (or re-picks) the emotion.
type SelectEmotion struct {
	Emotion checkin.Emotion
}

// SetIntensity directly sets the intensity slider.
type SetIntensity struct {
	Value int
}

// ConfirmEmotion commits the emotion+intensity pair and enters the chat.
type ConfirmEmotion struct{}

// UpdateDraft live-updates the chat input.
type UpdateDraft struct {
	Text string
}

// SendMessage appends the user turn optimistically and suspends awaiting a
// reply. The message is built by the orchestrator so the reducer never mints
// IDs or timestamps.
type SendMessage struct {
	Message checkin.Message
}

// AIResponseSucceeded delivers the generated assistant turn.
type AIResponseSucceeded struct {
	Message checkin.Message
}

// AIResponseFailed delivers a locally-generated fallback assistant turn; the
// conversation continues as if generation had succeeded.
type AIResponseFailed struct {
	Fallback checkin.Message
}

// RequestTags opens the tag picker.
type RequestTags struct{}

// SetTags replaces the selected tags (at most three are kept).
type SetTags struct {
	Tags []string
}

// RequestSave starts the persistence attempt.
type RequestSave struct{}

// SaveRetried surfaces one scheduled retry of the in-flight save.
type SaveRetried struct {
	Count int
	Err   string
}

// SaveSucceeded finishes the persistence attempt.
type SaveSucceeded struct {
	EntryID string
}

// SaveFailed reports exhausted retries; the machine parks in Errored.
type SaveFailed struct {
	Err string
}

// RequestAction asks for a micro-action recommendation.
type RequestAction struct{}

// ActionReady delivers the recommendation.
type ActionReady struct {
	Action checkin.MicroAction
}

// ActionFailed reports that no recommendation could be produced; the flow
// returns to the chat because the feature is non-critical.
type ActionFailed struct{}

// TryAction records the pre-action intensity and starts the exercise.
type TryAction struct {
	BeforeIntensity int
}

// CompleteAction records the post-action intensity and returns to the chat.
type CompleteAction struct {
	AfterIntensity int
}

// SkipAction abandons the suggested action and returns to the chat.
type SkipAction struct{}

// Finish closes a saved check-in.
type Finish struct{}

// CrisisSignaled interrupts the current state with a crisis result.
type CrisisSignaled struct {
	Result crisis.Result
}

// CrisisHandled restores the state captured at interrupt time.
type CrisisHandled struct{}

// Reset returns to the entry point from any state.
type Reset struct{}

func (OpenModal) dayEvent()           {}
func (SelectEmotion) dayEvent()       {}
func (SetIntensity) dayEvent()        {}
func (ConfirmEmotion) dayEvent()      {}
func (UpdateDraft) dayEvent()         {}
func (SendMessage) dayEvent()         {}
func (AIResponseSucceeded) dayEvent() {}
func (AIResponseFailed) dayEvent()    {}
func (RequestTags) dayEvent()         {}
func (SetTags) dayEvent()             {}
func (RequestSave) dayEvent()         {}
func (SaveRetried) dayEvent()         {}
func (SaveSucceeded) dayEvent()       {}
func (SaveFailed) dayEvent()          {}
func (RequestAction) dayEvent()       {}
func (ActionReady) dayEvent()         {}
func (ActionFailed) dayEvent()        {}
func (TryAction) dayEvent()           {}
func (CompleteAction) dayEvent()      {}
func (SkipAction) dayEvent()          {}
func (Finish) dayEvent()              {}
func (CrisisSignaled) dayEvent()      {}
func (CrisisHandled) dayEvent()       {}
func (Reset) dayEvent()               {}
