// Package day implements the Day check-in state machine: a short
// conversational flow from emotion selection through chat, tagging, save, and
// an optional micro-action. The reducer is pure; all side effects live in the
// orchestration layer.
package day

import (
	"github.com/dallae-labs/dallae/backend/internal/analysis/crisis"
	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
)

// Phase tags each state variant.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseEmotionModalOpen Phase = "emotion_modal_open"
	PhaseEmotionSelected  Phase = "emotion_selected"
	PhaseChatting         Phase = "chatting"
	PhaseAIResponding     Phase = "ai_responding"
	PhaseTagSelecting     Phase = "tag_selecting"
	PhaseSaving           Phase = "saving"
	PhaseSaved            Phase = "saved"
	PhaseActionLoading    Phase = "action_loading"
	PhaseActionShowing    Phase = "action_showing"
	PhaseActionFeedback   Phase = "action_feedback"
	PhaseCompleted        Phase = "completed"
	PhaseCrisisDetected   Phase = "crisis_detected"
	PhaseError            Phase = "error"
)

// State is the tagged union over the Day machine's states. Each variant
// carries only the fields meaningful at that point; a field once set survives
// every forward transition and is dropped only by Reset.
type State interface {
	Phase() Phase
	dayState()
}

// Idle is the state before the check-in entry point has been presented.
type Idle struct{}

// EmotionModalOpen is the entry point: the emotion picker is on screen.
type EmotionModalOpen struct{}

// EmotionSelected holds the picked emotion while the intensity slider is
// adjustable.
type EmotionSelected struct {
	Emotion   checkin.Emotion
	Intensity int
}

// Chatting is the main conversational state.
type Chatting struct {
	Emotion   checkin.Emotion
	Intensity int
	Messages  []checkin.Message
	Draft     string
}

// AIResponding suspends the chat while a reply is generated. The user turn
// has already been appended optimistically.
type AIResponding struct {
	Emotion   checkin.Emotion
	Intensity int
	Messages  []checkin.Message
}

// TagSelecting lets the user attach up to three free-form context tags
// before saving.
type TagSelecting struct {
	Emotion   checkin.Emotion
	Intensity int
	Messages  []checkin.Message
	Tags      []string
}

// Saving is the persistence attempt, with the retry context observable on
// every retry.
type Saving struct {
	Emotion   checkin.Emotion
	Intensity int
	Messages  []checkin.Message
	Tags      []string
	Retry     checkin.RetryContext
}

// Saved is reached after a successful persist.
type Saved struct {
	Emotion   checkin.Emotion
	Intensity int
	Messages  []checkin.Message
	Tags      []string
	EntryID   string
}

// ActionLoading awaits the micro-action recommendation.
type ActionLoading struct {
	Emotion   checkin.Emotion
	Intensity int
	Messages  []checkin.Message
	Tags      []string
	EntryID   string
}

// ActionShowing presents a recommended micro-action.
type ActionShowing struct {
	Emotion   checkin.Emotion
	Intensity int
	Messages  []checkin.Message
	Tags      []string
	EntryID   string
	Action    checkin.MicroAction
}

// ActionFeedback collects a before/after intensity around a tried action.
type ActionFeedback struct {
	Emotion         checkin.Emotion
	Intensity       int
	Messages        []checkin.Message
	Tags            []string
	EntryID         string
	Action          checkin.MicroAction
	BeforeIntensity int
}

// Completed is the terminal state of a finished check-in.
type Completed struct{}

// CrisisDetected interrupts any live state; Return is restored verbatim once
// the safety flow is acknowledged.
type CrisisDetected struct {
	Return State
	Result crisis.Result
}

// Errored is the terminal state after save retries are exhausted. Only Reset
// leaves it.
type Errored struct {
	Message string
}

func (Idle) Phase() Phase             { return PhaseIdle }
func (EmotionModalOpen) Phase() Phase { return PhaseEmotionModalOpen }
func (EmotionSelected) Phase() Phase  { return PhaseEmotionSelected }
func (Chatting) Phase() Phase         { return PhaseChatting }
func (AIResponding) Phase() Phase     { return PhaseAIResponding }
func (TagSelecting) Phase() Phase     { return PhaseTagSelecting }
func (Saving) Phase() Phase           { return PhaseSaving }
func (Saved) Phase() Phase            { return PhaseSaved }
func (ActionLoading) Phase() Phase    { return PhaseActionLoading }
func (ActionShowing) Phase() Phase    { return PhaseActionShowing }
func (ActionFeedback) Phase() Phase   { return PhaseActionFeedback }
func (Completed) Phase() Phase        { return PhaseCompleted }
func (CrisisDetected) Phase() Phase   { return PhaseCrisisDetected }
func (Errored) Phase() Phase          { return PhaseError }

func (Idle) dayState()             {}
func (EmotionModalOpen) dayState() {}
func (EmotionSelected) dayState()  {}
func (Chatting) dayState()         {}
func (AIResponding) dayState()     {}
func (TagSelecting) dayState()     {}
func (Saving) dayState()           {}
func (Saved) dayState()            {}
func (ActionLoading) dayState()    {}
func (ActionShowing) dayState()    {}
func (ActionFeedback) dayState()   {}
func (Completed) dayState()        {}
func (CrisisDetected) dayState()   {}
func (Errored) dayState()          {}

// Initial returns the machine's starting state.
func Initial() State { return Idle{} }
