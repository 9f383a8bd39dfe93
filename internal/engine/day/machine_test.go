package day

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dallae-labs/dallae/backend/internal/analysis/crisis"
	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
)

func userMsg(content string) checkin.Message {
	return checkin.Message{ID: "u-1", Role: checkin.RoleUser, Content: content, Timestamp: time.Unix(1700000000, 0)}
}

func assistantMsg(content string) checkin.Message {
	return checkin.Message{ID: "a-1", Role: checkin.RoleAssistant, Content: content, Timestamp: time.Unix(1700000100, 0)}
}

func chattingState() Chatting {
	return Chatting{
		Emotion:   checkin.Joy,
		Intensity: 6,
		Messages:  []checkin.Message{userMsg("hello")},
	}
}

func TestReduceUnhandledEventsAreNoOps(t *testing.T) {
	cases := []struct {
		name  string
		state State
		event Event
	}{
		{"select emotion while chatting", chattingState(), SelectEmotion{Emotion: checkin.Anger}},
		{"confirm while idle", Idle{}, ConfirmEmotion{}},
		{"send message while idle", Idle{}, SendMessage{Message: userMsg("hi")}},
		{"send message while responding", AIResponding{Emotion: checkin.Joy, Intensity: 6}, SendMessage{Message: userMsg("hi")}},
		{"save success while chatting", chattingState(), SaveSucceeded{EntryID: "x"}},
		{"open modal while selected", EmotionSelected{Emotion: checkin.Joy, Intensity: 5}, OpenModal{}},
		{"crisis handled outside interrupt", chattingState(), CrisisHandled{}},
		{"action ready while saved", Saved{EntryID: "x"}, ActionReady{}},
		{"try action while loading", ActionLoading{EntryID: "x"}, TryAction{BeforeIntensity: 5}},
		{"request save while errored", Errored{Message: "boom"}, RequestSave{}},
		{"anything while completed", Completed{}, SendMessage{Message: userMsg("hi")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.state, Reduce(tc.state, tc.event))
		})
	}
}

func TestResetFromEveryState(t *testing.T) {
	states := []State{
		Idle{},
		EmotionModalOpen{},
		EmotionSelected{Emotion: checkin.Sadness, Intensity: 7},
		chattingState(),
		AIResponding{Emotion: checkin.Joy, Intensity: 6},
		TagSelecting{Emotion: checkin.Joy, Intensity: 6, Tags: []string{"work"}},
		Saving{Emotion: checkin.Joy, Intensity: 6},
		Saved{EntryID: "e1"},
		ActionLoading{EntryID: "e1"},
		ActionShowing{EntryID: "e1", Action: checkin.MicroAction{ID: "breathing"}},
		ActionFeedback{EntryID: "e1", BeforeIntensity: 6},
		Completed{},
		CrisisDetected{Return: chattingState()},
		Errored{Message: "save failed"},
	}

	for _, s := range states {
		assert.Equal(t, EmotionModalOpen{}, Reduce(s, Reset{}), "reset from %s", s.Phase())
	}
}

func TestCrisisInterruptRoundTrip(t *testing.T) {
	result := crisis.Result{IsCrisis: true, Reason: crisis.ReasonKeyword, Confidence: crisis.ConfidenceHigh}

	states := []State{
		EmotionModalOpen{},
		EmotionSelected{Emotion: checkin.Anxiety, Intensity: 9},
		chattingState(),
		AIResponding{Emotion: checkin.Joy, Intensity: 6, Messages: []checkin.Message{userMsg("hello")}},
		TagSelecting{Emotion: checkin.Joy, Intensity: 6},
		Saving{Emotion: checkin.Joy, Intensity: 6, Retry: checkin.RetryContext{RetryCount: 2, LastError: "io"}},
		Saved{EntryID: "e1"},
		ActionShowing{EntryID: "e1", Action: checkin.MicroAction{ID: "walk"}},
	}

	for _, s := range states {
		interrupted := Reduce(s, CrisisSignaled{Result: result})
		crisisState, ok := interrupted.(CrisisDetected)
		require.True(t, ok, "expected interrupt from %s", s.Phase())
		assert.Equal(t, result, crisisState.Result)

		restored := Reduce(interrupted, CrisisHandled{})
		assert.Equal(t, s, restored, "return state must round-trip from %s", s.Phase())
	}
}

func TestCrisisNotReachableFromSettledStates(t *testing.T) {
	result := crisis.Result{IsCrisis: true, Reason: crisis.ReasonIntensity, Confidence: crisis.ConfidenceHigh}

	for _, s := range []State{Idle{}, Completed{}, Errored{Message: "x"}} {
		assert.Equal(t, s, Reduce(s, CrisisSignaled{Result: result}), "no interrupt from %s", s.Phase())
	}
}

func TestCrisisSignalWhileInterruptedKeepsReturnState(t *testing.T) {
	original := chattingState()
	first := Reduce(original, CrisisSignaled{Result: crisis.Result{IsCrisis: true, Reason: crisis.ReasonKeyword, Confidence: crisis.ConfidenceMedium}})
	second := Reduce(first, CrisisSignaled{Result: crisis.Result{IsCrisis: true, Reason: crisis.ReasonIntensity, Confidence: crisis.ConfidenceHigh}})

	assert.Equal(t, first, second)
	assert.Equal(t, original, Reduce(second, CrisisHandled{}))
}

func TestReselectEmotionPreservesIntensity(t *testing.T) {
	s := Reduce(Reduce(Idle{}, OpenModal{}), SelectEmotion{Emotion: checkin.Joy})
	s = Reduce(s, SetIntensity{Value: 8})
	s = Reduce(s, SelectEmotion{Emotion: checkin.Sadness})

	selected, ok := s.(EmotionSelected)
	require.True(t, ok)
	assert.Equal(t, checkin.Sadness, selected.Emotion)
	assert.Equal(t, 8, selected.Intensity)
}

func TestSetIntensityClamped(t *testing.T) {
	s := EmotionSelected{Emotion: checkin.Peace, Intensity: 5}

	high := Reduce(s, SetIntensity{Value: 42}).(EmotionSelected)
	assert.Equal(t, checkin.MaxIntensity, high.Intensity)

	low := Reduce(s, SetIntensity{Value: -3}).(EmotionSelected)
	assert.Equal(t, checkin.MinIntensity, low.Intensity)
}

func TestSendEmptyMessageIsNoOp(t *testing.T) {
	s := chattingState()
	assert.Equal(t, s, Reduce(s, SendMessage{Message: userMsg("   ")}))
}

func TestAIResponseFailureRecoversWithFallback(t *testing.T) {
	responding := Reduce(chattingState(), SendMessage{Message: userMsg("rough day")})
	require.Equal(t, PhaseAIResponding, responding.Phase())

	fallback := assistantMsg("I'm here with you, even when the words take a moment.")
	recovered := Reduce(responding, AIResponseFailed{Fallback: fallback})

	chatting, ok := recovered.(Chatting)
	require.True(t, ok, "failure must return to chatting, not error")
	assert.Equal(t, fallback, chatting.Messages[len(chatting.Messages)-1])
}

func TestTagsCappedAtThree(t *testing.T) {
	s := Reduce(chattingState(), RequestTags{})
	tagged := Reduce(s, SetTags{Tags: []string{"work", " family ", "", "sleep", "money"}})

	selecting, ok := tagged.(TagSelecting)
	require.True(t, ok)
	assert.Equal(t, []string{"work", "family", "sleep"}, selecting.Tags)
}

func TestSaveRetriesAreObservable(t *testing.T) {
	saving := Reduce(chattingState(), RequestSave{}).(Saving)
	assert.Equal(t, 0, saving.Retry.RetryCount)

	retried := Reduce(saving, SaveRetried{Count: 2, Err: "connection refused"}).(Saving)
	assert.Equal(t, 2, retried.Retry.RetryCount)
	assert.Equal(t, "connection refused", retried.Retry.LastError)
	assert.Equal(t, saving.Messages, retried.Messages)
}

func TestSaveFailureIsTerminalUntilReset(t *testing.T) {
	saving := Reduce(chattingState(), RequestSave{})
	errored := Reduce(saving, SaveFailed{Err: "store unavailable"})
	require.Equal(t, PhaseError, errored.Phase())

	assert.Equal(t, errored, Reduce(errored, RequestSave{}))
	assert.Equal(t, EmotionModalOpen{}, Reduce(errored, Reset{}))
}

func TestActionLoadFailureRoutesBackToChat(t *testing.T) {
	saved := Saved{Emotion: checkin.Joy, Intensity: 6, Messages: []checkin.Message{userMsg("hi")}, EntryID: "e1"}
	loading := Reduce(saved, RequestAction{})
	require.Equal(t, PhaseActionLoading, loading.Phase())

	back := Reduce(loading, ActionFailed{})
	chatting, ok := back.(Chatting)
	require.True(t, ok, "action failure is non-critical and returns to chat")
	assert.Equal(t, saved.Messages, chatting.Messages)
}

func TestActionFeedbackFlow(t *testing.T) {
	showing := ActionShowing{
		Emotion:   checkin.Anxiety,
		Intensity: 7,
		EntryID:   "e1",
		Action:    checkin.MicroAction{ID: "box-breathing", Minutes: 3},
	}

	feedback := Reduce(showing, TryAction{BeforeIntensity: 7})
	fb, ok := feedback.(ActionFeedback)
	require.True(t, ok)
	assert.Equal(t, 7, fb.BeforeIntensity)
	assert.Equal(t, showing.Action, fb.Action)

	done := Reduce(feedback, CompleteAction{AfterIntensity: 4})
	assert.Equal(t, PhaseChatting, done.Phase())

	skipped := Reduce(showing, SkipAction{})
	assert.Equal(t, PhaseChatting, skipped.Phase())
}

func TestEndToEndDayScenario(t *testing.T) {
	s := Initial()
	s = Reduce(s, OpenModal{})
	s = Reduce(s, SelectEmotion{Emotion: checkin.Joy})
	s = Reduce(s, ConfirmEmotion{})
	s = Reduce(s, SendMessage{Message: userMsg("great day")})
	s = Reduce(s, AIResponseSucceeded{Message: assistantMsg("glad to hear!")})
	s = Reduce(s, RequestSave{})
	s = Reduce(s, SaveSucceeded{EntryID: "entry-1"})

	saved, ok := s.(Saved)
	require.True(t, ok, "expected saved, got %s", s.Phase())
	assert.Len(t, saved.Messages, 2)
	assert.Equal(t, "entry-1", saved.EntryID)
	assert.Equal(t, checkin.Joy, saved.Emotion)
}

func TestMessagesCappedAtLimit(t *testing.T) {
	var messages []checkin.Message
	for i := 0; i < checkin.MaxMessages; i++ {
		messages = checkin.AppendMessage(messages, userMsg("turn"))
	}

	s := Chatting{Emotion: checkin.Peace, Intensity: 4, Messages: messages}
	next := Reduce(s, SendMessage{Message: userMsg("one more")}).(AIResponding)

	assert.Len(t, next.Messages, checkin.MaxMessages)
	assert.Equal(t, "one more", next.Messages[len(next.Messages)-1].Content)
}
