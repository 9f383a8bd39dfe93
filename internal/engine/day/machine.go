package day

import (
	"strings"

	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
)

// Reduce is the pure transition function. Events not handled by the current
// state return the state unchanged, exactly: callers may compare the result
// to the input to detect a no-op.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case Reset:
		// The product always re-presents the entry point, so Reset lands on
		// the open modal rather than bare Idle.
		return EmotionModalOpen{}
	case CrisisSignaled:
		if !interruptible(s) {
			return s
		}
		return CrisisDetected{Return: s, Result: ev.Result}
	case CrisisHandled:
		if interrupted, ok := s.(CrisisDetected); ok {
			return interrupted.Return
		}
		return s
	}

	switch st := s.(type) {
	case Idle:
		if _, ok := e.(OpenModal); ok {
			return EmotionModalOpen{}
		}

	case EmotionModalOpen:
		if ev, ok := e.(SelectEmotion); ok {
			return EmotionSelected{Emotion: ev.Emotion, Intensity: checkin.DefaultIntensity}
		}

	case EmotionSelected:
		switch ev := e.(type) {
		case SelectEmotion:
			// Re-picking updates the emotion but keeps the adjusted intensity.
			return EmotionSelected{Emotion: ev.Emotion, Intensity: st.Intensity}
		case SetIntensity:
			return EmotionSelected{Emotion: st.Emotion, Intensity: checkin.ClampIntensity(ev.Value)}
		case ConfirmEmotion:
			return Chatting{Emotion: st.Emotion, Intensity: st.Intensity}
		}

	case Chatting:
		switch ev := e.(type) {
		case UpdateDraft:
			return Chatting{Emotion: st.Emotion, Intensity: st.Intensity, Messages: st.Messages, Draft: ev.Text}
		case SendMessage:
			if strings.TrimSpace(ev.Message.Content) == "" {
				return s
			}
			return AIResponding{
				Emotion:   st.Emotion,
				Intensity: st.Intensity,
				Messages:  checkin.AppendMessage(st.Messages, ev.Message),
			}
		case RequestTags:
			return TagSelecting{Emotion: st.Emotion, Intensity: st.Intensity, Messages: st.Messages}
		case RequestSave:
			return Saving{Emotion: st.Emotion, Intensity: st.Intensity, Messages: st.Messages}
		case Finish:
			return Completed{}
		}

	case AIResponding:
		switch ev := e.(type) {
		case AIResponseSucceeded:
			return Chatting{
				Emotion:   st.Emotion,
				Intensity: st.Intensity,
				Messages:  checkin.AppendMessage(st.Messages, ev.Message),
			}
		case AIResponseFailed:
			// Recovered failure: the fallback turn keeps the conversation
			// going and no error is surfaced.
			return Chatting{
				Emotion:   st.Emotion,
				Intensity: st.Intensity,
				Messages:  checkin.AppendMessage(st.Messages, ev.Fallback),
			}
		}

	case TagSelecting:
		switch ev := e.(type) {
		case SetTags:
			return TagSelecting{
				Emotion:   st.Emotion,
				Intensity: st.Intensity,
				Messages:  st.Messages,
				Tags:      capTags(ev.Tags),
			}
		case RequestSave:
			return Saving{Emotion: st.Emotion, Intensity: st.Intensity, Messages: st.Messages, Tags: st.Tags}
		}

	case Saving:
		switch ev := e.(type) {
		case SaveRetried:
			next := st
			next.Retry = checkin.RetryContext{RetryCount: ev.Count, LastError: ev.Err}
			return next
		case SaveSucceeded:
			return Saved{
				Emotion:   st.Emotion,
				Intensity: st.Intensity,
				Messages:  st.Messages,
				Tags:      st.Tags,
				EntryID:   ev.EntryID,
			}
		case SaveFailed:
			return Errored{Message: ev.Err}
		}

	case Saved:
		switch e.(type) {
		case RequestAction:
			return ActionLoading{
				Emotion:   st.Emotion,
				Intensity: st.Intensity,
				Messages:  st.Messages,
				Tags:      st.Tags,
				EntryID:   st.EntryID,
			}
		case Finish:
			return Completed{}
		}

	case ActionLoading:
		switch ev := e.(type) {
		case ActionReady:
			return ActionShowing{
				Emotion:   st.Emotion,
				Intensity: st.Intensity,
				Messages:  st.Messages,
				Tags:      st.Tags,
				EntryID:   st.EntryID,
				Action:    ev.Action,
			}
		case ActionFailed:
			// Non-critical feature: fall back to the chat, not to an error.
			return Chatting{Emotion: st.Emotion, Intensity: st.Intensity, Messages: st.Messages}
		}

	case ActionShowing:
		switch ev := e.(type) {
		case TryAction:
			return ActionFeedback{
				Emotion:         st.Emotion,
				Intensity:       st.Intensity,
				Messages:        st.Messages,
				Tags:            st.Tags,
				EntryID:         st.EntryID,
				Action:          st.Action,
				BeforeIntensity: checkin.ClampIntensity(ev.BeforeIntensity),
			}
		case SkipAction:
			return Chatting{Emotion: st.Emotion, Intensity: st.Intensity, Messages: st.Messages}
		}

	case ActionFeedback:
		switch e.(type) {
		case CompleteAction, SkipAction:
			return Chatting{Emotion: st.Emotion, Intensity: st.Intensity, Messages: st.Messages}
		}
	}

	return s
}

// interruptible reports whether a crisis signal may interrupt the state.
// Idle has nothing to protect, the terminal states are already settled, and
// an active interrupt must keep its original return state.
func interruptible(s State) bool {
	switch s.(type) {
	case Idle, Completed, Errored, CrisisDetected:
		return false
	default:
		return true
	}
}

func capTags(tags []string) []string {
	cleaned := make([]string, 0, 3)
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		cleaned = append(cleaned, tag)
		if len(cleaned) == 3 {
			break
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}
