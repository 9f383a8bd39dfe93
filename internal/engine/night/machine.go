package night

import (
	"strings"

	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
)

// Reduce is the pure transition function. Unhandled events return the state
// unchanged, exactly.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case Reset:
		return EmotionStep{Intensity: checkin.DefaultIntensity}
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
		if _, ok := e.(Start); ok {
			return EmotionStep{Intensity: checkin.DefaultIntensity}
		}

	case EmotionStep:
		switch ev := e.(type) {
		case SelectEmotion:
			return EmotionStep{Emotion: ev.Emotion, Intensity: st.Intensity}
		case SetIntensity:
			return EmotionStep{Emotion: st.Emotion, Intensity: checkin.ClampIntensity(ev.Value)}
		case Advance:
			if st.Emotion == "" {
				return s
			}
			return DiaryStep{Emotion: st.Emotion, Intensity: st.Intensity, Summary: ev.Summary}
		}

	case DiaryStep:
		switch ev := e.(type) {
		case UpdateDiary:
			next := st
			next.Diary = ev.Text
			return next
		case Analyze:
			if strings.TrimSpace(st.Diary) == "" {
				return s
			}
			return Analyzing{Emotion: st.Emotion, Intensity: st.Intensity, Diary: st.Diary}
		}

	case Analyzing:
		switch ev := e.(type) {
		case LetterSucceeded:
			return LetterStep{Emotion: st.Emotion, Intensity: st.Intensity, Diary: st.Diary, Letter: ev.Letter}
		case LetterFailed:
			// Recovered failure: the reassuring fallback letter stands in
			// and no error is surfaced.
			return LetterStep{Emotion: st.Emotion, Intensity: st.Intensity, Diary: st.Diary, Letter: ev.Fallback}
		}

	case LetterStep:
		if _, ok := e.(BeginSave); ok {
			return Saving{Emotion: st.Emotion, Intensity: st.Intensity, Diary: st.Diary, Letter: st.Letter}
		}

	case Saving:
		switch ev := e.(type) {
		case SaveRetried:
			next := st
			next.Retry = checkin.RetryContext{RetryCount: ev.Count, LastError: ev.Err}
			return next
		case SaveSucceeded:
			return Saved{Emotion: st.Emotion, Intensity: st.Intensity, Diary: st.Diary, Letter: st.Letter, EntryID: ev.EntryID}
		case SaveFailed:
			return Errored{Message: ev.Err}
		}
	}

	return s
}

// interruptible reports whether a crisis signal may interrupt the state. The
// Night machine is interruptible from every state except idle and the
// terminals.
func interruptible(s State) bool {
	switch s.(type) {
	case Idle, Saved, Errored, CrisisDetected:
		return false
	default:
		return true
	}
}
