package checkin

import (
	analysis "github.com/dallae-labs/dallae/backend/internal/analysis/crisis"
	"github.com/dallae-labs/dallae/backend/internal/engine/day"
	"github.com/dallae-labs/dallae/backend/internal/engine/night"
	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
)

// Snapshot is the JSON-serializable view of a session state handed to the
// presentation layer. Unlike the machine states, it flattens the variants
// into one struct; only the fields meaningful for the current phase are set.
type Snapshot struct {
	Phase           string                `json:"phase"`
	Emotion         checkin.Emotion       `json:"emotion,omitempty"`
	Intensity       int                   `json:"intensity,omitempty"`
	Messages        []checkin.Message     `json:"messages,omitempty"`
	Draft           string                `json:"draft,omitempty"`
	Tags            []string              `json:"tags,omitempty"`
	Retry           *checkin.RetryContext `json:"retry,omitempty"`
	EntryID         string                `json:"entryId,omitempty"`
	Action          *checkin.MicroAction  `json:"action,omitempty"`
	BeforeIntensity int                   `json:"beforeIntensity,omitempty"`
	Summary         string                `json:"summary,omitempty"`
	Diary           string                `json:"diary,omitempty"`
	Letter          string                `json:"letter,omitempty"`
	Error           string                `json:"error,omitempty"`
	Crisis          *analysis.Result      `json:"crisis,omitempty"`
	Resources       *SafetyResources      `json:"resources,omitempty"`
}

// SafetyResources is the static block attached to crisis frames so the host
// UI can render the safety flow without another round trip.
type SafetyResources struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Hours   string `json:"hours"`
	Message string `json:"message"`
}

// DefaultSafetyResources returns the bundled hotline block.
func DefaultSafetyResources() *SafetyResources {
	return &SafetyResources{
		Name:    "Crisis support line",
		Phone:   "988",
		Hours:   "24/7",
		Message: "You don't have to carry this alone. Someone is available to talk right now.",
	}
}

func daySnapshot(s day.State) Snapshot {
	switch st := s.(type) {
	case day.Idle:
		return Snapshot{Phase: string(day.PhaseIdle)}
	case day.EmotionModalOpen:
		return Snapshot{Phase: string(day.PhaseEmotionModalOpen)}
	case day.EmotionSelected:
		return Snapshot{Phase: string(day.PhaseEmotionSelected), Emotion: st.Emotion, Intensity: st.Intensity}
	case day.Chatting:
		return Snapshot{Phase: string(day.PhaseChatting), Emotion: st.Emotion, Intensity: st.Intensity, Messages: st.Messages, Draft: st.Draft}
	case day.AIResponding:
		return Snapshot{Phase: string(day.PhaseAIResponding), Emotion: st.Emotion, Intensity: st.Intensity, Messages: st.Messages}
	case day.TagSelecting:
		return Snapshot{Phase: string(day.PhaseTagSelecting), Emotion: st.Emotion, Intensity: st.Intensity, Messages: st.Messages, Tags: st.Tags}
	case day.Saving:
		retry := st.Retry
		return Snapshot{Phase: string(day.PhaseSaving), Emotion: st.Emotion, Intensity: st.Intensity, Messages: st.Messages, Tags: st.Tags, Retry: &retry}
	case day.Saved:
		return Snapshot{Phase: string(day.PhaseSaved), Emotion: st.Emotion, Intensity: st.Intensity, Messages: st.Messages, Tags: st.Tags, EntryID: st.EntryID}
	case day.ActionLoading:
		return Snapshot{Phase: string(day.PhaseActionLoading), Emotion: st.Emotion, Intensity: st.Intensity, Messages: st.Messages, Tags: st.Tags, EntryID: st.EntryID}
	case day.ActionShowing:
		act := st.Action
		return Snapshot{Phase: string(day.PhaseActionShowing), Emotion: st.Emotion, Intensity: st.Intensity, Messages: st.Messages, Tags: st.Tags, EntryID: st.EntryID, Action: &act}
	case day.ActionFeedback:
		act := st.Action
		return Snapshot{Phase: string(day.PhaseActionFeedback), Emotion: st.Emotion, Intensity: st.Intensity, Messages: st.Messages, Tags: st.Tags, EntryID: st.EntryID, Action: &act, BeforeIntensity: st.BeforeIntensity}
	case day.Completed:
		return Snapshot{Phase: string(day.PhaseCompleted)}
	case day.CrisisDetected:
		result := st.Result
		return Snapshot{Phase: string(day.PhaseCrisisDetected), Crisis: &result, Resources: DefaultSafetyResources()}
	case day.Errored:
		return Snapshot{Phase: string(day.PhaseError), Error: st.Message}
	default:
		return Snapshot{Phase: string(s.Phase())}
	}
}

func nightSnapshot(s night.State) Snapshot {
	switch st := s.(type) {
	case night.Idle:
		return Snapshot{Phase: string(night.PhaseIdle)}
	case night.EmotionStep:
		return Snapshot{Phase: string(night.PhaseEmotionStep), Emotion: st.Emotion, Intensity: st.Intensity}
	case night.DiaryStep:
		return Snapshot{Phase: string(night.PhaseDiaryStep), Emotion: st.Emotion, Intensity: st.Intensity, Summary: st.Summary, Diary: st.Diary}
	case night.Analyzing:
		return Snapshot{Phase: string(night.PhaseAnalyzing), Emotion: st.Emotion, Intensity: st.Intensity, Diary: st.Diary}
	case night.LetterStep:
		return Snapshot{Phase: string(night.PhaseLetterStep), Emotion: st.Emotion, Intensity: st.Intensity, Diary: st.Diary, Letter: st.Letter}
	case night.Saving:
		retry := st.Retry
		return Snapshot{Phase: string(night.PhaseSaving), Emotion: st.Emotion, Intensity: st.Intensity, Diary: st.Diary, Letter: st.Letter, Retry: &retry}
	case night.Saved:
		return Snapshot{Phase: string(night.PhaseSaved), Emotion: st.Emotion, Intensity: st.Intensity, Diary: st.Diary, Letter: st.Letter, EntryID: st.EntryID}
	case night.CrisisDetected:
		result := st.Result
		return Snapshot{Phase: string(night.PhaseCrisisDetected), Crisis: &result, Resources: DefaultSafetyResources()}
	case night.Errored:
		return Snapshot{Phase: string(night.PhaseError), Error: st.Message}
	default:
		return Snapshot{Phase: string(s.Phase())}
	}
}
