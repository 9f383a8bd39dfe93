package checkin

import (
	"context"
	"log"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	analysis "github.com/dallae-labs/dallae/backend/internal/analysis/crisis"
	"github.com/dallae-labs/dallae/backend/internal/engine/night"
	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
)

// nightFallbackLetter stands in when letter generation is unavailable. The
// failure is recovered, never surfaced.
const nightFallbackLetter = "Thank you for writing today. Whatever the day held, putting it into words took courage, and that matters. Rest well tonight; tomorrow gets its own page."

// NightSession drives one Night check-in: emotion, diary, generated letter,
// automatic save. It follows the same dispatch/react shape as DaySession, so
// an effect interrupted by a crisis signal re-runs when its phase is
// restored.
type NightSession struct {
	id     string
	deps   Deps
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   night.State
	seq     int
	subs    map[int]chan StateEvent
	nextSub int
	closed  bool

	letterPending bool
	saving        bool

	entryID string
}

// NewNightSession builds a session and auto-starts the flow: the caller
// observes EmotionStep, never Idle.
func NewNightSession(deps Deps) *NightSession {
	if deps.Evaluator == nil {
		deps.Evaluator = LocalEvaluator(nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &NightSession{
		id:     uuid.NewString(),
		deps:   deps,
		ctx:    ctx,
		cancel: cancel,
		state:  night.Initial(),
		subs:   make(map[int]chan StateEvent),
	}
	s.dispatch(night.Start{})
	return s
}

// ID returns the session identifier.
func (s *NightSession) ID() string { return s.id }

// State returns the current state as a snapshot.
func (s *NightSession) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nightSnapshot(s.state)
}

// Seq returns the number of applied transitions so far.
func (s *NightSession) Seq() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Subscribe registers a state-event channel and returns it with its
// cancellation func. Slow subscribers miss events rather than block dispatch.
func (s *NightSession) Subscribe() (<-chan StateEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan StateEvent, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// Close disposes the session.
func (s *NightSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()
	s.cancel()
}

// SelectEmotion picks (or re-picks) the evening's emotion, then checks the
// crisis signals against the updated pair.
func (s *NightSession) SelectEmotion(ctx context.Context, emotion checkin.Emotion) {
	s.dispatch(night.SelectEmotion{Emotion: emotion})
	s.checkEmotionSignal(ctx)
}

// SetIntensity adjusts the slider, then re-checks the crisis signals.
func (s *NightSession) SetIntensity(ctx context.Context, value int) {
	s.dispatch(night.SetIntensity{Value: value})
	s.checkEmotionSignal(ctx)
}

// Advance moves to the diary step. Summary optionally carries the same-day
// recap for display continuity.
func (s *NightSession) Advance(summary string) { s.dispatch(night.Advance{Summary: summary}) }

// UpdateDiary live-updates the diary text, then re-runs the keyword layer on
// the new text. The text is committed before the check so an interrupt always
// captures the diary as written. Short partial input is skipped inside the
// live check to avoid false triggers.
func (s *NightSession) UpdateDiary(text string) {
	s.dispatch(night.UpdateDiary{Text: text})
	s.mu.Lock()
	_, ok := s.state.(night.DiaryStep)
	s.mu.Unlock()
	if !ok {
		return
	}
	if r := s.deps.liveCheck(text); r.IsCrisis {
		s.dispatch(night.CrisisSignaled{Result: r})
	}
}

// Analyze evaluates the diary for crisis signals before submitting it for
// letter generation. When a signal fires the diary is kept: the interrupt
// captures the step as written and the user resumes from it.
func (s *NightSession) Analyze(ctx context.Context) {
	s.mu.Lock()
	st, ok := s.state.(night.DiaryStep)
	s.mu.Unlock()
	if !ok {
		return
	}
	if r := s.evaluate(ctx, analysis.Input{Text: st.Diary, Emotion: st.Emotion, Intensity: st.Intensity}); r != nil {
		s.dispatch(night.CrisisSignaled{Result: *r})
		return
	}
	s.dispatch(night.Analyze{})
}

// HandleCrisis acknowledges the safety flow and restores the interrupted
// state verbatim.
func (s *NightSession) HandleCrisis() { s.dispatch(night.CrisisHandled{}) }

// Reset returns to a fresh emotion step from any state, including Errored.
func (s *NightSession) Reset() { s.dispatch(night.Reset{}) }

func (s *NightSession) dispatch(ev night.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	switch ev.(type) {
	case night.LetterSucceeded, night.LetterFailed:
		s.letterPending = false
	case night.SaveSucceeded, night.SaveFailed:
		s.saving = false
	}

	prev := s.state
	next := night.Reduce(prev, ev)
	if reflect.DeepEqual(prev, next) {
		return
	}
	s.state = next
	s.seq++

	evt := StateEvent{Seq: s.seq, Phase: string(next.Phase()), State: nightSnapshot(next), At: time.Now().UTC()}
	if cd, ok := next.(night.CrisisDetected); ok {
		result := cd.Result
		evt.Crisis = &result
	}
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
		}
	}

	s.react(prev, next)
}

func (s *NightSession) react(prev, next night.State) {
	if prev.Phase() == next.Phase() {
		return
	}
	switch st := next.(type) {
	case night.EmotionStep:
		s.entryID = ""
	case night.Analyzing:
		if !s.letterPending {
			s.letterPending = true
			go s.generateLetter(st)
		}
	case night.LetterStep:
		// The save is automatic on letter entry. BeginSave dispatched while
		// an interrupt is active is a no-op; restoring LetterStep lands here
		// again, so the save is never lost.
		go s.dispatch(night.BeginSave{})
	case night.Saving:
		if !s.saving {
			if s.entryID == "" {
				s.entryID = uuid.NewString()
			}
			s.saving = true
			go s.runSave(s.buildEntry(st))
		}
	case night.CrisisDetected:
		if s.deps.OnCrisis != nil {
			result := st.Result
			go s.deps.OnCrisis(result)
		}
	}
}

// generateLetter produces the letter, then re-checks the pattern layer
// against history before presenting it: a slow-building signal discovered
// here interrupts instead, the letter is discarded, and a fresh one is
// generated after the safety flow.
func (s *NightSession) generateLetter(st night.Analyzing) {
	ctx, cancel := context.WithTimeout(s.ctx, generateTimeout)
	defer cancel()

	letter := nightFallbackLetter
	failed := s.deps.Generator == nil
	if !failed {
		text, err := s.deps.Generator.GenerateLetter(ctx, st.Diary, s.deps.Persona)
		if err != nil {
			log.Printf("[checkin] letter generation failed: %v", err)
			failed = true
		} else {
			letter = text
		}
	}

	if !failed {
		// Text and emotion are left empty so only the pattern layer runs.
		if r := s.evaluate(ctx, analysis.Input{}); r != nil {
			s.mu.Lock()
			s.letterPending = false
			s.mu.Unlock()
			s.dispatch(night.CrisisSignaled{Result: *r})
			return
		}
		s.dispatch(night.LetterSucceeded{Letter: letter})
		return
	}
	s.dispatch(night.LetterFailed{Fallback: letter})
}

func (s *NightSession) runSave(entry checkin.Entry) {
	runSave(s.ctx, s.deps.Timeline, s.deps.backoffBase(), entry,
		func(count int, err string) { s.dispatch(night.SaveRetried{Count: count, Err: err}) },
		func(id string) { s.dispatch(night.SaveSucceeded{EntryID: id}) },
		func(err string) { s.dispatch(night.SaveFailed{Err: err}) },
	)
}

func (s *NightSession) checkEmotionSignal(ctx context.Context) {
	s.mu.Lock()
	st, ok := s.state.(night.EmotionStep)
	s.mu.Unlock()
	if !ok || st.Emotion == "" {
		return
	}
	if r := s.evaluate(ctx, analysis.Input{Emotion: st.Emotion, Intensity: st.Intensity}); r != nil {
		s.dispatch(night.CrisisSignaled{Result: *r})
	}
}

func (s *NightSession) evaluate(ctx context.Context, in analysis.Input) *analysis.Result {
	if in.Recent == nil && s.deps.Timeline != nil {
		recent, err := s.deps.Timeline.RecentEntries(ctx, s.deps.lookbackDays())
		if err != nil {
			log.Printf("[checkin] recent history unavailable: %v", err)
		} else {
			in.Recent = recent
		}
	}
	res := s.deps.Evaluator.Evaluate(ctx, in)
	if !res.IsCrisis {
		return nil
	}
	return &res
}

// buildEntry derives the durable record from the saving state. The letter is
// preserved below the diary text. Called with the mutex held.
func (s *NightSession) buildEntry(st night.Saving) checkin.Entry {
	return checkin.Entry{
		ID:        s.entryID,
		Date:      time.Now().UTC(),
		Kind:      checkin.KindNight,
		Emotion:   st.Emotion,
		Intensity: st.Intensity,
		Summary:   summarizeText(st.Diary),
		Detail:    st.Diary + "\n\n---\n\n" + st.Letter,
	}
}

// summarizeText truncates free text for the entry summary.
func summarizeText(text string) string {
	runes := []rune(text)
	if len(runes) > summaryRuneLimit {
		return string(runes[:summaryRuneLimit]) + "..."
	}
	return text
}
