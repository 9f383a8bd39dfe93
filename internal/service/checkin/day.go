package checkin

import (
	"context"
	"log"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	analysis "github.com/dallae-labs/dallae/backend/internal/analysis/crisis"
	"github.com/dallae-labs/dallae/backend/internal/engine"
	"github.com/dallae-labs/dallae/backend/internal/engine/day"
	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
	"github.com/dallae-labs/dallae/backend/internal/service/action"
)

const (
	generateTimeout  = 30 * time.Second
	subscriberBuffer = 16
	summaryRuneLimit = 80
)

// dayFallbackReply keeps the conversation going when generation is
// unavailable. The failure is recovered, never surfaced.
const dayFallbackReply = "I'm having trouble finding my words right now, but I'm still here with you. Tell me more whenever you're ready."

// DaySession drives one Day check-in: it owns the machine state, serializes
// every dispatch, and runs the side effects the reducer declares by entering
// a waiting phase. Side effects are keyed off phase entry, so a state
// restored after a crisis interrupt re-triggers whichever effect was in
// flight when the interrupt landed.
type DaySession struct {
	id     string
	deps   Deps
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   day.State
	seq     int
	subs    map[int]chan StateEvent
	nextSub int
	closed  bool

	// in-flight guards, cleared when the matching result event is dispatched
	replying      bool
	saving        bool
	actionPending bool

	// entryID is minted once per flow so save retries and post-interrupt
	// re-saves hit the store idempotently.
	entryID string
}

// NewDaySession builds a session over the given dependencies. A nil Evaluator
// falls back to the pure local layers with the default keyword list.
func NewDaySession(deps Deps) *DaySession {
	if deps.Evaluator == nil {
		deps.Evaluator = LocalEvaluator(nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &DaySession{
		id:     uuid.NewString(),
		deps:   deps,
		ctx:    ctx,
		cancel: cancel,
		state:  day.Initial(),
		subs:   make(map[int]chan StateEvent),
	}
}

// ID returns the session identifier.
func (s *DaySession) ID() string { return s.id }

// State returns the current state as a snapshot.
func (s *DaySession) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return daySnapshot(s.state)
}

// Seq returns the number of applied transitions so far.
func (s *DaySession) Seq() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Subscribe registers a state-event channel and returns it with its
// cancellation func. Slow subscribers miss events rather than block dispatch.
func (s *DaySession) Subscribe() (<-chan StateEvent, func()) {
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

// Close disposes the session: in-flight effects are cancelled and every
// subscriber channel is closed. Further intents are no-ops.
func (s *DaySession) Close() {
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

// Open presents the check-in entry point.
func (s *DaySession) Open() { s.dispatch(day.OpenModal{}) }

// SelectEmotion picks (or re-picks) the emotion, then checks the intensity
// and pattern signals against the updated pair.
func (s *DaySession) SelectEmotion(ctx context.Context, emotion checkin.Emotion) {
	s.dispatch(day.SelectEmotion{Emotion: emotion})
	s.checkEmotionSignal(ctx)
}

// SetIntensity adjusts the slider, then re-checks the crisis signals.
func (s *DaySession) SetIntensity(ctx context.Context, value int) {
	s.dispatch(day.SetIntensity{Value: value})
	s.checkEmotionSignal(ctx)
}

// ConfirmEmotion commits the pair and enters the chat.
func (s *DaySession) ConfirmEmotion() { s.dispatch(day.ConfirmEmotion{}) }

// UpdateDraft live-updates the chat input.
func (s *DaySession) UpdateDraft(text string) { s.dispatch(day.UpdateDraft{Text: text}) }

// SendMessage evaluates the text for crisis signals before committing it.
// When a signal fires the message is not sent: the interrupt captures the
// chat as it was, and the user re-sends after the safety flow if they choose.
func (s *DaySession) SendMessage(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	s.mu.Lock()
	st, ok := s.state.(day.Chatting)
	s.mu.Unlock()
	if !ok {
		return
	}
	if r := s.evaluate(ctx, analysis.Input{Text: text, Emotion: st.Emotion, Intensity: st.Intensity}); r != nil {
		s.dispatch(day.CrisisSignaled{Result: *r})
		return
	}
	s.dispatch(day.SendMessage{Message: checkin.NewMessage(checkin.RoleUser, text)})
}

// RequestTags opens the tag picker.
func (s *DaySession) RequestTags() { s.dispatch(day.RequestTags{}) }

// SetTags replaces the selected tags.
func (s *DaySession) SetTags(tags []string) { s.dispatch(day.SetTags{Tags: tags}) }

// Save starts the persistence attempt.
func (s *DaySession) Save() { s.dispatch(day.RequestSave{}) }

// RequestAction asks for a micro-action recommendation.
func (s *DaySession) RequestAction() { s.dispatch(day.RequestAction{}) }

// TryAction starts the suggested exercise with a pre-action intensity.
func (s *DaySession) TryAction(before int) { s.dispatch(day.TryAction{BeforeIntensity: before}) }

// CompleteAction finishes the exercise with a post-action intensity.
func (s *DaySession) CompleteAction(after int) { s.dispatch(day.CompleteAction{AfterIntensity: after}) }

// SkipAction abandons the suggested exercise.
func (s *DaySession) SkipAction() { s.dispatch(day.SkipAction{}) }

// Finish closes the check-in.
func (s *DaySession) Finish() { s.dispatch(day.Finish{}) }

// HandleCrisis acknowledges the safety flow and restores the interrupted
// state verbatim.
func (s *DaySession) HandleCrisis() { s.dispatch(day.CrisisHandled{}) }

// Reset returns to the entry point from any state, including Errored.
func (s *DaySession) Reset() { s.dispatch(day.Reset{}) }

// dispatch applies one event, publishes the transition if the state actually
// changed, and triggers side effects for any newly-entered waiting phase.
func (s *DaySession) dispatch(ev day.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	// Result events clear their in-flight guard whether or not the machine
	// still accepts them; an interrupted flight re-runs on restore.
	switch ev.(type) {
	case day.AIResponseSucceeded, day.AIResponseFailed:
		s.replying = false
	case day.SaveSucceeded, day.SaveFailed:
		s.saving = false
	case day.ActionReady, day.ActionFailed:
		s.actionPending = false
	}

	prev := s.state
	next := day.Reduce(prev, ev)
	if reflect.DeepEqual(prev, next) {
		return
	}
	s.state = next
	s.seq++

	evt := StateEvent{Seq: s.seq, Phase: string(next.Phase()), State: daySnapshot(next), At: time.Now().UTC()}
	if cd, ok := next.(day.CrisisDetected); ok {
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

// react triggers the side effect attached to a newly-entered phase. Called
// with the mutex held; the effects themselves run in goroutines and report
// back through dispatch.
func (s *DaySession) react(prev, next day.State) {
	if prev.Phase() == next.Phase() {
		return
	}
	switch st := next.(type) {
	case day.EmotionModalOpen:
		// A fresh flow writes a fresh entry.
		s.entryID = ""
	case day.AIResponding:
		if !s.replying {
			s.replying = true
			go s.generateReply(st)
		}
	case day.Saving:
		if !s.saving {
			if s.entryID == "" {
				s.entryID = uuid.NewString()
			}
			s.saving = true
			go s.runSave(s.buildEntry(st))
		}
	case day.ActionLoading:
		if !s.actionPending {
			s.actionPending = true
			go s.recommendAction(st)
		}
	case day.CrisisDetected:
		if s.deps.OnCrisis != nil {
			result := st.Result
			go s.deps.OnCrisis(result)
		}
	}
}

func (s *DaySession) generateReply(st day.AIResponding) {
	userMsg := st.Messages[len(st.Messages)-1].Content
	history := st.Messages[:len(st.Messages)-1]

	if s.deps.Generator == nil {
		s.dispatch(day.AIResponseFailed{Fallback: checkin.NewMessage(checkin.RoleAssistant, dayFallbackReply)})
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, generateTimeout)
	defer cancel()
	text, err := s.deps.Generator.GenerateReply(ctx, userMsg, history, s.deps.Persona)
	if err != nil {
		log.Printf("[checkin] day reply generation failed: %v", err)
		s.dispatch(day.AIResponseFailed{Fallback: checkin.NewMessage(checkin.RoleAssistant, dayFallbackReply)})
		return
	}
	s.dispatch(day.AIResponseSucceeded{Message: checkin.NewMessage(checkin.RoleAssistant, text)})
}

func (s *DaySession) runSave(entry checkin.Entry) {
	runSave(s.ctx, s.deps.Timeline, s.deps.backoffBase(), entry,
		func(count int, err string) { s.dispatch(day.SaveRetried{Count: count, Err: err}) },
		func(id string) { s.dispatch(day.SaveSucceeded{EntryID: id}) },
		func(err string) { s.dispatch(day.SaveFailed{Err: err}) },
	)
}

func (s *DaySession) recommendAction(st day.ActionLoading) {
	act, err := action.Recommend(st.Emotion, st.Intensity)
	if err != nil {
		log.Printf("[checkin] no action recommendation: %v", err)
		s.dispatch(day.ActionFailed{})
		return
	}
	s.dispatch(day.ActionReady{Action: act})
}

// checkEmotionSignal runs the evaluator against the currently selected
// emotion+intensity pair plus recent history.
func (s *DaySession) checkEmotionSignal(ctx context.Context) {
	s.mu.Lock()
	st, ok := s.state.(day.EmotionSelected)
	s.mu.Unlock()
	if !ok {
		return
	}
	if r := s.evaluate(ctx, analysis.Input{Emotion: st.Emotion, Intensity: st.Intensity}); r != nil {
		s.dispatch(day.CrisisSignaled{Result: *r})
	}
}

// evaluate loads recent history for the pattern layer and runs the full
// evaluator. A timeline miss degrades to the text and intensity layers.
func (s *DaySession) evaluate(ctx context.Context, in analysis.Input) *analysis.Result {
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

// buildEntry derives the durable record from the saving state. Called with
// the mutex held.
func (s *DaySession) buildEntry(st day.Saving) checkin.Entry {
	return checkin.Entry{
		ID:        s.entryID,
		Date:      time.Now().UTC(),
		Kind:      checkin.KindDay,
		Emotion:   st.Emotion,
		Intensity: st.Intensity,
		Summary:   summarize(st.Messages),
		Detail:    transcript(st.Messages),
		Tags:      st.Tags,
	}
}

// runSave is the shared retry loop: one initial attempt plus up to
// engine.MaxSaveRetries retries with exponential backoff, each retry surfaced
// through onRetry before the wait.
func runSave(ctx context.Context, timeline saver, base time.Duration,
	entry checkin.Entry, onRetry func(int, string), onOK func(string), onFail func(string)) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		id, err := timeline.SaveEntry(ctx, entry)
		if err == nil {
			onOK(id)
			return
		}
		lastErr = err
		if attempt == engine.MaxSaveRetries {
			break
		}
		retry := attempt + 1
		onRetry(retry, err.Error())
		select {
		case <-time.After(base * time.Duration(1<<(retry-1))):
		case <-ctx.Done():
			return
		}
	}
	onFail(lastErr.Error())
}

type saver interface {
	SaveEntry(ctx context.Context, entry checkin.Entry) (string, error)
}

// summarize derives the entry summary from the first user turn.
func summarize(messages []checkin.Message) string {
	for _, m := range messages {
		if m.Role != checkin.RoleUser {
			continue
		}
		runes := []rune(m.Content)
		if len(runes) > summaryRuneLimit {
			return string(runes[:summaryRuneLimit]) + "..."
		}
		return m.Content
	}
	return ""
}

// transcript flattens the conversation for the entry detail.
func transcript(messages []checkin.Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}
