package checkin

import (
	"context"
	"fmt"
	"sync"

	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
	personaModel "github.com/dallae-labs/dallae/backend/internal/model/persona"
	service "github.com/dallae-labs/dallae/backend/internal/service/checkin"
)

// Session is the handler-facing view of a live check-in of either kind.
type Session interface {
	ID() string
	Kind() string
	State() service.Snapshot
	Subscribe() (<-chan service.StateEvent, func())
	Apply(ctx context.Context, req eventRequest) error
	Close()
}

// Registry creates and tracks live sessions, binding each kind to its
// persona.
type Registry struct {
	deps     service.Deps
	personas personaModel.Store

	mu       sync.RWMutex
	sessions map[string]Session
}

// NewRegistry builds a registry over shared session dependencies.
func NewRegistry(deps service.Deps, personas personaModel.Store) *Registry {
	return &Registry{
		deps:     deps,
		personas: personas,
		sessions: make(map[string]Session),
	}
}

// CreateDay starts a Day session under the day companion persona.
func (r *Registry) CreateDay() Session {
	s := &daySession{inner: service.NewDaySession(r.depsFor(personaModel.DayCompanionID))}
	r.track(s)
	return s
}

// CreateNight starts a Night session under the letter-writer persona.
func (r *Registry) CreateNight() Session {
	s := &nightSession{inner: service.NewNightSession(r.depsFor(personaModel.NightLetterWriter))}
	r.track(s)
	return s
}

// Find returns a live session by ID.
func (r *Registry) Find(id string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Close disposes a session and forgets it.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

// CloseAll disposes every live session; used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]Session)
	r.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

func (r *Registry) depsFor(personaID string) service.Deps {
	deps := r.deps
	if r.personas != nil {
		if p, ok := r.personas.FindByID(personaID); ok {
			deps.Persona = &p
		}
	}
	return deps
}

func (r *Registry) track(s Session) {
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
}

type daySession struct {
	inner *service.DaySession
}

func (s *daySession) ID() string              { return s.inner.ID() }
func (s *daySession) Kind() string            { return "day" }
func (s *daySession) State() service.Snapshot { return s.inner.State() }
func (s *daySession) Close()                  { s.inner.Close() }

func (s *daySession) Subscribe() (<-chan service.StateEvent, func()) {
	return s.inner.Subscribe()
}

func (s *daySession) Apply(ctx context.Context, req eventRequest) error {
	switch req.Type {
	case "open":
		s.inner.Open()
	case "select_emotion":
		emotion, err := checkin.ParseEmotion(req.Emotion)
		if err != nil {
			return err
		}
		s.inner.SelectEmotion(ctx, emotion)
	case "set_intensity":
		s.inner.SetIntensity(ctx, req.Value)
	case "confirm_emotion":
		s.inner.ConfirmEmotion()
	case "update_draft":
		s.inner.UpdateDraft(req.Text)
	case "send_message":
		s.inner.SendMessage(ctx, req.Text)
	case "request_tags":
		s.inner.RequestTags()
	case "set_tags":
		s.inner.SetTags(req.Tags)
	case "save":
		s.inner.Save()
	case "request_action":
		s.inner.RequestAction()
	case "try_action":
		s.inner.TryAction(req.Intensity)
	case "complete_action":
		s.inner.CompleteAction(req.Intensity)
	case "skip_action":
		s.inner.SkipAction()
	case "finish":
		s.inner.Finish()
	case "crisis_handled":
		s.inner.HandleCrisis()
	case "reset":
		s.inner.Reset()
	default:
		return fmt.Errorf("unknown day event type %q", req.Type)
	}
	return nil
}

type nightSession struct {
	inner *service.NightSession
}

func (s *nightSession) ID() string              { return s.inner.ID() }
func (s *nightSession) Kind() string            { return "night" }
func (s *nightSession) State() service.Snapshot { return s.inner.State() }
func (s *nightSession) Close()                  { s.inner.Close() }

func (s *nightSession) Subscribe() (<-chan service.StateEvent, func()) {
	return s.inner.Subscribe()
}

func (s *nightSession) Apply(ctx context.Context, req eventRequest) error {
	switch req.Type {
	case "select_emotion":
		emotion, err := checkin.ParseEmotion(req.Emotion)
		if err != nil {
			return err
		}
		s.inner.SelectEmotion(ctx, emotion)
	case "set_intensity":
		s.inner.SetIntensity(ctx, req.Value)
	case "advance":
		s.inner.Advance(req.Summary)
	case "update_diary":
		s.inner.UpdateDiary(req.Text)
	case "analyze":
		s.inner.Analyze(ctx)
	case "crisis_handled":
		s.inner.HandleCrisis()
	case "reset":
		s.inner.Reset()
	default:
		return fmt.Errorf("unknown night event type %q", req.Type)
	}
	return nil
}
