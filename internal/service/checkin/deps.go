// Package checkin hosts the orchestration hooks around the day and night
// machines. The reducers stay pure; everything here owns the side effects:
// generation calls, save retries, crisis evaluation, and the event stream
// consumed by the presentation layer.
package checkin

import (
	"context"
	"time"

	analysis "github.com/dallae-labs/dallae/backend/internal/analysis/crisis"
	"github.com/dallae-labs/dallae/backend/internal/engine"
	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
	"github.com/dallae-labs/dallae/backend/internal/model/persona"
	"github.com/dallae-labs/dallae/backend/internal/store"
)

// Generator is the generation gateway consumed by both sessions.
type Generator interface {
	GenerateReply(ctx context.Context, userMessage string, history []checkin.Message, p *persona.Persona) (string, error)
	GenerateLetter(ctx context.Context, diaryText string, p *persona.Persona) (string, error)
}

// Evaluator scores crisis signals. The production implementation wraps the
// pure local layers with the optional remote classifier.
type Evaluator interface {
	Evaluate(ctx context.Context, in analysis.Input) analysis.Result
}

// evaluatorFunc adapts a plain function to Evaluator.
type evaluatorFunc func(ctx context.Context, in analysis.Input) analysis.Result

func (f evaluatorFunc) Evaluate(ctx context.Context, in analysis.Input) analysis.Result {
	return f(ctx, in)
}

// LocalEvaluator wraps the pure evaluator for hosts that run without the
// remote classifier.
func LocalEvaluator(e *analysis.Evaluator) Evaluator {
	if e == nil {
		e = analysis.New(nil)
	}
	return evaluatorFunc(func(_ context.Context, in analysis.Input) analysis.Result {
		return e.Evaluate(in)
	})
}

// DefaultLookbackDays is the recent-history window handed to the pattern
// layer; wide enough for the seven-distinct-day rule to observe a full week.
const DefaultLookbackDays = 14

// Deps collects everything a session needs. Timeline and Evaluator are
// required; Generator may be nil, in which case every generation falls back
// locally.
type Deps struct {
	Generator Generator
	Evaluator Evaluator
	Timeline  store.Store
	Persona   *persona.Persona

	// Live is the pure evaluator used for per-edit keyword checks; nil
	// falls back to the curated default list. Kept separate from Evaluator
	// so live checks never reach the remote classifier or the timeline.
	Live *analysis.Evaluator

	// OnCrisis notifies the host that a crisis interrupt happened. The host
	// decides routing; the session never navigates.
	OnCrisis func(analysis.Result)

	// BackoffBase overrides the save retry base delay; tests shrink it.
	// Zero means the production 1s base.
	BackoffBase time.Duration

	// LookbackDays overrides the pattern-layer window. Zero means
	// DefaultLookbackDays.
	LookbackDays int
}

func (d *Deps) backoffBase() time.Duration {
	if d.BackoffBase > 0 {
		return d.BackoffBase
	}
	return engine.BaseSaveBackoff
}

func (d *Deps) liveCheck(text string) analysis.Result {
	if d.Live != nil {
		return d.Live.EvaluateLive(text)
	}
	return analysis.EvaluateLive(text)
}

func (d *Deps) lookbackDays() int {
	if d.LookbackDays > 0 {
		return d.LookbackDays
	}
	return DefaultLookbackDays
}

// StateEvent is one applied transition, published to subscribers in order.
type StateEvent struct {
	Seq    int              `json:"seq"`
	Phase  string           `json:"phase"`
	State  Snapshot         `json:"state"`
	Crisis *analysis.Result `json:"crisis,omitempty"`
	At     time.Time        `json:"at"`
}
