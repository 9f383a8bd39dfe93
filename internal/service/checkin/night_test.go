package checkin

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analysis "github.com/dallae-labs/dallae/backend/internal/analysis/crisis"
	"github.com/dallae-labs/dallae/backend/internal/engine/night"
	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
)

func TestNightSessionAutoStarts(t *testing.T) {
	s := NewNightSession(testDeps(&fakeStore{}, nil))
	defer s.Close()

	snap := s.State()
	assert.Equal(t, string(night.PhaseEmotionStep), snap.Phase)
	assert.Equal(t, checkin.DefaultIntensity, snap.Intensity)
}

func TestNightSessionHappyPath(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGenerator{letter: "Dear you, the day you described sounds heavier than you let on. Be gentle with yourself tonight."}
	s := NewNightSession(testDeps(store, gen))
	defer s.Close()
	ctx := context.Background()

	s.SelectEmotion(ctx, checkin.Peace)
	s.SetIntensity(ctx, 4)
	s.Advance("You mentioned a calm walk this morning.")
	s.UpdateDiary("Today moved slowly. I took a long walk and let my head clear out.")
	s.Analyze(ctx)

	snap := waitPhase(t, s, string(night.PhaseSaved))
	assert.Equal(t, gen.letter, snap.Letter)
	require.NotEmpty(t, snap.EntryID)

	entry := store.onlyEntry(t)
	assert.Equal(t, checkin.KindNight, entry.Kind)
	assert.Equal(t, checkin.Peace, entry.Emotion)
	assert.Equal(t, 4, entry.Intensity)
	assert.Contains(t, entry.Detail, gen.letter)
	assert.True(t, strings.HasPrefix(entry.Detail, "Today moved slowly."))
}

func TestNightSessionLetterFallback(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	s := NewNightSession(testDeps(store, gen))
	defer s.Close()
	ctx := context.Background()

	s.SelectEmotion(ctx, checkin.Sadness)
	s.Advance("")
	s.UpdateDiary("It was a long day and I don't have many words left for it.")
	s.Analyze(ctx)

	snap := waitPhase(t, s, string(night.PhaseSaved))
	assert.Equal(t, nightFallbackLetter, snap.Letter)
	assert.Empty(t, snap.Error, "a recovered generation failure must not surface")
	assert.Equal(t, 1, store.savedCount())
}

func TestNightSessionAdvanceRequiresEmotion(t *testing.T) {
	s := NewNightSession(testDeps(&fakeStore{}, nil))
	defer s.Close()

	s.Advance("no emotion picked yet")
	assert.Equal(t, string(night.PhaseEmotionStep), s.State().Phase)
}

func TestNightSessionAnalyzeRequiresDiary(t *testing.T) {
	s := NewNightSession(testDeps(&fakeStore{}, nil))
	defer s.Close()
	ctx := context.Background()

	s.SelectEmotion(ctx, checkin.Joy)
	s.Advance("")
	s.UpdateDiary("   ")
	s.Analyze(ctx)

	assert.Equal(t, string(night.PhaseDiaryStep), s.State().Phase)
}

func TestNightSessionCrisisOnDiaryKeepsText(t *testing.T) {
	s := NewNightSession(testDeps(&fakeStore{}, &fakeGenerator{letter: "unused"}))
	defer s.Close()
	ctx := context.Background()

	diary := "오늘도 버티기 힘들었고 계속 죽고 싶다는 생각과 자해 충동이 들었다"
	s.SelectEmotion(ctx, checkin.Sadness)
	s.Advance("")
	s.UpdateDiary(diary)
	s.Analyze(ctx)

	snap := waitPhase(t, s, string(night.PhaseCrisisDetected))
	require.NotNil(t, snap.Crisis)
	assert.True(t, snap.Crisis.IsCrisis)
	require.NotNil(t, snap.Resources)

	// Acknowledging restores the diary step with the text intact.
	s.HandleCrisis()
	snap = s.State()
	assert.Equal(t, string(night.PhaseDiaryStep), snap.Phase)
	assert.Equal(t, diary, snap.Diary)
}

func TestNightSessionLiveDiaryKeywordCheck(t *testing.T) {
	s := NewNightSession(testDeps(&fakeStore{}, &fakeGenerator{letter: "unused"}))
	defer s.Close()
	ctx := context.Background()

	s.SelectEmotion(ctx, checkin.Sadness)
	s.Advance("")

	// Short partial input stays below the live-check floor even when it
	// contains a flagged phrase.
	s.UpdateDiary("죽고 싶다")
	snap := s.State()
	assert.Equal(t, string(night.PhaseDiaryStep), snap.Phase)

	// A longer edit trips the keyword layer without an explicit analyze.
	s.UpdateDiary("요즘은 하루하루가 무겁고 자꾸 죽고 싶다는 생각이 든다")
	snap = waitPhase(t, s, string(night.PhaseCrisisDetected))
	require.NotNil(t, snap.Crisis)
	assert.Equal(t, analysis.ReasonKeyword, snap.Crisis.Reason)
}

func TestNightSessionPostLetterPatternCheck(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGenerator{letter: "a letter that must be discarded"}
	// History turns severe only once generation is already in flight, so the
	// earlier checkpoints stay quiet and the post-letter re-check is the one
	// that fires.
	gen.onLetter = func() { store.setRecent(severeHistory()) }

	s := NewNightSession(testDeps(store, gen))
	defer s.Close()
	ctx := context.Background()

	s.SelectEmotion(ctx, checkin.Peace)
	s.Advance("")
	s.UpdateDiary("Nothing unusual today, mostly errands and a quiet dinner.")
	s.Analyze(ctx)

	snap := waitPhase(t, s, string(night.PhaseCrisisDetected))
	require.NotNil(t, snap.Crisis)
	assert.Empty(t, snap.Letter, "the generated letter is discarded on interrupt")

	// Acknowledging restores Analyzing, which regenerates the letter; the
	// history is still severe, so the session interrupts again rather than
	// presenting it.
	s.HandleCrisis()
	waitPhase(t, s, string(night.PhaseCrisisDetected))

	gen.mu.Lock()
	gen.onLetter = nil
	gen.mu.Unlock()
	store.setRecent(nil)
	s.HandleCrisis()
	snap = waitPhase(t, s, string(night.PhaseSaved))
	assert.Equal(t, gen.letter, snap.Letter)
}

func TestNightSessionSaveRetriesObservable(t *testing.T) {
	store := &fakeStore{failures: 2}
	s := NewNightSession(testDeps(store, &fakeGenerator{letter: "ok"}))
	defer s.Close()
	ctx := context.Background()

	events, unsubscribe := s.Subscribe()
	defer unsubscribe()

	s.SelectEmotion(ctx, checkin.Anxiety)
	s.Advance("")
	s.UpdateDiary("Work kept piling up and I never quite caught my breath.")
	s.Analyze(ctx)

	waitPhase(t, s, string(night.PhaseSaved))
	assert.Equal(t, 3, store.saveAttempts())
	assert.Equal(t, 1, store.savedCount())

	var retries []int
	for {
		var evt StateEvent
		select {
		case evt = <-events:
		case <-time.After(time.Second):
			t.Fatal("saved event never published")
		}
		if evt.Phase == string(night.PhaseSaving) && evt.State.Retry != nil && evt.State.Retry.RetryCount > 0 {
			retries = append(retries, evt.State.Retry.RetryCount)
		}
		if evt.Phase == string(night.PhaseSaved) {
			break
		}
	}
	assert.Equal(t, []int{1, 2}, retries)
}

func TestNightSessionSaveExhaustedOnlyResetRecovers(t *testing.T) {
	store := &fakeStore{failures: -1}
	s := NewNightSession(testDeps(store, &fakeGenerator{letter: "ok"}))
	defer s.Close()
	ctx := context.Background()

	s.SelectEmotion(ctx, checkin.Sadness)
	s.Advance("")
	s.UpdateDiary("Trying to save this entry against a store that is down.")
	s.Analyze(ctx)

	snap := waitPhase(t, s, string(night.PhaseError))
	assert.NotEmpty(t, snap.Error)
	assert.Equal(t, 4, store.saveAttempts())

	s.UpdateDiary("ignored")
	s.Analyze(ctx)
	assert.Equal(t, string(night.PhaseError), s.State().Phase)

	s.Reset()
	snap = s.State()
	assert.Equal(t, string(night.PhaseEmotionStep), snap.Phase)
	assert.Equal(t, checkin.DefaultIntensity, snap.Intensity)
}

func TestNightSessionReselectKeepsIntensity(t *testing.T) {
	s := NewNightSession(testDeps(&fakeStore{}, nil))
	defer s.Close()
	ctx := context.Background()

	s.SelectEmotion(ctx, checkin.Joy)
	s.SetIntensity(ctx, 8)
	s.SelectEmotion(ctx, checkin.Peace)

	snap := s.State()
	assert.Equal(t, checkin.Peace, snap.Emotion)
	assert.Equal(t, 8, snap.Intensity)
}
