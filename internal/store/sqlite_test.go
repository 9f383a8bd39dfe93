package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
)

func setupSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "timeline.db"))
	if err != nil {
		t.Fatalf("OpenSQLite err: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	entry := checkin.Entry{
		ID:        "n-1",
		Date:      time.Now().UTC().Add(-time.Hour),
		Kind:      checkin.KindNight,
		Emotion:   checkin.Peace,
		Intensity: 4,
		Summary:   "quiet evening",
		Detail:    "wrote in the diary, got a letter back",
		Tags:      []string{"home", "rest"},
	}

	if _, err := s.SaveEntry(ctx, entry); err != nil {
		t.Fatalf("SaveEntry err: %v", err)
	}

	recent, err := s.RecentEntries(ctx, 7)
	if err != nil {
		t.Fatalf("RecentEntries err: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(recent))
	}

	got := recent[0]
	if got.ID != entry.ID || got.Kind != entry.Kind || got.Emotion != entry.Emotion {
		t.Fatalf("entry mismatch: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "home" {
		t.Fatalf("tags mismatch: %v", got.Tags)
	}
}

func TestSQLiteSaveIsIdempotent(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	entry := checkin.Entry{ID: "dup", Date: time.Now().UTC(), Kind: checkin.KindDay, Emotion: checkin.Joy, Intensity: 5}
	for i := 0; i < 3; i++ {
		if _, err := s.SaveEntry(ctx, entry); err != nil {
			t.Fatalf("SaveEntry attempt %d err: %v", i+1, err)
		}
	}

	recent, err := s.RecentEntries(ctx, 1)
	if err != nil {
		t.Fatalf("RecentEntries err: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected one stored row after retries, got %d", len(recent))
	}
}

func TestSQLiteWindowing(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	s.SaveEntry(ctx, checkin.Entry{ID: "new", Date: time.Now().UTC(), Kind: checkin.KindDay, Emotion: checkin.Joy, Intensity: 5})
	s.SaveEntry(ctx, checkin.Entry{ID: "old", Date: time.Now().UTC().AddDate(0, 0, -30), Kind: checkin.KindDay, Emotion: checkin.Joy, Intensity: 5})

	recent, err := s.RecentEntries(ctx, 7)
	if err != nil {
		t.Fatalf("RecentEntries err: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != "new" {
		t.Fatalf("expected only the recent row, got %+v", recent)
	}
}
