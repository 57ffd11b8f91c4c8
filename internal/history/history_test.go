package history

import (
	"testing"
	"time"

	"github.com/skoglund/zine/internal/cache"
)

type tickClock struct {
	now time.Time
}

func (c *tickClock) Now() time.Time { return c.now }

func (c *tickClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestRecorder(t *testing.T, options ...Option) (*Recorder, *tickClock) {
	t.Helper()
	clock := &tickClock{now: time.Date(2025, 5, 12, 9, 0, 0, 0, time.UTC)}
	store := cache.New(cache.NewMemMedium())
	options = append([]Option{withClock(clock.Now)}, options...)
	return New(store, options...), clock
}

func TestTouchOrdersMostRecentFirst(t *testing.T) {
	r, clock := newTestRecorder(t)
	r.Touch("a1", "On Gardens", "essays")
	clock.Advance(time.Minute)
	r.Touch("a2", "On Soil", "essays")
	clock.Advance(time.Minute)
	r.Touch("a1", "On Gardens", "essays")

	recent := r.Recent()
	if len(recent) != 2 {
		t.Fatalf("history holds %d entries, want 2", len(recent))
	}
	if recent[0].ID != "a1" || recent[1].ID != "a2" {
		t.Fatalf("unexpected order: %q then %q", recent[0].ID, recent[1].ID)
	}
	if !recent[0].ViewedAt.After(recent[1].ViewedAt) {
		t.Fatalf("re-read did not refresh the timestamp: %v vs %v", recent[0].ViewedAt, recent[1].ViewedAt)
	}

	last, ok := r.Last()
	if !ok || last.ID != "a1" {
		t.Fatalf("last = %+v, %v", last, ok)
	}
}

func TestTouchPreservesResumePosition(t *testing.T) {
	r, _ := newTestRecorder(t)
	r.Touch("a1", "On Gardens", "essays")
	r.MarkBlock("a1", "b7")
	r.Touch("a2", "On Soil", "essays")
	r.Touch("a1", "On Gardens", "essays")

	last, _ := r.Last()
	if last.LastBlockID != "b7" {
		t.Fatalf("resume position lost on re-read: %+v", last)
	}
}

func TestLimitDropsOldestEntries(t *testing.T) {
	r, clock := newTestRecorder(t, WithLimit(3))
	for _, id := range []string{"a1", "a2", "a3", "a4"} {
		r.Touch(id, "title "+id, "")
		clock.Advance(time.Minute)
	}

	recent := r.Recent()
	if len(recent) != 3 {
		t.Fatalf("history holds %d entries, want 3", len(recent))
	}
	for _, entry := range recent {
		if entry.ID == "a1" {
			t.Fatal("oldest entry not evicted")
		}
	}
}

func TestMarkBlockIgnoresUnknownArticle(t *testing.T) {
	r, _ := newTestRecorder(t)
	r.Touch("a1", "On Gardens", "")
	r.MarkBlock("a2", "b1")

	recent := r.Recent()
	if len(recent) != 1 || recent[0].LastBlockID != "" {
		t.Fatalf("unknown article disturbed history: %+v", recent)
	}
}

func TestLastOnEmptyHistory(t *testing.T) {
	r, _ := newTestRecorder(t)
	if _, ok := r.Last(); ok {
		t.Fatal("empty history reported a last article")
	}
}
