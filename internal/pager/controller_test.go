package pager

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/skoglund/zine/internal/cache"
	"github.com/skoglund/zine/internal/cms"
)

type tickClock struct {
	now time.Time
}

func (c *tickClock) Now() time.Time { return c.now }

func (c *tickClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestController(t *testing.T, options ...Option) (*Controller, *cache.Store) {
	t.Helper()
	store := cache.New(cache.NewMemMedium())
	return New(store, options...), store
}

func block(id string) cms.Block {
	return cms.Block{ID: id, Type: cms.BlockParagraph, Text: "block " + id}
}

func page(cursor string, hasMore bool, blocks ...cms.Block) cms.BlockPage {
	return cms.BlockPage{Blocks: blocks, HasMore: hasMore, NextCursor: cursor}
}

func mustBegin(t *testing.T, c *Controller) FetchStart {
	t.Helper()
	start, ok := c.Begin()
	if !ok {
		t.Fatalf("begin refused: loading=%v article=%q", c.Loading(), c.ArticleID())
	}
	return start
}

func TestInitialLoadMergesAndPersists(t *testing.T) {
	c, store := newTestController(t)

	state, fromCache := c.Open("a1")
	if fromCache {
		t.Fatal("empty cache reported a hit")
	}
	if len(state.Blocks) != 0 || !state.HasMore {
		t.Fatalf("unexpected initial state: %+v", state)
	}

	start := mustBegin(t, c)
	if start.ArticleID != "a1" || start.Cursor != "" || start.PageSize != defaultPageSize {
		t.Fatalf("unexpected fetch start: %+v", start)
	}
	if !c.Loading() {
		t.Fatal("loading flag not set after begin")
	}

	first := page("c1", true, block("b1"), block("b2"))
	first.Page = cms.PageMeta{ID: "a1", Title: "On Gardens"}
	outcome := c.Apply(FetchResult{Start: start, Page: first})
	if !outcome.Applied || len(outcome.NovelBlocks) != 2 || outcome.FullyLoaded {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if c.Loading() {
		t.Fatal("loading flag not released after apply")
	}
	if got := c.State(); len(got.Blocks) != 2 || got.NextCursor != "c1" || got.Page.Title != "On Gardens" {
		t.Fatalf("unexpected merged state: %+v", got)
	}

	var persisted ContentState
	if !store.GetJSON(cache.ArticleKey("a1"), &persisted) {
		t.Fatal("merged state not persisted")
	}
	if len(persisted.Blocks) != 2 || persisted.IsFullyLoaded {
		t.Fatalf("unexpected persisted state: %+v", persisted)
	}
}

func TestDedupsAcrossPages(t *testing.T) {
	c, _ := newTestController(t)
	c.Open("a1")

	start := mustBegin(t, c)
	c.Apply(FetchResult{Start: start, Page: page("c1", true, block("b1"), block("b2"))})

	start = mustBegin(t, c)
	if start.Cursor != "c1" {
		t.Fatalf("second fetch cursor = %q, want c1", start.Cursor)
	}
	outcome := c.Apply(FetchResult{Start: start, Page: page("", false, block("b2"), block("b3"))})
	if !outcome.Applied || !outcome.FullyLoaded {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if len(outcome.NovelBlocks) != 1 || outcome.NovelBlocks[0].ID != "b3" {
		t.Fatalf("unexpected novel blocks: %+v", outcome.NovelBlocks)
	}

	state := c.State()
	if len(state.Blocks) != 3 {
		t.Fatalf("merged %d blocks, want 3", len(state.Blocks))
	}
	for i, want := range []string{"b1", "b2", "b3"} {
		if state.Blocks[i].ID != want {
			t.Fatalf("block %d = %q, want %q", i, state.Blocks[i].ID, want)
		}
	}
	if !state.IsFullyLoaded || state.HasMore {
		t.Fatalf("terminal state not marked: %+v", state)
	}
	if !c.FullyLoaded() {
		t.Fatal("controller does not report fully loaded")
	}
	if _, ok := c.Begin(); ok {
		t.Fatal("begin allowed on a fully loaded article")
	}
}

func TestDiscardsStaleResponse(t *testing.T) {
	c, store := newTestController(t)

	c.Open("a1")
	staleStart := mustBegin(t, c)

	// Navigation away while the fetch is in flight.
	c.Open("a2")
	liveStart := mustBegin(t, c)

	outcome := c.Apply(FetchResult{Start: staleStart, Page: page("c1", true, block("old1"))})
	if !outcome.Stale || outcome.Applied {
		t.Fatalf("unexpected outcome for stale response: %+v", outcome)
	}
	if !c.Loading() {
		t.Fatal("stale response released the live fetch's loading flag")
	}
	if len(c.State().Blocks) != 0 {
		t.Fatalf("stale response mutated state: %+v", c.State())
	}
	if _, ok := store.Get(cache.ArticleKey("a1")); ok {
		t.Fatal("stale response persisted to cache")
	}

	outcome = c.Apply(FetchResult{Start: liveStart, Page: page("", false, block("new1"))})
	if !outcome.Applied {
		t.Fatalf("live response not applied: %+v", outcome)
	}
	if got := c.State().Blocks; len(got) != 1 || got[0].ID != "new1" {
		t.Fatalf("unexpected state after live apply: %+v", got)
	}
}

func TestCursorLoopLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	c, _ := newTestController(t, WithLogger(zerolog.New(&buf)))
	c.Open("a1")

	start := mustBegin(t, c)
	c.Apply(FetchResult{Start: start, Page: page("c1", true, block("b1"))})

	start = mustBegin(t, c)
	outcome := c.Apply(FetchResult{Start: start, Page: page("c1", true, block("b2"))})
	if !outcome.Applied {
		t.Fatalf("anomalous cursor blocked the merge: %+v", outcome)
	}
	if got := c.State().NextCursor; got != "c1" {
		t.Fatalf("cursor overridden to %q, want server's c1", got)
	}
	if n := strings.Count(buf.String(), "pagination cursor anomaly"); n != 1 {
		t.Fatalf("anomaly logged %d times, want exactly 1: %s", n, buf.String())
	}
}

func TestEmptyPageSchedulesOneRetry(t *testing.T) {
	retryDelay := 250 * time.Millisecond
	c, store := newTestController(t, WithRetryDelay(retryDelay))
	c.Open("a1")

	start := mustBegin(t, c)
	c.Apply(FetchResult{Start: start, Page: page("c1", true, block("b1"), block("b2"))})

	// Every block already known, but the server insists there is more.
	start = mustBegin(t, c)
	outcome := c.Apply(FetchResult{Start: start, Page: page("c2", true, block("b1"), block("b2"))})
	if outcome.Applied || outcome.RetryAfter != retryDelay {
		t.Fatalf("want one scheduled retry after %v, got %+v", retryDelay, outcome)
	}
	if c.Loading() {
		t.Fatal("loading flag held across the retry window")
	}

	// Second consecutive duplicate page: give up, no further retry.
	start = mustBegin(t, c)
	if start.Cursor != "c2" {
		t.Fatalf("retry fetch cursor = %q, want the server's c2", start.Cursor)
	}
	outcome = c.Apply(FetchResult{Start: start, Page: page("c3", true, block("b1"), block("b2"))})
	if outcome.Applied || outcome.RetryAfter != 0 {
		t.Fatalf("want give-up with no retry, got %+v", outcome)
	}

	var persisted ContentState
	if !store.GetJSON(cache.ArticleKey("a1"), &persisted) || len(persisted.Blocks) != 2 {
		t.Fatalf("duplicate pages disturbed the persisted state: %+v", persisted)
	}

	// A novel block re-arms the single retry.
	start = mustBegin(t, c)
	c.Apply(FetchResult{Start: start, Page: page("c4", true, block("b3"))})
	start = mustBegin(t, c)
	outcome = c.Apply(FetchResult{Start: start, Page: page("c5", true, block("b3"))})
	if outcome.RetryAfter != retryDelay {
		t.Fatalf("retry not re-armed after novel content: %+v", outcome)
	}
}

func TestErrorReleasesFlagWithoutAdvancingCursor(t *testing.T) {
	c, _ := newTestController(t)
	c.Open("a1")

	start := mustBegin(t, c)
	c.Apply(FetchResult{Start: start, Page: page("c1", true, block("b1"))})

	start = mustBegin(t, c)
	outcome := c.Apply(FetchResult{Start: start, Err: errors.New("boom")})
	if outcome.Applied || outcome.Err == nil || outcome.ErrTimeout {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if c.Loading() {
		t.Fatal("loading flag held after a failed fetch")
	}

	start = mustBegin(t, c)
	if start.Cursor != "c1" {
		t.Fatalf("failed fetch advanced cursor to %q", start.Cursor)
	}
}

func TestTimeoutClassified(t *testing.T) {
	c, _ := newTestController(t)
	c.Open("a1")

	start := mustBegin(t, c)
	err := fmt.Errorf("fetch blocks: %w", context.DeadlineExceeded)
	outcome := c.Apply(FetchResult{Start: start, Err: err})
	if !outcome.ErrTimeout {
		t.Fatalf("deadline error not classified as timeout: %+v", outcome)
	}
}

func TestForceResetsStuckFlag(t *testing.T) {
	clock := &tickClock{now: time.Date(2025, 5, 12, 9, 0, 0, 0, time.UTC)}
	var buf bytes.Buffer
	c, _ := newTestController(t,
		withClock(clock.Now),
		WithStuckCeiling(10*time.Second),
		WithLogger(zerolog.New(&buf)),
	)
	c.Open("a1")
	start := mustBegin(t, c)

	clock.Advance(5 * time.Second)
	if c.Tick() {
		t.Fatal("flag reset before the ceiling")
	}

	clock.Advance(6 * time.Second)
	if !c.Tick() {
		t.Fatal("flag not reset past the ceiling")
	}
	if c.Loading() {
		t.Fatal("loading flag still set after force-reset")
	}
	if !strings.Contains(buf.String(), "force-resetting") {
		t.Fatalf("force-reset not logged: %s", buf.String())
	}

	// The abandoned fetch resolves late: its epoch predates the reset.
	outcome := c.Apply(FetchResult{Start: start, Page: page("c1", true, block("b1"))})
	if !outcome.Stale {
		t.Fatalf("zombie response applied after force-reset: %+v", outcome)
	}
	if len(c.State().Blocks) != 0 {
		t.Fatalf("zombie response mutated state: %+v", c.State())
	}
}

func TestShouldLoadMore(t *testing.T) {
	c, _ := newTestController(t)
	nearBottom := Viewport{Offset: 352, Height: 40, Total: 400}

	if c.ShouldLoadMore(nearBottom) {
		t.Fatal("triggered with no article open")
	}

	c.Open("a1")
	if c.ShouldLoadMore(nearBottom) {
		t.Fatal("triggered before the first page set a cursor")
	}

	start := mustBegin(t, c)
	c.Apply(FetchResult{Start: start, Page: page("c1", true, block("b1"))})
	if !c.ShouldLoadMore(nearBottom) {
		t.Fatal("not triggered near the bottom with more content available")
	}
	if c.ShouldLoadMore(Viewport{Offset: 0, Height: 40, Total: 400}) {
		t.Fatal("triggered far from the bottom")
	}

	mustBegin(t, c)
	if c.ShouldLoadMore(nearBottom) {
		t.Fatal("triggered while a fetch is outstanding")
	}
}

func TestViewportNearBottom(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		view Viewport
		want bool
	}{
		{"empty content", Viewport{0, 0, 0}, false},
		{"top of tall content", Viewport{0, 40, 400}, false},
		{"within line threshold", Viewport{352, 40, 400}, true},
		{"past ratio threshold", Viewport{300, 45, 400}, true},
		{"below both thresholds", Viewport{295, 40, 400}, false},
		{"content shorter than window", Viewport{0, 40, 30}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.view.NearBottom(defaultProximityLines, defaultProximityRatio); got != tt.want {
				t.Fatalf("NearBottom(%+v) = %v, want %v", tt.view, got, tt.want)
			}
		})
	}
}

func TestAdoptsCachedProgress(t *testing.T) {
	c, store := newTestController(t)
	store.Set(cache.ArticleKey("a1"), ContentState{
		Page:       cms.PageMeta{ID: "a1", Title: "On Gardens"},
		Blocks:     []cms.Block{block("b1"), block("b2")},
		HasMore:    true,
		NextCursor: "c5",
	}, cache.ClassArticleContent)

	state, fromCache := c.Open("a1")
	if !fromCache {
		t.Fatal("cached progress not adopted")
	}
	if len(state.Blocks) != 2 || state.NextCursor != "c5" {
		t.Fatalf("unexpected adopted state: %+v", state)
	}

	start := mustBegin(t, c)
	if start.Cursor != "c5" {
		t.Fatalf("resume fetch cursor = %q, want c5", start.Cursor)
	}
	outcome := c.Apply(FetchResult{Start: start, Page: page("", false, block("b2"), block("b3"))})
	if len(outcome.NovelBlocks) != 1 || outcome.NovelBlocks[0].ID != "b3" {
		t.Fatalf("cached blocks not deduped on resume: %+v", outcome.NovelBlocks)
	}
	if got := c.State(); len(got.Blocks) != 3 || !got.IsFullyLoaded {
		t.Fatalf("unexpected state after resume: %+v", got)
	}
}

func TestResetOnClose(t *testing.T) {
	c, _ := newTestController(t)
	c.Open("a1")
	start := mustBegin(t, c)
	c.Apply(FetchResult{Start: start, Page: page("c1", true, block("b1"))})

	c.Close()
	if c.ArticleID() != "" || c.Loading() {
		t.Fatalf("session survived close: article=%q loading=%v", c.ArticleID(), c.Loading())
	}
	if len(c.State().Blocks) != 0 {
		t.Fatalf("state survived close: %+v", c.State())
	}
	if _, ok := c.Begin(); ok {
		t.Fatal("begin allowed with no article open")
	}
}

func TestReloadBypassesCache(t *testing.T) {
	c, store := newTestController(t)
	c.Open("a1")
	start := mustBegin(t, c)
	c.Apply(FetchResult{Start: start, Page: page("", false, block("b1"))})

	state, fromCache := c.Reload()
	if fromCache {
		t.Fatal("reload served the cached copy")
	}
	if len(state.Blocks) != 0 || !state.HasMore {
		t.Fatalf("reload did not reset state: %+v", state)
	}
	if _, ok := store.Get(cache.ArticleKey("a1")); ok {
		t.Fatal("reload left the cache entry in place")
	}

	start = mustBegin(t, c)
	if start.Cursor != "" {
		t.Fatalf("reload fetch cursor = %q, want empty", start.Cursor)
	}
}
