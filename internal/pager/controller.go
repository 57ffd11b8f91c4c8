package pager

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/skoglund/zine/internal/cache"
	"github.com/skoglund/zine/internal/cms"
)

const (
	defaultPageSize       = 10
	defaultFetchTimeout   = 8 * time.Second
	defaultRetryDelay     = 600 * time.Millisecond
	defaultStuckCeiling   = 30 * time.Second
	defaultProximityLines = 8
	defaultProximityRatio = 0.85
)

// ContentState is an article's accumulated content, both the in-memory copy
// for the displayed article and the shape persisted to cache.
type ContentState struct {
	Page          cms.PageMeta `json:"page"`
	Blocks        []cms.Block  `json:"blocks"`
	HasMore       bool         `json:"hasMore"`
	NextCursor    string       `json:"nextCursor,omitempty"`
	IsFullyLoaded bool         `json:"isFullyLoaded"`
}

// session is the per-article working state, live while that article is the
// one displayed. Reset on navigation, never shared between articles.
type session struct {
	articleID    string
	nextCursor   string
	hasMore      bool
	loadedIDs    map[string]struct{}
	cursorSeen   map[string]struct{}
	lastCursor   string
	loading      bool
	loadingSince time.Time
	emptyRetried bool
}

// FetchStart captures the identity of one page load at issue time. Results
// are applied only while the capture still matches the controller.
type FetchStart struct {
	Epoch     uint64
	ArticleID string
	Cursor    string
	PageSize  int
}

// FetchResult is the resolution of a FetchStart: a page or an error.
type FetchResult struct {
	Start FetchStart
	Page  cms.BlockPage
	Err   error
}

// Outcome tells the orchestrator what applying a result changed.
type Outcome struct {
	Applied     bool
	Stale       bool
	NovelBlocks []cms.Block
	FullyLoaded bool
	RetryAfter  time.Duration
	Err         error
	ErrTimeout  bool
}

// Viewport describes scroll geometry at predicate evaluation time, in lines.
type Viewport struct {
	Offset int
	Height int
	Total  int
}

// NearBottom reports whether the visible window ends within lines of the
// total extent, or past the given fraction of it. Either suffices.
func (v Viewport) NearBottom(lines int, ratio float64) bool {
	if v.Total <= 0 {
		return false
	}
	bottom := v.Offset + v.Height
	if v.Total-bottom <= lines {
		return true
	}
	return float64(bottom) >= ratio*float64(v.Total)
}

// Controller owns the pagination session for the displayed article: it
// decides when the next page should load, merges responses exactly once into
// cache and in-memory state, and surfaces loading, error, and completion
// signals. It performs no I/O itself; the orchestrator runs the fetch
// described by a FetchStart and hands the result back to Apply.
type Controller struct {
	store  *cache.Store
	logger zerolog.Logger
	clock  func() time.Time

	pageSize       int
	fetchTimeout   time.Duration
	retryDelay     time.Duration
	stuckCeiling   time.Duration
	proximityLines int
	proximityRatio float64

	epoch   uint64
	session session
	state   ContentState
}

// Option mutates controller configuration.
type Option func(*Controller)

// WithLogger injects a logger for anomaly and failure diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithPageSize sets how many blocks each load requests.
func WithPageSize(size int) Option {
	return func(c *Controller) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithFetchTimeout bounds each page load.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(c *Controller) {
		if timeout > 0 {
			c.fetchTimeout = timeout
		}
	}
}

// WithRetryDelay sets the pause before the automatic empty-page retry.
func WithRetryDelay(delay time.Duration) Option {
	return func(c *Controller) {
		if delay > 0 {
			c.retryDelay = delay
		}
	}
}

// WithStuckCeiling sets how long the loading flag may stay set before the
// watchdog force-resets it.
func WithStuckCeiling(ceiling time.Duration) Option {
	return func(c *Controller) {
		if ceiling > 0 {
			c.stuckCeiling = ceiling
		}
	}
}

func withClock(clock func() time.Time) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New creates a controller persisting merged article state into store.
func New(store *cache.Store, options ...Option) *Controller {
	controller := &Controller{
		store:          store,
		logger:         zerolog.Nop(),
		clock:          time.Now,
		pageSize:       defaultPageSize,
		fetchTimeout:   defaultFetchTimeout,
		retryDelay:     defaultRetryDelay,
		stuckCeiling:   defaultStuckCeiling,
		proximityLines: defaultProximityLines,
		proximityRatio: defaultProximityRatio,
	}
	for _, option := range options {
		option(controller)
	}
	return controller
}

// Open points the controller at articleID: the session resets, the epoch
// advances so in-flight responses for the previous article die stale, and
// any cached content is adopted as the resume point. Returns the state to
// render and whether it came from cache.
func (c *Controller) Open(articleID string) (ContentState, bool) {
	c.epoch++
	c.session = session{
		articleID:  articleID,
		hasMore:    true,
		loadedIDs:  make(map[string]struct{}),
		cursorSeen: make(map[string]struct{}),
	}
	c.state = ContentState{HasMore: true}

	var cached ContentState
	if c.store.GetJSON(cache.ArticleKey(articleID), &cached) && len(cached.Blocks) > 0 {
		c.state = cached
		c.session.hasMore = cached.HasMore
		c.session.nextCursor = cached.NextCursor
		for _, block := range cached.Blocks {
			c.session.loadedIDs[block.ID] = struct{}{}
		}
		if cached.NextCursor != "" {
			c.session.cursorSeen[cached.NextCursor] = struct{}{}
			c.session.lastCursor = cached.NextCursor
		}
		c.logger.Debug().
			Str("article_id", articleID).
			Int("blocks", len(cached.Blocks)).
			Bool("fully_loaded", cached.IsFullyLoaded).
			Msg("article resumed from cache")
		return c.state, true
	}
	return c.state, false
}

// Reload drops the cached entry for the open article and starts over from
// the network.
func (c *Controller) Reload() (ContentState, bool) {
	articleID := c.session.articleID
	if articleID == "" {
		return c.state, false
	}
	c.store.Delete(cache.ArticleKey(articleID))
	return c.Open(articleID)
}

// Close returns the controller to a non-article view. The session resets and
// the epoch advances; any in-flight response is discarded on arrival.
func (c *Controller) Close() {
	c.epoch++
	c.session = session{}
	c.state = ContentState{}
}

// State returns the accumulated content for the open article.
func (c *Controller) State() ContentState { return c.state }

// ArticleID returns the open article, or empty outside article views.
func (c *Controller) ArticleID() string { return c.session.articleID }

// Loading reports whether a fetch is outstanding.
func (c *Controller) Loading() bool { return c.session.loading }

// FullyLoaded reports whether the open article has no further pages.
func (c *Controller) FullyLoaded() bool {
	return c.session.articleID != "" && !c.session.hasMore
}

// Epoch returns the current request epoch, for correlating deferred work.
func (c *Controller) Epoch() uint64 { return c.epoch }

// FetchTimeout returns the bound the orchestrator must place on each load.
func (c *Controller) FetchTimeout() time.Duration { return c.fetchTimeout }

// PageSize returns the block count requested per page.
func (c *Controller) PageSize() int { return c.pageSize }

// ShouldLoadMore evaluates the trigger predicate: an article is open, no
// fetch is outstanding, the server has more, a resume cursor exists, and the
// viewport is near the bottom.
func (c *Controller) ShouldLoadMore(view Viewport) bool {
	if c.session.articleID == "" || c.session.loading {
		return false
	}
	if !c.session.hasMore || c.session.nextCursor == "" {
		return false
	}
	return view.NearBottom(c.proximityLines, c.proximityRatio)
}

// Begin acquires the loading flag and captures the fetch identity. It
// refuses while another fetch is outstanding or once the article is fully
// loaded.
func (c *Controller) Begin() (FetchStart, bool) {
	if c.session.articleID == "" || c.session.loading || !c.session.hasMore {
		return FetchStart{}, false
	}
	c.session.loading = true
	c.session.loadingSince = c.clock()
	return FetchStart{
		Epoch:     c.epoch,
		ArticleID: c.session.articleID,
		Cursor:    c.session.nextCursor,
		PageSize:  c.pageSize,
	}, true
}

// Apply merges one fetch result into session, state, and cache. Responses
// whose capture no longer matches the controller are discarded untouched;
// everything else releases the loading flag on the way out.
func (c *Controller) Apply(result FetchResult) Outcome {
	if result.Start.Epoch != c.epoch || result.Start.ArticleID != c.session.articleID {
		c.logger.Debug().
			Str("article_id", result.Start.ArticleID).
			Uint64("response_epoch", result.Start.Epoch).
			Uint64("current_epoch", c.epoch).
			Msg("stale page response discarded")
		return Outcome{Stale: true}
	}

	c.session.loading = false
	c.session.loadingSince = time.Time{}

	if result.Err != nil {
		timeout := cms.IsTimeout(result.Err)
		c.logger.Warn().
			Err(result.Err).
			Str("article_id", c.session.articleID).
			Bool("timeout", timeout).
			Msg("page load failed")
		return Outcome{Err: result.Err, ErrTimeout: timeout}
	}

	page := result.Page

	// The server's pagination fields are authoritative, anomalous or not.
	c.noteCursorAnomaly(page.NextCursor, page.HasMore)
	c.session.hasMore = page.HasMore
	c.session.nextCursor = page.NextCursor
	if page.NextCursor != "" {
		c.session.cursorSeen[page.NextCursor] = struct{}{}
	}
	c.session.lastCursor = page.NextCursor

	novel := make([]cms.Block, 0, len(page.Blocks))
	for _, block := range page.Blocks {
		if _, seen := c.session.loadedIDs[block.ID]; seen {
			continue
		}
		c.session.loadedIDs[block.ID] = struct{}{}
		novel = append(novel, block)
	}

	if len(novel) == 0 && len(page.Blocks) > 0 && page.HasMore {
		if !c.session.emptyRetried {
			c.session.emptyRetried = true
			c.logger.Warn().
				Str("article_id", c.session.articleID).
				Int("duplicates", len(page.Blocks)).
				Msg("page contained only known blocks, retrying once")
			return Outcome{RetryAfter: c.retryDelay}
		}
		c.logger.Warn().
			Str("article_id", c.session.articleID).
			Msg("page contained only known blocks after retry, giving up")
		return Outcome{}
	}
	if len(novel) > 0 {
		c.session.emptyRetried = false
	}

	if page.Page.ID != "" {
		c.state.Page = page.Page
	}
	c.state.Blocks = append(c.state.Blocks, novel...)
	c.state.HasMore = page.HasMore
	c.state.NextCursor = page.NextCursor
	c.state.IsFullyLoaded = !page.HasMore
	c.store.Set(cache.ArticleKey(c.session.articleID), c.state, cache.ClassArticleContent)

	return Outcome{
		Applied:     true,
		NovelBlocks: novel,
		FullyLoaded: c.state.IsFullyLoaded,
	}
}

// Tick runs the time-based guard: a loading flag held past the ceiling is
// force-reset so calling-code bugs cannot wedge the session. The epoch
// advances so the abandoned fetch dies stale if it ever resolves.
func (c *Controller) Tick() bool {
	if !c.session.loading {
		return false
	}
	held := c.clock().Sub(c.session.loadingSince)
	if held <= c.stuckCeiling {
		return false
	}
	c.logger.Error().
		Str("article_id", c.session.articleID).
		Dur("held_for", held).
		Msg("loading flag stuck past ceiling, force-resetting")
	c.session.loading = false
	c.session.loadingSince = time.Time{}
	c.epoch++
	return true
}

// noteCursorAnomaly logs once when the incoming cursor was already seen this
// session, or repeats the previous response's cursor while the server still
// claims more content. Detection only: the values are never overridden, so a
// misbehaving backend surfaces in logs instead of being masked.
func (c *Controller) noteCursorAnomaly(incoming string, hasMore bool) {
	if incoming == "" {
		return
	}
	_, repeated := c.session.cursorSeen[incoming]
	static := incoming == c.session.lastCursor && hasMore
	if !repeated && !static {
		return
	}
	reason := "repeated"
	if static {
		reason = "static"
	}
	c.logger.Warn().
		Str("article_id", c.session.articleID).
		Str("cursor", incoming).
		Str("reason", reason).
		Bool("has_more", hasMore).
		Msg("pagination cursor anomaly")
}
