package viewstate

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Mode is a top-level view the reader can be in.
type Mode string

const (
	ModeWelcome Mode = "welcome"
	ModeArticle Mode = "article"
	ModeLoading Mode = "loading"
	ModeError   Mode = "error"

	// ModeAuto is not a real state: it resolves to the last-read article or
	// the welcome view at transition time.
	ModeAuto Mode = "auto"
)

// Lifecycle event names. Welcome and article views get before/after pairs
// around activation; loadingStart and loadingEnd bracket the loading period.
const (
	EventModeChanged   = "modeChanged"
	EventBeforeWelcome = "beforeWelcome"
	EventAfterWelcome  = "afterWelcome"
	EventBeforeArticle = "beforeArticle"
	EventAfterArticle  = "afterArticle"
	EventLoadingStart  = "loadingStart"
	EventLoadingEnd    = "loadingEnd"
)

// Event is delivered to every handler registered for its name.
type Event struct {
	Name         string
	PreviousMode Mode
	Mode         Mode
	ArticleID    string
	LoadingType  string
}

// Handler consumes one event. Handlers run synchronously, in registration
// order; a panicking handler is logged and skipped, never propagated.
type Handler func(Event)

// AutoResolver decides what ModeAuto means right now: the concrete mode and,
// when it resolves to an article, which one.
type AutoResolver func() (Mode, string, error)

type modeRequest struct {
	mode        Mode
	force       bool
	articleID   string
	loadingType string
}

// ModeOption attaches context to a single transition request.
type ModeOption func(*modeRequest)

// Force re-applies the transition even when the mode is unchanged.
func Force() ModeOption {
	return func(r *modeRequest) { r.force = true }
}

// WithArticle tags the transition with the article being presented.
func WithArticle(articleID string) ModeOption {
	return func(r *modeRequest) { r.articleID = articleID }
}

// WithLoadingType names what the loading view is waiting for.
func WithLoadingType(loadingType string) ModeOption {
	return func(r *modeRequest) { r.loadingType = loadingType }
}

// Coordinator serializes which top-level view is visible. Mode changes
// requested before Initialize are queued last-write-wins; after Destroy,
// everything except Initialize is a no-op. It is confined to the program's
// update loop and performs no locking.
type Coordinator struct {
	logger  zerolog.Logger
	resolve AutoResolver

	initialized bool
	destroyed   bool
	mode        Mode
	articleID   string
	loadingType string
	pending     *modeRequest

	nextID   int64
	handlers map[string]map[int64]Handler
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger injects a logger for handler failures and resolution fallbacks.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithAutoResolver installs the ModeAuto resolution strategy.
func WithAutoResolver(resolve AutoResolver) Option {
	return func(c *Coordinator) { c.resolve = resolve }
}

// New creates an uninitialized coordinator.
func New(options ...Option) *Coordinator {
	coordinator := &Coordinator{
		logger:   zerolog.Nop(),
		handlers: make(map[string]map[int64]Handler),
	}
	for _, option := range options {
		option(coordinator)
	}
	return coordinator
}

// Initialize activates the coordinator and applies the newest queued mode
// request, or lands on the welcome view when nothing was queued. Calling it
// again on a live coordinator is a no-op; calling it after Destroy revives.
func (c *Coordinator) Initialize() {
	if c.initialized && !c.destroyed {
		return
	}
	c.destroyed = false
	c.initialized = true
	if c.handlers == nil {
		c.handlers = make(map[string]map[int64]Handler)
	}
	request := c.pending
	c.pending = nil
	if request == nil {
		request = &modeRequest{mode: ModeWelcome}
	}
	c.apply(*request)
}

// SetMode requests a transition. Before Initialize the request is queued,
// replacing any earlier queued request. Returns whether a transition was
// applied: a request for the current mode without Force is dropped.
func (c *Coordinator) SetMode(mode Mode, options ...ModeOption) bool {
	if c.destroyed {
		return false
	}
	request := modeRequest{mode: mode}
	for _, option := range options {
		option(&request)
	}
	if !c.initialized {
		c.pending = &request
		return false
	}
	return c.apply(request)
}

// Mode returns the visible view, or empty before initialization.
func (c *Coordinator) Mode() Mode { return c.mode }

// ArticleID returns the article context of the current mode, if any.
func (c *Coordinator) ArticleID() string { return c.articleID }

// LoadingType names what the current loading view waits for, if any.
func (c *Coordinator) LoadingType() string { return c.loadingType }

// On registers a handler for the named event and returns its registration
// id for Off. Registration during a dispatch takes effect on the next one.
func (c *Coordinator) On(name string, handler Handler) int64 {
	if c.destroyed || handler == nil {
		return 0
	}
	c.nextID++
	registered, ok := c.handlers[name]
	if !ok {
		registered = make(map[int64]Handler)
		c.handlers[name] = registered
	}
	registered[c.nextID] = handler
	return c.nextID
}

// Off removes one registration. Unknown ids are ignored.
func (c *Coordinator) Off(name string, id int64) {
	if c.destroyed {
		return
	}
	if registered, ok := c.handlers[name]; ok {
		delete(registered, id)
	}
}

// Dispatch delivers event to every handler registered for event.Name, in
// registration order. Handlers removed mid-dispatch are skipped.
func (c *Coordinator) Dispatch(event Event) {
	if c.destroyed {
		return
	}
	registered := c.handlers[event.Name]
	if len(registered) == 0 {
		return
	}
	ids := make([]int64, 0, len(registered))
	for id := range registered {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		handler := registered[id]
		if handler == nil {
			continue
		}
		if err := invoke(func() { handler(event) }); err != nil {
			c.logger.Error().
				Err(err).
				Str("event", event.Name).
				Int64("handler_id", id).
				Msg("event handler failed")
		}
	}
}

// Destroy unregisters every handler and clears state. Only Initialize may
// follow it.
func (c *Coordinator) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	c.initialized = false
	c.pending = nil
	c.handlers = make(map[string]map[int64]Handler)
	c.mode = ""
	c.articleID = ""
	c.loadingType = ""
}

func (c *Coordinator) apply(request modeRequest) bool {
	mode := request.mode
	if mode == ModeAuto {
		mode = c.resolveAuto(&request)
	}
	if !validMode(mode) {
		c.logger.Error().Str("mode", string(request.mode)).Msg("unknown view mode ignored")
		return false
	}
	if mode == c.mode && !request.force {
		return false
	}

	previous := c.mode
	if previous == ModeLoading && mode != ModeLoading {
		c.Dispatch(Event{Name: EventLoadingEnd, PreviousMode: previous, Mode: mode, LoadingType: c.loadingType})
	}
	switch mode {
	case ModeWelcome:
		c.Dispatch(Event{Name: EventBeforeWelcome, PreviousMode: previous, Mode: mode})
	case ModeArticle:
		c.Dispatch(Event{Name: EventBeforeArticle, PreviousMode: previous, Mode: mode, ArticleID: request.articleID})
	}

	c.mode = mode
	c.articleID = request.articleID
	c.loadingType = request.loadingType

	c.Dispatch(Event{
		Name:         EventModeChanged,
		PreviousMode: previous,
		Mode:         mode,
		ArticleID:    c.articleID,
		LoadingType:  c.loadingType,
	})
	switch mode {
	case ModeWelcome:
		c.Dispatch(Event{Name: EventAfterWelcome, PreviousMode: previous, Mode: mode})
	case ModeArticle:
		c.Dispatch(Event{Name: EventAfterArticle, PreviousMode: previous, Mode: mode, ArticleID: c.articleID})
	case ModeLoading:
		c.Dispatch(Event{Name: EventLoadingStart, PreviousMode: previous, Mode: mode, LoadingType: c.loadingType})
	}
	return true
}

// resolveAuto maps ModeAuto onto a concrete mode. Any failure falls back to
// the welcome view rather than leaving the reader nowhere.
func (c *Coordinator) resolveAuto(request *modeRequest) Mode {
	if c.resolve == nil {
		return ModeWelcome
	}
	var (
		resolved   Mode
		articleID  string
		resolveErr error
	)
	err := invoke(func() {
		resolved, articleID, resolveErr = c.resolve()
	})
	if err == nil {
		err = resolveErr
	}
	if err != nil || !validMode(resolved) {
		c.logger.Warn().
			Err(err).
			Str("resolved", string(resolved)).
			Msg("auto mode resolution failed, defaulting to welcome")
		return ModeWelcome
	}
	if request.articleID == "" {
		request.articleID = articleID
	}
	return resolved
}

func validMode(mode Mode) bool {
	switch mode {
	case ModeWelcome, ModeArticle, ModeLoading, ModeError:
		return true
	}
	return false
}

// invoke runs fn, converting panics into errors so one misbehaving handler
// cannot take the coordinator down with it.
func invoke(fn func()) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = errors.Errorf("panic recovered: %v", recovered)
		}
	}()
	fn()
	return nil
}
