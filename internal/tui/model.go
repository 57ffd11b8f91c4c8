package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/skoglund/zine/internal/cache"
	"github.com/skoglund/zine/internal/cms"
	"github.com/skoglund/zine/internal/history"
	"github.com/skoglund/zine/internal/pager"
	"github.com/skoglund/zine/internal/viewstate"
)

// Config wires runtime dependencies into the TUI program. API and Store are
// required; History and Attachments degrade gracefully when nil.
type Config struct {
	API          *cms.Client
	Store        *cache.Store
	Attachments  *cms.AttachmentStore
	History      *history.Recorder
	Logger       zerolog.Logger
	PageSize     int
	FetchTimeout time.Duration
	WarmArticles int
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	pagerOpts := []pager.Option{pager.WithLogger(config.Logger)}
	if config.PageSize > 0 {
		pagerOpts = append(pagerOpts, pager.WithPageSize(config.PageSize))
	}
	if config.FetchTimeout > 0 {
		pagerOpts = append(pagerOpts, pager.WithFetchTimeout(config.FetchTimeout))
	}

	m := &model{
		config:       config,
		pager:        pager.New(config.Store, pagerOpts...),
		jobs:         newJobBus(config.Logger),
		logger:       config.Logger,
		spinner:      spin,
		viewport:     vp,
		layout:       newPageLayout(),
		blockLines:   map[string]int{},
		cachedSet:    map[string]bool{},
		contentDirty: true,
		infoMessage:  "Loading your library…",
	}
	m.coordinator = viewstate.New(
		viewstate.WithLogger(config.Logger),
		viewstate.WithAutoResolver(m.resolveStartupMode),
	)
	m.coordinator.On(viewstate.EventModeChanged, func(event viewstate.Event) {
		m.logger.Debug().
			Str("from", string(event.PreviousMode)).
			Str("to", string(event.Mode)).
			Msg("view mode changed")
	})
	m.coordinator.On(viewstate.EventAfterArticle, func(event viewstate.Event) {
		m.noteArticleVisit(event.ArticleID)
	})
	// Queued until Initialize runs in Init; resuming readers land back in
	// the article they left.
	m.coordinator.SetMode(viewstate.ModeAuto)
	return m
}

type model struct {
	config Config

	coordinator *viewstate.Coordinator
	pager       *pager.Controller
	jobs        *jobBus
	logger      zerolog.Logger

	spinner  spinner.Model
	viewport viewport.Model
	layout   pageLayout

	articles         []cms.ArticleSummary
	categories       []cms.Category
	activeCategory   string
	listCursor       int
	libraryLoaded    bool
	libraryFromCache bool
	libraryLoading   bool
	cachedSet        map[string]bool

	contentDirty       bool
	contentLineCount   int
	blockLines         map[string]int
	pendingFocusBlock  string
	lastProximityCheck time.Time

	attachmentOpen    bool
	attachmentLoading bool
	attachmentFor     string
	attachmentText    string

	helpVisible  bool
	infoMessage  string
	errorMessage string
	quitting     bool
}

type libraryResultMsg struct {
	articles   []cms.ArticleSummary
	categories []cms.Category
	fromCache  bool
	err        error
}

type pageResultMsg struct {
	result pager.FetchResult
}

type retryTickMsg struct {
	epoch     uint64
	articleID string
}

type watchdogTickMsg time.Time

type attachmentResultMsg struct {
	articleID string
	blockID   string
	text      string
	err       error
}

type warmResultMsg struct {
	warmed int
}

func (m *model) Init() tea.Cmd {
	m.coordinator.Initialize()

	cmds := []tea.Cmd{
		m.spinner.Tick,
		watchdogCmd(),
		m.startLibraryLoad(false),
	}
	if m.coordinator.Mode() == viewstate.ModeArticle {
		if cmd := m.openArticle(m.coordinator.ArticleID()); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// resolveStartupMode decides where "auto" lands: back in the most recently
// viewed article when one is on record, otherwise the welcome screen.
func (m *model) resolveStartupMode() (viewstate.Mode, string, error) {
	if m.config.History == nil {
		return viewstate.ModeWelcome, "", nil
	}
	last, ok := m.config.History.Last()
	if !ok {
		return viewstate.ModeWelcome, "", nil
	}
	return viewstate.ModeArticle, last.ID, nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.viewport.Width = m.layout.viewportWidth
		m.viewport.Height = m.layout.viewportHeight
		m.markContentDirty()
		return m, nil
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case jobSignalMsg:
		// The tick chain dies once busy() goes false, so every job start re-arms it.
		m.logger.Debug().Str("job", msg.Snapshot.ID).Msg("background job started")
		return m, m.spinner.Tick
	case jobResultEnvelope:
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case libraryResultMsg:
		return m.handleLibraryResult(msg)
	case pageResultMsg:
		return m.handlePageResult(msg)
	case retryTickMsg:
		return m.handleRetryTick(msg)
	case watchdogTickMsg:
		return m.handleWatchdogTick()
	case attachmentResultMsg:
		return m.handleAttachmentResult(msg)
	case warmResultMsg:
		if msg.warmed > 0 {
			m.rebuildCachedSet()
			m.logger.Info().Int("articles", msg.warmed).Msg("prefetched article content")
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		if loadCmd := m.maybeLoadMore(false); loadCmd != nil {
			return m, tea.Batch(cmd, loadCmd)
		}
		return m, cmd
	}
	return m, nil
}

func (m *model) busy() bool {
	return m.coordinator.Mode() == viewstate.ModeLoading ||
		m.pager.Loading() ||
		m.libraryLoading ||
		m.attachmentLoading
}

func (m *model) startLibraryLoad(bypass bool) tea.Cmd {
	if m.libraryLoading {
		return nil
	}
	m.libraryLoading = true
	return m.jobs.Start(jobKindLibrary, loadLibraryJob(m.config.API, m.config.Store, bypass))
}

func (m *model) handleLibraryResult(msg libraryResultMsg) (tea.Model, tea.Cmd) {
	m.libraryLoading = false
	if msg.err != nil {
		if m.libraryLoaded {
			m.infoMessage = "Refresh failed; showing the previous list."
			return m, nil
		}
		m.errorMessage = friendlyFetchError("load the article list", msg.err)
		if m.coordinator.Mode() == viewstate.ModeWelcome {
			m.coordinator.SetMode(viewstate.ModeError)
		}
		return m, nil
	}

	m.articles = msg.articles
	m.categories = msg.categories
	m.libraryLoaded = true
	m.libraryFromCache = msg.fromCache
	m.clampListCursor()
	m.rebuildCachedSet()
	if msg.fromCache {
		m.infoMessage = "Library loaded from cache. Press r for a fresh copy."
	} else {
		m.infoMessage = fmt.Sprintf("%d articles across %d categories.", len(msg.articles), len(msg.categories))
	}

	if !msg.fromCache && m.config.WarmArticles > 0 {
		return m, m.jobs.Start(jobKindWarm, warmUpJob(
			m.config.API,
			m.config.Store,
			m.pager.PageSize(),
			msg.articles,
			m.config.WarmArticles,
		))
	}
	return m, nil
}

func (m *model) handlePageResult(msg pageResultMsg) (tea.Model, tea.Cmd) {
	outcome := m.pager.Apply(msg.result)
	if outcome.Stale {
		return m, nil
	}
	if outcome.Err != nil {
		return m.handlePageError(outcome)
	}
	if outcome.RetryAfter > 0 {
		m.infoMessage = "Server repeated known blocks; retrying once…"
		return m, retryCmd(outcome.RetryAfter, m.pager.Epoch(), m.pager.ArticleID())
	}
	if !outcome.Applied {
		m.infoMessage = "No further content available."
		m.markContentDirty()
		return m, nil
	}

	state := m.pager.State()
	if m.coordinator.Mode() == viewstate.ModeLoading && m.coordinator.LoadingType() == loadingTypeArticle {
		m.coordinator.SetMode(viewstate.ModeArticle, viewstate.WithArticle(m.pager.ArticleID()))
	}
	if state.Page.ID != "" && state.Page.Title != "" {
		m.touchHistory(state.Page)
	}
	if outcome.FullyLoaded {
		m.infoMessage = "Article fully loaded."
	} else {
		m.infoMessage = ""
	}
	m.markContentDirty()
	return m, nil
}

func (m *model) handlePageError(outcome pager.Outcome) (tea.Model, tea.Cmd) {
	if len(m.pager.State().Blocks) > 0 {
		// Keep what already rendered; surface the failure in the footer.
		if outcome.ErrTimeout {
			m.infoMessage = "Loading more timed out; scroll again to retry."
		} else {
			m.infoMessage = "Loading more failed; scroll again to retry."
		}
		m.markContentDirty()
		return m, nil
	}
	m.errorMessage = friendlyFetchError("load this article", outcome.Err)
	m.coordinator.SetMode(viewstate.ModeError, viewstate.WithArticle(m.pager.ArticleID()))
	return m, nil
}

func (m *model) handleRetryTick(msg retryTickMsg) (tea.Model, tea.Cmd) {
	if msg.epoch != m.pager.Epoch() || msg.articleID != m.pager.ArticleID() {
		return m, nil
	}
	return m, m.beginFetch()
}

func (m *model) handleWatchdogTick() (tea.Model, tea.Cmd) {
	if m.pager.Tick() {
		m.infoMessage = "Loading stalled; try scrolling again."
	}
	cmds := []tea.Cmd{watchdogCmd()}
	if cmd := m.maybeLoadMore(true); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *model) handleAttachmentResult(msg attachmentResultMsg) (tea.Model, tea.Cmd) {
	m.attachmentLoading = false
	if msg.articleID != m.pager.ArticleID() {
		return m, nil
	}
	if msg.err != nil {
		m.attachmentOpen = false
		m.infoMessage = "Attachment preview failed."
		m.logger.Warn().Err(msg.err).Str("block", msg.blockID).Msg("attachment preview failed")
		return m, nil
	}
	m.attachmentOpen = true
	m.attachmentFor = msg.blockID
	m.attachmentText = msg.text
	m.infoMessage = ""
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Type == tea.KeyCtrlC {
		return m.quit()
	}
	if m.helpVisible {
		switch key.String() {
		case "?", "esc", "q":
			m.helpVisible = false
		}
		return m, nil
	}
	if key.String() == "?" {
		m.helpVisible = true
		return m, nil
	}

	switch m.coordinator.Mode() {
	case viewstate.ModeWelcome:
		return m.handleWelcomeKey(key)
	case viewstate.ModeArticle:
		return m.handleArticleKey(key)
	case viewstate.ModeLoading:
		return m.handleLoadingKey(key)
	case viewstate.ModeError:
		return m.handleErrorKey(key)
	}
	return m, nil
}

func (m *model) handleWelcomeKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "q", "esc":
		return m.quit()
	case "j", "down":
		m.moveListCursor(1)
		return m, nil
	case "k", "up":
		m.moveListCursor(-1)
		return m, nil
	case "g", "home":
		m.listCursor = 0
		return m, nil
	case "G", "end":
		if n := len(m.visibleArticles()); n > 0 {
			m.listCursor = n - 1
		}
		return m, nil
	case "c", "tab":
		m.cycleCategory(1)
		return m, nil
	case "C", "shift+tab":
		m.cycleCategory(-1)
		return m, nil
	case "r":
		m.infoMessage = "Refreshing from the CMS…"
		return m, m.startLibraryLoad(true)
	case "enter", "l":
		visible := m.visibleArticles()
		if m.listCursor >= 0 && m.listCursor < len(visible) {
			return m, m.openArticle(visible[m.listCursor].ID)
		}
		return m, nil
	}
	return m, nil
}

func (m *model) handleArticleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.attachmentOpen {
		switch key.String() {
		case "esc", "o", "q":
			m.attachmentOpen = false
		}
		return m, nil
	}
	switch key.String() {
	case "q":
		return m.quit()
	case "esc", "b":
		return m.returnToWelcome()
	case "r":
		return m.reloadArticle()
	case "o":
		return m.previewAttachment()
	case "g", "home":
		m.viewport.GotoTop()
		return m, nil
	case "G", "end":
		m.viewport.GotoBottom()
		return m, m.maybeLoadMore(true)
	case "j", "down":
		m.viewport.LineDown(1)
		return m, m.maybeLoadMore(false)
	case "k", "up":
		m.viewport.LineUp(1)
		return m, nil
	case "d", "pgdown", " ":
		m.viewport.HalfViewDown()
		return m, m.maybeLoadMore(false)
	case "u", "pgup":
		m.viewport.HalfViewUp()
		return m, nil
	}
	return m, nil
}

func (m *model) handleLoadingKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "q":
		return m.quit()
	case "esc":
		return m.returnToWelcome()
	}
	return m, nil
}

func (m *model) handleErrorKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "q":
		return m.quit()
	case "esc", "b":
		return m.returnToWelcome()
	case "r":
		m.errorMessage = ""
		if id := m.coordinator.ArticleID(); id != "" {
			return m, m.openArticle(id)
		}
		m.coordinator.SetMode(viewstate.ModeWelcome)
		return m, m.startLibraryLoad(false)
	}
	return m, nil
}

// openArticle swaps the pager to the given article. Cached content shows
// immediately; otherwise the loading screen holds until the first page lands.
func (m *model) openArticle(id string) tea.Cmd {
	state, fromCache := m.pager.Open(id)
	m.attachmentOpen = false
	m.attachmentText = ""
	m.attachmentFor = ""
	m.errorMessage = ""
	m.pendingFocusBlock = ""
	if last, ok := m.lastViewed(id); ok && last.LastBlockID != "" {
		m.pendingFocusBlock = last.LastBlockID
	}
	m.markContentDirty()

	if fromCache && len(state.Blocks) > 0 {
		m.coordinator.SetMode(viewstate.ModeArticle, viewstate.WithArticle(id))
		m.infoMessage = "Showing cached copy."
		if state.IsFullyLoaded {
			return nil
		}
		return m.beginFetch()
	}

	m.coordinator.SetMode(viewstate.ModeLoading,
		viewstate.WithArticle(id),
		viewstate.WithLoadingType(loadingTypeArticle),
	)
	m.infoMessage = ""
	return m.beginFetch()
}

func (m *model) beginFetch() tea.Cmd {
	start, ok := m.pager.Begin()
	if !ok {
		return nil
	}
	return m.jobs.Start(jobKindPage, fetchPageJob(m.config.API, start, m.pager.FetchTimeout()))
}

func (m *model) returnToWelcome() (tea.Model, tea.Cmd) {
	m.recordReadingPosition()
	m.pager.Close()
	m.attachmentOpen = false
	m.attachmentText = ""
	m.errorMessage = ""
	m.infoMessage = ""
	m.coordinator.SetMode(viewstate.ModeWelcome)
	m.rebuildCachedSet()
	m.markContentDirty()
	return m, nil
}

func (m *model) reloadArticle() (tea.Model, tea.Cmd) {
	id := m.pager.ArticleID()
	if id == "" {
		return m, nil
	}
	m.recordReadingPosition()
	m.pager.Reload()
	m.coordinator.SetMode(viewstate.ModeLoading,
		viewstate.WithArticle(id),
		viewstate.WithLoadingType(loadingTypeArticle),
	)
	m.infoMessage = "Reloading from the CMS…"
	m.markContentDirty()
	return m, m.beginFetch()
}

func (m *model) previewAttachment() (tea.Model, tea.Cmd) {
	if m.attachmentLoading {
		return m, nil
	}
	if m.config.Attachments == nil {
		m.infoMessage = "Attachment previews are not configured."
		return m, nil
	}
	block, ok := m.visibleFileBlock()
	if !ok {
		m.infoMessage = "No attachment in view."
		return m, nil
	}
	m.attachmentLoading = true
	m.infoMessage = "Fetching attachment…"
	return m, m.jobs.Start(jobKindAttachment, attachmentTextJob(
		m.config.Attachments,
		m.pager.ArticleID(),
		block.ID,
		block.URL,
	))
}

// visibleFileBlock picks the first file block at or below the top of the
// current view, falling back to the last one above it.
func (m *model) visibleFileBlock() (cms.Block, bool) {
	var fallback cms.Block
	haveFallback := false
	for _, block := range m.pager.State().Blocks {
		if block.Type != cms.BlockFile || block.URL == "" {
			continue
		}
		if line, ok := m.blockLines[block.ID]; ok && line >= m.viewport.YOffset {
			return block, true
		}
		fallback = block
		haveFallback = true
	}
	return fallback, haveFallback
}

// maybeLoadMore runs the infinite-scroll trigger. Scroll events are throttled
// so held keys don't spam the predicate; the watchdog passes ignoreThrottle.
func (m *model) maybeLoadMore(ignoreThrottle bool) tea.Cmd {
	if m.coordinator.Mode() != viewstate.ModeArticle {
		return nil
	}
	now := time.Now()
	if !ignoreThrottle && now.Sub(m.lastProximityCheck) < proximityThrottle {
		return nil
	}
	m.lastProximityCheck = now
	view := pager.Viewport{
		Offset: m.viewport.YOffset,
		Height: m.viewport.Height,
		Total:  m.contentLineCount,
	}
	if !m.pager.ShouldLoadMore(view) {
		return nil
	}
	return m.beginFetch()
}

func (m *model) quit() (tea.Model, tea.Cmd) {
	m.recordReadingPosition()
	m.coordinator.Destroy()
	m.quitting = true
	return m, tea.Quit
}

// recordReadingPosition remembers the topmost visible block so the next open
// of this article can resume there.
func (m *model) recordReadingPosition() {
	if m.config.History == nil || m.coordinator.Mode() != viewstate.ModeArticle {
		return
	}
	id := m.pager.ArticleID()
	if id == "" {
		return
	}
	if block := blockAtLine(m.blockLines, m.viewport.YOffset); block != "" {
		m.config.History.MarkBlock(id, block)
	}
}

func (m *model) noteArticleVisit(id string) {
	if m.config.History == nil || id == "" {
		return
	}
	if state := m.pager.State(); state.Page.ID == id && state.Page.Title != "" {
		m.config.History.Touch(id, state.Page.Title, state.Page.Category)
		return
	}
	for _, article := range m.articles {
		if article.ID == id {
			m.config.History.Touch(id, article.Title, article.Category)
			return
		}
	}
}

func (m *model) touchHistory(page cms.PageMeta) {
	if m.config.History == nil {
		return
	}
	m.config.History.Touch(page.ID, page.Title, page.Category)
}

func (m *model) lastViewed(id string) (history.ViewedArticle, bool) {
	if m.config.History == nil {
		return history.ViewedArticle{}, false
	}
	for _, entry := range m.config.History.Recent() {
		if entry.ID == id {
			return entry, true
		}
	}
	return history.ViewedArticle{}, false
}

func (m *model) visibleArticles() []cms.ArticleSummary {
	if m.activeCategory == categoryAll {
		return m.articles
	}
	filtered := make([]cms.ArticleSummary, 0, len(m.articles))
	for _, article := range m.articles {
		if article.Category == m.activeCategory {
			filtered = append(filtered, article)
		}
	}
	return filtered
}

func (m *model) cycleCategory(delta int) {
	names := make([]string, 0, len(m.categories)+1)
	names = append(names, categoryAll)
	for _, category := range m.categories {
		names = append(names, category.Name)
	}
	idx := 0
	for i, name := range names {
		if name == m.activeCategory {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(names)) % len(names)
	m.activeCategory = names[idx]
	m.listCursor = 0
}

func (m *model) moveListCursor(delta int) {
	m.listCursor += delta
	m.clampListCursor()
}

func (m *model) clampListCursor() {
	limit := len(m.visibleArticles()) - 1
	if m.listCursor > limit {
		m.listCursor = limit
	}
	if m.listCursor < 0 {
		m.listCursor = 0
	}
}

// rebuildCachedSet marks which listed articles have cached content, feeding
// the offline badges on the welcome list.
func (m *model) rebuildCachedSet() {
	if m.config.Store == nil {
		return
	}
	set := map[string]bool{}
	for _, article := range m.articles {
		if _, ok := m.config.Store.Get(cache.ArticleKey(article.ID)); ok {
			set[article.ID] = true
		}
	}
	m.cachedSet = set
}

func (m *model) articleTitle() string {
	if state := m.pager.State(); state.Page.Title != "" {
		return state.Page.Title
	}
	id := m.pager.ArticleID()
	if id == "" {
		id = m.coordinator.ArticleID()
	}
	for _, article := range m.articles {
		if article.ID == id {
			return article.Title
		}
	}
	return id
}

func (m *model) markContentDirty() {
	m.contentDirty = true
}

func (m *model) refreshContentIfDirty() {
	if m.contentDirty {
		m.refreshContent()
	}
}

func (m *model) refreshContent() {
	m.contentDirty = false
	prevYOffset := m.viewport.YOffset
	if m.pager.ArticleID() == "" {
		m.viewport.SetContent("")
		m.blockLines = map[string]int{}
		m.contentLineCount = 0
		return
	}
	view := m.buildArticleContent()
	m.blockLines = view.blockLines
	m.contentLineCount = view.lines
	m.viewport.SetContent(view.content)

	targetYOffset := prevYOffset
	if m.pendingFocusBlock != "" {
		// Resume targets stay pending until their block is loaded; later
		// pages may still bring it in.
		if line, ok := view.blockLines[m.pendingFocusBlock]; ok {
			targetYOffset = line
			m.pendingFocusBlock = ""
		}
	}
	m.viewport.SetYOffset(m.clampYOffset(targetYOffset))
}

func (m *model) clampYOffset(offset int) int {
	maxOffset := m.contentLineCount - m.viewport.Height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		return maxOffset
	}
	if offset < 0 {
		return 0
	}
	return offset
}

func friendlyFetchError(action string, err error) string {
	if cms.IsTimeout(err) {
		return fmt.Sprintf("Timed out trying to %s. Press r to retry.", action)
	}
	return fmt.Sprintf("Could not %s: %v. Press r to retry.", action, err)
}

var (
	titleStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	categoryStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	activeCategoryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("110")).Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	badgeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#a3be8c")).Italic(true)
	codeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4")).Background(lipgloss.Color("#1f1d2e"))

	heroAccentColor        = lipgloss.Color("#7fb4ca")
	heroInkColor           = lipgloss.Color("#16161d")
	heroTextColor          = lipgloss.Color("#dcd7ba")
	heroSecondaryTextColor = lipgloss.Color("#a3d4d5")

	heroTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	taglineStyle   = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)

	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).
			Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).
			Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	currentLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
	overlayBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	helpBoxStyle = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#7f5af0")).Padding(1, 2)

	logoFaceStyle      = lipgloss.NewStyle().Bold(true).Foreground(heroTextColor).Background(heroInkColor)
	logoShadowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#0a0a10"))
	logoContainerStyle = lipgloss.NewStyle().Padding(0, 1)
	logoArtLines       = []string{
		"███████╗  ██╗  ███╗   ██╗  ███████╗",
		"╚══███╔╝  ██║  ████╗  ██║  ██╔════╝",
		"  ███╔╝   ██║  ██╔██╗ ██║  █████╗  ",
		" ███╔╝    ██║  ██║╚██╗██║  ██╔══╝  ",
		"███████╗  ██║  ██║ ╚████║  ███████╗",
		"╚══════╝  ╚═╝  ╚═╝  ╚═══╝  ╚══════╝",
	}
)
