package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/skoglund/zine/internal/cms"
	"github.com/skoglund/zine/internal/viewstate"
)

func (m *model) View() string {
	if m.quitting {
		return ""
	}
	switch m.coordinator.Mode() {
	case viewstate.ModeWelcome:
		return m.viewWelcome()
	case viewstate.ModeLoading:
		return m.viewLoading()
	case viewstate.ModeArticle:
		return m.viewArticle()
	case viewstate.ModeError:
		return m.viewError()
	default:
		return ""
	}
}

func (m *model) viewWelcome() string {
	parts := []string{m.heroView()}
	if cont := m.continueReadingView(); cont != "" {
		parts = append(parts, cont)
	}
	if bar := m.categoryBarView(); bar != "" {
		parts = append(parts, bar)
	}
	parts = append(parts, m.articleListView())
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		parts = append(parts, helperStyle.Render(m.infoMessage))
	}
	if status := m.statusLine(); status != "" {
		parts = append(parts, status)
	}
	if m.helpVisible {
		if legend := m.keyLegendView(); legend != "" {
			parts = append(parts, legend)
		}
		parts = append(parts, m.helpView())
	}
	parts = append(parts, helperStyle.Render("enter read • c category • r refresh • ? help • q quit"))
	return joinNonEmpty(parts)
}

func (m *model) viewLoading() string {
	var body string
	if title := m.articleTitle(); title != "" {
		body = fmt.Sprintf("%s Loading %s…", m.spinner.View(), heroTitleStyle.Render(title))
	} else {
		body = fmt.Sprintf("%s Loading…", m.spinner.View())
	}
	return joinNonEmpty([]string{
		m.heroView(),
		body,
		helperStyle.Render("esc back • q quit"),
	})
}

func (m *model) viewArticle() string {
	m.refreshContentIfDirty()
	if m.attachmentOpen {
		return m.viewAttachment()
	}
	parts := []string{
		m.articleHeaderView(),
		m.viewport.View(),
		m.articleFooterView(),
	}
	if m.helpVisible {
		if legend := m.keyLegendView(); legend != "" {
			parts = append(parts, legend)
		}
		parts = append(parts, m.helpView())
	}
	return joinNonEmpty(parts)
}

func (m *model) viewError() string {
	message := m.errorMessage
	if message == "" {
		message = "Something went wrong."
	}
	return joinNonEmpty([]string{
		m.heroView(),
		errorStyle.Render(message),
		helperStyle.Render("r retry • esc back • q quit"),
	})
}

func (m *model) viewAttachment() string {
	text := m.attachmentText
	if strings.TrimSpace(text) == "" {
		text = "The attachment contains no extractable text."
	}
	body := wordwrap.String(text, m.wrapWidth(8))
	lines := strings.Split(body, "\n")
	if limit := m.layout.viewportHeight; limit > 0 && len(lines) > limit {
		lines = append(lines[:limit], helperStyle.Render("…"))
	}
	return joinNonEmpty([]string{
		m.articleHeaderView(),
		overlayBoxStyle.Render(joinNonEmpty([]string{
			sectionHeaderStyle.Render("Attachment Preview"),
			strings.Join(lines, "\n"),
		})),
		helperStyle.Render("esc close"),
	})
}

func (m *model) heroView() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		renderLogo(),
		taglineStyle.Render(welcomeTagline),
	)
}

func (m *model) articleHeaderView() string {
	state := m.pager.State()
	title := titleStyle.Render(m.articleTitle())
	var meta []string
	if state.Page.Category != "" {
		meta = append(meta, state.Page.Category)
	}
	if !state.Page.PublishedAt.IsZero() {
		meta = append(meta, state.Page.PublishedAt.Format("January 2, 2006"))
	}
	if len(meta) == 0 {
		return title
	}
	return title + "\n" + helperStyle.Render(strings.Join(meta, " · "))
}

func (m *model) articleFooterView() string {
	state := m.pager.State()
	var parts []string
	switch {
	case m.pager.Loading():
		parts = append(parts, fmt.Sprintf("%s Loading more…", m.spinner.View()))
	case m.attachmentLoading:
		parts = append(parts, fmt.Sprintf("%s Fetching attachment…", m.spinner.View()))
	case state.IsFullyLoaded:
		parts = append(parts, helperStyle.Render("— end —"))
	}
	if m.infoMessage != "" {
		parts = append(parts, helperStyle.Render(m.infoMessage))
	}
	if status := m.statusLine(); status != "" {
		parts = append(parts, status)
	}
	parts = append(parts, helperStyle.Render("j/k scroll • g/G top/bottom • o attachment • r reload • esc back • ? help"))
	return joinNonEmpty(parts)
}

func (m *model) categoryBarView() string {
	if len(m.categories) == 0 {
		return ""
	}
	cells := []string{m.categoryCell("all", categoryAll, len(m.articles))}
	for _, category := range m.categories {
		cells = append(cells, m.categoryCell(category.Name, category.Name, category.Count))
	}
	return strings.Join(cells, " ")
}

func (m *model) categoryCell(label, value string, count int) string {
	text := fmt.Sprintf("%s (%d)", label, count)
	if value == m.activeCategory {
		return activeCategoryStyle.Render(text)
	}
	return categoryStyle.Render(text)
}

// continueReadingView points back at the article the reader left mid-way.
func (m *model) continueReadingView() string {
	if m.config.History == nil {
		return ""
	}
	last, ok := m.config.History.Last()
	if !ok || last.LastBlockID == "" {
		return ""
	}
	title := last.Title
	if title == "" {
		title = last.ID
	}
	return badgeStyle.Render("↺ continue reading") + "  " + title
}

func (m *model) articleListView() string {
	if !m.libraryLoaded {
		if m.libraryLoading {
			return fmt.Sprintf("%s Loading articles…", m.spinner.View())
		}
		return helperStyle.Render("No articles yet.")
	}
	visible := m.visibleArticles()
	if len(visible) == 0 {
		return helperStyle.Render("No articles in this category.")
	}

	start, end := listWindow(m.listCursor, len(visible), m.layout.listHeight)
	var b strings.Builder
	if start > 0 {
		b.WriteString(helperStyle.Render(fmt.Sprintf("  ↑ %d more", start)))
		b.WriteRune('\n')
	}
	for idx := start; idx < end; idx++ {
		article := visible[idx]
		line := m.articleLine(article)
		if idx == m.listCursor {
			b.WriteString(currentLineStyle.Render("▸ " + line))
			b.WriteRune('\n')
			if summary := previewText(article.Summary, 90); summary != "" {
				b.WriteString(helperStyle.Render("    " + summary))
				b.WriteRune('\n')
			}
			continue
		}
		b.WriteString("  " + line)
		b.WriteRune('\n')
	}
	if end < len(visible) {
		b.WriteString(helperStyle.Render(fmt.Sprintf("  ↓ %d more", len(visible)-end)))
		b.WriteRune('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *model) articleLine(article cms.ArticleSummary) string {
	line := article.Title
	var tags []string
	if article.Category != "" && m.activeCategory == categoryAll {
		tags = append(tags, article.Category)
	}
	if m.cachedSet[article.ID] {
		tags = append(tags, "cached")
	}
	if last, ok := m.lastViewed(article.ID); ok && last.LastBlockID != "" {
		tags = append(tags, "resume")
	}
	if len(tags) > 0 {
		line = fmt.Sprintf("%s  %s", line, badgeStyle.Render("["+strings.Join(tags, " · ")+"]"))
	}
	if !article.PublishedAt.IsZero() {
		line = fmt.Sprintf("%s  %s", helperStyle.Render(article.PublishedAt.Format("2006-01-02")), line)
	}
	return line
}

func (m *model) statusLine() string {
	if m.coordinator.Mode() == viewstate.ModeArticle {
		state := m.pager.State()
		percent := 100
		if m.contentLineCount > m.viewport.Height {
			percent = (m.viewport.YOffset + m.viewport.Height) * 100 / m.contentLineCount
			if percent > 100 {
				percent = 100
			}
		}
		cells := []string{
			fmt.Sprintf("%d blocks", len(state.Blocks)),
			fmt.Sprintf("%d%%", percent),
		}
		if !state.IsFullyLoaded {
			cells = append(cells, "more available")
		}
		return statusBarStyle.Render(strings.Join(cells, "  •  "))
	}

	if !m.libraryLoaded {
		return ""
	}
	cells := []string{fmt.Sprintf("%d articles", len(m.visibleArticles()))}
	if m.activeCategory != categoryAll {
		cells = append(cells, m.activeCategory)
	}
	if m.libraryFromCache {
		cells = append(cells, "cached list")
	}
	return statusBarStyle.Render(strings.Join(cells, "  •  "))
}

func (m *model) keyLegendView() string {
	hints := []keyHint{
		{"j/k", "Move / scroll"},
		{"Enter", "Open article"},
		{"c/C", "Cycle category"},
		{"g/G", "Top or bottom"},
		{"d/u", "Half page"},
		{"o", "Preview attachment"},
		{"r", "Refresh / reload"},
		{"Esc", "Back"},
		{"?", "Toggle help"},
	}
	rows := []string{sectionHeaderStyle.Render("Keys")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Render(" " + hint.Description)
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return overlayBoxStyle.Render(strings.Join(rows, "\n"))
}

func (m *model) helpView() string {
	lines := []string{
		sectionHeaderStyle.Render("How Zine Works"),
		helperStyle.Render("• Everything you read is cached; revisits work offline until entries expire."),
		helperStyle.Render("• Long articles load as you scroll. The footer shows when more is on the way."),
		helperStyle.Render("• Reopening an article resumes at the block you left."),
		helperStyle.Render("• r refetches the current screen from the CMS, skipping the cache."),
	}
	return helpBoxStyle.Render(strings.Join(lines, "\n"))
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func renderLogo() string {
	if len(logoArtLines) == 0 {
		return ""
	}
	width := 0
	lineRunes := make([][]rune, len(logoArtLines))
	for i, line := range logoArtLines {
		runes := []rune(line)
		lineRunes[i] = runes
		if len(runes) > width {
			width = len(runes)
		}
	}
	width += 1
	height := len(logoArtLines) + 1

	type cell struct {
		r     rune
		style lipgloss.Style
	}

	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}

	for y, runes := range lineRunes {
		for x, r := range runes {
			if r == ' ' {
				continue
			}
			if y+1 < height && x+1 < width {
				grid[y+1][x+1] = cell{r: r, style: logoShadowStyle}
			}
		}
	}

	for y, runes := range lineRunes {
		for x, r := range runes {
			if r == ' ' {
				continue
			}
			grid[y][x] = cell{r: r, style: logoFaceStyle}
		}
	}

	lines := make([]string, height)
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			if c.r == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		lines[y] = b.String()
	}
	return logoContainerStyle.Render(strings.Join(lines, "\n"))
}
