package tui

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/skoglund/zine/internal/cms"
)

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	viewportWidth  int
	viewportHeight int
	listHeight     int
}

func newPageLayout() pageLayout {
	return pageLayout{
		viewportWidth:  80,
		viewportHeight: 20,
		listHeight:     12,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.viewportWidth = innerWidth
	// Title bar, category line, and footer frame the scrolling body.
	const chrome = 6
	usable := height - chrome
	if usable < 8 {
		usable = 8
	}
	l.viewportHeight = usable
	l.listHeight = usable
}

type displayView struct {
	content    string
	blockLines map[string]int
	lines      int
}

type contentBuilder struct {
	builder strings.Builder
	lines   int
}

func (cb *contentBuilder) WriteString(s string) {
	cb.builder.WriteString(s)
	cb.lines += strings.Count(s, "\n")
}

func (cb *contentBuilder) WriteRune(r rune) {
	cb.builder.WriteRune(r)
	if r == '\n' {
		cb.lines++
	}
}

func (cb *contentBuilder) String() string {
	return cb.builder.String()
}

func (cb *contentBuilder) Line() int {
	return cb.lines
}

// buildArticleContent renders the loaded blocks into the viewport body and
// records the content line each block starts on, so scroll positions can be
// translated back to block IDs.
func (m *model) buildArticleContent() displayView {
	cb := &contentBuilder{}
	blockLines := map[string]int{}
	wrap := m.wrapWidth(viewportHorizontalPadding)

	state := m.pager.State()
	for idx, block := range state.Blocks {
		if idx > 0 {
			cb.WriteRune('\n')
		}
		blockLines[block.ID] = cb.Line()
		m.writeBlock(cb, block, wrap)
	}
	if len(state.Blocks) == 0 {
		cb.WriteString(helperStyle.Render("This article has no content yet."))
		cb.WriteRune('\n')
	}

	return displayView{content: cb.String(), blockLines: blockLines, lines: cb.Line()}
}

func (m *model) writeBlock(cb *contentBuilder, block cms.Block, wrap int) {
	switch block.Type {
	case cms.BlockHeading:
		cb.WriteString(sectionHeaderStyle.Render(headingPrefix(block.Level) + block.Text))
		cb.WriteRune('\n')
	case cms.BlockQuote:
		quoteWrap := wrap - 2
		if quoteWrap < 20 {
			quoteWrap = 20
		}
		cb.WriteString(indentMultiline(wordwrap.String(block.Text, quoteWrap), "│ "))
		cb.WriteRune('\n')
	case cms.BlockCode:
		if block.Language != "" {
			cb.WriteString(helperStyle.Render("(" + block.Language + ")"))
			cb.WriteRune('\n')
		}
		cb.WriteString(codeStyle.Render(indentMultiline(block.Text, "  ")))
		cb.WriteRune('\n')
	case cms.BlockList:
		itemWrap := wrap - 3
		if itemWrap < 20 {
			itemWrap = 20
		}
		for _, item := range block.Items {
			cb.WriteString(" • ")
			cb.WriteString(wordwrap.String(item, itemWrap))
			cb.WriteRune('\n')
		}
	case cms.BlockImage:
		caption := block.Caption
		if caption == "" {
			caption = block.URL
		}
		cb.WriteString(helperStyle.Render("[image] " + caption))
		cb.WriteRune('\n')
	case cms.BlockFile:
		label := block.Caption
		if label == "" {
			label = block.URL
		}
		cb.WriteString(helperStyle.Render("[file] " + label + " (press o to preview)"))
		cb.WriteRune('\n')
	case cms.BlockDivider:
		cb.WriteString(helperStyle.Render(strings.Repeat("─", dividerWidth(wrap))))
		cb.WriteRune('\n')
	default:
		// Paragraphs and any block type this build does not know render as
		// plain prose, so newer CMS block types degrade gracefully.
		cb.WriteString(wordwrap.String(block.Text, wrap))
		cb.WriteRune('\n')
	}
}

func headingPrefix(level int) string {
	if level < 1 {
		level = 1
	}
	if level > 3 {
		level = 3
	}
	return strings.Repeat("#", level) + " "
}

func dividerWidth(wrap int) int {
	if wrap > 40 {
		return 40
	}
	if wrap < 8 {
		return 8
	}
	return wrap
}

func indentMultiline(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func (m *model) wrapWidth(padding int) int {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	if padding < 0 {
		padding = 0
	}
	available := width - padding
	if available < 20 {
		available = 20
	}
	return available
}

// listWindow clips a list to the given number of rows, keeping the cursor
// roughly centered.
func listWindow(cursor, total, height int) (int, int) {
	if height < 3 {
		height = 3
	}
	if total <= height {
		return 0, total
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	end := start + height
	if end > total {
		end = total
		start = end - height
	}
	return start, end
}

// blockAtLine maps a content line back to the block covering it: the block
// with the greatest start line at or above the offset.
func blockAtLine(blockLines map[string]int, line int) string {
	bestID := ""
	bestLine := -1
	for id, start := range blockLines {
		if start <= line && start > bestLine {
			bestID = id
			bestLine = start
		}
	}
	return bestID
}

func previewText(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
