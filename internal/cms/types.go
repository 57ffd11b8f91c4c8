package cms

import "time"

// Block is an atomic unit of article content with a stable identity. The id
// is what the sync engine dedups on; everything else is presentation payload.
type Block struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Text     string   `json:"text,omitempty"`
	Level    int      `json:"level,omitempty"`
	Language string   `json:"language,omitempty"`
	Items    []string `json:"items,omitempty"`
	URL      string   `json:"url,omitempty"`
	Caption  string   `json:"caption,omitempty"`
}

// Block types produced by the CMS gateway.
const (
	BlockParagraph = "paragraph"
	BlockHeading   = "heading"
	BlockQuote     = "quote"
	BlockCode      = "code"
	BlockList      = "list"
	BlockImage     = "image"
	BlockFile      = "file"
	BlockDivider   = "divider"
)

// PageMeta describes the article wrapper returned alongside each block page.
type PageMeta struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// BlockPage is one page of an article's content stream. NextCursor is opaque;
// an empty string means the server offered no resume point.
type BlockPage struct {
	Page       PageMeta `json:"page"`
	Blocks     []Block  `json:"blocks"`
	HasMore    bool     `json:"hasMore"`
	NextCursor string   `json:"nextCursor"`
}

// ArticleSummary is one row of the blog's article index.
type ArticleSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	Category    string    `json:"category,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Category is one entry of the category index.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count,omitempty"`
}
