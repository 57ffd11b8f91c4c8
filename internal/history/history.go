package history

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/skoglund/zine/internal/cache"
)

const defaultLimit = 20

// ViewedArticle is one entry in the recently-read list, most recent first.
type ViewedArticle struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category,omitempty"`
	ViewedAt    time.Time `json:"viewedAt"`
	LastBlockID string    `json:"lastBlockId,omitempty"`
}

// Recorder tracks which articles the reader opened and how far they got,
// persisted through the cache store under its long-lived recently-viewed
// class. Operations never fail: a broken cache shows up as an empty list.
type Recorder struct {
	store  *cache.Store
	limit  int
	clock  func() time.Time
	logger zerolog.Logger
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLimit caps how many articles the list retains.
func WithLimit(limit int) Option {
	return func(r *Recorder) {
		if limit > 0 {
			r.limit = limit
		}
	}
}

// WithLogger injects a logger for diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Recorder) { r.logger = logger }
}

func withClock(clock func() time.Time) Option {
	return func(r *Recorder) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// New creates a recorder backed by store.
func New(store *cache.Store, options ...Option) *Recorder {
	recorder := &Recorder{
		store:  store,
		limit:  defaultLimit,
		clock:  time.Now,
		logger: zerolog.Nop(),
	}
	for _, option := range options {
		option(recorder)
	}
	return recorder
}

// Touch records that the reader opened the article, moving it to the front
// of the list. A resume position recorded earlier for the same article is
// carried over.
func (r *Recorder) Touch(id, title, category string) {
	if id == "" {
		return
	}
	entries := r.load()
	entry := ViewedArticle{ID: id, Title: title, Category: category, ViewedAt: r.clock()}
	kept := make([]ViewedArticle, 0, len(entries)+1)
	kept = append(kept, entry)
	for _, existing := range entries {
		if existing.ID == id {
			kept[0].LastBlockID = existing.LastBlockID
			continue
		}
		kept = append(kept, existing)
	}
	if len(kept) > r.limit {
		kept = kept[:r.limit]
	}
	r.save(kept)
}

// MarkBlock records the last block the reader had on screen, so the article
// can reopen at that position. Unknown articles are ignored.
func (r *Recorder) MarkBlock(id, blockID string) {
	if id == "" || blockID == "" {
		return
	}
	entries := r.load()
	for i := range entries {
		if entries[i].ID != id {
			continue
		}
		if entries[i].LastBlockID == blockID {
			return
		}
		entries[i].LastBlockID = blockID
		r.save(entries)
		return
	}
	r.logger.Debug().Str("article_id", id).Msg("resume position for an article not in history")
}

// Recent returns the list, most recent first.
func (r *Recorder) Recent() []ViewedArticle {
	return r.load()
}

// Last returns the most recently read article, if any.
func (r *Recorder) Last() (ViewedArticle, bool) {
	entries := r.load()
	if len(entries) == 0 {
		return ViewedArticle{}, false
	}
	return entries[0], true
}

func (r *Recorder) load() []ViewedArticle {
	var entries []ViewedArticle
	r.store.GetJSON(cache.KeyRecent, &entries)
	return entries
}

func (r *Recorder) save(entries []ViewedArticle) {
	r.store.Set(cache.KeyRecent, entries, cache.ClassRecentlyViewed)
}
