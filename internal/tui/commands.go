package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/skoglund/zine/internal/cache"
	"github.com/skoglund/zine/internal/cms"
	"github.com/skoglund/zine/internal/pager"
)

// loadLibraryJob resolves the article list and category index, serving both
// from cache when present. With bypass set the cache is skipped and the fresh
// responses overwrite it.
func loadLibraryJob(api *cms.Client, store *cache.Store, bypass bool) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		var articles []cms.ArticleSummary
		var categories []cms.Category
		if !bypass {
			haveArticles := store.GetJSON(cache.KeyArticles, &articles)
			haveCategories := store.GetJSON(cache.KeyCategories, &categories)
			if haveArticles && haveCategories {
				return libraryResultMsg{articles: articles, categories: categories, fromCache: true}, nil
			}
			articles = nil
			categories = nil
		}

		ctx, cancel := context.WithTimeout(parent, libraryTimeout)
		defer cancel()

		group, ctx := errgroup.WithContext(ctx)
		group.Go(func() error {
			fetched, err := api.Articles(ctx)
			if err != nil {
				return err
			}
			articles = fetched
			return nil
		})
		group.Go(func() error {
			fetched, err := api.Categories(ctx)
			if err != nil {
				return err
			}
			categories = fetched
			return nil
		})
		if err := group.Wait(); err != nil {
			return libraryResultMsg{err: err}, err
		}

		store.Set(cache.KeyArticles, articles, cache.ClassArticleList)
		store.Set(cache.KeyCategories, categories, cache.ClassCategories)
		return libraryResultMsg{articles: articles, categories: categories}, nil
	}
}

// fetchPageJob loads the block page described by start. The result carries
// the start descriptor back so the pager can tell live responses from stale
// ones.
func fetchPageJob(api *cms.Client, start pager.FetchStart, timeout time.Duration) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		page, err := api.ArticleBlocks(ctx, start.ArticleID, start.Cursor, start.PageSize)
		return pageResultMsg{result: pager.FetchResult{Start: start, Page: page, Err: err}}, err
	}
}

// warmCandidates picks up to limit listed articles that have no cached
// content yet.
func warmCandidates(store *cache.Store, articles []cms.ArticleSummary, limit int) []string {
	pending := make([]string, 0, limit)
	for _, article := range articles {
		if len(pending) == limit {
			break
		}
		if _, ok := store.Get(cache.ArticleKey(article.ID)); ok {
			continue
		}
		pending = append(pending, article.ID)
	}
	return pending
}

// warmUpJob prefetches first pages for listed articles that have no cached
// content yet, so opening them later works offline. Warming is best effort:
// individual fetch failures skip the article without failing the job.
func warmUpJob(api *cms.Client, store *cache.Store, pageSize int, articles []cms.ArticleSummary, limit int) jobRunner {
	pending := warmCandidates(store, articles, limit)
	return func(parent context.Context) (tea.Msg, error) {
		if len(pending) == 0 {
			return warmResultMsg{}, nil
		}
		ctx, cancel := context.WithTimeout(parent, libraryTimeout)
		defer cancel()

		group, ctx := errgroup.WithContext(ctx)
		group.SetLimit(3)
		warmed := make([]bool, len(pending))
		for i, id := range pending {
			i, id := i, id
			group.Go(func() error {
				page, err := api.ArticleBlocks(ctx, id, "", pageSize)
				if err != nil {
					return nil
				}
				store.Set(cache.ArticleKey(id), pager.ContentState{
					Page:          page.Page,
					Blocks:        page.Blocks,
					HasMore:       page.HasMore,
					NextCursor:    page.NextCursor,
					IsFullyLoaded: !page.HasMore,
				}, cache.ClassArticleContent)
				warmed[i] = true
				return nil
			})
		}
		_ = group.Wait()

		count := 0
		for _, ok := range warmed {
			if ok {
				count++
			}
		}
		return warmResultMsg{warmed: count}, nil
	}
}

// attachmentTextJob extracts the text of a file block's attachment for the
// inline preview overlay.
func attachmentTextJob(attachments *cms.AttachmentStore, articleID, blockID, fileURL string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, attachmentTimeout)
		defer cancel()
		text, err := attachments.Text(ctx, fileURL)
		return attachmentResultMsg{articleID: articleID, blockID: blockID, text: text, err: err}, err
	}
}

// retryCmd schedules the single follow-up fetch after a fully duplicated
// page. The epoch and article guard drop the tick if the reader has moved on
// by the time it fires.
func retryCmd(delay time.Duration, epoch uint64, articleID string) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return retryTickMsg{epoch: epoch, articleID: articleID}
	})
}

func watchdogCmd() tea.Cmd {
	return tea.Tick(watchdogInterval, func(t time.Time) tea.Msg {
		return watchdogTickMsg(t)
	})
}
