package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/skoglund/zine/internal/cache"
	"github.com/skoglund/zine/internal/cms"
	"github.com/skoglund/zine/internal/config"
	"github.com/skoglund/zine/internal/history"
	"github.com/skoglund/zine/internal/logging"
	"github.com/skoglund/zine/internal/tui"
)

func main() {
	configFile := flag.String("config", "", "path to a config file (default: ./zine.yml, then the user config dir)")
	envFile := flag.String("env-file", "", "path to a .env file (default: ./.env when present)")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	warmArticles := flag.Int("warm", 3, "articles to prefetch after a library refresh (0 disables)")
	flag.Parse()

	var configOpts []config.Option
	if *configFile != "" {
		configOpts = append(configOpts, config.WithFile(*configFile))
	}
	if *envFile != "" {
		configOpts = append(configOpts, config.WithEnvFile(*envFile))
	}
	cfg, err := config.Load(configOpts...)
	if err != nil {
		fmt.Println("configuration error:", err)
		os.Exit(1)
	}

	medium, err := cache.NewDirMedium(cfg.Cache.Dir)
	if err != nil {
		fmt.Println("cache unavailable:", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so diagnostics go to a rotated file next to
	// the cache entries.
	logPath := cfg.Log.File
	if logPath == "" {
		logPath = filepath.Join(filepath.Dir(medium.Dir()), "zine.log")
	}
	logSink := logging.FileWriter(logPath)
	defer logSink.Close()
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Output: logSink})
	if err != nil {
		fmt.Println("logging error:", err)
		os.Exit(1)
	}

	store := cache.New(medium,
		cache.WithLogger(logger),
		cache.WithTTL(cache.ClassArticleList, cfg.Cache.ArticleListTTL),
		cache.WithTTL(cache.ClassArticleContent, cfg.Cache.ArticleContentTTL),
		cache.WithTTL(cache.ClassCategories, cfg.Cache.CategoriesTTL),
		cache.WithTTL(cache.ClassRecentlyViewed, cfg.Cache.RecentlyViewedTTL),
	)
	if expired, corrupt := store.SweepExpired(); expired+corrupt > 0 {
		logger.Info().Int("expired", expired).Int("corrupt", corrupt).Msg("cache swept at startup")
	}

	api, err := cms.NewClient(cfg.API.BaseURL,
		cms.WithLogger(logger),
		cms.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		cms.WithMaxAttempts(cfg.API.MaxAttempts),
		cms.WithBlockPageSize(cfg.Content.BlockPageSize),
		cms.WithListPageSize(cfg.Content.ListPageSize),
	)
	if err != nil {
		fmt.Println("content api error:", err)
		os.Exit(1)
	}

	attachments, err := cms.NewAttachmentStore(cfg.Cache.Dir, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("attachment previews disabled")
		attachments = nil
	}

	opts := []tea.ProgramOption{}
	if !*noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			API:          api,
			Store:        store,
			Attachments:  attachments,
			History:      history.New(store, history.WithLogger(logger)),
			Logger:       logger,
			PageSize:     cfg.Content.BlockPageSize,
			WarmArticles: *warmArticles,
		}),
		opts...,
	)

	if _, err := program.Run(); err != nil {
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}
