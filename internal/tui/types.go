package tui

import "time"

const loadingTypeArticle = "article"

const welcomeTagline = "Your blog, one keystroke away."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4

	// Scroll-driven load checks are throttled; the watchdog tick catches
	// whatever the throttle swallows.
	proximityThrottle = 250 * time.Millisecond
	watchdogInterval  = time.Second

	libraryTimeout    = 20 * time.Second
	attachmentTimeout = 30 * time.Second
)

// categoryAll is the zero filter: every article shows.
const categoryAll = ""

type keyHint struct {
	Key         string
	Description string
}
