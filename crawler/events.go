package crawler

import "github.com/lukemcguire/plowcrawl/result"

// CrawlEvent reports progress after a single page has been processed.
type CrawlEvent struct {
	URL           string
	Depth         int
	Resources     int // Resources emitted from this page
	Fetched       int // Pages processed so far
	Emitted       int // Resources emitted so far
	Errors        int // Fetch errors so far
	Error         string
	ErrorCategory result.ErrorCategory
}
