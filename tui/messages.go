package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lukemcguire/plowcrawl/crawler"
	"github.com/lukemcguire/plowcrawl/result"
)

// CrawlProgressMsg reports that one more page has been processed.
type CrawlProgressMsg struct {
	URL     string
	Fetched int
	Emitted int
	Errors  int
	Error   string // Fetch failure for URL, if any
}

// CrawlDoneMsg signals the crawl has returned.
type CrawlDoneMsg struct {
	Stats *result.Stats
	Err   error
}

// progressClosedMsg signals that every progress event has been read.
type progressClosedMsg struct{}

// waitForProgress returns a tea.Cmd that reads one event from the progress
// channel.
func waitForProgress(ch <-chan crawler.CrawlEvent) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return progressClosedMsg{}
		}
		return CrawlProgressMsg{
			URL:     evt.URL,
			Fetched: evt.Fetched,
			Emitted: evt.Emitted,
			Errors:  evt.Errors,
			Error:   evt.Error,
		}
	}
}
