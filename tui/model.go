// Package tui provides the Bubble Tea progress view for plowcrawl and a
// styled summary of a finished crawl.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lukemcguire/plowcrawl/crawler"
	"github.com/lukemcguire/plowcrawl/result"
)

// Model is the Bubble Tea model for the crawl progress view.
type Model struct {
	ctx             context.Context
	cancel          context.CancelFunc
	crawlerInstance *crawler.Crawler
	spinner         spinner.Model
	progressCh      chan crawler.CrawlEvent

	fetched  int
	emitted  int
	errors   int
	current  string
	quitting bool
	done     bool
	drained  bool
	stats    *result.Stats
	err      error
	width    int
}

// NewModel creates a progress model for crawlerInst, which must have been
// built with crawler.WithProgress(progressCh). The model closes progressCh
// once the crawl returns.
func NewModel(ctx context.Context, cancel context.CancelFunc, crawlerInst *crawler.Crawler, progressCh chan crawler.CrawlEvent) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		ctx:             ctx,
		cancel:          cancel,
		crawlerInstance: crawlerInst,
		spinner:         spin,
		progressCh:      progressCh,
	}
}

// Init starts the spinner, crawl, and progress listener concurrently.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startCrawl(), waitForProgress(m.progressCh))
}

// startCrawl returns a tea.Cmd that runs the crawler and sends CrawlDoneMsg.
func (m Model) startCrawl() tea.Cmd {
	return func() tea.Msg {
		stats, err := m.crawlerInstance.Run(m.ctx)
		close(m.progressCh)
		return CrawlDoneMsg{Stats: stats, Err: err}
	}
}

// Update handles messages from the Bubble Tea runtime.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case CrawlProgressMsg:
		m.fetched = msg.Fetched
		m.emitted = msg.Emitted
		m.errors = msg.Errors
		m.current = msg.URL
		next := waitForProgress(m.progressCh)
		if msg.Error != "" {
			// Printed above the spinner so the report survives redraws.
			return m, tea.Sequence(tea.Println(result.FetchErrorLine(msg.URL, msg.Error)), next)
		}
		return m, next

	case progressClosedMsg:
		m.drained = true
		if m.done {
			return m, tea.Quit
		}

	case CrawlDoneMsg:
		m.done = true
		m.stats = msg.Stats
		m.err = msg.Err
		if m.drained {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the current progress line. The final frame is left empty so
// the summary is printed by the caller only when requested.
func (m Model) View() string {
	if m.done || m.quitting {
		return ""
	}
	status := fmt.Sprintf("%s Crawling... fetched %d, found %d", m.spinner.View(), m.fetched, m.emitted)
	if m.errors > 0 {
		status += errorStyle.Render(fmt.Sprintf(", %d failed", m.errors))
	}
	return status + "\n" + dimStyle.Render("  "+truncate(m.current, m.width-2)) + "\n"
}

// Stats returns the counters of the finished crawl, or nil while running.
func (m Model) Stats() *result.Stats {
	return m.stats
}

// Err returns the error the crawl ended with.
func (m Model) Err() error {
	return m.err
}

// truncate shortens s to width runes, leaving s unchanged when width is
// unknown.
func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 3 || len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}
