// Package crawler provides a sequential, depth-bounded web resource crawler.
// It traverses pages breadth-first from a set of seeds, emitting every link
// and script reference that passes the configured domain policy.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/lukemcguire/plowcrawl/config"
	"github.com/lukemcguire/plowcrawl/result"
)

// Crawler runs a single breadth-first traversal. The frontier and visited
// set belong to Run and are never shared.
type Crawler struct {
	cfg        config.Crawl
	fetcher    Fetcher
	out        result.Writer
	errOut     io.Writer
	logger     zerolog.Logger
	progressCh chan<- CrawlEvent
	sleep      func(ctx context.Context, d time.Duration) error
}

// Option customizes a Crawler.
type Option func(*Crawler)

// WithFetcher replaces the HTTP fetcher built from the crawl configuration.
func WithFetcher(f Fetcher) Option {
	return func(c *Crawler) { c.fetcher = f }
}

// WithOutput sets where discovered resources are written.
func WithOutput(w result.Writer) Option {
	return func(c *Crawler) { c.out = w }
}

// WithErrorOutput sets where fetch failures are reported.
func WithErrorOutput(w io.Writer) Option {
	return func(c *Crawler) { c.errOut = w }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Crawler) { c.logger = l }
}

// WithProgress enables a progress event after every processed page.
func WithProgress(ch chan<- CrawlEvent) Option {
	return func(c *Crawler) { c.progressCh = ch }
}

// WithSleep replaces the delay between pages.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Crawler) { c.sleep = sleep }
}

// New creates a Crawler for cfg. Without options it writes text output to
// stdout, reports fetch failures to stderr and logs nothing.
func New(cfg config.Crawl, opts ...Option) *Crawler {
	c := &Crawler{
		cfg:    cfg,
		errOut: os.Stderr,
		logger: zerolog.Nop(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.fetcher == nil {
		c.fetcher = NewHTTPFetcher(FetcherOptions{
			Proxy:        cfg.Proxy,
			CertFile:     cfg.CertFile,
			UserAgent:    cfg.UserAgent,
			MaxBodyBytes: cfg.MaxBodyBytes,
		})
	}
	if c.out == nil {
		c.out = result.NewWriter(cfg.Format, os.Stdout)
	}
	return c
}

// Run crawls from the configured seeds until the frontier is empty or ctx
// is cancelled. It returns the counters accumulated so far in both cases.
func (c *Crawler) Run(ctx context.Context) (stats *result.Stats, err error) {
	start := time.Now()
	stats = &result.Stats{}
	defer func() { stats.Duration = time.Since(start) }()

	visited, err := c.newVisitedSet()
	if err != nil {
		return stats, err
	}
	defer func() {
		if closeErr := visited.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	extractor := NewExtractor(c.fetcher, c.cfg.Policy())
	extractor.logger = c.logger
	frontier := NewFrontier()
	for _, seed := range c.cfg.Seeds {
		frontier.Push(Entry{URL: seed, Depth: 1})
	}

	for {
		if ctx.Err() != nil {
			return stats, fmt.Errorf("crawl interrupted: %w", ctx.Err())
		}

		entry, ok := frontier.Pop()
		if !ok {
			return stats, nil
		}

		if entry.Depth > c.cfg.MaxDepth || visited.IsVisited(entry.URL) {
			stats.Skipped++
			continue
		}

		visited.Visit(entry.URL)
		stats.PagesFetched++
		c.logger.Debug().Str("url", entry.URL).Int("depth", entry.Depth).Msg("processing page")

		evt := CrawlEvent{URL: entry.URL, Depth: entry.Depth}

		resources, extractErr := extractor.Extract(ctx, entry.URL)
		if extractErr != nil {
			if ctx.Err() != nil {
				return stats, fmt.Errorf("crawl interrupted: %w", ctx.Err())
			}
			category, message := c.reportFetchError(entry.URL, extractErr)
			stats.RecordError(category)
			evt.Error = message
			evt.ErrorCategory = category
		}

		for _, res := range resources {
			if writeErr := c.out.Write(res); writeErr != nil {
				return stats, fmt.Errorf("write resource: %w", writeErr)
			}
			switch res.Kind {
			case result.KindLink:
				stats.Links++
				if !visited.IsVisited(res.URL) {
					frontier.Push(Entry{URL: res.URL, Depth: entry.Depth + 1})
				}
			case result.KindScript:
				stats.Scripts++
			}
		}

		evt.Resources = len(resources)
		evt.Fetched = stats.PagesFetched
		evt.Emitted = stats.Resources()
		evt.Errors = stats.FetchErrors
		c.emit(ctx, evt)

		if sleepErr := c.sleep(ctx, c.cfg.Delay); sleepErr != nil {
			return stats, fmt.Errorf("crawl interrupted: %w", sleepErr)
		}
	}
}

func (c *Crawler) newVisitedSet() (VisitedSet, error) {
	if !c.cfg.LowMemory {
		return NewVisitedSet(), nil
	}
	tracker, err := NewVisitedTracker()
	if err != nil {
		return nil, fmt.Errorf("create visited tracker: %w", err)
	}
	return tracker, nil
}

// reportFetchError writes the user-facing failure line and returns the
// category and message of the underlying cause.
func (c *Crawler) reportFetchError(pageURL string, err error) (result.ErrorCategory, string) {
	cause := err
	var fe *FetchError
	if errors.As(err, &fe) {
		cause = fe.Err
	}

	category := result.ClassifyError(cause)
	result.PrintFetchError(c.errOut, pageURL, cause)
	c.logger.Debug().
		Str("url", pageURL).
		Str("category", string(category)).
		Err(cause).
		Msg("fetch failed")
	return category, cause.Error()
}

func (c *Crawler) emit(ctx context.Context, evt CrawlEvent) {
	if c.progressCh == nil {
		return
	}
	select {
	case c.progressCh <- evt:
	case <-ctx.Done():
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
