package result

import (
	"fmt"
	"io"
)

// FetchErrorLine formats the report for a page that could not be retrieved.
func FetchErrorLine(pageURL, message string) string {
	return fmt.Sprintf("Exception: %s retrieving %s.", message, pageURL)
}

// PrintFetchError reports a page that could not be retrieved.
func PrintFetchError(w io.Writer, pageURL string, err error) {
	_, _ = fmt.Fprintln(w, FetchErrorLine(pageURL, err.Error()))
}

// PrintSummary writes plain crawl counters to w.
func PrintSummary(w io.Writer, stats Stats) {
	writef := func(format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

	writef("Fetched %d pages, skipped %d entries\n", stats.PagesFetched, stats.Skipped)
	writef("Found %d resources (%d links, %d scripts)\n", stats.Resources(), stats.Links, stats.Scripts)
	if stats.FetchErrors > 0 {
		writef("%d pages could not be retrieved\n", stats.FetchErrors)
	}
}
