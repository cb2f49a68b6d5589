package crawler_test

import (
	"fmt"
	"testing"

	"github.com/lukemcguire/plowcrawl/crawler"
)

func mustNewTracker(t *testing.T) *crawler.VisitedTracker {
	t.Helper()
	vt, err := crawler.NewVisitedTracker()
	if err != nil {
		t.Fatalf("NewVisitedTracker() error: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := vt.Close(); closeErr != nil {
			t.Errorf("Close() error: %v", closeErr)
		}
	})
	return vt
}

// TestVisitedSets runs the same membership checks against both VisitedSet
// implementations.
func TestVisitedSets(t *testing.T) {
	sets := map[string]func(t *testing.T) crawler.VisitedSet{
		"memory": func(t *testing.T) crawler.VisitedSet { return crawler.NewVisitedSet() },
		"bloom":  func(t *testing.T) crawler.VisitedSet { return mustNewTracker(t) },
	}

	for name, newSet := range sets {
		t.Run(name, func(t *testing.T) {
			vs := newSet(t)
			const url = "https://example.com/page"

			if vs.IsVisited(url) {
				t.Error("IsVisited() returned true for unvisited URL")
			}

			vs.Visit(url)

			if !vs.IsVisited(url) {
				t.Error("IsVisited() returned false for visited URL")
			}
			if vs.IsVisited("https://example.com/other") {
				t.Error("IsVisited() returned true for a different URL")
			}
		})
	}
}

// TestVisitedTrackerNoFalseNegatives verifies that every visited URL is
// reported as visited, across several periodic syncs.
func TestVisitedTrackerNoFalseNegatives(t *testing.T) {
	vt := mustNewTracker(t)

	for i := 0; i < 5000; i++ {
		vt.Visit(fmt.Sprintf("https://example.com/page/%d", i))
	}

	for i := 0; i < 5000; i++ {
		url := fmt.Sprintf("https://example.com/page/%d", i)
		if !vt.IsVisited(url) {
			t.Fatalf("IsVisited(%q) = false after Visit", url)
		}
	}
}

// TestVisitedTrackerDoubleClose verifies that Close can be called twice.
func TestVisitedTrackerDoubleClose(t *testing.T) {
	vt, err := crawler.NewVisitedTracker()
	if err != nil {
		t.Fatalf("NewVisitedTracker() error: %v", err)
	}

	vt.Visit("https://example.com/")

	if closeErr := vt.Close(); closeErr != nil {
		t.Errorf("Close() error: %v", closeErr)
	}
	if closeErr := vt.Close(); closeErr != nil {
		t.Errorf("second Close() error: %v", closeErr)
	}
}
