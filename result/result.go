package result

import "time"

// Kind classifies a discovered resource by the tag it was found on.
type Kind int

const (
	KindLink   Kind = iota // <a href>
	KindScript             // <script src>
)

// String returns the label used in crawl output.
func (k Kind) String() string {
	switch k {
	case KindLink:
		return "link"
	case KindScript:
		return "script"
	default:
		return "unknown"
	}
}

// Resource is a single absolute URL discovered on a crawled page.
type Resource struct {
	URL  string `json:"url"`
	Kind Kind   `json:"kind"`
}

// MarshalText lets encoders write Kind as its label.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Stats contains aggregate counters for a crawl run.
type Stats struct {
	PagesFetched int           // Pages dequeued and processed (including failed fetches)
	Skipped      int           // Frontier entries discarded for depth or revisit
	Links        int           // Link resources emitted
	Scripts      int           // Script resources emitted
	FetchErrors  int           // Pages whose fetch failed
	Duration     time.Duration // Wall time of the run

	ErrorCategories map[ErrorCategory]int // Fetch errors by category
}

// RecordError counts a fetch error under its category.
func (s *Stats) RecordError(cat ErrorCategory) {
	if s.ErrorCategories == nil {
		s.ErrorCategories = make(map[ErrorCategory]int)
	}
	s.FetchErrors++
	s.ErrorCategories[cat]++
}

// Resources returns the total number of emitted resources.
func (s Stats) Resources() int {
	return s.Links + s.Scripts
}
