package crawler

import (
	"errors"
	"fmt"
	"os"

	bloom "github.com/bits-and-blooms/bloom/v3"
	"github.com/edsrzf/mmap-go"
)

// VisitedSet records URLs that have been dequeued and processed. It only
// grows during a run and is owned by a single Crawler.
type VisitedSet interface {
	Visit(url string)
	IsVisited(url string) bool
	Close() error
}

// memoryVisited is an exact, map-backed VisitedSet.
type memoryVisited struct {
	seen map[string]struct{}
}

// NewVisitedSet returns an exact in-memory VisitedSet.
func NewVisitedSet() VisitedSet {
	return &memoryVisited{seen: make(map[string]struct{})}
}

func (m *memoryVisited) Visit(url string) {
	m.seen[url] = struct{}{}
}

func (m *memoryVisited) IsVisited(url string) bool {
	_, ok := m.seen[url]
	return ok
}

func (m *memoryVisited) Close() error {
	return nil
}

const (
	// trackerCapacity and trackerFalsePositive size the bloom filter for
	// 100,000 URLs at a 0.1% false positive rate.
	trackerCapacity      = 100000
	trackerFalsePositive = 0.001
	trackerSyncEvery     = 1000
)

// VisitedTracker implements a disk-backed bloom filter for URL deduplication.
// It uses a memory-mapped file for constant memory footprint regardless of
// crawl size.
//
// A bloom filter never reports a visited URL as new, so no page is fetched
// twice. It may report a small fraction of new URLs as visited, in which
// case they are skipped.
type VisitedTracker struct {
	filter    *bloom.BloomFilter
	file      *os.File
	mmap      mmap.MMap
	tmpPath   string
	count     uint64 // URLs added since last sync
	syncEvery uint64
	lastErr   error // Last error from sync operations
}

// NewVisitedTracker creates a new disk-backed visited URL tracker in a
// temporary file that Close removes.
func NewVisitedTracker() (*VisitedTracker, error) {
	filter := bloom.NewWithEstimates(trackerCapacity, trackerFalsePositive)

	tmpFile, err := os.CreateTemp(os.TempDir(), "plowcrawl-visited-*.bloom")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	cleanup := func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}

	// Cap is in bits, so the file is comfortably larger than the
	// marshaled filter plus its header.
	filterSize := filter.Cap()
	if err := tmpFile.Truncate(int64(filterSize)); err != nil {
		cleanup()
		return nil, fmt.Errorf("truncate temp file: %w", err)
	}

	mapped, err := mmap.MapRegion(tmpFile, int(filterSize), mmap.RDWR, 0, 0)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("mmap temp file: %w", err)
	}

	data, err := filter.MarshalBinary()
	if err != nil {
		_ = mapped.Unmap()
		cleanup()
		return nil, fmt.Errorf("marshal bloom filter: %w", err)
	}
	if len(data) > len(mapped) {
		_ = mapped.Unmap()
		cleanup()
		return nil, fmt.Errorf("filter data (%d) exceeds mmap size (%d)", len(data), len(mapped))
	}
	copy(mapped, data)

	return &VisitedTracker{
		filter:    filter,
		file:      tmpFile,
		mmap:      mapped,
		tmpPath:   tmpPath,
		syncEvery: trackerSyncEvery,
	}, nil
}

// Visit marks a URL as visited.
func (v *VisitedTracker) Visit(url string) {
	v.filter.AddString(url)
	v.count++

	if v.count >= v.syncEvery {
		// Periodic sync is best-effort; the error surfaces from Close.
		if err := v.sync(); err != nil {
			v.lastErr = err
		}
	}
}

// IsVisited checks if a URL has been visited.
func (v *VisitedTracker) IsVisited(url string) bool {
	return v.filter.TestString(url)
}

// sync persists the bloom filter to the mapped file.
func (v *VisitedTracker) sync() error {
	data, err := v.filter.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal bloom filter: %w", err)
	}

	if len(data) <= len(v.mmap) {
		copy(v.mmap, data)
	}

	if err := v.mmap.Flush(); err != nil {
		return fmt.Errorf("flush mmap: %w", err)
	}
	v.count = 0
	return nil
}

// Close syncs any pending data and removes the backing file. Calling Close
// more than once is safe.
func (v *VisitedTracker) Close() error {
	var errs []error

	if v.lastErr != nil {
		errs = append(errs, v.lastErr)
		v.lastErr = nil
	}

	if v.mmap != nil {
		if v.count > 0 {
			if err := v.sync(); err != nil {
				errs = append(errs, err)
			}
		}
		if err := v.mmap.Unmap(); err != nil {
			errs = append(errs, fmt.Errorf("unmap: %w", err))
		}
		v.mmap = nil
	}

	if v.file != nil {
		if err := v.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close file: %w", err))
		}
		v.file = nil
	}

	if v.tmpPath != "" {
		if err := os.Remove(v.tmpPath); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("remove temp file: %w", err))
		}
		v.tmpPath = ""
	}

	if len(errs) > 0 {
		return fmt.Errorf("close visited tracker: %w", errors.Join(errs...))
	}
	return nil
}
