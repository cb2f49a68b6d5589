package crawler

// Entry is a URL waiting to be crawled together with its distance from the
// seed it was reached from. Seeds have depth 1.
type Entry struct {
	URL   string
	Depth int
}

// compactThreshold is how many popped slots the Frontier tolerates before
// moving the remaining entries to the front of its buffer.
const compactThreshold = 1024

// Frontier is a FIFO queue of entries. It does not deduplicate; the
// Crawler's visited set decides whether a popped entry is processed.
// The zero value is an empty queue ready to use.
type Frontier struct {
	entries []Entry
	head    int
}

// NewFrontier returns an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{}
}

// Push appends entry to the tail of the queue.
func (f *Frontier) Push(entry Entry) {
	f.entries = append(f.entries, entry)
}

// Pop removes and returns the head of the queue. It returns false when the
// queue is empty.
func (f *Frontier) Pop() (Entry, bool) {
	if f.head >= len(f.entries) {
		return Entry{}, false
	}

	entry := f.entries[f.head]
	f.entries[f.head] = Entry{}
	f.head++

	switch {
	case f.head == len(f.entries):
		f.entries = f.entries[:0]
		f.head = 0
	case f.head >= compactThreshold && f.head*2 >= len(f.entries):
		n := copy(f.entries, f.entries[f.head:])
		f.entries = f.entries[:n]
		f.head = 0
	}

	return entry, true
}

// Len returns the number of queued entries.
func (f *Frontier) Len() int {
	return len(f.entries) - f.head
}
