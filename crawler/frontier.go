package crawler

import "github.com/dmwangi/pubdex/pubstore"

// frontier is the BFS work queue for a single crawl pass: a FIFO of
// URLs to visit plus the set of canonical URLs already visited. It is
// transient state, never persisted.
type frontier struct {
	queue   []string
	visited map[string]struct{}
}

func newFrontier() *frontier {
	return &frontier{visited: make(map[string]struct{})}
}

// enqueue appends a URL unless its canonical form has already been
// visited.
func (f *frontier) enqueue(rawURL string) {
	if _, seen := f.visited[pubstore.CanonicalURL(rawURL)]; seen {
		return
	}

	f.queue = append(f.queue, rawURL)
}

// next pops the oldest queued URL. Callers must check hasNext first.
func (f *frontier) next() string {
	rawURL := f.queue[0]
	f.queue = f.queue[1:]

	return rawURL
}

func (f *frontier) hasNext() bool {
	return len(f.queue) > 0
}

// visit marks a canonical URL as visited, reporting false when it was
// already seen.
func (f *frontier) visit(canonical string) bool {
	if _, seen := f.visited[canonical]; seen {
		return false
	}

	f.visited[canonical] = struct{}{}

	return true
}

// numVisited is the count of canonical URLs consumed from the page
// budget so far.
func (f *frontier) numVisited() int {
	return len(f.visited)
}
