/*
searcher package owns the in-memory copy of the index payload used to
answer queries. The payload is an immutable snapshot: queries read
whichever snapshot is currently published, and a finished rebuild
replaces the whole snapshot under a write lock. A query can therefore
never observe a partially-rewritten index.
*/
package searcher

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dmwangi/pubdex/textindexer/bm25"
	"github.com/dmwangi/pubdex/textindexer/index"
)

// Config defines configurations for the searcher handle.
type Config struct {
	// IndexPath is the payload file loaded at construction. A missing
	// file yields an empty, queryable index.
	IndexPath string

	// DisableStemming turns stemming off at query time. It must match
	// the flag the index was built with.
	DisableStemming bool

	// The logger to use. If not defined, an output-discarding logger
	// is used.
	Logger *logrus.Entry
}

// Searcher is an explicit handle to the loaded index, constructed once
// at startup and shared by reference with whatever needs to query it.
type Searcher struct {
	mu          sync.RWMutex
	payload     *index.Payload
	useStemming bool
	logger      *logrus.Entry
}

// New loads the index payload from config.IndexPath and returns a
// ready handle.
func New(config Config) (*Searcher, error) {
	logger := config.Logger
	if logger == nil {
		logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	payload, err := index.LoadPayload(config.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("searcher: load index payload: %w", err)
	}

	logger.WithField("docs", len(payload.Docs)).Info("search index loaded")

	return &Searcher{
		payload:     payload,
		useStemming: !config.DisableStemming,
		logger:      logger,
	}, nil
}

// Snapshot returns the currently published payload. The payload must
// be treated as read-only.
func (s *Searcher) Snapshot() *index.Payload {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.payload
}

// Replace publishes a freshly rebuilt payload. In-flight queries keep
// reading the snapshot they already hold.
func (s *Searcher) Replace(payload *index.Payload) {
	if payload == nil {
		return
	}

	s.mu.Lock()
	s.payload = payload
	s.mu.Unlock()

	s.logger.WithField("docs", len(payload.Docs)).Info("search index replaced")
}

// Search answers a ranked keyword query against the current snapshot,
// using the same stemming setting the index was built with.
func (s *Searcher) Search(query string, topK int) []bm25.Result {
	return bm25.Search(query, s.Snapshot(), topK, s.useStemming)
}
