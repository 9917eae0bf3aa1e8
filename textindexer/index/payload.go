package index

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmwangi/pubdex/pubstore"
)

// Payload bundles everything the query path needs into the single JSON
// document persisted on disk.
type Payload struct {
	Docs       map[string]Document `json:"docs"`
	Index      InvertedIndex       `json:"index"`
	DocLengths DocLengths          `json:"doc_lengths"`
	IDF        IDF                 `json:"idf"`
}

// NewPayload returns an empty payload with all maps allocated.
func NewPayload() *Payload {
	return &Payload{
		Docs:       make(map[string]Document),
		Index:      make(InvertedIndex),
		DocLengths: make(DocLengths),
		IDF:        make(IDF),
	}
}

// BuildPayload rebuilds the full payload from a merged record set.
func BuildPayload(records []pubstore.PublicationRecord, useStemming bool) *Payload {
	docs := BuildDocuments(records)
	invIndex, lengths := BuildInvertedIndex(docs, useStemming)

	return &Payload{
		Docs:       docs,
		Index:      invIndex,
		DocLengths: lengths,
		IDF:        ComputeIDF(invIndex, len(docs)),
	}
}

// Save writes the payload to path as a single JSON document. The write
// is a full atomic rewrite: content is staged to a temporary file and
// renamed into place, so a crash mid-write never leaves a file holding
// part of the new state.
func (p *Payload) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("index: encode payload: %w", err)
	}

	if err := pubstore.WriteAtomic(path, data); err != nil {
		return fmt.Errorf("index: persist payload: %w", err)
	}

	return nil
}

// LoadPayload reads a previously saved payload. A missing file yields
// an empty payload, not an error.
func LoadPayload(path string) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewPayload(), nil
		}

		return nil, fmt.Errorf("index: read payload: %w", err)
	}

	payload := NewPayload()
	if err := json.Unmarshal(data, payload); err != nil {
		return nil, fmt.Errorf("index: decode payload: %w", err)
	}

	return payload, nil
}
