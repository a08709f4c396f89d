// Package corpus parses the nested raw corpus (period -> songs) into
// per-period batches. Parsing is a pure, single pass over the input stream.
package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"songprep/internal/core/domain"
	"songprep/internal/core/ports"
)

// Reader streams periods out of a serialized corpus: a JSON array of
// {"year": ..., "songs": [...]} entries. It consumes the underlying reader
// once and cannot be rewound.
type Reader struct {
	dec     *json.Decoder
	started bool
	done    bool
	index   int
}

var _ ports.CorpusSource = (*Reader)(nil)

func NewReader(r io.Reader) *Reader {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &Reader{dec: dec}
}

// periodEntry mirrors one corpus entry. Songs is a pointer so a missing
// "songs" collection is distinguishable from an empty one.
type periodEntry struct {
	Year  json.RawMessage   `json:"year"`
	Songs *[]domain.RawSong `json:"songs"`
}

// Next returns the next period in input order, or io.EOF once the corpus is
// exhausted. Structural defects surface as MalformedCorpusError: a JSON
// syntax error ends the stream, while an entry-level validation defect only
// skips that entry.
func (r *Reader) Next() (*domain.Period, error) {
	if r.done {
		return nil, io.EOF
	}

	if !r.started {
		tok, err := r.dec.Token()
		if err != nil {
			r.done = true
			return nil, domain.MalformedCorpusError{Reason: fmt.Sprintf("read opening token: %v", err)}
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			r.done = true
			return nil, domain.MalformedCorpusError{Reason: fmt.Sprintf("expected top-level array, got %v", tok)}
		}
		r.started = true
	}

	if !r.dec.More() {
		r.done = true
		if _, err := r.dec.Token(); err != nil {
			return nil, domain.MalformedCorpusError{Reason: fmt.Sprintf("read closing token: %v", err)}
		}
		return nil, io.EOF
	}

	var entry periodEntry
	if err := r.dec.Decode(&entry); err != nil {
		r.done = true
		return nil, domain.MalformedCorpusError{
			Index:  r.index,
			Reason: fmt.Sprintf("decode period entry: %v", err),
		}
	}

	// The entry has been consumed, so validation defects below do not poison
	// the stream: the caller may record the malformed period and move on.
	index := r.index
	r.index++

	key := periodKey(entry.Year)
	if key == "" {
		return nil, domain.MalformedCorpusError{Index: index, Reason: "period entry lacks a year key"}
	}
	if entry.Songs == nil {
		return nil, domain.MalformedCorpusError{PeriodKey: key, Reason: "period entry lacks a songs collection"}
	}

	for i, song := range *entry.Songs {
		if song.Title == "" {
			return nil, domain.MalformedCorpusError{PeriodKey: key, Index: i, Reason: "record lacks a title"}
		}
		if song.Artist == "" {
			return nil, domain.MalformedCorpusError{PeriodKey: key, Index: i, Reason: "record lacks an artist"}
		}
	}

	return &domain.Period{Key: key, Songs: *entry.Songs}, nil
}

// periodKey normalizes the period key to its string form; the corpus may
// encode it as a JSON number or string.
func periodKey(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	return strings.Trim(s, `"`)
}
