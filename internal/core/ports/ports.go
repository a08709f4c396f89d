// Package ports declares the interfaces between the enrichment core and its
// adapters. The core depends only on these; concrete implementations are
// injected at startup.
package ports

import (
	"context"

	"songprep/internal/core/domain"
)

// FeatureProvider resolves a (title, artist) pair to an audio-feature bundle.
// Lookup never fails: transport errors, rate-limit exhaustion, and malformed
// responses are absorbed by the implementation and reported as a no-match
// (ok == false). The returned bundle is complete whenever ok is true.
type FeatureProvider interface {
	Lookup(ctx context.Context, title, artist string) (features domain.AudioFeatures, ok bool)
}

// CorpusSource yields periods from the raw corpus in input order.
// Next returns io.EOF once the source is exhausted; it consumes the
// underlying stream and is not restartable.
type CorpusSource interface {
	Next() (*domain.Period, error)
}

// DatasetWriter persists enriched batches. WritePeriod derives its target
// deterministically from the period key; WriteAggregate persists the full
// concatenation under a fixed name. Both overwrite prior output.
type DatasetWriter interface {
	WritePeriod(key string, songs []domain.EnrichedSong) error
	WriteAggregate(songs []domain.EnrichedSong) error
}

// RunStore records completed runs and their enriched rows for later
// inspection. Implementations may be absent entirely (a nil store disables
// persistence of run history).
type RunStore interface {
	SaveBatch(ctx context.Context, runID, periodKey string, songs []domain.EnrichedSong) error
	SaveRun(ctx context.Context, report RunRecord) error
	Close() error
}

// RunRecord is the store-facing summary of one pipeline run.
type RunRecord struct {
	ID         string
	StartedAt  int64
	FinishedAt int64
	Status     string
	Processed  int
	Skipped    int
	NoMatch    int
}
