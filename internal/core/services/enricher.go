// Package services holds the enrichment core: the per-record transformation
// pipeline and the run loop that drives it over the whole corpus.
package services

import (
	"context"

	"songprep/internal/core/domain"
	"songprep/internal/core/ports"
	"songprep/internal/logging"
	"songprep/internal/worker"
)

// Enricher drives each record through the enrichment stages:
//
//	Raw -> SentimentExtracted -> GenreResolved -> FeatureQueried -> Enriched
//
// The first two stages are pure and run sequentially. Feature lookups fan
// out over a bounded pool and rejoin by record index.
type Enricher struct {
	pool *worker.Pool
	log  *logging.Logger
}

func NewEnricher(provider ports.FeatureProvider, workers int, log *logging.Logger) *Enricher {
	if log == nil {
		log = logging.NewNop()
	}
	return &Enricher{
		pool: worker.NewPool(provider, workers),
		log:  log.WithComponent("enricher"),
	}
}

// PeriodResult is the outcome of enriching one period: the successfully
// processed subsequence in original order, the per-record failures, and the
// number of records the catalog could not match.
type PeriodResult struct {
	Songs   []domain.EnrichedSong
	Skipped []domain.RecordError
	NoMatch int
}

// staged is a record that survived the pure stages and awaits its feature
// lookup.
type staged struct {
	raw       domain.RawSong
	sentiment domain.SentimentFields
	genre     string
}

// EnrichPeriod enriches every record of a period. A record whose sentiment
// structure is partially present is skipped and reported; its siblings are
// unaffected. Skipped records trigger no external lookup.
func (e *Enricher) EnrichPeriod(ctx context.Context, period domain.Period) PeriodResult {
	var result PeriodResult

	survivors := make([]staged, 0, len(period.Songs))
	for _, raw := range period.Songs {
		sentiment, err := domain.FlattenSentiment(raw.Sentiment)
		if err != nil {
			recErr := domain.RecordError{
				PeriodKey: period.Key,
				Title:     raw.Title,
				Artist:    raw.Artist,
				Err:       err,
			}
			e.log.WithField("record", recErr.Error()).Warn("skipping record")
			result.Skipped = append(result.Skipped, recErr)
			continue
		}
		survivors = append(survivors, staged{
			raw:       raw,
			sentiment: sentiment,
			genre:     domain.ResolveGenre(raw.Tags),
		})
	}

	reqs := make([]worker.Request, len(survivors))
	for i, s := range survivors {
		reqs[i] = worker.Request{Title: s.raw.Title, Artist: s.raw.Artist}
	}
	lookups := e.pool.LookupAll(ctx, reqs)

	result.Songs = make([]domain.EnrichedSong, len(survivors))
	for i, s := range survivors {
		enriched := domain.EnrichedSong{
			RawSong:   s.raw,
			PeriodKey: period.Key,
			Genre:     s.genre,
			Sentiment: s.sentiment,
		}
		if lookups[i].Matched {
			features := lookups[i].Features
			enriched.Features = &features
		} else {
			result.NoMatch++
		}
		result.Songs[i] = enriched
	}

	return result
}
