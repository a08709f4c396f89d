// Package worker fans feature lookups out over a bounded set of goroutines
// and joins the results back by record index, so output order never depends
// on completion order.
package worker

import (
	"context"
	"sync"

	"songprep/internal/core/domain"
	"songprep/internal/core/ports"
)

// Request identifies one lookup.
type Request struct {
	Title  string
	Artist string
}

// Result is the outcome for the request at the same index. Matched follows
// the provider's no-match semantics; Matched is also false for requests that
// were never issued because the context was canceled.
type Result struct {
	Features domain.AudioFeatures
	Matched  bool
}

// Pool executes lookups against a FeatureProvider with bounded concurrency.
type Pool struct {
	provider ports.FeatureProvider
	workers  int
}

// NewPool creates a pool. workers == 1 keeps lookups strictly sequential,
// which is the default posture under the catalog's rate limits.
func NewPool(provider ports.FeatureProvider, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{provider: provider, workers: workers}
}

// LookupAll resolves every request and returns results in request order.
// Cancellation stops new lookups from being issued; requests already in
// flight finish and their results are kept.
func (p *Pool) LookupAll(ctx context.Context, reqs []Request) []Result {
	results := make([]Result, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := p.workers
	if workers > len(reqs) {
		workers = len(reqs)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				features, ok := p.provider.Lookup(ctx, reqs[idx].Title, reqs[idx].Artist)
				results[idx] = Result{Features: features, Matched: ok}
			}
		}()
	}

	for idx := range reqs {
		if ctx.Err() != nil {
			break
		}
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return results
}
