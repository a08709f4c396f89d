package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"songprep/internal/core/domain"
	"songprep/internal/core/ports"
	"songprep/internal/logging"
)

// Status is the end-of-pipeline verdict for a run.
type Status string

const (
	// StatusSuccess: every record of every period was enriched and written.
	StatusSuccess Status = "success"
	// StatusPartial: some records were skipped, some periods were malformed
	// or failed to write, or the run was interrupted.
	StatusPartial Status = "partial"
	// StatusFailed: the corpus was unreadable or no period produced output.
	StatusFailed Status = "failed"
)

// PeriodSummary is the per-period tally reported at the end of a run.
type PeriodSummary struct {
	Key        string
	Processed  int
	Skipped    int
	NoMatch    int
	WriteError string
}

// RunReport accumulates everything a run decided and dropped, instead of
// raising record-level errors individually.
type RunReport struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	Status         Status
	Periods        []PeriodSummary
	Errors         []domain.RecordError
	AggregateError string
}

// Pipeline owns the run loop: corpus in, per-period and aggregate datasets
// out, with a report of what happened along the way.
type Pipeline struct {
	enricher          *Enricher
	writer            ports.DatasetWriter
	store             ports.RunStore
	abortOnWriteError bool
	log               *logging.Logger
}

// NewPipeline wires the run loop. store may be nil to disable run history.
func NewPipeline(enricher *Enricher, writer ports.DatasetWriter, store ports.RunStore, abortOnWriteError bool, log *logging.Logger) *Pipeline {
	if log == nil {
		log = logging.NewNop()
	}
	return &Pipeline{
		enricher:          enricher,
		writer:            writer,
		store:             store,
		abortOnWriteError: abortOnWriteError,
		log:               log.WithComponent("pipeline"),
	}
}

// Run processes the whole corpus. Cancellation stops new periods and new
// external calls, but the aggregate of periods fully processed so far is
// still flushed. The returned error is non-nil only for fatal conditions
// (no usable corpus at all, or abort-on-write-error); everything recoverable
// lands in the report instead.
func (p *Pipeline) Run(ctx context.Context, source ports.CorpusSource) (*RunReport, error) {
	report := &RunReport{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	p.log.WithField("run_id", report.ID).Info("starting run")

	var aggregate []domain.EnrichedSong

	for {
		if ctx.Err() != nil {
			p.log.Info("run canceled, flushing completed periods")
			break
		}

		period, err := source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			var malformed domain.MalformedCorpusError
			if errors.As(err, &malformed) {
				// record the defect; a syntax-level defect ends the stream
				// on the next call, a bad entry lets siblings continue
				p.log.WithField("error", err.Error()).Warn("malformed period entry")
				report.Errors = append(report.Errors, domain.RecordError{PeriodKey: malformed.PeriodKey, Err: err})
				continue
			}
			report.Status = StatusFailed
			report.FinishedAt = time.Now().UTC()
			return report, fmt.Errorf("read corpus: %w", err)
		}

		res := p.enricher.EnrichPeriod(ctx, *period)
		summary := PeriodSummary{
			Key:       period.Key,
			Processed: len(res.Songs),
			Skipped:   len(res.Skipped),
			NoMatch:   res.NoMatch,
		}
		report.Errors = append(report.Errors, res.Skipped...)

		if err := p.writer.WritePeriod(period.Key, res.Songs); err != nil {
			summary.WriteError = err.Error()
			report.Periods = append(report.Periods, summary)
			p.log.WithField("period", period.Key).WithField("error", err.Error()).Error("period write failed")
			if p.abortOnWriteError {
				report.FinishedAt = time.Now().UTC()
				report.Status = verdict(report)
				return report, fmt.Errorf("write period %s: %w", period.Key, err)
			}
			continue
		}

		aggregate = append(aggregate, res.Songs...)
		report.Periods = append(report.Periods, summary)

		if p.store != nil {
			if err := p.store.SaveBatch(ctx, report.ID, period.Key, res.Songs); err != nil {
				p.log.WithField("period", period.Key).WithField("error", err.Error()).Warn("run store batch save failed")
			}
		}

		p.log.WithField("period", period.Key).
			WithField("processed", summary.Processed).
			WithField("skipped", summary.Skipped).
			WithField("no_match", summary.NoMatch).
			Info("period complete")
	}

	if err := p.writer.WriteAggregate(aggregate); err != nil {
		report.AggregateError = err.Error()
		p.log.WithField("error", err.Error()).Error("aggregate write failed")
	}

	report.FinishedAt = time.Now().UTC()
	report.Status = verdict(report)
	if ctx.Err() != nil && report.Status == StatusSuccess {
		report.Status = StatusPartial
	}

	if p.store != nil {
		if err := p.store.SaveRun(ctx, storeRecord(report)); err != nil {
			p.log.WithField("error", err.Error()).Warn("run store save failed")
		}
	}

	p.log.WithField("run_id", report.ID).WithField("status", string(report.Status)).Info("run finished")
	return report, nil
}

// verdict derives the run status from what actually landed on disk.
func verdict(report *RunReport) Status {
	anyOutput := false
	clean := len(report.Errors) == 0 && report.AggregateError == ""
	for _, s := range report.Periods {
		if s.WriteError == "" && s.Processed > 0 {
			anyOutput = true
		}
		if s.WriteError != "" || s.Skipped > 0 {
			clean = false
		}
	}
	if !anyOutput {
		return StatusFailed
	}
	if clean {
		return StatusSuccess
	}
	return StatusPartial
}

func storeRecord(report *RunReport) ports.RunRecord {
	rec := ports.RunRecord{
		ID:         report.ID,
		StartedAt:  report.StartedAt.Unix(),
		FinishedAt: report.FinishedAt.Unix(),
		Status:     string(report.Status),
	}
	for _, s := range report.Periods {
		rec.Processed += s.Processed
		rec.Skipped += s.Skipped
		rec.NoMatch += s.NoMatch
	}
	return rec
}
