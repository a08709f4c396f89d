// Package csvout writes enriched datasets as CSV files: one file per period
// under a year/ subdirectory, and a single aggregate file covering the whole
// run.
package csvout

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"songprep/internal/core/domain"
	"songprep/internal/core/ports"
)

const (
	periodDir     = "year"
	aggregateFile = "data.csv"
)

var header = []string{
	"year", "position", "title", "artist",
	"num_words", "num_lines", "num_syllables", "num_dupes", "difficult_words",
	"flesch_index", "fog_index", "f_k_grade", "pos",
	"tags", "genre",
	"sentiment_neg", "sentiment_neu", "sentiment_pos", "sentiment_compound",
	"danceability", "energy", "loudness", "instrumentalness", "liveness",
	"duration_ms", "external_id", "external_url",
}

// Writer persists enriched songs under a base output directory. Existing
// files for the same period or aggregate are overwritten.
type Writer struct {
	outputDir string
}

var _ ports.DatasetWriter = (*Writer)(nil)

func NewWriter(outputDir string) *Writer {
	return &Writer{outputDir: outputDir}
}

// WritePeriod writes one period's rows to <outputDir>/year/<key>.csv.
func (w *Writer) WritePeriod(key string, songs []domain.EnrichedSong) error {
	dir := filepath.Join(w.outputDir, periodDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create period directory: %w", err)
	}
	return w.writeFile(filepath.Join(dir, key+".csv"), songs)
}

// WriteAggregate writes the full run's rows to <outputDir>/data.csv.
func (w *Writer) WriteAggregate(songs []domain.EnrichedSong) error {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return w.writeFile(filepath.Join(w.outputDir, aggregateFile), songs)
}

func (w *Writer) writeFile(path string, songs []domain.EnrichedSong) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range songs {
		if err := cw.Write(row(s)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

func row(s domain.EnrichedSong) []string {
	fields := []string{
		s.PeriodKey,
		strconv.Itoa(s.Position),
		s.Title,
		s.Artist,
		strconv.Itoa(s.NumWords),
		strconv.Itoa(s.NumLines),
		strconv.Itoa(s.NumSyllables),
		strconv.Itoa(s.NumDupes),
		strconv.Itoa(s.DifficultWords),
		formatFloat(s.FleschIndex),
		formatFloat(s.FogIndex),
		formatFloat(s.FKGrade),
		formatFloat(s.POS),
		strings.Join(s.Tags, "|"),
		s.Genre,
		formatOptional(s.Sentiment.Neg),
		formatOptional(s.Sentiment.Neu),
		formatOptional(s.Sentiment.Pos),
		formatOptional(s.Sentiment.Compound),
	}
	if s.Features != nil {
		fields = append(fields,
			formatFloat(s.Features.Danceability),
			formatFloat(s.Features.Energy),
			formatFloat(s.Features.Loudness),
			formatFloat(s.Features.Instrumentalness),
			formatFloat(s.Features.Liveness),
			strconv.Itoa(s.Features.DurationMs),
			s.Features.ExternalID,
			s.Features.ExternalURL,
		)
	} else {
		fields = append(fields, "", "", "", "", "", "", "", "")
	}
	return fields
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatOptional renders a missing scalar as an empty cell, keeping the
// distinction from a genuine zero.
func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
