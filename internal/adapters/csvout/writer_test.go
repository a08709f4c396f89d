package csvout

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"songprep/internal/core/domain"
)

func f(v float64) *float64 { return &v }

func sampleSongs() []domain.EnrichedSong {
	return []domain.EnrichedSong{
		{
			RawSong: domain.RawSong{
				Title:       "A",
				Artist:      "X",
				Position:    1,
				Tags:        []string{"rock", "classic rock"},
				NumWords:    120,
				NumLines:    24,
				FleschIndex: 71.5,
			},
			PeriodKey: "1970",
			Genre:     "rock",
			Sentiment: domain.SentimentFields{Neg: f(0.1), Neu: f(0.8), Pos: f(0.1), Compound: f(0.0)},
			Features: &domain.AudioFeatures{
				Danceability: 0.735,
				Energy:       0.578,
				Loudness:     -11.84,
				DurationMs:   255349,
				ExternalID:   "ext-a",
				ExternalURL:  "https://api/tracks/ext-a",
			},
		},
		{
			RawSong:   domain.RawSong{Title: "B", Artist: "Y", Position: 2},
			PeriodKey: "1970",
			Genre:     "none",
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestWritePeriod(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	if err := w.WritePeriod("1970", sampleSongs()); err != nil {
		t.Fatalf("WritePeriod: %v", err)
	}

	rows := readCSV(t, filepath.Join(dir, "year", "1970.csv"))
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want header plus 2", len(rows))
	}
	if len(rows[0]) != len(header) {
		t.Fatalf("header width: got %d, want %d", len(rows[0]), len(header))
	}
	if rows[0][0] != "year" || rows[0][2] != "title" {
		t.Errorf("header: got %v", rows[0][:4])
	}

	col := func(name string) int {
		for i, h := range rows[0] {
			if h == name {
				return i
			}
		}
		t.Fatalf("column %q missing", name)
		return -1
	}

	matched := rows[1]
	if matched[col("year")] != "1970" || matched[col("title")] != "A" {
		t.Errorf("matched row identity: %v", matched[:4])
	}
	if matched[col("tags")] != "rock|classic rock" {
		t.Errorf("tags: got %q", matched[col("tags")])
	}
	if matched[col("sentiment_neu")] != "0.8" || matched[col("sentiment_compound")] != "0" {
		t.Errorf("sentiment cells: %q %q", matched[col("sentiment_neu")], matched[col("sentiment_compound")])
	}
	if matched[col("danceability")] != "0.735" || matched[col("duration_ms")] != "255349" {
		t.Errorf("feature cells: %q %q", matched[col("danceability")], matched[col("duration_ms")])
	}
	if matched[col("external_url")] != "https://api/tracks/ext-a" {
		t.Errorf("external url: got %q", matched[col("external_url")])
	}

	unmatched := rows[2]
	if unmatched[col("genre")] != "none" {
		t.Errorf("untagged genre: got %q", unmatched[col("genre")])
	}
	// no sentiment and no match mean empty cells, not zeros
	for _, name := range []string{"sentiment_neg", "danceability", "duration_ms", "external_id"} {
		if got := unmatched[col(name)]; got != "" {
			t.Errorf("column %s: got %q, want empty", name, got)
		}
	}
}

func TestWriteAggregate(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	if err := w.WriteAggregate(sampleSongs()); err != nil {
		t.Fatalf("WriteAggregate: %v", err)
	}
	rows := readCSV(t, filepath.Join(dir, "data.csv"))
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want 3", len(rows))
	}
}

func TestWriteOverwritesPriorOutput(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	if err := w.WritePeriod("1960", sampleSongs()); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := w.WritePeriod("1960", sampleSongs()[:1]); err != nil {
		t.Fatalf("second write: %v", err)
	}

	rows := readCSV(t, filepath.Join(dir, "year", "1960.csv"))
	if len(rows) != 2 {
		t.Fatalf("rows after overwrite: got %d, want 2", len(rows))
	}
}

func TestWriteEmptyBatchStillWritesHeader(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	if err := w.WriteAggregate(nil); err != nil {
		t.Fatalf("WriteAggregate: %v", err)
	}
	rows := readCSV(t, filepath.Join(dir, "data.csv"))
	if len(rows) != 1 {
		t.Fatalf("rows: got %d, want header only", len(rows))
	}
}
