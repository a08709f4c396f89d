package sqlite

import (
	"context"
	"errors"
	"testing"

	"songprep/internal/core/domain"
	"songprep/internal/core/ports"
)

func f(v float64) *float64 { return &v }

func TestAdapter_SaveRunAndGetRun(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, a *Adapter) string
		wantErr error
		want    ports.RunRecord
	}{
		{
			name: "not found",
			setup: func(t *testing.T, a *Adapter) string {
				return "missing"
			},
			wantErr: domain.ErrRunNotFound,
		},
		{
			name: "round trips a record",
			setup: func(t *testing.T, a *Adapter) string {
				rec := ports.RunRecord{
					ID:         "run-1",
					StartedAt:  1700000000,
					FinishedAt: 1700000060,
					Status:     "partial",
					Processed:  40,
					Skipped:    2,
					NoMatch:    5,
				}
				if err := a.SaveRun(context.Background(), rec); err != nil {
					t.Fatalf("save run: %v", err)
				}
				return rec.ID
			},
			want: ports.RunRecord{
				ID:         "run-1",
				StartedAt:  1700000000,
				FinishedAt: 1700000060,
				Status:     "partial",
				Processed:  40,
				Skipped:    2,
				NoMatch:    5,
			},
		},
		{
			name: "second save updates in place",
			setup: func(t *testing.T, a *Adapter) string {
				rec := ports.RunRecord{ID: "run-2", StartedAt: 100, Status: "partial"}
				if err := a.SaveRun(context.Background(), rec); err != nil {
					t.Fatalf("first save: %v", err)
				}
				rec.FinishedAt = 200
				rec.Status = "success"
				rec.Processed = 10
				if err := a.SaveRun(context.Background(), rec); err != nil {
					t.Fatalf("second save: %v", err)
				}
				return rec.ID
			},
			want: ports.RunRecord{ID: "run-2", StartedAt: 100, FinishedAt: 200, Status: "success", Processed: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAdapter(":memory:")
			if err != nil {
				t.Fatalf("new adapter: %v", err)
			}
			defer a.Close()

			runID := tt.setup(t, a)
			got, err := a.GetRun(context.Background(), runID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestAdapter_SaveBatch(t *testing.T) {
	a, err := NewAdapter(":memory:")
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	defer a.Close()

	songs := []domain.EnrichedSong{
		{
			RawSong:   domain.RawSong{Title: "A", Artist: "X", Position: 1, Tags: []string{"rock", "classic rock"}},
			PeriodKey: "1970",
			Genre:     "rock",
			Sentiment: domain.SentimentFields{Neg: f(0.1), Neu: f(0.8), Pos: f(0.1), Compound: f(0.0)},
			Features: &domain.AudioFeatures{
				Danceability:     0.735,
				Energy:           0.578,
				Loudness:         -11.84,
				Instrumentalness: 0.0902,
				Liveness:         0.159,
				DurationMs:       255349,
				ExternalID:       "ext-a",
				ExternalURL:      "https://api/tracks/ext-a",
			},
		},
		{
			RawSong:   domain.RawSong{Title: "B", Artist: "Y", Position: 2},
			PeriodKey: "1970",
			Genre:     "none",
		},
	}

	if err := a.SaveBatch(context.Background(), "run-1", "1970", songs); err != nil {
		t.Fatalf("save batch: %v", err)
	}

	got, err := a.SongsForPeriod(context.Background(), "run-1", "1970")
	if err != nil {
		t.Fatalf("songs for period: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("songs: got %d, want 2", len(got))
	}

	matched := got[0]
	if matched.Title != "A" || matched.Genre != "rock" || matched.PeriodKey != "1970" {
		t.Fatalf("song identity: %+v", matched)
	}
	if len(matched.Tags) != 2 || matched.Tags[1] != "classic rock" {
		t.Errorf("tags: got %v", matched.Tags)
	}
	if matched.Sentiment.Neu == nil || *matched.Sentiment.Neu != 0.8 {
		t.Errorf("sentiment: got %+v", matched.Sentiment)
	}
	if matched.Features == nil || matched.Features.ExternalID != "ext-a" || matched.Features.DurationMs != 255349 {
		t.Errorf("features: got %+v", matched.Features)
	}

	unmatched := got[1]
	if unmatched.Features != nil {
		t.Errorf("no-match row should carry no features, got %+v", unmatched.Features)
	}
	if unmatched.Sentiment.Neg != nil {
		t.Errorf("absent sentiment should stay nil, got %+v", unmatched.Sentiment)
	}
}

func TestAdapter_SaveBatchReplacesPeriod(t *testing.T) {
	a, err := NewAdapter(":memory:")
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	defer a.Close()

	first := []domain.EnrichedSong{
		{RawSong: domain.RawSong{Title: "A", Artist: "X", Position: 1}, Genre: "none"},
		{RawSong: domain.RawSong{Title: "B", Artist: "Y", Position: 2}, Genre: "none"},
	}
	if err := a.SaveBatch(context.Background(), "run-1", "1980", first); err != nil {
		t.Fatalf("first batch: %v", err)
	}

	second := []domain.EnrichedSong{
		{RawSong: domain.RawSong{Title: "C", Artist: "Z", Position: 1}, Genre: "none"},
	}
	if err := a.SaveBatch(context.Background(), "run-1", "1980", second); err != nil {
		t.Fatalf("second batch: %v", err)
	}

	got, err := a.SongsForPeriod(context.Background(), "run-1", "1980")
	if err != nil {
		t.Fatalf("songs for period: %v", err)
	}
	if len(got) != 1 || got[0].Title != "C" {
		t.Fatalf("expected replacement, got %+v", got)
	}
}
