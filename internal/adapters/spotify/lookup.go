package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"songprep/internal/core/domain"
)

// errNoResults is the defined no-match outcome: the search returned zero
// candidates. It is expected, not a failure.
var errNoResults = errors.New("no search results")

type sparseFeaturesError struct {
	got  int
	want int
}

func (e sparseFeaturesError) Error() string {
	return fmt.Sprintf("feature response under-populated: %d fields, want at least %d", e.got, e.want)
}

// Lookup resolves a (title, artist) pair to its audio-feature bundle.
// Failures never escape this boundary: transport errors, rate-limit
// exhaustion, malformed payloads, and under-populated responses are all
// logged and downgraded to a no-match so the caller always gets a result.
func (c *Client) Lookup(ctx context.Context, title, artist string) (domain.AudioFeatures, bool) {
	features, err := c.lookup(ctx, title, artist)
	if err != nil {
		entry := c.log.WithFields(logrus.Fields{"title": title, "artist": artist})
		if errors.Is(err, errNoResults) {
			entry.Debug("no catalog match")
		} else {
			entry.WithField("error", err.Error()).Warn("feature lookup failed, treating as no match")
		}
		return domain.AudioFeatures{}, false
	}
	return features, true
}

func (c *Client) lookup(ctx context.Context, title, artist string) (domain.AudioFeatures, error) {
	track, err := c.searchTrack(ctx, title, artist)
	if err != nil {
		return domain.AudioFeatures{}, err
	}
	return c.trackFeatures(ctx, track.ID)
}

// searchTrack issues the catalog search. The first item is taken as the
// match: search relevance order is trusted, so limit=1 is all we consume.
func (c *Client) searchTrack(ctx context.Context, title, artist string) (wireTrack, error) {
	searchURL, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return wireTrack{}, fmt.Errorf("invalid search url: %w", err)
	}

	query := searchURL.Query()
	query.Set("q", fmt.Sprintf("track:%s artist:%s", title, artist))
	query.Set("type", "track")
	query.Set("limit", "1")
	searchURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL.String(), nil)
	if err != nil {
		return wireTrack{}, fmt.Errorf("create search request: %w", err)
	}

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return wireTrack{}, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return wireTrack{}, fmt.Errorf("search status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return wireTrack{}, fmt.Errorf("search decode error: %w", err)
	}

	if len(body.Tracks.Items) == 0 {
		return wireTrack{}, errNoResults
	}

	return body.Tracks.Items[0], nil
}

// trackFeatures fetches the feature bundle for a catalog ID and validates it
// is populated enough to be a real entry rather than a placeholder.
func (c *Client) trackFeatures(ctx context.Context, trackID string) (domain.AudioFeatures, error) {
	featuresURL := fmt.Sprintf("%s/audio-features/%s", c.baseURL, trackID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, featuresURL, nil)
	if err != nil {
		return domain.AudioFeatures{}, fmt.Errorf("create features request: %w", err)
	}

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return domain.AudioFeatures{}, fmt.Errorf("features request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.AudioFeatures{}, fmt.Errorf("features status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.AudioFeatures{}, fmt.Errorf("read features body: %w", err)
	}

	if got := populatedFields(raw); got < c.minFeatureFields {
		return domain.AudioFeatures{}, sparseFeaturesError{got: got, want: c.minFeatureFields}
	}

	var features wireAudioFeatures
	if err := json.Unmarshal(raw, &features); err != nil {
		return domain.AudioFeatures{}, fmt.Errorf("features decode error: %w", err)
	}

	return domain.AudioFeatures{
		Danceability:     features.Danceability,
		Energy:           features.Energy,
		Loudness:         features.Loudness,
		Instrumentalness: features.Instrumentalness,
		Liveness:         features.Liveness,
		DurationMs:       features.DurationMs,
		ExternalID:       features.ID,
		ExternalURL:      features.TrackHref,
	}, nil
}

// populatedFields counts the non-null keys of a JSON object. A malformed
// body counts as zero, which fails the minimum-field validation downstream.
func populatedFields(raw []byte) int {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0
	}
	count := 0
	for _, v := range obj {
		if string(v) != "null" {
			count++
		}
	}
	return count
}
