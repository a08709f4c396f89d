package spotify

// Wire types mirror the Spotify API payloads; only the fields the pipeline
// consumes are declared.

type wireArtist struct {
	Name string `json:"name"`
}

type wireTrack struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Artists []wireArtist `json:"artists"`
}

type searchResponse struct {
	Tracks struct {
		Items []wireTrack `json:"items"`
	} `json:"tracks"`
}

type wireAudioFeatures struct {
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Loudness         float64 `json:"loudness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	DurationMs       int     `json:"duration_ms"`
	ID               string  `json:"id"`
	TrackHref        string  `json:"track_href"`
}
