package domain

// Period is one named batch of raw songs from the corpus, e.g. a year.
type Period struct {
	Key   string
	Songs []RawSong
}

// Sentiment is the nested sentiment structure attached to a raw song.
// Pointer fields distinguish a missing key from a genuine zero score.
type Sentiment struct {
	Neg      *float64 `json:"neg"`
	Neu      *float64 `json:"neu"`
	Pos      *float64 `json:"pos"`
	Compound *float64 `json:"compound"`
}

// RawSong is a single song record as read from the corpus. Title and Artist
// are the only required fields; the lyric statistics are carried through to
// the output untouched.
type RawSong struct {
	Title     string     `json:"title"`
	Artist    string     `json:"artist"`
	Position  int        `json:"position"`
	Tags      []string   `json:"tags"`
	Sentiment *Sentiment `json:"sentiment"`

	NumWords       int     `json:"num_words"`
	NumLines       int     `json:"num_lines"`
	NumSyllables   int     `json:"num_syllables"`
	NumDupes       int     `json:"num_dupes"`
	DifficultWords int     `json:"difficult_words"`
	FleschIndex    float64 `json:"flesch_index"`
	FogIndex       float64 `json:"fog_index"`
	FKGrade        float64 `json:"f_k_grade"`
	POS            float64 `json:"pos"`
}

// AudioFeatures is the external catalog's feature bundle for one track.
// The bundle is all-or-nothing: an EnrichedSong either carries every field
// (a match) or none of them (Features == nil).
type AudioFeatures struct {
	Danceability     float64
	Energy           float64
	Loudness         float64
	Instrumentalness float64
	Liveness         float64
	DurationMs       int
	ExternalID       string
	ExternalURL      string
}

// SentimentFields are the four flattened sentiment scalars. Nil means the
// source record carried no sentiment structure at all, which is distinct
// from a neutral score of zero.
type SentimentFields struct {
	Neg      *float64
	Neu      *float64
	Pos      *float64
	Compound *float64
}

// EnrichedSong is a RawSong plus the derived and externally sourced fields.
type EnrichedSong struct {
	RawSong

	PeriodKey string
	Genre     string
	Sentiment SentimentFields
	Features  *AudioFeatures
}
