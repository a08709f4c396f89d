package domain

// GenreNone is the genre assigned to songs without any tags.
const GenreNone = "none"

// ResolveGenre derives a single genre from a song's tag list: the first tag
// verbatim, or GenreNone when the list is empty. Tags are ordered by upstream
// relevance, so the first one is the curator's primary classification; no
// case folding or merging is attempted.
func ResolveGenre(tags []string) string {
	if len(tags) == 0 {
		return GenreNone
	}
	return tags[0]
}

// FlattenSentiment extracts the four sentiment scalars from the nested
// structure. An entirely absent structure yields all-nil fields. A structure
// that is present but missing one of the four keys is corrupt input and
// yields a MissingSentimentFieldError.
func FlattenSentiment(s *Sentiment) (SentimentFields, error) {
	if s == nil {
		return SentimentFields{}, nil
	}

	required := []struct {
		name  string
		value *float64
	}{
		{"neg", s.Neg},
		{"neu", s.Neu},
		{"pos", s.Pos},
		{"compound", s.Compound},
	}
	for _, f := range required {
		if f.value == nil {
			return SentimentFields{}, MissingSentimentFieldError{Field: f.name}
		}
	}

	return SentimentFields{
		Neg:      s.Neg,
		Neu:      s.Neu,
		Pos:      s.Pos,
		Compound: s.Compound,
	}, nil
}
