package tmdb

// SearchResult is one candidate from a TMDB search. Movie and TV results
// use different field names for the same things, so accessors below paper
// over the split.
type SearchResult struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`          // movies
	Name          string `json:"name"`           // tv
	OriginalTitle string `json:"original_title"` // movies
	OriginalName  string `json:"original_name"`  // tv
	Overview      string `json:"overview"`
	ReleaseDate   string `json:"release_date"`   // movies
	FirstAirDate  string `json:"first_air_date"` // tv
	PosterPath    string `json:"poster_path"`
	BackdropPath  string `json:"backdrop_path"`
}

// DisplayTitle returns the title regardless of media type.
func (r *SearchResult) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// OriginalDisplayTitle returns the original-language title.
func (r *SearchResult) OriginalDisplayTitle() string {
	if r.OriginalTitle != "" {
		return r.OriginalTitle
	}
	return r.OriginalName
}

// Date returns the release or first-air date.
func (r *SearchResult) Date() string {
	if r.ReleaseDate != "" {
		return r.ReleaseDate
	}
	return r.FirstAirDate
}

// Year returns the four-digit year of Date, or "".
func (r *SearchResult) Year() string {
	d := r.Date()
	if len(d) < 4 {
		return ""
	}
	return d[:4]
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}
