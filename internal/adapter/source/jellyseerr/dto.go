package jellyseerr

// StatusResponse is returned by /status
type StatusResponse struct {
	Version         string `json:"version"`
	CommitTag       string `json:"commitTag"`
	UpdateAvailable bool   `json:"updateAvailable"`
	CommitsBehind   int    `json:"commitsBehind"`
	RestartRequired bool   `json:"restartRequired"`
}

// PagedResponse wraps search and discover results
type PagedResponse struct {
	Page         int           `json:"page"`
	TotalPages   int           `json:"totalPages"`
	TotalResults int           `json:"totalResults"`
	Results      []MediaResult `json:"results"`
}

// MediaResult is a single search or discover hit. Movies carry title and
// releaseDate; TV carries name and firstAirDate. Person hits are filtered out.
type MediaResult struct {
	ID           int      `json:"id"`
	MediaType    string   `json:"mediaType"`
	Title        string   `json:"title,omitempty"`
	Name         string   `json:"name,omitempty"`
	OriginalName string   `json:"originalName,omitempty"`
	PosterPath   *string  `json:"posterPath"`
	BackdropPath *string  `json:"backdropPath"`
	ReleaseDate  string   `json:"releaseDate,omitempty"`
	FirstAirDate string   `json:"firstAirDate,omitempty"`
	VoteAverage  float64  `json:"voteAverage"`
	Popularity   float64  `json:"popularity"`
	Overview     string   `json:"overview"`
	MediaInfo    *Summary `json:"mediaInfo,omitempty"`
}

// Summary is the server's own record for a title that was requested before
type Summary struct {
	ID     int `json:"id"`
	Status int `json:"status"`
}

// RequestBody is posted to /request
type RequestBody struct {
	MediaID   int    `json:"mediaId"`
	MediaType string `json:"mediaType"`
	Seasons   string `json:"seasons,omitempty"`
}

// RequestResponse is the created request. Only the id is inspected.
type RequestResponse struct {
	ID     int `json:"id"`
	Status int `json:"status"`
}
