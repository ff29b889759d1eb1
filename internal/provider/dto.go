package provider

// bookResource is the provider's wire shape for one catalog entry.
// id is non-zero only when a local library record exists for the book.
type bookResource struct {
	ID             int64    `json:"id,omitempty"`
	ForeignBookID  string   `json:"foreignBookId"`
	Title          string   `json:"title"`
	AuthorName     string   `json:"authorName,omitempty"`
	SeriesID       string   `json:"seriesId,omitempty"`
	SeriesTitle    string   `json:"seriesTitle,omitempty"`
	SeriesPosition *float64 `json:"seriesPosition,omitempty"`
	Rating         float64  `json:"rating,omitempty"`
	ReleaseYear    int      `json:"releaseYear,omitempty"`
	CoverURL       string   `json:"coverUrl,omitempty"`
	Compilation    bool     `json:"compilation,omitempty"`
	HasEbook       bool     `json:"hasEbook,omitempty"`
	HasAudiobook   bool     `json:"hasAudiobook,omitempty"`
	Monitored      bool     `json:"monitored,omitempty"`
	Status         string   `json:"status,omitempty"` // file state, owned books only
}

// addBookRequest is the body for the add mutation.
type addBookRequest struct {
	ForeignBookID string `json:"foreignBookId"`
	Monitored     bool   `json:"monitored"`
}

// addBookResponse carries the new local identity.
type addBookResponse struct {
	ID int64 `json:"id"`
}

// errorResponse is the provider's error body.
type errorResponse struct {
	Message string `json:"message"`
}
