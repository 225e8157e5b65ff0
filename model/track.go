package model

// Track is a playable track reference obtained from the search collaborator.
// The engine copies these around but never mutates them.
type Track struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	Cover       string `json:"cover,omitempty"`
	CoverMedium string `json:"coverMedium,omitempty"`
	CoverBig    string `json:"coverBig,omitempty"`
	Preview     string `json:"preview"`
}

// BestCover returns the largest artwork available, used on reveal.
func (t Track) BestCover() string {
	if t.CoverBig != "" {
		return t.CoverBig
	}
	return t.Cover
}

// MediumCover returns the medium artwork, used while a round is playing.
func (t Track) MediumCover() string {
	if t.CoverMedium != "" {
		return t.CoverMedium
	}
	return t.Cover
}
