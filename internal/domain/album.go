package domain

import "time"

// StarredAlbumID is the id of the reserved album seeded at first startup.
const StarredAlbumID = "starred"

// Album is a named, user-curated grouping of photo ids. Photos is kept in
// insertion order and holds no duplicates. Entries may reference photos
// that no longer exist; readers filter those out instead of failing.
type Album struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Photos    []string  `json:"photos"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
}

// Clone returns a copy whose Photos slice is independent of the original,
// so event payloads do not alias state that later mutations rewrite.
func (a Album) Clone() Album {
	photos := make([]string, len(a.Photos))
	copy(photos, a.Photos)
	a.Photos = photos
	return a
}
